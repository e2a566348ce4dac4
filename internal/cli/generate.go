package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/autoclouddeploy/archmap/pkg/genai"
	"github.com/autoclouddeploy/archmap/pkg/terraform"
)

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "generate <module-dir | file.tf>",
		Short: "Generate a draw.io diagram from Terraform code via Gemini",
		Long: `Generate a draw.io XML diagram describing the architecture of a
Terraform configuration.

The input is a .tf file or a module directory (all .tf files are combined,
skipping .terraform/). Requires a Gemini API key via GEMINI_API_KEY or the
config file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := readTerraformInput(args[0])
			if err != nil {
				return err
			}

			gen, err := c.newGenerator(cmd.Context())
			if err != nil {
				return err
			}
			defer gen.Close()

			spinner := newSpinnerWithContext(cmd.Context(), "Generating diagram...")
			spinner.Start()
			xml, err := genai.DiagramFromTerraform(cmd.Context(), gen, code)
			if err != nil {
				spinner.StopWithError("Generation failed")
				return err
			}
			spinner.Stop()

			if output == "" || output == "-" {
				fmt.Println(xml)
				return nil
			}
			if err := os.WriteFile(output, []byte(xml), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}

			printSuccess("Generated diagram")
			printFile(output)
			printNextStep("Convert it", fmt.Sprintf("archmap convert %s", output))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}

// newGenerator builds a Gemini generator from the configuration, wrapped
// with the configured cache so repeated prompts skip the model.
func (c *CLI) newGenerator(ctx context.Context) (genai.Generator, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	if cfg.Gemini.APIKey == "" {
		return nil, fmt.Errorf("no Gemini API key (set GEMINI_API_KEY or gemini.api_key in the config file)")
	}
	gen, err := genai.NewGemini(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		return nil, err
	}
	store, err := c.newCache(false)
	if err != nil {
		return gen, nil
	}
	return genai.NewCachedGenerator(gen, store, nil), nil
}

// readTerraformInput reads Terraform code from a .tf file or combines a
// module directory.
func readTerraformInput(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return terraform.CombineFiles(path)
	}
	if !strings.HasSuffix(path, ".tf") {
		return "", fmt.Errorf("%s is not a .tf file", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
