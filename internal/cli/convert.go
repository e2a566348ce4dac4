package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/autoclouddeploy/archmap/pkg/pipeline"
)

// convertCommand creates the convert command.
func (c *CLI) convertCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		refresh bool
		compact bool
	)

	cmd := &cobra.Command{
		Use:   "convert <diagram.xml>",
		Short: "Convert a draw.io diagram to hierarchical JSON",
		Long: `Convert a draw.io XML diagram into a hierarchical JSON document.

Containment is inferred from geometry: every element is nested under the
smallest box that fully encloses it. Arrows between elements become
connections. The result follows schema version 3.0.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read diagram: %w", err)
			}

			runner, err := c.newRunner(noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			prog := newProgress(c.Logger)
			result, err := runner.Convert(cmd.Context(), data, pipeline.Options{Refresh: refresh})
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Converted %d elements", result.Stats.ElementCount))

			var out []byte
			if compact {
				out, err = json.Marshal(result.Document)
			} else {
				out, err = json.MarshalIndent(result.Document, "", "  ")
			}
			if err != nil {
				return fmt.Errorf("encode document: %w", err)
			}

			if output == "" || output == "-" {
				fmt.Println(string(out))
				return nil
			}
			if err := os.WriteFile(output, append(out, '\n'), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}

			printSuccess("Converted %s", filepath.Base(args[0]))
			printFile(output)
			printStats(result.Stats.ElementCount, result.Stats.ConnectionCount, result.CacheInfo.DocumentHit)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cache and reconvert")
	cmd.Flags().BoolVar(&compact, "compact", false, "emit compact JSON")

	return cmd
}
