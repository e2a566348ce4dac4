package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/autoclouddeploy/archmap/pkg/terraform"
)

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <module-dir>",
		Short: "Validate a Terraform module with terraform init and validate",
		Long: `Run terraform init and terraform validate against a module directory.

Requires a terraform binary on PATH. The exit code is non-zero when the
configuration is invalid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			validator := terraform.NewValidator(c.Logger)

			spinner := newSpinnerWithContext(cmd.Context(), "Validating...")
			spinner.Start()
			result, err := validator.Validate(cmd.Context(), args[0])
			if err != nil {
				spinner.StopWithError("Validation could not run")
				return err
			}
			spinner.Stop()

			if !result.Valid {
				printError("Configuration is invalid")
				if result.Diagnostics != "" {
					printDetail("%s", result.Diagnostics)
				}
				return fmt.Errorf("terraform validation failed")
			}

			printSuccess("Configuration is valid")
			return nil
		},
	}

	return cmd
}
