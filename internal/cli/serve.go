package cli

import (
	"github.com/spf13/cobra"

	"github.com/autoclouddeploy/archmap/internal/api"
	"github.com/autoclouddeploy/archmap/pkg/terraform"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the archmap HTTP API server",
		Long: `Serve the conversion pipeline over HTTP.

Endpoints: /health, POST /convert, POST /terraform-to-xml, POST /validate,
and /metrics (Prometheus). /terraform-to-xml responds 503 unless a Gemini
key is configured.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			runner, err := c.newRunner(noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			metrics := api.NewMetrics()
			metrics.Install()

			opts := []api.Option{
				api.WithLogger(c.Logger),
				api.WithMetrics(metrics),
				api.WithValidator(terraform.NewValidator(c.Logger)),
			}
			if gen, err := c.newGenerator(cmd.Context()); err == nil {
				defer gen.Close()
				opts = append(opts, api.WithGenerator(gen))
			} else {
				c.Logger.Warn("generation endpoint disabled", "err", err)
			}

			server := api.NewServer(runner, opts...)
			return server.Run(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")

	return cmd
}
