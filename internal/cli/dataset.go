package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/autoclouddeploy/archmap/pkg/dataset"
	"github.com/autoclouddeploy/archmap/pkg/session"
	"github.com/autoclouddeploy/archmap/pkg/source/github"
	"github.com/autoclouddeploy/archmap/pkg/terraform"
)

// githubCacheTTL is how long GitHub API responses are cached.
const githubCacheTTL = 24 * time.Hour

// datasetCommand creates the dataset command with subcommands.
func (c *CLI) datasetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Build and unify instruction/code/diagram training datasets",
	}

	cmd.AddCommand(c.datasetBuildCommand())
	cmd.AddCommand(c.datasetUnifyCommand())

	return cmd
}

// datasetBuildCommand creates the "dataset build" subcommand.
func (c *CLI) datasetBuildCommand() *cobra.Command {
	var (
		query   string
		limit   int
		outDir  string
		workDir string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Fetch Terraform repositories and build dataset pairs",
		Long: `Search GitHub for Terraform repositories, clone them, and produce one
pair directory per repository: instruction.json distilled from the README,
code.tf with the validated configuration, and diagram.xml generated from it.

Repositories that fail any step are skipped, never abort the build.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if query == "" {
				query = cfg.Dataset.Query
			}
			if limit == 0 {
				limit = cfg.Dataset.Limit
			}
			if outDir == "" {
				outDir = cfg.Dataset.Dir
			}

			fetcher, err := c.newFetcher(cmd.Context())
			if err != nil {
				return err
			}
			gen, err := c.newGenerator(cmd.Context())
			if err != nil {
				return err
			}
			defer gen.Close()

			builder := dataset.NewBuilder(fetcher, terraform.NewValidator(c.Logger), gen, c.Logger)
			stats, err := builder.Build(cmd.Context(), dataset.BuildOptions{
				Query:   query,
				Limit:   limit,
				WorkDir: workDir,
				OutDir:  outDir,
				Delay:   time.Second,
			})
			if err != nil {
				return err
			}

			printSuccess("Built %d pairs from %d repositories (%d skipped)",
				stats.Pairs, stats.Fetched, stats.Skipped)
			printFile(outDir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "GitHub search query (default from config)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "max repositories to fetch (default from config)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "dataset output directory (default from config)")
	cmd.Flags().StringVar(&workDir, "work-dir", "", "clone directory (default temporary)")

	return cmd
}

// datasetUnifyCommand creates the "dataset unify" subcommand.
func (c *CLI) datasetUnifyCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "unify <dataset-dir>",
		Short: "Fill in missing pair files across an existing dataset",
		Long: `Walk a dataset directory and generate whatever is missing per pair:
diagram.xml from code.tf (when a Gemini key is configured), then
instruction.json from diagram.xml.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := c.newRunner(noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			// Diagrams are optional here: unify still converts existing
			// XML when no key is configured.
			gen, err := c.newGenerator(cmd.Context())
			if err != nil {
				c.Logger.Warn("no generation backend, missing diagrams stay missing", "err", err)
				gen = nil
			} else {
				defer gen.Close()
			}

			unifier := dataset.NewUnifier(gen, runner, c.Logger)
			stats, err := unifier.Unify(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			printSuccess("Unified %d pairs: %d diagrams, %d instructions generated",
				stats.Scanned, stats.Diagrams, stats.Instructions)
			if len(stats.Failed) > 0 {
				printWarning("%d pairs failed: %v", len(stats.Failed), stats.Failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")

	return cmd
}

// newFetcher builds a GitHub fetcher using the configured token, falling back
// to a stored login session, then to unauthenticated access.
func (c *CLI) newFetcher(ctx context.Context) (*github.Fetcher, error) {
	token, err := c.githubToken(ctx)
	if err != nil {
		return nil, err
	}
	client, err := github.NewClient(token, githubCacheTTL)
	if err != nil {
		return nil, err
	}
	return github.NewFetcher(client, c.Logger), nil
}

func (c *CLI) githubToken(ctx context.Context) (string, error) {
	cfg, err := c.config()
	if err != nil {
		return "", err
	}
	if cfg.GitHub.Token != "" {
		return cfg.GitHub.Token, nil
	}

	store, err := session.NewCLIStore()
	if err != nil {
		return "", nil
	}
	if sess, err := store.GetSession(ctx); err == nil && sess != nil {
		return sess.AccessToken, nil
	}
	return "", nil
}
