package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/givin-app/givin/internal/config"
	"github.com/givin-app/givin/internal/entrypoint"
	"github.com/givin-app/givin/internal/tabular"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
// Running it without a subcommand starts the server.
func NewRootCommand(cfg *config.Config, version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "givin",
		Short:   "Donor management for small nonprofits",
		Version: version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			entrypoint.Run(cfg, version)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfg.Database.Path, "database", cfg.Database.Path, "path to the SQLite database")

	rootCmd.AddCommand(
		newServeCommand(cfg, version),
		newImportCommand(cfg),
		newMetricsCommand(cfg),
		newSplitCommand(),
	)

	return rootCmd
}

func newServeCommand(cfg *config.Config, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entrypoint.Run(cfg, version)
			return nil
		},
	}
}

// readDatasets loads a CSV, TXT or XLSX file as datasets.
func readDatasets(path string) (*tabular.MultiTableSet, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()
		return tabular.ReadWorkbook(f)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return tabular.ParseDatasets(string(data))
}
