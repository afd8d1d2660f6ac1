package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/givin-app/givin/internal/audit"
	"github.com/givin-app/givin/internal/config"
	"github.com/givin-app/givin/internal/database"
	dbaudit "github.com/givin-app/givin/internal/database/audit"
	"github.com/givin-app/givin/internal/database/settings"
	"github.com/givin-app/givin/internal/entrypoint"
	"github.com/givin-app/givin/internal/importers"
	"github.com/givin-app/givin/internal/mapping"
	"github.com/givin-app/givin/internal/services"
	"github.com/givin-app/givin/internal/settingsstore"
	"github.com/givin-app/givin/internal/tabular"
)

const cliActor = "cli"

func newImportCommand(cfg *config.Config) *cobra.Command {
	var kind string
	var dataset int
	var overrides []string

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import donations or donors from a CSV or XLSX file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := importers.ParseKind(kind)
			if err != nil {
				return err
			}
			m, err := parseOverrides(overrides)
			if err != nil {
				return err
			}
			return runImport(cmd.Context(), cmd.OutOrStdout(), cfg, k, args[0], dataset, m)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", string(importers.KindDonations), "what the file holds: donations or donors")
	cmd.Flags().IntVar(&dataset, "dataset", 0, "index of the dataset to import when the file holds several")
	cmd.Flags().StringArrayVar(&overrides, "map", nil, "column mapping override as field=Column (repeatable)")

	return cmd
}

// parseOverrides reads field=Column pairs.
func parseOverrides(pairs []string) (mapping.Mapping, error) {
	m := mapping.Mapping{}
	for _, pair := range pairs {
		field, column, ok := strings.Cut(pair, "=")
		field, column = strings.TrimSpace(field), strings.TrimSpace(column)
		if !ok || field == "" || column == "" {
			return nil, fmt.Errorf("invalid --map %q, want field=Column", pair)
		}
		m[field] = column
	}
	return m, nil
}

func runImport(ctx context.Context, out io.Writer, cfg *config.Config, kind importers.Kind, path string, dataset int, overrides mapping.Mapping) error {
	if ctx == nil {
		ctx = context.Background()
	}

	set, err := readDatasets(path)
	if err != nil {
		return err
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	llm := entrypoint.NewContentGenerator(ctx, cfg.Assistant)
	pipeline, err := entrypoint.NewPipeline(db, llm, cfg)
	if err != nil {
		return err
	}

	state := pipeline.ImportText(ctx, kind, tabular.SerializeMulti(set), dataset, overrides)
	var incomplete *importers.IncompleteMappingError
	if errors.As(state.Err, &incomplete) {
		return fmt.Errorf("%w; use --map field=Column", state.Err)
	}
	if state.Err != nil {
		return state.Err
	}
	if state.Result == nil {
		return errors.New("import produced no result")
	}

	auditService := audit.NewService(dbaudit.NewRepository(db.DB))
	recorder := services.NewImportService(audit.NewAuditor(cfg.Audit.Dir), auditService,
		settingsstore.New(settings.NewRepository(db.DB)))
	auditFile := recorder.Record(0, cliActor, filepath.Base(path), state.Result)
	auditService.Wait()

	printResult(out, state.Result, auditFile)
	return nil
}

func printResult(out io.Writer, r *importers.ImportResult, auditFile string) {
	fmt.Fprintf(out, "Imported %d of %d %s rows (%d errors, %d warnings)\n",
		r.SuccessCount, r.TotalRows, r.Kind, r.ErrorCount, r.WarningCount)
	for _, issue := range r.Errors {
		fmt.Fprintf(out, "  error   row %d: %s\n", issue.Row, issue.Message)
	}
	for _, issue := range r.Warnings {
		fmt.Fprintf(out, "  warning row %d: %s\n", issue.Row, issue.Message)
	}
	if r.AdditionalInfo != "" {
		fmt.Fprintf(out, "Note: %s\n", r.AdditionalInfo)
	}
	if r.Insights != nil {
		for _, line := range r.Insights.Insights {
			fmt.Fprintf(out, "* %s\n", line)
		}
	}
	if auditFile != "" {
		fmt.Fprintf(out, "Audit file: %s\n", auditFile)
	}
}
