package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/givin-app/givin/internal/config"
	"github.com/givin-app/givin/internal/database"
	"github.com/givin-app/givin/internal/database/snapshots"
	"github.com/givin-app/givin/internal/entrypoint"
	"github.com/givin-app/givin/internal/services"
)

func newMetricsCommand(cfg *config.Config) *cobra.Command {
	var months int
	var now string

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Print the dashboard figures as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			at := time.Now()
			if now != "" {
				day, err := time.ParseInLocation("2006-01-02", now, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --now %q, want YYYY-MM-DD", now)
				}
				at = day.Add(24*time.Hour - time.Second)
			}
			if months > 0 {
				cfg.Metrics.Months = months
			}
			return runMetrics(cmd.OutOrStdout(), cfg, at)
		},
	}

	cmd.Flags().IntVar(&months, "months", 0, "months in the trend series (default from METRICS_MONTHS)")
	cmd.Flags().StringVar(&now, "now", "", "compute as of the end of this day (YYYY-MM-DD)")

	return cmd
}

func runMetrics(out io.Writer, cfg *config.Config, at time.Time) error {
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	dashboard := services.NewDashboardService(db.Gifts, db.Donors, snapshots.NewRepository(db.DB), entrypoint.MetricsOptions(cfg.Metrics))
	snap, err := dashboard.At(at)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}
