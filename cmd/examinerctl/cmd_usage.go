package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nikhilbhutani/examiner/internal/audit"
	"github.com/nikhilbhutani/examiner/internal/config"
	"github.com/nikhilbhutani/examiner/internal/database"
)

func newUsageCommand() *cobra.Command {
	var since time.Duration

	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Summarize recorded turn usage",
		Long: `Print turn counts, tokens, cost and latency grouped by model and outcome.

Reads the usage table written by the worker; DATABASE_URL must be set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if since < 0 {
				return fmt.Errorf("--since must not be negative")
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if cfg.Database.URL == "" {
				return fmt.Errorf("DATABASE_URL is not set")
			}

			db, err := database.NewPool(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			var start *time.Time
			if since > 0 {
				t := time.Now().Add(-since).UTC()
				start = &t
			}

			summary, err := audit.NewService(db).GetUsageSummary(cmd.Context(), start, nil)
			if err != nil {
				return err
			}
			if summary == nil {
				summary = []audit.UsageSummary{}
			}
			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{"usage": summary})
		},
	}

	cmd.Flags().DurationVar(&since, "since", 24*time.Hour, "Only include turns newer than this (0 for all)")

	return cmd
}
