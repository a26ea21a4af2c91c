package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/tablesync/internal/config"
	"github.com/agentstation/tablesync/internal/sources/airtable"
	"github.com/agentstation/tablesync/internal/sources/csvsource"
	"github.com/agentstation/tablesync/pkg/constants"
	"github.com/agentstation/tablesync/pkg/logging"
	"github.com/agentstation/tablesync/pkg/syncer"
)

var (
	syncProfile string
	syncDryRun  bool
)

// syncCmd represents the sync command.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one reconciliation pass",
	Long: `Sync downloads the CSV export, lists the Airtable table, and applies
the resulting plan: missing records are created, stale records are patched
on the checked columns, and remote-only records are counted but left alone.

Configuration comes from the environment (and .env / .env.shared files);
a YAML profile can override the per-table settings.`,
	Example: `  tablesync sync
  tablesync sync --dry-run
  tablesync sync --profile profiles/contacts.yaml`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().StringVar(&syncProfile, "profile", "", "YAML profile with per-table settings")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "compute and report the plan without writing")
}

func runSync(cobraCmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if syncProfile != "" {
		profile, err := config.LoadProfile(syncProfile)
		if err != nil {
			return err
		}
		cfg.Apply(profile)
	}
	if syncDryRun {
		cfg.DryRun = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	source := csvsource.New(cfg.CSVExportURL)
	remote, err := airtable.New(cfg.AccessToken, cfg.BaseID, cfg.TableName,
		airtable.WithBatchSize(cfg.BatchSize))
	if err != nil {
		return err
	}

	engine, err := syncer.New(source, remote, cfg.SyncerConfig(),
		syncer.WithLogger(logging.Default()))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cobraCmd.Context(), constants.SyncTimeout)
	defer cancel()

	result, err := engine.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Println(result.Summary())
	if result.Report != nil && result.Report.HasFailures() {
		return fmt.Errorf("%d actions failed", result.Report.Failed)
	}
	return nil
}
