// Package config loads the application configuration from dotenv files,
// the process environment, and optional YAML profiles, and hands it to the
// engine as an explicit value object. Nothing below the CLI reads the
// environment directly.
package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/tablesync/pkg/constants"
	"github.com/agentstation/tablesync/pkg/errors"
	"github.com/agentstation/tablesync/pkg/syncer"
)

// Environment variable keys.
const (
	EnvAccessToken    = "AIRTABLE_ACCESS_TOKEN"
	EnvBaseID         = "AIRTABLE_BASE_ID"
	EnvTableName      = "AIRTABLE_TABLE_NAME"
	EnvCSVExportURL   = "CSV_EXPORT_URL"
	EnvPivotColumn    = "PIVOT_COLUMN"
	EnvColumnsToCheck = "COLUMNS_TO_CHECK"
	EnvBatchSize      = "SYNC_BATCH_SIZE"
	EnvMaxRetries     = "SYNC_MAX_RETRIES"
	EnvConcurrency    = "SYNC_CONCURRENCY"
	EnvDryRun         = "SYNC_DRY_RUN"
)

// Config is the full application configuration for one run.
type Config struct {
	// Remote store credentials and addressing.
	AccessToken string
	BaseID      string
	TableName   string

	// CSV export location.
	CSVExportURL string

	// Reconciliation settings.
	PivotColumn    string
	ColumnsToCheck []string
	BatchSize      int
	MaxRetries     int
	Concurrency    int
	DryRun         bool
}

// Load reads configuration from dotenv files and the environment.
// Precedence, lowest to highest: .env.shared, .env, process environment.
// godotenv never overrides variables that are already set, so loading .env
// first keeps it ahead of .env.shared.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.shared")

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault(EnvBatchSize, constants.DefaultBatchSize)
	v.SetDefault(EnvMaxRetries, constants.MaxRetries)
	v.SetDefault(EnvConcurrency, constants.DefaultConcurrency)

	return &Config{
		AccessToken:    v.GetString(EnvAccessToken),
		BaseID:         v.GetString(EnvBaseID),
		TableName:      v.GetString(EnvTableName),
		CSVExportURL:   v.GetString(EnvCSVExportURL),
		PivotColumn:    v.GetString(EnvPivotColumn),
		ColumnsToCheck: SplitColumns(v.GetString(EnvColumnsToCheck)),
		BatchSize:      v.GetInt(EnvBatchSize),
		MaxRetries:     v.GetInt(EnvMaxRetries),
		Concurrency:    v.GetInt(EnvConcurrency),
		DryRun:         v.GetBool(EnvDryRun),
	}, nil
}

// Validate checks that every required setting is present.
func (c *Config) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{EnvAccessToken, c.AccessToken},
		{EnvBaseID, c.BaseID},
		{EnvTableName, c.TableName},
		{EnvCSVExportURL, c.CSVExportURL},
		{EnvPivotColumn, c.PivotColumn},
	}
	for _, r := range required {
		if r.value == "" {
			return errors.NewConfigError("config", r.key+" not set", errors.ErrInvalidInput)
		}
	}
	if len(c.ColumnsToCheck) == 0 {
		return errors.NewConfigError("config", EnvColumnsToCheck+" not set", errors.ErrInvalidInput)
	}
	return nil
}

// SyncerConfig converts the application configuration into the engine's
// value object.
func (c *Config) SyncerConfig() syncer.Config {
	sc := syncer.DefaultConfig()
	sc.PivotColumn = c.PivotColumn
	sc.ColumnsToCheck = c.ColumnsToCheck
	sc.MaxRetries = c.MaxRetries
	sc.Concurrency = c.Concurrency
	sc.DryRun = c.DryRun
	return sc
}

// SplitColumns parses the comma-separated COLUMNS_TO_CHECK form, trimming
// whitespace and dropping empty entries while preserving order.
func SplitColumns(s string) []string {
	if s == "" {
		return nil
	}
	var columns []string
	for _, col := range strings.Split(s, ",") {
		col = strings.TrimSpace(col)
		if col != "" {
			columns = append(columns, col)
		}
	}
	return columns
}
