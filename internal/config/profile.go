package config

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/tablesync/pkg/errors"
)

// Profile is an optional YAML file carrying reconciliation settings for one
// table, so that teams syncing several tables can keep per-table settings in
// version control while credentials stay in the environment.
type Profile struct {
	TableName      string   `yaml:"table_name"`
	CSVExportURL   string   `yaml:"csv_export_url"`
	PivotColumn    string   `yaml:"pivot_column"`
	ColumnsToCheck []string `yaml:"columns_to_check"`
	BatchSize      *int     `yaml:"batch_size"`
	MaxRetries     *int     `yaml:"max_retries"`
	Concurrency    *int     `yaml:"concurrency"`
	DryRun         *bool    `yaml:"dry_run"`
}

// LoadProfile reads and decodes a profile file.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	return &p, nil
}

// Apply overlays the profile onto the configuration. Set profile fields win
// over environment values; unset fields leave the environment values alone.
func (c *Config) Apply(p *Profile) {
	if p == nil {
		return
	}
	if p.TableName != "" {
		c.TableName = p.TableName
	}
	if p.CSVExportURL != "" {
		c.CSVExportURL = p.CSVExportURL
	}
	if p.PivotColumn != "" {
		c.PivotColumn = p.PivotColumn
	}
	if len(p.ColumnsToCheck) > 0 {
		c.ColumnsToCheck = p.ColumnsToCheck
	}
	if p.BatchSize != nil {
		c.BatchSize = *p.BatchSize
	}
	if p.MaxRetries != nil {
		c.MaxRetries = *p.MaxRetries
	}
	if p.Concurrency != nil {
		c.Concurrency = *p.Concurrency
	}
	if p.DryRun != nil {
		c.DryRun = *p.DryRun
	}
}
