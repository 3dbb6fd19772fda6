// Package config loads the cashbook configuration file.
package config

import (
	"github.com/oakwood-commons/cashbook/internal/registry"
)

// Config is the decoded configuration file.
type Config struct {
	Database    string                 `yaml:"database" json:"database"`
	Currency    string                 `yaml:"currency" json:"currency"`
	Locale      string                 `yaml:"locale" json:"locale"`
	HorizonDays int                    `yaml:"horizonDays" json:"horizonDays"`
	Layout      Layout                 `yaml:"layout" json:"layout"`
	Tables      map[string]TableConfig `yaml:"tables" json:"tables"`
}

// Layout sizes tables for the available width.
type Layout struct {
	Buffer    int `yaml:"buffer" json:"buffer"`
	CellWidth int `yaml:"cellWidth" json:"cellWidth"`
}

// TableConfig overrides the registered columns of one table.
type TableConfig struct {
	Columns map[string]registry.Override `yaml:"columns" json:"columns"`
}

// Overrides flattens the table settings into registry overrides.
func (c Config) Overrides() registry.Overrides {
	out := registry.Overrides{}
	for table, tc := range c.Tables {
		if len(tc.Columns) == 0 {
			continue
		}
		cols := make(map[string]registry.Override, len(tc.Columns))
		for id, o := range tc.Columns {
			cols[id] = o
		}
		out[table] = cols
	}
	return out
}
