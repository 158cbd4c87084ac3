// Package config loads the application configuration from a YAML file,
// applying defaults for anything left unset.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Log      LogConfig      `yaml:"log"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Defaults.Validate(); err != nil {
		return err
	}
	return c.Log.Validate()
}

// SQLiteConfig holds the database location.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// DefaultsConfig holds document defaults applied to newly created
// schedules. Rates are percentages.
type DefaultsConfig struct {
	TaxRate        string `yaml:"tax_rate"`
	OverheadRate   string `yaml:"overhead_rate"`
	ProfitRiskRate string `yaml:"profit_risk_rate"`
}

// Validate validates the document defaults.
func (c *DefaultsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.TaxRate, validation.Required, validation.By(nonNegativeRate)),
		validation.Field(&c.OverheadRate, validation.By(nonNegativeRate)),
		validation.Field(&c.ProfitRiskRate, validation.By(nonNegativeRate)),
	)
}

// TaxRateDecimal returns the parsed tax rate. Call Validate first.
func (c *DefaultsConfig) TaxRateDecimal() decimal.Decimal {
	return decimal.RequireFromString(c.TaxRate)
}

// OverheadRateDecimal returns the parsed overhead (AK) rate.
func (c *DefaultsConfig) OverheadRateDecimal() decimal.Decimal {
	return rateOrZero(c.OverheadRate)
}

// ProfitRiskRateDecimal returns the parsed profit-and-risk (WR) rate.
func (c *DefaultsConfig) ProfitRiskRateDecimal() decimal.Decimal {
	return rateOrZero(c.ProfitRiskRate)
}

// LogConfig holds command-log observability settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Validate validates the log configuration.
func (c *LogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Level, validation.In("debug", "info", "warn", "error")),
	)
}

// Default returns the built-in configuration: database under the user's
// home directory, Dutch VAT, no surcharges.
func Default() Config {
	dbPath := "bouwkost.db"
	if home, err := os.UserHomeDir(); err == nil {
		dbPath = filepath.Join(home, ".bouwkost", "bouwkost.db")
	}
	return Config{
		SQLite:   SQLiteConfig{Path: dbPath},
		Defaults: DefaultsConfig{TaxRate: "21", OverheadRate: "0", ProfitRiskRate: "0"},
		Log:      LogConfig{Level: "info"},
	}
}

// Load reads the configuration file at path, layered over Default. A
// missing file is not an error: the defaults apply as-is.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func nonNegativeRate(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("not a decimal percentage: %q", s)
	}
	if d.IsNegative() {
		return fmt.Errorf("percentage cannot be negative: %q", s)
	}
	return nil
}

func rateOrZero(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	return decimal.RequireFromString(s)
}
