// Package config loads pipeline configuration from the environment and the
// tracked-company universe from a YAML seed file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/caarlos0/env"
	"gopkg.in/yaml.v2"
)

// Config is the pipeline's static configuration, read from the environment.
type Config struct {
	DatabaseURL   string `env:"DATABASE_URL,required"`
	SECUserAgent  string `env:"SEC_USER_AGENT" envDefault:"FolioTracker/1.0 (contact@example.com)"`
	SECRateLimit  int    `env:"SEC_RATE_LIMIT" envDefault:"10"` // requests per second
	BackfillYears int    `env:"BACKFILL_YEARS" envDefault:"9"`
	UniverseFile  string `env:"UNIVERSE_FILE" envDefault:"universe.yaml"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}
	return cfg, nil
}

// UniverseCompany is one tracked company from the seed file.
type UniverseCompany struct {
	Ticker        string `yaml:"ticker"`
	CIK           string `yaml:"cik"`
	Name          string `yaml:"name"`
	Active        *bool  `yaml:"active"`         // default true
	FiscalYearEnd string `yaml:"fiscal_year_end"` // "MM-DD", optional
}

// IsActive defaults to true when the seed file omits the flag.
func (c UniverseCompany) IsActive() bool {
	return c.Active == nil || *c.Active
}

// FYE parses the fiscal year end into month and day; (0, 0) when absent or
// malformed.
func (c UniverseCompany) FYE() (int, int) {
	parts := strings.SplitN(c.FiscalYearEnd, "-", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	mon, err1 := strconv.Atoi(parts[0])
	day, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || mon < 1 || mon > 12 || day < 1 || day > 31 {
		return 0, 0
	}
	return mon, day
}

// LoadUniverse reads the tracked-company seed file.
func LoadUniverse(path string) ([]UniverseCompany, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading universe file: %w", err)
	}

	var doc struct {
		Companies []UniverseCompany `yaml:"companies"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing universe file: %w", err)
	}

	for i, c := range doc.Companies {
		if c.Ticker == "" {
			return nil, fmt.Errorf("universe entry %d: ticker is required", i)
		}
	}
	return doc.Companies, nil
}
