// Package config holds the explicit configuration value passed into every
// component at construction. There is no ambient configuration state: tests
// build as many independent Configs as they need.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"rrpe/internal/canonical"
)

// Schedule defines the local-time windows during which each operation is
// permitted. Commit strictly precedes reveal, which precedes extraction.
type Schedule struct {
	CommitStart TimeOfDay `yaml:"commit_start"`
	CommitEnd   TimeOfDay `yaml:"commit_end"`
	RevealStart TimeOfDay `yaml:"reveal_start"`
	RevealEnd   TimeOfDay `yaml:"reveal_end"`
	ExtractAt   TimeOfDay `yaml:"extract_at"`
}

// ResolverBounds caps the reconciliation search space. The resolver never
// accepts a candidate price beyond these ceilings.
type ResolverBounds struct {
	// ProbeOffset bounds the alternating probe around an approximate price.
	ProbeOffset canonical.Price `yaml:"probe_offset"`
	// CoarseStep/CoarseCeiling bound the first exhaustive scan from zero.
	CoarseStep    canonical.Price `yaml:"coarse_step"`
	CoarseCeiling canonical.Price `yaml:"coarse_ceiling"`
	// FineStep/FineCeiling bound the full-precision rescan.
	FineStep    canonical.Price `yaml:"fine_step"`
	FineCeiling canonical.Price `yaml:"fine_ceiling"`
}

// Config is the complete configuration for one protocol instance.
type Config struct {
	Symbols        []string          `yaml:"symbols"`
	Exchange       string            `yaml:"exchange"`
	SymbolExchange map[string]string `yaml:"symbol_exchange"`
	TimeZone       string            `yaml:"time_zone"`

	Schedule Schedule `yaml:"schedule"`

	OutputsDir string `yaml:"outputs_dir"`
	DailyDir   string `yaml:"daily_dir"`
	EntropyLog string `yaml:"entropy_log"`

	// SecretEnv names the environment variable holding the commit secret.
	// The secret itself is read at operation time and never stored.
	SecretEnv     string `yaml:"secret_env"`
	CodeCommitEnv string `yaml:"code_commit_env"`

	BeaconURL     string `yaml:"beacon_url"`
	ExtractWindow int    `yaml:"extract_window"`
	ExtractBits   int    `yaml:"extract_bits"`

	Provider string `yaml:"provider"`
	ChartURL string `yaml:"chart_url"`

	CommitBarTarget    TimeOfDay `yaml:"commit_bar_target"`
	CommitBarTolerance int       `yaml:"commit_bar_tolerance_minutes"`

	Resolver ResolverBounds `yaml:"resolver"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Symbols:  []string{"SPY", "AAPL"},
		Exchange: "NYSE",
		SymbolExchange: map[string]string{
			"SPY":  "NYSE",
			"AAPL": "NASDAQ",
		},
		TimeZone: "America/New_York",
		Schedule: Schedule{
			CommitStart: TimeOfDay{Hour: 15, Minute: 54},
			CommitEnd:   TimeOfDay{Hour: 15, Minute: 56},
			RevealStart: TimeOfDay{Hour: 16, Minute: 4},
			RevealEnd:   TimeOfDay{Hour: 16, Minute: 12},
			ExtractAt:   TimeOfDay{Hour: 16, Minute: 15},
		},
		OutputsDir:    "outputs",
		DailyDir:      "outputs/daily",
		EntropyLog:    "outputs/entropy_log.csv",
		SecretEnv:     "RRPE_SALT_KEY",
		CodeCommitEnv: "GITHUB_SHA",
		BeaconURL:     "https://drand.cloudflare.com/public/latest",
		ExtractWindow: 256,
		ExtractBits:   256,
		Provider:      "chart",
		ChartURL:      "https://query1.finance.yahoo.com",
		CommitBarTarget: TimeOfDay{
			Hour: 15, Minute: 55,
		},
		CommitBarTolerance: 2,
		Resolver:           DefaultResolverBounds(),
	}
}

// DefaultResolverBounds returns the production search bounds: probe within
// 2.0000 of the approximation at the 1e-4 precision unit, coarse scan at
// 0.0100 up to 20000.0000, fine rescan at 0.0001 up to 2000.0000.
func DefaultResolverBounds() ResolverBounds {
	return ResolverBounds{
		ProbeOffset:   canonical.Price(2_0000),
		CoarseStep:    canonical.Price(100),
		CoarseCeiling: canonical.Price(20000_0000),
		FineStep:      canonical.Price(1),
		FineCeiling:   canonical.Price(2000_0000),
	}
}

// Load builds a Config from defaults, an optional YAML file, and environment
// overrides (DRAND_URL replaces the beacon URL when set).
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if url := os.Getenv("DRAND_URL"); url != "" {
		cfg.BeaconURL = url
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants the engines rely on.
func (c *Config) Validate() error {
	if len(c.Symbols) == 0 {
		return fmt.Errorf("config: no symbols")
	}
	if c.ExtractBits <= 0 || c.ExtractBits%4 != 0 {
		return fmt.Errorf("config: extract_bits must be a positive multiple of 4, got %d", c.ExtractBits)
	}
	if c.ExtractWindow <= 0 {
		return fmt.Errorf("config: extract_window must be positive, got %d", c.ExtractWindow)
	}
	if c.SecretEnv == "" {
		return fmt.Errorf("config: secret_env is required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the exchange time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("config: time_zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// ExchangeFor returns the exchange for a symbol, falling back to the default.
func (c *Config) ExchangeFor(symbol string) string {
	if exch, ok := c.SymbolExchange[symbol]; ok {
		return exch
	}
	return c.Exchange
}
