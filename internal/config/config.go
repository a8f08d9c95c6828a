package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level tallybook.yaml configuration.
type Config struct {
	DataDir  string       `yaml:"data_dir"`
	Currency string       `yaml:"currency"`
	Fiscal   FiscalConfig `yaml:"fiscal"`
	Git      GitConfig    `yaml:"git"`
}

// FiscalConfig defines the default fiscal year boundary.
type FiscalConfig struct {
	YearStart string `yaml:"year_start"` // "MM-DD" format, e.g. "04-01"
}

// GitConfig controls data-directory snapshot commits.
type GitConfig struct {
	Snapshot    bool   `yaml:"snapshot"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a tallybook.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		DataDir:  "data",
		Currency: "INR",
		Fiscal: FiscalConfig{
			YearStart: "04-01",
		},
		Git: GitConfig{
			Snapshot:    false,
			AuthorName:  "Tallybook",
			AuthorEmail: "books@tallybook.dev",
		},
	}
}
