// SPDX-License-Identifier: Apache-2.0

// Package config loads the nutrifill configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"

	"github.com/foodform/nutrifill/internal/form"
	"github.com/foodform/nutrifill/internal/prefill"
)

// Config is the root of the configuration file.
type Config struct {
	Log     LogConfig     `yaml:"log" json:"log"`
	Scan    ScanConfig    `yaml:"scan" json:"scan"`
	Prefill PrefillConfig `yaml:"prefill" json:"prefill"`
}

// LogConfig selects the level and handler of the process logger.
type LogConfig struct {
	Level  string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" json:"format" validate:"oneof=text json"`
}

// ScanConfig tunes scanning sessions.
type ScanConfig struct {
	// Concurrency bounds the images scanned at once.
	Concurrency int `yaml:"concurrency" json:"concurrency" validate:"min=1,max=64"`
	// Column is the nutrition table column extracted by default.
	Column int `yaml:"column" json:"column" validate:"min=1,max=2"`
}

// PrefillConfig configures where prefill records come from. Dir takes
// precedence over the Open Food Facts API when set.
type PrefillConfig struct {
	Dir       string        `yaml:"dir" json:"dir"`
	BaseURL   string        `yaml:"off_base_url" json:"off_base_url" validate:"omitempty,url"`
	UserAgent string        `yaml:"user_agent" json:"user_agent"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout" validate:"min=0"`
	CacheTTL  time.Duration `yaml:"cache_ttl" json:"cache_ttl" validate:"min=0"`
}

// OFF returns the Open Food Facts source configuration.
func (p PrefillConfig) OFF() prefill.OFFConfig {
	return prefill.OFFConfig{
		BaseURL:   p.BaseURL,
		UserAgent: p.UserAgent,
		Timeout:   p.Timeout,
		CacheTTL:  p.CacheTTL,
	}
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Log:  LogConfig{Level: "info", Format: "text"},
		Scan: ScanConfig{Concurrency: form.DefaultConcurrency, Column: 1},
		Prefill: PrefillConfig{
			BaseURL:  prefill.DefaultOFFBaseURL,
			Timeout:  10 * time.Second,
			CacheTTL: time.Hour,
		},
	}
}

// Load reads a YAML file over the defaults and validates the result. An
// empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks the configuration constraints.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
