// Package config loads analysis options from a .sealint.yaml file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sealint/sealint/internal/engine"
	"github.com/sealint/sealint/internal/model"
)

// DefaultFile is the config filename looked up in the scan directory.
const DefaultFile = ".sealint.yaml"

// Config is the on-disk shape:
//
//	disabled_rules:
//	  - ACC004
//	severity_overrides:
//	  ACC003: warning
type Config struct {
	DisabledRules     []string          `yaml:"disabled_rules,omitempty"`
	SeverityOverrides map[string]string `yaml:"severity_overrides,omitempty"`
}

// Load reads and parses a config file. A missing file is not an error: the
// zero Config applies every rule at its default severity.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Config, error) {
	var cfg Config
	// Strict field validation catches typos like "disable_rules".
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// Options converts the config to engine options. Unknown rule ids and
// severities are rejected here with file-level context rather than deep in
// the engine.
func (c *Config) Options() (engine.Options, error) {
	var opts engine.Options

	for _, id := range c.DisabledRules {
		rid := model.RuleID(id)
		if !model.ValidRuleID(rid) {
			return opts, fmt.Errorf("disabled_rules: unknown rule id %q", id)
		}
		opts.DisabledRules = append(opts.DisabledRules, rid)
	}

	if len(c.SeverityOverrides) > 0 {
		opts.SeverityOverrides = make(map[model.RuleID]model.Severity, len(c.SeverityOverrides))
		for id, sev := range c.SeverityOverrides {
			rid := model.RuleID(id)
			if !model.ValidRuleID(rid) {
				return opts, fmt.Errorf("severity_overrides: unknown rule id %q", id)
			}
			s := model.Severity(sev)
			if s.Rank() == 0 {
				return opts, fmt.Errorf("severity_overrides: unknown severity %q for rule %s", sev, id)
			}
			opts.SeverityOverrides[rid] = s
		}
	}

	return opts, nil
}
