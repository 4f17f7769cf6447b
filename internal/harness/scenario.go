package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/sealint/sealint/internal/engine"
	"github.com/sealint/sealint/internal/model"
)

// Scenario defines one conformance test: a program model plus the
// findings its analysis must produce.
type Scenario struct {
	// Name uniquely identifies this scenario; it is also the golden
	// file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Model is the directory of CUE program-model documents, relative
	// to the scenario file location.
	Model string `yaml:"model"`

	// DisabledRules lists rule ids excluded from the run.
	DisabledRules []string `yaml:"disabled_rules,omitempty"`

	// SeverityOverrides remaps rule severities for the run.
	SeverityOverrides map[string]string `yaml:"severity_overrides,omitempty"`

	// Expect lists findings the report must contain. Findings not
	// listed are still allowed; use Clean for exact-empty runs.
	Expect []ExpectedFinding `yaml:"expect,omitempty"`

	// Clean asserts the report contains no findings and no failures.
	Clean bool `yaml:"clean,omitempty"`
}

// ExpectedFinding is a partial match against one reported finding.
// Empty fields are not checked.
type ExpectedFinding struct {
	Rule        string   `yaml:"rule"`
	Instruction string   `yaml:"instruction"`
	Slots       []string `yaml:"slots,omitempty"`
	Severity    string   `yaml:"severity,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file. The model path is
// resolved relative to the scenario file. Returns an error if the file
// is malformed, contains unknown fields (typos), or is missing required
// fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}

	// Strict field validation catches typos like "expects:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario YAML: %w", err)
	}

	if !filepath.IsAbs(scenario.Model) {
		scenario.Model = filepath.Join(filepath.Dir(path), scenario.Model)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Model == "" {
		return fmt.Errorf("model directory is required")
	}
	if s.Clean && len(s.Expect) > 0 {
		return fmt.Errorf("clean scenarios must not list expected findings")
	}
	if !s.Clean && len(s.Expect) == 0 {
		return fmt.Errorf("scenario must either expect findings or declare clean: true")
	}
	for i, e := range s.Expect {
		if e.Rule == "" || e.Instruction == "" {
			return fmt.Errorf("expect[%d]: rule and instruction are required", i)
		}
		if !model.ValidRuleID(model.RuleID(e.Rule)) {
			return fmt.Errorf("expect[%d]: unknown rule id %q", i, e.Rule)
		}
		if e.Severity != "" && model.Severity(e.Severity).Rank() == 0 {
			return fmt.Errorf("expect[%d]: unknown severity %q", i, e.Severity)
		}
	}
	return nil
}

// options converts the scenario's rule tuning to engine options.
func (s *Scenario) options() (engine.Options, error) {
	var opts engine.Options
	for _, id := range s.DisabledRules {
		rid := model.RuleID(id)
		if !model.ValidRuleID(rid) {
			return opts, fmt.Errorf("disabled_rules: unknown rule id %q", id)
		}
		opts.DisabledRules = append(opts.DisabledRules, rid)
	}
	if len(s.SeverityOverrides) > 0 {
		opts.SeverityOverrides = make(map[model.RuleID]model.Severity, len(s.SeverityOverrides))
		for id, sev := range s.SeverityOverrides {
			opts.SeverityOverrides[model.RuleID(id)] = model.Severity(sev)
		}
	}
	return opts, nil
}
