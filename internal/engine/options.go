package engine

import (
	"fmt"
	"slices"

	"github.com/sealint/sealint/internal/model"
)

// Options configures the engine at construction time. Options are
// immutable once the engine is built; there is no way to toggle rules on
// a live engine.
type Options struct {
	// DisabledRules lists rule ids that must not run. Disabling a rule
	// removes exactly that rule's findings and nothing else.
	DisabledRules []model.RuleID

	// SeverityOverrides replaces a rule's emitted severities wholesale.
	// Overrides change ranking and exit-code behavior, never whether the
	// rule fires.
	SeverityOverrides map[model.RuleID]model.Severity
}

// Validate rejects unknown rule ids and severities. Silently accepting a
// typoed rule id would disable nothing while the operator believes
// otherwise, so this is strict.
func (o Options) Validate() error {
	for _, id := range o.DisabledRules {
		if !model.ValidRuleID(id) {
			return fmt.Errorf("unknown rule id in disabled_rules: %q", id)
		}
	}
	for id, sev := range o.SeverityOverrides {
		if !model.ValidRuleID(id) {
			return fmt.Errorf("unknown rule id in severity_overrides: %q", id)
		}
		if !model.ValidSeverities[sev] {
			return fmt.Errorf("unknown severity for rule %s: %q", id, sev)
		}
	}
	return nil
}

func (o Options) disabled(id model.RuleID) bool {
	return slices.Contains(o.DisabledRules, id)
}

// copyOptions deep-copies options so later caller mutation cannot break
// the immutability contract.
func copyOptions(o Options) Options {
	out := Options{
		DisabledRules: slices.Clone(o.DisabledRules),
	}
	if o.SeverityOverrides != nil {
		out.SeverityOverrides = make(map[model.RuleID]model.Severity, len(o.SeverityOverrides))
		for k, v := range o.SeverityOverrides {
			out.SeverityOverrides[k] = v
		}
	}
	return out
}
