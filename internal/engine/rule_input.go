package engine

import (
	"fmt"

	"github.com/sealint/sealint/internal/model"
)

// inputValidationRule covers the unchecked-input sub-checks: wrapping
// arithmetic on stored values, unbounded sequence indexing, unvalidated
// timestamp ordering, and fixed space allocations over variable-length
// fields.
//
// Timestamp findings are Warning rather than Critical: incorrect time
// ordering typically degrades availability rather than directly draining
// value.
type inputValidationRule struct{}

func (inputValidationRule) Info() RuleInfo {
	return RuleInfo{
		ID:          model.RuleInputValidation,
		Title:       "input validation",
		Description: "arithmetic, indexing, timestamps, and space calculations must be checked",
	}
}

func (inputValidationRule) Evaluate(ec *evalContext) []model.Finding {
	var findings []model.Finding

	for _, eff := range ec.inst.Effects {
		switch e := eff.(type) {
		case model.Arithmetic:
			// Unchecked arithmetic matters once the result lands in
			// account state; a purely local value cannot corrupt a
			// balance or count.
			if e.Checked || e.Target.Slot == "" {
				continue
			}
			findings = append(findings, ec.finding(
				model.RuleInputValidation,
				model.SeverityCritical,
				[]string{e.Target.Slot},
				fmt.Sprintf("unchecked %s on %s.%s wraps silently on overflow", e.Op, e.Target.Slot, e.Target.Field),
				model.RemUseCheckedArithmetic,
			))

		case model.IndexedAccess:
			if e.BoundsKnown {
				continue
			}
			findings = append(findings, ec.finding(
				model.RuleInputValidation,
				model.SeverityCritical,
				[]string{e.Collection},
				fmt.Sprintf("index from %s into %q is used without a bounds check", e.IndexSource, e.Collection),
				model.RemAddBoundsCheck,
			))

		case model.TimestampCompare:
			if e.Checked {
				continue
			}
			f := ec.finding(
				model.RuleInputValidation,
				model.SeverityWarning,
				nil,
				fmt.Sprintf("timestamp comparison %s vs %s is not validated for ordering", e.LHS, e.RHS),
				model.RemValidateTimeOrdering,
			)
			// No slot to implicate; provenance is the effect itself.
			f.Effect = fmt.Sprintf("timestamp_compare(%s, %s)", e.LHS, e.RHS)
			findings = append(findings, f)
		}
	}

	findings = append(findings, checkSpaceCalculations(ec)...)

	return findings
}

// checkSpaceCalculations flags init accounts whose declared byte capacity
// is a fixed literal while a stored field is variable-length with no
// enforced maximum. The allocation is either wasteful or, worse, too
// small for inputs the program accepts.
func checkSpaceCalculations(ec *evalContext) []model.Finding {
	var findings []model.Finding

	for i := range ec.inst.Accounts {
		req := &ec.inst.Accounts[i]
		if !req.Init || req.Space == 0 {
			continue
		}
		for _, field := range req.Fields {
			if !field.Type.VariableLength() || field.MaxLen > 0 {
				continue
			}
			findings = append(findings, ec.finding(
				model.RuleInputValidation,
				model.SeverityCritical,
				[]string{req.Name},
				fmt.Sprintf("init slot %q allocates a fixed %d bytes but field %q has no maximum length", req.Name, req.Space, field.Name),
				model.RemFixSpaceCalculation,
			))
			break // one finding per slot, not per field
		}
	}

	return findings
}
