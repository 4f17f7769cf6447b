package engine

import (
	"fmt"

	"github.com/sealint/sealint/internal/model"
)

// typedAccountRule checks that accounts used by Mutate and Invoke effects
// are type-safe.
//
// A raw account used by an effect is Critical: nothing stops a caller
// from substituting an arbitrary account of the right size. An unchecked
// account is a Warning unless it carries both an owner check and a safety
// annotation - with both present it no longer qualifies as a violation.
type typedAccountRule struct{}

func (typedAccountRule) Info() RuleInfo {
	return RuleInfo{
		ID:          model.RuleTypedAccount,
		Title:       "typed accounts",
		Description: "accounts referenced by mutate or invoke effects must be type-checked or documented unchecked",
	}
}

func (typedAccountRule) Evaluate(ec *evalContext) []model.Finding {
	var findings []model.Finding
	flagged := make(map[string]bool)

	for _, eff := range ec.inst.Effects {
		var slot string
		switch e := eff.(type) {
		case model.Mutate:
			slot = e.Slot
		case model.Invoke:
			slot = e.Program
		default:
			continue
		}
		if flagged[slot] {
			continue
		}

		ra := ec.res.Account(slot)
		if ra == nil || ra.TypeSafe {
			continue
		}
		flagged[slot] = true

		switch {
		case ra.Req.Kind == model.KindRaw:
			findings = append(findings, ec.finding(
				model.RuleTypedAccount,
				model.SeverityCritical,
				[]string{slot},
				fmt.Sprintf("slot %q is a raw account with no type or owner validation", slot),
				model.RemUseTypedAccountOrDocument,
			))

		case ra.UnsafeUnchecked:
			missing := "a safety annotation"
			if !ra.Req.HasOwnerCheck() {
				missing = "an owner check"
				if !ra.Req.Documented {
					missing = "an owner check and a safety annotation"
				}
			}
			findings = append(findings, ec.finding(
				model.RuleTypedAccount,
				model.SeverityWarning,
				[]string{slot},
				fmt.Sprintf("unchecked slot %q is missing %s", slot, missing),
				model.RemUseTypedAccountOrDocument,
			))
		}
	}

	return findings
}
