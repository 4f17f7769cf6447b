package engine

import (
	"fmt"
	"slices"

	"github.com/sealint/sealint/internal/model"
)

// pdaDerivationRule checks derived-address bindings on owner-scoped init
// accounts.
//
// An init account is owner-scoped when its instruction carries a signer
// and the slot never appears elsewhere with a different signer set. Such
// an account must derive its address from seeds that include the signer;
// otherwise every caller shares one global address and the first writer
// owns everyone's data. On init the computed bump must also be persisted
// to a stored field so later instructions reference the stored value
// instead of recomputing it.
type pdaDerivationRule struct{}

func (pdaDerivationRule) Info() RuleInfo {
	return RuleInfo{
		ID:          model.RulePDADerivation,
		Title:       "derived-address binding",
		Description: "owner-scoped init accounts need signer-bound seeds and a persisted bump",
	}
}

func (pdaDerivationRule) Evaluate(ec *evalContext) []model.Finding {
	var findings []model.Finding
	signers := ec.inst.Signers()

	for i := range ec.inst.Accounts {
		req := &ec.inst.Accounts[i]
		if !req.Init {
			continue
		}
		if !ec.index.ownerScoped(req.Name, signers) {
			continue
		}

		sb := req.SeedsBump()
		if sb == nil || !seedsIncludeAny(sb.Seeds, signers) {
			findings = append(findings, ec.finding(
				model.RulePDADerivation,
				model.SeverityCritical,
				[]string{req.Name},
				fmt.Sprintf("owner-scoped init slot %q does not derive its address from the signer's key", req.Name),
				model.RemAddSeedsBinding,
			))
			continue
		}

		if !bumpPersisted(ec.inst, req.Name) {
			findings = append(findings, ec.finding(
				model.RulePDADerivation,
				model.SeverityWarning,
				[]string{req.Name},
				fmt.Sprintf("init slot %q derives its address but never stores the bump for later instructions", req.Name),
				model.RemPersistBump,
			))
		}
	}

	return findings
}

func seedsIncludeAny(seeds, signers []string) bool {
	for _, s := range signers {
		if slices.Contains(seeds, s) {
			return true
		}
	}
	return false
}

// bumpPersisted reports whether the instruction writes the bump to the
// slot's stored state (the companion Mutate on the bump field).
func bumpPersisted(inst *model.Instruction, slot string) bool {
	for _, eff := range inst.Effects {
		if m, ok := eff.(model.Mutate); ok && m.Slot == slot && m.Field == model.BumpField {
			return true
		}
	}
	return false
}
