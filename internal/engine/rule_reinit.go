package engine

import (
	"fmt"

	"github.com/sealint/sealint/internal/model"
)

// reinitGuardRule flags repeated initialization paths.
//
// When two instructions both init an account from identical seed
// literals, the later one can clobber state the earlier one created -
// unless it carries an explicit already-initialized guard (an emptiness
// or flag predicate). The finding lands on the later instruction in
// declaration order: that is the path an attacker replays.
type reinitGuardRule struct{}

func (reinitGuardRule) Info() RuleInfo {
	return RuleInfo{
		ID:          model.RuleReinitGuard,
		Title:       "reinitialization guard",
		Description: "repeated init paths over identical seeds need an already-initialized guard",
	}
}

func (reinitGuardRule) Evaluate(ec *evalContext) []model.Finding {
	var findings []model.Finding

	for i := range ec.inst.Accounts {
		req := &ec.inst.Accounts[i]
		if !req.Init {
			continue
		}
		sb := req.SeedsBump()
		if sb == nil {
			continue
		}
		if hasEmptinessGuard(req) {
			continue
		}

		key, err := model.SeedsKey(sb.Seeds)
		if err != nil {
			// Seeds that cannot be canonicalized were already rejected
			// when the engine indexed the program.
			continue
		}
		earlier := ec.index.earlierInitSites(key, ec.inst.Name)
		if len(earlier) == 0 {
			continue
		}

		findings = append(findings, ec.finding(
			model.RuleReinitGuard,
			model.SeverityCritical,
			[]string{req.Name},
			fmt.Sprintf("slot %q re-initializes the address already created by instruction %q with identical seeds, and carries no already-initialized guard",
				req.Name, earlier[0].Instruction),
			model.RemGuardAgainstReinitialization,
		))
	}

	return findings
}

func hasEmptinessGuard(req *model.AccountRequirement) bool {
	for _, c := range req.Constraints {
		if raw, ok := c.(model.RawExpr); ok && raw.Pred == model.PredEmptiness {
			return true
		}
	}
	return false
}
