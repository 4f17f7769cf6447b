package engine

import (
	"fmt"

	"github.com/sealint/sealint/internal/model"
	"github.com/sealint/sealint/internal/relation"
	"github.com/sealint/sealint/internal/resolve"
)

// ownershipConstraintRule checks relational bindings between accounts.
//
// Two accounts joined by a Transfer effect must carry a mint-equality
// edge (the same resource identity on both sides); without it a caller
// can pair a real source with a counterfeit destination. Independently,
// an account that declares an owner-bearing field and is mutated, yet
// carries no has_one or owner-equality binding, is operating on someone's
// data without asserting whose.
type ownershipConstraintRule struct{}

func (ownershipConstraintRule) Info() RuleInfo {
	return RuleInfo{
		ID:          model.RuleOwnershipConstraint,
		Title:       "ownership constraints",
		Description: "transfer pairs need resource-identity equality; owned accounts need a relational binding",
	}
}

func (ownershipConstraintRule) Evaluate(ec *evalContext) []model.Finding {
	var findings []model.Finding

	findings = append(findings, checkTransferPairs(ec)...)
	findings = append(findings, checkUnboundOwnedAccounts(ec)...)

	return findings
}

func checkTransferPairs(ec *evalContext) []model.Finding {
	var findings []model.Finding
	flagged := make(map[[2]string]bool)

	for _, eff := range ec.inst.Effects {
		tr, ok := eff.(model.Transfer)
		if !ok {
			continue
		}
		pair := orderedPair(tr.From, tr.To)
		if flagged[pair] {
			continue
		}
		if ec.graph.HasKind(tr.From, tr.To, relation.KindMintEquality) {
			continue
		}
		flagged[pair] = true
		findings = append(findings, ec.finding(
			model.RuleOwnershipConstraint,
			model.SeverityCritical,
			[]string{tr.From, tr.To},
			fmt.Sprintf("transfer between %q and %q has no resource-identity equality constraint", tr.From, tr.To),
			model.RemAddRelationalConstraint,
		))
	}

	return findings
}

// ownerFieldNames are the extractor-tagged field names that mark an
// account as belonging to one specific key. Only declared fields count;
// the rule never guesses ownership from anything the extractor did not
// put in the model.
var ownerFieldNames = []string{"owner", "authority"}

func checkUnboundOwnedAccounts(ec *evalContext) []model.Finding {
	var findings []model.Finding

	mutated := make(map[string]bool)
	for _, eff := range ec.inst.Effects {
		if m, ok := eff.(model.Mutate); ok {
			mutated[m.Slot] = true
		}
	}

	for i := range ec.res.Accounts {
		ra := &ec.res.Accounts[i]
		req := ra.Req
		if ra.Authority || !mutated[req.Name] {
			continue
		}
		field := ownerField(req)
		if field == "" {
			continue
		}
		if hasOwnerBinding(ec, ra) {
			continue
		}
		findings = append(findings, ec.finding(
			model.RuleOwnershipConstraint,
			model.SeverityWarning,
			[]string{req.Name},
			fmt.Sprintf("slot %q stores an owner field %q but is mutated without a has_one or owner-equality binding", req.Name, field),
			model.RemAddRelationalConstraint,
		))
	}

	return findings
}

func ownerField(req *model.AccountRequirement) string {
	for _, name := range ownerFieldNames {
		if f := req.Field(name); f != nil && f.Type == model.FieldPubkey {
			return name
		}
	}
	return ""
}

func hasOwnerBinding(ec *evalContext, ra *resolve.ResolvedAccount) bool {
	for _, c := range ra.Req.Constraints {
		if _, ok := c.(model.HasOne); ok {
			return true
		}
	}
	for _, e := range ec.graph.Of(ra.Req.Name) {
		if e.Kind == relation.KindOwnerEquality {
			return true
		}
	}
	return false
}

func orderedPair(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}
