package engine

import (
	"fmt"

	"github.com/sealint/sealint/internal/model"
	"github.com/sealint/sealint/internal/relation"
)

// signerAuthorityRule checks that every state-changing effect is covered
// by a signer bound to the affected account.
//
// For a Mutate, Transfer, or CloseAccount effect on slot S, some account
// in the instruction must assert cryptographic authority (signer kind)
// AND be relationally tied to S: a has_one in either direction, S's seeds
// naming the signer, or an owner-equality edge. A signer that merely
// exists in the instruction without a binding to S authorizes nothing -
// that is exactly the missing-signer-check bug.
type signerAuthorityRule struct{}

func (signerAuthorityRule) Info() RuleInfo {
	return RuleInfo{
		ID:          model.RuleSignerAuthority,
		Title:       "signer authority",
		Description: "state-changing effects require a signer bound to the affected account",
	}
}

func (signerAuthorityRule) Evaluate(ec *evalContext) []model.Finding {
	var findings []model.Finding
	flagged := make(map[string]bool)

	for _, eff := range ec.inst.Effects {
		slot, verb, ok := authorityTarget(eff)
		if !ok || flagged[slot] {
			continue
		}
		if authorized(ec, slot) {
			continue
		}
		flagged[slot] = true
		findings = append(findings, ec.finding(
			model.RuleSignerAuthority,
			model.SeverityCritical,
			[]string{slot},
			fmt.Sprintf("instruction %s %s %q without any signer bound to it", ec.inst.Name, verb, slot),
			model.RemAddSignerCheck,
		))
	}

	return findings
}

// authorityTarget returns the slot whose owner must authorize the effect.
// For transfers that is the source: value leaves the from side.
func authorityTarget(eff model.Effect) (slot, verb string, ok bool) {
	switch e := eff.(type) {
	case model.Mutate:
		return e.Slot, "mutates", true
	case model.Transfer:
		return e.From, "transfers value from", true
	case model.CloseAccount:
		return e.Slot, "closes", true
	}
	return "", "", false
}

// authorized reports whether some signer in the instruction is bound to
// the slot. A slot that is itself a signer is trivially authorized.
func authorized(ec *evalContext, slot string) bool {
	target := ec.res.Account(slot)
	if target == nil {
		return false
	}
	if target.Authority {
		return true
	}

	for i := range ec.res.Accounts {
		ra := &ec.res.Accounts[i]
		if !ra.Authority {
			continue
		}
		if ra.BoundTo(slot) || target.BoundTo(ra.Req.Name) {
			return true
		}
		if ec.graph.HasKind(ra.Req.Name, slot, relation.KindOwnerEquality) {
			return true
		}
	}
	return false
}
