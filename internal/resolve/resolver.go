package resolve

import (
	"fmt"
	"slices"

	"github.com/sealint/sealint/internal/model"
)

// ResolvedAccount is the derived view of one account requirement.
type ResolvedAccount struct {
	Req *model.AccountRequirement

	// Authority is true when the slot asserts cryptographic authorization
	// (signer kind).
	Authority bool

	// Bindings lists the slots this account is cryptographically or
	// relationally tied to: has_one targets, slots named among seed
	// literals, and slots cited by owner-equality raw expressions.
	// Sorted and deduplicated.
	Bindings []string

	// TypeSafe is true when using this account cannot confuse one account
	// type for another: typed kinds are safe, raw is not, unchecked is
	// safe only with both an owner check and a safety annotation.
	TypeSafe bool

	// UnsafeUnchecked marks an unchecked account missing its owner check
	// or its safety annotation. Kept distinct from plain !TypeSafe so the
	// typed-account rule can grade the two cases differently.
	UnsafeUnchecked bool
}

// BoundTo reports whether slot is among this account's bindings.
func (ra *ResolvedAccount) BoundTo(slot string) bool {
	return slices.Contains(ra.Bindings, slot)
}

// Resolved is the per-instruction resolver output. It is a derived view:
// the underlying instruction is never mutated.
type Resolved struct {
	Instruction *model.Instruction
	Accounts    []ResolvedAccount
	ByName      map[string]*ResolvedAccount
}

// Account returns the resolved record for a slot name, or nil.
func (r *Resolved) Account(name string) *ResolvedAccount {
	return r.ByName[name]
}

// Resolve builds the resolved view for one instruction.
//
// Returns *ModelError when a constraint cites a slot absent from the
// instruction or when raw expressions form a reference cycle across
// accounts. On error the instruction has no usable resolved view.
func Resolve(inst *model.Instruction) (*Resolved, error) {
	// Structural pass first: every hard slot reference must resolve.
	for i := range inst.Accounts {
		req := &inst.Accounts[i]
		for _, c := range req.Constraints {
			for _, ref := range c.ReferencedSlots() {
				if !inst.HasSlot(ref) {
					return nil, &ModelError{
						Code:        ErrCodeDanglingConstraint,
						Instruction: inst.Name,
						Slot:        req.Name,
						Ref:         ref,
						Message:     fmt.Sprintf("constraint references undeclared slot %q", ref),
					}
				}
			}
		}
	}

	// Raw expression references form a directed graph; mutual references
	// would make binding resolution circular, so they are rejected here
	// rather than looped over.
	if err := checkReferenceCycles(inst); err != nil {
		return nil, err
	}

	res := &Resolved{
		Instruction: inst,
		Accounts:    make([]ResolvedAccount, len(inst.Accounts)),
		ByName:      make(map[string]*ResolvedAccount, len(inst.Accounts)),
	}

	for i := range inst.Accounts {
		res.Accounts[i] = resolveAccount(inst, &inst.Accounts[i])
		res.ByName[inst.Accounts[i].Name] = &res.Accounts[i]
	}

	return res, nil
}

// resolveAccount folds one account's constraint list into its resolved
// record. The fold is commutative: each constraint contributes
// independently to a set, and the set is sorted once at the end.
func resolveAccount(inst *model.Instruction, req *model.AccountRequirement) ResolvedAccount {
	bindings := make(map[string]bool)
	ownerChecked := false

	for _, c := range req.Constraints {
		switch con := c.(type) {
		case model.HasOne:
			bindings[con.Target] = true

		case model.SeedsBump:
			// Seed literals naming another slot bind that slot's key into
			// the derivation.
			for _, seed := range con.Seeds {
				if seed != req.Name && inst.HasSlot(seed) {
					bindings[seed] = true
				}
			}

		case model.OwnerCheck:
			ownerChecked = true

		case model.RawExpr:
			if con.Pred == model.PredOwnerEquality {
				for _, ref := range con.Refs {
					if ref.Slot != req.Name {
						bindings[ref.Slot] = true
					}
				}
			}

		case model.Close:
			// Refund destination is not an ownership binding.
		}
	}

	ra := ResolvedAccount{
		Req:       req,
		Authority: req.Kind == model.KindSigner,
		Bindings:  sortedSet(bindings),
	}

	switch req.Kind {
	case model.KindTypedData, model.KindSigner, model.KindTypedProgram:
		ra.TypeSafe = true
	case model.KindRaw:
		ra.TypeSafe = false
	case model.KindUnchecked:
		// Unchecked is tolerable only when the owner is pinned AND a
		// human wrote down why. Either one missing downgrades the slot
		// to unsafe unchecked.
		ra.TypeSafe = ownerChecked && req.Documented
		ra.UnsafeUnchecked = !ra.TypeSafe
	}

	return ra
}

// CheckEffects verifies every effect's slot references resolve.
//
// Kept separate from Resolve so the engine can report the precise failure
// class: a bad constraint and a bad effect are both ModelErrors but name
// different provenance.
func CheckEffects(inst *model.Instruction) error {
	for _, eff := range inst.Effects {
		for _, ref := range eff.ReferencedSlots() {
			if !inst.HasSlot(ref) {
				return &ModelError{
					Code:        ErrCodeDanglingEffect,
					Instruction: inst.Name,
					Ref:         ref,
					Message:     fmt.Sprintf("effect %T references undeclared slot %q", eff, ref),
				}
			}
		}
	}
	return nil
}

func sortedSet(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
