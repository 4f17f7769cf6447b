// Package testutil provides shared model fixtures for tests.
//
// The fixtures are small hand-built instructions that exercise one defect
// class each, plus Clean* counterparts with the defect repaired. Tests
// across packages reuse them so that engine, report, store, and cli tests
// agree on what "the vulnerable withdraw" looks like.
package testutil

import "github.com/sealint/sealint/internal/model"

// UnsignedWithdraw moves value out of a vault without any signer able to
// authorize the source account.
func UnsignedWithdraw() model.Instruction {
	return model.Instruction{
		Name: "withdraw",
		Accounts: []model.AccountRequirement{
			{Name: "vault", Kind: model.KindTypedData, Mutable: true},
			{Name: "destination", Kind: model.KindTypedData, Mutable: true},
		},
		Effects: []model.Effect{
			model.Transfer{From: "vault", To: "destination"},
		},
	}
}

// SignedWithdraw is UnsignedWithdraw with an authority signer bound to the
// vault via has_one, and the transfer pair related by a mint equality
// predicate.
func SignedWithdraw() model.Instruction {
	return model.Instruction{
		Name: "withdraw",
		Accounts: []model.AccountRequirement{
			{Name: "authority", Kind: model.KindSigner},
			{
				Name: "vault", Kind: model.KindTypedData, Mutable: true,
				Constraints: []model.Constraint{model.HasOne{Target: "authority"}},
			},
			{Name: "destination", Kind: model.KindTypedData, Mutable: true},
			{
				Name: "guard", Kind: model.KindTypedData,
				Constraints: []model.Constraint{model.RawExpr{
					Expr: "vault.mint == destination.mint",
					Pred: model.PredMintEquality,
					Refs: []model.FieldRef{{Slot: "vault", Field: "mint"}, {Slot: "destination", Field: "mint"}},
				}},
			},
		},
		Effects: []model.Effect{
			model.Transfer{From: "vault", To: "destination"},
		},
	}
}

// RawMutation mutates a raw, untyped account.
func RawMutation() model.Instruction {
	return model.Instruction{
		Name: "update",
		Accounts: []model.AccountRequirement{
			{Name: "admin", Kind: model.KindSigner},
			{
				Name: "state", Kind: model.KindRaw, Mutable: true,
				Constraints: []model.Constraint{model.HasOne{Target: "admin"}},
			},
		},
		Effects: []model.Effect{
			model.Mutate{Slot: "state", Field: "value"},
		},
	}
}

// UnscopedInit initializes a per-user record whose seeds never mention the
// user, in a program where the same record is initialized owner-scoped
// elsewhere.
func UnscopedInit() model.Instruction {
	return model.Instruction{
		Name: "open_position",
		Accounts: []model.AccountRequirement{
			{Name: "user", Kind: model.KindSigner},
			{
				Name: "position", Kind: model.KindTypedData, Mutable: true,
				Init: true, Space: 64,
				Constraints: []model.Constraint{model.SeedsBump{
					Seeds: []string{"position"},
					Bump:  model.BumpCanonical,
				}},
			},
		},
		Effects: []model.Effect{
			model.Mutate{Slot: "position", Field: "owner"},
		},
	}
}

// ScopedInit is UnscopedInit with the signer in the seed tuple and the
// bump persisted into account state.
func ScopedInit() model.Instruction {
	return model.Instruction{
		Name: "open_position",
		Accounts: []model.AccountRequirement{
			{Name: "user", Kind: model.KindSigner},
			{
				Name: "position", Kind: model.KindTypedData, Mutable: true,
				Init: true, Space: 64,
				Constraints: []model.Constraint{model.SeedsBump{
					Seeds: []string{"position", "user"},
					Bump:  model.BumpCanonical,
				}},
			},
		},
		Effects: []model.Effect{
			model.Mutate{Slot: "position", Field: "owner"},
			model.Mutate{Slot: "position", Field: model.BumpField},
		},
	}
}

// UncheckedArithmetic applies wrapping arithmetic to account state.
func UncheckedArithmetic() model.Instruction {
	return model.Instruction{
		Name: "accrue",
		Accounts: []model.AccountRequirement{
			{Name: "operator", Kind: model.KindSigner},
			{
				Name: "pool", Kind: model.KindTypedData, Mutable: true,
				Constraints: []model.Constraint{model.HasOne{Target: "operator"}},
			},
		},
		Effects: []model.Effect{
			model.Arithmetic{Op: "add", Checked: false, Target: model.FieldRef{Slot: "pool", Field: "rewards"}},
			model.Mutate{Slot: "pool", Field: "rewards"},
		},
	}
}

// Program returns a small multi-instruction program mixing clean and
// defective instructions.
func Program() []model.Instruction {
	return []model.Instruction{
		ScopedInit(),
		UnsignedWithdraw(),
		UncheckedArithmetic(),
	}
}
