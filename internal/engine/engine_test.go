package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sealint/sealint/internal/model"
	"github.com/sealint/sealint/internal/resolve"
	"github.com/sealint/sealint/internal/testutil"
)

func mustEngine(t *testing.T, program []model.Instruction, opts Options) *Engine {
	t.Helper()
	e, err := New(program, opts)
	require.NoError(t, err)
	return e
}

func evaluate(t *testing.T, e *Engine, inst model.Instruction) []model.Finding {
	t.Helper()
	findings, err := e.Evaluate(&inst)
	require.NoError(t, err)
	return findings
}

func rulesFired(findings []model.Finding) map[model.RuleID]int {
	out := make(map[model.RuleID]int)
	for _, f := range findings {
		out[f.Rule]++
	}
	return out
}

func TestEvaluate_UnsignedTransferIsCritical(t *testing.T) {
	inst := testutil.UnsignedWithdraw()
	e := mustEngine(t, []model.Instruction{inst}, Options{})

	findings := evaluate(t, e, inst)

	var signer []model.Finding
	for _, f := range findings {
		if f.Rule == model.RuleSignerAuthority {
			signer = append(signer, f)
		}
	}
	require.Len(t, signer, 1)
	assert.Equal(t, model.SeverityCritical, signer[0].Severity)
	assert.Equal(t, []string{"vault"}, signer[0].SortedSlots())
	assert.Equal(t, model.RemAddSignerCheck, signer[0].Remediation)
}

func TestEvaluate_BoundSignerSuppressesAuthorityFinding(t *testing.T) {
	inst := testutil.SignedWithdraw()
	e := mustEngine(t, []model.Instruction{inst}, Options{})

	findings := evaluate(t, e, inst)

	fired := rulesFired(findings)
	assert.Zero(t, fired[model.RuleSignerAuthority])
	assert.Zero(t, fired[model.RuleOwnershipConstraint])
}

func TestEvaluate_SignerHeldButUnbound(t *testing.T) {
	// A signer exists but nothing ties it to the mutated account.
	inst := model.Instruction{
		Name: "withdraw",
		Accounts: []model.AccountRequirement{
			{Name: "anyone", Kind: model.KindSigner},
			{Name: "vault", Kind: model.KindTypedData, Mutable: true},
			{Name: "destination", Kind: model.KindTypedData, Mutable: true},
		},
		Effects: []model.Effect{
			model.Transfer{From: "vault", To: "destination"},
		},
	}
	e := mustEngine(t, []model.Instruction{inst}, Options{})

	findings := evaluate(t, e, inst)
	fired := rulesFired(findings)
	assert.Equal(t, 1, fired[model.RuleSignerAuthority])
}

func TestEvaluate_RawAccountMutation(t *testing.T) {
	inst := testutil.RawMutation()
	e := mustEngine(t, []model.Instruction{inst}, Options{})

	findings := evaluate(t, e, inst)

	var f *model.Finding
	for i := range findings {
		if findings[i].Rule == model.RuleTypedAccount {
			f = &findings[i]
		}
	}
	require.NotNil(t, f)
	assert.Equal(t, model.SeverityCritical, f.Severity)
	assert.Equal(t, []string{"state"}, f.SortedSlots())
}

func TestEvaluate_UncheckedAccountSeverityDependsOnMitigation(t *testing.T) {
	build := func(constraints []model.Constraint, documented bool) model.Instruction {
		return model.Instruction{
			Name: "update",
			Accounts: []model.AccountRequirement{
				{Name: "admin", Kind: model.KindSigner},
				{
					Name: "state", Kind: model.KindUnchecked, Mutable: true,
					Constraints: append([]model.Constraint{model.HasOne{Target: "admin"}}, constraints...),
					Documented:  documented,
				},
			},
			Effects: []model.Effect{model.Mutate{Slot: "state", Field: "value"}},
		}
	}

	tests := []struct {
		name        string
		constraints []model.Constraint
		documented  bool
		want        int
	}{
		{"bare unchecked warns", nil, false, 1},
		{"owner check alone warns", []model.Constraint{model.OwnerCheck{Program: "token"}}, false, 1},
		{"documented alone warns", nil, true, 1},
		{"owner check and documented is accepted", []model.Constraint{model.OwnerCheck{Program: "token"}}, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst := build(tt.constraints, tt.documented)
			e := mustEngine(t, []model.Instruction{inst}, Options{})
			fired := rulesFired(evaluate(t, e, inst))
			assert.Equal(t, tt.want, fired[model.RuleTypedAccount])
			for _, f := range evaluate(t, e, inst) {
				if f.Rule == model.RuleTypedAccount {
					assert.Equal(t, model.SeverityWarning, f.Severity)
				}
			}
		})
	}
}

func TestEvaluate_TransferPairWithoutMintRelation(t *testing.T) {
	inst := model.Instruction{
		Name: "swap",
		Accounts: []model.AccountRequirement{
			{Name: "authority", Kind: model.KindSigner},
			{
				Name: "source", Kind: model.KindTypedData, Mutable: true,
				Constraints: []model.Constraint{model.HasOne{Target: "authority"}},
			},
			{Name: "sink", Kind: model.KindTypedData, Mutable: true},
		},
		Effects: []model.Effect{model.Transfer{From: "source", To: "sink"}},
	}
	e := mustEngine(t, []model.Instruction{inst}, Options{})

	findings := evaluate(t, e, inst)

	var f *model.Finding
	for i := range findings {
		if findings[i].Rule == model.RuleOwnershipConstraint {
			f = &findings[i]
		}
	}
	require.NotNil(t, f)
	assert.Equal(t, model.SeverityCritical, f.Severity)
	assert.Equal(t, []string{"sink", "source"}, f.SortedSlots())
}

func TestEvaluate_OwnerFieldWithoutBindingWarns(t *testing.T) {
	inst := model.Instruction{
		Name: "reassign",
		Accounts: []model.AccountRequirement{
			{Name: "admin", Kind: model.KindSigner},
			{
				Name: "record", Kind: model.KindTypedData, Mutable: true,
				Fields:      []model.FieldSpec{{Name: "owner", Type: model.FieldPubkey}},
				Constraints: []model.Constraint{model.RawExpr{Expr: "record.owner == admin.key", Pred: model.PredOwnerEquality, Refs: []model.FieldRef{{Slot: "record", Field: "owner"}, {Slot: "admin"}}}},
			},
		},
		Effects: []model.Effect{model.Mutate{Slot: "record", Field: "data"}},
	}
	// With the owner-equality predicate present, no warning.
	e := mustEngine(t, []model.Instruction{inst}, Options{})
	fired := rulesFired(evaluate(t, e, inst))
	assert.Zero(t, fired[model.RuleOwnershipConstraint])

	// Strip the predicate: the owner field is now unbound.
	inst.Accounts[1].Constraints = nil
	e = mustEngine(t, []model.Instruction{inst}, Options{})
	findings := evaluate(t, e, inst)
	fired = rulesFired(findings)
	require.Equal(t, 1, fired[model.RuleOwnershipConstraint])
	for _, f := range findings {
		if f.Rule == model.RuleOwnershipConstraint {
			assert.Equal(t, model.SeverityWarning, f.Severity)
		}
	}
}

func TestEvaluate_OwnerScopedInitWithoutSignerSeed(t *testing.T) {
	inst := testutil.UnscopedInit()
	e := mustEngine(t, []model.Instruction{inst}, Options{})

	findings := evaluate(t, e, inst)

	var f *model.Finding
	for i := range findings {
		if findings[i].Rule == model.RulePDADerivation {
			f = &findings[i]
		}
	}
	require.NotNil(t, f)
	assert.Equal(t, model.SeverityCritical, f.Severity)
	assert.Equal(t, model.RemAddSeedsBinding, f.Remediation)
	assert.Equal(t, []string{"position"}, f.SortedSlots())
}

func TestEvaluate_ScopedInitWithoutPersistedBumpWarns(t *testing.T) {
	inst := testutil.ScopedInit()
	// Drop the bump persistence effect.
	inst.Effects = inst.Effects[:1]
	e := mustEngine(t, []model.Instruction{inst}, Options{})

	findings := evaluate(t, e, inst)

	var f *model.Finding
	for i := range findings {
		if findings[i].Rule == model.RulePDADerivation {
			f = &findings[i]
		}
	}
	require.NotNil(t, f)
	assert.Equal(t, model.SeverityWarning, f.Severity)
	assert.Equal(t, model.RemPersistBump, f.Remediation)
}

func TestEvaluate_ScopedInitWithPersistedBumpIsClean(t *testing.T) {
	inst := testutil.ScopedInit()
	e := mustEngine(t, []model.Instruction{inst}, Options{})

	fired := rulesFired(evaluate(t, e, inst))
	assert.Zero(t, fired[model.RulePDADerivation])
}

func TestEvaluate_UncheckedArithmeticOnAccountState(t *testing.T) {
	inst := testutil.UncheckedArithmetic()
	e := mustEngine(t, []model.Instruction{inst}, Options{})

	findings := evaluate(t, e, inst)

	var f *model.Finding
	for i := range findings {
		if findings[i].Rule == model.RuleInputValidation {
			f = &findings[i]
		}
	}
	require.NotNil(t, f)
	assert.Equal(t, model.SeverityCritical, f.Severity)
	assert.Equal(t, model.RemUseCheckedArithmetic, f.Remediation)
	assert.Equal(t, []string{"pool"}, f.SortedSlots())
}

func TestEvaluate_CheckedArithmeticIsClean(t *testing.T) {
	inst := testutil.UncheckedArithmetic()
	inst.Effects[0] = model.Arithmetic{Op: "add", Checked: true, Target: model.FieldRef{Slot: "pool", Field: "rewards"}}
	e := mustEngine(t, []model.Instruction{inst}, Options{})

	fired := rulesFired(evaluate(t, e, inst))
	assert.Zero(t, fired[model.RuleInputValidation])
}

func TestEvaluate_TimestampCompareCarriesEffectProvenance(t *testing.T) {
	inst := model.Instruction{
		Name: "claim",
		Accounts: []model.AccountRequirement{
			{Name: "user", Kind: model.KindSigner},
			{
				Name: "stake", Kind: model.KindTypedData, Mutable: true,
				Constraints: []model.Constraint{model.HasOne{Target: "user"}},
			},
		},
		Effects: []model.Effect{
			model.TimestampCompare{LHS: "clock.unix_timestamp", RHS: "stake.unlock_at", Checked: false},
			model.Mutate{Slot: "stake", Field: "claimed"},
		},
	}
	e := mustEngine(t, []model.Instruction{inst}, Options{})

	findings := evaluate(t, e, inst)

	var f *model.Finding
	for i := range findings {
		if findings[i].Rule == model.RuleInputValidation {
			f = &findings[i]
		}
	}
	require.NotNil(t, f)
	assert.Equal(t, model.SeverityWarning, f.Severity)
	assert.Empty(t, f.Slots)
	assert.Equal(t, "timestamp_compare(clock.unix_timestamp, stake.unlock_at)", f.Effect)
}

func TestEvaluate_VariableFieldWithoutMaxLen(t *testing.T) {
	inst := model.Instruction{
		Name: "register",
		Accounts: []model.AccountRequirement{
			{Name: "user", Kind: model.KindSigner},
			{
				Name: "profile", Kind: model.KindTypedData, Mutable: true,
				Init: true, Space: 128,
				Fields: []model.FieldSpec{
					{Name: "name", Type: model.FieldString},
					{Name: "bio", Type: model.FieldString},
				},
				Constraints: []model.Constraint{model.SeedsBump{Seeds: []string{"profile", "user"}, Bump: model.BumpCanonical}},
			},
		},
		Effects: []model.Effect{
			model.Mutate{Slot: "profile", Field: "name"},
			model.Mutate{Slot: "profile", Field: model.BumpField},
		},
	}
	e := mustEngine(t, []model.Instruction{inst}, Options{})

	findings := evaluate(t, e, inst)

	var space []model.Finding
	for _, f := range findings {
		if f.Remediation == model.RemFixSpaceCalculation {
			space = append(space, f)
		}
	}
	// One finding for the slot, not one per unbounded field.
	require.Len(t, space, 1)
	assert.Equal(t, model.SeverityCritical, space[0].Severity)

	// Bounding every variable field silences it.
	inst.Accounts[1].Fields = []model.FieldSpec{
		{Name: "name", Type: model.FieldString, MaxLen: 32},
		{Name: "bio", Type: model.FieldString, MaxLen: 256},
	}
	e = mustEngine(t, []model.Instruction{inst}, Options{})
	for _, f := range evaluate(t, e, inst) {
		assert.NotEqual(t, model.RemFixSpaceCalculation, f.Remediation)
	}
}

func TestEvaluate_ReinitWithoutEmptinessGuard(t *testing.T) {
	first := testutil.ScopedInit()
	second := testutil.ScopedInit()
	second.Name = "reopen_position"

	e := mustEngine(t, []model.Instruction{first, second}, Options{})

	// The declaration-order-first init site is not flagged.
	fired := rulesFired(evaluate(t, e, first))
	assert.Zero(t, fired[model.RuleReinitGuard])

	// The later instruction initializing the same seeds is.
	findings := evaluate(t, e, second)
	var f *model.Finding
	for i := range findings {
		if findings[i].Rule == model.RuleReinitGuard {
			f = &findings[i]
		}
	}
	require.NotNil(t, f)
	assert.Equal(t, model.SeverityCritical, f.Severity)
	assert.Contains(t, f.Message, "open_position")

	// An emptiness predicate on the account is an accepted guard.
	second.Accounts[1].Constraints = append(second.Accounts[1].Constraints, model.RawExpr{
		Expr: "position.owner == default",
		Pred: model.PredEmptiness,
		Refs: []model.FieldRef{{Slot: "position", Field: "owner"}},
	})
	e = mustEngine(t, []model.Instruction{first, second}, Options{})
	fired = rulesFired(evaluate(t, e, second))
	assert.Zero(t, fired[model.RuleReinitGuard])
}

func TestEvaluate_FindingsAreDeterministicallyOrdered(t *testing.T) {
	inst := testutil.UnsignedWithdraw()
	inst.Effects = append(inst.Effects,
		model.Arithmetic{Op: "sub", Checked: false, Target: model.FieldRef{Slot: "vault", Field: "balance"}},
	)
	e := mustEngine(t, []model.Instruction{inst}, Options{})

	first := evaluate(t, e, inst)
	require.NotEmpty(t, first)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, evaluate(t, e, inst))
	}
	for i := 1; i < len(first); i++ {
		assert.LessOrEqual(t, model.CompareFindings(first[i-1], first[i]), 0)
	}
}

func TestEvaluate_ModelErrorHasNoFindings(t *testing.T) {
	inst := model.Instruction{
		Name: "broken",
		Accounts: []model.AccountRequirement{
			{
				Name: "state", Kind: model.KindTypedData, Mutable: true,
				Constraints: []model.Constraint{model.HasOne{Target: "ghost"}},
			},
		},
		Effects: []model.Effect{model.Mutate{Slot: "state", Field: "value"}},
	}
	e := mustEngine(t, []model.Instruction{inst}, Options{})

	findings, err := e.Evaluate(&inst)
	require.Error(t, err)
	assert.Nil(t, findings)

	me := resolve.AsModelError(err)
	require.NotNil(t, me)
	assert.Equal(t, resolve.ErrCodeDanglingConstraint, me.Code)
}

func TestEvaluate_DisabledRuleProducesNothing(t *testing.T) {
	inst := testutil.UnsignedWithdraw()
	e := mustEngine(t, []model.Instruction{inst}, Options{
		DisabledRules: []model.RuleID{model.RuleSignerAuthority},
	})

	fired := rulesFired(evaluate(t, e, inst))
	assert.Zero(t, fired[model.RuleSignerAuthority])
	// Other rules still run.
	assert.NotZero(t, fired[model.RuleOwnershipConstraint])
	assert.False(t, e.Enabled(model.RuleSignerAuthority))
	assert.True(t, e.Enabled(model.RuleOwnershipConstraint))
}

func TestEvaluate_SeverityOverrideApplies(t *testing.T) {
	inst := testutil.UnsignedWithdraw()
	e := mustEngine(t, []model.Instruction{inst}, Options{
		SeverityOverrides: map[model.RuleID]model.Severity{
			model.RuleSignerAuthority: model.SeverityInfo,
		},
	})

	for _, f := range evaluate(t, e, inst) {
		if f.Rule == model.RuleSignerAuthority {
			assert.Equal(t, model.SeverityInfo, f.Severity)
		}
	}
}

func TestNew_RejectsInvalidOptions(t *testing.T) {
	_, err := New(nil, Options{DisabledRules: []model.RuleID{"ACC999"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ACC999")

	_, err = New(nil, Options{SeverityOverrides: map[model.RuleID]model.Severity{
		model.RuleSignerAuthority: "catastrophic",
	}})
	require.Error(t, err)
}

func TestRules_ListsFullRuleSetInOrder(t *testing.T) {
	e := mustEngine(t, nil, Options{DisabledRules: []model.RuleID{model.RuleReinitGuard}})

	infos := e.Rules()
	require.Len(t, infos, len(model.AllRuleIDs))
	for i, info := range infos {
		assert.Equal(t, model.AllRuleIDs[i], info.ID)
		assert.NotEmpty(t, info.Title)
		assert.NotEmpty(t, info.Description)
	}
}
