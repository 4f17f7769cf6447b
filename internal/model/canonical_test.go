package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalSortsKeys(t *testing.T) {
	obj := map[string]any{
		"zeta":  int64(1),
		"alpha": "x",
		"mid":   true,
	}

	data, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":"x","mid":true,"zeta":1}`, string(data))
}

func TestMarshalCanonicalNoHTMLEscaping(t *testing.T) {
	data, err := MarshalCanonical(map[string]any{"expr": "a < b && c.mint == d.mint"})
	require.NoError(t, err)
	assert.Equal(t, `{"expr":"a < b && c.mint == d.mint"}`, string(data))
}

func TestMarshalCanonicalRejectsFloats(t *testing.T) {
	_, err := MarshalCanonical(map[string]any{"space": 1.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "float")
}

func TestMarshalCanonicalRejectsNull(t *testing.T) {
	_, err := MarshalCanonical(map[string]any{"slot": nil})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "null")
}

func TestMarshalCanonicalEscapesControlCharacters(t *testing.T) {
	data, err := MarshalCanonical("line\nbreak\ttab\x01")
	require.NoError(t, err)
	assert.Equal(t, `"line\nbreak\ttab\u0001"`, string(data))
}

func TestMarshalCanonicalDeterministic(t *testing.T) {
	obj := map[string]any{
		"accounts": []any{"vault", "authority"},
		"name":     "withdraw",
		"init":     false,
	}

	first, err := MarshalCanonical(obj)
	require.NoError(t, err)
	second, err := MarshalCanonical(obj)
	require.NoError(t, err)

	assert.Equal(t, first, second, "canonical form must be byte-identical across calls")
}

func TestFindingKeyDeterminism(t *testing.T) {
	f := Finding{
		Rule:        RuleSignerAuthority,
		Severity:    SeverityCritical,
		Instruction: "withdraw",
		Slots:       []string{"vault", "authority"},
		Message:     "no signer bound to vault",
		Remediation: RemAddSignerCheck,
	}

	key1, err := FindingKey(f)
	require.NoError(t, err)
	key2, err := FindingKey(f)
	require.NoError(t, err)

	assert.Equal(t, key1, key2, "FindingKey must be deterministic")
	assert.Len(t, key1, 64, "SHA-256 hex is 64 characters")
}

func TestFindingKeyIgnoresSlotOrderAndMessage(t *testing.T) {
	base := Finding{
		Rule:        RuleOwnershipConstraint,
		Severity:    SeverityCritical,
		Instruction: "transfer_points",
		Slots:       []string{"from", "to"},
		Message:     "missing mint equality",
	}

	reordered := base
	reordered.Slots = []string{"to", "from"}
	reordered.Message = "different wording, same violation"

	assert.Equal(t, MustFindingKey(base), MustFindingKey(reordered),
		"slot order and message must not affect identity")
}

func TestFindingKeyChangesWithIdentity(t *testing.T) {
	base := Finding{
		Rule:        RuleTypedAccount,
		Instruction: "update",
		Slots:       []string{"target"},
	}

	otherRule := base
	otherRule.Rule = RuleSignerAuthority
	otherInst := base
	otherInst.Instruction = "close"
	otherSlots := base
	otherSlots.Slots = []string{"other"}

	assert.NotEqual(t, MustFindingKey(base), MustFindingKey(otherRule))
	assert.NotEqual(t, MustFindingKey(base), MustFindingKey(otherInst))
	assert.NotEqual(t, MustFindingKey(base), MustFindingKey(otherSlots))
}

func TestSeedsKeyOrderSignificant(t *testing.T) {
	k1 := MustSeedsKey([]string{"vault", "user"})
	k2 := MustSeedsKey([]string{"user", "vault"})

	assert.NotEqual(t, k1, k2, "seed order changes the derived address")
	assert.Len(t, k1, 64)
}
