package model

import "slices"

// RuleID identifies one policy rule. IDs are assigned so that ascending
// lexical order matches the documented rule numbering; reports sort by
// severity first and RuleID second.
type RuleID string

const (
	// RuleSignerAuthority - state-changing effects need an authorizing signer.
	RuleSignerAuthority RuleID = "ACC001"

	// RuleTypedAccount - accounts used by effects must be type-safe.
	RuleTypedAccount RuleID = "ACC002"

	// RuleOwnershipConstraint - transfer pairs and owned accounts need
	// relational constraints.
	RuleOwnershipConstraint RuleID = "ACC003"

	// RulePDADerivation - owner-scoped init accounts need signer-bound
	// seeds and a persisted bump.
	RulePDADerivation RuleID = "ACC004"

	// RuleInputValidation - arithmetic, indexing, timestamps, and space
	// calculations must be checked.
	RuleInputValidation RuleID = "ACC005"

	// RuleReinitGuard - repeated init paths over identical seeds need an
	// already-initialized guard.
	RuleReinitGuard RuleID = "ACC006"
)

// AllRuleIDs lists every rule in evaluation order.
var AllRuleIDs = []RuleID{
	RuleSignerAuthority,
	RuleTypedAccount,
	RuleOwnershipConstraint,
	RulePDADerivation,
	RuleInputValidation,
	RuleReinitGuard,
}

// ValidRuleID reports whether the id names a known rule.
func ValidRuleID(id RuleID) bool {
	return slices.Contains(AllRuleIDs, id)
}

// Severity ranks a finding. Critical outranks Warning outranks Info.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// ValidSeverities defines the allowed severities.
var ValidSeverities = map[Severity]bool{
	SeverityCritical: true,
	SeverityWarning:  true,
	SeverityInfo:     true,
}

// Rank returns the numeric rank of a severity, higher = more severe.
// Unknown severities rank below Info so malformed overrides sort last
// instead of masquerading as critical.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	}
	return 0
}

// Remediation is the enumerated fix category attached to a finding.
// Categories are identifiers, not free text; the reporting layer maps them
// to guidance.
type Remediation string

const (
	RemAddSignerCheck              Remediation = "AddSignerCheck"
	RemUseTypedAccountOrDocument   Remediation = "UseTypedAccountOrDocument"
	RemAddRelationalConstraint     Remediation = "AddRelationalConstraint"
	RemAddSeedsBinding             Remediation = "AddSeedsBinding"
	RemPersistBump                 Remediation = "PersistBump"
	RemUseCheckedArithmetic        Remediation = "UseCheckedArithmetic"
	RemAddBoundsCheck              Remediation = "AddBoundsCheck"
	RemValidateTimeOrdering        Remediation = "ValidateTimeOrdering"
	RemFixSpaceCalculation         Remediation = "FixSpaceCalculation"
	RemGuardAgainstReinitialization Remediation = "GuardAgainstReinitialization"
)

// Finding is one structured diagnostic emitted by the rule engine.
//
// Every finding carries provenance: Slots names real account requirements
// from the instruction the finding was derived from, or, when the
// violation lives in an effect with no slot reference (a timestamp
// comparison), Effect describes that effect instead. Synthetic findings
// without provenance are forbidden so the report stays auditable.
type Finding struct {
	Rule        RuleID      `json:"rule"`
	Severity    Severity    `json:"severity"`
	Instruction string      `json:"instruction"`
	Slots       []string    `json:"slots,omitempty"`
	Effect      string      `json:"effect,omitempty"`
	Message     string      `json:"message"`
	Remediation Remediation `json:"remediation"`
}

// SortedSlots returns the slot set sorted and deduplicated. Used for
// content addressing and deterministic output.
func (f *Finding) SortedSlots() []string {
	slots := slices.Clone(f.Slots)
	slices.Sort(slots)
	return slices.Compact(slots)
}

// CompareFindings orders findings severity-descending, then RuleID
// ascending, then slot set ascending, then message ascending. Total order:
// two findings comparing equal are exact duplicates up to message.
func CompareFindings(a, b Finding) int {
	if d := b.Severity.Rank() - a.Severity.Rank(); d != 0 {
		return d
	}
	if d := compareStrings(string(a.Rule), string(b.Rule)); d != 0 {
		return d
	}
	if d := slices.Compare(a.SortedSlots(), b.SortedSlots()); d != 0 {
		return d
	}
	if d := compareStrings(a.Effect, b.Effect); d != 0 {
		return d
	}
	return compareStrings(a.Message, b.Message)
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
