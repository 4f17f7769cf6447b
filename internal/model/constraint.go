package model

// Constraint is a sealed interface over the canonical attributes one
// account requirement carries. Only SeedsBump, HasOne, OwnerCheck, Close,
// and RawExpr implement it.
//
// Constraints are append-only facts attached at model construction time.
// The resolver folds over them to build a derived view; it never mutates
// the constraint list.
type Constraint interface {
	constraint() // Sealed - only these types implement it

	// ReferencedSlots returns the slot names this constraint requires to
	// exist in the same instruction. A reference that does not resolve is
	// a ModelError, not a finding.
	ReferencedSlots() []string
}

// BumpSource identifies where a derived address's bump value comes from.
type BumpSource string

const (
	// BumpCanonical means the bump is recomputed via find_program_address.
	BumpCanonical BumpSource = "canonical"

	// BumpStored means the bump is read from a stored account field.
	BumpStored BumpSource = "stored"

	// BumpArgument means the bump is taken from instruction arguments.
	// Caller-supplied bumps are weaker than stored ones but are still a
	// declared binding; rules only distinguish stored vs not-persisted.
	BumpArgument BumpSource = "argument"
)

// ValidBumpSources defines the allowed bump sources.
var ValidBumpSources = map[BumpSource]bool{
	BumpCanonical: true,
	BumpStored:    true,
	BumpArgument:  true,
}

// SeedsBump declares a derived-address binding: the account's address is
// computed from the seed literals plus a bump.
//
// A seed literal equal to another slot's name binds that slot's key into
// the derivation. Literals that match no slot are plain byte literals,
// never an error.
type SeedsBump struct {
	Seeds []string   `json:"seeds"`
	Bump  BumpSource `json:"bump"`
}

func (SeedsBump) constraint() {}

// ReferencedSlots returns nil: seed literals are resolved by membership
// against the instruction, they are not hard references.
func (SeedsBump) ReferencedSlots() []string { return nil }

// HasOne declares equality between a stored field on this account and the
// key of another slot in the same instruction.
type HasOne struct {
	Target string `json:"target"`
}

func (HasOne) constraint() {}

func (c HasOne) ReferencedSlots() []string { return []string{c.Target} }

// OwnerCheck declares that the account must be owned by the named program.
// The program is an identity literal, not a slot reference.
type OwnerCheck struct {
	Program string `json:"program"`
}

func (OwnerCheck) constraint() {}

func (OwnerCheck) ReferencedSlots() []string { return nil }

// Close declares that the account is closed and its lamports refunded to
// the named slot.
type Close struct {
	RefundTo string `json:"refund_to"`
}

func (Close) constraint() {}

func (c Close) ReferencedSlots() []string { return []string{c.RefundTo} }

// PredKind classifies what a raw boolean expression asserts. The model
// extractor tags the predicate; the engine treats the tag as authoritative
// and does not re-parse the expression text.
type PredKind string

const (
	PredOther         PredKind = "other"
	PredEmptiness     PredKind = "emptiness"
	PredOwnerEquality PredKind = "owner_equality"
	PredMintEquality  PredKind = "mint_equality"
)

// ValidPredKinds defines the allowed predicate kinds.
var ValidPredKinds = map[PredKind]bool{
	PredOther:         true,
	PredEmptiness:     true,
	PredOwnerEquality: true,
	PredMintEquality:  true,
}

// FieldRef names a stored field on a slot, e.g. {Slot: "from", Field: "mint"}.
// Field may be empty when the reference is to the slot's key itself.
type FieldRef struct {
	Slot  string `json:"slot"`
	Field string `json:"field,omitempty"`
}

// RawExpr is a free-form boolean predicate constraint. Expr is kept for
// diagnostics only; Pred and Refs carry the structure rules consume.
type RawExpr struct {
	Expr string     `json:"expr"`
	Pred PredKind   `json:"pred"`
	Refs []FieldRef `json:"refs,omitempty"`
}

func (RawExpr) constraint() {}

func (c RawExpr) ReferencedSlots() []string {
	slots := make([]string, 0, len(c.Refs))
	for _, ref := range c.Refs {
		slots = append(slots, ref.Slot)
	}
	return slots
}
