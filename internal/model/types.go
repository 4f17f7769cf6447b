package model

// AccountKind classifies how an account slot is declared by the program.
type AccountKind string

const (
	// KindRaw is a completely untyped account: no discriminator check,
	// no owner check. The program dereferences its data blindly.
	KindRaw AccountKind = "raw"

	// KindTypedData is a deserialized, discriminator-checked data account.
	KindTypedData AccountKind = "typed_data"

	// KindSigner asserts the transaction was signed by this account's key.
	KindSigner AccountKind = "signer"

	// KindTypedProgram is a program account validated against a known
	// program identity (e.g. the token program).
	KindTypedProgram AccountKind = "typed_program"

	// KindUnchecked is an explicitly unchecked account. It is only
	// considered safe when an owner check and a safety annotation are
	// both present; the resolver enforces that pairing.
	KindUnchecked AccountKind = "unchecked"
)

// ValidAccountKinds defines the allowed account kinds.
var ValidAccountKinds = map[AccountKind]bool{
	KindRaw:          true,
	KindTypedData:    true,
	KindSigner:       true,
	KindTypedProgram: true,
	KindUnchecked:    true,
}

// FieldType classifies a stored field declared on a data account.
type FieldType string

const (
	FieldU64    FieldType = "u64"
	FieldI64    FieldType = "i64"
	FieldPubkey FieldType = "pubkey"
	FieldBool   FieldType = "bool"
	FieldString FieldType = "string"
	FieldBytes  FieldType = "bytes"
	FieldVec    FieldType = "vec"
)

// ValidFieldTypes defines the allowed field types.
var ValidFieldTypes = map[FieldType]bool{
	FieldU64:    true,
	FieldI64:    true,
	FieldPubkey: true,
	FieldBool:   true,
	FieldString: true,
	FieldBytes:  true,
	FieldVec:    true,
}

// VariableLength reports whether the field type has no fixed byte size.
func (t FieldType) VariableLength() bool {
	switch t {
	case FieldString, FieldBytes, FieldVec:
		return true
	}
	return false
}

// FieldSpec describes one stored field declared on a data account.
//
// MaxLen is only meaningful for variable-length types: a value > 0 means
// the program separately enforces a maximum length for the field, 0 means
// no bound is enforced.
type FieldSpec struct {
	Name   string    `json:"name"`
	Type   FieldType `json:"type"`
	MaxLen int64     `json:"max_len,omitempty"`
}

// AccountRequirement is one declared account slot within an instruction.
//
// Space is the declared byte capacity for init accounts; 0 means
// undeclared. Documented models the presence (not the quality) of a
// safety annotation explaining why an unchecked account is acceptable.
type AccountRequirement struct {
	Name        string       `json:"name"`
	Kind        AccountKind  `json:"kind"`
	Mutable     bool         `json:"mutable,omitempty"`
	Init        bool         `json:"init,omitempty"`
	Space       int64        `json:"space,omitempty"`
	Fields      []FieldSpec  `json:"fields,omitempty"`
	Constraints []Constraint `json:"constraints,omitempty"`
	Documented  bool         `json:"documented,omitempty"`
}

// Field returns the declared field with the given name, or nil.
func (r *AccountRequirement) Field(name string) *FieldSpec {
	for i := range r.Fields {
		if r.Fields[i].Name == name {
			return &r.Fields[i]
		}
	}
	return nil
}

// SeedsBump returns the account's seeds constraint, or nil if none is
// declared. At most one seeds constraint per account is meaningful; the
// first declared wins.
func (r *AccountRequirement) SeedsBump() *SeedsBump {
	for _, c := range r.Constraints {
		if sb, ok := c.(SeedsBump); ok {
			return &sb
		}
	}
	return nil
}

// HasOwnerCheck reports whether an owner check constraint is declared.
func (r *AccountRequirement) HasOwnerCheck() bool {
	for _, c := range r.Constraints {
		if _, ok := c.(OwnerCheck); ok {
			return true
		}
	}
	return false
}

// Instruction identifies one externally callable entry point.
//
// Accounts and Effects are in declaration order. The instruction owns its
// account requirements exclusively: the same AccountRequirement value never
// appears in two instructions, even when slot names coincide.
type Instruction struct {
	Name     string               `json:"name"`
	Accounts []AccountRequirement `json:"accounts"`
	Effects  []Effect             `json:"effects,omitempty"`
}

// Account returns the requirement with the given slot name, or nil.
func (in *Instruction) Account(name string) *AccountRequirement {
	for i := range in.Accounts {
		if in.Accounts[i].Name == name {
			return &in.Accounts[i]
		}
	}
	return nil
}

// HasSlot reports whether a slot with the given name is declared.
func (in *Instruction) HasSlot(name string) bool {
	return in.Account(name) != nil
}

// Signers returns the slot names of all signer-kind requirements, in
// declaration order.
func (in *Instruction) Signers() []string {
	var signers []string
	for i := range in.Accounts {
		if in.Accounts[i].Kind == KindSigner {
			signers = append(signers, in.Accounts[i].Name)
		}
	}
	return signers
}
