package model

// Effect is a sealed interface over the abstracted operations an
// instruction body performs. Effects describe WHAT the instruction does,
// independent of which account enforces it; rules pair them against the
// resolved account requirements.
type Effect interface {
	effect() // Sealed - only these types implement it

	// ReferencedSlots returns the slot names this effect requires to exist
	// in the same instruction. A dangling reference is a ModelError.
	ReferencedSlots() []string
}

// BumpField is the conventional field name for a persisted bump. A
// Mutate effect with Field == BumpField on an init account counts as the
// companion write that persists the derived bump.
const BumpField = "bump"

// Mutate is a state mutation of the named slot. Field narrows the write to
// one stored field; empty means the whole account.
type Mutate struct {
	Slot  string `json:"slot"`
	Field string `json:"field,omitempty"`
}

func (Mutate) effect() {}

func (e Mutate) ReferencedSlots() []string { return []string{e.Slot} }

// Transfer moves value from one slot to another.
type Transfer struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (Transfer) effect() {}

func (e Transfer) ReferencedSlots() []string { return []string{e.From, e.To} }

// CloseAccount closes the named slot.
type CloseAccount struct {
	Slot string `json:"slot"`
}

func (CloseAccount) effect() {}

func (e CloseAccount) ReferencedSlots() []string { return []string{e.Slot} }

// Invoke is a cross-program invocation through the named program slot.
type Invoke struct {
	Program string `json:"program"`
}

func (Invoke) effect() {}

func (e Invoke) ReferencedSlots() []string { return []string{e.Program} }

// Arithmetic is an arithmetic operation. Checked means overflow/underflow
// is detected and surfaced as a failure rather than wrapping silently.
//
// Target names the stored field the result lands in. An empty Target.Slot
// means the value never reaches account state (pure local computation).
type Arithmetic struct {
	Op      string   `json:"op"`
	Checked bool     `json:"checked"`
	Target  FieldRef `json:"target,omitzero"`
}

func (Arithmetic) effect() {}

func (e Arithmetic) ReferencedSlots() []string {
	if e.Target.Slot == "" {
		return nil
	}
	return []string{e.Target.Slot}
}

// IndexedAccess reads or writes an element of a stored sequence on the
// collection slot, using an index from the named source (typically an
// instruction argument). BoundsKnown means the index is checked against
// the sequence length before use.
type IndexedAccess struct {
	Collection  string `json:"collection"`
	IndexSource string `json:"index_source"`
	BoundsKnown bool   `json:"bounds_known"`
}

func (IndexedAccess) effect() {}

func (e IndexedAccess) ReferencedSlots() []string { return []string{e.Collection} }

// TimestampCompare compares two time sources. LHS and RHS are free-form
// source descriptions (e.g. "clock.unix_timestamp", "args.release_time"),
// not slot references. Checked means the ordering is validated and a
// violation is surfaced as a failure.
type TimestampCompare struct {
	LHS     string `json:"lhs"`
	RHS     string `json:"rhs"`
	Checked bool   `json:"checked"`
}

func (TimestampCompare) effect() {}

func (TimestampCompare) ReferencedSlots() []string { return nil }
