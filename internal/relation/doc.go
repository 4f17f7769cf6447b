// Package relation builds the per-instruction account relation graph.
//
// A RelationEdge records a declared pairing between two account slots:
// a has_one target, a seed literal naming another slot, or a raw
// expression asserting mint or owner equality across two slots. Rules
// consume edges instead of re-deriving relationships from constraints.
//
// The graph is instruction-scoped and rebuilt fresh per instruction.
// No cross-instruction state is retained: accounts in different
// instructions are different variables even when named identically.
//
// When an account pair is linked by more than one relation kind, all
// edges are retained rather than collapsed - downstream rules consume the
// edge kind, not just existence.
package relation
