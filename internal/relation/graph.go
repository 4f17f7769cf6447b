package relation

import (
	"slices"

	"github.com/sealint/sealint/internal/model"
	"github.com/sealint/sealint/internal/resolve"
)

// EdgeKind classifies what a relation edge asserts about a slot pair.
type EdgeKind string

const (
	// KindMintEquality asserts both slots reference the same resource
	// identity (token mint or the domain equivalent).
	KindMintEquality EdgeKind = "mint-equality"

	// KindOwnerEquality asserts one slot's stored owner equals the other
	// slot's key.
	KindOwnerEquality EdgeKind = "owner-equality"

	// KindSeedPrefix asserts one slot's key participates in the other's
	// address derivation.
	KindSeedPrefix EdgeKind = "seed-prefix-match"
)

// Edge is a discovered pairing between two slots of one instruction.
// A and B are stored in lexical order so the same pair always produces
// the same edge regardless of which side declared the constraint.
type Edge struct {
	A      string   `json:"a"`
	B      string   `json:"b"`
	Kind   EdgeKind `json:"kind"`
	Origin string   `json:"origin"` // slot whose constraint produced the edge
}

// Graph is the instruction-scoped relation graph.
type Graph struct {
	Instruction string
	Edges       []Edge
}

// Build constructs the relation graph from a resolved instruction.
//
// Edge sources:
//   - HasOne on slot S targeting T       -> owner-equality S-T
//   - SeedsBump on S with a seed naming T -> seed-prefix-match S-T
//   - RawExpr tagged mint/owner equality whose refs span two slots
//     -> corresponding edge between those slots
//
// Transfer effects create no edges: they are the demand side, checked by
// the ownership rule against what the constraints actually assert.
func Build(res *resolve.Resolved) *Graph {
	inst := res.Instruction
	g := &Graph{Instruction: inst.Name}
	seen := make(map[Edge]bool)

	add := func(a, b string, kind EdgeKind, origin string) {
		if a == b {
			return
		}
		if a > b {
			a, b = b, a
		}
		e := Edge{A: a, B: b, Kind: kind, Origin: origin}
		if seen[e] {
			return
		}
		seen[e] = true
		g.Edges = append(g.Edges, e)
	}

	for i := range inst.Accounts {
		req := &inst.Accounts[i]
		for _, c := range req.Constraints {
			switch con := c.(type) {
			case model.HasOne:
				add(req.Name, con.Target, KindOwnerEquality, req.Name)

			case model.SeedsBump:
				for _, seed := range con.Seeds {
					if seed != req.Name && inst.HasSlot(seed) {
						add(req.Name, seed, KindSeedPrefix, req.Name)
					}
				}

			case model.RawExpr:
				kind, ok := exprEdgeKind(con.Pred)
				if !ok {
					continue
				}
				for _, pair := range refSlotPairs(req.Name, con.Refs) {
					add(pair[0], pair[1], kind, req.Name)
				}
			}
		}
	}

	// Deterministic edge order independent of declaration order.
	slices.SortFunc(g.Edges, compareEdges)

	return g
}

// exprEdgeKind maps a tagged predicate to an edge kind. Emptiness guards
// and untagged expressions relate no pair.
func exprEdgeKind(pred model.PredKind) (EdgeKind, bool) {
	switch pred {
	case model.PredMintEquality:
		return KindMintEquality, true
	case model.PredOwnerEquality:
		return KindOwnerEquality, true
	}
	return "", false
}

// refSlotPairs lists the distinct slot pairs an expression's references
// span. An expression on slot S with refs {S, T} relates S-T; refs across
// {T, U} relate T-U directly.
func refSlotPairs(owner string, refs []model.FieldRef) [][2]string {
	slots := make([]string, 0, len(refs)+1)
	slots = append(slots, owner)
	for _, ref := range refs {
		if !slices.Contains(slots, ref.Slot) {
			slots = append(slots, ref.Slot)
		}
	}

	var pairs [][2]string
	for i := 0; i < len(slots); i++ {
		for j := i + 1; j < len(slots); j++ {
			pairs = append(pairs, [2]string{slots[i], slots[j]})
		}
	}
	return pairs
}

func compareEdges(a, b Edge) int {
	if a.A != b.A {
		return compareStrings(a.A, b.A)
	}
	if a.B != b.B {
		return compareStrings(a.B, b.B)
	}
	return compareStrings(string(a.Kind), string(b.Kind))
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

// Between returns all edges linking slots a and b, in deterministic order.
func (g *Graph) Between(a, b string) []Edge {
	if a > b {
		a, b = b, a
	}
	var out []Edge
	for _, e := range g.Edges {
		if e.A == a && e.B == b {
			out = append(out, e)
		}
	}
	return out
}

// Of returns all edges touching the slot.
func (g *Graph) Of(slot string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.A == slot || e.B == slot {
			out = append(out, e)
		}
	}
	return out
}

// HasKind reports whether an edge of the given kind links a and b.
func (g *Graph) HasKind(a, b string, kind EdgeKind) bool {
	for _, e := range g.Between(a, b) {
		if e.Kind == kind {
			return true
		}
	}
	return false
}
