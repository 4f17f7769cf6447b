package resolve

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sealint/sealint/internal/model"
)

// checkReferenceCycles detects mutually referential raw expressions.
//
// The algorithm:
//  1. Build slot -> slot edges from each account's RawExpr references
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Any SCC with more than one slot is a ModelError
//
// Self references (an expression on an account citing its own fields) are
// normal and never an error. A DAG returns nil.
func checkReferenceCycles(inst *model.Instruction) error {
	graph := buildReferenceGraph(inst)

	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 {
			path := reconstructCyclePath(scc, graph)
			return &ModelError{
				Code:        ErrCodeConstraintCycle,
				Instruction: inst.Name,
				Slot:        scc[0],
				Ref:         strings.Join(path, " -> "),
				Message:     fmt.Sprintf("raw expression constraints form a reference cycle: %s", strings.Join(path, " -> ")),
			}
		}
	}

	return nil
}

// referenceGraph maps slot name -> slots its raw expressions cite.
type referenceGraph map[string][]string

func buildReferenceGraph(inst *model.Instruction) referenceGraph {
	graph := make(referenceGraph, len(inst.Accounts))

	for i := range inst.Accounts {
		req := &inst.Accounts[i]
		if graph[req.Name] == nil {
			graph[req.Name] = []string{}
		}
		for _, c := range req.Constraints {
			raw, ok := c.(model.RawExpr)
			if !ok {
				continue
			}
			for _, ref := range raw.Refs {
				if ref.Slot != req.Name {
					graph[req.Name] = append(graph[req.Name], ref.Slot)
				}
			}
		}
	}

	return graph
}

// tarjanSCC finds strongly connected components.
// Returns a list of SCCs, where each SCC is a list of slot names.
func tarjanSCC(graph referenceGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	// Deterministic visit order: iterate declared slots, not map order.
	for _, node := range sortedNodes(graph) {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

func sortedNodes(graph referenceGraph) []string {
	nodes := make([]string, 0, len(graph))
	for n := range graph {
		nodes = append(nodes, n)
	}
	// Lexical order is enough here; the cycle set does not depend on
	// visit order, only the reported path does.
	slices.Sort(nodes)
	return nodes
}

// reconstructCyclePath builds a printable cycle path from an SCC.
// Follows edges between SCC members until the walk returns to its start.
func reconstructCyclePath(scc []string, graph referenceGraph) []string {
	sccSet := make(map[string]bool, len(scc))
	for _, node := range scc {
		sccSet[node] = true
	}

	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if sccSet[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}

		if next == "" {
			break
		}

		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}

	return path
}
