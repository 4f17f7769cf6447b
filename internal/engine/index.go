package engine

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sealint/sealint/internal/model"
)

// initSite records one account initialization with derived-address seeds.
type initSite struct {
	Instruction string
	Slot        string
	Order       int // instruction position in declaration order
}

// programIndex holds the read-only cross-instruction views rules 4 and 6
// consult. Built once by New; never mutated afterwards, so concurrent
// Evaluate calls need no locking.
type programIndex struct {
	// initSeeds maps a seeds content key to every init site using those
	// exact seed literals, in program declaration order.
	initSeeds map[string][]initSite

	// slotSigners maps a slot name to the distinct signer sets (canonical
	// comma-joined form) it appears with across instructions. An account
	// that shows up with two different signer sets is shared, not
	// owner-scoped.
	slotSigners map[string]map[string]bool
}

func buildProgramIndex(program []model.Instruction) (*programIndex, error) {
	idx := &programIndex{
		initSeeds:   make(map[string][]initSite),
		slotSigners: make(map[string]map[string]bool),
	}

	for order := range program {
		inst := &program[order]
		signerKey := canonicalSignerSet(inst.Signers())

		for i := range inst.Accounts {
			req := &inst.Accounts[i]

			if idx.slotSigners[req.Name] == nil {
				idx.slotSigners[req.Name] = make(map[string]bool)
			}
			idx.slotSigners[req.Name][signerKey] = true

			if !req.Init {
				continue
			}
			sb := req.SeedsBump()
			if sb == nil {
				continue
			}
			key, err := model.SeedsKey(sb.Seeds)
			if err != nil {
				return nil, fmt.Errorf("seeds key for %s.%s: %w", inst.Name, req.Name, err)
			}
			idx.initSeeds[key] = append(idx.initSeeds[key], initSite{
				Instruction: inst.Name,
				Slot:        req.Name,
				Order:       order,
			})
		}
	}

	return idx, nil
}

// earlierInitSites returns init sites that use the given seeds key and
// precede the named instruction in declaration order.
func (idx *programIndex) earlierInitSites(seedsKey, instruction string) []initSite {
	sites := idx.initSeeds[seedsKey]

	var selfOrder = -1
	for _, s := range sites {
		if s.Instruction == instruction {
			selfOrder = s.Order
			break
		}
	}
	if selfOrder < 0 {
		return nil
	}

	var earlier []initSite
	for _, s := range sites {
		if s.Order < selfOrder {
			earlier = append(earlier, s)
		}
	}
	return earlier
}

// ownerScoped reports whether the slot appears with exactly one signer
// set program-wide, and that set is non-empty. Accounts shared across
// instructions with different signers belong to no single owner, so the
// derived-address rule does not demand a signer-bound seed for them.
func (idx *programIndex) ownerScoped(slot string, currentSigners []string) bool {
	if len(currentSigners) == 0 {
		return false
	}
	sets := idx.slotSigners[slot]
	if len(sets) != 1 {
		return false
	}
	return sets[canonicalSignerSet(currentSigners)]
}

func canonicalSignerSet(signers []string) string {
	sorted := slices.Clone(signers)
	slices.Sort(sorted)
	return strings.Join(sorted, ",")
}
