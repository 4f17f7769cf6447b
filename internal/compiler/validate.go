package compiler

import (
	"fmt"
	"strings"

	"github.com/sealint/sealint/internal/model"
)

// Validation error codes (E120-E129). These cover structural defects the
// compiler can see without resolving slot references; dangling references
// are the resolver's territory.
const (
	ErrDuplicateInstruction = "E120" // two instructions share a name
	ErrDuplicateSlot        = "E121" // two accounts in one instruction share a name
	ErrDuplicateField       = "E122" // two fields on one account share a name
	ErrEmptyName            = "E123" // blank instruction, slot, or field name
	ErrNegativeSpace        = "E124" // negative space allocation
	ErrNegativeMaxLen       = "E125" // negative field length bound
	ErrSpaceWithoutInit     = "E126" // space declared on a non-init account
)

// ValidationError represents a structural defect in a compiled program.
type ValidationError struct {
	Code        string `json:"code"`
	Instruction string `json:"instruction,omitempty"`
	Slot        string `json:"slot,omitempty"`
	Message     string `json:"message"`
}

func (e ValidationError) Error() string {
	switch {
	case e.Slot != "":
		return fmt.Sprintf("[%s] instruction %q slot %q: %s", e.Code, e.Instruction, e.Slot, e.Message)
	case e.Instruction != "":
		return fmt.Sprintf("[%s] instruction %q: %s", e.Code, e.Instruction, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Validate checks a compiled program for structural defects. Returns all
// errors found (does not fail-fast).
func Validate(insts []model.Instruction) []ValidationError {
	var errs []ValidationError

	seenInst := make(map[string]bool)
	for i := range insts {
		inst := &insts[i]
		if strings.TrimSpace(inst.Name) == "" {
			errs = append(errs, ValidationError{
				Code:    ErrEmptyName,
				Message: "instruction name must be non-empty",
			})
		} else if seenInst[inst.Name] {
			errs = append(errs, ValidationError{
				Code:        ErrDuplicateInstruction,
				Instruction: inst.Name,
				Message:     "duplicate instruction name",
			})
		}
		seenInst[inst.Name] = true

		errs = append(errs, validateAccounts(inst)...)
	}

	return errs
}

func validateAccounts(inst *model.Instruction) []ValidationError {
	var errs []ValidationError

	seenSlot := make(map[string]bool)
	for i := range inst.Accounts {
		req := &inst.Accounts[i]

		if strings.TrimSpace(req.Name) == "" {
			errs = append(errs, ValidationError{
				Code:        ErrEmptyName,
				Instruction: inst.Name,
				Message:     "slot name must be non-empty",
			})
			continue
		}
		if seenSlot[req.Name] {
			errs = append(errs, ValidationError{
				Code:        ErrDuplicateSlot,
				Instruction: inst.Name,
				Slot:        req.Name,
				Message:     "duplicate slot name",
			})
		}
		seenSlot[req.Name] = true

		if req.Space < 0 {
			errs = append(errs, ValidationError{
				Code:        ErrNegativeSpace,
				Instruction: inst.Name,
				Slot:        req.Name,
				Message:     fmt.Sprintf("space must be non-negative, got %d", req.Space),
			})
		}
		if req.Space > 0 && !req.Init {
			errs = append(errs, ValidationError{
				Code:        ErrSpaceWithoutInit,
				Instruction: inst.Name,
				Slot:        req.Name,
				Message:     "space is only meaningful on init accounts",
			})
		}

		seenField := make(map[string]bool)
		for _, f := range req.Fields {
			if strings.TrimSpace(f.Name) == "" {
				errs = append(errs, ValidationError{
					Code:        ErrEmptyName,
					Instruction: inst.Name,
					Slot:        req.Name,
					Message:     "field name must be non-empty",
				})
				continue
			}
			if seenField[f.Name] {
				errs = append(errs, ValidationError{
					Code:        ErrDuplicateField,
					Instruction: inst.Name,
					Slot:        req.Name,
					Message:     fmt.Sprintf("duplicate field name %q", f.Name),
				})
			}
			seenField[f.Name] = true

			if f.MaxLen < 0 {
				errs = append(errs, ValidationError{
					Code:        ErrNegativeMaxLen,
					Instruction: inst.Name,
					Slot:        req.Name,
					Message:     fmt.Sprintf("field %q max_len must be non-negative, got %d", f.Name, f.MaxLen),
				})
			}
		}
	}

	return errs
}
