package resolve

import (
	"errors"
	"fmt"
)

// ModelErrorCode categorizes structural model failures.
type ModelErrorCode string

const (
	// ErrCodeDanglingConstraint indicates a constraint citing a slot that
	// is not declared in the same instruction.
	ErrCodeDanglingConstraint ModelErrorCode = "DANGLING_CONSTRAINT"

	// ErrCodeDanglingEffect indicates an effect citing a slot that is not
	// declared in the same instruction.
	ErrCodeDanglingEffect ModelErrorCode = "DANGLING_EFFECT"

	// ErrCodeConstraintCycle indicates mutually referential raw
	// expressions across accounts.
	ErrCodeConstraintCycle ModelErrorCode = "CONSTRAINT_CYCLE"
)

// ModelError reports an internally inconsistent program model. It is a
// fatal, non-recoverable condition for the affected instruction and is
// kept strictly apart from findings: a ModelError means the model
// extractor produced garbage, not that the program is vulnerable.
type ModelError struct {
	Code        ModelErrorCode
	Instruction string
	Slot        string // account carrying the bad reference; empty for effects
	Ref         string // the dangling reference or cycle path
	Message     string
}

// Error implements the error interface.
func (e *ModelError) Error() string {
	if e.Slot != "" {
		return fmt.Sprintf("%s: instruction %q slot %q: %s", e.Code, e.Instruction, e.Slot, e.Message)
	}
	return fmt.Sprintf("%s: instruction %q: %s", e.Code, e.Instruction, e.Message)
}

// IsModelError reports whether err is (or wraps) a ModelError.
func IsModelError(err error) bool {
	var me *ModelError
	return errors.As(err, &me)
}

// AsModelError unwraps err to a ModelError, or nil.
func AsModelError(err error) *ModelError {
	var me *ModelError
	if errors.As(err, &me) {
		return me
	}
	return nil
}
