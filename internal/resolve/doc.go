// Package resolve implements the constraint resolver.
//
// The resolver turns each instruction's declared account requirements into
// ResolvedAccount records: effective authority status, effective ownership
// bindings, and effective type safety. Rules consume the resolved view and
// never look at raw constraints again.
//
// Resolution is a pure fold over each account's constraint list.
// Constraints are evaluated in declaration order but their effects are
// commutative - permuting the list yields an identical ResolvedAccount.
// This must hold because real account-validation frameworks evaluate
// constraints independently.
//
// Structural inconsistencies (a constraint or effect citing a slot that
// does not exist, mutually referential raw expressions) are ModelErrors:
// fatal for the affected instruction, never findings. Other instructions
// are unaffected.
package resolve
