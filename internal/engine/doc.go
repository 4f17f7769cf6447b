// Package engine implements the sealint rule engine.
//
// The engine evaluates a fixed set of account-safety policies against each
// instruction of a program model and emits findings. Rules cover the five
// documented vulnerability classes: missing signer checks, untyped account
// usage, missing ownership constraints, unbound derived addresses, and
// unchecked inputs.
//
// ARCHITECTURE:
//
// Stateless evaluation:
// Evaluate(instruction) resolves constraints, builds the relation graph,
// and runs every enabled rule. The engine holds no mutable state between
// instructions - only read-only program-level indexes computed once at
// construction (init seed occurrences, per-slot signer sets). This makes
// evaluation pure: re-running yields byte-identical findings, and
// independent instructions can be evaluated on separate goroutines with
// no locking.
//
// Rule independence:
// Rules run in rule-id order but never observe each other's output. The
// same slot may accumulate findings from multiple rules; the engine never
// suppresses one finding because another fired - auditors need the full
// set. Disabling a rule removes exactly that rule's findings and nothing
// else.
//
// Error classes:
// A structurally inconsistent instruction (dangling slot reference,
// constraint cycle) aborts evaluation of that one instruction with a
// resolve.ModelError. Other instructions are unaffected. Findings are
// not errors: they are the designed output.
package engine
