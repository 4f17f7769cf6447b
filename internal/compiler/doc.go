// Package compiler turns CUE program-model documents into model types.
//
// A document declares one program and its instructions:
//
//	package model
//
//	program: vesting: {
//		instruction: withdraw: {
//			accounts: [
//				{name: "authority", kind: "signer"},
//				{
//					name: "vault", kind: "typed_data", mutable: true
//					constraints: [{has_one: "authority"}]
//				},
//			]
//			effects: [
//				{transfer: {from: "vault", to: "destination"}},
//			]
//		}
//	}
//
// The compiler trusts nothing in the document: unknown kinds, predicates,
// bump sources, and malformed constraint or effect structs are rejected
// with source positions. It does NOT chase slot references across the
// instruction; dangling references are the resolver's job, reported as
// model errors rather than compile errors.
package compiler
