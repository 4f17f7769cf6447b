// Package model provides the program model types for sealint.
//
// This package contains type definitions only. All other internal packages
// import model; model imports nothing internal. This ensures the program
// model remains the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - The model is immutable after construction: the resolver and the
//     rule engine build derived views, they never write back.
//   - NO float types anywhere - sizes and lengths are int64.
//   - All JSON tags use snake_case.
//   - Constraint and Effect are sealed interfaces; the full set of
//     variants is fixed at compile time so rules can type-switch
//     exhaustively.
package model
