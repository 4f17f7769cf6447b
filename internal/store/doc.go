// Package store provides durable run history for analysis reports.
//
// Uses SQLite with WAL mode. Each analysis run is one row in runs plus
// one row per finding; the full report is additionally kept as canonical
// JSON so a stored run can be re-rendered byte-identically.
//
// ARCHITECTURE:
//   - single writer (MaxOpenConns=1), WAL for concurrent readers
//   - run ids are UUIDv7, so lexical order is creation order
//   - findings carry their content-addressed identity key; the UNIQUE
//     constraint on (run_id, finding_key) makes writes idempotent
package store
