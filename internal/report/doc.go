// Package report implements the diagnostic aggregator.
//
// The aggregator consumes finding batches from concurrently evaluated
// instructions, deduplicates exact duplicates (same rule id, instruction,
// and slot set, matched by content-addressed key), groups by instruction,
// and exposes a read-only, deterministically ordered Report.
//
// The aggregator only deduplicates; it never filters by confidence. A
// finding that made it out of the rule engine is in the report.
//
// Ordering guarantees, for byte-identical reports across runs:
//   - instructions sorted by name
//   - findings within an instruction sorted severity-descending, then
//     rule id ascending
package report
