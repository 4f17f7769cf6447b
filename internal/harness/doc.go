// Package harness provides conformance testing for program-model analysis.
//
// The harness loads a program model, runs the full rule set, and checks
// the resulting report against expectations declared in a YAML scenario.
// Scenarios double as executable documentation of what each rule accepts
// and rejects.
//
// # Scenario Format
//
//	name: unsigned_withdraw
//	description: "Transfers without a bound signer are critical"
//	model: models/unsigned_withdraw
//	disabled_rules:
//	  - ACC006
//	expect:
//	  - rule: ACC001
//	    instruction: withdraw
//	    slots: [config]
//	    severity: critical
//
// A scenario with `clean: true` instead asserts the report has no
// findings at all.
//
// # Deterministic Testing
//
// Reports are deterministically ordered, so a scenario's canonical JSON
// report can be compared against a golden file. RunWithGolden does the
// run-and-compare in one call; goldens regenerate with go test -update.
package harness
