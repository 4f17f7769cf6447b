package harness

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/sealint/sealint/internal/compiler"
	"github.com/sealint/sealint/internal/engine"
	"github.com/sealint/sealint/internal/model"
	"github.com/sealint/sealint/internal/report"
)

// Result holds the outcome of running a scenario.
type Result struct {
	Scenario *Scenario
	Report   *report.Report
	Pass     bool
	Errors   []string
}

// Run loads the scenario's model, analyzes it, and checks expectations.
// Returns an error only when the scenario itself cannot be executed
// (unloadable model, bad options); expectation mismatches are reported
// through Result.Pass and Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	prog, loadErrs := compiler.LoadDir(scenario.Model, compiler.LoadModeCollectAll)
	if len(loadErrs) > 0 {
		return nil, fmt.Errorf("load model %s: %w", scenario.Model, loadErrs[0])
	}
	if verrs := compiler.Validate(prog.Instructions); len(verrs) > 0 {
		return nil, fmt.Errorf("validate model %s: %w", scenario.Model, verrs[0])
	}

	opts, err := scenario.options()
	if err != nil {
		return nil, err
	}

	analyzer, err := engine.NewAnalyzer(prog.Name, prog.Instructions, opts, 1, slog.New(slog.DiscardHandler))
	if err != nil {
		return nil, fmt.Errorf("build analyzer: %w", err)
	}
	rep, err := analyzer.Run(context.Background())
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}

	result := &Result{Scenario: scenario, Report: rep, Pass: true}
	checkExpectations(result)
	return result, nil
}

func checkExpectations(r *Result) {
	findings := r.Report.Findings()

	if r.Scenario.Clean {
		if len(findings) > 0 || r.Report.Summary.Failures > 0 {
			r.fail("expected a clean report, got %d finding(s) and %d model error(s)",
				len(findings), r.Report.Summary.Failures)
		}
		return
	}

	for _, want := range r.Scenario.Expect {
		if !slices.ContainsFunc(findings, func(f model.Finding) bool {
			return matches(want, f)
		}) {
			r.fail("missing expected finding: rule %s on instruction %s (slots %v)",
				want.Rule, want.Instruction, want.Slots)
		}
	}
}

func matches(want ExpectedFinding, f model.Finding) bool {
	if f.Rule != model.RuleID(want.Rule) || f.Instruction != want.Instruction {
		return false
	}
	if want.Severity != "" && f.Severity != model.Severity(want.Severity) {
		return false
	}
	if len(want.Slots) > 0 {
		got := f.SortedSlots()
		wantSlots := slices.Clone(want.Slots)
		slices.Sort(wantSlots)
		if !slices.Equal(got, wantSlots) {
			return false
		}
	}
	return true
}

func (r *Result) fail(format string, args ...any) {
	r.Pass = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}
