package report

import (
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/sealint/sealint/internal/model"
	"github.com/sealint/sealint/internal/resolve"
)

// StructuralFailure records an instruction whose model was too broken to
// analyze. Structural failures block acceptance the same way critical
// findings do.
type StructuralFailure struct {
	Instruction string `json:"instruction"`
	Code        string `json:"code"`
	Message     string `json:"message"`
}

// InstructionReport holds the outcome for a single instruction. Exactly one
// of Findings and Failure carries information; a cleanly analyzed
// instruction with no findings has both empty.
type InstructionReport struct {
	Instruction string          `json:"instruction"`
	Findings    []model.Finding `json:"findings"`
	Failure     *StructuralFailure `json:"failure,omitempty"`
}

// Summary counts findings by severity across the whole report.
type Summary struct {
	Instructions int `json:"instructions"`
	Critical     int `json:"critical"`
	Warning      int `json:"warning"`
	Info         int `json:"info"`
	Failures     int `json:"failures"`
}

// Report is the immutable result of an analysis run.
type Report struct {
	Program      string              `json:"program"`
	Instructions []InstructionReport `json:"results"`
	Summary      Summary             `json:"summary"`
}

// Blocking reports whether the run must fail acceptance: any critical
// finding or any structural failure.
func (r *Report) Blocking() bool {
	return r.Summary.Critical > 0 || r.Summary.Failures > 0
}

// Findings returns all findings across instructions in report order.
func (r *Report) Findings() []model.Finding {
	var out []model.Finding
	for _, ir := range r.Instructions {
		out = append(out, ir.Findings...)
	}
	return out
}

// Aggregator collects findings from concurrent instruction evaluations.
// All methods are safe for concurrent use. Report ordering does not depend
// on the order in which batches arrive.
type Aggregator struct {
	mu       sync.Mutex
	program  string
	findings map[string][]model.Finding
	seen     map[string]bool
	failures map[string]*StructuralFailure
}

func NewAggregator(program string) *Aggregator {
	return &Aggregator{
		program:  program,
		findings: make(map[string][]model.Finding),
		seen:     make(map[string]bool),
		failures: make(map[string]*StructuralFailure),
	}
}

// Add records the finding batch for one instruction. Registering an
// instruction with an empty batch still counts it in the summary. Findings
// whose identity key (rule id, instruction, slot set) was already recorded
// are dropped.
func (a *Aggregator) Add(instruction string, findings []model.Finding) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.findings[instruction]; !ok {
		a.findings[instruction] = nil
	}
	for _, f := range findings {
		key := model.MustFindingKey(f)
		if a.seen[key] {
			continue
		}
		a.seen[key] = true
		a.findings[instruction] = append(a.findings[instruction], f)
	}
}

// AddFailure records a structural failure for an instruction. Only the
// first failure per instruction is kept.
func (a *Aggregator) AddFailure(instruction string, err *resolve.ModelError) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.failures[instruction]; ok {
		return
	}
	a.failures[instruction] = &StructuralFailure{
		Instruction: instruction,
		Code:        string(err.Code),
		Message:     err.Error(),
	}
}

// Report freezes the aggregated state into a deterministically ordered
// Report. The aggregator may keep receiving batches afterwards; the
// returned report does not change.
func (a *Aggregator) Report() *Report {
	a.mu.Lock()
	defer a.mu.Unlock()

	names := make([]string, 0, len(a.findings)+len(a.failures))
	for name := range a.findings {
		names = append(names, name)
	}
	for name := range a.failures {
		if _, ok := a.findings[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	r := &Report{Program: a.program}
	for _, name := range names {
		ir := InstructionReport{Instruction: name}
		if fail, ok := a.failures[name]; ok {
			f := *fail
			ir.Failure = &f
			r.Summary.Failures++
		} else {
			ir.Findings = slices.Clone(a.findings[name])
			slices.SortFunc(ir.Findings, model.CompareFindings)
			for _, f := range ir.Findings {
				switch f.Severity {
				case model.SeverityCritical:
					r.Summary.Critical++
				case model.SeverityWarning:
					r.Summary.Warning++
				case model.SeverityInfo:
					r.Summary.Info++
				}
			}
		}
		r.Summary.Instructions++
		r.Instructions = append(r.Instructions, ir)
	}
	return r
}

// CanonicalJSON serializes the report in RFC 8785 canonical form. Two runs
// over the same model produce byte-identical output.
func (r *Report) CanonicalJSON() ([]byte, error) {
	results := make([]any, 0, len(r.Instructions))
	for _, ir := range r.Instructions {
		entry := map[string]any{"instruction": ir.Instruction}
		if ir.Failure != nil {
			entry["failure"] = map[string]any{
				"code":    ir.Failure.Code,
				"message": ir.Failure.Message,
			}
		} else {
			fs := make([]any, 0, len(ir.Findings))
			for _, f := range ir.Findings {
				fs = append(fs, findingValue(f))
			}
			entry["findings"] = fs
		}
		results = append(results, entry)
	}
	doc := map[string]any{
		"program": r.Program,
		"results": results,
		"summary": map[string]any{
			"instructions": r.Summary.Instructions,
			"critical":     r.Summary.Critical,
			"warning":      r.Summary.Warning,
			"info":         r.Summary.Info,
			"failures":     r.Summary.Failures,
		},
	}
	b, err := model.MarshalCanonical(doc)
	if err != nil {
		return nil, fmt.Errorf("canonicalize report: %w", err)
	}
	return b, nil
}

func findingValue(f model.Finding) map[string]any {
	slots := make([]any, 0, len(f.Slots))
	for _, s := range f.SortedSlots() {
		slots = append(slots, s)
	}
	v := map[string]any{
		"rule":        string(f.Rule),
		"severity":    string(f.Severity),
		"instruction": f.Instruction,
		"slots":       slots,
		"message":     f.Message,
		"remediation": string(f.Remediation),
	}
	if f.Effect != "" {
		v["effect"] = f.Effect
	}
	return v
}
