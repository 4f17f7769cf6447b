package engine

import (
	"fmt"
	"slices"

	"github.com/sealint/sealint/internal/model"
	"github.com/sealint/sealint/internal/relation"
	"github.com/sealint/sealint/internal/resolve"
)

// RuleInfo describes one rule for introspection (the rules command).
type RuleInfo struct {
	ID          model.RuleID `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
}

// rule is the internal evaluation contract. Rules are pure: they read the
// evaluation context and return findings, never mutating shared state.
type rule interface {
	Info() RuleInfo
	Evaluate(ec *evalContext) []model.Finding
}

// evalContext bundles the per-instruction derived views a rule consumes,
// plus the program-level indexes.
type evalContext struct {
	inst  *model.Instruction
	res   *resolve.Resolved
	graph *relation.Graph
	index *programIndex
}

// finding constructs a finding with instruction provenance filled in.
func (ec *evalContext) finding(id model.RuleID, sev model.Severity, slots []string, msg string, rem model.Remediation) model.Finding {
	return model.Finding{
		Rule:        id,
		Severity:    sev,
		Instruction: ec.inst.Name,
		Slots:       slots,
		Message:     msg,
		Remediation: rem,
	}
}

// Engine evaluates the fixed rule set against instructions of one program.
//
// INVARIANTS:
//   - rules slice order never changes after construction; it matches
//     ascending rule id so reports are deterministic
//   - the program-level index is read-only after New returns
//   - Evaluate holds no state between calls
type Engine struct {
	opts  Options
	rules []rule
	index *programIndex
}

// New creates an Engine for the given program model.
//
// The instruction slice is the whole program: rules 4 and 6 consult
// cross-instruction indexes (which slots share init seeds, which signers
// an account appears with) that are computed here, once, and never
// mutated afterwards.
func New(program []model.Instruction, opts Options) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine options: %w", err)
	}

	index, err := buildProgramIndex(program)
	if err != nil {
		return nil, fmt.Errorf("index program: %w", err)
	}

	return &Engine{
		opts:  copyOptions(opts),
		index: index,
		rules: []rule{
			signerAuthorityRule{},
			typedAccountRule{},
			ownershipConstraintRule{},
			pdaDerivationRule{},
			inputValidationRule{},
			reinitGuardRule{},
		},
	}, nil
}

// Rules returns descriptions of the full rule set in evaluation order,
// including disabled rules.
func (e *Engine) Rules() []RuleInfo {
	infos := make([]RuleInfo, len(e.rules))
	for i, r := range e.rules {
		infos[i] = r.Info()
	}
	return infos
}

// Enabled reports whether the rule will run under the engine's options.
func (e *Engine) Enabled(id model.RuleID) bool {
	return !e.opts.disabled(id)
}

// Evaluate runs every enabled rule against one instruction.
//
// The only error class is *resolve.ModelError: the instruction's model is
// internally inconsistent and has no usable resolved view. Findings are
// returned sorted severity-descending then rule id ascending; the order
// is stable across runs for identical input.
func (e *Engine) Evaluate(inst *model.Instruction) ([]model.Finding, error) {
	res, err := resolve.Resolve(inst)
	if err != nil {
		return nil, err
	}
	if err := resolve.CheckEffects(inst); err != nil {
		return nil, err
	}

	ec := &evalContext{
		inst:  inst,
		res:   res,
		graph: relation.Build(res),
		index: e.index,
	}

	var findings []model.Finding
	for _, r := range e.rules {
		if e.opts.disabled(r.Info().ID) {
			continue
		}
		findings = append(findings, r.Evaluate(ec)...)
	}

	for i := range findings {
		if sev, ok := e.opts.SeverityOverrides[findings[i].Rule]; ok {
			findings[i].Severity = sev
		}
	}

	slices.SortFunc(findings, model.CompareFindings)

	return findings, nil
}
