package engine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/sealint/sealint/internal/model"
	"github.com/sealint/sealint/internal/report"
	"github.com/sealint/sealint/internal/resolve"
)

// Analyzer fans a program's instructions out to a bounded worker pool and
// aggregates per-instruction results into a report.
//
// Instructions are independent once the engine's program index is built,
// so evaluation order does not matter; the aggregator imposes the final
// deterministic ordering. A run's report is therefore byte-identical
// regardless of worker count or scheduling.
type Analyzer struct {
	program string
	insts   []model.Instruction
	engine  *Engine
	workers int
	log     *slog.Logger
}

// NewAnalyzer builds an Analyzer over the program model. workers <= 0
// selects GOMAXPROCS.
func NewAnalyzer(program string, insts []model.Instruction, opts Options, workers int, log *slog.Logger) (*Analyzer, error) {
	eng, err := New(insts, opts)
	if err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Analyzer{
		program: program,
		insts:   insts,
		engine:  eng,
		workers: workers,
		log:     log,
	}, nil
}

// Engine exposes the underlying rule engine for introspection.
func (a *Analyzer) Engine() *Engine { return a.engine }

// Run evaluates every instruction and returns the aggregated report.
//
// A *resolve.ModelError on one instruction is recorded as a structural
// failure for that instruction; the rest of the program is still
// analyzed. Run fails outright only on context cancellation.
func (a *Analyzer) Run(ctx context.Context) (*report.Report, error) {
	agg := report.NewAggregator(a.program)

	jobs := make(chan *model.Instruction)
	var wg sync.WaitGroup
	for i := 0; i < a.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for inst := range jobs {
				a.evaluateOne(agg, inst)
			}
		}()
	}

	submitted := 0
feed:
	for i := range a.insts {
		select {
		case jobs <- &a.insts[i]:
			submitted++
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis interrupted after %d of %d instructions: %w", submitted, len(a.insts), err)
	}

	r := agg.Report()
	a.log.Info("analysis complete",
		"program", a.program,
		"instructions", r.Summary.Instructions,
		"critical", r.Summary.Critical,
		"warning", r.Summary.Warning,
		"info", r.Summary.Info,
		"model_errors", r.Summary.Failures,
	)
	return r, nil
}

func (a *Analyzer) evaluateOne(agg *report.Aggregator, inst *model.Instruction) {
	findings, err := a.engine.Evaluate(inst)
	if err != nil {
		me := resolve.AsModelError(err)
		if me == nil {
			me = &resolve.ModelError{Instruction: inst.Name, Message: err.Error()}
		}
		a.log.Warn("instruction model rejected",
			"instruction", inst.Name,
			"code", string(me.Code),
		)
		agg.AddFailure(inst.Name, me)
		return
	}
	agg.Add(inst.Name, findings)
}
