package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sealint/sealint/internal/model"
)

// ErrRunNotFound is returned by ReadRun for an unknown run id.
var ErrRunNotFound = errors.New("run not found")

// RunSummary is one row of run history.
type RunSummary struct {
	ID           string    `json:"id"`
	Program      string    `json:"program"`
	CreatedAt    time.Time `json:"created_at"`
	Instructions int       `json:"instructions"`
	Critical     int       `json:"critical"`
	Warning      int       `json:"warning"`
	Info         int       `json:"info"`
	Failures     int       `json:"failures"`
}

// Run is a stored run with its findings and the canonical report JSON.
type Run struct {
	RunSummary
	Findings []model.Finding `json:"findings"`
	Report   string          `json:"report"`
}

// ReadRun loads one run by id.
func (s *Store) ReadRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, program, created_at, instructions, critical, warning, info, failures, report
		FROM runs
		WHERE id = ?
	`, id)

	var run Run
	var createdAt string
	err := row.Scan(
		&run.ID, &run.Program, &createdAt,
		&run.Instructions, &run.Critical, &run.Warning, &run.Info, &run.Failures,
		&run.Report,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read run %q: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read run %q: %w", id, err)
	}
	if run.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("read run %q: parse created_at: %w", id, err)
	}

	if run.Findings, err = s.readFindings(ctx, id); err != nil {
		return nil, fmt.Errorf("read run %q: %w", id, err)
	}
	return &run, nil
}

// readFindings returns a run's findings with deterministic ordering:
// instruction, then the report's severity/rule order, keyed here by the
// stored columns.
func (s *Store) readFindings(ctx context.Context, runID string) ([]model.Finding, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rule, severity, instruction, slots, effect, message, remediation
		FROM findings
		WHERE run_id = ?
		ORDER BY instruction ASC, rule ASC, slots COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query findings: %w", err)
	}
	defer rows.Close()

	var findings []model.Finding
	for rows.Next() {
		var f model.Finding
		var rule, severity, slots, remediation string
		if err := rows.Scan(&rule, &severity, &f.Instruction, &slots, &f.Effect, &f.Message, &remediation); err != nil {
			return nil, fmt.Errorf("scan finding: %w", err)
		}
		f.Rule = model.RuleID(rule)
		f.Severity = model.Severity(severity)
		f.Remediation = model.Remediation(remediation)
		if slots != "" {
			f.Slots = strings.Split(slots, ",")
		}
		findings = append(findings, f)
	}
	return findings, rows.Err()
}

// ListRuns returns run history newest-first. limit <= 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	q := `
		SELECT id, program, created_at, instructions, critical, warning, info, failures
		FROM runs
		ORDER BY id DESC
	`
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		var createdAt string
		if err := rows.Scan(&r.ID, &r.Program, &createdAt, &r.Instructions, &r.Critical, &r.Warning, &r.Info, &r.Failures); err != nil {
			return nil, fmt.Errorf("list runs: scan: %w", err)
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("list runs: parse created_at: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
