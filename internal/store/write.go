package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sealint/sealint/internal/model"
	"github.com/sealint/sealint/internal/report"
)

// WriteRun persists one analysis run and returns its id. Run ids are
// UUIDv7 so creation order and lexical order agree.
//
// The run row and its finding rows are written in one transaction: a run
// either exists with all of its findings or not at all.
func (s *Store) WriteRun(ctx context.Context, r *report.Report) (string, error) {
	reportJSON, err := r.CanonicalJSON()
	if err != nil {
		return "", fmt.Errorf("write run: %w", err)
	}

	runID := uuid.Must(uuid.NewV7()).String()
	createdAt := time.Now().UTC().Format(time.RFC3339)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("write run: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, program, created_at, instructions, critical, warning, info, failures, report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		runID,
		r.Program,
		createdAt,
		r.Summary.Instructions,
		r.Summary.Critical,
		r.Summary.Warning,
		r.Summary.Info,
		r.Summary.Failures,
		string(reportJSON),
	)
	if err != nil {
		return "", fmt.Errorf("write run: insert run: %w", err)
	}

	for _, f := range r.Findings() {
		key, err := model.FindingKey(f)
		if err != nil {
			return "", fmt.Errorf("write run: finding key: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO findings
			(run_id, finding_key, rule, severity, instruction, slots, effect, message, remediation)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(run_id, finding_key) DO NOTHING
		`,
			runID,
			key,
			string(f.Rule),
			string(f.Severity),
			f.Instruction,
			strings.Join(f.SortedSlots(), ","),
			f.Effect,
			f.Message,
			string(f.Remediation),
		)
		if err != nil {
			return "", fmt.Errorf("write run: insert finding: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("write run: commit: %w", err)
	}
	return runID, nil
}
