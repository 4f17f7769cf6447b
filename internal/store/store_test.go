package store

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sealint/sealint/internal/engine"
	"github.com/sealint/sealint/internal/model"
	"github.com/sealint/sealint/internal/report"
	"github.com/sealint/sealint/internal/testutil"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func analyzeProgram(t *testing.T) *report.Report {
	t.Helper()
	a, err := engine.NewAnalyzer("demo", testutil.Program(), engine.Options{}, 2, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	r, err := a.Run(context.Background())
	require.NoError(t, err)
	return r
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s2.Close())
}

func TestWriteRun_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	r := analyzeProgram(t)

	runID, err := s.WriteRun(ctx, r)
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	run, err := s.ReadRun(ctx, runID)
	require.NoError(t, err)

	assert.Equal(t, "demo", run.Program)
	assert.Equal(t, r.Summary.Instructions, run.Instructions)
	assert.Equal(t, r.Summary.Critical, run.Critical)
	assert.Equal(t, r.Summary.Warning, run.Warning)
	assert.Equal(t, r.Summary.Failures, run.Failures)
	assert.False(t, run.CreatedAt.IsZero())

	// The stored canonical report matches a fresh serialization.
	fresh, err := r.CanonicalJSON()
	require.NoError(t, err)
	assert.Equal(t, string(fresh), run.Report)

	// Every reported finding is stored; identity keys match.
	require.Len(t, run.Findings, len(r.Findings()))
	want := make(map[string]bool)
	for _, f := range r.Findings() {
		want[model.MustFindingKey(f)] = true
	}
	for _, f := range run.Findings {
		assert.True(t, want[model.MustFindingKey(f)], "unexpected stored finding %v", f)
	}
}

func TestReadRun_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.ReadRun(context.Background(), "no-such-run")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestListRuns_NewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	r := analyzeProgram(t)

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := s.WriteRun(ctx, r)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	// UUIDv7 ids sort by creation time, listing is id-descending.
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[0], runs[2].ID)

	limited, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, ids[2], limited[0].ID)
}

func TestWriteRun_SlotlessFindingSurvives(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	agg := report.NewAggregator("demo")
	agg.Add("claim", []model.Finding{{
		Rule:        model.RuleInputValidation,
		Severity:    model.SeverityWarning,
		Instruction: "claim",
		Message:     "timestamp comparison now vs unlock_at is not validated for ordering",
		Remediation: model.RemValidateTimeOrdering,
		Effect:      "timestamp_compare(now, unlock_at)",
	}})

	runID, err := s.WriteRun(ctx, agg.Report())
	require.NoError(t, err)

	run, err := s.ReadRun(ctx, runID)
	require.NoError(t, err)
	require.Len(t, run.Findings, 1)
	assert.Empty(t, run.Findings[0].Slots)
	assert.Equal(t, "timestamp_compare(now, unlock_at)", run.Findings[0].Effect)
}
