package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awissink/latedays/internal/model"
	"github.com/awissink/latedays/internal/parser"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "history", "latedays.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newRun(id string, started time.Time) *Run {
	return &Run{
		ID:              id,
		StartedAt:       started,
		Deadline:        "2023-02-20-23:59:59",
		GraceHours:      1,
		RosterPath:      "courseworks.csv",
		WrittenPath:     "gradescope.csv",
		ProgrammingPath: "codio.csv",
	}
}

func TestStore_RunLifecycle(t *testing.T) {
	s := newTestStore(t)
	started := time.Date(2023, 2, 21, 9, 0, 0, 0, time.UTC)

	run := newRun("run-1", started)
	require.NoError(t, s.CreateRun(run))
	assert.Equal(t, RunStatusRunning, run.Status)

	run.Status = RunStatusSucceeded
	run.TotalRows = 12
	run.ImportedRows = 10
	run.DroppedRows = 2
	run.IssueCount = 1
	run.LedgerRows = 3
	require.NoError(t, s.FinishRun(run))

	got, err := s.GetRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, RunStatusSucceeded, got.Status)
	assert.True(t, got.StartedAt.Equal(started))
	require.NotNil(t, got.FinishedAt)
	assert.Equal(t, 10, got.ImportedRows)
	assert.Equal(t, 3, got.LedgerRows)
	assert.False(t, got.DryRun)
}

func TestStore_FinishUnknownRun(t *testing.T) {
	s := newTestStore(t)
	err := s.FinishRun(&Run{ID: "missing", Status: RunStatusFailed})
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = s.GetRun("missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestStore_ListRunsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2023, 2, 21, 9, 0, 0, 0, time.UTC)

	require.NoError(t, s.CreateRun(newRun("a", base)))
	require.NoError(t, s.CreateRun(newRun("b", base.Add(1500*time.Millisecond))))
	require.NoError(t, s.CreateRun(newRun("c", base.Add(time.Second))))

	runs, err := s.ListRuns(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "b", runs[0].ID)
	assert.Equal(t, "c", runs[1].ID)
}

func TestStore_RecordLedger(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateRun(newRun("run-1", time.Now())))

	ledger := &model.Ledger{Rows: []*model.LedgerRow{
		{ID: "rr42", Name: "Roe, Rick", ProgrammingLateDays: 2},
		{ID: "jd1234", Name: "Doe, Jane", Budget: model.IntPtr(4), WrittenLateDays: 1},
	}}
	issues := []parser.RowIssue{
		{Source: parser.SourceProgramming, Kind: parser.IssueUnresolvedIdentifier, RowNo: 5, Key: "ghost"},
	}
	require.NoError(t, s.RecordLedger("run-1", ledger, issues))

	snaps, err := s.GetLedger("run-1")
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, "jd1234", snaps[0].ID)
	assert.Equal(t, model.IntPtr(4), snaps[0].Budget)
	assert.Nil(t, snaps[1].Budget)
	assert.Equal(t, 2, snaps[1].ProgrammingLateDays)
}

func TestStore_RecordLedgerRollsBack(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.CreateRun(newRun("run-1", time.Now())))

	dup := &model.Ledger{Rows: []*model.LedgerRow{
		{ID: "jd1234", Name: "Doe, Jane"},
		{ID: "jd1234", Name: "Doe, Jane"},
	}}
	require.Error(t, s.RecordLedger("run-1", dup, nil))

	snaps, err := s.GetLedger("run-1")
	require.NoError(t, err)
	assert.Empty(t, snaps)
}
