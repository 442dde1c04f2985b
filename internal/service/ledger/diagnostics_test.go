package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awissink/latedays/internal/model"
	"github.com/awissink/latedays/internal/parser"
)

func TestBuildDiagnostics_SplitsExceedingByCategory(t *testing.T) {
	t.Parallel()

	l := &model.Ledger{Rows: []*model.LedgerRow{
		{ID: "both", Budget: model.IntPtr(10), WrittenLateDays: 4, ProgrammingLateDays: 4},
		{ID: "written", Budget: model.IntPtr(10), WrittenLateDays: 5},
		{ID: "programming", Budget: model.IntPtr(10), ProgrammingLateDays: 6},
		{ID: "fine", Budget: model.IntPtr(10), WrittenLateDays: 3, ProgrammingLateDays: 3},
	}}
	issues := []parser.RowIssue{
		{Kind: parser.IssueNotEnrolled, Key: "xx1"},
		{Kind: parser.IssueUnresolvedIdentifier, Key: "ghost"},
	}

	d := BuildDiagnostics(l, issues, 3)
	require.Len(t, d.Exceeding, 3)
	assert.Equal(t, []string{"both", "written"}, ids(d.WrittenExceeding))
	assert.Equal(t, []string{"both", "programming"}, ids(d.ProgrammingExceeding))
	assert.Empty(t, d.Violations)

	got := d.IssuesOf(parser.IssueUnresolvedIdentifier)
	require.Len(t, got, 1)
	assert.Equal(t, "ghost", got[0].Key)
}

func TestRosterEntry_OverridePerCategory(t *testing.T) {
	t.Parallel()

	entry := &model.RosterEntry{ID: "a1", WrittenOverride: model.IntPtr(2)}
	assert.Equal(t, 2, *entry.Override(model.CategoryWritten))
	assert.Nil(t, entry.Override(model.CategoryProgramming))
}

func ids(rows []*model.LedgerRow) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}
