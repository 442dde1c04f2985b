package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/awissink/latedays/internal/model"
	"github.com/awissink/latedays/internal/parser"
	"github.com/awissink/latedays/internal/service/ledger"
)

func TestPrinter_Print(t *testing.T) {
	l := &model.Ledger{Rows: []*model.LedgerRow{
		{ID: "jd1234", Name: "Doe, Jane", Budget: model.IntPtr(1), WrittenLateDays: 4},
		{ID: "rr42", Name: "Roe, Rick", Budget: model.IntPtr(2), ProgrammingLateDays: 5},
		{ID: "ok1", Name: "Okay, Otto", Budget: model.IntPtr(5)},
	}}
	issues := []parser.RowIssue{
		{Source: parser.SourceProgramming, Kind: parser.IssueUnresolvedIdentifier, RowNo: 7, Key: "ghost", Detail: "ghost@example.com"},
		{Source: parser.SourceWritten, Kind: parser.IssueNotEnrolled, RowNo: 3, Key: "xx99", Detail: "Graded"},
	}

	var buf bytes.Buffer
	NewPrinter(&buf).Print(ledger.BuildDiagnostics(l, issues, 3))
	out := buf.String()

	assert.Contains(t, out, "Unresolved programming submissions")
	assert.Contains(t, out, "ghost@example.com")
	assert.Contains(t, out, "xx99")
	assert.Contains(t, out, "Written late days > 3")
	assert.Contains(t, out, "Doe, Jane")
	assert.Contains(t, out, "Programming late days > 3")
	assert.Contains(t, out, "Roe, Rick")
	assert.NotContains(t, out, "Okay, Otto")
	assert.Contains(t, out, "(none)")
}

func TestPrinter_UnparseableTimestampColumns(t *testing.T) {
	issues := []parser.RowIssue{
		{Source: parser.SourceProgramming, Kind: parser.IssueUnparseableTimestamp, RowNo: 4, Key: "jane", Detail: "yesterday"},
	}

	var buf bytes.Buffer
	NewPrinter(&buf).Print(ledger.BuildDiagnostics(&model.Ledger{}, issues, 3))
	out := buf.String()

	assert.Contains(t, out, "Unparseable programming timestamps")
	assert.Contains(t, out, "name token")
	assert.Contains(t, out, "jane")
	assert.Contains(t, out, "yesterday")
	assert.NotContains(t, out, "email")
}

func TestPrinter_Summary(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).Summary("run-1", &parser.ImportReport{TotalRows: 10, ImportedRows: 9, DroppedRows: 1}, 4, false)

	out := buf.String()
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "skipped")
}
