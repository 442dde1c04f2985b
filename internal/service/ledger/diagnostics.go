package ledger

import (
	"github.com/awissink/latedays/internal/model"
	"github.com/awissink/latedays/internal/parser"
)

// Diagnostics 一次对账的诊断信息，仅用于展示
type Diagnostics struct {
	Issues     []parser.RowIssue
	Violations []Violation
	Threshold  int

	// Exceeding 任一类别超过阈值的学生
	Exceeding            []*model.LedgerRow
	WrittenExceeding     []*model.LedgerRow
	ProgrammingExceeding []*model.LedgerRow
}

// BuildDiagnostics 汇总行级问题、校验结果和超阈值学生
func BuildDiagnostics(l *model.Ledger, issues []parser.RowIssue, threshold int) *Diagnostics {
	d := &Diagnostics{
		Issues:     issues,
		Violations: Validate(l),
		Threshold:  threshold,
		Exceeding:  Exceeding(l, threshold),
	}
	for _, r := range d.Exceeding {
		if r.WrittenLateDays > threshold {
			d.WrittenExceeding = append(d.WrittenExceeding, r)
		}
		if r.ProgrammingLateDays > threshold {
			d.ProgrammingExceeding = append(d.ProgrammingExceeding, r)
		}
	}
	return d
}

// IssuesOf 按类型过滤行级问题
func (d *Diagnostics) IssuesOf(kinds ...parser.IssueKind) []parser.RowIssue {
	var out []parser.RowIssue
	for _, issue := range d.Issues {
		for _, k := range kinds {
			if issue.Kind == k {
				out = append(out, issue)
				break
			}
		}
	}
	return out
}
