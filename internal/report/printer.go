package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/awissink/latedays/internal/model"
	"github.com/awissink/latedays/internal/parser"
	"github.com/awissink/latedays/internal/service/ledger"
)

const dividerWidth = 60

// Printer 诊断输出（非机器可读，仅供人工查看）
type Printer struct {
	w     io.Writer
	title lipgloss.Style
	muted lipgloss.Style
}

// NewPrinter 创建诊断输出器，颜色根据 w 是否为终端自动判断
func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:     w,
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#3498db")),
		muted: r.NewStyle().Foreground(lipgloss.Color("#7f8c8d")),
	}
}

// Print 打印全部诊断分组
func (p *Printer) Print(d *ledger.Diagnostics) {
	p.issues("Unresolved programming submissions",
		[]string{"row", "name token", "email"},
		d.IssuesOf(parser.IssueUnresolvedIdentifier))
	p.issues("Written submissions not on roster",
		[]string{"row", "uni", "status"},
		d.IssuesOf(parser.IssueNotEnrolled))
	p.issues("Unparseable programming timestamps",
		[]string{"row", "name token", "value"},
		d.IssuesOf(parser.IssueUnparseableTimestamp))
	p.issues("Duplicate submissions (first row kept)",
		[]string{"row", "uni", "detail"},
		d.IssuesOf(parser.IssueDuplicateSubmission))
	p.issues("Roster rows without identifier",
		[]string{"row", "name", "detail"},
		d.IssuesOf(parser.IssueMissingIdentifier))

	p.section("Ledger warnings")
	if len(d.Violations) == 0 {
		p.empty()
	} else {
		rows := make([][]string, 0, len(d.Violations))
		for _, v := range d.Violations {
			rows = append(rows, []string{v.Row.ID, v.Row.Name, strings.Join(v.Errors, "; ")})
		}
		p.table([]string{"uni", "names", "warning"}, rows)
	}

	p.exceeding(fmt.Sprintf("Written late days > %d", d.Threshold), d.WrittenExceeding, func(r *model.LedgerRow) int {
		return r.WrittenLateDays
	})
	p.exceeding(fmt.Sprintf("Programming late days > %d", d.Threshold), d.ProgrammingExceeding, func(r *model.LedgerRow) int {
		return r.ProgrammingLateDays
	})
}

// Summary 打印一次运行的汇总
func (p *Printer) Summary(runID string, report *parser.ImportReport, ledgerRows int, written bool) {
	p.section("Summary")
	rows := [][]string{
		{"run id", runID},
		{"source rows", strconv.Itoa(report.TotalRows)},
		{"imported rows", strconv.Itoa(report.ImportedRows)},
		{"dropped rows", strconv.Itoa(report.DroppedRows)},
		{"ledger rows", strconv.Itoa(ledgerRows)},
	}
	if written {
		rows = append(rows, []string{"outputs", "written"})
	} else {
		rows = append(rows, []string{"outputs", "skipped"})
	}
	p.table([]string{"", ""}, rows)
}

func (p *Printer) issues(title string, headers []string, issues []parser.RowIssue) {
	p.section(title)
	if len(issues) == 0 {
		p.empty()
		return
	}
	rows := make([][]string, 0, len(issues))
	for _, issue := range issues {
		rows = append(rows, []string{strconv.Itoa(issue.RowNo), issue.Key, issue.Detail})
	}
	p.table(headers, rows)
}

func (p *Printer) exceeding(title string, rows []*model.LedgerRow, value func(*model.LedgerRow) int) {
	p.section(title)
	if len(rows) == 0 {
		p.empty()
		return
	}
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{r.ID, r.Name, strconv.Itoa(value(r))})
	}
	p.table([]string{"uni", "names", "late days"}, out)
}

func (p *Printer) section(title string) {
	fmt.Fprintln(p.w, p.muted.Render(strings.Repeat("-", dividerWidth)))
	fmt.Fprintln(p.w, p.title.Render(title))
}

func (p *Printer) empty() {
	fmt.Fprintln(p.w, p.muted.Render("(none)"))
}

func (p *Printer) table(headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.muted).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(p.w, t.String())
}
