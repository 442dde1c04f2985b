package exporter

import (
	"strconv"

	"github.com/awissink/latedays/internal/model"
	"github.com/awissink/latedays/internal/parser"
)

// SubmitTimeLayout 编程作业提交时间的输出格式
const SubmitTimeLayout = "2006-01-02 15:04:05-07:00"

// LedgerHeaders 对账表列
var LedgerHeaders = []string{
	"uni",
	"names",
	"total_late_days",
	"writ_lateness",
	"writ_overrides",
	"writ_submit_status",
	"writ_late_days",
	"prog_submit_time",
	"prog_lateness",
	"prog_overrides",
	"prog_submit_status",
	"prog_late_days",
}

// LedgerRecord 对账表一行的字符串形式
func LedgerRecord(r *model.LedgerRow) []string {
	submitTime := ""
	if r.ProgrammingSubmitTime != nil {
		submitTime = r.ProgrammingSubmitTime.Format(SubmitTimeLayout)
	}
	lateness := ""
	if r.ProgrammingLateness != nil {
		lateness = parser.FormatDuration(*r.ProgrammingLateness)
	}
	completed := ""
	if r.ProgrammingCompleted != nil {
		completed = "False"
		if *r.ProgrammingCompleted {
			completed = "True"
		}
	}

	return []string{
		r.ID,
		r.Name,
		formatOptionalInt(r.Budget),
		r.WrittenLateness,
		formatOptionalInt(r.WrittenOverride),
		r.WrittenStatus,
		strconv.Itoa(r.WrittenLateDays),
		submitTime,
		lateness,
		formatOptionalInt(r.ProgrammingOverride),
		completed,
		strconv.Itoa(r.ProgrammingLateDays),
	}
}

// LedgerRecords 整张对账表
func LedgerRecords(l *model.Ledger) [][]string {
	rows := make([][]string, 0, len(l.Rows))
	for _, r := range l.Rows {
		rows = append(rows, LedgerRecord(r))
	}
	return rows
}

func formatOptionalInt(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}
