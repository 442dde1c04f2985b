package model

import "time"

// LedgerRow 对账表的一行（每个学生恰好一行）
type LedgerRow struct {
	ID     string `json:"uni"`
	Name   string `json:"names"`
	Budget *int   `json:"total_late_days"`

	WrittenLateness string `json:"writ_lateness"`
	WrittenOverride *int   `json:"writ_overrides"`
	WrittenStatus   string `json:"writ_submit_status"`
	WrittenLateDays int    `json:"writ_late_days"`

	ProgrammingSubmitTime *time.Time     `json:"prog_submit_time"`
	ProgrammingLateness   *time.Duration `json:"prog_lateness"`
	ProgrammingOverride   *int           `json:"prog_overrides"`
	ProgrammingCompleted  *bool          `json:"prog_submit_status"`
	ProgrammingLateDays   int            `json:"prog_late_days"`
}

// ExceedsThreshold 任一类别 late day 超过阈值
func (r *LedgerRow) ExceedsThreshold(threshold int) bool {
	return r.WrittenLateDays > threshold || r.ProgrammingLateDays > threshold
}

// Ledger 对账结果
type Ledger struct {
	Rows []*LedgerRow `json:"rows"`
}

// BudgetByName 姓名 -> 剩余 late day（重名时后者覆盖）
func (l *Ledger) BudgetByName() map[string]*int {
	out := make(map[string]*int, len(l.Rows))
	for _, r := range l.Rows {
		out[r.Name] = r.Budget
	}
	return out
}
