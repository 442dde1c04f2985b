package model

import "time"

// Category 作业类别
type Category string

const (
	CategoryWritten     Category = "written"     // 书面作业（Gradescope）
	CategoryProgramming Category = "programming" // 编程作业（Codio）
)

// RosterEntry 花名册条目（以学号为主键）
type RosterEntry struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	RowNo  int    `json:"rowNo"`
	Budget *int   `json:"budget"` // 剩余 late day，空单元格为 nil

	WrittenOverride     *int `json:"writtenOverride"`
	ProgrammingOverride *int `json:"programmingOverride"`

	Written     *WrittenResult     `json:"written"`
	Programming *ProgrammingResult `json:"programming"`
}

// Override 返回指定类别的人工上限
func (e *RosterEntry) Override(c Category) *int {
	switch c {
	case CategoryWritten:
		return e.WrittenOverride
	case CategoryProgramming:
		return e.ProgrammingOverride
	}
	return nil
}

// WrittenResult 书面作业计算结果（join 到花名册）
type WrittenResult struct {
	Lateness         string `json:"lateness"` // 原始 H:M:S
	Status           string `json:"status"`
	ComputedLateDays *int   `json:"computedLateDays"`
	LateDays         *int   `json:"lateDays"` // 应用 override 之后
}

// ProgrammingResult 编程作业计算结果（join 到花名册）
type ProgrammingResult struct {
	SubmitTime       *time.Time     `json:"submitTime"` // 已转换到截止时间时区
	Lateness         *time.Duration `json:"lateness"`   // 非正数已归零
	Completed        *bool          `json:"completed"`
	ComputedLateDays *int           `json:"computedLateDays"`
	LateDays         *int           `json:"lateDays"`
}

// WrittenLateDays 书面作业最终 late day（缺失为 nil）
func (e *RosterEntry) WrittenLateDays() *int {
	if e.Written == nil {
		return nil
	}
	return e.Written.LateDays
}

// ProgrammingLateDays 编程作业最终 late day（缺失为 nil）
func (e *RosterEntry) ProgrammingLateDays() *int {
	if e.Programming == nil {
		return nil
	}
	return e.Programming.LateDays
}

// IntPtr 返回 v 的指针
func IntPtr(v int) *int {
	return &v
}

// IntValue 缺失值按 0 处理
func IntValue(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
