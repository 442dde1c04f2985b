package model

import "time"

// WrittenSubmission Gradescope 导出的一行
type WrittenSubmission struct {
	RowNo    int            `json:"rowNo"`
	ID       string         `json:"id"`
	Lateness string         `json:"lateness"` // 原始字符串，可能为空
	Duration *time.Duration `json:"duration"` // 空字符串为 nil
	Status   string         `json:"status"`   // graded/ungraded/missing
}

// ProgrammingSubmission Codio 导出的一行
type ProgrammingSubmission struct {
	RowNo      int        `json:"rowNo"`
	NameToken  string     `json:"nameToken"` // "first name" 列，通常就是学号
	Email      string     `json:"email"`
	RawTime    string     `json:"rawTime"`
	SubmitTime *time.Time `json:"submitTime"` // 无法解析为 nil
	Completed  *bool      `json:"completed"`
}
