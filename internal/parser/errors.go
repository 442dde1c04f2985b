package parser

import "fmt"

// SourceNotFoundError 输入文件不存在或无法读取（致命）
type SourceNotFoundError struct {
	Source SourceKind
	Path   string
	Err    error
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("%s source %q cannot be opened: %v", e.Source, e.Path, e.Err)
}

func (e *SourceNotFoundError) Unwrap() error {
	return e.Err
}

// MissingColumnError 输入缺少必需列（致命）
type MissingColumnError struct {
	Source SourceKind
	Path   string
	Column string
	// LooksLike 表头更像另一种导出时填写（通常是文件传错了位置）
	LooksLike SourceKind
}

func (e *MissingColumnError) Error() string {
	msg := fmt.Sprintf("%s source %q is missing column %q", e.Source, e.Path, e.Column)
	if e.LooksLike != "" && e.LooksLike != e.Source {
		msg += fmt.Sprintf(" (the file looks like a %s export)", e.LooksLike)
	}
	return msg
}

// LatenessFormatError Lateness 列无法解析为 H:M:S（致命）
type LatenessFormatError struct {
	RowNo int
	Value string
}

func (e *LatenessFormatError) Error() string {
	return fmt.Sprintf("row %d: lateness %q is not in H:M:S form", e.RowNo, e.Value)
}

// IssueKind 行级问题类型（非致命）
type IssueKind string

const (
	IssueUnparseableTimestamp IssueKind = "unparseable_timestamp"
	IssueUnresolvedIdentifier IssueKind = "unresolved_identifier"
	IssueNotEnrolled          IssueKind = "not_enrolled"
	IssueDuplicateSubmission  IssueKind = "duplicate_submission"
	IssueMissingIdentifier    IssueKind = "missing_identifier"
)

// RowIssue 行级问题，仅用于诊断输出
type RowIssue struct {
	Source SourceKind `json:"source"`
	Kind   IssueKind  `json:"kind"`
	RowNo  int        `json:"rowNo"`
	Key    string     `json:"key"`    // 学号/姓名片段/邮箱
	Detail string     `json:"detail"` // 原始值或说明
}

func (i RowIssue) String() string {
	return fmt.Sprintf("%s row %d [%s] %s %s", i.Source, i.RowNo, i.Kind, i.Key, i.Detail)
}
