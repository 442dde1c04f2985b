package parser

import "time"

// SourceKind 输入源类型
type SourceKind string

const (
	SourceRoster      SourceKind = "roster"      // 花名册（Courseworks）
	SourceWritten     SourceKind = "written"     // 书面作业（Gradescope）
	SourceProgramming SourceKind = "programming" // 编程作业（Codio）
)

// 内部字段名
const (
	FieldID               = "uni"
	FieldName             = "names"
	FieldLateDays         = "total_late_days"
	FieldWritLateness     = "writ_lateness"
	FieldWritSubmitStatus = "writ_submit_status"
	FieldNameToken        = "?uni?"
	FieldEmail            = "email"
	FieldProgSubmitTime   = "prog_submit_time"
	FieldProgSubmitStatus = "prog_submit_status"
)

// Table 原始表格：表头 + 数据行
type Table struct {
	Source  SourceKind
	Path    string
	Headers []string
	Rows    [][]string
	// FromSpreadsheet 为 true 时数值单元格可能是 Excel 日期序列号
	FromSpreadsheet bool
}

// FieldMapping 字段映射：源列名 -> 内部字段名
type FieldMapping struct {
	ColumnName string `json:"columnName"`
	Field      string `json:"field"`
}

// Record 投影后的一行
type Record struct {
	RowNo  int               // 源文件中的行号（表头为第 1 行）
	Fields map[string]string // 内部字段名 -> 去空格后的值
}

// Get 读取字段
func (r Record) Get(field string) string {
	return r.Fields[field]
}

// ParseResult 单个输入源的解析结果
type ParseResult struct {
	Source       SourceKind    `json:"source"`
	Path         string        `json:"path"`
	Status       string        `json:"status"` // imported/error
	TotalRows    int           `json:"totalRows"`
	ImportedRows int           `json:"importedRows"`
	DroppedRows  int           `json:"droppedRows"`
	Issues       []RowIssue    `json:"issues,omitempty"`
	Errors       []string      `json:"errors,omitempty"`
	Duration     time.Duration `json:"duration"`
}

// ImportReport 导入报告
type ImportReport struct {
	TotalRows    int           `json:"totalRows"`
	ImportedRows int           `json:"importedRows"`
	DroppedRows  int           `json:"droppedRows"`
	Duration     time.Duration `json:"duration"`
	Sources      []ParseResult `json:"sources"`
}

// Issues 汇总所有输入源的行级问题
func (r *ImportReport) Issues() []RowIssue {
	var out []RowIssue
	for _, s := range r.Sources {
		out = append(out, s.Issues...)
	}
	return out
}
