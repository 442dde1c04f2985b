package parser

import (
	"time"

	"github.com/awissink/latedays/internal/model"
)

// WrittenParser Gradescope 报表解析器
type WrittenParser struct {
	mapper *FieldMapper
}

// NewWrittenParser 创建 Gradescope 解析器
func NewWrittenParser(mappings []FieldMapping) *WrittenParser {
	return &WrittenParser{mapper: NewFieldMapper(SourceWritten, mappings)}
}

// Parse 解析 Gradescope 报表；Lateness 格式错误为致命错误
func (p *WrittenParser) Parse(table *Table) ([]*model.WrittenSubmission, ParseResult, error) {
	start := time.Now()
	result := ParseResult{Source: SourceWritten, Path: table.Path, TotalRows: len(table.Rows)}

	records, err := p.mapper.Project(table)
	if err != nil {
		result.Status = "error"
		result.Errors = []string{err.Error()}
		return nil, result, err
	}

	subs := make([]*model.WrittenSubmission, 0, len(records))
	for _, rec := range records {
		raw := rec.Get(FieldWritLateness)
		d, ok := ParseLateness(raw)
		if !ok {
			err := &LatenessFormatError{RowNo: rec.RowNo, Value: raw}
			result.Status = "error"
			result.Errors = []string{err.Error()}
			return nil, result, err
		}
		subs = append(subs, &model.WrittenSubmission{
			RowNo:    rec.RowNo,
			ID:       rec.Get(FieldID),
			Lateness: raw,
			Duration: d,
			Status:   rec.Get(FieldWritSubmitStatus),
		})
	}

	result.Status = "imported"
	result.ImportedRows = len(subs)
	result.Duration = time.Since(start)
	return subs, result, nil
}
