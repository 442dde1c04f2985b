package parser

import (
	"time"

	"github.com/awissink/latedays/internal/model"
)

// ProgrammingParser Codio 报表解析器
type ProgrammingParser struct {
	mapper     *FieldMapper
	timestamps *TimestampParser
}

// NewProgrammingParser 创建 Codio 解析器，submitLocation 为导出时间戳所在时区
func NewProgrammingParser(mappings []FieldMapping, submitLocation *time.Location) *ProgrammingParser {
	return &ProgrammingParser{
		mapper:     NewFieldMapper(SourceProgramming, mappings),
		timestamps: NewTimestampParser(submitLocation),
	}
}

// Parse 解析 Codio 报表；无法解析的时间戳记为缺失并登记问题
func (p *ProgrammingParser) Parse(table *Table) ([]*model.ProgrammingSubmission, ParseResult, error) {
	start := time.Now()
	result := ParseResult{Source: SourceProgramming, Path: table.Path, TotalRows: len(table.Rows)}

	records, err := p.mapper.Project(table)
	if err != nil {
		result.Status = "error"
		result.Errors = []string{err.Error()}
		return nil, result, err
	}

	subs := make([]*model.ProgrammingSubmission, 0, len(records))
	for _, rec := range records {
		sub := &model.ProgrammingSubmission{
			RowNo:     rec.RowNo,
			NameToken: rec.Get(FieldNameToken),
			Email:     rec.Get(FieldEmail),
			RawTime:   rec.Get(FieldProgSubmitTime),
			Completed: ParseBool(rec.Get(FieldProgSubmitStatus)),
		}
		if t, ok := p.timestamps.Parse(sub.RawTime, table.FromSpreadsheet); ok {
			sub.SubmitTime = &t
		} else if sub.RawTime != "" {
			result.Issues = append(result.Issues, RowIssue{
				Source: SourceProgramming,
				Kind:   IssueUnparseableTimestamp,
				RowNo:  rec.RowNo,
				Key:    sub.NameToken,
				Detail: sub.RawTime,
			})
		}
		subs = append(subs, sub)
	}

	result.Status = "imported"
	result.ImportedRows = len(subs)
	result.Duration = time.Since(start)
	return subs, result, nil
}
