package parser

import (
	"fmt"
	"time"

	"github.com/awissink/latedays/internal/model"
)

// RosterParser 花名册解析器
type RosterParser struct {
	mapper *FieldMapper
}

// NewRosterParser 创建花名册解析器
func NewRosterParser(mappings []FieldMapping) *RosterParser {
	return &RosterParser{mapper: NewFieldMapper(SourceRoster, mappings)}
}

// Parse 解析花名册；缺少学号的行（如 "Points Possible"）被丢弃
func (p *RosterParser) Parse(table *Table) ([]*model.RosterEntry, ParseResult, error) {
	start := time.Now()
	result := ParseResult{Source: SourceRoster, Path: table.Path, TotalRows: len(table.Rows)}

	records, err := p.mapper.Project(table)
	if err != nil {
		result.Status = "error"
		result.Errors = []string{err.Error()}
		return nil, result, err
	}

	entries := make([]*model.RosterEntry, 0, len(records))
	seen := make(map[string]int, len(records))
	for _, rec := range records {
		id := rec.Get(FieldID)
		if id == "" {
			result.DroppedRows++
			result.Issues = append(result.Issues, RowIssue{
				Source: SourceRoster,
				Kind:   IssueMissingIdentifier,
				RowNo:  rec.RowNo,
				Key:    rec.Get(FieldName),
			})
			continue
		}
		if first, ok := seen[id]; ok {
			err := fmt.Errorf("roster %q: identifier %q appears on rows %d and %d", table.Path, id, first, rec.RowNo)
			result.Status = "error"
			result.Errors = []string{err.Error()}
			return nil, result, err
		}
		seen[id] = rec.RowNo

		budget, ok := ParseBudget(rec.Get(FieldLateDays))
		if !ok {
			err := fmt.Errorf("roster %q row %d: late days %q is not a number", table.Path, rec.RowNo, rec.Get(FieldLateDays))
			result.Status = "error"
			result.Errors = []string{err.Error()}
			return nil, result, err
		}

		entry := &model.RosterEntry{
			ID:     id,
			Name:   rec.Get(FieldName),
			RowNo:  rec.RowNo,
			Budget: budget,
		}
		entries = append(entries, entry)
	}

	result.Status = "imported"
	result.ImportedRows = len(entries)
	result.Duration = time.Since(start)
	return entries, result, nil
}
