package exporter

import (
	"strings"

	"github.com/awissink/latedays/internal/model"
	"github.com/awissink/latedays/internal/parser"
)

// BuildImportTable 复制花名册原表，按姓名覆盖剩余 late day 列
// 姓名不在对账表中的行（如 "Points Possible"）保留原值
func BuildImportTable(roster *parser.Table, nameColumn, lateDaysColumn string, ledger *model.Ledger) ([]string, [][]string, error) {
	nameCol := columnIndex(roster.Headers, nameColumn)
	if nameCol < 0 {
		return nil, nil, &parser.MissingColumnError{Source: parser.SourceRoster, Path: roster.Path, Column: nameColumn}
	}
	col := columnIndex(roster.Headers, lateDaysColumn)
	if col < 0 {
		return nil, nil, &parser.MissingColumnError{Source: parser.SourceRoster, Path: roster.Path, Column: lateDaysColumn}
	}

	budgets := ledger.BudgetByName()
	headers := append([]string(nil), roster.Headers...)
	rows := make([][]string, 0, len(roster.Rows))
	for _, src := range roster.Rows {
		row := make([]string, len(headers))
		copy(row, src)
		if nameCol < len(src) {
			if budget, ok := budgets[strings.TrimSpace(src[nameCol])]; ok {
				row[col] = formatOptionalInt(budget)
			}
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}

func columnIndex(headers []string, column string) int {
	want := parser.NormalizeColumnName(column)
	for i, h := range headers {
		if parser.NormalizeColumnName(h) == want {
			return i
		}
	}
	return -1
}
