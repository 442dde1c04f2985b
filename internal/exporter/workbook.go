package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/awissink/latedays/internal/model"
	"github.com/awissink/latedays/internal/service/ledger"
)

const (
	ledgerSheet      = "Ledger"
	diagnosticsSheet = "Diagnostics"
)

// BuildWorkbook 生成对账工作簿：对账表 + 诊断表
func BuildWorkbook(l *model.Ledger, diag *ledger.Diagnostics) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", ledgerSheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}
	exceedStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FDE2E2"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	if err := writeSheetRow(f, ledgerSheet, 1, toCells(LedgerHeaders)); err != nil {
		return nil, err
	}
	_ = f.SetRowStyle(ledgerSheet, 1, 1, headerStyle)

	exceeding := make(map[*model.LedgerRow]bool)
	if diag != nil {
		for _, r := range diag.Exceeding {
			exceeding[r] = true
		}
	}
	for i, r := range l.Rows {
		rowNo := i + 2
		if err := writeSheetRow(f, ledgerSheet, rowNo, ledgerCells(r)); err != nil {
			return nil, err
		}
		if exceeding[r] {
			_ = f.SetRowStyle(ledgerSheet, rowNo, rowNo, exceedStyle)
		}
	}
	_ = f.SetColWidth(ledgerSheet, "A", "A", 12)
	_ = f.SetColWidth(ledgerSheet, "B", "B", 28)
	_ = f.SetColWidth(ledgerSheet, "C", "L", 18)
	_ = f.SetPanes(ledgerSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	if diag != nil {
		if err := writeDiagnosticsSheet(f, diag, headerStyle); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// WriteWorkbook 写出对账工作簿
func WriteWorkbook(w io.Writer, l *model.Ledger, diag *ledger.Diagnostics) error {
	f, err := BuildWorkbook(l, diag)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteTo(w)
	return err
}

func writeDiagnosticsSheet(f *excelize.File, diag *ledger.Diagnostics, headerStyle int) error {
	if _, err := f.NewSheet(diagnosticsSheet); err != nil {
		return err
	}

	rows := [][]interface{}{{"category", "source", "row", "key", "detail"}}
	for _, issue := range diag.Issues {
		rows = append(rows, []interface{}{string(issue.Kind), string(issue.Source), issue.RowNo, issue.Key, issue.Detail})
	}
	for _, v := range diag.Violations {
		for _, msg := range v.Errors {
			rows = append(rows, []interface{}{"rule_violation", "ledger", "", v.Row.ID, msg})
		}
	}
	for _, r := range diag.WrittenExceeding {
		rows = append(rows, []interface{}{"written_exceeding", "ledger", "", r.ID, fmt.Sprintf("%d > %d", r.WrittenLateDays, diag.Threshold)})
	}
	for _, r := range diag.ProgrammingExceeding {
		rows = append(rows, []interface{}{"programming_exceeding", "ledger", "", r.ID, fmt.Sprintf("%d > %d", r.ProgrammingLateDays, diag.Threshold)})
	}

	for i, row := range rows {
		if err := writeSheetRow(f, diagnosticsSheet, i+1, row); err != nil {
			return err
		}
	}
	_ = f.SetRowStyle(diagnosticsSheet, 1, 1, headerStyle)
	_ = f.SetColWidth(diagnosticsSheet, "A", "A", 24)
	_ = f.SetColWidth(diagnosticsSheet, "D", "E", 30)
	return nil
}

// ledgerCells 数值列写成数字，空值留空
func ledgerCells(r *model.LedgerRow) []interface{} {
	record := LedgerRecord(r)
	cells := toCells(record)
	cells[2] = optionalIntCell(r.Budget)
	cells[4] = optionalIntCell(r.WrittenOverride)
	cells[6] = r.WrittenLateDays
	cells[9] = optionalIntCell(r.ProgrammingOverride)
	cells[11] = r.ProgrammingLateDays
	return cells
}

func optionalIntCell(p *int) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

func writeSheetRow(f *excelize.File, sheet string, rowNo int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNo)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &cells)
}
