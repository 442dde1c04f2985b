package parser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

const maxXLSRows = 100000

// ReadTable 读取输入文件（.csv / .xlsx / .xls），返回表头和数据行
func ReadTable(source SourceKind, path string) (*Table, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var (
		rows        [][]string
		spreadsheet bool
		err         error
	)
	switch ext {
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(source, path)
		spreadsheet = true
	case ".xls":
		rows, err = readXLS(source, path)
		spreadsheet = true
	default:
		rows, err = readCSV(source, path)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s source %q has no header row", source, path)
	}

	headers := rows[0]
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}

	return &Table{
		Source:          source,
		Path:            path,
		Headers:         headers,
		Rows:            rows[1:],
		FromSpreadsheet: spreadsheet,
	}, nil
}

func readCSV(source SourceKind, path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &SourceNotFoundError{Source: source, Path: path, Err: err}
	}
	defer f.Close()

	reader := csv.NewReader(bufio.NewReader(f))
	reader.FieldsPerRecord = -1 // 导出文件的尾部空列常常不齐
	reader.LazyQuotes = true

	var rows [][]string
	for {
		line, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s csv %q: %w", source, path, err)
		}
		rows = append(rows, line)
	}
	return rows, nil
}

func readXLSX(source SourceKind, path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &SourceNotFoundError{Source: source, Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("%s workbook %q has no sheets", source, path)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
	}
	return rows, nil
}

func readXLS(source SourceKind, path string) ([][]string, error) {
	workbook, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, &SourceNotFoundError{Source: source, Path: path, Err: err}
	}
	rows, ok := firstSheetRows(xlsBook{workbook}, maxXLSRows)
	if !ok {
		return nil, fmt.Errorf("%s workbook %q has no sheets", source, path)
	}
	return rows, nil
}

// sheetSource 按序号读取工作表内容
type sheetSource interface {
	NumSheets() int
	SheetRows(index, max int) [][]string
}

// firstSheetRows 与 .xlsx 一致，只读取第一个工作表
func firstSheetRows(book sheetSource, max int) ([][]string, bool) {
	if book.NumSheets() == 0 {
		return nil, false
	}
	return book.SheetRows(0, max), true
}

type xlsBook struct {
	wb *xls.WorkBook
}

func (b xlsBook) NumSheets() int {
	return b.wb.NumSheets()
}

func (b xlsBook) SheetRows(index, max int) [][]string {
	sheet := b.wb.GetSheet(index)
	if sheet == nil {
		return nil
	}
	n := int(sheet.MaxRow) + 1
	if n > max {
		n = max
	}
	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for j := range cells {
			cells[j] = row.Col(j)
		}
		rows = append(rows, cells)
	}
	return rows
}

// WriteCSV 写出 CSV（表头 + 数据行）
func WriteCSV(w io.Writer, headers []string, rows [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(headers); err != nil {
		return err
	}
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}
