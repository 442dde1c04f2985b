package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func rosterTable() *Table {
	return &Table{
		Source:  SourceRoster,
		Path:    "courseworks.csv",
		Headers: []string{"Student", "ID", "SIS User ID", "Late Days Remaining (1021574)"},
		Rows: [][]string{
			{"Points Possible", "", "", ""},
			{"Doe, Jane", "101", "jd1234", "5.0"},
			{"", "", "", ""},
			{"Roe, Rick", "102", " rr42 ", ""},
		},
	}
}

func TestRosterParser_Parse(t *testing.T) {
	t.Parallel()

	entries, result, err := NewRosterParser(RosterMapping("SIS User ID", "Student", "Late Days Remaining (1021574)")).Parse(rosterTable())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("want 2 entries, got %d", len(entries))
	}
	if entries[0].ID != "jd1234" || entries[0].Budget == nil || *entries[0].Budget != 5 || entries[0].RowNo != 3 {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].ID != "rr42" || entries[1].Budget != nil {
		t.Fatalf("unexpected second entry: %+v", entries[1])
	}
	if result.DroppedRows != 1 || len(result.Issues) != 1 || result.Issues[0].Kind != IssueMissingIdentifier {
		t.Fatalf("points possible row should be dropped with an issue: %+v", result)
	}
}

func TestRosterParser_DuplicateID(t *testing.T) {
	t.Parallel()

	table := rosterTable()
	table.Rows = append(table.Rows, []string{"Doe, Jane", "103", "jd1234", "4"})
	if _, _, err := NewRosterParser(RosterMapping("SIS User ID", "Student", "Late Days Remaining (1021574)")).Parse(table); err == nil {
		t.Fatalf("duplicate identifier should be fatal")
	}
}

func TestWrittenParser_Parse(t *testing.T) {
	t.Parallel()

	table := &Table{
		Source:  SourceWritten,
		Path:    "gradescope.csv",
		Headers: []string{"Name", "SID", "Status", "Lateness (H:M:S)"},
		Rows: [][]string{
			{"Jane", "jd1234", "Graded", "26:00:00"},
			{"Rick", "rr42", "Missing", ""},
		},
	}
	subs, result, err := NewWrittenParser(WrittenMapping("SID", "Lateness (H:M:S)", "Status")).Parse(table)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if result.ImportedRows != 2 {
		t.Fatalf("want 2 rows, got %d", result.ImportedRows)
	}
	if subs[0].Duration == nil || *subs[0].Duration != 26*time.Hour || subs[0].Lateness != "26:00:00" {
		t.Fatalf("unexpected first submission: %+v", subs[0])
	}
	if subs[1].Duration != nil || subs[1].Status != "Missing" {
		t.Fatalf("unexpected second submission: %+v", subs[1])
	}
}

func TestWrittenParser_BadLateness(t *testing.T) {
	t.Parallel()

	table := &Table{
		Source:  SourceWritten,
		Headers: []string{"SID", "Status", "Lateness (H:M:S)"},
		Rows:    [][]string{{"jd1234", "Graded", "late"}},
	}
	_, _, err := NewWrittenParser(WrittenMapping("SID", "Lateness (H:M:S)", "Status")).Parse(table)
	var formatErr *LatenessFormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("want LatenessFormatError, got %v", err)
	}
	if formatErr.RowNo != 2 || formatErr.Value != "late" {
		t.Fatalf("unexpected error detail: %+v", formatErr)
	}
}

func TestWrittenParser_OverflowingLateness(t *testing.T) {
	t.Parallel()

	table := &Table{
		Source:  SourceWritten,
		Headers: []string{"SID", "Status", "Lateness (H:M:S)"},
		Rows:    [][]string{{"jd1234", "Graded", "9999999:00:00"}},
	}
	_, _, err := NewWrittenParser(WrittenMapping("SID", "Lateness (H:M:S)", "Status")).Parse(table)
	var formatErr *LatenessFormatError
	if !errors.As(err, &formatErr) || formatErr.Value != "9999999:00:00" {
		t.Fatalf("want LatenessFormatError for overflowing hours, got %v", err)
	}
}

func TestProgrammingParser_Parse(t *testing.T) {
	t.Parallel()

	table := &Table{
		Source:  SourceProgramming,
		Path:    "codio.csv",
		Headers: []string{"first name", "email", "completed", "completed date"},
		Rows: [][]string{
			{"JD1234", "jd1234@columbia.edu", "TRUE", "2023-02-21 06:30:00"},
			{"Rick", "rr42@columbia.edu", "FALSE", "yesterday"},
			{"Otto", "ok1@columbia.edu", "", ""},
		},
	}
	subs, result, err := NewProgrammingParser(ProgrammingMapping("first name", "email", "completed date", "completed"), time.UTC).Parse(table)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(subs) != 3 {
		t.Fatalf("want 3 submissions, got %d", len(subs))
	}
	if subs[0].SubmitTime == nil || !subs[0].SubmitTime.Equal(time.Date(2023, 2, 21, 6, 30, 0, 0, time.UTC)) {
		t.Fatalf("unexpected submit time: %v", subs[0].SubmitTime)
	}
	if subs[0].Completed == nil || !*subs[0].Completed {
		t.Fatalf("completed flag not parsed")
	}
	if subs[1].SubmitTime != nil || subs[2].SubmitTime != nil {
		t.Fatalf("unparseable or empty timestamps should be absent")
	}
	if len(result.Issues) != 1 || result.Issues[0].Kind != IssueUnparseableTimestamp || result.Issues[0].RowNo != 3 {
		t.Fatalf("want one unparseable timestamp issue, got %+v", result.Issues)
	}
}

func TestFieldMapper_MissingColumn(t *testing.T) {
	t.Parallel()

	_, err := NewFieldMapper(SourceWritten, WrittenMapping("SID", "Lateness (H:M:S)", "Status")).
		Resolve("gradescope.csv", []string{"sid", "status"})
	var missing *MissingColumnError
	if !errors.As(err, &missing) || missing.Column != "Lateness (H:M:S)" {
		t.Fatalf("want missing lateness column, got %v", err)
	}
}

func TestReadTable_CSV(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "gradescope.csv")
	content := "\ufeffSID,Status,Lateness (H:M:S)\njd1234,Graded,1:00:00\nrr42,\"Missing, late\"\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	table, err := ReadTable(SourceWritten, path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if table.Headers[0] != "SID" {
		t.Fatalf("BOM not stripped: %q", table.Headers[0])
	}
	if len(table.Rows) != 2 || table.Rows[1][1] != "Missing, late" {
		t.Fatalf("unexpected rows: %v", table.Rows)
	}
	if table.FromSpreadsheet {
		t.Fatalf("csv is not a spreadsheet source")
	}
}

func TestReadTable_NotFound(t *testing.T) {
	t.Parallel()

	_, err := ReadTable(SourceRoster, filepath.Join(t.TempDir(), "missing.csv"))
	var notFound *SourceNotFoundError
	if !errors.As(err, &notFound) || notFound.Source != SourceRoster {
		t.Fatalf("want SourceNotFoundError, got %v", err)
	}
}

type fakeWorkbook struct {
	sheets [][][]string
}

func (f fakeWorkbook) NumSheets() int { return len(f.sheets) }

func (f fakeWorkbook) SheetRows(index, max int) [][]string {
	rows := f.sheets[index]
	if len(rows) > max {
		rows = rows[:max]
	}
	return rows
}

func TestFirstSheetRows(t *testing.T) {
	t.Parallel()

	book := fakeWorkbook{sheets: [][][]string{
		{{"SIS User ID", "Student"}, {"jd1234", "Doe, Jane"}},
		{{"Notes"}, {"ignored"}},
	}}
	rows, ok := firstSheetRows(book, 100)
	if !ok {
		t.Fatalf("workbook with sheets should be readable")
	}
	if len(rows) != 2 || rows[1][0] != "jd1234" {
		t.Fatalf("want only the first sheet, got %v", rows)
	}

	rows, _ = firstSheetRows(book, 1)
	if len(rows) != 1 {
		t.Fatalf("row limit not applied: %v", rows)
	}

	if _, ok := firstSheetRows(fakeWorkbook{}, 100); ok {
		t.Fatalf("empty workbook should fail")
	}
}
