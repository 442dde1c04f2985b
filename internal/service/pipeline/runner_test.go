package pipeline

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/awissink/latedays/internal/config"
	"github.com/awissink/latedays/internal/model"
	"github.com/awissink/latedays/internal/parser"
	history "github.com/awissink/latedays/internal/store"
)

const rosterCSV = `Student,ID,SIS User ID,Section,Late Days Remaining (1021574)
Points Possible,,,,(read only)
"Doe, Jane",101,jd1234,COMS,5
"Roe, Rick",102,rr42,COMS,
`

const writtenCSV = `First Name,SID,Email,Status,Lateness (H:M:S)
Jane,jd1234,jd1234@columbia.edu,Graded,26:00:00
Rick,rr42,rr42@columbia.edu,Missing,
Ghost,zz00,zz00@columbia.edu,Graded,01:00:00
`

const programmingCSV = `first name,last name,email,completed,completed date
JD1234,Doe,jd1234@columbia.edu,TRUE,2023-02-22 06:30:00
Rick,Roe,rr42@columbia.edu,FALSE,not a date
Nobody,Else,nobody@example.com,TRUE,2023-02-20 10:00:00
`

func setup(t *testing.T) *config.AppConfig {
	t.Helper()
	dir := t.TempDir()
	for name, content := range map[string]string{
		"courseworks.csv": rosterCSV,
		"gradescope.csv":  writtenCSV,
		"codio.csv":       programmingCSV,
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}

	cfg := config.DefaultConfig()
	cfg.Files.DataDir = dir
	cfg.Files.LedgerXLSX = "final_late_days.xlsx"
	cfg.History.Enabled = true
	require.NoError(t, cfg.Validate())
	return cfg
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestRunner_Run(t *testing.T) {
	cfg := setup(t)

	res, err := NewRunner(cfg, zaptest.NewLogger(t)).Run(context.Background(), Options{})
	require.NoError(t, err)
	assert.True(t, res.Written)
	assert.NotEmpty(t, res.RunID)

	require.Len(t, res.Ledger.Rows, 2)
	jane, rick := res.Ledger.Rows[0], res.Ledger.Rows[1]
	assert.Equal(t, "jd1234", jane.ID)
	assert.Equal(t, 1, jane.WrittenLateDays)
	assert.Equal(t, 1, jane.ProgrammingLateDays)
	assert.Equal(t, model.IntPtr(3), jane.Budget)
	assert.Equal(t, "rr42", rick.ID)
	assert.Nil(t, rick.Budget)
	assert.Equal(t, 0, rick.ProgrammingLateDays)

	kinds := map[parser.IssueKind]int{}
	for _, issue := range res.Diagnostics.Issues {
		kinds[issue.Kind]++
	}
	assert.Equal(t, 1, kinds[parser.IssueNotEnrolled])
	assert.Equal(t, 1, kinds[parser.IssueUnresolvedIdentifier])
	assert.Equal(t, 1, kinds[parser.IssueUnparseableTimestamp])

	ledgerRecords := readCSV(t, res.Outputs.Ledger)
	require.Len(t, ledgerRecords, 3)
	assert.Equal(t, "3", ledgerRecords[1][2])

	importRecords := readCSV(t, res.Outputs.Import)
	assert.Equal(t, []string{"Points Possible", "", "", "", "(read only)"}, importRecords[1])
	assert.Equal(t, "3", importRecords[2][4])
	assert.Equal(t, "", importRecords[3][4])
	assert.FileExists(t, res.Outputs.LedgerXLSX)

	db, err := history.New(cfg.ResolvePath(cfg.History.DBPath))
	require.NoError(t, err)
	defer db.Close()
	run, err := db.GetRun(res.RunID)
	require.NoError(t, err)
	assert.Equal(t, history.RunStatusSucceeded, run.Status)
	assert.Equal(t, 2, run.LedgerRows)
	snaps, err := db.GetLedger(res.RunID)
	require.NoError(t, err)
	assert.Len(t, snaps, 2)
}

func TestRunner_Overrides(t *testing.T) {
	cfg := setup(t)
	cfg.Overrides.Written = map[string]int{"jd1234": 0, "unknown": 2}

	res, err := NewRunner(cfg, nil).Run(context.Background(), Options{DryRun: true})
	require.NoError(t, err)

	jane := res.Ledger.Rows[0]
	assert.Equal(t, 0, jane.WrittenLateDays)
	assert.Equal(t, model.IntPtr(4), jane.Budget)
}

func TestRunner_DryRunWritesNothing(t *testing.T) {
	cfg := setup(t)

	res, err := NewRunner(cfg, nil).Run(context.Background(), Options{DryRun: true})
	require.NoError(t, err)
	assert.False(t, res.Written)
	assert.NoFileExists(t, res.Outputs.Ledger)
	assert.NoFileExists(t, res.Outputs.Import)
}

func TestRunner_OutDir(t *testing.T) {
	cfg := setup(t)
	out := t.TempDir()

	res, err := NewRunner(cfg, nil).Run(context.Background(), Options{OutDir: out})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "final_late_days.csv"), res.Outputs.Ledger)
	assert.FileExists(t, res.Outputs.Ledger)
}

func TestRunner_MissingSourceIsFatal(t *testing.T) {
	cfg := setup(t)
	require.NoError(t, os.Remove(cfg.ResolvePath(cfg.Files.Programming)))

	res, err := NewRunner(cfg, nil).Run(context.Background(), Options{})
	var notFound *parser.SourceNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, parser.SourceProgramming, notFound.Source)

	assert.NoFileExists(t, res.Outputs.Ledger)
	assert.NoFileExists(t, res.Outputs.Import)

	db, err := history.New(cfg.ResolvePath(cfg.History.DBPath))
	require.NoError(t, err)
	defer db.Close()
	run, err := db.GetRun(res.RunID)
	require.NoError(t, err)
	assert.Equal(t, history.RunStatusFailed, run.Status)
	assert.NotEmpty(t, run.ErrorMessage)
}

func TestRunner_Cancelled(t *testing.T) {
	cfg := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(cfg, nil).Run(ctx, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}
