package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/awissink/latedays/internal/model"
	"github.com/awissink/latedays/internal/parser"
)

// 运行状态
const (
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// ErrRunNotFound 运行记录不存在
var ErrRunNotFound = errors.New("run not found")

// 定长格式，保证按字符串排序即按时间排序
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run 一次对账运行
type Run struct {
	ID              string
	StartedAt       time.Time
	FinishedAt      *time.Time
	Status          string
	DryRun          bool
	Deadline        string
	GraceHours      int
	RosterPath      string
	WrittenPath     string
	ProgrammingPath string
	TotalRows       int
	ImportedRows    int
	DroppedRows     int
	IssueCount      int
	LedgerRows      int
	ErrorMessage    string
}

// LedgerSnapshot 历史中保存的对账行
type LedgerSnapshot struct {
	ID                  string
	Name                string
	Budget              *int
	WrittenLateDays     int
	ProgrammingLateDays int
}

// CreateRun 登记一次运行
func (s *Store) CreateRun(run *Run) error {
	_, err := s.db.Exec(`
		INSERT INTO runs (id, started_at, status, dry_run, deadline, grace_hours,
			roster_path, written_path, programming_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.StartedAt.UTC().Format(timeLayout), RunStatusRunning, run.DryRun,
		run.Deadline, run.GraceHours, run.RosterPath, run.WrittenPath, run.ProgrammingPath)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	run.Status = RunStatusRunning
	return nil
}

// FinishRun 更新运行结果
func (s *Store) FinishRun(run *Run) error {
	finished := time.Now()
	if run.FinishedAt != nil {
		finished = *run.FinishedAt
	}
	res, err := s.db.Exec(`
		UPDATE runs SET
			finished_at = ?,
			status = ?,
			total_rows = ?,
			imported_rows = ?,
			dropped_rows = ?,
			issue_count = ?,
			ledger_rows = ?,
			error_message = ?
		WHERE id = ?
	`, finished.UTC().Format(timeLayout), run.Status, run.TotalRows, run.ImportedRows,
		run.DroppedRows, run.IssueCount, run.LedgerRows, run.ErrorMessage, run.ID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRunNotFound
	}
	run.FinishedAt = &finished
	return nil
}

// RecordLedger 保存对账结果和行级问题
func (s *Store) RecordLedger(runID string, ledger *model.Ledger, issues []parser.RowIssue) error {
	return s.withTx(func(tx *sql.Tx) error {
		rowStmt, err := tx.Prepare(`
			INSERT INTO ledger_rows (run_id, uni, names, total_late_days, writ_late_days, prog_late_days)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer rowStmt.Close()

		for _, r := range ledger.Rows {
			var budget interface{}
			if r.Budget != nil {
				budget = *r.Budget
			}
			if _, err := rowStmt.Exec(runID, r.ID, r.Name, budget, r.WrittenLateDays, r.ProgrammingLateDays); err != nil {
				return fmt.Errorf("failed to record ledger row %s: %w", r.ID, err)
			}
		}

		issueStmt, err := tx.Prepare(`
			INSERT INTO run_issues (run_id, source, kind, row_no, key, detail)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer issueStmt.Close()

		for _, issue := range issues {
			if _, err := issueStmt.Exec(runID, string(issue.Source), string(issue.Kind), issue.RowNo, issue.Key, issue.Detail); err != nil {
				return fmt.Errorf("failed to record issue: %w", err)
			}
		}
		return nil
	})
}

// ListRuns 最近的运行，按开始时间倒序
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, started_at, finished_at, status, dry_run, deadline, grace_hours,
			roster_path, written_path, programming_path,
			total_rows, imported_rows, dropped_rows, issue_count, ledger_rows, error_message
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun 查询单次运行
func (s *Store) GetRun(id string) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT id, started_at, finished_at, status, dry_run, deadline, grace_hours,
			roster_path, written_path, programming_path,
			total_rows, imported_rows, dropped_rows, issue_count, ledger_rows, error_message
		FROM runs WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	return run, err
}

// GetLedger 查询某次运行保存的对账结果
func (s *Store) GetLedger(runID string) ([]LedgerSnapshot, error) {
	rows, err := s.db.Query(`
		SELECT uni, names, total_late_days, writ_late_days, prog_late_days
		FROM ledger_rows WHERE run_id = ?
		ORDER BY names, uni
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger rows: %w", err)
	}
	defer rows.Close()

	var out []LedgerSnapshot
	for rows.Next() {
		var snap LedgerSnapshot
		var budget sql.NullInt64
		if err := rows.Scan(&snap.ID, &snap.Name, &budget, &snap.WrittenLateDays, &snap.ProgrammingLateDays); err != nil {
			return nil, err
		}
		if budget.Valid {
			snap.Budget = model.IntPtr(int(budget.Int64))
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		run      Run
		started  string
		finished sql.NullString
	)
	if err := sc.Scan(&run.ID, &started, &finished, &run.Status, &run.DryRun, &run.Deadline, &run.GraceHours,
		&run.RosterPath, &run.WrittenPath, &run.ProgrammingPath,
		&run.TotalRows, &run.ImportedRows, &run.DroppedRows, &run.IssueCount, &run.LedgerRows, &run.ErrorMessage); err != nil {
		return nil, err
	}

	t, err := time.Parse(timeLayout, started)
	if err != nil {
		return nil, fmt.Errorf("run %s: bad started_at %q: %w", run.ID, started, err)
	}
	run.StartedAt = t
	if finished.Valid {
		t, err := time.Parse(timeLayout, finished.String)
		if err != nil {
			return nil, fmt.Errorf("run %s: bad finished_at %q: %w", run.ID, finished.String, err)
		}
		run.FinishedAt = &t
	}
	return &run, nil
}
