package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/awissink/latedays/internal/config"
	"github.com/awissink/latedays/internal/exporter"
	"github.com/awissink/latedays/internal/importer"
	"github.com/awissink/latedays/internal/model"
	"github.com/awissink/latedays/internal/parser"
	"github.com/awissink/latedays/internal/service/ledger"
	"github.com/awissink/latedays/internal/service/store"
	history "github.com/awissink/latedays/internal/store"
)

// Options 单次运行参数
type Options struct {
	// DryRun 只计算和打印诊断，不写任何输出文件
	DryRun bool
	// OutDir 非空时输出文件写到该目录（仅取文件名）
	OutDir string
}

// Result 单次运行产物
type Result struct {
	RunID       string
	Ledger      *model.Ledger
	Diagnostics *ledger.Diagnostics
	Report      *parser.ImportReport
	Outputs     exporter.Outputs
	Written     bool
	Duration    time.Duration
}

// Runner 串起导入、计算、对账、导出和运行记录
type Runner struct {
	cfg    *config.AppConfig
	logger *zap.Logger
}

// NewRunner 创建运行器，cfg 需已通过校验
func NewRunner(cfg *config.AppConfig, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{cfg: cfg, logger: logger}
}

// Run 执行一次完整对账；任何致命错误都发生在写出之前
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := r.logger.With(zap.String("run_id", runID))

	res := &Result{RunID: runID, Outputs: r.outputs(opts.OutDir)}

	rec := r.openHistory(logger, runID, start, opts.DryRun)
	defer rec.close()

	err := r.run(ctx, logger, opts, res)
	res.Duration = time.Since(start)
	rec.finish(res, err)
	if err != nil {
		logger.Error("run failed", zap.Error(err), zap.Duration("duration", res.Duration))
		return res, err
	}

	logger.Info("run finished",
		zap.Int("students", len(res.Ledger.Rows)),
		zap.Int("issues", len(res.Diagnostics.Issues)),
		zap.Bool("written", res.Written),
		zap.Duration("duration", res.Duration))
	return res, nil
}

func (r *Runner) run(ctx context.Context, logger *zap.Logger, opts Options, res *Result) error {
	policy, err := r.cfg.Policy()
	if err != nil {
		return err
	}
	subLoc, err := r.cfg.SubmissionLocation()
	if err != nil {
		return err
	}

	loaded, err := importer.NewCoordinator(logger).Load(importer.ImportOptions{
		RosterPath:         r.cfg.ResolvePath(r.cfg.Files.Roster),
		WrittenPath:        r.cfg.ResolvePath(r.cfg.Files.Written),
		ProgrammingPath:    r.cfg.ResolvePath(r.cfg.Files.Programming),
		RosterColumns:      r.cfg.RosterMapping(),
		WrittenColumns:     r.cfg.WrittenMapping(),
		ProgrammingColumns: r.cfg.ProgrammingMapping(),
		SubmissionLocation: subLoc,
		OnProgress: func(e importer.ProgressEvent) {
			logger.Debug("import progress", zap.String("type", e.Type), zap.String("message", e.Message))
		},
	})
	if err != nil {
		return err
	}
	res.Report = loaded.Report
	if err := ctx.Err(); err != nil {
		return err
	}

	mem := store.NewMemoryStore()
	mem.SetEntries(loaded.Roster)
	logger.Info("roster loaded", zap.Int("students", mem.Count()))
	r.applyOverrides(logger, mem, model.CategoryWritten, r.cfg.Overrides.Written)
	r.applyOverrides(logger, mem, model.CategoryProgramming, r.cfg.Overrides.Programming)

	engine := ledger.NewEngine(mem, policy, logger)
	issues := loaded.Report.Issues()
	issues = append(issues, engine.ApplyWritten(loaded.Written)...)
	issues = append(issues, engine.ApplyProgramming(loaded.Programming)...)

	l, err := engine.Reconcile()
	if err != nil {
		return err
	}
	res.Ledger = l
	res.Diagnostics = ledger.BuildDiagnostics(l, issues, r.cfg.Course.ExceedThreshold)
	if err := ctx.Err(); err != nil {
		return err
	}

	if opts.DryRun {
		logger.Info("dry run, outputs skipped")
		return nil
	}

	err = exporter.Export(exporter.ExportOptions{
		Outputs: res.Outputs,
		Ledger:  l,
		Roster: exporter.ImportSource{
			Table:          loaded.RosterTable,
			NameColumn:     r.cfg.Columns.Roster.Name,
			LateDaysColumn: r.cfg.Columns.Roster.LateDays,
		},
		Diagnostics: res.Diagnostics,
		OnProgress: func(e exporter.ProgressEvent) {
			logger.Debug("export progress", zap.Int("percent", e.Percent), zap.String("stage", string(e.Stage)), zap.String("path", e.Path))
		},
	})
	if err != nil {
		return fmt.Errorf("failed to write outputs: %w", err)
	}
	res.Written = true
	return nil
}

func (r *Runner) applyOverrides(logger *zap.Logger, mem *store.MemoryStore, category model.Category, overrides map[string]int) {
	unknown := mem.ApplyOverrides(category, overrides)
	sort.Strings(unknown)
	for _, id := range unknown {
		logger.Warn("override for student not on roster", zap.String("category", string(category)), zap.String("id", id))
	}
}

func (r *Runner) outputs(outDir string) exporter.Outputs {
	path := func(p string) string {
		if p == "" {
			return ""
		}
		if outDir != "" {
			return filepath.Join(outDir, filepath.Base(p))
		}
		return r.cfg.ResolvePath(p)
	}
	return exporter.Outputs{
		Ledger:     path(r.cfg.Files.Ledger),
		LedgerXLSX: path(r.cfg.Files.LedgerXLSX),
		Import:     path(r.cfg.Files.Import),
	}
}

// recorder 运行记录；未启用或打开失败时为空操作
type recorder struct {
	db     *history.Store
	run    *history.Run
	logger *zap.Logger
}

func (r *Runner) openHistory(logger *zap.Logger, runID string, start time.Time, dryRun bool) *recorder {
	rec := &recorder{logger: logger}
	if !r.cfg.History.Enabled {
		return rec
	}

	db, err := history.New(r.cfg.ResolvePath(r.cfg.History.DBPath))
	if err != nil {
		logger.Warn("history disabled for this run", zap.Error(err))
		return rec
	}
	run := &history.Run{
		ID:              runID,
		StartedAt:       start,
		DryRun:          dryRun,
		Deadline:        r.cfg.Course.Deadline,
		GraceHours:      r.cfg.Course.GracePeriodHours,
		RosterPath:      r.cfg.ResolvePath(r.cfg.Files.Roster),
		WrittenPath:     r.cfg.ResolvePath(r.cfg.Files.Written),
		ProgrammingPath: r.cfg.ResolvePath(r.cfg.Files.Programming),
	}
	if err := db.CreateRun(run); err != nil {
		logger.Warn("history disabled for this run", zap.Error(err))
		_ = db.Close()
		return rec
	}
	rec.db = db
	rec.run = run
	return rec
}

func (rec *recorder) finish(res *Result, runErr error) {
	if rec.db == nil {
		return
	}
	run := rec.run
	if res.Report != nil {
		run.TotalRows = res.Report.TotalRows
		run.ImportedRows = res.Report.ImportedRows
		run.DroppedRows = res.Report.DroppedRows
	}
	if res.Diagnostics != nil {
		run.IssueCount = len(res.Diagnostics.Issues)
	}
	if res.Ledger != nil {
		run.LedgerRows = len(res.Ledger.Rows)
	}

	run.Status = history.RunStatusSucceeded
	if runErr != nil {
		run.Status = history.RunStatusFailed
		run.ErrorMessage = runErr.Error()
	} else if err := rec.db.RecordLedger(run.ID, res.Ledger, res.Diagnostics.Issues); err != nil {
		rec.logger.Warn("failed to record ledger history", zap.Error(err))
	}

	if err := rec.db.FinishRun(run); err != nil {
		rec.logger.Warn("failed to finish history run", zap.Error(err))
	}
}

func (rec *recorder) close() {
	if rec.db != nil {
		_ = rec.db.Close()
	}
}
