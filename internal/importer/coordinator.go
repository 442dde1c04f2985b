package importer

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/awissink/latedays/internal/model"
	"github.com/awissink/latedays/internal/parser"
)

// Coordinator 导入协调器：依次读取花名册、Gradescope、Codio 三个输入
type Coordinator struct {
	logger *zap.Logger
}

// NewCoordinator 创建导入协调器
func NewCoordinator(logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{logger: logger}
}

// ImportOptions 导入选项
type ImportOptions struct {
	RosterPath      string
	WrittenPath     string
	ProgrammingPath string

	RosterColumns      []parser.FieldMapping
	WrittenColumns     []parser.FieldMapping
	ProgrammingColumns []parser.FieldMapping

	// SubmissionLocation Codio 时间戳所在时区（不带偏移量时使用）
	SubmissionLocation *time.Location

	// OnProgress 进度回调（可选）
	OnProgress func(ProgressEvent)
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"` // start/source_start/source_done/done/error
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// LoadResult 导入产物
type LoadResult struct {
	// RosterTable 花名册原表（生成回传文件时保留所有列）
	RosterTable *parser.Table
	Roster      []*model.RosterEntry
	Written     []*model.WrittenSubmission
	Programming []*model.ProgrammingSubmission
	Report      *parser.ImportReport
}

// Load 读取三个输入源；任一致命错误立即返回
func (c *Coordinator) Load(opts ImportOptions) (*LoadResult, error) {
	start := time.Now()
	result := &LoadResult{Report: &parser.ImportReport{}}

	c.sendProgress(opts, ProgressEvent{
		Type:    "start",
		Message: "loading sources",
		Data: map[string]string{
			"roster":      filepath.Base(opts.RosterPath),
			"written":     filepath.Base(opts.WrittenPath),
			"programming": filepath.Base(opts.ProgrammingPath),
		},
	})

	// 花名册
	table, err := c.readSource(opts, parser.SourceRoster, opts.RosterPath)
	if err != nil {
		return nil, err
	}
	result.RosterTable = table
	roster, pr, err := parser.NewRosterParser(opts.RosterColumns).Parse(table)
	c.recordSourceResult(opts, result.Report, pr)
	if err != nil {
		return nil, c.fail(opts, c.annotate(opts, table, err))
	}
	result.Roster = roster

	// Gradescope
	table, err = c.readSource(opts, parser.SourceWritten, opts.WrittenPath)
	if err != nil {
		return nil, err
	}
	written, pr, err := parser.NewWrittenParser(opts.WrittenColumns).Parse(table)
	c.recordSourceResult(opts, result.Report, pr)
	if err != nil {
		return nil, c.fail(opts, c.annotate(opts, table, err))
	}
	result.Written = written

	// Codio
	table, err = c.readSource(opts, parser.SourceProgramming, opts.ProgrammingPath)
	if err != nil {
		return nil, err
	}
	programming, pr, err := parser.NewProgrammingParser(opts.ProgrammingColumns, opts.SubmissionLocation).Parse(table)
	c.recordSourceResult(opts, result.Report, pr)
	if err != nil {
		return nil, c.fail(opts, c.annotate(opts, table, err))
	}
	result.Programming = programming

	result.Report.Duration = time.Since(start)
	c.sendProgress(opts, ProgressEvent{
		Type:    "done",
		Message: "sources loaded",
		Data:    result.Report,
	})
	return result, nil
}

// readSource 读取单个输入文件
func (c *Coordinator) readSource(opts ImportOptions, source parser.SourceKind, path string) (*parser.Table, error) {
	c.sendProgress(opts, ProgressEvent{
		Type:    "source_start",
		Message: fmt.Sprintf("reading %s source %s", source, filepath.Base(path)),
		Data:    map[string]string{"source": string(source), "path": path},
	})

	table, err := parser.ReadTable(source, path)
	if err != nil {
		return nil, c.fail(opts, err)
	}
	return table, nil
}

// recordSourceResult 记录单个输入源结果
func (c *Coordinator) recordSourceResult(opts ImportOptions, report *parser.ImportReport, result parser.ParseResult) {
	report.Sources = append(report.Sources, result)
	report.TotalRows += result.TotalRows
	report.ImportedRows += result.ImportedRows
	report.DroppedRows += result.DroppedRows

	c.logger.Info("source parsed",
		zap.String("source", string(result.Source)),
		zap.String("path", result.Path),
		zap.String("status", result.Status),
		zap.Int("rows", result.TotalRows),
		zap.Int("imported", result.ImportedRows),
		zap.Int("dropped", result.DroppedRows),
		zap.Int("issues", len(result.Issues)),
		zap.Duration("duration", result.Duration))

	c.sendProgress(opts, ProgressEvent{
		Type:    "source_done",
		Message: fmt.Sprintf("%s: %d rows imported", result.Source, result.ImportedRows),
		Data:    result,
	})
}

// annotate 缺列时识别文件实际是哪种导出
func (c *Coordinator) annotate(opts ImportOptions, table *parser.Table, err error) error {
	var missing *parser.MissingColumnError
	if !errors.As(err, &missing) {
		return err
	}
	res, ok := parser.NewSourceRecognizer().
		Register(parser.SourceRoster, opts.RosterColumns).
		Register(parser.SourceWritten, opts.WrittenColumns).
		Register(parser.SourceProgramming, opts.ProgrammingColumns).
		Recognize(table.Headers)
	if ok && res.Source != missing.Source {
		missing.LooksLike = res.Source
		c.logger.Warn("input file looks like a different export",
			zap.String("expected", string(missing.Source)),
			zap.String("looks_like", string(res.Source)),
			zap.Float64("confidence", res.Confidence),
			zap.String("path", table.Path))
	}
	return err
}

func (c *Coordinator) fail(opts ImportOptions, err error) error {
	c.sendProgress(opts, ProgressEvent{
		Type:    "error",
		Message: err.Error(),
	})
	return err
}

// sendProgress 发送进度事件
func (c *Coordinator) sendProgress(opts ImportOptions, event ProgressEvent) {
	if opts.OnProgress == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	opts.OnProgress(event)
}
