package exporter

import (
	"io"

	"github.com/awissink/latedays/internal/model"
	"github.com/awissink/latedays/internal/parser"
	"github.com/awissink/latedays/internal/service/ledger"
)

// Outputs 输出文件路径，LedgerXLSX 为空时不生成工作簿
type Outputs struct {
	Ledger     string
	LedgerXLSX string
	Import     string
}

// ImportSource 用于生成回导文件的花名册原表
type ImportSource struct {
	Table          *parser.Table
	NameColumn     string
	LateDaysColumn string
}

// ExportStage 导出阶段
type ExportStage string

const (
	StageImportTable ExportStage = "import-table"
	StageLedger      ExportStage = "ledger"
	StageImport      ExportStage = "import"
	StageWorkbook    ExportStage = "workbook"
	StageCommit      ExportStage = "commit"
	StageDone        ExportStage = "done"
)

var stagePercent = map[ExportStage]int{
	StageImportTable: 5,
	StageLedger:      20,
	StageImport:      50,
	StageWorkbook:    70,
	StageCommit:      90,
	StageDone:        100,
}

// ProgressEvent 导出进度；Path 为该阶段写出的目标文件
type ProgressEvent struct {
	Stage   ExportStage
	Percent int
	Path    string
}

// ExportOptions 导出参数
type ExportOptions struct {
	Outputs     Outputs
	Ledger      *model.Ledger
	Roster      ImportSource
	Diagnostics *ledger.Diagnostics
	OnProgress  func(ProgressEvent)
}

// Export 写出对账表、回导文件和可选工作簿
// 所有文件先写到临时文件，全部成功后才替换目标文件
func Export(opts ExportOptions) error {
	emit := func(stage ExportStage, path string) {
		if opts.OnProgress != nil {
			opts.OnProgress(ProgressEvent{Stage: stage, Percent: stagePercent[stage], Path: path})
		}
	}

	staged := newStagedFiles()
	committed := false
	defer func() {
		if !committed {
			staged.abort()
		}
	}()

	emit(StageImportTable, "")
	headers, rows, err := BuildImportTable(opts.Roster.Table, opts.Roster.NameColumn, opts.Roster.LateDaysColumn, opts.Ledger)
	if err != nil {
		return err
	}

	emit(StageLedger, opts.Outputs.Ledger)
	if err := staged.write(opts.Outputs.Ledger, func(w io.Writer) error {
		return parser.WriteCSV(w, LedgerHeaders, LedgerRecords(opts.Ledger))
	}); err != nil {
		return err
	}

	emit(StageImport, opts.Outputs.Import)
	if err := staged.write(opts.Outputs.Import, func(w io.Writer) error {
		return parser.WriteCSV(w, headers, rows)
	}); err != nil {
		return err
	}

	if opts.Outputs.LedgerXLSX != "" {
		emit(StageWorkbook, opts.Outputs.LedgerXLSX)
		if err := staged.write(opts.Outputs.LedgerXLSX, func(w io.Writer) error {
			return WriteWorkbook(w, opts.Ledger, opts.Diagnostics)
		}); err != nil {
			return err
		}
	}

	emit(StageCommit, "")
	if err := staged.commit(); err != nil {
		return err
	}
	committed = true
	emit(StageDone, "")
	return nil
}
