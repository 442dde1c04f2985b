package ledger

import (
	"errors"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/awissink/latedays/internal/calculator"
	"github.com/awissink/latedays/internal/model"
	"github.com/awissink/latedays/internal/parser"
	"github.com/awissink/latedays/internal/service/store"
)

// ErrAlreadyReconciled 同一份花名册只能扣减一次
var ErrAlreadyReconciled = errors.New("ledger already reconciled")

// Engine 迟交计算引擎：两个解析器 + 对账
type Engine struct {
	store    *store.MemoryStore
	policy   *calculator.Policy
	resolver *calculator.IdentityResolver
	logger   *zap.Logger

	reconciled bool
}

// NewEngine 创建计算引擎
func NewEngine(store *store.MemoryStore, policy *calculator.Policy, logger *zap.Logger, strategies ...calculator.IdentityStrategy) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:    store,
		policy:   policy,
		resolver: calculator.NewIdentityResolver(store, strategies...),
		logger:   logger,
	}
}

// ApplyWritten 计算书面作业 late day 并 join 到花名册
// 不在花名册中的学号被丢弃（避免产生新行），同一学号只取第一行
func (e *Engine) ApplyWritten(subs []*model.WrittenSubmission) []parser.RowIssue {
	var issues []parser.RowIssue
	joined := make(map[string]int, len(subs))

	for _, sub := range subs {
		if !e.store.Has(sub.ID) {
			issues = append(issues, parser.RowIssue{
				Source: parser.SourceWritten,
				Kind:   parser.IssueNotEnrolled,
				RowNo:  sub.RowNo,
				Key:    sub.ID,
				Detail: sub.Status,
			})
			continue
		}
		if first, ok := joined[sub.ID]; ok {
			issues = append(issues, duplicateIssue(parser.SourceWritten, sub.RowNo, sub.ID, first))
			continue
		}
		joined[sub.ID] = sub.RowNo

		entry, err := e.store.GetEntry(sub.ID)
		if err != nil {
			continue
		}

		var computed *int
		if sub.Duration != nil {
			computed = model.IntPtr(e.policy.WrittenLateDays(*sub.Duration))
		}
		result := &model.WrittenResult{
			Lateness:         sub.Lateness,
			Status:           sub.Status,
			ComputedLateDays: computed,
			LateDays:         calculator.CapLateDays(computed, entry.Override(model.CategoryWritten)),
		}
		_ = e.store.SetWrittenResult(sub.ID, result)
	}

	e.logger.Debug("written submissions joined",
		zap.Int("rows", len(subs)),
		zap.Int("joined", len(joined)),
		zap.Int("issues", len(issues)))
	return issues
}

// ApplyProgramming 计算编程作业 late day 并 join 到花名册
// 学号按策略顺序解析，解析失败的行不参与 join 并登记问题
func (e *Engine) ApplyProgramming(subs []*model.ProgrammingSubmission) []parser.RowIssue {
	var issues []parser.RowIssue
	joined := make(map[string]int, len(subs))

	for _, sub := range subs {
		res := e.resolver.Resolve(sub)
		if !res.Resolved {
			issues = append(issues, parser.RowIssue{
				Source: parser.SourceProgramming,
				Kind:   parser.IssueUnresolvedIdentifier,
				RowNo:  sub.RowNo,
				Key:    sub.NameToken,
				Detail: sub.Email,
			})
			continue
		}
		if first, ok := joined[res.ID]; ok {
			issues = append(issues, duplicateIssue(parser.SourceProgramming, sub.RowNo, res.ID, first))
			continue
		}
		joined[res.ID] = sub.RowNo

		entry, err := e.store.GetEntry(res.ID)
		if err != nil {
			continue
		}

		result := &model.ProgrammingResult{Completed: sub.Completed}
		if sub.SubmitTime != nil {
			local := sub.SubmitTime.In(e.policy.Location())
			lateness := e.policy.ProgrammingLateness(local)
			result.SubmitTime = &local
			result.Lateness = &lateness
			result.ComputedLateDays = model.IntPtr(e.policy.ProgrammingLateDays(lateness))
		}
		result.LateDays = calculator.CapLateDays(result.ComputedLateDays, entry.Override(model.CategoryProgramming))
		_ = e.store.SetProgrammingResult(res.ID, result)

		if res.Strategy != (calculator.NameTokenStrategy{}).Name() {
			e.logger.Debug("programming identifier resolved by fallback",
				zap.Int("row", sub.RowNo),
				zap.String("id", res.ID),
				zap.String("strategy", res.Strategy))
		}
	}

	e.logger.Debug("programming submissions joined",
		zap.Int("rows", len(subs)),
		zap.Int("joined", len(joined)),
		zap.Int("issues", len(issues)))
	return issues
}

// Reconcile 缺失值按 0 处理，从剩余预算中扣除两类 late day，返回按姓名排序的对账表
func (e *Engine) Reconcile() (*model.Ledger, error) {
	if e.reconciled {
		return nil, ErrAlreadyReconciled
	}
	e.reconciled = true

	entries := e.store.GetAllEntries()
	rows := make([]*model.LedgerRow, 0, len(entries))
	for _, entry := range entries {
		written := model.IntValue(entry.WrittenLateDays())
		programming := model.IntValue(entry.ProgrammingLateDays())

		updated, err := e.store.DeductBudget(entry.ID, written+programming)
		if err != nil {
			return nil, err
		}
		rows = append(rows, buildRow(updated, written, programming))
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].ID < rows[j].ID
	})

	return &model.Ledger{Rows: rows}, nil
}

// Exceeding 任一类别 late day 超过阈值的学生
func Exceeding(ledger *model.Ledger, threshold int) []*model.LedgerRow {
	var out []*model.LedgerRow
	for _, r := range ledger.Rows {
		if r.ExceedsThreshold(threshold) {
			out = append(out, r)
		}
	}
	return out
}

func buildRow(entry *model.RosterEntry, written, programming int) *model.LedgerRow {
	row := &model.LedgerRow{
		ID:                  entry.ID,
		Name:                entry.Name,
		Budget:              entry.Budget,
		WrittenOverride:     entry.WrittenOverride,
		WrittenLateDays:     written,
		ProgrammingOverride: entry.ProgrammingOverride,
		ProgrammingLateDays: programming,
	}
	if w := entry.Written; w != nil {
		row.WrittenLateness = w.Lateness
		row.WrittenStatus = w.Status
	}
	if p := entry.Programming; p != nil {
		row.ProgrammingSubmitTime = p.SubmitTime
		row.ProgrammingLateness = p.Lateness
		row.ProgrammingCompleted = p.Completed
	}
	return row
}

func duplicateIssue(source parser.SourceKind, rowNo int, id string, firstRow int) parser.RowIssue {
	return parser.RowIssue{
		Source: source,
		Kind:   parser.IssueDuplicateSubmission,
		RowNo:  rowNo,
		Key:    id,
		Detail: "already joined from row " + strconv.Itoa(firstRow),
	}
}
