package store

import (
	"errors"
	"sync"

	"github.com/awissink/latedays/internal/model"
)

// ErrEntryNotFound 学号不在花名册中
var ErrEntryNotFound = errors.New("roster entry not found")

// MemoryStore 花名册内存存储（按导入顺序保存）
type MemoryStore struct {
	entries map[string]*model.RosterEntry
	order   []string
	mu      sync.RWMutex
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*model.RosterEntry),
	}
}

// SetEntries 设置花名册（覆盖已有数据）
func (s *MemoryStore) SetEntries(entries []*model.RosterEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*model.RosterEntry, len(entries))
	s.order = make([]string, 0, len(entries))
	for _, e := range entries {
		if _, ok := s.entries[e.ID]; !ok {
			s.order = append(s.order, e.ID)
		}
		s.entries[e.ID] = e
	}
}

// GetEntry 获取单个条目
func (s *MemoryStore) GetEntry(id string) (*model.RosterEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, ErrEntryNotFound
	}
	return e, nil
}

// Has 学号是否在花名册中（区分大小写）
func (s *MemoryStore) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[id]
	return ok
}

// GetAllEntries 按导入顺序返回全部条目
func (s *MemoryStore) GetAllEntries() []*model.RosterEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*model.RosterEntry, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.entries[id])
	}
	return result
}

// ApplyOverrides 写入人工上限；不在花名册中的学号返回
func (s *MemoryStore) ApplyOverrides(category model.Category, overrides map[string]int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var unknown []string
	for id, v := range overrides {
		e, ok := s.entries[id]
		if !ok {
			unknown = append(unknown, id)
			continue
		}
		v := v
		switch category {
		case model.CategoryWritten:
			e.WrittenOverride = &v
		case model.CategoryProgramming:
			e.ProgrammingOverride = &v
		}
	}
	return unknown
}

// SetWrittenResult 写入书面作业结果
func (s *MemoryStore) SetWrittenResult(id string, r *model.WrittenResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return ErrEntryNotFound
	}
	e.Written = r
	return nil
}

// SetProgrammingResult 写入编程作业结果
func (s *MemoryStore) SetProgrammingResult(id string, r *model.ProgrammingResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return ErrEntryNotFound
	}
	e.Programming = r
	return nil
}

// DeductBudget 从剩余 late day 中扣除；预算缺失时保持缺失
func (s *MemoryStore) DeductBudget(id string, days int) (*model.RosterEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, ErrEntryNotFound
	}
	if e.Budget != nil {
		v := *e.Budget - days
		e.Budget = &v
	}
	return e, nil
}

// Count 条目数量
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
