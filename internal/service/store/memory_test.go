package store

import (
	"errors"
	"sync"
	"testing"

	"github.com/awissink/latedays/internal/model"
)

// TestNewMemoryStore 测试创建存储
func TestNewMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	if store == nil {
		t.Fatal("NewMemoryStore() returned nil")
	}
	if store.Count() != 0 {
		t.Errorf("New store should be empty, got %d entries", store.Count())
	}
}

// TestSetEntriesKeepsOrder 测试导入顺序
func TestSetEntriesKeepsOrder(t *testing.T) {
	store := NewMemoryStore()
	store.SetEntries([]*model.RosterEntry{
		{ID: "zz1", Name: "Zed"},
		{ID: "aa1", Name: "Ann"},
		{ID: "mm1", Name: "Mo"},
	})

	all := store.GetAllEntries()
	if len(all) != 3 {
		t.Fatalf("want 3 entries, got %d", len(all))
	}
	for i, want := range []string{"zz1", "aa1", "mm1"} {
		if all[i].ID != want {
			t.Errorf("entry %d = %s, want %s", i, all[i].ID, want)
		}
	}
}

// TestHasIsCaseSensitive 测试学号区分大小写
func TestHasIsCaseSensitive(t *testing.T) {
	store := NewMemoryStore()
	store.SetEntries([]*model.RosterEntry{{ID: "abc123"}})

	if !store.Has("abc123") {
		t.Error("abc123 should be present")
	}
	if store.Has("ABC123") {
		t.Error("ABC123 should not match abc123")
	}
}

// TestGetEntryNotFound 测试获取不存在的学生
func TestGetEntryNotFound(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.GetEntry("nobody")
	if !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("GetEntry error = %v, want ErrEntryNotFound", err)
	}
}

// TestApplyOverrides 测试人工上限写入
func TestApplyOverrides(t *testing.T) {
	store := NewMemoryStore()
	store.SetEntries([]*model.RosterEntry{{ID: "abc123"}, {ID: "def456"}})

	unknown := store.ApplyOverrides(model.CategoryWritten, map[string]int{"abc123": 0, "ghost": 2})
	if len(unknown) != 1 || unknown[0] != "ghost" {
		t.Errorf("unknown = %v, want [ghost]", unknown)
	}

	e, _ := store.GetEntry("abc123")
	if e.WrittenOverride == nil || *e.WrittenOverride != 0 {
		t.Errorf("WrittenOverride = %v, want 0", e.WrittenOverride)
	}
	if e.ProgrammingOverride != nil {
		t.Errorf("ProgrammingOverride should stay nil")
	}
}

// TestDeductBudget 测试扣减剩余 late day
func TestDeductBudget(t *testing.T) {
	store := NewMemoryStore()
	store.SetEntries([]*model.RosterEntry{
		{ID: "abc123", Budget: model.IntPtr(5)},
		{ID: "def456"},
	})

	e, err := store.DeductBudget("abc123", 3)
	if err != nil {
		t.Fatalf("DeductBudget failed: %v", err)
	}
	if *e.Budget != 2 {
		t.Errorf("Budget = %d, want 2", *e.Budget)
	}

	e, _ = store.DeductBudget("def456", 1)
	if e.Budget != nil {
		t.Errorf("missing budget should stay missing, got %d", *e.Budget)
	}
}

// TestConcurrentAccess 测试并发访问安全性
func TestConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()

	entries := make([]*model.RosterEntry, 100)
	for i := 0; i < 100; i++ {
		entries[i] = &model.RosterEntry{ID: string(rune('A' + i)), Budget: model.IntPtr(10)}
	}
	store.SetEntries(entries)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.GetAllEntries()
		}()
		go func(idx int) {
			defer wg.Done()
			_, _ = store.DeductBudget(string(rune('A'+idx)), 1)
		}(i)
	}
	wg.Wait()

	if store.Count() != 100 {
		t.Errorf("After concurrent access, count = %d, want 100", store.Count())
	}
}

// TestSetEntriesReplaces 测试重新设置花名册会覆盖旧数据
func TestSetEntriesReplaces(t *testing.T) {
	store := NewMemoryStore()
	store.SetEntries([]*model.RosterEntry{{ID: "c1"}, {ID: "c2"}})
	store.SetEntries([]*model.RosterEntry{{ID: "c3"}})

	if store.Count() != 1 {
		t.Errorf("count = %d, want 1", store.Count())
	}
	if store.Has("c1") {
		t.Error("c1 should have been replaced")
	}
}
