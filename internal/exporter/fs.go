package exporter

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

func ensureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// stagedFiles 先写临时文件，全部成功后统一 rename
type stagedFiles struct {
	pending map[string]string // 目标路径 -> 临时文件
	order   []string
}

func newStagedFiles() *stagedFiles {
	return &stagedFiles{pending: make(map[string]string)}
}

// write 写入目标路径对应的临时文件
func (s *stagedFiles) write(path string, fn func(w io.Writer) error) error {
	if err := ensureDir(filepath.Dir(path)); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	if err := fn(tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}

	if old, ok := s.pending[path]; ok {
		_ = os.Remove(old)
	} else {
		s.order = append(s.order, path)
	}
	s.pending[path] = tmp.Name()
	return nil
}

// commit 依次 rename 到目标路径
func (s *stagedFiles) commit() error {
	var errs []error
	for _, path := range s.order {
		if err := os.Rename(s.pending[path], path); err != nil {
			errs = append(errs, err)
			_ = os.Remove(s.pending[path])
		}
	}
	s.pending = map[string]string{}
	s.order = nil
	return errors.Join(errs...)
}

// abort 删除所有临时文件
func (s *stagedFiles) abort() {
	for _, tmp := range s.pending {
		_ = os.Remove(tmp)
	}
	s.pending = map[string]string{}
	s.order = nil
}
