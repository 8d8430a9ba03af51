package xfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultDirPerm 自动创建的父目录权限
const DefaultDirPerm = 0o750

// DefaultFilePerm WriteAtomic 写出的文件权限
const DefaultFilePerm = 0o644

// EnsureDir 确保 filename 的父目录存在
func EnsureDir(filename string) error {
	if filename == "" {
		return ErrEmptyPath
	}
	if strings.ContainsRune(filename, 0) {
		return ErrNullByte
	}
	dir := filepath.Dir(filename)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, DefaultDirPerm)
}

// WriteAtomic 以 DefaultFilePerm 原子地替换 filename 的内容
//
// 失败时 filename 保持原样，临时文件被删除。
func WriteAtomic(filename string, data []byte) error {
	if err := EnsureDir(filename); err != nil {
		return fmt.Errorf("xfile: create parent of %s: %w", filename, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(filename), "."+filepath.Base(filename)+".*")
	if err != nil {
		return fmt.Errorf("xfile: create temp file: %w", err)
	}
	name := tmp.Name()
	defer func() { _ = os.Remove(name) }() //nolint:errcheck // rename 成功后文件已不存在

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close() //nolint:errcheck // 已有写入错误
		return fmt.Errorf("xfile: write %s: %w", filename, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("xfile: write %s: %w", filename, err)
	}
	if err := os.Chmod(name, DefaultFilePerm); err != nil {
		return fmt.Errorf("xfile: chmod %s: %w", filename, err)
	}
	if err := os.Rename(name, filename); err != nil {
		return fmt.Errorf("xfile: rename %s: %w", filename, err)
	}
	return nil
}
