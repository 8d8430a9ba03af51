package xfile

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Join 将相对名称 name 拼接到 dir 下，结果不会离开 dir
func Join(dir, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: name", ErrEmptyPath)
	}
	if strings.ContainsRune(dir, 0) || strings.ContainsRune(name, 0) {
		return "", ErrNullByte
	}
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return "", fmt.Errorf("%w: %q is absolute", ErrInvalidPath, name)
	}
	if hasDotDot(name) {
		return "", fmt.Errorf("%w: %q", ErrPathTraversal, name)
	}
	return filepath.Join(dir, name), nil
}

// hasDotDot 报告 p 是否包含独立的 ".." 路径段，两种分隔符都识别
func hasDotDot(p string) bool {
	for _, seg := range strings.FieldsFunc(p, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return true
		}
	}
	return false
}
