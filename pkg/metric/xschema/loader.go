package xschema

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/omeyang/xmon/pkg/observability/xlog"
	"github.com/omeyang/xmon/pkg/util/xfile"
)

// Ext schema 文档的扩展名
const Ext = ".yaml"

// koanfDelim 键路径分隔符。schema 键名可能包含 "."，这里使用不会出现在键名中的字符。
const koanfDelim = "\x1f"

// Load 从 dir 加载名为 name 的 schema（<dir>/<name>.yaml）
//
// 文档不存在时返回 ErrSchemaNotFound 并记录 warn 日志。
func Load(dir, name string, opts ...Option) (*Schema, error) {
	logger := applyOptions(opts).log()
	filename, err := xfile.Join(dir, name+Ext)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	s, err := LoadFile(filename, append([]Option{WithName(name)}, opts...)...)
	if err != nil {
		if errors.Is(err, ErrSchemaNotFound) {
			logger.Warn(context.Background(), "could not load schema", xlog.Schema(name), xlog.Path(filename))
		}
		return nil, err
	}
	logger.Info(context.Background(), "schema loaded", xlog.Schema(name), xlog.Path(filename))
	return s, nil
}

// LoadFile 从文件加载 schema
//
// 未通过 WithName 指定名称时使用文件名（不含扩展名）。
func LoadFile(filename string, opts ...Option) (*Schema, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSchemaNotFound, filename)
		}
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return Parse(data, append([]Option{WithName(base)}, opts...)...)
}

// Parse 从 YAML 数据构建 schema
//
// 空文档得到一个空根节点。
func Parse(data []byte, opts ...Option) (*Schema, error) {
	k := koanf.New(koanfDelim)
	if len(data) > 0 {
		if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
		}
	}

	root, err := decodeNode(k.Raw(), "root")
	if err != nil {
		return nil, err
	}
	s := newSchema(root, opts)
	if err := s.check(root, "root"); err != nil {
		return nil, err
	}
	return s, nil
}

// Available 列出 dir 中可用的 schema 名称（按字母序）
func Available(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+Ext))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(filepath.Base(m), Ext))
	}
	sort.Strings(names)
	return names, nil
}
