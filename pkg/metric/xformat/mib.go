package xformat

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/template"

	"github.com/omeyang/xmon/pkg/metric/xschema"
	"github.com/omeyang/xmon/pkg/util/xfile"
)

// Object MIB 树中的一个节点
type Object struct {
	// Parent 父节点显示名
	Parent string
	// Name 节点显示名
	Name string
	// OID 节点在父节点下的编号
	OID string
	// Record 叶子节点对应的记录，中间节点为 nil
	Record *xschema.Record
}

// Objects 将扫描结果展开为 MIB 对象列表
//
// 记录名称与 oid 按段一一对应（oid 根应是与名称根相同的符号，例如 Generate
// 以 "hadoop" 同时作为 oid 和 name 前缀）。每个中间节点只出现一次，
// 顺序为按记录名称排序后的首次出现顺序。
func Objects(metrics Metrics) []Object {
	keys := make([]string, 0, len(metrics))
	for key := range metrics {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	seen := make(map[[2]string]int)
	var objects []Object
	for _, key := range keys {
		rec := metrics[key]
		names := strings.Split(rec.Name, ".")
		oids := strings.Split(rec.OID, ".")
		n := min(len(names), len(oids))
		if n < 2 {
			continue
		}

		parent := names[0]
		for i := 1; i < n; i++ {
			child := parent + "." + names[i]
			id := [2]string{parent, child}
			idx, ok := seen[id]
			if !ok {
				objects = append(objects, Object{
					Parent: xschema.DisplayName(parent),
					Name:   xschema.DisplayName(child),
				})
				idx = len(objects) - 1
				seen[id] = idx
			}
			objects[idx].OID = oids[i]
			if child == key {
				r := rec
				objects[idx].Record = &r
			}
			parent = child
		}
	}
	return objects
}

// TemplateExt MIB 模板文件扩展名
const TemplateExt = ".txt"

// RenderMIB 用 templateDir 下的每个 *.txt 模板渲染 objects，结果写入 outDir 的同名文件
//
// outDir 会被清空后重建。模板数据为 {"Objects": objects}。
func RenderMIB(objects []Object, templateDir, outDir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(templateDir, "*"+TemplateExt))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTemplate, err)
	}
	slices.Sort(files)

	if err := os.RemoveAll(outDir); err != nil {
		return nil, fmt.Errorf("xformat: clean output: %w", err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("xformat: create output: %w", err)
	}

	data := map[string]any{"Objects": objects}
	written := make([]string, 0, len(files))
	for _, file := range files {
		name := filepath.Base(file)
		tmpl, err := template.New(name).Funcs(templateFuncs).ParseFiles(file)
		if err != nil {
			return written, fmt.Errorf("%w: %s: %w", ErrTemplate, name, err)
		}

		var b strings.Builder
		if err := tmpl.Execute(&b, data); err != nil {
			return written, fmt.Errorf("%w: %s: %w", ErrTemplate, name, err)
		}
		out := filepath.Join(outDir, name)
		if err := xfile.WriteAtomic(out, []byte(b.String())); err != nil {
			return written, err
		}
		written = append(written, out)
	}
	return written, nil
}

var templateFuncs = template.FuncMap{
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}
