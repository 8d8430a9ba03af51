package xformat

import (
	"encoding/json"
	"fmt"
	"math"
	"path"
	"slices"
	"strings"

	"github.com/omeyang/xmon/pkg/metric/xpath"
	"github.com/omeyang/xmon/pkg/metric/xschema"
)

// Metrics 扫描结果，名称 → 记录
type Metrics = map[string]xschema.Record

// Formatter 将匹配 pattern 的记录渲染为文本
type Formatter func(metrics Metrics, pattern string) (string, error)

// 支持的格式名
const (
	FormatHuman    = "human"
	FormatSubagent = "subagent"
	FormatJSON     = "json"
)

// Lookup 按名称返回 Formatter
func Lookup(name string) (Formatter, error) {
	switch name {
	case FormatHuman:
		return Human, nil
	case FormatSubagent:
		return Subagent, nil
	case FormatJSON:
		return JSON, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// Formats 返回支持的格式名
func Formats() []string {
	return []string{FormatHuman, FormatSubagent, FormatJSON}
}

// Filter 返回名称匹配 pattern 的键（按字母序）
func Filter(metrics Metrics, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*"
	}
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrBadPattern, pattern)
	}

	keys := make([]string, 0, len(metrics))
	for key := range metrics {
		if ok, _ := path.Match(pattern, key); ok {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

// Human 每行 "name: value unit"，冒号后按最长名称对齐
//
// 对齐宽度按所有匹配的名称计算，value 为 nil 的记录不输出。
func Human(metrics Metrics, pattern string) (string, error) {
	keys, err := Filter(metrics, pattern)
	if err != nil || len(keys) == 0 {
		return "", err
	}

	width := 0
	for _, key := range keys {
		width = max(width, len(key))
	}

	var b strings.Builder
	for _, key := range keys {
		rec := metrics[key]
		if rec.Value == nil {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(key)
		b.WriteByte(':')
		b.WriteString(strings.Repeat(" ", width-len(key)+1))
		b.WriteString(humanValue(rec))
	}
	return b.String(), nil
}

func humanValue(rec xschema.Record) string {
	if rec.Unit == "bytes" {
		if n, ok := Float(rec.Value); ok {
			return HumanSize(n)
		}
	}
	v := xpath.Format(rec.Value)
	if rec.Unit == "" {
		return v
	}
	return v + " " + rec.Unit
}

var sizeUnits = []string{"", "Ki", "Mi", "Gi", "Ti", "Pi", "Ei", "Zi"}

// HumanSize 以 1024 进制格式化字节数，保留一位小数
//
//	13 → 13.0B, 1024 → 1.0KiB, 1048576 → 1.0MiB
func HumanSize(n float64) string {
	for _, unit := range sizeUnits {
		if math.Abs(n) < 1024 {
			return fmt.Sprintf("%3.1f%sB", n, unit)
		}
		n /= 1024
	}
	return fmt.Sprintf("%.1fYiB", n)
}

// Float 将数值类型的指标值转换为 float64，非数值返回 false
func Float(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// Subagent 每行 "display_name = value"，按名称排序，跳过 nil
func Subagent(metrics Metrics, pattern string) (string, error) {
	keys, err := Filter(metrics, pattern)
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		rec := metrics[key]
		if rec.Value == nil {
			continue
		}
		name := rec.DisplayName
		if name == "" {
			name = xschema.DisplayName(key)
		}
		lines = append(lines, name+" = "+xpath.Format(rec.Value))
	}
	return strings.Join(lines, "\n"), nil
}

// JSON 输出匹配记录组成的 JSON 对象，包含 value 为 null 的记录
func JSON(metrics Metrics, pattern string) (string, error) {
	keys, err := Filter(metrics, pattern)
	if err != nil {
		return "", err
	}

	selected := make(Metrics, len(keys))
	for _, key := range keys {
		selected[key] = metrics[key]
	}
	data, err := json.MarshalIndent(selected, "", "  ")
	if err != nil {
		return "", fmt.Errorf("xformat: marshal json: %w", err)
	}
	return string(data), nil
}
