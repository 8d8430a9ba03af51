package xpath

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Separator 段分隔符
const Separator = "=>"

// callPattern 匹配 name(k=v, ...) 形式的调用段，至少一个参数
var callPattern = regexp.MustCompile(`^(\w+)\(\s*(\w+\s*=.*?)\s*\)$`)

// SegmentKind 段类型
type SegmentKind int

const (
	// SegmentKey 映射键查找
	SegmentKey SegmentKind = iota
	// SegmentIndex 序列下标访问
	SegmentIndex
	// SegmentCall 函数调用
	SegmentCall
)

// String 返回段类型名称
func (k SegmentKind) String() string {
	switch k {
	case SegmentKey:
		return "key"
	case SegmentIndex:
		return "index"
	case SegmentCall:
		return "call"
	default:
		return "unknown"
	}
}

// Arg 函数调用参数
type Arg struct {
	Key   string
	Value string
}

// Args 有序的函数参数列表
type Args []Arg

// Lookup 返回第一个名为 key 的参数值
func (a Args) Lookup(key string) (string, bool) {
	for _, arg := range a {
		if arg.Key == key {
			return arg.Value, true
		}
	}
	return "", false
}

// Segment 表达式中的一段
type Segment struct {
	Kind SegmentKind

	// Name 为键名（SegmentKey）或函数名（SegmentCall）
	Name string

	// Index 仅对 SegmentIndex 有效
	Index int

	// Args 仅对 SegmentCall 有效
	Args Args

	raw string
}

// String 返回段的原始文本
func (s Segment) String() string {
	return s.raw
}

// Expr 已解析的路径表达式，创建后不可变
type Expr struct {
	raw      string
	segments []Segment
}

// Parse 解析路径表达式
//
// 空表达式（或只包含分隔符和空白）合法，求值时返回作用域本身。
func Parse(expr string) (Expr, error) {
	parts := Split(expr)
	segments := make([]Segment, 0, len(parts))
	for _, part := range parts {
		seg, err := parseSegment(part)
		if err != nil {
			return Expr{}, err
		}
		segments = append(segments, seg)
	}
	return Expr{raw: expr, segments: segments}, nil
}

// MustParse 与 Parse 相同，但失败时 panic。
// 适用于常量表达式。
func MustParse(expr string) Expr {
	e, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return e
}

// Split 按分隔符切分表达式，去除空白并丢弃空段
func Split(expr string) []string {
	var parts []string
	for _, part := range strings.Split(expr, Separator) {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

// Segments 返回段列表的副本
func (e Expr) Segments() []Segment {
	out := make([]Segment, len(e.segments))
	copy(out, e.segments)
	return out
}

// IsEmpty 表达式是否不含任何段
func (e Expr) IsEmpty() bool {
	return len(e.segments) == 0
}

// String 返回原始表达式文本
func (e Expr) String() string {
	return e.raw
}

func parseSegment(part string) (Segment, error) {
	if isDigits(part) {
		idx, err := strconv.Atoi(part)
		if err != nil {
			// 超出 int 范围的下标不可能命中，按最大值处理，求值时为 nil
			idx = math.MaxInt
		}
		return Segment{Kind: SegmentIndex, Index: idx, raw: part}, nil
	}

	if m := callPattern.FindStringSubmatch(part); m != nil {
		args, err := parseArgs(m[2])
		if err != nil {
			return Segment{}, fmt.Errorf("%w: call %q: %w", ErrInvalidExpression, part, err)
		}
		return Segment{Kind: SegmentCall, Name: m[1], Args: args, raw: part}, nil
	}

	return Segment{Kind: SegmentKey, Name: part, raw: part}, nil
}

func parseArgs(s string) (Args, error) {
	var args Args
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			// 允许末尾逗号
			continue
		}
		key, value, ok := strings.Cut(item, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("malformed argument %q", item)
		}
		args = append(args, Arg{Key: key, Value: strings.TrimSpace(value)})
	}
	return args, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
