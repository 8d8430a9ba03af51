package xschema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/omeyang/xmon/pkg/metric/xpath"
)

// DefaultType 叶子节点未声明 type 时使用的类型
const DefaultType = "OCTET STRING"

// IndexField 表格索引字段的名称
const IndexField = "index"

// 文档中的键名
const (
	keyOID         = "oid"
	keyName        = "name"
	keyType        = "type"
	keyUnit        = "unit"
	keyDescription = "description"
	keyPath        = "path"
	keyRequests    = "requests"
	keyResources   = "resources"
	keyTable       = "table"
	keyFields      = "fields"
	keyQuery       = "query"
	keyEndpoint    = "endpoint"
)

// Kind 节点类型
type Kind int

const (
	// KindEmpty 不含判别键的节点，只贡献 oid/name
	KindEmpty Kind = iota
	// KindRequests 请求节点
	KindRequests
	// KindResources 分组节点
	KindResources
	// KindTable 表格节点
	KindTable
	// KindLeaf 叶子节点
	KindLeaf
)

// String 返回节点类型名称
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindRequests:
		return keyRequests
	case KindResources:
		return keyResources
	case KindTable:
		return keyTable
	case KindLeaf:
		return "leaf"
	default:
		return "unknown"
	}
}

// Query 请求描述，语义由具体的采集客户端决定
// （HTTP 为路径字符串，进程为 {bean, attr} 映射）。
type Query = any

// Node schema 节点
//
// Kind 决定哪些字段有效：KindRequests 使用 Requests，KindResources 使用
// Resources，KindTable 使用 Table，KindLeaf 使用 Path/Type/Unit/Description。
type Node struct {
	Kind Kind

	// OID、Name 为空时不参与拼接
	OID  string
	Name string

	Path        xpath.Expr
	Type        string
	Unit        string
	Description *string

	Requests  []Request
	Resources []*Node
	Table     *Table
}

// Request 请求节点中的一项
type Request struct {
	Query Query

	// Endpoint 覆盖采集器的默认端点，空表示使用默认值
	Endpoint string

	// Node 以响应数据为作用域继续扫描的子树
	Node *Node
}

// Table 表格节点
type Table struct {
	// Path 行序列的地址
	Path xpath.Expr

	// Fields 每行输出的叶子字段
	Fields []*Node
}

// Index 返回名为 index 的字段，多个同名字段时最后一个生效
func (t *Table) Index() (*Node, bool) {
	var idx *Node
	for _, f := range t.Fields {
		if f.Name == IndexField {
			idx = f
		}
	}
	return idx, idx != nil
}

// join 将节点的 oid/name 拼接到父级前缀
func (n *Node) join(oid, name string) (string, string) {
	if n.OID != "" {
		oid = joinSegment(oid, n.OID)
	}
	if n.Name != "" {
		name = joinSegment(name, n.Name)
	}
	return oid, name
}

func joinSegment(prefix, seg string) string {
	return prefix + "." + seg
}

// =============================================================================
// 文档解码
// =============================================================================

// decodeNode 从文档映射构建节点，where 用于错误定位
func decodeNode(m map[string]any, where string) (*Node, error) {
	var present []string
	for _, key := range []string{keyRequests, keyResources, keyTable, keyPath} {
		if _, ok := m[key]; ok {
			present = append(present, key)
		}
	}
	if len(present) > 1 {
		sort.Strings(present)
		return nil, fmt.Errorf("%w at %s: %s", ErrAmbiguousNode, where, strings.Join(present, ", "))
	}

	n := &Node{Kind: KindEmpty}
	if v, ok := m[keyOID]; ok && v != nil {
		n.OID = xpath.Format(v)
	}
	if v, ok := m[keyName]; ok && v != nil {
		n.Name = xpath.Format(v)
	}
	if n.Name != "" {
		where = n.Name
	}

	if len(present) == 0 {
		return n, nil
	}

	var err error
	switch present[0] {
	case keyRequests:
		n.Kind = KindRequests
		n.Requests, err = decodeRequests(m[keyRequests], where)
	case keyResources:
		n.Kind = KindResources
		n.Resources, err = decodeNodes(m[keyResources], where+"."+keyResources)
	case keyTable:
		n.Kind = KindTable
		n.Table, err = decodeTable(m[keyTable], where)
	case keyPath:
		n.Kind = KindLeaf
		err = decodeLeaf(n, m, where)
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

func decodeLeaf(n *Node, m map[string]any, where string) error {
	var err error
	if n.Path, err = decodeExpr(m[keyPath], where); err != nil {
		return err
	}

	n.Type = DefaultType
	if v, ok := m[keyType]; ok && v != nil {
		n.Type = xpath.Format(v)
	}
	if v, ok := m[keyUnit]; ok && v != nil {
		n.Unit = xpath.Format(v)
	}
	if v, ok := m[keyDescription]; ok && v != nil {
		desc := xpath.Format(v)
		n.Description = &desc
	}
	return nil
}

func decodeExpr(v any, where string) (xpath.Expr, error) {
	if v == nil {
		return xpath.Expr{}, nil
	}
	s, ok := v.(string)
	if !ok {
		s = xpath.Format(v)
	}
	e, err := xpath.Parse(s)
	if err != nil {
		return xpath.Expr{}, fmt.Errorf("%s: %w", where, err)
	}
	return e, nil
}

func decodeRequests(v any, where string) ([]Request, error) {
	items, err := decodeMaps(v, where+"."+keyRequests)
	if err != nil {
		return nil, err
	}

	requests := make([]Request, 0, len(items))
	for i, item := range items {
		at := fmt.Sprintf("%s.%s[%d]", where, keyRequests, i)
		query, ok := item[keyQuery]
		if !ok || query == nil {
			return nil, fmt.Errorf("%w at %s: missing query", ErrInvalidNode, at)
		}

		// 请求项本身也是节点：去掉 query/endpoint 后按普通节点解码
		rest := make(map[string]any, len(item))
		for k, val := range item {
			if k != keyQuery && k != keyEndpoint {
				rest[k] = val
			}
		}
		node, err := decodeNode(rest, at)
		if err != nil {
			return nil, err
		}

		var endpoint string
		if ep, ok := item[keyEndpoint]; ok && ep != nil {
			endpoint = xpath.Format(ep)
		}
		requests = append(requests, Request{Query: query, Endpoint: endpoint, Node: node})
	}
	return requests, nil
}

func decodeNodes(v any, where string) ([]*Node, error) {
	items, err := decodeMaps(v, where)
	if err != nil {
		return nil, err
	}
	nodes := make([]*Node, 0, len(items))
	for i, item := range items {
		node, err := decodeNode(item, fmt.Sprintf("%s[%d]", where, i))
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func decodeTable(v any, where string) (*Table, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w at %s: table must be a mapping", ErrInvalidNode, where)
	}

	path, err := decodeExpr(m[keyPath], where+"."+keyTable)
	if err != nil {
		return nil, err
	}
	fields, err := decodeNodes(m[keyFields], where+"."+keyFields)
	if err != nil {
		return nil, err
	}
	for _, f := range fields {
		if f.Kind != KindLeaf {
			return nil, fmt.Errorf("%w at %s: field %q is %s, want leaf", ErrInvalidNode, where, f.Name, f.Kind)
		}
	}

	t := &Table{Path: path, Fields: fields}
	if _, ok := t.Index(); !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingIndex, where)
	}
	return t, nil
}

// decodeMaps 将列表值转换为映射列表，nil 视为空列表
func decodeMaps(v any, where string) ([]map[string]any, error) {
	if v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w at %s: want a list", ErrInvalidNode, where)
	}
	out := make([]map[string]any, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w at %s[%d]: want a mapping", ErrInvalidNode, where, i)
		}
		out = append(out, m)
	}
	return out, nil
}
