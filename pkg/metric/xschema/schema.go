package xschema

import (
	"context"
	"fmt"

	"github.com/omeyang/xmon/pkg/metric/xpath"
	"github.com/omeyang/xmon/pkg/observability/xlog"
)

// Executor 请求执行器
//
// endpoint 为请求项上声明的端点覆盖，未声明时为空字符串。
// 数据源故障应返回 nil, nil；返回的 error 会中止扫描。
type Executor func(ctx context.Context, query Query, endpoint string) (any, error)

// noopExecutor 未绑定执行器时使用，所有请求都没有数据
func noopExecutor(context.Context, Query, string) (any, error) {
	return nil, nil
}

// Schema 已加载的 schema
type Schema struct {
	name     string
	root     *Node
	eval     *xpath.Evaluator
	logger   xlog.Logger
	executor Executor
}

// New 以 root 为根节点创建 schema
func New(root *Node, opts ...Option) *Schema {
	return newSchema(root, opts)
}

func newSchema(root *Node, opts []Option) *Schema {
	o := applyOptions(opts)
	if root == nil {
		root = &Node{}
	}
	s := &Schema{
		name:   o.name,
		root:   root,
		eval:   o.eval,
		logger: o.logger,
	}
	if s.eval == nil {
		s.eval = xpath.NewEvaluator(xpath.WithLogger(o.log()))
	}
	s.SetExecutor(o.executor)
	return s
}

// Name 返回 schema 名称
func (s *Schema) Name() string {
	return s.name
}

// Root 返回根节点，调用方不应修改
func (s *Schema) Root() *Node {
	return s.root
}

// SetExecutor 绑定请求执行器，nil 恢复为无数据的默认执行器
func (s *Schema) SetExecutor(fn Executor) {
	if fn == nil {
		fn = noopExecutor
	}
	s.executor = fn
}

// frame 一次遍历步骤：节点、作用域和父级前缀
type frame struct {
	node  *Node
	scope any
	oid   string
	name  string
}

// Scan 遍历 schema，返回 name → Record
//
// 同名记录后写覆盖先写。配置错误会中止扫描并返回错误，
// 数据缺失只体现为 Record.Value 为 nil。
func (s *Schema) Scan(ctx context.Context, oid, name string) (map[string]Record, error) {
	if err := s.check(s.root, "root"); err != nil {
		return nil, err
	}
	acc := make(map[string]Record)
	if err := s.walk(ctx, frame{node: s.root, oid: oid, name: name}, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// check 确认树中所有表达式调用的函数都已在求值器中注册
//
// 未知函数在作用域为 nil 时不会被求值，这里提前暴露它。
func (s *Schema) check(n *Node, where string) error {
	if n == nil {
		return nil
	}
	_, where = n.join("", where)
	switch n.Kind {
	case KindLeaf:
		return s.checkExpr(n.Path, where)
	case KindRequests:
		for _, req := range n.Requests {
			if err := s.check(req.Node, where); err != nil {
				return err
			}
		}
	case KindResources:
		for _, child := range n.Resources {
			if err := s.check(child, where); err != nil {
				return err
			}
		}
	case KindTable:
		if n.Table == nil {
			return nil
		}
		if err := s.checkExpr(n.Table.Path, where); err != nil {
			return err
		}
		for _, field := range n.Table.Fields {
			if err := s.check(field, where); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Schema) checkExpr(e xpath.Expr, where string) error {
	if err := s.eval.Check(e); err != nil {
		return fmt.Errorf("%s: %w", where, err)
	}
	return nil
}

func (s *Schema) walk(ctx context.Context, f frame, acc map[string]Record) error {
	if f.node == nil {
		return nil
	}
	oid, name := f.node.join(f.oid, f.name)
	s.log().Debug(ctx, "scan node", xlog.OID(oid), xlog.Name(name), xlog.Component(f.node.Kind.String()))

	switch f.node.Kind {
	case KindRequests:
		for _, req := range f.node.Requests {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := s.executor(ctx, req.Query, req.Endpoint)
			if err != nil {
				return fmt.Errorf("request %s: %w", name, err)
			}
			if err := s.walk(ctx, frame{node: req.Node, scope: data, oid: oid, name: name}, acc); err != nil {
				return err
			}
		}

	case KindResources:
		for _, child := range f.node.Resources {
			if err := s.walk(ctx, frame{node: child, scope: f.scope, oid: oid, name: name}, acc); err != nil {
				return err
			}
		}

	case KindTable:
		return s.table(ctx, f.node.Table, f.scope, oid, name, acc)

	case KindLeaf:
		rec, err := s.leaf(ctx, f.node, f.scope, oid, name)
		if err != nil {
			return err
		}
		acc[name] = rec
	}
	return nil
}

func (s *Schema) table(ctx context.Context, t *Table, scope any, oid, name string, acc map[string]Record) error {
	if t == nil {
		return fmt.Errorf("%w: %s: nil table", ErrInvalidNode, name)
	}
	index, ok := t.Index()
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingIndex, name)
	}

	v, err := s.eval.Eval(ctx, scope, t.Path)
	if err != nil {
		return fmt.Errorf("table %s: %w", name, err)
	}
	rows, ok := xpath.List(v)
	if !ok || len(rows) == 0 {
		// 无数据时每个字段仍输出一条 nil 记录
		rows = make([]any, len(t.Fields))
	}

	for _, row := range rows {
		idx, err := s.eval.Eval(ctx, row, index.Path)
		if err != nil {
			return fmt.Errorf("table %s index: %w", name, err)
		}
		var suffix string
		if idx != nil {
			suffix = "." + xpath.Format(idx)
		}

		for _, field := range t.Fields {
			fieldOID, fieldName := field.join(oid, name)
			fieldOID += suffix
			fieldName += suffix

			rec, err := s.leaf(ctx, field, row, fieldOID, fieldName)
			if err != nil {
				return err
			}
			acc[fieldName] = rec
		}
	}
	return nil
}

func (s *Schema) leaf(ctx context.Context, n *Node, scope any, oid, name string) (Record, error) {
	v, err := s.eval.Eval(ctx, scope, n.Path)
	if err != nil {
		return Record{}, fmt.Errorf("leaf %s: %w", name, err)
	}

	typ := n.Type
	if typ == "" {
		typ = DefaultType
	}
	return Record{
		Name:        name,
		OID:         oid,
		Type:        typ,
		Unit:        n.Unit,
		Description: n.Description,
		Value:       v,
		DisplayName: DisplayName(name),
	}, nil
}

func (s *Schema) log() xlog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return xlog.Default()
}
