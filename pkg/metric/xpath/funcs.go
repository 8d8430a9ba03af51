package xpath

import (
	"fmt"
	"hash/crc32"
)

// Filter 在映射序列中返回第一个匹配所有参数的元素
//
// 元素的值按 Format 转为字符串后与参数值比较。
// scope 不是映射序列（或包含非映射元素）时返回 nil。
func Filter(scope any, args Args) (any, error) {
	list, ok := List(scope)
	if !ok {
		return nil, nil
	}

	items := make([]map[string]any, 0, len(list))
	for _, item := range list {
		m, ok := asMap(item)
		if !ok {
			return nil, nil
		}
		items = append(items, m)
	}

	for i, m := range items {
		if matchAll(m, args) {
			return list[i], nil
		}
	}
	return nil, nil
}

func matchAll(m map[string]any, args Args) bool {
	for _, arg := range args {
		v, found := m[arg.Key]
		if !found || v == nil || Format(v) != arg.Value {
			return false
		}
	}
	return true
}

// Hash 返回 scope[key] 字符串形式的 CRC-32 (IEEE) 校验和
//
// 缺少 key 参数是配置错误；scope 不是映射或值不存在时返回 nil。
func Hash(scope any, args Args) (any, error) {
	key, ok := args.Lookup("key")
	if !ok {
		return nil, fmt.Errorf("%w: key", ErrMissingArgument)
	}

	m, ok := asMap(scope)
	if !ok {
		return nil, nil
	}
	v, found := m[key]
	if !found || v == nil {
		return nil, nil
	}
	return crc32.ChecksumIEEE([]byte(Format(v))), nil
}
