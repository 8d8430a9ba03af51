package xschema

import "strings"

// Record 扫描输出的一条指标
type Record struct {
	Name        string  `json:"name"`
	OID         string  `json:"oid"`
	Type        string  `json:"type"`
	Unit        string  `json:"unit"`
	Description *string `json:"description"`

	// Value 为 nil 表示本轮无法确定
	Value any `json:"value"`

	DisplayName string `json:"display_name"`
}

// DisplayName 将点分名称转换为驼峰形式的显示名
//
// 各段首字母大写后拼接，首段全部小写，"-" 被移除；
// 最后一段是纯数字或以 "-" 开头时保留为 ".suffix"：
//
//	hadoop.yarn.resource-manager         → hadoopYarnResourceManager
//	unit.test.table-metric.count.2456940119 → unitTestTableMetricCount.2456940119
func DisplayName(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = title(p)
	}

	prefix := strings.ToLower(parts[0])
	if n := len(parts); n > 1 {
		last := parts[n-1]
		if isDigits(last) || strings.HasPrefix(last, "-") {
			parts[n-1] = "." + last
		}
	}

	var b strings.Builder
	b.WriteString(prefix)
	for _, p := range parts[1:] {
		b.WriteString(p)
	}
	return strings.ReplaceAll(b.String(), "-", "")
}

// title 每个字母序列的首字母大写，其余小写
func title(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		isLetter := isCased(r)
		switch {
		case isLetter && !prevLetter:
			b.WriteString(strings.ToUpper(string(r)))
		case isLetter:
			b.WriteString(strings.ToLower(string(r)))
		default:
			b.WriteRune(r)
		}
		prevLetter = isLetter
	}
	return b.String()
}

func isCased(r rune) bool {
	return strings.ToUpper(string(r)) != strings.ToLower(string(r))
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
