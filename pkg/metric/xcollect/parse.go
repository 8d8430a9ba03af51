package xcollect

import (
	"bytes"
	"strconv"
)

// ParseOutput 解析 jmxterm 输出中的 "key" = value; 条目
//
// 只保留值全部为十进制数字的条目，结果值为 int64；其余行忽略。
// 同一 key 出现多次时后者覆盖前者。
func ParseOutput(out []byte) map[string]any {
	result := make(map[string]any)
	rest := out
	for len(rest) > 0 {
		open := bytes.IndexByte(rest, '"')
		if open < 0 {
			break
		}
		rest = rest[open+1:]
		closing := bytes.IndexByte(rest, '"')
		if closing < 0 {
			break
		}
		key := string(rest[:closing])
		rest = rest[closing+1:]

		value, tail, ok := parseAssignment(rest)
		if !ok {
			continue
		}
		rest = tail
		if n, ok := parseDigits(value); ok {
			result[key] = n
		}
	}
	return result
}

// parseAssignment 匹配 `\s*=\s*value;`，返回 value 和分号之后的剩余输入
func parseAssignment(b []byte) (value, rest []byte, ok bool) {
	b = bytes.TrimLeft(b, " \t\r\n")
	if len(b) == 0 || b[0] != '=' {
		return nil, nil, false
	}
	b = bytes.TrimLeft(b[1:], " \t\r\n")
	end := bytes.IndexByte(b, ';')
	if end < 0 {
		return nil, nil, false
	}
	return b[:end], b[end+1:], true
}

func parseDigits(b []byte) (int64, bool) {
	if len(b) == 0 {
		return 0, false
	}
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
