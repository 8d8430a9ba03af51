// Package xpath 实现指标 schema 中使用的路径表达式。
//
// # 语法
//
//	expr    := segment ('=>' segment)*
//	segment := integer | call | key
//	call    := name '(' key '=' value (',' key '=' value)* ')'
//
// 段两侧的空白会被去除，空段直接丢弃，因此 " => value => 3 => => => 1"
// 等价于 "value => 3 => 1"。空表达式返回作用域本身。
//
// # 求值
//
// 从当前作用域出发，按从左到右的顺序应用每个段：
//   - 作用域为 nil 时直接返回 nil
//   - 纯数字段对序列做下标访问
//   - 调用段分发到注册的函数，参数均为字符串
//   - 其余段做映射键查找
//
// 缺失的键、越界的下标、形状不符的作用域都降级为 nil（debug 日志），不返回错误。
// 只有配置类问题（未知函数、缺少必需参数）会作为错误返回。
//
// # 内置函数
//
//   - filter(k=v,...)：在映射序列中返回第一个所有键的字符串形式都相等的元素
//   - hash(key=K)：对 scope[K] 的字符串形式计算 CRC-32 (IEEE)，返回 uint32
//
// 通过 WithFunction 可以注册额外的函数或覆盖内置函数。
package xpath
