// Package xformat 将扫描结果渲染为文本。
//
// 输入是 xschema.Record 按名称组成的映射，pattern 为 shell 风格的 glob
// （path.Match 语法，空串等价于 "*"），只输出名称匹配的记录。
//
//   - Human：按名称排序、冒号对齐，unit 为 bytes 的值换算为 KiB/MiB 等
//   - Subagent：每行 "display_name = value"，供 SNMP 子代理读取
//   - JSON：缩进的 JSON 对象，包含 value 为 null 的记录
//
// Objects 和 RenderMIB 用于从完整指标集生成 MIB 定义。
package xformat
