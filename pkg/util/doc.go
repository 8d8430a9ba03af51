// Package util 提供通用工具相关的子包。
//
// 子包列表：
//   - xfile: 文件操作工具，受限的路径拼接和原子写入
package util
