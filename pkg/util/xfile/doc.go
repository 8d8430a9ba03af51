// Package xfile 提供 xmon 使用的文件系统工具。
//
// # 名称拼接
//
// [Join] 把来自配置的名称（如 schema 名）拼接到目录下。名称必须是单个
// 相对路径，包含 ".." 路径段、绝对路径或空字节时被拒绝：
//
//	Join("schemas", "hdfs.namenode") // "schemas/hdfs.namenode"
//	Join("schemas", "../etc/passwd") // ErrPathTraversal
//
// 以 ".." 开头的普通文件名（如 "..config"）不视为穿越。
//
// # 原子写入
//
// [WriteAtomic] 先写入同目录下的临时文件再 rename，读者只会看到旧内容或
// 完整的新内容。父目录不存在时按 [DefaultDirPerm] 创建。
package xfile
