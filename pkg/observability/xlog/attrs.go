package xlog

import (
	"fmt"
	"log/slog"
	"time"
)

// 采集链路常用字段名
const (
	KeyError     = "error"
	KeyDuration  = "duration"
	KeyComponent = "component"
	KeyOID       = "oid"
	KeyName      = "name"
	KeyEndpoint  = "endpoint"
	KeyQuery     = "query"
	KeySchema    = "schema"
	KeyPath      = "path"
	KeyOutput    = "output"
)

// Err 创建错误属性
//
// err 为 nil 时返回空属性（会被 slog 忽略）。
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Duration 创建耗时属性
func Duration(d time.Duration) slog.Attr {
	return slog.String(KeyDuration, d.String())
}

// Component 创建组件名属性
func Component(name string) slog.Attr {
	return slog.String(KeyComponent, name)
}

// OID 创建 oid 属性
func OID(oid string) slog.Attr {
	return slog.String(KeyOID, oid)
}

// Name 创建指标名属性
func Name(name string) slog.Attr {
	return slog.String(KeyName, name)
}

// Endpoint 创建采集端点属性
func Endpoint(endpoint string) slog.Attr {
	return slog.String(KeyEndpoint, endpoint)
}

// Query 创建采集查询属性
//
// 查询是任意结构，按 %v 格式化。
func Query(query any) slog.Attr {
	return slog.String(KeyQuery, fmt.Sprintf("%v", query))
}

// Schema 创建 schema 名称属性
func Schema(name string) slog.Attr {
	return slog.String(KeySchema, name)
}

// Path 创建路径表达式或文件路径属性
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// Output 创建外部命令输出属性
func Output(out string) slog.Attr {
	return slog.String(KeyOutput, out)
}
