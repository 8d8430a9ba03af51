package xwatch

import "errors"

var (
	// ErrInvalidSchedule cron 表达式不合法。
	ErrInvalidSchedule = errors.New("xwatch: invalid schedule")

	// ErrNilCollect 未提供采集函数。
	ErrNilCollect = errors.New("xwatch: nil collect func")

	// ErrSink 写出结果失败。
	ErrSink = errors.New("xwatch: sink failed")
)
