package xwatch

import (
	"context"
	"io"
	"os"

	"github.com/omeyang/xmon/pkg/metric/xformat"
	"github.com/omeyang/xmon/pkg/util/xfile"
)

// OutputSink 按格式渲染结果，写入文件或 io.Writer
type OutputSink struct {
	formatter xformat.Formatter
	pattern   string
	path      string
	w         io.Writer
}

// NewOutputSink 创建输出
//
// path 非空时每轮整体替换该文件（先写临时文件再 rename），读方不会看到半截内容；
// path 为空时写入 w。
func NewOutputSink(format, pattern, path string, w io.Writer) (*OutputSink, error) {
	f, err := xformat.Lookup(format)
	if err != nil {
		return nil, err
	}
	if path == "" && w == nil {
		w = os.Stdout
	}
	return &OutputSink{formatter: f, pattern: pattern, path: path, w: w}, nil
}

// Write 实现 Sink
func (o *OutputSink) Write(_ context.Context, metrics xformat.Metrics) error {
	out, err := o.formatter(metrics, o.pattern)
	if err != nil {
		return err
	}
	if out != "" {
		out += "\n"
	}
	if o.path == "" {
		_, err := io.WriteString(o.w, out)
		return err
	}
	return xfile.WriteAtomic(o.path, []byte(out))
}

