package xconf

// Options 定义配置加载选项。
type Options struct {
	// SearchPaths 未指定配置文件时依次查找的路径，默认见 DefaultSearchPaths。
	SearchPaths []string

	// Overrides 在文件之后应用的覆盖值，键为 "." 分隔的路径，例如 "base.name"。
	Overrides map[string]any
}

// Option 定义配置选项函数类型。
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{SearchPaths: DefaultSearchPaths()}
}

// WithSearchPaths 替换默认查找路径。
func WithSearchPaths(paths ...string) Option {
	return func(o *Options) {
		o.SearchPaths = paths
	}
}

// WithOverrides 设置覆盖值，通常来自命令行参数。零值不会被忽略，调用方应只传入显式设置的项。
func WithOverrides(overrides map[string]any) Option {
	return func(o *Options) {
		if o.Overrides == nil {
			o.Overrides = make(map[string]any, len(overrides))
		}
		for k, v := range overrides {
			o.Overrides[k] = v
		}
	}
}
