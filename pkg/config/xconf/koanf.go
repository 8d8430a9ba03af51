package xconf

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// FileName 默认配置文件名
const FileName = ".xmon.yaml"

// DefaultYAML 内置默认配置，配置文件中的值覆盖它。
const DefaultYAML = `
base:
  oid: hadoop
  name: hadoop
logging:
  filename: ""
  level: info
  format: text
  max_size: 1
  max_backups: 5
locator:
  filename: locator.yaml
  service_map: ""
schemas:
  directory: schemas
  templates: templates
collector:
  timeout: 10s
  helper: /usr/bin/jmxterm
  retry:
    attempts: 1
    delay: 100ms
  breaker:
    failures: 5
    timeout: 60s
service:
  concurrency: 1
  cache_size: 128
watch:
  schedule: "@every 1m"
  output: ""
  format: subagent
  pattern: "*"
  listen: ""
`

// DefaultSearchPaths 返回默认查找路径：当前目录、用户主目录、/etc
func DefaultSearchPaths() []string {
	var paths []string
	if wd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(wd, FileName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, FileName))
	}
	return append(paths, "/etc/xmon.yaml")
}

// koanfConfig 是 Config 接口的 koanf 实现。
type koanfConfig struct {
	mu     sync.RWMutex
	k      *koanf.Koanf
	app    App
	path   string
	format Format
	opts   *Options
}

// Load 加载配置
//
// path 为空时按 SearchPaths 查找第一个存在的文件，都不存在时只使用默认值。
// 显式指定的文件不存在时返回 ErrLoadFailed。
// 配置中的相对路径（locator、schema 目录等）相对于配置文件所在目录解析。
func Load(path string, opts ...Option) (Config, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	if path == "" {
		path = find(options.SearchPaths)
	}

	var format Format
	if path != "" {
		f, err := detectFormat(path)
		if err != nil {
			return nil, err
		}
		format = f
	} else {
		format = FormatYAML
	}

	c := &koanfConfig{path: path, format: format, opts: options}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// NewFromBytes 从字节数据创建配置，data 覆盖默认值。
// 得到的配置不能 Reload 或 Watch。
func NewFromBytes(data []byte, format Format, opts ...Option) (Config, error) {
	if !isValidFormat(format) {
		return nil, ErrUnsupportedFormat
	}
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	k, app, err := build(data, format, "", options)
	if err != nil {
		return nil, err
	}
	return &koanfConfig{k: k, app: app, format: format, opts: options}, nil
}

func find(paths []string) string {
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// Client 返回底层的 koanf 实例。
func (c *koanfConfig) Client() *koanf.Koanf {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.k
}

// App 返回当前配置的快照。
func (c *koanfConfig) App() App {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.app
}

// Unmarshal 将指定路径的配置反序列化到目标结构体。
func (c *koanfConfig) Unmarshal(path string, target any) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := c.k.Unmarshal(path, target); err != nil {
		return fmt.Errorf("%w: %w", ErrUnmarshalFailed, err)
	}
	return nil
}

// Reload 重新读取配置文件，解析或校验失败时保留原配置。
func (c *koanfConfig) Reload() error {
	var data []byte
	if c.path != "" {
		b, err := os.ReadFile(c.path)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrLoadFailed, err)
		}
		data = b
	} else if c.k != nil {
		return ErrNotWatchable
	}

	k, app, err := build(data, c.format, filepath.Dir(c.path), c.opts)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.k = k
	c.app = app
	c.mu.Unlock()
	return nil
}

// Path 返回配置文件路径。
func (c *koanfConfig) Path() string {
	return c.path
}

// Format 返回配置格式。
func (c *koanfConfig) Format() Format {
	return c.format
}

// =============================================================================
// 内部辅助函数
// =============================================================================

// build 依次加载默认值、data 和覆盖值，然后解码并校验 App。
// base 非空时相对路径以它为基准。
func build(data []byte, format Format, base string, opts *Options) (*koanf.Koanf, App, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider([]byte(DefaultYAML)), yaml.Parser()); err != nil {
		return nil, App{}, fmt.Errorf("%w: defaults: %w", ErrParseFailed, err)
	}
	if len(data) > 0 {
		if err := loadData(k, data, format); err != nil {
			return nil, App{}, err
		}
	}
	for key, v := range opts.Overrides {
		if err := k.Set(key, v); err != nil {
			return nil, App{}, fmt.Errorf("%w: override %s: %w", ErrParseFailed, key, err)
		}
	}

	var app App
	if err := k.Unmarshal("", &app); err != nil {
		return nil, App{}, fmt.Errorf("%w: %w", ErrUnmarshalFailed, err)
	}
	if err := app.Validate(); err != nil {
		return nil, App{}, err
	}
	if base != "" && base != "." {
		resolvePaths(&app, base)
	}
	return k, app, nil
}

func resolvePaths(app *App, base string) {
	for _, p := range []*string{
		&app.Logging.Filename,
		&app.Locator.Filename,
		&app.Locator.ServiceMap,
		&app.Schemas.Directory,
		&app.Schemas.Templates,
		&app.Watch.Output,
	} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
}

// detectFormat 根据文件扩展名检测配置格式。
func detectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %q", ErrUnsupportedFormat, ext)
	}
}

// isValidFormat 检查格式是否有效。
func isValidFormat(format Format) bool {
	switch format {
	case FormatYAML, FormatJSON:
		return true
	default:
		return false
	}
}

// loadData 加载数据到 koanf 实例。
func loadData(k *koanf.Koanf, data []byte, format Format) error {
	var parser koanf.Parser
	switch format {
	case FormatYAML:
		parser = yaml.Parser()
	case FormatJSON:
		parser = json.Parser()
	default:
		return ErrUnsupportedFormat
	}

	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	return nil
}

// IsNotExist 判断错误是否由配置文件不存在引起
func IsNotExist(err error) bool {
	return errors.Is(err, ErrLoadFailed) && errors.Is(err, fs.ErrNotExist)
}
