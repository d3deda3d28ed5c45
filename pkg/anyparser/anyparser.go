// Package anyparser 是解析服务的 Go 客户端入口。
//
// 用法：
//
//	p, err := anyparser.New(&options.Options{Format: contract.FormatMarkdown})
//	resp, err := p.Parse(ctx, "docs/sample.pdf")
//
// 默认值（ANYPARSER_API_URL / ANYPARSER_API_KEY）只在 New 时读取一次。
// Parser 构造后不可变，可被多个 goroutine 并发使用。
package anyparser

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"anyparser/internal/diag"
	"anyparser/internal/pipeline"
	"anyparser/pkg/contract"
	"anyparser/pkg/dispatch"
	"anyparser/pkg/options"
	rfs "anyparser/plugins/reader/filesystem"
	"anyparser/plugins/transport/httpclient"
)

// Parser: 持有调用方选项快照、默认值与协作方。
type Parser struct {
	opts      *options.Options
	defaults  options.Defaults
	transport contract.Transport
	fs        contract.FileSystem
	log       *diag.Logger
}

type settings struct {
	transport contract.Transport
	fs        contract.FileSystem
	log       zerolog.Logger
	lookup    contract.LookupFunc
	defaults  *options.Defaults
}

// Option 定制 Parser 的协作方。
type Option func(*settings)

// WithTransport 替换 HTTP 传输（测试、代理或自定义客户端）。
func WithTransport(t contract.Transport) Option { return func(s *settings) { s.transport = t } }

// WithFileSystem 替换文件系统协作方。
func WithFileSystem(fs contract.FileSystem) Option { return func(s *settings) { s.fs = fs } }

// WithLogger 设置结构化日志；默认丢弃。
func WithLogger(l zerolog.Logger) Option { return func(s *settings) { s.log = l } }

// WithLookup 替换环境读取函数（默认 os.LookupEnv）。
func WithLookup(fn contract.LookupFunc) Option { return func(s *settings) { s.lookup = fn } }

// WithDefaults 直接指定默认值，跳过环境读取。
func WithDefaults(d options.Defaults) Option {
	return func(s *settings) { s.defaults = &d }
}

// New 创建 Parser。opts 可为 nil；其内容被深拷贝。
// 选项本身的合法性在 Parse 时校验，错误以 contract.ErrConfiguration 报告。
func New(opts *options.Options, with ...Option) *Parser {
	s := settings{log: zerolog.Nop(), lookup: os.LookupEnv}
	for _, fn := range with {
		if fn != nil {
			fn(&s)
		}
	}
	if s.transport == nil {
		s.transport = httpclient.New(nil)
	}
	if s.fs == nil {
		s.fs = rfs.New(nil)
	}
	var d options.Defaults
	if s.defaults != nil {
		d = *s.defaults
	} else {
		d = options.LoadDefaults(s.lookup, s.log.With().Str(diag.FieldComp, "options").Logger())
	}
	return &Parser{
		opts:      opts.Clone(),
		defaults:  d,
		transport: s.transport,
		fs:        s.fs,
		log:       diag.Wrap(s.log),
	}
}

// Parse 解析本地文件（text/ocr/vlm/lam）或抓取 URL（crawler）。
// 错误类型与消息保持原样，可用 errors.Is/As 匹配 contract 中的分类。
func (p *Parser) Parse(ctx context.Context, inputs ...string) (*dispatch.Response, error) {
	comp := pipeline.Components{FS: p.fs, Transport: p.transport}
	job := pipeline.Job{Inputs: inputs, Options: p.opts.Clone(), Defaults: p.defaults}
	return pipeline.Parse(ctx, comp, job, p.log)
}

// Defaults 返回 New 时确定的默认值（副本）。
func (p *Parser) Defaults() options.Defaults {
	d := p.defaults
	if d.APIURL != nil {
		u := *d.APIURL
		d.APIURL = &u
	}
	return d
}
