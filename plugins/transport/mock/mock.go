// Package mock 提供离线的解析服务替身，用于集成测试与无网络联调。
package mock

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"

	"anyparser/pkg/contract"
)

// Options: 最小调试配置（可选）。
type Options struct {
	Prefix string `json:"prefix"` // markdown 正文前缀，默认 "MOCK"
	// APIKey: 非空时要求请求携带 "Bearer <APIKey>"，否则返回 401。
	APIKey string `json:"api_key"`
	// Status: 强制返回的状态码；0 或 2xx 表示正常解析。
	Status int `json:"status"`
	// FailBody: Status 为非 2xx 时的响应体。
	FailBody string `json:"fail_body"`
	// Pages: ocr/vlm/lam 模式下每个文件模拟的页数，默认 1。
	Pages int `json:"pages"`
}

// Client: 按表单字段生成与真实服务同形的 snake_case 应答。
type Client struct {
	prefix   string
	apiKey   string
	status   int
	failBody string
	pages    int
	md       goldmark.Markdown
	calls    atomic.Int64
	now      func() time.Time
}

var _ contract.Transport = (*Client)(nil)

func New(opts *Options) *Client {
	var o Options
	if opts != nil {
		o = *opts
	}
	if o.Prefix == "" {
		o.Prefix = "MOCK"
	}
	if o.Pages <= 0 {
		o.Pages = 1
	}
	return &Client{
		prefix: o.Prefix, apiKey: o.APIKey, status: o.Status, failBody: o.FailBody, pages: o.Pages,
		md: goldmark.New(), now: time.Now,
	}
}

// Calls 返回累计请求次数。
func (c *Client) Calls() int64 { return c.calls.Load() }

func (c *Client) Send(ctx context.Context, ex contract.Exchange) (contract.Reply, error) {
	if err := ctx.Err(); err != nil {
		return contract.Reply{}, err
	}
	c.calls.Add(1)

	if c.apiKey != "" && ex.Header.Get("Authorization") != "Bearer "+c.apiKey {
		return fail(http.StatusUnauthorized, `{"detail":"invalid api key"}`), nil
	}
	if c.status != 0 && (c.status < 200 || c.status > 299) {
		return fail(c.status, c.failBody), nil
	}

	format, _ := ex.Body.Get("format")
	model, _ := ex.Body.Get("model")
	var docs []any
	if contract.Model(model) == contract.ModelCrawler {
		u, _ := ex.Body.Get("url")
		if u == "" {
			return fail(http.StatusBadRequest, `{"detail":"url is required"}`), nil
		}
		docs = []any{c.crawl(u)}
	} else {
		if len(ex.Body.Files) == 0 {
			return fail(http.StatusBadRequest, `{"detail":"no files"}`), nil
		}
		for _, f := range ex.Body.Files {
			docs = append(docs, c.document(contract.Model(model), f))
		}
	}

	switch contract.Format(format) {
	case contract.FormatJSON:
		b, err := json.Marshal(docs)
		if err != nil {
			return contract.Reply{}, fmt.Errorf("mock: encode: %w", err)
		}
		return ok(b), nil
	case contract.FormatMarkdown:
		return ok([]byte(joinMarkdown(docs))), nil
	case contract.FormatHTML:
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(joinMarkdown(docs)), &buf); err != nil {
			return contract.Reply{}, fmt.Errorf("mock: render: %w", err)
		}
		return ok(buf.Bytes()), nil
	}
	return fail(http.StatusUnprocessableEntity, fmt.Sprintf(`{"detail":"unsupported format %q"}`, format)), nil
}

func ok(b []byte) contract.Reply {
	return contract.Reply{StatusCode: http.StatusOK, StatusText: http.StatusText(http.StatusOK), Body: b}
}

func fail(code int, body string) contract.Reply {
	return contract.Reply{StatusCode: code, StatusText: http.StatusText(code), Body: []byte(body)}
}

// 以下结构体与服务端 snake_case 线上格式一致。

type textDoc struct {
	RID              string `json:"rid"`
	OriginalFilename string `json:"original_filename"`
	Checksum         string `json:"checksum"`
	TotalCharacters  int    `json:"total_characters"`
	Markdown         string `json:"markdown"`
}

type page struct {
	PageNumber int    `json:"page_number"`
	Markdown   string `json:"markdown"`
	Text       string `json:"text"`
	Images     []any  `json:"images"`
}

type pagedDoc struct {
	textDoc
	TotalItems int    `json:"total_items"`
	Items      []page `json:"items"`
}

type directive struct {
	Type       string      `json:"type"`
	Priority   int         `json:"priority"`
	NoIndex    bool        `json:"noindex"`
	NoFollow   bool        `json:"nofollow"`
	Underlying []directive `json:"underlying,omitempty"`
}

type crawledURL struct {
	URL             string    `json:"url"`
	Title           string    `json:"title"`
	CrawledAt       string    `json:"crawled_at"`
	StatusCode      int       `json:"status_code"`
	StatusMessage   string    `json:"status_message"`
	Directive       directive `json:"directive"`
	TotalCharacters int       `json:"total_characters"`
	Markdown        string    `json:"markdown"`
	Images          []any     `json:"images"`
	Text            string    `json:"text"`
	PolitenessDelay float64   `json:"politeness_delay"`
}

type robots struct {
	UserAgent string   `json:"user_agent"`
	Disallow  []string `json:"disallow"`
	Allow     []string `json:"allow"`
}

type crawlDoc struct {
	RID             string       `json:"rid"`
	StartURL        string       `json:"start_url"`
	TotalCharacters int          `json:"total_characters"`
	TotalItems      int          `json:"total_items"`
	Markdown        string       `json:"markdown"`
	Items           []crawledURL `json:"items"`
	RobotsDirective robots       `json:"robots_directive"`
}

func (c *Client) document(m contract.Model, f contract.FilePart) any {
	sum := sha256.Sum256(f.Content)
	md := fmt.Sprintf("# %s\n\n%s: %d bytes", f.FileName, c.prefix, len(f.Content))
	base := textDoc{
		RID:              uuid.NewString(),
		OriginalFilename: f.FileName,
		Checksum:         hex.EncodeToString(sum[:]),
		TotalCharacters:  utf8.RuneCountInString(md),
		Markdown:         md,
	}
	switch m {
	case contract.ModelOCR, contract.ModelVLM, contract.ModelLAM:
		items := make([]page, 0, c.pages)
		for i := 1; i <= c.pages; i++ {
			items = append(items, page{
				PageNumber: i,
				Markdown:   fmt.Sprintf("%s page %d", c.prefix, i),
				Text:       fmt.Sprintf("%s page %d", c.prefix, i),
				Images:     []any{},
			})
		}
		return pagedDoc{textDoc: base, TotalItems: len(items), Items: items}
	}
	return base
}

func (c *Client) crawl(u string) any {
	md := fmt.Sprintf("# %s\n\n%s: crawled", u, c.prefix)
	n := utf8.RuneCountInString(md)
	return crawlDoc{
		RID:             uuid.NewString(),
		StartURL:        u,
		TotalCharacters: n,
		TotalItems:      1,
		Markdown:        md,
		Items: []crawledURL{{
			URL:           u,
			Title:         c.prefix,
			CrawledAt:     c.now().UTC().Format(time.RFC3339),
			StatusCode:    http.StatusOK,
			StatusMessage: http.StatusText(http.StatusOK),
			Directive: directive{
				Type:       "Combined",
				Underlying: []directive{{Type: "HTTP Header", Priority: 1}, {Type: "HTML Meta", Priority: 2}},
			},
			TotalCharacters: n,
			Markdown:        md,
			Images:          []any{},
			Text:            md,
		}},
		RobotsDirective: robots{UserAgent: "*", Disallow: []string{}, Allow: []string{}},
	}
}

func joinMarkdown(docs []any) string {
	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		switch x := d.(type) {
		case textDoc:
			parts = append(parts, x.Markdown)
		case pagedDoc:
			parts = append(parts, x.Markdown)
		case crawlDoc:
			parts = append(parts, x.Markdown)
		}
	}
	return strings.Join(parts, "\n\n")
}
