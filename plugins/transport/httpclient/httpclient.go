package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"anyparser/internal/rate"
	"anyparser/pkg/contract"
)

// ErrReplyTooLarge: 应答体超过 MaxReplyBytes；不返回截断的内容。
var ErrReplyTooLarge = errors.New("httpclient: reply exceeds max_reply_bytes")

// Options: 最小必需配置。
type Options struct {
	TimeoutSeconds int               `json:"timeout_seconds"` // 可选 client 级超时（秒），默认 120
	UserAgent      string            `json:"user_agent"`      // 为空则使用默认
	ExtraHeaders   map[string]string `json:"extra_headers"`   // 追加/覆盖请求头（代理、网关等场景）
	MaxReplyBytes  int64             `json:"max_reply_bytes"` // 应答体上限，<=0 使用 64 MiB

	// 客户端节流（按服务地址+凭据分组），0 表示不限。只控制放行节奏，不重试。
	RequestsPerMinute    int `json:"requests_per_minute"`
	UploadBytesPerMinute int `json:"upload_bytes_per_minute"`
	MaxUploadBytes       int `json:"max_upload_bytes"`
}

func (o *Options) defaults() {
	if o.TimeoutSeconds <= 0 {
		o.TimeoutSeconds = 120
	}
	if o.UserAgent == "" {
		o.UserAgent = "anyparser-go/1"
	}
	if o.MaxReplyBytes <= 0 {
		o.MaxReplyBytes = 64 << 20
	}
}

// Client: 基于 net/http 的 multipart 传输实现。
type Client struct {
	hc       *http.Client
	ua       string
	extraH   map[string]string
	maxReply int64
	gate     *rate.Gate // nil 表示不节流
	do       func(*http.Request) (*http.Response, error)
}

var _ contract.Transport = (*Client)(nil)

// New 构造传输客户端；opts 可为 nil。
func New(opts *Options) *Client {
	var o Options
	if opts != nil {
		o = *opts
	}
	o.defaults()
	hc := &http.Client{Timeout: time.Duration(o.TimeoutSeconds) * time.Second}
	c := &Client{hc: hc, ua: o.UserAgent, extraH: o.ExtraHeaders, maxReply: o.MaxReplyBytes, do: hc.Do}
	if lim := (rate.Limits{RPM: o.RequestsPerMinute, BPM: o.UploadBytesPerMinute, MaxBytes: o.MaxUploadBytes}); lim.Enabled() {
		c.gate = rate.NewGate(lim, nil)
	}
	return c
}

// Send 编码 multipart 表单并执行一次请求；非 2xx 以 Reply 返回而非错误。
func (c *Client) Send(ctx context.Context, ex contract.Exchange) (contract.Reply, error) {
	body, ctype, err := encodeMultipart(ex.Body)
	if err != nil {
		return contract.Reply{}, fmt.Errorf("encode multipart: %w", err)
	}
	if c.gate != nil {
		ask := rate.Ask{Key: rate.KeyFor(ex.URL, ex.Header.Get("Authorization")), Requests: 1, Bytes: body.Len()}
		if err := c.gate.Wait(ctx, ask); err != nil {
			if cerr := ctx.Err(); cerr != nil {
				return contract.Reply{}, cerr
			}
			return contract.Reply{}, fmt.Errorf("throttle: %w", err)
		}
	}
	method := ex.Method
	if method == "" {
		method = http.MethodPost
	}
	req, err := http.NewRequestWithContext(ctx, method, ex.URL, body)
	if err != nil {
		return contract.Reply{}, fmt.Errorf("new request: %w", err)
	}
	for k, vs := range ex.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", ctype)
	req.Header.Set("User-Agent", c.ua)
	for k, v := range c.extraH {
		if k == "" {
			continue
		}
		req.Header.Set(k, v)
	}

	resp, err := c.do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			if cerr := ctx.Err(); cerr != nil {
				return contract.Reply{}, cerr
			}
		}
		return contract.Reply{}, err
	}
	defer resp.Body.Close()

	slurp, err := io.ReadAll(io.LimitReader(resp.Body, c.maxReply+1))
	if err != nil {
		return contract.Reply{}, fmt.Errorf("read reply: %w", err)
	}
	if int64(len(slurp)) > c.maxReply {
		return contract.Reply{}, fmt.Errorf("%w: status %d, limit %d bytes", ErrReplyTooLarge, resp.StatusCode, c.maxReply)
	}
	return contract.Reply{StatusCode: resp.StatusCode, StatusText: statusText(resp), Body: slurp}, nil
}

// statusText 从 "404 Not Found" 中取原因短语。
func statusText(resp *http.Response) string {
	s := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if s == "" {
		s = http.StatusText(resp.StatusCode)
	}
	return s
}

// encodeMultipart: 文本字段按顺序写入，随后写入 files 部件。
func encodeMultipart(w contract.WireRequest) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range w.Fields {
		if err := mw.WriteField(f.Name, f.Value); err != nil {
			return nil, "", err
		}
	}
	for _, fp := range w.Files {
		part, err := mw.CreateFormFile("files", fp.FileName)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(fp.Content); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}
