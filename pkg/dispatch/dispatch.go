// Package dispatch 发送线上请求并按格式归一化应答。
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"anyparser/pkg/casing"
	"anyparser/pkg/contract"
)

// ParsePath: 解析接口路径（相对服务根解析）。
const ParsePath = "/parse/v1"

// Dispatcher: 单次 POST，无重试。
type Dispatcher struct {
	Transport contract.Transport
	Log       zerolog.Logger
}

// Endpoint 返回 base 上的解析接口地址（等价于以 base 为基准解析绝对路径 /parse/v1）。
func Endpoint(base *url.URL) string {
	return base.ResolveReference(&url.URL{Path: ParsePath}).String()
}

// Dispatch 发送请求并归一化应答。
// 非 2xx → *contract.TransportFailure；json → camelCase 树；markdown/html → 原文。
// 传输层错误（含 ctx 取消）原样返回。
func (d Dispatcher) Dispatch(ctx context.Context, cfg contract.Configuration, wire contract.WireRequest) (*Response, error) {
	if d.Transport == nil {
		return nil, errors.New("dispatch: transport not configured")
	}
	if cfg.APIURL == nil {
		return nil, contract.Configurationf("API URL is required")
	}
	endpoint := Endpoint(cfg.APIURL)
	hdr := http.Header{}
	if cfg.APIKey != "" {
		hdr.Set("Authorization", "Bearer "+cfg.APIKey)
	}

	t0 := time.Now()
	reply, err := d.Transport.Send(ctx, contract.Exchange{Method: http.MethodPost, URL: endpoint, Header: hdr, Body: wire})
	if err != nil {
		return nil, err
	}
	d.Log.Debug().Str("url", endpoint).Int("status", reply.StatusCode).Int("bytes", len(reply.Body)).
		Int64("duration_ms", time.Since(t0).Milliseconds()).Msg("reply")

	if !reply.OK() {
		return nil, &contract.TransportFailure{
			Message:    fmt.Sprintf("HTTP %d %s: %s", reply.StatusCode, reply.StatusText, endpoint),
			StatusCode: reply.StatusCode,
			Cause:      errors.New(reply.Text()),
		}
	}

	switch cfg.Format {
	case contract.FormatJSON:
		tree, err := casing.Parse(reply.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", contract.ErrResponseInvalid, err)
		}
		return &Response{Format: cfg.Format, Tree: casing.Transform(tree)}, nil
	case contract.FormatMarkdown, contract.FormatHTML:
		return &Response{Format: cfg.Format, Text: reply.Text()}, nil
	default:
		return nil, &contract.FormatError{Format: cfg.Format}
	}
}
