package flaky

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync/atomic"

	"anyparser/pkg/contract"
	"anyparser/plugins/transport/mock"
)

// 脚本步骤。
const (
	StepInvalidJSON = "invalid_json" // 200 + 无法解析的 JSON
	StepNetwork     = "network"      // 传输层错误
	StepOK          = "ok"           // 交给 mock
)

// ErrInjected: network 步骤返回的错误。
var ErrInjected = errors.New("flaky: injected network failure")

// Options 定义可选项。
type Options struct {
	// Script 按调用顺序列出前若干次的结果：HTTP 状态码（如 "503"）、invalid_json、network 或 ok。
	// 脚本耗尽后全部交给 mock。默认 ["503", "invalid_json"]。
	Script []string `json:"script"`
	Prefix string   `json:"prefix"`
	// LogPath: 调试用日志文件，记录每次调用结果（可选）。
	LogPath string `json:"log_path,omitempty"`
}

// Client 是带状态的传输实现，用于演练上游失败路径（调用方不重试，每次失败都原样上浮）。
type Client struct {
	script  []string
	logPath string
	next    *mock.Client
	count   atomic.Int32
}

var _ contract.Transport = (*Client)(nil)

// New 构造 Client；脚本中的非法步骤立即报错。
func New(opts *Options) (*Client, error) {
	var o Options
	if opts != nil {
		o = *opts
	}
	if o.Script == nil {
		o.Script = []string{"503", StepInvalidJSON}
	}
	if o.Prefix == "" {
		o.Prefix = "FLAKY"
	}
	for _, s := range o.Script {
		if _, err := parseStep(s); err != nil {
			return nil, err
		}
	}
	return &Client{script: o.Script, logPath: o.LogPath, next: mock.New(&mock.Options{Prefix: o.Prefix})}, nil
}

// parseStep 返回状态码；非数字步骤返回 0。
func parseStep(s string) (int, error) {
	switch s {
	case StepInvalidJSON, StepNetwork, StepOK:
		return 0, nil
	}
	code, err := strconv.Atoi(s)
	if err != nil || code < 100 || code > 599 {
		return 0, fmt.Errorf("flaky: invalid script step %q", s)
	}
	return code, nil
}

// Calls 返回已处理的调用次数。
func (c *Client) Calls() int { return int(c.count.Load()) }

func (c *Client) log(s string) {
	if c.logPath == "" {
		return
	}
	// 追加写入，忽略错误。
	_ = appendFile(c.logPath, s+"\n")
}

func appendFile(path, s string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(s)
	return err
}

// Send 实现 contract.Transport。
func (c *Client) Send(ctx context.Context, ex contract.Exchange) (contract.Reply, error) {
	if err := ctx.Err(); err != nil {
		return contract.Reply{}, err
	}
	n := int(c.count.Add(1))
	step := StepOK
	if n <= len(c.script) {
		step = c.script[n-1]
	}
	c.log(step)
	switch step {
	case StepOK:
		return c.next.Send(ctx, ex)
	case StepNetwork:
		return contract.Reply{}, ErrInjected
	case StepInvalidJSON:
		return contract.Reply{StatusCode: http.StatusOK, StatusText: http.StatusText(http.StatusOK), Body: []byte("{invalid")}, nil
	}
	code, _ := parseStep(step)
	body := fmt.Sprintf(`{"detail":"injected %d"}`, code)
	return contract.Reply{StatusCode: code, StatusText: http.StatusText(code), Body: []byte(body)}, nil
}
