package contract

import "unicode/utf8"

// UpstreamError 用于承载 HTTP 上游错误的最小诊断信息。
// 实现方应提供状态码与简短消息，便于 pipeline 记录结构化日志字段。
type UpstreamError interface {
	error
	UpstreamStatus() int
	UpstreamMessage() string
}

// TransportFailure: 上游返回非 2xx。
// Message 形如 "HTTP <status> <statusText>: <url>"；Cause 承载响应体文本。
type TransportFailure struct {
	Message    string
	StatusCode int
	Cause      error
}

func (e *TransportFailure) Error() string { return e.Message }

func (e *TransportFailure) Unwrap() error { return e.Cause }

func (e *TransportFailure) UpstreamStatus() int { return e.StatusCode }

const upstreamMessageMax = 256

// UpstreamMessage 返回响应体文本（至多 256 字节，按 rune 边界截断），无则回退为 Message。
func (e *TransportFailure) UpstreamMessage() string {
	if e.Cause == nil {
		return e.Message
	}
	return truncateUTF8(e.Cause.Error(), upstreamMessageMax)
}

// truncateUTF8 截断到不超过 n 字节，且不切开多字节字符。
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	i := n
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return s[:i]
}
