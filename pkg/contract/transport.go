package contract

import (
	"context"
	"net/http"
)

// Field: 表单文本字段。
type Field struct {
	Name  string
	Value string
}

// FilePart: 表单文件字段（字段名固定为 files）。
type FilePart struct {
	FileName string
	Content  []byte
}

// WireRequest: 与传输无关的 multipart 请求描述。
// 约束：Fields 顺序稳定；crawler 模式下 Files 必为空。
type WireRequest struct {
	Fields []Field
	Files  []FilePart
}

// Get 返回首个同名字段。
func (w WireRequest) Get(name string) (string, bool) {
	for _, f := range w.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Exchange: 一次 HTTP 交换的请求侧。
type Exchange struct {
	Method string
	URL    string
	Header http.Header
	Body   WireRequest
}

// Reply: 上游应答（已完整读取）。
type Reply struct {
	StatusCode int
	StatusText string
	Body       []byte
}

// OK 对应 2xx。
func (r Reply) OK() bool { return r.StatusCode >= 200 && r.StatusCode <= 299 }

func (r Reply) Text() string { return string(r.Body) }

// Transport: 执行一次交换并返回应答。
// 约束：非 2xx 不视为错误（由调用方判定）；网络错误与 ctx 取消原样返回；不做重试。
type Transport interface {
	Send(ctx context.Context, ex Exchange) (Reply, error)
}
