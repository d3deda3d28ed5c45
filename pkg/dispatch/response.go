package dispatch

import (
	"encoding/json"
	"fmt"

	"anyparser/pkg/casing"
	"anyparser/pkg/contract"
)

// Response: 归一化后的应答。
// Format=json 时 Tree 为 camelCase 树；markdown/html 时 Text 为原文。
type Response struct {
	Format contract.Format
	Tree   casing.Value
	Text   string
}

// JSON 返回 Tree 的 JSON 编码（保持键顺序）；文本格式返回原文的 JSON 字符串。
func (r *Response) JSON() ([]byte, error) {
	if r.Format != contract.FormatJSON {
		return json.Marshal(r.Text)
	}
	return casing.Marshal(r.Tree)
}

// Bytes 返回适合落盘的内容：json 为树编码，其余为原文。
func (r *Response) Bytes() ([]byte, error) {
	if r.Format != contract.FormatJSON {
		return []byte(r.Text), nil
	}
	return casing.Marshal(r.Tree)
}

// Results 按区分字段把树解码为结果联合；仅 json 格式可用。
// 顶层可为结果数组或单个对象。
func (r *Response) Results() ([]contract.Result, error) {
	if r.Format != contract.FormatJSON {
		return nil, &contract.FormatError{Format: r.Format}
	}
	var items []casing.Value
	switch x := r.Tree.(type) {
	case casing.List:
		items = x
	case *casing.Record:
		items = []casing.Value{x}
	case casing.Null, nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: unexpected top-level %T", contract.ErrResponseInvalid, r.Tree)
	}
	out := make([]contract.Result, 0, len(items))
	for i, it := range items {
		rec, ok := it.(*casing.Record)
		if !ok {
			return nil, fmt.Errorf("%w: item %d is %T", contract.ErrResponseInvalid, i, it)
		}
		res, err := decodeResult(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", contract.ErrResponseInvalid, i, err)
		}
		out = append(out, res)
	}
	return out, nil
}

func decodeResult(rec *casing.Record) (contract.Result, error) {
	var res contract.Result
	switch {
	case rec.Has("startUrl") || rec.Has("robotsDirective"):
		res = &contract.CrawlResult{}
	case rec.Has("items") || rec.Has("totalItems"):
		res = &contract.DocumentResult{}
	default:
		res = &contract.TextResult{}
	}
	b, err := casing.Marshal(rec)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(b, res); err != nil {
		return nil, err
	}
	return res, nil
}
