package casing

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrInvalidJSON: 输入不是合法 JSON。
var ErrInvalidJSON = errors.New("invalid json")

// Parse 按文档顺序把 JSON 字节构造成 Value。
// 对象 → *Record（重复键后者胜出、保留首次位置），数组 → List，
// 数字保留原文（json.Number），null → Null。
func Parse(b []byte) (Value, error) {
	if !gjson.ValidBytes(b) {
		return nil, ErrInvalidJSON
	}
	return fromResult(gjson.ParseBytes(b)), nil
}

func fromResult(r gjson.Result) Value {
	switch r.Type {
	case gjson.Null:
		return Null{}
	case gjson.False:
		return Primitive{V: false}
	case gjson.True:
		return Primitive{V: true}
	case gjson.Number:
		return Primitive{V: json.Number(r.Raw)}
	case gjson.String:
		return Primitive{V: r.Str}
	}
	if r.IsArray() {
		out := List{}
		r.ForEach(func(_, v gjson.Result) bool {
			out = append(out, fromResult(v))
			return true
		})
		return out
	}
	rec := NewRecord()
	r.ForEach(func(k, v gjson.Result) bool {
		rec.Put(k.Str, fromResult(v))
		return true
	})
	return rec
}

// Marshal 以记录键顺序输出 JSON。
// Map 仅支持字符串原子键；Set 输出为数组；Opaque 交由 encoding/json（实现 fmt.Stringer 的按字符串输出）。
func Marshal(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encode(buf *bytes.Buffer, v Value) error {
	switch x := v.(type) {
	case nil, Null:
		buf.WriteString("null")
	case Primitive:
		return encodeAny(buf, x.V)
	case Opaque:
		if s, ok := x.V.(fmt.Stringer); ok {
			return encodeAny(buf, s.String())
		}
		return encodeAny(buf, x.V)
	case List:
		return encodeSeq(buf, x)
	case Set:
		return encodeSeq(buf, x)
	case Map:
		buf.WriteByte('{')
		for i, e := range x {
			k, ok := Str(e.Key)
			if !ok {
				return fmt.Errorf("casing: map key %T is not a string", e.Key)
			}
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeAny(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := encode(buf, e.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case *Record:
		if x == nil {
			buf.WriteString("null")
			return nil
		}
		buf.WriteByte('{')
		for i, k := range x.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeAny(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := encode(buf, x.vals[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("casing: unknown value %T", v)
	}
	return nil
}

func encodeSeq(buf *bytes.Buffer, xs []Value) error {
	buf.WriteByte('[')
	for i, e := range xs {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encode(buf, e); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}

func encodeAny(buf *bytes.Buffer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}
