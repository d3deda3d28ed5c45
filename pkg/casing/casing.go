// Package casing 将 snake_case 响应树的记录键递归改写为 camelCase。
package casing

import (
	"net/url"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var underscoreRun = regexp.MustCompile(`_+(.)`)

// RewriteKey 将每段 `_+(.)` 替换为其后字符的大写形式。
// 不含下划线的键原样返回；结果再次改写不变（幂等）。
func RewriteKey(key string) string {
	if !strings.Contains(key, "_") {
		return key
	}
	// cases.Caser 非并发安全，按次创建。
	upper := cases.Upper(language.Und)
	return underscoreRun.ReplaceAllStringFunc(key, func(m string) string {
		tail := strings.TrimLeft(m, "_")
		if tail == "" {
			// 匹配形如 "__"：捕获字符本身就是下划线。
			tail = "_"
		}
		return upper.String(tail)
	})
}

// Transform 返回改写后的新树，输入不被修改。
// 处理顺序：Opaque 原样 → Null 原样 → List 逐元素 → Map 键值递归 →
// Set 成员递归 → Record 改写键并递归值 → Primitive 原样。
// 键冲突时后出现者胜出，合并键保留首次出现的位置。
func Transform(v Value) Value {
	switch x := v.(type) {
	case nil:
		return nil
	case Opaque:
		return x
	case Null:
		return x
	case List:
		out := make(List, len(x))
		for i, e := range x {
			out[i] = Transform(e)
		}
		return out
	case Map:
		out := make(Map, len(x))
		for i, e := range x {
			out[i] = MapEntry{Key: Transform(e.Key), Value: Transform(e.Value)}
		}
		return out
	case Set:
		out := make(Set, len(x))
		for i, e := range x {
			out[i] = Transform(e)
		}
		return out
	case *Record:
		if x == nil {
			return x
		}
		out := NewRecord(x.Len())
		for _, k := range x.keys {
			out.Put(RewriteKey(k), Transform(x.vals[k]))
		}
		return out
	default:
		return v
	}
}

// ToCamel 对原生 Go 树应用同样的规则：
// map[string]any 视为记录（无序，按键排序访问，字典序最大的源键在冲突中胜出）；
// map[any]any 视为 Map（键递归变换）；[]any 逐元素；
// 其他具体类型的 map/切片经反射按同样规则处理（见 reflectCamel）；
// time.Time、*url.URL、*regexp.Regexp、函数原样返回同一引用；其余原样返回。
func ToCamel(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case Value:
		return Transform(x)
	case time.Time, *time.Time, *url.URL, url.URL, *regexp.Regexp:
		return v
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = ToCamel(e)
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(map[string]any, len(x))
		for _, k := range keys {
			out[RewriteKey(k)] = ToCamel(x[k])
		}
		return out
	case map[any]any:
		out := make(map[any]any, len(x))
		for k, e := range x {
			out[ToCamel(k)] = ToCamel(e)
		}
		return out
	}
	return reflectCamel(v)
}

// reflectCamel 处理带具体类型的容器（map[string]string、[]map[string]any 等）：
// 字符串键的 map 转为 map[string]any，其他 map 转为 map[any]any，切片/数组（[]byte 除外）转为 []any。
// 结构体、指针、函数、数字、字符串等原样返回。
func reflectCamel(v any) any {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			m := make(map[string]any, rv.Len())
			for _, k := range rv.MapKeys() {
				m[k.String()] = rv.MapIndex(k).Interface()
			}
			return ToCamel(m)
		}
		out := make(map[any]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[ToCamel(iter.Key().Interface())] = ToCamel(iter.Value().Interface())
		}
		return out
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return v
		}
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return v
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = ToCamel(rv.Index(i).Interface())
		}
		return out
	}
	return v
}
