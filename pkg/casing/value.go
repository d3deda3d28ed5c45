package casing

// Value: 响应树的封闭递归变体。
// 变体：Null、Primitive、Opaque、List、Map、Set、*Record。
type Value interface {
	isValue()
}

// Null: JSON null / 缺失值。
type Null struct{}

// Primitive: 字符串、数字（json.Number）、布尔等叶子值，原样保留。
type Primitive struct {
	V any
}

// Opaque: 时间、正则、URL、函数等不可遍历的值；Transform 原样返回同一引用。
type Opaque struct {
	V any
}

// List: 有序序列，逐元素变换。
type List []Value

// MapEntry: Map 的单个键值对；键本身也是 Value。
type MapEntry struct {
	Key   Value
	Value Value
}

// Map: 以任意值为键的关联容器（保持种类：变换后仍为 Map）。
type Map []MapEntry

// Set: 成员集合（保持种类：变换后仍为 Set）。
type Set []Value

// Record: 字符串键的有序记录（对应 JSON 对象）。
// 约束：键唯一；Put 已存在的键时替换值并保留首次出现的位置。
type Record struct {
	keys []string
	vals map[string]Value
}

func (Null) isValue()      {}
func (Primitive) isValue() {}
func (Opaque) isValue()    {}
func (List) isValue()      {}
func (Map) isValue()       {}
func (Set) isValue()       {}
func (*Record) isValue()   {}

// NewRecord 创建空记录；可传入容量提示。
func NewRecord(capHint ...int) *Record {
	n := 0
	if len(capHint) > 0 && capHint[0] > 0 {
		n = capHint[0]
	}
	return &Record{keys: make([]string, 0, n), vals: make(map[string]Value, n)}
}

// Put 写入键值。
func (r *Record) Put(key string, v Value) {
	if r.vals == nil {
		r.vals = make(map[string]Value)
	}
	if _, ok := r.vals[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.vals[key] = v
}

// Get 读取键值。
func (r *Record) Get(key string) (Value, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.vals[key]
	return v, ok
}

// Has 判断键是否存在。
func (r *Record) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Keys 返回按插入顺序排列的键（副本）。
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Str 便捷读取：若值为字符串原子则返回之。
func Str(v Value) (string, bool) {
	p, ok := v.(Primitive)
	if !ok {
		return "", false
	}
	s, ok := p.V.(string)
	return s, ok
}
