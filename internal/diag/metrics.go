package diag

import (
	"sort"
	"strconv"
	"strings"
	"sync"
)

// 进程内最小指标：
// - op_total{comp,stage,result}
// - error_total{comp,code}
// - op_duration_ms{comp,stage}（累计值）

var (
	metricsMu sync.Mutex
	counters  = map[string]int64{}
)

func bump(key string, delta int64) {
	metricsMu.Lock()
	counters[key] += delta
	metricsMu.Unlock()
}

// IncOp 累加操作计数（result=success|error）。
func IncOp(comp, stage, result string) {
	bump("op_total{"+comp+","+stage+","+result+"}", 1)
}

// IncError 按分类累加错误计数。
func IncError(comp, code string) {
	bump("error_total{"+comp+","+code+"}", 1)
}

// ObserveDuration 记录阶段耗时（毫秒）。
func ObserveDuration(comp, stage string, durMS int64) {
	bump("op_duration_ms{"+comp+","+stage+"}", durMS)
}

// Snapshot 返回当前计数副本。
func Snapshot() map[string]int64 {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	out := make(map[string]int64, len(counters))
	for k, v := range counters {
		out[k] = v
	}
	return out
}

// Dump 以稳定顺序输出 "name value" 行。
func Dump() string {
	snap := Snapshot()
	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte(' ')
		b.WriteString(strconv.FormatInt(snap[k], 10))
		b.WriteByte('\n')
	}
	return b.String()
}
