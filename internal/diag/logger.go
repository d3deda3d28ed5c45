package diag

import (
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"anyparser/pkg/contract"
)

// 结构化日志字段名。
const (
	FieldCorrID = "corr_id"
	FieldComp   = "comp"
	FieldStage  = "stage" // start|finish|error
	FieldCode   = "code"
	FieldDurMS  = "dur_ms"
	FieldCount  = "count"
)

// UseShortFieldNames 将 zerolog 全局字段名改为 ts/msg（RFC3339 时间）。
// 修改的是进程级设置，只应由可执行程序在启动时调用；库代码不调用。
func UseShortFieldNames() {
	zerolog.TimestampFieldName = "ts"
	zerolog.MessageFieldName = "msg"
	zerolog.TimeFieldFormat = time.RFC3339
}

// Logger 包装 zerolog：单行 JSON，按大小轮转写入 logs/anyparser-current.log。
type Logger struct {
	zl   zerolog.Logger
	sink io.Closer
}

// NewLogger 通过配置的 level 初始化，并将日志写入默认路径 logs/，10 MiB 轮转。
func NewLogger(corrID, level string) *Logger {
	sink := NewRotatingFile("logs", 10)
	l := NewLoggerTo(sink, corrID, level)
	l.sink = sink
	return l
}

// NewLoggerTo 写入任意 io.Writer（测试或 stderr 场景）。
func NewLoggerTo(w io.Writer, corrID, level string) *Logger {
	if w == nil {
		w = os.Stderr
	}
	zl := zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Str(FieldCorrID, corrID).Logger()
	return &Logger{zl: zl}
}

// Wrap 复用调用方已有的 zerolog.Logger（不持有 sink）。
func Wrap(zl zerolog.Logger) *Logger { return &Logger{zl: zl} }

// ParseLevel 解析级别名；未知值回退为 info。
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Z 返回底层 zerolog.Logger，供库包按组件派生。
func (l *Logger) Z() zerolog.Logger {
	if l == nil {
		return zerolog.Nop()
	}
	return l.zl
}

// Component 返回带 comp 字段的子日志器。
func (l *Logger) Component(comp string) zerolog.Logger {
	return l.Z().With().Str(FieldComp, comp).Logger()
}

// Close 关闭文件 sink（若有）。
func (l *Logger) Close() error {
	if l == nil || l.sink == nil {
		return nil
	}
	return l.sink.Close()
}

// Start 记录 start 事件；返回计时器用于 Finish/Fail。
func (l *Logger) Start(comp, msg string) *Timer {
	return l.StartWithKV(comp, msg, nil)
}

// StartWithKV 记录带键值的 start。
func (l *Logger) StartWithKV(comp, msg string, kv map[string]string) *Timer {
	if l == nil {
		return nil
	}
	ev := l.zl.Info().Str(FieldComp, comp).Str(FieldStage, "start")
	addKV(ev, kv)
	ev.Msg(msg)
	return &Timer{l: l, comp: comp, t0: time.Now()}
}

// DebugStart 输出调试级别的 start 类事件（仅在 level=debug 时生效）。
func (l *Logger) DebugStart(comp, msg string, kv map[string]string) {
	if l == nil {
		return
	}
	ev := l.zl.Debug().Str(FieldComp, comp).Str(FieldStage, "start")
	addKV(ev, kv)
	ev.Msg(msg)
}

// Error 记录 error 事件；code 为空时按 err 分类。上游错误附带 http_status/upstream。
func (l *Logger) Error(comp string, code Code, err error, durSince *time.Time) {
	l.ErrorWithKV(comp, code, err, durSince, nil)
}

// ErrorWithKV 支持附带键值对。
func (l *Logger) ErrorWithKV(comp string, code Code, err error, durSince *time.Time, kv map[string]string) {
	if l == nil {
		return
	}
	if code == "" {
		code = Classify(err)
	}
	ev := l.zl.Error().Str(FieldComp, comp).Str(FieldStage, "error").Str(FieldCode, string(code))
	if durSince != nil {
		ev = ev.Int64(FieldDurMS, time.Since(*durSince).Milliseconds())
	}
	var ue contract.UpstreamError
	if errors.As(err, &ue) {
		ev = ev.Int("http_status", ue.UpstreamStatus()).Str("upstream", ue.UpstreamMessage())
	}
	addKV(ev, kv)
	msg := "error"
	if err != nil {
		msg = err.Error()
	}
	ev.Msg(msg)
}

// InfoFinish 在已有起点的情况下记录 finish。
func (l *Logger) InfoFinish(comp, msg string, start time.Time, count int64) {
	if l == nil {
		return
	}
	l.zl.Info().Str(FieldComp, comp).Str(FieldStage, "finish").
		Int64(FieldDurMS, time.Since(start).Milliseconds()).Int64(FieldCount, count).Msg(msg)
}

func addKV(ev *zerolog.Event, kv map[string]string) {
	for k, v := range kv {
		ev.Str(k, v)
	}
}

// Timer 用于 start→finish 计时。
type Timer struct {
	l    *Logger
	comp string
	t0   time.Time
}

// Finish 记录 finish；可选 count。
func (t *Timer) Finish(msg string, count int64) {
	if t == nil || t.l == nil {
		return
	}
	t.l.InfoFinish(t.comp, msg, t.t0, count)
}

// Fail 记录带耗时的 error 事件并返回分类。
func (t *Timer) Fail(err error) Code {
	code := Classify(err)
	if t == nil || t.l == nil {
		return code
	}
	t.l.Error(t.comp, code, err, &t.t0)
	return code
}

// Elapsed 返回自 Start 起的耗时。
func (t *Timer) Elapsed() time.Duration {
	if t == nil {
		return 0
	}
	return time.Since(t.t0)
}
