// Package rate 提供按分组的客户端节流：每分钟请求数与每分钟上传字节数两个令牌桶。
// 只做放行节奏控制，不重试、不排队外的任何补偿。
package rate

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrOversize: 单次请求体超过 MaxBytes，永远无法放行。
var ErrOversize = errors.New("rate: request exceeds max upload bytes")

// ErrInvalidAsk: 申请的请求数 < 1 或字节数 < 0。
var ErrInvalidAsk = errors.New("rate: invalid ask")

// Key: 节流分组键（服务地址 + 凭据摘要）。
type Key string

// Limits: 每分组的限额。0 表示该维度不启用。
type Limits struct {
	RPM      int // requests per minute
	BPM      int // upload bytes per minute
	MaxBytes int // 单次请求体上限
}

// Enabled 任一维度启用时为 true。
func (l Limits) Enabled() bool { return l.RPM > 0 || l.BPM > 0 || l.MaxBytes > 0 }

// Ask: 一次放行申请。
type Ask struct {
	Key      Key
	Requests int
	Bytes    int
}

// Gate 并发安全；未见过的 Key 使用构造时的同一份 Limits 懒创建。
type Gate struct {
	clk func() time.Time
	lim Limits

	mu sync.Mutex
	m  map[Key]*entry
}

// NewGate 以统一限额构造；clk 为空则使用 time.Now。
func NewGate(lim Limits, clk func() time.Time) *Gate {
	if clk == nil {
		clk = time.Now
	}
	return &Gate{clk: clk, lim: lim, m: make(map[Key]*entry)}
}

type entry struct {
	mu    sync.Mutex
	req   bucket
	bytes bucket
}

type bucket struct {
	cap   int
	level float64
	rate  float64 // 每秒补充量
	last  time.Time
}

func newBucket(perMinute int, now time.Time) bucket {
	if perMinute <= 0 {
		return bucket{}
	}
	return bucket{cap: perMinute, level: float64(perMinute), rate: float64(perMinute) / 60.0, last: now}
}

func (b *bucket) enabled() bool { return b.cap > 0 }

func (b *bucket) refill(now time.Time) {
	if !b.enabled() || !now.After(b.last) {
		// 时钟回拨视为无时间流逝
		return
	}
	b.level += now.Sub(b.last).Seconds() * b.rate
	if b.level > float64(b.cap) {
		b.level = float64(b.cap)
	}
	b.last = now
}

// need: 单次申请量超过桶容量时按容量计，否则永远等不到。
func (b *bucket) need(n int) float64 {
	if n > b.cap {
		return float64(b.cap)
	}
	return float64(n)
}

func (b *bucket) canTake(n int) bool {
	return !b.enabled() || n <= 0 || b.level >= b.need(n)
}

func (b *bucket) take(n int) {
	if !b.enabled() || n <= 0 {
		return
	}
	b.level -= b.need(n)
	if b.level < 0 {
		b.level = 0
	}
}

func (b *bucket) waitFor(n int) time.Duration {
	if !b.enabled() || n <= 0 {
		return 0
	}
	deficit := b.need(n) - b.level
	if deficit <= 0 {
		return 0
	}
	return time.Duration(deficit / b.rate * float64(time.Second))
}

func (g *Gate) get(key Key) *entry {
	g.mu.Lock()
	defer g.mu.Unlock()
	e := g.m[key]
	if e == nil {
		now := g.clk()
		e = &entry{req: newBucket(g.lim.RPM, now), bytes: newBucket(g.lim.BPM, now)}
		g.m[key] = e
	}
	return e
}

func (g *Gate) check(a Ask) error {
	if a.Requests <= 0 || a.Bytes < 0 {
		return ErrInvalidAsk
	}
	if g.lim.MaxBytes > 0 && a.Bytes > g.lim.MaxBytes {
		return ErrOversize
	}
	return nil
}

// Try 非阻塞尝试；额度不足或申请非法时返回 false。
func (g *Gate) Try(a Ask) bool {
	if g.check(a) != nil {
		return false
	}
	e := g.get(a.Key)
	now := g.clk()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.req.refill(now)
	e.bytes.refill(now)
	if e.req.canTake(a.Requests) && e.bytes.canTake(a.Bytes) {
		e.req.take(a.Requests)
		e.bytes.take(a.Bytes)
		return true
	}
	return false
}

// Wait 阻塞直到额度可用或 ctx 结束；超过单次上限时立即失败。
func (g *Gate) Wait(ctx context.Context, a Ask) error {
	if err := g.check(a); err != nil {
		return err
	}
	e := g.get(a.Key)
	const minSleep = 10 * time.Millisecond
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		now := g.clk()
		e.mu.Lock()
		e.req.refill(now)
		e.bytes.refill(now)
		if e.req.canTake(a.Requests) && e.bytes.canTake(a.Bytes) {
			e.req.take(a.Requests)
			e.bytes.take(a.Bytes)
			e.mu.Unlock()
			return nil
		}
		d := max(e.req.waitFor(a.Requests), e.bytes.waitFor(a.Bytes)) + minSleep
		e.mu.Unlock()
		if err := sleepCtx(ctx, d); err != nil {
			return err
		}
	}
}

// sleepCtx 分片睡眠（每片至多 200ms）以及时响应取消。
func sleepCtx(ctx context.Context, d time.Duration) error {
	const step = 200 * time.Millisecond
	for d > 0 {
		s := min(d, step)
		t := time.NewTimer(s)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		d -= s
	}
	return nil
}

// Available 返回当前可用请求数/字节数的向下取整估值（仅诊断）；未启用的维度为 -1。
func (g *Gate) Available(key Key) (requests, bytes int) {
	e := g.get(key)
	now := g.clk()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.req.refill(now)
	e.bytes.refill(now)
	requests, bytes = -1, -1
	if e.req.enabled() {
		requests = int(e.req.level)
	}
	if e.bytes.enabled() {
		bytes = int(e.bytes.level)
	}
	return requests, bytes
}
