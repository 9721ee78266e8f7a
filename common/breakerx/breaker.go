// Package breakerx 按错误率熔断的 breaker.Breaker 实现
//
// 统计窗口内请求数达到 Requests 且错误率 >= ErrorRate 时打开，
// 打开 OpenSeconds 后放行一个探测请求：成功则关闭并清空统计，失败则重新打开
package breakerx

import (
	"context"
	"sync"
	"time"

	"github.com/zeromicro/go-zero/core/breaker"
	"github.com/zeromicro/go-zero/core/collection"
	"github.com/zeromicro/go-zero/core/logx"
)

const (
	window  = 10 * time.Second
	buckets = 20
)

type Config struct {
	Name        string  `json:",optional"`
	Requests    int     `json:",default=50"`
	ErrorRate   float64 `json:",default=0.5"`
	OpenSeconds int     `json:",default=10"`
}

type state int

const (
	stateClosed state = iota
	stateOpen
	stateHalfOpen
)

func (s state) String() string {
	switch s {
	case stateOpen:
		return "open"
	case stateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

type rateBreaker struct {
	name      string
	requests  int64
	errorRate float64
	openFor   time.Duration
	now       func() time.Time

	mu        sync.Mutex
	state     state
	openUntil time.Time
	probing   bool
	stat      *collection.RollingWindow[int64, *collection.Bucket[int64]]
}

// New 创建熔断器，非法配置取默认值
func New(c Config) breaker.Breaker {
	return newRateBreaker(c, time.Now)
}

func newRateBreaker(c Config, now func() time.Time) *rateBreaker {
	if c.Requests <= 0 {
		c.Requests = 50
	}
	if c.ErrorRate <= 0 || c.ErrorRate > 1 {
		c.ErrorRate = 0.5
	}
	if c.OpenSeconds <= 0 {
		c.OpenSeconds = 10
	}
	return &rateBreaker{
		name:      c.Name,
		requests:  int64(c.Requests),
		errorRate: c.ErrorRate,
		openFor:   time.Duration(c.OpenSeconds) * time.Second,
		now:       now,
		stat:      newStat(),
	}
}

func newStat() *collection.RollingWindow[int64, *collection.Bucket[int64]] {
	return collection.NewRollingWindow[int64, *collection.Bucket[int64]](
		func() *collection.Bucket[int64] { return new(collection.Bucket[int64]) },
		buckets,
		window/buckets,
	)
}

func (b *rateBreaker) Name() string {
	return b.name
}

// ==================== 状态 ====================

// acquire 判断是否放行，半开状态只放行一个探测请求
func (b *rateBreaker) acquire() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case stateOpen:
		if b.now().Before(b.openUntil) {
			return false
		}
		b.transit(stateHalfOpen)
		b.probing = true
		return true
	case stateHalfOpen:
		if b.probing {
			return false
		}
		b.probing = true
		return true
	default:
		return true
	}
}

func (b *rateBreaker) record(ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == stateHalfOpen {
		b.probing = false
		if ok {
			b.stat = newStat()
			b.transit(stateClosed)
		} else {
			b.open()
		}
		return
	}

	if ok {
		b.stat.Add(0)
	} else {
		b.stat.Add(1)
	}

	var failures, total int64
	b.stat.Reduce(func(bucket *collection.Bucket[int64]) {
		failures += bucket.Sum
		total += bucket.Count
	})
	if b.state == stateClosed && total >= b.requests && float64(failures)/float64(total) >= b.errorRate {
		b.open()
	}
}

func (b *rateBreaker) open() {
	b.openUntil = b.now().Add(b.openFor)
	b.transit(stateOpen)
}

func (b *rateBreaker) transit(to state) {
	if b.state == to {
		return
	}
	logx.Infof("熔断器状态变更: name=%s, %s -> %s", b.name, b.state, to)
	b.state = to
}

// ==================== breaker.Breaker ====================

func (b *rateBreaker) Allow() (breaker.Promise, error) {
	if !b.acquire() {
		return nil, breaker.ErrServiceUnavailable
	}
	return promise{b: b}, nil
}

func (b *rateBreaker) AllowCtx(ctx context.Context) (breaker.Promise, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return b.Allow()
}

func (b *rateBreaker) Do(req func() error) error {
	return b.do(context.Background(), req, nil, nil)
}

func (b *rateBreaker) DoCtx(ctx context.Context, req func() error) error {
	return b.do(ctx, req, nil, nil)
}

func (b *rateBreaker) DoWithAcceptable(req func() error, acceptable breaker.Acceptable) error {
	return b.do(context.Background(), req, nil, acceptable)
}

func (b *rateBreaker) DoWithAcceptableCtx(ctx context.Context, req func() error, acceptable breaker.Acceptable) error {
	return b.do(ctx, req, nil, acceptable)
}

func (b *rateBreaker) DoWithFallback(req func() error, fallback breaker.Fallback) error {
	return b.do(context.Background(), req, fallback, nil)
}

func (b *rateBreaker) DoWithFallbackCtx(ctx context.Context, req func() error, fallback breaker.Fallback) error {
	return b.do(ctx, req, fallback, nil)
}

func (b *rateBreaker) DoWithFallbackAcceptable(req func() error, fallback breaker.Fallback,
	acceptable breaker.Acceptable) error {
	return b.do(context.Background(), req, fallback, acceptable)
}

func (b *rateBreaker) DoWithFallbackAcceptableCtx(ctx context.Context, req func() error,
	fallback breaker.Fallback, acceptable breaker.Acceptable) error {
	return b.do(ctx, req, fallback, acceptable)
}

func (b *rateBreaker) do(ctx context.Context, req func() error, fallback breaker.Fallback,
	acceptable breaker.Acceptable) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !b.acquire() {
		if fallback != nil {
			return fallback(breaker.ErrServiceUnavailable)
		}
		return breaker.ErrServiceUnavailable
	}
	if acceptable == nil {
		acceptable = func(err error) bool { return err == nil }
	}

	defer func() {
		if p := recover(); p != nil {
			b.record(false)
			panic(p)
		}
	}()

	err = req()
	b.record(acceptable(err))
	return err
}

type promise struct {
	b *rateBreaker
}

func (p promise) Accept() {
	p.b.record(true)
}

func (p promise) Reject(_ string) {
	p.b.record(false)
}
