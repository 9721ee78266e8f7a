package breakerx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/core/breaker"
)

var errBoom = errors.New("boom")

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func newTestBreaker(clock *fakeClock) *rateBreaker {
	return newRateBreaker(Config{Name: "test", Requests: 4, ErrorRate: 0.5, OpenSeconds: 5}, clock.now)
}

func fail() error { return errBoom }
func succeed() error { return nil }

func TestBreakerOpensOnErrorRate(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	b := newTestBreaker(clock)

	// 请求数未达阈值不打开
	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, b.Do(fail), errBoom)
	}
	assert.Equal(t, stateClosed, b.state)

	assert.ErrorIs(t, b.Do(fail), errBoom)
	assert.Equal(t, stateOpen, b.state)

	called := false
	err := b.Do(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, breaker.ErrServiceUnavailable)
	assert.False(t, called)
}

func TestBreakerStaysClosedBelowRate(t *testing.T) {
	b := newTestBreaker(&fakeClock{t: time.Now()})

	require.NoError(t, b.Do(succeed))
	require.NoError(t, b.Do(succeed))
	require.NoError(t, b.Do(succeed))
	assert.Error(t, b.Do(fail))
	assert.Equal(t, stateClosed, b.state)
}

func TestBreakerAcceptable(t *testing.T) {
	b := newTestBreaker(&fakeClock{t: time.Now()})
	accept := func(err error) bool { return err == nil || errors.Is(err, errBoom) }

	for i := 0; i < 10; i++ {
		assert.ErrorIs(t, b.DoWithAcceptable(fail, accept), errBoom)
	}
	assert.Equal(t, stateClosed, b.state)
}

func TestBreakerHalfOpen(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	b := newTestBreaker(clock)
	for i := 0; i < 4; i++ {
		_ = b.Do(fail)
	}
	require.Equal(t, stateOpen, b.state)

	// 探测失败重新打开
	clock.t = clock.t.Add(6 * time.Second)
	assert.ErrorIs(t, b.Do(fail), errBoom)
	assert.Equal(t, stateOpen, b.state)
	assert.ErrorIs(t, b.Do(succeed), breaker.ErrServiceUnavailable)

	// 探测成功关闭并清空统计
	clock.t = clock.t.Add(6 * time.Second)
	require.NoError(t, b.Do(succeed))
	assert.Equal(t, stateClosed, b.state)
	assert.ErrorIs(t, b.Do(fail), errBoom)
	assert.Equal(t, stateClosed, b.state)
}

func TestBreakerSingleProbe(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	b := newTestBreaker(clock)
	for i := 0; i < 4; i++ {
		_ = b.Do(fail)
	}
	clock.t = clock.t.Add(6 * time.Second)

	p, err := b.Allow()
	require.NoError(t, err)
	_, err = b.Allow()
	assert.ErrorIs(t, err, breaker.ErrServiceUnavailable)

	p.Accept()
	assert.Equal(t, stateClosed, b.state)
}

func TestBreakerFallbackAndContext(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	b := newTestBreaker(clock)
	for i := 0; i < 4; i++ {
		_ = b.Do(fail)
	}

	err := b.DoWithFallback(succeed, func(err error) error {
		assert.ErrorIs(t, err, breaker.ErrServiceUnavailable)
		return nil
	})
	assert.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, b.DoCtx(ctx, succeed), context.Canceled)
}

func TestNewDefaults(t *testing.T) {
	b := newRateBreaker(Config{Name: "d", ErrorRate: 2}, time.Now)
	assert.Equal(t, int64(50), b.requests)
	assert.Equal(t, 0.5, b.errorRate)
	assert.Equal(t, 10*time.Second, b.openFor)
	assert.Equal(t, "d", New(Config{Name: "d"}).Name())
}
