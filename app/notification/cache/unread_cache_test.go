package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	commonCache "haojuleling/common/cache"
	"haojuleling/common/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounter struct {
	count int64
	err   error
	calls int32
}

func (f *fakeCounter) CountUnread(_ context.Context, _ string) (int64, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.count, f.err
}

func TestUnreadCacheHitAndInvalidate(t *testing.T) {
	ctx := context.Background()
	rds, mr := testkit.NewRedis(t)
	counter := &fakeCounter{count: 3}
	c := NewUnreadCache(rds, counter)

	got, err := c.Get(ctx, "o_1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), got)
	assert.True(t, mr.Exists(commonCache.UnreadCountKey("o_1")))

	// 命中缓存不回源
	counter.count = 7
	got, err = c.Get(ctx, "o_1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), got)
	assert.Equal(t, int32(1), atomic.LoadInt32(&counter.calls))

	c.Invalidate(ctx, "o_1")
	got, err = c.Get(ctx, "o_1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), got)
}

func TestUnreadCacheCorruptedValue(t *testing.T) {
	ctx := context.Background()
	rds, mr := testkit.NewRedis(t)
	require.NoError(t, mr.Set(commonCache.UnreadCountKey("o_1"), "abc"))

	c := NewUnreadCache(rds, &fakeCounter{count: 2})
	got, err := c.Get(ctx, "o_1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got)

	val, err := mr.Get(commonCache.UnreadCountKey("o_1"))
	require.NoError(t, err)
	assert.Equal(t, "2", val)
}

func TestUnreadCacheCounterError(t *testing.T) {
	rds, mr := testkit.NewRedis(t)
	c := NewUnreadCache(rds, &fakeCounter{err: errors.New("db down")})

	_, err := c.Get(context.Background(), "o_1")
	require.Error(t, err)
	assert.False(t, mr.Exists(commonCache.UnreadCountKey("o_1")))
}
