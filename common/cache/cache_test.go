package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRandomTTL(t *testing.T) {
	for i := 0; i < 100; i++ {
		ttl := RandomTTL(DefaultTTL)
		assert.GreaterOrEqual(t, ttl, 270*time.Second)
		assert.LessOrEqual(t, ttl, 330*time.Second)
	}
	assert.Equal(t, 1, RandomTTLSeconds(100*time.Millisecond))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "activity:detail:12", ActivityDetailKey(12))
	assert.Equal(t, "notification:unread:o_1", UnreadCountKey("o_1"))
	assert.Equal(t, "gateway:limit:ip:", GatewayIPLimitPrefix())
}
