package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"haojuleling/common/errorx"
	"haojuleling/common/response"
	"haojuleling/common/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/core/limit"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func doRequest(h http.HandlerFunc, forwardedFor string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/activity/dispatch", nil)
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.8:53211"
	assert.Equal(t, "10.0.0.8", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", clientIP(req))
}

func TestRateLimitPerIP(t *testing.T) {
	rds, _ := testkit.NewRedis(t)
	m := NewRateLimitMiddleware(
		limit.NewTokenLimiter(1000, 1000, rds, "test:global"),
		limit.NewPeriodLimit(60, 2, rds, "test:ip:"),
	)
	h := m.Handle(okHandler)

	assert.Equal(t, http.StatusOK, doRequest(h, "").Code)
	assert.Equal(t, http.StatusOK, doRequest(h, "").Code)

	w := doRequest(h, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	var res response.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, errorx.CodeTooManyRequests, res.Code)

	// 其他 IP 不受影响
	assert.Equal(t, http.StatusOK, doRequest(h, "198.51.100.2").Code)
}

func TestRateLimitGlobal(t *testing.T) {
	rds, _ := testkit.NewRedis(t)
	m := NewRateLimitMiddleware(
		limit.NewTokenLimiter(1, 1, rds, "test:global"),
		limit.NewPeriodLimit(60, 100, rds, "test:ip:"),
	)
	h := m.Handle(okHandler)

	denied := 0
	for i := 0; i < 5; i++ {
		w := doRequest(h, "")
		if w.Code == http.StatusTooManyRequests {
			var res response.Result
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
			assert.Equal(t, "服务繁忙，请稍后重试", res.Message)
			denied++
		}
	}
	assert.GreaterOrEqual(t, denied, 3)
}

func TestRateLimitRedisDown(t *testing.T) {
	rds, mr := testkit.NewRedis(t)
	m := NewRateLimitMiddleware(
		limit.NewTokenLimiter(1000, 1000, rds, "test:global"),
		limit.NewPeriodLimit(60, 1, rds, "test:ip:"),
	)
	h := m.Handle(okHandler)
	mr.SetError("ERR connection lost")

	// Redis 不可用时放行
	assert.Equal(t, http.StatusOK, doRequest(h, "").Code)
	assert.Equal(t, http.StatusOK, doRequest(h, "").Code)
}
