package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"haojuleling/app/gateway/api/internal/config"
	"haojuleling/app/gateway/api/internal/svc"
	"haojuleling/common/errorx"
	"haojuleling/common/response"
	"haojuleling/common/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seen struct {
	path      string
	requestID string
	auth      string
	body      string
}

func newUpstream(t *testing.T, got *seen) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		body, _ := io.ReadAll(r.Body)
		if got != nil {
			*got = seen{
				path:      r.URL.Path,
				requestID: r.Header.Get("X-Request-ID"),
				auth:      r.Header.Get("Authorization"),
				body:      string(body),
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":0,"message":"获取成功"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func downUpstream() string {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()
	return addr
}

func newTestContext(t *testing.T, ups config.Upstreams) *svc.ServiceContext {
	rds, _ := testkit.NewRedis(t)
	c := config.Config{
		Upstreams: ups,
		RateLimit: config.RateLimitConfig{Rate: 1000, Burst: 1000, IPQuota: 100, IPPeriod: 60},
	}
	return svc.NewServiceContextWithRedis(c, rds)
}

func proxyHandler(ctx *svc.ServiceContext, name string) http.HandlerFunc {
	return ctx.RequestID(ctx.RateLimit(ctx.Proxies.Get(name).Proxy.ServeHTTP))
}

func TestProxyForward(t *testing.T) {
	var got seen
	up := newUpstream(t, &got)
	ctx := newTestContext(t, config.Upstreams{Activity: up.URL, Notification: up.URL, User: up.URL})

	req := httptest.NewRequest(http.MethodPost, "/api/activity/dispatch", strings.NewReader(`{"action":"getActivityList"}`))
	req.Header.Set("X-Request-ID", "req-1")
	req.Header.Set("Authorization", "Bearer t")
	w := httptest.NewRecorder()
	proxyHandler(ctx, svc.UpstreamActivity)(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-1", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "/api/activity/dispatch", got.path)
	assert.Equal(t, "req-1", got.requestID)
	assert.Equal(t, "Bearer t", got.auth)
	assert.Equal(t, `{"action":"getActivityList"}`, got.body)

	var res response.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, errorx.CodeSuccess, res.Code)
}

func TestProxyGeneratesRequestID(t *testing.T) {
	var got seen
	up := newUpstream(t, &got)
	ctx := newTestContext(t, config.Upstreams{Activity: up.URL, Notification: up.URL, User: up.URL})

	req := httptest.NewRequest(http.MethodPost, "/api/user/dispatch", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	proxyHandler(ctx, svc.UpstreamUser)(w, req)

	assert.NotEmpty(t, got.requestID)
	assert.Equal(t, w.Header().Get("X-Request-ID"), got.requestID)
}

func TestProxyUpstreamDown(t *testing.T) {
	up := newUpstream(t, nil)
	ctx := newTestContext(t, config.Upstreams{Activity: up.URL, Notification: downUpstream(), User: up.URL})

	req := httptest.NewRequest(http.MethodPost, "/api/notification/dispatch", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	proxyHandler(ctx, svc.UpstreamNotification)(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var res response.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, errorx.CodeServiceUnavailable, res.Code)
}

func TestHealth(t *testing.T) {
	up := newUpstream(t, nil)

	t.Run("全部可用", func(t *testing.T) {
		ctx := newTestContext(t, config.Upstreams{Activity: up.URL, Notification: up.URL, User: up.URL})
		w := httptest.NewRecorder()
		HealthHandler(ctx)(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var res HealthResp
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, "ok", res.Status)
		assert.Equal(t, map[string]string{"activity": "ok", "notification": "ok", "user": "ok"}, res.Upstreams)
	})

	t.Run("部分不可用", func(t *testing.T) {
		ctx := newTestContext(t, config.Upstreams{Activity: up.URL, Notification: up.URL, User: downUpstream()})
		w := httptest.NewRecorder()
		HealthHandler(ctx)(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		var res HealthResp
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, "degraded", res.Status)
		assert.Equal(t, "down", res.Upstreams["user"])
		assert.Equal(t, "ok", res.Upstreams["activity"])
	})
}
