package wechat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{AppID: "wx-app", AppSecret: "secret", BaseURL: srv.URL, Timeout: 2})
}

func TestCode2Session(t *testing.T) {
	c := newFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, code2SessionPath, r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "wx-app", q.Get("appid"))
		assert.Equal(t, "secret", q.Get("secret"))
		assert.Equal(t, "authorization_code", q.Get("grant_type"))
		assert.Equal(t, "code-1", q.Get("js_code"))
		// 微信返回 text/plain
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(`{"openid":"o_123","unionid":"u_1","session_key":"sk"}`))
	})

	session, err := c.Code2Session(context.Background(), "code-1")
	require.NoError(t, err)
	assert.Equal(t, "o_123", session.OpenID)
	assert.Equal(t, "u_1", session.UnionID)
}

func TestCode2SessionErrCode(t *testing.T) {
	c := newFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errcode":40029,"errmsg":"invalid code"}`))
	})

	_, err := c.Code2Session(context.Background(), "bad")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidCode))
	assert.Contains(t, err.Error(), "40029")
}

func TestCode2SessionHTTPError(t *testing.T) {
	c := newFakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.Code2Session(context.Background(), "code")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidCode))
}
