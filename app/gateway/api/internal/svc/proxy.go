package svc

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"haojuleling/app/gateway/api/internal/config"
	"haojuleling/common/ctxdata"
	"haojuleling/common/errorx"
	"haojuleling/common/response"

	"github.com/pkg/errors"
	"github.com/zeromicro/go-zero/core/logx"
)

const (
	UpstreamActivity     = "activity"
	UpstreamNotification = "notification"
	UpstreamUser         = "user"
)

// Upstream 后端服务
type Upstream struct {
	Name   string
	Target *url.URL
	Proxy  *httputil.ReverseProxy
}

// Proxies 按服务名转发
type Proxies struct {
	upstreams []*Upstream
	byName    map[string]*Upstream
}

func MustNewProxies(c config.Upstreams) *Proxies {
	p, err := NewProxies(c)
	if err != nil {
		logx.Errorf("初始化反向代理失败: %v", err)
		panic(err)
	}
	return p
}

func NewProxies(c config.Upstreams) (*Proxies, error) {
	p := &Proxies{byName: make(map[string]*Upstream)}
	for _, item := range []struct{ name, addr string }{
		{UpstreamActivity, c.Activity},
		{UpstreamNotification, c.Notification},
		{UpstreamUser, c.User},
	} {
		target, err := url.Parse(item.addr)
		if err != nil || target.Scheme == "" || target.Host == "" {
			return nil, errors.Errorf("upstream %s: invalid address %q", item.name, item.addr)
		}
		u := &Upstream{Name: item.name, Target: target, Proxy: newReverseProxy(item.name, target)}
		p.upstreams = append(p.upstreams, u)
		p.byName[item.name] = u
	}
	return p, nil
}

// Get 按服务名取后端，不存在返回 nil
func (p *Proxies) Get(name string) *Upstream {
	return p.byName[name]
}

// All 全部后端，顺序固定
func (p *Proxies) All() []*Upstream {
	return p.upstreams
}

func newReverseProxy(name string, target *url.URL) *httputil.ReverseProxy {
	proxy := httputil.NewSingleHostReverseProxy(target)

	director := proxy.Director
	proxy.Director = func(r *http.Request) {
		director(r)
		if requestID := ctxdata.GetRequestIDFromCtx(r.Context()); requestID != "" {
			r.Header.Set("X-Request-ID", requestID)
		}
	}
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logx.WithContext(r.Context()).Errorf("转发失败: upstream=%s, path=%s, err=%v", name, r.URL.Path, err)
		response.Fail(r.Context(), w, errorx.ErrServiceUnavailable())
	}
	return proxy
}
