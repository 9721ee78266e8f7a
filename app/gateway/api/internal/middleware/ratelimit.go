package middleware

import (
	"net"
	"net/http"
	"strings"

	"haojuleling/common/errorx"
	"haojuleling/common/response"

	"github.com/zeromicro/go-zero/core/limit"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest/httpx"
)

// RateLimitMiddleware 全局令牌桶 + 单 IP 固定窗口限流
type RateLimitMiddleware struct {
	global *limit.TokenLimiter
	perIP  *limit.PeriodLimit
}

func NewRateLimitMiddleware(global *limit.TokenLimiter, perIP *limit.PeriodLimit) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		global: global,
		perIP:  perIP,
	}
}

func (m *RateLimitMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		// 全局限流，Redis 不可用时 TokenLimiter 自动降级为进程内限流
		if !m.global.AllowCtx(ctx) {
			response.Fail(ctx, w, errorx.NewWithMessage(errorx.CodeTooManyRequests, "服务繁忙，请稍后重试"))
			return
		}

		// IP 限流，Redis 出错时放行
		ip := clientIP(r)
		code, err := m.perIP.TakeCtx(ctx, ip)
		if err != nil {
			logx.WithContext(ctx).Errorf("IP 限流检查失败: ip=%s, err=%v", ip, err)
		} else if code == limit.OverQuota {
			response.Fail(ctx, w, errorx.ErrTooManyRequests())
			return
		}

		next(w, r)
	}
}

// clientIP 取 X-Forwarded-For 首个地址，否则取 RemoteAddr 去掉端口
func clientIP(r *http.Request) string {
	addr := httpx.GetRemoteAddr(r)
	if i := strings.IndexByte(addr, ','); i >= 0 {
		addr = addr[:i]
	}
	addr = strings.TrimSpace(addr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
