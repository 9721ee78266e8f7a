package middleware

import (
	"net/http"
	"strings"

	"haojuleling/common/ctxdata"
	"haojuleling/common/errorx"
	"haojuleling/common/response"
	"haojuleling/common/utils/jwt"
)

// AuthMiddleware JWT 认证中间件，把 openid 注入上下文
type AuthMiddleware struct {
	accessSecret string
	optional     bool
}

// NewAuthMiddleware 创建认证中间件，未携带 Token 直接拒绝
func NewAuthMiddleware(accessSecret string) *AuthMiddleware {
	return &AuthMiddleware{accessSecret: accessSecret}
}

// NewOptionalAuthMiddleware 未携带 Token 时放行（由业务判断是否需要登录），
// 携带了无效 Token 仍然拒绝
func NewOptionalAuthMiddleware(accessSecret string) *AuthMiddleware {
	return &AuthMiddleware{accessSecret: accessSecret, optional: true}
}

// Handle 处理认证逻辑
func (m *AuthMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// 1. 获取 Authorization 头
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			if m.optional {
				next(w, r)
				return
			}
			response.FailWithCode(r.Context(), w, errorx.CodeLoginRequired)
			return
		}

		// 2. 解析 Bearer Token
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.FailWithCode(r.Context(), w, errorx.CodeTokenInvalid)
			return
		}

		// 3. 解析 Token
		claims, err := jwt.ParseToken(parts[1], m.accessSecret)
		if err != nil {
			if jwt.IsTokenExpired(err) {
				response.FailWithCode(r.Context(), w, errorx.CodeTokenExpired)
				return
			}
			response.FailWithCode(r.Context(), w, errorx.CodeTokenInvalid)
			return
		}

		// 4. 将调用者注入上下文
		ctx := ctxdata.WithOpenID(r.Context(), claims.OpenID)
		next(w, r.WithContext(ctx))
	}
}
