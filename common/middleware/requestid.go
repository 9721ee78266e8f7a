package middleware

import (
	"net/http"

	"haojuleling/common/ctxdata"

	"github.com/google/uuid"
)

// RequestIDMiddleware 请求 ID 中间件
// 1. 从请求头 X-Request-ID 中获取（客户端传递时）
// 2. 没有则生成新的 uuid
// 3. 注入 context 并写回响应头
//
// 使用方式：
//
//	server.Use(middleware.RequestIDMiddleware)
func RequestIDMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := ctxdata.WithRequestID(r.Context(), requestID)
		w.Header().Set("X-Request-ID", requestID)

		next(w, r.WithContext(ctx))
	}
}
