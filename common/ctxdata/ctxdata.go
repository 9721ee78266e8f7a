package ctxdata

import (
	"context"
	"fmt"
)

// 定义上下文 key 类型，避免冲突
type contextKey string

const (
	// CtxKeyOpenID 调用者 openid 在上下文中的key
	CtxKeyOpenID contextKey = "openid"
	// CtxKeyRequestID 请求ID
	CtxKeyRequestID contextKey = "requestId"

	// jwtKeyOpenID go-zero 风格的 JWT 字段名（字符串 key）
	jwtKeyOpenID = "openid"
)

// GetOpenIDFromCtx 从上下文中获取调用者 openid
// 调用者身份只来自认证中间件，不信任请求体
func GetOpenIDFromCtx(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if val := ctx.Value(CtxKeyOpenID); val != nil {
		return toString(val)
	}

	// 兼容 go-zero 的 JWT 解析方式（字符串 key）
	if val := ctx.Value(jwtKeyOpenID); val != nil {
		return toString(val)
	}

	return ""
}

// WithOpenID 将调用者 openid 注入上下文
func WithOpenID(ctx context.Context, openid string) context.Context {
	return context.WithValue(ctx, CtxKeyOpenID, openid)
}

// GetRequestIDFromCtx 从上下文中获取请求ID
func GetRequestIDFromCtx(ctx context.Context) string {
	if val := ctx.Value(CtxKeyRequestID); val != nil {
		if reqID, ok := val.(string); ok {
			return reqID
		}
	}
	return ""
}

// WithRequestID 将请求ID注入上下文
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, CtxKeyRequestID, requestID)
}

func toString(val interface{}) string {
	switch v := val.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
