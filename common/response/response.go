package response

import (
	"context"
	"net/http"
	"sync/atomic"

	"haojuleling/common/errorx"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest/httpx"
)

// Result 统一响应结构 {code, message, data?, count?}
type Result struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Count   *int64      `json:"count,omitempty"`
}

// PageData 分页数据结构
type PageData struct {
	List     interface{} `json:"list"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
}

var exposeDetail atomic.Bool

// SetExposeDetail 是否在内部错误的 message 中附带原始错误信息
func SetExposeDetail(expose bool) {
	exposeDetail.Store(expose)
}

// OK 成功结果
func OK(message string, data interface{}) *Result {
	return &Result{
		Code:    errorx.CodeSuccess,
		Message: message,
		Data:    data,
	}
}

// OKWithCount 成功结果，附带顶层 count
func OKWithCount(message string, count int64) *Result {
	return &Result{
		Code:    errorx.CodeSuccess,
		Message: message,
		Count:   &count,
	}
}

// FromError 将错误转换为失败结果
func FromError(err error) *Result {
	bizErr := errorx.FromError(err)
	message := bizErr.Message
	if bizErr.Detail != "" && bizErr.Kind() == errorx.KindInternal && exposeDetail.Load() {
		message = message + ": " + bizErr.Detail
	}
	return &Result{
		Code:    bizErr.Code,
		Message: message,
	}
}

// Write 输出结果，err 非空时输出失败结果
func Write(ctx context.Context, w http.ResponseWriter, result *Result, err error) {
	if err != nil {
		Fail(ctx, w, err)
		return
	}
	httpx.OkJsonCtx(ctx, w, result)
}

// Fail 失败响应（使用 BizError）
func Fail(ctx context.Context, w http.ResponseWriter, err error) {
	bizErr := errorx.FromError(err)
	if bizErr.Kind() == errorx.KindInternal {
		logx.WithContext(ctx).Errorf("请求失败: code=%d, message=%s, detail=%s", bizErr.Code, bizErr.Message, bizErr.Detail)
	}
	httpx.WriteJsonCtx(ctx, w, getHttpStatus(bizErr.Code), FromError(bizErr))
}

// FailWithCode 失败响应（指定错误码）
func FailWithCode(ctx context.Context, w http.ResponseWriter, code int) {
	Fail(ctx, w, errorx.New(code))
}

// getHttpStatus 根据业务错误码映射 HTTP 状态码
func getHttpStatus(code int) int {
	switch code {
	case errorx.CodeSuccess:
		return http.StatusOK
	case errorx.CodeInvalidParams, errorx.CodeUnknownAction:
		return http.StatusBadRequest
	case errorx.CodeTooManyRequests:
		return http.StatusTooManyRequests
	case errorx.CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	}
	if errorx.GetKind(code) == errorx.KindUnauthorized {
		return http.StatusUnauthorized
	}
	// 其他业务错误返回 200，但 code 非 0
	return http.StatusOK
}
