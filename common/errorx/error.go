package errorx

import (
	"fmt"

	"github.com/pkg/errors"
)

// BizError 业务错误，实现 error 接口
type BizError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	// Detail 原始错误信息，只写日志，是否下发由 response 层决定
	Detail string `json:"-"`
}

// Error 实现 error 接口
func (e *BizError) Error() string {
	return fmt.Sprintf("BizError: code=%d, message=%s", e.Code, e.Message)
}

// GetCode 获取错误码
func (e *BizError) GetCode() int {
	return e.Code
}

// GetMessage 获取错误消息
func (e *BizError) GetMessage() string {
	return e.Message
}

// Kind 获取错误大类
func (e *BizError) Kind() Kind {
	return GetKind(e.Code)
}

// New 创建业务错误（使用默认消息）
func New(code int) *BizError {
	return &BizError{
		Code:    code,
		Message: GetMessage(code),
	}
}

// NewWithMessage 创建业务错误（自定义消息）
func NewWithMessage(code int, message string) *BizError {
	return &BizError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装错误，保留原始错误作为 Detail
func Wrap(code int, err error) *BizError {
	bizErr := New(code)
	if err != nil {
		bizErr.Detail = err.Error()
	}
	return bizErr
}

// Is 判断是否为特定错误码
func Is(err error, code int) bool {
	if err == nil {
		return false
	}
	var bizErr *BizError
	if errors.As(err, &bizErr) {
		return bizErr.Code == code
	}
	return false
}

// KindOf 获取任意错误的大类，非业务错误视为内部错误
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var bizErr *BizError
	if errors.As(err, &bizErr) {
		return bizErr.Kind()
	}
	return KindInternal
}

// FromError 从 error 转换为 BizError
//  1. *BizError（含 errors.Wrap 包装）：直接返回
//  2. 其他错误：返回内部错误，原始信息放进 Detail
func FromError(err error) *BizError {
	if err == nil {
		return nil
	}

	if bizErr, ok := errors.Cause(err).(*BizError); ok {
		return bizErr
	}
	var bizErr *BizError
	if errors.As(err, &bizErr) {
		return bizErr
	}

	return &BizError{
		Code:    CodeInternalError,
		Message: GetMessage(CodeInternalError),
		Detail:  err.Error(),
	}
}

// WithOp 在分发边界把非业务错误转换为 "<操作>失败"，业务错误原样返回
func WithOp(op string, err error) error {
	if err == nil {
		return nil
	}
	bizErr := FromError(err)
	if bizErr.Code != CodeInternalError || bizErr.Message != GetMessage(CodeInternalError) {
		return bizErr
	}
	return &BizError{
		Code:    CodeInternalError,
		Message: op,
		Detail:  bizErr.Detail,
	}
}

// ============ 常用错误快捷方法 ============

// ErrInternalError 内部错误
func ErrInternalError() *BizError {
	return New(CodeInternalError)
}

// ErrInvalidParams 参数错误
func ErrInvalidParams(msg string) *BizError {
	if msg == "" {
		return New(CodeInvalidParams)
	}
	return NewWithMessage(CodeInvalidParams, msg)
}

// ErrInvalidToken Token无效
func ErrInvalidToken() *BizError {
	return New(CodeTokenInvalid)
}

// ErrForbidden 禁止访问
func ErrForbidden(msg string) *BizError {
	if msg == "" {
		return New(CodeForbidden)
	}
	return NewWithMessage(CodeForbidden, msg)
}

// ErrNotFound 资源不存在
func ErrNotFound() *BizError {
	return New(CodeNotFound)
}

// ErrTooManyRequests 请求过于频繁
func ErrTooManyRequests() *BizError {
	return New(CodeTooManyRequests)
}

// ErrServiceUnavailable 服务暂不可用
func ErrServiceUnavailable() *BizError {
	return New(CodeServiceUnavailable)
}

// ErrUnknownAction 未知操作
func ErrUnknownAction() *BizError {
	return New(CodeUnknownAction)
}

// ErrUserNotFound 用户不存在
func ErrUserNotFound() *BizError {
	return New(CodeUserNotFound)
}

// ============ 活动相关错误 ============

// ErrActivityNotFound 活动不存在
func ErrActivityNotFound() *BizError {
	return New(CodeActivityNotFound)
}

// ErrActivityNotApproved 活动未审核通过
func ErrActivityNotApproved() *BizError {
	return New(CodeActivityNotApproved)
}

// ErrActivityDeleted 活动已删除
func ErrActivityDeleted() *BizError {
	return New(CodeActivityDeleted)
}

// ErrActivityFull 活动已满员
func ErrActivityFull() *BizError {
	return New(CodeActivityFull)
}

// ErrAlreadyJoined 已参加
func ErrAlreadyJoined() *BizError {
	return New(CodeAlreadyJoined)
}

// ErrNotJoined 未参加
func ErrNotJoined() *BizError {
	return New(CodeNotJoined)
}

// ErrAlreadyFavorited 已收藏
func ErrAlreadyFavorited() *BizError {
	return New(CodeAlreadyFavorited)
}

// ErrNotFavorited 未收藏
func ErrNotFavorited() *BizError {
	return New(CodeNotFavorited)
}

// ErrActivityPermission 无权操作活动（消息随操作不同）
func ErrActivityPermission(msg string) *BizError {
	if msg == "" {
		return New(CodeActivityPermission)
	}
	return NewWithMessage(CodeActivityPermission, msg)
}

// ============ 通知相关错误 ============

// ErrNotificationNotFound 通知不存在
func ErrNotificationNotFound() *BizError {
	return New(CodeNotificationNotFound)
}

// ErrNotificationPermission 无权操作该通知
func ErrNotificationPermission() *BizError {
	return New(CodeNotificationPermission)
}
