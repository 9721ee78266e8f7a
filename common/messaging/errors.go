package messaging

import (
	"github.com/pkg/errors"
)

// ErrInvalidMessage 消息无法解析，重投也不会成功
var ErrInvalidMessage = errors.New("无效消息")

// classified 标记处理失败后是否重新投递
type classified struct {
	err   error
	retry bool
}

func (e *classified) Error() string { return e.err.Error() }

func (e *classified) Unwrap() error { return e.err }

// NewRetryableError 暂时性失败，交给重试中间件
func NewRetryableError(err error) error {
	return &classified{err: err, retry: true}
}

// NewNonRetryableError 永久性失败，直接确认消息
func NewNonRetryableError(err error) error {
	return &classified{err: err}
}

// IsRetryable 未标记的错误默认重试，ErrInvalidMessage 除外
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var c *classified
	if errors.As(err, &c) {
		return c.retry
	}
	return !errors.Is(err, ErrInvalidMessage)
}
