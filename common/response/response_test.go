package response

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"haojuleling/common/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	w := httptest.NewRecorder()
	Write(context.Background(), w, OK("参加成功", map[string]uint64{"id": 7}), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"code":0,"message":"参加成功","data":{"id":7}}`, w.Body.String())
}

func TestOKWithCountKeepsZero(t *testing.T) {
	w := httptest.NewRecorder()
	Write(context.Background(), w, OKWithCount("没有未读通知", 0), nil)

	assert.JSONEq(t, `{"code":0,"message":"没有未读通知","count":0}`, w.Body.String())
}

func TestFail(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"参数错误", errorx.ErrInvalidParams("活动ID不能为空"), http.StatusBadRequest, errorx.CodeInvalidParams},
		{"业务错误", errorx.ErrActivityFull(), http.StatusOK, errorx.CodeActivityFull},
		{"登录失效", errorx.New(errorx.CodeTokenExpired), http.StatusUnauthorized, errorx.CodeTokenExpired},
		{"熔断", errorx.ErrServiceUnavailable(), http.StatusServiceUnavailable, errorx.CodeServiceUnavailable},
		{"限流", errorx.ErrTooManyRequests(), http.StatusTooManyRequests, errorx.CodeTooManyRequests},
		{"内部错误", errors.New("boom"), http.StatusOK, errorx.CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			Fail(context.Background(), w, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			var got Result
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, tt.wantCode, got.Code)
		})
	}
}

func TestExposeDetail(t *testing.T) {
	err := errorx.WithOp("获取活动列表失败", errors.New("table missing"))

	SetExposeDetail(false)
	assert.Equal(t, "获取活动列表失败", FromError(err).Message)

	SetExposeDetail(true)
	defer SetExposeDetail(false)
	assert.Equal(t, "获取活动列表失败: table missing", FromError(err).Message)

	// 业务错误不附带细节
	assert.Equal(t, "活动已满员", FromError(errorx.ErrActivityFull()).Message)
}
