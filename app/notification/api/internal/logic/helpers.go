package logic

import (
	"context"

	"haojuleling/app/notification/api/internal/svc"
	"haojuleling/app/notification/model"
	"haojuleling/common/ctxdata"
	"haojuleling/common/errorx"

	"github.com/pkg/errors"
)

const (
	defaultPage = 1
	defaultSize = 10
	maxSize     = 50
	maxPage     = 100
)

func requireCaller(ctx context.Context) (string, error) {
	openid := ctxdata.GetOpenIDFromCtx(ctx)
	if openid == "" {
		return "", errorx.New(errorx.CodeLoginRequired)
	}
	return openid, nil
}

// loadOwned 查询通知并校验接收者是调用者
func loadOwned(ctx context.Context, svcCtx *svc.ServiceContext, id, openid string) (*model.Notification, error) {
	if id == "" {
		return nil, errorx.ErrInvalidParams("通知ID不能为空")
	}
	n, err := svcCtx.NotificationModel.FindByNotificationID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if n.ReceiverID != openid {
		return nil, errorx.ErrNotificationPermission()
	}
	return n, nil
}

// mapNotFound 通知不存在转换为业务错误
func mapNotFound(err error) error {
	if errors.Is(err, model.ErrNotificationNotFound) {
		return errorx.ErrNotificationNotFound()
	}
	return err
}

func normalizePage(page, size int) (int, int, error) {
	if page < 1 {
		page = defaultPage
	}
	if page > maxPage {
		return 0, 0, errorx.ErrInvalidParams("页码过大")
	}
	if size < 1 {
		size = defaultSize
	}
	if size > maxSize {
		size = maxSize
	}
	return page, size, nil
}
