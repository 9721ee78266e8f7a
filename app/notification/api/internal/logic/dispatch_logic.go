package logic

import (
	"context"

	"haojuleling/app/notification/api/internal/svc"
	"haojuleling/app/notification/api/internal/types"
	"haojuleling/common/errorx"
	"haojuleling/common/response"
)

// Dispatch 按请求类型分发，内部错误以 "<操作>失败" 返回
func Dispatch(ctx context.Context, svcCtx *svc.ServiceContext, req types.Request) (*response.Result, error) {
	var (
		resp *response.Result
		err  error
		op   string
	)

	switch r := req.(type) {
	case types.GetNotificationsRequest:
		op = "获取通知列表失败"
		resp, err = NewGetNotificationsLogic(ctx, svcCtx).GetNotifications(r)
	case types.GetUnreadCountRequest:
		op = "获取未读数量失败"
		resp, err = NewGetNotificationsLogic(ctx, svcCtx).GetUnreadCount(r)
	case types.MarkAsReadRequest:
		op = "标记已读失败"
		resp, err = NewReadNotificationLogic(ctx, svcCtx).MarkAsRead(r)
	case types.MarkAllAsReadRequest:
		op = "批量标记已读失败"
		resp, err = NewReadNotificationLogic(ctx, svcCtx).MarkAllAsRead(r)
	case types.SendNotificationRequest:
		op = "发送通知失败"
		resp, err = NewSendNotificationLogic(ctx, svcCtx).SendNotification(r)
	case types.DeleteNotificationRequest:
		op = "删除通知失败"
		resp, err = NewReadNotificationLogic(ctx, svcCtx).DeleteNotification(r)
	default:
		return nil, errorx.ErrUnknownAction()
	}

	if err != nil {
		return nil, errorx.WithOp(op, err)
	}
	return resp, nil
}
