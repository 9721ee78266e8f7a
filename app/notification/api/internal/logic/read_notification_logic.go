package logic

import (
	"context"
	"time"

	"haojuleling/app/notification/api/internal/svc"
	"haojuleling/app/notification/api/internal/types"
	"haojuleling/common/response"

	"github.com/zeromicro/go-zero/core/logx"
)

type ReadNotificationLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

// NewReadNotificationLogic 已读、删除
func NewReadNotificationLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ReadNotificationLogic {
	return &ReadNotificationLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

// MarkAsRead 标记单条已读，已读的通知保留首次阅读时间
func (l *ReadNotificationLogic) MarkAsRead(req types.MarkAsReadRequest) (*response.Result, error) {
	openid, err := requireCaller(l.ctx)
	if err != nil {
		return nil, err
	}
	n, err := loadOwned(l.ctx, l.svcCtx, req.Data.ID, openid)
	if err != nil {
		return nil, err
	}

	updated, err := l.svcCtx.NotificationModel.MarkRead(l.ctx, n.NotificationID, time.Now())
	if err != nil {
		return nil, err
	}
	if updated {
		l.svcCtx.UnreadCache.Invalidate(l.ctx, openid)
	}
	return response.OK("标记成功", nil), nil
}

// MarkAllAsRead 批量标记，count 为本次更新条数
func (l *ReadNotificationLogic) MarkAllAsRead(_ types.MarkAllAsReadRequest) (*response.Result, error) {
	openid, err := requireCaller(l.ctx)
	if err != nil {
		return nil, err
	}

	count, err := l.svcCtx.NotificationModel.MarkAllRead(l.ctx, openid, time.Now())
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return response.OKWithCount("没有未读通知", 0), nil
	}

	l.svcCtx.UnreadCache.Invalidate(l.ctx, openid)
	l.Infof("批量标记已读: openid=%s, count=%d", openid, count)
	return response.OKWithCount("标记成功", count), nil
}

// DeleteNotification 删除自己的通知
func (l *ReadNotificationLogic) DeleteNotification(req types.DeleteNotificationRequest) (*response.Result, error) {
	openid, err := requireCaller(l.ctx)
	if err != nil {
		return nil, err
	}
	n, err := loadOwned(l.ctx, l.svcCtx, req.Data.ID, openid)
	if err != nil {
		return nil, err
	}

	if err := l.svcCtx.NotificationModel.Delete(l.ctx, n.NotificationID); err != nil {
		return nil, mapNotFound(err)
	}
	if !n.IsRead {
		l.svcCtx.UnreadCache.Invalidate(l.ctx, openid)
	}
	return response.OK("删除成功", nil), nil
}
