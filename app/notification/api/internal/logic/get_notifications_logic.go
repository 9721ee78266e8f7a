package logic

import (
	"context"

	"haojuleling/app/notification/api/internal/svc"
	"haojuleling/app/notification/api/internal/types"
	"haojuleling/app/notification/model"
	"haojuleling/common/response"

	"github.com/zeromicro/go-zero/core/logx"
)

type GetNotificationsLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

// NewGetNotificationsLogic 通知列表、未读数
func NewGetNotificationsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GetNotificationsLogic {
	return &GetNotificationsLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

// GetNotifications 当前用户的通知，按创建时间倒序
func (l *GetNotificationsLogic) GetNotifications(req types.GetNotificationsRequest) (*response.Result, error) {
	openid, err := requireCaller(l.ctx)
	if err != nil {
		return nil, err
	}

	page, size, err := normalizePage(req.Data.Page, req.Data.Size)
	if err != nil {
		return nil, err
	}
	list, total, err := l.svcCtx.NotificationModel.List(l.ctx, model.ListQuery{
		ReceiverID: openid,
		Type:       req.Data.Type,
		Page:       page,
		Size:       size,
	})
	if err != nil {
		return nil, err
	}

	return response.OK("获取成功", types.ListResult{
		List:  list,
		Total: total,
		Page:  page,
		Size:  size,
	}), nil
}

// GetUnreadCount 未读数放在顶层 count
func (l *GetNotificationsLogic) GetUnreadCount(_ types.GetUnreadCountRequest) (*response.Result, error) {
	openid, err := requireCaller(l.ctx)
	if err != nil {
		return nil, err
	}

	count, err := l.svcCtx.UnreadCache.Get(l.ctx, openid)
	if err != nil {
		return nil, err
	}
	return response.OKWithCount("获取成功", count), nil
}
