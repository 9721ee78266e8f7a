package logic

import (
	"context"
	"strings"

	"haojuleling/app/notification/api/internal/svc"
	"haojuleling/app/notification/api/internal/types"
	"haojuleling/app/notification/model"
	"haojuleling/common/errorx"
	"haojuleling/common/response"

	"github.com/zeromicro/go-zero/core/logx"
)

type SendNotificationLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

func NewSendNotificationLogic(ctx context.Context, svcCtx *svc.ServiceContext) *SendNotificationLogic {
	return &SendNotificationLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

// SendNotification 发送站内通知
func (l *SendNotificationLogic) SendNotification(req types.SendNotificationRequest) (*response.Result, error) {
	if _, err := requireCaller(l.ctx); err != nil {
		return nil, err
	}

	in := req.Data
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Content) == "" ||
		in.Type == "" || in.ReceiverID == "" {
		return nil, errorx.ErrInvalidParams("参数不完整")
	}

	// 1. 校验接收者
	exists, err := l.svcCtx.UserModel.ExistsByOpenID(l.ctx, in.ReceiverID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errorx.New(errorx.CodeReceiverNotFound)
	}

	// 2. 校验发送者（可选）
	if in.SenderID != "" {
		exists, err = l.svcCtx.UserModel.ExistsByOpenID(l.ctx, in.SenderID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, errorx.New(errorx.CodeSenderNotFound)
		}
	}

	// 3. 写入通知
	n := &model.Notification{
		Title:      in.Title,
		Content:    in.Content,
		Type:       in.Type,
		ReceiverID: in.ReceiverID,
		SenderID:   in.SenderID,
		TargetID:   in.TargetID,
		TargetType: in.TargetType,
	}
	if err := l.svcCtx.NotificationModel.Create(l.ctx, n); err != nil {
		return nil, err
	}
	l.svcCtx.UnreadCache.Invalidate(l.ctx, in.ReceiverID)

	l.Infof("通知已发送: id=%s, receiver=%s, type=%s", n.NotificationID, n.ReceiverID, n.Type)
	return response.OK("发送成功", types.SendResult{ID: n.NotificationID}), nil
}
