package logic

import (
	"context"

	"haojuleling/app/activity/api/internal/svc"
	"haojuleling/app/activity/api/internal/types"
	"haojuleling/app/activity/model"
	userModel "haojuleling/app/user/model"
	"haojuleling/common/ctxdata"
	"haojuleling/common/errorx"
	"haojuleling/common/response"

	"github.com/pkg/errors"
	"github.com/zeromicro/go-zero/core/logx"
)

type GetActivityDetailLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

// NewGetActivityDetailLogic 活动详情
func NewGetActivityDetailLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GetActivityDetailLogic {
	return &GetActivityDetailLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

// GetActivityDetail 活动详情，已删除的活动只有发起人和管理员可见
func (l *GetActivityDetailLogic) GetActivityDetail(req types.GetActivityDetailRequest) (*response.Result, error) {
	activityID, err := parseActivityID(req.ID)
	if err != nil {
		return nil, err
	}
	openid := ctxdata.GetOpenIDFromCtx(l.ctx)

	// 1. 活动基础信息走缓存
	activity, err := l.svcCtx.ActivityCache.GetByID(l.ctx, activityID)
	if err != nil {
		return nil, mapModelErr(err)
	}

	// 2. 软删除可见性
	if activity.IsDeleted {
		ok, err := canManage(l.ctx, l.svcCtx, activity, openid)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errorx.NewWithMessage(errorx.CodeActivityDeleted, "该活动已删除")
		}
	}

	detail := &types.ActivityDetail{Activity: *activity}

	// 3. 发起人信息
	creator, err := l.svcCtx.UserModel.FindByOpenID(l.ctx, activity.CreatorID)
	switch {
	case err == nil:
		detail.Creator = &types.CreatorDetail{
			ID:        creator.ID,
			OpenID:    creator.OpenID,
			NickName:  creator.NickName,
			AvatarURL: creator.AvatarURL,
			IsVip:     creator.IsVip,
		}
	case !errors.Is(err, userModel.ErrUserNotFound):
		return nil, err
	}

	// 4. 实时报名数、收藏数
	if detail.EnrollCount, err = l.svcCtx.EnrollmentModel.CountActive(l.ctx, activityID); err != nil {
		return nil, err
	}
	if detail.FavoriteCount, err = l.svcCtx.FavoriteModel.Count(l.ctx, activityID); err != nil {
		return nil, err
	}

	// 5. 调用者的报名、收藏状态
	if openid != "" {
		enrollment, err := l.svcCtx.EnrollmentModel.FindActive(l.ctx, activityID, openid)
		switch {
		case err == nil:
			detail.IsJoined = true
			detail.JoinInfo = enrollment
		case !errors.Is(err, model.ErrEnrollmentNotFound):
			return nil, err
		}

		if detail.IsFavorite, err = l.svcCtx.FavoriteModel.Exists(l.ctx, activityID, openid); err != nil {
			return nil, err
		}
	}

	return response.OK("获取成功", detail), nil
}
