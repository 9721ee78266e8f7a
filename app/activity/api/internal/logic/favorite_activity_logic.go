package logic

import (
	"context"
	"time"

	"haojuleling/app/activity/api/internal/metrics"
	"haojuleling/app/activity/api/internal/svc"
	"haojuleling/app/activity/api/internal/types"
	"haojuleling/app/activity/model"
	"haojuleling/common/errorx"
	"haojuleling/common/response"

	"github.com/pkg/errors"
	"github.com/zeromicro/go-zero/core/logx"
	"gorm.io/gorm"
)

type FavoriteActivityLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

// NewFavoriteActivityLogic 收藏/取消收藏活动
func NewFavoriteActivityLogic(ctx context.Context, svcCtx *svc.ServiceContext) *FavoriteActivityLogic {
	return &FavoriteActivityLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

// FavoriteActivity 收藏活动，收藏数加一
func (l *FavoriteActivityLogic) FavoriteActivity(req types.FavoriteActivityRequest) (resp *response.Result, err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveWorkflow(types.ActionFavoriteActivity, resultLabel(err), start)
	}()

	openid, err := requireCaller(l.ctx)
	if err != nil {
		return nil, err
	}
	activityID, err := parseActivityID(req.ID)
	if err != nil {
		return nil, err
	}

	var favorite *model.Favorite
	err = l.svcCtx.DB.WithContext(l.ctx).Transaction(func(tx *gorm.DB) error {
		activityModel := l.svcCtx.ActivityModel.WithTx(tx)
		favoriteModel := l.svcCtx.FavoriteModel.WithTx(tx)

		activity, txErr := activityModel.FindByIDForUpdate(l.ctx, activityID)
		if txErr != nil {
			return mapModelErr(txErr)
		}

		exists, txErr := favoriteModel.Exists(l.ctx, activityID, openid)
		if txErr != nil {
			return txErr
		}
		if exists {
			return errorx.ErrAlreadyFavorited()
		}

		favorite = &model.Favorite{
			ActivityID:       activityID,
			UserID:           openid,
			ActivityTitle:    activity.Title,
			ActivityCoverURL: activity.CoverURL,
		}
		// 唯一索引兜底并发重复收藏
		if txErr = favoriteModel.Create(l.ctx, favorite); txErr != nil {
			return mapModelErr(txErr)
		}
		return mapModelErr(activityModel.IncrFavoriteCount(l.ctx, activityID))
	})
	if err != nil {
		return nil, err
	}

	l.svcCtx.ActivityCache.Invalidate(l.ctx, activityID)
	return response.OK("收藏成功", types.IDResp{ID: favorite.ID}), nil
}

// UnfavoriteActivity 取消收藏，收藏数减一（下限为 0）
func (l *FavoriteActivityLogic) UnfavoriteActivity(req types.UnfavoriteActivityRequest) (resp *response.Result, err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveWorkflow(types.ActionUnfavoriteActivity, resultLabel(err), start)
	}()

	openid, err := requireCaller(l.ctx)
	if err != nil {
		return nil, err
	}
	activityID, err := parseActivityID(req.ID)
	if err != nil {
		return nil, err
	}

	err = l.svcCtx.DB.WithContext(l.ctx).Transaction(func(tx *gorm.DB) error {
		activityModel := l.svcCtx.ActivityModel.WithTx(tx)

		if txErr := l.svcCtx.FavoriteModel.WithTx(tx).Delete(l.ctx, activityID, openid); txErr != nil {
			return mapModelErr(txErr)
		}

		clamped, txErr := activityModel.DecrFavoriteCount(l.ctx, activityID)
		if errors.Is(txErr, model.ErrActivityNotFound) {
			l.Errorw("取消收藏时活动不存在", logx.Field("activityId", activityID))
			return nil
		}
		if txErr != nil {
			return txErr
		}
		if clamped {
			metrics.CounterClamped.WithLabelValues("favorite_count").Inc()
			l.Errorw("收藏数已为 0，计数与收藏记录不一致", logx.Field("activityId", activityID))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.svcCtx.ActivityCache.Invalidate(l.ctx, activityID)
	return response.OK("取消收藏成功", nil), nil
}
