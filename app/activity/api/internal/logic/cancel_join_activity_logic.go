package logic

import (
	"context"
	"time"

	"haojuleling/app/activity/api/internal/metrics"
	"haojuleling/app/activity/api/internal/svc"
	"haojuleling/app/activity/api/internal/types"
	"haojuleling/app/activity/model"
	"haojuleling/common/response"

	"github.com/pkg/errors"
	"github.com/zeromicro/go-zero/core/logx"
	"gorm.io/gorm"
)

type CancelJoinActivityLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

// NewCancelJoinActivityLogic 取消参加活动
func NewCancelJoinActivityLogic(ctx context.Context, svcCtx *svc.ServiceContext) *CancelJoinActivityLogic {
	return &CancelJoinActivityLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

// CancelJoinActivity 取消报名，报名数减一（下限为 0）
func (l *CancelJoinActivityLogic) CancelJoinActivity(req types.CancelJoinActivityRequest) (resp *response.Result, err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveWorkflow(types.ActionCancelJoinActivity, resultLabel(err), start)
	}()

	openid, err := requireCaller(l.ctx)
	if err != nil {
		return nil, err
	}
	activityID, err := parseActivityID(req.ID)
	if err != nil {
		return nil, err
	}

	var (
		activity   *model.Activity
		enrollment *model.Enrollment
	)
	cancelTime := time.Now()
	err = l.svcCtx.DB.WithContext(l.ctx).Transaction(func(tx *gorm.DB) error {
		activityModel := l.svcCtx.ActivityModel.WithTx(tx)
		enrollModel := l.svcCtx.EnrollmentModel.WithTx(tx)

		// 1. 必须有有效报名
		var txErr error
		enrollment, txErr = enrollModel.FindActive(l.ctx, activityID, openid)
		if txErr != nil {
			return mapModelErr(txErr)
		}

		// 2. 活动行锁，活动记录缺失时仍允许取消
		activity, txErr = activityModel.FindByIDForUpdate(l.ctx, activityID)
		if txErr != nil && !errors.Is(txErr, model.ErrActivityNotFound) {
			return txErr
		}

		// 3. 标记取消，释放有效报名唯一键
		if txErr = enrollModel.Cancel(l.ctx, enrollment.ID, cancelTime); txErr != nil {
			return mapModelErr(txErr)
		}

		// 4. 报名数减一
		if activity == nil {
			l.Errorw("取消报名时活动不存在", logx.Field("activityId", activityID), logx.Field("enrollId", enrollment.ID))
			return nil
		}
		clamped, txErr := activityModel.DecrEnrollCount(l.ctx, activityID)
		if txErr != nil {
			return txErr
		}
		if clamped {
			metrics.CounterClamped.WithLabelValues("enroll_count").Inc()
			l.Errorw("报名数已为 0，计数与报名记录不一致",
				logx.Field("activityId", activityID),
				logx.Field("enrollId", enrollment.ID),
			)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if activity == nil {
		activity = &model.Activity{ID: activityID}
	}
	l.svcCtx.ActivityCache.Invalidate(l.ctx, activityID)
	l.svcCtx.MsgProducer.PublishMemberLeft(l.ctx, activity, enrollment, cancelTime)

	l.Infow("取消参加活动成功", logx.Field("activityId", activityID), logx.Field("openid", openid))
	return response.OK("取消参加成功", nil), nil
}
