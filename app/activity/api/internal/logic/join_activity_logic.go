package logic

import (
	"context"
	"time"

	"haojuleling/app/activity/api/internal/metrics"
	"haojuleling/app/activity/api/internal/svc"
	"haojuleling/app/activity/api/internal/types"
	"haojuleling/app/activity/model"
	userModel "haojuleling/app/user/model"
	"haojuleling/common/errorx"
	"haojuleling/common/response"

	"github.com/pkg/errors"
	"github.com/zeromicro/go-zero/core/breaker"
	"github.com/zeromicro/go-zero/core/logx"
	"gorm.io/gorm"
)

type JoinActivityLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

// NewJoinActivityLogic 参加活动
func NewJoinActivityLogic(ctx context.Context, svcCtx *svc.ServiceContext) *JoinActivityLogic {
	return &JoinActivityLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

// JoinActivity 参加活动
//
// 校验顺序（先失败者返回）：
//  1. 活动ID合法，表单已填字段格式正确
//  2. 活动存在
//  3. 活动已审核通过
//  4. 活动未删除
//  5. 未满员
//  6. 未重复报名
//  7. 用户存在
//
// 2-7 与写报名记录、报名数+1 在同一事务内执行，事务持有活动行锁
func (l *JoinActivityLogic) JoinActivity(req types.JoinActivityRequest) (resp *response.Result, err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveWorkflow(types.ActionJoinActivity, resultLabel(err), start)
	}()

	openid, err := requireCaller(l.ctx)
	if err != nil {
		return nil, err
	}
	activityID, err := parseActivityID(req.ID)
	if err != nil {
		return nil, err
	}
	if err := validateJoinForm(&req.Data); err != nil {
		return nil, err
	}

	// ==================== 第一步：限流检查 ====================
	if !l.svcCtx.RegistrationLimiter.AllowCtx(l.ctx) {
		return nil, errorx.ErrTooManyRequests()
	}

	// ==================== 第二步：熔断保护 + 事务 ====================
	var (
		activity   *model.Activity
		enrollment *model.Enrollment
	)
	err = l.svcCtx.RegistrationBreaker.DoWithAcceptable(func() error {
		return l.svcCtx.DB.WithContext(l.ctx).Transaction(func(tx *gorm.DB) error {
			var txErr error
			activity, enrollment, txErr = l.join(tx, activityID, openid, &req.Data)
			return txErr
		})
	}, breakerAcceptable)
	if err != nil {
		if errors.Is(err, breaker.ErrServiceUnavailable) {
			l.Errorf("报名熔断: activityId=%d, openid=%s", activityID, openid)
			return nil, errorx.ErrServiceUnavailable()
		}
		return nil, err
	}

	// ==================== 第三步：提交后处理 ====================
	l.svcCtx.ActivityCache.Invalidate(l.ctx, activityID)
	l.svcCtx.MsgProducer.PublishMemberJoined(l.ctx, activity, enrollment)

	l.Infow("参加活动成功",
		logx.Field("activityId", activityID),
		logx.Field("openid", openid),
		logx.Field("enrollId", enrollment.ID),
	)
	return response.OK("参加成功", types.IDResp{ID: enrollment.ID}), nil
}

func (l *JoinActivityLogic) join(tx *gorm.DB, activityID uint64, openid string, form *types.JoinForm) (*model.Activity, *model.Enrollment, error) {
	activityModel := l.svcCtx.ActivityModel.WithTx(tx)
	enrollModel := l.svcCtx.EnrollmentModel.WithTx(tx)

	// 活动行锁，同一活动的报名/取消串行执行
	activity, err := activityModel.FindByIDForUpdate(l.ctx, activityID)
	if err != nil {
		return nil, nil, mapModelErr(err)
	}
	if !activity.IsJoinable() {
		if activity.Status != model.StatusApproved {
			return nil, nil, errorx.ErrActivityNotApproved()
		}
		return nil, nil, errorx.ErrActivityDeleted()
	}

	var active int64
	if activity.HasCapacityLimit() {
		active, err = enrollModel.CountActive(l.ctx, activityID)
		if err != nil {
			return nil, nil, err
		}
		if active >= int64(activity.MaxParticipants) {
			return nil, nil, errorx.ErrActivityFull()
		}
	}

	joined, err := enrollModel.ExistsActive(l.ctx, activityID, openid)
	if err != nil {
		return nil, nil, err
	}
	if joined {
		return nil, nil, errorx.ErrAlreadyJoined()
	}

	user, err := userModel.NewUserModel(tx).FindByOpenID(l.ctx, openid)
	if err != nil {
		return nil, nil, mapModelErr(err)
	}

	enrollment := &model.Enrollment{
		ActivityID:       activityID,
		UserID:           openid,
		ActivityTitle:    activity.Title,
		ActivityCoverURL: activity.CoverURL,
		UserNickName:     user.NickName,
		UserAvatarURL:    user.AvatarURL,
		UserPhone:        form.Phone,
		UserName:         form.Name,
		UserAge:          int(form.Age),
		UserIDCard:       form.IDCard,
		UserGender:       int8(form.Gender),
		UserRemark:       form.Remark,
	}
	// 唯一索引兜底并发重复报名
	if err := enrollModel.Create(l.ctx, enrollment); err != nil {
		return nil, nil, mapModelErr(err)
	}

	// 条件自增兜底并发超卖
	ok, err := activityModel.IncrEnrollCount(l.ctx, activityID)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		// 实际报名未满而冗余计数已满，等待校准任务修正
		metrics.CounterGuardRejected.WithLabelValues("enroll_count").Inc()
		l.Errorw("报名计数不一致",
			logx.Field("activityId", activityID),
			logx.Field("stored", activity.EnrollCount),
			logx.Field("actual", active),
			logx.Field("max", activity.MaxParticipants),
		)
		return nil, nil, errorx.ErrActivityFull()
	}
	return activity, enrollment, nil
}

// resultLabel 指标中的结果标签
func resultLabel(err error) string {
	if err == nil {
		return "success"
	}
	return string(errorx.KindOf(err))
}
