package logic

import (
	"context"
	"time"

	"haojuleling/app/user/api/internal/svc"
	"haojuleling/app/user/api/internal/types"
	"haojuleling/common/errorx"
	"haojuleling/common/response"
	"haojuleling/common/utils/validate"

	"github.com/zeromicro/go-zero/core/logx"
)

type UserInfoLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// NewUserInfoLogic 用户资料、VIP 状态
func NewUserInfoLogic(ctx context.Context, svcCtx *svc.ServiceContext) *UserInfoLogic {
	return &UserInfoLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *UserInfoLogic) GetUserInfo(_ types.GetUserInfoRequest) (*response.Result, error) {
	openid, err := requireCaller(l.ctx)
	if err != nil {
		return nil, err
	}
	user, err := l.svcCtx.UserModel.FindByOpenID(l.ctx, openid)
	if err != nil {
		return nil, mapModelErr(err)
	}
	return response.OK("获取成功", user), nil
}

// UpdateUserInfo 只更新资料字段，昵称或头像变化时发布资料变更事件
func (l *UserInfoLogic) UpdateUserInfo(req types.UpdateUserInfoRequest) (*response.Result, error) {
	openid, err := requireCaller(l.ctx)
	if err != nil {
		return nil, err
	}

	if req.Data.NickName != nil && validate.IsBlank(*req.Data.NickName) {
		return nil, errorx.ErrInvalidParams("昵称不能为空")
	}
	if err := validateProfile(&req.Data); err != nil {
		return nil, err
	}
	fields := profileFields(&req.Data, false)
	if len(fields) == 0 {
		return nil, errorx.ErrInvalidParams("没有可更新的字段")
	}

	before, err := l.svcCtx.UserModel.FindByOpenID(l.ctx, openid)
	if err != nil {
		return nil, mapModelErr(err)
	}
	if err := l.svcCtx.UserModel.UpdateFields(l.ctx, openid, fields); err != nil {
		return nil, err
	}
	after, err := l.svcCtx.UserModel.FindByOpenID(l.ctx, openid)
	if err != nil {
		return nil, mapModelErr(err)
	}

	if profileChanged(before, after) {
		l.svcCtx.MsgProducer.PublishProfileUpdated(l.ctx, after)
	}
	return response.OK("更新成功", after), nil
}

// GetVipStatus 已过期的 VIP 在查询时落库取消
func (l *UserInfoLogic) GetVipStatus(_ types.GetVipStatusRequest) (*response.Result, error) {
	openid, err := requireCaller(l.ctx)
	if err != nil {
		return nil, err
	}
	user, err := l.svcCtx.UserModel.FindByOpenID(l.ctx, openid)
	if err != nil {
		return nil, mapModelErr(err)
	}

	if user.VipExpired(time.Now()) {
		if err := l.svcCtx.UserModel.ExpireVip(l.ctx, openid); err != nil {
			return nil, err
		}
		l.Infof("VIP 已过期: openid=%s, expireTime=%v", openid, user.VipExpireTime)
		user.IsVip = false
		user.VipExpireTime = nil
	}

	return response.OK("获取成功", types.VipStatus{
		IsVip:         user.IsVip,
		VipExpireTime: user.VipExpireTime,
	}), nil
}
