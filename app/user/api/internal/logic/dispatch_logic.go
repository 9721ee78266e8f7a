package logic

import (
	"context"

	"haojuleling/app/user/api/internal/svc"
	"haojuleling/app/user/api/internal/types"
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
	case types.LoginRequest:
		op = "登录失败"
		resp, err = NewLoginLogic(ctx, svcCtx).Login(r)
	case types.GetUserInfoRequest:
		op = "获取用户信息失败"
		resp, err = NewUserInfoLogic(ctx, svcCtx).GetUserInfo(r)
	case types.UpdateUserInfoRequest:
		op = "更新用户信息失败"
		resp, err = NewUserInfoLogic(ctx, svcCtx).UpdateUserInfo(r)
	case types.GetVipStatusRequest:
		op = "获取VIP状态失败"
		resp, err = NewUserInfoLogic(ctx, svcCtx).GetVipStatus(r)
	case types.VerifyTokenRequest:
		op = "验证token失败"
		resp, err = NewVerifyTokenLogic(ctx, svcCtx).VerifyToken(r)
	default:
		return nil, errorx.ErrUnknownAction()
	}

	if err != nil {
		return nil, errorx.WithOp(op, err)
	}
	return resp, nil
}
