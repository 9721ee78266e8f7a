package logic

import (
	"context"

	"haojuleling/app/activity/api/internal/svc"
	"haojuleling/app/activity/api/internal/types"
	"haojuleling/common/errorx"
	"haojuleling/common/response"
)

// Dispatch 按请求类型分发到具体业务逻辑，内部错误以 "<操作>失败" 返回
func Dispatch(ctx context.Context, svcCtx *svc.ServiceContext, req types.Request) (*response.Result, error) {
	var (
		resp *response.Result
		err  error
		op   string
	)

	switch r := req.(type) {
	case types.GetActivityListRequest:
		op = "获取活动列表失败"
		resp, err = NewListActivityLogic(ctx, svcCtx).ListActivities(r)
	case types.GetActivityDetailRequest:
		op = "获取活动详情失败"
		resp, err = NewGetActivityDetailLogic(ctx, svcCtx).GetActivityDetail(r)
	case types.CreateActivityRequest:
		op = "创建活动失败"
		resp, err = NewManageActivityLogic(ctx, svcCtx).CreateActivity(r)
	case types.UpdateActivityRequest:
		op = "更新活动失败"
		resp, err = NewManageActivityLogic(ctx, svcCtx).UpdateActivity(r)
	case types.DeleteActivityRequest:
		op = "删除活动失败"
		resp, err = NewManageActivityLogic(ctx, svcCtx).DeleteActivity(r)
	case types.JoinActivityRequest:
		op = "参加活动失败"
		resp, err = NewJoinActivityLogic(ctx, svcCtx).JoinActivity(r)
	case types.CancelJoinActivityRequest:
		op = "取消参加活动失败"
		resp, err = NewCancelJoinActivityLogic(ctx, svcCtx).CancelJoinActivity(r)
	case types.GetEnrollListRequest:
		op = "获取报名列表失败"
		resp, err = NewGetEnrollListLogic(ctx, svcCtx).GetEnrollList(r)
	case types.FavoriteActivityRequest:
		op = "收藏活动失败"
		resp, err = NewFavoriteActivityLogic(ctx, svcCtx).FavoriteActivity(r)
	case types.UnfavoriteActivityRequest:
		op = "取消收藏活动失败"
		resp, err = NewFavoriteActivityLogic(ctx, svcCtx).UnfavoriteActivity(r)
	case types.GetFavoriteListRequest:
		op = "获取收藏列表失败"
		resp, err = NewUserActivitiesLogic(ctx, svcCtx).GetFavoriteList(r)
	case types.GetUserActivitiesRequest:
		op = "获取用户活动失败"
		resp, err = NewUserActivitiesLogic(ctx, svcCtx).GetUserActivities(r)
	default:
		return nil, errorx.ErrUnknownAction()
	}

	if err != nil {
		return nil, errorx.WithOp(op, err)
	}
	return resp, nil
}
