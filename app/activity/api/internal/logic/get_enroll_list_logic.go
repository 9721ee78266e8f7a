package logic

import (
	"context"

	"haojuleling/app/activity/api/internal/svc"
	"haojuleling/app/activity/api/internal/types"
	"haojuleling/app/activity/model"
	"haojuleling/common/response"

	"github.com/zeromicro/go-zero/core/logx"
)

type GetEnrollListLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

// NewGetEnrollListLogic 活动报名列表
func NewGetEnrollListLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GetEnrollListLogic {
	return &GetEnrollListLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

// GetEnrollList 发起人或管理员查看报名记录
func (l *GetEnrollListLogic) GetEnrollList(req types.GetEnrollListRequest) (*response.Result, error) {
	openid, err := requireCaller(l.ctx)
	if err != nil {
		return nil, err
	}

	activity, err := loadManagedActivity(l.ctx, l.svcCtx, req.ID, openid, "无权查看报名列表")
	if err != nil {
		return nil, err
	}

	query := &model.EnrollListQuery{
		Pagination: toPagination(req.Params.PageParams),
		ActivityID: activity.ID,
		Status:     req.Params.Status,
	}
	list, total, err := l.svcCtx.EnrollmentModel.List(l.ctx, query)
	if err != nil {
		return nil, err
	}

	return response.OK("获取成功", response.PageData{
		List:     list,
		Total:    total,
		Page:     query.Page,
		PageSize: query.PageSize,
	}), nil
}
