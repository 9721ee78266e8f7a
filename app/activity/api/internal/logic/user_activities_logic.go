package logic

import (
	"context"

	"haojuleling/app/activity/api/internal/svc"
	"haojuleling/app/activity/api/internal/types"
	"haojuleling/app/activity/model"
	"haojuleling/common/errorx"
	"haojuleling/common/response"

	"github.com/zeromicro/go-zero/core/logx"
)

type UserActivitiesLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

// NewUserActivitiesLogic 我的收藏、我发起的、我参与的
func NewUserActivitiesLogic(ctx context.Context, svcCtx *svc.ServiceContext) *UserActivitiesLogic {
	return &UserActivitiesLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

// GetFavoriteList 调用者的收藏列表，附带活动当前信息
func (l *UserActivitiesLogic) GetFavoriteList(req types.GetFavoriteListRequest) (*response.Result, error) {
	openid, err := requireCaller(l.ctx)
	if err != nil {
		return nil, err
	}
	return l.favoriteList(openid, req.Params)
}

// GetUserActivities 按类型查询调用者相关的活动，默认查参与的
func (l *UserActivitiesLogic) GetUserActivities(req types.GetUserActivitiesRequest) (*response.Result, error) {
	openid, err := requireCaller(l.ctx)
	if err != nil {
		return nil, err
	}

	switch req.Params.Type {
	case types.UserActivityCreated:
		return l.createdList(openid, req.Params.PageParams)
	case types.UserActivityJoined, "":
		return l.joinedList(openid, req.Params.PageParams)
	case types.UserActivityFavorite:
		return l.favoriteList(openid, req.Params.PageParams)
	default:
		return nil, errorx.New(errorx.CodeActivityTypeInvalid)
	}
}

func (l *UserActivitiesLogic) createdList(openid string, p types.PageParams) (*response.Result, error) {
	// 发起人自己的列表不展示已删除活动
	query := &model.ListQuery{
		Pagination: toPagination(p),
		CreatorID:  openid,
	}
	result, err := l.svcCtx.ActivityModel.List(l.ctx, query)
	if err != nil {
		return nil, mapModelErr(err)
	}
	return response.OK("获取成功", response.PageData{
		List:     result.List,
		Total:    result.Total,
		Page:     result.Page,
		PageSize: result.PageSize,
	}), nil
}

func (l *UserActivitiesLogic) joinedList(openid string, p types.PageParams) (*response.Result, error) {
	query := &model.EnrollListQuery{
		Pagination: toPagination(p),
		UserID:     openid,
		ActiveOnly: true,
	}
	enrollments, total, err := l.svcCtx.EnrollmentModel.List(l.ctx, query)
	if err != nil {
		return nil, err
	}

	ids := make([]uint64, 0, len(enrollments))
	for _, e := range enrollments {
		ids = append(ids, e.ActivityID)
	}
	activities, err := l.activityMap(ids)
	if err != nil {
		return nil, err
	}

	items := make([]types.EnrollItem, len(enrollments))
	for i := range enrollments {
		items[i].Enrollment = enrollments[i]
		items[i].Activity = activities[enrollments[i].ActivityID]
	}

	return response.OK("获取成功", response.PageData{
		List:     items,
		Total:    total,
		Page:     query.Page,
		PageSize: query.PageSize,
	}), nil
}

func (l *UserActivitiesLogic) favoriteList(openid string, p types.PageParams) (*response.Result, error) {
	page := toPagination(p)
	favorites, total, err := l.svcCtx.FavoriteModel.ListByUser(l.ctx, openid, page)
	if err != nil {
		return nil, err
	}

	ids := make([]uint64, 0, len(favorites))
	for _, f := range favorites {
		ids = append(ids, f.ActivityID)
	}
	activities, err := l.activityMap(ids)
	if err != nil {
		return nil, err
	}

	// 活动已不存在时 activity 为 null，保留收藏快照
	items := make([]types.FavoriteItem, len(favorites))
	for i := range favorites {
		items[i].Favorite = favorites[i]
		items[i].Activity = activities[favorites[i].ActivityID]
	}

	return response.OK("获取成功", response.PageData{
		List:     items,
		Total:    total,
		Page:     page.Page,
		PageSize: page.PageSize,
	}), nil
}

// activityMap 批量查询活动，按ID索引
func (l *UserActivitiesLogic) activityMap(ids []uint64) (map[uint64]*model.Activity, error) {
	activities, err := l.svcCtx.ActivityModel.FindByIDs(l.ctx, ids)
	if err != nil {
		return nil, err
	}
	m := make(map[uint64]*model.Activity, len(activities))
	for i := range activities {
		m[activities[i].ID] = &activities[i]
	}
	return m, nil
}
