package logic

import (
	"context"

	"haojuleling/app/activity/api/internal/svc"
	"haojuleling/app/activity/api/internal/types"
	"haojuleling/app/activity/model"
	userModel "haojuleling/app/user/model"
	"haojuleling/common/ctxdata"
	"haojuleling/common/response"

	"github.com/pkg/errors"
	"github.com/zeromicro/go-zero/core/logx"
	"golang.org/x/sync/errgroup"
)

const defaultListConcurrency = 8

type ListActivityLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

// NewListActivityLogic 活动列表
func NewListActivityLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ListActivityLogic {
	return &ListActivityLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

// ListActivities 按条件分页查询活动，可附带发起人信息和调用者的参与/收藏状态
func (l *ListActivityLogic) ListActivities(req types.GetActivityListRequest) (*response.Result, error) {
	p := req.Params
	openid := ctxdata.GetOpenIDFromCtx(l.ctx)

	// 1. 组装查询条件
	query := &model.ListQuery{
		Pagination:    toPagination(p.PageParams),
		IsHot:         p.IsHot.Ptr(),
		IsRecommend:   p.IsRecommend.Ptr(),
		IsCommunity:   p.IsCommunity.Ptr(),
		SearchKeyword: p.SearchKeyword,
		Type:          p.Type,
		Status:        p.Status,
		CategoryID:    p.CategoryID,
		CreatorID:     p.CreatorID,
		StartFrom:     p.StartDate.Ptr(),
		StartTo:       p.EndDate.Ptr(),
		ViewerID:      openid,
	}
	isAdmin, err := l.svcCtx.UserModel.IsAdmin(l.ctx, openid)
	if err != nil {
		return nil, err
	}
	query.IncludeDelete = isAdmin

	// 2. 查询
	result, err := l.svcCtx.ActivityModel.List(l.ctx, query)
	if err != nil {
		return nil, mapModelErr(err)
	}

	items := make([]types.ActivityItem, len(result.List))
	for i := range result.List {
		items[i].Activity = result.List[i]
	}

	// 3. 附加信息
	withJoinStatus := p.IncludeJoinStatus && openid != ""
	if p.IncludeCreator || withJoinStatus {
		if err := l.enrich(items, p.IncludeCreator, withJoinStatus, openid); err != nil {
			return nil, err
		}
	}

	return response.OK("获取成功", response.PageData{
		List:     items,
		Total:    result.Total,
		Page:     result.Page,
		PageSize: result.PageSize,
	}), nil
}

// enrich 每个活动单独查询，限制并发数，结果按下标写回
func (l *ListActivityLogic) enrich(items []types.ActivityItem, withCreator, withJoinStatus bool, openid string) error {
	limit := l.svcCtx.Config.ListConcurrency
	if limit <= 0 {
		limit = defaultListConcurrency
	}

	g, ctx := errgroup.WithContext(l.ctx)
	g.SetLimit(limit)

	for i := range items {
		item := &items[i]
		g.Go(func() error {
			if withCreator {
				creator, err := l.svcCtx.UserModel.FindByOpenID(ctx, item.CreatorID)
				switch {
				case err == nil:
					item.Creator = &types.CreatorInfo{
						NickName:  creator.NickName,
						AvatarURL: creator.AvatarURL,
						IsVip:     creator.IsVip,
					}
				case !errors.Is(err, userModel.ErrUserNotFound):
					return err
				}
			}

			if withJoinStatus {
				joined, err := l.svcCtx.EnrollmentModel.ExistsActive(ctx, item.ID, openid)
				if err != nil {
					return err
				}
				favorited, err := l.svcCtx.FavoriteModel.Exists(ctx, item.ID, openid)
				if err != nil {
					return err
				}
				item.IsJoined = &joined
				item.IsFavorite = &favorited
			}
			return nil
		})
	}
	return g.Wait()
}
