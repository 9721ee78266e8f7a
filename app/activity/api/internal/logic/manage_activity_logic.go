package logic

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"haojuleling/app/activity/api/internal/svc"
	"haojuleling/app/activity/api/internal/types"
	"haojuleling/app/activity/model"
	"haojuleling/common/errorx"
	"haojuleling/common/response"

	"github.com/zeromicro/go-zero/core/logx"
	"gorm.io/datatypes"
)

const (
	errMsgTitleTypeRequired = "标题和类型不能为空"
	errMsgNegativeCapacity  = "人数上限不能为负数"
	errMsgNegativePrice     = "价格不能为负数"
	errMsgInvalidStatus     = "活动状态不合法"
)

// ManageActivityLogic 活动的创建、更新、删除
type ManageActivityLogic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
	logx.Logger
}

func NewManageActivityLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ManageActivityLogic {
	return &ManageActivityLogic{
		ctx:    ctx,
		svcCtx: svcCtx,
		Logger: logx.WithContext(ctx),
	}
}

// CreateActivity 创建活动，初始状态为待审核
func (l *ManageActivityLogic) CreateActivity(req types.CreateActivityRequest) (*response.Result, error) {
	openid, err := requireCaller(l.ctx)
	if err != nil {
		return nil, err
	}

	// 1. 发起人必须存在，昵称头像作为快照
	user, err := l.svcCtx.UserModel.FindByOpenID(l.ctx, openid)
	if err != nil {
		return nil, mapModelErr(err)
	}

	// 2. 参数校验
	in := req.Data
	if strValue(in.Title) == "" || strValue(in.Type) == "" {
		return nil, errorx.ErrInvalidParams(errMsgTitleTypeRequired)
	}
	if err := validateNumbers(&in); err != nil {
		return nil, err
	}

	images, err := marshalImages(in.Images)
	if err != nil {
		return nil, err
	}

	activity := &model.Activity{
		Title:            strings.TrimSpace(*in.Title),
		Type:             strings.TrimSpace(*in.Type),
		Content:          strValue(in.Content),
		CoverURL:         strValue(in.CoverURL),
		Images:           images,
		CategoryID:       strValue(in.CategoryID),
		Address:          strValue(in.Address),
		StartTime:        in.StartTime.Ptr(),
		EndTime:          in.EndTime.Ptr(),
		CreatorID:        openid,
		CreatorNickName:  user.NickName,
		CreatorAvatarURL: user.AvatarURL,
		Status:           model.StatusPending,
	}
	if in.Location != nil {
		lat, lng := in.Location.Latitude, in.Location.Longitude
		activity.Latitude, activity.Longitude = &lat, &lng
	}
	if in.MaxParticipants != nil {
		activity.MaxParticipants = *in.MaxParticipants
	}
	if in.Price != nil {
		activity.Price = *in.Price
	}
	if in.IsCommunity != nil {
		activity.IsCommunity = *in.IsCommunity
	}

	// 3. 写库并读回完整记录
	if err := l.svcCtx.ActivityModel.Create(l.ctx, activity); err != nil {
		return nil, err
	}
	created, err := l.svcCtx.ActivityModel.FindByID(l.ctx, activity.ID)
	if err != nil {
		return nil, mapModelErr(err)
	}

	l.Infow("创建活动成功", logx.Field("activityId", created.ID), logx.Field("openid", openid))
	return response.OK("创建成功", created), nil
}

// UpdateActivity 更新活动，发起人或管理员可操作
// 发起人信息、计数、创建时间不可修改；审核状态与推荐位只有管理员可以修改
func (l *ManageActivityLogic) UpdateActivity(req types.UpdateActivityRequest) (*response.Result, error) {
	openid, err := requireCaller(l.ctx)
	if err != nil {
		return nil, err
	}

	activity, err := loadManagedActivity(l.ctx, l.svcCtx, req.ID, openid, "无权更新该活动")
	if err != nil {
		return nil, err
	}
	isAdmin, err := l.svcCtx.UserModel.IsAdmin(l.ctx, openid)
	if err != nil {
		return nil, err
	}

	fields, err := buildUpdateFields(&req.Data, isAdmin)
	if err != nil {
		return nil, err
	}
	fields["update_time"] = time.Now()

	if err := l.svcCtx.ActivityModel.UpdateFields(l.ctx, activity.ID, fields); err != nil {
		return nil, err
	}
	l.svcCtx.ActivityCache.Invalidate(l.ctx, activity.ID)

	updated, err := l.svcCtx.ActivityModel.FindByID(l.ctx, activity.ID)
	if err != nil {
		return nil, mapModelErr(err)
	}
	return response.OK("更新成功", updated), nil
}

// DeleteActivity 软删除活动
func (l *ManageActivityLogic) DeleteActivity(req types.DeleteActivityRequest) (*response.Result, error) {
	openid, err := requireCaller(l.ctx)
	if err != nil {
		return nil, err
	}

	activity, err := loadManagedActivity(l.ctx, l.svcCtx, req.ID, openid, "无权删除该活动")
	if err != nil {
		return nil, err
	}
	if err := l.svcCtx.ActivityModel.SoftDelete(l.ctx, activity.ID); err != nil {
		return nil, mapModelErr(err)
	}
	l.svcCtx.ActivityCache.Invalidate(l.ctx, activity.ID)

	l.Infow("删除活动", logx.Field("activityId", activity.ID), logx.Field("openid", openid))
	return response.OK("删除成功", nil), nil
}

// buildUpdateFields 只收集已提交的可编辑字段
func buildUpdateFields(in *types.ActivityInput, isAdmin bool) (map[string]interface{}, error) {
	if err := validateNumbers(in); err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, errorx.ErrInvalidParams(errMsgTitleTypeRequired)
		}
		fields["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Type != nil {
		if strings.TrimSpace(*in.Type) == "" {
			return nil, errorx.ErrInvalidParams(errMsgTitleTypeRequired)
		}
		fields["type"] = strings.TrimSpace(*in.Type)
	}
	if in.Content != nil {
		fields["content"] = *in.Content
	}
	if in.CoverURL != nil {
		fields["cover_url"] = *in.CoverURL
	}
	if in.Images != nil {
		images, err := marshalImages(in.Images)
		if err != nil {
			return nil, err
		}
		fields["images"] = images
	}
	if in.CategoryID != nil {
		fields["category_id"] = *in.CategoryID
	}
	if in.Location != nil {
		fields["latitude"] = in.Location.Latitude
		fields["longitude"] = in.Location.Longitude
	}
	if in.Address != nil {
		fields["address"] = *in.Address
	}
	if in.StartTime != nil {
		fields["start_time"] = in.StartTime.Ptr()
	}
	if in.EndTime != nil {
		fields["end_time"] = in.EndTime.Ptr()
	}
	if in.MaxParticipants != nil {
		fields["max_participants"] = *in.MaxParticipants
	}
	if in.Price != nil {
		fields["price"] = *in.Price
	}
	if in.IsCommunity != nil {
		fields["is_community"] = *in.IsCommunity
	}

	if !isAdmin {
		return fields, nil
	}
	if in.Status != nil {
		if !model.ValidStatus(*in.Status) {
			return nil, errorx.ErrInvalidParams(errMsgInvalidStatus)
		}
		fields["status"] = *in.Status
	}
	if in.StatusReason != nil {
		fields["status_reason"] = *in.StatusReason
	}
	if in.IsHot != nil {
		fields["is_hot"] = *in.IsHot
	}
	if in.IsRecommend != nil {
		fields["is_recommend"] = *in.IsRecommend
	}
	return fields, nil
}

func validateNumbers(in *types.ActivityInput) error {
	if in.MaxParticipants != nil && *in.MaxParticipants < 0 {
		return errorx.ErrInvalidParams(errMsgNegativeCapacity)
	}
	if in.Price != nil && *in.Price < 0 {
		return errorx.ErrInvalidParams(errMsgNegativePrice)
	}
	return nil
}

// marshalImages 图片列表序列化，未传时为空数组
func marshalImages(images *[]string) (datatypes.JSON, error) {
	list := []string{}
	if images != nil && *images != nil {
		list = *images
	}
	data, err := json.Marshal(list)
	if err != nil {
		return nil, errorx.ErrInvalidParams("图片列表格式错误")
	}
	return datatypes.JSON(data), nil
}

func strValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
