package logic

import (
	"context"

	"haojuleling/app/activity/api/internal/svc"
	"haojuleling/app/activity/api/internal/types"
	"haojuleling/app/activity/model"
	userModel "haojuleling/app/user/model"
	"haojuleling/common/ctxdata"
	"haojuleling/common/errorx"
	"haojuleling/common/utils/validate"

	"github.com/pkg/errors"
)

const (
	errMsgActivityIDEmpty   = "活动ID不能为空"
	errMsgActivityIDInvalid = "活动ID格式错误"
)

// requireCaller 获取调用者 openid，未登录返回错误
func requireCaller(ctx context.Context) (string, error) {
	openid := ctxdata.GetOpenIDFromCtx(ctx)
	if openid == "" {
		return "", errorx.New(errorx.CodeLoginRequired)
	}
	return openid, nil
}

// parseActivityID 解析活动ID
func parseActivityID(id types.FlexID) (uint64, error) {
	if id.Empty() {
		return 0, errorx.ErrInvalidParams(errMsgActivityIDEmpty)
	}
	activityID, err := id.Uint64()
	if err != nil {
		return 0, errorx.ErrInvalidParams(errMsgActivityIDInvalid)
	}
	return activityID, nil
}

// mapModelErr 把 model 层哨兵错误转换为业务错误
func mapModelErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, model.ErrActivityNotFound):
		return errorx.ErrActivityNotFound()
	case errors.Is(err, model.ErrEnrollmentDuplicate):
		return errorx.ErrAlreadyJoined()
	case errors.Is(err, model.ErrEnrollmentNotFound):
		return errorx.ErrNotJoined()
	case errors.Is(err, model.ErrFavoriteExists):
		return errorx.ErrAlreadyFavorited()
	case errors.Is(err, model.ErrFavoriteNotFound):
		return errorx.ErrNotFavorited()
	case errors.Is(err, userModel.ErrUserNotFound):
		return errorx.ErrUserNotFound()
	case errors.Is(err, model.ErrPageTooDeep):
		return errorx.ErrInvalidParams("页码过大")
	}
	return err
}

// canManage 发起人或管理员可以管理活动
func canManage(ctx context.Context, svcCtx *svc.ServiceContext, activity *model.Activity, openid string) (bool, error) {
	if activity.CreatorID == openid {
		return true, nil
	}
	return svcCtx.UserModel.IsAdmin(ctx, openid)
}

// loadManagedActivity 查询活动并校验管理权限，无权限时返回 denyMsg
func loadManagedActivity(ctx context.Context, svcCtx *svc.ServiceContext, id types.FlexID, openid, denyMsg string) (*model.Activity, error) {
	activityID, err := parseActivityID(id)
	if err != nil {
		return nil, err
	}
	activity, err := svcCtx.ActivityModel.FindByID(ctx, activityID)
	if err != nil {
		return nil, mapModelErr(err)
	}
	ok, err := canManage(ctx, svcCtx, activity, openid)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errorx.ErrActivityPermission(denyMsg)
	}
	return activity, nil
}

// toPagination 转换分页参数并规范化
func toPagination(p types.PageParams) model.Pagination {
	page := model.Pagination{Page: int(p.Page), PageSize: int(p.PageSize)}
	page.Normalize()
	return page
}

// breakerAcceptable 业务错误不计入熔断失败
func breakerAcceptable(err error) bool {
	return err == nil || errorx.KindOf(err) != errorx.KindInternal
}

// validateJoinForm 报名表单只校验已填写的字段
func validateJoinForm(form *types.JoinForm) error {
	if form.Phone != "" && !validate.IsValidPhone(form.Phone) {
		return errorx.ErrInvalidParams("手机号格式错误")
	}
	if form.IDCard != "" && !validate.IsValidIDCard(form.IDCard) {
		return errorx.ErrInvalidParams("身份证号格式错误")
	}
	if !validate.MaxLength(form.Name, 32) {
		return errorx.ErrInvalidParams("姓名过长")
	}
	if !validate.MaxLength(form.Remark, 200) {
		return errorx.ErrInvalidParams("备注过长")
	}
	if form.Age < 0 || form.Age > 150 {
		return errorx.ErrInvalidParams("年龄不合法")
	}
	if form.Gender < 0 || form.Gender > 2 {
		return errorx.ErrInvalidParams("性别不合法")
	}
	return nil
}
