package logic

import (
	"context"
	"errors"
	"strings"

	"haojuleling/app/user/api/internal/types"
	"haojuleling/app/user/model"
	"haojuleling/common/ctxdata"
	"haojuleling/common/errorx"
	"haojuleling/common/utils/validate"
)

const (
	defaultNickNamePrefix = "用户"
	defaultLanguage       = "zh_CN"
)

func requireCaller(ctx context.Context) (string, error) {
	openid := ctxdata.GetOpenIDFromCtx(ctx)
	if openid == "" {
		return "", errorx.New(errorx.CodeLoginRequired)
	}
	return openid, nil
}

func mapModelErr(err error) error {
	if errors.Is(err, model.ErrUserNotFound) {
		return errorx.ErrUserNotFound()
	}
	return err
}

// defaultNickName 用户 + openid 后四位
func defaultNickName(openid string) string {
	r := []rune(openid)
	if len(r) > 4 {
		r = r[len(r)-4:]
	}
	return defaultNickNamePrefix + string(r)
}

// profileFields 资料字段转换为列更新，skipEmpty 时忽略空字符串
func profileFields(in *types.ProfileInput, skipEmpty bool) map[string]interface{} {
	fields := make(map[string]interface{})
	if in == nil {
		return fields
	}

	setString := func(column string, v *string) {
		if v == nil {
			return
		}
		s := strings.TrimSpace(*v)
		if skipEmpty && s == "" {
			return
		}
		fields[column] = s
	}

	setString("nick_name", in.NickName)
	setString("avatar_url", in.AvatarURL)
	setString("country", in.Country)
	setString("province", in.Province)
	setString("city", in.City)
	setString("language", in.Language)
	setString("phone", in.Phone)
	if in.Gender != nil {
		fields["gender"] = *in.Gender
	}
	return fields
}

// applyProfile 新用户使用提交的非空资料覆盖默认值
func applyProfile(u *model.User, in *types.ProfileInput) {
	if in == nil {
		return
	}
	setString := func(dst *string, v *string) {
		if v != nil && strings.TrimSpace(*v) != "" {
			*dst = strings.TrimSpace(*v)
		}
	}
	setString(&u.NickName, in.NickName)
	setString(&u.AvatarURL, in.AvatarURL)
	setString(&u.Country, in.Country)
	setString(&u.Province, in.Province)
	setString(&u.City, in.City)
	setString(&u.Language, in.Language)
	setString(&u.Phone, in.Phone)
	if in.Gender != nil {
		u.Gender = *in.Gender
	}
}

// profileChanged 昵称或头像是否变化
func profileChanged(before, after *model.User) bool {
	return before.NickName != after.NickName || before.AvatarURL != after.AvatarURL
}

// validateProfile 昵称不超过 64 字，手机号填写时需合法
func validateProfile(in *types.ProfileInput) error {
	if in.NickName != nil && !validate.MaxLength(*in.NickName, 64) {
		return errorx.ErrInvalidParams("昵称过长")
	}
	if in.Phone != nil && *in.Phone != "" && !validate.IsValidPhone(*in.Phone) {
		return errorx.ErrInvalidParams("手机号格式错误")
	}
	return nil
}
