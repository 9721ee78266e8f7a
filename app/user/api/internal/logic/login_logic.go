package logic

import (
	"context"
	"strings"
	"time"

	"haojuleling/app/user/api/internal/svc"
	"haojuleling/app/user/api/internal/types"
	"haojuleling/app/user/model"
	"haojuleling/common/database"
	"haojuleling/common/errorx"
	"haojuleling/common/response"
	"haojuleling/common/utils/jwt"

	"github.com/pkg/errors"
	"github.com/zeromicro/go-zero/core/logx"
)

type LoginLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// NewLoginLogic 小程序登录
func NewLoginLogic(ctx context.Context, svcCtx *svc.ServiceContext) *LoginLogic {
	return &LoginLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Login code 换 openid，首次登录建用户，签发 Token
func (l *LoginLogic) Login(req types.LoginRequest) (*response.Result, error) {
	code := strings.TrimSpace(req.Data.Code)
	if code == "" {
		return nil, errorx.ErrInvalidParams("登录凭证不能为空")
	}

	// 1. 换取 openid
	session, err := l.svcCtx.WeChat.Code2Session(l.ctx, code)
	if err != nil {
		l.Errorf("jscode2session 失败: %v", err)
		return nil, errorx.Wrap(errorx.CodeWechatLogin, err)
	}

	// 2. 创建或更新用户
	now := time.Now()
	user, err := l.svcCtx.UserModel.FindByOpenID(l.ctx, session.OpenID)
	switch {
	case errors.Is(err, model.ErrUserNotFound):
		user, err = l.createUser(session.OpenID, session.UnionID, req.Data.UserInfo, now)
	case err == nil:
		user, err = l.touchUser(user, session.UnionID, req.Data.UserInfo, now)
	}
	if err != nil {
		return nil, err
	}

	// 3. 签发 Token
	token, err := jwt.GenerateToken(user.OpenID, l.svcCtx.Config.Auth)
	if err != nil {
		return nil, errors.Wrap(err, "generate token")
	}

	l.Infof("用户登录成功: openid=%s", user.OpenID)
	return response.OK("登录成功", types.LoginResult{
		Token:    token.Token,
		ExpireAt: token.ExpireAt,
		UserInfo: user,
	}), nil
}

func (l *LoginLogic) createUser(openid, unionid string, in *types.ProfileInput, now time.Time) (*model.User, error) {
	user := &model.User{
		OpenID:        openid,
		UnionID:       unionid,
		NickName:      defaultNickName(openid),
		Language:      defaultLanguage,
		LastLoginTime: &now,
	}
	applyProfile(user, in)

	err := l.svcCtx.UserModel.Create(l.ctx, user)
	if err == nil {
		l.Infof("新用户注册: openid=%s", openid)
		return user, nil
	}
	if !database.IsDuplicateKeyErr(err) {
		return nil, err
	}

	// 并发首次登录，另一请求已建用户
	existing, err := l.svcCtx.UserModel.FindByOpenID(l.ctx, openid)
	if err != nil {
		return nil, err
	}
	return l.touchUser(existing, unionid, in, now)
}

// touchUser 更新登录时间与本次提交的资料
func (l *LoginLogic) touchUser(user *model.User, unionid string, in *types.ProfileInput, now time.Time) (*model.User, error) {
	fields := profileFields(in, true)
	fields["last_login_time"] = now
	if unionid != "" && user.UnionID == "" {
		fields["unionid"] = unionid
	}
	if err := l.svcCtx.UserModel.UpdateFields(l.ctx, user.OpenID, fields); err != nil {
		return nil, err
	}

	updated, err := l.svcCtx.UserModel.FindByOpenID(l.ctx, user.OpenID)
	if err != nil {
		return nil, err
	}
	if profileChanged(user, updated) {
		l.svcCtx.MsgProducer.PublishProfileUpdated(l.ctx, updated)
	}
	return updated, nil
}
