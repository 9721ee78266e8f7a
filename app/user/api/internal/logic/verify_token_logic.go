package logic

import (
	"context"
	"strings"

	"haojuleling/app/user/api/internal/svc"
	"haojuleling/app/user/api/internal/types"
	"haojuleling/common/errorx"
	"haojuleling/common/response"
	"haojuleling/common/utils/jwt"

	"github.com/zeromicro/go-zero/core/logx"
)

type VerifyTokenLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewVerifyTokenLogic(ctx context.Context, svcCtx *svc.ServiceContext) *VerifyTokenLogic {
	return &VerifyTokenLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// VerifyToken 签名有效、未过期且用户存在
func (l *VerifyTokenLogic) VerifyToken(req types.VerifyTokenRequest) (*response.Result, error) {
	token := strings.TrimSpace(req.Data.Token)
	if token == "" {
		return nil, errorx.ErrInvalidParams("token不能为空")
	}

	claims, err := jwt.ParseToken(token, l.svcCtx.Config.Auth.AccessSecret)
	if err != nil {
		if jwt.IsTokenExpired(err) {
			return nil, errorx.New(errorx.CodeTokenExpired)
		}
		return nil, errorx.ErrInvalidToken()
	}

	exists, err := l.svcCtx.UserModel.ExistsByOpenID(l.ctx, claims.OpenID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errorx.ErrInvalidToken()
	}

	return response.OK("token有效", types.VerifyResult{
		IsValid: true,
		OpenID:  claims.OpenID,
	}), nil
}
