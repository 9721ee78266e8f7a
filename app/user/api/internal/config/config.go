package config

import (
	"haojuleling/app/user/api/internal/wechat"
	"haojuleling/common/database"
	"haojuleling/common/messaging"
	"haojuleling/common/utils/jwt"

	"github.com/zeromicro/go-zero/rest"
)

// Config User API 服务配置
type Config struct {
	rest.RestConf

	// JWT 认证配置，签发与校验共用
	Auth jwt.AuthConfig

	DataSource database.Config

	// 小程序 jscode2session
	WeChat wechat.Config

	// 资料变更事件，未配置 Redis 地址时不发布
	Messaging messaging.Config `json:",optional"`

	ExposeErrorDetail bool `json:",default=false"`
}
