// 生成联调用的 JWT，默认读取活动服务配置中的 Auth
//
//	go run tools/generate_test_token.go -openid o_test
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"haojuleling/common/utils/jwt"

	"github.com/zeromicro/go-zero/core/conf"
)

var (
	configFile = flag.String("f", "app/activity/api/etc/activity-api.yaml", "读取 Auth 配置的文件")
	openid     = flag.String("openid", "o_test_user", "token 携带的 openid")
	expire     = flag.Int64("expire", 0, "有效期（秒），0 表示使用配置值")
)

type authOnly struct {
	Auth jwt.AuthConfig
}

func main() {
	flag.Parse()

	var c authOnly
	if err := conf.Load(*configFile, &c); err != nil {
		fmt.Fprintf(os.Stderr, "读取配置失败: %v\n", err)
		os.Exit(1)
	}
	if *expire > 0 {
		c.Auth.AccessExpire = *expire
	}

	result, err := jwt.GenerateToken(*openid, c.Auth)
	if err != nil {
		fmt.Fprintf(os.Stderr, "生成 token 失败: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("openid: %s\n", *openid)
	fmt.Printf("过期时间: %s\n", time.Unix(result.ExpireAt, 0).Format("2006-01-02 15:04:05"))
	fmt.Println("Authorization: Bearer " + result.Token)
}
