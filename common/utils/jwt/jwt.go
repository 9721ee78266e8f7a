package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrInvalidConfig = errors.New("invalid auth config")
	ErrInvalidToken  = errors.New("invalid token")
)

// AuthConfig 签发配置
type AuthConfig struct {
	AccessSecret string
	AccessExpire int64 `json:",default=604800"`
}

// Claims 小程序登录态，只携带 openid
type Claims struct {
	OpenID string `json:"openid"`
	jwt.RegisteredClaims
}

type TokenResult struct {
	Token    string
	ExpireAt int64
}

// GenerateToken 签发 HS256 Token
func GenerateToken(openid string, cfg AuthConfig) (TokenResult, error) {
	return generateToken(openid, cfg, time.Now())
}

func generateToken(openid string, cfg AuthConfig, now time.Time) (TokenResult, error) {
	if openid == "" || cfg.AccessSecret == "" || cfg.AccessExpire <= 0 {
		return TokenResult{}, ErrInvalidConfig
	}

	expireAt := now.Add(time.Duration(cfg.AccessExpire) * time.Second)
	claims := Claims{
		OpenID: openid,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   openid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expireAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.AccessSecret))
	if err != nil {
		return TokenResult{}, err
	}

	return TokenResult{
		Token:    signed,
		ExpireAt: claims.ExpiresAt.Unix(),
	}, nil
}

// ParseToken 校验签名与有效期
func ParseToken(tokenString string, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.OpenID != "" {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// IsTokenExpired 判断解析错误是否为过期
func IsTokenExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}
