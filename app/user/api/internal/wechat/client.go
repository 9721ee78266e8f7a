// Package wechat 小程序登录凭证校验
package wechat

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/zeromicro/go-zero/core/breaker"
)

const code2SessionPath = "/sns/jscode2session"

// ErrInvalidCode 微信返回的业务错误（code 无效、已使用等），不计入熔断
var ErrInvalidCode = errors.New("wechat: invalid code")

// Config 小程序配置
type Config struct {
	AppID     string `json:",optional"`
	AppSecret string `json:",optional"`
	BaseURL   string `json:",default=https://api.weixin.qq.com"`
	Timeout   int    `json:",default=5"` // 秒
}

// Session jscode2session 结果
type Session struct {
	OpenID     string `json:"openid"`
	UnionID    string `json:"unionid"`
	SessionKey string `json:"session_key"`
}

type code2SessionResp struct {
	Session
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

// Client 微信接口客户端
type Client struct {
	cfg  Config
	http *resty.Client
	brk  breaker.Breaker
}

func NewClient(cfg Config) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Client{
		cfg: cfg,
		http: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(timeout),
		brk: breaker.NewBreaker(breaker.WithName("wechat-code2session")),
	}
}

// Code2Session 用登录 code 换取 openid / unionid
func (c *Client) Code2Session(ctx context.Context, code string) (*Session, error) {
	var session *Session
	err := c.brk.DoWithAcceptable(func() error {
		var err error
		session, err = c.code2Session(ctx, code)
		return err
	}, func(err error) bool {
		return err == nil || errors.Is(err, ErrInvalidCode)
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (c *Client) code2Session(ctx context.Context, code string) (*Session, error) {
	var result code2SessionResp
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"appid":      c.cfg.AppID,
			"secret":     c.cfg.AppSecret,
			"js_code":    code,
			"grant_type": "authorization_code",
		}).
		SetResult(&result).
		ForceContentType("application/json").
		Get(code2SessionPath)
	if err != nil {
		return nil, errors.Wrap(err, "request jscode2session")
	}
	if resp.IsError() {
		return nil, errors.Errorf("jscode2session http status %d", resp.StatusCode())
	}
	if result.ErrCode != 0 {
		return nil, errors.Wrap(ErrInvalidCode, fmt.Sprintf("errcode=%d, errmsg=%s", result.ErrCode, result.ErrMsg))
	}
	if result.OpenID == "" {
		return nil, errors.Wrap(ErrInvalidCode, "empty openid")
	}
	return &result.Session, nil
}
