// Package types 用户服务请求结构
package types

import (
	"encoding/json"
	"time"

	"haojuleling/app/user/model"
	"haojuleling/common/errorx"
)

// Envelope 请求信封 {action, data}
type Envelope struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data,omitempty"`
}

const (
	ActionLogin          = "login"
	ActionGetUserInfo    = "getUserInfo"
	ActionUpdateUserInfo = "updateUserInfo"
	ActionGetVipStatus   = "getVipStatus"
	ActionVerifyToken    = "verifyToken"
)

type Request interface {
	Action() string
	isRequest()
}

// ==================== 请求类型 ====================

type LoginRequest struct {
	Data LoginData
}

type GetUserInfoRequest struct{}

type UpdateUserInfoRequest struct {
	Data ProfileInput
}

type GetVipStatusRequest struct{}

type VerifyTokenRequest struct {
	Data TokenData
}

func (LoginRequest) Action() string          { return ActionLogin }
func (GetUserInfoRequest) Action() string    { return ActionGetUserInfo }
func (UpdateUserInfoRequest) Action() string { return ActionUpdateUserInfo }
func (GetVipStatusRequest) Action() string   { return ActionGetVipStatus }
func (VerifyTokenRequest) Action() string    { return ActionVerifyToken }

func (LoginRequest) isRequest()          {}
func (GetUserInfoRequest) isRequest()    {}
func (UpdateUserInfoRequest) isRequest() {}
func (GetVipStatusRequest) isRequest()   {}
func (VerifyTokenRequest) isRequest()    {}

// ==================== 参数结构 ====================

// ProfileInput 可修改的资料字段，nil 表示未提交
// openid、unionid、VIP、管理员标记等字段不在此列，提交了也会被忽略
type ProfileInput struct {
	NickName  *string `json:"nickName"`
	AvatarURL *string `json:"avatarUrl"`
	Gender    *int8   `json:"gender"`
	Country   *string `json:"country"`
	Province  *string `json:"province"`
	City      *string `json:"city"`
	Language  *string `json:"language"`
	Phone     *string `json:"phone"`
}

// LoginData 登录参数，userInfo 为微信授权返回的资料
type LoginData struct {
	Code     string        `json:"code"`
	UserInfo *ProfileInput `json:"userInfo"`
}

type TokenData struct {
	Token string `json:"token"`
}

// ==================== 响应结构 ====================

type LoginResult struct {
	Token    string      `json:"token"`
	ExpireAt int64       `json:"expireAt"`
	UserInfo *model.User `json:"userInfo"`
}

type VipStatus struct {
	IsVip         bool       `json:"isVip"`
	VipExpireTime *time.Time `json:"vipExpireTime"`
}

type VerifyResult struct {
	IsValid bool   `json:"isValid"`
	OpenID  string `json:"openid"`
}

// ==================== 解码 ====================

func DecodeRequest(body []byte) (Request, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, errorx.ErrInvalidParams("请求格式错误")
	}

	switch env.Action {
	case ActionLogin:
		var req LoginRequest
		if err := decodeInto(env.Data, &req.Data); err != nil {
			return nil, err
		}
		return req, nil
	case ActionGetUserInfo:
		return GetUserInfoRequest{}, nil
	case ActionUpdateUserInfo:
		var req UpdateUserInfoRequest
		if err := decodeInto(env.Data, &req.Data); err != nil {
			return nil, err
		}
		return req, nil
	case ActionGetVipStatus:
		return GetVipStatusRequest{}, nil
	case ActionVerifyToken:
		var req VerifyTokenRequest
		if err := decodeInto(env.Data, &req.Data); err != nil {
			return nil, err
		}
		return req, nil
	default:
		return nil, errorx.ErrUnknownAction()
	}
}

func decodeInto(raw json.RawMessage, dst interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return errorx.ErrInvalidParams("请求参数格式错误")
	}
	return nil
}
