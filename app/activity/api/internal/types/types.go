// Package types 活动服务请求结构
//
// 客户端统一提交 {action, id, data, params}，DecodeRequest 按 action
// 解码成具体的请求类型，由 logic 层按类型分发
package types

import (
	"encoding/json"

	"haojuleling/common/errorx"
)

// Envelope 请求信封
type Envelope struct {
	Action string          `json:"action"`
	ID     FlexID          `json:"id,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
}

// 支持的 action
const (
	ActionGetActivityList    = "getActivityList"
	ActionGetActivityDetail  = "getActivityDetail"
	ActionCreateActivity     = "createActivity"
	ActionUpdateActivity     = "updateActivity"
	ActionDeleteActivity     = "deleteActivity"
	ActionJoinActivity       = "joinActivity"
	ActionCancelJoinActivity = "cancelJoinActivity"
	ActionGetEnrollList      = "getEnrollList"
	ActionFavoriteActivity   = "favoriteActivity"
	ActionUnfavoriteActivity = "unfavoriteActivity"
	ActionGetFavoriteList    = "getFavoriteList"
	ActionGetUserActivities  = "getUserActivities"
)

// Request 已解码的请求，只能是本包定义的类型
type Request interface {
	Action() string
	isRequest()
}

// ==================== 请求类型 ====================

type GetActivityListRequest struct {
	Params ListParams
}

type GetActivityDetailRequest struct {
	ID FlexID
}

type CreateActivityRequest struct {
	Data ActivityInput
}

type UpdateActivityRequest struct {
	ID   FlexID
	Data ActivityInput
}

type DeleteActivityRequest struct {
	ID FlexID
}

type JoinActivityRequest struct {
	ID   FlexID
	Data JoinForm
}

type CancelJoinActivityRequest struct {
	ID FlexID
}

type GetEnrollListRequest struct {
	ID     FlexID
	Params EnrollListParams
}

type FavoriteActivityRequest struct {
	ID FlexID
}

type UnfavoriteActivityRequest struct {
	ID FlexID
}

type GetFavoriteListRequest struct {
	Params PageParams
}

type GetUserActivitiesRequest struct {
	Params UserActivitiesParams
}

func (GetActivityListRequest) Action() string    { return ActionGetActivityList }
func (GetActivityDetailRequest) Action() string  { return ActionGetActivityDetail }
func (CreateActivityRequest) Action() string     { return ActionCreateActivity }
func (UpdateActivityRequest) Action() string     { return ActionUpdateActivity }
func (DeleteActivityRequest) Action() string     { return ActionDeleteActivity }
func (JoinActivityRequest) Action() string       { return ActionJoinActivity }
func (CancelJoinActivityRequest) Action() string { return ActionCancelJoinActivity }
func (GetEnrollListRequest) Action() string      { return ActionGetEnrollList }
func (FavoriteActivityRequest) Action() string   { return ActionFavoriteActivity }
func (UnfavoriteActivityRequest) Action() string { return ActionUnfavoriteActivity }
func (GetFavoriteListRequest) Action() string    { return ActionGetFavoriteList }
func (GetUserActivitiesRequest) Action() string  { return ActionGetUserActivities }

func (GetActivityListRequest) isRequest()    {}
func (GetActivityDetailRequest) isRequest()  {}
func (CreateActivityRequest) isRequest()     {}
func (UpdateActivityRequest) isRequest()     {}
func (DeleteActivityRequest) isRequest()     {}
func (JoinActivityRequest) isRequest()       {}
func (CancelJoinActivityRequest) isRequest() {}
func (GetEnrollListRequest) isRequest()      {}
func (FavoriteActivityRequest) isRequest()   {}
func (UnfavoriteActivityRequest) isRequest() {}
func (GetFavoriteListRequest) isRequest()    {}
func (GetUserActivitiesRequest) isRequest()  {}

// ==================== 参数结构 ====================

// PageParams 分页参数
type PageParams struct {
	Page     FlexInt `json:"page"`
	PageSize FlexInt `json:"pageSize"`
}

// ListParams 活动列表查询参数
type ListParams struct {
	PageParams
	IsHot             *FlexBool  `json:"isHot"`
	IsRecommend       *FlexBool  `json:"isRecommend"`
	IsCommunity       *FlexBool  `json:"isCommunity"`
	SearchKeyword     string     `json:"searchKeyword"`
	Type              string     `json:"type"`
	Status            string     `json:"status"`
	CategoryID        string     `json:"categoryId"`
	CreatorID         string     `json:"creatorId"`
	StartDate         *Timestamp `json:"startDate"`
	EndDate           *Timestamp `json:"endDate"`
	IncludeCreator    bool       `json:"includeCreator"`
	IncludeJoinStatus bool       `json:"includeJoinStatus"`
}

// EnrollListParams 报名列表参数
type EnrollListParams struct {
	PageParams
	Status string `json:"status"`
}

// 用户活动类型
const (
	UserActivityCreated  = "created"
	UserActivityJoined   = "joined"
	UserActivityFavorite = "favorite"
)

// UserActivitiesParams 我的活动参数，type 缺省为 joined
type UserActivitiesParams struct {
	PageParams
	Type string `json:"type"`
}

// Location 活动地点坐标
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ActivityInput 创建/更新活动的字段
// 指针字段为 nil 表示未提交，更新时不修改该列
type ActivityInput struct {
	Title           *string    `json:"title"`
	Type            *string    `json:"type"`
	Content         *string    `json:"content"`
	CoverURL        *string    `json:"coverUrl"`
	Images          *[]string  `json:"images"`
	CategoryID      *string    `json:"categoryId"`
	Location        *Location  `json:"location"`
	Address         *string    `json:"address"`
	StartTime       *Timestamp `json:"startTime"`
	EndTime         *Timestamp `json:"endTime"`
	MaxParticipants *int       `json:"maxParticipants"`
	Price           *float64   `json:"price"`
	IsCommunity     *bool      `json:"isCommunity"`

	// 仅管理员可修改
	Status       *string `json:"status"`
	StatusReason *string `json:"statusReason"`
	IsHot        *bool   `json:"isHot"`
	IsRecommend  *bool   `json:"isRecommend"`
}

// JoinForm 报名表单
type JoinForm struct {
	Phone  string `json:"phone"`
	Name   string `json:"name"`
	Age    FlexInt `json:"age"`
	IDCard string `json:"idCard"`
	Gender FlexInt `json:"gender"`
	Remark string `json:"remark"`
}

// ==================== 解码 ====================

// DecodeRequest 解码请求体，未知 action 返回 ErrUnknownAction
func DecodeRequest(body []byte) (Request, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, errorx.ErrInvalidParams("请求格式错误")
	}

	switch env.Action {
	case ActionGetActivityList:
		var req GetActivityListRequest
		if err := decodeInto(env.Params, &req.Params); err != nil {
			return nil, err
		}
		return req, nil
	case ActionGetActivityDetail:
		return GetActivityDetailRequest{ID: env.ID}, nil
	case ActionCreateActivity:
		var req CreateActivityRequest
		if err := decodeInto(env.Data, &req.Data); err != nil {
			return nil, err
		}
		return req, nil
	case ActionUpdateActivity:
		req := UpdateActivityRequest{ID: env.ID}
		if err := decodeInto(env.Data, &req.Data); err != nil {
			return nil, err
		}
		return req, nil
	case ActionDeleteActivity:
		return DeleteActivityRequest{ID: env.ID}, nil
	case ActionJoinActivity:
		req := JoinActivityRequest{ID: env.ID}
		if err := decodeInto(env.Data, &req.Data); err != nil {
			return nil, err
		}
		return req, nil
	case ActionCancelJoinActivity:
		return CancelJoinActivityRequest{ID: env.ID}, nil
	case ActionGetEnrollList:
		req := GetEnrollListRequest{ID: env.ID}
		if err := decodeInto(env.Params, &req.Params); err != nil {
			return nil, err
		}
		return req, nil
	case ActionFavoriteActivity:
		return FavoriteActivityRequest{ID: env.ID}, nil
	case ActionUnfavoriteActivity:
		return UnfavoriteActivityRequest{ID: env.ID}, nil
	case ActionGetFavoriteList:
		var req GetFavoriteListRequest
		if err := decodeInto(env.Params, &req.Params); err != nil {
			return nil, err
		}
		return req, nil
	case ActionGetUserActivities:
		var req GetUserActivitiesRequest
		if err := decodeInto(env.Params, &req.Params); err != nil {
			return nil, err
		}
		return req, nil
	default:
		return nil, errorx.ErrUnknownAction()
	}
}

// decodeInto 解码 data/params，缺省或 null 时保持零值
func decodeInto(raw json.RawMessage, dst interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return errorx.ErrInvalidParams("请求参数格式错误")
	}
	return nil
}
