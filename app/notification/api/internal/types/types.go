// Package types 通知服务请求结构
package types

import (
	"encoding/json"

	"haojuleling/common/errorx"
)

// Envelope 请求信封 {action, data}
type Envelope struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data,omitempty"`
}

const (
	ActionGetNotifications   = "getNotifications"
	ActionGetUnreadCount     = "getUnreadCount"
	ActionMarkAsRead         = "markAsRead"
	ActionMarkAllAsRead      = "markAllAsRead"
	ActionSendNotification   = "sendNotification"
	ActionDeleteNotification = "deleteNotification"
)

// Request 已解码的请求
type Request interface {
	Action() string
	isRequest()
}

// ==================== 请求类型 ====================

type GetNotificationsRequest struct {
	Data ListData
}

type GetUnreadCountRequest struct{}

type MarkAsReadRequest struct {
	Data IDData
}

type MarkAllAsReadRequest struct{}

type SendNotificationRequest struct {
	Data SendData
}

type DeleteNotificationRequest struct {
	Data IDData
}

func (GetNotificationsRequest) Action() string   { return ActionGetNotifications }
func (GetUnreadCountRequest) Action() string     { return ActionGetUnreadCount }
func (MarkAsReadRequest) Action() string         { return ActionMarkAsRead }
func (MarkAllAsReadRequest) Action() string      { return ActionMarkAllAsRead }
func (SendNotificationRequest) Action() string   { return ActionSendNotification }
func (DeleteNotificationRequest) Action() string { return ActionDeleteNotification }

func (GetNotificationsRequest) isRequest()   {}
func (GetUnreadCountRequest) isRequest()     {}
func (MarkAsReadRequest) isRequest()         {}
func (MarkAllAsReadRequest) isRequest()      {}
func (SendNotificationRequest) isRequest()   {}
func (DeleteNotificationRequest) isRequest() {}

// ==================== 参数结构 ====================

// ListData 通知列表参数，page 缺省 1，size 缺省 10
type ListData struct {
	Page int    `json:"page"`
	Size int    `json:"size"`
	Type string `json:"type"`
}

type IDData struct {
	ID string `json:"id"`
}

// SendData 发送通知参数，title/content/type/receiverId 必填
type SendData struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	Type       string `json:"type"`
	ReceiverID string `json:"receiverId"`
	SenderID   string `json:"senderId"`
	TargetID   string `json:"targetId"`
	TargetType string `json:"targetType"`
}

// ==================== 响应结构 ====================

// ListResult 通知列表
type ListResult struct {
	List  interface{} `json:"list"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Size  int         `json:"size"`
}

// SendResult 发送结果
type SendResult struct {
	ID string `json:"id"`
}

// ==================== 解码 ====================

// DecodeRequest 解码请求体，未知 action 返回 ErrUnknownAction
func DecodeRequest(body []byte) (Request, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, errorx.ErrInvalidParams("请求格式错误")
	}

	switch env.Action {
	case ActionGetNotifications:
		var req GetNotificationsRequest
		if err := decodeInto(env.Data, &req.Data); err != nil {
			return nil, err
		}
		return req, nil
	case ActionGetUnreadCount:
		return GetUnreadCountRequest{}, nil
	case ActionMarkAsRead:
		var req MarkAsReadRequest
		if err := decodeInto(env.Data, &req.Data); err != nil {
			return nil, err
		}
		return req, nil
	case ActionMarkAllAsRead:
		return MarkAllAsReadRequest{}, nil
	case ActionSendNotification:
		var req SendNotificationRequest
		if err := decodeInto(env.Data, &req.Data); err != nil {
			return nil, err
		}
		return req, nil
	case ActionDeleteNotification:
		var req DeleteNotificationRequest
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
