package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"haojuleling/app/notification/model"
	"haojuleling/common/database"
	"haojuleling/common/messaging"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"
)

const (
	memberJoinedHandler = "notification-member-joined"
	memberLeftHandler   = "notification-member-left"

	targetTypeActivity = "activity"
)

// notificationIDSpace 事件通知ID命名空间，同一事件重复投递生成相同ID
var notificationIDSpace = uuid.MustParse("5b0e3c8e-6f7a-4d2b-9c1e-2a4f8d6b7c10")

type notificationCreator interface {
	Create(ctx context.Context, n *model.Notification) error
}

// unreadInvalidator 新通知写入后删除接收者未读数缓存
type unreadInvalidator interface {
	Invalidate(ctx context.Context, receiverID string)
}

// MemberConsumer 报名/取消报名事件消费者，给活动发起人发通知
type MemberConsumer struct {
	notifications notificationCreator
	unread        unreadInvalidator
}

func NewMemberConsumer(notifications notificationCreator, unread unreadInvalidator) *MemberConsumer {
	return &MemberConsumer{
		notifications: notifications,
		unread:        unread,
	}
}

func (c *MemberConsumer) Subscribe(msgClient *messaging.Client) {
	msgClient.Subscribe(messaging.TopicActivityMemberJoined, memberJoinedHandler, c.HandleJoined)
	msgClient.Subscribe(messaging.TopicActivityMemberLeft, memberLeftHandler, c.HandleLeft)
	logx.Infof("已订阅 %s, %s 事件", messaging.TopicActivityMemberJoined, messaging.TopicActivityMemberLeft)
}

// HandleJoined 有人报名了活动
func (c *MemberConsumer) HandleJoined(msg *message.Message) error {
	var event messaging.ActivityMemberJoinedEvent
	if err := decode(msg, &event); err != nil {
		return err
	}
	if event.ActivityID == 0 || event.CreatorID == "" || event.UserID == "" {
		return messaging.NewNonRetryableError(messaging.ErrInvalidMessage)
	}

	return c.notify(msg.Context(), &model.Notification{
		NotificationID: eventNotificationID("joined", event.EnrollmentID, event.JoinedAt),
		Title:          "新成员报名",
		Content:        fmt.Sprintf("%s 报名了你的活动「%s」", displayName(event.UserNickName), event.ActivityTitle),
		Type:           model.TypeActivityEnroll,
		ReceiverID:     event.CreatorID,
		SenderID:       event.UserID,
		TargetID:       strconv.FormatUint(event.ActivityID, 10),
		TargetType:     targetTypeActivity,
	})
}

// HandleLeft 有人取消了报名
func (c *MemberConsumer) HandleLeft(msg *message.Message) error {
	var event messaging.ActivityMemberLeftEvent
	if err := decode(msg, &event); err != nil {
		return err
	}
	if event.ActivityID == 0 || event.CreatorID == "" || event.UserID == "" {
		return messaging.NewNonRetryableError(messaging.ErrInvalidMessage)
	}

	return c.notify(msg.Context(), &model.Notification{
		NotificationID: eventNotificationID("left", event.EnrollmentID, event.LeftAt),
		Title:          "成员取消报名",
		Content:        fmt.Sprintf("%s 取消了活动「%s」的报名", displayName(event.UserNickName), event.ActivityTitle),
		Type:           model.TypeActivityCancel,
		ReceiverID:     event.CreatorID,
		SenderID:       event.UserID,
		TargetID:       strconv.FormatUint(event.ActivityID, 10),
		TargetType:     targetTypeActivity,
	})
}

func (c *MemberConsumer) notify(ctx context.Context, n *model.Notification) error {
	logger := logx.WithContext(ctx)

	// 发起人自己报名不通知
	if n.ReceiverID == n.SenderID {
		return nil
	}

	if err := c.notifications.Create(ctx, n); err != nil {
		if database.IsDuplicateKeyErr(err) {
			logger.Infof("通知已存在，跳过重复消息: id=%s", n.NotificationID)
			return nil
		}
		logger.Errorf("创建通知失败: receiver=%s, type=%s, err=%v", n.ReceiverID, n.Type, err)
		return messaging.NewRetryableError(err)
	}
	c.unread.Invalidate(ctx, n.ReceiverID)

	logger.Infof("通知已创建: id=%s, receiver=%s, type=%s", n.NotificationID, n.ReceiverID, n.Type)
	return nil
}

func decode(msg *message.Message, dst interface{}) error {
	if err := json.Unmarshal(msg.Payload, dst); err != nil {
		logx.WithContext(msg.Context()).Errorf("解析报名事件失败: %v", err)
		return messaging.NewNonRetryableError(fmt.Errorf("解析事件失败: %w", err))
	}
	return nil
}

func eventNotificationID(kind string, enrollmentID uint64, at time.Time) string {
	name := fmt.Sprintf("%s:%d:%d", kind, enrollmentID, at.UnixNano())
	return uuid.NewSHA1(notificationIDSpace, []byte(name)).String()
}

func displayName(nickName string) string {
	if nickName == "" {
		return "有用户"
	}
	return nickName
}
