package mq

import (
	"context"
	"time"

	"haojuleling/app/activity/model"
	"haojuleling/common/messaging"
)

// Producer 活动服务消息发布器
// nil 安全：Producer 为 nil 时所有方法静默返回
type Producer struct {
	async *messaging.AsyncProducer
}

// NewProducer 创建消息发布器
func NewProducer(client *messaging.Client) *Producer {
	async := messaging.NewAsyncProducer(client)
	if async == nil {
		return nil
	}
	return &Producer{async: async}
}

// PublishMemberJoined 发布用户报名事件
func (p *Producer) PublishMemberJoined(ctx context.Context, activity *model.Activity, enrollment *model.Enrollment) {
	if p == nil {
		return
	}
	p.async.PublishAsync(ctx, messaging.TopicActivityMemberJoined, messaging.ActivityMemberJoinedEvent{
		ActivityID:    activity.ID,
		ActivityTitle: activity.Title,
		CreatorID:     activity.CreatorID,
		UserID:        enrollment.UserID,
		UserNickName:  enrollment.UserNickName,
		EnrollmentID:  enrollment.ID,
		JoinedAt:      enrollment.CreateTime,
	})
}

// PublishMemberLeft 发布用户取消报名事件
func (p *Producer) PublishMemberLeft(ctx context.Context, activity *model.Activity, enrollment *model.Enrollment, leftAt time.Time) {
	if p == nil {
		return
	}
	p.async.PublishAsync(ctx, messaging.TopicActivityMemberLeft, messaging.ActivityMemberLeftEvent{
		ActivityID:    activity.ID,
		ActivityTitle: activity.Title,
		CreatorID:     activity.CreatorID,
		UserID:        enrollment.UserID,
		UserNickName:  enrollment.UserNickName,
		EnrollmentID:  enrollment.ID,
		LeftAt:        leftAt,
	})
}
