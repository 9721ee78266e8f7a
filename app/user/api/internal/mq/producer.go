package mq

import (
	"context"
	"time"

	"haojuleling/app/user/model"
	"haojuleling/common/messaging"
)

// Producer 用户服务消息发布器，nil 安全
type Producer struct {
	async *messaging.AsyncProducer
}

func NewProducer(client *messaging.Client) *Producer {
	async := messaging.NewAsyncProducer(client)
	if async == nil {
		return nil
	}
	return &Producer{async: async}
}

// PublishProfileUpdated 昵称或头像变更后发布，活动服务据此刷新快照
func (p *Producer) PublishProfileUpdated(ctx context.Context, user *model.User) {
	if p == nil {
		return
	}
	p.async.PublishAsync(ctx, messaging.TopicUserProfileUpdated, messaging.UserProfileUpdatedEvent{
		OpenID:    user.OpenID,
		NickName:  user.NickName,
		AvatarURL: user.AvatarURL,
		UpdatedAt: time.Now(),
	})
}
