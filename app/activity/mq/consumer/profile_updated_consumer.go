package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"haojuleling/common/messaging"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/zeromicro/go-zero/core/logx"
)

const profileRefreshHandler = "activity-refresh-user-snapshot"

// creatorSnapshotStore 活动上的发起人快照
type creatorSnapshotStore interface {
	RefreshCreatorSnapshot(ctx context.Context, creatorID, nickName, avatarURL string) (int64, error)
}

// memberSnapshotStore 报名记录上的用户快照
type memberSnapshotStore interface {
	RefreshUserSnapshot(ctx context.Context, userID, nickName, avatarURL string) (int64, error)
}

// ProfileUpdatedConsumer 用户资料变更事件消费者
// 刷新该用户发起的活动、报名记录上的昵称头像
type ProfileUpdatedConsumer struct {
	activities creatorSnapshotStore
	enrolls    memberSnapshotStore
}

func NewProfileUpdatedConsumer(activities creatorSnapshotStore, enrolls memberSnapshotStore) *ProfileUpdatedConsumer {
	return &ProfileUpdatedConsumer{
		activities: activities,
		enrolls:    enrolls,
	}
}

func (c *ProfileUpdatedConsumer) Subscribe(msgClient *messaging.Client) {
	msgClient.Subscribe(messaging.TopicUserProfileUpdated, profileRefreshHandler, c.Handle)
	logx.Infof("已订阅 %s 事件", messaging.TopicUserProfileUpdated)
}

// Handle 处理单条资料变更消息
func (c *ProfileUpdatedConsumer) Handle(msg *message.Message) error {
	ctx := msg.Context()
	logger := logx.WithContext(ctx)

	var event messaging.UserProfileUpdatedEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		logger.Errorf("解析资料变更事件失败: %v", err)
		return messaging.NewNonRetryableError(fmt.Errorf("解析事件失败: %w", err))
	}
	if event.OpenID == "" {
		return messaging.NewNonRetryableError(messaging.ErrInvalidMessage)
	}

	activities, err := c.activities.RefreshCreatorSnapshot(ctx, event.OpenID, event.NickName, event.AvatarURL)
	if err != nil {
		logger.Errorf("刷新活动发起人快照失败: openid=%s, err=%v", event.OpenID, err)
		return messaging.NewRetryableError(err)
	}
	enrolls, err := c.enrolls.RefreshUserSnapshot(ctx, event.OpenID, event.NickName, event.AvatarURL)
	if err != nil {
		logger.Errorf("刷新报名用户快照失败: openid=%s, err=%v", event.OpenID, err)
		return messaging.NewRetryableError(err)
	}

	logger.Infof("用户快照已刷新: openid=%s, activities=%d, enrolls=%d", event.OpenID, activities, enrolls)
	return nil
}
