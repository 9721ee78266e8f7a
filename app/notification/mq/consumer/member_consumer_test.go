package consumer

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"haojuleling/app/notification/cache"
	"haojuleling/app/notification/model"
	commonCache "haojuleling/common/cache"
	"haojuleling/common/messaging"
	"haojuleling/common/testkit"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConsumer(t *testing.T) (*MemberConsumer, model.INotificationModel, *miniredis.Miniredis) {
	t.Helper()
	db := testkit.NewDB(t, &model.Notification{})
	rds, mr := testkit.NewRedis(t)
	notifications := model.NewNotificationModel(db)
	return NewMemberConsumer(notifications, cache.NewUnreadCache(rds, notifications)), notifications, mr
}

func eventMessage(t *testing.T, event interface{}) *message.Message {
	t.Helper()
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	return message.NewMessage(watermill.NewUUID(), payload)
}

func listFor(t *testing.T, notifications model.INotificationModel, receiver string) []model.Notification {
	t.Helper()
	list, _, err := notifications.List(context.Background(), model.ListQuery{ReceiverID: receiver, Page: 1, Size: 10})
	require.NoError(t, err)
	return list
}

func TestMemberJoinedCreatesNotification(t *testing.T) {
	c, notifications, mr := newConsumer(t)
	require.NoError(t, mr.Set(commonCache.UnreadCountKey("creator"), "0"))

	event := messaging.ActivityMemberJoinedEvent{
		ActivityID:    7,
		ActivityTitle: "周末徒步",
		CreatorID:     "creator",
		UserID:        "u1",
		UserNickName:  "小明",
		EnrollmentID:  11,
		JoinedAt:      time.Now(),
	}
	require.NoError(t, c.HandleJoined(eventMessage(t, event)))

	list := listFor(t, notifications, "creator")
	require.Len(t, list, 1)
	assert.Equal(t, model.TypeActivityEnroll, list[0].Type)
	assert.Equal(t, "u1", list[0].SenderID)
	assert.Equal(t, "7", list[0].TargetID)
	assert.Equal(t, targetTypeActivity, list[0].TargetType)
	assert.Contains(t, list[0].Content, "小明")
	assert.Contains(t, list[0].Content, "周末徒步")
	assert.False(t, mr.Exists(commonCache.UnreadCountKey("creator")))

	// 重复投递不重复创建
	require.NoError(t, c.HandleJoined(eventMessage(t, event)))
	assert.Len(t, listFor(t, notifications, "creator"), 1)
}

func TestMemberLeftCreatesNotification(t *testing.T) {
	c, notifications, _ := newConsumer(t)

	require.NoError(t, c.HandleLeft(eventMessage(t, messaging.ActivityMemberLeftEvent{
		ActivityID:    7,
		ActivityTitle: "周末徒步",
		CreatorID:     "creator",
		UserID:        "u1",
		EnrollmentID:  11,
		LeftAt:        time.Now(),
	})))

	list := listFor(t, notifications, "creator")
	require.Len(t, list, 1)
	assert.Equal(t, model.TypeActivityCancel, list[0].Type)
	assert.Contains(t, list[0].Content, "有用户")
}

func TestMemberEventSkipsCreatorSelf(t *testing.T) {
	c, notifications, _ := newConsumer(t)

	require.NoError(t, c.HandleJoined(eventMessage(t, messaging.ActivityMemberJoinedEvent{
		ActivityID: 7, CreatorID: "creator", UserID: "creator", EnrollmentID: 1, JoinedAt: time.Now(),
	})))
	assert.Empty(t, listFor(t, notifications, "creator"))
}

func TestMemberEventDropsBadPayload(t *testing.T) {
	c, _, _ := newConsumer(t)

	err := c.HandleJoined(message.NewMessage(watermill.NewUUID(), []byte("{")))
	require.Error(t, err)
	assert.False(t, messaging.IsRetryable(err))

	err = c.HandleLeft(eventMessage(t, messaging.ActivityMemberLeftEvent{ActivityID: 7}))
	require.Error(t, err)
	assert.False(t, messaging.IsRetryable(err))
}

func TestEventNotificationIDDistinguishesRejoin(t *testing.T) {
	at := time.Now()
	assert.Equal(t, eventNotificationID("joined", 1, at), eventNotificationID("joined", 1, at))
	assert.NotEqual(t, eventNotificationID("joined", 1, at), eventNotificationID("joined", 1, at.Add(time.Second)))
	assert.NotEqual(t, eventNotificationID("joined", 1, at), eventNotificationID("left", 1, at))
}

func TestMemberJoinedThroughRouter(t *testing.T) {
	ctx := context.Background()
	c, notifications, _ := newConsumer(t)

	pubSub := gochannel.NewGoChannel(gochannel.Config{Persistent: true}, watermill.NopLogger{})
	client, err := messaging.NewClientWithPubSub(messaging.Config{ServiceName: "notification-mq-test"}, pubSub, pubSub)
	require.NoError(t, err)
	c.Subscribe(client)

	runCtx, cancel := context.WithCancel(ctx)
	go func() { _ = client.Run(runCtx) }()
	t.Cleanup(func() {
		cancel()
		_ = client.Close()
	})
	select {
	case <-client.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("router did not start")
	}

	payload, err := json.Marshal(messaging.ActivityMemberJoinedEvent{
		ActivityID: 3, ActivityTitle: "读书会", CreatorID: "creator", UserID: "u9", EnrollmentID: 5, JoinedAt: time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, client.Publish(ctx, messaging.TopicActivityMemberJoined, payload))

	assert.Eventually(t, func() bool {
		list, total, err := notifications.List(ctx, model.ListQuery{ReceiverID: "creator", Page: 1, Size: 10})
		return err == nil && total == 1 && list[0].SenderID == "u9"
	}, 5*time.Second, 20*time.Millisecond)
}
