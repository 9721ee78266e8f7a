package model

import (
	"context"
	"testing"
	"time"

	"haojuleling/common/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewNotificationModel(testkit.NewDB(t, &Notification{}))

	for i := 0; i < 3; i++ {
		require.NoError(t, m.Create(ctx, &Notification{Title: "t", Content: "c", Type: TypeSystem, ReceiverID: "u1"}))
	}
	other := &Notification{Title: "t", Content: "c", Type: TypeActivityEnroll, ReceiverID: "u1"}
	require.NoError(t, m.Create(ctx, other))
	require.NoError(t, m.Create(ctx, &Notification{Title: "t", Content: "c", Type: TypeSystem, ReceiverID: "u2"}))
	assert.Len(t, other.NotificationID, 36)

	list, total, err := m.List(ctx, ListQuery{ReceiverID: "u1", Page: 1, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, list, 2)
	assert.Equal(t, other.NotificationID, list[0].NotificationID)

	_, total, err = m.List(ctx, ListQuery{ReceiverID: "u1", Type: TypeActivityEnroll, Page: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	first := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	ok, err := m.MarkRead(ctx, other.NotificationID, first)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = m.MarkRead(ctx, other.NotificationID, first.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := m.FindByNotificationID(ctx, other.NotificationID)
	require.NoError(t, err)
	require.NotNil(t, got.ReadTime)
	assert.True(t, got.ReadTime.Equal(first))

	unread, err := m.CountUnread(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), unread)

	n, err := m.MarkAllRead(ctx, "u1", time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	n, err = m.MarkAllRead(ctx, "u1", time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	unread, err = m.CountUnread(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	require.NoError(t, m.Delete(ctx, other.NotificationID))
	assert.ErrorIs(t, m.Delete(ctx, other.NotificationID), ErrNotificationNotFound)
	_, err = m.FindByNotificationID(ctx, other.NotificationID)
	assert.ErrorIs(t, err, ErrNotificationNotFound)
}
