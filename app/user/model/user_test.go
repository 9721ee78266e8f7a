package model

import (
	"context"
	"testing"
	"time"

	"haojuleling/common/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserModel(t *testing.T) {
	ctx := context.Background()
	m := NewUserModel(testkit.NewDB(t, &User{}))

	require.NoError(t, m.Create(ctx, &User{OpenID: "o_1", NickName: "小明"}))
	require.NoError(t, m.Create(ctx, &User{OpenID: "o_admin", IsAdmin: true}))

	u, err := m.FindByOpenID(ctx, "o_1")
	require.NoError(t, err)
	assert.Equal(t, "小明", u.NickName)

	_, err = m.FindByOpenID(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)

	exists, err := m.ExistsByOpenID(ctx, "o_1")
	require.NoError(t, err)
	assert.True(t, exists)

	isAdmin, err := m.IsAdmin(ctx, "o_admin")
	require.NoError(t, err)
	assert.True(t, isAdmin)
	isAdmin, err = m.IsAdmin(ctx, "")
	require.NoError(t, err)
	assert.False(t, isAdmin)

	require.NoError(t, m.UpdateFields(ctx, "o_1", map[string]interface{}{"nick_name": "小红"}))
	u, err = m.FindByOpenID(ctx, "o_1")
	require.NoError(t, err)
	assert.Equal(t, "小红", u.NickName)
}

func TestExpireVip(t *testing.T) {
	ctx := context.Background()
	m := NewUserModel(testkit.NewDB(t, &User{}))

	past := time.Now().Add(-time.Hour)
	require.NoError(t, m.Create(ctx, &User{OpenID: "o_vip", IsVip: true, VipExpireTime: &past}))

	u, err := m.FindByOpenID(ctx, "o_vip")
	require.NoError(t, err)
	assert.True(t, u.VipExpired(time.Now()))

	require.NoError(t, m.ExpireVip(ctx, "o_vip"))
	u, err = m.FindByOpenID(ctx, "o_vip")
	require.NoError(t, err)
	assert.False(t, u.IsVip)
	assert.Nil(t, u.VipExpireTime)
	assert.False(t, u.VipExpired(time.Now()))
}
