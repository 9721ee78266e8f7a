package types

import (
	"testing"

	"haojuleling/common/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLogin(t *testing.T) {
	req, err := DecodeRequest([]byte(`{"action":"login","data":{"code":"c1","userInfo":{"nickName":"小明","gender":1}}}`))
	require.NoError(t, err)
	login := req.(LoginRequest)
	assert.Equal(t, "c1", login.Data.Code)
	require.NotNil(t, login.Data.UserInfo)
	assert.Equal(t, "小明", *login.Data.UserInfo.NickName)
	assert.Equal(t, int8(1), *login.Data.UserInfo.Gender)
	assert.Nil(t, login.Data.UserInfo.AvatarURL)
}

func TestDecodeUpdateIgnoresProtectedFields(t *testing.T) {
	req, err := DecodeRequest([]byte(`{"action":"updateUserInfo","data":{"city":"杭州","isVip":true,"openid":"x"}}`))
	require.NoError(t, err)
	update := req.(UpdateUserInfoRequest)
	require.NotNil(t, update.Data.City)
	assert.Equal(t, "杭州", *update.Data.City)
	assert.Nil(t, update.Data.NickName)
}

func TestDecodeOthers(t *testing.T) {
	for body, want := range map[string]Request{
		`{"action":"getUserInfo"}`:                      GetUserInfoRequest{},
		`{"action":"getVipStatus"}`:                     GetVipStatusRequest{},
		`{"action":"verifyToken","data":{"token":"t"}}`: VerifyTokenRequest{Data: TokenData{Token: "t"}},
	} {
		got, err := DecodeRequest([]byte(body))
		require.NoError(t, err, body)
		assert.Equal(t, want, got)
	}

	_, err := DecodeRequest([]byte(`{"action":"logout"}`))
	assert.True(t, errorx.Is(err, errorx.CodeUnknownAction))
	_, err = DecodeRequest([]byte(`{"action":"login","data":[]}`))
	assert.True(t, errorx.Is(err, errorx.CodeInvalidParams))
}
