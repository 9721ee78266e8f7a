package logic

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"haojuleling/app/user/api/internal/config"
	"haojuleling/app/user/api/internal/svc"
	"haojuleling/app/user/api/internal/types"
	"haojuleling/app/user/api/internal/wechat"
	"haojuleling/app/user/model"
	"haojuleling/common/ctxdata"
	"haojuleling/common/errorx"
	"haojuleling/common/messaging"
	"haojuleling/common/testkit"
	"haojuleling/common/utils/jwt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	gojwt "github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "user-test-secret"

// ==================== 测试辅助 ====================

// fakeWeChat code 即 openid，"bad" 返回 code 无效
type fakeWeChat struct {
	unionID string
}

func (f fakeWeChat) Code2Session(_ context.Context, code string) (*wechat.Session, error) {
	if code == "bad" {
		return nil, errors.Wrap(wechat.ErrInvalidCode, "errcode=40029")
	}
	return &wechat.Session{OpenID: code, UnionID: f.unionID}, nil
}

func newTestSvc(t *testing.T, msgClient *messaging.Client) *svc.ServiceContext {
	t.Helper()
	c := config.Config{Auth: jwt.AuthConfig{AccessSecret: testSecret, AccessExpire: 3600}}
	db := testkit.NewDB(t, &model.User{})
	return svc.NewServiceContextWithDeps(c, db, fakeWeChat{unionID: "union-1"}, msgClient)
}

func asUser(openid string) context.Context {
	return ctxdata.WithOpenID(context.Background(), openid)
}

func assertCode(t *testing.T, err error, code int) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, errorx.FromError(err).Code, "err=%v", err)
}

func strPtr(s string) *string { return &s }

func login(t *testing.T, s *svc.ServiceContext, code string, info *types.ProfileInput) types.LoginResult {
	t.Helper()
	resp, err := NewLoginLogic(context.Background(), s).Login(types.LoginRequest{Data: types.LoginData{Code: code, UserInfo: info}})
	require.NoError(t, err)
	assert.Equal(t, "登录成功", resp.Message)
	return resp.Data.(types.LoginResult)
}

func profileEvents(t *testing.T) (*messaging.Client, <-chan *message.Message) {
	t.Helper()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	client, err := messaging.NewClientWithPubSub(messaging.Config{ServiceName: "user-api-test"}, pubSub, pubSub)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	events, err := pubSub.Subscribe(context.Background(), messaging.TopicUserProfileUpdated)
	require.NoError(t, err)
	return client, events
}

// ==================== 登录 ====================

func TestLoginCreatesUser(t *testing.T) {
	s := newTestSvc(t, nil)

	result := login(t, s, "oABCD1234", nil)
	require.NotNil(t, result.UserInfo)
	assert.Equal(t, "oABCD1234", result.UserInfo.OpenID)
	assert.Equal(t, "union-1", result.UserInfo.UnionID)
	assert.Equal(t, "用户1234", result.UserInfo.NickName)
	assert.Equal(t, "zh_CN", result.UserInfo.Language)
	assert.NotNil(t, result.UserInfo.LastLoginTime)
	assert.Greater(t, result.ExpireAt, time.Now().Unix())

	claims, err := jwt.ParseToken(result.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "oABCD1234", claims.OpenID)
}

func TestLoginWithUserInfo(t *testing.T) {
	s := newTestSvc(t, nil)
	gender := model.UserGenderFemale

	result := login(t, s, "o_1", &types.ProfileInput{NickName: strPtr("小红"), AvatarURL: strPtr("https://img/a"), Gender: &gender})
	assert.Equal(t, "小红", result.UserInfo.NickName)
	assert.Equal(t, "https://img/a", result.UserInfo.AvatarURL)
	assert.Equal(t, model.UserGenderFemale, result.UserInfo.Gender)
}

func TestLoginExistingUserKeepsProfile(t *testing.T) {
	client, events := profileEvents(t)
	s := newTestSvc(t, client)

	first := login(t, s, "o_1", &types.ProfileInput{NickName: strPtr("小明")})

	// 空昵称不覆盖已有资料
	second := login(t, s, "o_1", &types.ProfileInput{NickName: strPtr(""), City: strPtr("杭州")})
	assert.Equal(t, first.UserInfo.ID, second.UserInfo.ID)
	assert.Equal(t, "小明", second.UserInfo.NickName)
	assert.Equal(t, "杭州", second.UserInfo.City)

	// 昵称未变，不发布事件
	select {
	case msg := <-events:
		t.Fatalf("unexpected event: %s", msg.Payload)
	case <-time.After(200 * time.Millisecond):
	}

	third := login(t, s, "o_1", &types.ProfileInput{NickName: strPtr("大明")})
	assert.Equal(t, "大明", third.UserInfo.NickName)
	select {
	case msg := <-events:
		var evt messaging.UserProfileUpdatedEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &evt))
		msg.Ack()
		assert.Equal(t, "o_1", evt.OpenID)
		assert.Equal(t, "大明", evt.NickName)
	case <-time.After(3 * time.Second):
		t.Fatal("profile updated event not published")
	}
}

func TestLoginRejections(t *testing.T) {
	s := newTestSvc(t, nil)

	_, err := NewLoginLogic(context.Background(), s).Login(types.LoginRequest{})
	assertCode(t, err, errorx.CodeInvalidParams)

	_, err = NewLoginLogic(context.Background(), s).Login(types.LoginRequest{Data: types.LoginData{Code: "bad"}})
	assertCode(t, err, errorx.CodeWechatLogin)
	assert.Contains(t, errorx.FromError(err).Detail, "40029")
}

func TestDefaultNickName(t *testing.T) {
	assert.Equal(t, "用户5678", defaultNickName("o12345678"))
	assert.Equal(t, "用户ab", defaultNickName("ab"))
}

// ==================== 资料 ====================

func TestGetUserInfo(t *testing.T) {
	s := newTestSvc(t, nil)
	login(t, s, "o_1", nil)

	resp, err := NewUserInfoLogic(asUser("o_1"), s).GetUserInfo(types.GetUserInfoRequest{})
	require.NoError(t, err)
	assert.Equal(t, "o_1", resp.Data.(*model.User).OpenID)

	_, err = NewUserInfoLogic(asUser("nobody"), s).GetUserInfo(types.GetUserInfoRequest{})
	assertCode(t, err, errorx.CodeUserNotFound)

	_, err = NewUserInfoLogic(context.Background(), s).GetUserInfo(types.GetUserInfoRequest{})
	assertCode(t, err, errorx.CodeLoginRequired)
}

func TestUpdateUserInfo(t *testing.T) {
	client, events := profileEvents(t)
	s := newTestSvc(t, client)
	login(t, s, "o_1", nil)
	l := NewUserInfoLogic(asUser("o_1"), s)

	resp, err := l.UpdateUserInfo(types.UpdateUserInfoRequest{Data: types.ProfileInput{City: strPtr("上海")}})
	require.NoError(t, err)
	assert.Equal(t, "更新成功", resp.Message)
	assert.Equal(t, "上海", resp.Data.(*model.User).City)
	select {
	case msg := <-events:
		t.Fatalf("unexpected event: %s", msg.Payload)
	case <-time.After(200 * time.Millisecond):
	}

	resp, err = l.UpdateUserInfo(types.UpdateUserInfoRequest{Data: types.ProfileInput{AvatarURL: strPtr("https://img/new")}})
	require.NoError(t, err)
	assert.Equal(t, "https://img/new", resp.Data.(*model.User).AvatarURL)
	select {
	case msg := <-events:
		var evt messaging.UserProfileUpdatedEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &evt))
		msg.Ack()
		assert.Equal(t, "https://img/new", evt.AvatarURL)
	case <-time.After(3 * time.Second):
		t.Fatal("profile updated event not published")
	}
}

func TestUpdateUserInfoRejections(t *testing.T) {
	s := newTestSvc(t, nil)
	login(t, s, "o_1", nil)

	_, err := NewUserInfoLogic(asUser("o_1"), s).UpdateUserInfo(types.UpdateUserInfoRequest{})
	assertCode(t, err, errorx.CodeInvalidParams)

	_, err = NewUserInfoLogic(asUser("o_1"), s).UpdateUserInfo(types.UpdateUserInfoRequest{Data: types.ProfileInput{NickName: strPtr("  ")}})
	assertCode(t, err, errorx.CodeInvalidParams)

	_, err = NewUserInfoLogic(asUser("o_1"), s).UpdateUserInfo(types.UpdateUserInfoRequest{Data: types.ProfileInput{Phone: strPtr("12345")}})
	assertCode(t, err, errorx.CodeInvalidParams)
	assert.Equal(t, "手机号格式错误", errorx.FromError(err).Message)

	long := string(make([]rune, 65))
	_, err = NewUserInfoLogic(asUser("o_1"), s).UpdateUserInfo(types.UpdateUserInfoRequest{Data: types.ProfileInput{NickName: &long}})
	assertCode(t, err, errorx.CodeInvalidParams)

	_, err = NewUserInfoLogic(asUser("nobody"), s).UpdateUserInfo(types.UpdateUserInfoRequest{Data: types.ProfileInput{City: strPtr("x")}})
	assertCode(t, err, errorx.CodeUserNotFound)
}

// ==================== VIP ====================

func TestGetVipStatusExpires(t *testing.T) {
	s := newTestSvc(t, nil)
	ctx := context.Background()
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(24 * time.Hour)
	require.NoError(t, s.UserModel.Create(ctx, &model.User{OpenID: "expired", IsVip: true, VipExpireTime: &past}))
	require.NoError(t, s.UserModel.Create(ctx, &model.User{OpenID: "active", IsVip: true, VipExpireTime: &future}))

	resp, err := NewUserInfoLogic(asUser("expired"), s).GetVipStatus(types.GetVipStatusRequest{})
	require.NoError(t, err)
	status := resp.Data.(types.VipStatus)
	assert.False(t, status.IsVip)
	assert.Nil(t, status.VipExpireTime)

	u, err := s.UserModel.FindByOpenID(ctx, "expired")
	require.NoError(t, err)
	assert.False(t, u.IsVip)

	resp, err = NewUserInfoLogic(asUser("active"), s).GetVipStatus(types.GetVipStatusRequest{})
	require.NoError(t, err)
	status = resp.Data.(types.VipStatus)
	assert.True(t, status.IsVip)
	require.NotNil(t, status.VipExpireTime)
}

// ==================== Token ====================

func TestVerifyToken(t *testing.T) {
	s := newTestSvc(t, nil)
	result := login(t, s, "o_1", nil)

	resp, err := NewVerifyTokenLogic(context.Background(), s).VerifyToken(types.VerifyTokenRequest{Data: types.TokenData{Token: result.Token}})
	require.NoError(t, err)
	assert.Equal(t, types.VerifyResult{IsValid: true, OpenID: "o_1"}, resp.Data)

	_, err = NewVerifyTokenLogic(context.Background(), s).VerifyToken(types.VerifyTokenRequest{})
	assertCode(t, err, errorx.CodeInvalidParams)

	_, err = NewVerifyTokenLogic(context.Background(), s).VerifyToken(types.VerifyTokenRequest{Data: types.TokenData{Token: "garbage"}})
	assertCode(t, err, errorx.CodeTokenInvalid)

	// 用户不存在
	orphan, err := jwt.GenerateToken("ghost", s.Config.Auth)
	require.NoError(t, err)
	_, err = NewVerifyTokenLogic(context.Background(), s).VerifyToken(types.VerifyTokenRequest{Data: types.TokenData{Token: orphan.Token}})
	assertCode(t, err, errorx.CodeTokenInvalid)
}

func TestVerifyTokenExpired(t *testing.T) {
	s := newTestSvc(t, nil)
	login(t, s, "o_1", nil)

	claims := jwt.Claims{
		OpenID: "o_1",
		RegisteredClaims: gojwt.RegisteredClaims{
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	expired, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = NewVerifyTokenLogic(context.Background(), s).VerifyToken(types.VerifyTokenRequest{Data: types.TokenData{Token: expired}})
	assertCode(t, err, errorx.CodeTokenExpired)
}

// ==================== 分发 ====================

func TestDispatch(t *testing.T) {
	s := newTestSvc(t, nil)

	resp, err := Dispatch(context.Background(), s, types.LoginRequest{Data: types.LoginData{Code: "o_1"}})
	require.NoError(t, err)
	assert.Equal(t, "登录成功", resp.Message)

	_, err = Dispatch(asUser("o_1"), s, nil)
	assertCode(t, err, errorx.CodeUnknownAction)

	sqlDB, err := s.DB.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = Dispatch(asUser("o_1"), s, types.GetUserInfoRequest{})
	bizErr := errorx.FromError(err)
	assert.Equal(t, errorx.CodeInternalError, bizErr.Code)
	assert.Equal(t, "获取用户信息失败", bizErr.Message)
}
