package messaging

import "time"

// ==================== Topic 定义 ====================

const (
	TopicActivityMemberJoined = "activity.member.joined"
	TopicActivityMemberLeft   = "activity.member.left"
	TopicUserProfileUpdated   = "user.profile.updated"
)

// ==================== 事件结构体 ====================

// ActivityMemberJoinedEvent 用户报名事件
// 消费者：通知 MQ（通知活动发起人）
type ActivityMemberJoinedEvent struct {
	ActivityID    uint64    `json:"activity_id"`
	ActivityTitle string    `json:"activity_title"`
	CreatorID     string    `json:"creator_id"`
	UserID        string    `json:"user_id"`
	UserNickName  string    `json:"user_nick_name"`
	EnrollmentID  uint64    `json:"enrollment_id"`
	JoinedAt      time.Time `json:"joined_at"`
}

// ActivityMemberLeftEvent 用户取消报名事件
// 消费者：通知 MQ（通知活动发起人）
type ActivityMemberLeftEvent struct {
	ActivityID    uint64    `json:"activity_id"`
	ActivityTitle string    `json:"activity_title"`
	CreatorID     string    `json:"creator_id"`
	UserID        string    `json:"user_id"`
	UserNickName  string    `json:"user_nick_name"`
	EnrollmentID  uint64    `json:"enrollment_id"`
	LeftAt        time.Time `json:"left_at"`
}

// UserProfileUpdatedEvent 用户资料变更事件
// 消费者：活动 MQ（刷新活动/报名记录上的昵称头像快照）
type UserProfileUpdatedEvent struct {
	OpenID    string    `json:"openid"`
	NickName  string    `json:"nick_name"`
	AvatarURL string    `json:"avatar_url"`
	UpdatedAt time.Time `json:"updated_at"`
}
