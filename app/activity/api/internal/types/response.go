package types

import "haojuleling/app/activity/model"

// IDResp 新建记录的ID
type IDResp struct {
	ID uint64 `json:"id"`
}

// CreatorInfo 列表中的发起人信息
type CreatorInfo struct {
	NickName  string `json:"nickName"`
	AvatarURL string `json:"avatarUrl"`
	IsVip     bool   `json:"isVip"`
}

// CreatorDetail 详情中的发起人信息
type CreatorDetail struct {
	ID        uint64 `json:"id"`
	OpenID    string `json:"openid"`
	NickName  string `json:"nickName"`
	AvatarURL string `json:"avatarUrl"`
	IsVip     bool   `json:"isVip"`
}

// ActivityItem 活动列表项
type ActivityItem struct {
	model.Activity
	Creator    *CreatorInfo `json:"creator,omitempty"`
	IsJoined   *bool        `json:"isJoined,omitempty"`
	IsFavorite *bool        `json:"isFavorite,omitempty"`
}

// ActivityDetail 活动详情
type ActivityDetail struct {
	model.Activity
	Creator    *CreatorDetail    `json:"creator"`
	IsJoined   bool              `json:"isJoined"`
	IsFavorite bool              `json:"isFavorite"`
	JoinInfo   *model.Enrollment `json:"joinInfo"`
}

// FavoriteItem 收藏列表项
type FavoriteItem struct {
	model.Favorite
	Activity *model.Activity `json:"activity"`
}

// EnrollItem 我参与的活动列表项
type EnrollItem struct {
	model.Enrollment
	Activity *model.Activity `json:"activity"`
}
