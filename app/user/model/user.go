package model

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrUserNotFound 用户不存在
var ErrUserNotFound = errors.New("用户不存在")

// UserGender 用户性别（与微信 userInfo.gender 一致）
const (
	UserGenderUnknown int8 = 0
	UserGenderMale    int8 = 1
	UserGenderFemale  int8 = 2
)

// User 小程序用户
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	// 微信 openid，调用者身份
	OpenID  string `gorm:"column:openid;type:varchar(64);uniqueIndex:uk_openid;not null" json:"openid"`
	UnionID string `gorm:"column:unionid;type:varchar(64);default:''" json:"unionid"`

	NickName  string `gorm:"column:nick_name;type:varchar(64);not null;default:''" json:"nickName"`
	AvatarURL string `gorm:"column:avatar_url;type:varchar(512);not null;default:''" json:"avatarUrl"`
	Gender    int8   `gorm:"column:gender;not null;default:0" json:"gender"`
	Country   string `gorm:"column:country;type:varchar(64);default:''" json:"country"`
	Province  string `gorm:"column:province;type:varchar(64);default:''" json:"province"`
	City      string `gorm:"column:city;type:varchar(64);default:''" json:"city"`
	Language  string `gorm:"column:language;type:varchar(32);default:''" json:"language"`
	Phone     string `gorm:"column:phone;type:varchar(20);default:''" json:"phone"`

	IsVip         bool       `gorm:"column:is_vip;not null;default:false" json:"isVip"`
	VipExpireTime *time.Time `gorm:"column:vip_expire_time" json:"vipExpireTime"`
	IsAdmin       bool       `gorm:"column:is_admin;not null;default:false" json:"isAdmin"`

	LastLoginTime *time.Time `gorm:"column:last_login_time" json:"lastLoginTime"`
	CreateTime    time.Time  `gorm:"column:create_time;autoCreateTime" json:"createTime"`
	UpdateTime    time.Time  `gorm:"column:update_time;autoUpdateTime" json:"updateTime"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// VipExpired VIP 是否已过期
func (u *User) VipExpired(now time.Time) bool {
	return u.IsVip && u.VipExpireTime != nil && u.VipExpireTime.Before(now)
}

// IUserModel 用户数据访问层接口
type IUserModel interface {
	// Create 创建用户
	Create(ctx context.Context, user *User) error
	// FindByOpenID 根据 openid 查询
	FindByOpenID(ctx context.Context, openid string) (*User, error)
	// ExistsByOpenID 检查用户是否存在
	ExistsByOpenID(ctx context.Context, openid string) (bool, error)
	// IsAdmin 是否管理员，用户不存在视为否
	IsAdmin(ctx context.Context, openid string) (bool, error)
	// UpdateFields 按 openid 更新指定列
	UpdateFields(ctx context.Context, openid string, fields map[string]interface{}) error
	// ExpireVip 取消已过期的 VIP
	ExpireVip(ctx context.Context, openid string) error
}

// 确保 UserModel 实现 IUserModel 接口
var _ IUserModel = (*UserModel)(nil)

// UserModel 用户数据访问层
type UserModel struct {
	db *gorm.DB
}

// NewUserModel 创建用户Model实例，传入事务 tx 时所有操作在事务内执行
func NewUserModel(db *gorm.DB) IUserModel {
	return &UserModel{db: db}
}

// Create 创建用户
func (m *UserModel) Create(ctx context.Context, user *User) error {
	return m.db.WithContext(ctx).Create(user).Error
}

// FindByOpenID 根据 openid 查询
func (m *UserModel) FindByOpenID(ctx context.Context, openid string) (*User, error) {
	var user User
	err := m.db.WithContext(ctx).Where("openid = ?", openid).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ExistsByOpenID 检查用户是否存在
func (m *UserModel) ExistsByOpenID(ctx context.Context, openid string) (bool, error) {
	var count int64
	err := m.db.WithContext(ctx).
		Model(&User{}).
		Where("openid = ?", openid).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// IsAdmin 是否管理员
func (m *UserModel) IsAdmin(ctx context.Context, openid string) (bool, error) {
	if openid == "" {
		return false, nil
	}
	var count int64
	err := m.db.WithContext(ctx).
		Model(&User{}).
		Where("openid = ? AND is_admin = ?", openid, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateFields 按 openid 更新指定列
func (m *UserModel) UpdateFields(ctx context.Context, openid string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return m.db.WithContext(ctx).
		Model(&User{}).
		Where("openid = ?", openid).
		Updates(fields).Error
}

// ExpireVip 取消已过期的 VIP，同时清空到期时间
func (m *UserModel) ExpireVip(ctx context.Context, openid string) error {
	return m.db.WithContext(ctx).
		Model(&User{}).
		Where("openid = ? AND is_vip = ?", openid, true).
		Updates(map[string]interface{}{
			"is_vip":          false,
			"vip_expire_time": nil,
		}).Error
}
