package model

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ErrNotificationNotFound 通知不存在
var ErrNotificationNotFound = errors.New("通知不存在")

// 通知类型
const (
	TypeSystem         = "system"
	TypeActivityEnroll = "activity_enroll" // 有人报名了我发起的活动
	TypeActivityCancel = "activity_cancel" // 有人取消了报名
)

// Notification 站内通知
type Notification struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"-"`
	// NotificationID 对外暴露的通知ID
	NotificationID string `gorm:"column:notification_id;type:varchar(36);uniqueIndex:uk_notification_id;not null" json:"id"`

	Title      string `gorm:"type:varchar(100);not null" json:"title"`
	Content    string `gorm:"type:varchar(1000);not null" json:"content"`
	Type       string `gorm:"type:varchar(32);not null;index:idx_receiver_type,priority:2" json:"type"`
	ReceiverID string `gorm:"column:receiver_id;type:varchar(64);not null;index:idx_receiver_read,priority:1;index:idx_receiver_type,priority:1" json:"receiverId"`
	SenderID   string `gorm:"column:sender_id;type:varchar(64);default:''" json:"senderId"`
	TargetID   string `gorm:"column:target_id;type:varchar(64);default:''" json:"targetId"`
	TargetType string `gorm:"column:target_type;type:varchar(32);default:''" json:"targetType"`

	IsRead     bool       `gorm:"not null;default:false;index:idx_receiver_read,priority:2" json:"isRead"`
	ReadTime   *time.Time `json:"readTime"`
	CreateTime time.Time  `gorm:"autoCreateTime" json:"createTime"`
}

func (Notification) TableName() string {
	return "notifications"
}

// ListQuery 通知列表查询
type ListQuery struct {
	ReceiverID string
	Type       string
	Page       int
	Size       int
}

// INotificationModel 通知数据访问层接口
type INotificationModel interface {
	Create(ctx context.Context, n *Notification) error
	FindByNotificationID(ctx context.Context, notificationID string) (*Notification, error)
	List(ctx context.Context, query ListQuery) ([]Notification, int64, error)
	CountUnread(ctx context.Context, receiverID string) (int64, error)
	// MarkRead 未读才会更新，已读的保留首次阅读时间
	MarkRead(ctx context.Context, notificationID string, readTime time.Time) (bool, error)
	// MarkAllRead 批量标记，返回更新条数
	MarkAllRead(ctx context.Context, receiverID string, readTime time.Time) (int64, error)
	Delete(ctx context.Context, notificationID string) error
}

var _ INotificationModel = (*NotificationModel)(nil)

// NotificationModel 通知数据访问层
type NotificationModel struct {
	db *gorm.DB
}

func NewNotificationModel(db *gorm.DB) INotificationModel {
	return &NotificationModel{db: db}
}

// Create 创建通知，未指定ID时生成 uuid
func (m *NotificationModel) Create(ctx context.Context, n *Notification) error {
	if n.NotificationID == "" {
		n.NotificationID = uuid.NewString()
	}
	n.IsRead = false
	n.ReadTime = nil
	return errors.Wrap(m.db.WithContext(ctx).Create(n).Error, "create notification")
}

func (m *NotificationModel) FindByNotificationID(ctx context.Context, notificationID string) (*Notification, error) {
	var n Notification
	err := m.db.WithContext(ctx).Where("notification_id = ?", notificationID).First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return &n, nil
}

// List 分页查询，按创建时间倒序
func (m *NotificationModel) List(ctx context.Context, query ListQuery) ([]Notification, int64, error) {
	db := m.db.WithContext(ctx).
		Model(&Notification{}).
		Where("receiver_id = ?", query.ReceiverID)
	if query.Type != "" {
		db = db.Where("type = ?", query.Type)
	}
	db = db.Session(&gorm.Session{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count notifications")
	}

	offset := (query.Page - 1) * query.Size
	list := make([]Notification, 0, query.Size)
	if total > int64(offset) {
		err := db.Order("create_time DESC").Order("id DESC").
			Offset(offset).
			Limit(query.Size).
			Find(&list).Error
		if err != nil {
			return nil, 0, errors.Wrap(err, "list notifications")
		}
	}
	return list, total, nil
}

func (m *NotificationModel) CountUnread(ctx context.Context, receiverID string) (int64, error) {
	var count int64
	err := m.db.WithContext(ctx).
		Model(&Notification{}).
		Where("receiver_id = ? AND is_read = ?", receiverID, false).
		Count(&count).Error
	return count, err
}

func (m *NotificationModel) MarkRead(ctx context.Context, notificationID string, readTime time.Time) (bool, error) {
	result := m.db.WithContext(ctx).
		Model(&Notification{}).
		Where("notification_id = ? AND is_read = ?", notificationID, false).
		Updates(map[string]interface{}{
			"is_read":   true,
			"read_time": readTime,
		})
	return result.RowsAffected > 0, result.Error
}

func (m *NotificationModel) MarkAllRead(ctx context.Context, receiverID string, readTime time.Time) (int64, error) {
	result := m.db.WithContext(ctx).
		Model(&Notification{}).
		Where("receiver_id = ? AND is_read = ?", receiverID, false).
		Updates(map[string]interface{}{
			"is_read":   true,
			"read_time": readTime,
		})
	return result.RowsAffected, result.Error
}

func (m *NotificationModel) Delete(ctx context.Context, notificationID string) error {
	result := m.db.WithContext(ctx).
		Where("notification_id = ?", notificationID).
		Delete(&Notification{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
