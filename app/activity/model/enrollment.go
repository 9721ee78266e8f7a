package model

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	ErrEnrollmentNotFound  = errors.New("报名记录不存在")
	ErrEnrollmentDuplicate = errors.New("重复报名")
)

// Enrollment 活动报名记录
//
// ActiveKey 只在报名有效时有值（"活动ID:openid"），取消后置 NULL，
// 唯一索引 uk_enroll_active 保证同一用户对同一活动至多一条有效报名，
// 取消后可以重新报名
type Enrollment struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ActivityID uint64 `gorm:"not null;index:idx_activity_status,priority:1;comment:活动ID" json:"activityId"`
	UserID     string `gorm:"column:user_id;type:varchar(64);not null;index:idx_user_status,priority:1;comment:报名用户openid" json:"userId"`

	// 活动与用户快照
	ActivityTitle    string `gorm:"type:varchar(100);default:''" json:"activityTitle"`
	ActivityCoverURL string `gorm:"column:activity_cover_url;type:varchar(512);default:''" json:"activityCoverUrl"`
	UserNickName     string `gorm:"type:varchar(64);default:''" json:"userNickName"`
	UserAvatarURL    string `gorm:"column:user_avatar_url;type:varchar(512);default:''" json:"userAvatarUrl"`

	// 报名表单
	UserPhone  string `gorm:"type:varchar(20);default:''" json:"userPhone"`
	UserName   string `gorm:"type:varchar(64);default:''" json:"userName"`
	UserAge    int    `gorm:"not null;default:0" json:"userAge"`
	UserIDCard string `gorm:"column:user_id_card;type:varchar(32);default:''" json:"userIdCard"`
	UserGender int8   `gorm:"not null;default:0" json:"userGender"`
	UserRemark string `gorm:"type:varchar(255);default:''" json:"userRemark"`

	Status     string     `gorm:"type:varchar(16);not null;default:'enrolled';index:idx_activity_status,priority:2;index:idx_user_status,priority:2" json:"status"`
	ActiveKey  *string    `gorm:"type:varchar(96);uniqueIndex:uk_enroll_active" json:"-"`
	CancelTime *time.Time `json:"cancelTime,omitempty"`
	CreateTime time.Time  `gorm:"autoCreateTime" json:"createTime"`
	UpdateTime time.Time  `gorm:"autoUpdateTime" json:"updateTime"`
}

func (Enrollment) TableName() string {
	return "enrolls"
}

// ActiveEnrollKey 有效报名唯一键
func ActiveEnrollKey(activityID uint64, userID string) *string {
	key := fmt.Sprintf("%d:%s", activityID, userID)
	return &key
}

// EnrollListQuery 报名列表查询
type EnrollListQuery struct {
	Pagination
	ActivityID uint64
	UserID     string
	Status     string
	// ActiveOnly 排除已取消的报名
	ActiveOnly bool
}

// EnrollmentModel 报名数据访问层
type EnrollmentModel struct {
	db *gorm.DB
}

func NewEnrollmentModel(db *gorm.DB) *EnrollmentModel {
	return &EnrollmentModel{db: db}
}

// WithTx 返回绑定事务的 Model
func (m *EnrollmentModel) WithTx(tx *gorm.DB) *EnrollmentModel {
	return &EnrollmentModel{db: tx}
}

// Create 创建报名记录，重复的有效报名返回 ErrEnrollmentDuplicate
func (m *EnrollmentModel) Create(ctx context.Context, enrollment *Enrollment) error {
	enrollment.Status = EnrollStatusEnrolled
	enrollment.ActiveKey = ActiveEnrollKey(enrollment.ActivityID, enrollment.UserID)
	if err := m.db.WithContext(ctx).Create(enrollment).Error; err != nil {
		if isDuplicateErr(err) {
			return ErrEnrollmentDuplicate
		}
		return err
	}
	return nil
}

// FindActive 查询用户对某活动的有效报名
func (m *EnrollmentModel) FindActive(ctx context.Context, activityID uint64, userID string) (*Enrollment, error) {
	var enrollment Enrollment
	err := m.db.WithContext(ctx).
		Where("activity_id = ? AND user_id = ? AND status <> ?", activityID, userID, EnrollStatusCancelled).
		First(&enrollment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, err
	}
	return &enrollment, nil
}

// CountActive 统计活动的有效报名数
func (m *EnrollmentModel) CountActive(ctx context.Context, activityID uint64) (int64, error) {
	var count int64
	err := m.db.WithContext(ctx).
		Model(&Enrollment{}).
		Where("activity_id = ? AND status <> ?", activityID, EnrollStatusCancelled).
		Count(&count).Error
	return count, err
}

// ExistsActive 用户是否有有效报名
func (m *EnrollmentModel) ExistsActive(ctx context.Context, activityID uint64, userID string) (bool, error) {
	var count int64
	err := m.db.WithContext(ctx).
		Model(&Enrollment{}).
		Where("activity_id = ? AND user_id = ? AND status <> ?", activityID, userID, EnrollStatusCancelled).
		Count(&count).Error
	return count > 0, err
}

// Cancel 取消报名，释放有效报名唯一键
func (m *EnrollmentModel) Cancel(ctx context.Context, id uint64, cancelTime time.Time) error {
	result := m.db.WithContext(ctx).
		Model(&Enrollment{}).
		Where("id = ? AND status = ?", id, EnrollStatusEnrolled).
		Updates(map[string]interface{}{
			"status":      EnrollStatusCancelled,
			"active_key":  nil,
			"cancel_time": cancelTime,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEnrollmentNotFound
	}
	return nil
}

// List 分页查询报名记录，按报名时间倒序
func (m *EnrollmentModel) List(ctx context.Context, query *EnrollListQuery) ([]Enrollment, int64, error) {
	query.Pagination.Normalize()

	db := m.db.WithContext(ctx).Model(&Enrollment{})
	if query.ActivityID > 0 {
		db = db.Where("activity_id = ?", query.ActivityID)
	}
	if query.UserID != "" {
		db = db.Where("user_id = ?", query.UserID)
	}
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	if query.ActiveOnly {
		db = db.Where("status <> ?", EnrollStatusCancelled)
	}
	db = db.Session(&gorm.Session{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count enrolls")
	}

	list := make([]Enrollment, 0, query.PageSize)
	if total > int64(query.Offset()) {
		err := db.Order("create_time DESC").Order("id DESC").
			Offset(query.Offset()).
			Limit(query.PageSize).
			Find(&list).Error
		if err != nil {
			return nil, 0, errors.Wrap(err, "list enrolls")
		}
	}
	return list, total, nil
}

// RefreshUserSnapshot 刷新报名记录上的昵称头像快照
func (m *EnrollmentModel) RefreshUserSnapshot(ctx context.Context, userID, nickName, avatarURL string) (int64, error) {
	result := m.db.WithContext(ctx).
		Model(&Enrollment{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"user_nick_name":  nickName,
			"user_avatar_url": avatarURL,
		})
	return result.RowsAffected, result.Error
}

// CountActiveByActivities 批量统计有效报名数
func (m *EnrollmentModel) CountActiveByActivities(ctx context.Context, activityIDs []uint64) (map[uint64]int64, error) {
	return countGroupByActivity(ctx, m.db, &Enrollment{}, activityIDs, "status <> ?", EnrollStatusCancelled)
}

// countGroupByActivity 按活动分组计数
func countGroupByActivity(ctx context.Context, db *gorm.DB, table interface{}, activityIDs []uint64,
	cond string, args ...interface{}) (map[uint64]int64, error) {
	counts := make(map[uint64]int64, len(activityIDs))
	if len(activityIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		ActivityID uint64
		Cnt        int64
	}
	q := db.WithContext(ctx).
		Model(table).
		Select("activity_id, COUNT(*) AS cnt").
		Where("activity_id IN ?", activityIDs)
	if cond != "" {
		q = q.Where(cond, args...)
	}
	if err := q.Group("activity_id").Scan(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "count group by activity")
	}
	for _, row := range rows {
		counts[row.ActivityID] = row.Cnt
	}
	return counts, nil
}
