package model

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrActivityNotFound = errors.New("活动不存在")
	ErrPageTooDeep      = errors.New("分页过深")
)

// Activity 活动
type Activity struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"`

	Title      string         `gorm:"type:varchar(100);not null;comment:活动标题" json:"title"`
	Type       string         `gorm:"type:varchar(32);not null;index:idx_type;comment:活动类型" json:"type"`
	Content    string         `gorm:"type:text;comment:活动详情" json:"content"`
	CoverURL   string         `gorm:"column:cover_url;type:varchar(512);default:'';comment:封面" json:"coverUrl"`
	Images     datatypes.JSON `gorm:"comment:图片列表" json:"images"`
	CategoryID string         `gorm:"column:category_id;type:varchar(64);default:'';index:idx_category;comment:分类" json:"categoryId"`

	Latitude  *float64 `gorm:"comment:纬度" json:"latitude,omitempty"`
	Longitude *float64 `gorm:"comment:经度" json:"longitude,omitempty"`
	Address   string   `gorm:"type:varchar(255);default:'';comment:地址" json:"address"`

	StartTime *time.Time `gorm:"index:idx_start_time;comment:开始时间" json:"startTime"`
	EndTime   *time.Time `gorm:"comment:结束时间" json:"endTime"`

	// 0 表示不限人数
	MaxParticipants int     `gorm:"not null;default:0;comment:人数上限" json:"maxParticipants"`
	Price           float64 `gorm:"type:decimal(10,2);not null;default:0;comment:价格" json:"price"`

	// 发起人及其快照（资料变更时由 MQ 刷新）
	CreatorID        string `gorm:"column:creator_id;type:varchar(64);not null;index:idx_creator;comment:发起人openid" json:"creatorId"`
	CreatorNickName  string `gorm:"column:creator_nick_name;type:varchar(64);default:''" json:"creatorNickName"`
	CreatorAvatarURL string `gorm:"column:creator_avatar_url;type:varchar(512);default:''" json:"creatorAvatarUrl"`

	Status       string `gorm:"type:varchar(16);not null;default:'pending';index:idx_status;comment:审核状态" json:"status"`
	StatusReason string `gorm:"type:varchar(255);default:'';comment:审核意见" json:"statusReason"`
	IsHot        bool   `gorm:"not null;default:false" json:"isHot"`
	IsRecommend  bool   `gorm:"not null;default:false" json:"isRecommend"`
	IsCommunity  bool   `gorm:"not null;default:false" json:"isCommunity"`
	IsDeleted    bool   `gorm:"not null;default:false;index:idx_deleted_create,priority:1" json:"isDeleted"`

	// 冗余计数，与 enrolls / favorites 表保持一致
	EnrollCount   int64 `gorm:"not null;default:0" json:"enrollCount"`
	FavoriteCount int64 `gorm:"not null;default:0" json:"favoriteCount"`

	CreateTime time.Time `gorm:"autoCreateTime;index:idx_deleted_create,priority:2" json:"createTime"`
	UpdateTime time.Time `gorm:"autoUpdateTime" json:"updateTime"`
}

func (Activity) TableName() string {
	return "activities"
}

// IsJoinable 是否允许报名
func (a *Activity) IsJoinable() bool {
	return a.Status == StatusApproved && !a.IsDeleted
}

// HasCapacityLimit 是否限制人数
func (a *Activity) HasCapacityLimit() bool {
	return a.MaxParticipants > 0
}

// ActivityModel 活动数据访问层
type ActivityModel struct {
	db *gorm.DB
}

func NewActivityModel(db *gorm.DB) *ActivityModel {
	return &ActivityModel{db: db}
}

// WithTx 返回绑定事务的 Model
func (m *ActivityModel) WithTx(tx *gorm.DB) *ActivityModel {
	return &ActivityModel{db: tx}
}

// Create 创建活动
func (m *ActivityModel) Create(ctx context.Context, activity *Activity) error {
	return m.db.WithContext(ctx).Create(activity).Error
}

// FindByID 根据ID查询
func (m *ActivityModel) FindByID(ctx context.Context, id uint64) (*Activity, error) {
	var activity Activity
	err := m.db.WithContext(ctx).Where("id = ?", id).First(&activity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, err
	}
	return &activity, nil
}

// FindByIDs 批量查询，结果顺序不保证
func (m *ActivityModel) FindByIDs(ctx context.Context, ids []uint64) ([]Activity, error) {
	if len(ids) == 0 {
		return []Activity{}, nil
	}
	var activities []Activity
	err := m.db.WithContext(ctx).Where("id IN ?", ids).Find(&activities).Error
	return activities, err
}

// FindByIDForUpdate 加行锁查询，必须在事务内调用
func (m *ActivityModel) FindByIDForUpdate(ctx context.Context, id uint64) (*Activity, error) {
	var activity Activity
	err := m.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&activity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, err
	}
	return &activity, nil
}

// UpdateFields 按列更新
func (m *ActivityModel) UpdateFields(ctx context.Context, id uint64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return m.db.WithContext(ctx).
		Model(&Activity{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// SoftDelete 软删除
func (m *ActivityModel) SoftDelete(ctx context.Context, id uint64) error {
	result := m.db.WithContext(ctx).
		Model(&Activity{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_deleted":  true,
			"update_time": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrActivityNotFound
	}
	return nil
}

// List 分页查询活动列表
// 总数与列表使用同一组条件，分两次查询
func (m *ActivityModel) List(ctx context.Context, query *ListQuery) (*ListResult, error) {
	query.Pagination.Normalize()

	// 禁止超深分页
	if query.Page > MaxPage {
		return nil, ErrPageTooDeep
	}

	db := m.buildListConditions(m.db.WithContext(ctx).Model(&Activity{}), query).
		Session(&gorm.Session{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, errors.Wrap(err, "count activities")
	}

	activities := make([]Activity, 0, query.PageSize)
	if total > int64(query.Offset()) {
		err := db.Order("create_time DESC").Order("id DESC").
			Offset(query.Offset()).
			Limit(query.PageSize).
			Find(&activities).Error
		if err != nil {
			return nil, errors.Wrap(err, "list activities")
		}
	}

	return &ListResult{
		List:     activities,
		Total:    total,
		Page:     query.Page,
		PageSize: query.PageSize,
	}, nil
}

// buildListConditions 构建列表查询条件
func (m *ActivityModel) buildListConditions(db *gorm.DB, query *ListQuery) *gorm.DB {
	// 软删除可见性：管理员看全部，其他人只额外看到自己创建的
	switch {
	case query.IncludeDelete:
	case query.ViewerID != "":
		db = db.Where("(is_deleted = ? OR creator_id = ?)", false, query.ViewerID)
	default:
		db = db.Where("is_deleted = ?", false)
	}

	if query.IsHot != nil {
		db = db.Where("is_hot = ?", *query.IsHot)
	}
	if query.IsRecommend != nil {
		db = db.Where("is_recommend = ?", *query.IsRecommend)
	}
	if query.IsCommunity != nil {
		db = db.Where("is_community = ?", *query.IsCommunity)
	}

	if query.SearchKeyword != "" {
		pattern := "%" + escapeKeyword(query.SearchKeyword) + "%"
		db = db.Where("LOWER(title) LIKE LOWER(?) ESCAPE '"+likeEscapeChar+"'", pattern)
	}

	if query.Type != "" {
		db = db.Where("type = ?", query.Type)
	}
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	if query.CategoryID != "" {
		db = db.Where("category_id = ?", query.CategoryID)
	}
	if query.CreatorID != "" {
		db = db.Where("creator_id = ?", query.CreatorID)
	}

	if query.StartFrom != nil {
		db = db.Where("start_time >= ?", *query.StartFrom)
	}
	if query.StartTo != nil {
		db = db.Where("start_time <= ?", *query.StartTo)
	}

	return db
}

// ==================== 冗余计数 ====================

// IncrEnrollCount 条件自增报名数，已满员时不更新并返回 false
func (m *ActivityModel) IncrEnrollCount(ctx context.Context, id uint64) (bool, error) {
	result := m.db.WithContext(ctx).
		Model(&Activity{}).
		Where("id = ? AND (max_participants = 0 OR enroll_count < max_participants)", id).
		Update("enroll_count", gorm.Expr("enroll_count + ?", 1))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// DecrEnrollCount 报名数减一，下限为 0
// 返回 clamped=true 表示计数已经是 0（计数与报名记录不一致）
func (m *ActivityModel) DecrEnrollCount(ctx context.Context, id uint64) (bool, error) {
	return m.decrCounter(ctx, id, "enroll_count")
}

// IncrFavoriteCount 收藏数加一
func (m *ActivityModel) IncrFavoriteCount(ctx context.Context, id uint64) error {
	result := m.db.WithContext(ctx).
		Model(&Activity{}).
		Where("id = ?", id).
		Update("favorite_count", gorm.Expr("favorite_count + ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrActivityNotFound
	}
	return nil
}

// DecrFavoriteCount 收藏数减一，下限为 0
func (m *ActivityModel) DecrFavoriteCount(ctx context.Context, id uint64) (bool, error) {
	return m.decrCounter(ctx, id, "favorite_count")
}

func (m *ActivityModel) decrCounter(ctx context.Context, id uint64, column string) (bool, error) {
	result := m.db.WithContext(ctx).
		Model(&Activity{}).
		Where("id = ? AND "+column+" > 0", id).
		Update(column, gorm.Expr(column+" - ?", 1))
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 1 {
		return false, nil
	}

	// 未更新：要么活动不存在，要么计数已经是 0
	var count int64
	if err := m.db.WithContext(ctx).Model(&Activity{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	if count == 0 {
		return false, ErrActivityNotFound
	}
	return true, nil
}

// ==================== 快照刷新与计数校准 ====================

// RefreshCreatorSnapshot 刷新发起人昵称头像快照
func (m *ActivityModel) RefreshCreatorSnapshot(ctx context.Context, creatorID, nickName, avatarURL string) (int64, error) {
	result := m.db.WithContext(ctx).
		Model(&Activity{}).
		Where("creator_id = ?", creatorID).
		Updates(map[string]interface{}{
			"creator_nick_name":  nickName,
			"creator_avatar_url": avatarURL,
		})
	return result.RowsAffected, result.Error
}

// CounterRow 计数校准用的精简行
type CounterRow struct {
	ID            uint64
	EnrollCount   int64
	FavoriteCount int64
}

// ListCountersAfter 按 ID 升序取一批活动的冗余计数
func (m *ActivityModel) ListCountersAfter(ctx context.Context, afterID uint64, limit int) ([]CounterRow, error) {
	var rows []CounterRow
	err := m.db.WithContext(ctx).
		Model(&Activity{}).
		Select("id, enroll_count, favorite_count").
		Where("id > ?", afterID).
		Order("id ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// SetCounters 覆盖冗余计数
func (m *ActivityModel) SetCounters(ctx context.Context, id uint64, enrollCount, favoriteCount int64) error {
	return m.db.WithContext(ctx).
		Model(&Activity{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"enroll_count":   enrollCount,
			"favorite_count": favoriteCount,
		}).Error
}
