package model

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	ErrFavoriteNotFound = errors.New("未收藏")
	ErrFavoriteExists   = errors.New("已收藏")
)

// Favorite 活动收藏，(activity_id, user_id) 唯一
type Favorite struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ActivityID uint64 `gorm:"not null;uniqueIndex:uk_favorite_activity_user,priority:1" json:"activityId"`
	UserID     string `gorm:"column:user_id;type:varchar(64);not null;uniqueIndex:uk_favorite_activity_user,priority:2;index:idx_favorite_user" json:"userId"`

	ActivityTitle    string    `gorm:"type:varchar(100);default:''" json:"activityTitle"`
	ActivityCoverURL string    `gorm:"column:activity_cover_url;type:varchar(512);default:''" json:"activityCoverUrl"`
	CreateTime       time.Time `gorm:"autoCreateTime" json:"createTime"`
}

func (Favorite) TableName() string {
	return "favorites"
}

// FavoriteModel 收藏数据访问层
type FavoriteModel struct {
	db *gorm.DB
}

func NewFavoriteModel(db *gorm.DB) *FavoriteModel {
	return &FavoriteModel{db: db}
}

func (m *FavoriteModel) WithTx(tx *gorm.DB) *FavoriteModel {
	return &FavoriteModel{db: tx}
}

// Create 新增收藏，重复收藏返回 ErrFavoriteExists
func (m *FavoriteModel) Create(ctx context.Context, favorite *Favorite) error {
	if err := m.db.WithContext(ctx).Create(favorite).Error; err != nil {
		if isDuplicateErr(err) {
			return ErrFavoriteExists
		}
		return err
	}
	return nil
}

// Exists 是否已收藏
func (m *FavoriteModel) Exists(ctx context.Context, activityID uint64, userID string) (bool, error) {
	var count int64
	err := m.db.WithContext(ctx).
		Model(&Favorite{}).
		Where("activity_id = ? AND user_id = ?", activityID, userID).
		Count(&count).Error
	return count > 0, err
}

// Delete 取消收藏，没有收藏记录返回 ErrFavoriteNotFound
func (m *FavoriteModel) Delete(ctx context.Context, activityID uint64, userID string) error {
	result := m.db.WithContext(ctx).
		Where("activity_id = ? AND user_id = ?", activityID, userID).
		Delete(&Favorite{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrFavoriteNotFound
	}
	return nil
}

// ListByUser 用户收藏列表，按收藏时间倒序
func (m *FavoriteModel) ListByUser(ctx context.Context, userID string, page Pagination) ([]Favorite, int64, error) {
	page.Normalize()

	db := m.db.WithContext(ctx).
		Model(&Favorite{}).
		Where("user_id = ?", userID).
		Session(&gorm.Session{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count favorites")
	}

	list := make([]Favorite, 0, page.PageSize)
	if total > int64(page.Offset()) {
		err := db.Order("create_time DESC").Order("id DESC").
			Offset(page.Offset()).
			Limit(page.PageSize).
			Find(&list).Error
		if err != nil {
			return nil, 0, err
		}
	}
	return list, total, nil
}

// CountByActivities 批量统计收藏数
func (m *FavoriteModel) CountByActivities(ctx context.Context, activityIDs []uint64) (map[uint64]int64, error) {
	return countGroupByActivity(ctx, m.db, &Favorite{}, activityIDs, "")
}

// Count 活动收藏数
func (m *FavoriteModel) Count(ctx context.Context, activityID uint64) (int64, error) {
	var count int64
	err := m.db.WithContext(ctx).
		Model(&Favorite{}).
		Where("activity_id = ?", activityID).
		Count(&count).Error
	return count, err
}
