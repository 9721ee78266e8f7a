package model

import (
	"context"
	"testing"
	"time"

	"haojuleling/common/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newModels(t *testing.T) (*gorm.DB, *ActivityModel, *EnrollmentModel, *FavoriteModel) {
	t.Helper()
	db := testkit.NewDB(t, &Activity{}, &Enrollment{}, &Favorite{})
	return db, NewActivityModel(db), NewEnrollmentModel(db), NewFavoriteModel(db)
}

func seedActivity(t *testing.T, m *ActivityModel, a *Activity) *Activity {
	t.Helper()
	if a.Type == "" {
		a.Type = "outdoor"
	}
	if a.CreatorID == "" {
		a.CreatorID = "creator"
	}
	if a.Status == "" {
		a.Status = StatusApproved
	}
	require.NoError(t, m.Create(context.Background(), a))
	return a
}

func boolPtr(b bool) *bool { return &b }

func TestIncrEnrollCountRespectsCapacity(t *testing.T) {
	ctx := context.Background()
	_, activities, _, _ := newModels(t)
	a := seedActivity(t, activities, &Activity{Title: "徒步", MaxParticipants: 2})

	ok, err := activities.IncrEnrollCount(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = activities.IncrEnrollCount(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = activities.IncrEnrollCount(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := activities.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.EnrollCount)
}

func TestIncrEnrollCountUnlimited(t *testing.T) {
	ctx := context.Background()
	_, activities, _, _ := newModels(t)
	a := seedActivity(t, activities, &Activity{Title: "不限人数"})

	for i := 0; i < 5; i++ {
		ok, err := activities.IncrEnrollCount(ctx, a.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestDecrCounterClampsAtZero(t *testing.T) {
	ctx := context.Background()
	_, activities, _, _ := newModels(t)
	a := seedActivity(t, activities, &Activity{Title: "计数"})

	require.NoError(t, activities.IncrFavoriteCount(ctx, a.ID))

	clamped, err := activities.DecrFavoriteCount(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, clamped)

	clamped, err = activities.DecrFavoriteCount(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, clamped)

	clamped, err = activities.DecrEnrollCount(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, clamped)

	got, err := activities.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.FavoriteCount)
	assert.Equal(t, int64(0), got.EnrollCount)

	_, err = activities.DecrEnrollCount(ctx, a.ID+100)
	assert.ErrorIs(t, err, ErrActivityNotFound)
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()
	_, activities, _, _ := newModels(t)

	start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	later := start.Add(48 * time.Hour)
	seedActivity(t, activities, &Activity{Title: "周末 Hiking", IsHot: true, StartTime: &start})
	seedActivity(t, activities, &Activity{Title: "hiking 夜爬", Type: "sport", StartTime: &later})
	seedActivity(t, activities, &Activity{Title: "读书会", IsRecommend: true, CreatorID: "u1"})
	seedActivity(t, activities, &Activity{Title: "100%_真实", Status: StatusPending})
	deleted := seedActivity(t, activities, &Activity{Title: "hiking 已删", CreatorID: "u1"})
	require.NoError(t, activities.SoftDelete(ctx, deleted.ID))

	tests := []struct {
		name  string
		query ListQuery
		want  int64
	}{
		{"all visible", ListQuery{}, 4},
		{"keyword case insensitive", ListQuery{SearchKeyword: "HIKING"}, 2},
		{"keyword escapes wildcard", ListQuery{SearchKeyword: "%_"}, 1},
		{"hot", ListQuery{IsHot: boolPtr(true)}, 1},
		{"not hot", ListQuery{IsHot: boolPtr(false)}, 3},
		{"recommend", ListQuery{IsRecommend: boolPtr(true)}, 1},
		{"type", ListQuery{Type: "sport"}, 1},
		{"status", ListQuery{Status: StatusPending}, 1},
		{"creator", ListQuery{CreatorID: "u1"}, 1},
		{"start range", ListQuery{StartFrom: &start, StartTo: &start}, 1},
		{"creator sees own deleted", ListQuery{SearchKeyword: "hiking", ViewerID: "u1"}, 3},
		{"admin sees deleted", ListQuery{IncludeDelete: true}, 5},
		{"combined", ListQuery{SearchKeyword: "hiking", IsHot: boolPtr(true)}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.query
			result, err := activities.List(ctx, &q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Total)
			assert.Len(t, result.List, int(tt.want))
		})
	}
}

func TestListPagination(t *testing.T) {
	ctx := context.Background()
	_, activities, _, _ := newModels(t)
	for i := 0; i < 12; i++ {
		seedActivity(t, activities, &Activity{Title: "活动"})
	}

	result, err := activities.List(ctx, &ListQuery{Pagination: Pagination{Page: 2, PageSize: 5}})
	require.NoError(t, err)
	assert.Equal(t, int64(12), result.Total)
	assert.Len(t, result.List, 5)
	assert.Equal(t, 2, result.Page)

	// 按创建时间倒序，同一时间按 ID 倒序
	for i := 1; i < len(result.List); i++ {
		assert.Greater(t, result.List[i-1].ID, result.List[i].ID)
	}

	result, err = activities.List(ctx, &ListQuery{Pagination: Pagination{Page: 9, PageSize: 5}})
	require.NoError(t, err)
	assert.Equal(t, int64(12), result.Total)
	assert.Empty(t, result.List)

	_, err = activities.List(ctx, &ListQuery{Pagination: Pagination{Page: MaxPage + 1}})
	assert.ErrorIs(t, err, ErrPageTooDeep)
}

func TestEnrollmentActiveKey(t *testing.T) {
	ctx := context.Background()
	_, activities, enrolls, _ := newModels(t)
	a := seedActivity(t, activities, &Activity{Title: "报名"})

	first := &Enrollment{ActivityID: a.ID, UserID: "u1"}
	require.NoError(t, enrolls.Create(ctx, first))

	err := enrolls.Create(ctx, &Enrollment{ActivityID: a.ID, UserID: "u1"})
	assert.ErrorIs(t, err, ErrEnrollmentDuplicate)

	require.NoError(t, enrolls.Cancel(ctx, first.ID, time.Now()))
	assert.ErrorIs(t, enrolls.Cancel(ctx, first.ID, time.Now()), ErrEnrollmentNotFound)

	_, err = enrolls.FindActive(ctx, a.ID, "u1")
	assert.ErrorIs(t, err, ErrEnrollmentNotFound)

	// 取消后可以重新报名
	require.NoError(t, enrolls.Create(ctx, &Enrollment{ActivityID: a.ID, UserID: "u1"}))
	count, err := enrolls.CountActive(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	list, total, err := enrolls.List(ctx, &EnrollListQuery{ActivityID: a.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 2)

	_, total, err = enrolls.List(ctx, &EnrollListQuery{ActivityID: a.ID, Status: EnrollStatusCancelled})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestFavoriteUnique(t *testing.T) {
	ctx := context.Background()
	_, activities, _, favorites := newModels(t)
	a := seedActivity(t, activities, &Activity{Title: "收藏"})
	b := seedActivity(t, activities, &Activity{Title: "收藏2"})

	require.NoError(t, favorites.Create(ctx, &Favorite{ActivityID: a.ID, UserID: "u1"}))
	assert.ErrorIs(t, favorites.Create(ctx, &Favorite{ActivityID: a.ID, UserID: "u1"}), ErrFavoriteExists)
	require.NoError(t, favorites.Create(ctx, &Favorite{ActivityID: b.ID, UserID: "u1"}))
	require.NoError(t, favorites.Create(ctx, &Favorite{ActivityID: a.ID, UserID: "u2"}))

	counts, err := favorites.CountByActivities(ctx, []uint64{a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[a.ID])
	assert.Equal(t, int64(1), counts[b.ID])

	list, total, err := favorites.ListByUser(ctx, "u1", Pagination{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 2)

	require.NoError(t, favorites.Delete(ctx, a.ID, "u1"))
	assert.ErrorIs(t, favorites.Delete(ctx, a.ID, "u1"), ErrFavoriteNotFound)

	exists, err := favorites.Exists(ctx, a.ID, "u1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRefreshSnapshots(t *testing.T) {
	ctx := context.Background()
	_, activities, enrolls, _ := newModels(t)
	a := seedActivity(t, activities, &Activity{Title: "快照", CreatorID: "u1", CreatorNickName: "旧"})
	require.NoError(t, enrolls.Create(ctx, &Enrollment{ActivityID: a.ID, UserID: "u1", UserNickName: "旧"}))

	rows, err := activities.RefreshCreatorSnapshot(ctx, "u1", "新", "https://img/new.png")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
	rows, err = enrolls.RefreshUserSnapshot(ctx, "u1", "新", "https://img/new.png")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	got, err := activities.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "新", got.CreatorNickName)
	e, err := enrolls.FindActive(ctx, a.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, "新", e.UserNickName)
	assert.Equal(t, "https://img/new.png", e.UserAvatarURL)
}
