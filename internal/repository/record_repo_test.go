package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// 单条查询统一透传 gorm.ErrRecordNotFound，服务层靠它区分 NotFound 和存储故障
func TestGetByIDPropagatesNotFound(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := NewDraftRepository(db).GetByID(ctx, "ghost")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = NewResourceRepository(db).GetByID(ctx, "ghost")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = NewCourseDraftRepository(db).GetByID(ctx, "ghost")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = NewCourseRepository(db).GetByID(ctx, "ghost")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = NewDraftLessonRepository(db).GetByID(ctx, "ghost")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	users := NewUserRepository(db)
	_, err = users.GetByID(ctx, "ghost")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = users.GetByPubkey(ctx, "ghost")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = users.GetByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

// 已发布的草稿再查一遍必须是 NotFound，而不是空记录
func TestDraftGoneAfterPublish(t *testing.T) {
	db := newTestDB(t)
	repo := NewPublishRepository(db)
	seedDraft(t, db, "d1", "u1")

	_, err := repo.PublishResource(context.Background(), "d1", "u1", "note1")
	require.NoError(t, err)

	_, err = NewDraftRepository(db).GetByID(context.Background(), "d1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
