package repository

import (
	"Atheneum/internal/model"
	"Atheneum/internal/pkg/consts"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.Draft{}, &model.CourseDraft{}, &model.DraftLesson{},
		&model.Resource{}, &model.Course{}, &model.Lesson{},
		&model.ViewCount{}, &model.ViewDailyCount{},
	))
	return db
}

func seedDraft(t *testing.T, db *gorm.DB, id, userID string) *model.Draft {
	t.Helper()
	draft := &model.Draft{
		ID:      id,
		UserID:  userID,
		Type:    consts.DraftTypeDocument,
		Title:   "intro",
		Content: "hello",
	}
	require.NoError(t, db.Create(draft).Error)
	return draft
}

func TestPublishResourceConsumesDraft(t *testing.T) {
	db := newTestDB(t)
	repo := NewPublishRepository(db)
	ctx := context.Background()

	seedDraft(t, db, "d1", "u1")
	draftID := "d1"
	require.NoError(t, db.Create(&model.CourseDraft{ID: "cd1", UserID: "u1", Title: "course"}).Error)
	require.NoError(t, db.Create(&model.DraftLesson{ID: "dl1", CourseDraftID: "cd1", Index: 0, DraftID: &draftID}).Error)

	resource, err := repo.PublishResource(ctx, "d1", "u1", "note1")
	require.NoError(t, err)
	assert.Equal(t, "d1", resource.ID)
	assert.Equal(t, "note1", resource.NoteID)

	// 草稿被消费
	err = db.First(&model.Draft{}, "id = ?", "d1").Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// 课时引用被改写到新资源
	var dl model.DraftLesson
	require.NoError(t, db.First(&dl, "id = ?", "dl1").Error)
	require.NotNil(t, dl.ResourceID)
	assert.Equal(t, "d1", *dl.ResourceID)
	assert.Nil(t, dl.DraftID)
}

func TestPublishResourceVideoKeepsVideoID(t *testing.T) {
	db := newTestDB(t)
	repo := NewPublishRepository(db)

	require.NoError(t, db.Create(&model.Draft{
		ID: "v1", UserID: "u1", Type: consts.DraftTypeVideo, Title: "clip", VideoURL: "https://cdn.example/v1.mp4",
	}).Error)

	resource, err := repo.PublishResource(context.Background(), "v1", "u1", "note1")
	require.NoError(t, err)
	assert.Equal(t, "v1", resource.VideoID)
	assert.Equal(t, "https://cdn.example/v1.mp4", resource.VideoURL)
}

// 预检查之后、事务之前属主可能变化，事务内必须重读复核
func TestPublishResourceOwnerRecheck(t *testing.T) {
	db := newTestDB(t)
	repo := NewPublishRepository(db)

	seedDraft(t, db, "d1", "u1")

	_, err := repo.PublishResource(context.Background(), "d1", "intruder", "note1")
	assert.ErrorIs(t, err, ErrOwnerMismatch)

	// 整个事务回滚，草稿原样保留
	var draft model.Draft
	require.NoError(t, db.First(&draft, "id = ?", "d1").Error)
	var count int64
	db.Model(&model.Resource{}).Count(&count)
	assert.Zero(t, count)
}

func TestPublishResourceTwice(t *testing.T) {
	db := newTestDB(t)
	repo := NewPublishRepository(db)
	ctx := context.Background()

	seedDraft(t, db, "d1", "u1")
	_, err := repo.PublishResource(ctx, "d1", "u1", "note1")
	require.NoError(t, err)

	// 草稿已被消费，重复发布表现为 NotFound
	_, err = repo.PublishResource(ctx, "d1", "u1", "note2")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func seedCourseDraft(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Create(&model.CourseDraft{ID: "cd1", UserID: "u1", Title: "course"}).Error)
	require.NoError(t, db.Create(&model.Resource{ID: "r1", UserID: "u1", NoteID: "n1"}).Error)
	require.NoError(t, db.Create(&model.Resource{ID: "r2", UserID: "u1", NoteID: "n2"}).Error)
	r1, r2 := "r1", "r2"
	require.NoError(t, db.Create(&model.DraftLesson{ID: "dl1", CourseDraftID: "cd1", Index: 0, ResourceID: &r2}).Error)
	require.NoError(t, db.Create(&model.DraftLesson{ID: "dl2", CourseDraftID: "cd1", Index: 1, ResourceID: &r1}).Error)
}

func TestPublishCourseBuildsLessonTable(t *testing.T) {
	db := newTestDB(t)
	repo := NewPublishRepository(db)
	ctx := context.Background()

	seedCourseDraft(t, db)

	course, lessons, err := repo.PublishCourse(ctx, "cd1", "u1", "note1", true)
	require.NoError(t, err)
	assert.Equal(t, "cd1", course.ID)
	assert.True(t, course.SubmissionRequired)
	require.Len(t, lessons, 2)

	// 课时 ID 和顺序原样继承
	assert.Equal(t, "dl1", lessons[0].ID)
	assert.Equal(t, 0, lessons[0].Index)
	assert.Equal(t, "r2", *lessons[0].ResourceID)
	assert.Equal(t, "dl2", lessons[1].ID)
	assert.Equal(t, 1, lessons[1].Index)

	// 草稿侧全部消费
	var count int64
	db.Model(&model.CourseDraft{}).Count(&count)
	assert.Zero(t, count)
	db.Model(&model.DraftLesson{}).Count(&count)
	assert.Zero(t, count)
}

func TestPublishCourseRejectsUnresolvedLesson(t *testing.T) {
	db := newTestDB(t)
	repo := NewPublishRepository(db)

	require.NoError(t, db.Create(&model.CourseDraft{ID: "cd1", UserID: "u1", Title: "course"}).Error)
	draftID := "still-a-draft"
	require.NoError(t, db.Create(&model.DraftLesson{ID: "dl1", CourseDraftID: "cd1", Index: 0, DraftID: &draftID}).Error)

	_, _, err := repo.PublishCourse(context.Background(), "cd1", "u1", "note1", false)
	assert.ErrorIs(t, err, ErrLessonUnresolved)

	// 回滚后草稿完好
	var count int64
	db.Model(&model.CourseDraft{}).Count(&count)
	assert.Equal(t, int64(1), count)
	db.Model(&model.Course{}).Count(&count)
	assert.Zero(t, count)
}

func TestPublishCourseOwnerRecheck(t *testing.T) {
	db := newTestDB(t)
	repo := NewPublishRepository(db)

	seedCourseDraft(t, db)

	_, _, err := repo.PublishCourse(context.Background(), "cd1", "intruder", "note1", false)
	assert.ErrorIs(t, err, ErrOwnerMismatch)
}
