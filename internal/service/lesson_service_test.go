package service

import (
	"Atheneum/internal/api/dto"
	"Atheneum/internal/model"
	"Atheneum/internal/pkg/consts"
	"Atheneum/internal/repository"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type lessonFixture struct {
	db  *gorm.DB
	svc LessonService
}

func newLessonFixture(t *testing.T) *lessonFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Draft{}, &model.CourseDraft{}, &model.DraftLesson{},
		&model.Resource{}, &model.Course{}, &model.Lesson{},
	))

	draftRepo := repository.NewDraftRepository(db)
	resourceRepo := repository.NewResourceRepository(db)
	draftLessonRepo := repository.NewDraftLessonRepository(db)
	courseDraftRepo := repository.NewCourseDraftRepository(db)
	svc := NewLessonService(draftRepo, resourceRepo, draftLessonRepo, courseDraftRepo, newFakeArchive())

	return &lessonFixture{db: db, svc: svc}
}

// 草稿已经在别处发布成同 ID 资源，但课时行还指着草稿：自愈改写指向
func TestSyncPublishedLessonsRetargets(t *testing.T) {
	f := newLessonFixture(t)
	ctx := context.Background()

	require.NoError(t, f.db.Create(&model.CourseDraft{ID: "cd1", UserID: "u1", Title: "course"}).Error)
	stale := "d1"
	require.NoError(t, f.db.Create(&model.DraftLesson{ID: "dl1", CourseDraftID: "cd1", Index: 0, DraftID: &stale}).Error)
	// 草稿不存在了，同 ID 资源存在
	require.NoError(t, f.db.Create(&model.Resource{ID: "d1", UserID: "u1", NoteID: "n1"}).Error)

	require.NoError(t, f.svc.SyncPublishedLessons(ctx, "cd1"))

	var dl model.DraftLesson
	require.NoError(t, f.db.First(&dl, "id = ?", "dl1").Error)
	require.NotNil(t, dl.ResourceID)
	assert.Equal(t, "d1", *dl.ResourceID)
	assert.Nil(t, dl.DraftID)
}

// 草稿还健在的指向不动
func TestSyncPublishedLessonsLeavesLiveDrafts(t *testing.T) {
	f := newLessonFixture(t)
	ctx := context.Background()

	require.NoError(t, f.db.Create(&model.CourseDraft{ID: "cd1", UserID: "u1", Title: "course"}).Error)
	require.NoError(t, f.db.Create(&model.Draft{ID: "d1", UserID: "u1", Type: consts.DraftTypeDocument, Title: "t", Content: "c"}).Error)
	live := "d1"
	require.NoError(t, f.db.Create(&model.DraftLesson{ID: "dl1", CourseDraftID: "cd1", Index: 0, DraftID: &live}).Error)

	require.NoError(t, f.svc.SyncPublishedLessons(ctx, "cd1"))

	var dl model.DraftLesson
	require.NoError(t, f.db.First(&dl, "id = ?", "dl1").Error)
	assert.NotNil(t, dl.DraftID)
	assert.Nil(t, dl.ResourceID)
}

func TestResolveLessonsStates(t *testing.T) {
	f := newLessonFixture(t)
	ctx := context.Background()

	require.NoError(t, f.db.Create(&model.CourseDraft{ID: "cd1", UserID: "u1", Title: "course"}).Error)
	require.NoError(t, f.db.Create(&model.Draft{ID: "d1", UserID: "u1", Type: consts.DraftTypeDocument, Title: "draft lesson", Content: "wip", Price: 0}).Error)
	require.NoError(t, f.db.Create(&model.Resource{ID: "r1", UserID: "u1", NoteID: "missing-note", Price: 21}).Error)

	d1, r1, ghost := "d1", "r1", "gone"
	require.NoError(t, f.db.Create(&model.DraftLesson{ID: "dl1", CourseDraftID: "cd1", Index: 0, ResourceID: &r1}).Error)
	require.NoError(t, f.db.Create(&model.DraftLesson{ID: "dl2", CourseDraftID: "cd1", Index: 1, DraftID: &d1}).Error)
	require.NoError(t, f.db.Create(&model.DraftLesson{ID: "dl3", CourseDraftID: "cd1", Index: 2, ResourceID: &ghost}).Error)

	var draft model.CourseDraft
	require.NoError(t, f.db.Preload("Lessons").First(&draft, "id = ?", "cd1").Error)

	resolved, err := f.svc.ResolveLessons(ctx, &draft, "u1")
	require.NoError(t, err)
	require.Len(t, resolved, 3)

	byID := make(map[string]*dto.ResolvedLessonDTO)
	for _, l := range resolved {
		byID[l.ID] = l
	}

	// 已发布：事件没归档时透传 NoteError，本地字段照常
	assert.Equal(t, dto.LessonStatePublished, byID["dl1"].State)
	assert.Equal(t, 21, byID["dl1"].Price)
	assert.NotEmpty(t, byID["dl1"].NoteError)

	// 草稿课时：所有者可见内容
	assert.Equal(t, dto.LessonStateDraft, byID["dl2"].State)
	assert.Equal(t, "wip", byID["dl2"].Content)
	assert.False(t, byID["dl2"].Locked)

	// 指向不存在资源：不可用但不炸整页
	assert.Equal(t, dto.LessonStateUnavailable, byID["dl3"].State)
}

func TestResolveLessonsLocksForStrangers(t *testing.T) {
	f := newLessonFixture(t)
	ctx := context.Background()

	require.NoError(t, f.db.Create(&model.CourseDraft{ID: "cd1", UserID: "u1", Title: "course"}).Error)
	require.NoError(t, f.db.Create(&model.Resource{ID: "r1", UserID: "u1", NoteID: "n1", Price: 100}).Error)
	r1 := "r1"
	require.NoError(t, f.db.Create(&model.DraftLesson{ID: "dl1", CourseDraftID: "cd1", Index: 0, ResourceID: &r1}).Error)

	var draft model.CourseDraft
	require.NoError(t, f.db.Preload("Lessons").First(&draft, "id = ?", "cd1").Error)

	resolved, err := f.svc.ResolveLessons(ctx, &draft, "someone-else")
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.True(t, resolved[0].Locked)
	assert.Empty(t, resolved[0].Content)
}

func TestValidateCourseReport(t *testing.T) {
	f := newLessonFixture(t)
	ctx := context.Background()

	require.NoError(t, f.db.Create(&model.CourseDraft{ID: "cd1", UserID: "u1", Title: "course"}).Error)
	require.NoError(t, f.db.Create(&model.Draft{ID: "d1", UserID: "u1", Type: consts.DraftTypeDocument, Title: "t", Content: "c"}).Error)
	require.NoError(t, f.db.Create(&model.Resource{ID: "r1", UserID: "u1", NoteID: "n1"}).Error)
	d1, r1 := "d1", "r1"
	require.NoError(t, f.db.Create(&model.DraftLesson{ID: "dl1", CourseDraftID: "cd1", Index: 0, ResourceID: &r1}).Error)
	require.NoError(t, f.db.Create(&model.DraftLesson{ID: "dl2", CourseDraftID: "cd1", Index: 1, DraftID: &d1}).Error)

	report, err := f.svc.ValidateCourse(ctx, "cd1", "u1")
	require.NoError(t, err)
	assert.False(t, report.Publishable)
	assert.Equal(t, 2, report.LessonCount)
	assert.Equal(t, []string{"dl2"}, report.UnpublishedIDs)

	// 非所有者拿不到报告
	_, err = f.svc.ValidateCourse(ctx, "cd1", "intruder")
	assert.ErrorIs(t, err, ErrAccessDenied)

	// 不存在的课程草稿
	_, err = f.svc.ValidateCourse(ctx, "nope", "u1")
	assert.ErrorIs(t, err, ErrCourseDraftNotFound)
}
