package repository

import (
	"Atheneum/internal/model"
	"context"

	"gorm.io/gorm"
)

type DraftLessonRepo interface {
	Create(ctx context.Context, lesson *model.DraftLesson) error
	GetByID(ctx context.Context, id string) (*model.DraftLesson, error)
	GetByCourseDraft(ctx context.Context, courseDraftID string) ([]*model.DraftLesson, error)
	// GetByDraftID 跨课程查找引用同一 Draft 的所有课时，重复引用检测用
	GetByDraftID(ctx context.Context, draftID string) ([]*model.DraftLesson, error)
	// RetargetToResource 把课时引用从 Draft 改写为同 ID 的 Resource
	RetargetToResource(ctx context.Context, lessonID string, resourceID string) error
	UpdateIndex(ctx context.Context, lessonID string, index int) error
	Delete(ctx context.Context, id string) error
}

type draftLessonRepoImpl struct {
	db *gorm.DB
}

func NewDraftLessonRepository(db *gorm.DB) DraftLessonRepo {
	return &draftLessonRepoImpl{db: db}
}

func (s *draftLessonRepoImpl) Create(ctx context.Context, lesson *model.DraftLesson) error {
	return s.db.WithContext(ctx).Create(lesson).Error
}

func (s *draftLessonRepoImpl) GetByID(ctx context.Context, id string) (*model.DraftLesson, error) {
	var lesson model.DraftLesson
	err := s.db.WithContext(ctx).First(&lesson, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (s *draftLessonRepoImpl) GetByCourseDraft(ctx context.Context, courseDraftID string) ([]*model.DraftLesson, error) {
	var lessons []*model.DraftLesson
	err := s.db.WithContext(ctx).
		Where("course_draft_id = ?", courseDraftID).
		Order("lesson_index ASC, created_at ASC").
		Find(&lessons).Error
	if err != nil {
		return nil, err
	}
	return lessons, nil
}

func (s *draftLessonRepoImpl) GetByDraftID(ctx context.Context, draftID string) ([]*model.DraftLesson, error) {
	var lessons []*model.DraftLesson
	err := s.db.WithContext(ctx).
		Where("draft_id = ?", draftID).
		Order("created_at ASC").
		Find(&lessons).Error
	if err != nil {
		return nil, err
	}
	return lessons, nil
}

func (s *draftLessonRepoImpl) RetargetToResource(ctx context.Context, lessonID string, resourceID string) error {
	return s.db.WithContext(ctx).Model(&model.DraftLesson{}).
		Where("id = ?", lessonID).
		Updates(map[string]interface{}{
			"resource_id": resourceID,
			"draft_id":    nil,
		}).Error
}

func (s *draftLessonRepoImpl) UpdateIndex(ctx context.Context, lessonID string, index int) error {
	return s.db.WithContext(ctx).Model(&model.DraftLesson{}).
		Where("id = ?", lessonID).
		Update("lesson_index", index).Error
}

func (s *draftLessonRepoImpl) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&model.DraftLesson{}, "id = ?", id).Error
}
