package repository

import (
	"Atheneum/internal/model"
	"context"

	"gorm.io/gorm"
)

type LessonRepo interface {
	GetByCourse(ctx context.Context, courseID string) ([]*model.Lesson, error)
	GetByDraftID(ctx context.Context, draftID string) ([]*model.Lesson, error)
}

type lessonRepoImpl struct {
	db *gorm.DB
}

func NewLessonRepository(db *gorm.DB) LessonRepo {
	return &lessonRepoImpl{db: db}
}

func (s *lessonRepoImpl) GetByCourse(ctx context.Context, courseID string) ([]*model.Lesson, error) {
	var lessons []*model.Lesson
	err := s.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("lesson_index ASC").
		Find(&lessons).Error
	if err != nil {
		return nil, err
	}
	return lessons, nil
}

func (s *lessonRepoImpl) GetByDraftID(ctx context.Context, draftID string) ([]*model.Lesson, error) {
	var lessons []*model.Lesson
	err := s.db.WithContext(ctx).Where("draft_id = ?", draftID).Find(&lessons).Error
	if err != nil {
		return nil, err
	}
	return lessons, nil
}
