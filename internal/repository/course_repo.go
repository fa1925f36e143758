package repository

import (
	"Atheneum/internal/model"
	"context"

	"gorm.io/gorm"
)

type CourseRepo interface {
	GetByID(ctx context.Context, id string) (*model.Course, error)
	GetByUser(ctx context.Context, userID string) ([]*model.Course, error)
	// UpdateNote 重发布的窄事务：只换 noteId，事务内复核属主
	UpdateNote(ctx context.Context, id, userID, noteID string) error
}

type courseRepoImpl struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepo {
	return &courseRepoImpl{db: db}
}

func (s *courseRepoImpl) GetByID(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	err := s.db.WithContext(ctx).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("lesson_index ASC")
		}).
		First(&course, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (s *courseRepoImpl) GetByUser(ctx context.Context, userID string) ([]*model.Course, error) {
	var courses []*model.Course
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&courses).Error
	if err != nil {
		return nil, err
	}
	return courses, nil
}

func (s *courseRepoImpl) UpdateNote(ctx context.Context, id, userID, noteID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var course model.Course
		if err := tx.First(&course, "id = ?", id).Error; err != nil {
			return err
		}
		if course.UserID != userID {
			return ErrOwnerMismatch
		}
		return tx.Model(&course).Update("note_id", noteID).Error
	})
}
