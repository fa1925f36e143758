package repository

import (
	"Atheneum/internal/model"
	"context"

	"gorm.io/gorm"
)

type CourseDraftRepo interface {
	Create(ctx context.Context, draft *model.CourseDraft) error
	GetByID(ctx context.Context, id string) (*model.CourseDraft, error)
	GetByUser(ctx context.Context, userID string) ([]*model.CourseDraft, error)
	Update(ctx context.Context, draft *model.CourseDraft) error
	Delete(ctx context.Context, id string) error
}

type courseDraftRepoImpl struct {
	db *gorm.DB
}

func NewCourseDraftRepository(db *gorm.DB) CourseDraftRepo {
	return &courseDraftRepoImpl{db: db}
}

func (s *courseDraftRepoImpl) Create(ctx context.Context, draft *model.CourseDraft) error {
	return s.db.WithContext(ctx).Create(draft).Error
}

func (s *courseDraftRepoImpl) GetByID(ctx context.Context, id string) (*model.CourseDraft, error) {
	var draft model.CourseDraft
	err := s.db.WithContext(ctx).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("lesson_index ASC, created_at ASC")
		}).
		First(&draft, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

func (s *courseDraftRepoImpl) GetByUser(ctx context.Context, userID string) ([]*model.CourseDraft, error) {
	var drafts []*model.CourseDraft
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&drafts).Error
	if err != nil {
		return nil, err
	}
	return drafts, nil
}

func (s *courseDraftRepoImpl) Update(ctx context.Context, draft *model.CourseDraft) error {
	return s.db.WithContext(ctx).Save(draft).Error
}

func (s *courseDraftRepoImpl) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.DraftLesson{}, "course_draft_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.CourseDraft{}, "id = ?", id).Error
	})
}
