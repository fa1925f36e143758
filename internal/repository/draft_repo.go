package repository

import (
	"Atheneum/internal/model"
	"context"

	"gorm.io/gorm"
)

type DraftRepo interface {
	Create(ctx context.Context, draft *model.Draft) error
	GetByID(ctx context.Context, id string) (*model.Draft, error)
	GetByIDs(ctx context.Context, ids []string) ([]*model.Draft, error)
	GetByUser(ctx context.Context, userID string) ([]*model.Draft, error)
	Update(ctx context.Context, draft *model.Draft) error
	Delete(ctx context.Context, id string) error
}

type draftRepoImpl struct {
	db *gorm.DB
}

func NewDraftRepository(db *gorm.DB) DraftRepo {
	return &draftRepoImpl{db: db}
}

func (s *draftRepoImpl) Create(ctx context.Context, draft *model.Draft) error {
	return s.db.WithContext(ctx).Create(draft).Error
}

func (s *draftRepoImpl) GetByID(ctx context.Context, id string) (*model.Draft, error) {
	var draft model.Draft
	err := s.db.WithContext(ctx).First(&draft, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

func (s *draftRepoImpl) GetByIDs(ctx context.Context, ids []string) ([]*model.Draft, error) {
	var drafts []*model.Draft
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&drafts).Error
	if err != nil {
		return nil, err
	}
	return drafts, nil
}

func (s *draftRepoImpl) GetByUser(ctx context.Context, userID string) ([]*model.Draft, error) {
	var drafts []*model.Draft
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&drafts).Error
	if err != nil {
		return nil, err
	}
	return drafts, nil
}

func (s *draftRepoImpl) Update(ctx context.Context, draft *model.Draft) error {
	return s.db.WithContext(ctx).Save(draft).Error
}

func (s *draftRepoImpl) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&model.Draft{}, "id = ?", id).Error
}
