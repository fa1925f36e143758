package repository

import (
	"Atheneum/internal/model"
	"context"

	"gorm.io/gorm"
)

type ResourceRepo interface {
	GetByID(ctx context.Context, id string) (*model.Resource, error)
	GetByIDs(ctx context.Context, ids []string) ([]*model.Resource, error)
	GetByUser(ctx context.Context, userID string) ([]*model.Resource, error)
	// UpdateNote 重发布的窄事务：只换 noteId 和 price，事务内复核属主
	UpdateNote(ctx context.Context, id, userID, noteID string, price int) error
}

type resourceRepoImpl struct {
	db *gorm.DB
}

func NewResourceRepository(db *gorm.DB) ResourceRepo {
	return &resourceRepoImpl{db: db}
}

func (s *resourceRepoImpl) GetByID(ctx context.Context, id string) (*model.Resource, error) {
	var resource model.Resource
	err := s.db.WithContext(ctx).First(&resource, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &resource, nil
}

func (s *resourceRepoImpl) GetByIDs(ctx context.Context, ids []string) ([]*model.Resource, error) {
	var resources []*model.Resource
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&resources).Error
	if err != nil {
		return nil, err
	}
	return resources, nil
}

func (s *resourceRepoImpl) GetByUser(ctx context.Context, userID string) ([]*model.Resource, error) {
	var resources []*model.Resource
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&resources).Error
	if err != nil {
		return nil, err
	}
	return resources, nil
}

func (s *resourceRepoImpl) UpdateNote(ctx context.Context, id, userID, noteID string, price int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var resource model.Resource
		if err := tx.First(&resource, "id = ?", id).Error; err != nil {
			return err
		}
		if resource.UserID != userID {
			return ErrOwnerMismatch
		}
		return tx.Model(&resource).Updates(map[string]interface{}{
			"note_id": noteID,
			"price":   price,
		}).Error
	})
}
