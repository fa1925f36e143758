package repository

import (
	"Atheneum/internal/model"
	"context"

	"gorm.io/gorm"
)

type UserRepo interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByPubkey(ctx context.Context, pubkey string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateEncryptedPrivkey(ctx context.Context, id string, encrypted string) error
}

type userRepoImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepo {
	return &userRepoImpl{db: db}
}

func (s *userRepoImpl) Create(ctx context.Context, user *model.User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

func (s *userRepoImpl) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *userRepoImpl) GetByPubkey(ctx context.Context, pubkey string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).First(&user, "pubkey = ?", pubkey).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *userRepoImpl) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).First(&user, "username = ?", username).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *userRepoImpl) UpdateEncryptedPrivkey(ctx context.Context, id string, encrypted string) error {
	return s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("encrypted_privkey", encrypted).Error
}
