package service

import (
	"Atheneum/internal/api/config"
	"Atheneum/internal/api/dto"
	"Atheneum/internal/model"
	"Atheneum/internal/pkg/security"
	"Atheneum/internal/repository"
	"context"
	"errors"
	"fmt"
	log "log/slog"

	"github.com/google/uuid"
	"github.com/nbd-wtf/go-nostr"
	"gorm.io/gorm"
)

type UserService interface {
	Register(ctx context.Context, req *dto.RegisterDTO) (*dto.TokenDTO, error)
	Login(ctx context.Context, req *dto.LoginDTO) (*dto.TokenDTO, error)
}

type userServiceImpl struct {
	userRepo repository.UserRepo
}

func NewUserService(userRepo repository.UserRepo) UserService {
	return &userServiceImpl{userRepo: userRepo}
}

func (s *userServiceImpl) Register(ctx context.Context, req *dto.RegisterDTO) (*dto.TokenDTO, error) {
	if _, err := s.userRepo.GetByUsername(ctx, req.Username); err == nil {
		return nil, ErrUserExist
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: check username", UnExpectedError)
	}

	pubkey := req.Pubkey
	encryptedPrivkey := ""
	if req.Privkey != "" {
		// 托管私钥：公钥从私钥推导，忽略请求里给的
		derived, err := nostr.GetPublicKey(req.Privkey)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid privkey", ErrParamInvalid)
		}
		pubkey = derived

		encKey := config.Cfg.Nostr.PrivkeyEncryptionKey
		if encKey == "" {
			return nil, ErrPrivkeyUnavailable
		}
		if encryptedPrivkey, err = security.EncryptPrivkey(req.Privkey, encKey); err != nil {
			log.ErrorContext(ctx, "privkey encryption failed", "err", err)
			return nil, fmt.Errorf("%w: encrypt privkey", UnExpectedError)
		}
	}
	if pubkey == "" {
		return nil, fmt.Errorf("%w: pubkey required when no privkey is submitted", ErrParamInvalid)
	}

	if _, err := s.userRepo.GetByPubkey(ctx, pubkey); err == nil {
		return nil, ErrUserExist
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: check pubkey", UnExpectedError)
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: hash password", UnExpectedError)
	}

	user := &model.User{
		ID:               uuid.NewString(),
		Pubkey:           pubkey,
		Username:         req.Username,
		PasswordHash:     hash,
		EncryptedPrivkey: encryptedPrivkey,
	}
	if err = s.userRepo.Create(ctx, user); err != nil {
		if isDuplicateEntry(err) {
			return nil, ErrUserExist
		}
		log.ErrorContext(ctx, "create user failed", "err", err)
		return nil, fmt.Errorf("%w: create user", UnExpectedError)
	}

	return s.issueToken(user)
}

func (s *userServiceImpl) Login(ctx context.Context, req *dto.LoginDTO) (*dto.TokenDTO, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: load user", UnExpectedError)
	}

	if err = security.CheckPasswordHash(req.Password, user.PasswordHash); err != nil {
		return nil, ErrPasswordIncorrect
	}

	return s.issueToken(user)
}

func (s *userServiceImpl) issueToken(user *model.User) (*dto.TokenDTO, error) {
	var roles []string
	if user.IsAdmin {
		roles = append(roles, "admin")
	}
	token, err := security.GenerateToken(user.ID, user.Pubkey, roles)
	if err != nil {
		return nil, fmt.Errorf("%w: issue token", UnExpectedError)
	}
	return &dto.TokenDTO{Token: token, UserID: user.ID, Pubkey: user.Pubkey}, nil
}
