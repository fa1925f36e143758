package service

import (
	"Atheneum/internal/api/dto"
	"Atheneum/internal/model"
	"Atheneum/internal/pkg/consts"
	"Atheneum/internal/repository"
	"context"
	"errors"
	"fmt"
	log "log/slog"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

type DraftService interface {
	Create(ctx context.Context, userID string, req *dto.DraftBaseDTO) (*model.Draft, error)
	Get(ctx context.Context, draftID, viewerID string) (*model.Draft, error)
	List(ctx context.Context, userID string) ([]*model.Draft, error)
	Update(ctx context.Context, draftID, userID string, req *dto.DraftBaseDTO) (*model.Draft, error)
	Delete(ctx context.Context, draftID, userID string) error
}

type draftServiceImpl struct {
	draftRepo repository.DraftRepo
}

func NewDraftService(draftRepo repository.DraftRepo) DraftService {
	return &draftServiceImpl{draftRepo: draftRepo}
}

// validateContentFields type 决定内容载体：video 要求 videoUrl，其余要求 content
func validateContentFields(req *dto.DraftBaseDTO) error {
	if req.Type == consts.DraftTypeVideo {
		if req.VideoURL == "" {
			return fmt.Errorf("%w: video draft requires videoUrl", ErrParamInvalid)
		}
		return nil
	}
	if req.Content == "" {
		return fmt.Errorf("%w: document draft requires content", ErrParamInvalid)
	}
	return nil
}

func (s *draftServiceImpl) Create(ctx context.Context, userID string, req *dto.DraftBaseDTO) (*model.Draft, error) {
	if err := validateContentFields(req); err != nil {
		return nil, err
	}

	draft := &model.Draft{}
	if err := copier.Copy(draft, req); err != nil {
		return nil, fmt.Errorf("%w: copy draft fields", UnExpectedError)
	}
	draft.ID = uuid.NewString()
	draft.UserID = userID

	if err := s.draftRepo.Create(ctx, draft); err != nil {
		log.ErrorContext(ctx, "create draft failed", "err", err)
		return nil, fmt.Errorf("%w: create draft", UnExpectedError)
	}
	return draft, nil
}

func (s *draftServiceImpl) Get(ctx context.Context, draftID, viewerID string) (*model.Draft, error) {
	draft, err := s.draftRepo.GetByID(ctx, draftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDraftNotFound
		}
		return nil, fmt.Errorf("%w: load draft", UnExpectedError)
	}
	// 草稿是私有工作区，非所有者一律不可见
	if draft.UserID != viewerID {
		return nil, ErrAccessDenied
	}
	return draft, nil
}

func (s *draftServiceImpl) List(ctx context.Context, userID string) ([]*model.Draft, error) {
	drafts, err := s.draftRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list drafts", UnExpectedError)
	}
	return drafts, nil
}

func (s *draftServiceImpl) Update(ctx context.Context, draftID, userID string, req *dto.DraftBaseDTO) (*model.Draft, error) {
	if err := validateContentFields(req); err != nil {
		return nil, err
	}

	draft, err := s.Get(ctx, draftID, userID)
	if err != nil {
		return nil, err
	}

	if err = copier.Copy(draft, req); err != nil {
		return nil, fmt.Errorf("%w: copy draft fields", UnExpectedError)
	}
	// 换类型时清掉另一种载体的残留
	if draft.Type == consts.DraftTypeVideo {
		draft.Content = req.Content
	} else {
		draft.VideoURL = ""
	}

	if err = s.draftRepo.Update(ctx, draft); err != nil {
		log.ErrorContext(ctx, "update draft failed", "draft_id", draftID, "err", err)
		return nil, fmt.Errorf("%w: update draft", UnExpectedError)
	}
	return draft, nil
}

func (s *draftServiceImpl) Delete(ctx context.Context, draftID, userID string) error {
	if _, err := s.Get(ctx, draftID, userID); err != nil {
		return err
	}
	if err := s.draftRepo.Delete(ctx, draftID); err != nil {
		log.ErrorContext(ctx, "delete draft failed", "draft_id", draftID, "err", err)
		return fmt.Errorf("%w: delete draft", UnExpectedError)
	}
	return nil
}
