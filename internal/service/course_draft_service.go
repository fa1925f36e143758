package service

import (
	"Atheneum/internal/api/dto"
	"Atheneum/internal/model"
	"Atheneum/internal/repository"
	"context"
	"errors"
	"fmt"
	log "log/slog"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

type CourseDraftService interface {
	Create(ctx context.Context, userID string, req *dto.CourseDraftBaseDTO) (*model.CourseDraft, error)
	Get(ctx context.Context, draftID, viewerID string) (*model.CourseDraft, error)
	List(ctx context.Context, userID string) ([]*model.CourseDraft, error)
	Update(ctx context.Context, draftID, userID string, req *dto.CourseDraftBaseDTO) (*model.CourseDraft, error)
	Delete(ctx context.Context, draftID, userID string) error

	AddLesson(ctx context.Context, draftID, userID string, req *dto.DraftLessonAddDTO) (*model.DraftLesson, error)
	RemoveLesson(ctx context.Context, draftID, lessonID, userID string) error
	ReorderLessons(ctx context.Context, draftID, userID string, req *dto.DraftLessonReorderDTO) error
}

type courseDraftServiceImpl struct {
	courseDraftRepo repository.CourseDraftRepo
	draftLessonRepo repository.DraftLessonRepo
	draftRepo       repository.DraftRepo
	resourceRepo    repository.ResourceRepo
}

func NewCourseDraftService(
	courseDraftRepo repository.CourseDraftRepo,
	draftLessonRepo repository.DraftLessonRepo,
	draftRepo repository.DraftRepo,
	resourceRepo repository.ResourceRepo,
) CourseDraftService {
	return &courseDraftServiceImpl{
		courseDraftRepo: courseDraftRepo,
		draftLessonRepo: draftLessonRepo,
		draftRepo:       draftRepo,
		resourceRepo:    resourceRepo,
	}
}

func (s *courseDraftServiceImpl) Create(ctx context.Context, userID string, req *dto.CourseDraftBaseDTO) (*model.CourseDraft, error) {
	draft := &model.CourseDraft{}
	if err := copier.Copy(draft, req); err != nil {
		return nil, fmt.Errorf("%w: copy course draft fields", UnExpectedError)
	}
	draft.ID = uuid.NewString()
	draft.UserID = userID

	if err := s.courseDraftRepo.Create(ctx, draft); err != nil {
		log.ErrorContext(ctx, "create course draft failed", "err", err)
		return nil, fmt.Errorf("%w: create course draft", UnExpectedError)
	}
	return draft, nil
}

func (s *courseDraftServiceImpl) Get(ctx context.Context, draftID, viewerID string) (*model.CourseDraft, error) {
	draft, err := s.courseDraftRepo.GetByID(ctx, draftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseDraftNotFound
		}
		return nil, fmt.Errorf("%w: load course draft", UnExpectedError)
	}
	if draft.UserID != viewerID {
		return nil, ErrAccessDenied
	}
	return draft, nil
}

func (s *courseDraftServiceImpl) List(ctx context.Context, userID string) ([]*model.CourseDraft, error) {
	drafts, err := s.courseDraftRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list course drafts", UnExpectedError)
	}
	return drafts, nil
}

func (s *courseDraftServiceImpl) Update(ctx context.Context, draftID, userID string, req *dto.CourseDraftBaseDTO) (*model.CourseDraft, error) {
	draft, err := s.Get(ctx, draftID, userID)
	if err != nil {
		return nil, err
	}

	if err = copier.Copy(draft, req); err != nil {
		return nil, fmt.Errorf("%w: copy course draft fields", UnExpectedError)
	}
	if err = s.courseDraftRepo.Update(ctx, draft); err != nil {
		log.ErrorContext(ctx, "update course draft failed", "draft_id", draftID, "err", err)
		return nil, fmt.Errorf("%w: update course draft", UnExpectedError)
	}
	return draft, nil
}

func (s *courseDraftServiceImpl) Delete(ctx context.Context, draftID, userID string) error {
	if _, err := s.Get(ctx, draftID, userID); err != nil {
		return err
	}
	if err := s.courseDraftRepo.Delete(ctx, draftID); err != nil {
		log.ErrorContext(ctx, "delete course draft failed", "draft_id", draftID, "err", err)
		return fmt.Errorf("%w: delete course draft", UnExpectedError)
	}
	return nil
}

func (s *courseDraftServiceImpl) AddLesson(ctx context.Context, draftID, userID string, req *dto.DraftLessonAddDTO) (*model.DraftLesson, error) {
	if (req.DraftID == nil) == (req.ResourceID == nil) {
		return nil, fmt.Errorf("%w: exactly one of draftId or resourceId", ErrParamInvalid)
	}

	courseDraft, err := s.Get(ctx, draftID, userID)
	if err != nil {
		return nil, err
	}

	// 引用目标必须真实存在且属于同一用户
	if req.DraftID != nil {
		target, err := s.draftRepo.GetByID(ctx, *req.DraftID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrDraftNotFound
			}
			return nil, fmt.Errorf("%w: load referenced draft", UnExpectedError)
		}
		if target.UserID != userID {
			return nil, ErrAccessDenied
		}
	} else {
		target, err := s.resourceRepo.GetByID(ctx, *req.ResourceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrResourceNotFound
			}
			return nil, fmt.Errorf("%w: load referenced resource", UnExpectedError)
		}
		if target.UserID != userID {
			return nil, ErrAccessDenied
		}
	}

	index := req.Index
	if index == 0 {
		index = len(courseDraft.Lessons)
	}

	lesson := &model.DraftLesson{
		ID:            uuid.NewString(),
		CourseDraftID: draftID,
		Index:         index,
		DraftID:       req.DraftID,
		ResourceID:    req.ResourceID,
	}
	if err = s.draftLessonRepo.Create(ctx, lesson); err != nil {
		log.ErrorContext(ctx, "add lesson failed", "course_draft_id", draftID, "err", err)
		return nil, fmt.Errorf("%w: add lesson", UnExpectedError)
	}
	return lesson, nil
}

func (s *courseDraftServiceImpl) RemoveLesson(ctx context.Context, draftID, lessonID, userID string) error {
	if _, err := s.Get(ctx, draftID, userID); err != nil {
		return err
	}

	lesson, err := s.draftLessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseDraftNotFound
		}
		return fmt.Errorf("%w: load lesson", UnExpectedError)
	}
	if lesson.CourseDraftID != draftID {
		return ErrAccessDenied
	}

	if err = s.draftLessonRepo.Delete(ctx, lessonID); err != nil {
		log.ErrorContext(ctx, "remove lesson failed", "lesson_id", lessonID, "err", err)
		return fmt.Errorf("%w: remove lesson", UnExpectedError)
	}
	// 剩余课时顺位前移，保持索引连续
	remaining, err := s.draftLessonRepo.GetByCourseDraft(ctx, draftID)
	if err != nil {
		return fmt.Errorf("%w: reload lessons", UnExpectedError)
	}
	for i, l := range remaining {
		if l.Index == i {
			continue
		}
		if err = s.draftLessonRepo.UpdateIndex(ctx, l.ID, i); err != nil {
			return fmt.Errorf("%w: renumber lessons", UnExpectedError)
		}
	}
	return nil
}

func (s *courseDraftServiceImpl) ReorderLessons(ctx context.Context, draftID, userID string, req *dto.DraftLessonReorderDTO) error {
	courseDraft, err := s.Get(ctx, draftID, userID)
	if err != nil {
		return err
	}

	// 重排必须给全量列表，防止部分提交把索引弄出洞
	if len(req.LessonIDs) != len(courseDraft.Lessons) {
		return fmt.Errorf("%w: reorder must list all %d lessons", ErrParamInvalid, len(courseDraft.Lessons))
	}
	known := make(map[string]struct{}, len(courseDraft.Lessons))
	for _, l := range courseDraft.Lessons {
		known[l.ID] = struct{}{}
	}
	seen := make(map[string]struct{}, len(req.LessonIDs))
	for _, id := range req.LessonIDs {
		if _, ok := known[id]; !ok {
			return fmt.Errorf("%w: unknown lesson %s", ErrParamInvalid, id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate lesson %s", ErrParamInvalid, id)
		}
		seen[id] = struct{}{}
	}

	for i, id := range req.LessonIDs {
		if err = s.draftLessonRepo.UpdateIndex(ctx, id, i); err != nil {
			log.ErrorContext(ctx, "reorder lesson failed", "lesson_id", id, "err", err)
			return fmt.Errorf("%w: reorder lessons", UnExpectedError)
		}
	}
	return nil
}
