package service

import (
	"Atheneum/internal/api/dto"
	"Atheneum/internal/model"
	"Atheneum/internal/pkg/mongo"
	nostrutil "Atheneum/internal/pkg/nostr"
	"Atheneum/internal/repository"
	"context"
	"errors"
	"fmt"
	log "log/slog"

	"github.com/nbd-wtf/go-nostr"
	"gorm.io/gorm"
)

type LessonService interface {
	// SyncPublishedLessons 自愈课程草稿的课时指向：Draft 已被发布为
	// 同 ID 的 Resource 但课时行还指向 Draft 的，就地改指 Resource
	SyncPublishedLessons(ctx context.Context, courseDraftID string) error
	// ResolveLessons 把课程草稿的课时解析为展示视图，单课失败不阻塞整页
	ResolveLessons(ctx context.Context, draft *model.CourseDraft, viewerID string) ([]*dto.ResolvedLessonDTO, error)
	// ValidateCourse 发布前校验报告，先执行一轮自愈再解析
	ValidateCourse(ctx context.Context, courseDraftID, userID string) (*dto.CourseValidationDTO, error)
}

type lessonServiceImpl struct {
	draftRepo       repository.DraftRepo
	resourceRepo    repository.ResourceRepo
	draftLessonRepo repository.DraftLessonRepo
	courseDraftRepo repository.CourseDraftRepo
	archive         mongo.EventArchive
}

func NewLessonService(
	draftRepo repository.DraftRepo,
	resourceRepo repository.ResourceRepo,
	draftLessonRepo repository.DraftLessonRepo,
	courseDraftRepo repository.CourseDraftRepo,
	archive mongo.EventArchive,
) LessonService {
	return &lessonServiceImpl{
		draftRepo:       draftRepo,
		resourceRepo:    resourceRepo,
		draftLessonRepo: draftLessonRepo,
		courseDraftRepo: courseDraftRepo,
		archive:         archive,
	}
}

func (s *lessonServiceImpl) SyncPublishedLessons(ctx context.Context, courseDraftID string) error {
	lessons, err := s.draftLessonRepo.GetByCourseDraft(ctx, courseDraftID)
	if err != nil {
		return fmt.Errorf("load draft lessons: %w", err)
	}

	var draftIDs []string
	for _, l := range lessons {
		if l.DraftID != nil {
			draftIDs = append(draftIDs, *l.DraftID)
		}
	}
	if len(draftIDs) == 0 {
		return nil
	}

	drafts, err := s.draftRepo.GetByIDs(ctx, draftIDs)
	if err != nil {
		return fmt.Errorf("load drafts: %w", err)
	}
	existing := make(map[string]struct{}, len(drafts))
	for _, d := range drafts {
		existing[d.ID] = struct{}{}
	}

	var missing []string
	for _, id := range draftIDs {
		if _, ok := existing[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	// Draft 消失且同 ID 的 Resource 存在，说明已经走完发布，改写指向
	resources, err := s.resourceRepo.GetByIDs(ctx, missing)
	if err != nil {
		return fmt.Errorf("load resources: %w", err)
	}
	published := make(map[string]struct{}, len(resources))
	for _, r := range resources {
		published[r.ID] = struct{}{}
	}

	for _, l := range lessons {
		if l.DraftID == nil {
			continue
		}
		if _, ok := published[*l.DraftID]; !ok {
			continue
		}
		if err = s.draftLessonRepo.RetargetToResource(ctx, l.ID, *l.DraftID); err != nil {
			log.ErrorContext(ctx, "retarget lesson failed", "lesson_id", l.ID, "resource_id", *l.DraftID, "err", err)
			return fmt.Errorf("%w: retarget lesson %s", UnExpectedError, l.ID)
		}
		log.InfoContext(ctx, "lesson retargeted to published resource", "lesson_id", l.ID, "resource_id", *l.DraftID)
	}

	return nil
}

func (s *lessonServiceImpl) ResolveLessons(ctx context.Context, draft *model.CourseDraft, viewerID string) ([]*dto.ResolvedLessonDTO, error) {
	resolved := make([]*dto.ResolvedLessonDTO, 0, len(draft.Lessons))
	for _, l := range draft.Lessons {
		resolved = append(resolved, s.resolveOne(ctx, draft, l, viewerID))
	}
	return resolved, nil
}

func (s *lessonServiceImpl) resolveOne(ctx context.Context, courseDraft *model.CourseDraft, l *model.DraftLesson, viewerID string) *dto.ResolvedLessonDTO {
	out := &dto.ResolvedLessonDTO{
		ID:         l.ID,
		Index:      l.Index,
		DraftID:    l.DraftID,
		ResourceID: l.ResourceID,
		State:      dto.LessonStateUnavailable,
	}

	switch {
	case l.ResourceID != nil:
		s.fillFromResource(ctx, out, *l.ResourceID, viewerID)
	case l.DraftID != nil:
		s.fillFromDraft(ctx, out, courseDraft, *l.DraftID, viewerID)
	}

	return out
}

func (s *lessonServiceImpl) fillFromResource(ctx context.Context, out *dto.ResolvedLessonDTO, resourceID, viewerID string) {
	resource, err := s.resourceRepo.GetByID(ctx, resourceID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.ErrorContext(ctx, "resource lookup failed", "resource_id", resourceID, "err", err)
		}
		return
	}

	out.State = dto.LessonStatePublished
	out.Price = resource.Price
	out.Locked = resource.Price > 0 && viewerID != resource.UserID

	// 标题等富字段在归档的签名事件里，拉取失败只透传错误不回退状态
	archived, err := s.archive.GetByEventID(ctx, resource.NoteID)
	if err != nil {
		out.NoteError = "event unavailable"
		log.WarnContext(ctx, "archived event fetch failed", "note_id", resource.NoteID, "err", err)
		return
	}
	if archived == nil {
		out.NoteError = "event not archived"
		return
	}

	var evt nostr.Event
	if err = evt.UnmarshalJSON([]byte(archived.Raw)); err != nil {
		out.NoteError = "event malformed"
		log.WarnContext(ctx, "archived event unmarshal failed", "note_id", resource.NoteID, "err", err)
		return
	}

	out.Title = nostrutil.FirstTagValue(&evt, "title")
	out.Summary = nostrutil.FirstTagValue(&evt, "summary")
	out.Image = nostrutil.FirstTagValue(&evt, "image")
	if !out.Locked {
		out.Content = evt.Content
	}
}

func (s *lessonServiceImpl) fillFromDraft(ctx context.Context, out *dto.ResolvedLessonDTO, courseDraft *model.CourseDraft, draftID, viewerID string) {
	draft, err := s.draftRepo.GetByID(ctx, draftID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.ErrorContext(ctx, "draft lookup failed", "draft_id", draftID, "err", err)
			return
		}
		// 写路径的自愈可能还没跑到，读路径同样兜底查一次 Resource
		s.fillFromResource(ctx, out, draftID, viewerID)
		return
	}

	out.State = dto.LessonStateDraft
	out.Title = draft.Title
	out.Summary = draft.Summary
	out.Image = draft.Image
	out.Price = draft.Price
	// 未发布草稿只对课程所有者可见
	out.Locked = viewerID != courseDraft.UserID
	if !out.Locked {
		out.Content = draft.Content
	}
}

func (s *lessonServiceImpl) ValidateCourse(ctx context.Context, courseDraftID, userID string) (*dto.CourseValidationDTO, error) {
	draft, err := s.courseDraftRepo.GetByID(ctx, courseDraftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseDraftNotFound
		}
		return nil, fmt.Errorf("%w: load course draft", UnExpectedError)
	}
	if draft.UserID != userID {
		return nil, ErrAccessDenied
	}

	if err = s.SyncPublishedLessons(ctx, courseDraftID); err != nil {
		return nil, err
	}
	// 自愈可能改写了课时指向，重新加载
	draft, err = s.courseDraftRepo.GetByID(ctx, courseDraftID)
	if err != nil {
		return nil, fmt.Errorf("%w: reload course draft", UnExpectedError)
	}

	resolved, err := s.ResolveLessons(ctx, draft, userID)
	if err != nil {
		return nil, err
	}

	report := &dto.CourseValidationDTO{
		CourseDraftID: courseDraftID,
		LessonCount:   len(resolved),
		Lessons:       resolved,
		Publishable:   true,
	}
	if len(resolved) == 0 {
		report.Publishable = false
		report.Problems = append(report.Problems, "course has no lessons")
	}
	for _, l := range resolved {
		switch l.State {
		case dto.LessonStatePublished:
		case dto.LessonStateDraft:
			report.Publishable = false
			report.UnpublishedIDs = append(report.UnpublishedIDs, l.ID)
			report.Problems = append(report.Problems, fmt.Sprintf("lesson %s at index %d is not published", l.ID, l.Index))
		default:
			report.Publishable = false
			report.Problems = append(report.Problems, fmt.Sprintf("lesson %s at index %d has no resolvable content", l.ID, l.Index))
		}
	}

	return report, nil
}
