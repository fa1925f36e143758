package service

import (
	"Atheneum/internal/api/config"
	"Atheneum/internal/api/dto"
	"Atheneum/internal/model"
	"Atheneum/internal/pkg/consts"
	"Atheneum/internal/pkg/mongo"
	nostrutil "Atheneum/internal/pkg/nostr"
	"Atheneum/internal/pkg/security"
	"Atheneum/internal/repository"
	"context"
	"errors"
	"fmt"
	log "log/slog"

	"github.com/go-sql-driver/mysql"
	"github.com/nbd-wtf/go-nostr"
	"gorm.io/gorm"
)

const mysqlErrDuplicateEntry = 1062

type PublishService interface {
	// PublishResource 把单内容草稿发布为同 ID 的 Resource
	PublishResource(ctx context.Context, draftID, userID string, req *dto.PublishRequestDTO) (*dto.PublishResourceResponseDTO, error)
	// PublishCourse 把课程草稿发布为同 ID 的 Course 和固定课时表
	PublishCourse(ctx context.Context, courseDraftID, userID string, req *dto.PublishRequestDTO) (*dto.PublishCourseResponseDTO, error)
}

type publishServiceImpl struct {
	draftRepo       repository.DraftRepo
	courseDraftRepo repository.CourseDraftRepo
	draftLessonRepo repository.DraftLessonRepo
	resourceRepo    repository.ResourceRepo
	publishRepo     repository.PublishRepo
	userRepo        repository.UserRepo
	lessonSvc       LessonService
	archive         mongo.EventArchive
	publisher       nostrutil.Publisher
}

func NewPublishService(
	draftRepo repository.DraftRepo,
	courseDraftRepo repository.CourseDraftRepo,
	draftLessonRepo repository.DraftLessonRepo,
	resourceRepo repository.ResourceRepo,
	publishRepo repository.PublishRepo,
	userRepo repository.UserRepo,
	lessonSvc LessonService,
	archive mongo.EventArchive,
	publisher nostrutil.Publisher,
) PublishService {
	return &publishServiceImpl{
		draftRepo:       draftRepo,
		courseDraftRepo: courseDraftRepo,
		draftLessonRepo: draftLessonRepo,
		resourceRepo:    resourceRepo,
		publishRepo:     publishRepo,
		userRepo:        userRepo,
		lessonSvc:       lessonSvc,
		archive:         archive,
		publisher:       publisher,
	}
}

func (s *publishServiceImpl) PublishResource(ctx context.Context, draftID, userID string, req *dto.PublishRequestDTO) (*dto.PublishResourceResponseDTO, error) {
	draft, err := s.draftRepo.GetByID(ctx, draftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// ID 复用意味着发布成功后草稿必然消失，重复调用统一走 NotFound
			return nil, ErrDraftNotFound
		}
		return nil, fmt.Errorf("%w: load draft", UnExpectedError)
	}
	if draft.UserID != userID {
		return nil, ErrAccessDenied
	}
	if err = validateDraftContent(draft); err != nil {
		return nil, err
	}
	if err = s.checkDuplicateLessonUse(ctx, draftID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: load user", UnExpectedError)
	}

	var evt *nostr.Event
	if req.SignedEvent != nil {
		if evt, err = s.acceptSignedEvent(req.SignedEvent, draftID, user.Pubkey); err != nil {
			return nil, err
		}
	} else {
		if evt, err = s.signResourceEvent(draft, user); err != nil {
			return nil, err
		}
	}

	resource, err := s.publishRepo.PublishResource(ctx, draftID, userID, evt.ID)
	if err != nil {
		return nil, s.mapPublishError(ctx, err, draftID, false)
	}

	s.archiveEvent(ctx, evt, resource.ID)
	relays := s.broadcast(ctx, evt, req.Relays, req.RelaySet)

	log.InfoContext(ctx, "resource published", "resource_id", resource.ID, "note_id", evt.ID, "relays", len(relays))
	return &dto.PublishResourceResponseDTO{
		Resource:        resource,
		Event:           evt,
		PublishedRelays: relays,
	}, nil
}

func (s *publishServiceImpl) PublishCourse(ctx context.Context, courseDraftID, userID string, req *dto.PublishRequestDTO) (*dto.PublishCourseResponseDTO, error) {
	courseDraft, err := s.courseDraftRepo.GetByID(ctx, courseDraftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseDraftNotFound
		}
		return nil, fmt.Errorf("%w: load course draft", UnExpectedError)
	}
	if courseDraft.UserID != userID {
		return nil, ErrAccessDenied
	}
	if len(courseDraft.Lessons) == 0 {
		return nil, fmt.Errorf("%w: course has no lessons", ErrParamInvalid)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: load user", UnExpectedError)
	}

	// 客户端先行签好的课时事件：逐个核验并把对应草稿升格为资源
	var lessonEvents []*nostr.Event
	for _, le := range req.PublishedLessonEvents {
		accepted, err := s.publishLessonEvent(ctx, courseDraft, le, user)
		if err != nil {
			return nil, err
		}
		lessonEvents = append(lessonEvents, accepted)
	}

	// 升格和外部并发发布都可能改变课时指向，发布前跑一轮自愈
	if err = s.lessonSvc.SyncPublishedLessons(ctx, courseDraftID); err != nil {
		return nil, err
	}
	if courseDraft, err = s.courseDraftRepo.GetByID(ctx, courseDraftID); err != nil {
		// 自愈期间被并发发布消费掉也算 NotFound 幂等边界
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseDraftNotFound
		}
		return nil, fmt.Errorf("%w: reload course draft", UnExpectedError)
	}

	var evt *nostr.Event
	if req.SignedEvent != nil {
		if evt, err = s.acceptSignedEvent(req.SignedEvent, courseDraftID, user.Pubkey); err != nil {
			return nil, err
		}
	} else {
		if evt, err = s.signCourseEvent(ctx, courseDraft, user); err != nil {
			return nil, err
		}
	}

	course, lessons, err := s.publishRepo.PublishCourse(ctx, courseDraftID, userID, evt.ID, req.SubmissionRequired)
	if err != nil {
		return nil, s.mapPublishError(ctx, err, courseDraftID, true)
	}

	s.archiveEvent(ctx, evt, course.ID)
	relays := s.broadcast(ctx, evt, req.Relays, req.RelaySet)

	log.InfoContext(ctx, "course published", "course_id", course.ID, "note_id", evt.ID, "lessons", len(lessons), "relays", len(relays))
	return &dto.PublishCourseResponseDTO{
		Course:                course,
		Lessons:               lessons,
		Event:                 evt,
		PublishedRelays:       relays,
		PublishedLessonEvents: lessonEvents,
	}, nil
}

// publishLessonEvent 接受一条客户端签名的课时事件，把它指向的草稿发布为资源
func (s *publishServiceImpl) publishLessonEvent(ctx context.Context, courseDraft *model.CourseDraft, evt *nostr.Event, user *model.User) (*nostr.Event, error) {
	if evt == nil {
		return nil, fmt.Errorf("%w: empty lesson event", ErrInvalidEvent)
	}
	draftID := nostrutil.DTag(evt)
	if draftID == "" {
		return nil, fmt.Errorf("%w: lesson event missing d tag", ErrInvalidEvent)
	}

	referenced := false
	for _, l := range courseDraft.Lessons {
		if l.DraftID != nil && *l.DraftID == draftID {
			referenced = true
			break
		}
	}
	if !referenced {
		return nil, fmt.Errorf("%w: lesson event %s targets no lesson of this course", ErrInvalidEvent, evt.ID)
	}

	accepted, err := s.acceptSignedEvent(evt, draftID, user.Pubkey)
	if err != nil {
		return nil, err
	}
	if err = s.checkDuplicateLessonUse(ctx, draftID); err != nil {
		return nil, err
	}

	resource, err := s.publishRepo.PublishResource(ctx, draftID, user.ID, accepted.ID)
	if err != nil {
		// 课时并发发布或已发布：自愈阶段会把指向改写到资源，继续即可
		if errors.Is(err, gorm.ErrRecordNotFound) || isDuplicateEntry(err) {
			log.InfoContext(ctx, "lesson draft already published", "draft_id", draftID)
			return accepted, nil
		}
		return nil, s.mapPublishError(ctx, err, draftID, false)
	}

	s.archiveEvent(ctx, accepted, resource.ID)
	return accepted, nil
}

// acceptSignedEvent 接受客户端签名事件的全部前置校验
func (s *publishServiceImpl) acceptSignedEvent(evt *nostr.Event, recordID, expectedPubkey string) (*nostr.Event, error) {
	if evt == nil {
		return nil, ErrInvalidEvent
	}
	if evt.PubKey != expectedPubkey {
		return nil, fmt.Errorf("%w: event pubkey does not belong to the caller", ErrInvalidEvent)
	}
	if !nostrutil.Verify(evt) {
		return nil, fmt.Errorf("%w: bad id or signature", ErrInvalidEvent)
	}
	if nostrutil.DTag(evt) != recordID {
		return nil, ErrEventIDMismatch
	}
	return evt, nil
}

func (s *publishServiceImpl) signResourceEvent(draft *model.Draft, user *model.User) (*nostr.Event, error) {
	privkey, err := s.custodialPrivkey(user)
	if err != nil {
		return nil, err
	}
	evt, err := nostrutil.SignResourceEvent(privkey, &nostrutil.ResourceContent{
		ID:       draft.ID,
		Type:     draft.Type,
		Title:    draft.Title,
		Summary:  draft.Summary,
		Image:    draft.Image,
		Price:    draft.Price,
		Content:  draft.Content,
		VideoURL: draft.VideoURL,
		Topics:   draft.Topics,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: sign resource event", UnExpectedError)
	}
	return evt, nil
}

func (s *publishServiceImpl) signCourseEvent(ctx context.Context, courseDraft *model.CourseDraft, user *model.User) (*nostr.Event, error) {
	privkey, err := s.custodialPrivkey(user)
	if err != nil {
		return nil, err
	}
	pubkey, err := nostr.GetPublicKey(privkey)
	if err != nil {
		return nil, fmt.Errorf("%w: derive pubkey", UnExpectedError)
	}

	var resourceIDs []string
	for _, l := range courseDraft.Lessons {
		if l.ResourceID != nil {
			resourceIDs = append(resourceIDs, *l.ResourceID)
		}
	}
	resources, err := s.resourceRepo.GetByIDs(ctx, resourceIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: load lesson resources", UnExpectedError)
	}
	kindByID := make(map[string]int, len(resources))
	for _, r := range resources {
		kind := nostrutil.KindLongForm
		if r.VideoID != "" {
			kind = nostrutil.KindVideo
		}
		kindByID[r.ID] = kind
	}

	refs := make([]string, 0, len(resourceIDs))
	for _, id := range resourceIDs {
		kind, ok := kindByID[id]
		if !ok {
			return nil, fmt.Errorf("%w: lesson resource %s", ErrLessonNotPublished, id)
		}
		refs = append(refs, fmt.Sprintf("%d:%s:%s", kind, pubkey, id))
	}

	evt, err := nostrutil.SignCourseEvent(privkey, &nostrutil.CourseContent{
		ID:         courseDraft.ID,
		Title:      courseDraft.Title,
		Summary:    courseDraft.Summary,
		Image:      courseDraft.Image,
		Price:      courseDraft.Price,
		Topics:     courseDraft.Topics,
		LessonRefs: refs,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: sign course event", UnExpectedError)
	}
	return evt, nil
}

func (s *publishServiceImpl) custodialPrivkey(user *model.User) (string, error) {
	if user.EncryptedPrivkey == "" {
		return "", ErrPrivkeyUnavailable
	}
	key := config.Cfg.Nostr.PrivkeyEncryptionKey
	if key == "" {
		return "", ErrPrivkeyUnavailable
	}
	privkey, err := security.DecryptPrivkey(user.EncryptedPrivkey, key)
	if err != nil {
		return "", fmt.Errorf("%w: decrypt failed", ErrPrivkeyUnavailable)
	}
	return privkey, nil
}

// checkDuplicateLessonUse 同一草稿被多个课时引用时拒绝发布。
// 发布会消费草稿：跨课程引用会让另一门课的课时悬空，
// 同一课程内重复引用则会把同一份内容复制进多个课时槽位
func (s *publishServiceImpl) checkDuplicateLessonUse(ctx context.Context, draftID string) error {
	lessons, err := s.draftLessonRepo.GetByDraftID(ctx, draftID)
	if err != nil {
		return fmt.Errorf("%w: check lesson references", UnExpectedError)
	}
	if len(lessons) <= 1 {
		return nil
	}

	details := make([]string, 0, len(lessons))
	for _, l := range lessons {
		details = append(details, fmt.Sprintf("course %s lesson %s", l.CourseDraftID, l.ID))
	}
	return fmt.Errorf("%w: draft %s referenced by %v", ErrDuplicateLessons, draftID, details)
}

func (s *publishServiceImpl) mapPublishError(ctx context.Context, err error, recordID string, isCourse bool) error {
	switch {
	case errors.Is(err, repository.ErrOwnerMismatch):
		return ErrAccessDenied
	case errors.Is(err, repository.ErrLessonUnresolved):
		return fmt.Errorf("%w: %v", ErrLessonNotPublished, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		if isCourse {
			return ErrCourseDraftNotFound
		}
		return ErrDraftNotFound
	case isDuplicateEntry(err):
		return ErrAlreadyPublished
	default:
		log.ErrorContext(ctx, "publish transaction failed", "record_id", recordID, "err", err)
		return fmt.Errorf("%w: publish transaction failed", UnExpectedError)
	}
}

func (s *publishServiceImpl) archiveEvent(ctx context.Context, evt *nostr.Event, recordID string) {
	raw, err := evt.MarshalJSON()
	if err != nil {
		log.WarnContext(ctx, "event marshal for archive failed", "event_id", evt.ID, "err", err)
		return
	}
	archiveErr := s.archive.Save(ctx, &mongo.ArchivedEvent{
		EventID:  evt.ID,
		Pubkey:   evt.PubKey,
		Kind:     evt.Kind,
		RecordID: recordID,
		Raw:      string(raw),
	})
	if archiveErr != nil {
		// 归档失败不回滚发布，事件原文在 relay 侧仍可回查
		log.WarnContext(ctx, "event archive failed", "event_id", evt.ID, "err", archiveErr)
	}
}

// broadcast 在落库之后广播事件。此处失败不回滚：库是权威状态，
// 事件可随时通过重发布接口再投递
func (s *publishServiceImpl) broadcast(ctx context.Context, evt *nostr.Event, relays []string, relaySet string) []string {
	targets, err := ResolveRelays(relays, relaySet)
	if err != nil {
		log.WarnContext(ctx, "relay resolution failed, skipping broadcast", "err", err)
		return nil
	}
	accepted := s.publisher.Publish(ctx, targets, evt)
	if len(accepted) == 0 {
		log.WarnContext(ctx, "no relay accepted the event", "event_id", evt.ID, "relays", targets)
	}
	return accepted
}

// ResolveRelays 目标 relay 解析顺序：显式列表 > 具名集合 > 默认集
func ResolveRelays(relays []string, relaySet string) ([]string, error) {
	if len(relays) > 0 {
		return relays, nil
	}
	if relaySet != "" {
		set, ok := config.Cfg.Nostr.RelaySets[relaySet]
		if !ok || len(set) == 0 {
			return nil, fmt.Errorf("%w: unknown relay set %q", ErrParamInvalid, relaySet)
		}
		return set, nil
	}
	return config.Cfg.Nostr.DefaultRelays, nil
}

// validateDraftContent 发布时机的内容完整性复核，和草稿更新时机用同一套规则
func validateDraftContent(draft *model.Draft) error {
	if draft.Type == consts.DraftTypeVideo {
		if draft.VideoURL == "" {
			return fmt.Errorf("%w: video draft requires videoUrl", ErrParamInvalid)
		}
		return nil
	}
	if draft.Content == "" {
		return fmt.Errorf("%w: document draft requires content", ErrParamInvalid)
	}
	return nil
}

func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDuplicateEntry
}
