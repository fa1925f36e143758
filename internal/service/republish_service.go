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
	"strconv"

	"github.com/nbd-wtf/go-nostr"
	"gorm.io/gorm"
)

// RepublishService 对已发布记录重新签发事件并投递。
// 与首次发布不同：库状态已经是权威状态，这里的目的就是把事件送出去，
// 所以所有目标 relay 都拒绝时按失败处理。
type RepublishService interface {
	RepublishResource(ctx context.Context, resourceID, userID string, req *dto.RepublishRequestDTO) (*dto.RepublishResponseDTO, error)
	RepublishCourse(ctx context.Context, courseID, userID string, req *dto.RepublishRequestDTO) (*dto.RepublishResponseDTO, error)
}

type republishServiceImpl struct {
	resourceRepo repository.ResourceRepo
	courseRepo   repository.CourseRepo
	lessonRepo   repository.LessonRepo
	userRepo     repository.UserRepo
	archive      mongo.EventArchive
	publisher    nostrutil.Publisher
	pub          *publishServiceImpl
}

func NewRepublishService(
	resourceRepo repository.ResourceRepo,
	courseRepo repository.CourseRepo,
	lessonRepo repository.LessonRepo,
	userRepo repository.UserRepo,
	archive mongo.EventArchive,
	publisher nostrutil.Publisher,
	publishSvc PublishService,
) RepublishService {
	return &republishServiceImpl{
		resourceRepo: resourceRepo,
		courseRepo:   courseRepo,
		lessonRepo:   lessonRepo,
		userRepo:     userRepo,
		archive:      archive,
		publisher:    publisher,
		pub:          publishSvc.(*publishServiceImpl),
	}
}

func (s *republishServiceImpl) RepublishResource(ctx context.Context, resourceID, userID string, req *dto.RepublishRequestDTO) (*dto.RepublishResponseDTO, error) {
	if err := validateSigningInput(req); err != nil {
		return nil, err
	}

	resource, err := s.resourceRepo.GetByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, fmt.Errorf("%w: load resource", UnExpectedError)
	}
	if resource.UserID != userID {
		return nil, ErrAccessDenied
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: load user", UnExpectedError)
	}

	var evt *nostr.Event
	if req.SignedEvent != nil {
		if evt, err = s.pub.acceptSignedEvent(req.SignedEvent, resourceID, user.Pubkey); err != nil {
			return nil, err
		}
	} else {
		if evt, err = s.resignFromArchive(ctx, resource.NoteID, resourceID, user, req.Price); err != nil {
			return nil, err
		}
	}

	relays, err := s.deliver(ctx, evt, req.Relays, req.RelaySet)
	if err != nil {
		return nil, err
	}

	price := resource.Price
	if req.Price != nil {
		price = *req.Price
	}
	if err = s.resourceRepo.UpdateNote(ctx, resourceID, userID, evt.ID, price); err != nil {
		return nil, s.mapUpdateError(ctx, err, resourceID)
	}

	s.pub.archiveEvent(ctx, evt, resourceID)
	log.InfoContext(ctx, "resource republished", "resource_id", resourceID, "note_id", evt.ID, "relays", len(relays))
	return &dto.RepublishResponseDTO{NoteID: evt.ID, Event: evt, PublishedRelays: relays}, nil
}

func (s *republishServiceImpl) RepublishCourse(ctx context.Context, courseID, userID string, req *dto.RepublishRequestDTO) (*dto.RepublishResponseDTO, error) {
	if err := validateSigningInput(req); err != nil {
		return nil, err
	}
	if req.Price != nil {
		return nil, fmt.Errorf("%w: course republish does not take a price", ErrParamInvalid)
	}

	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("%w: load course", UnExpectedError)
	}
	if course.UserID != userID {
		return nil, ErrAccessDenied
	}

	// 课时表必须完整解析到资源，否则事件里的引用是残缺的
	lessons, err := s.lessonRepo.GetByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("%w: load lessons", UnExpectedError)
	}
	var unresolved []string
	for _, l := range lessons {
		if l.ResourceID == nil {
			unresolved = append(unresolved, l.ID)
		}
	}
	if len(unresolved) > 0 {
		return nil, fmt.Errorf("%w: lessons %v", ErrMissingLessons, unresolved)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: load user", UnExpectedError)
	}

	var evt *nostr.Event
	if req.SignedEvent != nil {
		if evt, err = s.pub.acceptSignedEvent(req.SignedEvent, courseID, user.Pubkey); err != nil {
			return nil, err
		}
	} else {
		if evt, err = s.resignFromArchive(ctx, course.NoteID, courseID, user, nil); err != nil {
			return nil, err
		}
	}

	relays, err := s.deliver(ctx, evt, req.Relays, req.RelaySet)
	if err != nil {
		return nil, err
	}

	if err = s.courseRepo.UpdateNote(ctx, courseID, userID, evt.ID); err != nil {
		return nil, s.mapUpdateError(ctx, err, courseID)
	}

	s.pub.archiveEvent(ctx, evt, courseID)
	log.InfoContext(ctx, "course republished", "course_id", courseID, "note_id", evt.ID, "relays", len(relays))
	return &dto.RepublishResponseDTO{NoteID: evt.ID, Event: evt, PublishedRelays: relays}, nil
}

// resignFromArchive 服务端重签：取上一次归档的事件原文，保留 kind/tags/content，
// 刷新时间戳后用托管私钥重新签名。price 给出时顺带改写 price tag。
func (s *republishServiceImpl) resignFromArchive(ctx context.Context, noteID, recordID string, user *model.User, price *int) (*nostr.Event, error) {
	privkey, err := s.pub.custodialPrivkey(user)
	if err != nil {
		return nil, err
	}

	archived, err := s.archive.GetByEventID(ctx, noteID)
	if err != nil {
		return nil, fmt.Errorf("%w: read event archive", UnExpectedError)
	}
	if archived == nil {
		return nil, fmt.Errorf("%w: original event not archived, submit a signed event instead", ErrInvalidEvent)
	}

	var old nostr.Event
	if err = old.UnmarshalJSON([]byte(archived.Raw)); err != nil {
		return nil, fmt.Errorf("%w: archived event malformed", UnExpectedError)
	}
	if nostrutil.DTag(&old) != recordID {
		return nil, fmt.Errorf("%w: archived event does not belong to this record", UnExpectedError)
	}

	tags := make(nostr.Tags, 0, len(old.Tags))
	for _, tag := range old.Tags {
		if price != nil && len(tag) >= 1 && tag[0] == "price" {
			tags = append(tags, nostr.Tag{"price", strconv.Itoa(*price)})
			continue
		}
		tags = append(tags, tag)
	}

	evt := &nostr.Event{
		CreatedAt: nostr.Now(),
		Kind:      old.Kind,
		Tags:      tags,
		Content:   old.Content,
	}
	if err = evt.Sign(privkey); err != nil {
		return nil, fmt.Errorf("%w: re-sign event", UnExpectedError)
	}
	return evt, nil
}

func (s *republishServiceImpl) deliver(ctx context.Context, evt *nostr.Event, relays []string, relaySet string) ([]string, error) {
	targets, err := ResolveRelays(relays, relaySet)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: no target relays configured", ErrParamInvalid)
	}
	accepted := s.publisher.Publish(ctx, targets, evt)
	if len(accepted) == 0 {
		return nil, ErrRelayPublishFailed
	}
	return accepted, nil
}

func (s *republishServiceImpl) mapUpdateError(ctx context.Context, err error, recordID string) error {
	switch {
	case errors.Is(err, repository.ErrOwnerMismatch):
		return ErrAccessDenied
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrResourceNotFound
	default:
		log.ErrorContext(ctx, "note update failed", "record_id", recordID, "err", err)
		return fmt.Errorf("%w: note update failed", UnExpectedError)
	}
}

func validateSigningInput(req *dto.RepublishRequestDTO) error {
	hasEvent := req.SignedEvent != nil
	if hasEvent == req.ServerSign {
		return ErrSigningInput
	}
	return nil
}
