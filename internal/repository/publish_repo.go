package repository

import (
	"Atheneum/internal/model"
	"Atheneum/internal/pkg/consts"
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrOwnerMismatch 事务内属主复核失败。
// 预检查和事务之间存在 TOCTOU 窗口，所有依赖预读做授权判断的写入
// 必须在事务内重读并复核，复核失败以该错误中止事务。
var ErrOwnerMismatch = errors.New("owner changed before transaction")

// ErrLessonUnresolved 课程发布时仍有课时无法解析到已发布资源
var ErrLessonUnresolved = errors.New("lesson references an unpublished draft")

// PublishRepo 草稿到已发布记录的事务状态机。
// Publishing 状态只存在于单个事务内，任何失败整体回滚回 Draft。
type PublishRepo interface {
	// PublishResource 在一个事务内：重读草稿并复核属主，创建复用草稿 ID 的
	// Resource，把引用该草稿的 DraftLesson/Lesson 行改指向新 Resource，删除草稿。
	PublishResource(ctx context.Context, draftID, userID, noteID string) (*model.Resource, error)
	// PublishCourse 在一个事务内：重读课程草稿并复核属主，要求每个课时都能
	// 解析到已存在的 Resource，创建复用草稿 ID 的 Course 和固定课时表，
	// 删除全部 DraftLesson 和 CourseDraft。
	PublishCourse(ctx context.Context, courseDraftID, userID, noteID string, submissionRequired bool) (*model.Course, []*model.Lesson, error)
}

type publishRepoImpl struct {
	db *gorm.DB
}

func NewPublishRepository(db *gorm.DB) PublishRepo {
	return &publishRepoImpl{db: db}
}

func (s *publishRepoImpl) PublishResource(ctx context.Context, draftID, userID, noteID string) (*model.Resource, error) {
	var resource *model.Resource

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var draft model.Draft
		if err := tx.First(&draft, "id = ?", draftID).Error; err != nil {
			return err
		}
		if draft.UserID != userID {
			return ErrOwnerMismatch
		}

		videoID := ""
		if draft.Type == consts.DraftTypeVideo {
			videoID = draft.ID
		}
		resource = &model.Resource{
			ID:       draft.ID,
			UserID:   draft.UserID,
			Price:    draft.Price,
			NoteID:   noteID,
			VideoID:  videoID,
			VideoURL: draft.VideoURL,
		}
		if err := tx.Create(resource).Error; err != nil {
			return err
		}

		// 课时引用改写。Resource 复用了草稿 ID，这里只需换引用列，不改主键。
		err := tx.Model(&model.DraftLesson{}).
			Where("draft_id = ?", draft.ID).
			Updates(map[string]interface{}{
				"resource_id": resource.ID,
				"draft_id":    nil,
			}).Error
		if err != nil {
			return err
		}

		err = tx.Model(&model.Lesson{}).
			Where("draft_id = ?", draft.ID).
			Updates(map[string]interface{}{
				"resource_id": resource.ID,
				"draft_id":    nil,
			}).Error
		if err != nil {
			return err
		}

		return tx.Delete(&model.Draft{}, "id = ?", draft.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return resource, nil
}

func (s *publishRepoImpl) PublishCourse(ctx context.Context, courseDraftID, userID, noteID string, submissionRequired bool) (*model.Course, []*model.Lesson, error) {
	var (
		course  *model.Course
		lessons []*model.Lesson
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var draft model.CourseDraft
		if err := tx.First(&draft, "id = ?", courseDraftID).Error; err != nil {
			return err
		}
		if draft.UserID != userID {
			return ErrOwnerMismatch
		}

		var draftLessons []*model.DraftLesson
		err := tx.Where("course_draft_id = ?", draft.ID).
			Order("lesson_index ASC, created_at ASC").
			Find(&draftLessons).Error
		if err != nil {
			return err
		}

		// 每个课时必须有已存在的 Resource：要么早已发布，要么本次调用
		// 先行发布使同 ID 的 Resource 已落库。还指着不存在资源的草稿则整体中止。
		for _, dl := range draftLessons {
			resourceID := ""
			switch {
			case dl.ResourceID != nil:
				resourceID = *dl.ResourceID
			case dl.DraftID != nil:
				resourceID = *dl.DraftID
			default:
				return fmt.Errorf("%w: lesson %s at index %d has no reference", ErrLessonUnresolved, dl.ID, dl.Index)
			}

			var n int64
			if err = tx.Model(&model.Resource{}).Where("id = ?", resourceID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("%w: lesson %s at index %d", ErrLessonUnresolved, dl.ID, dl.Index)
			}
		}

		course = &model.Course{
			ID:                 draft.ID,
			UserID:             draft.UserID,
			Price:              draft.Price,
			NoteID:             noteID,
			SubmissionRequired: submissionRequired,
		}
		if err = tx.Create(course).Error; err != nil {
			return err
		}

		lessons = make([]*model.Lesson, 0, len(draftLessons))
		for _, dl := range draftLessons {
			resourceID := dl.ResourceID
			if resourceID == nil {
				resourceID = dl.DraftID
			}
			lessons = append(lessons, &model.Lesson{
				ID:         dl.ID,
				CourseID:   course.ID,
				ResourceID: resourceID,
				Index:      dl.Index,
			})
		}
		if len(lessons) > 0 {
			if err = tx.Create(lessons).Error; err != nil {
				return err
			}
		}

		if err = tx.Delete(&model.DraftLesson{}, "course_draft_id = ?", draft.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&model.CourseDraft{}, "id = ?", draft.ID).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return course, lessons, nil
}
