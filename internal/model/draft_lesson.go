package model

import (
	"time"
)

// DraftLesson 课程草稿中的一课。
// DraftID 与 ResourceID 二选一：指向未发布的 Draft，或已发布的 Resource。
type DraftLesson struct {
	ID            string    `gorm:"primaryKey;size:64" json:"id"`
	CourseDraftID string    `gorm:"size:64;not null;index" json:"courseDraftId"`
	Index         int       `gorm:"not null;column:lesson_index" json:"index"`
	DraftID       *string   `gorm:"size:64;index" json:"draftId"`
	ResourceID    *string   `gorm:"size:64;index" json:"resourceId"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (DraftLesson) TableName() string {
	return "draft_lessons"
}
