package model

import (
	"time"
)

// Lesson 已发布课程的固定课时表，发布时由 DraftLesson 生成。
// DraftID 仅在课时内容尚未独立发布时短暂存在，资源发布时会被改写为 ResourceID。
type Lesson struct {
	ID         string    `gorm:"primaryKey;size:64" json:"id"`
	CourseID   string    `gorm:"size:64;not null;index" json:"courseId"`
	ResourceID *string   `gorm:"size:64;index" json:"resourceId"`
	DraftID    *string   `gorm:"size:64;index" json:"draftId"`
	Index      int       `gorm:"not null;column:lesson_index" json:"index"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (Lesson) TableName() string {
	return "lessons"
}
