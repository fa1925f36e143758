package model

import (
	"time"
)

// CourseDraft 课程草稿，发布时被消费并删除，ID 会被同 ID 的 Course 继承
type CourseDraft struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	UserID    string    `gorm:"size:64;not null;index" json:"userId"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Summary   string    `gorm:"size:1024" json:"summary"`
	Topics    []string  `gorm:"serializer:json" json:"topics"`
	Image     string    `gorm:"size:512" json:"image"`
	Price     int       `gorm:"not null;default:0" json:"price"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Lessons []*DraftLesson `gorm:"foreignKey:CourseDraftID" json:"lessons,omitempty"`
}

func (CourseDraft) TableName() string {
	return "course_drafts"
}
