package model

import (
	"time"
)

// Course 已发布课程，ID 复用来源 CourseDraft 的 ID
type Course struct {
	ID                 string    `gorm:"primaryKey;size:64" json:"id"`
	UserID             string    `gorm:"size:64;not null;index" json:"userId"`
	Price              int       `gorm:"not null;default:0" json:"price"`
	NoteID             string    `gorm:"size:64;not null;index" json:"noteId"`
	SubmissionRequired bool      `gorm:"not null;default:false" json:"submissionRequired"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`

	Lessons []*Lesson `gorm:"foreignKey:CourseID" json:"lessons,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}
