package model

import (
	"time"
)

// Resource 已发布内容。ID 刻意复用来源 Draft 的 ID，
// 这样引用该 Draft 的课时行不需要二次改写主键引用。
type Resource struct {
	ID     string `gorm:"primaryKey;size:64" json:"id"`
	UserID string `gorm:"size:64;not null;index" json:"userId"`
	Price  int    `gorm:"not null;default:0" json:"price"`
	// NoteID 已签名事件的 ID
	NoteID    string    `gorm:"size:64;not null;index" json:"noteId"`
	VideoID   string    `gorm:"size:64" json:"videoId"`
	VideoURL  string    `gorm:"size:512" json:"videoUrl"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Resource) TableName() string {
	return "resources"
}
