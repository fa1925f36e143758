package model

import (
	"time"
)

// Draft 单内容草稿，发布时被消费并删除，ID 会被同 ID 的 Resource 继承
type Draft struct {
	ID              string    `gorm:"primaryKey;size:64" json:"id"`
	UserID          string    `gorm:"size:64;not null;index" json:"userId"`
	Type            string    `gorm:"size:16;not null" json:"type"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	Summary         string    `gorm:"size:1024" json:"summary"`
	Content         string    `gorm:"type:longtext" json:"content"`
	Image           string    `gorm:"size:512" json:"image"`
	Price           int       `gorm:"not null;default:0" json:"price"`
	Topics          []string  `gorm:"serializer:json" json:"topics"`
	AdditionalLinks []string  `gorm:"serializer:json" json:"additionalLinks"`
	VideoURL        string    `gorm:"size:512" json:"videoUrl"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (Draft) TableName() string {
	return "drafts"
}
