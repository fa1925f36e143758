package model

import (
	"time"
)

// ViewCount 历史累计阅读量，落库侧唯一可信来源
type ViewCount struct {
	Key       string    `gorm:"primaryKey;size:255;column:view_key" json:"key"`
	Total     int64     `gorm:"not null;default:0" json:"total"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (ViewCount) TableName() string {
	return "view_counts"
}

// ViewDailyCount 按天累计阅读量，(day, view_key) 唯一
type ViewDailyCount struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	Day       time.Time `gorm:"not null;index:idx_day_key,unique;type:date" json:"day"`
	Key       string    `gorm:"size:255;not null;index:idx_day_key,unique;column:view_key" json:"key"`
	Count     int64     `gorm:"not null;default:0" json:"count"`
	CreatedAt time.Time `json:"createdAt"`
}

func (ViewDailyCount) TableName() string {
	return "view_daily_counts"
}
