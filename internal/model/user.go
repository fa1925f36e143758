package model

import (
	"time"
)

type User struct {
	ID           string `gorm:"primaryKey;size:64"`
	Pubkey       string `gorm:"size:64;not null;uniqueIndex"`
	Username     string `gorm:"size:64;uniqueIndex"`
	PasswordHash string `gorm:"size:128"`
	// EncryptedPrivkey 托管私钥，chacha20poly1305 加密后 base64 存储，可为空
	EncryptedPrivkey string `gorm:"size:256"`
	IsAdmin          bool   `gorm:"not null;default:false"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (User) TableName() string {
	return "users"
}
