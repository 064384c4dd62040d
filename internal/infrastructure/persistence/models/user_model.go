package models

import (
	"time"
)

// UserModel is the database account record.
type UserModel struct {
	ID           string `gorm:"primaryKey;size:64"`
	Username     string `gorm:"uniqueIndex;size:150;not null"`
	Email        string `gorm:"uniqueIndex;size:254;not null"`
	PasswordHash string `gorm:"size:128;not null"`
	IsSuperuser  bool   `gorm:"not null;default:false"`
	IsStaff      bool   `gorm:"not null;default:false"`
	Provider     string `gorm:"size:16;not null;default:local"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (UserModel) TableName() string {
	return "users"
}
