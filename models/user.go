package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID            uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at"`
	Username      string         `gorm:"unique;not null" json:"username"`
	Email         string         `gorm:"unique;not null" json:"email"`
	Password      *string        `json:"-"` // nil for OAuth-only accounts
	GoogleID      *string        `gorm:"uniqueIndex" json:"-"`
	FullName      string         `json:"fullName"`
	Bio           string         `gorm:"type:text" json:"bio"`
	Birthday      *time.Time     `json:"birthday"`
	Gender        string         `json:"gender"`
	Country       string         `json:"country"`
	AvatarURL     string         `json:"avatarUrl"`
	BackgroundURL string         `json:"backgroundUrl"`
	Role          string         `gorm:"size:50;not null;default:'user'" json:"role"`
	IsActive      bool           `gorm:"default:true" json:"isActive"`
	IsBanned      bool           `gorm:"default:false" json:"isBanned"`
	IsSuspended   bool           `gorm:"default:false" json:"isSuspended"`

	Posts         []Post         `json:"-" gorm:"foreignKey:AuthorID"`
	Comments      []Comment      `json:"-" gorm:"foreignKey:UserID"`
	Reactions     []Reaction     `json:"-" gorm:"foreignKey:UserID"`
	RefreshTokens []RefreshToken `json:"-" gorm:"foreignKey:UserID"`
}
