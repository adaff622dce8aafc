package models

import (
	"time"
)

// Reaction is a like. One per (post, user).
type Reaction struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_reaction_post_user" json:"postId"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_reaction_post_user" json:"userId"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
	Post Post `gorm:"foreignKey:PostID" json:"-"`
}
