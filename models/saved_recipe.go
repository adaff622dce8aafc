package models

import (
	"time"
)

// SavedRecipe is a user's private bookmark of a post. The saved-recipes
// collection is always private; there is no privacy setting that can open it.
type SavedRecipe struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_saved_user_post" json:"userId"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_saved_user_post" json:"postId"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
	Post Post `gorm:"foreignKey:PostID" json:"-"`
}
