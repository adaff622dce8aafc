package models

import (
	"time"

	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationFriendRequest  NotificationType = "friend_request"
	NotificationFriendAccepted NotificationType = "friend_accepted"
	NotificationPostLiked      NotificationType = "post_liked"
	NotificationPostCommented  NotificationType = "post_commented"
	NotificationPostShared     NotificationType = "post_shared"
	NotificationPostModerated  NotificationType = "post_moderated"
)

// Notification is the stored fan-out row; delivery (push, email) happens
// elsewhere and reads these.
type Notification struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID  uint             `gorm:"not null;index" json:"userId"` // recipient
	ActorID uint             `json:"actorId,omitempty"`
	Type    NotificationType `gorm:"type:varchar(30);not null" json:"type"`
	PostID  *uint            `json:"postId,omitempty"`
	Message string           `json:"message"`
	IsRead  bool             `gorm:"default:false;index" json:"isRead"`

	User  User `gorm:"foreignKey:UserID" json:"-"`
	Actor User `gorm:"foreignKey:ActorID" json:"-"`
}
