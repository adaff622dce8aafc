package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// PostStatus is the moderation state of a post.
// active -> under_review -> hidden, driven by distinct report counts.
// A hidden post is invisible to everyone, its author included; the only way
// back is an explicit moderator action.
type PostStatus string

const (
	PostActive      PostStatus = "active"
	PostUnderReview PostStatus = "under_review"
	PostHidden      PostStatus = "hidden"
)

func ParsePostStatus(s string) (PostStatus, error) {
	switch PostStatus(strings.ToLower(strings.TrimSpace(s))) {
	case PostActive:
		return PostActive, nil
	case PostUnderReview:
		return PostUnderReview, nil
	case PostHidden:
		return PostHidden, nil
	default:
		return "", fmt.Errorf("unknown post status %q", s)
	}
}

type Post struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	AuthorID uint `gorm:"not null;index" json:"authorId"`
	Author   User `gorm:"foreignKey:AuthorID" json:"-"`

	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Images      pq.StringArray `gorm:"type:text[]" json:"images"`

	// Embedded recipe payload. Immutable after creation, like everything
	// except Title and Privacy.
	Ingredients     pq.StringArray `gorm:"type:text[]" json:"ingredients"`
	Steps           pq.StringArray `gorm:"type:text[]" json:"steps"`
	Servings        int            `json:"servings"`
	CookTimeMinutes int            `json:"cookTimeMinutes"`

	Privacy PrivacyLevel `gorm:"type:varchar(20);not null;default:'public'" json:"privacy"`
	Status  PostStatus   `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`

	LikeCount    int `gorm:"default:0;index" json:"likeCount"`
	CommentCount int `gorm:"default:0" json:"commentCount"`
	ShareCount   int `gorm:"default:0" json:"shareCount"`
	ReportCount  int `gorm:"default:0" json:"-"`

	// Set when this post shares another. The snapshot fields keep the card
	// renderable after the original is deleted.
	SharedPostID       *uint  `gorm:"index" json:"sharedPostId,omitempty"`
	SharedPostTitle    string `json:"sharedPostTitle,omitempty"`
	SharedPostImageURL string `json:"sharedPostImageUrl,omitempty"`

	Comments  []Comment  `json:"-" gorm:"foreignKey:PostID"`
	Reactions []Reaction `json:"-" gorm:"foreignKey:PostID"`
}
