package models

import (
	"fmt"
	"strings"
	"time"
)

// PrivacyLevel is the audience a profile field or post admits.
type PrivacyLevel string

const (
	PrivacyPublic  PrivacyLevel = "public"
	PrivacyFriends PrivacyLevel = "friends"
	PrivacyPrivate PrivacyLevel = "private"
)

// ParsePrivacyLevel is the single point where raw strings become levels.
// Anything unrecognized is rejected here, never defaulted.
func ParsePrivacyLevel(s string) (PrivacyLevel, error) {
	switch PrivacyLevel(strings.ToLower(strings.TrimSpace(s))) {
	case PrivacyPublic:
		return PrivacyPublic, nil
	case PrivacyFriends:
		return PrivacyFriends, nil
	case PrivacyPrivate:
		return PrivacyPrivate, nil
	default:
		return "", fmt.Errorf("unknown privacy level %q", s)
	}
}

// PrivacySettings holds one user's per-field audience levels. FullName and
// SavedRecipes are pinned (public and private respectively) and cannot be
// changed through the API.
type PrivacySettings struct {
	UserID    uint      `gorm:"primaryKey" json:"userId"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	FullName      PrivacyLevel `gorm:"type:varchar(20);not null;default:'public'" json:"fullName"`
	Email         PrivacyLevel `gorm:"type:varchar(20);not null;default:'private'" json:"email"`
	Birthday      PrivacyLevel `gorm:"type:varchar(20);not null;default:'private'" json:"birthday"`
	Gender        PrivacyLevel `gorm:"type:varchar(20);not null;default:'private'" json:"gender"`
	Country       PrivacyLevel `gorm:"type:varchar(20);not null;default:'public'" json:"country"`
	Bio           PrivacyLevel `gorm:"type:varchar(20);not null;default:'public'" json:"bio"`
	AvatarURL     PrivacyLevel `gorm:"type:varchar(20);not null;default:'public'" json:"avatarUrl"`
	BackgroundURL PrivacyLevel `gorm:"type:varchar(20);not null;default:'public'" json:"backgroundUrl"`
	SavedRecipes  PrivacyLevel `gorm:"type:varchar(20);not null;default:'private'" json:"savedRecipes"`
}

// DefaultPrivacySettings is the configuration every account starts with.
func DefaultPrivacySettings(userID uint) PrivacySettings {
	return PrivacySettings{
		UserID:        userID,
		FullName:      PrivacyPublic,
		Email:         PrivacyPrivate,
		Birthday:      PrivacyPrivate,
		Gender:        PrivacyPrivate,
		Country:       PrivacyPublic,
		Bio:           PrivacyPublic,
		AvatarURL:     PrivacyPublic,
		BackgroundURL: PrivacyPublic,
		SavedRecipes:  PrivacyPrivate,
	}
}
