package services

import (
	"context"
	"errors"
	"time"

	"github.com/platefeed/api-go/config"
	"github.com/platefeed/api-go/logger"
	"github.com/platefeed/api-go/models"
	"github.com/platefeed/api-go/utils"
	"gorm.io/gorm"
)

// ProfileFilterConfig carries the values the filter substitutes for hidden
// assets. Passed in explicitly so the filter stays pure and testable.
type ProfileFilterConfig struct {
	DefaultAvatarURL     string
	DefaultBackgroundURL string
}

// ProfileView is the redacted result of filtering a profile for a viewer.
// Hidden fields are nil and absent from the JSON, not empty strings.
type ProfileView struct {
	ID          uint      `json:"id"`
	Username    string    `json:"username"`
	IsActive    bool      `json:"isActive"`
	IsBanned    bool      `json:"isBanned"`
	IsSuspended bool      `json:"isSuspended"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	FullName *string    `json:"fullName,omitempty"`
	Email    *string    `json:"email,omitempty"`
	Birthday *time.Time `json:"birthday,omitempty"`
	Gender   *string    `json:"gender,omitempty"`
	Country  *string    `json:"country,omitempty"`
	Bio      *string    `json:"bio,omitempty"`

	// Always present for non-blocked viewers; holds the placeholder when the
	// real asset is hidden.
	AvatarURL     *string `json:"avatarUrl,omitempty"`
	BackgroundURL *string `json:"backgroundUrl,omitempty"`

	Relationship Relation `json:"relationship"`
}

// CanViewField decides whether a declared level admits a relationship
// category. Unrecognized levels deny and log; they never error.
func CanViewField(level models.PrivacyLevel, rel Relation) bool {
	if rel == RelationSelf {
		return true
	}
	switch level {
	case models.PrivacyPublic:
		return true
	case models.PrivacyFriends:
		return rel == RelationFriend
	case models.PrivacyPrivate:
		return false
	default:
		logger.Warn("unknown privacy level, denying", "level", string(level))
		return false
	}
}

// FilterProfile produces the viewer-appropriate projection of a profile.
// Self sees everything, a blocked pair sees only id and username, everyone
// else gets base fields plus whatever the per-field levels admit.
func FilterProfile(user *models.User, settings *models.PrivacySettings, rel Relation, cfg ProfileFilterConfig) ProfileView {
	view := ProfileView{
		ID:           user.ID,
		Username:     user.Username,
		Relationship: rel,
	}

	if rel == RelationBlocked {
		return view
	}

	view.IsActive = user.IsActive
	view.IsBanned = user.IsBanned
	view.IsSuspended = user.IsSuspended
	view.CreatedAt = user.CreatedAt
	view.UpdatedAt = user.UpdatedAt

	if rel == RelationSelf {
		view.FullName = &user.FullName
		view.Email = &user.Email
		view.Birthday = user.Birthday
		view.Gender = &user.Gender
		view.Country = &user.Country
		view.Bio = &user.Bio
		view.AvatarURL = &user.AvatarURL
		view.BackgroundURL = &user.BackgroundURL
		return view
	}

	if CanViewField(settings.FullName, rel) {
		view.FullName = &user.FullName
	}
	if CanViewField(settings.Email, rel) {
		view.Email = &user.Email
	}
	if CanViewField(settings.Birthday, rel) {
		view.Birthday = user.Birthday
	}
	if CanViewField(settings.Gender, rel) {
		view.Gender = &user.Gender
	}
	if CanViewField(settings.Country, rel) {
		view.Country = &user.Country
	}
	if CanViewField(settings.Bio, rel) {
		view.Bio = &user.Bio
	}

	// Asset URLs are two-state: the real URL when visible, the default
	// placeholder when not. The setting hides an upload, it does not remove
	// the notion of having an avatar.
	avatar := cfg.DefaultAvatarURL
	if CanViewField(settings.AvatarURL, rel) {
		avatar = user.AvatarURL
	}
	view.AvatarURL = &avatar

	background := cfg.DefaultBackgroundURL
	if CanViewField(settings.BackgroundURL, rel) {
		background = user.BackgroundURL
	}
	view.BackgroundURL = &background

	return view
}

// ProfileService resolves viewer-filtered profiles and owns the privacy
// settings lifecycle.
type ProfileService struct {
	DB  *gorm.DB
	Rel *RelationshipService
	Cfg ProfileFilterConfig
}

func NewProfileService(db *gorm.DB, rel *RelationshipService, appCfg *config.AppConfig) *ProfileService {
	return &ProfileService{
		DB:  db,
		Rel: rel,
		Cfg: ProfileFilterConfig{
			DefaultAvatarURL:     appCfg.DefaultAvatarURL,
			DefaultBackgroundURL: appCfg.DefaultBackgroundURL,
		},
	}
}

// GetProfile returns the filtered view of targetID as seen by viewerID
// (0 = anonymous). Missing users are ErrNotFound; profiles are never
// auto-created for arbitrary identifiers.
func (s *ProfileService) GetProfile(ctx context.Context, targetID, viewerID uint) (*ProfileView, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrNotFound
		}
		return nil, err
	}

	rel, err := s.Rel.Resolve(ctx, targetID, viewerID)
	if err != nil {
		return nil, err
	}

	settings, err := s.SettingsFor(ctx, targetID)
	if err != nil {
		return nil, err
	}

	view := FilterProfile(&user, settings, rel, s.Cfg)
	return &view, nil
}

// SettingsFor is the one boundary where missing or partially blank settings
// become the default configuration. It never writes.
func (s *ProfileService) SettingsFor(ctx context.Context, userID uint) (*models.PrivacySettings, error) {
	var settings models.PrivacySettings
	err := s.DB.WithContext(ctx).First(&settings, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		def := models.DefaultPrivacySettings(userID)
		return &def, nil
	}
	if err != nil {
		return nil, err
	}

	normalizeSettings(&settings)
	return &settings, nil
}

// EnsureSettings persists the default settings row on first access. Only the
// owner's own profile path calls this.
func (s *ProfileService) EnsureSettings(ctx context.Context, userID uint) (*models.PrivacySettings, error) {
	var settings models.PrivacySettings
	err := s.DB.WithContext(ctx).First(&settings, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = models.DefaultPrivacySettings(userID)
		if err := s.DB.WithContext(ctx).Create(&settings).Error; err != nil {
			return nil, err
		}
		return &settings, nil
	}
	if err != nil {
		return nil, err
	}

	normalizeSettings(&settings)
	return &settings, nil
}

// UpdateSettings validates and applies per-field level changes. The fixed
// fields (fullName, savedRecipes) are rejected before anything is written, so
// invalid input can never leave a partial update behind.
func (s *ProfileService) UpdateSettings(ctx context.Context, userID uint, changes map[string]string) (*models.PrivacySettings, error) {
	settings, err := s.EnsureSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	parsed := make(map[string]models.PrivacyLevel, len(changes))
	for field, raw := range changes {
		switch field {
		case "fullName", "savedRecipes":
			return nil, utils.Validation(field, "this field's privacy level is fixed")
		case "email", "birthday", "gender", "country", "bio", "avatarUrl", "backgroundUrl":
			level, err := models.ParsePrivacyLevel(raw)
			if err != nil {
				return nil, utils.Validation(field, "invalid privacy level")
			}
			parsed[field] = level
		default:
			return nil, utils.Validation(field, "unknown privacy field")
		}
	}

	for field, level := range parsed {
		switch field {
		case "email":
			settings.Email = level
		case "birthday":
			settings.Birthday = level
		case "gender":
			settings.Gender = level
		case "country":
			settings.Country = level
		case "bio":
			settings.Bio = level
		case "avatarUrl":
			settings.AvatarURL = level
		case "backgroundUrl":
			settings.BackgroundURL = level
		}
	}

	if err := s.DB.WithContext(ctx).Save(settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

// normalizeSettings backfills blank columns with defaults and pins the fixed
// fields, tolerating rows written before a column existed.
func normalizeSettings(s *models.PrivacySettings) {
	def := models.DefaultPrivacySettings(s.UserID)
	if s.Email == "" {
		s.Email = def.Email
	}
	if s.Birthday == "" {
		s.Birthday = def.Birthday
	}
	if s.Gender == "" {
		s.Gender = def.Gender
	}
	if s.Country == "" {
		s.Country = def.Country
	}
	if s.Bio == "" {
		s.Bio = def.Bio
	}
	if s.AvatarURL == "" {
		s.AvatarURL = def.AvatarURL
	}
	if s.BackgroundURL == "" {
		s.BackgroundURL = def.BackgroundURL
	}
	s.FullName = models.PrivacyPublic
	s.SavedRecipes = models.PrivacyPrivate
}
