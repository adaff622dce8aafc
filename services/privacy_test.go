package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/platefeed/api-go/models"
	"github.com/platefeed/api-go/services"
	"github.com/platefeed/api-go/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testFilterCfg = services.ProfileFilterConfig{
	DefaultAvatarURL:     "https://cdn.test/default-avatar.png",
	DefaultBackgroundURL: "https://cdn.test/default-background.png",
}

func newProfileService(db *gorm.DB) *services.ProfileService {
	return &services.ProfileService{
		DB:  db,
		Rel: services.NewRelationshipService(db),
		Cfg: testFilterCfg,
	}
}

func fullUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	birthday := time.Date(1994, 3, 14, 0, 0, 0, 0, time.UTC)
	u := models.User{
		Username:      username,
		Email:         username + "@test.com",
		FullName:      username + " Test",
		Bio:           "cooks a lot",
		Birthday:      &birthday,
		Gender:        "female",
		Country:       "NL",
		AvatarURL:     "https://cdn.test/u/" + username + "/avatar.png",
		BackgroundURL: "https://cdn.test/u/" + username + "/bg.png",
		Role:          "user",
		IsActive:      true,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func TestFilterProfileStrangerDefaults(t *testing.T) {
	db := setupTestDB(t)
	user := fullUser(t, db, "alice")
	settings := models.DefaultPrivacySettings(user.ID)

	view := services.FilterProfile(&user, &settings, services.RelationStranger, testFilterCfg)

	assert.Equal(t, user.ID, view.ID)
	assert.Equal(t, "alice", view.Username)
	require.NotNil(t, view.FullName)
	require.NotNil(t, view.Bio)

	// email, birthday and gender default private
	assert.Nil(t, view.Email)
	assert.Nil(t, view.Birthday)
	assert.Nil(t, view.Gender)

	require.NotNil(t, view.AvatarURL)
	assert.Equal(t, user.AvatarURL, *view.AvatarURL)
	assert.Equal(t, services.RelationStranger, view.Relationship)
}

func TestFilterProfileFriendSeesFriendsFields(t *testing.T) {
	db := setupTestDB(t)
	user := fullUser(t, db, "alice")
	settings := models.DefaultPrivacySettings(user.ID)
	settings.Birthday = models.PrivacyFriends

	view := services.FilterProfile(&user, &settings, services.RelationFriend, testFilterCfg)

	require.NotNil(t, view.Birthday)
	assert.Equal(t, *user.Birthday, *view.Birthday)
	// private still wins over friendship
	assert.Nil(t, view.Email)
	assert.Nil(t, view.Gender)
}

func TestFilterProfileSelfSeesEverything(t *testing.T) {
	db := setupTestDB(t)
	user := fullUser(t, db, "alice")

	// even a fully private configuration does not hide a profile from its owner
	settings := models.DefaultPrivacySettings(user.ID)
	settings.Bio = models.PrivacyPrivate
	settings.AvatarURL = models.PrivacyPrivate

	view := services.FilterProfile(&user, &settings, services.RelationSelf, testFilterCfg)

	require.NotNil(t, view.Email)
	assert.Equal(t, user.Email, *view.Email)
	require.NotNil(t, view.AvatarURL)
	assert.Equal(t, user.AvatarURL, *view.AvatarURL)
}

func TestFilterProfileBlockedMinimal(t *testing.T) {
	db := setupTestDB(t)
	user := fullUser(t, db, "alice")
	settings := models.DefaultPrivacySettings(user.ID)

	view := services.FilterProfile(&user, &settings, services.RelationBlocked, testFilterCfg)

	assert.Equal(t, user.ID, view.ID)
	assert.Equal(t, user.Username, view.Username)
	assert.Nil(t, view.FullName)
	assert.Nil(t, view.Bio)
	assert.Nil(t, view.AvatarURL)
	assert.Nil(t, view.BackgroundURL)
	assert.True(t, view.CreatedAt.IsZero())
}

func TestFilterProfileHiddenAssetPlaceholder(t *testing.T) {
	db := setupTestDB(t)
	user := fullUser(t, db, "alice")
	settings := models.DefaultPrivacySettings(user.ID)
	settings.AvatarURL = models.PrivacyFriends
	settings.BackgroundURL = models.PrivacyPrivate

	view := services.FilterProfile(&user, &settings, services.RelationStranger, testFilterCfg)

	require.NotNil(t, view.AvatarURL)
	assert.Equal(t, testFilterCfg.DefaultAvatarURL, *view.AvatarURL)
	require.NotNil(t, view.BackgroundURL)
	assert.Equal(t, testFilterCfg.DefaultBackgroundURL, *view.BackgroundURL)

	// the same levels admit the real assets for a friend
	view = services.FilterProfile(&user, &settings, services.RelationFriend, testFilterCfg)
	assert.Equal(t, user.AvatarURL, *view.AvatarURL)
	assert.Equal(t, testFilterCfg.DefaultBackgroundURL, *view.BackgroundURL)
}

func TestCanViewFieldFailsClosed(t *testing.T) {
	assert.False(t, services.CanViewField(models.PrivacyLevel("everyone"), services.RelationFriend))
	assert.False(t, services.CanViewField(models.PrivacyLevel(""), services.RelationStranger))
	// self is exempt from the level entirely
	assert.True(t, services.CanViewField(models.PrivacyLevel("garbage"), services.RelationSelf))
}

func TestGetProfileMissingUser(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newProfileService(db)

	_, err := svc.GetProfile(ctx, 9999, 0)
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestGetProfileEndToEnd(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newProfileService(db)

	alice := fullUser(t, db, "alice")
	bob := fullUser(t, db, "bob")
	befriend(t, db, alice.ID, bob.ID)
	require.NoError(t, db.Create(&models.PrivacySettings{UserID: alice.ID, Email: models.PrivacyFriends}).Error)

	// friend sees the email because alice opened it to friends
	view, err := svc.GetProfile(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, services.RelationFriend, view.Relationship)
	require.NotNil(t, view.Email)
	assert.Equal(t, alice.Email, *view.Email)

	// anonymous viewer does not
	view, err = svc.GetProfile(ctx, alice.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, services.RelationStranger, view.Relationship)
	assert.Nil(t, view.Email)
}

func TestSettingsForReturnsDefaultsWithoutWriting(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newProfileService(db)
	alice := newUser(t, db, "alice")

	settings, err := svc.SettingsFor(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PrivacyPrivate, settings.Email)
	assert.Equal(t, models.PrivacyPrivate, settings.Birthday)
	assert.Equal(t, models.PrivacyPublic, settings.Country)

	var count int64
	db.Model(&models.PrivacySettings{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestSettingsForBackfillsBlankColumns(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newProfileService(db)
	alice := newUser(t, db, "alice")

	// a row written before some columns existed
	require.NoError(t, db.Create(&models.PrivacySettings{UserID: alice.ID, Bio: models.PrivacyPrivate}).Error)
	require.NoError(t, db.Model(&models.PrivacySettings{}).Where("user_id = ?", alice.ID).
		UpdateColumn("email", "").Error)

	settings, err := svc.SettingsFor(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PrivacyPrivate, settings.Bio)
	assert.Equal(t, models.PrivacyPrivate, settings.Email)
	// the fixed fields are pinned no matter what the row says
	assert.Equal(t, models.PrivacyPublic, settings.FullName)
	assert.Equal(t, models.PrivacyPrivate, settings.SavedRecipes)
}

func TestEnsureSettingsCreatesOnce(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newProfileService(db)
	alice := newUser(t, db, "alice")

	_, err := svc.EnsureSettings(ctx, alice.ID)
	require.NoError(t, err)
	_, err = svc.EnsureSettings(ctx, alice.ID)
	require.NoError(t, err)

	var count int64
	db.Model(&models.PrivacySettings{}).Where("user_id = ?", alice.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestUpdateSettingsFixedFieldRejected(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newProfileService(db)
	alice := newUser(t, db, "alice")

	var ve *utils.ValidationError
	_, err := svc.UpdateSettings(ctx, alice.ID, map[string]string{"fullName": "private"})
	assert.ErrorAs(t, err, &ve)
	_, err = svc.UpdateSettings(ctx, alice.ID, map[string]string{"savedRecipes": "public"})
	assert.ErrorAs(t, err, &ve)
}

func TestUpdateSettingsAtomicOnBadInput(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newProfileService(db)
	alice := newUser(t, db, "alice")

	// one valid change mixed with one invalid level: nothing may persist
	var ve *utils.ValidationError
	_, err := svc.UpdateSettings(ctx, alice.ID, map[string]string{
		"bio":   "private",
		"email": "everyone",
	})
	require.ErrorAs(t, err, &ve)

	settings, err := svc.SettingsFor(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PrivacyPublic, settings.Bio)

	// unknown field names are rejected the same way
	_, err = svc.UpdateSettings(ctx, alice.ID, map[string]string{"shoeSize": "private"})
	assert.ErrorAs(t, err, &ve)
}

func TestUpdateSettingsApplies(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newProfileService(db)
	alice := newUser(t, db, "alice")

	settings, err := svc.UpdateSettings(ctx, alice.ID, map[string]string{
		"bio":       "friends",
		"avatarUrl": "private",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PrivacyFriends, settings.Bio)
	assert.Equal(t, models.PrivacyPrivate, settings.AvatarURL)

	stored, err := svc.SettingsFor(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PrivacyFriends, stored.Bio)
	assert.Equal(t, models.PrivacyPrivate, stored.AvatarURL)
}
