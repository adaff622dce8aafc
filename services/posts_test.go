package services_test

import (
	"context"
	"testing"

	"github.com/lib/pq"
	"github.com/platefeed/api-go/models"
	"github.com/platefeed/api-go/services"
	"github.com/platefeed/api-go/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newPostService(db *gorm.DB) *services.PostService {
	return services.NewPostService(db, nil, services.NewRelationshipService(db))
}

func TestGetPostDeniedLooksMissing(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newPostService(db)

	author := newUser(t, db, "author")
	stranger := newUser(t, db, "stranger")
	blocked := newUser(t, db, "blocked")
	blockPair(t, db, author.ID, blocked.ID)

	private := newPost(t, db, author.ID, models.PrivacyPrivate, 0, baseTime())
	public := newPost(t, db, author.ID, models.PrivacyPublic, 0, baseTime())

	// missing, denied by privacy, and denied by block are the same error
	_, err := svc.Get(ctx, 9999, stranger.ID)
	assert.ErrorIs(t, err, utils.ErrNotFound)
	_, err = svc.Get(ctx, private.ID, stranger.ID)
	assert.ErrorIs(t, err, utils.ErrNotFound)
	_, err = svc.Get(ctx, public.ID, blocked.ID)
	assert.ErrorIs(t, err, utils.ErrNotFound)

	got, err := svc.Get(ctx, private.ID, author.ID)
	require.NoError(t, err)
	assert.Equal(t, private.ID, got.ID)

	got, err = svc.Get(ctx, public.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, public.ID, got.ID)
}

func TestGetPostFriendsOnly(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newPostService(db)

	author := newUser(t, db, "author")
	friend := newUser(t, db, "friend")
	stranger := newUser(t, db, "stranger")
	befriend(t, db, author.ID, friend.ID)

	post := newPost(t, db, author.ID, models.PrivacyFriends, 0, baseTime())

	got, err := svc.Get(ctx, post.ID, friend.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)

	_, err = svc.Get(ctx, post.ID, stranger.ID)
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestUpdatePostOnlyTitleAndPrivacy(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newPostService(db)

	author := newUser(t, db, "author")
	other := newUser(t, db, "other")
	post := newPost(t, db, author.ID, models.PrivacyPublic, 0, baseTime())

	title := "renamed"
	privacy := models.PrivacyFriends
	updated, err := svc.Update(ctx, post.ID, author.ID, &title, &privacy)
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, models.PrivacyFriends, updated.Privacy)

	// a non-owner cannot even learn the post exists
	_, err = svc.Update(ctx, post.ID, other.ID, &title, nil)
	assert.ErrorIs(t, err, utils.ErrNotFound)

	empty := ""
	var ve *utils.ValidationError
	_, err = svc.Update(ctx, post.ID, author.ID, &empty, nil)
	assert.ErrorAs(t, err, &ve)
}

func TestUpdateHiddenPostFrozen(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newPostService(db)

	author := newUser(t, db, "author")
	post := newPost(t, db, author.ID, models.PrivacyPublic, 0, baseTime())
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", post.ID).
		Update("status", models.PostHidden).Error)

	title := "retitled"
	_, err := svc.Update(ctx, post.ID, author.ID, &title, nil)
	assert.ErrorIs(t, err, utils.ErrNotFound)
	_, err = svc.Delete(ctx, post.ID, author.ID)
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestDeletePostCascades(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newPostService(db)

	author := newUser(t, db, "author")
	fan := newUser(t, db, "fan")
	post := newPost(t, db, author.ID, models.PrivacyPublic, 0, baseTime())
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", post.ID).
		Update("images", pq.StringArray{"https://cdn.test/a.jpg"}).Error)

	require.NoError(t, db.Create(&models.Reaction{PostID: post.ID, UserID: fan.ID}).Error)
	require.NoError(t, db.Create(&models.Comment{PostID: post.ID, UserID: fan.ID, Content: "yum"}).Error)
	require.NoError(t, db.Create(&models.SavedRecipe{PostID: post.ID, UserID: fan.ID}).Error)

	images, err := svc.Delete(ctx, post.ID, author.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn.test/a.jpg"}, []string(images))

	var count int64
	db.Model(&models.Reaction{}).Where("post_id = ?", post.ID).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(&models.SavedRecipe{}).Where("post_id = ?", post.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	_, err = svc.Get(ctx, post.ID, author.ID)
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestSharePostSnapshots(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newPostService(db)

	author := newUser(t, db, "author")
	sharer := newUser(t, db, "sharer")
	original := newPost(t, db, author.ID, models.PrivacyPublic, 0, baseTime())
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", original.ID).
		Update("images", pq.StringArray{"https://cdn.test/hero.jpg"}).Error)

	share, err := svc.Share(ctx, sharer.ID, original.ID, "must try this", models.PrivacyPublic)
	require.NoError(t, err)
	assert.Equal(t, sharer.ID, share.AuthorID)
	require.NotNil(t, share.SharedPostID)
	assert.Equal(t, original.ID, *share.SharedPostID)
	assert.Equal(t, original.Title, share.SharedPostTitle)
	assert.Equal(t, "https://cdn.test/hero.jpg", share.SharedPostImageURL)
	assert.Equal(t, "must try this", share.Description)

	var stored models.Post
	require.NoError(t, db.First(&stored, original.ID).Error)
	assert.Equal(t, 1, stored.ShareCount)

	// shares terminate at the root: no share of a share
	var ve *utils.ValidationError
	_, err = svc.Share(ctx, author.ID, share.ID, "", models.PrivacyPublic)
	assert.ErrorAs(t, err, &ve)
}

func TestShareRequiresVisibility(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newPostService(db)

	author := newUser(t, db, "author")
	stranger := newUser(t, db, "stranger")
	private := newPost(t, db, author.ID, models.PrivacyPrivate, 0, baseTime())

	_, err := svc.Share(ctx, stranger.ID, private.ID, "", models.PrivacyPublic)
	assert.ErrorIs(t, err, utils.ErrNotFound)
}
