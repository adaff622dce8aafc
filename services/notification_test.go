package services_test

import (
	"context"
	"testing"

	"github.com/platefeed/api-go/models"
	"github.com/platefeed/api-go/services"
	"github.com/platefeed/api-go/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifySkipsSelf(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := services.NewNotificationService(db)

	alice := newUser(t, db, "alice")
	bob := newUser(t, db, "bob")

	svc.Notify(ctx, alice.ID, alice.ID, models.NotificationPostLiked, nil, "liked your recipe")
	svc.Notify(ctx, alice.ID, bob.ID, models.NotificationPostLiked, nil, "liked your recipe")

	var count int64
	db.Model(&models.Notification{}).Where("user_id = ?", alice.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestMarkReadScopedToRecipient(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := services.NewNotificationService(db)

	alice := newUser(t, db, "alice")
	bob := newUser(t, db, "bob")

	svc.Notify(ctx, alice.ID, bob.ID, models.NotificationFriendRequest, nil, "sent you a friend request")

	list, total, err := svc.List(ctx, alice.ID, 1, 20)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, list, 1)

	// someone else's notification cannot be marked
	assert.ErrorIs(t, svc.MarkRead(ctx, bob.ID, list[0].ID), utils.ErrNotFound)

	require.NoError(t, svc.MarkRead(ctx, alice.ID, list[0].ID))
	unread, err := svc.UnreadCount(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)
}

func TestMarkAllRead(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := services.NewNotificationService(db)

	alice := newUser(t, db, "alice")
	bob := newUser(t, db, "bob")

	post := newPost(t, db, alice.ID, models.PrivacyPublic, 0, baseTime())
	svc.Notify(ctx, alice.ID, bob.ID, models.NotificationPostLiked, &post.ID, "liked your recipe")
	svc.Notify(ctx, alice.ID, bob.ID, models.NotificationPostCommented, &post.ID, "commented on your recipe")

	require.NoError(t, svc.MarkAllRead(ctx, alice.ID))

	unread, err := svc.UnreadCount(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)
}
