package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/platefeed/api-go/cache"
	"github.com/platefeed/api-go/models"
	"github.com/platefeed/api-go/services"
	"github.com/platefeed/api-go/utils"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newFeedService(db *gorm.DB) *services.FeedService {
	return services.NewFeedService(db, nil, services.NewRelationshipService(db), 50)
}

// collectFeed pages through a feed until the cursor runs out.
func collectFeed(t *testing.T, svc *services.FeedService, viewerID uint, feedType services.FeedType, pageSize int) []services.FeedItem {
	t.Helper()
	var all []services.FeedItem
	token := ""
	for i := 0; i < 100; i++ {
		items, next, err := svc.BuildFeed(context.Background(), viewerID, feedType, pageSize, token)
		require.NoError(t, err)
		all = append(all, items...)
		if next == "" {
			return all
		}
		assert.Len(t, items, pageSize)
		token = next
	}
	t.Fatal("feed pagination did not terminate")
	return nil
}

func TestPersonalizedFeedMergesSources(t *testing.T) {
	db := setupTestDB(t)
	svc := newFeedService(db)

	viewer := newUser(t, db, "viewer")
	friend := newUser(t, db, "friend")
	stranger := newUser(t, db, "stranger")
	befriend(t, db, viewer.ID, friend.ID)

	base := baseTime()
	own := newPost(t, db, viewer.ID, models.PrivacyPrivate, 0, base.Add(5*time.Second))
	friendPost := newPost(t, db, friend.ID, models.PrivacyFriends, 0, base.Add(4*time.Second))
	public := newPost(t, db, stranger.ID, models.PrivacyPublic, 0, base.Add(3*time.Second))
	// invisible to the viewer: a stranger's friends-only and private posts
	newPost(t, db, stranger.ID, models.PrivacyFriends, 0, base.Add(2*time.Second))
	newPost(t, db, stranger.ID, models.PrivacyPrivate, 0, base.Add(1*time.Second))

	items, next, err := svc.BuildFeed(context.Background(), viewer.ID, services.FeedPersonalized, 20, "")
	require.NoError(t, err)
	assert.Empty(t, next)

	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []uint{own.ID, friendPost.ID, public.ID}, ids)

	// author decoration rides along
	assert.Equal(t, "viewer", items[0].AuthorUsername)
	assert.Equal(t, "friend", items[1].AuthorUsername)
}

func TestFeedPaginationIsExhaustiveAndDuplicateFree(t *testing.T) {
	db := setupTestDB(t)
	svc := newFeedService(db)

	viewer := newUser(t, db, "viewer")
	friend := newUser(t, db, "friend")
	author := newUser(t, db, "author")
	befriend(t, db, viewer.ID, friend.ID)

	base := baseTime()
	want := make(map[uint]bool)
	for i := 0; i < 7; i++ {
		p := newPost(t, db, author.ID, models.PrivacyPublic, 0, base.Add(time.Duration(i)*time.Second))
		want[p.ID] = true
	}
	for i := 0; i < 5; i++ {
		p := newPost(t, db, friend.ID, models.PrivacyFriends, 0, base.Add(time.Duration(100+i)*time.Second))
		want[p.ID] = true
	}
	for i := 0; i < 4; i++ {
		p := newPost(t, db, viewer.ID, models.PrivacyPrivate, 0, base.Add(time.Duration(200+i)*time.Second))
		want[p.ID] = true
	}

	all := collectFeed(t, svc, viewer.ID, services.FeedPersonalized, 3)
	require.Len(t, all, len(want))

	seen := make(map[uint]bool, len(all))
	for _, it := range all {
		assert.False(t, seen[it.ID], "post %d appeared twice", it.ID)
		seen[it.ID] = true
		assert.True(t, want[it.ID], "unexpected post %d", it.ID)
	}

	// recency order across page boundaries
	for i := 1; i < len(all); i++ {
		prev, cur := all[i-1], all[i]
		if prev.CreatedAt.Equal(cur.CreatedAt) {
			assert.Greater(t, prev.ID, cur.ID)
		} else {
			assert.True(t, prev.CreatedAt.After(cur.CreatedAt))
		}
	}
}

func TestFeedExcludesBlockedAndHidden(t *testing.T) {
	db := setupTestDB(t)
	svc := newFeedService(db)

	viewer := newUser(t, db, "viewer")
	blocked := newUser(t, db, "blocked")
	author := newUser(t, db, "author")
	blockPair(t, db, blocked.ID, viewer.ID)

	base := baseTime()
	visible := newPost(t, db, author.ID, models.PrivacyPublic, 0, base.Add(time.Second))
	newPost(t, db, blocked.ID, models.PrivacyPublic, 0, base.Add(2*time.Second))

	hidden := newPost(t, db, author.ID, models.PrivacyPublic, 0, base.Add(3*time.Second))
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", hidden.ID).
		Update("status", models.PostHidden).Error)

	items, _, err := svc.BuildFeed(context.Background(), viewer.ID, services.FeedPersonalized, 20, "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, visible.ID, items[0].ID)
}

func TestTrendingFeedOrderAndAnonymousAccess(t *testing.T) {
	db := setupTestDB(t)
	svc := newFeedService(db)

	author := newUser(t, db, "author")
	banned := newUser(t, db, "banned")
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", banned.ID).
		Update("is_banned", true).Error)

	base := baseTime()
	mid := newPost(t, db, author.ID, models.PrivacyPublic, 5, base.Add(time.Second))
	top := newPost(t, db, author.ID, models.PrivacyPublic, 9, base.Add(2*time.Second))
	tieNew := newPost(t, db, author.ID, models.PrivacyPublic, 5, base.Add(3*time.Second))
	newPost(t, db, banned.ID, models.PrivacyPublic, 100, base.Add(4*time.Second))

	// anonymous viewer
	all := collectFeed(t, svc, 0, services.FeedTrending, 2)
	require.Len(t, all, 3)
	assert.Equal(t, top.ID, all[0].ID)
	// like-count tie breaks toward the newer post
	assert.Equal(t, tieNew.ID, all[1].ID)
	assert.Equal(t, mid.ID, all[2].ID)
}

func TestFriendsFeedOnlyFriends(t *testing.T) {
	db := setupTestDB(t)
	svc := newFeedService(db)

	viewer := newUser(t, db, "viewer")
	friend := newUser(t, db, "friend")
	stranger := newUser(t, db, "stranger")
	befriend(t, db, viewer.ID, friend.ID)

	base := baseTime()
	friendPost := newPost(t, db, friend.ID, models.PrivacyFriends, 0, base.Add(time.Second))
	newPost(t, db, stranger.ID, models.PrivacyPublic, 0, base.Add(2*time.Second))
	newPost(t, db, viewer.ID, models.PrivacyPublic, 0, base.Add(3*time.Second))

	items, _, err := svc.BuildFeed(context.Background(), viewer.ID, services.FeedFriends, 20, "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, friendPost.ID, items[0].ID)
}

func TestFeedRejectsBadCursor(t *testing.T) {
	db := setupTestDB(t)
	svc := newFeedService(db)
	viewer := newUser(t, db, "viewer")

	_, _, err := svc.BuildFeed(context.Background(), viewer.ID, services.FeedPersonalized, 20, "!!not-base64!!")
	var ve *utils.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestUserPostsScopedByRelationship(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newFeedService(db)

	author := newUser(t, db, "author")
	friend := newUser(t, db, "friend")
	stranger := newUser(t, db, "stranger")
	blocked := newUser(t, db, "blocked")
	befriend(t, db, author.ID, friend.ID)
	blockPair(t, db, author.ID, blocked.ID)

	base := baseTime()
	pub := newPost(t, db, author.ID, models.PrivacyPublic, 0, base.Add(3*time.Second))
	fr := newPost(t, db, author.ID, models.PrivacyFriends, 0, base.Add(2*time.Second))
	priv := newPost(t, db, author.ID, models.PrivacyPrivate, 0, base.Add(time.Second))

	idsFor := func(viewerID uint) []uint {
		items, _, err := svc.UserPosts(ctx, author.ID, viewerID, 20, "")
		require.NoError(t, err)
		ids := make([]uint, 0, len(items))
		for _, it := range items {
			ids = append(ids, it.ID)
		}
		return ids
	}

	assert.Equal(t, []uint{pub.ID, fr.ID, priv.ID}, idsFor(author.ID))
	assert.Equal(t, []uint{pub.ID, fr.ID}, idsFor(friend.ID))
	assert.Equal(t, []uint{pub.ID}, idsFor(stranger.ID))
	assert.Equal(t, []uint{pub.ID}, idsFor(0))
	assert.Empty(t, idsFor(blocked.ID))
}

func TestUserPostsPagination(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newFeedService(db)

	author := newUser(t, db, "author")
	base := baseTime()
	var wantIDs []uint
	for i := 4; i >= 0; i-- {
		p := newPost(t, db, author.ID, models.PrivacyPublic, 0, base.Add(time.Duration(i)*time.Second))
		wantIDs = append(wantIDs, p.ID)
	}

	var got []uint
	token := ""
	for {
		items, next, err := svc.UserPosts(ctx, author.ID, 0, 2, token)
		require.NoError(t, err)
		for _, it := range items {
			got = append(got, it.ID)
		}
		if next == "" {
			break
		}
		token = next
	}
	assert.Equal(t, wantIDs, got)
}

func TestLikeCountOverlayFromCache(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	mr := miniredis.RunT(t)
	redisCache := cache.NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	svc := services.NewFeedService(db, redisCache, services.NewRelationshipService(db), 50)

	author := newUser(t, db, "author")
	viewer := newUser(t, db, "viewer")
	post := newPost(t, db, author.ID, models.PrivacyPublic, 3, baseTime())

	// cache miss: the durable count answers and seeds the cache
	items, _, err := svc.BuildFeed(ctx, viewer.ID, services.FeedPersonalized, 20, "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(3), items[0].LiveLikeCount)

	cached, err := redisCache.GetPostLikes(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), cached)

	// a fresher cached value wins over the stale column
	require.NoError(t, redisCache.SetPostLikes(ctx, post.ID, 7))
	items, _, err = svc.BuildFeed(ctx, viewer.ID, services.FeedPersonalized, 20, "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(7), items[0].LiveLikeCount)
}

func TestFeedMarksViewerLikes(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newFeedService(db)

	author := newUser(t, db, "author")
	viewer := newUser(t, db, "viewer")
	liked := newPost(t, db, author.ID, models.PrivacyPublic, 1, baseTime().Add(time.Second))
	newPost(t, db, author.ID, models.PrivacyPublic, 0, baseTime())
	require.NoError(t, db.Create(&models.Reaction{PostID: liked.ID, UserID: viewer.ID}).Error)

	items, _, err := svc.BuildFeed(ctx, viewer.ID, services.FeedPersonalized, 20, "")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.True(t, items[0].IsLiked)
	assert.False(t, items[1].IsLiked)
}
