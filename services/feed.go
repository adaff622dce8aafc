package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/platefeed/api-go/cache"
	"github.com/platefeed/api-go/logger"
	"github.com/platefeed/api-go/models"
	"github.com/platefeed/api-go/utils"
	"gorm.io/gorm"
)

// FeedType selects which candidate sources feed aggregation draws from.
type FeedType string

const (
	// FeedPersonalized merges the viewer's own posts, friends' posts and
	// public posts, recency-ordered.
	FeedPersonalized FeedType = "personalized"
	// FeedFriends is friends' posts only, recency-ordered.
	FeedFriends FeedType = "friends"
	// FeedTrending is public posts ordered by the precomputed engagement key
	// (like count, recency tiebreak).
	FeedTrending FeedType = "trending"
)

func ParseFeedType(s string) (FeedType, error) {
	switch FeedType(strings.ToLower(strings.TrimSpace(s))) {
	case FeedPersonalized, "":
		return FeedPersonalized, nil
	case FeedFriends:
		return FeedFriends, nil
	case FeedTrending:
		return FeedTrending, nil
	default:
		return "", utils.Validation("type", fmt.Sprintf("unknown feed type %q", s))
	}
}

// FeedItem is a post dressed up for the wire: author basics plus live
// engagement numbers.
type FeedItem struct {
	models.Post
	AuthorUsername  string `json:"authorUsername"`
	AuthorAvatarURL string `json:"authorAvatarUrl"`
	LiveLikeCount   int64  `json:"likeCount"`
	IsLiked         bool   `json:"isLiked"`
}

type FeedService struct {
	DB          *gorm.DB
	Cache       *cache.RedisCache
	Rel         *RelationshipService
	MaxPageSize int
}

func NewFeedService(db *gorm.DB, redis *cache.RedisCache, rel *RelationshipService, maxPageSize int) *FeedService {
	if maxPageSize <= 0 {
		maxPageSize = 50
	}
	return &FeedService{DB: db, Cache: redis, Rel: rel, MaxPageSize: maxPageSize}
}

// BuildFeed collects candidates from the sources the feed type selects,
// deduplicates by post id, excludes blocked authors, re-checks every candidate
// through CanViewPost (the source queries are treated as untrusted indexes),
// orders, and cuts one keyset page. The returned cursor is opaque.
func (s *FeedService) BuildFeed(ctx context.Context, viewerID uint, feedType FeedType, limit int, token string) ([]FeedItem, string, error) {
	limit = s.clampLimit(limit)

	cursor, err := utils.DecodeCursor(token)
	if err != nil {
		return nil, "", utils.Validation("cursor", err.Error())
	}

	friendSet := map[uint]bool{}
	blockedSet := map[uint]bool{}
	if viewerID != 0 {
		if friendSet, err = s.Rel.FriendIDSet(ctx, viewerID); err != nil {
			return nil, "", err
		}
		if blockedSet, err = s.Rel.BlockedIDSet(ctx, viewerID); err != nil {
			return nil, "", err
		}
	}

	trending := feedType == FeedTrending

	var sources [][]models.Post
	switch feedType {
	case FeedPersonalized:
		own, err := s.fetchOwn(ctx, viewerID, cursor, limit)
		if err != nil {
			return nil, "", err
		}
		friends, err := s.fetchFriends(ctx, friendSet, cursor, limit)
		if err != nil {
			return nil, "", err
		}
		public, err := s.fetchPublic(ctx, blockedSet, cursor, limit, false)
		if err != nil {
			return nil, "", err
		}
		sources = [][]models.Post{own, friends, public}
	case FeedFriends:
		friends, err := s.fetchFriends(ctx, friendSet, cursor, limit)
		if err != nil {
			return nil, "", err
		}
		sources = [][]models.Post{friends}
	case FeedTrending:
		public, err := s.fetchPublic(ctx, blockedSet, cursor, limit, true)
		if err != nil {
			return nil, "", err
		}
		sources = [][]models.Post{public}
	default:
		return nil, "", utils.Validation("type", "unknown feed type")
	}

	merged := s.mergeAndGate(sources, viewerID, friendSet, blockedSet)
	sortPosts(merged, trending)

	nextToken := ""
	if len(merged) > limit {
		merged = merged[:limit]
		last := merged[len(merged)-1]
		c := utils.Cursor{CreatedUnix: last.CreatedAt.UnixMicro(), LastID: last.ID}
		if trending {
			c.Likes = int64(last.LikeCount)
		}
		if nextToken, err = utils.EncodeCursor(c); err != nil {
			return nil, "", err
		}
	}

	items, err := s.decorate(ctx, merged, viewerID)
	if err != nil {
		return nil, "", err
	}
	return items, nextToken, nil
}

// UserPosts is a user's timeline as seen by viewerID, recency-ordered. The
// candidate scope is relationship-dependent; every item still passes the
// visibility gate afterwards.
func (s *FeedService) UserPosts(ctx context.Context, authorID, viewerID uint, limit int, token string) ([]FeedItem, string, error) {
	limit = s.clampLimit(limit)

	cursor, err := utils.DecodeCursor(token)
	if err != nil {
		return nil, "", utils.Validation("cursor", err.Error())
	}

	rel, err := s.Rel.Resolve(ctx, authorID, viewerID)
	if err != nil {
		return nil, "", err
	}
	if rel == RelationBlocked {
		return []FeedItem{}, "", nil
	}

	q := s.postsQuery(ctx, cursor, false).Where("posts.author_id = ?", authorID)
	switch rel {
	case RelationSelf:
		// all privacy levels
	case RelationFriend:
		q = q.Where("posts.privacy IN ?", []models.PrivacyLevel{models.PrivacyPublic, models.PrivacyFriends})
	default:
		q = q.Where("posts.privacy = ?", models.PrivacyPublic)
	}

	var posts []models.Post
	if err := q.Limit(limit + 1).Find(&posts).Error; err != nil {
		return nil, "", err
	}

	friendSet := map[uint]bool{}
	if rel == RelationFriend {
		friendSet[authorID] = true
	}
	kept := posts[:0]
	for i := range posts {
		if CanViewPost(&posts[i], viewerID, friendSet) {
			kept = append(kept, posts[i])
		}
	}

	nextToken := ""
	if len(kept) > limit {
		kept = kept[:limit]
		last := kept[len(kept)-1]
		if nextToken, err = utils.EncodeCursor(utils.Cursor{CreatedUnix: last.CreatedAt.UnixMicro(), LastID: last.ID}); err != nil {
			return nil, "", err
		}
	}

	items, err := s.decorate(ctx, kept, viewerID)
	if err != nil {
		return nil, "", err
	}
	return items, nextToken, nil
}

// LikeCountFor reads the live like count, cache first with DB backfill.
func (s *FeedService) LikeCountFor(ctx context.Context, post *models.Post) int64 {
	if s.Cache != nil {
		if n, err := s.Cache.GetPostLikes(ctx, post.ID); err == nil && n >= 0 {
			return n
		} else if err != nil {
			logger.Warn("like count cache read failed", "post_id", post.ID, "err", err)
		} else {
			_ = s.Cache.SetPostLikes(ctx, post.ID, int64(post.LikeCount))
		}
	}
	return int64(post.LikeCount)
}

func (s *FeedService) clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > s.MaxPageSize {
		return s.MaxPageSize
	}
	return limit
}

// postsQuery applies the status filter, keyset predicate and ordering shared
// by every source.
func (s *FeedService) postsQuery(ctx context.Context, cursor utils.Cursor, trending bool) *gorm.DB {
	q := s.DB.WithContext(ctx).Model(&models.Post{}).
		Where("posts.status = ?", models.PostActive)

	if trending {
		if cursor.LastID != 0 {
			t := time.UnixMicro(cursor.CreatedUnix)
			q = q.Where(
				"posts.like_count < ? OR (posts.like_count = ? AND (posts.created_at < ? OR (posts.created_at = ? AND posts.id < ?)))",
				cursor.Likes, cursor.Likes, t, t, cursor.LastID,
			)
		}
		return q.Order("posts.like_count DESC").Order("posts.created_at DESC").Order("posts.id DESC")
	}

	if cursor.LastID != 0 {
		t := time.UnixMicro(cursor.CreatedUnix)
		q = q.Where("posts.created_at < ? OR (posts.created_at = ? AND posts.id < ?)", t, t, cursor.LastID)
	}
	return q.Order("posts.created_at DESC").Order("posts.id DESC")
}

func (s *FeedService) fetchOwn(ctx context.Context, viewerID uint, cursor utils.Cursor, limit int) ([]models.Post, error) {
	if viewerID == 0 {
		return nil, nil
	}
	var posts []models.Post
	err := s.postsQuery(ctx, cursor, false).
		Where("posts.author_id = ?", viewerID).
		Limit(limit + 1).
		Find(&posts).Error
	return posts, err
}

func (s *FeedService) fetchFriends(ctx context.Context, friendSet map[uint]bool, cursor utils.Cursor, limit int) ([]models.Post, error) {
	if len(friendSet) == 0 {
		return nil, nil
	}
	ids := make([]uint, 0, len(friendSet))
	for id := range friendSet {
		ids = append(ids, id)
	}

	var posts []models.Post
	err := s.postsQuery(ctx, cursor, false).
		Where("posts.author_id IN ?", ids).
		Where("posts.privacy IN ?", []models.PrivacyLevel{models.PrivacyPublic, models.PrivacyFriends}).
		Limit(limit + 1).
		Find(&posts).Error
	return posts, err
}

// fetchPublic is the broad index; it is the one source that must exclude
// blocked authors itself, since no relationship scoping narrowed it.
func (s *FeedService) fetchPublic(ctx context.Context, blockedSet map[uint]bool, cursor utils.Cursor, limit int, trending bool) ([]models.Post, error) {
	q := s.postsQuery(ctx, cursor, trending).
		Where("posts.privacy = ?", models.PrivacyPublic).
		Where("posts.author_id NOT IN (SELECT id FROM users WHERE is_banned = ?)", true)

	if len(blockedSet) > 0 {
		ids := make([]uint, 0, len(blockedSet))
		for id := range blockedSet {
			ids = append(ids, id)
		}
		q = q.Where("posts.author_id NOT IN ?", ids)
	}

	var posts []models.Post
	err := q.Limit(limit + 1).Find(&posts).Error
	return posts, err
}

// mergeAndGate deduplicates by post id, drops blocked authors, and applies
// the visibility gate to every survivor. The gate repeats work the source
// queries already did on purpose: stale denormalized candidates must not slip
// through.
func (s *FeedService) mergeAndGate(sources [][]models.Post, viewerID uint, friendSet, blockedSet map[uint]bool) []models.Post {
	seen := make(map[uint]bool)
	var merged []models.Post
	for _, src := range sources {
		for i := range src {
			p := src[i]
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			if blockedSet[p.AuthorID] {
				continue
			}
			if !CanViewPost(&p, viewerID, friendSet) {
				continue
			}
			merged = append(merged, p)
		}
	}
	return merged
}

func sortPosts(posts []models.Post, trending bool) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		if trending && a.LikeCount != b.LikeCount {
			return a.LikeCount > b.LikeCount
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}

// decorate loads author basics and live engagement for one page of posts.
func (s *FeedService) decorate(ctx context.Context, posts []models.Post, viewerID uint) ([]FeedItem, error) {
	items := make([]FeedItem, 0, len(posts))
	if len(posts) == 0 {
		return items, nil
	}

	authorIDs := make([]uint, 0, len(posts))
	postIDs := make([]uint, 0, len(posts))
	for i := range posts {
		authorIDs = append(authorIDs, posts[i].AuthorID)
		postIDs = append(postIDs, posts[i].ID)
	}

	var authors []models.User
	if err := s.DB.WithContext(ctx).Where("id IN ?", authorIDs).Find(&authors).Error; err != nil {
		return nil, err
	}
	authorByID := make(map[uint]*models.User, len(authors))
	for i := range authors {
		authorByID[authors[i].ID] = &authors[i]
	}

	liked := make(map[uint]bool)
	if viewerID != 0 {
		var reactions []models.Reaction
		if err := s.DB.WithContext(ctx).
			Where("post_id IN ? AND user_id = ?", postIDs, viewerID).
			Find(&reactions).Error; err != nil {
			return nil, err
		}
		for _, r := range reactions {
			liked[r.PostID] = true
		}
	}

	for i := range posts {
		item := FeedItem{
			Post:          posts[i],
			LiveLikeCount: s.LikeCountFor(ctx, &posts[i]),
			IsLiked:       liked[posts[i].ID],
		}
		if a := authorByID[posts[i].AuthorID]; a != nil {
			item.AuthorUsername = a.Username
			item.AuthorAvatarURL = a.AvatarURL
		}
		items = append(items, item)
	}
	return items, nil
}
