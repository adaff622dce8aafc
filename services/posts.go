package services

import (
	"context"
	"errors"

	"github.com/platefeed/api-go/cache"
	"github.com/platefeed/api-go/models"
	"github.com/platefeed/api-go/utils"
	"gorm.io/gorm"
)

type PostService struct {
	DB    *gorm.DB
	Cache *cache.RedisCache
	Rel   *RelationshipService
}

func NewPostService(db *gorm.DB, redis *cache.RedisCache, rel *RelationshipService) *PostService {
	return &PostService{DB: db, Cache: redis, Rel: rel}
}

// CreatePostInput carries everything settable at publish time. Only Title and
// Privacy stay mutable afterwards.
type CreatePostInput struct {
	Title           string
	Description     string
	Images          []string
	Ingredients     []string
	Steps           []string
	Servings        int
	CookTimeMinutes int
	Privacy         models.PrivacyLevel
}

func (s *PostService) Create(ctx context.Context, authorID uint, in CreatePostInput) (*models.Post, error) {
	post := models.Post{
		AuthorID:        authorID,
		Title:           in.Title,
		Description:     in.Description,
		Images:          in.Images,
		Ingredients:     in.Ingredients,
		Steps:           in.Steps,
		Servings:        in.Servings,
		CookTimeMinutes: in.CookTimeMinutes,
		Privacy:         in.Privacy,
		Status:          models.PostActive,
	}
	if err := s.DB.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// Get returns a post the viewer is allowed to see. A denied post and a
// missing post are the same ErrNotFound; existence must not leak.
func (s *PostService) Get(ctx context.Context, postID, viewerID uint) (*models.Post, error) {
	var post models.Post
	if err := s.DB.WithContext(ctx).First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrNotFound
		}
		return nil, err
	}

	rel, err := s.Rel.Resolve(ctx, post.AuthorID, viewerID)
	if err != nil {
		return nil, err
	}
	if rel == RelationBlocked {
		return nil, utils.ErrNotFound
	}

	friendSet := map[uint]bool{}
	if rel == RelationFriend {
		friendSet[post.AuthorID] = true
	}
	if !CanViewPost(&post, viewerID, friendSet) {
		return nil, utils.ErrNotFound
	}
	return &post, nil
}

// Update edits a post. Only the title and the privacy level are mutable; a
// nil pointer leaves the field alone.
func (s *PostService) Update(ctx context.Context, postID, actorID uint, title *string, privacy *models.PrivacyLevel) (*models.Post, error) {
	post, err := s.ownPost(ctx, postID, actorID)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if title != nil {
		if *title == "" {
			return nil, utils.Validation("title", "title cannot be empty")
		}
		changes["title"] = *title
	}
	if privacy != nil {
		changes["privacy"] = *privacy
	}
	if len(changes) == 0 {
		return post, nil
	}

	if err := s.DB.WithContext(ctx).Model(post).Updates(changes).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// Delete removes an owned post and everything hanging off it. Asset cleanup
// in object storage is the upload controller's job; this returns the image
// keys so the caller can queue it.
func (s *PostService) Delete(ctx context.Context, postID, actorID uint) ([]string, error) {
	post, err := s.ownPost(ctx, postID, actorID)
	if err != nil {
		return nil, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Reaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.SavedRecipe{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Report{}).Error; err != nil {
			return err
		}
		return tx.Delete(post).Error
	})
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		_ = s.Cache.DeletePostLikes(ctx, post.ID)
	}
	return post.Images, nil
}

// Share publishes a new post referencing an existing one, snapshotting its
// title and first image so the share stays renderable if the original goes
// away. The share inherits nothing else; it has its own privacy level.
func (s *PostService) Share(ctx context.Context, actorID, originalID uint, comment string, privacy models.PrivacyLevel) (*models.Post, error) {
	original, err := s.Get(ctx, originalID, actorID)
	if err != nil {
		return nil, err
	}
	if original.SharedPostID != nil {
		// share the root, not a share of a share
		return nil, utils.Validation("postId", "cannot share a shared post")
	}

	var image string
	if len(original.Images) > 0 {
		image = original.Images[0]
	}

	share := models.Post{
		AuthorID:           actorID,
		Title:              original.Title,
		Description:        comment,
		Privacy:            privacy,
		Status:             models.PostActive,
		SharedPostID:       &original.ID,
		SharedPostTitle:    original.Title,
		SharedPostImageURL: image,
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&share).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", original.ID).
			UpdateColumn("share_count", gorm.Expr("share_count + 1")).Error
	})
	if err != nil {
		return nil, err
	}
	return &share, nil
}

func (s *PostService) ownPost(ctx context.Context, postID, actorID uint) (*models.Post, error) {
	var post models.Post
	if err := s.DB.WithContext(ctx).First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrNotFound
		}
		return nil, err
	}
	if post.AuthorID != actorID {
		return nil, utils.ErrNotFound
	}
	// Hidden posts are frozen; the owner edits or deletes nothing until a
	// moderator restores them.
	if post.Status == models.PostHidden {
		return nil, utils.ErrNotFound
	}
	return &post, nil
}
