package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/platefeed/api-go/cache"
	"github.com/platefeed/api-go/logger"
	"github.com/platefeed/api-go/models"
	"github.com/platefeed/api-go/services"
	"github.com/platefeed/api-go/utils"
	"gorm.io/gorm"
)

type InteractionController struct {
	DB            *gorm.DB
	Cache         *cache.RedisCache
	Posts         *services.PostService
	Notifications *services.NotificationService
}

func NewInteractionController(db *gorm.DB, redis *cache.RedisCache, posts *services.PostService, notifications *services.NotificationService) *InteractionController {
	return &InteractionController{DB: db, Cache: redis, Posts: posts, Notifications: notifications}
}

// LikePost godoc
// @Summary Like or unlike a post
// @Description Toggles like status for a post the viewer can see
// @Tags interactions
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} map[string]interface{}
// @Router /posts/{id}/like [post]
func (ic *InteractionController) LikePost(c *gin.Context) {
	user, postID, ok := ic.userAndPost(c)
	if !ok {
		return
	}

	// Visibility gate first; an invisible post must behave as missing.
	post, err := ic.Posts.Get(c.Request.Context(), postID, user.UserID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var existing models.Reaction
	result := ic.DB.Where("post_id = ? AND user_id = ?", postID, user.UserID).First(&existing)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		err := ic.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&models.Reaction{PostID: postID, UserID: user.UserID}).Error; err != nil {
				return err
			}
			return tx.Model(&models.Post{}).Where("id = ?", postID).
				UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to like post"})
			return
		}

		ic.bumpLikeCache(c, postID, true)
		ic.Notifications.Notify(c.Request.Context(), post.AuthorID, user.UserID,
			models.NotificationPostLiked, &post.ID, "liked your recipe")

		c.JSON(http.StatusOK, gin.H{"liked": true})
		return
	}

	err = ic.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&existing).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ? AND like_count > 0", postID).
			UpdateColumn("like_count", gorm.Expr("like_count - 1")).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unlike post"})
		return
	}

	ic.bumpLikeCache(c, postID, false)
	c.JSON(http.StatusOK, gin.H{"liked": false})
}

func (ic *InteractionController) CreateComment(c *gin.Context) {
	user, postID, ok := ic.userAndPost(c)
	if !ok {
		return
	}

	var input struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := ic.Posts.Get(c.Request.Context(), postID, user.UserID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	comment := models.Comment{PostID: postID, UserID: user.UserID, Content: input.Content}
	err = ic.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	ic.Notifications.Notify(c.Request.Context(), post.AuthorID, user.UserID,
		models.NotificationPostCommented, &post.ID, "commented on your recipe")

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": comment})
}

func (ic *InteractionController) ListComments(c *gin.Context) {
	postID, ok := ic.postID(c)
	if !ok {
		return
	}

	// Comments inherit the post's visibility.
	if _, err := ic.Posts.Get(c.Request.Context(), postID, utils.ViewerID(c)); err != nil {
		utils.RespondError(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var total int64
	ic.DB.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&total)

	var comments []struct {
		models.Comment
		Username  string `json:"username"`
		AvatarURL string `json:"avatarUrl"`
	}
	ic.DB.Table("comments").
		Select("comments.*, users.username, users.avatar_url").
		Joins("JOIN users ON users.id = comments.user_id").
		Where("comments.post_id = ? AND comments.deleted_at IS NULL", postID).
		Order("comments.created_at ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Scan(&comments)

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"comments":   comments,
		"pagination": NewPaginationMeta(page, pageSize, total),
	})
}

func (ic *InteractionController) DeleteComment(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	commentID, err := strconv.ParseUint(c.Param("commentId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment id"})
		return
	}

	var comment models.Comment
	if err := ic.DB.First(&comment, commentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	// The commenter or the post's author may delete.
	if comment.UserID != user.UserID {
		var post models.Post
		if err := ic.DB.First(&post, comment.PostID).Error; err != nil || post.AuthorID != user.UserID {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
	}

	err = ic.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ? AND comment_count > 0", comment.PostID).
			UpdateColumn("comment_count", gorm.Expr("comment_count - 1")).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Comment deleted"})
}

// SaveRecipe toggles a post in the caller's private saved collection.
func (ic *InteractionController) SaveRecipe(c *gin.Context) {
	user, postID, ok := ic.userAndPost(c)
	if !ok {
		return
	}

	if _, err := ic.Posts.Get(c.Request.Context(), postID, user.UserID); err != nil {
		utils.RespondError(c, err)
		return
	}

	var existing models.SavedRecipe
	result := ic.DB.Where("post_id = ? AND user_id = ?", postID, user.UserID).First(&existing)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		if err := ic.DB.Create(&models.SavedRecipe{PostID: postID, UserID: user.UserID}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save recipe"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"saved": true})
		return
	}

	if err := ic.DB.Delete(&existing).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unsave recipe"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": false})
}

// ListSavedRecipes is owner-only; the saved collection is always private.
func (ic *InteractionController) ListSavedRecipes(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var total int64
	ic.DB.Model(&models.SavedRecipe{}).Where("user_id = ?", user.UserID).Count(&total)

	var saved []models.SavedRecipe
	if err := ic.DB.Where("user_id = ?", user.UserID).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&saved).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load saved recipes"})
		return
	}

	// Saved posts still pass the visibility gate; a save does not grant
	// access to content that later became hidden or private.
	posts := make([]models.Post, 0, len(saved))
	for _, s := range saved {
		post, err := ic.Posts.Get(c.Request.Context(), s.PostID, user.UserID)
		if err != nil {
			continue
		}
		posts = append(posts, *post)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"posts":      posts,
		"pagination": NewPaginationMeta(page, pageSize, total),
	})
}

func (ic *InteractionController) bumpLikeCache(c *gin.Context, postID uint, up bool) {
	if ic.Cache == nil {
		return
	}
	var err error
	if up {
		_, err = ic.Cache.IncrPostLikes(c.Request.Context(), postID)
	} else {
		_, err = ic.Cache.DecrPostLikes(c.Request.Context(), postID)
	}
	if err != nil {
		logger.Warn("like counter cache update failed", "post_id", postID, "err", err)
	}
}

func (ic *InteractionController) userAndPost(c *gin.Context) (*utils.UserClaims, uint, bool) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return nil, 0, false
	}
	postID, ok := ic.postID(c)
	if !ok {
		return nil, 0, false
	}
	return user, postID, true
}

func (ic *InteractionController) postID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post id"})
		return 0, false
	}
	return uint(id), true
}
