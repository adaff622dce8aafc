package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/platefeed/api-go/logger"
	"github.com/platefeed/api-go/models"
	"github.com/platefeed/api-go/services"
	"github.com/platefeed/api-go/utils"
	"gorm.io/gorm"
)

type PostController struct {
	DB            *gorm.DB
	Posts         *services.PostService
	Feed          *services.FeedService
	Uploads       *UploadController
	Notifications *services.NotificationService
}

func NewPostController(db *gorm.DB, posts *services.PostService, feed *services.FeedService, uploads *UploadController, notifications *services.NotificationService) *PostController {
	return &PostController{DB: db, Posts: posts, Feed: feed, Uploads: uploads, Notifications: notifications}
}

// CreatePost godoc
// @Summary Publish a recipe post
// @Tags posts
// @Accept json
// @Produce json
// @Success 201 {object} map[string]interface{}
// @Router /posts [post]
func (pc *PostController) CreatePost(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	var input struct {
		Title           string   `json:"title" binding:"required"`
		Description     string   `json:"description"`
		Images          []string `json:"images"`
		Ingredients     []string `json:"ingredients"`
		Steps           []string `json:"steps"`
		Servings        int      `json:"servings"`
		CookTimeMinutes int      `json:"cookTimeMinutes"`
		Privacy         string   `json:"privacy"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	privacy := models.PrivacyPublic
	if input.Privacy != "" {
		parsed, err := models.ParsePrivacyLevel(input.Privacy)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid privacy level"})
			return
		}
		privacy = parsed
	}

	post, err := pc.Posts.Create(c.Request.Context(), user.UserID, services.CreatePostInput{
		Title:           input.Title,
		Description:     input.Description,
		Images:          input.Images,
		Ingredients:     input.Ingredients,
		Steps:           input.Steps,
		Servings:        input.Servings,
		CookTimeMinutes: input.CookTimeMinutes,
		Privacy:         privacy,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": post})
}

// GetPost returns a single post if the viewer may see it. Denied and missing
// are both 404.
func (pc *PostController) GetPost(c *gin.Context) {
	postID, ok := pc.postID(c)
	if !ok {
		return
	}

	post, err := pc.Posts.Get(c.Request.Context(), postID, utils.ViewerID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": post})
}

// UpdatePost edits title and/or privacy; everything else is immutable after
// publish.
func (pc *PostController) UpdatePost(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}
	postID, ok := pc.postID(c)
	if !ok {
		return
	}

	var input struct {
		Title   *string `json:"title"`
		Privacy *string `json:"privacy"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var privacy *models.PrivacyLevel
	if input.Privacy != nil {
		parsed, err := models.ParsePrivacyLevel(*input.Privacy)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid privacy level"})
			return
		}
		privacy = &parsed
	}

	post, err := pc.Posts.Update(c.Request.Context(), postID, user.UserID, input.Title, privacy)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": post})
}

func (pc *PostController) DeletePost(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}
	postID, ok := pc.postID(c)
	if !ok {
		return
	}

	imageURLs, err := pc.Posts.Delete(c.Request.Context(), postID, user.UserID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	if pc.Uploads != nil {
		if err := pc.Uploads.DeleteObjectsByURL(c.Request.Context(), imageURLs); err != nil {
			logger.Warn("failed to delete post assets", "post_id", postID, "err", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Post deleted"})
}

// SharePost republishes an existing post under the caller's account with a
// snapshot of the original.
func (pc *PostController) SharePost(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}
	postID, ok := pc.postID(c)
	if !ok {
		return
	}

	var input struct {
		Comment string `json:"comment"`
		Privacy string `json:"privacy"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	privacy := models.PrivacyPublic
	if input.Privacy != "" {
		parsed, err := models.ParsePrivacyLevel(input.Privacy)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid privacy level"})
			return
		}
		privacy = parsed
	}

	share, err := pc.Posts.Share(c.Request.Context(), user.UserID, postID, input.Comment, privacy)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	if share.SharedPostID != nil {
		var originalAuthorID uint
		if err := pc.DB.Model(&models.Post{}).Where("id = ?", *share.SharedPostID).
			Select("author_id").Scan(&originalAuthorID).Error; err == nil && originalAuthorID != 0 {
			pc.Notifications.Notify(c.Request.Context(), originalAuthorID, user.UserID,
				models.NotificationPostShared, share.SharedPostID, "shared your recipe")
		}
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": share})
}

// GetUserPosts is a user's timeline, filtered for the viewer and
// cursor-paginated.
func (pc *PostController) GetUserPosts(c *gin.Context) {
	authorID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	cursor := c.Query("cursor")

	items, nextCursor, err := pc.Feed.UserPosts(c.Request.Context(), uint(authorID), utils.ViewerID(c), limit, cursor)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	resp := gin.H{"success": true, "posts": items}
	if nextCursor != "" {
		resp["nextCursor"] = nextCursor
	}
	c.JSON(http.StatusOK, resp)
}

func (pc *PostController) postID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post id"})
		return 0, false
	}
	return uint(id), true
}
