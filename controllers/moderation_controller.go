package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/platefeed/api-go/models"
	"github.com/platefeed/api-go/services"
	"github.com/platefeed/api-go/utils"
	"gorm.io/gorm"
)

type ModerationController struct {
	DB            *gorm.DB
	Moderation    *services.ModerationService
	Posts         *services.PostService
	Notifications *services.NotificationService
}

func NewModerationController(db *gorm.DB, moderation *services.ModerationService, posts *services.PostService, notifications *services.NotificationService) *ModerationController {
	return &ModerationController{DB: db, Moderation: moderation, Posts: posts, Notifications: notifications}
}

// ReportPost files a report against a post the caller can see. The reporter
// learns nothing about how many reports exist or what state the post is in.
func (mc *ModerationController) ReportPost(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post id"})
		return
	}

	var input struct {
		Reason      string `json:"reason" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Reporting requires the post to be visible to the reporter.
	if _, err := mc.Posts.Get(c.Request.Context(), uint(postID), user.UserID); err != nil {
		utils.RespondError(c, err)
		return
	}

	if err := mc.Moderation.ReportPost(c.Request.Context(), user.UserID, uint(postID), input.Reason, input.Description); err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Report submitted"})
}

// MyViolations lets an author see their own under-review and hidden posts.
// This is the only read path that surfaces them.
func (mc *ModerationController) MyViolations(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	posts, err := mc.Moderation.AuthorViolations(c.Request.Context(), user.UserID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "posts": posts, "count": len(posts)})
}

func (mc *ModerationController) ListOpenReports(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	reports, total, err := mc.Moderation.OpenReports(c.Request.Context(), pageSize, (page-1)*pageSize)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"reports":    reports,
		"pagination": NewPaginationMeta(page, pageSize, total),
	})
}

// ResolveReport is the admin decision point: dismiss restores the post,
// uphold hides it for good. The author is notified either way.
func (mc *ModerationController) ResolveReport(c *gin.Context) {
	reportID, err := strconv.ParseUint(c.Param("reportId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid report id"})
		return
	}

	var input struct {
		Action string `json:"action" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var report models.Report
	if err := mc.DB.First(&report, reportID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if err := mc.Moderation.ResolveReport(c.Request.Context(), uint(reportID), input.Action); err != nil {
		utils.RespondError(c, err)
		return
	}

	var post models.Post
	if err := mc.DB.First(&post, report.PostID).Error; err == nil {
		message := "your post was reviewed and restored"
		if input.Action == "uphold" {
			message = "your post was removed for violating community guidelines"
		}
		admin := utils.GetUser(c)
		mc.Notifications.Notify(c.Request.Context(), post.AuthorID, admin.UserID,
			models.NotificationPostModerated, &post.ID, message)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Report resolved"})
}

func (mc *ModerationController) BanUser(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	var input struct {
		Banned *bool `json:"banned" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := mc.Moderation.BanUser(c.Request.Context(), uint(userID), *input.Banned); err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User ban state updated"})
}
