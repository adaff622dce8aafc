package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/platefeed/api-go/models"
	"github.com/platefeed/api-go/services"
	"github.com/platefeed/api-go/utils"
	"gorm.io/gorm"
)

type ProfileController struct {
	DB       *gorm.DB
	Profiles *services.ProfileService
	Rel      *services.RelationshipService
}

func NewProfileController(db *gorm.DB, profiles *services.ProfileService, rel *services.RelationshipService) *ProfileController {
	return &ProfileController{DB: db, Profiles: profiles, Rel: rel}
}

// GetMe returns the caller's own profile and privacy settings, creating the
// settings row on first access. Auto-creation happens only here, for the
// caller's own account.
func (pc *ProfileController) GetMe(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	var me models.User
	if err := pc.DB.First(&me, user.UserID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	settings, err := pc.Profiles.EnsureSettings(c.Request.Context(), user.UserID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"profile":         me,
			"privacySettings": settings,
		},
	})
}

// GetUserProfile godoc
// @Summary Get a user's profile, filtered for the viewer
// @Description Returns the target profile with fields redacted per the target's privacy settings and the viewer's relationship
// @Tags profile
// @Produce json
// @Param userId path integer true "User ID"
// @Success 200 {object} map[string]interface{}
// @Router /users/{userId} [get]
func (pc *ProfileController) GetUserProfile(c *gin.Context) {
	targetID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	view, err := pc.Profiles.GetProfile(c.Request.Context(), uint(targetID), utils.ViewerID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": view})
}

func (pc *ProfileController) UpdateProfile(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	var input struct {
		FullName      *string `json:"fullName"`
		Bio           *string `json:"bio"`
		Birthday      *string `json:"birthday"`
		Gender        *string `json:"gender"`
		Country       *string `json:"country"`
		AvatarURL     *string `json:"avatarUrl"`
		BackgroundURL *string `json:"backgroundUrl"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	changes := map[string]interface{}{}
	if input.FullName != nil {
		changes["full_name"] = *input.FullName
	}
	if input.Bio != nil {
		changes["bio"] = *input.Bio
	}
	if input.Birthday != nil {
		parsed, err := time.Parse("2006-01-02", *input.Birthday)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Birthday must be YYYY-MM-DD"})
			return
		}
		changes["birthday"] = parsed
	}
	if input.Gender != nil {
		changes["gender"] = *input.Gender
	}
	if input.Country != nil {
		changes["country"] = *input.Country
	}
	if input.AvatarURL != nil {
		changes["avatar_url"] = *input.AvatarURL
	}
	if input.BackgroundURL != nil {
		changes["background_url"] = *input.BackgroundURL
	}

	if len(changes) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	if err := pc.DB.Model(&models.User{}).Where("id = ?", user.UserID).Updates(changes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Profile updated"})
}

// UpdatePrivacySettings applies per-field level changes. fullName and
// savedRecipes are fixed and rejected outright.
func (pc *ProfileController) UpdatePrivacySettings(c *gin.Context) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	var input map[string]string
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings, err := pc.Profiles.UpdateSettings(c.Request.Context(), user.UserID, input)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": settings})
}

// SearchUsers searches by username or full name. Only public basics come
// back; banned accounts are excluded.
func (pc *ProfileController) SearchUsers(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Search query is required"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 50 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	var users []struct {
		ID        uint   `json:"id"`
		Username  string `json:"username"`
		FullName  string `json:"fullName"`
		AvatarURL string `json:"avatarUrl"`
	}

	searchPattern := "%" + query + "%"
	pc.DB.Table("users").
		Select("users.id, users.username, users.full_name, users.avatar_url").
		Where("users.deleted_at IS NULL AND users.is_banned = ?", false).
		Where("users.username ILIKE ? OR users.full_name ILIKE ?", searchPattern, searchPattern).
		Order("users.username").
		Offset(offset).
		Limit(pageSize).
		Scan(&users)

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"users":    users,
		"query":    query,
		"page":     page,
		"pageSize": pageSize,
	})
}
