package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/platefeed/api-go/models"
	"github.com/platefeed/api-go/services"
	"github.com/platefeed/api-go/utils"
	"gorm.io/gorm"
)

type FriendshipController struct {
	DB            *gorm.DB
	Rel           *services.RelationshipService
	Notifications *services.NotificationService
}

func NewFriendshipController(db *gorm.DB, rel *services.RelationshipService, notifications *services.NotificationService) *FriendshipController {
	return &FriendshipController{DB: db, Rel: rel, Notifications: notifications}
}

func (fc *FriendshipController) SendRequest(c *gin.Context) {
	user, targetID, ok := fc.userAndTarget(c)
	if !ok {
		return
	}

	// The target must exist; blocked pairs also answer 404 from the service
	// so a block is not observable.
	var target models.User
	if err := fc.DB.First(&target, targetID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := fc.Rel.SendRequest(c.Request.Context(), user.UserID, targetID); err != nil {
		utils.RespondError(c, err)
		return
	}

	fc.Notifications.Notify(c.Request.Context(), targetID, user.UserID,
		models.NotificationFriendRequest, nil, "sent you a friend request")

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Friend request sent"})
}

func (fc *FriendshipController) AcceptRequest(c *gin.Context) {
	user, targetID, ok := fc.userAndTarget(c)
	if !ok {
		return
	}

	if err := fc.Rel.AcceptRequest(c.Request.Context(), user.UserID, targetID); err != nil {
		utils.RespondError(c, err)
		return
	}

	fc.Notifications.Notify(c.Request.Context(), targetID, user.UserID,
		models.NotificationFriendAccepted, nil, "accepted your friend request")

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Friend request accepted"})
}

func (fc *FriendshipController) DeclineRequest(c *gin.Context) {
	user, targetID, ok := fc.userAndTarget(c)
	if !ok {
		return
	}

	if err := fc.Rel.DeclineRequest(c.Request.Context(), user.UserID, targetID); err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Friend request declined"})
}

func (fc *FriendshipController) CancelRequest(c *gin.Context) {
	user, targetID, ok := fc.userAndTarget(c)
	if !ok {
		return
	}

	if err := fc.Rel.CancelRequest(c.Request.Context(), user.UserID, targetID); err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Friend request cancelled"})
}

func (fc *FriendshipController) Unfriend(c *gin.Context) {
	user, targetID, ok := fc.userAndTarget(c)
	if !ok {
		return
	}

	if err := fc.Rel.Unfriend(c.Request.Context(), user.UserID, targetID); err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Friend removed"})
}

func (fc *FriendshipController) BlockUser(c *gin.Context) {
	user, targetID, ok := fc.userAndTarget(c)
	if !ok {
		return
	}

	var target models.User
	if err := fc.DB.First(&target, targetID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := fc.Rel.Block(c.Request.Context(), user.UserID, targetID); err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User blocked"})
}

func (fc *FriendshipController) UnblockUser(c *gin.Context) {
	user, targetID, ok := fc.userAndTarget(c)
	if !ok {
		return
	}

	if err := fc.Rel.Unblock(c.Request.Context(), user.UserID, targetID); err != nil {
		utils.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User unblocked"})
}

func (fc *FriendshipController) ListFriends(c *gin.Context) {
	fc.listUsers(c, fc.Rel.Friends, "friends")
}

func (fc *FriendshipController) ListIncomingRequests(c *gin.Context) {
	fc.listUsers(c, fc.Rel.PendingIncoming, "requests")
}

func (fc *FriendshipController) ListOutgoingRequests(c *gin.Context) {
	fc.listUsers(c, fc.Rel.PendingOutgoing, "requests")
}

func (fc *FriendshipController) ListBlocked(c *gin.Context) {
	fc.listUsers(c, fc.Rel.BlockedUsers, "blocked")
}

func (fc *FriendshipController) listUsers(c *gin.Context, load func(ctx context.Context, userID uint) ([]models.User, error), key string) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	users, err := load(c.Request.Context(), user.UserID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	summaries := make([]gin.H, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, gin.H{
			"id":        u.ID,
			"username":  u.Username,
			"fullName":  u.FullName,
			"avatarUrl": u.AvatarURL,
		})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, key: summaries, "count": len(summaries)})
}

func (fc *FriendshipController) userAndTarget(c *gin.Context) (*utils.UserClaims, uint, bool) {
	user := utils.GetUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return nil, 0, false
	}

	targetID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return nil, 0, false
	}

	return user, uint(targetID), true
}
