package utils

import (
	"github.com/gin-gonic/gin"
)

type UserClaims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
}

type contextKey string

const UserContextKey contextKey = "user"

// GetUser returns the authenticated caller, or nil when the request is
// anonymous (optional-auth routes).
func GetUser(c *gin.Context) *UserClaims {
	user, exists := c.Get(string(UserContextKey))
	if !exists {
		return nil
	}
	if userClaims, ok := user.(*UserClaims); ok {
		return userClaims
	}
	return nil
}

// ViewerID returns the caller's user id, or 0 for anonymous viewers. The
// relationship resolver maps 0 to "stranger".
func ViewerID(c *gin.Context) uint {
	if u := GetUser(c); u != nil {
		return u.UserID
	}
	return 0
}
