package controllers

import (
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/platefeed/api-go/config"
	"github.com/platefeed/api-go/logger"
	"github.com/platefeed/api-go/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthController struct {
	DB           *gorm.DB
	GoogleConfig *config.GoogleConfig
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{
		DB:           db,
		GoogleConfig: config.NewGoogleConfig(),
	}
}

// validateUsernamePattern validates username format and constraints
func validateUsernamePattern(username string) error {
	trimmedUsername := strings.TrimSpace(username)

	if len(trimmedUsername) < 3 {
		return fmt.Errorf("username must be at least 3 characters long")
	}
	if len(trimmedUsername) > 20 {
		return fmt.Errorf("username must be no more than 20 characters long")
	}

	startsWithLetter, _ := regexp.MatchString(`^[a-zA-Z]`, trimmedUsername)
	if !startsWithLetter {
		return fmt.Errorf("username must start with a letter")
	}

	validPattern, _ := regexp.MatchString(`^[a-zA-Z][a-zA-Z0-9_]*$`, trimmedUsername)
	if !validPattern {
		return fmt.Errorf("username can only contain letters, numbers, and underscores")
	}

	reserved := []string{"admin", "root", "api", "www", "mail", "ftp", "test", "demo", "user", "guest", "null", "undefined"}
	for _, reservedWord := range reserved {
		if strings.ToLower(trimmedUsername) == reservedWord {
			return fmt.Errorf("this username is reserved and cannot be used")
		}
	}

	return nil
}

func (ac *AuthController) Register(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
		FullName string `json:"fullName" binding:"required"`
		Gender   string `json:"gender"`
		Birthday string `json:"birthday"`
		Country  string `json:"country"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	if err := validateUsernamePattern(input.Username); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not hash password", "success": false})
		return
	}
	hashedPasswordStr := string(hashedPassword)

	var birthday *time.Time
	if input.Birthday != "" {
		if parsed, err := time.Parse("2006-01-02", input.Birthday); err == nil {
			birthday = &parsed
		}
	}

	user := models.User{
		Username: strings.TrimSpace(input.Username),
		Email:    strings.ToLower(strings.TrimSpace(input.Email)),
		Password: &hashedPasswordStr,
		FullName: input.FullName,
		Gender:   input.Gender,
		Birthday: birthday,
		Country:  input.Country,
		Role:     "user",
		IsActive: true,
	}

	if err := ac.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Username or email already in use", "success": false})
		return
	}

	// Every account starts with the default privacy configuration.
	settings := models.DefaultPrivacySettings(user.ID)
	if err := ac.DB.Create(&settings).Error; err != nil {
		logger.Error("failed to create default privacy settings", "user_id", user.ID, "err", err)
	}

	ac.respondWithTokens(c, &user, http.StatusCreated)
}

func (ac *AuthController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := ac.DB.Where("email = ?", strings.ToLower(input.Email)).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if user.Password == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if user.IsBanned {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is banned"})
		return
	}

	ac.respondWithTokens(c, &user, http.StatusOK)
}

// GoogleLogin signs a user in with a Google ID token or an authorization
// code, creating the account on first sight.
func (ac *AuthController) GoogleLogin(c *gin.Context) {
	if ac.GoogleConfig == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "Google sign-in is not configured"})
		return
	}

	var input struct {
		IDToken string `json:"idToken"`
		Code    string `json:"code"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.IDToken == "" && input.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "idToken or code is required"})
		return
	}

	info, err := ac.googleUserInfo(c, input.IDToken, input.Code)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid Google token"})
		return
	}

	var user models.User
	err = ac.DB.Where("google_id = ?", info.ID).First(&user).Error
	if err != nil {
		// Fall back to the verified email, then create.
		err = ac.DB.Where("email = ?", strings.ToLower(info.Email)).First(&user).Error
		if err != nil {
			user = models.User{
				Username:  googleUsername(info),
				Email:     strings.ToLower(info.Email),
				GoogleID:  &info.ID,
				FullName:  info.Name,
				AvatarURL: info.Picture,
				Role:      "user",
				IsActive:  true,
			}
			if err := ac.DB.Create(&user).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create account"})
				return
			}
			settings := models.DefaultPrivacySettings(user.ID)
			if err := ac.DB.Create(&settings).Error; err != nil {
				logger.Error("failed to create default privacy settings", "user_id", user.ID, "err", err)
			}
		} else {
			ac.DB.Model(&user).Update("google_id", info.ID)
		}
	}

	if user.IsBanned {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is banned"})
		return
	}

	ac.respondWithTokens(c, &user, http.StatusOK)
}

func (ac *AuthController) RefreshToken(c *gin.Context) {
	var input struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	var refreshToken models.RefreshToken
	if err := ac.DB.Where("token = ?", input.RefreshToken).First(&refreshToken).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token", "success": false})
		return
	}

	if time.Now().After(refreshToken.ExpirationDate) {
		ac.DB.Delete(&refreshToken)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token expired", "success": false})
		return
	}

	var user models.User
	if err := ac.DB.First(&user, refreshToken.UserID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token", "success": false})
		return
	}

	// Rotate: the old token is spent.
	ac.DB.Delete(&refreshToken)
	ac.respondWithTokens(c, &user, http.StatusOK)
}

func (ac *AuthController) Logout(c *gin.Context) {
	var input struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = c.ShouldBindJSON(&input)

	if input.RefreshToken != "" {
		ac.DB.Where("token = ?", input.RefreshToken).Delete(&models.RefreshToken{})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out"})
}

func (ac *AuthController) CheckUsername(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	if err := validateUsernamePattern(input.Username); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error(), "available": false})
		return
	}

	var user models.User
	if err := ac.DB.Where("username = ?", input.Username).First(&user).Error; err != nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "available": true})
		return
	}

	c.JSON(http.StatusConflict, gin.H{"success": false, "error": "Username already taken", "available": false})
}

func (ac *AuthController) CheckEmail(c *gin.Context) {
	var input struct {
		Email string `json:"email" binding:"required,email"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "success": false})
		return
	}

	var user models.User
	if err := ac.DB.Where("email = ?", strings.ToLower(input.Email)).First(&user).Error; err != nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "available": true})
		return
	}

	c.JSON(http.StatusConflict, gin.H{"success": false, "error": "Email already registered", "available": false})
}

func (ac *AuthController) respondWithTokens(c *gin.Context, user *models.User, status int) {
	accessTokenBase := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"exp":     time.Now().Add(time.Hour * 24 * 7).Unix(),
	})
	refreshTokenBase := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"exp":     time.Now().Add(time.Hour * 24 * 30).Unix(),
	})

	secret := []byte(os.Getenv("JWT_SECRET"))
	accessToken, err := accessTokenBase.SignedString(secret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate token", "success": false})
		return
	}
	refreshToken, err := refreshTokenBase.SignedString(secret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate token", "success": false})
		return
	}

	ac.DB.Create(&models.RefreshToken{
		UserID:         user.ID,
		Token:          refreshToken,
		ExpirationDate: time.Now().Add(time.Hour * 24 * 30),
	})

	c.JSON(status, gin.H{
		"token_type":    "Bearer",
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"user": gin.H{
			"id":        user.ID,
			"email":     user.Email,
			"username":  user.Username,
			"fullName":  user.FullName,
			"avatarUrl": user.AvatarURL,
		},
		"success": true,
	})
}

// googleUserInfo resolves the caller's Google profile from whichever
// credential the client sent: a ready ID token, or a redirect-flow
// authorization code that still needs exchanging.
func (ac *AuthController) googleUserInfo(c *gin.Context, idToken, code string) (*config.GoogleUserInfo, error) {
	if idToken != "" {
		return ac.GoogleConfig.VerifyIDToken(idToken)
	}

	token, err := ac.GoogleConfig.ExchangeCode(c.Request.Context(), code)
	if err != nil {
		return nil, err
	}
	return ac.GoogleConfig.FetchUserInfo(c.Request.Context(), token)
}

func googleUsername(info *config.GoogleUserInfo) string {
	base := strings.Split(info.Email, "@")[0]
	base = regexp.MustCompile(`[^a-zA-Z0-9_]`).ReplaceAllString(base, "_")
	if len(base) < 3 {
		base = "user_" + base
	}
	if len(base) > 14 {
		base = base[:14]
	}
	return fmt.Sprintf("%s_%d", base, time.Now().Unix()%100000)
}
