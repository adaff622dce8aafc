package controllers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/platefeed/api-go/config"
	"github.com/platefeed/api-go/controllers"
	"github.com/platefeed/api-go/models"
	"github.com/platefeed/api-go/routes"
	"github.com/platefeed/api-go/services"
	"github.com/platefeed/api-go/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() { gin.SetMode(gin.TestMode) }

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.AutoMigrate(db))
	return db
}

func newUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	u := models.User{
		Username: username,
		Email:    username + "@test.com",
		FullName: username + " Test",
		Role:     "user",
		IsActive: true,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

// asUser injects authenticated claims the way the auth middleware would.
func asUser(id uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(string(utils.UserContextKey), &utils.UserClaims{UserID: id, Role: "user"})
	}
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGoogleLoginRequiresCredential(t *testing.T) {
	db := setupTestDB(t)
	ac := &controllers.AuthController{DB: db, GoogleConfig: &config.GoogleConfig{}}

	r := gin.New()
	r.POST("/auth/google", ac.GoogleLogin)

	w := doJSON(t, r, http.MethodPost, "/auth/google", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "idToken or code")
}

func TestSharePostNotifiesOriginalAuthor(t *testing.T) {
	db := setupTestDB(t)
	author := newUser(t, db, "author")
	sharer := newUser(t, db, "sharer")

	post := models.Post{AuthorID: author.ID, Title: "tomato soup", Privacy: models.PrivacyPublic, Status: models.PostActive}
	require.NoError(t, db.Create(&post).Error)

	rel := services.NewRelationshipService(db)
	pc := &controllers.PostController{
		DB:            db,
		Posts:         services.NewPostService(db, nil, rel),
		Notifications: services.NewNotificationService(db),
	}

	r := gin.New()
	r.POST("/posts/:id/share", asUser(sharer.ID), pc.SharePost)

	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/posts/%d/share", post.ID), `{"comment":"must try"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var n models.Notification
	require.NoError(t, db.Where("user_id = ? AND type = ?", author.ID, models.NotificationPostShared).First(&n).Error)
	assert.Equal(t, sharer.ID, n.ActorID)
	require.NotNil(t, n.PostID)
	assert.Equal(t, post.ID, *n.PostID)
}

func TestDeleteFileAcceptsMultiSegmentKeys(t *testing.T) {
	db := setupTestDB(t)
	uc := &controllers.UploadController{DB: db, R2Config: &config.R2Config{BucketName: "recipes", PublicURL: "https://cdn.test"}}

	r := gin.New()
	api := r.Group("/api")
	api.Use(asUser(1))
	routes.SetupUploadRoutes(api, uc)

	// the slash-separated object key must reach the handler, where the
	// ownership check rejects a foreign userID segment
	w := doJSON(t, r, http.MethodDelete, "/api/upload/file/uploads/recipe/42/1717243200_abc.jpg", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}
