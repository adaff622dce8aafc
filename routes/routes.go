package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/platefeed/api-go/cache"
	"github.com/platefeed/api-go/config"
	"github.com/platefeed/api-go/controllers"
	"github.com/platefeed/api-go/middleware"
	"github.com/platefeed/api-go/services"
	"gorm.io/gorm"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB, appCfg *config.AppConfig, redisCache *cache.RedisCache) {
	// Services
	relService := services.NewRelationshipService(db)
	profileService := services.NewProfileService(db, relService, appCfg)
	postService := services.NewPostService(db, redisCache, relService)
	feedService := services.NewFeedService(db, redisCache, relService, appCfg.MaxFeedPageSize)
	notificationService := services.NewNotificationService(db)
	moderationService := services.NewModerationService(db, appCfg.ReviewThreshold, appCfg.HideThreshold)

	// Controllers
	authController := controllers.NewAuthController(db)
	profileController := controllers.NewProfileController(db, profileService, relService)
	friendshipController := controllers.NewFriendshipController(db, relService, notificationService)
	uploadController := controllers.NewUploadController(db)
	postController := controllers.NewPostController(db, postService, feedService, uploadController, notificationService)
	interactionController := controllers.NewInteractionController(db, redisCache, postService, notificationService)
	feedController := controllers.NewFeedController(feedService)
	notificationController := controllers.NewNotificationController(notificationService)
	moderationController := controllers.NewModerationController(db, moderationService, postService, notificationService)

	// Public routes
	public := r.Group("/api")
	{
		public.POST("/register", authController.Register)
		public.POST("/login", authController.Login)
		public.POST("/auth/google", authController.GoogleLogin)
		public.POST("/refresh-token", authController.RefreshToken)
		public.POST("/logout", authController.Logout)
		public.POST("/check-username", authController.CheckUsername)
		public.POST("/check-email", authController.CheckEmail)
	}

	// Optionally authenticated reads: anonymous viewers get the stranger view,
	// signed-in viewers get their relationship-filtered one.
	open := r.Group("/api")
	open.Use(middleware.OptionalAuthMiddleware())
	{
		open.GET("/users/:userId", profileController.GetUserProfile)
		open.GET("/users/:userId/posts", postController.GetUserPosts)
		open.GET("/posts/:id", postController.GetPost)
		open.GET("/posts/:id/comments", interactionController.ListComments)
		open.GET("/feed", feedController.GetFeed)
		open.GET("/users/search", profileController.SearchUsers)
	}

	// Protected routes
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/me", profileController.GetMe)
		protected.PUT("/profile", profileController.UpdateProfile)
		protected.PUT("/privacy-settings", profileController.UpdatePrivacySettings)

		SetupFriendshipRoutes(protected, friendshipController)
		SetupPostRoutes(protected, postController)
		SetupInteractionRoutes(protected, interactionController)
		SetupNotificationRoutes(protected, notificationController)
		SetupModerationRoutes(protected, moderationController)
		SetupUploadRoutes(protected, uploadController)
	}

	// Admin routes
	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("/reports", moderationController.ListOpenReports)
		admin.POST("/reports/:reportId/resolve", moderationController.ResolveReport)
		admin.PUT("/users/:userId/ban", moderationController.BanUser)
	}
}
