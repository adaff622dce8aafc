package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/platefeed/api-go/controllers"
)

func SetupModerationRoutes(protected *gin.RouterGroup, moderationController *controllers.ModerationController) {
	posts := protected.Group("/posts")
	{
		posts.POST("/:id/report", moderationController.ReportPost)
	}

	protected.GET("/me/violations", moderationController.MyViolations)
}
