package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/platefeed/api-go/controllers"
)

func SetupNotificationRoutes(protected *gin.RouterGroup, notificationController *controllers.NotificationController) {
	notifications := protected.Group("/notifications")
	{
		notifications.GET("", notificationController.ListNotifications)
		notifications.GET("/unread-count", notificationController.UnreadCount)
		notifications.PUT("/:id/read", notificationController.MarkRead)
		notifications.PUT("/read-all", notificationController.MarkAllRead)
	}
}
