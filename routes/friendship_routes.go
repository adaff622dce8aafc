package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/platefeed/api-go/controllers"
)

func SetupFriendshipRoutes(protected *gin.RouterGroup, friendshipController *controllers.FriendshipController) {
	friends := protected.Group("/friends")
	{
		friends.GET("", friendshipController.ListFriends)
		friends.GET("/requests/incoming", friendshipController.ListIncomingRequests)
		friends.GET("/requests/outgoing", friendshipController.ListOutgoingRequests)
		friends.GET("/blocked", friendshipController.ListBlocked)
	}

	users := protected.Group("/users")
	{
		users.POST("/:userId/friend-request", friendshipController.SendRequest)
		users.POST("/:userId/friend-request/accept", friendshipController.AcceptRequest)
		users.POST("/:userId/friend-request/decline", friendshipController.DeclineRequest)
		users.DELETE("/:userId/friend-request", friendshipController.CancelRequest)
		users.DELETE("/:userId/friend", friendshipController.Unfriend)
		users.POST("/:userId/block", friendshipController.BlockUser)
		users.DELETE("/:userId/block", friendshipController.UnblockUser)
	}
}
