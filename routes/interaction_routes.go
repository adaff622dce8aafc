package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/platefeed/api-go/controllers"
)

func SetupInteractionRoutes(protected *gin.RouterGroup, interactionController *controllers.InteractionController) {
	posts := protected.Group("/posts")
	{
		posts.POST("/:id/like", interactionController.LikePost)
		posts.POST("/:id/comments", interactionController.CreateComment)
		posts.POST("/:id/save", interactionController.SaveRecipe)
	}

	protected.DELETE("/comments/:commentId", interactionController.DeleteComment)
	protected.GET("/saved-recipes", interactionController.ListSavedRecipes)
}
