package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/platefeed/api-go/controllers"
)

func SetupUploadRoutes(protected *gin.RouterGroup, uploadController *controllers.UploadController) {
	upload := protected.Group("/upload")
	{
		upload.POST("/presigned-url", uploadController.GetPresignedURL)
		upload.POST("/multiple-presigned-urls", uploadController.GetMultiplePresignedURLs)
		upload.POST("/confirm", uploadController.ConfirmUpload)
		// Catch-all: object keys contain slashes (uploads/{kind}/{userID}/...).
		upload.DELETE("/file/*key", uploadController.DeleteFile)
	}
}
