package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/platefeed/api-go/services"
	"github.com/platefeed/api-go/utils"
)

type FeedController struct {
	Feed *services.FeedService
}

func NewFeedController(feed *services.FeedService) *FeedController {
	return &FeedController{Feed: feed}
}

// GetFeed godoc
// @Summary Get the viewer's feed
// @Description Returns a cursor-paginated feed. Personalized and friends feeds need a signed-in viewer; trending is open to anonymous callers.
// @Tags feed
// @Produce json
// @Param type query string false "Feed type: personalized, friends or trending"
// @Param limit query integer false "Page size"
// @Param cursor query string false "Opaque pagination token"
// @Success 200 {object} map[string]interface{}
// @Router /feed [get]
func (fc *FeedController) GetFeed(c *gin.Context) {
	feedType, err := services.ParseFeedType(c.Query("type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid feed type"})
		return
	}

	viewerID := utils.ViewerID(c)
	if viewerID == 0 && feedType != services.FeedTrending {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Sign in to see this feed"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	items, nextCursor, err := fc.Feed.BuildFeed(c.Request.Context(), viewerID, feedType, limit, c.Query("cursor"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	resp := gin.H{"success": true, "feedType": feedType, "posts": items}
	if nextCursor != "" {
		resp["nextCursor"] = nextCursor
	}
	c.JSON(http.StatusOK, resp)
}
