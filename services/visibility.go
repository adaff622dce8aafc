package services

import (
	"github.com/platefeed/api-go/logger"
	"github.com/platefeed/api-go/models"
)

// CanViewPost decides whether viewerID may see a post. Pure: friendIDs is the
// author-relative friend set the caller resolved once, so batched callers
// (the feed) pay for one lookup, not one per post.
//
// Hidden beats everything, the author included; a hidden post is only
// reachable through the moderation pathway.
func CanViewPost(post *models.Post, viewerID uint, friendIDs map[uint]bool) bool {
	if post.Status == models.PostHidden {
		return false
	}
	if viewerID != 0 && post.AuthorID == viewerID {
		return true
	}

	switch post.Privacy {
	case models.PrivacyPublic:
		return true
	case models.PrivacyFriends:
		return viewerID != 0 && friendIDs[post.AuthorID]
	case models.PrivacyPrivate:
		return false
	default:
		logger.Warn("unknown post privacy level, denying", "level", string(post.Privacy), "post_id", post.ID)
		return false
	}
}
