package services_test

import (
	"testing"

	"github.com/platefeed/api-go/models"
	"github.com/platefeed/api-go/services"
	"github.com/stretchr/testify/assert"
)

func TestCanViewPostPrivacyLevels(t *testing.T) {
	author := uint(1)
	friend := uint(2)
	stranger := uint(3)
	friendSet := map[uint]bool{author: true}

	public := models.Post{AuthorID: author, Privacy: models.PrivacyPublic, Status: models.PostActive}
	friendsOnly := models.Post{AuthorID: author, Privacy: models.PrivacyFriends, Status: models.PostActive}
	private := models.Post{AuthorID: author, Privacy: models.PrivacyPrivate, Status: models.PostActive}

	assert.True(t, services.CanViewPost(&public, author, nil))
	assert.True(t, services.CanViewPost(&public, stranger, nil))
	assert.True(t, services.CanViewPost(&public, 0, nil))

	assert.True(t, services.CanViewPost(&friendsOnly, author, nil))
	assert.True(t, services.CanViewPost(&friendsOnly, friend, friendSet))
	assert.False(t, services.CanViewPost(&friendsOnly, stranger, nil))
	assert.False(t, services.CanViewPost(&friendsOnly, 0, nil))

	assert.True(t, services.CanViewPost(&private, author, nil))
	assert.False(t, services.CanViewPost(&private, friend, friendSet))
	assert.False(t, services.CanViewPost(&private, 0, nil))
}

func TestCanViewPostHiddenBeatsOwnership(t *testing.T) {
	author := uint(1)
	hidden := models.Post{AuthorID: author, Privacy: models.PrivacyPublic, Status: models.PostHidden}

	// hidden is terminal for everyone, the author included
	assert.False(t, services.CanViewPost(&hidden, author, nil))
	assert.False(t, services.CanViewPost(&hidden, 0, nil))
	assert.False(t, services.CanViewPost(&hidden, 2, map[uint]bool{author: true}))
}

func TestCanViewPostUnderReviewStaysVisible(t *testing.T) {
	author := uint(1)
	post := models.Post{AuthorID: author, Privacy: models.PrivacyPublic, Status: models.PostUnderReview}

	// under review restricts distribution (feeds filter on status), not
	// direct visibility
	assert.True(t, services.CanViewPost(&post, author, nil))
	assert.True(t, services.CanViewPost(&post, 2, nil))
}

func TestCanViewPostUnknownPrivacyDenies(t *testing.T) {
	post := models.Post{AuthorID: 1, Privacy: models.PrivacyLevel("everyone"), Status: models.PostActive}
	assert.False(t, services.CanViewPost(&post, 2, nil))
	// the author still sees their own post; ownership is checked first
	assert.True(t, services.CanViewPost(&post, 1, nil))
}
