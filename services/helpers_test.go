package services_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/platefeed/api-go/config"
	"github.com/platefeed/api-go/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB opens an in-memory SQLite database and runs the full migration
// set. Timestamps are truncated to the millisecond so cursor round-trips
// compare exactly.
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

var postSeq int

func newPost(t *testing.T, db *gorm.DB, authorID uint, privacy models.PrivacyLevel, likes int, createdAt time.Time) models.Post {
	t.Helper()
	postSeq++
	p := models.Post{
		AuthorID:  authorID,
		Title:     fmt.Sprintf("recipe %d", postSeq),
		Privacy:   privacy,
		Status:    models.PostActive,
		LikeCount: likes,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

// befriend writes an accepted relationship row directly.
func befriend(t *testing.T, db *gorm.DB, a, b uint) {
	t.Helper()
	low, high := models.PairIDs(a, b)
	now := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, db.Create(&models.Relationship{
		UserLowID:   low,
		UserHighID:  high,
		Status:      models.RelationshipAccepted,
		RequestedBy: a,
		AcceptedAt:  &now,
	}).Error)
}

// blockPair writes a block placed by actor.
func blockPair(t *testing.T, db *gorm.DB, actor, other uint) {
	t.Helper()
	low, high := models.PairIDs(actor, other)
	require.NoError(t, db.Create(&models.Relationship{
		UserLowID:   low,
		UserHighID:  high,
		Status:      models.RelationshipBlocked,
		RequestedBy: actor,
		BlockedBy:   actor,
	}).Error)
}

// baseTime is a fixed anchor for deterministic created_at ordering.
func baseTime() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}
