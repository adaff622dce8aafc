package models

import (
	"fmt"
	"strings"
	"time"
)

// RelationshipStatus is the state of the single row a user pair shares.
type RelationshipStatus string

const (
	RelationshipPending  RelationshipStatus = "pending"
	RelationshipAccepted RelationshipStatus = "accepted"
	RelationshipBlocked  RelationshipStatus = "blocked"
)

func ParseRelationshipStatus(s string) (RelationshipStatus, error) {
	switch RelationshipStatus(strings.ToLower(strings.TrimSpace(s))) {
	case RelationshipPending:
		return RelationshipPending, nil
	case RelationshipAccepted:
		return RelationshipAccepted, nil
	case RelationshipBlocked:
		return RelationshipBlocked, nil
	default:
		return "", fmt.Errorf("unknown relationship status %q", s)
	}
}

// Relationship is the canonical record for a user pair, keyed with the lower
// id first. One row per pair means contradictory directional records cannot
// exist; direction lives in RequestedBy and BlockedBy.
type Relationship struct {
	UserLowID  uint `gorm:"primaryKey;autoIncrement:false" json:"userLowId"`
	UserHighID uint `gorm:"primaryKey;autoIncrement:false" json:"userHighId"`

	Status      RelationshipStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	RequestedBy uint               `gorm:"not null" json:"requestedBy"`
	BlockedBy   uint               `json:"blockedBy,omitempty"`
	AcceptedAt  *time.Time         `json:"acceptedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PairIDs orders two user ids into the canonical (low, high) key.
func PairIDs(a, b uint) (uint, uint) {
	if a < b {
		return a, b
	}
	return b, a
}

// Other returns the member of the pair that is not userID.
func (r *Relationship) Other(userID uint) uint {
	if r.UserLowID == userID {
		return r.UserHighID
	}
	return r.UserLowID
}
