package services

import (
	"context"
	"errors"
	"time"

	"github.com/platefeed/api-go/models"
	"github.com/platefeed/api-go/utils"
	"gorm.io/gorm"
)

// Relation is the viewer's relationship category toward a target user. It is
// what every downstream filter branches on.
type Relation string

const (
	RelationSelf     Relation = "self"
	RelationFriend   Relation = "friend"
	RelationStranger Relation = "stranger"
	RelationBlocked  Relation = "blocked"
)

type RelationshipService struct {
	DB *gorm.DB
}

func NewRelationshipService(db *gorm.DB) *RelationshipService {
	return &RelationshipService{DB: db}
}

// Resolve determines the relationship category between target and viewer.
// viewerID 0 means anonymous. Self takes precedence over any stored row, a
// block is symmetric regardless of who placed it, and a pending request is
// still a stranger. Absence of a row is a valid stranger outcome, never an
// error.
func (s *RelationshipService) Resolve(ctx context.Context, targetID, viewerID uint) (Relation, error) {
	if viewerID == 0 {
		return RelationStranger, nil
	}
	if viewerID == targetID {
		return RelationSelf, nil
	}

	rel, err := s.pair(ctx, targetID, viewerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RelationStranger, nil
		}
		return "", err
	}

	switch rel.Status {
	case models.RelationshipBlocked:
		return RelationBlocked, nil
	case models.RelationshipAccepted:
		return RelationFriend, nil
	default:
		return RelationStranger, nil
	}
}

// FriendIDSet returns the ids of userID's accepted friends. Batched callers
// (profile stats, the feed) compute this once instead of resolving per item.
func (s *RelationshipService) FriendIDSet(ctx context.Context, userID uint) (map[uint]bool, error) {
	var rels []models.Relationship
	err := s.DB.WithContext(ctx).
		Where("(user_low_id = ? OR user_high_id = ?) AND status = ?", userID, userID, models.RelationshipAccepted).
		Find(&rels).Error
	if err != nil {
		return nil, err
	}

	set := make(map[uint]bool, len(rels))
	for i := range rels {
		set[rels[i].Other(userID)] = true
	}
	return set, nil
}

// BlockedIDSet returns every user involved in a block with userID, in either
// direction. The effect of a block is symmetric, so both show up.
func (s *RelationshipService) BlockedIDSet(ctx context.Context, userID uint) (map[uint]bool, error) {
	var rels []models.Relationship
	err := s.DB.WithContext(ctx).
		Where("(user_low_id = ? OR user_high_id = ?) AND status = ?", userID, userID, models.RelationshipBlocked).
		Find(&rels).Error
	if err != nil {
		return nil, err
	}

	set := make(map[uint]bool, len(rels))
	for i := range rels {
		set[rels[i].Other(userID)] = true
	}
	return set, nil
}

// SendRequest creates a pending edge from -> to. Sending to a blocked pair
// reports not-found so the block is not observable from the outside.
func (s *RelationshipService) SendRequest(ctx context.Context, from, to uint) error {
	if from == to {
		return utils.Validation("userId", "cannot send a friend request to yourself")
	}

	rel, err := s.pair(ctx, from, to)
	if err == nil {
		switch rel.Status {
		case models.RelationshipBlocked:
			return utils.ErrNotFound
		case models.RelationshipAccepted:
			return utils.Validation("userId", "already friends")
		default:
			return utils.Validation("userId", "a friend request is already pending")
		}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	low, high := models.PairIDs(from, to)
	return s.DB.WithContext(ctx).Create(&models.Relationship{
		UserLowID:   low,
		UserHighID:  high,
		Status:      models.RelationshipPending,
		RequestedBy: from,
	}).Error
}

// AcceptRequest turns a pending edge into a friendship. Only the recipient of
// the request may accept it.
func (s *RelationshipService) AcceptRequest(ctx context.Context, actor, other uint) error {
	rel, err := s.pendingBetween(ctx, actor, other)
	if err != nil {
		return err
	}
	if rel.RequestedBy == actor {
		return utils.ErrForbidden
	}

	now := time.Now()
	return s.DB.WithContext(ctx).Model(rel).Updates(map[string]interface{}{
		"status":      models.RelationshipAccepted,
		"accepted_at": &now,
	}).Error
}

// DeclineRequest removes a pending edge; only the recipient may decline.
func (s *RelationshipService) DeclineRequest(ctx context.Context, actor, other uint) error {
	rel, err := s.pendingBetween(ctx, actor, other)
	if err != nil {
		return err
	}
	if rel.RequestedBy == actor {
		return utils.ErrForbidden
	}
	return s.deletePair(ctx, rel)
}

// CancelRequest removes a pending edge; only the sender may cancel.
func (s *RelationshipService) CancelRequest(ctx context.Context, actor, other uint) error {
	rel, err := s.pendingBetween(ctx, actor, other)
	if err != nil {
		return err
	}
	if rel.RequestedBy != actor {
		return utils.ErrForbidden
	}
	return s.deletePair(ctx, rel)
}

// Unfriend deletes an accepted friendship. Either side may do it.
func (s *RelationshipService) Unfriend(ctx context.Context, actor, other uint) error {
	rel, err := s.pair(ctx, actor, other)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrNotFound
		}
		return err
	}
	if rel.Status != models.RelationshipAccepted {
		return utils.ErrNotFound
	}
	return s.deletePair(ctx, rel)
}

// Block overwrites whatever state the pair is in. If a block already exists
// the row is left untouched; the effect is symmetric either way.
func (s *RelationshipService) Block(ctx context.Context, actor, other uint) error {
	if actor == other {
		return utils.Validation("userId", "cannot block yourself")
	}

	rel, err := s.pair(ctx, actor, other)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		low, high := models.PairIDs(actor, other)
		return s.DB.WithContext(ctx).Create(&models.Relationship{
			UserLowID:   low,
			UserHighID:  high,
			Status:      models.RelationshipBlocked,
			RequestedBy: actor,
			BlockedBy:   actor,
		}).Error
	}
	if err != nil {
		return err
	}
	if rel.Status == models.RelationshipBlocked {
		return nil
	}

	return s.DB.WithContext(ctx).Model(rel).Updates(map[string]interface{}{
		"status":      models.RelationshipBlocked,
		"blocked_by":  actor,
		"accepted_at": nil,
	}).Error
}

// Unblock removes a block. Only the user who placed it may lift it.
func (s *RelationshipService) Unblock(ctx context.Context, actor, other uint) error {
	rel, err := s.pair(ctx, actor, other)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrNotFound
		}
		return err
	}
	if rel.Status != models.RelationshipBlocked {
		return utils.ErrNotFound
	}
	if rel.BlockedBy != actor {
		return utils.ErrForbidden
	}
	return s.deletePair(ctx, rel)
}

// Friends lists userID's accepted friends.
func (s *RelationshipService) Friends(ctx context.Context, userID uint) ([]models.User, error) {
	ids, err := s.FriendIDSet(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.usersByIDs(ctx, ids)
}

// PendingIncoming lists users whose requests await userID's answer.
func (s *RelationshipService) PendingIncoming(ctx context.Context, userID uint) ([]models.User, error) {
	return s.pendingUsers(ctx, userID, false)
}

// PendingOutgoing lists users userID has sent requests to.
func (s *RelationshipService) PendingOutgoing(ctx context.Context, userID uint) ([]models.User, error) {
	return s.pendingUsers(ctx, userID, true)
}

// BlockedUsers lists the users userID has blocked (not those who blocked them).
func (s *RelationshipService) BlockedUsers(ctx context.Context, userID uint) ([]models.User, error) {
	var rels []models.Relationship
	err := s.DB.WithContext(ctx).
		Where("(user_low_id = ? OR user_high_id = ?) AND status = ? AND blocked_by = ?",
			userID, userID, models.RelationshipBlocked, userID).
		Find(&rels).Error
	if err != nil {
		return nil, err
	}

	ids := make(map[uint]bool, len(rels))
	for i := range rels {
		ids[rels[i].Other(userID)] = true
	}
	return s.usersByIDs(ctx, ids)
}

func (s *RelationshipService) pendingUsers(ctx context.Context, userID uint, sentByUser bool) ([]models.User, error) {
	q := s.DB.WithContext(ctx).
		Where("(user_low_id = ? OR user_high_id = ?) AND status = ?", userID, userID, models.RelationshipPending)
	if sentByUser {
		q = q.Where("requested_by = ?", userID)
	} else {
		q = q.Where("requested_by != ?", userID)
	}

	var rels []models.Relationship
	if err := q.Find(&rels).Error; err != nil {
		return nil, err
	}

	ids := make(map[uint]bool, len(rels))
	for i := range rels {
		ids[rels[i].Other(userID)] = true
	}
	return s.usersByIDs(ctx, ids)
}

func (s *RelationshipService) usersByIDs(ctx context.Context, ids map[uint]bool) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	list := make([]uint, 0, len(ids))
	for id := range ids {
		list = append(list, id)
	}
	var users []models.User
	if err := s.DB.WithContext(ctx).Where("id IN ?", list).Order("username").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *RelationshipService) pair(ctx context.Context, a, b uint) (*models.Relationship, error) {
	low, high := models.PairIDs(a, b)
	var rel models.Relationship
	err := s.DB.WithContext(ctx).
		Where("user_low_id = ? AND user_high_id = ?", low, high).
		First(&rel).Error
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

func (s *RelationshipService) pendingBetween(ctx context.Context, a, b uint) (*models.Relationship, error) {
	rel, err := s.pair(ctx, a, b)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrNotFound
		}
		return nil, err
	}
	if rel.Status != models.RelationshipPending {
		return nil, utils.ErrNotFound
	}
	return rel, nil
}

func (s *RelationshipService) deletePair(ctx context.Context, rel *models.Relationship) error {
	return s.DB.WithContext(ctx).
		Where("user_low_id = ? AND user_high_id = ?", rel.UserLowID, rel.UserHighID).
		Delete(&models.Relationship{}).Error
}
