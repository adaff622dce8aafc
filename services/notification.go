package services

import (
	"context"

	"github.com/platefeed/api-go/logger"
	"github.com/platefeed/api-go/models"
	"github.com/platefeed/api-go/utils"
	"gorm.io/gorm"
)

// NotificationService writes and reads the stored notification rows. Delivery
// (push, email) is a separate consumer of this table.
type NotificationService struct {
	DB *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db}
}

// Notify inserts a fan-out row. Failures are logged, not propagated: a missed
// notification must never fail the action that caused it.
func (s *NotificationService) Notify(ctx context.Context, userID, actorID uint, kind models.NotificationType, postID *uint, message string) {
	if userID == actorID {
		return
	}
	n := models.Notification{
		UserID:  userID,
		ActorID: actorID,
		Type:    kind,
		PostID:  postID,
		Message: message,
	}
	if err := s.DB.WithContext(ctx).Create(&n).Error; err != nil {
		logger.Error("failed to create notification", "user_id", userID, "type", string(kind), "err", err)
	}
}

func (s *NotificationService) List(ctx context.Context, userID uint, page, pageSize int) ([]models.Notification, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var total int64
	if err := s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []models.Notification
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(pageSize).Offset((page - 1) * pageSize).
		Find(&notifications).Error
	return notifications, total, err
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uint) error {
	res := s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) error {
	return s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}
