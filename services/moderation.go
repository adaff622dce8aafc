package services

import (
	"context"
	"errors"

	"github.com/platefeed/api-go/logger"
	"github.com/platefeed/api-go/models"
	"github.com/platefeed/api-go/utils"
	"gorm.io/gorm"
)

var validReportReasons = map[string]bool{
	"spam":          true,
	"abuse":         true,
	"inappropriate": true,
	"copyright":     true,
	"other":         true,
}

// ModerationService drives the report pipeline and the post status machine:
// active -> under_review at ReviewThreshold distinct reporters, then
// -> hidden at HideThreshold. Hidden is terminal except for admin action.
type ModerationService struct {
	DB              *gorm.DB
	ReviewThreshold int
	HideThreshold   int
}

func NewModerationService(db *gorm.DB, reviewThreshold, hideThreshold int) *ModerationService {
	return &ModerationService{DB: db, ReviewThreshold: reviewThreshold, HideThreshold: hideThreshold}
}

// ReportPost files a report and applies any threshold transition in the same
// transaction. One report per (post, reporter); authors cannot report their
// own posts.
func (s *ModerationService) ReportPost(ctx context.Context, reporterID, postID uint, reason, description string) error {
	if !validReportReasons[reason] {
		return utils.Validation("reason", "invalid report reason")
	}

	var post models.Post
	if err := s.DB.WithContext(ctx).First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrNotFound
		}
		return err
	}
	if post.AuthorID == reporterID {
		return utils.Validation("postId", "cannot report your own post")
	}

	var existing models.Report
	err := s.DB.WithContext(ctx).
		Where("post_id = ? AND reporter_user_id = ?", postID, reporterID).
		First(&existing).Error
	if err == nil {
		return utils.Validation("postId", "you have already reported this post")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		report := models.Report{
			PostID:         postID,
			ReporterUserID: reporterID,
			Reason:         reason,
			Description:    description,
			Status:         models.ReportOpen,
		}
		if err := tx.Create(&report).Error; err != nil {
			return err
		}

		// Dismissed reports were adjudicated non-violations; only open ones
		// count toward the thresholds, so a dismissal truly resets the clock.
		var count int64
		if err := tx.Model(&models.Report{}).
			Where("post_id = ? AND status = ?", postID, models.ReportOpen).
			Count(&count).Error; err != nil {
			return err
		}

		newStatus := nextStatus(post.Status, int(count), s.ReviewThreshold, s.HideThreshold)
		if newStatus == post.Status {
			return tx.Model(&models.Post{}).Where("id = ?", postID).
				UpdateColumn("report_count", count).Error
		}

		logger.Info("post status transition",
			"post_id", postID, "from", string(post.Status), "to", string(newStatus), "reports", count)
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			Updates(map[string]interface{}{"report_count": count, "status": newStatus}).Error
	})
}

// nextStatus applies the report-count thresholds. Hidden never moves here.
func nextStatus(current models.PostStatus, reports, reviewAt, hideAt int) models.PostStatus {
	if current == models.PostHidden {
		return current
	}
	if reports >= hideAt {
		return models.PostHidden
	}
	if reports >= reviewAt && current == models.PostActive {
		return models.PostUnderReview
	}
	return current
}

// AuthorViolations is the separate pathway through which an author sees their
// own under-review and hidden posts; normal reads never surface them.
func (s *ModerationService) AuthorViolations(ctx context.Context, authorID uint) ([]models.Post, error) {
	var posts []models.Post
	err := s.DB.WithContext(ctx).
		Where("author_id = ? AND status IN ?", authorID,
			[]models.PostStatus{models.PostUnderReview, models.PostHidden}).
		Order("updated_at DESC").
		Find(&posts).Error
	return posts, err
}

// OpenReports lists unresolved reports for admin review, oldest first.
func (s *ModerationService) OpenReports(ctx context.Context, limit, offset int) ([]models.Report, int64, error) {
	var total int64
	if err := s.DB.WithContext(ctx).Model(&models.Report{}).
		Where("status = ?", models.ReportOpen).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reports []models.Report
	err := s.DB.WithContext(ctx).
		Where("status = ?", models.ReportOpen).
		Order("created_at ASC").
		Limit(limit).Offset(offset).
		Find(&reports).Error
	return reports, total, err
}

// ResolveReport closes a report. "dismiss" restores the post to active and
// dismisses every open report against it; "uphold" hides the post for good.
func (s *ModerationService) ResolveReport(ctx context.Context, reportID uint, action string) error {
	if action != "dismiss" && action != "uphold" {
		return utils.Validation("action", "action must be dismiss or uphold")
	}

	var report models.Report
	if err := s.DB.WithContext(ctx).First(&report, reportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrNotFound
		}
		return err
	}
	if report.Status != models.ReportOpen {
		return utils.Validation("reportId", "report is already resolved")
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if action == "dismiss" {
			if err := tx.Model(&models.Report{}).
				Where("post_id = ? AND status = ?", report.PostID, models.ReportOpen).
				Update("status", models.ReportDismissed).Error; err != nil {
				return err
			}
			return tx.Model(&models.Post{}).Where("id = ?", report.PostID).
				Updates(map[string]interface{}{"status": models.PostActive, "report_count": 0}).Error
		}

		if err := tx.Model(&report).Update("status", models.ReportUpheld).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", report.PostID).
			Update("status", models.PostHidden).Error
	})
}

// BanUser flags the account; banned users drop out of public feeds and search.
func (s *ModerationService) BanUser(ctx context.Context, userID uint, banned bool) error {
	res := s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
		Update("is_banned", banned)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}
