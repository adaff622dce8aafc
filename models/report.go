package models

import (
	"time"

	"gorm.io/gorm"
)

type ReportStatus string

const (
	ReportOpen      ReportStatus = "open"
	ReportDismissed ReportStatus = "dismissed"
	ReportUpheld    ReportStatus = "upheld"
)

type Report struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	PostID         uint         `gorm:"not null;uniqueIndex:idx_report_post_reporter" json:"postId"`
	ReporterUserID uint         `gorm:"not null;uniqueIndex:idx_report_post_reporter" json:"reporterUserId"`
	Reason         string       `gorm:"not null" json:"reason"` // spam, abuse, inappropriate, copyright, other
	Description    string       `gorm:"type:text" json:"description"`
	Status         ReportStatus `gorm:"type:varchar(20);not null;default:'open'" json:"status"`

	Post         Post `gorm:"foreignKey:PostID" json:"-"`
	ReporterUser User `gorm:"foreignKey:ReporterUserID" json:"-"`
}
