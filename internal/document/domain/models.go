// Package domain contains models for the customer's service history:
// completed visits together with the photos taken on site.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// PhotoKind distinguishes before/after shots from general job photos.
type PhotoKind string

const (
	PhotoKindBefore  PhotoKind = "before"
	PhotoKindAfter   PhotoKind = "after"
	PhotoKindGeneral PhotoKind = "general"
)

// JobPhoto is a photo a technician attached to a completed visit.
type JobPhoto struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	JobID     snowflake.ID `gorm:"not null;index" json:"job_id"`
	URL       string       `gorm:"type:text;not null" json:"url"`
	Caption   string       `gorm:"type:text" json:"caption,omitempty"`
	Kind      PhotoKind    `gorm:"type:text;not null;default:'general'" json:"kind"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (JobPhoto) TableName() string { return "job_photos" }

// ServiceRecord is one completed visit in the history timeline.
type ServiceRecord struct {
	JobID          snowflake.ID `json:"job_id"`
	ScheduledDate  time.Time    `json:"scheduled_date"`
	TechnicianName string       `json:"technician_name,omitempty"`
	TotalAmount    int64        `json:"total_amount"`
	Notes          string       `json:"notes,omitempty"`
	Services       []string     `json:"services"`
	Photos         []JobPhoto   `json:"photos"`
}

// HistoryStats summarizes a customer's service history.
type HistoryStats struct {
	TotalServices    int        `json:"total_services"`
	TotalPhotos      int        `json:"total_photos"`
	FirstServiceDate *time.Time `json:"first_service_date,omitempty"`
	LastServiceDate  *time.Time `json:"last_service_date,omitempty"`
}
