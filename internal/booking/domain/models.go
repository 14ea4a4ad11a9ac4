// Package domain contains persistence models for service jobs
// (appointments, from the customer's point of view).
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// JobStatus represents job lifecycle states.
type JobStatus string

const (
	JobStatusScheduled  JobStatus = "scheduled"
	JobStatusConfirmed  JobStatus = "confirmed"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// Job represents a scheduled cleaning visit. Services holds the list of
// service names booked for the visit.
type Job struct {
	ID             snowflake.ID               `gorm:"primaryKey" json:"id"`
	CustomerID     snowflake.ID               `gorm:"not null;index" json:"customer_id"`
	ScheduledDate  time.Time                  `gorm:"not null;index" json:"scheduled_date"`
	ScheduledTime  string                     `gorm:"type:text;not null" json:"scheduled_time"`
	Status         JobStatus                  `gorm:"type:text;not null;default:'scheduled'" json:"status"`
	TotalAmount    int64                      `gorm:"not null;default:0" json:"total_amount"`
	TechnicianName string                     `gorm:"type:text" json:"technician_name,omitempty"`
	Notes          string                     `gorm:"type:text" json:"notes,omitempty"`
	Services       datatypes.JSONSlice[string] `gorm:"type:jsonb;not null;default:'[]'" json:"services"`
	CreatedAt      time.Time                  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time                  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Job) TableName() string { return "jobs" }
