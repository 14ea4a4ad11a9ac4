// Package domain contains persistence models for customer invoices.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// Invoice represents a bill issued for a completed service job.
// TotalAmount is in minor units (cents).
type Invoice struct {
	ID               snowflake.ID      `gorm:"primaryKey" json:"id"`
	CustomerID       snowflake.ID      `gorm:"not null;index" json:"customer_id"`
	JobID            *snowflake.ID     `gorm:"index" json:"job_id,omitempty"`
	InvoiceNumber    string            `gorm:"type:text;not null;uniqueIndex" json:"invoice_number"`
	Status           InvoiceStatus     `gorm:"type:text;not null;default:'draft'" json:"status"`
	TotalAmount      int64             `gorm:"not null;default:0" json:"total_amount"`
	Currency         string            `gorm:"type:text;not null;default:'USD'" json:"currency"`
	DueAt            *time.Time        `json:"due_at,omitempty"`
	PaidAt           *time.Time        `json:"paid_at,omitempty"`
	PaymentReference string            `gorm:"type:text" json:"payment_reference,omitempty"`
	Metadata         datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt        time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }
