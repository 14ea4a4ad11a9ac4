// Package domain contains the email outbox models. Customer-facing
// emails are queued here and delivered asynchronously with retry, so a
// transient provider failure never fails the flow that produced them.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// EmailStatus tracks outbox delivery progress.
type EmailStatus string

const (
	EmailStatusPending EmailStatus = "pending"
	EmailStatusSent    EmailStatus = "sent"
	EmailStatusFailed  EmailStatus = "failed"
)

// Template names understood by the renderer.
const (
	TemplateAppointmentConfirmation = "appointment_confirmation"
	TemplateAppointmentCancelled    = "appointment_cancelled"
	TemplatePaymentReceipt          = "payment_receipt"
	TemplateLoyaltyPointsEarned     = "loyalty_points_earned"
)

// EmailMessage is a queued outbound email. Payload carries the
// template data as JSON so rendering happens at dispatch time.
type EmailMessage struct {
	ID            snowflake.ID   `gorm:"primaryKey"`
	Recipient     string         `gorm:"type:text;not null"`
	Subject       string         `gorm:"type:text;not null"`
	Template      string         `gorm:"type:text;not null"`
	Payload       datatypes.JSON `gorm:"type:jsonb;not null"`
	Status        EmailStatus    `gorm:"type:text;not null;default:'pending';index"`
	Attempts      int            `gorm:"not null;default:0"`
	LastError     *string        `gorm:"type:text"`
	NextAttemptAt time.Time      `gorm:"not null;index"`
	SentAt        *time.Time
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (EmailMessage) TableName() string { return "email_outbox" }
