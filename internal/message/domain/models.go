// Package domain contains persistence models for customer/staff
// message threads.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// MessageStatus represents the lifecycle of a message thread.
type MessageStatus string

const (
	MessageStatusOpen       MessageStatus = "open"
	MessageStatusInProgress MessageStatus = "in_progress"
	MessageStatusResponded  MessageStatus = "responded"
	MessageStatusResolved   MessageStatus = "resolved"
	MessageStatusClosed     MessageStatus = "closed"
)

// MessageCategory classifies what a thread is about.
type MessageCategory string

const (
	CategoryScheduling MessageCategory = "scheduling"
	CategoryBilling    MessageCategory = "billing"
	CategoryService    MessageCategory = "service"
	CategoryGeneral    MessageCategory = "general"
)

// Message is the root of a conversation thread started by a customer.
// HasUnreadReplies flips when staff reply and clears when the customer
// opens the thread.
type Message struct {
	ID               snowflake.ID    `gorm:"primaryKey" json:"id"`
	CustomerID       snowflake.ID    `gorm:"not null;index" json:"customer_id"`
	Subject          string          `gorm:"type:text;not null" json:"subject"`
	Body             string          `gorm:"type:text;not null" json:"body"`
	Category         MessageCategory `gorm:"type:text;not null" json:"category"`
	Status           MessageStatus   `gorm:"type:text;not null;default:'open'" json:"status"`
	HasUnreadReplies bool            `gorm:"not null;default:false" json:"has_unread_replies"`
	CreatedAt        time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Message) TableName() string { return "messages" }

// MessageSummary is a Message enriched with its reply count for
// listings.
type MessageSummary struct {
	Message
	ReplyCount int64 `json:"reply_count"`
}

// Reply is one entry in a thread. Staff replies carry the staff member
// name; customer replies do not.
type Reply struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	MessageID snowflake.ID `gorm:"not null;index" json:"message_id"`
	Body      string       `gorm:"type:text;not null" json:"body"`
	IsStaff   bool         `gorm:"not null;default:false" json:"is_staff"`
	StaffName string       `gorm:"type:text" json:"staff_name,omitempty"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Reply) TableName() string { return "message_replies" }

// Thread is a message with its replies in chronological order.
type Thread struct {
	Message Message `json:"message"`
	Replies []Reply `json:"replies"`
}
