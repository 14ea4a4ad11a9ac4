// Package domain contains the loyalty program models. Every balance
// change writes a signed transaction row, so an account's points always
// equal the sum of its transactions.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Account is a customer's loyalty balance. Accounts are provisioned
// when the customer is onboarded, not lazily.
type Account struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	CustomerID    snowflake.ID `gorm:"not null;uniqueIndex" json:"customer_id"`
	Points        int64        `gorm:"not null;default:0" json:"points"`
	TotalEarned   int64        `gorm:"not null;default:0" json:"total_earned"`
	TotalRedeemed int64        `gorm:"not null;default:0" json:"total_redeemed"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Account) TableName() string { return "loyalty_accounts" }

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	TransactionEarned   TransactionType = "earned"
	TransactionRedeemed TransactionType = "redeemed"
	TransactionBonus    TransactionType = "bonus"
)

// Transaction is one signed ledger entry. Points is positive for
// earned and bonus entries, negative for redemptions.
type Transaction struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	CustomerID  snowflake.ID    `gorm:"not null;index" json:"customer_id"`
	Points      int64           `gorm:"not null" json:"points"`
	Type        TransactionType `gorm:"type:text;not null" json:"type"`
	Description string          `gorm:"type:text;not null" json:"description"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Transaction) TableName() string { return "loyalty_transactions" }

// Reward is a redeemable catalog item.
type Reward struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	Name           string       `gorm:"type:text;not null" json:"name"`
	Description    string       `gorm:"type:text" json:"description"`
	PointsRequired int64        `gorm:"not null" json:"points_required"`
	Active         bool         `gorm:"not null;default:true" json:"active"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Reward) TableName() string { return "rewards" }

// RedemptionStatus tracks fulfillment of a redeemed reward.
type RedemptionStatus string

const (
	RedemptionPending   RedemptionStatus = "pending"
	RedemptionFulfilled RedemptionStatus = "fulfilled"
	RedemptionCancelled RedemptionStatus = "cancelled"
)

// RewardRedemption records a customer spending points on a reward.
type RewardRedemption struct {
	ID         snowflake.ID     `gorm:"primaryKey" json:"id"`
	CustomerID snowflake.ID     `gorm:"not null;index" json:"customer_id"`
	RewardID   snowflake.ID     `gorm:"not null;index" json:"reward_id"`
	PointsUsed int64            `gorm:"not null" json:"points_used"`
	Status     RedemptionStatus `gorm:"type:text;not null;default:'pending'" json:"status"`
	CreatedAt  time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (RewardRedemption) TableName() string { return "reward_redemptions" }
