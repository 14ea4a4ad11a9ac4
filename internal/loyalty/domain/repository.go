package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindAccountByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (*Account, error)

	// ApplyDelta adjusts the account's balance and lifetime counters.
	// A positive delta increments total_earned, a negative delta
	// increments total_redeemed by its magnitude.
	ApplyDelta(ctx context.Context, db *gorm.DB, customerID snowflake.ID, delta int64) error

	InsertTransaction(ctx context.Context, db *gorm.DB, txn *Transaction) error
	ListTransactions(ctx context.Context, db *gorm.DB, customerID snowflake.ID, limit int) ([]Transaction, error)

	FindReward(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Reward, error)
	ListRewards(ctx context.Context, db *gorm.DB, activeOnly bool) ([]Reward, error)
	InsertRedemption(ctx context.Context, db *gorm.DB, redemption *RewardRedemption) error
}
