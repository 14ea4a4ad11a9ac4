package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrInvalidCustomer    = errors.New("invalid_customer")
	ErrInvalidPoints      = errors.New("invalid_points")
	ErrNoAccount          = errors.New("no_account")
	ErrRewardNotFound     = errors.New("reward_not_found")
	ErrInsufficientPoints = errors.New("insufficient_points")
)

// AwardRequest credits points to a customer's account.
type AwardRequest struct {
	CustomerID  snowflake.ID
	Points      int64
	Type        TransactionType
	Description string
}

// AwardResult carries the balance after the credit.
type AwardResult struct {
	Points        int64
	TotalEarned   int64
	PointsAwarded int64
}

// HistoryRequest lists a customer's ledger, newest first.
type HistoryRequest struct {
	CustomerID snowflake.ID
	Limit      int
}

// RedeemRequest spends points on a reward.
type RedeemRequest struct {
	CustomerID snowflake.ID
	RewardID   string
}

// RedeemResult carries the balance after the redemption.
type RedeemResult struct {
	NewBalance int64
	Redemption RewardRedemption
}

type Service interface {
	// Balance returns the customer's account, or ErrNoAccount.
	Balance(ctx context.Context, customerID snowflake.ID) (Account, error)

	History(ctx context.Context, req HistoryRequest) ([]Transaction, error)

	// Award credits points inside the caller's transaction. The
	// caller owns commit and rollback; a nil tx uses the service's
	// own connection.
	Award(ctx context.Context, tx *gorm.DB, req AwardRequest) (AwardResult, error)

	ListRewards(ctx context.Context, activeOnly bool) ([]Reward, error)

	// Redeem atomically deducts the reward cost, appends a redeemed
	// ledger entry and records the redemption.
	Redeem(ctx context.Context, req RedeemRequest) (RedeemResult, error)
}
