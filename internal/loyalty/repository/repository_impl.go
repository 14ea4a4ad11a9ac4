package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/dirtfreecarpet/portal/internal/loyalty/domain"
)

type repo struct{}

// Provide returns the loyalty repository.
func Provide() domain.Repository { return &repo{} }

func (r *repo) FindAccountByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) (*domain.Account, error) {
	var account domain.Account
	err := db.WithContext(ctx).Where("customer_id = ?", customerID).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repo) ApplyDelta(ctx context.Context, db *gorm.DB, customerID snowflake.ID, delta int64) error {
	// Lifetime counters only ever grow. The signed delta picks which
	// one moves.
	res := db.WithContext(ctx).Exec(`
		UPDATE loyalty_accounts
		SET points = points + ?,
		    total_earned = total_earned + CASE WHEN ? > 0 THEN ? ELSE 0 END,
		    total_redeemed = total_redeemed + CASE WHEN ? < 0 THEN -? ELSE 0 END,
		    updated_at = CURRENT_TIMESTAMP
		WHERE customer_id = ?
	`, delta, delta, delta, delta, delta, customerID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNoAccount
	}
	return nil
}

func (r *repo) InsertTransaction(ctx context.Context, db *gorm.DB, txn *domain.Transaction) error {
	return db.WithContext(ctx).Create(txn).Error
}

func (r *repo) ListTransactions(ctx context.Context, db *gorm.DB, customerID snowflake.ID, limit int) ([]domain.Transaction, error) {
	var txns []domain.Transaction
	q := db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *repo) FindReward(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Reward, error) {
	var reward domain.Reward
	err := db.WithContext(ctx).Where("id = ?", id).First(&reward).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reward, nil
}

func (r *repo) ListRewards(ctx context.Context, db *gorm.DB, activeOnly bool) ([]domain.Reward, error) {
	var rewards []domain.Reward
	q := db.WithContext(ctx).Order("points_required ASC")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	if err := q.Find(&rewards).Error; err != nil {
		return nil, err
	}
	return rewards, nil
}

func (r *repo) InsertRedemption(ctx context.Context, db *gorm.DB, redemption *domain.RewardRedemption) error {
	return db.WithContext(ctx).Create(redemption).Error
}
