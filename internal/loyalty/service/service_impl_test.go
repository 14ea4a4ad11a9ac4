package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dirtfreecarpet/portal/internal/clock"
	"github.com/dirtfreecarpet/portal/internal/loyalty/domain"
	loyaltyrepo "github.com/dirtfreecarpet/portal/internal/loyalty/repository"
	loyaltyservice "github.com/dirtfreecarpet/portal/internal/loyalty/service"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	schema := []string{
		`CREATE TABLE loyalty_accounts (
			id BIGINT PRIMARY KEY,
			customer_id BIGINT NOT NULL,
			points BIGINT NOT NULL DEFAULT 0,
			total_earned BIGINT NOT NULL DEFAULT 0,
			total_redeemed BIGINT NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE UNIQUE INDEX ux_loyalty_accounts_customer ON loyalty_accounts(customer_id)`,
		`CREATE TABLE loyalty_transactions (
			id BIGINT PRIMARY KEY,
			customer_id BIGINT NOT NULL,
			points BIGINT NOT NULL,
			type TEXT NOT NULL,
			description TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE rewards (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			points_required BIGINT NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE reward_redemptions (
			id BIGINT PRIMARY KEY,
			customer_id BIGINT NOT NULL,
			reward_id BIGINT NOT NULL,
			points_used BIGINT NOT NULL,
			status TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
	}

	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("schema exec failed: %v", err)
		}
	}

	return db
}

func newService(t *testing.T, db *gorm.DB) domain.Service {
	t.Helper()

	node, err := snowflake.NewNode(20)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return loyaltyservice.New(loyaltyservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: clock.NewSystemClock(),
		GenID: node,
		Repo:  loyaltyrepo.Provide(),
	})
}

func seedAccount(t *testing.T, db *gorm.DB, customerID snowflake.ID, points, earned, redeemed int64) {
	t.Helper()

	err := db.Exec(`
		INSERT INTO loyalty_accounts (id, customer_id, points, total_earned, total_redeemed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, customerID+1, customerID, points, earned, redeemed, time.Now().UTC(), time.Now().UTC()).Error
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}
}

func TestAwardCreditsBalanceAndLedger(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	customerID := snowflake.ID(4000)
	seedAccount(t, db, customerID, 1000, 5000, 0)

	result, err := svc.Award(ctx, nil, domain.AwardRequest{
		CustomerID:  customerID,
		Points:      2500,
		Description: "Payment received - Invoice #1a2b3c4d",
	})
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if result.Points != 3500 {
		t.Fatalf("expected balance 3500, got %d", result.Points)
	}
	if result.TotalEarned != 7500 {
		t.Fatalf("expected total earned 7500, got %d", result.TotalEarned)
	}

	txns, err := svc.History(ctx, domain.HistoryRequest{CustomerID: customerID})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txns))
	}
	if txns[0].Points != 2500 || txns[0].Type != domain.TransactionEarned {
		t.Fatalf("unexpected transaction: %+v", txns[0])
	}
}

func TestAwardRequiresExistingAccount(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	_, err := svc.Award(ctx, nil, domain.AwardRequest{
		CustomerID:  snowflake.ID(4100),
		Points:      100,
		Description: "orphan credit",
	})
	if !errors.Is(err, domain.ErrNoAccount) {
		t.Fatalf("expected ErrNoAccount, got %v", err)
	}

	assertCount(t, db, "loyalty_transactions", 0)
}

func TestAwardRejectsNonPositivePoints(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	for _, points := range []int64{0, -50} {
		_, err := svc.Award(ctx, nil, domain.AwardRequest{
			CustomerID: snowflake.ID(4200),
			Points:     points,
		})
		if !errors.Is(err, domain.ErrInvalidPoints) {
			t.Fatalf("points=%d: expected ErrInvalidPoints, got %v", points, err)
		}
	}
}

func TestRedeemDeductsPointsAndRecordsRedemption(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	customerID := snowflake.ID(4300)
	seedAccount(t, db, customerID, 1200, 1200, 0)

	rewardID := snowflake.ID(9000)
	seedReward(t, db, rewardID, "Free Room Cleaning", 1000, true)

	result, err := svc.Redeem(ctx, domain.RedeemRequest{
		CustomerID: customerID,
		RewardID:   rewardID.String(),
	})
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if result.NewBalance != 200 {
		t.Fatalf("expected new balance 200, got %d", result.NewBalance)
	}
	if result.Redemption.Status != domain.RedemptionPending {
		t.Fatalf("expected pending redemption, got %s", result.Redemption.Status)
	}

	account, err := svc.Balance(ctx, customerID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if account.Points != 200 || account.TotalRedeemed != 1000 {
		t.Fatalf("unexpected account after redeem: %+v", account)
	}

	txns, err := svc.History(ctx, domain.HistoryRequest{CustomerID: customerID})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(txns) != 1 || txns[0].Points != -1000 || txns[0].Type != domain.TransactionRedeemed {
		t.Fatalf("unexpected ledger after redeem: %+v", txns)
	}
	if txns[0].Description != "Redeemed: Free Room Cleaning" {
		t.Fatalf("unexpected description: %s", txns[0].Description)
	}

	assertCount(t, db, "reward_redemptions", 1)
}

func TestRedeemInsufficientPointsLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	customerID := snowflake.ID(4400)
	seedAccount(t, db, customerID, 500, 500, 0)

	rewardID := snowflake.ID(9100)
	seedReward(t, db, rewardID, "Whole House Cleaning", 5000, true)

	_, err := svc.Redeem(ctx, domain.RedeemRequest{
		CustomerID: customerID,
		RewardID:   rewardID.String(),
	})
	if !errors.Is(err, domain.ErrInsufficientPoints) {
		t.Fatalf("expected ErrInsufficientPoints, got %v", err)
	}

	account, err := svc.Balance(ctx, customerID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if account.Points != 500 {
		t.Fatalf("expected balance unchanged at 500, got %d", account.Points)
	}
	assertCount(t, db, "loyalty_transactions", 0)
	assertCount(t, db, "reward_redemptions", 0)
}

func TestRedeemInactiveRewardNotFound(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	customerID := snowflake.ID(4500)
	seedAccount(t, db, customerID, 10000, 10000, 0)

	rewardID := snowflake.ID(9200)
	seedReward(t, db, rewardID, "Retired Offer", 100, false)

	_, err := svc.Redeem(ctx, domain.RedeemRequest{
		CustomerID: customerID,
		RewardID:   rewardID.String(),
	})
	if !errors.Is(err, domain.ErrRewardNotFound) {
		t.Fatalf("expected ErrRewardNotFound, got %v", err)
	}
}

func TestBalanceWithoutAccount(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	_, err := svc.Balance(ctx, snowflake.ID(4600))
	if !errors.Is(err, domain.ErrNoAccount) {
		t.Fatalf("expected ErrNoAccount, got %v", err)
	}
}

func seedReward(t *testing.T, db *gorm.DB, id snowflake.ID, name string, cost int64, active bool) {
	t.Helper()

	err := db.Exec(`
		INSERT INTO rewards (id, name, description, points_required, active, created_at, updated_at)
		VALUES (?, ?, '', ?, ?, ?, ?)
	`, id, name, cost, active, time.Now().UTC(), time.Now().UTC()).Error
	if err != nil {
		t.Fatalf("seed reward: %v", err)
	}
}

func assertCount(t *testing.T, db *gorm.DB, table string, want int64) {
	t.Helper()

	var got int64
	if err := db.Table(table).Count(&got).Error; err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	if got != want {
		t.Fatalf("expected %d rows in %s, got %d", want, table, got)
	}
}
