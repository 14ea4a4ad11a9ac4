package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dirtfreecarpet/portal/internal/clock"
	"github.com/dirtfreecarpet/portal/internal/loyalty/domain"
	obsmetrics "github.com/dirtfreecarpet/portal/internal/observability/metrics"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Clock      clock.Clock
	GenID      *snowflake.Node
	Repo       domain.Repository
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type service struct {
	db         *gorm.DB
	log        *zap.Logger
	clock      clock.Clock
	genID      *snowflake.Node
	repo       domain.Repository
	obsMetrics *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &service{
		db:         p.DB,
		log:        p.Log.Named("loyalty.service"),
		clock:      p.Clock,
		genID:      p.GenID,
		repo:       p.Repo,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *service) Balance(ctx context.Context, customerID snowflake.ID) (domain.Account, error) {
	if customerID == 0 {
		return domain.Account{}, domain.ErrInvalidCustomer
	}
	account, err := s.repo.FindAccountByCustomer(ctx, s.db, customerID)
	if err != nil {
		return domain.Account{}, err
	}
	if account == nil {
		return domain.Account{}, domain.ErrNoAccount
	}
	return *account, nil
}

func (s *service) History(ctx context.Context, req domain.HistoryRequest) ([]domain.Transaction, error) {
	if req.CustomerID == 0 {
		return nil, domain.ErrInvalidCustomer
	}
	return s.repo.ListTransactions(ctx, s.db, req.CustomerID, req.Limit)
}

func (s *service) Award(ctx context.Context, tx *gorm.DB, req domain.AwardRequest) (domain.AwardResult, error) {
	if req.CustomerID == 0 {
		return domain.AwardResult{}, domain.ErrInvalidCustomer
	}
	if req.Points <= 0 {
		return domain.AwardResult{}, domain.ErrInvalidPoints
	}
	txType := req.Type
	if txType == "" {
		txType = domain.TransactionEarned
	}

	db := tx
	if db == nil {
		db = s.db
	}

	if err := s.repo.ApplyDelta(ctx, db, req.CustomerID, req.Points); err != nil {
		return domain.AwardResult{}, err
	}
	if err := s.repo.InsertTransaction(ctx, db, &domain.Transaction{
		ID:          s.genID.Generate(),
		CustomerID:  req.CustomerID,
		Points:      req.Points,
		Type:        txType,
		Description: req.Description,
		CreatedAt:   s.clock.Now().UTC(),
	}); err != nil {
		return domain.AwardResult{}, err
	}

	account, err := s.repo.FindAccountByCustomer(ctx, db, req.CustomerID)
	if err != nil {
		return domain.AwardResult{}, err
	}
	if account == nil {
		return domain.AwardResult{}, domain.ErrNoAccount
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordPointsAwarded(ctx, req.Points)
	}
	return domain.AwardResult{
		Points:        account.Points,
		TotalEarned:   account.TotalEarned,
		PointsAwarded: req.Points,
	}, nil
}

func (s *service) ListRewards(ctx context.Context, activeOnly bool) ([]domain.Reward, error) {
	return s.repo.ListRewards(ctx, s.db, activeOnly)
}

func (s *service) Redeem(ctx context.Context, req domain.RedeemRequest) (domain.RedeemResult, error) {
	if req.CustomerID == 0 {
		return domain.RedeemResult{}, domain.ErrInvalidCustomer
	}
	rewardID, err := snowflake.ParseString(req.RewardID)
	if err != nil {
		return domain.RedeemResult{}, fmt.Errorf("%w: %s", domain.ErrRewardNotFound, req.RewardID)
	}

	var result domain.RedeemResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reward, err := s.repo.FindReward(ctx, tx, rewardID)
		if err != nil {
			return err
		}
		if reward == nil || !reward.Active {
			return domain.ErrRewardNotFound
		}

		account, err := s.repo.FindAccountByCustomer(ctx, tx, req.CustomerID)
		if err != nil {
			return err
		}
		if account == nil {
			return domain.ErrNoAccount
		}
		if account.Points < reward.PointsRequired {
			return domain.ErrInsufficientPoints
		}

		if err := s.repo.ApplyDelta(ctx, tx, req.CustomerID, -reward.PointsRequired); err != nil {
			return err
		}

		now := s.clock.Now().UTC()
		if err := s.repo.InsertTransaction(ctx, tx, &domain.Transaction{
			ID:          s.genID.Generate(),
			CustomerID:  req.CustomerID,
			Points:      -reward.PointsRequired,
			Type:        domain.TransactionRedeemed,
			Description: fmt.Sprintf("Redeemed: %s", reward.Name),
			CreatedAt:   now,
		}); err != nil {
			return err
		}

		redemption := domain.RewardRedemption{
			ID:         s.genID.Generate(),
			CustomerID: req.CustomerID,
			RewardID:   reward.ID,
			PointsUsed: reward.PointsRequired,
			Status:     domain.RedemptionPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.repo.InsertRedemption(ctx, tx, &redemption); err != nil {
			return err
		}

		result = domain.RedeemResult{
			NewBalance: account.Points - reward.PointsRequired,
			Redemption: redemption,
		}
		return nil
	})
	if err != nil {
		return domain.RedeemResult{}, err
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordPointsRedeemed(ctx, result.Redemption.PointsUsed)
	}
	s.log.Info("reward redeemed",
		zap.String("customer_id", req.CustomerID.String()),
		zap.String("reward_id", req.RewardID),
		zap.Int64("points_used", result.Redemption.PointsUsed),
	)
	return result, nil
}
