package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"

	"github.com/dirtfreecarpet/portal/internal/config"
)

const keyRewardRedeem = "rewards:redeem:customer:%s"

// RedeemLimiter throttles reward redemptions per customer. A tight
// limit here closes the double-redemption race on concurrent requests.
type RedeemLimiter struct {
	enabled bool

	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewRedeemLimiter(cfg config.Config) (*RedeemLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if cfg.Loyalty.RedeemRate <= 0 || cfg.Loyalty.RedeemBurst <= 0 {
		return nil, errors.New("redeem rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})

	return &RedeemLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		rate:    cfg.Loyalty.RedeemRate,
		burst:   cfg.Loyalty.RedeemBurst,
	}, nil
}

func (l *RedeemLimiter) Enabled() bool {
	return l != nil && l.enabled
}

// Allow reports whether the customer may attempt another redemption.
// A disabled limiter always allows.
func (l *RedeemLimiter) Allow(ctx context.Context, customerID string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	key := fmt.Sprintf(keyRewardRedeem, strings.TrimSpace(customerID))
	return l.bucket.Allow(ctx, key, l.rate, l.burst)
}
