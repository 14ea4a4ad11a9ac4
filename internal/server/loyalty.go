package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	loyaltydomain "github.com/dirtfreecarpet/portal/internal/loyalty/domain"
)

func (s *Server) GetLoyaltyBalance(c *gin.Context) {
	custID, ok := mustCustomerID(c)
	if !ok {
		return
	}

	account, err := s.loyaltySvc.Balance(c.Request.Context(), custID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": account})
}

func (s *Server) ListLoyaltyTransactions(c *gin.Context) {
	custID, ok := mustCustomerID(c)
	if !ok {
		return
	}

	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			AbortWithError(c, newValidationError("limit", "invalid_limit", "invalid limit"))
			return
		}
		limit = parsed
	}

	transactions, err := s.loyaltySvc.History(c.Request.Context(), loyaltydomain.HistoryRequest{
		CustomerID: custID,
		Limit:      limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": transactions})
}

func (s *Server) ListRewards(c *gin.Context) {
	if _, ok := mustCustomerID(c); !ok {
		return
	}

	rewards, err := s.loyaltySvc.ListRewards(c.Request.Context(), true)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rewards})
}

func (s *Server) RedeemReward(c *gin.Context) {
	custID, ok := mustCustomerID(c)
	if !ok {
		return
	}

	// Fail open when the limiter backend is unreachable; redemption
	// itself is still guarded by the balance check.
	allowed, err := s.redeemLimiter.Allow(c.Request.Context(), custID.String())
	if err == nil && !allowed {
		if s.obsMetrics != nil {
			s.obsMetrics.RecordRateLimitDenied(c.Request.Context(), "rewards.redeem")
		}
		AbortWithError(c, ErrTooManyRequests)
		return
	}

	result, err := s.loyaltySvc.Redeem(c.Request.Context(), loyaltydomain.RedeemRequest{
		CustomerID: custID,
		RewardID:   strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
