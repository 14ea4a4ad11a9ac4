package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

const (
	// HeaderCustomer carries the authenticated customer id. The edge
	// proxy terminates the session and injects this header; the
	// portal trusts it.
	HeaderCustomer = "X-Customer-ID"

	contextCustomerIDKey = "customer_id"
)

func (s *Server) CustomerRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderCustomer))
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		id, err := snowflake.ParseString(raw)
		if err != nil || id == 0 {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		c.Set(contextCustomerIDKey, id)
		c.Next()
	}
}

func customerID(c *gin.Context) (snowflake.ID, bool) {
	value, ok := c.Get(contextCustomerIDKey)
	if !ok {
		return 0, false
	}
	id, ok := value.(snowflake.ID)
	return id, ok
}

func mustCustomerID(c *gin.Context) (snowflake.ID, bool) {
	id, ok := customerID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return 0, false
	}
	return id, true
}
