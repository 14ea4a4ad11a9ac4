package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	customerdomain "github.com/dirtfreecarpet/portal/internal/customer/domain"
)

func customerGetRequest(id snowflake.ID) customerdomain.GetCustomerRequest {
	return customerdomain.GetCustomerRequest{ID: id.String()}
}

// GetCurrentCustomer returns the authenticated customer's profile.
func (s *Server) GetCurrentCustomer(c *gin.Context) {
	custID, ok := mustCustomerID(c)
	if !ok {
		return
	}

	cust, err := s.customerSvc.GetByID(c.Request.Context(), customerGetRequest(custID))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": cust})
}
