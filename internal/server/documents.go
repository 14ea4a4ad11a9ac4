package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	documentdomain "github.com/dirtfreecarpet/portal/internal/document/domain"
)

func (s *Server) GetServiceHistory(c *gin.Context) {
	custID, ok := mustCustomerID(c)
	if !ok {
		return
	}

	history, err := s.documentSvc.History(c.Request.Context(), documentdomain.HistoryRequest{
		CustomerID: custID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": history})
}
