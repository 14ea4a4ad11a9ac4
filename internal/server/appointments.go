package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	bookingdomain "github.com/dirtfreecarpet/portal/internal/booking/domain"
)

func (s *Server) ListAppointments(c *gin.Context) {
	custID, ok := mustCustomerID(c)
	if !ok {
		return
	}

	upcoming, err := parseOptionalBool(c.Query("upcoming"))
	if err != nil {
		AbortWithError(c, newValidationError("upcoming", "invalid_upcoming", "invalid upcoming"))
		return
	}

	jobs, err := s.bookingSvc.List(c.Request.Context(), bookingdomain.ListJobRequest{
		CustomerID: custID,
		Upcoming:   upcoming != nil && *upcoming,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": jobs})
}

func (s *Server) GetAppointmentByID(c *gin.Context) {
	custID, ok := mustCustomerID(c)
	if !ok {
		return
	}

	job, err := s.bookingSvc.GetByID(c.Request.Context(), bookingdomain.GetJobRequest{
		ID:         strings.TrimSpace(c.Param("id")),
		CustomerID: custID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": job})
}

func (s *Server) CancelAppointment(c *gin.Context) {
	custID, ok := mustCustomerID(c)
	if !ok {
		return
	}

	err := s.bookingSvc.Cancel(c.Request.Context(), bookingdomain.CancelJobRequest{
		ID:         strings.TrimSpace(c.Param("id")),
		CustomerID: custID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"cancelled": true}})
}
