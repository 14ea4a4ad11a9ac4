package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	messagedomain "github.com/dirtfreecarpet/portal/internal/message/domain"
)

type createMessageRequest struct {
	Subject  string `json:"subject"`
	Category string `json:"category"`
	Body     string `json:"body"`
}

type replyMessageRequest struct {
	Body string `json:"body"`
}

func (s *Server) ListMessages(c *gin.Context) {
	custID, ok := mustCustomerID(c)
	if !ok {
		return
	}

	messages, err := s.messageSvc.List(c.Request.Context(), messagedomain.ListMessagesRequest{
		CustomerID: custID,
		Filter:     strings.TrimSpace(c.Query("filter")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": messages})
}

func (s *Server) CreateMessage(c *gin.Context) {
	custID, ok := mustCustomerID(c)
	if !ok {
		return
	}

	var req createMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	msg, err := s.messageSvc.Create(c.Request.Context(), messagedomain.CreateMessageRequest{
		CustomerID: custID,
		Subject:    req.Subject,
		Category:   req.Category,
		Body:       req.Body,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": msg})
}

func (s *Server) GetMessageThread(c *gin.Context) {
	custID, ok := mustCustomerID(c)
	if !ok {
		return
	}

	thread, err := s.messageSvc.GetThread(c.Request.Context(), messagedomain.GetThreadRequest{
		ID:         strings.TrimSpace(c.Param("id")),
		CustomerID: custID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": thread})
}

func (s *Server) ReplyToMessage(c *gin.Context) {
	custID, ok := mustCustomerID(c)
	if !ok {
		return
	}

	var req replyMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	reply, err := s.messageSvc.Reply(c.Request.Context(), messagedomain.ReplyRequest{
		ID:         strings.TrimSpace(c.Param("id")),
		CustomerID: custID,
		Body:       req.Body,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": reply})
}

func (s *Server) GetUnreadMessageCount(c *gin.Context) {
	custID, ok := mustCustomerID(c)
	if !ok {
		return
	}

	count, err := s.messageSvc.UnreadCount(c.Request.Context(), custID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"unread_count": count}})
}

func (s *Server) MarkAllMessagesRead(c *gin.Context) {
	custID, ok := mustCustomerID(c)
	if !ok {
		return
	}

	if err := s.messageSvc.MarkAllRead(c.Request.Context(), custID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"marked_read": true}})
}
