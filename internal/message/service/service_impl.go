package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dirtfreecarpet/portal/internal/clock"
	messagedomain "github.com/dirtfreecarpet/portal/internal/message/domain"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	GenID *snowflake.Node
	Repo  messagedomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	genID *snowflake.Node
	repo  messagedomain.Repository
}

func New(p Params) messagedomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("message.service"),
		clock: p.Clock,
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req messagedomain.CreateMessageRequest) (messagedomain.Message, error) {
	if req.CustomerID == 0 {
		return messagedomain.Message{}, messagedomain.ErrInvalidCustomer
	}

	subject := strings.TrimSpace(req.Subject)
	if len(subject) < 5 {
		return messagedomain.Message{}, messagedomain.ErrInvalidSubject
	}
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return messagedomain.Message{}, messagedomain.ErrInvalidBody
	}
	category, ok := parseCategory(req.Category)
	if !ok {
		return messagedomain.Message{}, fmt.Errorf("%w: %s", messagedomain.ErrInvalidCategory, req.Category)
	}

	now := s.clock.Now().UTC()
	msg := messagedomain.Message{
		ID:         s.genID.Generate(),
		CustomerID: req.CustomerID,
		Subject:    subject,
		Body:       body,
		Category:   category,
		Status:     messagedomain.MessageStatusOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Insert(ctx, s.db, &msg); err != nil {
		return messagedomain.Message{}, err
	}

	s.log.Info("message thread opened",
		zap.String("message_id", msg.ID.String()),
		zap.String("customer_id", msg.CustomerID.String()),
		zap.String("category", string(msg.Category)),
	)
	return msg, nil
}

func (s *Service) List(ctx context.Context, req messagedomain.ListMessagesRequest) ([]messagedomain.MessageSummary, error) {
	if req.CustomerID == 0 {
		return nil, messagedomain.ErrInvalidCustomer
	}
	filter := strings.TrimSpace(req.Filter)
	switch filter {
	case "", "active", "resolved":
	default:
		return nil, fmt.Errorf("%w: %s", messagedomain.ErrInvalidFilter, filter)
	}

	items, err := s.repo.ListByCustomer(ctx, s.db, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if filter == "" {
		return items, nil
	}

	filtered := items[:0]
	for _, item := range items {
		if matchesFilter(item.Status, filter) {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

func (s *Service) GetThread(ctx context.Context, req messagedomain.GetThreadRequest) (messagedomain.Thread, error) {
	msg, err := s.find(ctx, req.ID, req.CustomerID)
	if err != nil {
		return messagedomain.Thread{}, err
	}

	replies, err := s.repo.ListReplies(ctx, s.db, msg.ID)
	if err != nil {
		return messagedomain.Thread{}, err
	}

	// Opening the thread counts as reading the staff replies.
	if msg.HasUnreadReplies {
		if err := s.repo.MarkRead(ctx, s.db, msg.ID); err != nil {
			s.log.Warn("mark thread read failed",
				zap.String("message_id", msg.ID.String()),
				zap.Error(err),
			)
		} else {
			msg.HasUnreadReplies = false
		}
	}

	return messagedomain.Thread{Message: *msg, Replies: replies}, nil
}

func (s *Service) Reply(ctx context.Context, req messagedomain.ReplyRequest) (messagedomain.Reply, error) {
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return messagedomain.Reply{}, messagedomain.ErrInvalidBody
	}

	msg, err := s.find(ctx, req.ID, req.CustomerID)
	if err != nil {
		return messagedomain.Reply{}, err
	}
	if msg.Status == messagedomain.MessageStatusClosed {
		return messagedomain.Reply{}, messagedomain.ErrThreadClosed
	}

	now := s.clock.Now().UTC()
	reply := messagedomain.Reply{
		ID:        s.genID.Generate(),
		MessageID: msg.ID,
		Body:      body,
		IsStaff:   false,
		CreatedAt: now,
	}
	if err := s.repo.InsertReply(ctx, s.db, &reply); err != nil {
		return messagedomain.Reply{}, err
	}

	// A customer reply reopens the conversation for staff.
	if msg.Status != messagedomain.MessageStatusOpen {
		if err := s.repo.SetStatus(ctx, s.db, msg.ID, messagedomain.MessageStatusOpen, now); err != nil {
			s.log.Warn("reopen thread failed",
				zap.String("message_id", msg.ID.String()),
				zap.Error(err),
			)
		}
	}

	return reply, nil
}

func (s *Service) UnreadCount(ctx context.Context, customerID snowflake.ID) (int64, error) {
	if customerID == 0 {
		return 0, messagedomain.ErrInvalidCustomer
	}
	return s.repo.CountUnread(ctx, s.db, customerID)
}

func (s *Service) MarkAllRead(ctx context.Context, customerID snowflake.ID) error {
	if customerID == 0 {
		return messagedomain.ErrInvalidCustomer
	}
	return s.repo.MarkAllRead(ctx, s.db, customerID)
}

func (s *Service) find(ctx context.Context, rawID string, customerID snowflake.ID) (*messagedomain.Message, error) {
	if customerID == 0 {
		return nil, messagedomain.ErrInvalidCustomer
	}
	id, err := snowflake.ParseString(rawID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", messagedomain.ErrInvalidID, rawID)
	}
	msg, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if msg == nil || msg.CustomerID != customerID {
		return nil, messagedomain.ErrNotFound
	}
	return msg, nil
}

func parseCategory(raw string) (messagedomain.MessageCategory, bool) {
	switch messagedomain.MessageCategory(strings.ToLower(strings.TrimSpace(raw))) {
	case messagedomain.CategoryScheduling:
		return messagedomain.CategoryScheduling, true
	case messagedomain.CategoryBilling:
		return messagedomain.CategoryBilling, true
	case messagedomain.CategoryService:
		return messagedomain.CategoryService, true
	case messagedomain.CategoryGeneral:
		return messagedomain.CategoryGeneral, true
	default:
		return "", false
	}
}

func matchesFilter(status messagedomain.MessageStatus, filter string) bool {
	switch filter {
	case "active":
		return status == messagedomain.MessageStatusOpen ||
			status == messagedomain.MessageStatusInProgress ||
			status == messagedomain.MessageStatusResponded
	case "resolved":
		return status == messagedomain.MessageStatusResolved ||
			status == messagedomain.MessageStatusClosed
	default:
		return true
	}
}
