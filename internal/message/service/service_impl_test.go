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
	"github.com/dirtfreecarpet/portal/internal/message/domain"
	messagerepo "github.com/dirtfreecarpet/portal/internal/message/repository"
	messageservice "github.com/dirtfreecarpet/portal/internal/message/service"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	schema := []string{
		`CREATE TABLE messages (
			id BIGINT PRIMARY KEY,
			customer_id BIGINT NOT NULL,
			subject TEXT NOT NULL,
			body TEXT NOT NULL,
			category TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'open',
			has_unread_replies BOOLEAN NOT NULL DEFAULT FALSE,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE message_replies (
			id BIGINT PRIMARY KEY,
			message_id BIGINT NOT NULL,
			body TEXT NOT NULL,
			is_staff BOOLEAN NOT NULL DEFAULT FALSE,
			staff_name TEXT,
			created_at DATETIME NOT NULL
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

	node, err := snowflake.NewNode(60)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return messageservice.New(messageservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: clock.NewSystemClock(),
		GenID: node,
		Repo:  messagerepo.Provide(),
	})
}

func seedStaffReply(t *testing.T, db *gorm.DB, messageID snowflake.ID) {
	t.Helper()

	err := db.Exec(`
		INSERT INTO message_replies (id, message_id, body, is_staff, staff_name, created_at)
		VALUES (?, ?, 'We will take a look.', TRUE, 'Dana', ?)
	`, messageID+1, messageID, time.Now().UTC()).Error
	if err != nil {
		t.Fatalf("seed staff reply: %v", err)
	}
	err = db.Exec(`
		UPDATE messages SET has_unread_replies = TRUE, status = 'responded' WHERE id = ?
	`, messageID).Error
	if err != nil {
		t.Fatalf("flag unread: %v", err)
	}
}

func TestCreateRejectsShortSubject(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, setupTestDB(t))

	_, err := svc.Create(ctx, domain.CreateMessageRequest{
		CustomerID: 7,
		Subject:    "Hi",
		Category:   "billing",
		Body:       "Something about my last invoice.",
	})
	if !errors.Is(err, domain.ErrInvalidSubject) {
		t.Fatalf("expected ErrInvalidSubject, got %v", err)
	}
}

func TestCreateRejectsUnknownCategory(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, setupTestDB(t))

	_, err := svc.Create(ctx, domain.CreateMessageRequest{
		CustomerID: 7,
		Subject:    "Question about stains",
		Category:   "complaints",
		Body:       "The stain came back.",
	})
	if !errors.Is(err, domain.ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestCreateAndListMessages(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	msg, err := svc.Create(ctx, domain.CreateMessageRequest{
		CustomerID: 7,
		Subject:    "Question about stains",
		Category:   "Service",
		Body:       "The stain came back after the last visit.",
	})
	if err != nil {
		t.Fatalf("create message: %v", err)
	}
	if msg.Status != domain.MessageStatusOpen {
		t.Fatalf("expected open status, got %s", msg.Status)
	}
	if msg.Category != domain.CategoryService {
		t.Fatalf("expected normalized category, got %s", msg.Category)
	}

	items, err := svc.List(ctx, domain.ListMessagesRequest{CustomerID: 7})
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 message, got %d", len(items))
	}
	if items[0].ReplyCount != 0 {
		t.Fatalf("expected 0 replies, got %d", items[0].ReplyCount)
	}

	other, err := svc.List(ctx, domain.ListMessagesRequest{CustomerID: 8})
	if err != nil {
		t.Fatalf("list other customer: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("messages must be scoped to their customer, got %d", len(other))
	}
}

func TestListFilterRejectsUnknownValue(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, setupTestDB(t))

	_, err := svc.List(ctx, domain.ListMessagesRequest{CustomerID: 7, Filter: "archived"})
	if !errors.Is(err, domain.ErrInvalidFilter) {
		t.Fatalf("expected ErrInvalidFilter, got %v", err)
	}
}

func TestGetThreadClearsUnreadFlag(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	msg, err := svc.Create(ctx, domain.CreateMessageRequest{
		CustomerID: 7,
		Subject:    "Reschedule request",
		Category:   "scheduling",
		Body:       "Can we move Friday to Monday?",
	})
	if err != nil {
		t.Fatalf("create message: %v", err)
	}
	seedStaffReply(t, db, msg.ID)

	count, err := svc.UnreadCount(ctx, 7)
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 unread thread, got %d", count)
	}

	thread, err := svc.GetThread(ctx, domain.GetThreadRequest{ID: msg.ID.String(), CustomerID: 7})
	if err != nil {
		t.Fatalf("get thread: %v", err)
	}
	if len(thread.Replies) != 1 {
		t.Fatalf("expected 1 reply, got %d", len(thread.Replies))
	}
	if thread.Message.HasUnreadReplies {
		t.Fatalf("opening the thread must clear the unread flag")
	}

	var unreadFlag bool
	if err := db.Raw(`SELECT has_unread_replies FROM messages WHERE id = ?`, msg.ID).Scan(&unreadFlag).Error; err != nil {
		t.Fatalf("load flag: %v", err)
	}
	if unreadFlag {
		t.Fatalf("unread flag must be cleared in storage")
	}
}

func TestGetThreadScopedToCustomer(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	msg, err := svc.Create(ctx, domain.CreateMessageRequest{
		CustomerID: 7,
		Subject:    "Reschedule request",
		Category:   "scheduling",
		Body:       "Can we move Friday to Monday?",
	})
	if err != nil {
		t.Fatalf("create message: %v", err)
	}

	_, err = svc.GetThread(ctx, domain.GetThreadRequest{ID: msg.ID.String(), CustomerID: 8})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign thread, got %v", err)
	}
}

func TestReplyReopensRespondedThread(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	msg, err := svc.Create(ctx, domain.CreateMessageRequest{
		CustomerID: 7,
		Subject:    "Billing question",
		Category:   "billing",
		Body:       "The total looks off.",
	})
	if err != nil {
		t.Fatalf("create message: %v", err)
	}
	seedStaffReply(t, db, msg.ID)

	reply, err := svc.Reply(ctx, domain.ReplyRequest{
		ID:         msg.ID.String(),
		CustomerID: 7,
		Body:       "Thanks, but the amount is still wrong.",
	})
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	if reply.IsStaff {
		t.Fatalf("customer replies must not be flagged as staff")
	}

	var status string
	if err := db.Raw(`SELECT status FROM messages WHERE id = ?`, msg.ID).Scan(&status).Error; err != nil {
		t.Fatalf("load status: %v", err)
	}
	if status != string(domain.MessageStatusOpen) {
		t.Fatalf("customer reply must reopen the thread, got %s", status)
	}
}

func TestReplyToClosedThreadIsRejected(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	msg, err := svc.Create(ctx, domain.CreateMessageRequest{
		CustomerID: 7,
		Subject:    "Old conversation",
		Category:   "general",
		Body:       "Long resolved.",
	})
	if err != nil {
		t.Fatalf("create message: %v", err)
	}
	if err := db.Exec(`UPDATE messages SET status = 'closed' WHERE id = ?`, msg.ID).Error; err != nil {
		t.Fatalf("close thread: %v", err)
	}

	_, err = svc.Reply(ctx, domain.ReplyRequest{
		ID:         msg.ID.String(),
		CustomerID: 7,
		Body:       "One more thing.",
	})
	if !errors.Is(err, domain.ErrThreadClosed) {
		t.Fatalf("expected ErrThreadClosed, got %v", err)
	}
}

func TestMarkAllReadClearsEveryThread(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	for i := 0; i < 2; i++ {
		msg, err := svc.Create(ctx, domain.CreateMessageRequest{
			CustomerID: 7,
			Subject:    fmt.Sprintf("Thread number %d", i),
			Category:   "general",
			Body:       "Hello there.",
		})
		if err != nil {
			t.Fatalf("create message: %v", err)
		}
		seedStaffReply(t, db, msg.ID)
	}

	if err := svc.MarkAllRead(ctx, 7); err != nil {
		t.Fatalf("mark all read: %v", err)
	}

	var flagged int64
	err := db.Table("messages").Where("has_unread_replies = ?", true).Count(&flagged).Error
	if err != nil {
		t.Fatalf("count flagged: %v", err)
	}
	if flagged != 0 {
		t.Fatalf("expected no unread flags, got %d", flagged)
	}
}
