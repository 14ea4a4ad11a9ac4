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
	"github.com/dirtfreecarpet/portal/internal/config"
	"github.com/dirtfreecarpet/portal/internal/notification/domain"
	"github.com/dirtfreecarpet/portal/internal/notification/repository"
	"github.com/dirtfreecarpet/portal/internal/notification/service"
	"github.com/dirtfreecarpet/portal/internal/providers/email"
)

type recordingProvider struct {
	failures int
	sent     []string
}

func (p *recordingProvider) Send(_ context.Context, to []string, subject, _ string) error {
	if p.failures > 0 {
		p.failures--
		return errors.New("smtp unavailable")
	}
	p.sent = append(p.sent, subject+" -> "+to[0])
	return nil
}

func newService(t *testing.T, nodeID int64, provider email.Provider, clk clock.Clock) (*service.Service, *gorm.DB) {
	t.Helper()

	db := setupTestDB(t)
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	cfg := config.Config{
		Outbox: config.OutboxConfig{
			PollInterval: time.Second,
			BatchSize:    25,
			MaxAttempts:  3,
		},
		PortalBaseURL: "https://portal.dirtfreecarpet.test",
	}

	svc := service.NewService(service.Params{
		DB:       db,
		Log:      zap.NewNop(),
		Clock:    clk,
		GenID:    node,
		Config:   cfg,
		Repo:     repository.Provide(),
		Provider: provider,
	})
	return svc, db
}

func TestEnqueueRejectsUnknownTemplate(t *testing.T) {
	svc, _ := newService(t, 60, &email.NoOpProvider{}, clock.NewSystemClock())

	_, err := svc.Enqueue(context.Background(), nil, domain.EnqueueRequest{
		Recipient: "pat@example.com",
		Subject:   "Hello",
		Template:  "does_not_exist",
	})
	if !errors.Is(err, domain.ErrUnknownTemplate) {
		t.Fatalf("expected ErrUnknownTemplate, got %v", err)
	}
}

func TestDispatchSendsPendingEmails(t *testing.T) {
	provider := &recordingProvider{}
	svc, db := newService(t, 61, provider, clock.NewSystemClock())

	_, err := svc.Enqueue(context.Background(), nil, domain.EnqueueRequest{
		Recipient: "pat@example.com",
		Subject:   "Payment Received - Thank You!",
		Template:  domain.TemplatePaymentReceipt,
		Data: map[string]any{
			"CustomerName":  "Pat Doyle",
			"InvoiceNumber": "INV-1001",
			"Amount":        "250.00",
		},
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	sent, err := svc.DispatchPending(context.Background())
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if sent != 1 {
		t.Fatalf("expected 1 sent, got %d", sent)
	}
	if len(provider.sent) != 1 {
		t.Fatalf("expected provider delivery, got %d", len(provider.sent))
	}

	var status string
	if err := db.Raw(`SELECT status FROM email_outbox`).Scan(&status).Error; err != nil {
		t.Fatalf("load outbox row: %v", err)
	}
	if status != string(domain.EmailStatusSent) {
		t.Fatalf("expected sent, got %s", status)
	}
}

func TestDispatchRetriesWithBackoff(t *testing.T) {
	provider := &recordingProvider{failures: 1}
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	svc, db := newService(t, 62, provider, clk)

	_, err := svc.Enqueue(context.Background(), nil, domain.EnqueueRequest{
		Recipient: "pat@example.com",
		Subject:   "You Earned Loyalty Points!",
		Template:  domain.TemplateLoyaltyPointsEarned,
		Data: map[string]any{
			"CustomerName": "Pat Doyle",
			"PointsEarned": 2500,
			"TotalPoints":  2500,
			"RewardValue":  "250.00",
		},
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	sent, err := svc.DispatchPending(context.Background())
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if sent != 0 {
		t.Fatalf("failed delivery must not count as sent, got %d", sent)
	}

	var row struct {
		Status        string
		Attempts      int
		NextAttemptAt time.Time
	}
	if err := db.Raw(`SELECT status, attempts, next_attempt_at FROM email_outbox`).Scan(&row).Error; err != nil {
		t.Fatalf("load outbox row: %v", err)
	}
	if row.Status != string(domain.EmailStatusPending) || row.Attempts != 1 {
		t.Fatalf("expected pending with 1 attempt, got %s/%d", row.Status, row.Attempts)
	}
	if !row.NextAttemptAt.After(clk.Now()) {
		t.Fatalf("expected a future retry, got %v", row.NextAttemptAt)
	}

	// Not due yet.
	if sent, err := svc.DispatchPending(context.Background()); err != nil || sent != 0 {
		t.Fatalf("message retried before its backoff: sent=%d err=%v", sent, err)
	}

	clk.Advance(2 * time.Minute)
	sent, err = svc.DispatchPending(context.Background())
	if err != nil {
		t.Fatalf("dispatch retry: %v", err)
	}
	if sent != 1 {
		t.Fatalf("expected retry to deliver, got %d", sent)
	}
}

func TestDispatchMarksFailedAfterMaxAttempts(t *testing.T) {
	provider := &recordingProvider{failures: 10}
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	svc, db := newService(t, 63, provider, clk)

	_, err := svc.Enqueue(context.Background(), nil, domain.EnqueueRequest{
		Recipient: "pat@example.com",
		Subject:   "Appointment Cancelled",
		Template:  domain.TemplateAppointmentCancelled,
		Data: map[string]any{
			"CustomerName": "Pat Doyle",
			"ServiceDate":  "March 5, 2026",
		},
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.DispatchPending(context.Background()); err != nil {
			t.Fatalf("dispatch %d: %v", i, err)
		}
		clk.Advance(2 * time.Hour)
	}

	var row struct {
		Status    string
		Attempts  int
		LastError string
	}
	if err := db.Raw(`SELECT status, attempts, last_error FROM email_outbox`).Scan(&row).Error; err != nil {
		t.Fatalf("load outbox row: %v", err)
	}
	if row.Status != string(domain.EmailStatusFailed) {
		t.Fatalf("expected failed after max attempts, got %s (%d attempts)", row.Status, row.Attempts)
	}
	if row.LastError == "" {
		t.Fatalf("expected last_error recorded")
	}
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_outbox_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	err = db.Exec(`CREATE TABLE email_outbox (
		id BIGINT PRIMARY KEY,
		recipient TEXT NOT NULL,
		subject TEXT NOT NULL,
		template TEXT NOT NULL,
		payload TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		attempts INTEGER NOT NULL DEFAULT 0,
		last_error TEXT,
		next_attempt_at DATETIME NOT NULL,
		sent_at DATETIME,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`).Error
	if err != nil {
		t.Fatalf("schema exec failed: %v", err)
	}

	return db
}
