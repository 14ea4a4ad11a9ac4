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

	auditdomain "github.com/dirtfreecarpet/portal/internal/audit/domain"
	"github.com/dirtfreecarpet/portal/internal/audit/repository"
	"github.com/dirtfreecarpet/portal/internal/audit/service"
	"github.com/dirtfreecarpet/portal/internal/clock"
	"github.com/dirtfreecarpet/portal/pkg/db/pagination"
)

func newService(t *testing.T, nodeID int64, clk clock.Clock) auditdomain.Service {
	t.Helper()

	db := setupTestDB(t)
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	return service.NewService(service.Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: clk,
		GenID: node,
		Repo:  repository.Provide(),
	})
}

func writeEntries(t *testing.T, svc auditdomain.Service, clk *clock.FakeClock, action string, n int) {
	t.Helper()

	for i := 0; i < n; i++ {
		targetID := fmt.Sprintf("target-%d", i)
		err := svc.AuditLog(context.Background(), string(auditdomain.ActorTypeSystem), nil,
			action, "payment", &targetID, map[string]any{"seq": i})
		if err != nil {
			t.Fatalf("write entry %d: %v", i, err)
		}
		clk.Advance(time.Second)
	}
}

func TestAuditLogRequiresAction(t *testing.T) {
	svc := newService(t, 70, clock.NewSystemClock())

	err := svc.AuditLog(context.Background(), "system", nil, "  ", "payment", nil, nil)
	if !errors.Is(err, auditdomain.ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}
}

func TestListPagesThroughEntries(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	svc := newService(t, 71, clk)
	writeEntries(t, svc, clk, auditdomain.ActionPaymentCompleted, 5)

	first, err := svc.List(context.Background(), auditdomain.ListAuditLogRequest{
		Pagination: pagination.Pagination{PageSize: 2},
	})
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(first.AuditLogs) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(first.AuditLogs))
	}
	if !first.HasMore || first.NextPageToken == "" {
		t.Fatalf("expected a next page, got %+v", first.PageInfo)
	}

	second, err := svc.List(context.Background(), auditdomain.ListAuditLogRequest{
		Pagination: pagination.Pagination{PageSize: 2, PageToken: first.NextPageToken},
	})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(second.AuditLogs) != 2 {
		t.Fatalf("expected 2 rows on page two, got %d", len(second.AuditLogs))
	}
	if second.AuditLogs[0].ID == first.AuditLogs[0].ID {
		t.Fatalf("pages must not overlap")
	}
}

func TestListFiltersByAction(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	svc := newService(t, 72, clk)
	writeEntries(t, svc, clk, auditdomain.ActionPaymentCompleted, 3)
	writeEntries(t, svc, clk, auditdomain.ActionPaymentFailed, 2)

	resp, err := svc.List(context.Background(), auditdomain.ListAuditLogRequest{
		Action: auditdomain.ActionPaymentFailed,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(resp.AuditLogs) != 2 {
		t.Fatalf("expected 2 failed rows, got %d", len(resp.AuditLogs))
	}
	for _, row := range resp.AuditLogs {
		if row.Action != auditdomain.ActionPaymentFailed {
			t.Fatalf("unexpected action %s", row.Action)
		}
	}
}

func TestListRejectsBadPageToken(t *testing.T) {
	svc := newService(t, 73, clock.NewSystemClock())

	_, err := svc.List(context.Background(), auditdomain.ListAuditLogRequest{
		Pagination: pagination.Pagination{PageToken: "garbage"},
	})
	if !errors.Is(err, auditdomain.ErrInvalidPageToken) {
		t.Fatalf("expected ErrInvalidPageToken, got %v", err)
	}
}

func TestListRejectsInvertedTimeRange(t *testing.T) {
	svc := newService(t, 74, clock.NewSystemClock())

	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)
	_, err := svc.List(context.Background(), auditdomain.ListAuditLogRequest{
		StartAt: &start,
		EndAt:   &end,
	})
	if !errors.Is(err, auditdomain.ErrInvalidTimeRange) {
		t.Fatalf("expected ErrInvalidTimeRange, got %v", err)
	}
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_audit_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	err = db.Exec(`CREATE TABLE audit_logs (
		id BIGINT PRIMARY KEY,
		actor_type TEXT NOT NULL,
		actor_id TEXT,
		action TEXT NOT NULL,
		target_type TEXT NOT NULL,
		target_id TEXT,
		metadata TEXT NOT NULL,
		ip_address TEXT,
		user_agent TEXT,
		created_at DATETIME NOT NULL
	)`).Error
	if err != nil {
		t.Fatalf("schema exec failed: %v", err)
	}

	return db
}
