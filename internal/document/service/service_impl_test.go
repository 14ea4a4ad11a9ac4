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

	"github.com/dirtfreecarpet/portal/internal/document/domain"
	documentrepo "github.com/dirtfreecarpet/portal/internal/document/repository"
	documentservice "github.com/dirtfreecarpet/portal/internal/document/service"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	schema := []string{
		`CREATE TABLE jobs (
			id BIGINT PRIMARY KEY,
			customer_id BIGINT NOT NULL,
			scheduled_date DATETIME NOT NULL,
			scheduled_time TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'scheduled',
			total_amount BIGINT NOT NULL DEFAULT 0,
			technician_name TEXT,
			notes TEXT,
			services TEXT NOT NULL DEFAULT '[]',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE job_photos (
			id BIGINT PRIMARY KEY,
			job_id BIGINT NOT NULL,
			url TEXT NOT NULL,
			caption TEXT,
			kind TEXT NOT NULL DEFAULT 'general',
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

	return documentservice.New(documentservice.Params{
		DB:   db,
		Log:  zap.NewNop(),
		Repo: documentrepo.Provide(),
	})
}

func seedJob(t *testing.T, db *gorm.DB, node *snowflake.Node, customerID snowflake.ID, status string, scheduled time.Time) snowflake.ID {
	t.Helper()

	id := node.Generate()
	err := db.Exec(`
		INSERT INTO jobs (id, customer_id, scheduled_date, scheduled_time, status, total_amount, technician_name, services, created_at, updated_at)
		VALUES (?, ?, ?, '10:00', ?, 18900, 'Mike', '["Carpet Cleaning"]', ?, ?)
	`, id, customerID, scheduled, status, time.Now().UTC(), time.Now().UTC()).Error
	if err != nil {
		t.Fatalf("seed job: %v", err)
	}
	return id
}

func seedPhoto(t *testing.T, db *gorm.DB, node *snowflake.Node, jobID snowflake.ID, kind string) {
	t.Helper()

	id := node.Generate()
	err := db.Exec(`
		INSERT INTO job_photos (id, job_id, url, caption, kind, created_at)
		VALUES (?, ?, ?, 'Living room', ?, ?)
	`, id, jobID, fmt.Sprintf("https://cdn.example.com/photos/%d.jpg", id), kind, time.Now().UTC()).Error
	if err != nil {
		t.Fatalf("seed photo: %v", err)
	}
}

func TestHistoryRequiresCustomer(t *testing.T) {
	svc := newService(t, setupTestDB(t))

	_, err := svc.History(context.Background(), domain.HistoryRequest{})
	if !errors.Is(err, domain.ErrInvalidCustomer) {
		t.Fatalf("expected ErrInvalidCustomer, got %v", err)
	}
}

func TestHistoryListsCompletedVisitsWithPhotos(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	node, err := snowflake.NewNode(61)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}

	older := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC)
	oldJob := seedJob(t, db, node, 7, "completed", older)
	newJob := seedJob(t, db, node, 7, "completed", newer)
	seedJob(t, db, node, 7, "scheduled", newer.AddDate(0, 1, 0))
	seedJob(t, db, node, 8, "completed", newer)

	seedPhoto(t, db, node, newJob, "before")
	seedPhoto(t, db, node, newJob, "after")

	history, err := svc.History(ctx, domain.HistoryRequest{CustomerID: 7})
	if err != nil {
		t.Fatalf("history: %v", err)
	}

	if len(history.Records) != 2 {
		t.Fatalf("expected 2 completed visits, got %d", len(history.Records))
	}
	if history.Records[0].JobID != newJob || history.Records[1].JobID != oldJob {
		t.Fatalf("expected newest-first ordering")
	}
	if len(history.Records[0].Photos) != 2 {
		t.Fatalf("expected 2 photos on newest visit, got %d", len(history.Records[0].Photos))
	}
	if len(history.Records[1].Photos) != 0 {
		t.Fatalf("expected no photos on older visit, got %d", len(history.Records[1].Photos))
	}
	if history.Records[0].Services[0] != "Carpet Cleaning" {
		t.Fatalf("expected service names on the record")
	}

	if history.Stats.TotalServices != 2 || history.Stats.TotalPhotos != 2 {
		t.Fatalf("unexpected stats: %+v", history.Stats)
	}
	if history.Stats.FirstServiceDate == nil || !history.Stats.FirstServiceDate.Equal(older) {
		t.Fatalf("unexpected first service date: %v", history.Stats.FirstServiceDate)
	}
	if history.Stats.LastServiceDate == nil || !history.Stats.LastServiceDate.Equal(newer) {
		t.Fatalf("unexpected last service date: %v", history.Stats.LastServiceDate)
	}
}

func TestHistoryEmptyForCustomerWithoutCompletedVisits(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db)

	node, err := snowflake.NewNode(62)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	seedJob(t, db, node, 7, "scheduled", time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))

	history, err := svc.History(ctx, domain.HistoryRequest{CustomerID: 7})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history.Records) != 0 {
		t.Fatalf("expected no records, got %d", len(history.Records))
	}
	if history.Stats.TotalServices != 0 || history.Stats.FirstServiceDate != nil {
		t.Fatalf("unexpected stats: %+v", history.Stats)
	}
}
