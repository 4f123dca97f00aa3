package block

import (
	"context"
	"errors"
	"fmt"
	"testing"

	blockdomain "meetup-go-app/backend/internal/domain/block"
	"meetup-go-app/backend/internal/repository"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newBlockTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&blockdomain.Block{}, &blockdomain.Report{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	return NewService(repository.NewBlockRepository(db)), db
}

func TestBlockLifecycle(t *testing.T) {
	svc, db := newBlockTestService(t)
	ctx := context.Background()

	if _, err := svc.Block(ctx, 1, 1); !errors.Is(err, ErrSelfBlock) {
		t.Fatalf("self block: got %v", err)
	}

	b, err := svc.Block(ctx, 1, 2)
	if err != nil {
		t.Fatalf("block: %v", err)
	}
	if b.Status != blockdomain.StatusActive {
		t.Fatalf("status = %s, want ACTIVE", b.Status)
	}

	if _, err := svc.Block(ctx, 1, 2); !errors.Is(err, ErrAlreadyBlocked) {
		t.Fatalf("double block: got %v", err)
	}

	if err := svc.Unblock(ctx, 1, 2); err != nil {
		t.Fatalf("unblock: %v", err)
	}
	if err := svc.Unblock(ctx, 1, 2); !errors.Is(err, ErrNotBlocked) {
		t.Fatalf("double unblock: got %v", err)
	}
	if err := svc.Unblock(ctx, 1, 3); !errors.Is(err, ErrNotBlocked) {
		t.Fatalf("unblock stranger: got %v", err)
	}

	// 再次拉黑复用同一条记录，不新增行。
	again, err := svc.Block(ctx, 1, 2)
	if err != nil {
		t.Fatalf("re-block: %v", err)
	}
	if again.ID != b.ID {
		t.Fatalf("expected reused record, got new id %d", again.ID)
	}
	if again.ReleasedAt != nil {
		t.Fatalf("released_at should be cleared on re-block")
	}

	var count int64
	if err := db.Model(&blockdomain.Block{}).Count(&count).Error; err != nil {
		t.Fatalf("count blocks: %v", err)
	}
	if count != 1 {
		t.Fatalf("block rows = %d, want 1", count)
	}
}

func TestListBlockedOnlyActive(t *testing.T) {
	svc, _ := newBlockTestService(t)
	ctx := context.Background()

	if _, err := svc.Block(ctx, 1, 2); err != nil {
		t.Fatalf("block: %v", err)
	}
	if _, err := svc.Block(ctx, 1, 3); err != nil {
		t.Fatalf("block: %v", err)
	}
	if err := svc.Unblock(ctx, 1, 3); err != nil {
		t.Fatalf("unblock: %v", err)
	}

	blocks, err := svc.ListBlocked(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(blocks) != 1 || blocks[0].BlockedID != 2 {
		t.Fatalf("unexpected active blocks: %+v", blocks)
	}
}

func TestReportAssignsReportNo(t *testing.T) {
	svc, _ := newBlockTestService(t)
	ctx := context.Background()

	if _, err := svc.Report(ctx, 1, 1, "spam"); !errors.Is(err, ErrSelfBlock) {
		t.Fatalf("self report: got %v", err)
	}
	if _, err := svc.Report(ctx, 1, 2, ""); err == nil {
		t.Fatalf("expected error for empty reason")
	}

	report, err := svc.Report(ctx, 1, 2, "inappropriate messages")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.ReportNo == "" {
		t.Fatalf("expected report number")
	}

	second, err := svc.Report(ctx, 3, 2, "spam")
	if err != nil {
		t.Fatalf("second report: %v", err)
	}
	if second.ReportNo == report.ReportNo {
		t.Fatalf("report numbers must be unique")
	}

	reports, err := svc.ListReports(ctx)
	if err != nil {
		t.Fatalf("list reports: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("reports = %d, want 2", len(reports))
	}
}
