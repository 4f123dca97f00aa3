package kpi

import (
	"context"
	"errors"
	"testing"
	"time"

	kpidomain "meetup-go-app/backend/internal/domain/kpi"
	"meetup-go-app/backend/internal/repository"
)

func newKpiQueryService(t *testing.T) (*QueryService, *repository.KpiRepository) {
	t.Helper()
	db := newKpiTestDB(t)
	kpis := repository.NewKpiRepository(db)
	return NewQueryService(kpis), kpis
}

func seedKpiRecords(t *testing.T, kpis *repository.KpiRepository) []time.Time {
	t.Helper()
	ctx := context.Background()

	dates := []time.Time{
		time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
	}
	records := []kpidomain.DailyKpi{
		{TargetDate: dates[0], SignalSentCount: 10, SignalAcceptedCount: 4, UnlockRequestCount: 2, UnlockApprovedCount: 1},
		{TargetDate: dates[1], SignalSentCount: 20, SignalAcceptedCount: 5, OpenChatroomsCount: 3},
		{TargetDate: dates[2], SignalSentCount: 2, SignalAcceptedCount: 2, ClosedChatroomsCount: 1},
	}
	for i := range records {
		if err := kpis.Upsert(ctx, &records[i]); err != nil {
			t.Fatalf("seed kpi record: %v", err)
		}
	}
	return dates
}

func TestQueryDailyReturnsDerivedRates(t *testing.T) {
	query, kpis := newKpiQueryService(t)
	dates := seedKpiRecords(t, kpis)
	ctx := context.Background()

	view, err := query.Daily(ctx, dates[0])
	if err != nil {
		t.Fatalf("daily: %v", err)
	}
	if view.SignalSentCount != 10 {
		t.Fatalf("signal sent = %d, want 10", view.SignalSentCount)
	}
	if !approxEqual(view.SignalAcceptRate, 40) {
		t.Fatalf("signal accept rate = %v, want 40", view.SignalAcceptRate)
	}
	if !approxEqual(view.UnlockApproveRate, 50) {
		t.Fatalf("unlock approve rate = %v, want 50", view.UnlockApproveRate)
	}
}

func TestQueryDailyMissingDate(t *testing.T) {
	query, kpis := newKpiQueryService(t)
	seedKpiRecords(t, kpis)

	_, err := query.Daily(context.Background(), time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	if !errors.Is(err, ErrKpiNotFound) {
		t.Fatalf("expected ErrKpiNotFound, got %v", err)
	}
}

func TestQuerySummaryOrdersDaysAndAggregatesTotals(t *testing.T) {
	query, kpis := newKpiQueryService(t)
	dates := seedKpiRecords(t, kpis)
	ctx := context.Background()

	// 区间两端含当日，中间缺失的日期直接跳过。
	summary, err := query.Summary(ctx, dates[0], dates[2])
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if summary.StartDate != "2026-03-10" || summary.EndDate != "2026-03-12" {
		t.Fatalf("unexpected summary bounds: %s ~ %s", summary.StartDate, summary.EndDate)
	}
	if len(summary.Days) != 3 {
		t.Fatalf("summary days = %d, want 3", len(summary.Days))
	}
	for i := 1; i < len(summary.Days); i++ {
		if !summary.Days[i-1].TargetDate.Before(summary.Days[i].TargetDate) {
			t.Fatalf("summary days not in ascending order")
		}
	}

	if summary.Totals.SignalSentCount != 32 {
		t.Fatalf("total signal sent = %d, want 32", summary.Totals.SignalSentCount)
	}
	if summary.Totals.SignalAcceptedCount != 11 {
		t.Fatalf("total signal accepted = %d, want 11", summary.Totals.SignalAcceptedCount)
	}
	// 合计比率基于汇总分子分母重算：11/32。
	if !approxEqual(summary.Totals.SignalAcceptRate, 34.38) {
		t.Fatalf("total signal accept rate = %v, want 34.38", summary.Totals.SignalAcceptRate)
	}
	if !approxEqual(summary.Totals.UnlockApproveRate, 50) {
		t.Fatalf("total unlock approve rate = %v, want 50", summary.Totals.UnlockApproveRate)
	}
}

func TestQuerySummaryRejectsInvertedRange(t *testing.T) {
	query, kpis := newKpiQueryService(t)
	dates := seedKpiRecords(t, kpis)

	_, err := query.Summary(context.Background(), dates[2], dates[0])
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestQueryAllReturnsEveryRecord(t *testing.T) {
	query, kpis := newKpiQueryService(t)
	seedKpiRecords(t, kpis)

	views, err := query.All(context.Background())
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("all records = %d, want 3", len(views))
	}
}
