package kpi

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "meetup-go-app/backend/internal/domain/kpi"
	"meetup-go-app/backend/internal/infra/ratecalc"
	"meetup-go-app/backend/internal/repository"

	"gorm.io/gorm"
)

// 查询侧的业务错误。
var (
	ErrKpiNotFound  = errors.New("kpi record not found for this date")
	ErrInvalidRange = errors.New("start date must not be after end date")
)

// DayView 是单日 KPI 的读侧视图，附带三个现算的派生比率。
type DayView struct {
	domain.DailyKpi
	SignalAcceptRate  float64 `json:"signal_accept_rate"`
	UnlockApproveRate float64 `json:"unlock_approve_rate"`
	ChatActiveRate    float64 `json:"chat_active_rate"`
}

// Totals 汇总区间内可直接相加的计数指标，并基于总数重算比率。
type Totals struct {
	SignalSentCount      int     `json:"signal_sent_count"`
	SignalAcceptedCount  int     `json:"signal_accepted_count"`
	SignalAcceptRate     float64 `json:"signal_accept_rate"`
	OpenChatroomsCount   int     `json:"open_chatrooms_count"`
	ClosedChatroomsCount int     `json:"closed_chatrooms_count"`
	QuestionUsageCount   int     `json:"question_usage_count"`
	UnlockRequestCount   int     `json:"unlock_request_count"`
	UnlockApprovedCount  int     `json:"unlock_approved_count"`
	UnlockApproveRate    float64 `json:"unlock_approve_rate"`
}

// Summary 是日期区间查询的返回结构。
type Summary struct {
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Days      []DayView `json:"days"`
	Totals    Totals    `json:"totals"`
}

// QueryService 提供 KPI 的只读查询，直接构建在仓储之上，无缓存。
type QueryService struct {
	kpis *repository.KpiRepository
}

// NewQueryService 构造 KPI 查询服务。
func NewQueryService(kpis *repository.KpiRepository) *QueryService {
	return &QueryService{kpis: kpis}
}

// Daily 返回指定日期的 KPI，未聚合的日期返回 ErrKpiNotFound。
func (s *QueryService) Daily(ctx context.Context, date time.Time) (DayView, error) {
	record, err := s.kpis.FindByTargetDate(ctx, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DayView{}, ErrKpiNotFound
		}
		return DayView{}, fmt.Errorf("find daily kpi: %w", err)
	}
	return toDayView(record), nil
}

// Summary 返回闭区间 [start, end] 的逐日列表与合计。
func (s *QueryService) Summary(ctx context.Context, start, end time.Time) (Summary, error) {
	if start.After(end) {
		return Summary{}, ErrInvalidRange
	}

	records, err := s.kpis.FindBetween(ctx, start, end)
	if err != nil {
		return Summary{}, fmt.Errorf("find kpi range: %w", err)
	}

	summary := Summary{
		StartDate: start.Format("2006-01-02"),
		EndDate:   end.Format("2006-01-02"),
		Days:      make([]DayView, 0, len(records)),
	}

	for i := range records {
		record := &records[i]
		summary.Days = append(summary.Days, toDayView(record))

		summary.Totals.SignalSentCount += record.SignalSentCount
		summary.Totals.SignalAcceptedCount += record.SignalAcceptedCount
		summary.Totals.OpenChatroomsCount += record.OpenChatroomsCount
		summary.Totals.ClosedChatroomsCount += record.ClosedChatroomsCount
		summary.Totals.QuestionUsageCount += record.QuestionUsageCount
		summary.Totals.UnlockRequestCount += record.UnlockRequestCount
		summary.Totals.UnlockApprovedCount += record.UnlockApprovedCount
	}

	summary.Totals.SignalAcceptRate = ratecalc.Rate(
		int64(summary.Totals.SignalAcceptedCount), int64(summary.Totals.SignalSentCount))
	summary.Totals.UnlockApproveRate = ratecalc.Rate(
		int64(summary.Totals.UnlockApprovedCount), int64(summary.Totals.UnlockRequestCount))

	return summary, nil
}

// All 返回全部已聚合的日记录。
func (s *QueryService) All(ctx context.Context) ([]DayView, error) {
	records, err := s.kpis.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("find all kpi: %w", err)
	}

	views := make([]DayView, 0, len(records))
	for i := range records {
		views = append(views, toDayView(&records[i]))
	}
	return views, nil
}

// toDayView 由存储记录构造读侧视图，派生比率在此现算。
func toDayView(record *domain.DailyKpi) DayView {
	return DayView{
		DailyKpi:          *record,
		SignalAcceptRate:  record.SignalAcceptRate(),
		UnlockApproveRate: record.UnlockApproveRate(),
		ChatActiveRate:    record.ChatActiveRate(),
	}
}
