package repository

import (
	"context"
	"time"

	"meetup-go-app/backend/internal/domain/kpi"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// kpiUpsertColumns 是聚合重跑时允许整体覆盖的列。
// target_date 之外的所有指标列都会被替换，保证重算幂等。
var kpiUpsertColumns = []string{
	"signal_sent_count",
	"signal_accepted_count",
	"open_chatrooms_count",
	"current_open_chatrooms_count",
	"active_chatrooms_count",
	"first_message_rate",
	"three_turn_rate",
	"chat_return_rate",
	"avg_message_count",
	"question_usage_count",
	"question_used_rooms_count",
	"question_used_avg_message_count",
	"question_used_three_turn_rate",
	"question_unused_avg_message_count",
	"question_unused_three_turn_rate",
	"unlock_request_count",
	"unlock_approved_count",
	"closed_chatrooms_count",
	"avg_closed_chat_duration_days",
	"updated_at",
}

// KpiRepository 负责每日 KPI 记录的持久化操作。
type KpiRepository struct {
	db *gorm.DB
}

// NewKpiRepository 构造 KPI 仓储，复用主数据库连接。
func NewKpiRepository(db *gorm.DB) *KpiRepository {
	return &KpiRepository{db: db}
}

// Upsert 根据 target_date 上的唯一索引写入或整体覆盖某日记录。
// 并发重跑同一天时由数据库唯一约束兜底，落库结果等价于最后一次计算。
func (r *KpiRepository) Upsert(ctx context.Context, record *kpi.DailyKpi) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "target_date"}},
			DoUpdates: clause.AssignmentColumns(kpiUpsertColumns),
		}).
		Create(record).Error
}

// FindByTargetDate 查找指定日期的记录，不存在时返回 gorm.ErrRecordNotFound。
// 未聚合的日期必须表现为“缺失”，而不是一条全零记录。
func (r *KpiRepository) FindByTargetDate(ctx context.Context, date time.Time) (*kpi.DailyKpi, error) {
	var record kpi.DailyKpi
	if err := r.db.WithContext(ctx).
		Where("target_date = ?", dateOnly(date)).
		First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// FindBetween 按日期升序返回闭区间 [start, end] 内的全部记录。
func (r *KpiRepository) FindBetween(ctx context.Context, start, end time.Time) ([]kpi.DailyKpi, error) {
	var records []kpi.DailyKpi
	if err := r.db.WithContext(ctx).
		Where("target_date >= ? AND target_date <= ?", dateOnly(start), dateOnly(end)).
		Order("target_date ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindAll 按日期升序返回全部已聚合的记录。
func (r *KpiRepository) FindAll(ctx context.Context) ([]kpi.DailyKpi, error) {
	var records []kpi.DailyKpi
	if err := r.db.WithContext(ctx).
		Order("target_date ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// dateOnly 将时间裁剪为所在时区的零点，对齐 date 列的存储粒度。
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
