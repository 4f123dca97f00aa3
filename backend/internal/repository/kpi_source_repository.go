package repository

import (
	"context"
	"time"

	"meetup-go-app/backend/internal/domain/chat"
	"meetup-go-app/backend/internal/domain/question"
	"meetup-go-app/backend/internal/domain/signal"
	"meetup-go-app/backend/internal/domain/unlock"

	"gorm.io/gorm"
)

// KpiSourceRepository 汇集 KPI 聚合所需的只读查询。
// 它跨越信号、聊天、话题、解锁四个聚合，只读不写，所有时间窗口均为 [start, end)。
type KpiSourceRepository struct {
	db *gorm.DB
}

// NewKpiSourceRepository 构造 KPI 数据源仓储。
func NewKpiSourceRepository(db *gorm.DB) *KpiSourceRepository {
	return &KpiSourceRepository{db: db}
}

// CountSignalsSent 统计窗口内发出的信号数。
func (r *KpiSourceRepository) CountSignalsSent(ctx context.Context, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&signal.Signal{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&count).Error
	return count, err
}

// CountSignalsAccepted 统计窗口内被接受的信号数，以回应时刻归属日期。
func (r *KpiSourceRepository) CountSignalsAccepted(ctx context.Context, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&signal.Signal{}).
		Where("status = ?", signal.StatusAccepted).
		Where("responded_at >= ? AND responded_at < ?", start, end).
		Count(&count).Error
	return count, err
}

// ListRoomsOpened 列出窗口内新开启的聊天室。
func (r *KpiSourceRepository) ListRoomsOpened(ctx context.Context, start, end time.Time) ([]chat.Room, error) {
	var rooms []chat.Room
	err := r.db.WithContext(ctx).
		Where("opened_at >= ? AND opened_at < ?", start, end).
		Find(&rooms).Error
	return rooms, err
}

// CountOpenRooms 统计当前仍处于开启状态的聊天室数。
func (r *KpiSourceRepository) CountOpenRooms(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&chat.Room{}).
		Where("status = ?", chat.RoomOpen).
		Count(&count).Error
	return count, err
}

// ListOpenRoomIDsOpenedBefore 列出在 before 之前开启且仍开放的聊天室 ID，
// 用于计算老房间的回流率。
func (r *KpiSourceRepository) ListOpenRoomIDsOpenedBefore(ctx context.Context, before time.Time) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&chat.Room{}).
		Where("status = ? AND opened_at < ?", chat.RoomOpen, before).
		Pluck("id", &ids).Error
	return ids, err
}

// roomMessageCount 承接按房间分组的消息计数。
type roomMessageCount struct {
	RoomID uint  `gorm:"column:room_id"`
	Cnt    int64 `gorm:"column:cnt"`
}

// MessageCountsByRoom 统计窗口内每个房间的消息数，返回 roomID -> 条数。
// 窗口内没有消息的房间不会出现在结果里。
func (r *KpiSourceRepository) MessageCountsByRoom(ctx context.Context, start, end time.Time) (map[uint]int64, error) {
	var rows []roomMessageCount
	err := r.db.WithContext(ctx).
		Model(&chat.Message{}).
		Select("room_id, COUNT(*) AS cnt").
		Where("created_at >= ? AND created_at < ?", start, end).
		Group("room_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.RoomID] = row.Cnt
	}
	return counts, nil
}

// RoomIDsWithQuestionUsage 返回给定房间中用过推荐话题的房间 ID 集合。
func (r *KpiSourceRepository) RoomIDsWithQuestionUsage(ctx context.Context, roomIDs []uint) (map[uint]bool, error) {
	if len(roomIDs) == 0 {
		return map[uint]bool{}, nil
	}

	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&question.Usage{}).
		Where("room_id IN ?", roomIDs).
		Distinct().
		Pluck("room_id", &ids).Error
	if err != nil {
		return nil, err
	}

	used := make(map[uint]bool, len(ids))
	for _, id := range ids {
		used[id] = true
	}
	return used, nil
}

// CountQuestionUsages 统计窗口内的话题使用次数。
func (r *KpiSourceRepository) CountQuestionUsages(ctx context.Context, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&question.Usage{}).
		Where("used_at >= ? AND used_at < ?", start, end).
		Count(&count).Error
	return count, err
}

// CountUnlockRequests 统计窗口内发起的解锁申请数。
func (r *KpiSourceRepository) CountUnlockRequests(ctx context.Context, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&unlock.Request{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&count).Error
	return count, err
}

// CountUnlockApproved 统计窗口内通过的解锁申请数，以回应时刻归属日期。
func (r *KpiSourceRepository) CountUnlockApproved(ctx context.Context, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&unlock.Request{}).
		Where("status = ?", unlock.StatusApproved).
		Where("responded_at >= ? AND responded_at < ?", start, end).
		Count(&count).Error
	return count, err
}

// ListRoomsClosed 列出窗口内关闭的聊天室。
func (r *KpiSourceRepository) ListRoomsClosed(ctx context.Context, start, end time.Time) ([]chat.Room, error) {
	var rooms []chat.Room
	err := r.db.WithContext(ctx).
		Where("status = ?", chat.RoomClosed).
		Where("closed_at >= ? AND closed_at < ?", start, end).
		Find(&rooms).Error
	return rooms, err
}
