package kpi

import (
	"context"
	"fmt"
	"time"

	domain "meetup-go-app/backend/internal/domain/kpi"
	appLogger "meetup-go-app/backend/internal/infra/logger"
	"meetup-go-app/backend/internal/infra/metrics"
	"meetup-go-app/backend/internal/infra/ratecalc"
	"meetup-go-app/backend/internal/repository"

	"go.uber.org/zap"
)

const (
	// threeTurnMessages 表示“三轮往返”对应的消息条数，双方各三条。
	threeTurnMessages = 6
	// activeRoomMessages 表示当日消息达到该条数的房间计为活跃房间。
	activeRoomMessages = 10
)

// Service 负责每日 KPI 的聚合计算与落库。
// 聚合是幂等的：对同一日期重跑会整体重算并覆盖该日记录，不会累加。
type Service struct {
	kpis   *repository.KpiRepository
	source *repository.KpiSourceRepository
	loc    *time.Location
	logger *zap.SugaredLogger
}

// NewService 构造 KPI 聚合服务。loc 是业务时区，决定自然日的切分。
func NewService(kpis *repository.KpiRepository, source *repository.KpiSourceRepository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		kpis:   kpis,
		source: source,
		loc:    loc,
		logger: appLogger.S().With("component", "service.kpi"),
	}
}

// Location 返回聚合使用的业务时区。
func (s *Service) Location() *time.Location {
	return s.loc
}

// AggregateDaily 为指定自然日计算全部指标组并 upsert 一条记录。
// 任何一组指标读取失败都会让整次聚合失败且不落库；
// 落库是单条 upsert，不存在部分写入。
func (s *Service) AggregateDaily(ctx context.Context, date time.Time) error {
	started := time.Now()

	record, err := s.buildRecord(ctx, date)
	if err != nil {
		metrics.ObserveKpiAggregation("error", time.Since(started))
		return err
	}

	if err := s.kpis.Upsert(ctx, record); err != nil {
		metrics.ObserveKpiAggregation("error", time.Since(started))
		return fmt.Errorf("upsert daily kpi: %w", err)
	}

	metrics.ObserveKpiAggregation("ok", time.Since(started))
	s.logger.Infow("daily kpi aggregated",
		"target_date", record.TargetDate.Format("2006-01-02"),
		"elapsed", time.Since(started),
	)
	return nil
}

// buildRecord 扫描各业务聚合，组装指定日期的完整 KPI 记录。
func (s *Service) buildRecord(ctx context.Context, date time.Time) (*domain.DailyKpi, error) {
	day := date.In(s.loc)
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, s.loc)
	end := start.AddDate(0, 0, 1)

	record := &domain.DailyKpi{TargetDate: start}

	// 信号指标。
	sent, err := s.source.CountSignalsSent(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("count signals sent: %w", err)
	}
	accepted, err := s.source.CountSignalsAccepted(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("count signals accepted: %w", err)
	}
	record.SignalSentCount = int(sent)
	record.SignalAcceptedCount = int(accepted)

	// 聊天指标。
	rooms, err := s.source.ListRoomsOpened(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("list rooms opened: %w", err)
	}
	currentOpen, err := s.source.CountOpenRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("count open rooms: %w", err)
	}
	msgCounts, err := s.source.MessageCountsByRoom(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("count messages by room: %w", err)
	}

	record.OpenChatroomsCount = len(rooms)
	record.CurrentOpenChatroomsCount = int(currentOpen)

	var firstMessageRooms, threeTurnRooms int64
	for _, room := range rooms {
		cnt := msgCounts[room.ID]
		if cnt >= 1 {
			firstMessageRooms++
		}
		if cnt >= threeTurnMessages {
			threeTurnRooms++
		}
	}
	record.FirstMessageRate = ratecalc.Rate(firstMessageRooms, int64(len(rooms)))
	record.ThreeTurnRate = ratecalc.Rate(threeTurnRooms, int64(len(rooms)))

	var totalMessages, activeRooms int64
	for _, cnt := range msgCounts {
		totalMessages += cnt
		if cnt >= activeRoomMessages {
			activeRooms++
		}
	}
	record.ActiveChatroomsCount = int(activeRooms)
	record.AvgMessageCount = ratecalc.Average(totalMessages, int64(len(msgCounts)))

	// 回流率：窗口开始前已开启且仍开放的老房间中，当日仍有消息的占比。
	oldRoomIDs, err := s.source.ListOpenRoomIDsOpenedBefore(ctx, start)
	if err != nil {
		return nil, fmt.Errorf("list old open rooms: %w", err)
	}
	var returnedRooms int64
	for _, id := range oldRoomIDs {
		if msgCounts[id] > 0 {
			returnedRooms++
		}
	}
	record.ChatReturnRate = ratecalc.Rate(returnedRooms, int64(len(oldRoomIDs)))

	// 推荐话题指标：当日新开房间按是否使用过推荐话题分成两个队列。
	usageCount, err := s.source.CountQuestionUsages(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("count question usages: %w", err)
	}
	record.QuestionUsageCount = int(usageCount)

	roomIDs := make([]uint, 0, len(rooms))
	for _, room := range rooms {
		roomIDs = append(roomIDs, room.ID)
	}
	usedSet, err := s.source.RoomIDsWithQuestionUsage(ctx, roomIDs)
	if err != nil {
		return nil, fmt.Errorf("find rooms with question usage: %w", err)
	}

	var usedRooms, unusedRooms int64
	var usedMsgSum, unusedMsgSum int64
	var usedThreeTurn, unusedThreeTurn int64
	for _, room := range rooms {
		cnt := msgCounts[room.ID]
		if usedSet[room.ID] {
			usedRooms++
			usedMsgSum += cnt
			if cnt >= threeTurnMessages {
				usedThreeTurn++
			}
		} else {
			unusedRooms++
			unusedMsgSum += cnt
			if cnt >= threeTurnMessages {
				unusedThreeTurn++
			}
		}
	}
	record.QuestionUsedRoomsCount = int(usedRooms)
	record.QuestionUsedAvgMessageCount = ratecalc.Average(usedMsgSum, usedRooms)
	record.QuestionUsedThreeTurnRate = ratecalc.Rate(usedThreeTurn, usedRooms)
	record.QuestionUnusedAvgMessageCount = ratecalc.Average(unusedMsgSum, unusedRooms)
	record.QuestionUnusedThreeTurnRate = ratecalc.Rate(unusedThreeTurn, unusedRooms)

	// 资料解锁指标。
	unlockRequests, err := s.source.CountUnlockRequests(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("count unlock requests: %w", err)
	}
	unlockApproved, err := s.source.CountUnlockApproved(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("count unlock approved: %w", err)
	}
	record.UnlockRequestCount = int(unlockRequests)
	record.UnlockApprovedCount = int(unlockApproved)

	// 关闭聊天室指标。
	closedRooms, err := s.source.ListRoomsClosed(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("list rooms closed: %w", err)
	}
	record.ClosedChatroomsCount = len(closedRooms)

	var durationSeconds int64
	for _, room := range closedRooms {
		if room.ClosedAt == nil {
			continue
		}
		durationSeconds += int64(room.ClosedAt.Sub(room.OpenedAt).Seconds())
	}
	// 平均时长（天）= 秒数总和 / (房间数 * 86400)。
	record.AvgClosedChatDuration = ratecalc.Average(durationSeconds, int64(len(closedRooms))*86400)

	return record, nil
}
