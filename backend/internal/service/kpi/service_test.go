package kpi

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	chatdomain "meetup-go-app/backend/internal/domain/chat"
	kpidomain "meetup-go-app/backend/internal/domain/kpi"
	questiondomain "meetup-go-app/backend/internal/domain/question"
	signaldomain "meetup-go-app/backend/internal/domain/signal"
	unlockdomain "meetup-go-app/backend/internal/domain/unlock"
	"meetup-go-app/backend/internal/repository"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newKpiTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(
		&signaldomain.Signal{},
		&chatdomain.Room{},
		&chatdomain.Message{},
		&questiondomain.Usage{},
		&unlockdomain.Request{},
		&kpidomain.DailyKpi{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

func newKpiTestService(t *testing.T) (*Service, *repository.KpiRepository, *gorm.DB) {
	t.Helper()

	db := newKpiTestDB(t)
	kpis := repository.NewKpiRepository(db)
	source := repository.NewKpiSourceRepository(db)
	return NewService(kpis, source, time.UTC), kpis, db
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func ptr(t time.Time) *time.Time { return &t }

// seedAggregationDay 构造一个覆盖全部指标组的数据日。
// 窗口为 2026-03-10 UTC 整日，窗口外另布置了干扰数据。
func seedAggregationDay(t *testing.T, db *gorm.DB, day time.Time) {
	t.Helper()

	inDay := func(h int) time.Time { return day.Add(time.Duration(h) * time.Hour) }
	before := day.Add(-12 * time.Hour)
	after := day.Add(25 * time.Hour)

	signals := []signaldomain.Signal{
		{SenderID: 1, ReceiverID: 2, Status: signaldomain.StatusAccepted, CreatedAt: inDay(1), RespondedAt: ptr(inDay(2))},
		{SenderID: 3, ReceiverID: 4, Status: signaldomain.StatusSent, CreatedAt: inDay(3)},
		{SenderID: 5, ReceiverID: 6, Status: signaldomain.StatusDeclined, CreatedAt: inDay(4), RespondedAt: ptr(inDay(5))},
		{SenderID: 7, ReceiverID: 8, Status: signaldomain.StatusSent, CreatedAt: inDay(6)},
		// 前一天发出、当天被接受：只计入接受数。
		{SenderID: 9, ReceiverID: 10, Status: signaldomain.StatusAccepted, CreatedAt: before, RespondedAt: ptr(inDay(7))},
		// 次日的数据不应影响当天。
		{SenderID: 11, ReceiverID: 12, Status: signaldomain.StatusAccepted, CreatedAt: after, RespondedAt: ptr(after)},
	}
	if err := db.Create(&signals).Error; err != nil {
		t.Fatalf("seed signals: %v", err)
	}
	// 当日发出 4 条（接受 1、发出 2、拒绝 1），当日接受 2 条。

	rooms := []chatdomain.Room{
		{ID: 1, MemberAID: 1, MemberBID: 2, Status: chatdomain.RoomOpen, OpenedAt: inDay(2)},
		{ID: 2, MemberAID: 3, MemberBID: 4, Status: chatdomain.RoomOpen, OpenedAt: inDay(8)},
		{ID: 3, MemberAID: 5, MemberBID: 6, Status: chatdomain.RoomOpen, OpenedAt: inDay(9)},
		// 老房间：窗口前开启仍开放，一个有消息一个没有。
		{ID: 4, MemberAID: 7, MemberBID: 8, Status: chatdomain.RoomOpen, OpenedAt: before},
		{ID: 5, MemberAID: 9, MemberBID: 10, Status: chatdomain.RoomOpen, OpenedAt: before},
		// 当日关闭的房间：存续 36 小时。
		{ID: 6, MemberAID: 11, MemberBID: 12, Status: chatdomain.RoomClosed, OpenedAt: inDay(12).Add(-36 * time.Hour), ClosedAt: ptr(inDay(12))},
	}
	if err := db.Create(&rooms).Error; err != nil {
		t.Fatalf("seed rooms: %v", err)
	}

	var messages []chatdomain.Message
	for i := 0; i < 6; i++ {
		messages = append(messages, chatdomain.Message{RoomID: 1, SenderID: 1, Content: "hi", CreatedAt: inDay(3)})
	}
	messages = append(messages, chatdomain.Message{RoomID: 2, SenderID: 3, Content: "hi", CreatedAt: inDay(9)})
	for i := 0; i < 10; i++ {
		messages = append(messages, chatdomain.Message{RoomID: 4, SenderID: 7, Content: "hi", CreatedAt: inDay(10)})
	}
	// 窗口外的消息不参与计数。
	messages = append(messages, chatdomain.Message{RoomID: 3, SenderID: 5, Content: "late", CreatedAt: after})
	if err := db.Create(&messages).Error; err != nil {
		t.Fatalf("seed messages: %v", err)
	}

	usages := []questiondomain.Usage{
		{RoomID: 1, QuestionID: 1, UsedAt: inDay(4)},
		{RoomID: 4, QuestionID: 2, UsedAt: inDay(11)},
	}
	if err := db.Create(&usages).Error; err != nil {
		t.Fatalf("seed usages: %v", err)
	}

	unlocks := []unlockdomain.Request{
		{RequesterID: 1, TargetID: 2, Status: unlockdomain.StatusApproved, CreatedAt: inDay(5), RespondedAt: ptr(inDay(6))},
		{RequesterID: 3, TargetID: 4, Status: unlockdomain.StatusRequested, CreatedAt: inDay(7)},
	}
	if err := db.Create(&unlocks).Error; err != nil {
		t.Fatalf("seed unlocks: %v", err)
	}
}

func TestAggregateDailyComputesAllMetricGroups(t *testing.T) {
	svc, kpis, db := newKpiTestService(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	seedAggregationDay(t, db, day)

	if err := svc.AggregateDaily(ctx, day); err != nil {
		t.Fatalf("aggregate: %v", err)
	}

	record, err := kpis.FindByTargetDate(ctx, day)
	if err != nil {
		t.Fatalf("find record: %v", err)
	}

	if record.SignalSentCount != 4 {
		t.Fatalf("signal sent = %d, want 4", record.SignalSentCount)
	}
	if record.SignalAcceptedCount != 2 {
		t.Fatalf("signal accepted = %d, want 2", record.SignalAcceptedCount)
	}
	if got := record.SignalAcceptRate(); !approxEqual(got, 50) {
		t.Fatalf("signal accept rate = %v, want 50", got)
	}

	if record.OpenChatroomsCount != 3 {
		t.Fatalf("opened rooms = %d, want 3", record.OpenChatroomsCount)
	}
	if record.CurrentOpenChatroomsCount != 5 {
		t.Fatalf("current open rooms = %d, want 5", record.CurrentOpenChatroomsCount)
	}
	if record.ActiveChatroomsCount != 1 {
		t.Fatalf("active rooms = %d, want 1", record.ActiveChatroomsCount)
	}
	if got := record.ChatActiveRate(); !approxEqual(got, 20) {
		t.Fatalf("chat active rate = %v, want 20", got)
	}
	// 新开 3 间里 2 间发过首条消息，1 间达到三轮往返。
	if !approxEqual(record.FirstMessageRate, 66.67) {
		t.Fatalf("first message rate = %v, want 66.67", record.FirstMessageRate)
	}
	if !approxEqual(record.ThreeTurnRate, 33.33) {
		t.Fatalf("three turn rate = %v, want 33.33", record.ThreeTurnRate)
	}
	// 当日有消息的 3 间共 17 条。
	if !approxEqual(record.AvgMessageCount, 5.67) {
		t.Fatalf("avg message count = %v, want 5.67", record.AvgMessageCount)
	}
	// 两间老房间里一间当日仍有消息。
	if !approxEqual(record.ChatReturnRate, 50) {
		t.Fatalf("chat return rate = %v, want 50", record.ChatReturnRate)
	}

	if record.QuestionUsageCount != 2 {
		t.Fatalf("question usages = %d, want 2", record.QuestionUsageCount)
	}
	if record.QuestionUsedRoomsCount != 1 {
		t.Fatalf("question used rooms = %d, want 1", record.QuestionUsedRoomsCount)
	}
	if !approxEqual(record.QuestionUsedAvgMessageCount, 6) {
		t.Fatalf("used avg messages = %v, want 6", record.QuestionUsedAvgMessageCount)
	}
	if !approxEqual(record.QuestionUsedThreeTurnRate, 100) {
		t.Fatalf("used three turn rate = %v, want 100", record.QuestionUsedThreeTurnRate)
	}
	if !approxEqual(record.QuestionUnusedAvgMessageCount, 0.5) {
		t.Fatalf("unused avg messages = %v, want 0.5", record.QuestionUnusedAvgMessageCount)
	}
	if !approxEqual(record.QuestionUnusedThreeTurnRate, 0) {
		t.Fatalf("unused three turn rate = %v, want 0", record.QuestionUnusedThreeTurnRate)
	}

	if record.UnlockRequestCount != 2 {
		t.Fatalf("unlock requests = %d, want 2", record.UnlockRequestCount)
	}
	if record.UnlockApprovedCount != 1 {
		t.Fatalf("unlock approved = %d, want 1", record.UnlockApprovedCount)
	}
	if got := record.UnlockApproveRate(); !approxEqual(got, 50) {
		t.Fatalf("unlock approve rate = %v, want 50", got)
	}

	if record.ClosedChatroomsCount != 1 {
		t.Fatalf("closed rooms = %d, want 1", record.ClosedChatroomsCount)
	}
	if !approxEqual(record.AvgClosedChatDuration, 1.5) {
		t.Fatalf("avg closed duration = %v days, want 1.5", record.AvgClosedChatDuration)
	}
}

func TestAggregateDailyOnEmptyDayYieldsZeroes(t *testing.T) {
	svc, kpis, _ := newKpiTestService(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	if err := svc.AggregateDaily(ctx, day); err != nil {
		t.Fatalf("aggregate empty day: %v", err)
	}

	record, err := kpis.FindByTargetDate(ctx, day)
	if err != nil {
		t.Fatalf("find record: %v", err)
	}

	if record.SignalSentCount != 0 || record.OpenChatroomsCount != 0 || record.UnlockRequestCount != 0 {
		t.Fatalf("expected zero counters, got %+v", record)
	}
	// 分母为零的比率一律为 0，而不是 NaN。
	for name, got := range map[string]float64{
		"signal accept rate":  record.SignalAcceptRate(),
		"unlock approve rate": record.UnlockApproveRate(),
		"chat active rate":    record.ChatActiveRate(),
		"first message rate":  record.FirstMessageRate,
		"avg closed duration": record.AvgClosedChatDuration,
	} {
		if !approxEqual(got, 0) {
			t.Fatalf("%s = %v, want 0", name, got)
		}
	}
}

func TestAggregateDailyFailureLeavesNoRecord(t *testing.T) {
	svc, kpis, db := newKpiTestService(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	seedAggregationDay(t, db, day)

	// 某张源表不可读时，整日汇总失败且不落任何记录。
	if err := db.Migrator().DropTable(&chatdomain.Message{}); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	if err := svc.AggregateDaily(ctx, day); err == nil {
		t.Fatal("expected aggregation error when a source table is unreadable")
	}

	if _, err := kpis.FindByTargetDate(ctx, day); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected no record for the failed day, got %v", err)
	}
}

func TestAggregateDailyIsIdempotent(t *testing.T) {
	svc, kpis, db := newKpiTestService(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	seedAggregationDay(t, db, day)

	if err := svc.AggregateDaily(ctx, day); err != nil {
		t.Fatalf("first aggregate: %v", err)
	}
	if err := svc.AggregateDaily(ctx, day); err != nil {
		t.Fatalf("second aggregate: %v", err)
	}

	var count int64
	if err := db.Model(&kpidomain.DailyKpi{}).Count(&count).Error; err != nil {
		t.Fatalf("count records: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single record per day, got %d", count)
	}

	// 源数据变化后重跑应整体覆盖，而不是累加。
	extra := signaldomain.Signal{SenderID: 20, ReceiverID: 21, Status: signaldomain.StatusSent, CreatedAt: day.Add(10 * time.Hour)}
	if err := db.Create(&extra).Error; err != nil {
		t.Fatalf("seed extra signal: %v", err)
	}
	if err := svc.AggregateDaily(ctx, day); err != nil {
		t.Fatalf("third aggregate: %v", err)
	}

	record, err := kpis.FindByTargetDate(ctx, day)
	if err != nil {
		t.Fatalf("find record: %v", err)
	}
	if record.SignalSentCount != 5 {
		t.Fatalf("signal sent after rerun = %d, want 5", record.SignalSentCount)
	}
}
