package question

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	chatdomain "meetup-go-app/backend/internal/domain/chat"
	questiondomain "meetup-go-app/backend/internal/domain/question"
	"meetup-go-app/backend/internal/repository"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newQuestionTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&questiondomain.Question{},
		&questiondomain.Usage{},
		&chatdomain.Room{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	return NewService(repository.NewQuestionRepository(db), repository.NewChatRepository(db)), db
}

func TestRecommendRecordsUsage(t *testing.T) {
	svc, db := newQuestionTestService(t)
	ctx := context.Background()

	room := chatdomain.Room{MemberAID: 1, MemberBID: 2, Status: chatdomain.RoomOpen, OpenedAt: time.Now()}
	if err := db.Create(&room).Error; err != nil {
		t.Fatalf("seed room: %v", err)
	}

	if _, err := svc.Recommend(ctx, room.ID, 1); !errors.Is(err, ErrNoActiveQuestions) {
		t.Fatalf("empty pool: got %v", err)
	}

	q, err := svc.Create(ctx, "서로의 최애 영화는?")
	if err != nil {
		t.Fatalf("create question: %v", err)
	}

	picked, err := svc.Recommend(ctx, room.ID, 1)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if picked.ID != q.ID {
		t.Fatalf("picked question %d, want %d", picked.ID, q.ID)
	}

	usages, err := svc.ListRoomUsages(ctx, room.ID, 1)
	if err != nil {
		t.Fatalf("list usages: %v", err)
	}
	if len(usages) != 1 || usages[0].QuestionID != q.ID {
		t.Fatalf("unexpected usages: %+v", usages)
	}
}

func TestListRoomUsagesGuards(t *testing.T) {
	svc, db := newQuestionTestService(t)
	ctx := context.Background()

	room := chatdomain.Room{MemberAID: 1, MemberBID: 2, Status: chatdomain.RoomOpen, OpenedAt: time.Now()}
	if err := db.Create(&room).Error; err != nil {
		t.Fatalf("seed room: %v", err)
	}
	if _, err := svc.Create(ctx, "요즘 푹 빠진 취미가 있나요?"); err != nil {
		t.Fatalf("create question: %v", err)
	}
	if _, err := svc.Recommend(ctx, room.ID, 2); err != nil {
		t.Fatalf("recommend: %v", err)
	}

	if _, err := svc.ListRoomUsages(ctx, 999, 1); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("missing room: got %v", err)
	}
	if _, err := svc.ListRoomUsages(ctx, room.ID, 9); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("outsider: got %v", err)
	}

	usages, err := svc.ListRoomUsages(ctx, room.ID, 2)
	if err != nil {
		t.Fatalf("list usages: %v", err)
	}
	if len(usages) != 1 {
		t.Fatalf("unexpected usages: %+v", usages)
	}
}

func TestRecommendGuards(t *testing.T) {
	svc, db := newQuestionTestService(t)
	ctx := context.Background()

	open := chatdomain.Room{MemberAID: 1, MemberBID: 2, Status: chatdomain.RoomOpen, OpenedAt: time.Now()}
	closedAt := time.Now()
	closed := chatdomain.Room{MemberAID: 3, MemberBID: 4, Status: chatdomain.RoomClosed, OpenedAt: time.Now().Add(-time.Hour), ClosedAt: &closedAt}
	if err := db.Create(&open).Error; err != nil {
		t.Fatalf("seed room: %v", err)
	}
	if err := db.Create(&closed).Error; err != nil {
		t.Fatalf("seed room: %v", err)
	}

	if _, err := svc.Recommend(ctx, 999, 1); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("missing room: got %v", err)
	}
	if _, err := svc.Recommend(ctx, open.ID, 9); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("outsider: got %v", err)
	}
	// 已关闭的房间不再推荐话题。
	if _, err := svc.Recommend(ctx, closed.ID, 3); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("closed room: got %v", err)
	}
}

func TestDeactivateRemovesFromPool(t *testing.T) {
	svc, db := newQuestionTestService(t)
	ctx := context.Background()

	room := chatdomain.Room{MemberAID: 1, MemberBID: 2, Status: chatdomain.RoomOpen, OpenedAt: time.Now()}
	if err := db.Create(&room).Error; err != nil {
		t.Fatalf("seed room: %v", err)
	}

	q, err := svc.Create(ctx, "주말엔 뭐 하세요?")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Deactivate(ctx, q.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if err := svc.Deactivate(ctx, 999); !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("missing question: got %v", err)
	}

	if _, err := svc.Recommend(ctx, room.ID, 1); !errors.Is(err, ErrNoActiveQuestions) {
		t.Fatalf("deactivated question still recommended: got %v", err)
	}
}
