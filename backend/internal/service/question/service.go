package question

import (
	"context"
	"errors"
	"fmt"
	"time"

	chatdomain "meetup-go-app/backend/internal/domain/chat"
	domain "meetup-go-app/backend/internal/domain/question"
	"meetup-go-app/backend/internal/repository"

	"gorm.io/gorm"
)

// 话题推荐流程中的业务错误。
var (
	ErrQuestionNotFound  = errors.New("question not found")
	ErrNoActiveQuestions = errors.New("no active questions available")
	ErrRoomNotFound      = errors.New("chat room not found")
	ErrNotParticipant    = errors.New("member is not a participant of this room")
)

// Service 负责推荐话题的抽取与题库维护。
type Service struct {
	questions *repository.QuestionRepository
	chats     *repository.ChatRepository
}

// NewService 构造话题服务实例。
func NewService(questions *repository.QuestionRepository, chats *repository.ChatRepository) *Service {
	return &Service{questions: questions, chats: chats}
}

// Recommend 为房间随机抽取一条启用中的话题并记录使用。
// 调用者必须是房间参与者；抽取与记录在同一次调用里完成。
func (s *Service) Recommend(ctx context.Context, roomID, memberID uint) (*domain.Question, error) {
	room, err := s.chats.FindRoomByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("find room: %w", err)
	}
	if !room.HasParticipant(memberID) {
		return nil, ErrNotParticipant
	}
	if room.Status != chatdomain.RoomOpen {
		return nil, ErrRoomNotFound
	}

	q, err := s.questions.PickRandomActive(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveQuestions
		}
		return nil, fmt.Errorf("pick question: %w", err)
	}

	usage := &domain.Usage{
		RoomID:     roomID,
		QuestionID: q.ID,
		UsedAt:     time.Now(),
	}
	if err := s.questions.RecordUsage(ctx, usage); err != nil {
		return nil, fmt.Errorf("record usage: %w", err)
	}

	return q, nil
}

// ListRoomUsages 列出房间的话题使用记录，仅房间参与者可见。
func (s *Service) ListRoomUsages(ctx context.Context, roomID, memberID uint) ([]domain.Usage, error) {
	room, err := s.chats.FindRoomByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("find room: %w", err)
	}
	if !room.HasParticipant(memberID) {
		return nil, ErrNotParticipant
	}

	usages, err := s.questions.ListUsagesByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("list usages: %w", err)
	}
	return usages, nil
}

// Create 新增一条题库话题，供运营后台使用。
func (s *Service) Create(ctx context.Context, content string) (*domain.Question, error) {
	if content == "" {
		return nil, fmt.Errorf("question content is required")
	}
	q := &domain.Question{Content: content, Active: true}
	if err := s.questions.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	return q, nil
}

// Deactivate 下线一条话题。
func (s *Service) Deactivate(ctx context.Context, id uint) error {
	if err := s.questions.Deactivate(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("deactivate question: %w", err)
	}
	return nil
}
