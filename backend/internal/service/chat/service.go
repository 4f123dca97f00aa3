package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "meetup-go-app/backend/internal/domain/chat"
	appLogger "meetup-go-app/backend/internal/infra/logger"
	"meetup-go-app/backend/internal/infra/metrics"
	"meetup-go-app/backend/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 聊天流程中的业务错误。
var (
	ErrRoomNotFound   = errors.New("chat room not found")
	ErrNotParticipant = errors.New("member is not a participant of this room")
	ErrRoomClosed     = errors.New("chat room is closed")
	ErrEmptyMessage   = errors.New("message content is empty")
)

// Service 负责聊天室与消息的业务规则。
type Service struct {
	chats  *repository.ChatRepository
	logger *zap.SugaredLogger
}

// NewService 构造聊天服务实例。
func NewService(chats *repository.ChatRepository) *Service {
	return &Service{
		chats:  chats,
		logger: appLogger.S().With("component", "service.chat"),
	}
}

// ListRooms 列出某会员参与的聊天室。
func (s *Service) ListRooms(ctx context.Context, memberID uint) ([]domain.Room, error) {
	rooms, err := s.chats.ListRoomsByMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// SendMessage 向房间发送消息。房间必须开启，发送者必须是参与者。
func (s *Service) SendMessage(ctx context.Context, roomID, senderID uint, content string) (*domain.Message, error) {
	if content == "" {
		return nil, ErrEmptyMessage
	}

	room, err := s.loadRoomFor(ctx, roomID, senderID)
	if err != nil {
		return nil, err
	}
	if room.Status != domain.RoomOpen {
		metrics.ObserveMessage("rejected")
		return nil, ErrRoomClosed
	}

	msg := &domain.Message{
		RoomID:   roomID,
		SenderID: senderID,
		Content:  content,
	}
	if err := s.chats.CreateMessage(ctx, msg); err != nil {
		metrics.ObserveMessage("error")
		return nil, fmt.Errorf("create message: %w", err)
	}
	metrics.ObserveMessage("ok")
	return msg, nil
}

// ListMessages 列出房间内的消息，调用者必须是参与者。
func (s *Service) ListMessages(ctx context.Context, roomID, memberID uint) ([]domain.Message, error) {
	if _, err := s.loadRoomFor(ctx, roomID, memberID); err != nil {
		return nil, err
	}

	messages, err := s.chats.ListMessages(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

// CloseRoom 关闭房间。任一参与者可关闭，重复关闭幂等返回当前状态。
func (s *Service) CloseRoom(ctx context.Context, roomID, memberID uint) (*domain.Room, error) {
	room, err := s.loadRoomFor(ctx, roomID, memberID)
	if err != nil {
		return nil, err
	}
	if room.Status == domain.RoomClosed {
		return room, nil
	}

	now := time.Now()
	room.Status = domain.RoomClosed
	room.ClosedAt = &now
	if err := s.chats.UpdateRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("close room: %w", err)
	}

	s.logger.Infow("chat room closed", "room_id", roomID, "by", memberID)
	return room, nil
}

// loadRoomFor 读取房间并校验参与者身份。
func (s *Service) loadRoomFor(ctx context.Context, roomID, memberID uint) (*domain.Room, error) {
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
	return room, nil
}
