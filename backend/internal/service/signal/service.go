package signal

import (
	"context"
	"errors"
	"fmt"
	"time"

	chatdomain "meetup-go-app/backend/internal/domain/chat"
	memberdomain "meetup-go-app/backend/internal/domain/member"
	notifdomain "meetup-go-app/backend/internal/domain/notification"
	domain "meetup-go-app/backend/internal/domain/signal"
	appLogger "meetup-go-app/backend/internal/infra/logger"
	"meetup-go-app/backend/internal/infra/metrics"
	"meetup-go-app/backend/internal/repository"
	notifsvc "meetup-go-app/backend/internal/service/notification"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 信号流程中的业务错误。
var (
	ErrSignalNotFound    = errors.New("signal not found")
	ErrReceiverNotFound  = errors.New("receiver not found")
	ErrSelfSignal        = errors.New("cannot send a signal to yourself")
	ErrDuplicateSignal   = errors.New("signal already sent to this member")
	ErrReceiverNotActive = errors.New("receiver profile is not approved")
	ErrPairBlocked       = errors.New("signal blocked between these members")
	ErrNotReceiver       = errors.New("only the receiver can respond to a signal")
	ErrAlreadyResponded  = errors.New("signal already responded")
)

// Service 负责好感信号的发送与回应。双方互认后开启聊天室。
type Service struct {
	signals *repository.SignalRepository
	members *repository.MemberRepository
	blocks  *repository.BlockRepository
	chats   *repository.ChatRepository
	notify  *notifsvc.Service
	logger  *zap.SugaredLogger
}

// NewService 构造信号服务实例。
func NewService(
	signals *repository.SignalRepository,
	members *repository.MemberRepository,
	blocks *repository.BlockRepository,
	chats *repository.ChatRepository,
	notify *notifsvc.Service,
) *Service {
	return &Service{
		signals: signals,
		members: members,
		blocks:  blocks,
		chats:   chats,
		notify:  notify,
		logger:  appLogger.S().With("component", "service.signal"),
	}
}

// Send 发送一条信号。依次校验：不是自己、对方存在且已过审、双方互不拉黑、未重复发送。
func (s *Service) Send(ctx context.Context, senderID, receiverID uint) (*domain.Signal, error) {
	if senderID == receiverID {
		metrics.ObserveSignal("send", "rejected")
		return nil, ErrSelfSignal
	}

	receiver, err := s.members.FindByID(ctx, receiverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReceiverNotFound
		}
		return nil, fmt.Errorf("find receiver: %w", err)
	}
	if receiver.ProfileStatus != memberdomain.ProfileApproved {
		metrics.ObserveSignal("send", "rejected")
		return nil, ErrReceiverNotActive
	}

	blocked, err := s.blocks.ExistsActiveBetween(ctx, senderID, receiverID)
	if err != nil {
		return nil, fmt.Errorf("check block: %w", err)
	}
	if blocked {
		metrics.ObserveSignal("send", "rejected")
		return nil, ErrPairBlocked
	}

	if _, err := s.signals.FindByPair(ctx, senderID, receiverID); err == nil {
		metrics.ObserveSignal("send", "rejected")
		return nil, ErrDuplicateSignal
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check duplicate: %w", err)
	}

	sig := &domain.Signal{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     domain.StatusSent,
	}
	if err := s.signals.Create(ctx, sig); err != nil {
		metrics.ObserveSignal("send", "error")
		return nil, fmt.Errorf("create signal: %w", err)
	}

	metrics.ObserveSignal("send", "ok")
	if s.notify != nil {
		s.notify.Notify(ctx, receiverID, notifdomain.KindSignalReceived,
			"새로운 시그널", "누군가 당신에게 시그널을 보냈어요.")
	}
	return sig, nil
}

// Respond 回应一条信号。只有接收方可回应；接受即建立匹配并开启聊天室。
func (s *Service) Respond(ctx context.Context, signalID, memberID uint, accept bool) (*domain.Signal, *chatdomain.Room, error) {
	sig, err := s.signals.FindByID(ctx, signalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrSignalNotFound
		}
		return nil, nil, fmt.Errorf("find signal: %w", err)
	}

	if sig.ReceiverID != memberID {
		return nil, nil, ErrNotReceiver
	}
	if sig.Status != domain.StatusSent {
		return nil, nil, ErrAlreadyResponded
	}

	now := time.Now()
	sig.RespondedAt = &now
	if !accept {
		sig.Status = domain.StatusDeclined
		if err := s.signals.Update(ctx, sig); err != nil {
			return nil, nil, fmt.Errorf("update signal: %w", err)
		}
		metrics.ObserveSignal("respond", "declined")
		return sig, nil, nil
	}

	sig.Status = domain.StatusAccepted
	if err := s.signals.Update(ctx, sig); err != nil {
		return nil, nil, fmt.Errorf("update signal: %w", err)
	}

	room := &chatdomain.Room{
		MemberAID: sig.SenderID,
		MemberBID: sig.ReceiverID,
		Status:    chatdomain.RoomOpen,
		OpenedAt:  now,
	}
	if err := s.chats.CreateRoom(ctx, room); err != nil {
		return nil, nil, fmt.Errorf("create chat room: %w", err)
	}

	metrics.ObserveSignal("respond", "accepted")
	s.logger.Infow("signal matched", "signal_id", sig.ID, "room_id", room.ID)
	if s.notify != nil {
		s.notify.Notify(ctx, sig.SenderID, notifdomain.KindSignalAccepted,
			"시그널 매칭", "상대방이 시그널을 수락했어요. 대화를 시작해 보세요!")
	}
	return sig, room, nil
}

// ListReceived 列出某会员收到且待回应的信号。
func (s *Service) ListReceived(ctx context.Context, memberID uint) ([]domain.Signal, error) {
	signals, err := s.signals.ListReceivedPending(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("list received signals: %w", err)
	}
	return signals, nil
}

// ListSent 列出某会员发出的信号。
func (s *Service) ListSent(ctx context.Context, memberID uint) ([]domain.Signal, error) {
	signals, err := s.signals.ListSent(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("list sent signals: %w", err)
	}
	return signals, nil
}
