package notification

import (
	"context"
	"fmt"
	"time"

	domain "meetup-go-app/backend/internal/domain/notification"
	appLogger "meetup-go-app/backend/internal/infra/logger"
	"meetup-go-app/backend/internal/infra/metrics"
	"meetup-go-app/backend/internal/infra/push"
	"meetup-go-app/backend/internal/repository"

	"go.uber.org/zap"
)

// Service 负责通知的落库与推送投递。
// 通知属于业务操作的旁路效果：投递失败只记日志，不让主流程失败。
type Service struct {
	repo    *repository.NotificationRepository
	members *repository.MemberRepository
	sender  push.Sender
	logger  *zap.SugaredLogger
}

// NewService 构造通知服务实例。
func NewService(repo *repository.NotificationRepository, members *repository.MemberRepository, sender push.Sender) *Service {
	return &Service{
		repo:    repo,
		members: members,
		sender:  sender,
		logger:  appLogger.S().With("component", "service.notification"),
	}
}

// Notify 落库一条通知并尝试推送到会员设备。
func (s *Service) Notify(ctx context.Context, memberID uint, kind domain.Kind, title, body string) {
	record := &domain.Notification{
		MemberID: memberID,
		Kind:     kind,
		Title:    title,
		Body:     body,
		SentAt:   time.Now(),
	}
	if err := s.repo.Create(ctx, record); err != nil {
		s.logger.Warnw("persist notification failed", "member_id", memberID, "kind", kind, "error", err)
		return
	}

	if s.sender == nil {
		return
	}

	m, err := s.members.FindByID(ctx, memberID)
	if err != nil {
		s.logger.Warnw("load member for push failed", "member_id", memberID, "error", err)
		return
	}

	if err := s.sender.Send(ctx, m.PushToken, title, body); err != nil {
		metrics.ObservePush("error")
		s.logger.Warnw("push delivery failed", "member_id", memberID, "kind", kind, "error", err)
		return
	}
	metrics.ObservePush("ok")
}

// ListMine 返回某会员的通知列表。
func (s *Service) ListMine(ctx context.Context, memberID uint) ([]domain.Notification, error) {
	items, err := s.repo.ListByMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return items, nil
}
