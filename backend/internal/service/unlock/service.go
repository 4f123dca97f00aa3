package unlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	notifdomain "meetup-go-app/backend/internal/domain/notification"
	domain "meetup-go-app/backend/internal/domain/unlock"
	"meetup-go-app/backend/internal/repository"
	notifsvc "meetup-go-app/backend/internal/service/notification"

	"gorm.io/gorm"
)

// 解锁流程中的业务错误。
var (
	ErrRequestNotFound  = errors.New("unlock request not found")
	ErrSelfUnlock       = errors.New("cannot request unlock for yourself")
	ErrDuplicateRequest = errors.New("a pending unlock request already exists")
	ErrNotTarget        = errors.New("only the target member can respond")
	ErrAlreadyResponded = errors.New("unlock request already responded")
)

// Service 负责受限资料解锁的申请与审批。
type Service struct {
	unlocks *repository.UnlockRepository
	notify  *notifsvc.Service
}

// NewService 构造解锁服务实例。
func NewService(unlocks *repository.UnlockRepository, notify *notifsvc.Service) *Service {
	return &Service{unlocks: unlocks, notify: notify}
}

// Request 发起一次解锁申请。同一对会员之间同时只允许一条待处理申请。
func (s *Service) Request(ctx context.Context, requesterID, targetID uint) (*domain.Request, error) {
	if requesterID == targetID {
		return nil, ErrSelfUnlock
	}

	if _, err := s.unlocks.FindPendingByPair(ctx, requesterID, targetID); err == nil {
		return nil, ErrDuplicateRequest
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check pending request: %w", err)
	}

	req := &domain.Request{
		RequesterID: requesterID,
		TargetID:    targetID,
		Status:      domain.StatusRequested,
	}
	if err := s.unlocks.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create unlock request: %w", err)
	}

	if s.notify != nil {
		s.notify.Notify(ctx, targetID, notifdomain.KindUnlockRequest,
			"프로필 잠금 해제 요청", "상대방이 잠긴 프로필 열람을 요청했어요.")
	}
	return req, nil
}

// Respond 审批一条解锁申请。只有被申请方可处理，重复处理报错。
func (s *Service) Respond(ctx context.Context, requestID, memberID uint, approve bool) (*domain.Request, error) {
	req, err := s.unlocks.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("find unlock request: %w", err)
	}

	if req.TargetID != memberID {
		return nil, ErrNotTarget
	}
	if req.Status != domain.StatusRequested {
		return nil, ErrAlreadyResponded
	}

	now := time.Now()
	req.RespondedAt = &now
	if approve {
		req.Status = domain.StatusApproved
	} else {
		req.Status = domain.StatusRejected
	}
	if err := s.unlocks.Update(ctx, req); err != nil {
		return nil, fmt.Errorf("update unlock request: %w", err)
	}

	if approve && s.notify != nil {
		s.notify.Notify(ctx, req.RequesterID, notifdomain.KindUnlockApproved,
			"잠금 해제 승인", "상대방이 프로필 열람을 허락했어요.")
	}
	return req, nil
}

// ListReceived 列出某会员待处理的解锁申请。
func (s *Service) ListReceived(ctx context.Context, memberID uint) ([]domain.Request, error) {
	reqs, err := s.unlocks.ListReceivedPending(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("list unlock requests: %w", err)
	}
	return reqs, nil
}
