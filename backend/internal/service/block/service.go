package block

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "meetup-go-app/backend/internal/domain/block"
	appLogger "meetup-go-app/backend/internal/infra/logger"
	"meetup-go-app/backend/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 拉黑与举报流程中的业务错误。
var (
	ErrSelfBlock      = errors.New("cannot block yourself")
	ErrAlreadyBlocked = errors.New("member already blocked")
	ErrNotBlocked     = errors.New("member is not blocked")
)

// Service 负责拉黑关系的流转与举报登记。
// 拉黑是状态机而非增删：ACTIVE <-> RELEASED，解除后的记录在再次拉黑时被复用。
type Service struct {
	blocks *repository.BlockRepository
	logger *zap.SugaredLogger
}

// NewService 构造拉黑服务实例。
func NewService(blocks *repository.BlockRepository) *Service {
	return &Service{
		blocks: blocks,
		logger: appLogger.S().With("component", "service.block"),
	}
}

// Block 拉黑某会员。已有 ACTIVE 记录时报错，RELEASED 记录被重新激活。
func (s *Service) Block(ctx context.Context, blockerID, blockedID uint) (*domain.Block, error) {
	if blockerID == blockedID {
		return nil, ErrSelfBlock
	}

	existing, err := s.blocks.FindByPair(ctx, blockerID, blockedID)
	if err == nil {
		if existing.Status == domain.StatusActive {
			return nil, ErrAlreadyBlocked
		}
		existing.Status = domain.StatusActive
		existing.ReleasedAt = nil
		if err := s.blocks.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("reactivate block: %w", err)
		}
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find block: %w", err)
	}

	b := &domain.Block{
		BlockerID: blockerID,
		BlockedID: blockedID,
		Status:    domain.StatusActive,
	}
	if err := s.blocks.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create block: %w", err)
	}
	return b, nil
}

// Unblock 解除拉黑。只有 ACTIVE 状态可解除。
func (s *Service) Unblock(ctx context.Context, blockerID, blockedID uint) error {
	existing, err := s.blocks.FindByPair(ctx, blockerID, blockedID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotBlocked
		}
		return fmt.Errorf("find block: %w", err)
	}
	if existing.Status != domain.StatusActive {
		return ErrNotBlocked
	}

	now := time.Now()
	existing.Status = domain.StatusReleased
	existing.ReleasedAt = &now
	if err := s.blocks.Update(ctx, existing); err != nil {
		return fmt.Errorf("release block: %w", err)
	}
	return nil
}

// ListBlocked 列出某会员生效中的拉黑关系。
func (s *Service) ListBlocked(ctx context.Context, blockerID uint) ([]domain.Block, error) {
	blocks, err := s.blocks.ListActiveByBlocker(ctx, blockerID)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	return blocks, nil
}

// Report 登记一条举报，返回举报编号供客服沟通引用。
func (s *Service) Report(ctx context.Context, reporterID, reportedID uint, reason string) (*domain.Report, error) {
	if reporterID == reportedID {
		return nil, ErrSelfBlock
	}
	if reason == "" {
		return nil, fmt.Errorf("report reason is required")
	}

	report := &domain.Report{
		ReportNo:   uuid.NewString(),
		ReporterID: reporterID,
		ReportedID: reportedID,
		Reason:     reason,
	}
	if err := s.blocks.CreateReport(ctx, report); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}

	s.logger.Infow("member reported", "report_no", report.ReportNo, "reported_id", reportedID)
	return report, nil
}

// ListReports 列出全部举报，供运营后台处理。
func (s *Service) ListReports(ctx context.Context) ([]domain.Report, error) {
	reports, err := s.blocks.ListReports(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}
