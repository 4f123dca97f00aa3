package member

import (
	"context"
	"errors"
	"fmt"

	domain "meetup-go-app/backend/internal/domain/member"
	appLogger "meetup-go-app/backend/internal/infra/logger"
	"meetup-go-app/backend/internal/repository"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// 会员资料流程中的业务错误。
var (
	ErrMemberNotFound = errors.New("member not found")
	ErrPhotoNotFound  = errors.New("photo not found")
)

// Service 负责会员资料的查询、修改与运营审批。
type Service struct {
	members *repository.MemberRepository
	logger  *zap.SugaredLogger
}

// NewService 构造会员服务实例。
func NewService(members *repository.MemberRepository) *Service {
	return &Service{
		members: members,
		logger:  appLogger.S().With("component", "service.member"),
	}
}

// Profile 封装返回的会员资料与照片。
type Profile struct {
	Member *domain.Member `json:"member"`
	Photos []domain.Photo `json:"photos"`
}

// GetProfile 返回指定会员的资料与照片。
func (s *Service) GetProfile(ctx context.Context, memberID uint) (Profile, error) {
	m, err := s.members.FindByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Profile{}, ErrMemberNotFound
		}
		return Profile{}, fmt.Errorf("find member: %w", err)
	}

	photos, err := s.members.ListPhotos(ctx, memberID)
	if err != nil {
		return Profile{}, fmt.Errorf("list photos: %w", err)
	}

	return Profile{Member: m, Photos: photos}, nil
}

// UpdateInput 描述会员可自行修改的资料字段。
type UpdateInput struct {
	Nickname    string
	Region      string
	Bio         string
	Preferences datatypes.JSON
	PushToken   string
}

// UpdateProfile 修改资料。被驳回的会员提交修改后回到 PENDING 重新排队审核。
func (s *Service) UpdateProfile(ctx context.Context, memberID uint, input UpdateInput) (Profile, error) {
	m, err := s.members.FindByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Profile{}, ErrMemberNotFound
		}
		return Profile{}, fmt.Errorf("find member: %w", err)
	}

	if input.Nickname != "" {
		m.Nickname = input.Nickname
	}
	if input.Region != "" {
		m.Region = input.Region
	}
	if input.Bio != "" {
		m.Bio = input.Bio
	}
	if input.Preferences != nil {
		m.Preferences = input.Preferences
	}
	if input.PushToken != "" {
		m.PushToken = input.PushToken
	}
	if m.ProfileStatus == domain.ProfileRejected {
		m.ProfileStatus = domain.ProfilePending
	}

	if err := s.members.Update(ctx, m); err != nil {
		return Profile{}, fmt.Errorf("update member: %w", err)
	}

	return s.GetProfile(ctx, memberID)
}

// AddPhoto 登记一张待核验的资料照片。
func (s *Service) AddPhoto(ctx context.Context, memberID uint, url string, position int) (*domain.Photo, error) {
	if _, err := s.members.FindByID(ctx, memberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("find member: %w", err)
	}

	photo := &domain.Photo{
		MemberID: memberID,
		URL:      url,
		Position: position,
		Status:   domain.PhotoPending,
	}
	if err := s.members.AddPhoto(ctx, photo); err != nil {
		return nil, fmt.Errorf("add photo: %w", err)
	}
	return photo, nil
}

// ListPendingProfiles 返回待审核的会员队列，供运营后台使用。
func (s *Service) ListPendingProfiles(ctx context.Context) ([]domain.Member, error) {
	members, err := s.members.ListByProfileStatus(ctx, domain.ProfilePending)
	if err != nil {
		return nil, fmt.Errorf("list pending profiles: %w", err)
	}
	return members, nil
}

// ReviewProfile 运营审批某会员资料，approve 为 false 时驳回。
func (s *Service) ReviewProfile(ctx context.Context, memberID uint, approve bool) error {
	status := domain.ProfileRejected
	if approve {
		status = domain.ProfileApproved
	}
	if err := s.members.UpdateProfileStatus(ctx, memberID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("update profile status: %w", err)
	}
	s.logger.Infow("profile reviewed", "member_id", memberID, "status", status)
	return nil
}

// ReviewPhoto 运营核验某照片，approve 为 false 时驳回。
func (s *Service) ReviewPhoto(ctx context.Context, photoID uint, approve bool) error {
	status := domain.PhotoRejected
	if approve {
		status = domain.PhotoVerified
	}
	if err := s.members.UpdatePhotoStatus(ctx, photoID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPhotoNotFound
		}
		return fmt.Errorf("update photo status: %w", err)
	}
	return nil
}
