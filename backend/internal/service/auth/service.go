package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "meetup-go-app/backend/internal/domain/member"
	appLogger "meetup-go-app/backend/internal/infra/logger"
	"meetup-go-app/backend/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// 鉴权流程中会出现的业务错误。
var (
	ErrPhoneTaken          = errors.New("phone already registered")
	ErrInvalidCredentials  = errors.New("invalid phone or password")
	ErrRefreshTokenInvalid = errors.New("refresh token invalid or revoked")
)

// TokenPair 封装一次签发的访问令牌与刷新令牌。
type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	ExpiresIn             int64     `json:"expires_in"`
	RefreshTokenID        string    `json:"-"`
	RefreshTokenExpiresAt time.Time `json:"-"`
}

// RefreshTokenClaims 是刷新令牌解析后的关键信息。
type RefreshTokenClaims struct {
	MemberID uint
	TokenID  string
}

// TokenIssuer 抽象令牌的签发与刷新令牌解析，具体实现见 infra/token。
type TokenIssuer interface {
	GenerateTokens(ctx context.Context, m *domain.Member) (TokenPair, error)
	ParseRefreshToken(raw string) (RefreshTokenClaims, error)
}

// RefreshTokenStore 保存刷新令牌指纹，吊销与轮换都依赖它。
type RefreshTokenStore interface {
	Save(ctx context.Context, memberID uint, tokenID string, expiresAt time.Time) error
	Delete(ctx context.Context, memberID uint, tokenID string) error
	Exists(ctx context.Context, memberID uint, tokenID string) (bool, error)
}

// Service 负责注册、登录、令牌刷新与登出。
type Service struct {
	members *repository.MemberRepository
	tokens  TokenIssuer
	store   RefreshTokenStore
	logger  *zap.SugaredLogger
}

// NewService 构造鉴权服务实例。
func NewService(members *repository.MemberRepository, tokens TokenIssuer, store RefreshTokenStore) *Service {
	return &Service{
		members: members,
		tokens:  tokens,
		store:   store,
		logger:  appLogger.S().With("component", "service.auth"),
	}
}

// RegisterInput 描述注册所需的最小字段，注册后资料进入人工审核队列。
type RegisterInput struct {
	Phone    string
	Password string
	Nickname string
	Gender   string
	Region   string
}

// Register 创建新会员。手机号唯一，初始审核状态为 PENDING。
func (s *Service) Register(ctx context.Context, input RegisterInput) (*domain.Member, error) {
	phone := strings.TrimSpace(input.Phone)
	if phone == "" || input.Password == "" {
		return nil, fmt.Errorf("phone and password are required")
	}

	if _, err := s.members.FindByPhone(ctx, phone); err == nil {
		return nil, ErrPhoneTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup phone: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	m := &domain.Member{
		Phone:         phone,
		Nickname:      strings.TrimSpace(input.Nickname),
		Gender:        input.Gender,
		Region:        input.Region,
		PasswordHash:  string(hash),
		ProfileStatus: domain.ProfilePending,
		Role:          domain.RoleUser,
	}
	if err := s.members.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create member: %w", err)
	}

	s.logger.Infow("member registered", "member_id", m.ID)
	return m, nil
}

// Login 校验手机号与密码，通过后签发令牌并登记刷新令牌指纹。
func (s *Service) Login(ctx context.Context, phone, password string) (TokenPair, *domain.Member, error) {
	m, err := s.members.FindByPhone(ctx, strings.TrimSpace(phone))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TokenPair{}, nil, ErrInvalidCredentials
		}
		return TokenPair{}, nil, fmt.Errorf("find member: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(password)); err != nil {
		return TokenPair{}, nil, ErrInvalidCredentials
	}

	pair, err := s.tokens.GenerateTokens(ctx, m)
	if err != nil {
		return TokenPair{}, nil, fmt.Errorf("generate tokens: %w", err)
	}

	if err := s.store.Save(ctx, m.ID, pair.RefreshTokenID, pair.RefreshTokenExpiresAt); err != nil {
		return TokenPair{}, nil, fmt.Errorf("save refresh token: %w", err)
	}

	return pair, m, nil
}

// Refresh 轮换刷新令牌：旧 jti 验证存在后删除，再签发一对新令牌。
func (s *Service) Refresh(ctx context.Context, rawRefresh string) (TokenPair, error) {
	claims, err := s.tokens.ParseRefreshToken(rawRefresh)
	if err != nil {
		return TokenPair{}, ErrRefreshTokenInvalid
	}

	exists, err := s.store.Exists(ctx, claims.MemberID, claims.TokenID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("check refresh token: %w", err)
	}
	if !exists {
		return TokenPair{}, ErrRefreshTokenInvalid
	}

	m, err := s.members.FindByID(ctx, claims.MemberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TokenPair{}, ErrRefreshTokenInvalid
		}
		return TokenPair{}, fmt.Errorf("find member: %w", err)
	}

	if err := s.store.Delete(ctx, claims.MemberID, claims.TokenID); err != nil {
		return TokenPair{}, fmt.Errorf("revoke old refresh token: %w", err)
	}

	pair, err := s.tokens.GenerateTokens(ctx, m)
	if err != nil {
		return TokenPair{}, fmt.Errorf("generate tokens: %w", err)
	}
	if err := s.store.Save(ctx, m.ID, pair.RefreshTokenID, pair.RefreshTokenExpiresAt); err != nil {
		return TokenPair{}, fmt.Errorf("save refresh token: %w", err)
	}

	return pair, nil
}

// Logout 吊销刷新令牌。令牌本身非法时静默成功，登出操作不应失败给客户端。
func (s *Service) Logout(ctx context.Context, rawRefresh string) error {
	claims, err := s.tokens.ParseRefreshToken(rawRefresh)
	if err != nil {
		return nil
	}
	return s.store.Delete(ctx, claims.MemberID, claims.TokenID)
}
