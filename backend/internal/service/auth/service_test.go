package auth_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	domain "meetup-go-app/backend/internal/domain/member"
	"meetup-go-app/backend/internal/infra/token"
	"meetup-go-app/backend/internal/repository"
	"meetup-go-app/backend/internal/service/auth"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestAuthService(t *testing.T) (*auth.Service, *repository.MemberRepository) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.Member{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	repo := repository.NewMemberRepository(db)
	tokenManager := token.NewJWTManager("test-secret", time.Minute, 24*time.Hour)
	service := auth.NewService(repo, tokenManager, token.NewMemoryRefreshTokenStore())
	return service, repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, repo := newTestAuthService(t)
	ctx := context.Background()

	m, err := svc.Register(ctx, auth.RegisterInput{
		Phone:    "010-1234-5678",
		Password: "password123",
		Nickname: "sora",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if m.ID == 0 {
		t.Fatalf("expected persisted member ID")
	}
	if m.ProfileStatus != domain.ProfilePending {
		t.Fatalf("profile status = %s, want PENDING", m.ProfileStatus)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte("password123")); err != nil {
		t.Fatalf("password not hashed correctly: %v", err)
	}

	if _, err := svc.Register(ctx, auth.RegisterInput{
		Phone:    "010-1234-5678",
		Password: "another",
		Nickname: "dup",
	}); !errors.Is(err, auth.ErrPhoneTaken) {
		t.Fatalf("duplicate phone: got %v", err)
	}

	pair, logged, err := svc.Login(ctx, "010-1234-5678", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if logged.ID != m.ID {
		t.Fatalf("logged in wrong member")
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected non-empty tokens")
	}
	if pair.ExpiresIn <= 0 {
		t.Fatalf("expected positive access ttl, got %d", pair.ExpiresIn)
	}

	if _, _, err := svc.Login(ctx, "010-1234-5678", "wrong"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v", err)
	}
	if _, _, err := svc.Login(ctx, "010-0000-0000", "password123"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("unknown phone: got %v", err)
	}

	stored, err := repo.FindByPhone(ctx, "010-1234-5678")
	if err != nil {
		t.Fatalf("find member: %v", err)
	}
	if stored.Nickname != "sora" {
		t.Fatalf("stored nickname = %s", stored.Nickname)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, auth.RegisterInput{
		Phone:    "010-1111-2222",
		Password: "password123",
		Nickname: "mina",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	pair, _, err := svc.Login(ctx, "010-1111-2222", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	rotated, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if rotated.RefreshToken == pair.RefreshToken {
		t.Fatalf("refresh token was not rotated")
	}

	// 旧刷新令牌在轮换后立即失效。
	if _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, auth.ErrRefreshTokenInvalid) {
		t.Fatalf("stale refresh: got %v", err)
	}

	if _, err := svc.Refresh(ctx, "not-a-token"); !errors.Is(err, auth.ErrRefreshTokenInvalid) {
		t.Fatalf("garbage refresh: got %v", err)
	}
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, auth.RegisterInput{
		Phone:    "010-3333-4444",
		Password: "password123",
		Nickname: "jiho",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	pair, _, err := svc.Login(ctx, "010-3333-4444", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, auth.ErrRefreshTokenInvalid) {
		t.Fatalf("refresh after logout: got %v", err)
	}

	// 非法令牌登出静默成功。
	if err := svc.Logout(ctx, "garbage"); err != nil {
		t.Fatalf("logout with garbage token: %v", err)
	}
}
