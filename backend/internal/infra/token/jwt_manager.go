package token

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	domain "meetup-go-app/backend/internal/domain/member"
	"meetup-go-app/backend/internal/service/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	claimTokenType   = "token_type"
	claimTokenID     = "jti"
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// JWTManager 基于对称加密密钥生成访问与刷新令牌。
type JWTManager struct {
	secret     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewJWTManager 创建 JWT 管理器，配置签名密钥以及访问/刷新令牌的有效期。
func NewJWTManager(secret string, accessTTL, refreshTTL time.Duration) *JWTManager {
	return &JWTManager{secret: secret, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// GenerateTokens 为指定会员签发访问令牌和刷新令牌，返回统一的 TokenPair。
func (m *JWTManager) GenerateTokens(_ context.Context, mem *domain.Member) (auth.TokenPair, error) {
	accessToken, accessExp, _, err := m.buildToken(mem, m.accessTTL, tokenTypeAccess, "")
	if err != nil {
		return auth.TokenPair{}, fmt.Errorf("generate access token: %w", err)
	}

	refreshID := uuid.NewString()
	refreshToken, refreshExp, refreshID, err := m.buildToken(mem, m.refreshTTL, tokenTypeRefresh, refreshID)
	if err != nil {
		return auth.TokenPair{}, fmt.Errorf("generate refresh token: %w", err)
	}

	return auth.TokenPair{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		ExpiresIn:             int64(time.Until(accessExp).Seconds()),
		RefreshTokenID:        refreshID,
		RefreshTokenExpiresAt: refreshExp,
	}, nil
}

// buildToken 根据指定 TTL 构造单个 JWT，包括基础 claims 与签名。
func (m *JWTManager) buildToken(mem *domain.Member, ttl time.Duration, tokenType string, tokenID string) (string, time.Time, string, error) {
	if ttl <= 0 {
		ttl = time.Hour
	}

	expiresAt := time.Now().Add(ttl)

	claims := jwt.MapClaims{
		"sub":          fmt.Sprintf("%d", mem.ID),
		"nickname":     mem.Nickname,
		"exp":          expiresAt.Unix(),
		"is_admin":     mem.IsAdmin(),
		claimTokenType: tokenType,
	}

	if tokenType == tokenTypeRefresh {
		if tokenID == "" {
			tokenID = uuid.NewString()
		}
		claims[claimTokenID] = tokenID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.secret))
	if err != nil {
		return "", time.Time{}, "", err
	}

	return signed, expiresAt, tokenID, nil
}

// ParseRefreshToken 验证并解析刷新令牌，返回其包含的会员 ID 与 TokenID。
func (m *JWTManager) ParseRefreshToken(raw string) (auth.RefreshTokenClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrInvalidKeyType
		}
		return []byte(m.secret), nil
	})
	if err != nil {
		return auth.RefreshTokenClaims{}, err
	}
	if !token.Valid {
		return auth.RefreshTokenClaims{}, errors.New("token invalid")
	}

	tType, _ := claims[claimTokenType].(string)
	if tType != tokenTypeRefresh {
		return auth.RefreshTokenClaims{}, errors.New("not a refresh token")
	}

	var subRaw string
	switch v := claims["sub"].(type) {
	case string:
		subRaw = v
	case float64:
		if v < 0 {
			return auth.RefreshTokenClaims{}, errors.New("invalid subject")
		}
		subRaw = fmt.Sprintf("%.0f", v)
	case json.Number:
		subRaw = v.String()
	default:
		return auth.RefreshTokenClaims{}, errors.New("missing subject")
	}

	memberID, err := strconv.ParseUint(subRaw, 10, 64)
	if err != nil {
		return auth.RefreshTokenClaims{}, fmt.Errorf("parse subject: %w", err)
	}

	tokenID, _ := claims[claimTokenID].(string)
	if tokenID == "" {
		return auth.RefreshTokenClaims{}, errors.New("missing token id")
	}

	return auth.RefreshTokenClaims{
		MemberID: uint(memberID),
		TokenID:  tokenID,
	}, nil
}
