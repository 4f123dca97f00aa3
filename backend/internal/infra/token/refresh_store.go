package token

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRefreshPrefix = "auth:refresh"

// RedisRefreshTokenStore 使用 Redis 保存刷新令牌，支持多实例共享状态。
// 键为 <prefix>:<memberID>:<jti>，过期时间与刷新令牌的 exp 保持一致，
// 到期后记录自然失效，客户端只能重新登录。
type RedisRefreshTokenStore struct {
	client *redis.Client
	prefix string
}

// NewRedisRefreshTokenStore 构造 Redis 刷新令牌存储。
func NewRedisRefreshTokenStore(client *redis.Client, prefix string) *RedisRefreshTokenStore {
	if prefix == "" {
		prefix = defaultRefreshPrefix
	}
	return &RedisRefreshTokenStore{client: client, prefix: prefix}
}

func (s *RedisRefreshTokenStore) key(memberID uint, tokenID string) string {
	return fmt.Sprintf("%s:%d:%s", s.prefix, memberID, tokenID)
}

// Save 将刷新令牌指纹写入 Redis 并设置过期时间。
// 若计算出的 TTL 小于等于 0，回退到 1s 以确保键马上失效。
func (s *RedisRefreshTokenStore) Save(ctx context.Context, memberID uint, tokenID string, expiresAt time.Time) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("redis client not configured")
	}
	if tokenID == "" {
		return fmt.Errorf("token id required")
	}

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}

	return s.client.Set(ctx, s.key(memberID, tokenID), "1", ttl).Err()
}

// Delete 从 Redis 中移除刷新令牌，对应“先删旧、再写新”的轮换与主动登出。
func (s *RedisRefreshTokenStore) Delete(ctx context.Context, memberID uint, tokenID string) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("redis client not configured")
	}
	if tokenID == "" {
		return nil
	}
	return s.client.Del(ctx, s.key(memberID, tokenID)).Err()
}

// Exists 检查刷新令牌是否仍有效，返回 false 即视为已吊销或过期。
func (s *RedisRefreshTokenStore) Exists(ctx context.Context, memberID uint, tokenID string) (bool, error) {
	if s == nil || s.client == nil {
		return false, fmt.Errorf("redis client not configured")
	}
	if tokenID == "" {
		return false, nil
	}
	count, err := s.client.Exists(ctx, s.key(memberID, tokenID)).Result()
	if err != nil {
		return false, err
	}
	return count == 1, nil
}

// MemoryRefreshTokenStore 便于测试以及无 Redis 环境下的退化处理。
// 只在当前进程内生效：服务重启后之前的刷新令牌全部失效。
type MemoryRefreshTokenStore struct {
	mu     sync.RWMutex
	tokens map[uint]map[string]time.Time
}

// NewMemoryRefreshTokenStore 创建进程内刷新令牌存储。
func NewMemoryRefreshTokenStore() *MemoryRefreshTokenStore {
	return &MemoryRefreshTokenStore{tokens: make(map[uint]map[string]time.Time)}
}

// Save 存储刷新令牌，结构与 Redis 版本一致。
func (s *MemoryRefreshTokenStore) Save(_ context.Context, memberID uint, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return fmt.Errorf("token id required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[memberID]; !ok {
		s.tokens[memberID] = make(map[string]time.Time)
	}
	s.tokens[memberID][tokenID] = expiresAt
	return nil
}

// Delete 移除刷新令牌，顺带清理空置的会员条目。
func (s *MemoryRefreshTokenStore) Delete(_ context.Context, memberID uint, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if bucket, ok := s.tokens[memberID]; ok {
		delete(bucket, tokenID)
		if len(bucket) == 0 {
			delete(s.tokens, memberID)
		}
	}
	return nil
}

// Exists 检测令牌是否存在且未过期，过期条目会被顺带清理。
func (s *MemoryRefreshTokenStore) Exists(_ context.Context, memberID uint, tokenID string) (bool, error) {
	s.mu.RLock()
	expiresAt, ok := s.tokens[memberID][tokenID]
	s.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if time.Now().After(expiresAt) {
		_ = s.Delete(context.Background(), memberID, tokenID)
		return false, nil
	}
	return true, nil
}
