package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	response "meetup-go-app/backend/internal/infra/common"
	appLogger "meetup-go-app/backend/internal/infra/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimitConfig 描述按 IP 限流的核心参数。
type RateLimitConfig struct {
	Enabled     bool
	Prefix      string
	Window      time.Duration
	MaxRequests int
}

// RateLimitMiddleware 基于 Redis 计数器对公开接口做 IP 限流。
type RateLimitMiddleware struct {
	client *redis.Client
	cfg    RateLimitConfig
	logger *zap.SugaredLogger
}

// NewRateLimitMiddleware 构建 RateLimitMiddleware，零值参数回退到默认配置。
func NewRateLimitMiddleware(client *redis.Client, cfg RateLimitConfig) *RateLimitMiddleware {
	if cfg.Prefix == "" {
		cfg.Prefix = "ratelimit"
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = 120
	}
	return &RateLimitMiddleware{
		client: client,
		cfg:    cfg,
		logger: appLogger.S().With("component", "middleware.ratelimit"),
	}
}

// Handle 返回 Gin 中间件。Redis 不可用时放行，避免缓存故障拖垮业务。
func (m *RateLimitMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.cfg.Enabled || m.client == nil {
			c.Next()
			return
		}
		ip := strings.TrimSpace(c.ClientIP())
		if ip == "" {
			c.Next()
			return
		}

		allowed, retryAfter, err := m.hit(c.Request.Context(), ip)
		if err != nil {
			m.logger.Warnw("rate limit check failed", "ip", ip, "error", err)
			c.Next()
			return
		}
		if !allowed {
			if retryAfter > 0 {
				c.Header("Retry-After", fmt.Sprintf("%d", int(retryAfter.Seconds())))
			}
			response.Fail(c, http.StatusTooManyRequests, response.ErrTooManyRequests, "request rate limited", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

func (m *RateLimitMiddleware) hit(ctx context.Context, ip string) (bool, time.Duration, error) {
	counterKey := fmt.Sprintf("%s:cnt:%s", m.cfg.Prefix, ip)
	pipe := m.client.TxPipeline()
	count := pipe.Incr(ctx, counterKey)
	pipe.Expire(ctx, counterKey, m.cfg.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, 0, err
	}

	if int(count.Val()) <= m.cfg.MaxRequests {
		return true, 0, nil
	}

	retryAfter, err := m.client.TTL(ctx, counterKey).Result()
	if err != nil {
		retryAfter = m.cfg.Window
	}
	return false, retryAfter, nil
}
