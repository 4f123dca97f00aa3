package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	appLogger "meetup-go-app/backend/internal/infra/logger"
)

const (
	envServerPort   = "SERVER_PORT"
	envJWTSecret    = "JWT_SECRET"
	envAccessTTL    = "JWT_ACCESS_TTL"
	envRefreshTTL   = "JWT_REFRESH_TTL"
	envAppTimezone  = "APP_TIMEZONE"
	envKpiCronSpec  = "KPI_CRON_SPEC"
	envEnableDevAPI = "ENABLE_DEV_API"
)

const (
	defaultServerPort = "8080"
	defaultAccessTTL  = 30 * time.Minute
	defaultRefreshTTL = 14 * 24 * time.Hour
	// defaultTimezone 是业务上的“自然日”时区：KPI 聚合、调度器的“昨天”
	// 都以它为准，与服务器进程时区和数据库存储时区无关。
	defaultTimezone = "Asia/Seoul"
	// defaultKpiCronSpec 每天 05:00（业务时区）触发一次前一日的 KPI 聚合。
	defaultKpiCronSpec = "0 5 * * *"
)

// Runtime 汇总服务启动所需的运行期配置。
type Runtime struct {
	Port         string
	JWTSecret    string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
	Timezone     *time.Location
	KpiCronSpec  string
	EnableDevAPI bool
}

// LoadRuntime 从环境变量读取运行期配置并填充默认值。
// JWT_SECRET 缺失视为致命错误，其余字段均有合理默认。
func LoadRuntime() (Runtime, error) {
	LoadEnvFiles()

	secret := strings.TrimSpace(os.Getenv(envJWTSecret))
	if secret == "" {
		return Runtime{}, fmt.Errorf("%s not set", envJWTSecret)
	}

	cfg := Runtime{
		Port:        defaultServerPort,
		JWTSecret:   secret,
		AccessTTL:   defaultAccessTTL,
		RefreshTTL:  defaultRefreshTTL,
		KpiCronSpec: defaultKpiCronSpec,
	}

	if port := strings.TrimSpace(os.Getenv(envServerPort)); port != "" {
		cfg.Port = port
	}
	if raw := strings.TrimSpace(os.Getenv(envAccessTTL)); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return Runtime{}, fmt.Errorf("invalid %s: %w", envAccessTTL, err)
		}
		cfg.AccessTTL = ttl
	}
	if raw := strings.TrimSpace(os.Getenv(envRefreshTTL)); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return Runtime{}, fmt.Errorf("invalid %s: %w", envRefreshTTL, err)
		}
		cfg.RefreshTTL = ttl
	}
	if raw := strings.TrimSpace(os.Getenv(envKpiCronSpec)); raw != "" {
		cfg.KpiCronSpec = raw
	}
	if raw := strings.TrimSpace(os.Getenv(envEnableDevAPI)); raw != "" {
		cfg.EnableDevAPI = raw == "1" || strings.EqualFold(raw, "true")
	}

	loc, err := LoadAppTimezone()
	if err != nil {
		return Runtime{}, err
	}
	cfg.Timezone = loc

	return cfg, nil
}

// LoadAppTimezone 解析 APP_TIMEZONE。不支持的时区名回退到默认时区，
// 这样个别节点配置错误时服务依旧能启动，只是会在日志里留下痕迹。
func LoadAppTimezone() (*time.Location, error) {
	name := strings.TrimSpace(os.Getenv(envAppTimezone))
	if name == "" {
		name = defaultTimezone
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		loc, fallbackErr := time.LoadLocation(defaultTimezone)
		if fallbackErr != nil {
			return nil, fmt.Errorf("load timezone %q: %w", name, err)
		}
		appLogger.S().Warnw("unsupported timezone, falling back to default",
			"timezone", name,
			"fallback", defaultTimezone,
		)
		return loc, nil
	}
	return loc, nil
}
