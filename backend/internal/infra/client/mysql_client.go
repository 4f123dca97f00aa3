package client

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"meetup-go-app/backend/internal/config"

	mysqlDriver "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

const (
	envMySQLHost     = "MYSQL_HOST"
	envMySQLPort     = "MYSQL_PORT"
	envMySQLUsername = "MYSQL_USERNAME"
	envMySQLPassword = "MYSQL_PASSWORD"
	envMySQLDatabase = "MYSQL_DATABASE"
	envMySQLParams   = "MYSQL_PARAMS"
)

const (
	defaultMySQLPort     = 3306
	defaultMySQLDatabase = "meetup"
	defaultMySQLParams   = "charset=utf8mb4&parseTime=true&loc=Local"
)

// MySQLConfig 描述数据库连接配置项。
type MySQLConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Database string
	Params   string
}

// LoadMySQLConfig 从环境变量读取 MySQL 连接信息并填充默认值。
func LoadMySQLConfig() (MySQLConfig, error) {
	config.LoadEnvFiles()

	cfg := MySQLConfig{
		Host:     strings.TrimSpace(os.Getenv(envMySQLHost)),
		Port:     defaultMySQLPort,
		Username: strings.TrimSpace(os.Getenv(envMySQLUsername)),
		Password: os.Getenv(envMySQLPassword),
		Database: strings.TrimSpace(os.Getenv(envMySQLDatabase)),
		Params:   strings.TrimSpace(os.Getenv(envMySQLParams)),
	}

	if raw := strings.TrimSpace(os.Getenv(envMySQLPort)); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return MySQLConfig{}, fmt.Errorf("invalid mysql port: %w", err)
		}
		cfg.Port = port
	}
	if cfg.Database == "" {
		cfg.Database = defaultMySQLDatabase
	}
	if cfg.Params == "" {
		cfg.Params = defaultMySQLParams
	}

	if err := validateMySQLConfig(cfg); err != nil {
		return MySQLConfig{}, err
	}

	return cfg, nil
}

// NewGORMMySQL 创建 GORM 连接并返回 ORM 与底层 *sql.DB，便于控制生命周期。
func NewGORMMySQL(cfg MySQLConfig) (*gorm.DB, *sql.DB, error) {
	dsn, err := BuildMySQLDSN(cfg)
	if err != nil {
		return nil, nil, err
	}

	gormDB, err := gorm.Open(mysqlDriver.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, nil, fmt.Errorf("open gorm mysql: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("get sql db: %w", err)
	}

	sqlDB.SetConnMaxLifetime(60 * time.Minute)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(25)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("ping mysql: %w", err)
	}

	return gormDB, sqlDB, nil
}

// validateMySQLConfig 校验配置字段是否完整。
func validateMySQLConfig(cfg MySQLConfig) error {
	if cfg.Host == "" {
		return fmt.Errorf("mysql host is required")
	}
	if cfg.Username == "" {
		return fmt.Errorf("mysql username is required")
	}
	if cfg.Password == "" {
		return fmt.Errorf("mysql password is required")
	}
	if cfg.Database == "" {
		return fmt.Errorf("mysql database is required")
	}
	return nil
}

// BuildMySQLDSN 在通过校验后拼接 MySQL DSN 字符串。
func BuildMySQLDSN(cfg MySQLConfig) (string, error) {
	if err := validateMySQLConfig(cfg); err != nil {
		return "", err
	}

	params := cfg.Params
	if params == "" {
		params = defaultMySQLParams
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		cfg.Username,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
		params,
	)

	return dsn, nil
}
