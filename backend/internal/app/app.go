package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"meetup-go-app/backend/internal/config"
	"meetup-go-app/backend/internal/infra/client"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Resources 汇总进程级的外部资源句柄，随应用生命周期创建与关闭。
type Resources struct {
	MySQL MySQLResources
	Redis *redis.Client
}

// MySQLResources 同时暴露 GORM 句柄与底层连接池。
type MySQLResources struct {
	DB  *gorm.DB
	SQL *sql.DB
}

// Bootstrap 读取环境配置并建立 MySQL 与 Redis 连接。
// Redis 连接失败不视为致命错误，相关能力会退化为内存实现。
func Bootstrap(ctx context.Context) (*Resources, error) {
	config.LoadEnvFiles()

	mysqlCfg, err := client.LoadMySQLConfig()
	if err != nil {
		return nil, fmt.Errorf("load mysql config: %w", err)
	}

	db, sqlDB, err := client.NewGORMMySQL(mysqlCfg)
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}

	resources := &Resources{
		MySQL: MySQLResources{DB: db, SQL: sqlDB},
	}

	redisOpts, err := client.NewDefaultRedisOptions()
	if err == nil {
		if rdb, redisErr := client.NewRedisClient(redisOpts); redisErr == nil {
			resources.Redis = rdb
		} else {
			log.Printf("redis unavailable, falling back to in-memory stores: %v", redisErr)
		}
	}

	return resources, nil
}

// Close 释放所有外部连接。
func (r *Resources) Close() error {
	if r == nil {
		return nil
	}
	if r.Redis != nil {
		if err := r.Redis.Close(); err != nil {
			return err
		}
	}
	if r.MySQL.SQL != nil {
		if err := r.MySQL.SQL.Close(); err != nil {
			return err
		}
	}
	return nil
}

// DB 返回 GORM 句柄。
func (r *Resources) DB() *gorm.DB {
	if r == nil {
		return nil
	}
	return r.MySQL.DB
}

// WithShutdown 执行应用主函数并在退出时触发 cancel。
func WithShutdown(ctx context.Context, cancel func(), fn func(context.Context) error) {
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
