package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"Anon_Board/internal/config"
)

var (
	Client *redis.Client
)

// NewClient 按配置建客户端，不做连通性检查
func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})
}

// Init 初始化全局客户端，Ping 不通直接返回错误
func Init(cfg config.RedisConfig) error {
	Client = NewClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return nil
}

// Close 程序退出时调用
func Close() error {
	if Client == nil {
		return nil
	}
	return Client.Close()
}
