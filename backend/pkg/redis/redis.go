package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"que-aula/backend/config"
)

// Client Redis 客户端封装
// 当前用于课程列表的读缓存，写操作提交后整体失效
type Client struct {
	rdb    *goredis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return NewWithClient(rdb, cfg.ListCacheTTL, logger), nil
}

// NewWithClient 包装已有的 go-redis 客户端
func NewWithClient(rdb *goredis.Client, ttl time.Duration, logger *zap.Logger) *Client {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Client{rdb: rdb, ttl: ttl, logger: logger}
}

// ── 课程列表缓存 ──

const classListKey = "classes:list"

// GetClassList 读取缓存的课程列表 JSON，未命中返回 (nil, false, nil)
func (c *Client) GetClassList(ctx context.Context) ([]byte, bool, error) {
	data, err := c.rdb.Get(ctx, classListKey).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// SetClassList 写入课程列表 JSON
func (c *Client) SetClassList(ctx context.Context, data []byte) error {
	return c.rdb.Set(ctx, classListKey, data, c.ttl).Err()
}

// InvalidateClassList 删除课程列表缓存
func (c *Client) InvalidateClassList(ctx context.Context) error {
	return c.rdb.Del(ctx, classListKey).Err()
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
