package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// dedupKeyPrefix 去重键前缀
const dedupKeyPrefix = "receiver:seen:"

// Deduper 已处理消息去重器
// Redis SETNX + TTL 实现：键集合有界（自动过期），且跨进程重启仍然有效
type Deduper struct {
	redisClient *redis.Client
	ttl         time.Duration
	logger      *zap.Logger
}

// NewDeduper 创建去重器
func NewDeduper(redisClient *redis.Client, ttl time.Duration, logger *zap.Logger) *Deduper {
	if redisClient == nil {
		panic("redisClient is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Deduper{
		redisClient: redisClient,
		ttl:         ttl,
		logger:      logger,
	}
}

// Seen 标记并判断某来源的消息是否已处理过
// 返回 true 表示该 ID 在 TTL 窗口内已处理过，应跳过
// Redis 不可用时放行消息：邮箱侧还有未读标记兜底，重复摄入好过丢数据
func (d *Deduper) Seen(ctx context.Context, source, itemID string) bool {
	key := fmt.Sprintf("%s%s:%s", dedupKeyPrefix, source, itemID)

	fresh, err := d.redisClient.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		d.logger.Warn("Dedup check failed, processing message anyway",
			zap.String("key", key),
			zap.Error(err),
		)
		return false
	}
	return !fresh
}
