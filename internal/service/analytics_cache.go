package service

import (
	"Postline/internal/pkg/consts"
	"context"
	log "log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// AnalyticsCache 聚合结果缓存
// Clear 只清空本缓存写入的键，不做全库扫描
type AnalyticsCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	Clear(ctx context.Context) error
}

type redisAnalyticsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAnalyticsCache(client *redis.Client, ttl time.Duration) AnalyticsCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &redisAnalyticsCache{client: client, ttl: ttl}
}

func (s *redisAnalyticsCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	if err = json.Unmarshal([]byte(raw), dest); err != nil {
		// 反序列化失败视为未命中，旧格式的缓存条目会被覆盖
		log.WarnContext(ctx, "analytics cache entry is corrupt", "key", key, "error", err)
		return false, nil
	}
	return true, nil
}

func (s *redisAnalyticsCache) Set(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, key, raw, s.ttl)
	pipe.SAdd(ctx, consts.AnalyticsCacheIndexKey, key)
	// 索引集合随最后一个条目一起过期，避免残留
	pipe.Expire(ctx, consts.AnalyticsCacheIndexKey, s.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *redisAnalyticsCache) Clear(ctx context.Context) error {
	keys, err := s.client.SMembers(ctx, consts.AnalyticsCacheIndexKey).Result()
	if err != nil {
		return err
	}
	keys = append(keys, consts.AnalyticsCacheIndexKey)
	return s.client.Del(ctx, keys...).Err()
}

// BuildCacheKey 生成缓存键，列表参数排序后拼接，参数顺序不影响键值
func BuildCacheKey(prefix string, userID uint64, startDate string, endDate string, platforms []string, metrics []string) string {
	sortedPlatforms := append([]string(nil), platforms...)
	sortedMetrics := append([]string(nil), metrics...)
	sort.Strings(sortedPlatforms)
	sort.Strings(sortedMetrics)

	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(strconv.FormatUint(userID, 10))
	b.WriteString(":")
	b.WriteString(startDate)
	b.WriteString(":")
	b.WriteString(endDate)
	b.WriteString(":")
	b.WriteString(strings.Join(sortedPlatforms, ","))
	b.WriteString(":")
	b.WriteString(strings.Join(sortedMetrics, ","))
	return b.String()
}
