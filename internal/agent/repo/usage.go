package repo

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"

	"github.com/waste-to-wealth/server/internal/agent/model"
	errx "github.com/waste-to-wealth/server/internal/core/error"
	logx "github.com/waste-to-wealth/server/pkg/logger"
)

const dayLayout = "2006-01-02"

// hash fields of a usage:{day}:{model} key
const (
	fieldCalls            = "calls"
	fieldPromptTokens     = "prompt_tokens"
	fieldCompletionTokens = "completion_tokens"
	fieldCostUSD          = "cost_usd"
)

type RedisUsageLedger struct {
	rdb redis.Cmdable
	ttl time.Duration
	now func() time.Time
}

func NewRedisUsageLedger(rdb redis.Cmdable, ttl time.Duration) *RedisUsageLedger {
	return &RedisUsageLedger{rdb: rdb, ttl: ttl, now: time.Now}
}

func (r *RedisUsageLedger) usageKey(day, modelName string) string {
	return fmt.Sprintf("usage:%s:%s", day, modelName)
}

// modelsKey indexes the models seen on a day so Daily never scans the keyspace.
func (r *RedisUsageLedger) modelsKey(day string) string {
	return fmt.Sprintf("usage:%s:models", day)
}

func (r *RedisUsageLedger) Record(ctx context.Context, modelName string, usage *schema.TokenUsage, costUSD float64) error {
	if usage == nil {
		return nil
	}
	day := r.now().UTC().Format(dayLayout)
	key := r.usageKey(day, modelName)

	if err := r.rdb.HIncrBy(ctx, key, fieldCalls, 1).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to increment usage calls")
		return errx.WrapRedis(err)
	}
	if err := r.rdb.HIncrBy(ctx, key, fieldPromptTokens, int64(usage.PromptTokens)).Err(); err != nil {
		return errx.WrapRedis(err)
	}
	if err := r.rdb.HIncrBy(ctx, key, fieldCompletionTokens, int64(usage.CompletionTokens)).Err(); err != nil {
		return errx.WrapRedis(err)
	}
	if err := r.rdb.HIncrByFloat(ctx, key, fieldCostUSD, costUSD).Err(); err != nil {
		return errx.WrapRedis(err)
	}

	idx := r.modelsKey(day)
	if err := r.rdb.SAdd(ctx, idx, modelName).Err(); err != nil {
		logx.Error().Err(err).Str("key", idx).Msg("failed to index usage model")
		return errx.WrapRedis(err)
	}

	// extend TTL on touch
	if r.ttl > 0 {
		for _, k := range []string{key, idx} {
			if ok, err := r.rdb.Expire(ctx, k, r.ttl).Result(); err != nil {
				logx.Error().Err(err).Str("key", k).Msg("failed to set expire")
				return errx.WrapRedis(err)
			} else if !ok {
				logx.Warn().Str("key", k).Dur("ttl", r.ttl).Msg("failed to set TTL on usage key")
			}
		}
	}
	return nil
}

func (r *RedisUsageLedger) Daily(ctx context.Context, day time.Time) ([]model.UsageSummary, error) {
	d := day.UTC().Format(dayLayout)
	idx := r.modelsKey(d)

	models, err := r.rdb.SMembers(ctx, idx).Result()
	if err != nil {
		if err == redis.Nil {
			return []model.UsageSummary{}, nil
		}
		logx.Error().Err(err).Str("key", idx).Msg("failed to load usage models")
		return nil, errx.WrapRedis(err)
	}
	sort.Strings(models)

	out := make([]model.UsageSummary, 0, len(models))
	for _, m := range models {
		key := r.usageKey(d, m)
		fields, err := r.rdb.HGetAll(ctx, key).Result()
		if err != nil {
			logx.Error().Err(err).Str("key", key).Msg("failed to load usage totals")
			return nil, errx.WrapRedis(err)
		}
		if len(fields) == 0 {
			continue
		}
		s, err := parseSummary(m, fields)
		if err != nil {
			return nil, fmt.Errorf("parse usage %s: %w", key, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func parseSummary(modelName string, fields map[string]string) (model.UsageSummary, error) {
	s := model.UsageSummary{Model: modelName}
	ints := []struct {
		field string
		dst   *int64
	}{
		{fieldCalls, &s.Calls},
		{fieldPromptTokens, &s.PromptTokens},
		{fieldCompletionTokens, &s.CompletionTokens},
	}
	for _, f := range ints {
		v, ok := fields[f.field]
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return s, fmt.Errorf("field %s: %w", f.field, err)
		}
		*f.dst = n
	}
	if v, ok := fields[fieldCostUSD]; ok {
		c, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return s, fmt.Errorf("field %s: %w", fieldCostUSD, err)
		}
		s.TotalCostUSD = c
	}
	return s, nil
}

var _ model.UsageLedger = (*RedisUsageLedger)(nil)
