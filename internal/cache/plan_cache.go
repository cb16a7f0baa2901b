package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sort"
	"time"

	"github.com/andresuchdata/replenish-planner/internal/config"
	"github.com/andresuchdata/replenish-planner/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Plan keys are laid out as replenish:plan:<YYYY-MM-DD>:<sha1 of rows>, so a
// whole day or every plan can be dropped by pattern.
const (
	planKeyPrefix     = "replenish:plan"
	planScanBatchSize = 100
	defaultPlanTTL    = 5 * time.Minute
)

// PlanCache memoises batch plans. Evaluation is deterministic, so a plan is
// fully identified by its day and its input rows.
type PlanCache interface {
	GetPlan(ctx context.Context, key string) (*domain.Plan, bool, error)
	SetPlan(ctx context.Context, key string, plan *domain.Plan) error
	InvalidateAll(ctx context.Context) error
}

type redisPlanCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopPlanCache struct{}

// NewPlanCache returns a redis-backed cache when caching is enabled and a
// no-op cache otherwise.
func NewPlanCache(cfg config.CacheConfig) (PlanCache, error) {
	if !cfg.Enabled {
		return &noopPlanCache{}, nil
	}

	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	ttl := time.Duration(cfg.PlanTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultPlanTTL
	}

	return &redisPlanCache{client: client, ttl: ttl}, nil
}

// redisOptions prefers REDIS_URL and otherwise builds an address from host
// and port.
func redisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opt, nil
	}

	host, port := cfg.RedisHost, cfg.RedisPort
	if host == "" {
		host = "127.0.0.1"
	}
	if port == "" {
		port = "6379"
	}
	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

func NewNoopPlanCache() PlanCache {
	return &noopPlanCache{}
}

func (c *redisPlanCache) GetPlan(ctx context.Context, key string) (*domain.Plan, bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var plan domain.Plan
	if err := json.Unmarshal(payload, &plan); err != nil {
		return nil, false, fmt.Errorf("decode plan cache: %w", err)
	}

	return &plan, true, nil
}

func (c *redisPlanCache) SetPlan(ctx context.Context, key string, plan *domain.Plan) error {
	payload, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("encode plan cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisPlanCache) InvalidateAll(ctx context.Context) error {
	_, err := unlinkPlans(ctx, c.client, planKeyPrefix+":*")
	return err
}

// planKeyStore is the slice of the redis client used to drop plans.
type planKeyStore interface {
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
	Unlink(ctx context.Context, keys ...string) *redis.IntCmd
}

// unlinkPlans walks the keyspace with SCAN and unlinks every matching key one
// page at a time. It returns how many keys were removed.
func unlinkPlans(ctx context.Context, store planKeyStore, pattern string) (int64, error) {
	var (
		cursor  uint64
		removed int64
	)
	for {
		keys, next, err := store.Scan(ctx, cursor, pattern, planScanBatchSize).Result()
		if err != nil {
			return removed, fmt.Errorf("scan plan keys: %w", err)
		}
		if len(keys) > 0 {
			n, err := store.Unlink(ctx, keys...).Result()
			if err != nil {
				return removed, fmt.Errorf("unlink plan keys: %w", err)
			}
			removed += n
		}
		if next == 0 {
			return removed, nil
		}
		cursor = next
	}
}

func (n *noopPlanCache) GetPlan(ctx context.Context, key string) (*domain.Plan, bool, error) {
	return nil, false, nil
}

func (n *noopPlanCache) SetPlan(ctx context.Context, key string, plan *domain.Plan) error {
	return nil
}

func (n *noopPlanCache) InvalidateAll(ctx context.Context) error {
	return nil
}

// PlanKey builds the cache key for a plan. Row order does not matter: the
// encoded rows are sorted before hashing.
func PlanKey(asOf time.Time, rows []domain.SKUSnapshot) (string, error) {
	encoded := make([]string, 0, len(rows))
	for _, row := range rows {
		raw, err := json.Marshal(row)
		if err != nil {
			return "", fmt.Errorf("encode plan row %s: %w", row.SKU, err)
		}
		encoded = append(encoded, string(raw))
	}
	sort.Strings(encoded)

	h := sha1.New()
	h.Write([]byte(asOf.Format("2006-01-02")))
	for _, e := range encoded {
		h.Write([]byte{'|'})
		h.Write([]byte(e))
	}
	return fmt.Sprintf("%s:%s:%s", planKeyPrefix, asOf.Format("2006-01-02"), hex.EncodeToString(h.Sum(nil))), nil
}
