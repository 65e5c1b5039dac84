package cache

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kapu/aion2-character-go/internal/constants"
	"github.com/kapu/aion2-character-go/internal/domain"
	"github.com/kapu/aion2-character-go/internal/util"
	"github.com/kapu/aion2-character-go/pkg/errors"
)

// CacheService keeps recently assembled character records in Redis as JSON.
type CacheService struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

type CacheConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

// NewCacheService connects and pings Redis.
func NewCacheService(cfg CacheConfig, logger *zap.Logger) (*CacheService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), constants.RedisConfig.ReadyTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.NewCacheError("failed to connect to Redis", "ping", "", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("Redis connected",
		zap.String("addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		zap.Int("db", cfg.DB),
	)

	return NewWithClient(client, cfg.TTL, logger), nil
}

// NewWithClient wraps an existing client. A non-positive ttl uses the default
// record TTL.
func NewWithClient(client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *CacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = constants.CacheTTL.CharacterRecord
	}
	return &CacheService{client: client, ttl: ttl, logger: logger}
}

// RecordKey is aion2:character:{server}:{name} with both parts normalized.
func RecordKey(server, name string) string {
	return fmt.Sprintf("%s:%s:%s",
		constants.CacheKeys.CharacterPrefix,
		util.NormalizeKey(server),
		util.NormalizeKey(name),
	)
}

// GetRecord returns nil without error on a miss.
func (c *CacheService) GetRecord(ctx context.Context, server, name string) (*domain.CharacterRecord, error) {
	key := RecordKey(server, name)

	value, err := c.client.Get(ctx, key).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		c.logger.Error("Cache get failed", zap.String("key", key), zap.Error(err))
		return nil, errors.NewCacheError("get failed", "get", key, err)
	}

	var record domain.CharacterRecord
	if err := json.Unmarshal(value, &record); err != nil {
		c.logger.Error("Cache unmarshal failed", zap.String("key", key), zap.Error(err))
		return nil, errors.NewCacheError("unmarshal failed", "get", key, err)
	}
	record.Normalize()
	return &record, nil
}

// SetRecord stores record under the identity the caller looked it up by, so
// a later lookup with the same (server, name) hits even when the page showed
// a differently cased name.
func (c *CacheService) SetRecord(ctx context.Context, server, name string, record *domain.CharacterRecord) error {
	key := RecordKey(server, name)

	payload, err := json.Marshal(record)
	if err != nil {
		return errors.NewCacheError("marshal failed", "set", key, err)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Error("Cache set failed", zap.String("key", key), zap.Error(err))
		return errors.NewCacheError("set failed", "set", key, err)
	}
	return nil
}

func (c *CacheService) DeleteRecord(ctx context.Context, server, name string) error {
	key := RecordKey(server, name)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Error("Cache delete failed", zap.String("key", key), zap.Error(err))
		return errors.NewCacheError("delete failed", "del", key, err)
	}
	return nil
}

func (c *CacheService) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *CacheService) Close() error {
	return c.client.Close()
}
