package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"subdesk/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const keyPrefix = "subdesk:"

type CacheService interface {
	// Product caching
	GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	SetProduct(ctx context.Context, product *models.Product, ttl time.Duration) error
	DeleteProduct(ctx context.Context, productID uuid.UUID) error

	// Dashboard caching
	GetDashboardStats(ctx context.Context) (*models.DashboardStats, error)
	SetDashboardStats(ctx context.Context, stats *models.DashboardStats, ttl time.Duration) error
	InvalidateDashboard(ctx context.Context) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int) (bool, error)
	IncrementRateLimit(ctx context.Context, key string, window time.Duration) error

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

// NewRedisCacheService accepts host:port or a redis:// URL.
func NewRedisCacheService(addr, password string, db int) CacheService {
	opts := &redis.Options{Addr: addr, Password: password, DB: db}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if parsed, err := redis.ParseURL(addr); err == nil {
			opts = parsed
			if password != "" {
				opts.Password = password
			}
		} else {
			log.Warn().Err(err).Str("addr", addr).Msg("invalid redis url, using it as an address")
		}
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Warn().Err(err).Str("addr", opts.Addr).Msg("redis ping failed on initialization")
	} else {
		log.Debug().Str("addr", opts.Addr).Msg("redis connection established")
	}

	return &redisCacheService{client: client}
}

func productKey(id uuid.UUID) string {
	return fmt.Sprintf("%sproduct:%s", keyPrefix, id)
}

const dashboardStatsKey = keyPrefix + "dashboard:stats"

func (r *redisCacheService) GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	hit, err := r.getJSON(ctx, productKey(productID), &product)
	if err != nil || !hit {
		return nil, err
	}
	return &product, nil
}

func (r *redisCacheService) SetProduct(ctx context.Context, product *models.Product, ttl time.Duration) error {
	return r.setJSON(ctx, productKey(product.ID), product, ttl)
}

func (r *redisCacheService) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	return r.client.Del(ctx, productKey(productID)).Err()
}

func (r *redisCacheService) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	hit, err := r.getJSON(ctx, dashboardStatsKey, &stats)
	if err != nil || !hit {
		return nil, err
	}
	return &stats, nil
}

func (r *redisCacheService) SetDashboardStats(ctx context.Context, stats *models.DashboardStats, ttl time.Duration) error {
	return r.setJSON(ctx, dashboardStatsKey, stats, ttl)
}

func (r *redisCacheService) InvalidateDashboard(ctx context.Context) error {
	return r.client.Del(ctx, dashboardStatsKey).Err()
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int) (bool, error) {
	count, err := r.client.Get(ctx, keyPrefix+"ratelimit:"+key).Int()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return count >= limit, nil
}

func (r *redisCacheService) IncrementRateLimit(ctx context.Context, key string, window time.Duration) error {
	k := keyPrefix + "ratelimit:" + key
	pipe := r.client.TxPipeline()
	pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, window)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// getJSON reports a miss as (false, nil).
func (r *redisCacheService) getJSON(ctx context.Context, key string, dest any) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (r *redisCacheService) setJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}
