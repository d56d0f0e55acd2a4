package repository

import (
	"context"
	"errors"
	"time"

	"github.com/fekuna/omnipos-stall-service/internal/model"
	"github.com/fekuna/omnipos-stall-service/internal/pkg/cache"
	"github.com/fekuna/omnipos-stall-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-stall-service/internal/sales"
	"go.uber.org/zap"
)

const saleKeyPrefix = "sales:sale:"

// CachedRepository is a read-through Redis cache in front of the sales
// store. A committed sale never changes, so entries are never invalidated,
// only expired.
type CachedRepository struct {
	sales.Repository
	cache  *cache.RedisClient
	ttl    time.Duration
	logger logger.ZapLogger
}

func NewCachedRepository(repo sales.Repository, c *cache.RedisClient, ttl time.Duration, log logger.ZapLogger) *CachedRepository {
	return &CachedRepository{
		Repository: repo,
		cache:      c,
		ttl:        ttl,
		logger:     log,
	}
}

func (r *CachedRepository) FindByID(ctx context.Context, id string) (*model.Sale, error) {
	key := saleKeyPrefix + id

	var cached model.Sale
	err := r.cache.GetJSON(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		r.logger.Warn("sale cache read failed", zap.String("sale_id", id), zap.Error(err))
	}

	sale, err := r.Repository.FindByID(ctx, id)
	if err != nil || sale == nil {
		return sale, err
	}

	if err := r.cache.SetJSON(ctx, key, sale, r.ttl); err != nil {
		r.logger.Warn("sale cache write failed", zap.String("sale_id", id), zap.Error(err))
	}
	return sale, nil
}
