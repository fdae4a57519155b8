package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/solargrowth/internal/domain/entity"
	"github.com/oksasatya/solargrowth/internal/domain/repository"
	"github.com/oksasatya/solargrowth/pkg/helpers"
)

const catalogKey = "catalog:products"

// CachedProductRepository serves the catalog listing from Redis and drops
// the cached copy on every write. Redis failures fall through to the store.
type CachedProductRepository struct {
	repository.ProductRepository
	rdb    *goredis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

func NewCachedProductRepository(next repository.ProductRepository, rdb *goredis.Client, ttl time.Duration, logger *logrus.Logger) *CachedProductRepository {
	return &CachedProductRepository{ProductRepository: next, rdb: rdb, ttl: ttl, logger: logger}
}

func (r *CachedProductRepository) List(ctx context.Context) ([]entity.Product, error) {
	var cached []entity.Product
	ok, err := helpers.RedisGetJSON(ctx, r.rdb, catalogKey, &cached)
	if err == nil && ok {
		return cached, nil
	}
	if err != nil && r.logger != nil {
		r.logger.WithError(err).Warn("catalog cache read failed")
	}
	products, err := r.ProductRepository.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := helpers.RedisSetJSON(ctx, r.rdb, catalogKey, products, r.ttl); err != nil && r.logger != nil {
		r.logger.WithError(err).Warn("catalog cache write failed")
	}
	return products, nil
}

func (r *CachedProductRepository) Create(ctx context.Context, p *entity.Product) error {
	if err := r.ProductRepository.Create(ctx, p); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *CachedProductRepository) Update(ctx context.Context, p *entity.Product) error {
	if err := r.ProductRepository.Update(ctx, p); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *CachedProductRepository) Delete(ctx context.Context, id int64) error {
	if err := r.ProductRepository.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *CachedProductRepository) invalidate(ctx context.Context) {
	if err := helpers.RedisDel(ctx, r.rdb, catalogKey); err != nil && r.logger != nil {
		r.logger.WithError(err).Warn("catalog cache invalidation failed")
	}
}

var _ repository.ProductRepository = (*CachedProductRepository)(nil)
