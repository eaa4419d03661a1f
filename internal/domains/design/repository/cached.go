package repository

import (
	"context"
	"fmt"
	"time"

	"designlab-backend/internal/domains/design/model"
	"designlab-backend/pkg/cache"
	"designlab-backend/pkg/logger"
)

// =====================================================
// CACHED REPOSITORY DECORATOR
// =====================================================

// Read TTL is short: records mutate as render workers append previews,
// and the polling contract tolerates a few seconds of staleness but
// not minutes.
const designCacheTTL = 15 * time.Second

// cachedDesignRepository wraps a repository with a read-through cache
// on GetByID. Writes invalidate. Cache failures degrade to the inner
// repository and are logged, never surfaced.
type cachedDesignRepository struct {
	inner DesignRepository
	cache cache.Cache
}

func NewCachedDesignRepository(inner DesignRepository, c cache.Cache) DesignRepository {
	return &cachedDesignRepository{inner: inner, cache: c}
}

func designCacheKey(designID string) string {
	return fmt.Sprintf("design:%s", designID)
}

func (r *cachedDesignRepository) Create(ctx context.Context, record *model.DesignRecord) error {
	return r.inner.Create(ctx, record)
}

func (r *cachedDesignRepository) GetByID(ctx context.Context, designID string) (*model.DesignRecord, error) {
	key := designCacheKey(designID)

	var cached model.DesignRecord
	found, err := r.cache.Get(ctx, key, &cached)
	if err != nil {
		logger.Warn("design cache read failed", err)
	}
	if found {
		return &cached, nil
	}

	record, err := r.inner.GetByID(ctx, designID)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, key, record, designCacheTTL); err != nil {
		logger.Warn("design cache write failed", err)
	}

	return record, nil
}

func (r *cachedDesignRepository) AppendPreview(ctx context.Context, designID string, entry model.PreviewEntry) error {
	if err := r.inner.AppendPreview(ctx, designID, entry); err != nil {
		return err
	}
	r.invalidate(ctx, designID)
	return nil
}

func (r *cachedDesignRepository) RefreshPreviewURL(ctx context.Context, designID, storageKey, url string) error {
	if err := r.inner.RefreshPreviewURL(ctx, designID, storageKey, url); err != nil {
		return err
	}
	r.invalidate(ctx, designID)
	return nil
}

func (r *cachedDesignRepository) ListRecent(ctx context.Context, since time.Time, limit int) ([]*model.DesignRecord, error) {
	return r.inner.ListRecent(ctx, since, limit)
}

func (r *cachedDesignRepository) invalidate(ctx context.Context, designID string) {
	if err := r.cache.Delete(ctx, designCacheKey(designID)); err != nil {
		logger.Warn("design cache invalidation failed", err)
	}
}
