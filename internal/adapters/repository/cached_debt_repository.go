package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/ahmed11551/SmartTasbihGoals/internal/core/domain"
)

var _ domain.QazaDebtRepository = (*CachedDebtRepository)(nil)

const debtCacheTTL = 30 * time.Minute

// CachedDebtRepository is a read-through cache in front of the debt
// store. The record is read on every dashboard load but rewritten only
// on recalculation or progress updates, so it caches GetByUserID and
// invalidates on Upsert.
type CachedDebtRepository struct {
	next  domain.QazaDebtRepository
	cache *redis.Client
}

func NewCachedDebtRepository(next domain.QazaDebtRepository, cache *redis.Client) *CachedDebtRepository {
	return &CachedDebtRepository{
		next:  next,
		cache: cache,
	}
}

func (r *CachedDebtRepository) cacheKey(userID string) string {
	return fmt.Sprintf("qaza:debt:%s", userID)
}

func (r *CachedDebtRepository) invalidate(ctx context.Context, userID string) {
	if err := r.cache.Del(ctx, r.cacheKey(userID)).Err(); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("cache invalidation failed")
	}
}

func (r *CachedDebtRepository) GetByUserID(ctx context.Context, userID string) (*domain.QazaDebt, error) {
	key := r.cacheKey(userID)

	val, err := r.cache.Get(ctx, key).Result()
	if err == nil {
		var debt domain.QazaDebt
		if err := json.Unmarshal([]byte(val), &debt); err == nil {
			return &debt, nil
		}

		log.Warn().Str("user_id", userID).Msg("corrupted cache entry, cleaning up key")
		r.cache.Del(ctx, key)
	} else if err != redis.Nil {
		log.Warn().Err(err).Msg("redis read error")
	}

	debt, err := r.next.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(debt); err == nil {
		if setErr := r.cache.Set(ctx, key, data, debtCacheTTL).Err(); setErr != nil {
			log.Warn().Err(setErr).Msg("redis set error")
		}
	}

	return debt, nil
}

func (r *CachedDebtRepository) Upsert(ctx context.Context, debt *domain.QazaDebt) error {
	if err := r.next.Upsert(ctx, debt); err != nil {
		return err
	}
	r.invalidate(ctx, debt.UserID)
	return nil
}
