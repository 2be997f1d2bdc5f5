package stores

import (
	"context"
	"time"

	"hoaledger/internal/cache"
	"hoaledger/internal/core"
)

// CachedConfigStore decorates a ConfigStore with an LRU+TTL cache.
// Configuration caching belongs here, on the store collaborator, so the
// aggregation core stays free of cross-call state. Misses (ErrNotFound)
// are not cached; a client fixing its configuration takes effect on the
// next read.
type CachedConfigStore struct {
	inner   ConfigStore
	billing *cache.LRU[BillingConfigRecord]
	fiscal  *cache.LRU[FiscalConfigRecord]
}

// NewCachedConfigStore wraps inner with a cache of maxSize entries per
// record kind, each valid for ttl.
func NewCachedConfigStore(inner ConfigStore, maxSize int, ttl time.Duration) *CachedConfigStore {
	return &CachedConfigStore{
		inner:   inner,
		billing: cache.NewLRU[BillingConfigRecord](maxSize, ttl),
		fiscal:  cache.NewLRU[FiscalConfigRecord](maxSize, ttl),
	}
}

var _ ConfigStore = (*CachedConfigStore)(nil)

func (s *CachedConfigStore) BillingConfig(ctx context.Context, clientID string, category core.Category) (BillingConfigRecord, error) {
	key := clientID + "/" + category.String()
	if rec, ok := s.billing.Get(key); ok {
		return rec, nil
	}
	rec, err := s.inner.BillingConfig(ctx, clientID, category)
	if err != nil {
		return BillingConfigRecord{}, err
	}
	s.billing.Set(key, rec)
	return rec, nil
}

func (s *CachedConfigStore) FiscalConfig(ctx context.Context, clientID string) (FiscalConfigRecord, error) {
	if rec, ok := s.fiscal.Get(clientID); ok {
		return rec, nil
	}
	rec, err := s.inner.FiscalConfig(ctx, clientID)
	if err != nil {
		return FiscalConfigRecord{}, err
	}
	s.fiscal.Set(clientID, rec)
	return rec, nil
}
