package classify

import (
	"context"

	"github.com/NepomukLorenz/auditrevenue"
	"github.com/patrickmn/go-cache"
)

// Cached memoizes successful answers of another classifier for the
// lifetime of a run, keyed by account. Failures are not cached so a
// later attempt may still succeed.
type Cached struct {
	inner Classifier
	cache *cache.Cache
}

func NewCached(inner Classifier) *Cached {
	return &Cached{
		inner: inner,
		cache: cache.New(cache.NoExpiration, cache.NoExpiration),
	}
}

func (c *Cached) Classify(ctx context.Context, req Request) (auditrevenue.Category, error) {
	if hit, found := c.cache.Get(req.Account); found {
		return hit.(auditrevenue.Category), nil
	}
	category, err := c.inner.Classify(ctx, req)
	if err != nil {
		return category, err
	}
	c.cache.Set(req.Account, category, cache.NoExpiration)
	return category, nil
}
