package store

import (
	"context"

	"golang.org/x/time/rate"
)

// rateLimited throttles every call to the wrapped store.
type rateLimited struct {
	next    Store
	limiter *rate.Limiter
}

// RateLimited wraps s so that each operation waits for a token from limiter.
// A nil limiter returns s unchanged.
func RateLimited(s Store, limiter *rate.Limiter) Store {
	if limiter == nil {
		return s
	}
	return &rateLimited{next: s, limiter: limiter}
}

// NewLimiter builds a limiter allowing perSecond operations with an equal burst.
// Zero or negative values disable limiting and return nil.
func NewLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

func (r *rateLimited) Name() string {
	return r.next.Name()
}

func (r *rateLimited) Get(ctx context.Context, key Key) (Item, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.next.Get(ctx, key)
}

func (r *rateLimited) Put(ctx context.Context, item Item, cond Condition) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return err
	}
	return r.next.Put(ctx, item, cond)
}

func (r *rateLimited) Update(ctx context.Context, key Key, fields Item) (Item, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.next.Update(ctx, key, fields)
}

func (r *rateLimited) Delete(ctx context.Context, key Key, cond Condition) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return err
	}
	return r.next.Delete(ctx, key, cond)
}

func (r *rateLimited) Query(ctx context.Context, q Query) ([]Item, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.next.Query(ctx, q)
}

func (r *rateLimited) Scan(ctx context.Context) ([]Item, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.next.Scan(ctx)
}
