// Package cache provides a read-through link store backed by ristretto.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/vadimbarashkov/url-shortener/internal/models"
)

// LinkRepository is the store being cached.
type LinkRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Link, error)
	GetByShortCode(ctx context.Context, shortCode string) (*models.Link, error)
	List(ctx context.Context, ownerID string) ([]models.Link, error)
	Create(ctx context.Context, link models.Link) (*models.Link, error)
	Update(ctx context.Context, id int64, upd models.LinkUpdate) (*models.Link, error)
	Delete(ctx context.Context, id int64) error
}

// Options configure the cache.
type Options struct {
	MaxItems int64
	TTL      time.Duration
}

// LinkCache caches short code lookups of the wrapped repository.
// Only hits are cached; a missing code is always asked from the store
// so that a freshly created link is visible immediately.
type LinkCache struct {
	next  LinkRepository
	cache *ristretto.Cache
	ttl   time.Duration

	// gen is bumped on every invalidation. A read that started before an
	// invalidation must not cache what it loaded.
	mu  sync.Mutex
	gen uint64
}

// New wraps next with a cache of at most opts.MaxItems links.
func New(next LinkRepository, opts Options) (*LinkCache, error) {
	const op = "cache.New"

	if opts.MaxItems <= 0 {
		opts.MaxItems = 10000
	}

	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: opts.MaxItems * 10,
		MaxCost:     opts.MaxItems,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &LinkCache{
		next:  next,
		cache: c,
		ttl:   opts.TTL,
	}, nil
}

func (c *LinkCache) GetByID(ctx context.Context, id int64) (*models.Link, error) {
	return c.next.GetByID(ctx, id)
}

func (c *LinkCache) GetByShortCode(ctx context.Context, shortCode string) (*models.Link, error) {
	if v, ok := c.cache.Get(shortCode); ok {
		link := v.(models.Link)
		return &link, nil
	}

	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	link, err := c.next.GetByShortCode(ctx, shortCode)
	if err != nil || link == nil {
		return link, err
	}

	c.mu.Lock()
	if c.gen == gen {
		c.set(*link)
	}
	c.mu.Unlock()

	return link, nil
}

func (c *LinkCache) List(ctx context.Context, ownerID string) ([]models.Link, error) {
	return c.next.List(ctx, ownerID)
}

func (c *LinkCache) Create(ctx context.Context, link models.Link) (*models.Link, error) {
	return c.next.Create(ctx, link)
}

func (c *LinkCache) Update(ctx context.Context, id int64, upd models.LinkUpdate) (*models.Link, error) {
	const op = "cache.LinkCache.Update"

	if upd.IsEmpty() {
		return c.next.Update(ctx, id, upd)
	}

	old, err := c.next.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	link, err := c.next.Update(ctx, id, upd)
	c.invalidate(old)

	return link, err
}

func (c *LinkCache) Delete(ctx context.Context, id int64) error {
	const op = "cache.LinkCache.Delete"

	old, err := c.next.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = c.next.Delete(ctx, id)
	c.invalidate(old)

	return err
}

// Wait blocks until buffered writes are applied.
func (c *LinkCache) Wait() {
	c.cache.Wait()
}

func (c *LinkCache) Close() {
	c.cache.Close()
}

// invalidate evicts old and discards any read still in flight.
// Ristretto applies Set and Del in call order, so the mutex is enough to keep
// a stale set from landing after the eviction.
func (c *LinkCache) invalidate(old *models.Link) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old != nil {
		c.cache.Del(old.ShortCode)
	}
	c.gen++
}

func (c *LinkCache) set(link models.Link) {
	if c.ttl > 0 {
		c.cache.SetWithTTL(link.ShortCode, link, 1, c.ttl)
		return
	}
	c.cache.Set(link.ShortCode, link, 1)
}
