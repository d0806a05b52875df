package item

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"item_catalog/internal/activity"
	"item_catalog/internal/apperror"
	"item_catalog/internal/cache"
	"item_catalog/internal/observability"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	cacheTimeout   = 2 * time.Second
	publishTimeout = 3 * time.Second
)

type ItemServiceInterface interface {
	Create(ctx context.Context, req CreateRequest, actorID string) (*Item, error)
	List(ctx context.Context) ([]*Item, error)
	Get(ctx context.Context, id string) (*Item, error)
	Update(ctx context.Context, id string, patch Patch, actorID string) (*Item, error)
	Delete(ctx context.Context, id string, actorID string) error
}

type ItemService struct {
	repo    Repository
	cache   cache.Cache
	events  activity.Publisher
	metrics *observability.Metrics
}

func NewItemService(repo Repository, itemCache cache.Cache, events activity.Publisher, metrics *observability.Metrics) ItemServiceInterface {
	if itemCache == nil {
		itemCache = cache.NopCache{}
	}
	if events == nil {
		events = activity.NopPublisher{}
	}
	return &ItemService{
		repo:    repo,
		cache:   itemCache,
		events:  events,
		metrics: metrics,
	}
}

func notFound() error {
	return apperror.NotFound("Item not found")
}

func (s *ItemService) Create(ctx context.Context, req CreateRequest, actorID string) (*Item, error) {
	now := time.Now().UTC()
	item := &Item{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	item.normalize()

	start := time.Now()
	err := s.repo.Create(ctx, item)
	s.metrics.ObserveStore("items.create", time.Since(start).Seconds())
	if err != nil {
		return nil, apperror.Store("Error creating item", err)
	}

	s.metrics.IncItemMutation("create")
	Invalidate(ctx, s.cache, item.ID)
	Emit(ctx, s.events, activity.NewEvent(activity.EventItemCreated, item.ID, actorID, item))

	return item, nil
}

func (s *ItemService) List(ctx context.Context) ([]*Item, error) {
	cacheCtx, cancel := context.WithTimeout(ctx, cacheTimeout)
	defer cancel()

	gen, cacheable := generation(cacheCtx, s.cache)

	// Try cache first
	if cacheable {
		cachedData, err := s.cache.Get(cacheCtx, cache.ItemListKey(gen))
		if err == nil && cachedData != nil {
			var items []*Item
			if json.Unmarshal(cachedData, &items) == nil {
				s.metrics.ObserveCache("item_list", true)
				for _, it := range items {
					it.normalize()
				}
				if items == nil {
					items = []*Item{}
				}
				return items, nil
			}
		}
	}
	s.metrics.ObserveCache("item_list", false)

	start := time.Now()
	items, err := s.repo.List(ctx)
	s.metrics.ObserveStore("items.list", time.Since(start).Seconds())
	if err != nil {
		return nil, apperror.Store("Error fetching items", err)
	}

	if cacheable {
		if err := s.cache.Set(cacheCtx, cache.ItemListKey(gen), items); err != nil {
			logrus.WithError(err).Warn("Failed to set cache for item list")
		}
	}

	return items, nil
}

func (s *ItemService) Get(ctx context.Context, id string) (*Item, error) {
	if !ValidID(id) {
		return nil, notFound()
	}

	cacheCtx, cancel := context.WithTimeout(ctx, cacheTimeout)
	defer cancel()

	gen, cacheable := generation(cacheCtx, s.cache)
	cacheKey := cache.ItemKey(id, gen)
	if cacheable {
		cachedData, err := s.cache.Get(cacheCtx, cacheKey)
		if err == nil && cachedData != nil {
			var item Item
			if json.Unmarshal(cachedData, &item) == nil {
				s.metrics.ObserveCache("item", true)
				logrus.WithField("item_id", id).Debug("cache hit for item")
				return item.normalize(), nil
			}
		}
	}
	s.metrics.ObserveCache("item", false)

	start := time.Now()
	item, err := s.repo.GetByID(ctx, id)
	s.metrics.ObserveStore("items.get", time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, notFound()
		}
		return nil, apperror.Store("Error fetching item", err)
	}

	if cacheable {
		if err := s.cache.Set(cacheCtx, cacheKey, item); err != nil {
			logrus.WithError(err).Warn("Failed to set cache for item")
		}
	}

	return item, nil
}

// Update merges patch into the stored item. An empty patch returns the
// current record unchanged.
func (s *ItemService) Update(ctx context.Context, id string, patch Patch, actorID string) (*Item, error) {
	if !ValidID(id) {
		return nil, notFound()
	}
	if patch.Empty() {
		return s.Get(ctx, id)
	}

	start := time.Now()
	item, err := s.repo.Update(ctx, id, patch, time.Now().UTC())
	s.metrics.ObserveStore("items.update", time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, notFound()
		}
		return nil, apperror.Store("Error updating item", err)
	}

	s.metrics.IncItemMutation("update")
	Invalidate(ctx, s.cache, id)
	Emit(ctx, s.events, activity.NewEvent(activity.EventItemUpdated, id, actorID, patch))

	return item, nil
}

func (s *ItemService) Delete(ctx context.Context, id string, actorID string) error {
	if !ValidID(id) {
		return notFound()
	}

	start := time.Now()
	err := s.repo.Delete(ctx, id)
	s.metrics.ObserveStore("items.delete", time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return notFound()
		}
		return apperror.Store("Error deleting item", err)
	}

	s.metrics.IncItemMutation("delete")
	Invalidate(ctx, s.cache, id)
	Emit(ctx, s.events, activity.NewEvent(activity.EventItemDeleted, id, actorID, nil))

	return nil
}

// generation reports the cache generation a read should fill. Reads skip
// the cache entirely when it cannot be determined.
func generation(ctx context.Context, c cache.Cache) (int64, bool) {
	gen, err := c.Generation(ctx)
	if err != nil {
		logrus.WithError(err).Warn("Failed to read item cache generation")
		return 0, false
	}
	return gen, true
}

// Invalidate retires every cached item and list by advancing the cache
// generation, then drops the entries of the previous generation that
// belonged to id. Failures are logged only.
func Invalidate(ctx context.Context, c cache.Cache, id string) {
	cacheCtx, cancel := context.WithTimeout(ctx, cacheTimeout)
	defer cancel()

	gen, err := c.Bump(cacheCtx)
	if err != nil {
		logrus.WithError(err).WithField("item_id", id).Warn("Failed to invalidate item cache")
		return
	}

	if err := c.Delete(cacheCtx, cache.ItemKey(id, gen-1), cache.ItemListKey(gen-1)); err != nil {
		logrus.WithError(err).WithField("item_id", id).Debug("Failed to drop retired cache entries")
	}
}

// Emit publishes evt. A broker failure never fails the request that
// produced the event.
func Emit(ctx context.Context, p activity.Publisher, evt activity.Event) {
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := p.Publish(pubCtx, evt); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"event_type": evt.Type,
			"item_id":    evt.ItemID,
		}).Warn("Failed to publish activity event")
	}
}
