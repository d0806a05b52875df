package interaction

import (
	"context"
	"errors"
	"time"

	"item_catalog/internal/activity"
	"item_catalog/internal/apperror"
	"item_catalog/internal/cache"
	"item_catalog/internal/item"
	"item_catalog/internal/observability"
)

// Appender is the part of the item store that grows comment and rating
// lists in place.
type Appender interface {
	AppendComment(ctx context.Context, id, comment string, at time.Time) (*item.Item, error)
	AppendRating(ctx context.Context, id string, rating float64, at time.Time) (*item.Item, error)
}

type InteractionServiceInterface interface {
	AddComment(ctx context.Context, itemID, comment string) (*item.Item, error)
	AddRating(ctx context.Context, itemID string, rating float64) (*item.Item, error)
}

type InteractionService struct {
	store   Appender
	cache   cache.Cache
	events  activity.Publisher
	metrics *observability.Metrics
}

func NewInteractionService(store Appender, itemCache cache.Cache, events activity.Publisher, metrics *observability.Metrics) InteractionServiceInterface {
	if itemCache == nil {
		itemCache = cache.NopCache{}
	}
	if events == nil {
		events = activity.NopPublisher{}
	}
	return &InteractionService{
		store:   store,
		cache:   itemCache,
		events:  events,
		metrics: metrics,
	}
}

func (s *InteractionService) AddComment(ctx context.Context, itemID, comment string) (*item.Item, error) {
	if !item.ValidID(itemID) {
		return nil, apperror.NotFound("Item not found")
	}

	start := time.Now()
	updated, err := s.store.AppendComment(ctx, itemID, comment, time.Now().UTC())
	s.metrics.ObserveStore("items.append_comment", time.Since(start).Seconds())
	if err != nil {
		return nil, translate(err, "Error adding comment")
	}

	s.after(ctx, "comment", activity.NewEvent(activity.EventItemCommented, itemID, "", map[string]string{"comment": comment}))
	return updated, nil
}

func (s *InteractionService) AddRating(ctx context.Context, itemID string, rating float64) (*item.Item, error) {
	if !item.ValidID(itemID) {
		return nil, apperror.NotFound("Item not found")
	}

	start := time.Now()
	updated, err := s.store.AppendRating(ctx, itemID, rating, time.Now().UTC())
	s.metrics.ObserveStore("items.append_rating", time.Since(start).Seconds())
	if err != nil {
		return nil, translate(err, "Error adding rating")
	}

	s.after(ctx, "rating", activity.NewEvent(activity.EventItemRated, itemID, "", map[string]float64{"rating": rating}))
	return updated, nil
}

func (s *InteractionService) after(ctx context.Context, kind string, evt activity.Event) {
	s.metrics.IncInteraction(kind)
	item.Invalidate(ctx, s.cache, evt.ItemID)
	item.Emit(ctx, s.events, evt)
}

func translate(err error, message string) error {
	if errors.Is(err, apperror.ErrNotFound) {
		return apperror.NotFound("Item not found")
	}
	return apperror.Store(message, err)
}
