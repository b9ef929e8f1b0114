package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"museum-ticketing/internal/domain/model"
	"museum-ticketing/internal/domain/ports/repository"
	"museum-ticketing/internal/infra/metrics"
	red "museum-ticketing/internal/infra/redis"
)

var _ repository.TicketTypeRepository = (*ticketTypeRepoCacheDecorator)(nil)

// ticketTypeRepoCacheDecorator caches ticket types in redis. Ticket
// types change rarely but are read on every purchase initiation.
type ticketTypeRepoCacheDecorator struct {
	inner repository.TicketTypeRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewTicketTypeRepoCacheDecorator(inner repository.TicketTypeRepository, cache red.RedisClient, ttl time.Duration) repository.TicketTypeRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ticketTypeRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func (d *ticketTypeRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.TicketType, error) {
	key := fmt.Sprintf("ticket_type:%s", id)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		var t model.TicketType
		if json.Unmarshal([]byte(val), &t) == nil {
			metrics.IncCacheRequest("ticket_type", "hit")
			return &t, nil
		}
	} else if err != redis.Nil {
		// Redis trouble is not a reason to fail the read; fall through.
	}

	metrics.IncCacheRequest("ticket_type", "miss")
	t, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if bytes, err := json.Marshal(t); err == nil {
		_ = d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return t, nil
}

// Writes invalidate both the record and its museum's listing.
func (d *ticketTypeRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, t *model.TicketType) error {
	_ = d.cache.Del(ctx, fmt.Sprintf("ticket_type:%s", t.ID), museumTicketsKey(t.MuseumID))
	return d.inner.Save(ctx, tx, t)
}

func (d *ticketTypeRepoCacheDecorator) ListByMuseum(ctx context.Context, tx repository.Tx, museumID string) ([]*model.TicketType, error) {
	key := museumTicketsKey(museumID)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		var list []*model.TicketType
		if json.Unmarshal([]byte(val), &list) == nil {
			metrics.IncCacheRequest("ticket_type_list", "hit")
			return list, nil
		}
	}

	metrics.IncCacheRequest("ticket_type_list", "miss")
	list, err := d.inner.ListByMuseum(ctx, tx, museumID)
	if err != nil {
		return nil, err
	}
	if bytes, err := json.Marshal(list); err == nil {
		_ = d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return list, nil
}

func museumTicketsKey(museumID string) string {
	return fmt.Sprintf("ticket_types:museum:%s", museumID)
}
