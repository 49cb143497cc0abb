package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-marketplace/internal/auth"
	"github.com/ariefcatur/go-marketplace/internal/orders"
	"github.com/ariefcatur/go-marketplace/internal/sellerstats"
	"github.com/redis/go-redis/v9"
	"strconv"
	"time"
)

var (
	_ auth.SessionStore  = (*Sessions)(nil)
	_ orders.Idempotency = (*Idempotency)(nil)
	_ orders.DetailCache = (*OrderCache)(nil)
	_ sellerstats.Dedup  = (*Dedup)(nil)
)

type Sessions struct{ RDB *redis.Client }

func (s *Sessions) Save(ctx context.Context, token, userID string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = TTLSession
	}
	return s.RDB.Set(ctx, fmt.Sprintf(KeySession, token), userID, ttl).Err()
}

func (s *Sessions) Lookup(ctx context.Context, token string) (string, error) {
	id, err := s.RDB.Get(ctx, fmt.Sprintf(KeySession, token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", auth.ErrNoSession
	}
	return id, err
}

const pending = "pending"

// Idempotency keeps client order keys per user. A key holds "pending" while its placement runs
// and the order id afterwards.
type Idempotency struct {
	RDB *redis.Client
	TTL time.Duration
}

func (i *Idempotency) ttl() time.Duration {
	if i.TTL <= 0 {
		return TTLIdempotency
	}
	return i.TTL
}

func (i *Idempotency) Reserve(ctx context.Context, scope, key string) (int64, bool, error) {
	k := fmt.Sprintf(KeyIdemOrderCreate, scope, key)
	// the key can expire between SETNX and GET, so try twice
	for range 2 {
		ok, err := i.RDB.SetNX(ctx, k, pending, i.ttl()).Result()
		if err != nil {
			return 0, false, err
		}
		if ok {
			return 0, true, nil
		}
		v, err := i.RDB.Get(ctx, k).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return 0, false, err
		}
		if v == pending {
			return 0, false, nil
		}
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false, fmt.Errorf("idempotency key %s holds %q: %w", k, v, err)
		}
		return id, false, nil
	}
	return 0, false, nil
}

func (i *Idempotency) Complete(ctx context.Context, scope, key string, orderID int64) error {
	return i.RDB.Set(ctx, fmt.Sprintf(KeyIdemOrderCreate, scope, key), orderID, i.ttl()).Err()
}

func (i *Idempotency) Release(ctx context.Context, scope, key string) error {
	return i.RDB.Del(ctx, fmt.Sprintf(KeyIdemOrderCreate, scope, key)).Err()
}

// OrderCache holds order details as JSON tagged with the generation they were read under.
// An entry whose generation is behind the counter is a miss.
type OrderCache struct {
	RDB *redis.Client
	TTL time.Duration
}

type cachedOrder struct {
	Gen   int64         `json:"gen"`
	Order *orders.Order `json:"order"`
}

func (c *OrderCache) ttl() time.Duration {
	if c.TTL > 0 {
		return c.TTL
	}
	return TTLOrderCache
}

func (c *OrderCache) Get(ctx context.Context, id int64) (*orders.Order, int64, error) {
	vals, err := c.RDB.MGet(ctx, fmt.Sprintf(KeyOrderGen, id), fmt.Sprintf(KeyOrder, id)).Result()
	if err != nil {
		return nil, 0, err
	}
	var gen int64
	if s, ok := vals[0].(string); ok {
		if gen, err = strconv.ParseInt(s, 10, 64); err != nil {
			return nil, 0, fmt.Errorf("parse order %d generation: %w", id, err)
		}
	}
	raw, ok := vals[1].(string)
	if !ok {
		return nil, gen, nil
	}
	var entry cachedOrder
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, gen, fmt.Errorf("decode cached order %d: %w", id, err)
	}
	if entry.Gen != gen || entry.Order == nil {
		return nil, gen, nil
	}
	return entry.Order, gen, nil
}

func (c *OrderCache) Put(ctx context.Context, o *orders.Order, gen int64) error {
	b, err := json.Marshal(cachedOrder{Gen: gen, Order: o})
	if err != nil {
		return err
	}
	return c.RDB.Set(ctx, fmt.Sprintf(KeyOrder, o.ID), b, c.ttl()).Err()
}

// Invalidate bumps the generation and drops the entry. The counter outlives any entry.
func (c *OrderCache) Invalidate(ctx context.Context, id int64) error {
	genKey := fmt.Sprintf(KeyOrderGen, id)
	_, err := c.RDB.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, genKey)
		p.Expire(ctx, genKey, max(TTLOrderGen, 2*c.ttl()))
		p.Del(ctx, fmt.Sprintf(KeyOrder, id))
		return nil
	})
	return err
}

type Dedup struct{ RDB *redis.Client }

func (d *Dedup) FirstSeen(ctx context.Context, service, id string) (bool, error) {
	return d.RDB.SetNX(ctx, fmt.Sprintf(KeyDedup, service, id), 1, TTLDedup).Result()
}

func (d *Dedup) Forget(ctx context.Context, service, id string) error {
	return d.RDB.Del(ctx, fmt.Sprintf(KeyDedup, service, id)).Err()
}
