// Package cached decorates an AdapterPort with a short-TTL Redis cache over
// balance reads. Entitlement caps themselves are never cached; only the raw
// adapter reads are, and only when the deployment explicitly accepts the
// staleness window.
package cached

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"tranchor/internal/entitlement/ports"
	id "tranchor/pkg/domain"
)

const (
	totalKey         = "tranchor:pool:total"
	balanceKeyPrefix = "tranchor:pool:balance:"
)

type Adapter struct {
	next  ports.AdapterPort
	redis *redis.Client
	ttl   time.Duration
}

func New(next ports.AdapterPort, client *redis.Client, ttl time.Duration) *Adapter {
	return &Adapter{next: next, redis: client, ttl: ttl}
}

func (a *Adapter) GetPoolAddress(ctx context.Context) (string, error) {
	return a.next.GetPoolAddress(ctx)
}

// SetPoolAddress rotates the pool and drops all cached valuations, since they
// were computed against the previous pool.
func (a *Adapter) SetPoolAddress(ctx context.Context, addr string) (string, error) {
	prev, err := a.next.SetPoolAddress(ctx, addr)
	if err != nil {
		return "", err
	}
	a.invalidate(ctx)
	return prev, nil
}

func (a *Adapter) GetPoolShare(ctx context.Context, participant id.ParticipantID, maxAmount uint64) (uint64, error) {
	return a.next.GetPoolShare(ctx, participant, maxAmount)
}

func (a *Adapter) GetEntireBalance(ctx context.Context) (uint64, error) {
	return a.cachedRead(ctx, totalKey, a.next.GetEntireBalance)
}

func (a *Adapter) BalanceOf(ctx context.Context, participant id.ParticipantID) (uint64, error) {
	return a.cachedRead(ctx, balanceKeyPrefix+participant.String(), func(ctx context.Context) (uint64, error) {
		return a.next.BalanceOf(ctx, participant)
	})
}

func (a *Adapter) cachedRead(ctx context.Context, key string, read func(context.Context) (uint64, error)) (uint64, error) {
	if cached, err := a.redis.Get(ctx, key).Result(); err == nil {
		if v, perr := strconv.ParseUint(cached, 10, 64); perr == nil {
			return v, nil
		}
	}

	// Cache miss or unreadable value: fall through to the adapter. Redis
	// failures degrade to direct reads rather than failing the operation.
	v, err := read(ctx)
	if err != nil {
		return 0, err
	}
	a.redis.Set(ctx, key, strconv.FormatUint(v, 10), a.ttl)
	return v, nil
}

func (a *Adapter) invalidate(ctx context.Context) {
	iter := a.redis.Scan(ctx, 0, balanceKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		a.redis.Del(ctx, iter.Val())
	}
	a.redis.Del(ctx, totalKey)
}
