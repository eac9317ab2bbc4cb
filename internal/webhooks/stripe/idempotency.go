package stripewebhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kaoruharada/marketcore-backend/pkg/redis"
)

// IdempotencyGuard suppresses duplicate webhook deliveries. Stripe retries
// aggressively, so the first delivery of an event ID claims a redis key and
// every later delivery sees it and gets skipped. The key expires after ttl;
// a replay older than that is re-processed, which handlers must tolerate.
type IdempotencyGuard struct {
	store     redis.IdempotencyStore
	ttl       time.Duration
	namespace string
}

func NewIdempotencyGuard(store redis.IdempotencyStore, ttl time.Duration, namespace string) (*IdempotencyGuard, error) {
	switch {
	case store == nil:
		return nil, errors.New("idempotency store is required")
	case ttl < 0:
		return nil, errors.New("ttl must be non-negative")
	case namespace == "":
		return nil, errors.New("namespace is required")
	}
	return &IdempotencyGuard{store: store, ttl: ttl, namespace: namespace}, nil
}

// CheckAndMark claims eventID. It reports true when a previous delivery
// already holds the claim.
func (g *IdempotencyGuard) CheckAndMark(ctx context.Context, eventID string) (bool, error) {
	key, err := g.key(eventID)
	if err != nil {
		return false, err
	}
	claimed, err := g.store.SetNX(ctx, key, "1", g.ttl)
	if err != nil {
		return false, fmt.Errorf("claim webhook event %s: %w", eventID, err)
	}
	return !claimed, nil
}

// Delete releases the claim so a failed handler sees the next retry fresh.
func (g *IdempotencyGuard) Delete(ctx context.Context, eventID string) error {
	key, err := g.key(eventID)
	if err != nil {
		return err
	}
	return g.store.Del(ctx, key)
}

func (g *IdempotencyGuard) key(eventID string) (string, error) {
	if eventID == "" {
		return "", errors.New("event id is required")
	}
	return g.store.IdempotencyKey(g.namespace, eventID), nil
}
