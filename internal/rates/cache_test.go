package rates

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartside/backend/pkg/logger"
)

type countingProvider struct {
	rates map[string]float64
	calls int
	err   error
}

func (p *countingProvider) Rate(code string) (float64, error) {
	p.calls++
	if p.err != nil {
		return 0, p.err
	}
	rate, ok := p.rates[code]
	if !ok {
		return 0, errors.New("no rate")
	}
	return rate, nil
}

func TestMultiplier_MemoizesFetch(t *testing.T) {
	t.Parallel()

	provider := &countingProvider{rates: map[string]float64{"EUR": 0.92}}
	cache := NewCache(NewMemoryStore(0), provider, logger.NewNop())

	ctx := context.Background()
	first := cache.Multiplier(ctx, "EUR", 1)
	second := cache.Multiplier(ctx, "EUR", 1)

	assert.Equal(t, 0.92, first)
	assert.Equal(t, 0.92, second)
	assert.Equal(t, 1, provider.calls, "second call must be served from the cache")
}

func TestMultiplier_FallbackNotCached(t *testing.T) {
	t.Parallel()

	provider := &countingProvider{err: errors.New("rate service down")}
	cache := NewCache(NewMemoryStore(0), provider, logger.NewNop())

	ctx := context.Background()
	assert.Equal(t, 1.5, cache.Multiplier(ctx, "EUR", 1.5))

	// The failure must not be cached: the provider recovers and the next
	// call retries the network.
	provider.err = nil
	provider.rates = map[string]float64{"EUR": 0.92}
	assert.Equal(t, 0.92, cache.Multiplier(ctx, "EUR", 1.5))
	assert.Equal(t, 2, provider.calls)
}

func TestMultiplier_USDShortCircuits(t *testing.T) {
	t.Parallel()

	provider := &countingProvider{}
	cache := NewCache(NewMemoryStore(0), provider, logger.NewNop())

	assert.Equal(t, float64(1), cache.Multiplier(context.Background(), "USD", 2))
	assert.Equal(t, 0, provider.calls)
}

func TestMultiplier_EmptyCodeReturnsFallback(t *testing.T) {
	t.Parallel()

	provider := &countingProvider{}
	cache := NewCache(NewMemoryStore(0), provider, logger.NewNop())

	assert.Equal(t, 1.25, cache.Multiplier(context.Background(), "", 1.25))
	assert.Equal(t, 0, provider.calls)
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(10 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "EUR", 0.92))

	_, ok, err := store.Lookup(ctx, "EUR")
	require.NoError(t, err)
	assert.True(t, ok)

	time.Sleep(20 * time.Millisecond)

	_, ok, err = store.Lookup(ctx, "EUR")
	require.NoError(t, err)
	assert.False(t, ok, "entry should have expired")
}

func TestMemoryStore_CaseInsensitiveCodes(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(0)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "eur", 0.92))

	rate, ok, err := store.Lookup(ctx, "EUR")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0.92, rate)
}
