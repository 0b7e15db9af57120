// Package rates memoizes currency conversion multipliers fetched from the
// external exchange-rate service. The cache is an injected object rather than
// process-global state so tests and replicas each own their instance.
package rates

import (
	"context"
	"strings"

	"github.com/cartside/backend/pkg/logger"
)

// Provider fetches a live USD multiplier for a currency code.
// *exchangerate.Client satisfies it.
type Provider interface {
	Rate(code string) (float64, error)
}

type Cache struct {
	store    Store
	provider Provider
	log      logger.Logger
}

func NewCache(store Store, provider Provider, log logger.Logger) *Cache {
	return &Cache{store: store, provider: provider, log: log}
}

// Multiplier returns the USD conversion multiplier for code. Cache hits
// return immediately; misses fetch from the provider and store the result.
// When the fetch fails the supplied fallback is returned without being
// cached, so the next call retries the network. Store failures degrade the
// same way and never surface to the caller.
func (c *Cache) Multiplier(ctx context.Context, code string, fallback float64) float64 {
	code = strings.ToUpper(code)
	if code == "" {
		return fallback
	}
	if code == "USD" {
		return 1
	}

	rate, ok, err := c.store.Lookup(ctx, code)
	if err != nil {
		c.log.Warn("rate store lookup failed", "currency", code, "error", err)
	} else if ok {
		return rate
	}

	rate, err = c.provider.Rate(code)
	if err != nil {
		c.log.Error("exchange rate fetch failed", "currency", code, "error", err)
		return fallback
	}

	if err := c.store.Save(ctx, code, rate); err != nil {
		c.log.Warn("rate store save failed", "currency", code, "error", err)
	}
	return rate
}
