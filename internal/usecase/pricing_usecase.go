package usecase

import (
	"context"
	"errors"

	"github.com/cartside/backend/internal/domain"
	"github.com/cartside/backend/internal/rates"
	"github.com/cartside/backend/pkg/logger"
)

var ErrCurrencyNotFound = errors.New("currency not found")

// USDOption is the default display currency when nothing better can be
// resolved for a shopper.
var USDOption = domain.CurrencyOption{
	Currency:    "USD",
	Symbol:      "$",
	CountryCode: "US",
	Multiplier:  1,
}

// PricingUsecase computes shopper-facing prices. Localized pricing entries
// are used verbatim; everything else is synthesized from the USD entry and
// the currency multiplier.
type PricingUsecase struct {
	currencies domain.CurrencyRepository
	rates      *rates.Cache
	log        logger.Logger
}

func NewPricingUsecase(currencies domain.CurrencyRepository, rateCache *rates.Cache, log logger.Logger) *PricingUsecase {
	return &PricingUsecase{
		currencies: currencies,
		rates:      rateCache,
		log:        log,
	}
}

// CurrencyInfo resolves the display currency for a code, refreshing the
// multiplier from the rate cache. The stored reference multiplier is the
// fallback when the live rate is unavailable.
func (u *PricingUsecase) CurrencyInfo(ctx context.Context, code string) (*domain.CurrencyOption, error) {
	option, err := u.currencies.GetByCurrency(code)
	if err != nil {
		return nil, err
	}
	if option == nil {
		return nil, ErrCurrencyNotFound
	}
	option.Multiplier = u.rates.Multiplier(ctx, option.Currency, option.Multiplier)
	return option, nil
}

// CurrencyForCountry is CurrencyInfo keyed by ISO country code, used for
// geolocation-driven resolution.
func (u *PricingUsecase) CurrencyForCountry(ctx context.Context, countryCode string) (*domain.CurrencyOption, error) {
	option, err := u.currencies.GetByCountry(countryCode)
	if err != nil {
		return nil, err
	}
	if option == nil {
		return nil, ErrCurrencyNotFound
	}
	option.Multiplier = u.rates.Multiplier(ctx, option.Currency, option.Multiplier)
	return option, nil
}

func (u *PricingUsecase) ListCurrencies() ([]*domain.CurrencyOption, error) {
	return u.currencies.List()
}

// Resolve produces one ResolvedVariation per input variation, order
// preserved. Per variation: a pricing entry matching the target country is
// used verbatim; otherwise the USD entry is multiplied out; a variation with
// neither gets empty pricing and the batch continues. A panic anywhere
// degrades the whole batch to empty pricing instead of propagating.
func (u *PricingUsecase) Resolve(currency domain.CurrencyOption, product *domain.Product) (resolved []domain.ResolvedVariation) {
	defer func() {
		if r := recover(); r != nil {
			u.log.Error("pricing resolution panicked, degrading batch", "product_id", product.ID, "panic", r)
			resolved = emptyPricing(product.Variations)
		}
	}()

	resolved = make([]domain.ResolvedVariation, 0, len(product.Variations))
	for _, variation := range product.Variations {
		resolved = append(resolved, u.resolveVariation(currency, variation))
	}
	return resolved
}

func (u *PricingUsecase) resolveVariation(currency domain.CurrencyOption, variation domain.Variation) domain.ResolvedVariation {
	out := domain.ResolvedVariation{
		SKU:        variation.SKU,
		Attributes: variation.Attributes,
		Stock:      variation.Stock,
	}

	for _, pricing := range variation.Pricing {
		if pricing.CountryCode == currency.CountryCode {
			out.Pricing = pricing
			return out
		}
	}

	var usd *domain.Pricing
	for i := range variation.Pricing {
		if variation.Pricing[i].Currency == "USD" {
			usd = &variation.Pricing[i]
			break
		}
	}
	if usd == nil {
		u.log.Warn("no fallback USD pricing for variation", "sku", variation.SKU)
		return out
	}

	converted := domain.Pricing{
		CountryCode: currency.CountryCode,
		Currency:    currency.Currency,
		Symbol:      currency.Symbol,
		Original:    usd.Original * currency.Multiplier,
	}
	if usd.Sale != nil {
		sale := *usd.Sale * currency.Multiplier
		converted.Sale = &sale
	}
	out.Pricing = converted
	return out
}

func emptyPricing(variations []domain.Variation) []domain.ResolvedVariation {
	out := make([]domain.ResolvedVariation, 0, len(variations))
	for _, variation := range variations {
		out = append(out, domain.ResolvedVariation{
			SKU:        variation.SKU,
			Attributes: variation.Attributes,
			Stock:      variation.Stock,
		})
	}
	return out
}
