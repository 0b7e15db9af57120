package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartside/backend/internal/domain"
	"github.com/cartside/backend/pkg/geoip"
	"github.com/cartside/backend/pkg/logger"
)

type stubGeo struct {
	countryByIP map[string]string
}

func (g *stubGeo) Lookup(ip string) (*geoip.Info, error) {
	country, ok := g.countryByIP[ip]
	if !ok {
		return nil, errors.New("lookup failed")
	}
	return &geoip.Info{Status: "success", Query: ip, CountryCode: country}, nil
}

func newCatalogFixture(geo GeoResolver) (*CatalogUsecase, *fakeProductRepo) {
	products := &fakeProductRepo{}
	categories := &fakeCategoryRepo{}
	pricing := newPricingFixture(nil)
	uc := NewCatalogUsecase(products, categories, pricing, geo, logger.NewNop())
	return uc, products
}

func TestShopperCurrency_OverrideWins(t *testing.T) {
	uc, _ := newCatalogFixture(&stubGeo{countryByIP: map[string]string{"1.2.3.4": "DE"}})

	// The query override beats whatever geolocation would say.
	currency := uc.ShopperCurrency(context.Background(), "1.2.3.4", "GBP")
	assert.Equal(t, "GBP", currency.Currency)
}

func TestShopperCurrency_GeolocatesWithoutOverride(t *testing.T) {
	uc, _ := newCatalogFixture(&stubGeo{countryByIP: map[string]string{"1.2.3.4": "DE"}})

	currency := uc.ShopperCurrency(context.Background(), "1.2.3.4", "")
	assert.Equal(t, "EUR", currency.Currency)
}

func TestShopperCurrency_FallsBackToUSD(t *testing.T) {
	uc, _ := newCatalogFixture(&stubGeo{})

	tests := []struct {
		name     string
		ip       string
		override string
	}{
		{"geo lookup fails", "9.9.9.9", ""},
		{"unknown override and no geo match", "9.9.9.9", "XXX"},
		{"no ip at all", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			currency := uc.ShopperCurrency(context.Background(), tt.ip, tt.override)
			assert.Equal(t, USDOption, currency)
		})
	}
}

func TestShopperCurrency_CountryWithoutCurrencyOption(t *testing.T) {
	uc, _ := newCatalogFixture(&stubGeo{countryByIP: map[string]string{"1.2.3.4": "BR"}})

	currency := uc.ShopperCurrency(context.Background(), "1.2.3.4", "")
	assert.Equal(t, USDOption, currency)
}

func TestListProducts_ResolvesPricingPerProduct(t *testing.T) {
	uc, products := newCatalogFixture(nil)

	require.NoError(t, products.Create(&domain.Product{
		Name: "Mug",
		Variations: []domain.Variation{{
			SKU:     "mug-01",
			Pricing: []domain.Pricing{{CountryCode: "US", Currency: "USD", Symbol: "$", Original: 100, Sale: salePtr(80)}},
		}},
	}))

	target := domain.CurrencyOption{Currency: "EUR", Symbol: "€", CountryCode: "DE", Multiplier: 0.9}
	list, err := uc.ListProducts(context.Background(), target, "", 0, 0)
	require.NoError(t, err)
	require.Len(t, list.Products, 1)
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, target, list.Currency)

	variation := list.Products[0].Variations[0]
	assert.InDelta(t, 90.0, variation.Pricing.Original, 1e-9)
	require.NotNil(t, variation.Pricing.Sale)
	assert.InDelta(t, 72.0, *variation.Pricing.Sale, 1e-9)
}

func TestGetProduct_NotFound(t *testing.T) {
	uc, _ := newCatalogFixture(nil)

	_, err := uc.GetProduct(context.Background(), uuid.New(), USDOption)
	assert.ErrorIs(t, err, ErrProductNotFound)
}
