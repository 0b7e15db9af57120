package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/cartside/backend/internal/domain"
	"github.com/cartside/backend/pkg/geoip"
	"github.com/cartside/backend/pkg/logger"
)

var ErrProductNotFound = errors.New("product not found")

// GeoResolver looks up request geography. *geoip.Client satisfies it.
type GeoResolver interface {
	Lookup(ip string) (*geoip.Info, error)
}

// ResolvedProduct is a Product with its variations narrowed to the single
// price shown to the requesting shopper.
type ResolvedProduct struct {
	ID          uuid.UUID                  `json:"id"`
	Name        string                     `json:"name"`
	Description string                     `json:"description,omitempty"`
	Category    string                     `json:"category,omitempty"`
	Images      []string                   `json:"images,omitempty"`
	Variations  []domain.ResolvedVariation `json:"variations"`
	CreatedAt   time.Time                  `json:"created_at"`
}

type ProductList struct {
	Products []*ResolvedProduct     `json:"products"`
	Total    int                    `json:"total"`
	Currency domain.CurrencyOption  `json:"currency"`
}

type CatalogUsecase struct {
	products   domain.ProductRepository
	categories domain.CategoryRepository
	pricing    *PricingUsecase
	geo        GeoResolver
	log        logger.Logger
}

func NewCatalogUsecase(
	products domain.ProductRepository,
	categories domain.CategoryRepository,
	pricing *PricingUsecase,
	geo GeoResolver,
	log logger.Logger,
) *CatalogUsecase {
	return &CatalogUsecase{
		products:   products,
		categories: categories,
		pricing:    pricing,
		geo:        geo,
		log:        log,
	}
}

// ShopperCurrency picks the display currency for a request. An explicit
// currency override wins; otherwise the client IP is geolocated and mapped
// through the currency table. Every failure falls back to USD — currency
// resolution must never block a catalog response.
func (u *CatalogUsecase) ShopperCurrency(ctx context.Context, ip, currencyOverride string) domain.CurrencyOption {
	if currencyOverride != "" {
		option, err := u.pricing.CurrencyInfo(ctx, currencyOverride)
		if err == nil {
			return *option
		}
		u.log.Warn("currency override not resolvable, falling back", "currency", currencyOverride, "error", err)
	}

	if u.geo != nil && ip != "" {
		info, err := u.geo.Lookup(ip)
		if err == nil {
			option, cerr := u.pricing.CurrencyForCountry(ctx, info.CountryCode)
			if cerr == nil {
				return *option
			}
			u.log.Debug("no currency option for country", "country", info.CountryCode)
		}
	}

	return USDOption
}

func (u *CatalogUsecase) ListProducts(ctx context.Context, currency domain.CurrencyOption, category string, limit, offset int) (*ProductList, error) {
	products, total, err := u.products.List(category, limit, offset)
	if err != nil {
		return nil, err
	}

	resolved := make([]*ResolvedProduct, 0, len(products))
	for _, product := range products {
		resolved = append(resolved, u.resolve(currency, product))
	}

	return &ProductList{
		Products: resolved,
		Total:    total,
		Currency: currency,
	}, nil
}

func (u *CatalogUsecase) GetProduct(ctx context.Context, id uuid.UUID, currency domain.CurrencyOption) (*ResolvedProduct, error) {
	product, err := u.products.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return u.resolve(currency, product), nil
}

func (u *CatalogUsecase) GetCategories() ([]*domain.Category, error) {
	return u.categories.ListActive()
}

// CreateProduct is the admin-only catalog write path.
func (u *CatalogUsecase) CreateProduct(product *domain.Product) error {
	return u.products.Create(product)
}

func (u *CatalogUsecase) resolve(currency domain.CurrencyOption, product *domain.Product) *ResolvedProduct {
	return &ResolvedProduct{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Category:    product.Category,
		Images:      product.Images,
		Variations:  u.pricing.Resolve(currency, product),
		CreatedAt:   product.CreatedAt,
	}
}
