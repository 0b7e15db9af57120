// Command seed applies the schema and loads reference data: supported
// currencies, the starter category set, and a small demo catalog.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cartside/backend/internal/config"
	"github.com/cartside/backend/internal/domain"
	"github.com/cartside/backend/internal/repository/postgres"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	schema, err := os.ReadFile("migrations/schema.sql")
	if err != nil {
		log.Fatalf("Failed to read schema: %v", err)
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}
	log.Println("Schema applied")

	seedCurrencies(ctx, pool)

	categoryRepo := postgres.NewCategoryRepository(pool)
	seedCategories(categoryRepo)

	productRepo := postgres.NewProductRepository(pool)
	seedProducts(productRepo)

	log.Println("Seed complete")
}

// Stored multipliers are snapshots used as fallbacks when the live
// exchange-rate service is down; the server refreshes them at request time.
var currencies = []domain.CurrencyOption{
	{Currency: "USD", Symbol: "$", CountryCode: "US", Multiplier: 1},
	{Currency: "EUR", Symbol: "€", CountryCode: "DE", Multiplier: 0.92},
	{Currency: "GBP", Symbol: "£", CountryCode: "GB", Multiplier: 0.79},
	{Currency: "JPY", Symbol: "¥", CountryCode: "JP", Multiplier: 147.0},
	{Currency: "INR", Symbol: "₹", CountryCode: "IN", Multiplier: 83.2},
	{Currency: "CAD", Symbol: "CA$", CountryCode: "CA", Multiplier: 1.36},
	{Currency: "AUD", Symbol: "A$", CountryCode: "AU", Multiplier: 1.52},
}

func seedCurrencies(ctx context.Context, pool *pgxpool.Pool) {
	for _, c := range currencies {
		_, err := pool.Exec(ctx, `
			INSERT INTO currency_options (currency, symbol, country_code, multiplier)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (currency) DO UPDATE
			SET symbol = EXCLUDED.symbol, country_code = EXCLUDED.country_code, multiplier = EXCLUDED.multiplier
		`, c.Currency, c.Symbol, c.CountryCode, c.Multiplier)
		if err != nil {
			log.Fatalf("Failed to seed currency %s: %v", c.Currency, err)
		}
	}
	log.Printf("Seeded %d currencies", len(currencies))
}

func seedCategories(repo *postgres.CategoryRepository) {
	names := []struct{ name, description string }{
		{"Electronics", "Phones, audio and accessories"},
		{"Fashion", "Apparel and footwear"},
		{"Home", "Furniture and decor"},
		{"Beauty", "Perfume and skincare"},
	}
	for _, c := range names {
		if err := repo.Create(&domain.Category{Name: c.name, Description: c.description, IsActive: true}); err != nil {
			log.Fatalf("Failed to seed category %s: %v", c.name, err)
		}
	}
	log.Printf("Seeded %d categories", len(names))
}

func seedProducts(repo *postgres.ProductRepository) {
	sale := func(v float64) *float64 { return &v }

	products := []*domain.Product{
		{
			Name:        "Amazon wireless speakers",
			Description: "Portable bluetooth speakers with 24h battery life",
			Category:    "Electronics",
			Images:      []string{"/assets/images/card-banner-2.webp"},
			Variations: []domain.Variation{
				{
					SKU:   "SPK-BLK",
					Stock: 120,
					Pricing: []domain.Pricing{
						{CountryCode: "US", Currency: "USD", Symbol: "$", Original: 100, Sale: sale(80)},
						{CountryCode: "IN", Currency: "INR", Symbol: "₹", Original: 8299, Sale: sale(6699)},
					},
				},
				{
					SKU:   "SPK-WHT",
					Stock: 45,
					Pricing: []domain.Pricing{
						{CountryCode: "US", Currency: "USD", Symbol: "$", Original: 100},
					},
				},
			},
		},
		{
			Name:        "GUCCI INTENSE OUD EDP",
			Description: "Eau de parfum, 90ml",
			Category:    "Beauty",
			Images:      []string{"/assets/images/card-banner-3.webp"},
			Variations: []domain.Variation{
				{
					SKU:   "OUD-90",
					Stock: 18,
					Pricing: []domain.Pricing{
						{CountryCode: "US", Currency: "USD", Symbol: "$", Original: 155, Sale: sale(129)},
					},
				},
			},
		},
	}

	for _, p := range products {
		if err := repo.Create(p); err != nil {
			log.Fatalf("Failed to seed product %s: %v", p.Name, err)
		}
	}
	log.Printf("Seeded %d products", len(products))
}
