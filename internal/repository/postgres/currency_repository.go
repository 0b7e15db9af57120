package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cartside/backend/internal/domain"
)

// CurrencyRepository serves the currency_options reference table. Rows are
// seeded by cmd/seed and read-only at runtime.
type CurrencyRepository struct {
	db *pgxpool.Pool
}

func NewCurrencyRepository(db *pgxpool.Pool) *CurrencyRepository {
	return &CurrencyRepository{db: db}
}

const currencyColumns = `currency, symbol, country_code, multiplier`

func scanCurrency(row pgx.Row) (*domain.CurrencyOption, error) {
	option := &domain.CurrencyOption{}
	err := row.Scan(
		&option.Currency,
		&option.Symbol,
		&option.CountryCode,
		&option.Multiplier,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return option, nil
}

func (r *CurrencyRepository) GetByCurrency(code string) (*domain.CurrencyOption, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `SELECT ` + currencyColumns + ` FROM currency_options WHERE currency = $1`
	return scanCurrency(r.db.QueryRow(ctx, query, strings.ToUpper(code)))
}

func (r *CurrencyRepository) GetByCountry(countryCode string) (*domain.CurrencyOption, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `SELECT ` + currencyColumns + ` FROM currency_options WHERE country_code = $1`
	return scanCurrency(r.db.QueryRow(ctx, query, strings.ToUpper(countryCode)))
}

func (r *CurrencyRepository) List() ([]*domain.CurrencyOption, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	query := `SELECT ` + currencyColumns + ` FROM currency_options ORDER BY currency ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var options []*domain.CurrencyOption
	for rows.Next() {
		option := &domain.CurrencyOption{}
		if err := rows.Scan(&option.Currency, &option.Symbol, &option.CountryCode, &option.Multiplier); err != nil {
			return nil, err
		}
		options = append(options, option)
	}
	return options, nil
}
