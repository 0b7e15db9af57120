package domain

// CurrencyOption is read-only reference data describing a supported display
// currency. Multiplier is the stored USD conversion factor used as the
// fallback when the live exchange-rate lookup is unavailable.
type CurrencyOption struct {
	Currency    string  `json:"currency"`
	Symbol      string  `json:"symbol"`
	CountryCode string  `json:"countryCode"`
	Multiplier  float64 `json:"multiplier"`
}

type CurrencyRepository interface {
	GetByCurrency(code string) (*CurrencyOption, error)
	GetByCountry(countryCode string) (*CurrencyOption, error)
	List() ([]*CurrencyOption, error)
}
