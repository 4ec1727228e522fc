package domain

import "time"

// Rates maps a currency code to its exchange rate relative to the
// current base currency.
type Rates map[string]float64

// Clone returns an independent copy of the rate map.
func (r Rates) Clone() Rates {
	out := make(Rates, len(r))
	for code, rate := range r {
		out[code] = rate
	}
	return out
}

type Currency struct {
	Code           string
	Name           string
	Symbol         string
	ExchangeRate   float64
	IsBaseCurrency bool
	LastUpdated    time.Time
}

// DefaultCurrencies is the catalogue shipped with the application.
// ExchangeRate starts at zero and is filled by the first rate refresh.
func DefaultCurrencies() []Currency {
	return []Currency{
		{Code: "USD", Name: "US Dollar", Symbol: "$", ExchangeRate: 1, IsBaseCurrency: true},
		{Code: "EUR", Name: "Euro", Symbol: "€"},
		{Code: "GBP", Name: "British Pound", Symbol: "£"},
		{Code: "KES", Name: "Kenyan Shilling", Symbol: "KSh"},
		{Code: "UGX", Name: "Ugandan Shilling", Symbol: "USh"},
		{Code: "TZS", Name: "Tanzanian Shilling", Symbol: "TSh"},
		{Code: "NGN", Name: "Nigerian Naira", Symbol: "₦"},
		{Code: "ZAR", Name: "South African Rand", Symbol: "R"},
	}
}
