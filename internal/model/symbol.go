package model

import "time"

// SymbolMetadata is the resolved identity of a symbol for provider queries.
// It is recomputed per query from the stocks and exchanges reference tables
// and never persisted as a row of its own.
type SymbolMetadata struct {
	Symbol           string
	Currency         string
	ExchangeTitle    string
	ExchangeCode     string
	ExchangeTimezone string
	AssetType        string
	Start            time.Time
	End              time.Time
}

// NewSymbolMetadata returns metadata for symbol with the default query
// window of the trailing three months.
func NewSymbolMetadata(symbol string) SymbolMetadata {
	now := time.Now().UTC()
	return SymbolMetadata{
		Symbol: symbol,
		Start:  now.AddDate(0, -3, 0),
		End:    now,
	}
}

// Equity is one symbol reference record from the upstream catalog.
type Equity struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
	Exchange string `json:"exchange"`
	MicCode  string `json:"mic_code"`
	Country  string `json:"country"`
	Type     string `json:"type"`
	FigiCode string `json:"figi_code"`
	CfiCode  string `json:"cfi_code"`
	ISIN     string `json:"isin"`
	CUSIP    string `json:"cusip"`
}

// Exchange is one exchange reference record.
type Exchange struct {
	Title    string `json:"title"`
	Name     string `json:"name"`
	Code     string `json:"code"`
	Country  string `json:"country"`
	Timezone string `json:"timezone"`
}

// SymbolAlias maps a vendor-specific spelling to a description that can be
// matched against the equity catalog.
type SymbolAlias struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// Equities is the JSON seed-file wrapper for equity records.
type Equities struct {
	Data   []Equity `json:"data"`
	Count  uint64   `json:"count"`
	Status string   `json:"status"`
}

// Exchanges is the JSON seed-file wrapper for exchange records.
type Exchanges struct {
	Data   []Exchange `json:"data"`
	Status string     `json:"status"`
}

// SymbolAliases is the JSON seed-file wrapper for alias records.
type SymbolAliases struct {
	Data   []SymbolAlias `json:"data"`
	Count  uint64        `json:"count"`
	Status string        `json:"status"`
}
