package model

import "time"

// PriceQuote is the latest known price for a symbol.
type PriceQuote struct {
	Symbol      string    `json:"symbol"`
	Price       float64   `json:"price"`
	CompanyName string    `json:"companyName"`
	Currency    string    `json:"currency"`
	Timestamp   time.Time `json:"timestamp"`
}

// PriceHistoryPoint is one trading day of OHLCV data.
type PriceHistoryPoint struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// PriceHistory is the daily price series for a symbol over a named period.
// Points are ordered by ascending date with no duplicate dates.
type PriceHistory struct {
	Symbol string              `json:"symbol"`
	Period string              `json:"period"`
	Count  int                 `json:"count"`
	Points []PriceHistoryPoint `json:"points"`
}
