package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"StockPulse/internal/model"
)

// AlphaVantage implements Provider using the Alpha Vantage time series
// API.
type AlphaVantage struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

// NewAlphaVantage creates an Alpha Vantage provider.
func NewAlphaVantage(apiKey, proxyURL string) *AlphaVantage {
	return &AlphaVantage{
		APIKey:  apiKey,
		BaseURL: "https://www.alphavantage.co",
		Client:  newClient(proxyURL),
	}
}

func (p *AlphaVantage) Name() string { return "alphavantage" }

// avBar is one entry of the keyed time series maps.
type avBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

// avResponse carries both intraday and daily payloads; only one series
// map is populated per call. Note and Information signal quota
// exhaustion.
type avResponse struct {
	Intraday     map[string]avBar `json:"Time Series (1min)"`
	Daily        map[string]avBar `json:"Time Series (Daily)"`
	Note         string           `json:"Note"`
	Information  string           `json:"Information"`
	ErrorMessage string           `json:"Error Message"`
}

func (p *AlphaVantage) fetch(ctx context.Context, query string, layout string, pick func(avResponse) map[string]avBar) ([]model.RawBar, error) {
	u := fmt.Sprintf("%s/query?%s&apikey=%s", p.BaseURL, query, p.APIKey)

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alphavantage fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("alphavantage read body: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alphavantage: status %d, body: %s", resp.StatusCode, string(body))
	}

	var decoded avResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("alphavantage decode: %w", err)
	}
	if decoded.Note != "" || decoded.Information != "" {
		return nil, ErrRateLimited
	}
	if decoded.ErrorMessage != "" {
		return nil, fmt.Errorf("alphavantage api error: %s", decoded.ErrorMessage)
	}
	entries := pick(decoded)
	if len(entries) == 0 {
		return nil, fmt.Errorf("alphavantage: no data returned")
	}

	stamps := make([]string, 0, len(entries))
	for s := range entries {
		stamps = append(stamps, s)
	}
	sort.Strings(stamps)

	bars := make([]model.RawBar, 0, len(stamps))
	for _, s := range stamps {
		ts, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		e := entries[s]
		bars = append(bars, model.RawBar{
			Time:   ts,
			Open:   parseFloat(e.Open),
			High:   parseFloat(e.High),
			Low:    parseFloat(e.Low),
			Close:  parseFloat(e.Close),
			Volume: parseFloat(e.Volume),
		})
	}
	return enrich(bars), nil
}

func (p *AlphaVantage) FetchIntraday(ctx context.Context, symbol string) ([]model.RawBar, error) {
	query := fmt.Sprintf("function=TIME_SERIES_INTRADAY&symbol=%s&interval=1min&outputsize=full",
		url.QueryEscape(symbol))
	return p.fetch(ctx, query, "2006-01-02 15:04:05", func(r avResponse) map[string]avBar {
		return r.Intraday
	})
}

func (p *AlphaVantage) FetchDaily(ctx context.Context, symbol string, lookbackDays int) ([]model.RawBar, error) {
	query := fmt.Sprintf("function=TIME_SERIES_DAILY&symbol=%s&outputsize=full",
		url.QueryEscape(symbol))
	bars, err := p.fetch(ctx, query, "2006-01-02", func(r avResponse) map[string]avBar {
		return r.Daily
	})
	if err != nil {
		return nil, err
	}
	if lookbackDays > 0 && len(bars) > lookbackDays {
		bars = bars[len(bars)-lookbackDays:]
	}
	return bars, nil
}
