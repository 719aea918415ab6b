package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"StockPulse/internal/model"
)

// TwelveData implements Provider using the Twelve Data time_series API.
type TwelveData struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

// NewTwelveData creates a Twelve Data provider.
func NewTwelveData(apiKey, proxyURL string) *TwelveData {
	return &TwelveData{
		APIKey:  apiKey,
		BaseURL: "https://api.twelvedata.com",
		Client:  newClient(proxyURL),
	}
}

func (p *TwelveData) Name() string { return "twelvedata" }

// twelveSeries is the time_series response envelope. All numeric fields
// arrive as strings.
type twelveSeries struct {
	Values []struct {
		Datetime string `json:"datetime"`
		Open     string `json:"open"`
		High     string `json:"high"`
		Low      string `json:"low"`
		Close    string `json:"close"`
		Volume   string `json:"volume"`
	} `json:"values"`
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (p *TwelveData) fetchSeries(ctx context.Context, symbol, interval string, outputSize int) ([]model.RawBar, error) {
	u := fmt.Sprintf("%s/time_series?symbol=%s&interval=%s&outputsize=%d&apikey=%s",
		p.BaseURL, url.QueryEscape(symbol), interval, outputSize, p.APIKey)

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twelvedata fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("twelvedata read body: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("twelvedata: status %d, body: %s", resp.StatusCode, string(body))
	}

	var series twelveSeries
	if err := json.Unmarshal(body, &series); err != nil {
		return nil, fmt.Errorf("twelvedata decode: %w", err)
	}
	if series.Status == "error" {
		if series.Code == 429 {
			return nil, ErrRateLimited
		}
		return nil, fmt.Errorf("twelvedata api error %d: %s", series.Code, series.Message)
	}
	if len(series.Values) == 0 {
		return nil, fmt.Errorf("twelvedata: no data for %s", symbol)
	}

	bars := make([]model.RawBar, 0, len(series.Values))
	for _, v := range series.Values {
		ts, err := parseTwelveTime(v.Datetime)
		if err != nil {
			continue
		}
		bars = append(bars, model.RawBar{
			Time:   ts,
			Open:   parseFloat(v.Open),
			High:   parseFloat(v.High),
			Low:    parseFloat(v.Low),
			Close:  parseFloat(v.Close),
			Volume: parseFloat(v.Volume),
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return enrich(bars), nil
}

func (p *TwelveData) FetchIntraday(ctx context.Context, symbol string) ([]model.RawBar, error) {
	return p.fetchSeries(ctx, symbol, "1min", 1000)
}

func (p *TwelveData) FetchDaily(ctx context.Context, symbol string, lookbackDays int) ([]model.RawBar, error) {
	if lookbackDays < 1 {
		lookbackDays = 1
	}
	return p.fetchSeries(ctx, symbol, "1day", lookbackDays)
}

// parseTwelveTime accepts both minute stamps and bare dates, which the
// API mixes depending on the interval.
func parseTwelveTime(s string) (time.Time, error) {
	if ts, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02", s)
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
