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

// Polygon implements Provider using the Polygon.io aggregates API. It
// does not enrich bars with indicators; its payloads feed detection
// directly.
type Polygon struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
	now     func() time.Time
}

// NewPolygon creates a Polygon provider.
func NewPolygon(apiKey, proxyURL string) *Polygon {
	return &Polygon{
		APIKey:  apiKey,
		BaseURL: "https://api.polygon.io",
		Client:  newClient(proxyURL),
		now:     time.Now,
	}
}

func (p *Polygon) Name() string { return "polygon" }

type polygonAggs struct {
	Results []struct {
		Timestamp int64   `json:"t"` // milliseconds
		Open      float64 `json:"o"`
		High      float64 `json:"h"`
		Low       float64 `json:"l"`
		Close     float64 `json:"c"`
		Volume    float64 `json:"v"`
	} `json:"results"`
	Status string `json:"status"`
	Error  string `json:"error"`
}

func (p *Polygon) fetchAggs(ctx context.Context, symbol, timespan string, from, to time.Time) ([]model.RawBar, error) {
	u := fmt.Sprintf("%s/v2/aggs/ticker/%s/range/1/%s/%s/%s?adjusted=true&sort=asc&limit=50000&apiKey=%s",
		p.BaseURL, url.PathEscape(symbol), timespan,
		from.Format("2006-01-02"), to.Format("2006-01-02"), p.APIKey)

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("polygon fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("polygon read body: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("polygon: status %d, body: %s", resp.StatusCode, string(body))
	}

	var aggs polygonAggs
	if err := json.Unmarshal(body, &aggs); err != nil {
		return nil, fmt.Errorf("polygon decode: %w", err)
	}
	if aggs.Error != "" {
		return nil, fmt.Errorf("polygon api error: %s", aggs.Error)
	}
	if len(aggs.Results) == 0 {
		return nil, fmt.Errorf("polygon: no data for %s", symbol)
	}

	bars := make([]model.RawBar, 0, len(aggs.Results))
	for _, r := range aggs.Results {
		bars = append(bars, model.RawBar{
			Time:   time.UnixMilli(r.Timestamp).UTC(),
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

func (p *Polygon) FetchIntraday(ctx context.Context, symbol string) ([]model.RawBar, error) {
	to := p.now().UTC()
	return p.fetchAggs(ctx, symbol, "minute", to.AddDate(0, 0, -1), to)
}

func (p *Polygon) FetchDaily(ctx context.Context, symbol string, lookbackDays int) ([]model.RawBar, error) {
	if lookbackDays < 1 {
		lookbackDays = 1
	}
	to := p.now().UTC()
	return p.fetchAggs(ctx, symbol, "day", to.AddDate(0, 0, -lookbackDays), to)
}
