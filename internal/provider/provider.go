package provider

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/rs/zerolog"

	"StockPulse/internal/model"
)

var (
	// ErrNotConfigured means no provider credential was found in the
	// environment. It surfaces at fetch time, not at startup.
	ErrNotConfigured = errors.New("provider: no API credentials configured")
	// ErrRateLimited means the upstream rejected the request because of
	// its quota. The caller decides whether to back off.
	ErrRateLimited = errors.New("provider: upstream rate limit reached")
)

// Provider fetches market data for a single symbol. Implementations
// return bars sorted ascending by time.
type Provider interface {
	Name() string
	FetchIntraday(ctx context.Context, symbol string) ([]model.RawBar, error)
	FetchDaily(ctx context.Context, symbol string, lookbackDays int) ([]model.RawBar, error)
}

// Select probes credential environment variables in fixed priority
// order and returns the first configured provider. The variable names
// match the deployed secrets. With no credential present, the returned
// provider fails every fetch with ErrNotConfigured.
func Select(proxyURL string, logger zerolog.Logger) Provider {
	if token := os.Getenv("Twelvedata_TOKEN"); token != "" {
		logger.Info().Str("provider", "twelvedata").Msg("market data provider selected")
		return NewTwelveData(token, proxyURL)
	}
	if token := os.Getenv("AlphaVantage_TOKEN"); token != "" {
		logger.Info().Str("provider", "alphavantage").Msg("market data provider selected")
		return NewAlphaVantage(token, proxyURL)
	}
	if key := os.Getenv("Polygon_APIKey"); key != "" {
		logger.Info().Str("provider", "polygon").Msg("market data provider selected")
		return NewPolygon(key, proxyURL)
	}
	logger.Warn().Msg("no market data credentials found, fetches will fail")
	return unconfigured{}
}

type unconfigured struct{}

func (unconfigured) Name() string { return "unconfigured" }

func (unconfigured) FetchIntraday(context.Context, string) ([]model.RawBar, error) {
	return nil, ErrNotConfigured
}

func (unconfigured) FetchDaily(context.Context, string, int) ([]model.RawBar, error) {
	return nil, ErrNotConfigured
}

func newClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}
