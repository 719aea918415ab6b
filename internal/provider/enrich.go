package provider

import (
	"github.com/markcheno/go-talib"

	"StockPulse/internal/model"
)

// enrich computes the standard indicator chain over the bar closes and
// writes the values back into each bar. Indicators whose lookback
// exceeds the series length stay zero.
func enrich(bars []model.RawBar) []model.RawBar {
	n := len(bars)
	if n == 0 {
		return bars
	}
	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	for i, b := range bars {
		closes[i] = b.Close
		highs[i] = b.High
		lows[i] = b.Low
	}

	if n >= 10 {
		sma := talib.Sma(closes, 10)
		for i := range bars {
			bars[i].Indicators.SMA = sma[i]
		}
	}
	if n >= 20 {
		ema := talib.Ema(closes, 20)
		for i := range bars {
			bars[i].Indicators.EMA = ema[i]
		}
	}
	if n >= 15 {
		rsi := talib.Rsi(closes, 14)
		for i := range bars {
			bars[i].Indicators.RSI = rsi[i]
		}
	}
	if n >= 14 {
		slowK, _ := talib.Stoch(highs, lows, closes, 9, 3, talib.SMA, 3, talib.SMA)
		for i := range bars {
			bars[i].Indicators.Stochastic = slowK[i]
		}
	}
	if n >= 35 {
		macd, signal, hist := talib.Macd(closes, 12, 26, 9)
		for i := range bars {
			bars[i].Indicators.MACD = macd[i]
			bars[i].Indicators.MACDSignal = signal[i]
			bars[i].Indicators.MACDHist = hist[i]
		}
	}
	return bars
}
