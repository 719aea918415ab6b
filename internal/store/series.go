package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"StockPulse/internal/model"
)

// LiveCount returns the number of stored minute bars for symbol.
func (s *Store) LiveCount(symbol string) (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM live_data WHERE symbol = ?", symbol).Scan(&count)
	return count, err
}

// LiveSeries returns all minute bars of the symbol, ascending by
// timestamp. Rows that fail to decode are logged and skipped.
func (s *Store) LiveSeries(meta model.SymbolMetadata) ([]model.Bar, error) {
	rows, err := s.db.Query(`SELECT timestamp, open, high, low, close, volume,
		sma, ema, rsi, stochastic, macd, macd_signal, macd_hist
		FROM live_data WHERE symbol = ? ORDER BY timestamp ASC`, meta.Symbol)
	if err != nil {
		return nil, fmt.Errorf("query live series: %w", err)
	}
	defer rows.Close()

	var bars []model.Bar
	for rows.Next() {
		b := model.Bar{Symbol: meta.Symbol}
		if err := rows.Scan(&b.Timestamp, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume,
			&b.Indicators.SMA, &b.Indicators.EMA, &b.Indicators.RSI, &b.Indicators.Stochastic,
			&b.Indicators.MACD, &b.Indicators.MACDSignal, &b.Indicators.MACDHist); err != nil {
			s.logger.Warn().Err(err).Str("symbol", meta.Symbol).Msg("skipping undecodable live row")
			continue
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// InsertLive persists the raw minute bars under synthetic timestamps
// counted backward from now in 60-second steps, skipping any (symbol,
// timestamp) pair already stored. It returns the newly persisted bars.
// A storage error aborts the rest of the batch; bars already written
// stay.
func (s *Store) InsertLive(meta model.SymbolMetadata, raws []model.RawBar) ([]model.Bar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC().Unix()
	var inserted []model.Bar
	for i, raw := range raws {
		ts := now - int64(len(raws)-1-i)*60
		exists, err := s.rowExists("live_data", meta.Symbol, ts)
		if err != nil {
			return inserted, fmt.Errorf("check live bar: %w", err)
		}
		if exists {
			continue
		}
		_, err = s.db.Exec(`INSERT INTO live_data
			(symbol, timestamp, open, high, low, close, volume,
			 sma, ema, rsi, stochastic, macd, macd_signal, macd_hist)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			meta.Symbol, ts, raw.Open, raw.High, raw.Low, raw.Close, raw.Volume,
			raw.Indicators.SMA, raw.Indicators.EMA, raw.Indicators.RSI, raw.Indicators.Stochastic,
			raw.Indicators.MACD, raw.Indicators.MACDSignal, raw.Indicators.MACDHist,
		)
		if err != nil {
			return inserted, fmt.Errorf("insert live bar: %w", err)
		}
		inserted = append(inserted, model.Bar{
			Symbol:     meta.Symbol,
			Timestamp:  ts,
			Open:       raw.Open,
			High:       raw.High,
			Low:        raw.Low,
			Close:      raw.Close,
			Volume:     raw.Volume,
			Indicators: raw.Indicators,
		})
	}
	return inserted, nil
}

// DailyCount returns the number of stored daily bars for symbol.
func (s *Store) DailyCount(symbol string) (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM time_series WHERE symbol = ?", symbol).Scan(&count)
	return count, err
}

// DailySeries returns the daily bars inside [meta.Start, meta.End],
// ascending by timestamp. Rows that fail to decode are logged and
// skipped.
func (s *Store) DailySeries(meta model.SymbolMetadata) ([]model.Bar, error) {
	rows, err := s.db.Query(`SELECT timestamp, open, high, low, close, volume
		FROM time_series WHERE symbol = ? AND timestamp BETWEEN ? AND ?
		ORDER BY timestamp ASC`, meta.Symbol, meta.Start.Unix(), meta.End.Unix())
	if err != nil {
		return nil, fmt.Errorf("query daily series: %w", err)
	}
	defer rows.Close()

	var bars []model.Bar
	for rows.Next() {
		b := model.Bar{Symbol: meta.Symbol}
		if err := rows.Scan(&b.Timestamp, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			s.logger.Warn().Err(err).Str("symbol", meta.Symbol).Msg("skipping undecodable daily row")
			continue
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// InsertDaily persists daily bars, pinning each bar's calendar date to
// 22:00 UTC, and skips dates already stored. It returns the newly
// persisted bars, mirroring InsertLive. Indicators are not kept for
// daily bars, so the returned bars carry none.
func (s *Store) InsertDaily(meta model.SymbolMetadata, raws []model.RawBar) ([]model.Bar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var inserted []model.Bar
	for _, raw := range raws {
		y, m, d := raw.Time.UTC().Date()
		ts := time.Date(y, m, d, 22, 0, 0, 0, time.UTC).Unix()
		exists, err := s.rowExists("time_series", meta.Symbol, ts)
		if err != nil {
			return inserted, fmt.Errorf("check daily bar: %w", err)
		}
		if exists {
			continue
		}
		_, err = s.db.Exec(`INSERT INTO time_series
			(symbol, timestamp, open, high, low, close, volume)
			VALUES (?,?,?,?,?,?,?)`,
			meta.Symbol, ts, raw.Open, raw.High, raw.Low, raw.Close, raw.Volume,
		)
		if err != nil {
			return inserted, fmt.Errorf("insert daily bar: %w", err)
		}
		inserted = append(inserted, model.Bar{
			Symbol:    meta.Symbol,
			Timestamp: ts,
			Open:      raw.Open,
			High:      raw.High,
			Low:       raw.Low,
			Close:     raw.Close,
			Volume:    raw.Volume,
		})
	}
	return inserted, nil
}

// LastDailyTimestamp returns the newest stored daily timestamp for
// symbol, or ok=false when the symbol has no daily bars yet.
func (s *Store) LastDailyTimestamp(symbol string) (int64, bool, error) {
	var ts int64
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*), COALESCE(MAX(timestamp), 0)
		FROM time_series WHERE symbol = ?`, symbol).Scan(&count, &ts)
	if err != nil {
		return 0, false, err
	}
	return ts, count > 0, nil
}

func (s *Store) rowExists(table, symbol string, timestamp int64) (bool, error) {
	var one int
	err := s.db.QueryRow("SELECT 1 FROM "+table+" WHERE symbol = ? AND timestamp = ?",
		symbol, timestamp).Scan(&one)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, err
}
