package store

import (
	"fmt"

	"StockPulse/internal/model"
)

// InsertJumpEvents appends jump events to the jump_events table.
func (s *Store) InsertJumpEvents(events []model.JumpEvent) error {
	return s.insertPriceEvents("jump_events", events)
}

// InsertDropEvents appends drop events to the drop_events table.
func (s *Store) InsertDropEvents(events []model.JumpEvent) error {
	return s.insertPriceEvents("drop_events", events)
}

func (s *Store) insertPriceEvents(table string, events []model.JumpEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range events {
		_, err := s.db.Exec("INSERT INTO "+table+" (timestamp, symbol, percent) VALUES (?,?,?)",
			e.Timestamp, e.Symbol, e.Percent)
		if err != nil {
			return fmt.Errorf("insert into %s: %w", table, err)
		}
	}
	return nil
}

// JumpEvents returns the symbol's jump events ascending by timestamp.
func (s *Store) JumpEvents(symbol string) ([]model.JumpEvent, error) {
	return s.priceEvents("jump_events", symbol)
}

// DropEvents returns the symbol's drop events ascending by timestamp.
func (s *Store) DropEvents(symbol string) ([]model.JumpEvent, error) {
	return s.priceEvents("drop_events", symbol)
}

func (s *Store) priceEvents(table, symbol string) ([]model.JumpEvent, error) {
	rows, err := s.db.Query("SELECT timestamp, symbol, percent FROM "+table+
		" WHERE symbol = ? ORDER BY timestamp ASC", symbol)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var events []model.JumpEvent
	for rows.Next() {
		var e model.JumpEvent
		if err := rows.Scan(&e.Timestamp, &e.Symbol, &e.Percent); err != nil {
			s.logger.Warn().Err(err).Str("table", table).Msg("skipping undecodable event row")
			continue
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// JumpCount returns the number of stored jump events for symbol.
func (s *Store) JumpCount(symbol string) (int, error) {
	return s.eventCount("jump_events", symbol)
}

// DropCount returns the number of stored drop events for symbol.
func (s *Store) DropCount(symbol string) (int, error) {
	return s.eventCount("drop_events", symbol)
}

// RecurringCount returns the number of stored recurring events for symbol.
func (s *Store) RecurringCount(symbol string) (int, error) {
	return s.eventCount("recurring_events", symbol)
}

func (s *Store) eventCount(table, symbol string) (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM "+table+" WHERE symbol = ?", symbol).Scan(&count)
	return count, err
}

// ReplaceJumpEvents drops the symbol's jump events and stores the given
// set instead, atomically.
func (s *Store) ReplaceJumpEvents(symbol string, events []model.JumpEvent) error {
	return s.replacePriceEvents("jump_events", symbol, events)
}

// ReplaceDropEvents drops the symbol's drop events and stores the given
// set instead, atomically.
func (s *Store) ReplaceDropEvents(symbol string, events []model.JumpEvent) error {
	return s.replacePriceEvents("drop_events", symbol, events)
}

func (s *Store) replacePriceEvents(table, symbol string, events []model.JumpEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin replace %s: %w", table, err)
	}
	if _, err := tx.Exec("DELETE FROM "+table+" WHERE symbol = ?", symbol); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear %s: %w", table, err)
	}
	for _, e := range events {
		if _, err := tx.Exec("INSERT INTO "+table+" (timestamp, symbol, percent) VALUES (?,?,?)",
			e.Timestamp, e.Symbol, e.Percent); err != nil {
			tx.Rollback()
			return fmt.Errorf("refill %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// InsertRecurringEvents appends recurring events.
func (s *Store) InsertRecurringEvents(events []model.RecurringEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range events {
		_, err := s.db.Exec("INSERT INTO recurring_events (symbol, minutes_period, time_scale) VALUES (?,?,?)",
			e.Symbol, e.MinutesPeriod, e.TimeScale)
		if err != nil {
			return fmt.Errorf("insert recurring event: %w", err)
		}
	}
	return nil
}

// RecurringEvents returns the symbol's recurring events ascending by
// period length.
func (s *Store) RecurringEvents(symbol string) ([]model.RecurringEvent, error) {
	rows, err := s.db.Query(`SELECT symbol, minutes_period, time_scale
		FROM recurring_events WHERE symbol = ? ORDER BY minutes_period ASC`, symbol)
	if err != nil {
		return nil, fmt.Errorf("query recurring_events: %w", err)
	}
	defer rows.Close()

	var events []model.RecurringEvent
	for rows.Next() {
		var e model.RecurringEvent
		if err := rows.Scan(&e.Symbol, &e.MinutesPeriod, &e.TimeScale); err != nil {
			s.logger.Warn().Err(err).Msg("skipping undecodable recurring row")
			continue
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// ReplaceRecurringEvents drops the symbol's recurring events and stores
// the given set instead, atomically.
func (s *Store) ReplaceRecurringEvents(symbol string, events []model.RecurringEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin replace recurring_events: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM recurring_events WHERE symbol = ?", symbol); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear recurring_events: %w", err)
	}
	for _, e := range events {
		if _, err := tx.Exec("INSERT INTO recurring_events (symbol, minutes_period, time_scale) VALUES (?,?,?)",
			e.Symbol, e.MinutesPeriod, e.TimeScale); err != nil {
			tx.Rollback()
			return fmt.Errorf("refill recurring_events: %w", err)
		}
	}
	return tx.Commit()
}
