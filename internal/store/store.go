package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// Store persists bar series, detection events, and the symbol/exchange
// reference tables in a single SQLite database. A mutex serializes every
// insert batch so the existence check and the write it guards cannot
// interleave across goroutines.
type Store struct {
	db     *sql.DB
	mu     sync.Mutex
	logger zerolog.Logger
	now    func() time.Time
}

// Open opens (or creates) the SQLite database, runs migrations, and
// seeds the active symbol set with seedSymbols when the set is empty.
func Open(dbPath string, seedSymbols []string, logger zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboard reads do not block the minute writer.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &Store{db: db, logger: logger, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := s.seedActiveSymbols(seedSymbols); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed active symbols: %w", err)
	}

	logger.Info().Str("path", dbPath).Msg("sqlite store opened")
	return s, nil
}

// SetClock overrides the clock that stamps synthetic minute
// timestamps. Tests pin it so insert batches land deterministically.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS live_data (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol      TEXT NOT NULL,
			timestamp   INTEGER NOT NULL,
			open        REAL,
			high        REAL,
			low         REAL,
			close       REAL,
			volume      REAL,
			sma         REAL,
			ema         REAL,
			rsi         REAL,
			stochastic  REAL,
			macd        REAL,
			macd_signal REAL,
			macd_hist   REAL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_live_symbol_ts ON live_data(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS time_series (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol    TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			open      REAL,
			high      REAL,
			low       REAL,
			close     REAL,
			volume    REAL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_series_symbol_ts ON time_series(symbol, timestamp)`,

		`CREATE TABLE IF NOT EXISTS jump_events (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			symbol    TEXT NOT NULL,
			percent   REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_jump_symbol ON jump_events(symbol)`,

		`CREATE TABLE IF NOT EXISTS drop_events (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			symbol    TEXT NOT NULL,
			percent   REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_drop_symbol ON drop_events(symbol)`,

		`CREATE TABLE IF NOT EXISTS recurring_events (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol         TEXT NOT NULL,
			minutes_period INTEGER NOT NULL,
			time_scale     REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_recurring_symbol ON recurring_events(symbol)`,

		`CREATE TABLE IF NOT EXISTS active_symbols (
			id     INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol TEXT NOT NULL UNIQUE
		)`,

		`CREATE TABLE IF NOT EXISTS stocks (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol    TEXT NOT NULL,
			name      TEXT,
			currency  TEXT,
			exchange  TEXT,
			mic_code  TEXT,
			country   TEXT,
			type      TEXT,
			figi_code TEXT,
			cfi_code  TEXT,
			isin      TEXT,
			cusip     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_stocks_symbol ON stocks(symbol)`,

		`CREATE TABLE IF NOT EXISTS exchanges (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			title    TEXT,
			name     TEXT,
			code     TEXT NOT NULL,
			country  TEXT,
			timezone TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_exchanges_code ON exchanges(code)`,

		`CREATE TABLE IF NOT EXISTS symbol_aliases (
			id     INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol TEXT NOT NULL,
			name   TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_aliases_name ON symbol_aliases(name)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func (s *Store) seedActiveSymbols(symbols []string) error {
	if len(symbols) == 0 {
		return nil
	}
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM active_symbols").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	s.logger.Info().Int("symbols", len(symbols)).Msg("seeding active symbol set")
	return s.InsertActiveSymbols(symbols)
}

func (s *Store) Close() error {
	s.logger.Info().Msg("closing sqlite store")
	return s.db.Close()
}
