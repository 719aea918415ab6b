package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"StockPulse/internal/model"
)

// ErrSymbolUnresolved means the reference tables hold no equity record
// for the symbol. The returned metadata still carries the symbol itself
// so callers may query the provider with defaults.
var ErrSymbolUnresolved = errors.New("store: symbol not found in reference tables")

// ActiveSymbols returns the tracked symbol set in insertion order.
func (s *Store) ActiveSymbols() ([]string, error) {
	rows, err := s.db.Query("SELECT symbol FROM active_symbols ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("query active symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			s.logger.Warn().Err(err).Msg("skipping undecodable active symbol row")
			continue
		}
		symbols = append(symbols, symbol)
	}
	return symbols, rows.Err()
}

// InsertActiveSymbols adds symbols to the tracked set; duplicates are
// ignored.
func (s *Store) InsertActiveSymbols(symbols []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, symbol := range symbols {
		if _, err := s.db.Exec("INSERT OR IGNORE INTO active_symbols (symbol) VALUES (?)", symbol); err != nil {
			return fmt.Errorf("insert active symbol %s: %w", symbol, err)
		}
	}
	return nil
}

// DeleteActiveSymbols removes symbols from the tracked set.
func (s *Store) DeleteActiveSymbols(symbols []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, symbol := range symbols {
		if _, err := s.db.Exec("DELETE FROM active_symbols WHERE symbol = ?", symbol); err != nil {
			return fmt.Errorf("delete active symbol %s: %w", symbol, err)
		}
	}
	return nil
}

// SeedReference loads the equity, exchange, and alias catalogs from the
// JSON files under dir. Missing files are skipped; tables that already
// hold rows are left untouched.
func (s *Store) SeedReference(dir string) error {
	var equities model.Equities
	if ok, err := readSeed(filepath.Join(dir, "stocks.json"), &equities); err != nil {
		return err
	} else if ok {
		if err := s.seedEquities(equities.Data); err != nil {
			return err
		}
	}

	var exchanges model.Exchanges
	if ok, err := readSeed(filepath.Join(dir, "exchanges.json"), &exchanges); err != nil {
		return err
	} else if ok {
		if err := s.seedExchanges(exchanges.Data); err != nil {
			return err
		}
	}

	var aliases model.SymbolAliases
	if ok, err := readSeed(filepath.Join(dir, "symbol_aliases.json"), &aliases); err != nil {
		return err
	} else if ok {
		if err := s.seedAliases(aliases.Data); err != nil {
			return err
		}
	}
	return nil
}

func readSeed(path string, target interface{}) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read seed %s: %w", path, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return false, fmt.Errorf("decode seed %s: %w", path, err)
	}
	return true, nil
}

func (s *Store) seedEquities(equities []model.Equity) error {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM stocks").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range equities {
		_, err := s.db.Exec(`INSERT INTO stocks
			(symbol, name, currency, exchange, mic_code, country, type, figi_code, cfi_code, isin, cusip)
			VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
			e.Symbol, e.Name, e.Currency, e.Exchange, e.MicCode, e.Country,
			e.Type, e.FigiCode, e.CfiCode, e.ISIN, e.CUSIP)
		if err != nil {
			return fmt.Errorf("seed equity %s: %w", e.Symbol, err)
		}
	}
	s.logger.Info().Int("equities", len(equities)).Msg("seeded equity catalog")
	return nil
}

func (s *Store) seedExchanges(exchanges []model.Exchange) error {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM exchanges").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range exchanges {
		_, err := s.db.Exec(`INSERT INTO exchanges (title, name, code, country, timezone)
			VALUES (?,?,?,?,?)`,
			e.Title, e.Name, e.Code, e.Country, e.Timezone)
		if err != nil {
			return fmt.Errorf("seed exchange %s: %w", e.Code, err)
		}
	}
	s.logger.Info().Int("exchanges", len(exchanges)).Msg("seeded exchange catalog")
	return nil
}

func (s *Store) seedAliases(aliases []model.SymbolAlias) error {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM symbol_aliases").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range aliases {
		if _, err := s.db.Exec("INSERT INTO symbol_aliases (symbol, name) VALUES (?,?)", a.Symbol, a.Name); err != nil {
			return fmt.Errorf("seed alias %s: %w", a.Symbol, err)
		}
	}
	s.logger.Info().Int("aliases", len(aliases)).Msg("seeded symbol aliases")
	return nil
}

// EquityRecords returns every equity catalog record for the symbol.
func (s *Store) EquityRecords(symbol string) ([]model.Equity, error) {
	rows, err := s.db.Query(`SELECT symbol, name, currency, exchange, mic_code, country,
		type, figi_code, cfi_code, isin, cusip FROM stocks WHERE symbol = ?`, symbol)
	if err != nil {
		return nil, fmt.Errorf("query stocks: %w", err)
	}
	defer rows.Close()

	var equities []model.Equity
	for rows.Next() {
		var e model.Equity
		if err := rows.Scan(&e.Symbol, &e.Name, &e.Currency, &e.Exchange, &e.MicCode,
			&e.Country, &e.Type, &e.FigiCode, &e.CfiCode, &e.ISIN, &e.CUSIP); err != nil {
			s.logger.Warn().Err(err).Str("symbol", symbol).Msg("skipping undecodable equity row")
			continue
		}
		equities = append(equities, e)
	}
	return equities, rows.Err()
}

// ExchangeByCode returns the exchange record with the given MIC code.
func (s *Store) ExchangeByCode(code string) (model.Exchange, error) {
	var e model.Exchange
	err := s.db.QueryRow(`SELECT title, name, code, country, timezone
		FROM exchanges WHERE code = ? LIMIT 1`, code).
		Scan(&e.Title, &e.Name, &e.Code, &e.Country, &e.Timezone)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Exchange{}, fmt.Errorf("exchange %s: %w", code, ErrSymbolUnresolved)
	}
	return e, err
}

// MatchAlias maps a symbol or free-form name to the catalog symbol it
// resolves to. Exact mappings run first: a vendor spelling in the alias
// table joined back to the equity catalog by company name, then the
// alias table by name, then the equity catalog by name. A substring
// match against the active symbol set is the last resort. Unmatched
// inputs map to themselves.
func (s *Store) MatchAlias(name string) string {
	var symbol string
	err := s.db.QueryRow(`SELECT st.symbol FROM symbol_aliases al
		JOIN stocks st ON st.name = al.name
		WHERE al.symbol = ? LIMIT 1`, name).Scan(&symbol)
	if err == nil {
		return symbol
	}

	err = s.db.QueryRow("SELECT symbol FROM symbol_aliases WHERE name = ? LIMIT 1", name).Scan(&symbol)
	if err == nil {
		return symbol
	}

	err = s.db.QueryRow("SELECT symbol FROM stocks WHERE name = ? LIMIT 1", name).Scan(&symbol)
	if err == nil {
		return symbol
	}

	needle := strings.ToUpper(name)
	if symbols, err := s.ActiveSymbols(); err == nil {
		for _, active := range symbols {
			if strings.Contains(strings.ToUpper(active), needle) {
				return active
			}
		}
	}

	return name
}

// Metadata resolves the symbol against the reference tables. A symbol
// with no catalog record of its own is retried under its alias match
// before giving up. The equity record is chosen by tier: preferred
// exchange code, then the first EUR listing, then the first USD
// listing, then the first record at all. With no record the metadata
// carries only the symbol and the error wraps ErrSymbolUnresolved.
func (s *Store) Metadata(preferredCode, symbol string) (model.SymbolMetadata, error) {
	meta := model.NewSymbolMetadata(symbol)

	equities, err := s.EquityRecords(symbol)
	if err != nil {
		return meta, err
	}
	if len(equities) == 0 {
		if matched := s.MatchAlias(symbol); matched != symbol {
			equities, err = s.EquityRecords(matched)
			if err != nil {
				return meta, err
			}
			if len(equities) > 0 {
				s.logger.Debug().Str("symbol", symbol).Str("matched", matched).Msg("resolved symbol via alias")
			}
		}
	}
	if len(equities) == 0 {
		return meta, fmt.Errorf("metadata for %s: %w", symbol, ErrSymbolUnresolved)
	}

	chosen := equities[0]
	found := false
	for _, e := range equities {
		if e.MicCode == preferredCode {
			chosen = e
			found = true
			break
		}
	}
	if !found {
		for _, currency := range []string{"EUR", "USD"} {
			for _, e := range equities {
				if e.Currency == currency {
					chosen = e
					found = true
					break
				}
			}
			if found {
				break
			}
		}
	}

	meta.Currency = chosen.Currency
	meta.ExchangeCode = chosen.MicCode
	meta.AssetType = chosen.Type
	if exchange, err := s.ExchangeByCode(chosen.MicCode); err == nil {
		meta.ExchangeTitle = exchange.Title
		meta.ExchangeTimezone = exchange.Timezone
	}
	return meta, nil
}
