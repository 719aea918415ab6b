package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"StockPulse/internal/config"
	"StockPulse/internal/detector"
	"StockPulse/internal/model"
	"StockPulse/internal/notifier"
	"StockPulse/internal/provider"
	"StockPulse/internal/store"
)

// Action is what a minute tick resolves to.
type Action int

const (
	ActionIdle Action = iota
	ActionMinuteUpdate
	ActionDailyBatch
)

// freshLookbackDays is the daily history requested for a symbol with no
// stored bars yet.
const freshLookbackDays = 2000

// recentWindow bounds the live bars scanned for jumps each minute.
const recentWindow = 30

// Scheduler drives the ingestion loop: a cron job fires every minute
// and dispatches to the daily batch, the live update, or nothing,
// depending on the wall clock.
type Scheduler struct {
	Cron     *cron.Cron
	Store    *store.Store
	Provider provider.Provider
	Notifier notifier.Notifier
	Cfg      *config.Config
	Ctx      context.Context

	logger zerolog.Logger
	now    func() time.Time
	wg     sync.WaitGroup
}

// New creates a Scheduler.
func New(ctx context.Context, cfg *config.Config, st *store.Store, prov provider.Provider, notif notifier.Notifier, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Store:    st,
		Provider: prov,
		Notifier: notif,
		Cfg:      cfg,
		Ctx:      ctx,
		logger:   logger,
		now:      time.Now,
	}
}

// Register wires the minute tick into the cron loop.
func (s *Scheduler) Register() error {
	if _, err := s.Cron.AddFunc("0 * * * * *", s.tick); err != nil {
		return fmt.Errorf("register minute tick: %w", err)
	}
	return nil
}

// Start starts the cron loop.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info().Msg("scheduler started")
}

// Stop stops the cron loop and waits for in-flight symbol work.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	s.wg.Wait()
	s.logger.Info().Msg("scheduler stopped")
}

// action decides what the tick at the given wall-clock time does. The
// daily batch fires at its configured minute every day of the week; the
// live update runs on weekdays inside the trading window.
func (s *Scheduler) action(now time.Time) Action {
	if now.Hour() == s.Cfg.Schedule.DailyHour && now.Minute() == s.Cfg.Schedule.DailyMinute {
		return ActionDailyBatch
	}
	if wd := now.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return ActionIdle
	}
	if now.Hour() >= s.Cfg.Schedule.TradingStartHour && now.Hour() < s.Cfg.Schedule.TradingEndHour {
		return ActionMinuteUpdate
	}
	return ActionIdle
}

func (s *Scheduler) tick() {
	switch s.action(s.now()) {
	case ActionDailyBatch:
		s.dailyBatch()
	case ActionMinuteUpdate:
		s.minuteUpdate()
	}
}

func (s *Scheduler) dailyBatch() {
	symbols, err := s.Store.ActiveSymbols()
	if err != nil {
		s.logger.Error().Err(err).Msg("daily batch: load active symbols")
		return
	}
	s.logger.Info().Int("symbols", len(symbols)).Msg("daily batch started")

	var wg sync.WaitGroup
	for _, symbol := range symbols {
		wg.Add(1)
		s.wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			defer s.wg.Done()
			if err := s.dailySymbol(symbol); err != nil {
				s.logger.Error().Err(err).Str("symbol", symbol).Msg("daily batch symbol failed")
			}
		}(symbol)
	}
	wg.Wait()
	s.logger.Info().Msg("daily batch finished")
}

func (s *Scheduler) dailySymbol(symbol string) error {
	meta := s.resolve(symbol)

	lookback := freshLookbackDays
	if last, ok, err := s.Store.LastDailyTimestamp(symbol); err != nil {
		return fmt.Errorf("last daily timestamp: %w", err)
	} else if ok {
		lookback = int(s.now().UTC().Sub(time.Unix(last, 0)).Hours()/24) + 1
		if lookback < 1 {
			lookback = 1
		}
	}

	raws, err := s.Provider.FetchDaily(s.Ctx, symbol, lookback)
	if err != nil {
		return fmt.Errorf("fetch daily: %w", err)
	}
	inserted, err := s.Store.InsertDaily(meta, raws)
	if err != nil {
		return fmt.Errorf("insert daily: %w", err)
	}

	end := s.now().UTC()
	meta.Start = end.AddDate(0, 0, -s.Cfg.Detect.HistoryDays)
	meta.End = end
	bars, err := s.Store.DailySeries(meta)
	if err != nil {
		return fmt.Errorf("read daily series: %w", err)
	}
	closes := model.Closes(bars)
	timestamps := model.Timestamps(bars)

	events := detector.Jumps(symbol, timestamps, closes,
		s.Cfg.Detect.JumpThresholdUp, s.Cfg.Detect.JumpThresholdDown)
	jumps, drops := detector.SplitJumps(events)
	if err := s.Store.ReplaceJumpEvents(symbol, jumps); err != nil {
		return fmt.Errorf("replace jump events: %w", err)
	}
	if err := s.Store.ReplaceDropEvents(symbol, drops); err != nil {
		return fmt.Errorf("replace drop events: %w", err)
	}

	recurring := detector.Recurring(symbol, timestamps, closes, s.Cfg.Detect.SeasonalityThreshold)
	if err := s.Store.ReplaceRecurringEvents(symbol, recurring); err != nil {
		return fmt.Errorf("replace recurring events: %w", err)
	}

	changepoints := detector.Changepoints(closes, true)
	outliers := s.outlyingSessions(closes, recurring)

	s.logger.Info().Str("symbol", symbol).
		Int("new_bars", len(inserted)).
		Int("jumps", len(jumps)).Int("drops", len(drops)).
		Int("recurring", len(recurring)).Int("changepoints", len(changepoints)).
		Int("outlier_sessions", len(outliers)).
		Msg("daily batch symbol done")

	if len(jumps)+len(drops)+len(recurring)+len(changepoints)+len(outliers) > 0 {
		s.notify("Daily digest: "+symbol,
			notifier.FormatDailySummary(symbol, len(inserted), len(jumps), len(drops), recurring, changepoints, outliers))
	}
	return nil
}

// outlyingSessions chunks the close series into seasons of the first
// detected cycle and flags the seasons whose shape does not cluster
// with the rest. The newest complete season additionally gets a
// deviation check of its own, so a single fresh anomaly is reported
// even when the clustering pass absorbs it.
func (s *Scheduler) outlyingSessions(closes []float64, recurring []model.RecurringEvent) []int {
	if len(recurring) == 0 {
		return nil
	}
	cycle := recurring[0]
	seasons := detector.SplitSeasons(closes, cycle.MinutesPeriod, int64(cycle.TimeScale))
	outliers := detector.Outliers(seasons, s.Cfg.Detect.OutlierSensitivity)

	last := len(seasons) - 1
	for _, idx := range outliers {
		if idx == last {
			return outliers
		}
	}
	if len(seasons) >= 3 && detector.IsOutlier(seasons[:last], seasons[last], s.Cfg.Detect.OutlierSensitivity) {
		outliers = append(outliers, last)
	}
	return outliers
}

func (s *Scheduler) minuteUpdate() {
	symbols, err := s.Store.ActiveSymbols()
	if err != nil {
		s.logger.Error().Err(err).Msg("minute update: load active symbols")
		return
	}
	for _, symbol := range symbols {
		if err := s.minuteSymbol(symbol); err != nil {
			s.logger.Error().Err(err).Str("symbol", symbol).Msg("minute update symbol failed")
		}
	}
}

func (s *Scheduler) minuteSymbol(symbol string) error {
	meta := s.resolve(symbol)

	raws, err := s.Provider.FetchIntraday(s.Ctx, symbol)
	if err != nil {
		return fmt.Errorf("fetch intraday: %w", err)
	}
	inserted, err := s.Store.InsertLive(meta, raws)
	if err != nil {
		return fmt.Errorf("insert live: %w", err)
	}

	bars, err := s.Store.LiveSeries(meta)
	if err != nil {
		return fmt.Errorf("read live series: %w", err)
	}
	closes := model.Closes(bars)
	timestamps := model.Timestamps(bars)
	if len(closes) > recentWindow {
		closes = closes[len(closes)-recentWindow:]
		timestamps = timestamps[len(timestamps)-recentWindow:]
	}

	// Jump detection covers only the bars this tick added, plus one bar
	// of context for the boundary pair. Older bars were scanned by the
	// ticks that stored them.
	jumpCloses, jumpTimestamps := closes, timestamps
	if span := len(inserted) + 1; span < len(jumpCloses) {
		jumpCloses = jumpCloses[len(jumpCloses)-span:]
		jumpTimestamps = jumpTimestamps[len(jumpTimestamps)-span:]
	}

	events := detector.Jumps(symbol, jumpTimestamps, jumpCloses,
		s.Cfg.Detect.JumpThresholdUp, s.Cfg.Detect.JumpThresholdDown)
	jumps, drops := detector.SplitJumps(events)
	if err := s.Store.InsertJumpEvents(jumps); err != nil {
		return fmt.Errorf("insert jump events: %w", err)
	}
	if err := s.Store.InsertDropEvents(drops); err != nil {
		return fmt.Errorf("insert drop events: %w", err)
	}
	if len(events) > 0 {
		s.notify("Price move: "+symbol, notifier.FormatJumpAlert(symbol, events))
	}

	trend := detector.Trend(closes, s.Cfg.Detect.TrendThresholdUp, s.Cfg.Detect.TrendThresholdDown)
	if trend != 0 {
		s.notify("Trend: "+symbol, notifier.FormatTrendAlert(symbol, trend))
	}
	return nil
}

// resolve looks the symbol up in the reference tables, falling back to
// bare metadata when the catalog has no record.
func (s *Scheduler) resolve(symbol string) model.SymbolMetadata {
	meta, err := s.Store.Metadata(s.Cfg.Exchange.PreferredCode, symbol)
	if errors.Is(err, store.ErrSymbolUnresolved) {
		s.logger.Warn().Str("symbol", symbol).Msg("symbol not in reference tables, using defaults")
	} else if err != nil {
		s.logger.Error().Err(err).Str("symbol", symbol).Msg("metadata lookup failed, using defaults")
	}
	return meta
}

// notify delivers an alert without blocking the tick.
func (s *Scheduler) notify(title, body string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.Notifier.Notify(title, body); err != nil {
			s.logger.Error().Err(err).Str("title", title).Msg("notification failed")
		}
	}()
}
