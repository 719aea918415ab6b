package scheduler

import (
	"context"
	"math"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"StockPulse/internal/config"
	"StockPulse/internal/model"
	"StockPulse/internal/store"
)

type fakeProvider struct {
	intraday     []model.RawBar
	daily        []model.RawBar
	lastLookback int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) FetchIntraday(context.Context, string) ([]model.RawBar, error) {
	return f.intraday, nil
}

func (f *fakeProvider) FetchDaily(_ context.Context, _ string, lookbackDays int) ([]model.RawBar, error) {
	f.lastLookback = lookbackDays
	return f.daily, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	titles []string
	bodies []string
}

func (r *recordingNotifier) Notify(title, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.titles = append(r.titles, title)
	r.bodies = append(r.bodies, body)
	return nil
}

func (r *recordingNotifier) sent() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.titles...)
}

func (r *recordingNotifier) sentBodies() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.bodies...)
}

func newTestScheduler(t *testing.T, prov *fakeProvider) (*Scheduler, *store.Store, *recordingNotifier) {
	t.Helper()
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"), []string{"SAP"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	notif := &recordingNotifier{}
	s := New(context.Background(), cfg, st, prov, notif, zerolog.Nop())
	return s, st, notif
}

func TestAction_Gating(t *testing.T) {
	s, _, _ := newTestScheduler(t, &fakeProvider{})

	// 2026-03-02 is a Monday, 2026-03-07 a Saturday.
	cases := []struct {
		name string
		at   time.Time
		want Action
	}{
		{"weekday daily slot", time.Date(2026, 3, 2, 23, 0, 0, 0, time.UTC), ActionDailyBatch},
		{"weekend daily slot", time.Date(2026, 3, 7, 23, 0, 0, 0, time.UTC), ActionDailyBatch},
		{"weekday trading hours", time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), ActionMinuteUpdate},
		{"weekend trading hours", time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC), ActionIdle},
		{"weekday before open", time.Date(2026, 3, 2, 6, 30, 0, 0, time.UTC), ActionIdle},
		{"weekday after close", time.Date(2026, 3, 2, 22, 30, 0, 0, time.UTC), ActionIdle},
	}
	for _, tc := range cases {
		if got := s.action(tc.at); got != tc.want {
			t.Errorf("%s: expected action %d, got %d", tc.name, tc.want, got)
		}
	}
}

func TestMinuteSymbol_PersistsAndAlerts(t *testing.T) {
	raws := make([]model.RawBar, 20)
	for i := range raws {
		raws[i] = model.RawBar{Open: 100, High: 101, Low: 99, Close: 100, Volume: 1000}
	}
	raws[len(raws)-1].Close = 150 // +50% spike on the last bar
	prov := &fakeProvider{intraday: raws}
	s, st, notif := newTestScheduler(t, prov)
	// Pin the store clock so both passes stamp identical synthetic
	// timestamps regardless of how long the first pass takes.
	st.SetClock(func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) })

	if err := s.minuteSymbol("SAP"); err != nil {
		t.Fatalf("minute symbol: %v", err)
	}
	s.wg.Wait()

	if count, _ := st.LiveCount("SAP"); count != 20 {
		t.Errorf("expected 20 live bars, got %d", count)
	}
	if count, _ := st.JumpCount("SAP"); count != 1 {
		t.Errorf("expected 1 jump event, got %d", count)
	}
	found := false
	for _, title := range notif.sent() {
		if strings.HasPrefix(title, "Price move") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a price move alert, got %v", notif.sent())
	}

	// A second pass over the same payload must not duplicate anything.
	if err := s.minuteSymbol("SAP"); err != nil {
		t.Fatalf("repeat minute symbol: %v", err)
	}
	s.wg.Wait()
	if count, _ := st.LiveCount("SAP"); count != 20 {
		t.Errorf("expected live bars to stay at 20, got %d", count)
	}
	if count, _ := st.JumpCount("SAP"); count != 1 {
		t.Errorf("expected no duplicate jump events, got %d", count)
	}
}

func TestDailySymbol_LookbackSizing(t *testing.T) {
	now := time.Now().UTC()
	daily := make([]model.RawBar, 10)
	for i := range daily {
		daily[i] = model.RawBar{
			Time:  now.AddDate(0, 0, -(len(daily) - i)),
			Close: 100 + float64(i),
		}
	}
	daily[5].Close = 150 // spike inside the window
	prov := &fakeProvider{daily: daily}
	s, st, _ := newTestScheduler(t, prov)

	if err := s.dailySymbol("SAP"); err != nil {
		t.Fatalf("daily symbol: %v", err)
	}
	s.wg.Wait()
	if prov.lastLookback != freshLookbackDays {
		t.Errorf("expected fresh lookback %d, got %d", freshLookbackDays, prov.lastLookback)
	}
	if count, _ := st.DailyCount("SAP"); count != 10 {
		t.Errorf("expected 10 daily bars, got %d", count)
	}
	if count, _ := st.JumpCount("SAP"); count == 0 {
		t.Error("expected the spike to register as a jump")
	}
	if count, _ := st.DropCount("SAP"); count == 0 {
		t.Error("expected the spike reversal to register as a drop")
	}

	// With bars stored the next batch only asks for the gap.
	if err := s.dailySymbol("SAP"); err != nil {
		t.Fatalf("second daily symbol: %v", err)
	}
	s.wg.Wait()
	if prov.lastLookback >= freshLookbackDays {
		t.Errorf("expected gap-sized lookback, got %d", prov.lastLookback)
	}
	if prov.lastLookback < 1 {
		t.Errorf("expected a positive lookback, got %d", prov.lastLookback)
	}

	// Replace semantics: recomputing the same window must not accumulate.
	jumps, _ := st.JumpEvents("SAP")
	if err := s.dailySymbol("SAP"); err != nil {
		t.Fatalf("third daily symbol: %v", err)
	}
	s.wg.Wait()
	again, _ := st.JumpEvents("SAP")
	if len(again) != len(jumps) {
		t.Errorf("expected stable event set across reruns, got %d then %d", len(jumps), len(again))
	}
}

func TestDailySymbol_FlagsOutlyingSession(t *testing.T) {
	// Eight 6-day cycles with one cycle shifted off the shared shape.
	now := time.Now().UTC()
	const period = 6
	daily := make([]model.RawBar, 8*period)
	for i := range daily {
		daily[i] = model.RawBar{
			Time:  now.AddDate(0, 0, -(len(daily) - i)),
			Close: 100 + 10*math.Sin(2*math.Pi*float64(i)/period),
		}
	}
	for i := 2 * period; i < 3*period; i++ {
		daily[i].Close += 4
	}
	prov := &fakeProvider{daily: daily}
	s, st, notif := newTestScheduler(t, prov)

	if err := s.dailySymbol("SAP"); err != nil {
		t.Fatalf("daily symbol: %v", err)
	}
	s.wg.Wait()

	recurring, err := st.RecurringEvents("SAP")
	if err != nil {
		t.Fatalf("read recurring events: %v", err)
	}
	if len(recurring) == 0 {
		t.Fatal("expected the 6-day cycle to be detected")
	}
	if recurring[0].MinutesPeriod != period*24*60 {
		t.Errorf("expected cycle of %d minutes, got %d", period*24*60, recurring[0].MinutesPeriod)
	}

	found := false
	for _, body := range notif.sentBodies() {
		if strings.Contains(body, "outlying sessions at [2]") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected the shifted cycle in the digest, got %v", notif.sentBodies())
	}
}
