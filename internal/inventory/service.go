// internal/inventory/service.go
package inventory

import (
	"log/slog"
	"strconv"
	"sync"
	"time"
)

// Snapshot is what the site displays: today's count and tomorrow's.
type Snapshot struct {
	Date     DayKey `json:"date"`
	Today    int    `json:"today"`
	Tomorrow int    `json:"tomorrow"`
}

// Service serialises simulator calls against one store and tracks when the
// counter was last looked at. The simulator itself assumes a single writer.
type Service struct {
	mu         sync.Mutex
	sim        *Simulator
	store      KeyValueStore
	viewWindow time.Duration
	lastViewed time.Time
}

func NewService(sim *Simulator, store KeyValueStore, viewWindow time.Duration) *Service {
	return &Service{
		sim:        sim,
		store:      store,
		viewWindow: viewWindow,
	}
}

// Snapshot computes today's and tomorrow's counts and records the
// lastInventoryDate and tomorrowInventory markers.
func (s *Service) Snapshot(now time.Time) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(now)
}

func (s *Service) snapshotLocked(now time.Time) Snapshot {
	today := s.sim.TodayCount(now, s.store)
	key := s.sim.DayKey(now)
	tomorrow := s.sim.TomorrowCount(today, key.Next(), s.store)

	if s.store != nil {
		if err := s.store.Set(LastDateKey, key.String()); err != nil {
			slog.Warn("inventory marker write failed", "key", LastDateKey, "error", err)
		}
		if err := s.store.Set(TomorrowValueKey, strconv.Itoa(tomorrow)); err != nil {
			slog.Warn("inventory marker write failed", "key", TomorrowValueKey, "error", err)
		}
	}

	return Snapshot{Date: key, Today: today, Tomorrow: tomorrow}
}

// Rollover recomputes the snapshot when now falls on a different day than
// lastKey. The returned bool reports whether the day changed.
func (s *Service) Rollover(now time.Time, lastKey DayKey) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sim.DayKey(now) == lastKey {
		return Snapshot{}, false
	}
	return s.snapshotLocked(now), true
}

// LastDate returns the day the markers were last written for.
func (s *Service) LastDate() (DayKey, bool) {
	if s.store == nil {
		return "", false
	}
	raw, ok := s.store.Get(LastDateKey)
	if !ok || !DayKey(raw).Valid() {
		return "", false
	}
	return DayKey(raw), true
}

// Tick runs one decrement attempt against today's count.
func (s *Service) Tick(now time.Time, visible bool) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.sim.TodayCount(now, s.store)
	return s.sim.MaybeDecrement(current, visible, s.store, s.sim.DayKey(now))
}

// MarkViewed records that someone is looking at the counter.
func (s *Service) MarkViewed(now time.Time) {
	s.mu.Lock()
	s.lastViewed = now
	s.mu.Unlock()
}

// Visible reports whether the counter was viewed within the view window.
func (s *Service) Visible(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastViewed.IsZero() {
		return false
	}
	return now.Sub(s.lastViewed) <= s.viewWindow
}
