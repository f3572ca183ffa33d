// internal/inventory/simulator.go
package inventory

import (
	"log/slog"
	"math/rand/v2"
	"strconv"
	"time"
)

// DefaultDecrementProbability is the chance a visible tick takes one unit off today's count.
const DefaultDecrementProbability = 0.05

// Rand is the random source the simulator draws from. *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

type globalRand struct{}

func (globalRand) IntN(n int) int   { return rand.IntN(n) }
func (globalRand) Float64() float64 { return rand.Float64() }

// hourBucket holds the base range for hours in [from, to).
type hourBucket struct {
	from, to int
	min, max int
}

var hourBuckets = []hourBucket{
	{from: 0, to: 9, min: 7, max: 9},
	{from: 9, to: 14, min: 5, max: 7},
	{from: 14, to: 18, min: 3, max: 5},
	{from: 18, to: 24, min: 1, max: 2},
}

const (
	tomorrowMinGain = 8
	tomorrowMaxGain = 14
)

// Simulator derives a synthetic "devices left today" figure. It holds no
// state of its own: every value lives in the KeyValueStore handed to it.
type Simulator struct {
	rand                 Rand
	location             *time.Location
	decrementProbability float64
	now                  func() time.Time
}

type Option func(*Simulator)

func WithRand(r Rand) Option {
	return func(s *Simulator) { s.rand = r }
}

func WithLocation(loc *time.Location) Option {
	return func(s *Simulator) { s.location = loc }
}

func WithDecrementProbability(p float64) Option {
	return func(s *Simulator) { s.decrementProbability = p }
}

// WithClock replaces the fallback clock used for zero timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Simulator) { s.now = now }
}

func NewSimulator(opts ...Option) *Simulator {
	s := &Simulator{
		rand:                 globalRand{},
		location:             time.Local,
		decrementProbability: DefaultDecrementProbability,
		now:                  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) Location() *time.Location {
	return s.location
}

// DayKey returns the calendar date of now in the simulator's zone.
func (s *Simulator) DayKey(now time.Time) DayKey {
	return KeyFor(s.normalize(now), s.location)
}

// TodayCount returns the stored count for now's day, creating it on first read.
func (s *Simulator) TodayCount(now time.Time, store KeyValueStore) int {
	now = s.normalize(now).In(s.location)
	key := KeyFor(now, s.location)

	if count, ok := readCount(store, key.StorageKey()); ok {
		return count
	}

	base := s.baseForHour(now.Hour())
	switch now.Weekday() {
	case time.Saturday, time.Sunday:
		base = max(1, base-2)
	case time.Friday:
		base = max(1, base-1)
	}

	writeCount(store, key.StorageKey(), base)
	return base
}

// TomorrowCount returns the stored count for tomorrowKey, creating it as
// today plus 8..14 so a fresh record is always larger than today's.
func (s *Simulator) TomorrowCount(today int, tomorrowKey DayKey, store KeyValueStore) int {
	if count, ok := readCount(store, tomorrowKey.StorageKey()); ok {
		return count
	}

	value := today + s.between(tomorrowMinGain, tomorrowMaxGain)
	writeCount(store, tomorrowKey.StorageKey(), value)
	return value
}

// MaybeDecrement takes one unit off the count with the configured
// probability while the counter is being watched. The floor is 1.
func (s *Simulator) MaybeDecrement(current int, visible bool, store KeyValueStore, todayKey DayKey) (int, bool) {
	if !visible {
		return current, false
	}
	if s.rand.Float64() >= s.decrementProbability {
		return current, false
	}

	next := max(1, current-1)
	writeCount(store, todayKey.StorageKey(), next)
	return next, true
}

func (s *Simulator) baseForHour(hour int) int {
	for _, b := range hourBuckets {
		if hour >= b.from && hour < b.to {
			return s.between(b.min, b.max)
		}
	}
	last := hourBuckets[len(hourBuckets)-1]
	return s.between(last.min, last.max)
}

// between draws uniformly from [lo, hi].
func (s *Simulator) between(lo, hi int) int {
	return lo + s.rand.IntN(hi-lo+1)
}

func (s *Simulator) normalize(now time.Time) time.Time {
	if now.IsZero() {
		return s.now()
	}
	return now
}

func readCount(store KeyValueStore, key string) (int, bool) {
	if store == nil {
		return 0, false
	}
	raw, ok := store.Get(key)
	if !ok {
		return 0, false
	}
	count, err := strconv.Atoi(raw)
	if err != nil || count < 1 {
		slog.Debug("ignoring unusable inventory record", "key", key, "value", raw)
		return 0, false
	}
	return count, true
}

func writeCount(store KeyValueStore, key string, count int) {
	if store == nil {
		return
	}
	if err := store.Set(key, strconv.Itoa(count)); err != nil {
		slog.Warn("inventory write failed", "key", key, "error", err)
	}
}
