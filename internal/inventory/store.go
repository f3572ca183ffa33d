// internal/inventory/store.go
package inventory

import (
	"sync"
)

// Keys shared with the browser-side cache the counter was first built for.
const (
	DayKeyPrefix     = "inventory_"
	LastDateKey      = "lastInventoryDate"
	TomorrowValueKey = "tomorrowInventory"
)

// KeyValueStore is the persistence boundary for daily counts.
// A failed or missing read must be reported as ok == false.
type KeyValueStore interface {
	Get(key string) (value string, ok bool)
	Set(key, value string) error
}

type MemoryStore struct {
	data map[string]string
	mu   sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]string),
	}
}

func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	return v, ok
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return nil
}

// Len reports how many keys are held, stale days included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
