// internal/inventory/daykey.go
package inventory

import (
	"time"
)

const dayKeyLayout = "2006-01-02"

// DayKey is a calendar date in YYYY-MM-DD form.
type DayKey string

// KeyFor returns the calendar date of t in loc.
func KeyFor(t time.Time, loc *time.Location) DayKey {
	if loc != nil {
		t = t.In(loc)
	}
	return DayKey(t.Format(dayKeyLayout))
}

// Next returns the following calendar day.
func (k DayKey) Next() DayKey {
	t, err := time.Parse(dayKeyLayout, string(k))
	if err != nil {
		return k
	}
	return DayKey(t.AddDate(0, 0, 1).Format(dayKeyLayout))
}

func (k DayKey) Valid() bool {
	_, err := time.Parse(dayKeyLayout, string(k))
	return err == nil
}

// StorageKey is the key the day's count is persisted under.
func (k DayKey) StorageKey() string {
	return DayKeyPrefix + string(k)
}

func (k DayKey) String() string {
	return string(k)
}
