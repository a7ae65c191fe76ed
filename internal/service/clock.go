package service

import (
	"time"

	"poultryops/internal/model"

	"github.com/rs/zerolog/log"
)

// StoreClock resolves business-day boundaries in each store's own timezone.
// A "day" for settlement purposes is [00:00, 24:00) local to the store, not
// the server clock.
type StoreClock struct {
	fallback *time.Location
}

func NewStoreClock(defaultTZ string) *StoreClock {
	loc, err := time.LoadLocation(defaultTZ)
	if err != nil {
		log.Warn().Str("tz", defaultTZ).Msg("unknown default timezone, using UTC")
		loc = time.UTC
	}
	return &StoreClock{fallback: loc}
}

func (c *StoreClock) Location(store *model.Store) *time.Location {
	if store != nil && store.Timezone != "" {
		if loc, err := time.LoadLocation(store.Timezone); err == nil {
			return loc
		}
		log.Warn().Int("store_id", store.ID).Str("tz", store.Timezone).Msg("unknown store timezone, using default")
	}
	return c.fallback
}

// Today returns the store's current business date at local midnight.
func (c *StoreClock) Today(store *model.Store) time.Time {
	now := time.Now().In(c.Location(store))
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// DayWindow converts a business date into the UTC instants [start, end) that
// bound it in the store's timezone.
func (c *StoreClock) DayWindow(store *model.Store, date time.Time) (time.Time, time.Time) {
	loc := c.Location(store)
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	return start.UTC(), start.AddDate(0, 0, 1).UTC()
}
