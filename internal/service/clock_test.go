package service

import (
	"testing"
	"time"

	"poultryops/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayWindowKolkata(t *testing.T) {
	clock := NewStoreClock("Asia/Kolkata")
	store := &model.Store{ID: 1, Timezone: "Asia/Kolkata"}

	date := time.Date(2026, 7, 14, 0, 0, 0, 0, time.UTC)
	start, end := clock.DayWindow(store, date)

	// IST midnight is 18:30 UTC the previous evening.
	assert.Equal(t, time.Date(2026, 7, 13, 18, 30, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 7, 14, 18, 30, 0, 0, time.UTC), end)
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}

func TestDayWindowUTC(t *testing.T) {
	clock := NewStoreClock("UTC")
	store := &model.Store{ID: 1, Timezone: "UTC"}

	date := time.Date(2026, 7, 14, 0, 0, 0, 0, time.UTC)
	start, end := clock.DayWindow(store, date)
	assert.Equal(t, date, start)
	assert.Equal(t, date.AddDate(0, 0, 1), end)
}

func TestClockFallsBackOnBadTimezone(t *testing.T) {
	clock := NewStoreClock("Not/AZone")
	store := &model.Store{ID: 1, Timezone: "Also/Bogus"}

	// Both the default and the store TZ are unknown; UTC applies.
	require.Equal(t, time.UTC, clock.Location(store))

	today := clock.Today(store)
	assert.Equal(t, time.UTC, today.Location())
	assert.Zero(t, today.Hour())
	assert.Zero(t, today.Minute())
}

func TestTodayIsMidnight(t *testing.T) {
	clock := NewStoreClock("UTC")
	today := clock.Today(&model.Store{ID: 1, Timezone: "UTC"})

	assert.Zero(t, today.Hour())
	assert.Zero(t, today.Nanosecond())
	assert.False(t, today.After(time.Now().UTC()))
}
