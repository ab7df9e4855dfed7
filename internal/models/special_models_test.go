package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func specialForJune() *DailySpecial {
	return &DailySpecial{
		SpecialName: "June Promo",
		IsActive:    true,
		ValidFrom:   time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil:  time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
	}
}

func TestSpecialAppliesOnDateWindow(t *testing.T) {
	s := specialForJune()

	assert.True(t, s.AppliesOn(time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)))
	// boundary days are inclusive
	assert.True(t, s.AppliesOn(time.Date(2026, 6, 1, 0, 0, 1, 0, time.UTC)))
	assert.True(t, s.AppliesOn(time.Date(2026, 6, 30, 23, 59, 0, 0, time.UTC)))

	assert.False(t, s.AppliesOn(time.Date(2026, 5, 31, 12, 0, 0, 0, time.UTC)))
	assert.False(t, s.AppliesOn(time.Date(2026, 7, 1, 0, 0, 1, 0, time.UTC)))
}

func TestSpecialAppliesOnInactive(t *testing.T) {
	s := specialForJune()
	s.IsActive = false
	assert.False(t, s.AppliesOn(time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)))
}

func TestSpecialAppliesOnWeekdayMask(t *testing.T) {
	s := specialForJune()
	// Monday and Tuesday only; Sunday is bit 0
	s.WeekdayMask = (1 << int(time.Monday)) | (1 << int(time.Tuesday))

	monday := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Monday, monday.Weekday())
	assert.True(t, s.AppliesOn(monday))

	wednesday := monday.AddDate(0, 0, 2)
	assert.False(t, s.AppliesOn(wednesday))

	// zero mask means every day
	s.WeekdayMask = 0
	assert.True(t, s.AppliesOn(wednesday))
}

func TestSpecialAppliesOnTimeOfDay(t *testing.T) {
	s := specialForJune()
	from, until := "11:00", "14:00"
	s.ValidFromTime = &from
	s.ValidUntilTime = &until

	assert.True(t, s.AppliesOn(time.Date(2026, 6, 15, 12, 30, 0, 0, time.UTC)))
	assert.True(t, s.AppliesOn(time.Date(2026, 6, 15, 11, 0, 0, 0, time.UTC)))
	assert.True(t, s.AppliesOn(time.Date(2026, 6, 15, 14, 0, 0, 0, time.UTC)))

	assert.False(t, s.AppliesOn(time.Date(2026, 6, 15, 10, 59, 0, 0, time.UTC)))
	assert.False(t, s.AppliesOn(time.Date(2026, 6, 15, 14, 1, 0, 0, time.UTC)))
}

func TestSpecialUsageExhausted(t *testing.T) {
	s := specialForJune()
	assert.False(t, s.UsageExhausted())

	limit := 50
	s.UsageLimit = &limit
	s.UsageCount = 49
	assert.False(t, s.UsageExhausted())

	s.UsageCount = 50
	assert.True(t, s.UsageExhausted())
}
