package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserIsLocked(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	unlocked := &User{}
	assert.False(t, unlocked.IsLocked(now))

	future := now.Add(30 * time.Minute)
	locked := &User{LockedUntil: &future}
	assert.True(t, locked.IsLocked(now))

	past := now.Add(-time.Minute)
	expired := &User{LockedUntil: &past}
	assert.False(t, expired.IsLocked(now))
}

func TestUserFullName(t *testing.T) {
	u := &User{FirstName: "Aida", LastName: "Bekova"}
	assert.Equal(t, "Aida Bekova", u.FullName())
}
