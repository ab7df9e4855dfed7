package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCartValidate(t *testing.T) {
	tests := []struct {
		name    string
		cart    Cart
		wantErr bool
	}{
		{"empty cart", Cart{}, false},
		{"valid lines", Cart{{MenuItemID: 1, Quantity: 2}, {MenuItemID: 3, Quantity: 1, Note: "no onions"}}, false},
		{"zero item reference", Cart{{MenuItemID: 0, Quantity: 1}}, true},
		{"negative item reference", Cart{{MenuItemID: -4, Quantity: 1}}, true},
		{"zero quantity", Cart{{MenuItemID: 1, Quantity: 0}}, true},
		{"negative quantity", Cart{{MenuItemID: 1, Quantity: -2}}, true},
		{"bad line after good line", Cart{{MenuItemID: 1, Quantity: 1}, {MenuItemID: 2, Quantity: 0}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cart.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCart)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGuestSessionExpiry(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	live := &GuestSession{IsActive: true, ExpiresAt: now.Add(time.Hour)}
	assert.False(t, live.IsExpired(now))
	assert.True(t, live.IsValid(now))

	expired := &GuestSession{IsActive: true, ExpiresAt: now.Add(-time.Minute)}
	assert.True(t, expired.IsExpired(now))
	assert.False(t, expired.IsValid(now))

	ended := &GuestSession{IsActive: false, ExpiresAt: now.Add(time.Hour)}
	assert.False(t, ended.IsExpired(now))
	assert.False(t, ended.IsValid(now))
}

func TestTableDisplayName(t *testing.T) {
	name := "Window Booth"
	named := &RestaurantTable{TableNumber: "7", TableName: &name}
	assert.Equal(t, "Window Booth", named.DisplayName())

	unnamed := &RestaurantTable{TableNumber: "7"}
	assert.Equal(t, "Table 7", unnamed.DisplayName())

	empty := ""
	blank := &RestaurantTable{TableNumber: "7", TableName: &empty}
	assert.Equal(t, "Table 7", blank.DisplayName())
}

func TestTableIsAvailable(t *testing.T) {
	assert.True(t, (&RestaurantTable{IsActive: true, CurrentStatus: TableStatusAvailable}).IsAvailable())
	assert.False(t, (&RestaurantTable{IsActive: true, CurrentStatus: TableStatusOccupied}).IsAvailable())
	assert.False(t, (&RestaurantTable{IsActive: false, CurrentStatus: TableStatusAvailable}).IsAvailable())
}
