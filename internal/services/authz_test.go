package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dineqr_backend/internal/models"
)

func TestActorCanByRole(t *testing.T) {
	restaurantID := int64(1)

	tests := []struct {
		role       string
		capability string
		want       bool
	}{
		{models.RoleAdmin, CapManageRestaurants, true},
		{models.RoleAdmin, CapRecordPayment, true},
		{models.RoleOwner, CapManageRestaurant, true},
		{models.RoleOwner, CapManageRestaurants, false},
		{models.RoleManager, CapManageStaff, true},
		{models.RoleManager, CapManageRestaurant, false},
		{models.RoleStaff, CapViewOrders, true},
		{models.RoleStaff, CapManageMenu, false},
		{models.RoleStaff, CapViewAnalytics, false},
		{models.RoleCustomer, CapViewOrders, false},
	}
	for _, tt := range tests {
		t.Run(tt.role+"_"+tt.capability, func(t *testing.T) {
			actor := NewActorForTest(tt.role, &restaurantID, nil)
			assert.Equal(t, tt.want, ActorCan(actor, tt.capability))
		})
	}
}

func TestActorCanOverridesWin(t *testing.T) {
	restaurantID := int64(1)

	// grant beyond the base role set
	granted := NewActorForTest(models.RoleStaff, &restaurantID, map[string]bool{CapManageMenu: true})
	assert.True(t, ActorCan(granted, CapManageMenu))

	// revoke below the base role set
	revoked := NewActorForTest(models.RoleManager, &restaurantID, map[string]bool{CapManageStaff: false})
	assert.False(t, ActorCan(revoked, CapManageStaff))

	// overrides touch only the named capability
	assert.True(t, ActorCan(revoked, CapManageMenu))
}

func TestActorCanNilActor(t *testing.T) {
	assert.False(t, ActorCan(nil, CapViewOrders))
}

func TestCanManageRole(t *testing.T) {
	tests := []struct {
		actorRole  string
		targetRole string
		want       bool
	}{
		{models.RoleAdmin, models.RoleOwner, true},
		{models.RoleAdmin, models.RoleStaff, true},
		{models.RoleAdmin, models.RoleAdmin, false},
		{models.RoleOwner, models.RoleManager, true},
		{models.RoleOwner, models.RoleStaff, true},
		{models.RoleOwner, models.RoleOwner, false},
		{models.RoleOwner, models.RoleAdmin, false},
		{models.RoleManager, models.RoleStaff, true},
		{models.RoleManager, models.RoleManager, false},
		{models.RoleStaff, models.RoleStaff, false},
	}
	for _, tt := range tests {
		t.Run(tt.actorRole+"_manages_"+tt.targetRole, func(t *testing.T) {
			assert.Equal(t, tt.want, CanManageRole(tt.actorRole, tt.targetRole))
		})
	}
}
