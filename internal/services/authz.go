package services

import (
	"fmt"

	"dineqr_backend/internal/models"
	"dineqr_backend/internal/repositories"
)

// Capability names. Each role carries a fixed set; user_permission_overrides
// rows add or remove single capabilities per user.
const (
	CapManageRestaurants  = "manage_restaurants"
	CapManageRestaurant   = "manage_restaurant"
	CapManageStaff        = "manage_staff"
	CapManageMenu         = "manage_menu"
	CapManageTables       = "manage_tables"
	CapManageSpecials     = "manage_specials"
	CapManagePayments     = "manage_payments"
	CapViewOrders         = "view_orders"
	CapUpdateOrderStatus  = "update_order_status"
	CapCreateStaffOrder   = "create_staff_order"
	CapRecordPayment      = "record_payment"
	CapViewAnalytics      = "view_analytics"
	CapViewReconciliation = "view_reconciliation"
)

// roleCapabilities is the closed base capability set per role.
var roleCapabilities = map[string]map[string]bool{
	models.RoleAdmin: {
		CapManageRestaurants: true, CapManageRestaurant: true, CapManageStaff: true,
		CapManageMenu: true, CapManageTables: true, CapManageSpecials: true,
		CapManagePayments: true, CapViewOrders: true, CapUpdateOrderStatus: true,
		CapCreateStaffOrder: true, CapRecordPayment: true, CapViewAnalytics: true,
		CapViewReconciliation: true,
	},
	models.RoleOwner: {
		CapManageRestaurant: true, CapManageStaff: true, CapManageMenu: true,
		CapManageTables: true, CapManageSpecials: true, CapManagePayments: true,
		CapViewOrders: true, CapUpdateOrderStatus: true, CapCreateStaffOrder: true,
		CapRecordPayment: true, CapViewAnalytics: true, CapViewReconciliation: true,
	},
	models.RoleManager: {
		CapManageStaff: true, CapManageMenu: true, CapManageTables: true,
		CapManageSpecials: true, CapViewOrders: true, CapUpdateOrderStatus: true,
		CapCreateStaffOrder: true, CapRecordPayment: true, CapViewAnalytics: true,
		CapViewReconciliation: true,
	},
	models.RoleStaff: {
		CapViewOrders: true, CapUpdateOrderStatus: true,
		CapCreateStaffOrder: true, CapRecordPayment: true,
	},
	models.RoleCustomer: {},
}

// Actor is the explicit caller identity threaded through every staff-facing
// service operation. There is no ambient current-user state; handlers build
// the actor from the verified JWT and pass it down.
type Actor struct {
	UserID       int64
	Email        string
	Role         string
	RestaurantID *int64

	overrides map[string]bool
}

// AuthzService resolves actor capabilities, folding per-user overrides over
// the role's base set.
type AuthzService interface {
	LoadActor(userID int64) (*Actor, error)
	Can(actor *Actor, capability string) bool
	Require(actor *Actor, capability string) error
	RequireRestaurant(actor *Actor, restaurantID int64) error
}

type authzService struct {
	authRepo repositories.AuthRepository
}

// NewAuthzService creates a new instance of AuthzService.
func NewAuthzService(authRepo repositories.AuthRepository) AuthzService {
	return &authzService{authRepo: authRepo}
}

func (s *authzService) LoadActor(userID int64) (*Actor, error) {
	user, err := s.authRepo.FindUserByID(userID)
	if err != nil {
		return nil, fmt.Errorf("loading actor %d: %w", userID, err)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account is deactivated", ErrForbidden)
	}

	overrideRows, err := s.authRepo.GetPermissionOverrides(userID)
	if err != nil {
		return nil, fmt.Errorf("loading permission overrides for actor %d: %w", userID, err)
	}
	overrides := make(map[string]bool, len(overrideRows))
	for _, row := range overrideRows {
		overrides[row.Capability] = row.Allowed
	}

	return &Actor{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		RestaurantID: user.RestaurantID,
		overrides:    overrides,
	}, nil
}

// Can resolves one capability for the actor: an explicit override wins,
// otherwise the role's base set decides.
func (s *authzService) Can(actor *Actor, capability string) bool {
	return ActorCan(actor, capability)
}

func (s *authzService) Require(actor *Actor, capability string) error {
	if !ActorCan(actor, capability) {
		return fmt.Errorf("%w: requires %s", ErrForbidden, capability)
	}
	return nil
}

// RequireRestaurant enforces tenant isolation: a non-admin actor may only
// touch resources of their own restaurant.
func (s *authzService) RequireRestaurant(actor *Actor, restaurantID int64) error {
	if actor.Role == models.RoleAdmin {
		return nil
	}
	if actor.RestaurantID == nil || *actor.RestaurantID != restaurantID {
		return fmt.Errorf("%w: resource belongs to another restaurant", ErrForbidden)
	}
	return nil
}

// ActorCan is the pure capability check used by Can and by tests.
func ActorCan(actor *Actor, capability string) bool {
	if actor == nil {
		return false
	}
	if allowed, ok := actor.overrides[capability]; ok {
		return allowed
	}
	return roleCapabilities[actor.Role][capability]
}

// NewActorForTest builds an actor with explicit overrides. Production code
// goes through LoadActor.
func NewActorForTest(role string, restaurantID *int64, overrides map[string]bool) *Actor {
	return &Actor{Role: role, RestaurantID: restaurantID, overrides: overrides}
}

// CanManageRole enforces the staff management hierarchy: owners manage
// managers and staff, managers manage staff only.
func CanManageRole(actorRole, targetRole string) bool {
	switch actorRole {
	case models.RoleAdmin:
		return targetRole != models.RoleAdmin
	case models.RoleOwner:
		return targetRole == models.RoleManager || targetRole == models.RoleStaff
	case models.RoleManager:
		return targetRole == models.RoleStaff
	default:
		return false
	}
}
