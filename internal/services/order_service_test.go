package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dineqr_backend/internal/models"
	"dineqr_backend/internal/repositories"
)

// Fakes embed the repository interface so only the methods a test path
// touches need real behavior.

type fakeOrderRepo struct {
	repositories.OrderRepository
	byIdempotencyKey map[string]*models.Order
	tableOrderCount  int
}

func (f *fakeOrderRepo) GetByIdempotencyKey(restaurantID int64, key string) (*models.Order, error) {
	if order, ok := f.byIdempotencyKey[key]; ok {
		return order, nil
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeOrderRepo) CountByTable(tableID int64) (int, error) {
	return f.tableOrderCount, nil
}

type fakeMenuRepo struct {
	repositories.MenuRepository
	items map[int64]*models.MenuItem
}

func (f *fakeMenuRepo) GetItemByID(id int64) (*models.MenuItem, error) {
	if item, ok := f.items[id]; ok {
		copied := *item
		return &copied, nil
	}
	return nil, repositories.ErrNotFound
}

type fakeRestaurantRepo struct {
	repositories.RestaurantRepository
	restaurant *models.Restaurant
}

func (f *fakeRestaurantRepo) GetByID(id int64) (*models.Restaurant, error) {
	if f.restaurant == nil || f.restaurant.ID != id {
		return nil, repositories.ErrNotFound
	}
	copied := *f.restaurant
	return &copied, nil
}

type fakeSpecialRepo struct {
	repositories.SpecialRepository
	special *models.DailySpecial
}

func (f *fakeSpecialRepo) GetByID(id int64) (*models.DailySpecial, error) {
	if f.special == nil || f.special.ID != id {
		return nil, repositories.ErrNotFound
	}
	copied := *f.special
	return &copied, nil
}

func testRestaurant() *models.Restaurant {
	return &models.Restaurant{
		ID:                1,
		RestaurantName:    "Aruzhan's Kitchen",
		RestaurantCode:    "ARZ123",
		Status:            models.RestaurantStatusActive,
		TaxRate:           0.08,
		ServiceChargeRate: 0.10,
	}
}

func newOrderServiceForTest(orders *fakeOrderRepo, menu *fakeMenuRepo, restaurants *fakeRestaurantRepo, specials *fakeSpecialRepo) OrderService {
	if orders == nil {
		orders = &fakeOrderRepo{}
	}
	if menu == nil {
		menu = &fakeMenuRepo{}
	}
	if restaurants == nil {
		restaurants = &fakeRestaurantRepo{restaurant: testRestaurant()}
	}
	if specials == nil {
		specials = &fakeSpecialRepo{}
	}
	return NewOrderService(orders, menu, nil, restaurants, specials, NewAuthzService(nil), nil, false)
}

func activeSession() *models.GuestSession {
	return &models.GuestSession{
		ID:           7,
		RestaurantID: 1,
		TableID:      3,
		SessionToken: "tok",
		PartySize:    2,
		IsActive:     true,
		ExpiresAt:    time.Now().Add(time.Hour),
	}
}

func TestCreateGuestOrderExpiredSession(t *testing.T) {
	svc := newOrderServiceForTest(nil, nil, nil, nil)

	session := activeSession()
	session.ExpiresAt = time.Now().Add(-time.Minute)

	_, err := svc.CreateGuestOrder(session, CreateOrderRequest{
		Items: []OrderItemRequest{{MenuItemID: 1, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestCreateGuestOrderInactiveSession(t *testing.T) {
	svc := newOrderServiceForTest(nil, nil, nil, nil)

	session := activeSession()
	session.IsActive = false

	_, err := svc.CreateGuestOrder(session, CreateOrderRequest{
		Items: []OrderItemRequest{{MenuItemID: 1, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrSessionInactive)
}

func TestCreateGuestOrderEmptyCartAndRequest(t *testing.T) {
	svc := newOrderServiceForTest(nil, nil, nil, nil)

	_, err := svc.CreateGuestOrder(activeSession(), CreateOrderRequest{})
	assert.ErrorIs(t, err, ErrEmptyOrder)
}

func TestCreateStaffOrderAuthz(t *testing.T) {
	restaurantID := int64(1)
	svc := newOrderServiceForTest(nil, nil, nil, nil)

	customer := NewActorForTest(models.RoleCustomer, &restaurantID, nil)
	_, err := svc.CreateStaffOrder(customer, 1, CreateOrderRequest{
		Items: []OrderItemRequest{{MenuItemID: 1, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrForbidden)

	otherRestaurant := int64(2)
	staff := NewActorForTest(models.RoleStaff, &otherRestaurant, nil)
	_, err = svc.CreateStaffOrder(staff, 1, CreateOrderRequest{
		Items: []OrderItemRequest{{MenuItemID: 1, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCreateOrderUnknownOrderType(t *testing.T) {
	restaurantID := int64(1)
	svc := newOrderServiceForTest(nil, nil, nil, nil)
	staff := NewActorForTest(models.RoleStaff, &restaurantID, nil)

	_, err := svc.CreateStaffOrder(staff, 1, CreateOrderRequest{
		OrderType: "DRIVE_THROUGH",
		Items:     []OrderItemRequest{{MenuItemID: 1, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateOrderDineInNeedsTable(t *testing.T) {
	restaurantID := int64(1)
	svc := newOrderServiceForTest(nil, nil, nil, nil)
	staff := NewActorForTest(models.RoleStaff, &restaurantID, nil)

	_, err := svc.CreateStaffOrder(staff, 1, CreateOrderRequest{
		OrderType: models.OrderTypeDineIn,
		Items:     []OrderItemRequest{{MenuItemID: 1, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateOrderIdempotencyReplay(t *testing.T) {
	restaurantID := int64(1)
	existing := &models.Order{ID: 99, RestaurantID: 1, OrderNumber: "ORD-3-001"}
	orders := &fakeOrderRepo{byIdempotencyKey: map[string]*models.Order{"abc-123": existing}}
	svc := newOrderServiceForTest(orders, nil, nil, nil)
	staff := NewActorForTest(models.RoleStaff, &restaurantID, nil)

	key := "abc-123"
	tableID := int64(3)
	order, err := svc.CreateStaffOrder(staff, 1, CreateOrderRequest{
		OrderType:      models.OrderTypeDineIn,
		TableID:        &tableID,
		Items:          []OrderItemRequest{{MenuItemID: 1, Quantity: 1}},
		IdempotencyKey: &key,
	})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, order.ID)
}

func TestCreateOrderInactiveRestaurant(t *testing.T) {
	restaurantID := int64(1)
	restaurant := testRestaurant()
	restaurant.Status = models.RestaurantStatusSuspended
	svc := newOrderServiceForTest(nil, nil, &fakeRestaurantRepo{restaurant: restaurant}, nil)
	staff := NewActorForTest(models.RoleStaff, &restaurantID, nil)

	tableID := int64(3)
	_, err := svc.CreateStaffOrder(staff, 1, CreateOrderRequest{
		OrderType: models.OrderTypeDineIn,
		TableID:   &tableID,
		Items:     []OrderItemRequest{{MenuItemID: 1, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrRestaurantInactive)
}

func TestCreateOrderTakeoutNotOffered(t *testing.T) {
	restaurantID := int64(1)
	svc := newOrderServiceForTest(nil, nil, nil, nil) // AllowsTakeout defaults to false
	staff := NewActorForTest(models.RoleStaff, &restaurantID, nil)

	_, err := svc.CreateStaffOrder(staff, 1, CreateOrderRequest{
		OrderType: models.OrderTypeTakeout,
		Items:     []OrderItemRequest{{MenuItemID: 1, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateOrderUnavailableItem(t *testing.T) {
	restaurantID := int64(1)
	menu := &fakeMenuRepo{items: map[int64]*models.MenuItem{
		1: {ID: 1, RestaurantID: 1, ItemName: "Plov", Price: 12.00, IsAvailable: false},
	}}
	svc := newOrderServiceForTest(nil, menu, nil, nil)
	staff := NewActorForTest(models.RoleStaff, &restaurantID, nil)

	tableID := int64(3)
	_, err := svc.CreateStaffOrder(staff, 1, CreateOrderRequest{
		OrderType: models.OrderTypeDineIn,
		TableID:   &tableID,
		Items:     []OrderItemRequest{{MenuItemID: 1, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrItemUnavailable)
}

func TestCreateOrderForeignItem(t *testing.T) {
	restaurantID := int64(1)
	menu := &fakeMenuRepo{items: map[int64]*models.MenuItem{
		1: {ID: 1, RestaurantID: 2, ItemName: "Plov", Price: 12.00, IsAvailable: true},
	}}
	svc := newOrderServiceForTest(nil, menu, nil, nil)
	staff := NewActorForTest(models.RoleStaff, &restaurantID, nil)

	tableID := int64(3)
	_, err := svc.CreateStaffOrder(staff, 1, CreateOrderRequest{
		OrderType: models.OrderTypeDineIn,
		TableID:   &tableID,
		Items:     []OrderItemRequest{{MenuItemID: 1, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrMenuItemNotFound)
}

func TestCreateOrderSpecialBelowMinimum(t *testing.T) {
	restaurantID := int64(1)
	menu := &fakeMenuRepo{items: map[int64]*models.MenuItem{
		1: {ID: 1, RestaurantID: 1, ItemName: "Plov", Price: 12.00, IsAvailable: true},
	}}
	minimum := 50.00
	specials := &fakeSpecialRepo{special: &models.DailySpecial{
		ID:                 4,
		RestaurantID:       1,
		DiscountType:       models.DiscountTypePercentage,
		DiscountValue:      10,
		MinimumOrderAmount: &minimum,
		ValidFrom:          time.Now().AddDate(0, 0, -1),
		ValidUntil:         time.Now().AddDate(0, 0, 1),
		IsActive:           true,
	}}
	svc := newOrderServiceForTest(nil, menu, nil, specials)
	staff := NewActorForTest(models.RoleStaff, &restaurantID, nil)

	tableID := int64(3)
	specialID := int64(4)
	_, err := svc.CreateStaffOrder(staff, 1, CreateOrderRequest{
		OrderType: models.OrderTypeDineIn,
		TableID:   &tableID,
		Items:     []OrderItemRequest{{MenuItemID: 1, Quantity: 1}},
		SpecialID: &specialID,
	})
	assert.ErrorIs(t, err, ErrValidation)
}
