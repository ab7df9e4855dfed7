package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dineqr_backend/internal/models"
	"dineqr_backend/internal/repositories"
)

type fakeTableRepo struct {
	repositories.TableRepository
	table        *models.RestaurantTable
	activeOrders int
	deleted      []int64
}

func (f *fakeTableRepo) GetByID(id int64) (*models.RestaurantTable, error) {
	if f.table == nil || f.table.ID != id {
		return nil, repositories.ErrNotFound
	}
	copied := *f.table
	return &copied, nil
}

func (f *fakeTableRepo) CountActiveOrders(tableID int64) (int, error) {
	return f.activeOrders, nil
}

func (f *fakeTableRepo) Delete(executor repositories.SQLExecutor, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeTableRepo) GetByQRCode(qrCode string) (*models.RestaurantTable, error) {
	if f.table == nil || f.table.QRCode != qrCode {
		return nil, repositories.ErrNotFound
	}
	copied := *f.table
	return &copied, nil
}

func TestTableDelete(t *testing.T) {
	restaurantID := int64(1)
	manager := NewActorForTest(models.RoleManager, &restaurantID, nil)

	t.Run("refused while orders are open", func(t *testing.T) {
		repo := &fakeTableRepo{
			table:        &models.RestaurantTable{ID: 3, RestaurantID: 1, TableNumber: "3"},
			activeOrders: 2,
		}
		svc := NewTableService(repo, nil, NewAuthzService(nil), nil)

		err := svc.Delete(manager, 3)
		assert.ErrorIs(t, err, ErrTableHasOpenOrders)
		assert.Empty(t, repo.deleted)
	})

	t.Run("deletes idle table", func(t *testing.T) {
		repo := &fakeTableRepo{
			table: &models.RestaurantTable{ID: 3, RestaurantID: 1, TableNumber: "3"},
		}
		svc := NewTableService(repo, nil, NewAuthzService(nil), nil)

		err := svc.Delete(manager, 3)
		assert.NoError(t, err)
		assert.Equal(t, []int64{3}, repo.deleted)
	})

	t.Run("unknown table", func(t *testing.T) {
		svc := NewTableService(&fakeTableRepo{}, nil, NewAuthzService(nil), nil)
		err := svc.Delete(manager, 42)
		assert.ErrorIs(t, err, ErrTableNotFound)
	})

	t.Run("tenant isolation", func(t *testing.T) {
		repo := &fakeTableRepo{
			table: &models.RestaurantTable{ID: 3, RestaurantID: 2, TableNumber: "3"},
		}
		svc := NewTableService(repo, nil, NewAuthzService(nil), nil)

		err := svc.Delete(manager, 3)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("staff cannot manage tables", func(t *testing.T) {
		repo := &fakeTableRepo{
			table: &models.RestaurantTable{ID: 3, RestaurantID: 1, TableNumber: "3"},
		}
		svc := NewTableService(repo, nil, NewAuthzService(nil), nil)

		staff := NewActorForTest(models.RoleStaff, &restaurantID, nil)
		err := svc.Delete(staff, 3)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestResolveQR(t *testing.T) {
	activeTable := &models.RestaurantTable{
		ID: 3, RestaurantID: 1, TableNumber: "5",
		QRCode: "QR_ARZ123_5", IsActive: true,
	}

	t.Run("resolves active table and restaurant", func(t *testing.T) {
		repo := &fakeTableRepo{table: activeTable}
		svc := NewTableService(repo, &fakeRestaurantRepo{restaurant: testRestaurant()}, NewAuthzService(nil), nil)

		table, restaurant, err := svc.ResolveQR("QR_ARZ123_5")
		assert.NoError(t, err)
		assert.Equal(t, int64(3), table.ID)
		assert.Equal(t, int64(1), restaurant.ID)
	})

	t.Run("unknown code", func(t *testing.T) {
		svc := NewTableService(&fakeTableRepo{}, nil, NewAuthzService(nil), nil)
		_, _, err := svc.ResolveQR("QR_NOPE_1")
		assert.ErrorIs(t, err, ErrTableNotFound)
	})

	t.Run("inactive table reads as missing", func(t *testing.T) {
		inactive := *activeTable
		inactive.IsActive = false
		svc := NewTableService(&fakeTableRepo{table: &inactive}, nil, NewAuthzService(nil), nil)

		_, _, err := svc.ResolveQR("QR_ARZ123_5")
		assert.ErrorIs(t, err, ErrTableNotFound)
	})

	t.Run("suspended restaurant", func(t *testing.T) {
		restaurant := testRestaurant()
		restaurant.Status = models.RestaurantStatusSuspended
		svc := NewTableService(&fakeTableRepo{table: activeTable}, &fakeRestaurantRepo{restaurant: restaurant}, NewAuthzService(nil), nil)

		_, _, err := svc.ResolveQR("QR_ARZ123_5")
		assert.ErrorIs(t, err, ErrRestaurantInactive)
	})
}
