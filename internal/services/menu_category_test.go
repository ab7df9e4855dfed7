package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dineqr_backend/internal/models"
	"dineqr_backend/internal/repositories"
)

type fakeCategoryRepo struct {
	repositories.MenuRepository
	category  *models.MenuCategory
	itemCount int
	deleted   []int64
}

func (f *fakeCategoryRepo) GetCategoryByID(id int64) (*models.MenuCategory, error) {
	if f.category == nil || f.category.ID != id {
		return nil, repositories.ErrNotFound
	}
	copied := *f.category
	return &copied, nil
}

func (f *fakeCategoryRepo) CountItemsInCategory(categoryID int64) (int, error) {
	return f.itemCount, nil
}

func (f *fakeCategoryRepo) DeleteCategory(executor repositories.SQLExecutor, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func TestDeleteCategory(t *testing.T) {
	restaurantID := int64(1)
	owner := NewActorForTest(models.RoleOwner, &restaurantID, nil)

	t.Run("refused while items are attached", func(t *testing.T) {
		repo := &fakeCategoryRepo{
			category:  &models.MenuCategory{ID: 5, RestaurantID: 1, CategoryName: "Mains"},
			itemCount: 4,
		}
		svc := NewMenuService(repo, NewAuthzService(nil), nil)

		err := svc.DeleteCategory(owner, 5)
		assert.ErrorIs(t, err, ErrCategoryInUse)
		assert.Empty(t, repo.deleted)
	})

	t.Run("deletes empty category", func(t *testing.T) {
		repo := &fakeCategoryRepo{
			category: &models.MenuCategory{ID: 5, RestaurantID: 1, CategoryName: "Mains"},
		}
		svc := NewMenuService(repo, NewAuthzService(nil), nil)

		err := svc.DeleteCategory(owner, 5)
		assert.NoError(t, err)
		assert.Equal(t, []int64{5}, repo.deleted)
	})

	t.Run("unknown category", func(t *testing.T) {
		svc := NewMenuService(&fakeCategoryRepo{}, NewAuthzService(nil), nil)
		err := svc.DeleteCategory(owner, 9)
		assert.ErrorIs(t, err, ErrCategoryNotFound)
	})

	t.Run("tenant isolation", func(t *testing.T) {
		repo := &fakeCategoryRepo{
			category: &models.MenuCategory{ID: 5, RestaurantID: 2, CategoryName: "Mains"},
		}
		svc := NewMenuService(repo, NewAuthzService(nil), nil)

		err := svc.DeleteCategory(owner, 5)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}
