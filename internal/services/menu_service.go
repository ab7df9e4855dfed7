package services

import (
	"database/sql"
	"errors"
	"fmt"

	"dineqr_backend/internal/models"
	"dineqr_backend/internal/repositories"
	"dineqr_backend/pkg/utils"
)

// --- DTOs ---

// CreateCategoryRequest adds a menu category.
type CreateCategoryRequest struct {
	CategoryName string  `json:"category_name" binding:"required"`
	Description  *string `json:"description"`
	DisplayOrder int     `json:"display_order"`
}

// UpdateCategoryRequest patches a category.
type UpdateCategoryRequest struct {
	CategoryName *string `json:"category_name"`
	Description  *string `json:"description"`
	DisplayOrder *int    `json:"display_order"`
	IsActive     *bool   `json:"is_active"`
}

// CreateMenuItemRequest adds a sellable item.
type CreateMenuItemRequest struct {
	CategoryID      *int64   `json:"category_id"`
	ItemName        string   `json:"item_name" binding:"required"`
	Description     *string  `json:"description"`
	Price           float64  `json:"price" binding:"required,gt=0"`
	CostPrice       *float64 `json:"cost_price" binding:"omitempty,gte=0"`
	PrepTimeMinutes int      `json:"prep_time_minutes" binding:"omitempty,gte=0"`
	IsVegetarian    bool     `json:"is_vegetarian"`
	IsVegan         bool     `json:"is_vegan"`
	IsGlutenFree    bool     `json:"is_gluten_free"`
	IsSpicy         bool     `json:"is_spicy"`
	IsFeatured      bool     `json:"is_featured"`
	DisplayOrder    int      `json:"display_order"`
}

// UpdateMenuItemRequest patches an item. Price or cost changes recompute
// the stored profit figures.
type UpdateMenuItemRequest struct {
	CategoryID      *int64   `json:"category_id"`
	ItemName        *string  `json:"item_name"`
	Description     *string  `json:"description"`
	Price           *float64 `json:"price" binding:"omitempty,gt=0"`
	CostPrice       *float64 `json:"cost_price" binding:"omitempty,gte=0"`
	PrepTimeMinutes *int     `json:"prep_time_minutes" binding:"omitempty,gte=0"`
	IsVegetarian    *bool    `json:"is_vegetarian"`
	IsVegan         *bool    `json:"is_vegan"`
	IsGlutenFree    *bool    `json:"is_gluten_free"`
	IsSpicy         *bool    `json:"is_spicy"`
	IsAvailable     *bool    `json:"is_available"`
	IsFeatured      *bool    `json:"is_featured"`
	DisplayOrder    *int     `json:"display_order"`
}

// CreateOptionRequest adds an item customization.
type CreateOptionRequest struct {
	OptionGroup  string  `json:"option_group" binding:"required"`
	OptionName   string  `json:"option_name" binding:"required"`
	PriceChange  float64 `json:"price_change"`
	IsDefault    bool    `json:"is_default"`
	DisplayOrder int     `json:"display_order"`
}

// UpdateOptionRequest patches an option.
type UpdateOptionRequest struct {
	OptionGroup  *string  `json:"option_group"`
	OptionName   *string  `json:"option_name"`
	PriceChange  *float64 `json:"price_change"`
	IsDefault    *bool    `json:"is_default"`
	IsActive     *bool    `json:"is_active"`
	DisplayOrder *int     `json:"display_order"`
}

// --- MenuService Interface ---

type MenuService interface {
	CreateCategory(actor *Actor, restaurantID int64, req CreateCategoryRequest) (*models.MenuCategory, error)
	ListCategories(restaurantID int64, activeOnly bool) ([]models.MenuCategory, error)
	UpdateCategory(actor *Actor, categoryID int64, req UpdateCategoryRequest) (*models.MenuCategory, error)
	DeleteCategory(actor *Actor, categoryID int64) error

	CreateItem(actor *Actor, restaurantID int64, req CreateMenuItemRequest) (*models.MenuItem, error)
	GetItem(itemID int64) (*models.MenuItem, error)
	ListItems(filters models.MenuItemFilters) ([]models.MenuItem, int, error)
	UpdateItem(actor *Actor, itemID int64, req UpdateMenuItemRequest) (*models.MenuItem, error)
	DeleteItem(actor *Actor, itemID int64) error

	CreateOption(actor *Actor, itemID int64, req CreateOptionRequest) (*models.MenuItemOption, error)
	UpdateOption(actor *Actor, itemID, optionID int64, req UpdateOptionRequest) (*models.MenuItemOption, error)
	DeleteOption(actor *Actor, itemID, optionID int64) error
}

type menuService struct {
	menuRepo repositories.MenuRepository
	authz    AuthzService
	db       *sql.DB
}

// NewMenuService creates a new instance of MenuService.
func NewMenuService(menuRepo repositories.MenuRepository, authz AuthzService, db *sql.DB) MenuService {
	return &menuService{menuRepo: menuRepo, authz: authz, db: db}
}

// ComputeProfitMargin derives the stored per-unit margin figures from price
// and cost. Returns nils when no cost is known.
func ComputeProfitMargin(price float64, costPrice *float64) (margin, marginPercent *float64) {
	if costPrice == nil || price <= 0 {
		return nil, nil
	}
	m := utils.Round2(price - *costPrice)
	p := utils.Round2(m / price * 100)
	return &m, &p
}

// --- Category Methods ---

func (s *menuService) CreateCategory(actor *Actor, restaurantID int64, req CreateCategoryRequest) (*models.MenuCategory, error) {
	if err := s.authz.Require(actor, CapManageMenu); err != nil {
		return nil, err
	}
	if err := s.authz.RequireRestaurant(actor, restaurantID); err != nil {
		return nil, err
	}

	category := models.MenuCategory{
		RestaurantID: restaurantID,
		CategoryName: req.CategoryName,
		Description:  req.Description,
		DisplayOrder: req.DisplayOrder,
	}
	if _, err := s.menuRepo.CreateCategory(s.db, &category); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: category '%s' already exists", ErrValidation, req.CategoryName)
		}
		return nil, fmt.Errorf("creating category: %w", err)
	}
	category.IsActive = true
	return &category, nil
}

func (s *menuService) ListCategories(restaurantID int64, activeOnly bool) ([]models.MenuCategory, error) {
	categories, err := s.menuRepo.ListCategories(restaurantID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return categories, nil
}

func (s *menuService) UpdateCategory(actor *Actor, categoryID int64, req UpdateCategoryRequest) (*models.MenuCategory, error) {
	if err := s.authz.Require(actor, CapManageMenu); err != nil {
		return nil, err
	}

	category, err := s.menuRepo.GetCategoryByID(categoryID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("fetching category for update: %w", err)
	}
	if err := s.authz.RequireRestaurant(actor, category.RestaurantID); err != nil {
		return nil, err
	}

	if req.CategoryName != nil {
		category.CategoryName = *req.CategoryName
	}
	if req.Description != nil {
		category.Description = req.Description
	}
	if req.DisplayOrder != nil {
		category.DisplayOrder = *req.DisplayOrder
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := s.menuRepo.UpdateCategory(s.db, category); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: category name already in use", ErrValidation)
		}
		return nil, fmt.Errorf("updating category %d: %w", categoryID, err)
	}
	return category, nil
}

// DeleteCategory refuses to delete a category that still carries items so
// no item is silently orphaned.
func (s *menuService) DeleteCategory(actor *Actor, categoryID int64) error {
	if err := s.authz.Require(actor, CapManageMenu); err != nil {
		return err
	}

	category, err := s.menuRepo.GetCategoryByID(categoryID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("fetching category for deletion: %w", err)
	}
	if err := s.authz.RequireRestaurant(actor, category.RestaurantID); err != nil {
		return err
	}

	itemCount, err := s.menuRepo.CountItemsInCategory(categoryID)
	if err != nil {
		return fmt.Errorf("counting items in category %d: %w", categoryID, err)
	}
	if itemCount > 0 {
		return fmt.Errorf("%w: %d items attached", ErrCategoryInUse, itemCount)
	}

	if err := s.menuRepo.DeleteCategory(s.db, categoryID); err != nil {
		return fmt.Errorf("deleting category %d: %w", categoryID, err)
	}
	return nil
}

// --- Item Methods ---

func (s *menuService) CreateItem(actor *Actor, restaurantID int64, req CreateMenuItemRequest) (*models.MenuItem, error) {
	if err := s.authz.Require(actor, CapManageMenu); err != nil {
		return nil, err
	}
	if err := s.authz.RequireRestaurant(actor, restaurantID); err != nil {
		return nil, err
	}

	if req.CategoryID != nil {
		category, err := s.menuRepo.GetCategoryByID(*req.CategoryID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("checking category for item: %w", err)
		}
		if category.RestaurantID != restaurantID {
			return nil, fmt.Errorf("%w: category belongs to another restaurant", ErrValidation)
		}
	}
	if req.CostPrice != nil && *req.CostPrice > req.Price {
		return nil, fmt.Errorf("%w: cost price exceeds selling price", ErrValidation)
	}

	margin, marginPercent := ComputeProfitMargin(req.Price, req.CostPrice)
	item := models.MenuItem{
		RestaurantID:        restaurantID,
		CategoryID:          req.CategoryID,
		ItemName:            req.ItemName,
		Description:         req.Description,
		Price:               req.Price,
		CostPrice:           req.CostPrice,
		PrepTimeMinutes:     req.PrepTimeMinutes,
		IsVegetarian:        req.IsVegetarian,
		IsVegan:             req.IsVegan,
		IsGlutenFree:        req.IsGlutenFree,
		IsSpicy:             req.IsSpicy,
		IsAvailable:         true,
		IsFeatured:          req.IsFeatured,
		DisplayOrder:        req.DisplayOrder,
		ProfitMargin:        margin,
		ProfitMarginPercent: marginPercent,
	}
	if _, err := s.menuRepo.CreateItem(s.db, &item); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: item '%s' already exists", ErrValidation, req.ItemName)
		}
		return nil, fmt.Errorf("creating menu item: %w", err)
	}
	return &item, nil
}

func (s *menuService) GetItem(itemID int64) (*models.MenuItem, error) {
	item, err := s.menuRepo.GetItemByID(itemID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMenuItemNotFound
		}
		return nil, fmt.Errorf("getting menu item %d: %w", itemID, err)
	}

	options, err := s.menuRepo.ListOptionsByItem(itemID)
	if err != nil {
		return nil, fmt.Errorf("listing options for item %d: %w", itemID, err)
	}
	item.Options = options
	return item, nil
}

func (s *menuService) ListItems(filters models.MenuItemFilters) ([]models.MenuItem, int, error) {
	items, total, err := s.menuRepo.ListItems(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("listing menu items: %w", err)
	}
	return items, total, nil
}

func (s *menuService) UpdateItem(actor *Actor, itemID int64, req UpdateMenuItemRequest) (*models.MenuItem, error) {
	if err := s.authz.Require(actor, CapManageMenu); err != nil {
		return nil, err
	}

	item, err := s.menuRepo.GetItemByID(itemID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMenuItemNotFound
		}
		return nil, fmt.Errorf("fetching item for update: %w", err)
	}
	if err := s.authz.RequireRestaurant(actor, item.RestaurantID); err != nil {
		return nil, err
	}

	if req.CategoryID != nil {
		category, err := s.menuRepo.GetCategoryByID(*req.CategoryID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("checking category for item update: %w", err)
		}
		if category.RestaurantID != item.RestaurantID {
			return nil, fmt.Errorf("%w: category belongs to another restaurant", ErrValidation)
		}
		item.CategoryID = req.CategoryID
	}
	if req.ItemName != nil {
		item.ItemName = *req.ItemName
	}
	if req.Description != nil {
		item.Description = req.Description
	}
	if req.Price != nil {
		item.Price = *req.Price
	}
	if req.CostPrice != nil {
		item.CostPrice = req.CostPrice
	}
	if item.CostPrice != nil && *item.CostPrice > item.Price {
		return nil, fmt.Errorf("%w: cost price exceeds selling price", ErrValidation)
	}
	if req.PrepTimeMinutes != nil {
		item.PrepTimeMinutes = *req.PrepTimeMinutes
	}
	if req.IsVegetarian != nil {
		item.IsVegetarian = *req.IsVegetarian
	}
	if req.IsVegan != nil {
		item.IsVegan = *req.IsVegan
	}
	if req.IsGlutenFree != nil {
		item.IsGlutenFree = *req.IsGlutenFree
	}
	if req.IsSpicy != nil {
		item.IsSpicy = *req.IsSpicy
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}
	if req.IsFeatured != nil {
		item.IsFeatured = *req.IsFeatured
	}
	if req.DisplayOrder != nil {
		item.DisplayOrder = *req.DisplayOrder
	}

	// Margins always track the current price/cost pair.
	item.ProfitMargin, item.ProfitMarginPercent = ComputeProfitMargin(item.Price, item.CostPrice)

	if err := s.menuRepo.UpdateItem(s.db, item); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: item name already in use", ErrValidation)
		}
		return nil, fmt.Errorf("updating menu item %d: %w", itemID, err)
	}
	return item, nil
}

func (s *menuService) DeleteItem(actor *Actor, itemID int64) error {
	if err := s.authz.Require(actor, CapManageMenu); err != nil {
		return err
	}

	item, err := s.menuRepo.GetItemByID(itemID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrMenuItemNotFound
		}
		return fmt.Errorf("fetching item for deletion: %w", err)
	}
	if err := s.authz.RequireRestaurant(actor, item.RestaurantID); err != nil {
		return err
	}

	if err := s.menuRepo.DeleteItem(s.db, itemID); err != nil {
		return fmt.Errorf("deleting menu item %d: %w", itemID, err)
	}
	return nil
}

// --- Option Methods ---

func (s *menuService) CreateOption(actor *Actor, itemID int64, req CreateOptionRequest) (*models.MenuItemOption, error) {
	if err := s.authz.Require(actor, CapManageMenu); err != nil {
		return nil, err
	}

	item, err := s.menuRepo.GetItemByID(itemID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMenuItemNotFound
		}
		return nil, fmt.Errorf("fetching item for option creation: %w", err)
	}
	if err := s.authz.RequireRestaurant(actor, item.RestaurantID); err != nil {
		return nil, err
	}

	option := models.MenuItemOption{
		RestaurantID: item.RestaurantID,
		ItemID:       itemID,
		OptionGroup:  req.OptionGroup,
		OptionName:   req.OptionName,
		PriceChange:  req.PriceChange,
		IsDefault:    req.IsDefault,
		DisplayOrder: req.DisplayOrder,
	}
	if _, err := s.menuRepo.CreateOption(s.db, &option); err != nil {
		return nil, fmt.Errorf("creating option: %w", err)
	}
	option.IsActive = true
	return &option, nil
}

func (s *menuService) UpdateOption(actor *Actor, itemID, optionID int64, req UpdateOptionRequest) (*models.MenuItemOption, error) {
	if err := s.authz.Require(actor, CapManageMenu); err != nil {
		return nil, err
	}

	option, err := s.findOption(actor, itemID, optionID)
	if err != nil {
		return nil, err
	}

	if req.OptionGroup != nil {
		option.OptionGroup = *req.OptionGroup
	}
	if req.OptionName != nil {
		option.OptionName = *req.OptionName
	}
	if req.PriceChange != nil {
		option.PriceChange = *req.PriceChange
	}
	if req.IsDefault != nil {
		option.IsDefault = *req.IsDefault
	}
	if req.IsActive != nil {
		option.IsActive = *req.IsActive
	}
	if req.DisplayOrder != nil {
		option.DisplayOrder = *req.DisplayOrder
	}

	if err := s.menuRepo.UpdateOption(s.db, option); err != nil {
		return nil, fmt.Errorf("updating option %d: %w", optionID, err)
	}
	return option, nil
}

func (s *menuService) DeleteOption(actor *Actor, itemID, optionID int64) error {
	if err := s.authz.Require(actor, CapManageMenu); err != nil {
		return err
	}

	if _, err := s.findOption(actor, itemID, optionID); err != nil {
		return err
	}
	if err := s.menuRepo.DeleteOption(s.db, optionID); err != nil {
		return fmt.Errorf("deleting option %d: %w", optionID, err)
	}
	return nil
}

func (s *menuService) findOption(actor *Actor, itemID, optionID int64) (*models.MenuItemOption, error) {
	item, err := s.menuRepo.GetItemByID(itemID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMenuItemNotFound
		}
		return nil, fmt.Errorf("fetching item for option lookup: %w", err)
	}
	if err := s.authz.RequireRestaurant(actor, item.RestaurantID); err != nil {
		return nil, err
	}

	options, err := s.menuRepo.ListOptionsByItem(itemID)
	if err != nil {
		return nil, fmt.Errorf("listing options for item %d: %w", itemID, err)
	}
	for i := range options {
		if options[i].ID == optionID {
			return &options[i], nil
		}
	}
	return nil, ErrOptionNotFound
}
