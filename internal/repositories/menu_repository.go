package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"dineqr_backend/internal/models"
)

// MenuRepository defines catalog persistence: categories, items and options.
type MenuRepository interface {
	// Category methods
	CreateCategory(executor SQLExecutor, category *models.MenuCategory) (int64, error)
	GetCategoryByID(id int64) (*models.MenuCategory, error)
	ListCategories(restaurantID int64, activeOnly bool) ([]models.MenuCategory, error)
	UpdateCategory(executor SQLExecutor, category *models.MenuCategory) error
	DeleteCategory(executor SQLExecutor, id int64) error
	CountItemsInCategory(categoryID int64) (int, error)

	// Item methods
	CreateItem(executor SQLExecutor, item *models.MenuItem) (int64, error)
	GetItemByID(id int64) (*models.MenuItem, error)
	ListItems(filters models.MenuItemFilters) ([]models.MenuItem, int, error)
	UpdateItem(executor SQLExecutor, item *models.MenuItem) error
	DeleteItem(executor SQLExecutor, id int64) error

	// Option methods
	CreateOption(executor SQLExecutor, option *models.MenuItemOption) (int64, error)
	ListOptionsByItem(itemID int64) ([]models.MenuItemOption, error)
	UpdateOption(executor SQLExecutor, option *models.MenuItemOption) error
	DeleteOption(executor SQLExecutor, id int64) error
}

type menuRepository struct {
	db *sql.DB
}

// NewMenuRepository creates a new instance of MenuRepository.
func NewMenuRepository(db *sql.DB) MenuRepository {
	return &menuRepository{db: db}
}

// --- Category Methods ---

func (r *menuRepository) CreateCategory(executor SQLExecutor, category *models.MenuCategory) (int64, error) {
	query := `INSERT INTO menu_categories
	            (restaurant_id, category_name, description, display_order, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`
	currentTime := time.Now()
	err := executor.QueryRow(query,
		category.RestaurantID, category.CategoryName, category.Description,
		category.DisplayOrder, true, currentTime, currentTime,
	).Scan(&category.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: category name '%s' already exists (constraint: %s)", ErrDuplicateKey, category.CategoryName, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating menu category: %v", ErrDatabaseError, err)
	}
	return category.ID, nil
}

func (r *menuRepository) GetCategoryByID(id int64) (*models.MenuCategory, error) {
	category := &models.MenuCategory{}
	query := `SELECT id, restaurant_id, category_name, description, display_order, is_active, created_at, updated_at
	          FROM menu_categories WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(
		&category.ID, &category.RestaurantID, &category.CategoryName, &category.Description,
		&category.DisplayOrder, &category.IsActive, &category.CreatedAt, &category.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting menu category by ID %d: %v", ErrDatabaseError, id, err)
	}
	return category, nil
}

func (r *menuRepository) ListCategories(restaurantID int64, activeOnly bool) ([]models.MenuCategory, error) {
	categories := []models.MenuCategory{}
	query := `SELECT id, restaurant_id, category_name, description, display_order, is_active, created_at, updated_at
	          FROM menu_categories
	          WHERE restaurant_id = $1 AND ($2 = FALSE OR is_active = TRUE)
	          ORDER BY display_order, category_name`
	rows, err := r.db.Query(query, restaurantID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("%w: querying menu categories for restaurant %d: %v", ErrDatabaseError, restaurantID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var category models.MenuCategory
		err := rows.Scan(
			&category.ID, &category.RestaurantID, &category.CategoryName, &category.Description,
			&category.DisplayOrder, &category.IsActive, &category.CreatedAt, &category.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning menu category: %v", ErrDatabaseError, err)
		}
		categories = append(categories, category)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating menu category rows: %v", ErrDatabaseError, err)
	}
	return categories, nil
}

func (r *menuRepository) UpdateCategory(executor SQLExecutor, category *models.MenuCategory) error {
	query := `UPDATE menu_categories SET
	            category_name = $1, description = $2, display_order = $3, is_active = $4, updated_at = $5
	          WHERE id = $6`
	result, err := executor.Exec(query,
		category.CategoryName, category.Description, category.DisplayOrder,
		category.IsActive, time.Now(), category.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w: category name '%s' already exists (constraint: %s)", ErrDuplicateKey, category.CategoryName, pqErr.Constraint)
		}
		return fmt.Errorf("%w: updating menu category ID %d: %v", ErrDatabaseError, category.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for category update ID %d: %v", ErrDatabaseError, category.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *menuRepository) DeleteCategory(executor SQLExecutor, id int64) error {
	query := `DELETE FROM menu_categories WHERE id = $1`
	result, err := executor.Exec(query, id)
	if err != nil {
		return fmt.Errorf("%w: deleting menu category ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for deleting category ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *menuRepository) CountItemsInCategory(categoryID int64) (int, error) {
	count := 0
	query := `SELECT COUNT(*) FROM menu_items WHERE category_id = $1`
	err := r.db.QueryRow(query, categoryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: counting items in category %d: %v", ErrDatabaseError, categoryID, err)
	}
	return count, nil
}

// --- Item Methods ---

const menuItemColumns = `id, restaurant_id, category_id, item_name, description, price, cost_price,
	prep_time_minutes, is_vegetarian, is_vegan, is_gluten_free, is_spicy, is_available,
	is_featured, display_order, profit_margin, profit_margin_percent, created_at, updated_at`

func scanMenuItem(row interface{ Scan(...interface{}) error }, m *models.MenuItem) error {
	return row.Scan(
		&m.ID, &m.RestaurantID, &m.CategoryID, &m.ItemName, &m.Description, &m.Price,
		&m.CostPrice, &m.PrepTimeMinutes, &m.IsVegetarian, &m.IsVegan, &m.IsGlutenFree,
		&m.IsSpicy, &m.IsAvailable, &m.IsFeatured, &m.DisplayOrder, &m.ProfitMargin,
		&m.ProfitMarginPercent, &m.CreatedAt, &m.UpdatedAt,
	)
}

func (r *menuRepository) CreateItem(executor SQLExecutor, item *models.MenuItem) (int64, error) {
	query := `INSERT INTO menu_items
	            (restaurant_id, category_id, item_name, description, price, cost_price,
	             prep_time_minutes, is_vegetarian, is_vegan, is_gluten_free, is_spicy,
	             is_available, is_featured, display_order, profit_margin, profit_margin_percent,
	             created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	          RETURNING id`
	currentTime := time.Now()
	err := executor.QueryRow(query,
		item.RestaurantID, item.CategoryID, item.ItemName, item.Description, item.Price,
		item.CostPrice, item.PrepTimeMinutes, item.IsVegetarian, item.IsVegan,
		item.IsGlutenFree, item.IsSpicy, item.IsAvailable, item.IsFeatured,
		item.DisplayOrder, item.ProfitMargin, item.ProfitMarginPercent,
		currentTime, currentTime,
	).Scan(&item.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			if pqErr.Code.Name() == "unique_violation" {
				return 0, fmt.Errorf("%w: item name '%s' already exists (constraint: %s)", ErrDuplicateKey, item.ItemName, pqErr.Constraint)
			}
			if pqErr.Code.Name() == "foreign_key_violation" {
				return 0, fmt.Errorf("%w: creating menu item (constraint: %s): %v", ErrNotFound, pqErr.Constraint, err)
			}
		}
		return 0, fmt.Errorf("%w: creating menu item: %v", ErrDatabaseError, err)
	}
	return item.ID, nil
}

func (r *menuRepository) GetItemByID(id int64) (*models.MenuItem, error) {
	item := &models.MenuItem{}
	query := `SELECT ` + menuItemColumns + ` FROM menu_items WHERE id = $1`
	err := scanMenuItem(r.db.QueryRow(query, id), item)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting menu item by ID %d: %v", ErrDatabaseError, id, err)
	}
	return item, nil
}

func (r *menuRepository) ListItems(filters models.MenuItemFilters) ([]models.MenuItem, int, error) {
	items := []models.MenuItem{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + menuItemColumns + `, COUNT(*) OVER() AS total_count FROM menu_items`)

	conditions := []string{"restaurant_id = $1"}
	args := []interface{}{filters.RestaurantID}
	argCounter := 2

	if filters.CategoryID != nil {
		conditions = append(conditions, fmt.Sprintf("category_id = $%d", argCounter))
		args = append(args, *filters.CategoryID)
		argCounter++
	}
	if filters.Search != nil && *filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(item_name ILIKE $%d OR description ILIKE $%d)", argCounter, argCounter))
		args = append(args, "%"+*filters.Search+"%")
		argCounter++
	}
	if filters.AvailableOnly {
		conditions = append(conditions, "is_available = TRUE")
	}

	queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	queryBuilder.WriteString(" ORDER BY display_order, item_name")

	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCounter))
		args = append(args, filters.PageSize)
		argCounter++
		if filters.Page > 0 {
			offset := (filters.Page - 1) * filters.PageSize
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCounter))
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying menu items: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.MenuItem
		err := rows.Scan(
			&item.ID, &item.RestaurantID, &item.CategoryID, &item.ItemName, &item.Description,
			&item.Price, &item.CostPrice, &item.PrepTimeMinutes, &item.IsVegetarian,
			&item.IsVegan, &item.IsGlutenFree, &item.IsSpicy, &item.IsAvailable,
			&item.IsFeatured, &item.DisplayOrder, &item.ProfitMargin, &item.ProfitMarginPercent,
			&item.CreatedAt, &item.UpdatedAt, &totalCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning menu item: %v", ErrDatabaseError, err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating menu item rows: %v", ErrDatabaseError, err)
	}
	return items, totalCount, nil
}

func (r *menuRepository) UpdateItem(executor SQLExecutor, item *models.MenuItem) error {
	query := `UPDATE menu_items SET
	            category_id = $1, item_name = $2, description = $3, price = $4, cost_price = $5,
	            prep_time_minutes = $6, is_vegetarian = $7, is_vegan = $8, is_gluten_free = $9,
	            is_spicy = $10, is_available = $11, is_featured = $12, display_order = $13,
	            profit_margin = $14, profit_margin_percent = $15, updated_at = $16
	          WHERE id = $17`
	result, err := executor.Exec(query,
		item.CategoryID, item.ItemName, item.Description, item.Price, item.CostPrice,
		item.PrepTimeMinutes, item.IsVegetarian, item.IsVegan, item.IsGlutenFree,
		item.IsSpicy, item.IsAvailable, item.IsFeatured, item.DisplayOrder,
		item.ProfitMargin, item.ProfitMarginPercent, time.Now(), item.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w: updating menu item (constraint: %s): %v", ErrDuplicateKey, pqErr.Constraint, err)
		}
		return fmt.Errorf("%w: updating menu item ID %d: %v", ErrDatabaseError, item.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for item update ID %d: %v", ErrDatabaseError, item.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *menuRepository) DeleteItem(executor SQLExecutor, id int64) error {
	query := `DELETE FROM menu_items WHERE id = $1`
	result, err := executor.Exec(query, id)
	if err != nil {
		return fmt.Errorf("%w: deleting menu item ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for deleting item ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Option Methods ---

func (r *menuRepository) CreateOption(executor SQLExecutor, option *models.MenuItemOption) (int64, error) {
	query := `INSERT INTO menu_item_options
	            (restaurant_id, item_id, option_group, option_name, price_change, is_default,
	             is_active, display_order, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          RETURNING id`
	currentTime := time.Now()
	err := executor.QueryRow(query,
		option.RestaurantID, option.ItemID, option.OptionGroup, option.OptionName,
		option.PriceChange, option.IsDefault, true, option.DisplayOrder,
		currentTime, currentTime,
	).Scan(&option.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return 0, fmt.Errorf("%w: creating option (constraint: %s): %v", ErrNotFound, pqErr.Constraint, err)
		}
		return 0, fmt.Errorf("%w: creating menu item option: %v", ErrDatabaseError, err)
	}
	return option.ID, nil
}

func (r *menuRepository) ListOptionsByItem(itemID int64) ([]models.MenuItemOption, error) {
	options := []models.MenuItemOption{}
	query := `SELECT id, restaurant_id, item_id, option_group, option_name, price_change,
	                 is_default, is_active, display_order, created_at, updated_at
	          FROM menu_item_options
	          WHERE item_id = $1
	          ORDER BY option_group, display_order, option_name`
	rows, err := r.db.Query(query, itemID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying options for item %d: %v", ErrDatabaseError, itemID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var option models.MenuItemOption
		err := rows.Scan(
			&option.ID, &option.RestaurantID, &option.ItemID, &option.OptionGroup,
			&option.OptionName, &option.PriceChange, &option.IsDefault, &option.IsActive,
			&option.DisplayOrder, &option.CreatedAt, &option.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning menu item option: %v", ErrDatabaseError, err)
		}
		options = append(options, option)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating option rows: %v", ErrDatabaseError, err)
	}
	return options, nil
}

func (r *menuRepository) UpdateOption(executor SQLExecutor, option *models.MenuItemOption) error {
	query := `UPDATE menu_item_options SET
	            option_group = $1, option_name = $2, price_change = $3, is_default = $4,
	            is_active = $5, display_order = $6, updated_at = $7
	          WHERE id = $8`
	result, err := executor.Exec(query,
		option.OptionGroup, option.OptionName, option.PriceChange, option.IsDefault,
		option.IsActive, option.DisplayOrder, time.Now(), option.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating option ID %d: %v", ErrDatabaseError, option.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for option update ID %d: %v", ErrDatabaseError, option.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *menuRepository) DeleteOption(executor SQLExecutor, id int64) error {
	query := `DELETE FROM menu_item_options WHERE id = $1`
	result, err := executor.Exec(query, id)
	if err != nil {
		return fmt.Errorf("%w: deleting option ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for deleting option ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
