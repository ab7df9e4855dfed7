package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"dineqr_backend/internal/models"
)

// RestaurantRepository defines restaurant tenant persistence.
type RestaurantRepository interface {
	Create(executor SQLExecutor, restaurant *models.Restaurant) (int64, error)
	GetByID(id int64) (*models.Restaurant, error)
	GetByCode(code string) (*models.Restaurant, error)
	List(page, pageSize int) ([]models.Restaurant, int, error)
	Update(executor SQLExecutor, restaurant *models.Restaurant) error
}

type restaurantRepository struct {
	db *sql.DB
}

// NewRestaurantRepository creates a new instance of RestaurantRepository.
func NewRestaurantRepository(db *sql.DB) RestaurantRepository {
	return &restaurantRepository{db: db}
}

const restaurantColumns = `id, restaurant_name, restaurant_code, business_email, phone_number,
	currency_code, tax_rate, service_charge_rate, timezone, status,
	allows_takeout, allows_delivery, theme_color, created_at, updated_at`

func scanRestaurant(row interface{ Scan(...interface{}) error }, r *models.Restaurant) error {
	return row.Scan(
		&r.ID, &r.RestaurantName, &r.RestaurantCode, &r.BusinessEmail, &r.PhoneNumber,
		&r.CurrencyCode, &r.TaxRate, &r.ServiceChargeRate, &r.Timezone, &r.Status,
		&r.AllowsTakeout, &r.AllowsDelivery, &r.ThemeColor, &r.CreatedAt, &r.UpdatedAt,
	)
}

func (r *restaurantRepository) Create(executor SQLExecutor, restaurant *models.Restaurant) (int64, error) {
	query := `INSERT INTO restaurants
	            (restaurant_name, restaurant_code, business_email, phone_number, currency_code,
	             tax_rate, service_charge_rate, timezone, status, allows_takeout, allows_delivery,
	             theme_color, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	          RETURNING id`
	currentTime := time.Now()
	err := executor.QueryRow(query,
		restaurant.RestaurantName, restaurant.RestaurantCode, restaurant.BusinessEmail,
		restaurant.PhoneNumber, restaurant.CurrencyCode, restaurant.TaxRate,
		restaurant.ServiceChargeRate, restaurant.Timezone, restaurant.Status,
		restaurant.AllowsTakeout, restaurant.AllowsDelivery, restaurant.ThemeColor,
		currentTime, currentTime,
	).Scan(&restaurant.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: restaurant code '%s' already exists (constraint: %s)", ErrDuplicateKey, restaurant.RestaurantCode, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating restaurant: %v", ErrDatabaseError, err)
	}
	return restaurant.ID, nil
}

func (r *restaurantRepository) GetByID(id int64) (*models.Restaurant, error) {
	restaurant := &models.Restaurant{}
	query := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE id = $1`
	err := scanRestaurant(r.db.QueryRow(query, id), restaurant)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting restaurant by ID %d: %v", ErrDatabaseError, id, err)
	}
	return restaurant, nil
}

func (r *restaurantRepository) GetByCode(code string) (*models.Restaurant, error) {
	restaurant := &models.Restaurant{}
	query := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE restaurant_code = $1`
	err := scanRestaurant(r.db.QueryRow(query, code), restaurant)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting restaurant by code %s: %v", ErrDatabaseError, code, err)
	}
	return restaurant, nil
}

func (r *restaurantRepository) List(page, pageSize int) ([]models.Restaurant, int, error) {
	restaurants := []models.Restaurant{}
	totalCount := 0
	query := `SELECT ` + restaurantColumns + `, COUNT(*) OVER() AS total_count
	          FROM restaurants
	          ORDER BY restaurant_name
	          LIMIT $1 OFFSET $2`
	offset := (page - 1) * pageSize

	rows, err := r.db.Query(query, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying restaurants: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var restaurant models.Restaurant
		err := rows.Scan(
			&restaurant.ID, &restaurant.RestaurantName, &restaurant.RestaurantCode,
			&restaurant.BusinessEmail, &restaurant.PhoneNumber, &restaurant.CurrencyCode,
			&restaurant.TaxRate, &restaurant.ServiceChargeRate, &restaurant.Timezone,
			&restaurant.Status, &restaurant.AllowsTakeout, &restaurant.AllowsDelivery,
			&restaurant.ThemeColor, &restaurant.CreatedAt, &restaurant.UpdatedAt,
			&totalCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning restaurant: %v", ErrDatabaseError, err)
		}
		restaurants = append(restaurants, restaurant)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating restaurant rows: %v", ErrDatabaseError, err)
	}
	return restaurants, totalCount, nil
}

func (r *restaurantRepository) Update(executor SQLExecutor, restaurant *models.Restaurant) error {
	query := `UPDATE restaurants SET
	            restaurant_name = $1, business_email = $2, phone_number = $3, currency_code = $4,
	            tax_rate = $5, service_charge_rate = $6, timezone = $7, status = $8,
	            allows_takeout = $9, allows_delivery = $10, theme_color = $11, updated_at = $12
	          WHERE id = $13`
	result, err := executor.Exec(query,
		restaurant.RestaurantName, restaurant.BusinessEmail, restaurant.PhoneNumber,
		restaurant.CurrencyCode, restaurant.TaxRate, restaurant.ServiceChargeRate,
		restaurant.Timezone, restaurant.Status, restaurant.AllowsTakeout,
		restaurant.AllowsDelivery, restaurant.ThemeColor, time.Now(), restaurant.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating restaurant ID %d: %v", ErrDatabaseError, restaurant.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for restaurant update ID %d: %v", ErrDatabaseError, restaurant.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
