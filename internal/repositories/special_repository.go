package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dineqr_backend/internal/models"
)

// SpecialRepository defines daily special persistence and the usage ledger.
type SpecialRepository interface {
	Create(executor SQLExecutor, special *models.DailySpecial) (int64, error)
	GetByID(id int64) (*models.DailySpecial, error)
	ListByRestaurant(restaurantID int64, activeOnly bool) ([]models.DailySpecial, error)
	ListCurrentlyValid(restaurantID int64, date time.Time) ([]models.DailySpecial, error)
	Update(executor SQLExecutor, special *models.DailySpecial) error
	Deactivate(executor SQLExecutor, id int64) error
	RecordUsage(executor SQLExecutor, usage *models.SpecialUsage) (int64, error)
	IncrementUsageCount(executor SQLExecutor, specialID int64) error
}

type specialRepository struct {
	db *sql.DB
}

// NewSpecialRepository creates a new instance of SpecialRepository.
func NewSpecialRepository(db *sql.DB) SpecialRepository {
	return &specialRepository{db: db}
}

const specialColumns = `id, restaurant_id, special_name, description, discount_type, discount_value,
	minimum_order_amount, valid_from, valid_until, valid_from_time, valid_until_time,
	weekday_mask, is_active, usage_limit, usage_count, created_at, updated_at`

func scanSpecial(row interface{ Scan(...interface{}) error }, s *models.DailySpecial) error {
	return row.Scan(
		&s.ID, &s.RestaurantID, &s.SpecialName, &s.Description, &s.DiscountType,
		&s.DiscountValue, &s.MinimumOrderAmount, &s.ValidFrom, &s.ValidUntil,
		&s.ValidFromTime, &s.ValidUntilTime, &s.WeekdayMask, &s.IsActive,
		&s.UsageLimit, &s.UsageCount, &s.CreatedAt, &s.UpdatedAt,
	)
}

func (r *specialRepository) Create(executor SQLExecutor, special *models.DailySpecial) (int64, error) {
	query := `INSERT INTO daily_specials
	            (restaurant_id, special_name, description, discount_type, discount_value,
	             minimum_order_amount, valid_from, valid_until, valid_from_time,
	             valid_until_time, weekday_mask, is_active, usage_limit, usage_count,
	             created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	          RETURNING id`
	currentTime := time.Now()
	err := executor.QueryRow(query,
		special.RestaurantID, special.SpecialName, special.Description, special.DiscountType,
		special.DiscountValue, special.MinimumOrderAmount, special.ValidFrom, special.ValidUntil,
		special.ValidFromTime, special.ValidUntilTime, special.WeekdayMask, true, special.UsageLimit,
		0, currentTime, currentTime,
	).Scan(&special.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating daily special: %v", ErrDatabaseError, err)
	}
	return special.ID, nil
}

func (r *specialRepository) GetByID(id int64) (*models.DailySpecial, error) {
	special := &models.DailySpecial{}
	query := `SELECT ` + specialColumns + ` FROM daily_specials WHERE id = $1`
	err := scanSpecial(r.db.QueryRow(query, id), special)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting daily special by ID %d: %v", ErrDatabaseError, id, err)
	}
	return special, nil
}

func (r *specialRepository) ListByRestaurant(restaurantID int64, activeOnly bool) ([]models.DailySpecial, error) {
	query := `SELECT ` + specialColumns + `
	          FROM daily_specials
	          WHERE restaurant_id = $1 AND ($2 = FALSE OR is_active = TRUE)
	          ORDER BY valid_from DESC, special_name`
	return r.querySpecials(query, restaurantID, activeOnly)
}

// ListCurrentlyValid narrows by the date window in SQL; weekday, time-of-day
// and usage checks happen in the service against the loaded rows.
func (r *specialRepository) ListCurrentlyValid(restaurantID int64, date time.Time) ([]models.DailySpecial, error) {
	query := `SELECT ` + specialColumns + `
	          FROM daily_specials
	          WHERE restaurant_id = $1 AND is_active = TRUE
	            AND valid_from <= $2::date AND valid_until >= $2::date
	          ORDER BY discount_value DESC`
	return r.querySpecials(query, restaurantID, date.Format("2006-01-02"))
}

func (r *specialRepository) querySpecials(query string, args ...interface{}) ([]models.DailySpecial, error) {
	specials := []models.DailySpecial{}
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying daily specials: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var special models.DailySpecial
		err := rows.Scan(
			&special.ID, &special.RestaurantID, &special.SpecialName, &special.Description,
			&special.DiscountType, &special.DiscountValue, &special.MinimumOrderAmount,
			&special.ValidFrom, &special.ValidUntil, &special.ValidFromTime,
			&special.ValidUntilTime, &special.WeekdayMask, &special.IsActive,
			&special.UsageLimit, &special.UsageCount, &special.CreatedAt, &special.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning daily special: %v", ErrDatabaseError, err)
		}
		specials = append(specials, special)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating daily special rows: %v", ErrDatabaseError, err)
	}
	return specials, nil
}

func (r *specialRepository) Update(executor SQLExecutor, special *models.DailySpecial) error {
	query := `UPDATE daily_specials SET
	            special_name = $1, description = $2, discount_type = $3, discount_value = $4,
	            minimum_order_amount = $5, valid_from = $6, valid_until = $7,
	            valid_from_time = $8, valid_until_time = $9, weekday_mask = $10,
	            is_active = $11, usage_limit = $12, updated_at = $13
	          WHERE id = $14`
	result, err := executor.Exec(query,
		special.SpecialName, special.Description, special.DiscountType, special.DiscountValue,
		special.MinimumOrderAmount, special.ValidFrom, special.ValidUntil,
		special.ValidFromTime, special.ValidUntilTime, special.WeekdayMask,
		special.IsActive, special.UsageLimit, time.Now(), special.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating daily special ID %d: %v", ErrDatabaseError, special.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for special update ID %d: %v", ErrDatabaseError, special.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *specialRepository) Deactivate(executor SQLExecutor, id int64) error {
	query := `UPDATE daily_specials SET is_active = FALSE, updated_at = $1 WHERE id = $2`
	result, err := executor.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: deactivating daily special ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for special deactivation ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *specialRepository) RecordUsage(executor SQLExecutor, usage *models.SpecialUsage) (int64, error) {
	query := `INSERT INTO special_usages (special_id, order_id, discount_amount, created_at)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id`
	err := executor.QueryRow(query,
		usage.SpecialID, usage.OrderID, usage.DiscountAmount, time.Now(),
	).Scan(&usage.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: recording special usage: %v", ErrDatabaseError, err)
	}
	return usage.ID, nil
}

func (r *specialRepository) IncrementUsageCount(executor SQLExecutor, specialID int64) error {
	query := `UPDATE daily_specials SET usage_count = usage_count + 1, updated_at = $1 WHERE id = $2`
	result, err := executor.Exec(query, time.Now(), specialID)
	if err != nil {
		return fmt.Errorf("%w: incrementing usage count for special ID %d: %v", ErrDatabaseError, specialID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for usage count update ID %d: %v", ErrDatabaseError, specialID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
