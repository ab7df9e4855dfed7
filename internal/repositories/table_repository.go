package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"dineqr_backend/internal/models"
)

// TableRepository defines restaurant table persistence, including the QR
// lookup used by the public guest flow.
type TableRepository interface {
	Create(executor SQLExecutor, table *models.RestaurantTable) (int64, error)
	GetByID(id int64) (*models.RestaurantTable, error)
	GetByQRCode(qrCode string) (*models.RestaurantTable, error)
	ListByRestaurant(restaurantID int64, activeOnly bool, page, pageSize int) ([]models.RestaurantTable, int, error)
	Update(executor SQLExecutor, table *models.RestaurantTable) error
	UpdateStatus(executor SQLExecutor, tableID int64, status string) error
	Delete(executor SQLExecutor, id int64) error
	CountActiveOrders(tableID int64) (int, error)
}

type tableRepository struct {
	db *sql.DB
}

// NewTableRepository creates a new instance of TableRepository.
func NewTableRepository(db *sql.DB) TableRepository {
	return &tableRepository{db: db}
}

const tableColumns = `id, restaurant_id, table_number, table_name, capacity, location,
	qr_code, is_active, current_status, created_at, updated_at`

func scanTable(row interface{ Scan(...interface{}) error }, t *models.RestaurantTable) error {
	return row.Scan(
		&t.ID, &t.RestaurantID, &t.TableNumber, &t.TableName, &t.Capacity, &t.Location,
		&t.QRCode, &t.IsActive, &t.CurrentStatus, &t.CreatedAt, &t.UpdatedAt,
	)
}

func (r *tableRepository) Create(executor SQLExecutor, table *models.RestaurantTable) (int64, error) {
	query := `INSERT INTO restaurant_tables
	            (restaurant_id, table_number, table_name, capacity, location, qr_code,
	             is_active, current_status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          RETURNING id`
	currentTime := time.Now()
	err := executor.QueryRow(query,
		table.RestaurantID, table.TableNumber, table.TableName, table.Capacity,
		table.Location, table.QRCode, true, models.TableStatusAvailable,
		currentTime, currentTime,
	).Scan(&table.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: table number '%s' already exists (constraint: %s)", ErrDuplicateKey, table.TableNumber, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating table: %v", ErrDatabaseError, err)
	}
	return table.ID, nil
}

func (r *tableRepository) GetByID(id int64) (*models.RestaurantTable, error) {
	table := &models.RestaurantTable{}
	query := `SELECT ` + tableColumns + ` FROM restaurant_tables WHERE id = $1`
	err := scanTable(r.db.QueryRow(query, id), table)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting table by ID %d: %v", ErrDatabaseError, id, err)
	}
	return table, nil
}

func (r *tableRepository) GetByQRCode(qrCode string) (*models.RestaurantTable, error) {
	table := &models.RestaurantTable{}
	query := `SELECT ` + tableColumns + ` FROM restaurant_tables WHERE qr_code = $1 AND is_active = TRUE`
	err := scanTable(r.db.QueryRow(query, qrCode), table)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting table by QR code: %v", ErrDatabaseError, err)
	}
	return table, nil
}

func (r *tableRepository) ListByRestaurant(restaurantID int64, activeOnly bool, page, pageSize int) ([]models.RestaurantTable, int, error) {
	tables := []models.RestaurantTable{}
	totalCount := 0
	query := `SELECT ` + tableColumns + `, COUNT(*) OVER() AS total_count
	          FROM restaurant_tables
	          WHERE restaurant_id = $1 AND ($2 = FALSE OR is_active = TRUE)
	          ORDER BY table_number
	          LIMIT $3 OFFSET $4`
	offset := (page - 1) * pageSize

	rows, err := r.db.Query(query, restaurantID, activeOnly, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying tables for restaurant %d: %v", ErrDatabaseError, restaurantID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var table models.RestaurantTable
		err := rows.Scan(
			&table.ID, &table.RestaurantID, &table.TableNumber, &table.TableName,
			&table.Capacity, &table.Location, &table.QRCode, &table.IsActive,
			&table.CurrentStatus, &table.CreatedAt, &table.UpdatedAt, &totalCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning table: %v", ErrDatabaseError, err)
		}
		tables = append(tables, table)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating table rows: %v", ErrDatabaseError, err)
	}
	return tables, totalCount, nil
}

func (r *tableRepository) Update(executor SQLExecutor, table *models.RestaurantTable) error {
	query := `UPDATE restaurant_tables SET
	            table_name = $1, capacity = $2, location = $3, is_active = $4,
	            current_status = $5, updated_at = $6
	          WHERE id = $7`
	result, err := executor.Exec(query,
		table.TableName, table.Capacity, table.Location, table.IsActive,
		table.CurrentStatus, time.Now(), table.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating table ID %d: %v", ErrDatabaseError, table.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for table update ID %d: %v", ErrDatabaseError, table.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *tableRepository) UpdateStatus(executor SQLExecutor, tableID int64, status string) error {
	query := `UPDATE restaurant_tables SET current_status = $1, updated_at = $2 WHERE id = $3`
	result, err := executor.Exec(query, status, time.Now(), tableID)
	if err != nil {
		return fmt.Errorf("%w: updating status for table ID %d: %v", ErrDatabaseError, tableID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for table status update ID %d: %v", ErrDatabaseError, tableID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *tableRepository) Delete(executor SQLExecutor, id int64) error {
	query := `DELETE FROM restaurant_tables WHERE id = $1`
	result, err := executor.Exec(query, id)
	if err != nil {
		return fmt.Errorf("%w: deleting table ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for deleting table ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *tableRepository) CountActiveOrders(tableID int64) (int, error) {
	count := 0
	query := `SELECT COUNT(*) FROM orders
	          WHERE table_id = $1 AND order_status IN ($2, $3, $4, $5)`
	err := r.db.QueryRow(query, tableID,
		models.OrderStatusPending, models.OrderStatusConfirmed,
		models.OrderStatusPreparing, models.OrderStatusReady,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: counting active orders for table %d: %v", ErrDatabaseError, tableID, err)
	}
	return count, nil
}
