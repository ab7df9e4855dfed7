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

// OrderRepository defines order and order item persistence. Order creation
// is split into CreateOrder / CreateOrderItem so the order service can run
// both inside a single transaction through the SQLExecutor.
type OrderRepository interface {
	CreateOrder(executor SQLExecutor, order *models.Order) (int64, error)
	CreateOrderItem(executor SQLExecutor, item *models.OrderItem) (int64, error)
	GetByID(id int64) (*models.Order, error)
	GetByIdempotencyKey(restaurantID int64, key string) (*models.Order, error)
	List(filters models.OrderFilters) ([]models.Order, int, error)
	GetSummary(restaurantID int64, date *string) (*models.OrderSummary, error)
	UpdateStatus(executor SQLExecutor, order *models.Order) error
	UpdatePaymentStatus(executor SQLExecutor, orderID int64, paymentStatus string) error
	ListUnreconciled(restaurantID int64) ([]models.Order, error)
	CountByTable(tableID int64) (int, error)
	CountByRestaurant(restaurantID int64) (int, error)
	ListItemsByOrder(orderID int64) ([]models.OrderItem, error)
	UpdateItemStatus(executor SQLExecutor, itemID int64, status string) error
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository.
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, restaurant_id, table_id, guest_session_id, created_by_user_id,
	order_number, idempotency_key, order_type, order_status, payment_status,
	guest_name, guest_phone, guest_email, party_size, special_instructions, internal_notes,
	subtotal, tax_amount, service_charge, discount_amount, total_amount,
	ordered_at, confirmed_at, preparing_at, ready_at, served_at, completed_at,
	estimated_ready_time, created_at, updated_at`

func scanOrder(row interface{ Scan(...interface{}) error }, o *models.Order) error {
	return row.Scan(
		&o.ID, &o.RestaurantID, &o.TableID, &o.GuestSessionID, &o.CreatedByUserID,
		&o.OrderNumber, &o.IdempotencyKey, &o.OrderType, &o.OrderStatus, &o.PaymentStatus,
		&o.GuestName, &o.GuestPhone, &o.GuestEmail, &o.PartySize, &o.SpecialInstructions,
		&o.InternalNotes, &o.Subtotal, &o.TaxAmount, &o.ServiceCharge, &o.DiscountAmount,
		&o.TotalAmount, &o.OrderedAt, &o.ConfirmedAt, &o.PreparingAt, &o.ReadyAt,
		&o.ServedAt, &o.CompletedAt, &o.EstimatedReadyTime, &o.CreatedAt, &o.UpdatedAt,
	)
}

func (r *orderRepository) CreateOrder(executor SQLExecutor, order *models.Order) (int64, error) {
	query := `INSERT INTO orders
	            (restaurant_id, table_id, guest_session_id, created_by_user_id, order_number,
	             idempotency_key, order_type, order_status, payment_status, guest_name,
	             guest_phone, guest_email, party_size, special_instructions, internal_notes,
	             subtotal, tax_amount, service_charge, discount_amount, total_amount,
	             ordered_at, estimated_ready_time, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
	                  $16, $17, $18, $19, $20, $21, $22, $23, $24)
	          RETURNING id`
	currentTime := time.Now()
	err := executor.QueryRow(query,
		order.RestaurantID, order.TableID, order.GuestSessionID, order.CreatedByUserID,
		order.OrderNumber, order.IdempotencyKey, order.OrderType, order.OrderStatus,
		order.PaymentStatus, order.GuestName, order.GuestPhone, order.GuestEmail,
		order.PartySize, order.SpecialInstructions, order.InternalNotes,
		order.Subtotal, order.TaxAmount, order.ServiceCharge, order.DiscountAmount,
		order.TotalAmount, order.OrderedAt, order.EstimatedReadyTime,
		currentTime, currentTime,
	).Scan(&order.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: order number '%s' already exists (constraint: %s)", ErrDuplicateKey, order.OrderNumber, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating order: %v", ErrDatabaseError, err)
	}
	return order.ID, nil
}

func (r *orderRepository) CreateOrderItem(executor SQLExecutor, item *models.OrderItem) (int64, error) {
	query := `INSERT INTO order_items
	            (restaurant_id, order_id, menu_item_id, item_name, item_description,
	             quantity, unit_price, total_price, item_status, special_instructions,
	             prep_time_minutes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	          RETURNING id`
	currentTime := time.Now()
	err := executor.QueryRow(query,
		item.RestaurantID, item.OrderID, item.MenuItemID, item.ItemName, item.ItemDescription,
		item.Quantity, item.UnitPrice, item.TotalPrice, item.ItemStatus,
		item.SpecialInstructions, item.PrepTimeMinutes, currentTime, currentTime,
	).Scan(&item.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating order item: %v", ErrDatabaseError, err)
	}
	return item.ID, nil
}

func (r *orderRepository) GetByID(id int64) (*models.Order, error) {
	order := &models.Order{}
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	err := scanOrder(r.db.QueryRow(query, id), order)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting order by ID %d: %v", ErrDatabaseError, id, err)
	}

	items, err := r.ListItemsByOrder(id)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (r *orderRepository) GetByIdempotencyKey(restaurantID int64, key string) (*models.Order, error) {
	order := &models.Order{}
	query := `SELECT ` + orderColumns + ` FROM orders WHERE restaurant_id = $1 AND idempotency_key = $2`
	err := scanOrder(r.db.QueryRow(query, restaurantID, key), order)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting order by idempotency key: %v", ErrDatabaseError, err)
	}

	items, err := r.ListItemsByOrder(order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (r *orderRepository) List(filters models.OrderFilters) ([]models.Order, int, error) {
	orders := []models.Order{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + orderColumns + `, COUNT(*) OVER() AS total_count FROM orders`)

	conditions := []string{"restaurant_id = $1"}
	args := []interface{}{filters.RestaurantID}
	argCounter := 2

	if len(filters.Statuses) > 0 {
		conditions = append(conditions, fmt.Sprintf("order_status = ANY($%d)", argCounter))
		args = append(args, pq.Array(filters.Statuses))
		argCounter++
	}
	if filters.TableID != nil {
		conditions = append(conditions, fmt.Sprintf("table_id = $%d", argCounter))
		args = append(args, *filters.TableID)
		argCounter++
	}
	if filters.Date != nil && *filters.Date != "" {
		conditions = append(conditions, fmt.Sprintf("DATE(ordered_at) = $%d", argCounter))
		args = append(args, *filters.Date)
		argCounter++
	}

	queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	queryBuilder.WriteString(" ORDER BY ordered_at DESC")

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
		return nil, 0, fmt.Errorf("%w: querying orders: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var o models.Order
		err := rows.Scan(
			&o.ID, &o.RestaurantID, &o.TableID, &o.GuestSessionID, &o.CreatedByUserID,
			&o.OrderNumber, &o.IdempotencyKey, &o.OrderType, &o.OrderStatus, &o.PaymentStatus,
			&o.GuestName, &o.GuestPhone, &o.GuestEmail, &o.PartySize, &o.SpecialInstructions,
			&o.InternalNotes, &o.Subtotal, &o.TaxAmount, &o.ServiceCharge, &o.DiscountAmount,
			&o.TotalAmount, &o.OrderedAt, &o.ConfirmedAt, &o.PreparingAt, &o.ReadyAt,
			&o.ServedAt, &o.CompletedAt, &o.EstimatedReadyTime, &o.CreatedAt, &o.UpdatedAt,
			&totalCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning order: %v", ErrDatabaseError, err)
		}
		orders = append(orders, o)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating order rows: %v", ErrDatabaseError, err)
	}
	return orders, totalCount, nil
}

func (r *orderRepository) GetSummary(restaurantID int64, date *string) (*models.OrderSummary, error) {
	summary := &models.OrderSummary{}
	query := `SELECT
	            COUNT(*),
	            COUNT(*) FILTER (WHERE order_status = $2),
	            COUNT(*) FILTER (WHERE order_status = $3),
	            COUNT(*) FILTER (WHERE order_status = $4),
	            COALESCE(SUM(total_amount) FILTER (WHERE order_status = $5), 0)
	          FROM orders
	          WHERE restaurant_id = $1 AND ($6::date IS NULL OR DATE(ordered_at) = $6::date)`
	err := r.db.QueryRow(query, restaurantID,
		models.OrderStatusPending, models.OrderStatusPreparing,
		models.OrderStatusReady, models.OrderStatusCompleted, date,
	).Scan(
		&summary.TotalOrders, &summary.PendingOrders, &summary.PreparingOrders,
		&summary.ReadyOrders, &summary.TotalRevenue,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: getting order summary for restaurant %d: %v", ErrDatabaseError, restaurantID, err)
	}
	return summary, nil
}

// UpdateStatus persists order_status together with the lifecycle timestamps.
// Already-set timestamps are written back unchanged, so a replayed update
// never moves them.
func (r *orderRepository) UpdateStatus(executor SQLExecutor, order *models.Order) error {
	query := `UPDATE orders SET
	            order_status = $1, confirmed_at = $2, preparing_at = $3, ready_at = $4,
	            served_at = $5, completed_at = $6, internal_notes = $7,
	            estimated_ready_time = $8, updated_at = $9
	          WHERE id = $10`
	result, err := executor.Exec(query,
		order.OrderStatus, order.ConfirmedAt, order.PreparingAt, order.ReadyAt,
		order.ServedAt, order.CompletedAt, order.InternalNotes,
		order.EstimatedReadyTime, time.Now(), order.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating order status ID %d: %v", ErrDatabaseError, order.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for order status update ID %d: %v", ErrDatabaseError, order.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *orderRepository) UpdatePaymentStatus(executor SQLExecutor, orderID int64, paymentStatus string) error {
	query := `UPDATE orders SET payment_status = $1, updated_at = $2 WHERE id = $3`
	result, err := executor.Exec(query, paymentStatus, time.Now(), orderID)
	if err != nil {
		return fmt.Errorf("%w: updating payment status for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for payment status update ID %d: %v", ErrDatabaseError, orderID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListUnreconciled returns COMPLETED orders whose payment never completed.
func (r *orderRepository) ListUnreconciled(restaurantID int64) ([]models.Order, error) {
	orders := []models.Order{}
	query := `SELECT ` + orderColumns + `
	          FROM orders
	          WHERE restaurant_id = $1 AND order_status = $2 AND payment_status <> $3
	          ORDER BY ordered_at DESC`
	rows, err := r.db.Query(query, restaurantID, models.OrderStatusCompleted, models.PaymentStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("%w: querying unreconciled orders for restaurant %d: %v", ErrDatabaseError, restaurantID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var o models.Order
		err := rows.Scan(
			&o.ID, &o.RestaurantID, &o.TableID, &o.GuestSessionID, &o.CreatedByUserID,
			&o.OrderNumber, &o.IdempotencyKey, &o.OrderType, &o.OrderStatus, &o.PaymentStatus,
			&o.GuestName, &o.GuestPhone, &o.GuestEmail, &o.PartySize, &o.SpecialInstructions,
			&o.InternalNotes, &o.Subtotal, &o.TaxAmount, &o.ServiceCharge, &o.DiscountAmount,
			&o.TotalAmount, &o.OrderedAt, &o.ConfirmedAt, &o.PreparingAt, &o.ReadyAt,
			&o.ServedAt, &o.CompletedAt, &o.EstimatedReadyTime, &o.CreatedAt, &o.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning unreconciled order: %v", ErrDatabaseError, err)
		}
		orders = append(orders, o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating unreconciled order rows: %v", ErrDatabaseError, err)
	}
	return orders, nil
}

// CountByTable counts all orders ever placed at a table, used for the
// per-table sequence in generated order numbers.
func (r *orderRepository) CountByTable(tableID int64) (int, error) {
	count := 0
	query := `SELECT COUNT(*) FROM orders WHERE table_id = $1`
	err := r.db.QueryRow(query, tableID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: counting orders for table %d: %v", ErrDatabaseError, tableID, err)
	}
	return count, nil
}

// CountByRestaurant counts all orders for a restaurant, used for numbering
// orders without a table.
func (r *orderRepository) CountByRestaurant(restaurantID int64) (int, error) {
	count := 0
	query := `SELECT COUNT(*) FROM orders WHERE restaurant_id = $1`
	err := r.db.QueryRow(query, restaurantID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: counting orders for restaurant %d: %v", ErrDatabaseError, restaurantID, err)
	}
	return count, nil
}

func (r *orderRepository) ListItemsByOrder(orderID int64) ([]models.OrderItem, error) {
	items := []models.OrderItem{}
	query := `SELECT id, restaurant_id, order_id, menu_item_id, item_name, item_description,
	                 quantity, unit_price, total_price, item_status, special_instructions,
	                 prep_time_minutes, created_at, updated_at
	          FROM order_items
	          WHERE order_id = $1
	          ORDER BY id`
	rows, err := r.db.Query(query, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying items for order %d: %v", ErrDatabaseError, orderID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.ID, &item.RestaurantID, &item.OrderID, &item.MenuItemID, &item.ItemName,
			&item.ItemDescription, &item.Quantity, &item.UnitPrice, &item.TotalPrice,
			&item.ItemStatus, &item.SpecialInstructions, &item.PrepTimeMinutes,
			&item.CreatedAt, &item.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning order item: %v", ErrDatabaseError, err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating order item rows: %v", ErrDatabaseError, err)
	}
	return items, nil
}

func (r *orderRepository) UpdateItemStatus(executor SQLExecutor, itemID int64, status string) error {
	query := `UPDATE order_items SET item_status = $1, updated_at = $2 WHERE id = $3`
	result, err := executor.Exec(query, status, time.Now(), itemID)
	if err != nil {
		return fmt.Errorf("%w: updating status for order item ID %d: %v", ErrDatabaseError, itemID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for order item status update ID %d: %v", ErrDatabaseError, itemID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
