package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"dineqr_backend/internal/models"
)

// PaymentRepository defines payment gateway configuration and payment
// transaction persistence.
type PaymentRepository interface {
	CreateGateway(executor SQLExecutor, gateway *models.PaymentGateway) (int64, error)
	ListGateways(restaurantID int64) ([]models.PaymentGateway, error)
	GetDefaultActiveGateway(restaurantID int64) (*models.PaymentGateway, error)
	SetDefaultGateway(executor SQLExecutor, restaurantID, gatewayID int64) error

	CreateTransaction(executor SQLExecutor, transaction *models.PaymentTransaction) (int64, error)
	ListTransactionsByOrder(orderID int64) ([]models.PaymentTransaction, error)
}

type paymentRepository struct {
	db *sql.DB
}

// NewPaymentRepository creates a new instance of PaymentRepository.
func NewPaymentRepository(db *sql.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) CreateGateway(executor SQLExecutor, gateway *models.PaymentGateway) (int64, error) {
	query := `INSERT INTO payment_gateways
	            (restaurant_id, provider, is_default, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`
	currentTime := time.Now()
	err := executor.QueryRow(query,
		gateway.RestaurantID, gateway.Provider, gateway.IsDefault, gateway.Status,
		currentTime, currentTime,
	).Scan(&gateway.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: gateway provider '%s' already configured (constraint: %s)", ErrDuplicateKey, gateway.Provider, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating payment gateway: %v", ErrDatabaseError, err)
	}
	return gateway.ID, nil
}

func (r *paymentRepository) ListGateways(restaurantID int64) ([]models.PaymentGateway, error) {
	gateways := []models.PaymentGateway{}
	query := `SELECT id, restaurant_id, provider, is_default, status, created_at, updated_at
	          FROM payment_gateways
	          WHERE restaurant_id = $1
	          ORDER BY is_default DESC, provider`
	rows, err := r.db.Query(query, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying payment gateways for restaurant %d: %v", ErrDatabaseError, restaurantID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var gateway models.PaymentGateway
		err := rows.Scan(
			&gateway.ID, &gateway.RestaurantID, &gateway.Provider, &gateway.IsDefault,
			&gateway.Status, &gateway.CreatedAt, &gateway.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning payment gateway: %v", ErrDatabaseError, err)
		}
		gateways = append(gateways, gateway)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating payment gateway rows: %v", ErrDatabaseError, err)
	}
	return gateways, nil
}

func (r *paymentRepository) GetDefaultActiveGateway(restaurantID int64) (*models.PaymentGateway, error) {
	gateway := &models.PaymentGateway{}
	query := `SELECT id, restaurant_id, provider, is_default, status, created_at, updated_at
	          FROM payment_gateways
	          WHERE restaurant_id = $1 AND is_default = TRUE AND status = 'active'`
	err := r.db.QueryRow(query, restaurantID).Scan(
		&gateway.ID, &gateway.RestaurantID, &gateway.Provider, &gateway.IsDefault,
		&gateway.Status, &gateway.CreatedAt, &gateway.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting default gateway for restaurant %d: %v", ErrDatabaseError, restaurantID, err)
	}
	return gateway, nil
}

// SetDefaultGateway flips the default flag atomically within the caller's
// transaction: clear all, then set one.
func (r *paymentRepository) SetDefaultGateway(executor SQLExecutor, restaurantID, gatewayID int64) error {
	clearQuery := `UPDATE payment_gateways SET is_default = FALSE, updated_at = $1 WHERE restaurant_id = $2`
	if _, err := executor.Exec(clearQuery, time.Now(), restaurantID); err != nil {
		return fmt.Errorf("%w: clearing default gateways for restaurant %d: %v", ErrDatabaseError, restaurantID, err)
	}

	setQuery := `UPDATE payment_gateways SET is_default = TRUE, updated_at = $1 WHERE id = $2 AND restaurant_id = $3`
	result, err := executor.Exec(setQuery, time.Now(), gatewayID, restaurantID)
	if err != nil {
		return fmt.Errorf("%w: setting default gateway ID %d: %v", ErrDatabaseError, gatewayID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for default gateway update ID %d: %v", ErrDatabaseError, gatewayID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *paymentRepository) CreateTransaction(executor SQLExecutor, transaction *models.PaymentTransaction) (int64, error) {
	query := `INSERT INTO payment_transactions
	            (restaurant_id, order_id, internal_reference, payment_method, amount,
	             net_amount, status, customer_name, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          RETURNING id`
	currentTime := time.Now()
	err := executor.QueryRow(query,
		transaction.RestaurantID, transaction.OrderID, transaction.InternalReference,
		transaction.PaymentMethod, transaction.Amount, transaction.NetAmount,
		transaction.Status, transaction.CustomerName, currentTime, currentTime,
	).Scan(&transaction.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: payment reference '%s' already exists (constraint: %s)", ErrDuplicateKey, transaction.InternalReference, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating payment transaction: %v", ErrDatabaseError, err)
	}
	return transaction.ID, nil
}

func (r *paymentRepository) ListTransactionsByOrder(orderID int64) ([]models.PaymentTransaction, error) {
	transactions := []models.PaymentTransaction{}
	query := `SELECT id, restaurant_id, order_id, internal_reference, payment_method,
	                 amount, net_amount, status, customer_name, created_at, updated_at
	          FROM payment_transactions
	          WHERE order_id = $1
	          ORDER BY created_at`
	rows, err := r.db.Query(query, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying transactions for order %d: %v", ErrDatabaseError, orderID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var transaction models.PaymentTransaction
		err := rows.Scan(
			&transaction.ID, &transaction.RestaurantID, &transaction.OrderID,
			&transaction.InternalReference, &transaction.PaymentMethod, &transaction.Amount,
			&transaction.NetAmount, &transaction.Status, &transaction.CustomerName,
			&transaction.CreatedAt, &transaction.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning payment transaction: %v", ErrDatabaseError, err)
		}
		transactions = append(transactions, transaction)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating payment transaction rows: %v", ErrDatabaseError, err)
	}
	return transactions, nil
}
