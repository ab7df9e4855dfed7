package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"dineqr_backend/internal/models"
)

// AuthRepository defines user account and permission-override persistence.
type AuthRepository interface {
	CreateUser(executor SQLExecutor, user *models.User) (int64, error)
	FindUserByID(id int64) (*models.User, error)
	FindUserByEmail(email string) (*models.User, error)
	ListUsersByRestaurant(restaurantID int64, page, pageSize int) ([]models.User, int, error)
	UpdateUser(executor SQLExecutor, user *models.User) error
	DeactivateUser(executor SQLExecutor, id int64) error
	RecordLoginAttempt(executor SQLExecutor, userID int64, failedAttempts int, lockedUntil *time.Time, lastLoginAt *time.Time) error
	GetPermissionOverrides(userID int64) ([]models.PermissionOverride, error)
}

type authRepository struct {
	db *sql.DB
}

// NewAuthRepository creates a new instance of AuthRepository.
func NewAuthRepository(db *sql.DB) AuthRepository {
	return &authRepository{db: db}
}

const userColumns = `id, restaurant_id, email, password_hash, first_name, last_name, phone_number,
	role, staff_type, is_active, failed_login_attempts, locked_until, last_login_at,
	created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }, u *models.User) error {
	return row.Scan(
		&u.ID, &u.RestaurantID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.PhoneNumber, &u.Role, &u.StaffType, &u.IsActive, &u.FailedLoginAttempts,
		&u.LockedUntil, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt,
	)
}

func (r *authRepository) CreateUser(executor SQLExecutor, user *models.User) (int64, error) {
	query := `INSERT INTO users
	            (restaurant_id, email, password_hash, first_name, last_name, phone_number,
	             role, staff_type, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          RETURNING id`
	currentTime := time.Now()
	err := executor.QueryRow(query,
		user.RestaurantID, user.Email, user.PasswordHash, user.FirstName, user.LastName,
		user.PhoneNumber, user.Role, user.StaffType, true, currentTime, currentTime,
	).Scan(&user.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: email '%s' already registered (constraint: %s)", ErrDuplicateKey, user.Email, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating user: %v", ErrDatabaseError, err)
	}
	return user.ID, nil
}

func (r *authRepository) FindUserByID(id int64) (*models.User, error) {
	user := &models.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	err := scanUser(r.db.QueryRow(query, id), user)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding user by ID %d: %v", ErrDatabaseError, id, err)
	}
	return user, nil
}

func (r *authRepository) FindUserByEmail(email string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	err := scanUser(r.db.QueryRow(query, email), user)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: finding user by email: %v", ErrDatabaseError, err)
	}
	return user, nil
}

func (r *authRepository) ListUsersByRestaurant(restaurantID int64, page, pageSize int) ([]models.User, int, error) {
	users := []models.User{}
	totalCount := 0
	query := `SELECT ` + userColumns + `, COUNT(*) OVER() AS total_count
	          FROM users
	          WHERE restaurant_id = $1
	          ORDER BY last_name, first_name
	          LIMIT $2 OFFSET $3`
	offset := (page - 1) * pageSize

	rows, err := r.db.Query(query, restaurantID, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying users for restaurant %d: %v", ErrDatabaseError, restaurantID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var user models.User
		err := rows.Scan(
			&user.ID, &user.RestaurantID, &user.Email, &user.PasswordHash, &user.FirstName,
			&user.LastName, &user.PhoneNumber, &user.Role, &user.StaffType, &user.IsActive,
			&user.FailedLoginAttempts, &user.LockedUntil, &user.LastLoginAt,
			&user.CreatedAt, &user.UpdatedAt, &totalCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning user: %v", ErrDatabaseError, err)
		}
		users = append(users, user)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating user rows: %v", ErrDatabaseError, err)
	}
	return users, totalCount, nil
}

func (r *authRepository) UpdateUser(executor SQLExecutor, user *models.User) error {
	query := `UPDATE users SET
	            first_name = $1, last_name = $2, phone_number = $3, role = $4,
	            staff_type = $5, is_active = $6, updated_at = $7
	          WHERE id = $8`
	result, err := executor.Exec(query,
		user.FirstName, user.LastName, user.PhoneNumber, user.Role,
		user.StaffType, user.IsActive, time.Now(), user.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating user ID %d: %v", ErrDatabaseError, user.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for user update ID %d: %v", ErrDatabaseError, user.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *authRepository) DeactivateUser(executor SQLExecutor, id int64) error {
	query := `UPDATE users SET is_active = FALSE, updated_at = $1 WHERE id = $2`
	result, err := executor.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: deactivating user ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for user deactivation ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *authRepository) RecordLoginAttempt(executor SQLExecutor, userID int64, failedAttempts int, lockedUntil *time.Time, lastLoginAt *time.Time) error {
	query := `UPDATE users SET failed_login_attempts = $1, locked_until = $2, last_login_at = COALESCE($3, last_login_at), updated_at = $4
	          WHERE id = $5`
	_, err := executor.Exec(query, failedAttempts, lockedUntil, lastLoginAt, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("%w: recording login attempt for user %d: %v", ErrDatabaseError, userID, err)
	}
	return nil
}

func (r *authRepository) GetPermissionOverrides(userID int64) ([]models.PermissionOverride, error) {
	overrides := []models.PermissionOverride{}
	query := `SELECT id, user_id, capability, allowed, created_at
	          FROM user_permission_overrides
	          WHERE user_id = $1`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying permission overrides for user %d: %v", ErrDatabaseError, userID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var override models.PermissionOverride
		if err := rows.Scan(&override.ID, &override.UserID, &override.Capability, &override.Allowed, &override.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning permission override: %v", ErrDatabaseError, err)
		}
		overrides = append(overrides, override)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating permission override rows: %v", ErrDatabaseError, err)
	}
	return overrides, nil
}
