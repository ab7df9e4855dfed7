package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dineqr_backend/internal/models"
)

// SessionRepository defines guest session persistence. The cart is stored
// as a JSON column but always marshalled from / unmarshalled into the
// structured models.Cart value type.
type SessionRepository interface {
	Create(executor SQLExecutor, session *models.GuestSession) (int64, error)
	GetByID(id int64) (*models.GuestSession, error)
	GetByToken(token string) (*models.GuestSession, error)
	Update(executor SQLExecutor, session *models.GuestSession) error
	Deactivate(executor SQLExecutor, token string) error
}

type sessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new instance of SessionRepository.
func NewSessionRepository(db *sql.DB) SessionRepository {
	return &sessionRepository{db: db}
}

const sessionColumns = `id, restaurant_id, table_id, session_token, guest_name, guest_phone,
	guest_email, party_size, special_requests, cart_data, expires_at, is_active,
	last_activity_at, created_at, updated_at`

func scanSession(row interface{ Scan(...interface{}) error }, s *models.GuestSession) error {
	var cartData []byte
	err := row.Scan(
		&s.ID, &s.RestaurantID, &s.TableID, &s.SessionToken, &s.GuestName, &s.GuestPhone,
		&s.GuestEmail, &s.PartySize, &s.SpecialRequests, &cartData, &s.ExpiresAt,
		&s.IsActive, &s.LastActivityAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return err
	}
	s.Cart = models.Cart{}
	if len(cartData) > 0 {
		if err := json.Unmarshal(cartData, &s.Cart); err != nil {
			return fmt.Errorf("unmarshalling cart data: %w", err)
		}
	}
	return nil
}

func marshalCart(cart models.Cart) ([]byte, error) {
	if cart == nil {
		cart = models.Cart{}
	}
	return json.Marshal(cart)
}

func (r *sessionRepository) Create(executor SQLExecutor, session *models.GuestSession) (int64, error) {
	cartData, err := marshalCart(session.Cart)
	if err != nil {
		return 0, fmt.Errorf("%w: marshalling cart: %v", ErrDatabaseError, err)
	}
	query := `INSERT INTO guest_sessions
	            (restaurant_id, table_id, session_token, guest_name, guest_phone, guest_email,
	             party_size, special_requests, cart_data, expires_at, is_active,
	             last_activity_at, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	          RETURNING id`
	currentTime := time.Now()
	err = executor.QueryRow(query,
		session.RestaurantID, session.TableID, session.SessionToken, session.GuestName,
		session.GuestPhone, session.GuestEmail, session.PartySize, session.SpecialRequests,
		cartData, session.ExpiresAt, true, currentTime, currentTime, currentTime,
	).Scan(&session.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating guest session: %v", ErrDatabaseError, err)
	}
	return session.ID, nil
}

func (r *sessionRepository) GetByID(id int64) (*models.GuestSession, error) {
	session := &models.GuestSession{}
	query := `SELECT ` + sessionColumns + ` FROM guest_sessions WHERE id = $1`
	err := scanSession(r.db.QueryRow(query, id), session)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting guest session by ID %d: %v", ErrDatabaseError, id, err)
	}
	return session, nil
}

func (r *sessionRepository) GetByToken(token string) (*models.GuestSession, error) {
	session := &models.GuestSession{}
	query := `SELECT ` + sessionColumns + ` FROM guest_sessions WHERE session_token = $1`
	err := scanSession(r.db.QueryRow(query, token), session)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting guest session by token: %v", ErrDatabaseError, err)
	}
	return session, nil
}

func (r *sessionRepository) Update(executor SQLExecutor, session *models.GuestSession) error {
	cartData, err := marshalCart(session.Cart)
	if err != nil {
		return fmt.Errorf("%w: marshalling cart: %v", ErrDatabaseError, err)
	}
	query := `UPDATE guest_sessions SET
	            guest_name = $1, guest_phone = $2, guest_email = $3, party_size = $4,
	            special_requests = $5, cart_data = $6, expires_at = $7,
	            last_activity_at = $8, updated_at = $9
	          WHERE session_token = $10`
	result, err := executor.Exec(query,
		session.GuestName, session.GuestPhone, session.GuestEmail, session.PartySize,
		session.SpecialRequests, cartData, session.ExpiresAt,
		time.Now(), time.Now(), session.SessionToken,
	)
	if err != nil {
		return fmt.Errorf("%w: updating guest session: %v", ErrDatabaseError, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for guest session update: %v", ErrDatabaseError, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sessionRepository) Deactivate(executor SQLExecutor, token string) error {
	query := `UPDATE guest_sessions SET is_active = FALSE, updated_at = $1 WHERE session_token = $2`
	result, err := executor.Exec(query, time.Now(), token)
	if err != nil {
		return fmt.Errorf("%w: deactivating guest session: %v", ErrDatabaseError, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for guest session deactivation: %v", ErrDatabaseError, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
