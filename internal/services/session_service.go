package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dineqr_backend/internal/cache"
	"dineqr_backend/internal/models"
	"dineqr_backend/internal/repositories"
	"dineqr_backend/pkg/utils"
)

// DefaultSessionTTL is applied when no override is configured.
const DefaultSessionTTL = 4 * time.Hour

// --- DTOs ---

// StartSessionRequest opens a guest session from a scanned table QR code.
type StartSessionRequest struct {
	QRCode          string  `json:"qr_code" binding:"required"`
	GuestName       *string `json:"guest_name"`
	GuestPhone      *string `json:"guest_phone"`
	GuestEmail      *string `json:"guest_email" binding:"omitempty,email"`
	PartySize       int     `json:"party_size" binding:"omitempty,gt=0"`
	SpecialRequests *string `json:"special_requests"`
}

// UpdateSessionRequest patches guest details and the cart.
type UpdateSessionRequest struct {
	GuestName       *string      `json:"guest_name"`
	GuestPhone      *string      `json:"guest_phone"`
	GuestEmail      *string      `json:"guest_email" binding:"omitempty,email"`
	PartySize       *int         `json:"party_size" binding:"omitempty,gt=0"`
	SpecialRequests *string      `json:"special_requests"`
	Cart            *models.Cart `json:"cart"`
}

// --- SessionService Interface ---

type SessionService interface {
	Start(ctx context.Context, req StartSessionRequest) (*models.GuestSession, error)
	Validate(ctx context.Context, token string) (*models.GuestSession, error)
	Update(ctx context.Context, token string, req UpdateSessionRequest) (*models.GuestSession, error)
	End(ctx context.Context, token string) error
}

type sessionService struct {
	sessionRepo    repositories.SessionRepository
	tableRepo      repositories.TableRepository
	restaurantRepo repositories.RestaurantRepository
	sessionCache   cache.SessionCache
	db             *sql.DB
	ttl            time.Duration
}

// NewSessionService creates a new instance of SessionService. sessionCache
// may be nil; every read falls through to Postgres, which stays authoritative.
func NewSessionService(
	sessionRepo repositories.SessionRepository,
	tableRepo repositories.TableRepository,
	restaurantRepo repositories.RestaurantRepository,
	sessionCache cache.SessionCache,
	db *sql.DB,
	ttl time.Duration,
) SessionService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &sessionService{
		sessionRepo:    sessionRepo,
		tableRepo:      tableRepo,
		restaurantRepo: restaurantRepo,
		sessionCache:   sessionCache,
		db:             db,
		ttl:            ttl,
	}
}

func (s *sessionService) Start(ctx context.Context, req StartSessionRequest) (*models.GuestSession, error) {
	table, err := s.tableRepo.GetByQRCode(req.QRCode)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("resolving QR code: %w", err)
	}

	restaurant, err := s.restaurantRepo.GetByID(table.RestaurantID)
	if err != nil {
		return nil, fmt.Errorf("fetching restaurant for session start: %w", err)
	}
	if !restaurant.IsActive() {
		return nil, ErrRestaurantInactive
	}

	token, err := utils.GenerateSessionToken()
	if err != nil {
		return nil, fmt.Errorf("generating session token: %w", err)
	}

	partySize := req.PartySize
	if partySize == 0 {
		partySize = 1
	}

	now := time.Now()
	session := models.GuestSession{
		RestaurantID:    table.RestaurantID,
		TableID:         table.ID,
		SessionToken:    token,
		GuestName:       req.GuestName,
		GuestPhone:      req.GuestPhone,
		GuestEmail:      req.GuestEmail,
		PartySize:       partySize,
		SpecialRequests: req.SpecialRequests,
		Cart:            models.Cart{},
		ExpiresAt:       now.Add(s.ttl),
		IsActive:        true,
		LastActivityAt:  now,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("starting session transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.sessionRepo.Create(tx, &session); err != nil {
		return nil, fmt.Errorf("creating guest session: %w", err)
	}
	if table.CurrentStatus == models.TableStatusAvailable {
		if err := s.tableRepo.UpdateStatus(tx, table.ID, models.TableStatusOccupied); err != nil {
			return nil, fmt.Errorf("marking table occupied: %w", err)
		}
		table.CurrentStatus = models.TableStatusOccupied
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing session transaction: %w", err)
	}

	session.Table = table
	s.cacheSet(ctx, &session)
	return &session, nil
}

// Validate resolves a session token and enforces expiry lazily: an expired
// row is deactivated on first sight rather than by a background sweeper.
func (s *sessionService) Validate(ctx context.Context, token string) (*models.GuestSession, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	session := s.cacheGet(ctx, token)
	if session == nil {
		dbSession, err := s.sessionRepo.GetByToken(token)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrSessionNotFound
			}
			return nil, fmt.Errorf("resolving session token: %w", err)
		}
		session = dbSession
	}

	now := time.Now()
	if session.IsExpired(now) {
		s.cacheDelete(ctx, token)
		if session.IsActive {
			if err := s.sessionRepo.Deactivate(s.db, token); err != nil && !errors.Is(err, repositories.ErrNotFound) {
				utils.LogError(err, "deactivating expired session")
			}
		}
		return nil, ErrSessionExpired
	}
	if !session.IsActive {
		s.cacheDelete(ctx, token)
		return nil, ErrSessionInactive
	}

	s.cacheSet(ctx, session)
	return session, nil
}

func (s *sessionService) Update(ctx context.Context, token string, req UpdateSessionRequest) (*models.GuestSession, error) {
	session, err := s.Validate(ctx, token)
	if err != nil {
		return nil, err
	}

	if req.GuestName != nil {
		session.GuestName = req.GuestName
	}
	if req.GuestPhone != nil {
		session.GuestPhone = req.GuestPhone
	}
	if req.GuestEmail != nil {
		session.GuestEmail = req.GuestEmail
	}
	if req.PartySize != nil {
		session.PartySize = *req.PartySize
	}
	if req.SpecialRequests != nil {
		session.SpecialRequests = req.SpecialRequests
	}
	if req.Cart != nil {
		if err := req.Cart.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		session.Cart = *req.Cart
	}

	// Writes refresh activity but never extend the session's expiry.
	session.LastActivityAt = time.Now()

	if err := s.sessionRepo.Update(s.db, session); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("updating guest session: %w", err)
	}

	s.cacheSet(ctx, session)
	return session, nil
}

// End closes a session. Ending an already-ended or missing session is a
// no-op so guests can safely retry.
func (s *sessionService) End(ctx context.Context, token string) error {
	s.cacheDelete(ctx, token)
	err := s.sessionRepo.Deactivate(s.db, token)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("ending guest session: %w", err)
	}
	return nil
}

// --- cache helpers: best-effort, Postgres stays authoritative ---

func (s *sessionService) cacheGet(ctx context.Context, token string) *models.GuestSession {
	if s.sessionCache == nil {
		return nil
	}
	session, err := s.sessionCache.Get(ctx, token)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			utils.LogError(err, "session cache read")
		}
		return nil
	}
	return session
}

func (s *sessionService) cacheSet(ctx context.Context, session *models.GuestSession) {
	if s.sessionCache == nil {
		return
	}
	if err := s.sessionCache.Set(ctx, session); err != nil {
		utils.LogError(err, "session cache write")
	}
}

func (s *sessionService) cacheDelete(ctx context.Context, token string) {
	if s.sessionCache == nil {
		return
	}
	if err := s.sessionCache.Delete(ctx, token); err != nil {
		utils.LogError(err, "session cache delete")
	}
}
