package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"dineqr_backend/internal/models"
	"dineqr_backend/internal/repositories"
	"dineqr_backend/pkg/utils"
)

// Lockout policy for repeated failed logins.
const (
	maxFailedLoginAttempts = 5
	lockoutDuration        = 30 * time.Minute
)

// --- DTOs ---

// RegisterStaffRequest creates a staff account under the actor's restaurant.
type RegisterStaffRequest struct {
	Email       string  `json:"email" binding:"required,email"`
	Password    string  `json:"password" binding:"required,min=8"`
	FirstName   string  `json:"first_name" binding:"required"`
	LastName    string  `json:"last_name" binding:"required"`
	PhoneNumber *string `json:"phone_number"`
	Role        string  `json:"role" binding:"required"`
	StaffType   *string `json:"staff_type"`
}

// UpdateStaffRequest patches a staff account.
type UpdateStaffRequest struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	PhoneNumber *string `json:"phone_number"`
	Role        *string `json:"role"`
	StaffType   *string `json:"staff_type"`
	IsActive    *bool   `json:"is_active"`
}

// LoginRequest authenticates by email and password.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries the token pair for a successful login or refresh.
type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
}

// --- AuthService Interface ---

type AuthService interface {
	RegisterStaff(actor *Actor, restaurantID int64, req RegisterStaffRequest) (*models.User, error)
	Login(req LoginRequest) (*AuthResponse, error)
	Refresh(refreshToken string) (*AuthResponse, error)
	GetProfile(userID int64) (*models.User, error)
	ListStaff(actor *Actor, restaurantID int64, page, pageSize int) ([]models.User, int, error)
	UpdateStaff(actor *Actor, staffID int64, req UpdateStaffRequest) (*models.User, error)
	DeactivateStaff(actor *Actor, staffID int64) error
}

type authService struct {
	authRepo       repositories.AuthRepository
	restaurantRepo repositories.RestaurantRepository
	authz          AuthzService
	db             *sql.DB
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(authRepo repositories.AuthRepository, restaurantRepo repositories.RestaurantRepository, authz AuthzService, db *sql.DB) AuthService {
	return &authService{
		authRepo:       authRepo,
		restaurantRepo: restaurantRepo,
		authz:          authz,
		db:             db,
	}
}

func (s *authService) RegisterStaff(actor *Actor, restaurantID int64, req RegisterStaffRequest) (*models.User, error) {
	if err := s.authz.Require(actor, CapManageStaff); err != nil {
		return nil, err
	}
	if err := s.authz.RequireRestaurant(actor, restaurantID); err != nil {
		return nil, err
	}

	role := strings.ToUpper(req.Role)
	switch role {
	case models.RoleOwner, models.RoleManager, models.RoleStaff:
	default:
		return nil, fmt.Errorf("%w: unknown role '%s'", ErrValidation, req.Role)
	}
	if !CanManageRole(actor.Role, role) {
		return nil, fmt.Errorf("%w: role %s may not create %s accounts", ErrForbidden, actor.Role, role)
	}

	restaurant, err := s.restaurantRepo.GetByID(restaurantID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, fmt.Errorf("fetching restaurant for staff registration: %w", err)
	}
	if !restaurant.IsActive() {
		return nil, ErrRestaurantInactive
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := models.User{
		RestaurantID: &restaurantID,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hashedPasswordBytes),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PhoneNumber:  req.PhoneNumber,
		Role:         role,
		StaffType:    req.StaffType,
	}

	if _, err := s.authRepo.CreateUser(s.db, &user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("registering staff: %w", err)
	}

	created, err := s.authRepo.FindUserByID(user.ID)
	if err != nil {
		return nil, fmt.Errorf("staff registered but fetching details failed: %w", err)
	}
	created.PasswordHash = ""
	return created, nil
}

func (s *authService) Login(req LoginRequest) (*AuthResponse, error) {
	user, err := s.authRepo.FindUserByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login attempt failed: %w", err)
	}

	now := time.Now()
	if user.IsLocked(now) {
		return nil, ErrAccountLocked
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		failed := user.FailedLoginAttempts + 1
		var lockedUntil *time.Time
		if failed >= maxFailedLoginAttempts {
			until := now.Add(lockoutDuration)
			lockedUntil = &until
		}
		if recErr := s.authRepo.RecordLoginAttempt(s.db, user.ID, failed, lockedUntil, nil); recErr != nil {
			utils.LogError(recErr, "recording failed login attempt")
		}
		if lockedUntil != nil {
			return nil, ErrAccountLocked
		}
		return nil, ErrInvalidCredentials
	}

	// Successful login resets the failure counter and lockout.
	if err := s.authRepo.RecordLoginAttempt(s.db, user.ID, 0, nil, &now); err != nil {
		utils.LogError(err, "recording successful login")
	}

	return s.buildAuthResponse(user)
}

func (s *authService) Refresh(refreshToken string) (*AuthResponse, error) {
	claims, err := utils.ValidateToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	user, err := s.authRepo.FindUserByID(claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("refreshing session: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if user.IsLocked(time.Now()) {
		return nil, ErrAccountLocked
	}

	return s.buildAuthResponse(user)
}

func (s *authService) buildAuthResponse(user *models.User) (*AuthResponse, error) {
	accessToken, err := utils.GenerateAccessToken(user.ID, user.Email, user.Role, user.RestaurantID)
	if err != nil {
		return nil, fmt.Errorf("generating access token: %w", err)
	}
	refreshToken, err := utils.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generating refresh token: %w", err)
	}

	user.PasswordHash = ""
	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *authService) GetProfile(userID int64) (*models.User, error) {
	user, err := s.authRepo.FindUserByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("retrieving profile: %w", err)
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *authService) ListStaff(actor *Actor, restaurantID int64, page, pageSize int) ([]models.User, int, error) {
	if err := s.authz.Require(actor, CapManageStaff); err != nil {
		return nil, 0, err
	}
	if err := s.authz.RequireRestaurant(actor, restaurantID); err != nil {
		return nil, 0, err
	}

	users, total, err := s.authRepo.ListUsersByRestaurant(restaurantID, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("listing staff: %w", err)
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, total, nil
}

func (s *authService) UpdateStaff(actor *Actor, staffID int64, req UpdateStaffRequest) (*models.User, error) {
	if err := s.authz.Require(actor, CapManageStaff); err != nil {
		return nil, err
	}

	user, err := s.authRepo.FindUserByID(staffID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("fetching staff for update: %w", err)
	}
	if user.RestaurantID == nil {
		return nil, fmt.Errorf("%w: cannot manage platform accounts", ErrForbidden)
	}
	if err := s.authz.RequireRestaurant(actor, *user.RestaurantID); err != nil {
		return nil, err
	}
	if !CanManageRole(actor.Role, user.Role) {
		return nil, fmt.Errorf("%w: role %s may not manage %s accounts", ErrForbidden, actor.Role, user.Role)
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = req.PhoneNumber
	}
	if req.Role != nil {
		newRole := strings.ToUpper(*req.Role)
		switch newRole {
		case models.RoleOwner, models.RoleManager, models.RoleStaff:
		default:
			return nil, fmt.Errorf("%w: unknown role '%s'", ErrValidation, *req.Role)
		}
		if !CanManageRole(actor.Role, newRole) {
			return nil, fmt.Errorf("%w: role %s may not assign %s", ErrForbidden, actor.Role, newRole)
		}
		user.Role = newRole
	}
	if req.StaffType != nil {
		user.StaffType = req.StaffType
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.authRepo.UpdateUser(s.db, user); err != nil {
		return nil, fmt.Errorf("updating staff %d: %w", staffID, err)
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *authService) DeactivateStaff(actor *Actor, staffID int64) error {
	if err := s.authz.Require(actor, CapManageStaff); err != nil {
		return err
	}
	if actor.UserID == staffID {
		return fmt.Errorf("%w: cannot deactivate own account", ErrValidation)
	}

	user, err := s.authRepo.FindUserByID(staffID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("fetching staff for deactivation: %w", err)
	}
	if user.RestaurantID == nil {
		return fmt.Errorf("%w: cannot manage platform accounts", ErrForbidden)
	}
	if err := s.authz.RequireRestaurant(actor, *user.RestaurantID); err != nil {
		return err
	}
	if !CanManageRole(actor.Role, user.Role) {
		return fmt.Errorf("%w: role %s may not manage %s accounts", ErrForbidden, actor.Role, user.Role)
	}

	if err := s.authRepo.DeactivateUser(s.db, staffID); err != nil {
		return fmt.Errorf("deactivating staff %d: %w", staffID, err)
	}
	return nil
}
