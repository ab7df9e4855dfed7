package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"dineqr_backend/internal/models"
	"dineqr_backend/internal/repositories"
)

// --- DTOs ---

// OnboardRestaurantRequest creates a restaurant tenant together with its
// owner account in one transaction.
type OnboardRestaurantRequest struct {
	RestaurantName    string  `json:"restaurant_name" binding:"required"`
	RestaurantCode    string  `json:"restaurant_code" binding:"required,alphanum"`
	BusinessEmail     string  `json:"business_email" binding:"required,email"`
	PhoneNumber       *string `json:"phone_number"`
	CurrencyCode      string  `json:"currency_code"`
	TaxRate           float64 `json:"tax_rate"`
	ServiceChargeRate float64 `json:"service_charge_rate"`
	Timezone          string  `json:"timezone"`
	AllowsTakeout     bool    `json:"allows_takeout"`
	AllowsDelivery    bool    `json:"allows_delivery"`
	ThemeColor        *string `json:"theme_color"`

	OwnerEmail     string `json:"owner_email" binding:"required,email"`
	OwnerPassword  string `json:"owner_password" binding:"required,min=8"`
	OwnerFirstName string `json:"owner_first_name" binding:"required"`
	OwnerLastName  string `json:"owner_last_name" binding:"required"`
}

// UpdateRestaurantRequest patches tenant settings.
type UpdateRestaurantRequest struct {
	RestaurantName    *string  `json:"restaurant_name"`
	BusinessEmail     *string  `json:"business_email" binding:"omitempty,email"`
	PhoneNumber       *string  `json:"phone_number"`
	CurrencyCode      *string  `json:"currency_code"`
	TaxRate           *float64 `json:"tax_rate"`
	ServiceChargeRate *float64 `json:"service_charge_rate"`
	Timezone          *string  `json:"timezone"`
	Status            *string  `json:"status"`
	AllowsTakeout     *bool    `json:"allows_takeout"`
	AllowsDelivery    *bool    `json:"allows_delivery"`
	ThemeColor        *string  `json:"theme_color"`
}

// --- RestaurantService Interface ---

type RestaurantService interface {
	Onboard(req OnboardRestaurantRequest) (*models.Restaurant, *models.User, error)
	GetByID(id int64) (*models.Restaurant, error)
	GetByCode(code string) (*models.Restaurant, error)
	List(actor *Actor, page, pageSize int) ([]models.Restaurant, int, error)
	Update(actor *Actor, id int64, req UpdateRestaurantRequest) (*models.Restaurant, error)
}

type restaurantService struct {
	restaurantRepo repositories.RestaurantRepository
	authRepo       repositories.AuthRepository
	authz          AuthzService
	db             *sql.DB
}

// NewRestaurantService creates a new instance of RestaurantService.
func NewRestaurantService(restaurantRepo repositories.RestaurantRepository, authRepo repositories.AuthRepository, authz AuthzService, db *sql.DB) RestaurantService {
	return &restaurantService{
		restaurantRepo: restaurantRepo,
		authRepo:       authRepo,
		authz:          authz,
		db:             db,
	}
}

func validateRate(name string, rate float64) error {
	if rate < 0 || rate > 1 {
		return fmt.Errorf("%w: %s must be a fraction between 0 and 1, got %g", ErrValidation, name, rate)
	}
	return nil
}

func (s *restaurantService) Onboard(req OnboardRestaurantRequest) (*models.Restaurant, *models.User, error) {
	if err := validateRate("tax_rate", req.TaxRate); err != nil {
		return nil, nil, err
	}
	if err := validateRate("service_charge_rate", req.ServiceChargeRate); err != nil {
		return nil, nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(req.CurrencyCode))
	if currency == "" {
		currency = "USD"
	}
	timezone := req.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(req.OwnerPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hashing owner password: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, nil, fmt.Errorf("starting onboarding transaction: %w", err)
	}
	defer tx.Rollback()

	restaurant := models.Restaurant{
		RestaurantName:    req.RestaurantName,
		RestaurantCode:    strings.ToUpper(req.RestaurantCode),
		BusinessEmail:     strings.ToLower(strings.TrimSpace(req.BusinessEmail)),
		PhoneNumber:       req.PhoneNumber,
		CurrencyCode:      currency,
		TaxRate:           req.TaxRate,
		ServiceChargeRate: req.ServiceChargeRate,
		Timezone:          timezone,
		Status:            models.RestaurantStatusActive,
		AllowsTakeout:     req.AllowsTakeout,
		AllowsDelivery:    req.AllowsDelivery,
		ThemeColor:        req.ThemeColor,
	}
	if _, err := s.restaurantRepo.Create(tx, &restaurant); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, nil, fmt.Errorf("%w: restaurant code '%s' is taken", ErrValidation, restaurant.RestaurantCode)
		}
		return nil, nil, fmt.Errorf("creating restaurant: %w", err)
	}

	owner := models.User{
		RestaurantID: &restaurant.ID,
		Email:        strings.ToLower(strings.TrimSpace(req.OwnerEmail)),
		PasswordHash: string(hashedPasswordBytes),
		FirstName:    req.OwnerFirstName,
		LastName:     req.OwnerLastName,
		Role:         models.RoleOwner,
	}
	if _, err := s.authRepo.CreateUser(tx, &owner); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, nil, ErrEmailTaken
		}
		return nil, nil, fmt.Errorf("creating owner account: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("committing onboarding transaction: %w", err)
	}

	owner.PasswordHash = ""
	return &restaurant, &owner, nil
}

func (s *restaurantService) GetByID(id int64) (*models.Restaurant, error) {
	restaurant, err := s.restaurantRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, fmt.Errorf("getting restaurant %d: %w", id, err)
	}
	return restaurant, nil
}

func (s *restaurantService) GetByCode(code string) (*models.Restaurant, error) {
	restaurant, err := s.restaurantRepo.GetByCode(strings.ToUpper(code))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, fmt.Errorf("getting restaurant by code: %w", err)
	}
	return restaurant, nil
}

func (s *restaurantService) List(actor *Actor, page, pageSize int) ([]models.Restaurant, int, error) {
	if err := s.authz.Require(actor, CapManageRestaurants); err != nil {
		return nil, 0, err
	}
	restaurants, total, err := s.restaurantRepo.List(page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("listing restaurants: %w", err)
	}
	return restaurants, total, nil
}

func (s *restaurantService) Update(actor *Actor, id int64, req UpdateRestaurantRequest) (*models.Restaurant, error) {
	if err := s.authz.Require(actor, CapManageRestaurant); err != nil {
		return nil, err
	}
	if err := s.authz.RequireRestaurant(actor, id); err != nil {
		return nil, err
	}

	restaurant, err := s.restaurantRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, fmt.Errorf("fetching restaurant for update: %w", err)
	}

	if req.RestaurantName != nil {
		restaurant.RestaurantName = *req.RestaurantName
	}
	if req.BusinessEmail != nil {
		restaurant.BusinessEmail = strings.ToLower(strings.TrimSpace(*req.BusinessEmail))
	}
	if req.PhoneNumber != nil {
		restaurant.PhoneNumber = req.PhoneNumber
	}
	if req.CurrencyCode != nil {
		restaurant.CurrencyCode = strings.ToUpper(*req.CurrencyCode)
	}
	if req.TaxRate != nil {
		if err := validateRate("tax_rate", *req.TaxRate); err != nil {
			return nil, err
		}
		restaurant.TaxRate = *req.TaxRate
	}
	if req.ServiceChargeRate != nil {
		if err := validateRate("service_charge_rate", *req.ServiceChargeRate); err != nil {
			return nil, err
		}
		restaurant.ServiceChargeRate = *req.ServiceChargeRate
	}
	if req.Timezone != nil {
		restaurant.Timezone = *req.Timezone
	}
	if req.Status != nil {
		status := strings.ToUpper(*req.Status)
		switch status {
		case models.RestaurantStatusActive, models.RestaurantStatusInactive, models.RestaurantStatusSuspended:
		default:
			return nil, fmt.Errorf("%w: unknown restaurant status '%s'", ErrValidation, *req.Status)
		}
		// Suspension is a platform decision, not a tenant setting.
		if status == models.RestaurantStatusSuspended && actor.Role != models.RoleAdmin {
			return nil, fmt.Errorf("%w: only platform admins may suspend a restaurant", ErrForbidden)
		}
		restaurant.Status = status
	}
	if req.AllowsTakeout != nil {
		restaurant.AllowsTakeout = *req.AllowsTakeout
	}
	if req.AllowsDelivery != nil {
		restaurant.AllowsDelivery = *req.AllowsDelivery
	}
	if req.ThemeColor != nil {
		restaurant.ThemeColor = req.ThemeColor
	}

	if err := s.restaurantRepo.Update(s.db, restaurant); err != nil {
		return nil, fmt.Errorf("updating restaurant %d: %w", id, err)
	}
	return restaurant, nil
}
