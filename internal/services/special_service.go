package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"dineqr_backend/internal/models"
	"dineqr_backend/internal/repositories"
)

// --- DTOs ---

// CreateSpecialRequest defines a promotional rule.
type CreateSpecialRequest struct {
	SpecialName        string    `json:"special_name" binding:"required"`
	Description        *string   `json:"description"`
	DiscountType       string    `json:"discount_type" binding:"required"`
	DiscountValue      float64   `json:"discount_value" binding:"required,gt=0"`
	MinimumOrderAmount *float64  `json:"minimum_order_amount" binding:"omitempty,gte=0"`
	ValidFrom          time.Time `json:"valid_from" binding:"required"`
	ValidUntil         time.Time `json:"valid_until" binding:"required"`
	ValidFromTime      *string   `json:"valid_from_time"`
	ValidUntilTime     *string   `json:"valid_until_time"`
	WeekdayMask        int       `json:"weekday_mask" binding:"omitempty,gte=0,lte=127"`
	UsageLimit         *int      `json:"usage_limit" binding:"omitempty,gt=0"`
}

// UpdateSpecialRequest patches a promotional rule.
type UpdateSpecialRequest struct {
	SpecialName        *string    `json:"special_name"`
	Description        *string    `json:"description"`
	DiscountType       *string    `json:"discount_type"`
	DiscountValue      *float64   `json:"discount_value" binding:"omitempty,gt=0"`
	MinimumOrderAmount *float64   `json:"minimum_order_amount" binding:"omitempty,gte=0"`
	ValidFrom          *time.Time `json:"valid_from"`
	ValidUntil         *time.Time `json:"valid_until"`
	ValidFromTime      *string    `json:"valid_from_time"`
	ValidUntilTime     *string    `json:"valid_until_time"`
	WeekdayMask        *int       `json:"weekday_mask" binding:"omitempty,gte=0,lte=127"`
	IsActive           *bool      `json:"is_active"`
	UsageLimit         *int       `json:"usage_limit" binding:"omitempty,gt=0"`
}

// --- SpecialService Interface ---

type SpecialService interface {
	Create(actor *Actor, restaurantID int64, req CreateSpecialRequest) (*models.DailySpecial, error)
	List(actor *Actor, restaurantID int64, activeOnly bool) ([]models.DailySpecial, error)
	ListApplicable(restaurantID int64, at time.Time) ([]models.DailySpecial, error)
	Update(actor *Actor, specialID int64, req UpdateSpecialRequest) (*models.DailySpecial, error)
	Deactivate(actor *Actor, specialID int64) error
}

type specialService struct {
	specialRepo repositories.SpecialRepository
	authz       AuthzService
	db          *sql.DB
}

// NewSpecialService creates a new instance of SpecialService.
func NewSpecialService(specialRepo repositories.SpecialRepository, authz AuthzService, db *sql.DB) SpecialService {
	return &specialService{specialRepo: specialRepo, authz: authz, db: db}
}

func validateDiscountType(discountType string, value float64) (string, error) {
	normalized := strings.ToUpper(discountType)
	switch normalized {
	case models.DiscountTypePercentage:
		if value > 100 {
			return "", fmt.Errorf("%w: percentage discount cannot exceed 100", ErrValidation)
		}
	case models.DiscountTypeFixedAmount:
	default:
		return "", fmt.Errorf("%w: unknown discount type '%s'", ErrValidation, discountType)
	}
	return normalized, nil
}

func validateTimeOfDay(name string, value *string) error {
	if value == nil {
		return nil
	}
	if _, err := time.Parse("15:04", *value); err != nil {
		return fmt.Errorf("%w: %s must be HH:MM, got '%s'", ErrValidation, name, *value)
	}
	return nil
}

func (s *specialService) Create(actor *Actor, restaurantID int64, req CreateSpecialRequest) (*models.DailySpecial, error) {
	if err := s.authz.Require(actor, CapManageSpecials); err != nil {
		return nil, err
	}
	if err := s.authz.RequireRestaurant(actor, restaurantID); err != nil {
		return nil, err
	}

	discountType, err := validateDiscountType(req.DiscountType, req.DiscountValue)
	if err != nil {
		return nil, err
	}
	if req.ValidUntil.Before(req.ValidFrom) {
		return nil, fmt.Errorf("%w: valid_until precedes valid_from", ErrValidation)
	}
	if err := validateTimeOfDay("valid_from_time", req.ValidFromTime); err != nil {
		return nil, err
	}
	if err := validateTimeOfDay("valid_until_time", req.ValidUntilTime); err != nil {
		return nil, err
	}

	special := models.DailySpecial{
		RestaurantID:       restaurantID,
		SpecialName:        req.SpecialName,
		Description:        req.Description,
		DiscountType:       discountType,
		DiscountValue:      req.DiscountValue,
		MinimumOrderAmount: req.MinimumOrderAmount,
		ValidFrom:          req.ValidFrom,
		ValidUntil:         req.ValidUntil,
		ValidFromTime:      req.ValidFromTime,
		ValidUntilTime:     req.ValidUntilTime,
		WeekdayMask:        req.WeekdayMask,
		UsageLimit:         req.UsageLimit,
	}
	if _, err := s.specialRepo.Create(s.db, &special); err != nil {
		return nil, fmt.Errorf("creating special: %w", err)
	}
	special.IsActive = true
	return &special, nil
}

func (s *specialService) List(actor *Actor, restaurantID int64, activeOnly bool) ([]models.DailySpecial, error) {
	if err := s.authz.RequireRestaurant(actor, restaurantID); err != nil {
		return nil, err
	}
	specials, err := s.specialRepo.ListByRestaurant(restaurantID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("listing specials: %w", err)
	}
	return specials, nil
}

// ListApplicable returns the specials a guest could apply right now. Public;
// the menu endpoint exposes it without authentication.
func (s *specialService) ListApplicable(restaurantID int64, at time.Time) ([]models.DailySpecial, error) {
	candidates, err := s.specialRepo.ListCurrentlyValid(restaurantID, at)
	if err != nil {
		return nil, fmt.Errorf("listing valid specials: %w", err)
	}
	applicable := make([]models.DailySpecial, 0, len(candidates))
	for _, special := range candidates {
		if special.AppliesOn(at) && !special.UsageExhausted() {
			applicable = append(applicable, special)
		}
	}
	return applicable, nil
}

func (s *specialService) Update(actor *Actor, specialID int64, req UpdateSpecialRequest) (*models.DailySpecial, error) {
	if err := s.authz.Require(actor, CapManageSpecials); err != nil {
		return nil, err
	}

	special, err := s.specialRepo.GetByID(specialID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSpecialNotFound
		}
		return nil, fmt.Errorf("fetching special for update: %w", err)
	}
	if err := s.authz.RequireRestaurant(actor, special.RestaurantID); err != nil {
		return nil, err
	}

	if req.SpecialName != nil {
		special.SpecialName = *req.SpecialName
	}
	if req.Description != nil {
		special.Description = req.Description
	}
	if req.DiscountValue != nil {
		special.DiscountValue = *req.DiscountValue
	}
	if req.DiscountType != nil {
		discountType, err := validateDiscountType(*req.DiscountType, special.DiscountValue)
		if err != nil {
			return nil, err
		}
		special.DiscountType = discountType
	}
	if req.MinimumOrderAmount != nil {
		special.MinimumOrderAmount = req.MinimumOrderAmount
	}
	if req.ValidFrom != nil {
		special.ValidFrom = *req.ValidFrom
	}
	if req.ValidUntil != nil {
		special.ValidUntil = *req.ValidUntil
	}
	if special.ValidUntil.Before(special.ValidFrom) {
		return nil, fmt.Errorf("%w: valid_until precedes valid_from", ErrValidation)
	}
	if req.ValidFromTime != nil {
		if err := validateTimeOfDay("valid_from_time", req.ValidFromTime); err != nil {
			return nil, err
		}
		special.ValidFromTime = req.ValidFromTime
	}
	if req.ValidUntilTime != nil {
		if err := validateTimeOfDay("valid_until_time", req.ValidUntilTime); err != nil {
			return nil, err
		}
		special.ValidUntilTime = req.ValidUntilTime
	}
	if req.WeekdayMask != nil {
		special.WeekdayMask = *req.WeekdayMask
	}
	if req.IsActive != nil {
		special.IsActive = *req.IsActive
	}
	if req.UsageLimit != nil {
		special.UsageLimit = req.UsageLimit
	}

	if err := s.specialRepo.Update(s.db, special); err != nil {
		return nil, fmt.Errorf("updating special %d: %w", specialID, err)
	}
	return special, nil
}

func (s *specialService) Deactivate(actor *Actor, specialID int64) error {
	if err := s.authz.Require(actor, CapManageSpecials); err != nil {
		return err
	}

	special, err := s.specialRepo.GetByID(specialID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrSpecialNotFound
		}
		return fmt.Errorf("fetching special for deactivation: %w", err)
	}
	if err := s.authz.RequireRestaurant(actor, special.RestaurantID); err != nil {
		return err
	}

	if err := s.specialRepo.Deactivate(s.db, specialID); err != nil {
		return fmt.Errorf("deactivating special %d: %w", specialID, err)
	}
	return nil
}
