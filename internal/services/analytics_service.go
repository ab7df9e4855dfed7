package services

import (
	"fmt"
	"sort"
	"time"

	"dineqr_backend/internal/models"
	"dineqr_backend/internal/repositories"
	"dineqr_backend/pkg/utils"
)

// --- AnalyticsService Interface ---

type AnalyticsService interface {
	GetSalesAnalytics(actor *Actor, params models.AnalyticsParams) (*models.SalesAnalytics, error)
	GetMenuAnalytics(actor *Actor, params models.AnalyticsParams) (*models.MenuAnalytics, error)
}

type analyticsService struct {
	analyticsRepo repositories.AnalyticsRepository
	authz         AuthzService
}

// NewAnalyticsService creates a new instance of AnalyticsService.
func NewAnalyticsService(analyticsRepo repositories.AnalyticsRepository, authz AuthzService) AnalyticsService {
	return &analyticsService{analyticsRepo: analyticsRepo, authz: authz}
}

// ResolvePeriod converts a named period into a half-open [from, to) range
// ending now, plus the equal-length preceding range used for growth.
func ResolvePeriod(params models.AnalyticsParams, now time.Time) (from, to, prevFrom, prevTo time.Time, err error) {
	to = now
	switch params.Period {
	case "", "today":
		from = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	case "week":
		from = now.AddDate(0, 0, -7)
	case "month":
		from = now.AddDate(0, -1, 0)
	case "quarter":
		from = now.AddDate(0, -3, 0)
	case "year":
		from = now.AddDate(-1, 0, 0)
	case "custom":
		if params.DateFrom == nil || params.DateTo == nil {
			return from, to, prevFrom, prevTo, fmt.Errorf("%w: custom period needs date_from and date_to", ErrValidation)
		}
		from = *params.DateFrom
		to = params.DateTo.AddDate(0, 0, 1) // inclusive end date
		if !to.After(from) {
			return from, to, prevFrom, prevTo, fmt.Errorf("%w: date_to precedes date_from", ErrValidation)
		}
	default:
		return from, to, prevFrom, prevTo, fmt.Errorf("%w: unknown period '%s'", ErrValidation, params.Period)
	}

	span := to.Sub(from)
	prevTo = from
	prevFrom = from.Add(-span)
	return from, to, prevFrom, prevTo, nil
}

// ComputeGrowthPercent compares two period revenues. A zero previous period
// yields 0 rather than infinity.
func ComputeGrowthPercent(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return utils.Round2((current - previous) / previous * 100)
}

func (s *analyticsService) GetSalesAnalytics(actor *Actor, params models.AnalyticsParams) (*models.SalesAnalytics, error) {
	if err := s.authz.Require(actor, CapViewAnalytics); err != nil {
		return nil, err
	}
	if err := s.authz.RequireRestaurant(actor, params.RestaurantID); err != nil {
		return nil, err
	}

	from, to, prevFrom, prevTo, err := ResolvePeriod(params, time.Now())
	if err != nil {
		return nil, err
	}

	revenue, orders, err := s.analyticsRepo.GetSalesTotals(params.RestaurantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("computing sales totals: %w", err)
	}
	prevRevenue, _, err := s.analyticsRepo.GetSalesTotals(params.RestaurantID, prevFrom, prevTo)
	if err != nil {
		return nil, fmt.Errorf("computing previous period totals: %w", err)
	}

	summary := models.SalesSummary{
		TotalRevenue:          utils.Round2(revenue),
		TotalOrders:           orders,
		GrowthPercent:         ComputeGrowthPercent(revenue, prevRevenue),
		PreviousPeriodRevenue: utils.Round2(prevRevenue),
	}
	if orders > 0 {
		summary.AvgOrderValue = utils.Round2(revenue / float64(orders))
	}

	breakdown, err := s.analyticsRepo.GetSalesBreakdown(params.RestaurantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("computing sales breakdown: %w", err)
	}
	orderTypes, err := s.analyticsRepo.GetOrderTypeStats(params.RestaurantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("computing order type stats: %w", err)
	}

	return &models.SalesAnalytics{
		Summary:    summary,
		Breakdown:  breakdown,
		OrderTypes: orderTypes,
	}, nil
}

func (s *analyticsService) GetMenuAnalytics(actor *Actor, params models.AnalyticsParams) (*models.MenuAnalytics, error) {
	if err := s.authz.Require(actor, CapViewAnalytics); err != nil {
		return nil, err
	}
	if err := s.authz.RequireRestaurant(actor, params.RestaurantID); err != nil {
		return nil, err
	}

	from, to, _, _, err := ResolvePeriod(params, time.Now())
	if err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	items, err := s.analyticsRepo.GetMenuItemStats(params.RestaurantID, from, to, params.CategoryID, limit)
	if err != nil {
		return nil, fmt.Errorf("computing menu item stats: %w", err)
	}
	SortMenuItemStats(items, params.SortBy)

	categories, err := s.analyticsRepo.GetCategoryStats(params.RestaurantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("computing category stats: %w", err)
	}

	return &models.MenuAnalytics{
		TopItems:   items,
		Categories: categories,
	}, nil
}

// SortMenuItemStats reorders item stats for presentation. Popularity rank
// reflects quantity sold regardless of the chosen sort.
func SortMenuItemStats(items []models.MenuItemStats, sortBy string) {
	switch sortBy {
	case "revenue":
		sort.SliceStable(items, func(i, j int) bool { return items[i].TotalRevenue > items[j].TotalRevenue })
	case "profit_margin":
		sort.SliceStable(items, func(i, j int) bool { return items[i].ProfitMargin > items[j].ProfitMargin })
	default: // popularity
		sort.SliceStable(items, func(i, j int) bool { return items[i].TotalQuantity > items[j].TotalQuantity })
	}
}
