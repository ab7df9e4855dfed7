package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"dineqr_backend/internal/models"
)

// AnalyticsRepository defines read-only reporting queries. All revenue
// aggregates count COMPLETED orders only.
type AnalyticsRepository interface {
	GetSalesTotals(restaurantID int64, from, to time.Time) (revenue float64, orders int, err error)
	GetSalesBreakdown(restaurantID int64, from, to time.Time) ([]models.SalesBreakdownRow, error)
	GetOrderTypeStats(restaurantID int64, from, to time.Time) ([]models.OrderTypeStats, error)
	GetMenuItemStats(restaurantID int64, from, to time.Time, categoryID *int64, limit int) ([]models.MenuItemStats, error)
	GetCategoryStats(restaurantID int64, from, to time.Time) ([]models.CategoryStats, error)
}

type analyticsRepository struct {
	db *sql.DB
}

// NewAnalyticsRepository creates a new instance of AnalyticsRepository.
func NewAnalyticsRepository(db *sql.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) GetSalesTotals(restaurantID int64, from, to time.Time) (float64, int, error) {
	revenue := 0.0
	orders := 0
	query := `SELECT COALESCE(SUM(total_amount), 0), COUNT(*)
	          FROM orders
	          WHERE restaurant_id = $1 AND order_status = $2
	            AND ordered_at >= $3 AND ordered_at < $4`
	err := r.db.QueryRow(query, restaurantID, models.OrderStatusCompleted, from, to).Scan(&revenue, &orders)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: getting sales totals for restaurant %d: %v", ErrDatabaseError, restaurantID, err)
	}
	return revenue, orders, nil
}

func (r *analyticsRepository) GetSalesBreakdown(restaurantID int64, from, to time.Time) ([]models.SalesBreakdownRow, error) {
	breakdown := []models.SalesBreakdownRow{}
	query := `SELECT TO_CHAR(DATE(ordered_at), 'YYYY-MM-DD') AS period,
	                 COALESCE(SUM(total_amount), 0) AS revenue,
	                 COUNT(*) AS orders
	          FROM orders
	          WHERE restaurant_id = $1 AND order_status = $2
	            AND ordered_at >= $3 AND ordered_at < $4
	          GROUP BY DATE(ordered_at)
	          ORDER BY DATE(ordered_at)`
	rows, err := r.db.Query(query, restaurantID, models.OrderStatusCompleted, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: querying sales breakdown for restaurant %d: %v", ErrDatabaseError, restaurantID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var row models.SalesBreakdownRow
		if err := rows.Scan(&row.Period, &row.Revenue, &row.Orders); err != nil {
			return nil, fmt.Errorf("%w: scanning sales breakdown row: %v", ErrDatabaseError, err)
		}
		if row.Orders > 0 {
			row.AvgOrderValue = row.Revenue / float64(row.Orders)
		}
		breakdown = append(breakdown, row)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating sales breakdown rows: %v", ErrDatabaseError, err)
	}
	return breakdown, nil
}

func (r *analyticsRepository) GetOrderTypeStats(restaurantID int64, from, to time.Time) ([]models.OrderTypeStats, error) {
	stats := []models.OrderTypeStats{}
	query := `SELECT order_type, COUNT(*), COALESCE(SUM(total_amount), 0)
	          FROM orders
	          WHERE restaurant_id = $1 AND order_status = $2
	            AND ordered_at >= $3 AND ordered_at < $4
	          GROUP BY order_type
	          ORDER BY SUM(total_amount) DESC`
	rows, err := r.db.Query(query, restaurantID, models.OrderStatusCompleted, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: querying order type stats for restaurant %d: %v", ErrDatabaseError, restaurantID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var stat models.OrderTypeStats
		if err := rows.Scan(&stat.OrderType, &stat.Orders, &stat.Revenue); err != nil {
			return nil, fmt.Errorf("%w: scanning order type stats: %v", ErrDatabaseError, err)
		}
		stats = append(stats, stat)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating order type stat rows: %v", ErrDatabaseError, err)
	}
	return stats, nil
}

func (r *analyticsRepository) GetMenuItemStats(restaurantID int64, from, to time.Time, categoryID *int64, limit int) ([]models.MenuItemStats, error) {
	stats := []models.MenuItemStats{}
	query := `SELECT mi.id, mi.item_name, COALESCE(mc.category_name, ''),
	                 COUNT(DISTINCT oi.order_id) AS times_ordered,
	                 COALESCE(SUM(oi.quantity), 0) AS total_quantity,
	                 COALESCE(SUM(oi.total_price), 0) AS total_revenue,
	                 COALESCE(SUM(oi.total_price) / NULLIF(SUM(oi.quantity), 0), 0) AS avg_selling_price,
	                 COALESCE(mi.profit_margin, 0) * COALESCE(SUM(oi.quantity), 0) AS profit_margin,
	                 COALESCE(mi.profit_margin_percent, 0) AS profit_margin_percent
	          FROM order_items oi
	          JOIN orders o ON o.id = oi.order_id
	          JOIN menu_items mi ON mi.id = oi.menu_item_id
	          LEFT JOIN menu_categories mc ON mc.id = mi.category_id
	          WHERE o.restaurant_id = $1 AND o.order_status = $2
	            AND o.ordered_at >= $3 AND o.ordered_at < $4
	            AND ($5::bigint IS NULL OR mi.category_id = $5::bigint)
	          GROUP BY mi.id, mi.item_name, mc.category_name, mi.profit_margin, mi.profit_margin_percent
	          ORDER BY total_quantity DESC
	          LIMIT $6`
	rows, err := r.db.Query(query, restaurantID, models.OrderStatusCompleted, from, to, categoryID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: querying menu item stats for restaurant %d: %v", ErrDatabaseError, restaurantID, err)
	}
	defer rows.Close()

	rank := 0
	for rows.Next() {
		var stat models.MenuItemStats
		err := rows.Scan(
			&stat.ItemID, &stat.ItemName, &stat.CategoryName, &stat.TimesOrdered,
			&stat.TotalQuantity, &stat.TotalRevenue, &stat.AvgSellingPrice,
			&stat.ProfitMargin, &stat.ProfitMarginPercent,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning menu item stats: %v", ErrDatabaseError, err)
		}
		rank++
		stat.PopularityRank = rank
		stats = append(stats, stat)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating menu item stat rows: %v", ErrDatabaseError, err)
	}
	return stats, nil
}

func (r *analyticsRepository) GetCategoryStats(restaurantID int64, from, to time.Time) ([]models.CategoryStats, error) {
	stats := []models.CategoryStats{}
	query := `SELECT mc.id, mc.category_name,
	                 COALESCE(SUM(oi.total_price), 0) AS total_revenue,
	                 COUNT(DISTINCT oi.order_id) AS order_count,
	                 COALESCE(SUM(oi.quantity), 0) AS item_count
	          FROM order_items oi
	          JOIN orders o ON o.id = oi.order_id
	          JOIN menu_items mi ON mi.id = oi.menu_item_id
	          JOIN menu_categories mc ON mc.id = mi.category_id
	          WHERE o.restaurant_id = $1 AND o.order_status = $2
	            AND o.ordered_at >= $3 AND o.ordered_at < $4
	          GROUP BY mc.id, mc.category_name
	          ORDER BY total_revenue DESC`
	rows, err := r.db.Query(query, restaurantID, models.OrderStatusCompleted, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: querying category stats for restaurant %d: %v", ErrDatabaseError, restaurantID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var stat models.CategoryStats
		err := rows.Scan(&stat.CategoryID, &stat.CategoryName, &stat.TotalRevenue, &stat.OrderCount, &stat.ItemCount)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning category stats: %v", ErrDatabaseError, err)
		}
		if stat.OrderCount > 0 {
			stat.AvgOrderValue = stat.TotalRevenue / float64(stat.OrderCount)
		}
		stats = append(stats, stat)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating category stat rows: %v", ErrDatabaseError, err)
	}
	return stats, nil
}
