package reports

import (
	"context"

	"retail-backoffice/internal/apperr"
	"retail-backoffice/internal/dateutil"
	"retail-backoffice/internal/logger"
	"retail-backoffice/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Engine computes read-only aggregates over committed sale history.
// Every operation takes an optional inclusive [start, end] range; either
// bound may be empty for unbounded. Accepted formats: YYYY-MM-DD or
// RFC 3339, interpreted as UTC. Deleted sales and customers never count.
type Engine struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEngine(db *gorm.DB, baseLog *logger.Logger) *Engine {
	return &Engine{db: db, log: baseLog.With("service", "reports")}
}

// CustomerTotal is one customer's summed sale amount over a range.
type CustomerTotal struct {
	CustomerID   uint            `gorm:"column:customer_id" json:"customer_id"`
	CustomerName string          `gorm:"column:customer_name" json:"customer_name"`
	TotalSales   decimal.Decimal `gorm:"column:total_sales" json:"total_sales"`
}

// CustomerFrequency is one customer's sale count over a range.
type CustomerFrequency struct {
	CustomerID    uint   `gorm:"column:customer_id" json:"customer_id"`
	CustomerName  string `gorm:"column:customer_name" json:"customer_name"`
	PurchaseCount int64  `gorm:"column:purchase_count" json:"purchase_count"`
}

// DailySummary is the revenue of one UTC calendar day.
type DailySummary struct {
	Day   string          `gorm:"column:day" json:"date"`
	Total decimal.Decimal `gorm:"column:total" json:"total"`
}

// RangeSummary is the headline figure for a range.
type RangeSummary struct {
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	SaleCount    int64           `json:"sale_count"`
}

// ProductSales is one product's units and revenue over a range, keyed by
// the name snapshot frozen on the sale items.
type ProductSales struct {
	ProductName string          `gorm:"column:product_name" json:"product_name"`
	UnitsSold   int64           `gorm:"column:units_sold" json:"units_sold"`
	Revenue     decimal.Decimal `gorm:"column:revenue" json:"revenue"`
}

// rangeCond builds "AND col >= ? AND col <= ?" pieces for whichever bounds
// are present, so the same fragment works in JOIN and WHERE positions.
func rangeCond(col, startStr, endStr string) (string, []interface{}, error) {
	start, end, err := dateutil.ParseRange(startStr, endStr)
	if err != nil {
		return "", nil, err
	}
	cond := ""
	var args []interface{}
	if start != nil {
		cond += " AND " + col + " >= ?"
		args = append(args, *start)
	}
	if end != nil {
		cond += " AND " + col + " <= ?"
		args = append(args, *end)
	}
	return cond, args, nil
}

// TotalSalesPerCustomer reports every active customer with the sum of their
// sales in range. Customers with no matching sales appear with a zero
// total, never get dropped. Ordered by name, then id for equal names.
func (e *Engine) TotalSalesPerCustomer(ctx context.Context, startStr, endStr string) ([]CustomerTotal, error) {
	cond, args, err := rangeCond("sales.timestamp", startStr, endStr)
	if err != nil {
		return nil, err
	}

	// The range filter lives in the LEFT JOIN condition: putting it in the
	// WHERE clause would silently drop the zero-sale customers.
	rows := []CustomerTotal{}
	err = e.db.WithContext(ctx).Table("customers").
		Select("customers.id AS customer_id, customers.name AS customer_name, COALESCE(SUM(sales.total_amount), 0) AS total_sales").
		Joins("LEFT JOIN sales ON sales.customer_id = customers.id AND sales.deleted_at IS NULL"+cond, args...).
		Where("customers.deleted_at IS NULL").
		Group("customers.id, customers.name").
		Order("customers.name ASC, customers.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// TopCustomersBySales reports the limit highest-spending customers in
// range, excluding zero-sale customers. Ties on total break by ascending
// customer id.
func (e *Engine) TopCustomersBySales(ctx context.Context, limit int, startStr, endStr string) ([]CustomerTotal, error) {
	if limit < 1 {
		return nil, apperr.Validation("invalid_limit", "limit must be >= 1, got %d", limit)
	}
	cond, args, err := rangeCond("sales.timestamp", startStr, endStr)
	if err != nil {
		return nil, err
	}

	rows := []CustomerTotal{}
	err = e.db.WithContext(ctx).Table("sales").
		Select("sales.customer_id AS customer_id, customers.name AS customer_name, SUM(sales.total_amount) AS total_sales").
		Joins("JOIN customers ON customers.id = sales.customer_id AND customers.deleted_at IS NULL").
		Where("sales.deleted_at IS NULL"+cond, args...).
		Group("sales.customer_id, customers.name").
		Order("total_sales DESC, customer_id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CustomerPurchaseFrequency counts sales per customer in range, most
// frequent first, excluding customers with no sales.
func (e *Engine) CustomerPurchaseFrequency(ctx context.Context, startStr, endStr string) ([]CustomerFrequency, error) {
	cond, args, err := rangeCond("sales.timestamp", startStr, endStr)
	if err != nil {
		return nil, err
	}

	rows := []CustomerFrequency{}
	err = e.db.WithContext(ctx).Table("sales").
		Select("sales.customer_id AS customer_id, customers.name AS customer_name, COUNT(sales.id) AS purchase_count").
		Joins("JOIN customers ON customers.id = sales.customer_id AND customers.deleted_at IS NULL").
		Where("sales.deleted_at IS NULL"+cond, args...).
		Group("sales.customer_id, customers.name").
		Order("purchase_count DESC, customer_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SalesSummaryByDay sums revenue per UTC calendar day, newest day first.
func (e *Engine) SalesSummaryByDay(ctx context.Context, startStr, endStr string) ([]DailySummary, error) {
	cond, args, err := rangeCond("timestamp", startStr, endStr)
	if err != nil {
		return nil, err
	}

	rows := []DailySummary{}
	q := e.db.WithContext(ctx).Model(&models.Sale{}).
		Select("DATE(timestamp) AS day, SUM(total_amount) AS total").
		Group("DATE(timestamp)").
		Order("day DESC")
	if cond != "" {
		q = q.Where("1=1"+cond, args...)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SalesSummaryByCustomer sums revenue per customer in range, restricted to
// customers with at least one sale, highest total first (ties by id).
func (e *Engine) SalesSummaryByCustomer(ctx context.Context, startStr, endStr string) ([]CustomerTotal, error) {
	cond, args, err := rangeCond("sales.timestamp", startStr, endStr)
	if err != nil {
		return nil, err
	}

	rows := []CustomerTotal{}
	err = e.db.WithContext(ctx).Table("sales").
		Select("sales.customer_id AS customer_id, customers.name AS customer_name, SUM(sales.total_amount) AS total_sales").
		Joins("JOIN customers ON customers.id = sales.customer_id AND customers.deleted_at IS NULL").
		Where("sales.deleted_at IS NULL"+cond, args...).
		Group("sales.customer_id, customers.name").
		Order("total_sales DESC, customer_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Summary reports total revenue and sale count for a range. Zero matching
// sales sum to zero, not null.
func (e *Engine) Summary(ctx context.Context, startStr, endStr string) (*RangeSummary, error) {
	cond, args, err := rangeCond("timestamp", startStr, endStr)
	if err != nil {
		return nil, err
	}

	var summary RangeSummary
	q := e.db.WithContext(ctx).Model(&models.Sale{})
	if cond != "" {
		q = q.Where("1=1"+cond, args...)
	}
	if err := q.Select("COALESCE(SUM(total_amount), 0)").Scan(&summary.TotalRevenue).Error; err != nil {
		return nil, err
	}

	q = e.db.WithContext(ctx).Model(&models.Sale{})
	if cond != "" {
		q = q.Where("1=1"+cond, args...)
	}
	if err := q.Count(&summary.SaleCount).Error; err != nil {
		return nil, err
	}
	return &summary, nil
}

// TopProductsByQuantity reports the limit best sellers in range by units
// sold, with the revenue they brought in. Ties break by product name.
func (e *Engine) TopProductsByQuantity(ctx context.Context, limit int, startStr, endStr string) ([]ProductSales, error) {
	if limit < 1 {
		return nil, apperr.Validation("invalid_limit", "limit must be >= 1, got %d", limit)
	}
	cond, args, err := rangeCond("sales.timestamp", startStr, endStr)
	if err != nil {
		return nil, err
	}

	rows := []ProductSales{}
	err = e.db.WithContext(ctx).Table("sale_items").
		Select("sale_items.name AS product_name, SUM(sale_items.quantity) AS units_sold, SUM(sale_items.quantity * sale_items.price_at_sale) AS revenue").
		Joins("JOIN sales ON sales.id = sale_items.sale_id AND sales.deleted_at IS NULL"+cond, args...).
		Where("sale_items.deleted_at IS NULL").
		Group("sale_items.name").
		Order("units_sold DESC, product_name ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
