package sales

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"retail-backoffice/internal/apperr"
	"retail-backoffice/internal/logger"
	"retail-backoffice/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LineItem is one validated row of a checkout request. Name and PriceAtSale
// are the catalog snapshot taken by the caller at validation time; the
// engine freezes them onto the SaleItem row.
type LineItem struct {
	ProductID   uint
	Name        string
	Quantity    int
	PriceAtSale decimal.Decimal
}

// Engine is the sale transaction engine. Every write runs as one
// transaction scoped to the call; there is no ambient session.
type Engine struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEngine(db *gorm.DB, baseLog *logger.Logger) *Engine {
	return &Engine{db: db, log: baseLog.With("service", "sales")}
}

// CreateSale atomically persists a sale header, its items and the stock
// decrements. The whole batch commits or none of it does: an invalid item,
// a missing customer or product, or insufficient stock rolls everything
// back. The timestamp is assigned here, in UTC, never by the caller.
func (e *Engine) CreateSale(ctx context.Context, customerID uint, items []LineItem) (*models.Sale, error) {
	if customerID == 0 {
		return nil, apperr.Validation("invalid_customer_id", "customer id is required")
	}
	if err := validateItems(items); err != nil {
		return nil, err
	}

	total := decimal.Zero
	saleItems := make([]models.SaleItem, 0, len(items))
	for _, item := range items {
		lineTotal := item.PriceAtSale.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(lineTotal)
		saleItems = append(saleItems, models.SaleItem{
			ProductID:   item.ProductID,
			Name:        item.Name,
			Quantity:    item.Quantity,
			PriceAtSale: item.PriceAtSale,
		})
	}

	sale := models.Sale{
		CustomerID:  customerID,
		TotalAmount: total,
		Items:       saleItems,
	}

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		if err := tx.First(&customer, customerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("customer_not_found", "customer %d not found", customerID)
			}
			return err
		}

		for _, item := range items {
			var product models.Product
			if err := tx.First(&product, item.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NotFound("product_not_found", "product %d not found", item.ProductID)
				}
				return err
			}

			// Check and decrement in one statement so concurrent checkouts
			// racing for the same product can never drive stock negative.
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
				Update("stock", gorm.Expr("stock - ?", item.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return apperr.Consistency("insufficient_stock",
					"insufficient stock for %s: want %d, have %d", product.Name, item.Quantity, product.Stock)
			}
		}

		sale.Timestamp = time.Now().UTC()
		if err := tx.Create(&sale).Error; err != nil {
			return translateStoreErr(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("sale created",
		"sale_id", sale.ID, "customer_id", customerID,
		"items", len(sale.Items), "total", sale.TotalAmount)
	return &sale, nil
}

func validateItems(items []LineItem) error {
	if len(items) == 0 {
		return apperr.Validation("empty_sale", "a sale needs at least one line item")
	}
	for i, item := range items {
		switch {
		case item.ProductID == 0:
			return apperr.Validation("invalid_product_id", "item %d: product id is required", i)
		case item.Name == "":
			return apperr.Validation("missing_item_name", "item %d: name is required", i)
		case item.Quantity <= 0:
			return apperr.Validation("invalid_quantity", "item %d: quantity must be positive, got %d", i, item.Quantity)
		case item.PriceAtSale.IsNegative():
			return apperr.Validation("negative_price", "item %d: price must not be negative, got %s", i, item.PriceAtSale)
		}
	}
	return nil
}

// translateStoreErr surfaces uniqueness/FK violations at the transaction
// boundary as a single conflict error.
func translateStoreErr(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return &apperr.Error{Kind: apperr.KindConflict, Code: "store_conflict", Err: fmt.Errorf("store rejected sale: %w", err)}
	}
	return err
}

// GetSaleByID fetches one sale with its items. Deleted sales are invisible
// unless includeDeleted is set.
func (e *Engine) GetSaleByID(ctx context.Context, saleID uint, includeDeleted bool) (*models.Sale, error) {
	q := e.db.WithContext(ctx)
	if includeDeleted {
		q = q.Unscoped().Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Unscoped() })
	} else {
		q = q.Preload("Items")
	}

	var sale models.Sale
	if err := q.First(&sale, saleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("sale_not_found", "sale %d not found", saleID)
		}
		return nil, err
	}
	return &sale, nil
}

// ListSales returns one page of sales, newest first.
func (e *Engine) ListSales(ctx context.Context, page, perPage int) ([]models.Sale, error) {
	return e.listSales(ctx, 0, page, perPage)
}

// ListSalesByCustomer returns one page of a customer's sales, newest first.
func (e *Engine) ListSalesByCustomer(ctx context.Context, customerID uint, page, perPage int) ([]models.Sale, error) {
	if customerID == 0 {
		return nil, apperr.Validation("invalid_customer_id", "customer id is required")
	}
	return e.listSales(ctx, customerID, page, perPage)
}

func (e *Engine) listSales(ctx context.Context, customerID uint, page, perPage int) ([]models.Sale, error) {
	if page < 1 || perPage < 1 {
		return nil, apperr.Validation("invalid_page", "page and per_page must be >= 1, got %d/%d", page, perPage)
	}

	q := e.db.WithContext(ctx).Preload("Items").
		Order("timestamp DESC, id DESC").
		Offset((page - 1) * perPage).
		Limit(perPage)
	if customerID != 0 {
		q = q.Where("customer_id = ?", customerID)
	}

	var sales []models.Sale
	if err := q.Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

const recentBatchSize = 50

// RecentSales yields up to limit sales, newest first, fetching lazily in
// batches. The sequence is restartable: each range loop issues fresh
// queries. An iteration error is yielded once and ends the sequence.
func (e *Engine) RecentSales(ctx context.Context, limit int) iter.Seq2[models.Sale, error] {
	return func(yield func(models.Sale, error) bool) {
		fetched := 0
		for fetched < limit {
			n := recentBatchSize
			if rem := limit - fetched; rem < n {
				n = rem
			}

			var batch []models.Sale
			err := e.db.WithContext(ctx).Preload("Items").
				Order("timestamp DESC, id DESC").
				Offset(fetched).Limit(n).
				Find(&batch).Error
			if err != nil {
				yield(models.Sale{}, err)
				return
			}

			for _, s := range batch {
				if !yield(s, nil) {
					return
				}
			}
			if len(batch) < n {
				return
			}
			fetched += len(batch)
		}
	}
}

// DeleteSale flags the sale and all its items as deleted in one transaction.
// A deleted sale never comes back.
func (e *Engine) DeleteSale(ctx context.Context, saleID uint) error {
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sale models.Sale
		if err := tx.Unscoped().First(&sale, saleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("sale_not_found", "sale %d not found", saleID)
			}
			return err
		}
		if sale.DeletedAt.Valid {
			return apperr.AlreadyDeleted("sale_already_deleted", "sale %d is already deleted", saleID)
		}

		if err := tx.Delete(&models.Sale{}, saleID).Error; err != nil {
			return err
		}
		if err := tx.Where("sale_id = ?", saleID).Delete(&models.SaleItem{}).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.log.Info("sale deleted", "sale_id", saleID)
	return nil
}
