package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"retail-backoffice/internal/apperr"
	"retail-backoffice/internal/database"
	"retail-backoffice/internal/logger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return NewService(db, logger.NewNop())
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seedCategory(t *testing.T, svc *Service, name string) uint {
	t.Helper()
	category, err := svc.CreateCategory(context.Background(), name, "")
	require.NoError(t, err)
	return category.ID
}

func productReq(name, barcode string, categoryID uint, price string, stock int) CreateProductRequest {
	return CreateProductRequest{
		Name:         name,
		Barcode:      barcode,
		CategoryID:   categoryID,
		SellingPrice: dec(price),
		Stock:        stock,
	}
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	drinks := seedCategory(t, svc, "Drinks")

	t.Run("creates", func(t *testing.T) {
		product, err := svc.CreateProduct(ctx, productReq("Cola", "111", drinks, "2.50", 24))
		require.NoError(t, err)
		require.NotZero(t, product.ID)
		require.True(t, product.SellingPrice.Equal(dec("2.50")))
	})

	t.Run("unknown category", func(t *testing.T) {
		_, err := svc.CreateProduct(ctx, productReq("Lemonade", "222", 999, "3", 10))
		require.ErrorIs(t, err, &apperr.Error{Kind: apperr.KindNotFound, Code: "category_not_found"})
	})

	t.Run("duplicate barcode conflicts", func(t *testing.T) {
		_, err := svc.CreateProduct(ctx, productReq("Cola Clone", "111", drinks, "2", 5))
		require.ErrorIs(t, err, &apperr.Error{Kind: apperr.KindConflict, Code: "duplicate_barcode"})
	})

	t.Run("rejects bad input", func(t *testing.T) {
		_, err := svc.CreateProduct(ctx, productReq("", "333", drinks, "2", 5))
		require.Equal(t, apperr.KindValidation, apperr.KindOf(err))

		_, err = svc.CreateProduct(ctx, productReq("Soda", "333", drinks, "-2", 5))
		require.Equal(t, apperr.KindValidation, apperr.KindOf(err))

		_, err = svc.CreateProduct(ctx, productReq("Soda", "333", drinks, "2", -5))
		require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})
}

func TestProductLookups(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	drinks := seedCategory(t, svc, "Drinks")
	snacks := seedCategory(t, svc, "Snacks")

	_, err := svc.CreateProduct(ctx, productReq("Cola Zero", "111", drinks, "2.50", 24))
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, productReq("Chips", "222", snacks, "1.80", 0))
	require.NoError(t, err)

	t.Run("by barcode", func(t *testing.T) {
		product, err := svc.GetProductByBarcode(ctx, "222")
		require.NoError(t, err)
		require.Equal(t, "Chips", product.Name)

		_, err = svc.GetProductByBarcode(ctx, "000")
		require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	t.Run("search is case-insensitive", func(t *testing.T) {
		result, err := svc.SearchProductsByName(ctx, "COLA")
		require.NoError(t, err)
		require.Len(t, result, 1)
		require.Equal(t, "Cola Zero", result[0].Name)
	})

	t.Run("by category", func(t *testing.T) {
		result, err := svc.ListProductsByCategory(ctx, snacks)
		require.NoError(t, err)
		require.Len(t, result, 1)
		require.Equal(t, "Chips", result[0].Name)

		_, err = svc.ListProductsByCategory(ctx, 999)
		require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	t.Run("in stock only", func(t *testing.T) {
		result, err := svc.ListProductsInStock(ctx)
		require.NoError(t, err)
		require.Len(t, result, 1)
		require.Equal(t, "Cola Zero", result[0].Name)
	})
}

func TestUpdateProduct(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	drinks := seedCategory(t, svc, "Drinks")

	product, err := svc.CreateProduct(ctx, productReq("Cola", "111", drinks, "2.50", 24))
	require.NoError(t, err)

	t.Run("changes only named fields", func(t *testing.T) {
		price := dec("2.80")
		updated, err := svc.UpdateProduct(ctx, product.ID, ProductUpdate{SellingPrice: &price})
		require.NoError(t, err)
		require.True(t, updated.SellingPrice.Equal(dec("2.80")))
		require.Equal(t, "Cola", updated.Name)
		require.Equal(t, 24, updated.Stock)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		price := dec("-1")
		_, err := svc.UpdateProduct(ctx, product.ID, ProductUpdate{SellingPrice: &price})
		require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	t.Run("moving to an unknown category fails", func(t *testing.T) {
		ghost := uint(999)
		_, err := svc.UpdateProduct(ctx, product.ID, ProductUpdate{CategoryID: &ghost})
		require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})
}

func TestRestock(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	drinks := seedCategory(t, svc, "Drinks")

	product, err := svc.CreateProduct(ctx, productReq("Cola", "111", drinks, "2.50", 3))
	require.NoError(t, err)

	updated, err := svc.Restock(ctx, product.ID, 12)
	require.NoError(t, err)
	require.Equal(t, 15, updated.Stock)

	_, err = svc.Restock(ctx, product.ID, 0)
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Restock(ctx, 999, 5)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDeleteProduct(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	drinks := seedCategory(t, svc, "Drinks")

	product, err := svc.CreateProduct(ctx, productReq("Cola", "111", drinks, "2.50", 3))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(ctx, product.ID))
	_, err = svc.GetProductByID(ctx, product.ID)
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	require.Equal(t, apperr.KindNotFound, apperr.KindOf(svc.DeleteProduct(ctx, product.ID)))
}

func TestCategories(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	drinks, err := svc.CreateCategory(ctx, "Drinks", "cold ones")
	require.NoError(t, err)

	t.Run("duplicate name conflicts", func(t *testing.T) {
		_, err := svc.CreateCategory(ctx, "Drinks", "")
		require.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})

	t.Run("update", func(t *testing.T) {
		desc := "cold and fizzy"
		updated, err := svc.UpdateCategory(ctx, drinks.ID, nil, &desc)
		require.NoError(t, err)
		require.Equal(t, "cold and fizzy", updated.Description)
		require.Equal(t, "Drinks", updated.Name)
	})

	t.Run("list", func(t *testing.T) {
		_, err := svc.CreateCategory(ctx, "Bakery", "")
		require.NoError(t, err)

		result, err := svc.ListCategories(ctx)
		require.NoError(t, err)
		require.Len(t, result, 2)
		require.Equal(t, "Bakery", result[0].Name)
	})
}
