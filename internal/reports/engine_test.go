package reports

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"retail-backoffice/internal/apperr"
	"retail-backoffice/internal/database"
	"retail-backoffice/internal/logger"
	"retail-backoffice/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seedCustomer(t *testing.T, db *gorm.DB, name, email string) models.Customer {
	t.Helper()
	c := models.Customer{Name: name, Email: email}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func seedSale(t *testing.T, db *gorm.DB, customerID uint, total string, at time.Time) models.Sale {
	t.Helper()
	s := models.Sale{CustomerID: customerID, TotalAmount: dec(total), Timestamp: at.UTC()}
	require.NoError(t, db.Create(&s).Error)
	return s
}

// fixture: C1 Alice has 150 and 200 in range, C2 Bob has 300, C3 Carol has
// 100, C4 Dave has nothing. One sale sits outside the range and one is
// soft-deleted; neither may ever count.
type fixture struct {
	db     *gorm.DB
	engine *Engine

	alice, bob, carol, dave models.Customer
}

var (
	day1 = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	day2 = time.Date(2025, 3, 2, 9, 30, 0, 0, time.UTC)
)

func newFixture(t *testing.T) fixture {
	db := newTestDB(t)
	f := fixture{
		db:     db,
		engine: NewEngine(db, logger.NewNop()),
		alice:  seedCustomer(t, db, "Alice", "alice@example.com"),
		bob:    seedCustomer(t, db, "Bob", "bob@example.com"),
		carol:  seedCustomer(t, db, "Carol", "carol@example.com"),
		dave:   seedCustomer(t, db, "Dave", "dave@example.com"),
	}

	seedSale(t, db, f.alice.ID, "150", day1)
	seedSale(t, db, f.alice.ID, "200", day2)
	seedSale(t, db, f.bob.ID, "300", day1)
	seedSale(t, db, f.carol.ID, "100", day2)

	// Outside the tested range.
	seedSale(t, db, f.dave.ID, "999", time.Date(2025, 4, 20, 12, 0, 0, 0, time.UTC))

	// Soft-deleted; invisible to every report.
	voided := seedSale(t, db, f.bob.ID, "5000", day1)
	require.NoError(t, db.Delete(&models.Sale{}, voided.ID).Error)

	return f
}

const (
	rangeStart = "2025-03-01"
	rangeEnd   = "2025-03-02"
)

func TestTotalSalesPerCustomer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	rows, err := f.engine.TotalSalesPerCustomer(ctx, rangeStart, rangeEnd)
	require.NoError(t, err)
	require.Len(t, rows, 4, "every customer appears, even with zero sales")

	require.Equal(t, "Alice", rows[0].CustomerName)
	require.True(t, rows[0].TotalSales.Equal(dec("350")))
	require.Equal(t, "Bob", rows[1].CustomerName)
	require.True(t, rows[1].TotalSales.Equal(dec("300")))
	require.Equal(t, "Carol", rows[2].CustomerName)
	require.True(t, rows[2].TotalSales.Equal(dec("100")))
	require.Equal(t, "Dave", rows[3].CustomerName)
	require.True(t, rows[3].TotalSales.Equal(dec("0")), "out-of-range sales sum to zero, not null")

	t.Run("unbounded range counts everything", func(t *testing.T) {
		rows, err := f.engine.TotalSalesPerCustomer(ctx, "", "")
		require.NoError(t, err)
		require.Len(t, rows, 4)
		require.Equal(t, "Dave", rows[3].CustomerName)
		require.True(t, rows[3].TotalSales.Equal(dec("999")))
	})

	t.Run("empty range reports all zeros", func(t *testing.T) {
		rows, err := f.engine.TotalSalesPerCustomer(ctx, "2020-01-01", "2020-01-02")
		require.NoError(t, err)
		require.Len(t, rows, 4)
		for _, row := range rows {
			require.True(t, row.TotalSales.IsZero())
		}
	})
}

func TestTopCustomersBySales(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	t.Run("limit two highest", func(t *testing.T) {
		rows, err := f.engine.TopCustomersBySales(ctx, 2, rangeStart, rangeEnd)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		require.Equal(t, f.alice.ID, rows[0].CustomerID)
		require.True(t, rows[0].TotalSales.Equal(dec("350")))
		require.Equal(t, f.bob.ID, rows[1].CustomerID)
		require.True(t, rows[1].TotalSales.Equal(dec("300")))
	})

	t.Run("zero-sale customers are excluded", func(t *testing.T) {
		rows, err := f.engine.TopCustomersBySales(ctx, 10, rangeStart, rangeEnd)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		for _, row := range rows {
			require.NotEqual(t, f.dave.ID, row.CustomerID)
		}
	})

	t.Run("equal totals break ties by ascending id", func(t *testing.T) {
		db := newTestDB(t)
		engine := NewEngine(db, logger.NewNop())
		first := seedCustomer(t, db, "Zed", "zed@example.com")
		second := seedCustomer(t, db, "Amy", "amy@example.com")
		seedSale(t, db, first.ID, "100", day1)
		seedSale(t, db, second.ID, "100", day1)

		rows, err := engine.TopCustomersBySales(ctx, 2, "", "")
		require.NoError(t, err)
		require.Len(t, rows, 2)
		require.Equal(t, first.ID, rows[0].CustomerID)
		require.Equal(t, second.ID, rows[1].CustomerID)
	})

	t.Run("invalid limit", func(t *testing.T) {
		_, err := f.engine.TopCustomersBySales(ctx, 0, "", "")
		require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})
}

func TestCustomerPurchaseFrequency(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	rows, err := f.engine.CustomerPurchaseFrequency(ctx, rangeStart, rangeEnd)
	require.NoError(t, err)
	require.Len(t, rows, 3, "customers without sales in range are excluded")

	require.Equal(t, f.alice.ID, rows[0].CustomerID)
	require.EqualValues(t, 2, rows[0].PurchaseCount)
	// Bob and Carol both have one sale; ids break the tie.
	require.Equal(t, f.bob.ID, rows[1].CustomerID)
	require.EqualValues(t, 1, rows[1].PurchaseCount)
	require.Equal(t, f.carol.ID, rows[2].CustomerID)
	require.EqualValues(t, 1, rows[2].PurchaseCount)
}

func TestSalesSummaryByDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	rows, err := f.engine.SalesSummaryByDay(ctx, rangeStart, rangeEnd)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Newest day first. Day 2: 200 + 100; day 1: 150 + 300 (voided 5000 excluded).
	require.Equal(t, "2025-03-02", rows[0].Day)
	require.True(t, rows[0].Total.Equal(dec("300")), "got %s", rows[0].Total)
	require.Equal(t, "2025-03-01", rows[1].Day)
	require.True(t, rows[1].Total.Equal(dec("450")), "got %s", rows[1].Total)

	t.Run("single-day range", func(t *testing.T) {
		rows, err := f.engine.SalesSummaryByDay(ctx, "2025-03-01", "2025-03-01")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		require.Equal(t, "2025-03-01", rows[0].Day)
		require.True(t, rows[0].Total.Equal(dec("450")))
	})

	t.Run("no matching sales yields no rows", func(t *testing.T) {
		rows, err := f.engine.SalesSummaryByDay(ctx, "2020-01-01", "2020-01-31")
		require.NoError(t, err)
		require.Empty(t, rows)
	})
}

func TestSalesSummaryByCustomer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	rows, err := f.engine.SalesSummaryByCustomer(ctx, rangeStart, rangeEnd)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	require.Equal(t, f.alice.ID, rows[0].CustomerID)
	require.True(t, rows[0].TotalSales.Equal(dec("350")))
	require.Equal(t, f.bob.ID, rows[1].CustomerID)
	require.True(t, rows[1].TotalSales.Equal(dec("300")))
	require.Equal(t, f.carol.ID, rows[2].CustomerID)
	require.True(t, rows[2].TotalSales.Equal(dec("100")))
}

func TestSummary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	summary, err := f.engine.Summary(ctx, rangeStart, rangeEnd)
	require.NoError(t, err)
	require.True(t, summary.TotalRevenue.Equal(dec("750")), "got %s", summary.TotalRevenue)
	require.EqualValues(t, 4, summary.SaleCount)

	t.Run("empty range sums to zero", func(t *testing.T) {
		summary, err := f.engine.Summary(ctx, "2020-01-01", "2020-01-31")
		require.NoError(t, err)
		require.True(t, summary.TotalRevenue.IsZero())
		require.Zero(t, summary.SaleCount)
	})
}

func TestTopProductsByQuantity(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	engine := NewEngine(db, logger.NewNop())
	customer := seedCustomer(t, db, "Alice", "alice@example.com")

	s1 := seedSale(t, db, customer.ID, "110", day1)
	s2 := seedSale(t, db, customer.ID, "45", day2)
	items := []models.SaleItem{
		{SaleID: s1.ID, ProductID: 1, Name: "Cola", Quantity: 4, PriceAtSale: dec("20")},
		{SaleID: s1.ID, ProductID: 2, Name: "Chips", Quantity: 2, PriceAtSale: dec("15")},
		{SaleID: s2.ID, ProductID: 1, Name: "Cola", Quantity: 1, PriceAtSale: dec("20")},
		{SaleID: s2.ID, ProductID: 3, Name: "Water", Quantity: 5, PriceAtSale: dec("5")},
	}
	require.NoError(t, db.Create(&items).Error)

	rows, err := engine.TopProductsByQuantity(ctx, 2, "", "")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.Equal(t, "Cola", rows[0].ProductName)
	require.EqualValues(t, 5, rows[0].UnitsSold)
	require.True(t, rows[0].Revenue.Equal(dec("100")), "got %s", rows[0].Revenue)
	require.Equal(t, "Water", rows[1].ProductName)
	require.EqualValues(t, 5, rows[1].UnitsSold)

	t.Run("range filter applies to the owning sale", func(t *testing.T) {
		rows, err := engine.TopProductsByQuantity(ctx, 10, "2025-03-02", "2025-03-02")
		require.NoError(t, err)
		require.Len(t, rows, 2)
		require.Equal(t, "Water", rows[0].ProductName)
		require.EqualValues(t, 5, rows[0].UnitsSold)
		require.Equal(t, "Cola", rows[1].ProductName)
		require.EqualValues(t, 1, rows[1].UnitsSold)
	})
}

func TestMalformedDates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	cases := map[string]func() error{
		"TotalSalesPerCustomer": func() error {
			_, err := f.engine.TotalSalesPerCustomer(ctx, "03/01/2025", "")
			return err
		},
		"TopCustomersBySales": func() error {
			_, err := f.engine.TopCustomersBySales(ctx, 5, "", "not-a-date")
			return err
		},
		"CustomerPurchaseFrequency": func() error {
			_, err := f.engine.CustomerPurchaseFrequency(ctx, "2025-13-45", "")
			return err
		},
		"SalesSummaryByDay": func() error {
			_, err := f.engine.SalesSummaryByDay(ctx, "yesterday", "")
			return err
		},
		"SalesSummaryByCustomer": func() error {
			_, err := f.engine.SalesSummaryByCustomer(ctx, "", "2025-03-99")
			return err
		},
		"Summary": func() error {
			_, err := f.engine.Summary(ctx, "garbage", "")
			return err
		},
		"TopProductsByQuantity": func() error {
			_, err := f.engine.TopProductsByQuantity(ctx, 5, "garbage", "")
			return err
		},
	}
	for name, call := range cases {
		t.Run(name, func(t *testing.T) {
			err := call()
			require.Error(t, err)
			require.Equal(t, apperr.KindInvalidDate, apperr.KindOf(err))
		})
	}

	t.Run("inverted range", func(t *testing.T) {
		_, err := f.engine.Summary(ctx, "2025-03-02", "2025-03-01")
		require.Equal(t, apperr.KindInvalidDate, apperr.KindOf(err))
	})
}
