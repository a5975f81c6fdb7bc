// Package testutil opens throwaway databases and seeds fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/toyorbit/toyorbit/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory sqlite database private to the test
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(domain.Tables...))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func Customer(t testing.TB, db *gorm.DB, email string) *domain.Customer {
	t.Helper()
	c := &domain.Customer{
		Name:    "Customer " + email,
		Email:   email,
		Street:  "1 Main St",
		City:    "Springfield",
		Country: "USA",
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

func Product(t testing.TB, db *gorm.DB, name, category, price string) *domain.Product {
	t.Helper()
	p := &domain.Product{
		Name:          name,
		Category:      category,
		Price:         domain.MustMoney(price),
		StockQuantity: 10,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// ItemSpec describes one line of a fixture order
type ItemSpec struct {
	Product  *domain.Product
	Quantity int
}

// Order inserts an order with the given items; the total is derived from the product prices.
func Order(t testing.TB, db *gorm.DB, c *domain.Customer, at time.Time, status, country string, items ...ItemSpec) *domain.Order {
	t.Helper()
	o := &domain.Order{
		CustomerID:            c.ID,
		OrderDate:             at,
		ScheduledDeliveryDate: at.Add(domain.DefaultDeliveryLeadTime),
		Status:                status,
		DeliveryStreet:        "1 Main St",
		DeliveryCity:          "Springfield",
		DeliveryCountry:       country,
	}
	var lines []domain.OrderItem
	for _, it := range items {
		line := domain.OrderItem{
			ProductID:  it.Product.ID,
			Quantity:   it.Quantity,
			UnitPrice:  it.Product.Price,
			TotalPrice: it.Product.Price.Times(it.Quantity),
		}
		o.TotalAmount = o.TotalAmount.Add(line.TotalPrice)
		lines = append(lines, line)
	}
	require.NoError(t, db.Omit("Items", "Customer").Create(o).Error)
	for i := range lines {
		lines[i].OrderID = o.ID
	}
	if len(lines) > 0 {
		require.NoError(t, db.Omit("Product").Create(&lines).Error)
	}
	o.Items = lines
	return o
}
