package report

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toyorbit/toyorbit/internal/domain"
)

func order(at time.Time, status, total string) *domain.Order {
	return &domain.Order{ID: uuid.New(), OrderDate: at, Status: status, TotalAmount: domain.MustMoney(total)}
}

func item(o *domain.Order, name, category string, qty int) domain.OrderItemDetail {
	return domain.OrderItemDetail{
		OrderItem:   domain.OrderItem{ID: uuid.New(), OrderID: o.ID, Quantity: qty},
		ProductName: name,
		Category:    category,
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	s := ComputeStats(nil, nil, now)

	assert.Equal(t, 0, s.TotalOrders)
	assert.Equal(t, "0.00", s.TotalRevenue.String())
	assert.Equal(t, NoMonth, s.TopMonth)
	require.Len(t, s.Months, HistogramMonths)
	assert.Equal(t, "2024-07", s.Months[0].Month)
	assert.Equal(t, "2025-03", s.Months[8].Month)
	for _, m := range s.Months {
		assert.Zero(t, m.Count)
	}
	assert.Empty(t, s.TopStatuses)
	assert.Equal(t, "0.00", s.AverageOrder.String())
}

func TestComputeStats(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	o1 := order(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC), domain.OrderStatusDelivered, "10.10")
	o2 := order(time.Date(2025, 1, 5, 9, 0, 0, 0, time.UTC), domain.OrderStatusDelivered, "20.20")
	o3 := order(time.Date(2024, 1, 20, 9, 0, 0, 0, time.UTC), domain.OrderStatusCancelled, "0.30")
	o4 := order(time.Date(2023, 3, 2, 9, 0, 0, 0, time.UTC), domain.OrderStatusShipped, "5.00")
	orders := []*domain.Order{o1, o2, o3, o4}
	items := []domain.OrderItemDetail{
		item(o1, "Truck", domain.CategoryTrucks, 2),
		item(o2, "Doll", domain.CategoryDolls, 3),
		item(o3, "Truck", domain.CategoryTrucks, 1),
		item(o4, "Blocks", domain.CategoryLegoSets, 1),
		item(o4, "Scooter", domain.CategoryScooters, 1),
	}

	s := ComputeStats(orders, items, now)
	assert.Equal(t, 4, s.TotalOrders)
	assert.Equal(t, "35.60", s.TotalRevenue.String())
	assert.Equal(t, "8.90", s.AverageOrder.String())
	assert.Equal(t, "7.55", s.MedianOrder.String())

	require.Len(t, s.Months, HistogramMonths)
	counts := map[string]int64{}
	for _, m := range s.Months {
		counts[m.Month] = m.Count
	}
	assert.EqualValues(t, 1, counts["2025-03"])
	assert.EqualValues(t, 1, counts["2025-01"])
	assert.EqualValues(t, 0, counts["2025-02"])
	_, tooOld := counts["2024-01"]
	assert.False(t, tooOld)

	// January and March both have two orders; calendar order wins
	assert.Equal(t, "January", s.TopMonth)

	assert.Equal(t, []Ranked{{domain.OrderStatusDelivered, 2}, {domain.OrderStatusCancelled, 1}, {domain.OrderStatusShipped, 1}}, s.TopStatuses)
	assert.Equal(t, []Ranked{{domain.CategoryDolls, 3}, {domain.CategoryTrucks, 3}, {domain.CategoryLegoSets, 1}}, s.TopCategories)
	assert.Equal(t, []Ranked{{"Doll", 3}, {"Truck", 3}, {"Blocks", 1}}, s.TopProducts)
	assert.Len(t, s.ProductCounts, 4)
}

func TestCategoryQuantitiesMatchItems(t *testing.T) {
	o := order(time.Now(), domain.OrderStatusPending, "1.00")
	items := []domain.OrderItemDetail{
		item(o, "A", domain.CategoryDolls, 2),
		item(o, "B", domain.CategoryDolls, 5),
		item(o, "C", domain.CategoryTrucks, 4),
	}
	s := ComputeStats([]*domain.Order{o}, items, time.Now())
	got := map[string]int64{}
	for _, c := range s.CategoryCounts {
		got[c.Key] = c.Count
	}
	assert.Equal(t, map[string]int64{domain.CategoryDolls: 7, domain.CategoryTrucks: 4}, got)
}

func TestTrailingMonthsAcrossYear(t *testing.T) {
	months := trailingMonths(time.Date(2025, 1, 31, 23, 0, 0, 0, time.UTC), HistogramMonths)
	assert.Equal(t, "2024-05", months[0].Month)
	assert.Equal(t, "2025-01", months[8].Month)
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "Lego Sets", Humanize(domain.CategoryLegoSets))
	assert.Equal(t, "Shipped", Humanize(domain.OrderStatusShipped))
}

func TestFormatRanked(t *testing.T) {
	assert.Equal(t, "none", formatRanked(nil))
	assert.Equal(t, "a(3), b(1)", formatRanked([]Ranked{{"a", 3}, {"b", 1}}))
}
