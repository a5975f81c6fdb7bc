// Package analytics computes the dashboard facets. Every call runs fresh
// grouped queries; facets are independent and run concurrently.
package analytics

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/toyorbit/toyorbit/internal/domain"
	"github.com/toyorbit/toyorbit/internal/repository"
	"golang.org/x/sync/errgroup"
)

// DayWindow is how far back ordersByDay looks
const DayWindow = 365 * 24 * time.Hour

type DayCount struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

type CountryCount struct {
	Country string `json:"country"`
	Count   int64  `json:"count"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

type Dashboard struct {
	TotalCustomers   int64           `json:"totalCustomers"`
	OrdersByDay      []DayCount      `json:"ordersByDay"`
	LocationData     []CountryCount  `json:"locationData"`
	TypeDistribution []CategoryCount `json:"typeDistribution"`
}

type Aggregator struct {
	store *repository.Store
	now   func() time.Time
}

func NewAggregator(store *repository.Store) *Aggregator {
	return &Aggregator{store: store, now: time.Now}
}

// dayExpr buckets order_date to YYYY-MM-DD in the active dialect
func (a *Aggregator) dayExpr() string {
	if a.store.IsPostgres() {
		return "TO_CHAR(DATE_TRUNC('day', order_date), 'YYYY-MM-DD')"
	}
	return "strftime('%Y-%m-%d', order_date)"
}

func (a *Aggregator) Dashboard(ctx context.Context) (*Dashboard, error) {
	d := &Dashboard{
		OrdersByDay:      make([]DayCount, 0),
		LocationData:     make([]CountryCount, 0),
		TypeDistribution: make([]CategoryCount, 0),
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := a.store.Customers().Count(gctx)
		d.TotalCustomers = n
		return err
	})
	g.Go(func() error {
		return a.ordersByDay(gctx, &d.OrdersByDay)
	})
	g.Go(func() error {
		return a.locationData(gctx, &d.LocationData)
	})
	g.Go(func() error {
		return a.typeDistribution(gctx, &d.TypeDistribution)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}

func (a *Aggregator) ordersByDay(ctx context.Context, out *[]DayCount) error {
	since := a.now().UTC().Add(-DayWindow)
	day := a.dayExpr()
	err := a.store.DB().WithContext(ctx).
		Model(&domain.Order{}).
		Select(day+" AS day, COUNT(*) AS count").
		Where("order_date >= ?", since).
		Group(day).
		Order("day ASC").
		Scan(out).Error
	return errors.Wrap(err, "orders by day")
}

func (a *Aggregator) locationData(ctx context.Context, out *[]CountryCount) error {
	err := a.store.DB().WithContext(ctx).
		Model(&domain.Order{}).
		Select("delivery_country AS country, COUNT(*) AS count").
		Group("delivery_country").
		Order("count DESC, country ASC").
		Scan(out).Error
	return errors.Wrap(err, "orders by country")
}

func (a *Aggregator) typeDistribution(ctx context.Context, out *[]CategoryCount) error {
	err := a.store.DB().WithContext(ctx).
		Table("order_items").
		Select("products.category AS category, SUM(order_items.quantity) AS count").
		Joins("JOIN products ON products.id = order_items.product_id").
		Group("products.category").
		Order("count DESC, category ASC").
		Scan(out).Error
	return errors.Wrap(err, "quantity by category")
}
