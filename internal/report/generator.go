// Package report builds the customer report: statistics over the customer's
// order history, a generated narrative, two charts and a paginated PDF.
package report

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/toyorbit/toyorbit/internal/domain"
	"github.com/toyorbit/toyorbit/internal/repository"
)

// Report is everything needed to write the document. Building one performs
// all queries and rendering, so writing it cannot fail halfway for data reasons.
type Report struct {
	Brand         string
	Customer      *domain.Customer
	Orders        []*domain.Order
	Items         []domain.OrderItemDetail
	Stats         Stats
	Narrative     string
	OrdersChart   []byte
	CategoryChart []byte
}

func (r *Report) Filename() string {
	return Filename(r.Customer.Name)
}

func (r *Report) WritePDF(w io.Writer) error {
	return WritePDF(w, r)
}

type Generator struct {
	store  *repository.Store
	text   TextGenerator
	charts ChartRenderer
	brand  string
	now    func() time.Time
}

func NewGenerator(store *repository.Store, text TextGenerator, charts ChartRenderer, brand string) *Generator {
	if text == nil {
		text = NoopText{}
	}
	return &Generator{store: store, text: text, charts: charts, brand: brand, now: time.Now}
}

// Load fetches a customer with every order and order item
func (g *Generator) Load(ctx context.Context, customerID uuid.UUID) (*Report, error) {
	customer, err := g.store.Customers().GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	orders, err := g.store.Orders().AllForCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	ids := lo.Map(orders, func(o *domain.Order, _ int) uuid.UUID { return o.ID })
	items, err := g.store.OrderItems().ListDetails(ctx, ids...)
	if err != nil {
		return nil, err
	}
	return &Report{Brand: g.brand, Customer: customer, Orders: orders, Items: items}, nil
}

// Build runs the full pipeline short of writing bytes. The narrative is
// always requested and degrades to empty; chart failures abort.
func (g *Generator) Build(ctx context.Context, customerID uuid.UUID) (*Report, error) {
	r, err := g.Load(ctx, customerID)
	if err != nil {
		return nil, err
	}
	r.Stats = ComputeStats(r.Orders, r.Items, g.now())
	r.Narrative = narrative(ctx, g.text, BuildPrompt(g.brand, r.Customer.Name, r.Stats))

	months := lo.Map(r.Stats.Months, func(m MonthCount, _ int) string { return m.Month })
	counts := lo.Map(r.Stats.Months, func(m MonthCount, _ int) float64 { return float64(m.Count) })
	if r.OrdersChart, err = g.charts.LineChart("Orders", months, counts); err != nil {
		return nil, err
	}

	labels := lo.Map(r.Stats.CategoryCounts, func(c Ranked, _ int) string { return Humanize(c.Key) })
	qty := lo.Map(r.Stats.CategoryCounts, func(c Ranked, _ int) float64 { return float64(c.Count) })
	if r.CategoryChart, err = g.charts.PieChart("Toy Categories", labels, qty); err != nil {
		return nil, err
	}
	return r, nil
}
