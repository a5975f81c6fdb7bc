package app

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/toyorbit/toyorbit/internal/domain"
	"github.com/toyorbit/toyorbit/internal/orders"
	"go.uber.org/zap"
)

type seedProduct struct {
	name     string
	category string
	price    string
	stock    int
}

var seedCatalog = []seedProduct{
	{"Dump Truck XL", domain.CategoryTrucks, "34.99", 40},
	{"Fire Engine", domain.CategoryTrucks, "29.50", 35},
	{"Castle Builder Set", domain.CategoryLegoSets, "79.00", 20},
	{"Space Station Kit", domain.CategoryLegoSets, "119.99", 12},
	{"Kick Scooter Mini", domain.CategoryScooters, "59.00", 25},
	{"Light-Up Scooter", domain.CategoryScooters, "74.25", 18},
	{"Plush Bear", domain.CategoryStuffedAnimals, "15.99", 80},
	{"Plush Dragon", domain.CategoryStuffedAnimals, "22.00", 60},
	{"Fashion Doll", domain.CategoryDolls, "19.99", 50},
	{"Baby Doll Stroller Set", domain.CategoryDolls, "42.50", 22},
	{"Chef Play Kitchen", domain.CategoryKitchenSets, "149.00", 8},
	{"Tea Party Set", domain.CategoryKitchenSets, "24.75", 30},
	{"Bead Bracelet Kit", domain.CategoryJewelryKits, "12.49", 70},
	{"Charm Necklace Studio", domain.CategoryJewelryKits, "27.00", 40},
}

type seedCustomer struct {
	name    string
	city    string
	state   string
	country string
}

var seedCustomers = []seedCustomer{
	{"Ava Thompson", "Austin", "TX", "United States"},
	{"Liam Carter", "Denver", "CO", "United States"},
	{"Chloe Martin", "Toronto", "ON", "Canada"},
	{"Noah Wilson", "Vancouver", "BC", "Canada"},
	{"Mia Schmidt", "Berlin", "BE", "Germany"},
	{"Lucas Dubois", "Lyon", "ARA", "France"},
	{"Emma Rossi", "Milan", "MI", "Italy"},
	{"Oliver Smith", "Leeds", "WYK", "United Kingdom"},
}

// SeedDemo fills an empty database with a small catalog, a handful of
// customers and random orders spread over the past 90 days. Orders go
// through the order manager so totals obey the same rules as API writes.
func (a *Application) SeedDemo(ctx context.Context, seed int64) error {
	count, err := a.store.Customers().Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return errors.New("database already contains customers, refusing to seed")
	}

	rnd := rand.New(rand.NewSource(seed)) //nolint:gosec // demo data only
	now := time.Now().UTC()

	products := make([]*domain.Product, 0, len(seedCatalog))
	for _, sp := range seedCatalog {
		p := &domain.Product{
			Name:          sp.name,
			Description:   sp.name + " from the demo catalog",
			Price:         domain.MustMoney(sp.price),
			Category:      sp.category,
			StockQuantity: sp.stock,
		}
		if err := a.store.Products().Create(ctx, p); err != nil {
			return errors.Wrapf(err, "seed product %s", sp.name)
		}
		products = append(products, p)
	}

	var total int
	for i, sc := range seedCustomers {
		c := &domain.Customer{
			Name:       sc.name,
			Email:      fmt.Sprintf("customer%d@example.com", i+1),
			Phone:      fmt.Sprintf("555-01%02d", i+1),
			Street:     fmt.Sprintf("%d Main Street", 10+rnd.Intn(900)),
			City:       sc.city,
			State:      sc.state,
			PostalCode: fmt.Sprintf("%05d", rnd.Intn(100000)),
			Country:    sc.country,
		}
		if err := a.store.Customers().Create(ctx, c); err != nil {
			return errors.Wrapf(err, "seed customer %s", sc.name)
		}

		for n := 1 + rnd.Intn(10); n > 0; n-- {
			in := randomOrder(rnd, now, c, products)
			if _, err := a.orders.Create(ctx, c.ID, in); err != nil {
				return errors.Wrapf(err, "seed order for %s", sc.name)
			}
			total++
		}
	}
	zap.S().Infof("seeded %d products, %d customers and %d orders",
		len(products), len(seedCustomers), total)
	return nil
}

func randomOrder(rnd *rand.Rand, now time.Time, c *domain.Customer, products []*domain.Product) orders.CreateOrderInput {
	orderDate := now.Add(-time.Duration(rnd.Intn(90*24)) * time.Hour)
	scheduled := orderDate.Add(time.Duration(7+rnd.Intn(15)) * 24 * time.Hour)

	in := orders.CreateOrderInput{
		OrderDate:             &orderDate,
		ScheduledDeliveryDate: &scheduled,
		Status:                domain.OrderStatusPending,
		DeliveryStreet:        c.Street,
		DeliveryCity:          c.City,
		DeliveryState:         c.State,
		DeliveryPostal:        c.PostalCode,
		DeliveryCountry:       c.Country,
	}
	if scheduled.Before(now) && rnd.Intn(2) == 0 {
		delivered := scheduled.Add(-time.Duration(rnd.Intn(48)) * time.Hour)
		in.DateDelivered = &delivered
		in.Status = domain.OrderStatusDelivered
	}

	sum := domain.NewMoney(decimal.Zero)
	for _, idx := range rnd.Perm(len(products))[:1+rnd.Intn(min(10, len(products)))] {
		p := products[idx]
		qty := 1 + rnd.Intn(5)
		in.Items = append(in.Items, orders.ItemInput{
			ProductID: p.ID,
			Quantity:  qty,
			UnitPrice: p.Price,
		})
		sum = sum.Add(p.Price.Times(qty))
	}
	in.TotalAmount = &sum
	return in
}
