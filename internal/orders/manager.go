// Package orders keeps an order header and its line items consistent: every
// write that touches both runs in a single transaction.
package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/toyorbit/toyorbit/internal/apperr"
	"github.com/toyorbit/toyorbit/internal/domain"
	"github.com/toyorbit/toyorbit/internal/repository"
	"go.uber.org/zap"
)

// OrderDetail is an order with its items joined to their products
type OrderDetail struct {
	*domain.Order
	Items []domain.OrderItemDetail `json:"items"`
}

type Manager struct {
	store *repository.Store
	now   func() time.Time
}

func NewManager(store *repository.Store) *Manager {
	return &Manager{store: store, now: time.Now}
}

// requireProducts fails with NotFound when any id does not resolve
func requireProducts(ctx context.Context, tx *repository.Store, ids []uuid.UUID) error {
	missing, err := tx.Products().Missing(ctx, ids)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return apperr.NotFound("Product %s not found", missing[0])
	}
	return nil
}

// Create inserts the order header and all of its items atomically.
func (m *Manager) Create(ctx context.Context, customerID uuid.UUID, in CreateOrderInput) (*domain.Order, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	now := m.now().UTC()
	order := &domain.Order{
		CustomerID:      customerID,
		OrderDate:       now,
		Status:          in.Status,
		TotalAmount:     *in.TotalAmount,
		DeliveryStreet:  in.DeliveryStreet,
		DeliveryCity:    in.DeliveryCity,
		DeliveryState:   in.DeliveryState,
		DeliveryPostal:  in.DeliveryPostal,
		DeliveryCountry: in.DeliveryCountry,
		DateDelivered:   in.DateDelivered,
	}
	if in.OrderDate != nil {
		order.OrderDate = in.OrderDate.UTC()
	}
	order.ScheduledDeliveryDate = now.Add(domain.DefaultDeliveryLeadTime)
	if in.ScheduledDeliveryDate != nil {
		order.ScheduledDeliveryDate = in.ScheduledDeliveryDate.UTC()
	}

	err := m.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Customers().GetByID(ctx, customerID); err != nil {
			return err
		}
		if err := requireProducts(ctx, tx, productIDs(in.Items)); err != nil {
			return err
		}
		if err := tx.Orders().Create(ctx, order); err != nil {
			return err
		}
		order.Items = toRows(order.ID, in.Items)
		return tx.OrderItems().CreateBatch(ctx, order.Items)
	})
	if err != nil {
		return nil, err
	}
	zap.S().Infof("order %s created for customer %s with %d items", order.ID, customerID, len(order.Items))
	return order, nil
}

// Replace updates the supplied header fields and, when items are given, swaps
// the whole item set in the same transaction.
func (m *Manager) Replace(ctx context.Context, orderID, customerID uuid.UUID, in UpdateOrderInput) (*domain.Order, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	updates := in.headerUpdates()

	var order *domain.Order
	err := m.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Orders().GetForCustomer(ctx, orderID, customerID); err != nil {
			return err
		}
		if in.Items != nil {
			if err := requireProducts(ctx, tx, productIDs(in.Items)); err != nil {
				return err
			}
			sum := sumItems(in.Items)
			if in.TotalAmount != nil && !in.TotalAmount.SameAmount(sum) {
				return apperr.BadRequest("totalAmount %s does not match item total %s", in.TotalAmount, sum)
			}
			updates["total_amount"] = sum
			if _, err := tx.OrderItems().DeleteByOrder(ctx, orderID); err != nil {
				return err
			}
			if err := tx.OrderItems().CreateBatch(ctx, toRows(orderID, in.Items)); err != nil {
				return err
			}
		} else if in.TotalAmount != nil {
			items, err := tx.OrderItems().ListByOrder(ctx, orderID)
			if err != nil {
				return err
			}
			sum := sumRows(items)
			if !in.TotalAmount.SameAmount(sum) {
				return apperr.BadRequest("totalAmount %s does not match item total %s", in.TotalAmount, sum)
			}
		}
		if err := tx.Orders().UpdateFields(ctx, orderID, updates); err != nil {
			return err
		}
		var err error
		order, err = tx.Orders().GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		order.Items, err = tx.OrderItems().ListByOrder(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Delete removes the order and its items. A second delete of the same order
// reports NotFound.
func (m *Manager) Delete(ctx context.Context, orderID, customerID uuid.UUID) error {
	return m.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Orders().GetForCustomer(ctx, orderID, customerID); err != nil {
			return err
		}
		n, err := tx.OrderItems().DeleteByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if err := tx.Orders().Delete(ctx, orderID, customerID); err != nil {
			return err
		}
		zap.S().Infof("order %s deleted with %d items", orderID, n)
		return nil
	})
}

// Get returns one order of the customer with its items
func (m *Manager) Get(ctx context.Context, orderID, customerID uuid.UUID) (*OrderDetail, error) {
	order, err := m.store.Orders().GetForCustomer(ctx, orderID, customerID)
	if err != nil {
		return nil, err
	}
	items, err := m.store.OrderItems().ListDetails(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &OrderDetail{Order: order, Items: items}, nil
}

// ListForCustomer pages through the orders of an existing customer
func (m *Manager) ListForCustomer(ctx context.Context, customerID uuid.UUID, page, pageSize int) ([]*domain.Order, int64, error) {
	if _, err := m.store.Customers().GetByID(ctx, customerID); err != nil {
		return nil, 0, err
	}
	return m.store.Orders().ListForCustomer(ctx, customerID, page, pageSize)
}

// ListAll pages through every order, optionally filtered by status
func (m *Manager) ListAll(ctx context.Context, status string, page, pageSize int) ([]*domain.Order, int64, error) {
	if status != "" {
		if err := checkStatus(status); err != nil {
			return nil, 0, err
		}
	}
	return m.store.Orders().ListAll(ctx, status, page, pageSize)
}

func sumRows(items []domain.OrderItem) domain.Money {
	return lo.Reduce(items, func(acc domain.Money, it domain.OrderItem, _ int) domain.Money {
		return acc.Add(it.TotalPrice)
	}, domain.Money{})
}
