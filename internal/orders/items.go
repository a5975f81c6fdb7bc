package orders

import (
	"context"

	"github.com/google/uuid"
	"github.com/toyorbit/toyorbit/internal/apperr"
	"github.com/toyorbit/toyorbit/internal/domain"
	"github.com/toyorbit/toyorbit/internal/repository"
)

// Single-item operations scoped by (customer, order). Each one recomputes the
// order total inside its transaction.

func ownedOrder(ctx context.Context, tx *repository.Store, orderID, customerID uuid.UUID) error {
	_, err := tx.Orders().GetForCustomer(ctx, orderID, customerID)
	return err
}

func refreshTotal(ctx context.Context, tx *repository.Store, orderID uuid.UUID) error {
	items, err := tx.OrderItems().ListByOrder(ctx, orderID)
	if err != nil {
		return err
	}
	return tx.Orders().UpdateFields(ctx, orderID, map[string]interface{}{"total_amount": sumRows(items)})
}

func (m *Manager) ListItems(ctx context.Context, orderID, customerID uuid.UUID) ([]domain.OrderItemDetail, error) {
	if err := ownedOrder(ctx, m.store, orderID, customerID); err != nil {
		return nil, err
	}
	return m.store.OrderItems().ListDetails(ctx, orderID)
}

func (m *Manager) GetItem(ctx context.Context, itemID, orderID, customerID uuid.UUID) (*domain.OrderItem, error) {
	if err := ownedOrder(ctx, m.store, orderID, customerID); err != nil {
		return nil, err
	}
	return m.store.OrderItems().GetForOrder(ctx, itemID, orderID)
}

func (m *Manager) AddItem(ctx context.Context, orderID, customerID uuid.UUID, in ItemInput) (*domain.OrderItem, error) {
	if err := checkItem(0, in); err != nil {
		return nil, err
	}
	var item domain.OrderItem
	err := m.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := ownedOrder(ctx, tx, orderID, customerID); err != nil {
			return err
		}
		if err := requireProducts(ctx, tx, []uuid.UUID{in.ProductID}); err != nil {
			return err
		}
		item = toRows(orderID, []ItemInput{in})[0]
		if err := tx.OrderItems().Create(ctx, &item); err != nil {
			return err
		}
		return refreshTotal(ctx, tx, orderID)
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (m *Manager) UpdateItem(ctx context.Context, itemID, orderID, customerID uuid.UUID, patch ItemPatch) (*domain.OrderItem, error) {
	var item *domain.OrderItem
	err := m.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := ownedOrder(ctx, tx, orderID, customerID); err != nil {
			return err
		}
		current, err := tx.OrderItems().GetForOrder(ctx, itemID, orderID)
		if err != nil {
			return err
		}
		next := ItemInput{ProductID: current.ProductID, Quantity: current.Quantity, UnitPrice: current.UnitPrice}
		if patch.ProductID != nil {
			next.ProductID = *patch.ProductID
			if err := requireProducts(ctx, tx, []uuid.UUID{next.ProductID}); err != nil {
				return err
			}
		}
		if patch.Quantity != nil {
			next.Quantity = *patch.Quantity
		}
		if patch.UnitPrice != nil {
			next.UnitPrice = *patch.UnitPrice
		}
		if err := checkItem(0, next); err != nil {
			return err
		}
		err = tx.OrderItems().UpdateFields(ctx, itemID, map[string]interface{}{
			"product_id":  next.ProductID,
			"quantity":    next.Quantity,
			"unit_price":  next.UnitPrice,
			"total_price": lineTotal(next),
		})
		if err != nil {
			return err
		}
		if err := refreshTotal(ctx, tx, orderID); err != nil {
			return err
		}
		item, err = tx.OrderItems().GetForOrder(ctx, itemID, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// RemoveItem deletes one line; the last line of an order cannot be removed.
func (m *Manager) RemoveItem(ctx context.Context, itemID, orderID, customerID uuid.UUID) error {
	return m.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := ownedOrder(ctx, tx, orderID, customerID); err != nil {
			return err
		}
		items, err := tx.OrderItems().ListByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if len(items) == 1 && items[0].ID == itemID {
			return apperr.BadRequest("Order must keep at least one item; delete the order instead")
		}
		if err := tx.OrderItems().Delete(ctx, itemID, orderID); err != nil {
			return err
		}
		return refreshTotal(ctx, tx, orderID)
	})
}
