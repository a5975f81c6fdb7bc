package orders

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/toyorbit/toyorbit/internal/apperr"
	"github.com/toyorbit/toyorbit/internal/domain"
)

// ItemInput is one requested line. TotalPrice may be omitted, in which case
// it is derived from quantity and unit price.
type ItemInput struct {
	ProductID  uuid.UUID
	Quantity   int
	UnitPrice  domain.Money
	TotalPrice *domain.Money
}

// CreateOrderInput carries the header fields and the full item set of a new order
type CreateOrderInput struct {
	OrderDate             *time.Time
	ScheduledDeliveryDate *time.Time
	DateDelivered         *time.Time
	Status                string
	TotalAmount           *domain.Money
	DeliveryStreet        string
	DeliveryCity          string
	DeliveryState         string
	DeliveryPostal        string
	DeliveryCountry       string
	Items                 []ItemInput
}

// UpdateOrderInput is a partial header update. Nil fields are left alone.
// A nil Items keeps the current item set; a non-nil Items replaces it and
// must not be empty.
type UpdateOrderInput struct {
	OrderDate             *time.Time
	ScheduledDeliveryDate *time.Time
	DateDelivered         *time.Time
	Status                *string
	TotalAmount           *domain.Money
	DeliveryStreet        *string
	DeliveryCity          *string
	DeliveryState         *string
	DeliveryPostal        *string
	DeliveryCountry       *string
	Items                 []ItemInput
}

// ItemPatch is a partial update of a single line
type ItemPatch struct {
	ProductID *uuid.UUID
	Quantity  *int
	UnitPrice *domain.Money
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func checkStatus(status string) error {
	if !domain.IsOrderStatus(status) {
		return apperr.BadRequest("Invalid status %q, expected one of %s", status, strings.Join(domain.OrderStatuses, ", "))
	}
	return nil
}

func checkItem(i int, it ItemInput) error {
	if it.ProductID == uuid.Nil {
		return apperr.BadRequest("items[%d]: productId is required", i)
	}
	if it.Quantity < 1 {
		return apperr.BadRequest("items[%d]: quantity must be at least 1", i)
	}
	if it.UnitPrice.IsNegative() {
		return apperr.BadRequest("items[%d]: unitPrice must not be negative", i)
	}
	if it.TotalPrice != nil && !it.TotalPrice.SameAmount(it.UnitPrice.Times(it.Quantity)) {
		return apperr.BadRequest("items[%d]: totalPrice %s does not equal quantity x unitPrice", i, it.TotalPrice)
	}
	return nil
}

func checkItems(items []ItemInput) error {
	if len(items) == 0 {
		return apperr.BadRequest("Order must contain at least one item")
	}
	for i, it := range items {
		if err := checkItem(i, it); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks every precondition of order creation
func (in CreateOrderInput) Validate() error {
	if err := checkItems(in.Items); err != nil {
		return err
	}
	if blank(in.Status) {
		return apperr.BadRequest("status is required")
	}
	if err := checkStatus(in.Status); err != nil {
		return err
	}
	if in.TotalAmount == nil {
		return apperr.BadRequest("totalAmount is required")
	}
	if blank(in.DeliveryStreet) || blank(in.DeliveryCity) || blank(in.DeliveryCountry) {
		return apperr.BadRequest("deliveryStreet, deliveryCity and deliveryCountry are required")
	}
	if sum := sumItems(in.Items); !in.TotalAmount.SameAmount(sum) {
		return apperr.BadRequest("totalAmount %s does not match item total %s", in.TotalAmount, sum)
	}
	return nil
}

// Validate checks the supplied fields of a partial update
func (in UpdateOrderInput) Validate() error {
	if in.Status != nil {
		if err := checkStatus(*in.Status); err != nil {
			return err
		}
	}
	for name, v := range map[string]*string{
		"deliveryStreet":  in.DeliveryStreet,
		"deliveryCity":    in.DeliveryCity,
		"deliveryCountry": in.DeliveryCountry,
	} {
		if v != nil && blank(*v) {
			return apperr.BadRequest("%s must not be empty", name)
		}
	}
	if in.TotalAmount != nil && in.TotalAmount.IsNegative() {
		return apperr.BadRequest("totalAmount must not be negative")
	}
	if in.Items != nil {
		return checkItems(in.Items)
	}
	return nil
}

func lineTotal(it ItemInput) domain.Money {
	if it.TotalPrice != nil {
		return *it.TotalPrice
	}
	return it.UnitPrice.Times(it.Quantity)
}

func sumItems(items []ItemInput) domain.Money {
	return lo.Reduce(items, func(acc domain.Money, it ItemInput, _ int) domain.Money {
		return acc.Add(lineTotal(it))
	}, domain.Money{})
}

func productIDs(items []ItemInput) []uuid.UUID {
	return lo.Map(items, func(it ItemInput, _ int) uuid.UUID { return it.ProductID })
}

func toRows(orderID uuid.UUID, items []ItemInput) []domain.OrderItem {
	return lo.Map(items, func(it ItemInput, _ int) domain.OrderItem {
		return domain.OrderItem{
			OrderID:    orderID,
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: lineTotal(it),
		}
	})
}

// headerUpdates maps the supplied fields to column updates
func (in UpdateOrderInput) headerUpdates() map[string]interface{} {
	updates := make(map[string]interface{})
	if in.OrderDate != nil {
		updates["order_date"] = in.OrderDate.UTC()
	}
	if in.ScheduledDeliveryDate != nil {
		updates["scheduled_delivery_date"] = in.ScheduledDeliveryDate.UTC()
	}
	if in.DateDelivered != nil {
		updates["date_delivered"] = in.DateDelivered.UTC()
	}
	if in.Status != nil {
		updates["status"] = *in.Status
	}
	if in.TotalAmount != nil {
		updates["total_amount"] = *in.TotalAmount
	}
	for col, v := range map[string]*string{
		"delivery_street":  in.DeliveryStreet,
		"delivery_city":    in.DeliveryCity,
		"delivery_state":   in.DeliveryState,
		"delivery_postal":  in.DeliveryPostal,
		"delivery_country": in.DeliveryCountry,
	} {
		if v != nil {
			updates[col] = *v
		}
	}
	return updates
}
