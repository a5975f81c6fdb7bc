package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order statuses
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func IsOrderStatus(s string) bool {
	for _, st := range OrderStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// DefaultDeliveryLeadTime is added to the creation time when no scheduled delivery date is given
const DefaultDeliveryLeadTime = 14 * 24 * time.Hour

// Order is an order header. The delivery address is copied from the request at
// creation time and never follows later customer address changes.
type Order struct {
	ID                    uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID            uuid.UUID   `gorm:"type:uuid;not null;index" json:"customerId"`
	Customer              *Customer   `gorm:"foreignKey:CustomerID;constraint:OnDelete:RESTRICT" json:"-"`
	OrderDate             time.Time   `gorm:"not null;index" json:"orderDate"`
	ScheduledDeliveryDate time.Time   `gorm:"not null" json:"scheduledDeliveryDate"`
	DateDelivered         *time.Time  `json:"dateDelivered"`
	Status                string      `gorm:"size:20;not null;index" json:"status"`
	TotalAmount           Money       `gorm:"type:numeric(12,2);not null" json:"totalAmount"`
	DeliveryStreet        string      `gorm:"size:200;default:''" json:"deliveryStreet"`
	DeliveryCity          string      `gorm:"size:100;default:''" json:"deliveryCity"`
	DeliveryState         string      `gorm:"size:100;default:''" json:"deliveryState"`
	DeliveryPostal        string      `gorm:"size:20;default:''" json:"deliveryPostal"`
	DeliveryCountry       string      `gorm:"size:100;default:'';index" json:"deliveryCountry"`
	Items                 []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt             time.Time   `json:"createdAt"`
	UpdatedAt             time.Time   `json:"updatedAt"`
}

func (Order) TableName() string {
	return "orders"
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	o.OrderDate = o.OrderDate.UTC()
	o.ScheduledDeliveryDate = o.ScheduledDeliveryDate.UTC()
	if o.DateDelivered != nil {
		t := o.DateDelivered.UTC()
		o.DateDelivered = &t
	}
	return nil
}

// OrderItem is one product line of an order. TotalPrice is quantity times
// unit price, kept as its own column.
type OrderItem struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID    uuid.UUID `gorm:"type:uuid;not null;index" json:"orderId"`
	ProductID  uuid.UUID `gorm:"type:uuid;not null;index" json:"productId"`
	Product    *Product  `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"-"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	UnitPrice  Money     `gorm:"type:numeric(10,2);not null" json:"unitPrice"`
	TotalPrice Money     `gorm:"type:numeric(12,2);not null" json:"totalPrice"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// OrderItemDetail is an order item joined with its product
type OrderItemDetail struct {
	OrderItem
	ProductName string `json:"productName"`
	Category    string `json:"category"`
}
