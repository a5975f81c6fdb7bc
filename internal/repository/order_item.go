package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/toyorbit/toyorbit/internal/apperr"
	"github.com/toyorbit/toyorbit/internal/domain"
	"gorm.io/gorm"
)

// OrderItemRepository handles database operations for order line items
type OrderItemRepository interface {
	// CreateBatch inserts all items in one statement
	CreateBatch(ctx context.Context, items []domain.OrderItem) error

	Create(ctx context.Context, item *domain.OrderItem) error

	// GetForOrder fetches an item only if it belongs to the order
	GetForOrder(ctx context.Context, id, orderID uuid.UUID) (*domain.OrderItem, error)

	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error)

	// ListDetails returns the items of the given orders joined with their product
	ListDetails(ctx context.Context, orderIDs ...uuid.UUID) ([]domain.OrderItemDetail, error)

	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error

	// Delete removes the item of the order, NotFound when nothing matched
	Delete(ctx context.Context, id, orderID uuid.UUID) error

	// DeleteByOrder removes every item of the order and returns how many went
	DeleteByOrder(ctx context.Context, orderID uuid.UUID) (int64, error)

	// DeleteOrphans removes items whose order no longer exists
	DeleteOrphans(ctx context.Context) (int64, error)
}

// GormOrderItemRepository is the GORM implementation of OrderItemRepository
type GormOrderItemRepository struct {
	db *gorm.DB
}

func NewGormOrderItemRepository(db *gorm.DB) *GormOrderItemRepository {
	return &GormOrderItemRepository{db: db}
}

func (r *GormOrderItemRepository) CreateBatch(ctx context.Context, items []domain.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).Omit("Product").Create(&items).Error, "Order item")
}

func (r *GormOrderItemRepository) Create(ctx context.Context, item *domain.OrderItem) error {
	return translate(r.db.WithContext(ctx).Omit("Product").Create(item).Error, "Order item")
}

func (r *GormOrderItemRepository) GetForOrder(ctx context.Context, id, orderID uuid.UUID) (*domain.OrderItem, error) {
	var item domain.OrderItem
	err := r.db.WithContext(ctx).
		Where("id = ? AND order_id = ?", id, orderID).
		First(&item).Error
	if err != nil {
		return nil, translate(err, "Order item")
	}
	return &item, nil
}

func (r *GormOrderItemRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	var items []domain.OrderItem
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Find(&items).Error
	return items, translate(err, "Order item")
}

func (r *GormOrderItemRepository) ListDetails(ctx context.Context, orderIDs ...uuid.UUID) ([]domain.OrderItemDetail, error) {
	rows := make([]domain.OrderItemDetail, 0)
	if len(orderIDs) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).
		Table("order_items").
		Select("order_items.*, products.name AS product_name, products.category AS category").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("order_items.order_id IN ?", orderIDs).
		Order("products.name ASC").
		Scan(&rows).Error
	return rows, translate(err, "Order item")
}

func (r *GormOrderItemRepository) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&domain.OrderItem{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return translate(res.Error, "Order item")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Order item not found")
	}
	return nil
}

func (r *GormOrderItemRepository) Delete(ctx context.Context, id, orderID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND order_id = ?", id, orderID).
		Delete(&domain.OrderItem{})
	if res.Error != nil {
		return translate(res.Error, "Order item")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Order item not found")
	}
	return nil
}

func (r *GormOrderItemRepository) DeleteByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("order_id = ?", orderID).Delete(&domain.OrderItem{})
	return res.RowsAffected, translate(res.Error, "Order item")
}

func (r *GormOrderItemRepository) DeleteOrphans(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("order_id NOT IN (?)", r.db.Model(&domain.Order{}).Select("id")).
		Delete(&domain.OrderItem{})
	return res.RowsAffected, translate(res.Error, "Order item")
}
