package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/toyorbit/toyorbit/internal/apperr"
	"github.com/toyorbit/toyorbit/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository handles database operations for order headers
type OrderRepository interface {
	// Create inserts the header only; items are written separately
	Create(ctx context.Context, o *domain.Order) error

	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)

	// GetForCustomer fetches an order only if it belongs to the customer
	GetForCustomer(ctx context.Context, id, customerID uuid.UUID) (*domain.Order, error)

	// ListForCustomer returns one page of a customer's orders, newest first
	ListForCustomer(ctx context.Context, customerID uuid.UUID, page, pageSize int) ([]*domain.Order, int64, error)

	// ListAll returns one page of all orders, newest first, optionally filtered by status
	ListAll(ctx context.Context, status string, page, pageSize int) ([]*domain.Order, int64, error)

	// AllForCustomer returns every order of a customer, oldest first
	AllForCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.Order, error)

	// UpdateFields merges the given columns into the order
	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error

	// Delete removes the order of the customer, NotFound when nothing matched
	Delete(ctx context.Context, id, customerID uuid.UUID) error
}

// GormOrderRepository is the GORM implementation of OrderRepository
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) Create(ctx context.Context, o *domain.Order) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(o).Error, "Order")
}

func (r *GormOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&o).Error; err != nil {
		return nil, translate(err, "Order")
	}
	return &o, nil
}

func (r *GormOrderRepository) GetForCustomer(ctx context.Context, id, customerID uuid.UUID) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).
		Where("id = ? AND customer_id = ?", id, customerID).
		First(&o).Error
	if err != nil {
		return nil, translate(err, "Order")
	}
	return &o, nil
}

func (r *GormOrderRepository) page(ctx context.Context, scope func() *gorm.DB, page, pageSize int) ([]*domain.Order, int64, error) {
	var (
		items []*domain.Order
		total int64
	)
	offset, limit := normPage(page, pageSize)
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, translate(err, "Order")
	}
	err := scope().
		Order("order_date DESC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error
	return items, total, translate(err, "Order")
}

func (r *GormOrderRepository) ListForCustomer(ctx context.Context, customerID uuid.UUID, page, pageSize int) ([]*domain.Order, int64, error) {
	return r.page(ctx, func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&domain.Order{}).Where("customer_id = ?", customerID)
	}, page, pageSize)
}

func (r *GormOrderRepository) ListAll(ctx context.Context, status string, page, pageSize int) ([]*domain.Order, int64, error) {
	return r.page(ctx, func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&domain.Order{})
		if status != "" {
			q = q.Where("status = ?", status)
		}
		return q
	}, page, pageSize)
}

func (r *GormOrderRepository) AllForCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.Order, error) {
	var items []*domain.Order
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("order_date ASC").
		Find(&items).Error
	return items, translate(err, "Order")
}

func (r *GormOrderRepository) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&domain.Order{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return translate(res.Error, "Order")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Order not found")
	}
	return nil
}

func (r *GormOrderRepository) Delete(ctx context.Context, id, customerID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND customer_id = ?", id, customerID).
		Delete(&domain.Order{})
	if res.Error != nil {
		return translate(res.Error, "Order")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Order not found")
	}
	return nil
}
