package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/toyorbit/toyorbit/internal/apperr"
	"github.com/toyorbit/toyorbit/internal/domain"
	"gorm.io/gorm"
)

// CustomerRepository handles database operations for customers
type CustomerRepository interface {
	// Create inserts a customer after checking the email is free
	Create(ctx context.Context, c *domain.Customer) error

	// Update merges the given columns into an existing customer and returns the result
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*domain.Customer, error)

	GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)

	// List returns one page of customers ordered by name, and the total count
	List(ctx context.Context, page, pageSize int) ([]*domain.Customer, int64, error)

	Count(ctx context.Context) (int64, error)

	// Delete removes a customer that has no orders
	Delete(ctx context.Context, id uuid.UUID) error
}

// GormCustomerRepository is the GORM implementation of CustomerRepository
type GormCustomerRepository struct {
	db *gorm.DB
}

func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

func (r *GormCustomerRepository) emailTaken(ctx context.Context, email string, except uuid.UUID) (bool, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&domain.Customer{}).Where("email = ?", email)
	if except != uuid.Nil {
		q = q.Where("id <> ?", except)
	}
	err := q.Count(&n).Error
	return n > 0, err
}

func (r *GormCustomerRepository) Create(ctx context.Context, c *domain.Customer) error {
	taken, err := r.emailTaken(ctx, c.Email, uuid.Nil)
	if err != nil {
		return translate(err, "Customer")
	}
	if taken {
		return apperr.BadRequest("Email already in use")
	}
	return translate(r.db.WithContext(ctx).Create(c).Error, "Customer")
}

func (r *GormCustomerRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*domain.Customer, error) {
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if email, ok := updates["email"].(string); ok && email != c.Email {
		taken, err := r.emailTaken(ctx, email, id)
		if err != nil {
			return nil, translate(err, "Customer")
		}
		if taken {
			return nil, apperr.BadRequest("Email already in use")
		}
	}
	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).Model(c).Updates(updates).Error; err != nil {
			return nil, translate(err, "Customer")
		}
	}
	return r.GetByID(ctx, id)
}

func (r *GormCustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	var c domain.Customer
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		return nil, translate(err, "Customer")
	}
	return &c, nil
}

func (r *GormCustomerRepository) List(ctx context.Context, page, pageSize int) ([]*domain.Customer, int64, error) {
	var (
		items []*domain.Customer
		total int64
	)
	offset, limit := normPage(page, pageSize)
	if err := r.db.WithContext(ctx).Model(&domain.Customer{}).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "Customer")
	}
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error
	return items, total, translate(err, "Customer")
}

func (r *GormCustomerRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Customer{}).Count(&n).Error
	return n, translate(err, "Customer")
}

func (r *GormCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	var orders int64
	if err := r.db.WithContext(ctx).Model(&domain.Order{}).Where("customer_id = ?", id).Count(&orders).Error; err != nil {
		return translate(err, "Customer")
	}
	if orders > 0 {
		return apperr.BadRequest("Customer has %d orders and cannot be deleted", orders)
	}
	return translate(r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Customer{}).Error, "Customer")
}
