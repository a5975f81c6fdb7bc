package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/toyorbit/toyorbit/internal/apperr"
	"github.com/toyorbit/toyorbit/internal/domain"
	"gorm.io/gorm"
)

// ProductRepository handles database operations for catalog products
type ProductRepository interface {
	// Create inserts a product after checking the name is free
	Create(ctx context.Context, p *domain.Product) error

	// Update merges the given columns into an existing product and returns the result
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*domain.Product, error)

	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)

	// List returns one page of products, optionally filtered by category
	List(ctx context.Context, category string, page, pageSize int) ([]*domain.Product, int64, error)

	// Missing returns the ids among ids that match no product
	Missing(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)

	// Delete removes a product no order item refers to
	Delete(ctx context.Context, id uuid.UUID) error
}

// GormProductRepository is the GORM implementation of ProductRepository
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) nameTaken(ctx context.Context, name string, except uuid.UUID) (bool, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&domain.Product{}).Where("name = ?", name)
	if except != uuid.Nil {
		q = q.Where("id <> ?", except)
	}
	err := q.Count(&n).Error
	return n > 0, err
}

func (r *GormProductRepository) Create(ctx context.Context, p *domain.Product) error {
	taken, err := r.nameTaken(ctx, p.Name, uuid.Nil)
	if err != nil {
		return translate(err, "Product")
	}
	if taken {
		return apperr.BadRequest("Product name already exists")
	}
	return translate(r.db.WithContext(ctx).Create(p).Error, "Product")
}

func (r *GormProductRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*domain.Product, error) {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name, ok := updates["name"].(string); ok && name != p.Name {
		taken, err := r.nameTaken(ctx, name, id)
		if err != nil {
			return nil, translate(err, "Product")
		}
		if taken {
			return nil, apperr.BadRequest("Product name already exists")
		}
	}
	if len(updates) > 0 {
		if err := r.db.WithContext(ctx).Model(p).Updates(updates).Error; err != nil {
			return nil, translate(err, "Product")
		}
	}
	return r.GetByID(ctx, id)
}

func (r *GormProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		return nil, translate(err, "Product")
	}
	return &p, nil
}

func (r *GormProductRepository) List(ctx context.Context, category string, page, pageSize int) ([]*domain.Product, int64, error) {
	var (
		items []*domain.Product
		total int64
	)
	offset, limit := normPage(page, pageSize)
	scope := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&domain.Product{})
		if category != "" {
			q = q.Where("category = ?", category)
		}
		return q
	}
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, translate(err, "Product")
	}
	err := scope().Order("name ASC").Offset(offset).Limit(limit).Find(&items).Error
	return items, total, translate(err, "Product")
}

func (r *GormProductRepository) Missing(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	ids = lo.Uniq(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	var found []uuid.UUID
	err := r.db.WithContext(ctx).Model(&domain.Product{}).Where("id IN ?", ids).Pluck("id", &found).Error
	if err != nil {
		return nil, translate(err, "Product")
	}
	return lo.Without(ids, found...), nil
}

func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	var refs int64
	if err := r.db.WithContext(ctx).Model(&domain.OrderItem{}).Where("product_id = ?", id).Count(&refs).Error; err != nil {
		return translate(err, "Product")
	}
	if refs > 0 {
		return apperr.BadRequest("Product is used by %d order items and cannot be deleted", refs)
	}
	return translate(r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Product{}).Error, "Product")
}
