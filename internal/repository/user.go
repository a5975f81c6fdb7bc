package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/toyorbit/toyorbit/internal/apperr"
	"github.com/toyorbit/toyorbit/internal/domain"
	"gorm.io/gorm"
)

// UserRepository handles database operations for back office users
type UserRepository interface {
	// Create inserts a user after checking username and email are free
	Create(ctx context.Context, u *domain.User) error

	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	List(ctx context.Context, page, pageSize int) ([]*domain.User, int64, error)

	// Update merges the given columns into an existing user and returns the result
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*domain.User, error)

	Delete(ctx context.Context, id uuid.UUID) error

	Count(ctx context.Context) (int64, error)

	// TouchLogin stamps the last successful login
	TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// GormUserRepository is the GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) taken(ctx context.Context, column, value string, except uuid.UUID) (bool, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&domain.User{}).Where(column+" = ?", value)
	if except != uuid.Nil {
		q = q.Where("id <> ?", except)
	}
	err := q.Count(&n).Error
	return n > 0, err
}

func (r *GormUserRepository) checkFree(ctx context.Context, username, email string, except uuid.UUID) error {
	if username != "" {
		taken, err := r.taken(ctx, "username", username, except)
		if err != nil {
			return translate(err, "User")
		}
		if taken {
			return apperr.BadRequest("Username already exists")
		}
	}
	if email != "" {
		taken, err := r.taken(ctx, "email", email, except)
		if err != nil {
			return translate(err, "User")
		}
		if taken {
			return apperr.BadRequest("Email already in use")
		}
	}
	return nil
}

func (r *GormUserRepository) Create(ctx context.Context, u *domain.User) error {
	if err := r.checkFree(ctx, u.Username, u.Email, uuid.Nil); err != nil {
		return err
	}
	return translate(r.db.WithContext(ctx).Create(u).Error, "User")
}

func (r *GormUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, translate(err, "User")
	}
	return &u, nil
}

func (r *GormUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, translate(err, "User")
	}
	return &u, nil
}

func (r *GormUserRepository) List(ctx context.Context, page, pageSize int) ([]*domain.User, int64, error) {
	var (
		items []*domain.User
		total int64
	)
	offset, limit := normPage(page, pageSize)
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "User")
	}
	err := r.db.WithContext(ctx).Order("username ASC").Offset(offset).Limit(limit).Find(&items).Error
	return items, total, translate(err, "User")
}

func (r *GormUserRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*domain.User, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	username, _ := updates["username"].(string)
	email, _ := updates["email"].(string)
	if err := r.checkFree(ctx, username, email, id); err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		err := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(updates).Error
		if err != nil {
			return nil, translate(err, "User")
		}
	}
	return r.GetByID(ctx, id)
}

func (r *GormUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.User{})
	if res.Error != nil {
		return translate(res.Error, "User")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("User not found")
	}
	return nil
}

func (r *GormUserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Count(&n).Error
	return n, translate(err, "User")
}

func (r *GormUserRepository) TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Update("last_login", at.UTC()).Error
	return translate(err, "User")
}
