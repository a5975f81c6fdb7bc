// Package repository maps domain operations onto gorm queries. Every repository
// returns apperr kinds for missing rows and uniqueness violations so callers
// never have to inspect driver errors.
package repository

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/toyorbit/toyorbit/internal/apperr"
	"gorm.io/gorm"
)

// Store is the persistent store gateway. A Store obtained inside Transaction
// is bound to that transaction, and so are the repositories it hands out.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn atomically. Returning an error from fn rolls back every
// write made through tx.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// IsPostgres reports whether the store runs on postgres, sqlite otherwise
func (s *Store) IsPostgres() bool {
	return strings.EqualFold(s.db.Name(), "postgres")
}

func (s *Store) Customers() CustomerRepository {
	return NewGormCustomerRepository(s.db)
}

func (s *Store) Products() ProductRepository {
	return NewGormProductRepository(s.db)
}

func (s *Store) Orders() OrderRepository {
	return NewGormOrderRepository(s.db)
}

func (s *Store) OrderItems() OrderItemRepository {
	return NewGormOrderItemRepository(s.db)
}

func (s *Store) Users() UserRepository {
	return NewGormUserRepository(s.db)
}

func (s *Store) AuditLogs() AuditLogRepository {
	return NewGormAuditLogRepository(s.db)
}

// Pagination bounds
const (
	DefaultPageSize = 20
	MaxPageSize     = 200
)

// normPage clamps page and pageSize into a sane window and returns the offset
func normPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return (page - 1) * pageSize, pageSize
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// translate classifies a gorm error for the entity named what
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound("%s not found", what)
	case isDuplicate(err):
		return apperr.BadRequest("%s already exists", what)
	}
	return errors.Wrapf(err, "%s query", strings.ToLower(what))
}
