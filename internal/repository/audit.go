package repository

import (
	"context"
	"time"

	"github.com/toyorbit/toyorbit/internal/domain"
	"gorm.io/gorm"
)

// AuditLogRepository handles database operations for the audit trail
type AuditLogRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error

	// List returns one page of entries, newest first, optionally filtered by actor
	List(ctx context.Context, actor string, page, pageSize int) ([]*domain.AuditLog, int64, error)

	// DeleteOlderThan removes entries older than the given number of days
	DeleteOlderThan(ctx context.Context, days int) (int64, error)
}

// GormAuditLogRepository is the GORM implementation of AuditLogRepository
type GormAuditLogRepository struct {
	db *gorm.DB
}

func NewGormAuditLogRepository(db *gorm.DB) *GormAuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

func (r *GormAuditLogRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	return translate(r.db.WithContext(ctx).Create(log).Error, "Audit log")
}

func (r *GormAuditLogRepository) List(ctx context.Context, actor string, page, pageSize int) ([]*domain.AuditLog, int64, error) {
	var (
		items []*domain.AuditLog
		total int64
	)
	offset, limit := normPage(page, pageSize)
	scope := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&domain.AuditLog{})
		if actor != "" {
			q = q.Where("actor = ?", actor)
		}
		return q
	}
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, translate(err, "Audit log")
	}
	err := scope().Order("created_at DESC").Offset(offset).Limit(limit).Find(&items).Error
	return items, total, translate(err, "Audit log")
}

func (r *GormAuditLogRepository) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	res := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&domain.AuditLog{})
	return res.RowsAffected, translate(res.Error, "Audit log")
}
