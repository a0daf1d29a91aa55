package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/domain/storesync"
	"github.com/storesync/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAuditRepository implements storesync.AuditRepository using GORM
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Create inserts the audit header and sets its ID
func (r *GormAuditRepository) Create(ctx context.Context, audit *storesync.WebhookAudit) error {
	var model models.WebhookAuditModel
	model.FromDomain(audit)

	if err := r.db.WithContext(ctx).Omit("Items").Create(&model).Error; err != nil {
		return err
	}
	audit.ID = model.ID
	return nil
}

// AddItem inserts one applied adjustment under an existing audit record
func (r *GormAuditRepository) AddItem(ctx context.Context, item *storesync.WebhookAuditItem) error {
	if item.WebhookAuditID == 0 {
		return fmt.Errorf("%w: audit item without audit record", shared.ErrInvalidInput)
	}
	var model models.WebhookAuditItemModel
	model.FromDomain(item)

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}
	item.ID = model.ID
	return nil
}

// FindByID loads an audit record with its items
func (r *GormAuditRepository) FindByID(ctx context.Context, id int64) (*storesync.WebhookAudit, error) {
	var model models.WebhookAuditModel
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: webhook audit %d", shared.ErrNotFound, id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

var _ storesync.AuditRepository = (*GormAuditRepository)(nil)
