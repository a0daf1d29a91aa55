package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/storesync/backend/internal/domain/storesync"
	"github.com/storesync/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTokenRepository implements storesync.TokenRepository using GORM
type GormTokenRepository struct {
	db *gorm.DB
}

// NewGormTokenRepository creates a new GormTokenRepository
func NewGormTokenRepository(db *gorm.DB) *GormTokenRepository {
	return &GormTokenRepository{db: db}
}

// FindByStoreID returns the cached token of a store
func (r *GormTokenRepository) FindByStoreID(ctx context.Context, storeID int64) (*storesync.OAuthToken, error) {
	var model models.OAuthTokenModel
	if err := r.db.WithContext(ctx).Where("store_id = ?", storeID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storesync.ErrTokenNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Upsert inserts the token or overwrites the row that already exists for
// the same store.
func (r *GormTokenRepository) Upsert(ctx context.Context, token *storesync.OAuthToken) error {
	if token.UpdatedAt.IsZero() {
		token.UpdatedAt = time.Now()
	}
	var model models.OAuthTokenModel
	model.FromDomain(token)

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "store_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"access_token", "refresh_token", "expires_at", "updated_at"}),
	}).Create(&model).Error
	if err != nil {
		return err
	}

	if model.ID != 0 {
		token.ID = model.ID
	}
	return nil
}

var _ storesync.TokenRepository = (*GormTokenRepository)(nil)
