package models

import (
	"time"

	"github.com/storesync/backend/internal/domain/storesync"
)

// OAuthTokenModel is the persistence model for OAuthToken.
type OAuthTokenModel struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	StoreID      int64     `gorm:"not null;uniqueIndex:uq_oauth_tokens_store_id"`
	AccessToken  string    `gorm:"type:text;not null"`
	RefreshToken string    `gorm:"type:text;not null"`
	ExpiresAt    int64     `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`

	Store *StoreModel `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (OAuthTokenModel) TableName() string {
	return "oauth_tokens"
}

// ToDomain converts the persistence model to a domain OAuthToken
func (m *OAuthTokenModel) ToDomain() *storesync.OAuthToken {
	return &storesync.OAuthToken{
		ID:           m.ID,
		StoreID:      m.StoreID,
		AccessToken:  m.AccessToken,
		RefreshToken: m.RefreshToken,
		ExpiresAt:    m.ExpiresAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// FromDomain populates the model from a domain OAuthToken
func (m *OAuthTokenModel) FromDomain(t *storesync.OAuthToken) {
	m.ID = t.ID
	m.StoreID = t.StoreID
	m.AccessToken = t.AccessToken
	m.RefreshToken = t.RefreshToken
	m.ExpiresAt = t.ExpiresAt
	m.UpdatedAt = t.UpdatedAt
}
