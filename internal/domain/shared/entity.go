package shared

import "time"

// BaseEntity provides the identity and timestamps shared by persisted rows.
// IDs are database-assigned and stay zero until the first save.
type BaseEntity struct {
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsNew reports whether the entity has not been persisted yet
func (e *BaseEntity) IsNew() bool {
	return e.ID == 0
}
