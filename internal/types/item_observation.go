package types

import (
	"time"

	"github.com/google/uuid"
)

// ItemObservation tracks the lifecycle of one item in one fridge. Records are
// append-only history: an item absent for more than the grace period gets
// RemovedDate set exactly once and is never deleted.
type ItemObservation struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	FridgeID string    `gorm:"uniqueIndex:idx_item_observation_fridge_name;not null" json:"fridge_id"`
	// Name is the lowercased matching key; DisplayName keeps what the
	// detector reported.
	Name                string     `gorm:"uniqueIndex:idx_item_observation_fridge_name;not null" json:"name"`
	DisplayName         string     `gorm:"not null" json:"display_name"`
	FirstSeen           time.Time  `gorm:"not null" json:"first_seen"`
	LastSeen            time.Time  `gorm:"not null" json:"last_seen"`
	EstimatedExpiryDays int        `gorm:"not null" json:"estimated_expiry_days"`
	EstimatedExpiryDate time.Time  `gorm:"not null" json:"estimated_expiry_date"`
	RemovedDate         *time.Time `json:"removed_date,omitempty"`
	CreatedAt           time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt           time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (ItemObservation) TableName() string {
	return "item_observation"
}

// ExpiringItem is an ItemObservation projected onto its remaining shelf life.
type ExpiringItem struct {
	Item          string    `json:"item"`
	DaysRemaining int       `json:"days_remaining"`
	ExpiryDate    time.Time `json:"expiry_date"`
}
