package types

import (
	"time"

	"github.com/google/uuid"
)

// FridgeUser owns a manually managed item list, separate from the pipeline's
// observation history.
type FridgeUser struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;not null" json:"username"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (FridgeUser) TableName() string {
	return "fridge_user"
}

// FridgeItem is one row of the per-user item CRUD store. Names are merged
// case-insensitively on add, accumulating quantity.
type FridgeItem struct {
	ID         uuid.UUID   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID     uuid.UUID   `gorm:"type:uuid;not null;index" json:"user_id"`
	User       *FridgeUser `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Name       string      `gorm:"not null" json:"name"`
	Quantity   int         `gorm:"not null;default:1" json:"quantity"`
	DateAdded  time.Time   `gorm:"not null;default:now()" json:"date_added"`
	ExpiryDate *time.Time  `json:"expiry_date,omitempty"`
	CreatedAt  time.Time   `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time   `gorm:"not null;default:now()" json:"updated_at"`
}

func (FridgeItem) TableName() string {
	return "fridge_item"
}
