package types

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationAlert  NotificationType = "alert"
	NotificationInfo   NotificationType = "info"
	NotificationExpiry NotificationType = "expiry"
)

// Notification is one record for the notification sink. The store keeps only
// the most recent 50, newest first. Priority 1 is the most urgent.
type Notification struct {
	ID        uuid.UUID        `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Type      NotificationType `gorm:"not null" json:"type"`
	Title     string           `gorm:"not null" json:"title"`
	Message   string           `gorm:"not null" json:"message"`
	CreatedAt time.Time        `gorm:"not null;default:now();index" json:"created_at"`
	Read      bool             `gorm:"not null;default:false" json:"read"`
	Priority  int              `gorm:"not null" json:"priority"`
}

func (Notification) TableName() string {
	return "notification"
}
