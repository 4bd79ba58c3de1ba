package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// FridgeStatus is the latest persisted pipeline snapshot for one fridge.
// Items, Priority and Analysis are stored as JSONB so the snapshot
// round-trips the pipeline output contract exactly.
type FridgeStatus struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	FridgeID   string         `gorm:"uniqueIndex;not null" json:"fridge_id"`
	Status     string         `gorm:"not null" json:"status"`
	Timestamp  time.Time      `gorm:"not null" json:"timestamp"`
	Temp       float64        `gorm:"not null" json:"temp"`
	Humidity   float64        `gorm:"not null" json:"humidity"`
	Gas        int            `gorm:"not null" json:"gas"`
	Items      datatypes.JSON `gorm:"type:jsonb" json:"items"`
	AIResponse *string        `json:"ai_response"`
	Priority   datatypes.JSON `gorm:"type:jsonb" json:"priority"`
	Analysis   datatypes.JSON `gorm:"type:jsonb" json:"analysis"`
	CreatedAt  time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (FridgeStatus) TableName() string {
	return "fridge_status"
}

// FridgeStatusResponse is the wire shape served to clients.
type FridgeStatusResponse struct {
	Status     string              `json:"status"`
	Timestamp  time.Time           `json:"timestamp"`
	Temp       float64             `json:"temp"`
	Humidity   float64             `json:"humidity"`
	Gas        int                 `json:"gas"`
	Items      []string            `json:"items"`
	AIResponse *string             `json:"ai_response"`
	Priority   []Category          `json:"priority"`
	Analysis   map[Category]string `json:"analysis"`
}

// ToResponse unpacks the JSONB columns. Unreadable columns fall back to
// empty values rather than failing the read.
func (s *FridgeStatus) ToResponse() FridgeStatusResponse {
	out := FridgeStatusResponse{
		Status:     s.Status,
		Timestamp:  s.Timestamp,
		Temp:       s.Temp,
		Humidity:   s.Humidity,
		Gas:        s.Gas,
		Items:      []string{},
		AIResponse: s.AIResponse,
		Priority:   []Category{},
		Analysis:   map[Category]string{},
	}
	if len(s.Items) > 0 {
		_ = json.Unmarshal(s.Items, &out.Items)
	}
	if len(s.Priority) > 0 {
		_ = json.Unmarshal(s.Priority, &out.Priority)
	}
	if len(s.Analysis) > 0 {
		_ = json.Unmarshal(s.Analysis, &out.Analysis)
	}
	return out
}
