package entities

import "time"

type ActionType string

const (
	ActionCreate ActionType = "create"
	ActionUpdate ActionType = "update"
	ActionDelete ActionType = "delete"
)

const EntityDevice = "Device"

// ActionLog - запись журнала действий. Только добавление.
type ActionLog struct {
	ID         int64          `json:"id"`
	Timestamp  time.Time      `json:"timestamp"`
	UserID     *int64         `json:"user_id,omitempty"`
	ActionType ActionType     `json:"action_type"`
	EntityType string         `json:"entity_type"`
	EntityID   int64          `json:"entity_id"`
	Details    map[string]any `json:"details"`

	UserEmail *string `json:"user_email,omitempty" db:"-"`
}
