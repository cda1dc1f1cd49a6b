package models

import "time"

// DeliveryTrackingEvent is one append-only entry in a delivery's tracking
// history.
type DeliveryTrackingEvent struct {
	ID         uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	DeliveryID uint      `gorm:"column:delivery_id;not null;index" json:"delivery_id"`
	Status     string    `gorm:"column:status;not null" json:"status"`
	Location   string    `gorm:"column:location;default:'System'" json:"location"`
	Timestamp  time.Time `gorm:"column:timestamp;autoCreateTime" json:"timestamp"`
	Details    *string   `gorm:"column:details;type:text" json:"details,omitempty"`
}
