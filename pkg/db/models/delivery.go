package models

import (
	"time"

	"github.com/rmartinelli/shopcart-backend/pkg/enums"
)

// Delivery is one shipment of a product within an order, tracked by a
// carrier tracking number and a history of tracking events.
type Delivery struct {
	ID                    uint                    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrderID               uint                    `gorm:"column:order_id;not null;index" json:"order_id"`
	ProductID             uint                    `gorm:"column:product_id;not null" json:"product_id"`
	Carrier               *string                 `gorm:"column:carrier" json:"carrier,omitempty"`
	TrackingNumber        *string                 `gorm:"column:tracking_number;index" json:"tracking_number,omitempty"`
	EstimatedDeliveryDate *time.Time              `gorm:"column:estimated_delivery_date" json:"estimated_delivery_date,omitempty"`
	Status                enums.DeliveryStatus    `gorm:"column:status;type:varchar(32);not null;default:'pending'" json:"status"`
	Quantity              int                     `gorm:"column:quantity;not null" json:"quantity"`
	Notes                 *string                 `gorm:"column:notes;type:text" json:"notes,omitempty"`
	TrackingEvents        []DeliveryTrackingEvent `gorm:"foreignKey:DeliveryID;constraint:OnDelete:CASCADE" json:"tracking_events,omitempty"`
	CreatedAt             time.Time               `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time               `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
