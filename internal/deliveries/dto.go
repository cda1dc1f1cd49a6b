package deliveries

import (
	"time"

	"github.com/rmartinelli/shopcart-backend/pkg/db/models"
	"github.com/rmartinelli/shopcart-backend/pkg/enums"
)

// CreateDeliveryInput is the payload for opening a shipment against an order.
type CreateDeliveryInput struct {
	ProductID             uint       `json:"product_id" validate:"required"`
	Carrier               string     `json:"carrier" validate:"required"`
	TrackingNumber        string     `json:"tracking_number" validate:"required"`
	Quantity              int        `json:"quantity" validate:"required,gt=0"`
	EstimatedDeliveryDate *time.Time `json:"estimated_delivery_date,omitempty"`
	Status                *string    `json:"status,omitempty"`
	Notes                 *string    `json:"notes,omitempty"`
	Location              *string    `json:"location,omitempty"`
	UpdateOrderStatus     bool       `json:"update_order_status"`
}

// AddTrackingEventInput appends one entry to a delivery's history.
type AddTrackingEventInput struct {
	Status    string     `json:"status" validate:"required"`
	Location  string     `json:"location" validate:"required"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Details   *string    `json:"details,omitempty"`
}

// ProductRefDTO is the slim product projection embedded in delivery views.
type ProductRefDTO struct {
	ID   uint    `json:"id"`
	Name string  `json:"name"`
	SKU  *string `json:"sku,omitempty"`
}

type TrackingEventDTO struct {
	ID        uint      `json:"id"`
	Status    string    `json:"status"`
	Location  string    `json:"location"`
	Timestamp time.Time `json:"timestamp"`
	Details   *string   `json:"details,omitempty"`
}

// DeliveryDTO is the staff-facing delivery view with order and product
// context joined in.
type DeliveryDTO struct {
	ID                    uint               `json:"id"`
	OrderID               uint               `json:"order_id"`
	OrderNumber           string             `json:"order_number"`
	CustomerName          string             `json:"customer_name"`
	CustomerEmail         string             `json:"customer_email"`
	Product               *ProductRefDTO     `json:"product,omitempty"`
	Carrier               *string            `json:"carrier,omitempty"`
	TrackingNumber        *string            `json:"tracking_number,omitempty"`
	EstimatedDeliveryDate *time.Time         `json:"estimated_delivery_date,omitempty"`
	Status                string             `json:"status"`
	Quantity              int                `json:"quantity"`
	Notes                 *string            `json:"notes,omitempty"`
	TrackingEvents        []TrackingEventDTO `json:"tracking_events"`
	CreatedAt             time.Time          `json:"created_at"`
	UpdatedAt             time.Time          `json:"updated_at"`
}

// TrackingDTO is the customer-facing view served by the public tracking
// endpoint.
type TrackingDTO struct {
	TrackingNumber        *string            `json:"tracking_number,omitempty"`
	Carrier               *string            `json:"carrier,omitempty"`
	Status                string             `json:"status"`
	EstimatedDeliveryDate *time.Time         `json:"estimated_delivery_date,omitempty"`
	OrderNumber           string             `json:"order_number"`
	CustomerName          string             `json:"customer_name"`
	Quantity              int                `json:"quantity"`
	Product               *ProductRefDTO     `json:"product,omitempty"`
	CreatedAt             time.Time          `json:"created_at"`
	UpdatedAt             time.Time          `json:"updated_at"`
	TrackingHistory       []TrackingEventDTO `json:"tracking_history"`
}

func eventsFromModels(events []models.DeliveryTrackingEvent) []TrackingEventDTO {
	dtos := make([]TrackingEventDTO, 0, len(events))
	for _, event := range events {
		dtos = append(dtos, TrackingEventDTO{
			ID:        event.ID,
			Status:    event.Status,
			Location:  event.Location,
			Timestamp: event.Timestamp,
			Details:   event.Details,
		})
	}
	return dtos
}

// FromModel builds the staff view from a delivery and its joined context.
func FromModel(d *models.Delivery, order *models.Order, product *models.Product) *DeliveryDTO {
	dto := &DeliveryDTO{
		ID:                    d.ID,
		OrderID:               d.OrderID,
		Carrier:               d.Carrier,
		TrackingNumber:        d.TrackingNumber,
		EstimatedDeliveryDate: d.EstimatedDeliveryDate,
		Status:                d.Status.String(),
		Quantity:              d.Quantity,
		Notes:                 d.Notes,
		TrackingEvents:        eventsFromModels(d.TrackingEvents),
		CreatedAt:             d.CreatedAt,
		UpdatedAt:             d.UpdatedAt,
	}
	if order != nil {
		dto.OrderNumber = order.OrderNumber
		dto.CustomerName = order.CustomerName
		dto.CustomerEmail = order.CustomerEmail
	}
	if product != nil {
		dto.Product = &ProductRefDTO{ID: product.ID, Name: product.Name, SKU: product.SKU}
	}
	return dto
}

// TrackingFromModel builds the customer view from a delivery and its joined
// context.
func TrackingFromModel(d *models.Delivery, order *models.Order, product *models.Product) *TrackingDTO {
	dto := &TrackingDTO{
		TrackingNumber:        d.TrackingNumber,
		Carrier:               d.Carrier,
		Status:                d.Status.String(),
		EstimatedDeliveryDate: d.EstimatedDeliveryDate,
		Quantity:              d.Quantity,
		CreatedAt:             d.CreatedAt,
		UpdatedAt:             d.UpdatedAt,
		TrackingHistory:       eventsFromModels(d.TrackingEvents),
	}
	if order != nil {
		dto.OrderNumber = order.OrderNumber
		dto.CustomerName = order.CustomerName
	}
	if product != nil {
		dto.Product = &ProductRefDTO{ID: product.ID, Name: product.Name, SKU: product.SKU}
	}
	return dto
}

// statusForOrder maps a terminal delivery status onto the order status it
// propagates.
func statusForOrder(status enums.DeliveryStatus) (enums.OrderStatus, bool) {
	switch status {
	case enums.DeliveryStatusDelivered:
		return enums.OrderStatusDelivered, true
	case enums.DeliveryStatusCancelled:
		return enums.OrderStatusCancelled, true
	default:
		return "", false
	}
}
