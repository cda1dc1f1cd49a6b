package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rmartinelli/shopcart-backend/pkg/db/models"
	"github.com/rmartinelli/shopcart-backend/pkg/enums"
)

// OrderItemInput is one submitted cart line. UnitPrice is only ever used for
// cross-validation against the stored product price.
type OrderItemInput struct {
	ProductID  uint            `json:"product_id" validate:"required"`
	Quantity   int             `json:"quantity" validate:"required,gt=0"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Attributes *string         `json:"attributes,omitempty"`
}

// PlaceOrderInput is the full cart submission.
type PlaceOrderInput struct {
	CustomerName         string           `json:"customer_name" validate:"required"`
	CustomerEmail        string           `json:"customer_email" validate:"required,email"`
	CustomerPhone        *string          `json:"customer_phone,omitempty"`
	ShippingAddress      string           `json:"shipping_address" validate:"required"`
	ShippingCity         string           `json:"shipping_city" validate:"required"`
	ShippingState        string           `json:"shipping_state" validate:"required"`
	ShippingCountry      string           `json:"shipping_country" validate:"required"`
	ShippingZipCode      string           `json:"shipping_zip_code" validate:"required"`
	DeliveryMethod       string           `json:"delivery_method" validate:"required"`
	DeliveryInstructions *string          `json:"delivery_instructions,omitempty"`
	IsGift               bool             `json:"is_gift"`
	GiftMessage          *string          `json:"gift_message,omitempty"`
	Subtotal             decimal.Decimal  `json:"subtotal" validate:"required"`
	ShippingCost         decimal.Decimal  `json:"shipping_cost"`
	TaxAmount            decimal.Decimal  `json:"tax_amount"`
	PaymentMethod        string           `json:"payment_method" validate:"required"`
	CouponCode           *string          `json:"coupon_code,omitempty"`
	TransactionID        *string          `json:"transaction_id,omitempty"`
	Items                []OrderItemInput `json:"items" validate:"required,min=1,dive"`
}

// PlaceOrderResult is the successful placement response.
type PlaceOrderResult struct {
	OrderID     uint            `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// ListFilters narrows order listings.
type ListFilters struct {
	Status        *enums.OrderStatus
	CustomerEmail *string
	DateFrom      *time.Time
	DateTo        *time.Time
}

// AddPaymentInput records one payment attempt against an order.
type AddPaymentInput struct {
	Amount        decimal.Decimal     `json:"amount" validate:"required"`
	PaymentMethod string              `json:"payment_method" validate:"required"`
	TransactionID *string             `json:"transaction_id,omitempty"`
	Status        enums.PaymentStatus `json:"status" validate:"required"`
}

// OrderItemDTO is one order line in transport shape.
type OrderItemDTO struct {
	ID          uint            `json:"id"`
	ProductID   uint            `json:"product_id"`
	ProductName *string         `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	Attributes  *string         `json:"attributes,omitempty"`
	Status      string          `json:"status"`
}

// PaymentDTO is one payment row in transport shape.
type PaymentDTO struct {
	ID            uint            `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	TransactionID *string         `json:"transaction_id,omitempty"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

// CouponSummaryDTO embeds the applied coupon's identity in order payloads.
type CouponSummaryDTO struct {
	ID   uint   `json:"id"`
	Code string `json:"code"`
}

// OrderDTO is the transport shape of a placed order.
type OrderDTO struct {
	ID                   uint              `json:"id"`
	OrderNumber          string            `json:"order_number"`
	CustomerName         string            `json:"customer_name"`
	CustomerEmail        string            `json:"customer_email"`
	CustomerPhone        *string           `json:"customer_phone,omitempty"`
	ShippingAddress      string            `json:"shipping_address"`
	ShippingCity         string            `json:"shipping_city"`
	ShippingState        string            `json:"shipping_state"`
	ShippingCountry      string            `json:"shipping_country"`
	ShippingZipCode      string            `json:"shipping_zip_code"`
	DeliveryMethod       string            `json:"delivery_method"`
	DeliveryInstructions *string           `json:"delivery_instructions,omitempty"`
	IsGift               bool              `json:"is_gift"`
	GiftMessage          *string           `json:"gift_message,omitempty"`
	Subtotal             decimal.Decimal   `json:"subtotal"`
	ShippingCost         decimal.Decimal   `json:"shipping_cost"`
	TaxAmount            decimal.Decimal   `json:"tax_amount"`
	DiscountAmount       decimal.Decimal   `json:"discount_amount"`
	TotalAmount          decimal.Decimal   `json:"total_amount"`
	PaymentMethod        string            `json:"payment_method"`
	PaymentStatus        string            `json:"payment_status"`
	OrderStatus          string            `json:"order_status"`
	Coupon               *CouponSummaryDTO `json:"coupon,omitempty"`
	Items                []OrderItemDTO    `json:"items"`
	Payments             []PaymentDTO      `json:"payments"`
	CreatedAt            time.Time         `json:"created_at"`
}

// FromModel converts an order model into its transport shape. The coupon
// summary is attached by the caller when a coupon reference exists.
func FromModel(o *models.Order, coupon *CouponSummaryDTO) *OrderDTO {
	if o == nil {
		return nil
	}
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
			Attributes:  item.Attributes,
			Status:      item.Status.String(),
		})
	}
	payments := make([]PaymentDTO, 0, len(o.Payments))
	for _, payment := range o.Payments {
		payments = append(payments, PaymentDTO{
			ID:            payment.ID,
			Amount:        payment.Amount,
			PaymentMethod: payment.PaymentMethod,
			TransactionID: payment.TransactionID,
			Status:        payment.Status.String(),
			CreatedAt:     payment.CreatedAt,
		})
	}
	return &OrderDTO{
		ID:                   o.ID,
		OrderNumber:          o.OrderNumber,
		CustomerName:         o.CustomerName,
		CustomerEmail:        o.CustomerEmail,
		CustomerPhone:        o.CustomerPhone,
		ShippingAddress:      o.ShippingAddress,
		ShippingCity:         o.ShippingCity,
		ShippingState:        o.ShippingState,
		ShippingCountry:      o.ShippingCountry,
		ShippingZipCode:      o.ShippingZipCode,
		DeliveryMethod:       o.DeliveryMethod,
		DeliveryInstructions: o.DeliveryInstructions,
		IsGift:               o.IsGift,
		GiftMessage:          o.GiftMessage,
		Subtotal:             o.Subtotal,
		ShippingCost:         o.ShippingCost,
		TaxAmount:            o.TaxAmount,
		DiscountAmount:       o.DiscountAmount,
		TotalAmount:          o.TotalAmount,
		PaymentMethod:        o.PaymentMethod,
		PaymentStatus:        o.PaymentStatus.String(),
		OrderStatus:          o.OrderStatus.String(),
		Coupon:               coupon,
		Items:                items,
		Payments:             payments,
		CreatedAt:            o.CreatedAt,
	}
}
