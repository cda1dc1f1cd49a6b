package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rmartinelli/shopcart-backend/pkg/enums"
)

// Order captures a placed order along with its customer and shipping
// snapshot. The financial columns are immutable after creation; only the
// status columns are mutated by later operations.
type Order struct {
	ID                   uint                     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrderNumber          string                   `gorm:"column:order_number;uniqueIndex;not null" json:"order_number"`
	CustomerName         string                   `gorm:"column:customer_name;not null" json:"customer_name"`
	CustomerEmail        string                   `gorm:"column:customer_email;not null;index" json:"customer_email"`
	CustomerPhone        *string                  `gorm:"column:customer_phone" json:"customer_phone,omitempty"`
	ShippingAddress      string                   `gorm:"column:shipping_address;not null" json:"shipping_address"`
	ShippingCity         string                   `gorm:"column:shipping_city;not null" json:"shipping_city"`
	ShippingState        string                   `gorm:"column:shipping_state;not null" json:"shipping_state"`
	ShippingCountry      string                   `gorm:"column:shipping_country;not null" json:"shipping_country"`
	ShippingZipCode      string                   `gorm:"column:shipping_zip_code;not null" json:"shipping_zip_code"`
	DeliveryMethod       string                   `gorm:"column:delivery_method;not null" json:"delivery_method"`
	DeliveryInstructions *string                  `gorm:"column:delivery_instructions" json:"delivery_instructions,omitempty"`
	IsGift               bool                     `gorm:"column:is_gift;not null;default:false" json:"is_gift"`
	GiftMessage          *string                  `gorm:"column:gift_message" json:"gift_message,omitempty"`
	Subtotal             decimal.Decimal          `gorm:"column:subtotal;type:decimal(10,2);not null" json:"subtotal"`
	ShippingCost         decimal.Decimal          `gorm:"column:shipping_cost;type:decimal(10,2);not null" json:"shipping_cost"`
	TaxAmount            decimal.Decimal          `gorm:"column:tax_amount;type:decimal(10,2);not null" json:"tax_amount"`
	DiscountAmount       decimal.Decimal          `gorm:"column:discount_amount;type:decimal(10,2);not null;default:0" json:"discount_amount"`
	TotalAmount          decimal.Decimal          `gorm:"column:total_amount;type:decimal(10,2);not null" json:"total_amount"`
	PaymentMethod        string                   `gorm:"column:payment_method;not null" json:"payment_method"`
	PaymentStatus        enums.OrderPaymentStatus `gorm:"column:payment_status;type:varchar(32);not null;default:'pending'" json:"payment_status"`
	OrderStatus          enums.OrderStatus        `gorm:"column:order_status;type:varchar(32);not null;default:'pending'" json:"order_status"`
	CouponID             *uint                    `gorm:"column:coupon_id" json:"coupon_id,omitempty"`
	Items                []OrderItem              `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Payments             []Payment                `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"payments,omitempty"`
	CreatedAt            time.Time                `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}
