package models

import (
	"github.com/shopspring/decimal"

	"github.com/rmartinelli/shopcart-backend/pkg/enums"
)

// OrderItem is one line of a placed order. UnitPrice is always the
// server-verified product price at order time, not the submitted one.
type OrderItem struct {
	ID          uint                  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrderID     uint                  `gorm:"column:order_id;not null;index" json:"order_id"`
	ProductID   uint                  `gorm:"column:product_id;not null" json:"product_id"`
	ProductName *string               `gorm:"column:product_name" json:"product_name,omitempty"`
	Quantity    int                   `gorm:"column:quantity;not null" json:"quantity"`
	UnitPrice   decimal.Decimal       `gorm:"column:unit_price;type:decimal(10,2);not null" json:"unit_price"`
	TotalPrice  decimal.Decimal       `gorm:"column:total_price;type:decimal(10,2);not null" json:"total_price"`
	Attributes  *string               `gorm:"column:attributes;type:text" json:"attributes,omitempty"`
	Status      enums.OrderItemStatus `gorm:"column:status;type:varchar(32);not null;default:'pending'" json:"status"`
}
