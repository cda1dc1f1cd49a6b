package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rmartinelli/shopcart-backend/pkg/enums"
)

// Coupon is a discount voucher with an activation flag and validity window.
// MaxDiscount only applies to percentage coupons; fixed coupons are capped by
// the order subtotal instead.
type Coupon struct {
	ID            uint               `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Code          string             `gorm:"column:code;uniqueIndex;not null" json:"code"`
	Description   string             `gorm:"column:description" json:"description"`
	DiscountType  enums.DiscountType `gorm:"column:discount_type;type:varchar(16);not null" json:"discount_type"`
	DiscountValue decimal.Decimal    `gorm:"column:discount_value;type:decimal(10,2);not null" json:"discount_value"`
	MinOrderValue decimal.Decimal    `gorm:"column:min_order_value;type:decimal(10,2);not null;default:0" json:"min_order_value"`
	MaxDiscount   *decimal.Decimal   `gorm:"column:max_discount;type:decimal(10,2)" json:"max_discount"`
	IsActive      bool               `gorm:"column:is_active;not null" json:"is_active"`
	StartDate     time.Time          `gorm:"column:start_date;not null" json:"start_date"`
	EndDate       time.Time          `gorm:"column:end_date;not null" json:"end_date"`
}
