package coupons

import (
	"github.com/shopspring/decimal"

	"github.com/rmartinelli/shopcart-backend/pkg/db/models"
	"github.com/rmartinelli/shopcart-backend/pkg/enums"
)

var oneHundred = decimal.NewFromInt(100)

// CalculateDiscount computes the discount amount for a coupon against a
// subtotal. It assumes the caller already verified the coupon is active,
// inside its validity window, and above its minimum order value; this
// function only computes the amount.
//
// Percentage coupons take subtotal * value/100, capped at max_discount when
// set. Fixed coupons take the discount value, capped at the subtotal. The
// result is never negative and never exceeds the subtotal.
func CalculateDiscount(subtotal decimal.Decimal, coupon *models.Coupon) decimal.Decimal {
	if coupon == nil || subtotal.Sign() <= 0 {
		return decimal.Zero
	}

	var discount decimal.Decimal
	switch coupon.DiscountType {
	case enums.DiscountTypePercentage:
		discount = subtotal.Mul(coupon.DiscountValue).Div(oneHundred)
		if coupon.MaxDiscount != nil && discount.GreaterThan(*coupon.MaxDiscount) {
			discount = *coupon.MaxDiscount
		}
	case enums.DiscountTypeFixed:
		discount = coupon.DiscountValue
	default:
		return decimal.Zero
	}

	if discount.Sign() < 0 {
		return decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		return subtotal
	}
	return discount.Round(2)
}
