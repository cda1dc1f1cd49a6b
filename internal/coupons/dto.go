package coupons

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rmartinelli/shopcart-backend/pkg/db/models"
	"github.com/rmartinelli/shopcart-backend/pkg/enums"
)

// CouponDTO is the transport shape for a coupon.
type CouponDTO struct {
	ID            uint             `json:"id"`
	Code          string           `json:"code"`
	Description   string           `json:"description"`
	DiscountType  string           `json:"discount_type"`
	DiscountValue decimal.Decimal  `json:"discount_value"`
	MinOrderValue decimal.Decimal  `json:"min_order_value"`
	MaxDiscount   *decimal.Decimal `json:"max_discount,omitempty"`
	IsActive      bool             `json:"is_active"`
	StartDate     time.Time        `json:"start_date"`
	EndDate       time.Time        `json:"end_date"`
}

// FromModel converts a coupon model into its transport shape.
func FromModel(c *models.Coupon) *CouponDTO {
	if c == nil {
		return nil
	}
	return &CouponDTO{
		ID:            c.ID,
		Code:          c.Code,
		Description:   c.Description,
		DiscountType:  c.DiscountType.String(),
		DiscountValue: c.DiscountValue,
		MinOrderValue: c.MinOrderValue,
		MaxDiscount:   c.MaxDiscount,
		IsActive:      c.IsActive,
		StartDate:     c.StartDate,
		EndDate:       c.EndDate,
	}
}

// CreateCouponInput holds the validated payload to create a coupon.
type CreateCouponInput struct {
	Code          string
	Description   string
	DiscountType  enums.DiscountType
	DiscountValue decimal.Decimal
	MinOrderValue decimal.Decimal
	MaxDiscount   *decimal.Decimal
	IsActive      *bool
	StartDate     time.Time
	EndDate       time.Time
}

// UpdateCouponInput holds optional mutation values for a coupon.
type UpdateCouponInput struct {
	Description      *string
	DiscountType     *enums.DiscountType
	DiscountValue    *decimal.Decimal
	MinOrderValue    *decimal.Decimal
	MaxDiscount      *decimal.Decimal
	ClearMaxDiscount bool
	IsActive         *bool
	StartDate        *time.Time
	EndDate          *time.Time
}

// buildUpdates maps the fixed set of optional fields onto column bindings.
func buildUpdates(input UpdateCouponInput) map[string]any {
	updates := map[string]any{}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.DiscountType != nil {
		updates["discount_type"] = input.DiscountType.String()
	}
	if input.DiscountValue != nil {
		updates["discount_value"] = *input.DiscountValue
	}
	if input.MinOrderValue != nil {
		updates["min_order_value"] = *input.MinOrderValue
	}
	if input.MaxDiscount != nil {
		updates["max_discount"] = *input.MaxDiscount
	} else if input.ClearMaxDiscount {
		updates["max_discount"] = nil
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.StartDate != nil {
		updates["start_date"] = *input.StartDate
	}
	if input.EndDate != nil {
		updates["end_date"] = *input.EndDate
	}
	return updates
}

// ValidationResult reports the outcome of a coupon validation request.
type ValidationResult struct {
	Valid    bool            `json:"valid"`
	Coupon   *CouponDTO      `json:"coupon,omitempty"`
	Discount decimal.Decimal `json:"discount"`
}
