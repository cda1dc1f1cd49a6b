package coupons

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rmartinelli/shopcart-backend/pkg/db/models"
	"github.com/rmartinelli/shopcart-backend/pkg/enums"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func decPtr(value string) *decimal.Decimal {
	d := dec(value)
	return &d
}

func TestCalculateDiscount(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		subtotal string
		coupon   models.Coupon
		want     string
	}{
		{
			name:     "percentage ten percent",
			subtotal: "100.00",
			coupon: models.Coupon{
				DiscountType:  enums.DiscountTypePercentage,
				DiscountValue: dec("10"),
			},
			want: "10.00",
		},
		{
			name:     "percentage capped at max discount",
			subtotal: "500.00",
			coupon: models.Coupon{
				DiscountType:  enums.DiscountTypePercentage,
				DiscountValue: dec("20"),
				MaxDiscount:   decPtr("25.00"),
			},
			want: "25.00",
		},
		{
			name:     "fixed amount",
			subtotal: "100.00",
			coupon: models.Coupon{
				DiscountType:  enums.DiscountTypeFixed,
				DiscountValue: dec("15.00"),
			},
			want: "15.00",
		},
		{
			name:     "fixed capped at subtotal",
			subtotal: "30.00",
			coupon: models.Coupon{
				DiscountType:  enums.DiscountTypeFixed,
				DiscountValue: dec("50.00"),
			},
			want: "30.00",
		},
		{
			name:     "percentage rounds to cents",
			subtotal: "33.33",
			coupon: models.Coupon{
				DiscountType:  enums.DiscountTypePercentage,
				DiscountValue: dec("10"),
			},
			want: "3.33",
		},
		{
			name:     "unknown type yields zero",
			subtotal: "100.00",
			coupon: models.Coupon{
				DiscountType:  enums.DiscountType("bogus"),
				DiscountValue: dec("10"),
			},
			want: "0",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := CalculateDiscount(dec(tc.subtotal), &tc.coupon)
			if !got.Equal(dec(tc.want)) {
				t.Fatalf("CalculateDiscount = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestCalculateDiscountNilAndNonPositiveSubtotal(t *testing.T) {
	t.Parallel()

	if got := CalculateDiscount(dec("100.00"), nil); !got.IsZero() {
		t.Fatalf("expected zero for nil coupon, got %s", got)
	}

	coupon := models.Coupon{DiscountType: enums.DiscountTypePercentage, DiscountValue: dec("10")}
	if got := CalculateDiscount(decimal.Zero, &coupon); !got.IsZero() {
		t.Fatalf("expected zero for zero subtotal, got %s", got)
	}
	if got := CalculateDiscount(dec("-5.00"), &coupon); !got.IsZero() {
		t.Fatalf("expected zero for negative subtotal, got %s", got)
	}
}
