package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/rmartinelli/shopcart-backend/api/responses"
	"github.com/rmartinelli/shopcart-backend/api/validators"
	couponsvc "github.com/rmartinelli/shopcart-backend/internal/coupons"
	"github.com/rmartinelli/shopcart-backend/pkg/enums"
	pkgerrors "github.com/rmartinelli/shopcart-backend/pkg/errors"
	"github.com/rmartinelli/shopcart-backend/pkg/logger"
)

type createCouponRequest struct {
	Code          string           `json:"code" validate:"required"`
	Description   string           `json:"description"`
	DiscountType  string           `json:"discount_type" validate:"required"`
	DiscountValue decimal.Decimal  `json:"discount_value" validate:"required"`
	MinOrderValue decimal.Decimal  `json:"min_order_value"`
	MaxDiscount   *decimal.Decimal `json:"max_discount,omitempty"`
	IsActive      *bool            `json:"is_active,omitempty"`
	StartDate     time.Time        `json:"start_date" validate:"required"`
	EndDate       time.Time        `json:"end_date" validate:"required"`
}

type updateCouponRequest struct {
	Description      *string          `json:"description,omitempty"`
	DiscountType     *string          `json:"discount_type,omitempty"`
	DiscountValue    *decimal.Decimal `json:"discount_value,omitempty"`
	MinOrderValue    *decimal.Decimal `json:"min_order_value,omitempty"`
	MaxDiscount      *decimal.Decimal `json:"max_discount,omitempty"`
	ClearMaxDiscount bool             `json:"clear_max_discount"`
	IsActive         *bool            `json:"is_active,omitempty"`
	StartDate        *time.Time       `json:"start_date,omitempty"`
	EndDate          *time.Time       `json:"end_date,omitempty"`
}

type validateCouponRequest struct {
	Code     string          `json:"code" validate:"required"`
	Subtotal decimal.Decimal `json:"subtotal" validate:"required"`
}

func ListCoupons(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters := couponsvc.ListFilters{Now: time.Now().UTC()}
		if raw := validators.QueryString(r, "active"); raw != nil {
			active, err := strconv.ParseBool(*raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeFormat, "active must be a boolean"))
				return
			}
			filters.IsActive = &active
		}
		if raw := validators.QueryString(r, "current"); raw != nil {
			current, err := strconv.ParseBool(*raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeFormat, "current must be a boolean"))
				return
			}
			filters.CurrentOnly = current
		}

		coupons, err := svc.List(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, coupons)
	}
}

func GetCoupon(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		if code == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "coupon code required"))
			return
		}
		coupon, err := svc.GetByCode(r.Context(), code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, coupon)
	}
}

func CreateCoupon(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		discountType, err := enums.ParseDiscountType(payload.DiscountType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, err.Error()))
			return
		}

		coupon, err := svc.Create(r.Context(), couponsvc.CreateCouponInput{
			Code:          payload.Code,
			Description:   payload.Description,
			DiscountType:  discountType,
			DiscountValue: payload.DiscountValue,
			MinOrderValue: payload.MinOrderValue,
			MaxDiscount:   payload.MaxDiscount,
			IsActive:      payload.IsActive,
			StartDate:     payload.StartDate,
			EndDate:       payload.EndDate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, coupon)
	}
}

func UpdateCoupon(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.URLParamUint(r, "couponId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := couponsvc.UpdateCouponInput{
			Description:      payload.Description,
			DiscountValue:    payload.DiscountValue,
			MinOrderValue:    payload.MinOrderValue,
			MaxDiscount:      payload.MaxDiscount,
			ClearMaxDiscount: payload.ClearMaxDiscount,
			IsActive:         payload.IsActive,
			StartDate:        payload.StartDate,
			EndDate:          payload.EndDate,
		}
		if payload.DiscountType != nil {
			discountType, err := enums.ParseDiscountType(*payload.DiscountType)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, err.Error()))
				return
			}
			input.DiscountType = &discountType
		}

		coupon, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, coupon)
	}
}

func DeleteCoupon(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.URLParamUint(r, "couponId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		deactivated, err := svc.Delete(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		message := "coupon deleted"
		if deactivated {
			message = "coupon deactivated because orders reference it"
		}
		responses.WriteSuccess(w, map[string]any{"message": message, "deactivated": deactivated})
	}
}

func ValidateCoupon(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload validateCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Validate(r.Context(), payload.Code, payload.Subtotal)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
