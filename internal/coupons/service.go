package coupons

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rmartinelli/shopcart-backend/pkg/db"
	"github.com/rmartinelli/shopcart-backend/pkg/db/models"
	pkgerrors "github.com/rmartinelli/shopcart-backend/pkg/errors"
)

// Service exposes coupon management and evaluation operations.
type Service interface {
	List(ctx context.Context, filters ListFilters) ([]CouponDTO, error)
	GetByCode(ctx context.Context, code string) (*CouponDTO, error)
	Create(ctx context.Context, input CreateCouponInput) (*CouponDTO, error)
	Update(ctx context.Context, id uint, input UpdateCouponInput) (*CouponDTO, error)
	Delete(ctx context.Context, id uint) (deactivated bool, err error)
	Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*ValidationResult, error)
	EvaluateForOrder(ctx context.Context, code string, subtotal decimal.Decimal, now time.Time) (*models.Coupon, decimal.Decimal, error)
}

type service struct {
	repo *Repository
	now  func() time.Time
}

// NewService constructs a coupon service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	return &service{repo: repo, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *service) List(ctx context.Context, filters ListFilters) ([]CouponDTO, error) {
	records, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list coupons")
	}
	dtos := make([]CouponDTO, 0, len(records))
	for i := range records {
		dtos = append(dtos, *FromModel(&records[i]))
	}
	return dtos, nil
}

func (s *service) GetByCode(ctx context.Context, code string) (*CouponDTO, error) {
	coupon, err := s.findByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return FromModel(coupon), nil
}

func (s *service) Create(ctx context.Context, input CreateCouponInput) (*CouponDTO, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code required")
	}
	if !input.DiscountType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid discount type")
	}
	if input.DiscountValue.Sign() <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount value must be positive")
	}
	if input.EndDate.Before(input.StartDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date must not precede start date")
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	coupon := &models.Coupon{
		Code:          code,
		Description:   input.Description,
		DiscountType:  input.DiscountType,
		DiscountValue: input.DiscountValue,
		MinOrderValue: input.MinOrderValue,
		MaxDiscount:   input.MaxDiscount,
		IsActive:      isActive,
		StartDate:     input.StartDate,
		EndDate:       input.EndDate,
	}

	created, err := s.repo.Create(ctx, coupon)
	if err != nil {
		if db.IsUniqueViolation(err, "code") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create coupon")
	}
	return FromModel(created), nil
}

func (s *service) Update(ctx context.Context, id uint, input UpdateCouponInput) (*CouponDTO, error) {
	if input.DiscountType != nil && !input.DiscountType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid discount type")
	}
	if input.DiscountValue != nil && input.DiscountValue.Sign() <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount value must be positive")
	}

	if _, err := s.findByID(ctx, id); err != nil {
		return nil, err
	}

	updates := buildUpdates(input)
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update coupon")
		}
	}

	coupon, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(coupon), nil
}

// Delete removes a coupon, or deactivates it instead when orders reference
// it. The returned flag reports which of the two happened.
func (s *service) Delete(ctx context.Context, id uint) (bool, error) {
	if _, err := s.findByID(ctx, id); err != nil {
		return false, err
	}

	referenced, err := s.repo.ReferencedByOrders(ctx, id)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check coupon references")
	}
	if referenced {
		if err := s.repo.Update(ctx, id, map[string]any{"is_active": false}); err != nil {
			return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate coupon")
		}
		return true, nil
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete coupon")
	}
	return false, nil
}

func (s *service) Validate(ctx context.Context, code string, subtotal decimal.Decimal) (*ValidationResult, error) {
	coupon, discount, err := s.EvaluateForOrder(ctx, code, subtotal, s.now())
	if err != nil {
		return nil, err
	}
	return &ValidationResult{
		Valid:    true,
		Coupon:   FromModel(coupon),
		Discount: discount,
	}, nil
}

// EvaluateForOrder performs the full coupon gate (existence, active flag,
// validity window, minimum order value) and returns the computed discount.
// Used both by coupon validation and by the order placement workflow.
func (s *service) EvaluateForOrder(ctx context.Context, code string, subtotal decimal.Decimal, now time.Time) (*models.Coupon, decimal.Decimal, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "coupon code required")
	}

	coupon, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeInvalidCoupon, "invalid coupon code")
		}
		return nil, decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find coupon")
	}

	if now.IsZero() {
		now = s.now()
	}
	if !coupon.IsActive || now.Before(coupon.StartDate) || now.After(coupon.EndDate) {
		return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeCouponNotApplicable, "coupon is not currently applicable")
	}
	if subtotal.LessThan(coupon.MinOrderValue) {
		return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeCouponThreshold, "order subtotal below coupon minimum").
			WithDetails(map[string]any{"min_order_value": coupon.MinOrderValue})
	}

	return coupon, CalculateDiscount(subtotal, coupon), nil
}

func (s *service) findByCode(ctx context.Context, code string) (*models.Coupon, error) {
	coupon, err := s.repo.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find coupon")
	}
	return coupon, nil
}

func (s *service) findByID(ctx context.Context, id uint) (*models.Coupon, error) {
	coupon, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find coupon")
	}
	return coupon, nil
}
