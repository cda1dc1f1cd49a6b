package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rmartinelli/shopcart-backend/internal/products"
	"github.com/rmartinelli/shopcart-backend/pkg/db/models"
	"github.com/rmartinelli/shopcart-backend/pkg/enums"
	pkgerrors "github.com/rmartinelli/shopcart-backend/pkg/errors"
	"github.com/rmartinelli/shopcart-backend/pkg/logger"
)

// tolerance is the allowance for comparing client-submitted monetary values
// against server-computed ones.
var tolerance = decimal.New(1, -2)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type couponEvaluator interface {
	EvaluateForOrder(ctx context.Context, code string, subtotal decimal.Decimal, now time.Time) (*models.Coupon, decimal.Decimal, error)
}

// Service executes order placement and the follow-up order operations.
type Service interface {
	Place(ctx context.Context, input PlaceOrderInput) (*PlaceOrderResult, error)
	List(ctx context.Context, filters ListFilters) ([]OrderDTO, error)
	GetByNumber(ctx context.Context, orderNumber string) (*OrderDTO, error)
	UpdateStatus(ctx context.Context, orderNumber string, status enums.OrderStatus) (*OrderDTO, error)
	AddPayment(ctx context.Context, orderNumber string, input AddPaymentInput) (*OrderDTO, error)
	UpdateItemStatus(ctx context.Context, orderNumber string, itemID uint, status enums.OrderItemStatus, rollup bool) (*OrderDTO, error)
}

type service struct {
	tx       txRunner
	repo     *Repository
	products *products.Repository
	coupons  couponEvaluator
	numbers  *NumberGenerator
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the order service.
func NewService(
	tx txRunner,
	repo *Repository,
	productRepo *products.Repository,
	coupons couponEvaluator,
	numbers *NumberGenerator,
	logg *logger.Logger,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if coupons == nil {
		return nil, fmt.Errorf("coupon evaluator required")
	}
	if numbers == nil {
		numbers = NewNumberGenerator(nil, nil)
	}
	return &service{
		tx:       tx,
		repo:     repo,
		products: productRepo,
		coupons:  coupons,
		numbers:  numbers,
		logg:     logg,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// Place runs the whole placement workflow: structural validation, coupon
// evaluation, per-item price verification, total reconciliation, then a
// single transaction that writes the order, its lines, the stock decrements,
// and the initial payment row. Any failure before the transaction is
// side-effect free; any failure inside it rolls everything back.
func (s *service) Place(ctx context.Context, input PlaceOrderInput) (*PlaceOrderResult, error) {
	if err := validateSubmission(input); err != nil {
		return nil, err
	}

	// Step 2: coupon gate + discount, before any write.
	var couponID *uint
	discount := decimal.Zero
	if input.CouponCode != nil && strings.TrimSpace(*input.CouponCode) != "" {
		coupon, amount, err := s.coupons.EvaluateForOrder(ctx, *input.CouponCode, input.Subtotal, s.now())
		if err != nil {
			return nil, err
		}
		id := coupon.ID
		couponID = &id
		discount = amount
	}

	// Step 3: verify each submitted price against the stored product price
	// and accumulate the authoritative subtotal.
	verified := make(map[uint]*models.Product, len(input.Items))
	calculatedSubtotal := decimal.Zero
	for _, item := range input.Items {
		product, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeProductNotFound,
					fmt.Sprintf("product %d not found", item.ProductID))
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find product")
		}
		if item.UnitPrice.Sub(product.Price).Abs().GreaterThan(tolerance) {
			return nil, pkgerrors.New(pkgerrors.CodePriceMismatch,
				fmt.Sprintf("price mismatch for product %d", item.ProductID)).
				WithDetails(map[string]any{
					"product_id":      item.ProductID,
					"submitted_price": item.UnitPrice,
					"current_price":   product.Price,
				})
		}
		verified[item.ProductID] = product
		calculatedSubtotal = calculatedSubtotal.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	// Step 4: reconcile against the submitted subtotal.
	if calculatedSubtotal.Sub(input.Subtotal).Abs().GreaterThan(tolerance) {
		return nil, pkgerrors.New(pkgerrors.CodeTotalMismatch, "submitted subtotal does not match calculated subtotal").
			WithDetails(map[string]any{
				"submitted_subtotal":  input.Subtotal,
				"calculated_subtotal": calculatedSubtotal,
			})
	}

	orderNumber := s.numbers.Generate()
	total := input.Subtotal.Add(input.ShippingCost).Add(input.TaxAmount).Sub(discount)

	// Step 6: one transaction for the order, its lines, the stock
	// decrements, and the first payment row.
	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		productRepo := s.products.WithTx(tx)

		order := &models.Order{
			OrderNumber:          orderNumber,
			CustomerName:         input.CustomerName,
			CustomerEmail:        input.CustomerEmail,
			CustomerPhone:        input.CustomerPhone,
			ShippingAddress:      input.ShippingAddress,
			ShippingCity:         input.ShippingCity,
			ShippingState:        input.ShippingState,
			ShippingCountry:      input.ShippingCountry,
			ShippingZipCode:      input.ShippingZipCode,
			DeliveryMethod:       input.DeliveryMethod,
			DeliveryInstructions: input.DeliveryInstructions,
			IsGift:               input.IsGift,
			GiftMessage:          input.GiftMessage,
			Subtotal:             input.Subtotal,
			ShippingCost:         input.ShippingCost,
			TaxAmount:            input.TaxAmount,
			DiscountAmount:       discount,
			TotalAmount:          total,
			PaymentMethod:        input.PaymentMethod,
			PaymentStatus:        enums.OrderPaymentStatusPending,
			OrderStatus:          enums.OrderStatusPending,
			CouponID:             couponID,
		}
		persisted, err := repo.CreateOrder(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeOrderPersistence, err, "create order")
		}

		items := make([]models.OrderItem, 0, len(input.Items))
		for _, item := range input.Items {
			product := verified[item.ProductID]
			name := product.Name
			items = append(items, models.OrderItem{
				OrderID:     persisted.ID,
				ProductID:   item.ProductID,
				ProductName: &name,
				Quantity:    item.Quantity,
				UnitPrice:   product.Price,
				TotalPrice:  product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))),
				Attributes:  item.Attributes,
				Status:      enums.OrderItemStatusPending,
			})

			ok, err := productRepo.DecrementStock(ctx, item.ProductID, item.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeOrderPersistence, err, "decrement stock")
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeInsufficientStock,
					fmt.Sprintf("insufficient stock for product %d", item.ProductID)).
					WithDetails(map[string]any{
						"product_id": item.ProductID,
						"requested":  item.Quantity,
					})
			}
		}
		if err := repo.CreateOrderItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeOrderPersistence, err, "create order items")
		}

		payment := &models.Payment{
			OrderID:       persisted.ID,
			Amount:        total,
			PaymentMethod: input.PaymentMethod,
			TransactionID: input.TransactionID,
			Status:        enums.PaymentStatusPending,
		}
		if _, err := repo.CreatePayment(ctx, payment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeOrderPersistence, err, "create payment")
		}

		created = persisted
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeOrderPersistence, err, "persist order")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderNumber(ctx, orderNumber), "order placed")
	}
	return &PlaceOrderResult{
		OrderID:     created.ID,
		OrderNumber: created.OrderNumber,
		TotalAmount: created.TotalAmount,
	}, nil
}

func (s *service) List(ctx context.Context, filters ListFilters) ([]OrderDTO, error) {
	records, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	dtos := make([]OrderDTO, 0, len(records))
	for i := range records {
		dto, err := s.decorate(ctx, &records[i])
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, *dto)
	}
	return dtos, nil
}

func (s *service) GetByNumber(ctx context.Context, orderNumber string) (*OrderDTO, error) {
	order, err := s.findByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, order)
}

func (s *service) UpdateStatus(ctx context.Context, orderNumber string, status enums.OrderStatus) (*OrderDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	order, err := s.findByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateOrder(ctx, order.ID, map[string]any{"order_status": status.String()}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	return s.GetByNumber(ctx, orderNumber)
}

// AddPayment appends a payment row and rolls the order's payment status up:
// when completed payments cover the total the order is paid, anything short
// of that is partially paid, and a refunded payment marks the order refunded.
func (s *service) AddPayment(ctx context.Context, orderNumber string, input AddPaymentInput) (*OrderDTO, error) {
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment status")
	}
	if input.Amount.Sign() <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}

	order, err := s.findByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		payment := &models.Payment{
			OrderID:       order.ID,
			Amount:        input.Amount,
			PaymentMethod: input.PaymentMethod,
			TransactionID: input.TransactionID,
			Status:        input.Status,
		}
		if _, err := repo.CreatePayment(ctx, payment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
		}

		switch input.Status {
		case enums.PaymentStatusCompleted:
			paid, err := repo.SumCompletedPayments(ctx, order.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum payments")
			}
			rollup := enums.OrderPaymentStatusPartiallyPaid
			if paid.GreaterThanOrEqual(order.TotalAmount) {
				rollup = enums.OrderPaymentStatusPaid
			}
			return repo.UpdateOrder(ctx, order.ID, map[string]any{"payment_status": rollup.String()})
		case enums.PaymentStatusRefunded:
			return repo.UpdateOrder(ctx, order.ID, map[string]any{"payment_status": enums.OrderPaymentStatusRefunded.String()})
		default:
			return nil
		}
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record payment")
	}

	return s.GetByNumber(ctx, orderNumber)
}

// UpdateItemStatus updates one line's status; with rollup enabled the parent
// order status is recomputed from all line statuses.
func (s *service) UpdateItemStatus(ctx context.Context, orderNumber string, itemID uint, status enums.OrderItemStatus, rollup bool) (*OrderDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order item status")
	}
	order, err := s.findByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.FindItem(ctx, order.ID, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find order item")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpdateItemStatus(ctx, itemID, status); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item status")
		}
		if !rollup {
			return nil
		}
		items, err := repo.ListItems(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list order items")
		}
		next := rollupOrderStatus(items)
		return repo.UpdateOrder(ctx, order.ID, map[string]any{"order_status": next.String()})
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order item")
	}

	return s.GetByNumber(ctx, orderNumber)
}

// rollupOrderStatus derives the parent order status from its line statuses.
func rollupOrderStatus(items []models.OrderItem) enums.OrderStatus {
	if len(items) == 0 {
		return enums.OrderStatusPending
	}
	allDelivered := true
	allCancelled := true
	anyShipped := false
	anyProcessing := false
	for _, item := range items {
		if item.Status != enums.OrderItemStatusDelivered {
			allDelivered = false
		}
		if item.Status != enums.OrderItemStatusCancelled {
			allCancelled = false
		}
		if item.Status == enums.OrderItemStatusShipped {
			anyShipped = true
		}
		if item.Status == enums.OrderItemStatusProcessing {
			anyProcessing = true
		}
	}
	switch {
	case allDelivered:
		return enums.OrderStatusDelivered
	case allCancelled:
		return enums.OrderStatusCancelled
	case anyShipped:
		return enums.OrderStatusShipped
	case anyProcessing:
		return enums.OrderStatusProcessing
	default:
		return enums.OrderStatusPending
	}
}

func (s *service) findByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number required")
	}
	order, err := s.repo.FindByNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find order")
	}
	return order, nil
}

func (s *service) decorate(ctx context.Context, order *models.Order) (*OrderDTO, error) {
	var coupon *CouponSummaryDTO
	if order.CouponID != nil {
		summary, err := s.repo.FindCouponSummary(ctx, *order.CouponID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon summary")
		}
		coupon = summary
	}
	return FromModel(order, coupon), nil
}

func validateSubmission(input PlaceOrderInput) error {
	missing := func(field string) error {
		return pkgerrors.New(pkgerrors.CodeValidation, field+" is required")
	}
	switch {
	case strings.TrimSpace(input.CustomerName) == "":
		return missing("customer_name")
	case strings.TrimSpace(input.CustomerEmail) == "":
		return missing("customer_email")
	case strings.TrimSpace(input.ShippingAddress) == "":
		return missing("shipping_address")
	case strings.TrimSpace(input.ShippingCity) == "":
		return missing("shipping_city")
	case strings.TrimSpace(input.ShippingState) == "":
		return missing("shipping_state")
	case strings.TrimSpace(input.ShippingCountry) == "":
		return missing("shipping_country")
	case strings.TrimSpace(input.ShippingZipCode) == "":
		return missing("shipping_zip_code")
	case strings.TrimSpace(input.DeliveryMethod) == "":
		return missing("delivery_method")
	case strings.TrimSpace(input.PaymentMethod) == "":
		return missing("payment_method")
	}
	if input.Subtotal.Sign() < 0 || input.ShippingCost.Sign() < 0 || input.TaxAmount.Sign() < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "monetary fields must not be negative")
	}
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "items list required")
	}
	for _, item := range input.Items {
		if item.ProductID == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "each item needs a product id")
		}
		if item.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be a positive integer")
		}
		if item.UnitPrice.Sign() < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "item unit price must not be negative")
		}
	}
	return nil
}
