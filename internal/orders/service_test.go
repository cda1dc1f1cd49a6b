package orders

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rmartinelli/shopcart-backend/internal/products"
	"github.com/rmartinelli/shopcart-backend/pkg/db"
	"github.com/rmartinelli/shopcart-backend/pkg/db/models"
	"github.com/rmartinelli/shopcart-backend/pkg/enums"
	pkgerrors "github.com/rmartinelli/shopcart-backend/pkg/errors"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = conn.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.ProductImage{},
		&models.Coupon{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

type fakeCoupons struct {
	coupon   *models.Coupon
	discount decimal.Decimal
	err      error
	calls    int
}

func (f *fakeCoupons) EvaluateForOrder(context.Context, string, decimal.Decimal, time.Time) (*models.Coupon, decimal.Decimal, error) {
	f.calls++
	if f.err != nil {
		return nil, decimal.Zero, f.err
	}
	return f.coupon, f.discount, nil
}

func newTestService(t *testing.T, coupons couponEvaluator) (Service, *gorm.DB) {
	t.Helper()
	conn := newTestDB(t)
	if coupons == nil {
		coupons = &fakeCoupons{}
	}
	fixed := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	numbers := NewNumberGenerator(func() time.Time { return fixed }, rand.NewSource(1))
	svc, err := NewService(db.FromGorm(conn), NewRepository(conn), products.NewRepository(conn), coupons, numbers, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, conn
}

func seedProduct(t *testing.T, conn *gorm.DB, name, price string, stock int) *models.Product {
	t.Helper()
	category := models.Category{Name: "Electronics", Icon: "📱"}
	if err := conn.FirstOrCreate(&category, models.Category{Name: "Electronics"}).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	product := models.Product{
		Name:       name,
		Price:      dec(price),
		CategoryID: category.ID,
		StockCount: stock,
		InStock:    stock > 0,
	}
	if err := conn.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return &product
}

func placeInput(items ...OrderItemInput) PlaceOrderInput {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return PlaceOrderInput{
		CustomerName:    "Ada Lovelace",
		CustomerEmail:   "ada@example.com",
		ShippingAddress: "12 Analytical Way",
		ShippingCity:    "London",
		ShippingState:   "LDN",
		ShippingCountry: "GB",
		ShippingZipCode: "N1 9GU",
		DeliveryMethod:  "standard",
		PaymentMethod:   "credit_card",
		Subtotal:        subtotal,
		ShippingCost:    dec("10.00"),
		TaxAmount:       dec("5.00"),
		Items:           items,
	}
}

func TestPlaceHappyPathWithCoupon(t *testing.T) {
	coupon := &models.Coupon{Code: "SAVE10", DiscountType: enums.DiscountTypePercentage, DiscountValue: dec("10"), IsActive: true}
	svc, conn := newTestService(t, &fakeCoupons{coupon: coupon, discount: dec("10.00")})
	if err := conn.Create(coupon).Error; err != nil {
		t.Fatalf("seed coupon: %v", err)
	}
	product := seedProduct(t, conn, "Keyboard", "50.00", 5)

	input := placeInput(OrderItemInput{ProductID: product.ID, Quantity: 2, UnitPrice: dec("50.00")})
	code := "SAVE10"
	input.CouponCode = &code

	result, err := svc.Place(context.Background(), input)
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if result.TotalAmount.Cmp(dec("105.00")) != 0 {
		t.Fatalf("total = %s, want 105.00", result.TotalAmount)
	}

	order, err := svc.GetByNumber(context.Background(), result.OrderNumber)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if order.OrderStatus != enums.OrderStatusPending.String() {
		t.Fatalf("order status = %s, want pending", order.OrderStatus)
	}
	if order.PaymentStatus != enums.OrderPaymentStatusPending.String() {
		t.Fatalf("payment status = %s, want pending", order.PaymentStatus)
	}
	if order.DiscountAmount.Cmp(dec("10.00")) != 0 {
		t.Fatalf("discount = %s, want 10.00", order.DiscountAmount)
	}
	if len(order.Items) != 1 || order.Items[0].UnitPrice.Cmp(dec("50.00")) != 0 {
		t.Fatalf("unexpected items: %+v", order.Items)
	}
	if len(order.Payments) != 1 || order.Payments[0].Status != enums.PaymentStatusPending.String() {
		t.Fatalf("unexpected payments: %+v", order.Payments)
	}
	if order.Coupon == nil || order.Coupon.Code != "SAVE10" {
		t.Fatalf("coupon summary missing: %+v", order.Coupon)
	}

	var reloaded models.Product
	if err := conn.First(&reloaded, product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.StockCount != 3 {
		t.Fatalf("stock = %d, want 3", reloaded.StockCount)
	}
	if !reloaded.InStock {
		t.Fatalf("product should still be in stock")
	}
}

func TestPlaceServerPriceWinsWithinTolerance(t *testing.T) {
	svc, conn := newTestService(t, nil)
	product := seedProduct(t, conn, "Mouse", "25.00", 4)

	// A submitted price off by at most a cent is accepted, but the stored
	// price is what gets persisted.
	input := placeInput(OrderItemInput{ProductID: product.ID, Quantity: 1, UnitPrice: dec("24.99")})
	result, err := svc.Place(context.Background(), input)
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	order, err := svc.GetByNumber(context.Background(), result.OrderNumber)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if order.Items[0].UnitPrice.Cmp(dec("25.00")) != 0 {
		t.Fatalf("unit price = %s, want stored 25.00", order.Items[0].UnitPrice)
	}
}

func TestPlacePriceMismatch(t *testing.T) {
	svc, conn := newTestService(t, nil)
	product := seedProduct(t, conn, "Mouse", "25.00", 4)

	input := placeInput(OrderItemInput{ProductID: product.ID, Quantity: 1, UnitPrice: dec("19.99")})
	_, err := svc.Place(context.Background(), input)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodePriceMismatch {
		t.Fatalf("want price mismatch, got %v", err)
	}
	assertNoOrders(t, conn)
}

func TestPlaceUnknownProduct(t *testing.T) {
	svc, conn := newTestService(t, nil)

	input := placeInput(OrderItemInput{ProductID: 99, Quantity: 1, UnitPrice: dec("10.00")})
	_, err := svc.Place(context.Background(), input)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeProductNotFound {
		t.Fatalf("want product not found, got %v", err)
	}
	assertNoOrders(t, conn)
}

func TestPlaceTotalMismatch(t *testing.T) {
	svc, conn := newTestService(t, nil)
	product := seedProduct(t, conn, "Monitor", "200.00", 2)

	input := placeInput(OrderItemInput{ProductID: product.ID, Quantity: 1, UnitPrice: dec("200.00")})
	input.Subtotal = dec("150.00")
	_, err := svc.Place(context.Background(), input)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeTotalMismatch {
		t.Fatalf("want total mismatch, got %v", err)
	}
	assertNoOrders(t, conn)
}

func TestPlaceInsufficientStockRollsBack(t *testing.T) {
	svc, conn := newTestService(t, nil)
	plenty := seedProduct(t, conn, "Cable", "5.00", 100)
	scarce := seedProduct(t, conn, "Dock", "80.00", 1)

	input := placeInput(
		OrderItemInput{ProductID: plenty.ID, Quantity: 2, UnitPrice: dec("5.00")},
		OrderItemInput{ProductID: scarce.ID, Quantity: 3, UnitPrice: dec("80.00")},
	)
	_, err := svc.Place(context.Background(), input)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("want insufficient stock, got %v", err)
	}
	assertNoOrders(t, conn)

	// The first item's decrement happened inside the same transaction and
	// must have been rolled back.
	var reloaded models.Product
	if err := conn.First(&reloaded, plenty.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.StockCount != 100 {
		t.Fatalf("stock = %d, want 100 after rollback", reloaded.StockCount)
	}
}

func TestPlaceExactStockMarksOutOfStock(t *testing.T) {
	svc, conn := newTestService(t, nil)
	product := seedProduct(t, conn, "Lamp", "40.00", 2)

	input := placeInput(OrderItemInput{ProductID: product.ID, Quantity: 2, UnitPrice: dec("40.00")})
	if _, err := svc.Place(context.Background(), input); err != nil {
		t.Fatalf("place: %v", err)
	}

	var reloaded models.Product
	if err := conn.First(&reloaded, product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.StockCount != 0 {
		t.Fatalf("stock = %d, want 0", reloaded.StockCount)
	}
	if reloaded.InStock {
		t.Fatalf("product should be flagged out of stock")
	}
}

func TestPlaceCouponErrorPassesThrough(t *testing.T) {
	svc, conn := newTestService(t, &fakeCoupons{err: pkgerrors.New(pkgerrors.CodeInvalidCoupon, "coupon inactive")})
	product := seedProduct(t, conn, "Desk", "120.00", 3)

	input := placeInput(OrderItemInput{ProductID: product.ID, Quantity: 1, UnitPrice: dec("120.00")})
	code := "EXPIRED"
	input.CouponCode = &code
	_, err := svc.Place(context.Background(), input)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInvalidCoupon {
		t.Fatalf("want invalid coupon, got %v", err)
	}
	assertNoOrders(t, conn)
}

func TestPlaceValidation(t *testing.T) {
	svc, _ := newTestService(t, nil)

	input := placeInput(OrderItemInput{ProductID: 1, Quantity: 1, UnitPrice: dec("10.00")})
	input.CustomerEmail = ""
	_, err := svc.Place(context.Background(), input)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("want validation error, got %v", err)
	}

	input = placeInput(OrderItemInput{ProductID: 1, Quantity: 0, UnitPrice: dec("10.00")})
	_, err = svc.Place(context.Background(), input)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("want validation error for zero quantity, got %v", err)
	}

	input = placeInput()
	_, err = svc.Place(context.Background(), input)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("want validation error for empty items, got %v", err)
	}
}

func TestListFilters(t *testing.T) {
	svc, conn := newTestService(t, nil)
	product := seedProduct(t, conn, "Chair", "75.00", 10)

	first := placeInput(OrderItemInput{ProductID: product.ID, Quantity: 1, UnitPrice: dec("75.00")})
	second := placeInput(OrderItemInput{ProductID: product.ID, Quantity: 2, UnitPrice: dec("75.00")})
	second.CustomerEmail = "grace@example.com"

	firstResult, err := svc.Place(context.Background(), first)
	if err != nil {
		t.Fatalf("place first: %v", err)
	}
	if _, err := svc.Place(context.Background(), second); err != nil {
		t.Fatalf("place second: %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), firstResult.OrderNumber, enums.OrderStatusShipped); err != nil {
		t.Fatalf("update status: %v", err)
	}

	all, err := svc.List(context.Background(), ListFilters{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("list = %d orders, want 2", len(all))
	}

	shipped := enums.OrderStatusShipped
	byStatus, err := svc.List(context.Background(), ListFilters{Status: &shipped})
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if len(byStatus) != 1 || byStatus[0].OrderNumber != firstResult.OrderNumber {
		t.Fatalf("unexpected status filter result: %+v", byStatus)
	}

	email := "grace@example.com"
	byEmail, err := svc.List(context.Background(), ListFilters{CustomerEmail: &email})
	if err != nil {
		t.Fatalf("list by email: %v", err)
	}
	if len(byEmail) != 1 || byEmail[0].CustomerEmail != email {
		t.Fatalf("unexpected email filter result: %+v", byEmail)
	}
}

func TestUpdateStatus(t *testing.T) {
	svc, conn := newTestService(t, nil)
	product := seedProduct(t, conn, "Shelf", "60.00", 5)

	result, err := svc.Place(context.Background(), placeInput(OrderItemInput{ProductID: product.ID, Quantity: 1, UnitPrice: dec("60.00")}))
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	order, err := svc.UpdateStatus(context.Background(), result.OrderNumber, enums.OrderStatusProcessing)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if order.OrderStatus != enums.OrderStatusProcessing.String() {
		t.Fatalf("order status = %s, want processing", order.OrderStatus)
	}

	if _, err := svc.UpdateStatus(context.Background(), result.OrderNumber, enums.OrderStatus("sideways")); err == nil {
		t.Fatalf("expected invalid status to be rejected")
	}
	if _, err := svc.UpdateStatus(context.Background(), "ORD-00000000000000-000000", enums.OrderStatusShipped); err == nil {
		t.Fatalf("expected unknown order to be rejected")
	} else if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestAddPaymentRollup(t *testing.T) {
	svc, conn := newTestService(t, nil)
	product := seedProduct(t, conn, "Printer", "100.00", 5)

	result, err := svc.Place(context.Background(), placeInput(OrderItemInput{ProductID: product.ID, Quantity: 1, UnitPrice: dec("100.00")}))
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	// subtotal 100 + shipping 10 + tax 5
	if result.TotalAmount.Cmp(dec("115.00")) != 0 {
		t.Fatalf("total = %s, want 115.00", result.TotalAmount)
	}

	order, err := svc.AddPayment(context.Background(), result.OrderNumber, AddPaymentInput{
		Amount:        dec("50.00"),
		PaymentMethod: "credit_card",
		Status:        enums.PaymentStatusCompleted,
	})
	if err != nil {
		t.Fatalf("add partial payment: %v", err)
	}
	if order.PaymentStatus != enums.OrderPaymentStatusPartiallyPaid.String() {
		t.Fatalf("payment status = %s, want partially_paid", order.PaymentStatus)
	}

	order, err = svc.AddPayment(context.Background(), result.OrderNumber, AddPaymentInput{
		Amount:        dec("65.00"),
		PaymentMethod: "credit_card",
		Status:        enums.PaymentStatusCompleted,
	})
	if err != nil {
		t.Fatalf("add final payment: %v", err)
	}
	if order.PaymentStatus != enums.OrderPaymentStatusPaid.String() {
		t.Fatalf("payment status = %s, want paid", order.PaymentStatus)
	}

	order, err = svc.AddPayment(context.Background(), result.OrderNumber, AddPaymentInput{
		Amount:        dec("115.00"),
		PaymentMethod: "credit_card",
		Status:        enums.PaymentStatusRefunded,
	})
	if err != nil {
		t.Fatalf("add refund: %v", err)
	}
	if order.PaymentStatus != enums.OrderPaymentStatusRefunded.String() {
		t.Fatalf("payment status = %s, want refunded", order.PaymentStatus)
	}

	_, err = svc.AddPayment(context.Background(), result.OrderNumber, AddPaymentInput{
		Amount:        dec("-5.00"),
		PaymentMethod: "credit_card",
		Status:        enums.PaymentStatusCompleted,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("want validation error for negative amount, got %v", err)
	}
}

func TestUpdateItemStatusRollup(t *testing.T) {
	svc, conn := newTestService(t, nil)
	first := seedProduct(t, conn, "Router", "30.00", 5)
	second := seedProduct(t, conn, "Switch", "45.00", 5)

	result, err := svc.Place(context.Background(), placeInput(
		OrderItemInput{ProductID: first.ID, Quantity: 1, UnitPrice: dec("30.00")},
		OrderItemInput{ProductID: second.ID, Quantity: 1, UnitPrice: dec("45.00")},
	))
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	order, err := svc.GetByNumber(context.Background(), result.OrderNumber)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if len(order.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(order.Items))
	}

	order, err = svc.UpdateItemStatus(context.Background(), result.OrderNumber, order.Items[0].ID, enums.OrderItemStatusShipped, true)
	if err != nil {
		t.Fatalf("ship first item: %v", err)
	}
	if order.OrderStatus != enums.OrderStatusShipped.String() {
		t.Fatalf("order status = %s, want shipped", order.OrderStatus)
	}

	order, err = svc.UpdateItemStatus(context.Background(), result.OrderNumber, order.Items[0].ID, enums.OrderItemStatusDelivered, true)
	if err != nil {
		t.Fatalf("deliver first item: %v", err)
	}
	if order.OrderStatus != enums.OrderStatusPending.String() {
		t.Fatalf("order status = %s, want pending with one line still pending", order.OrderStatus)
	}

	order, err = svc.UpdateItemStatus(context.Background(), result.OrderNumber, order.Items[1].ID, enums.OrderItemStatusDelivered, true)
	if err != nil {
		t.Fatalf("deliver second item: %v", err)
	}
	if order.OrderStatus != enums.OrderStatusDelivered.String() {
		t.Fatalf("order status = %s, want delivered", order.OrderStatus)
	}

	if _, err := svc.UpdateItemStatus(context.Background(), result.OrderNumber, 9999, enums.OrderItemStatusShipped, false); err == nil {
		t.Fatalf("expected unknown item to be rejected")
	} else if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("want not found, got %v", err)
	}
}

func assertNoOrders(t *testing.T, conn *gorm.DB) {
	t.Helper()
	var orderCount, itemCount, paymentCount int64
	if err := conn.Model(&models.Order{}).Count(&orderCount).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if err := conn.Model(&models.OrderItem{}).Count(&itemCount).Error; err != nil {
		t.Fatalf("count items: %v", err)
	}
	if err := conn.Model(&models.Payment{}).Count(&paymentCount).Error; err != nil {
		t.Fatalf("count payments: %v", err)
	}
	if orderCount != 0 || itemCount != 0 || paymentCount != 0 {
		t.Fatalf("orders=%d items=%d payments=%d, want all zero", orderCount, itemCount, paymentCount)
	}
}
