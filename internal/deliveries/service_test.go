package deliveries

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rmartinelli/shopcart-backend/internal/orders"
	"github.com/rmartinelli/shopcart-backend/internal/products"
	"github.com/rmartinelli/shopcart-backend/pkg/db"
	"github.com/rmartinelli/shopcart-backend/pkg/db/models"
	"github.com/rmartinelli/shopcart-backend/pkg/enums"
	pkgerrors "github.com/rmartinelli/shopcart-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:deliveries_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = conn.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.ProductImage{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.Delivery{},
		&models.DeliveryTrackingEvent{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := newTestDB(t)
	svc, err := NewService(db.FromGorm(conn), NewRepository(conn), orders.NewRepository(conn), products.NewRepository(conn), nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, conn
}

func seedOrder(t *testing.T, conn *gorm.DB, orderNumber string) *models.Order {
	t.Helper()
	order := models.Order{
		OrderNumber:     orderNumber,
		CustomerName:    "Ada Lovelace",
		CustomerEmail:   "ada@example.com",
		ShippingAddress: "12 Analytical Way",
		ShippingCity:    "London",
		ShippingState:   "LDN",
		ShippingCountry: "GB",
		ShippingZipCode: "N1 9GU",
		DeliveryMethod:  "standard",
		Subtotal:        decimal.RequireFromString("100.00"),
		ShippingCost:    decimal.RequireFromString("10.00"),
		TaxAmount:       decimal.RequireFromString("5.00"),
		TotalAmount:     decimal.RequireFromString("115.00"),
		PaymentMethod:   "credit_card",
		PaymentStatus:   enums.OrderPaymentStatusPending,
		OrderStatus:     enums.OrderStatusPending,
	}
	if err := conn.Create(&order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return &order
}

func seedProduct(t *testing.T, conn *gorm.DB, name string) *models.Product {
	t.Helper()
	category := models.Category{Name: "Electronics", Icon: "📱"}
	if err := conn.FirstOrCreate(&category, models.Category{Name: "Electronics"}).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	sku := "SKU-" + name
	product := models.Product{
		Name:       name,
		SKU:        &sku,
		Price:      decimal.RequireFromString("50.00"),
		CategoryID: category.ID,
		StockCount: 10,
		InStock:    true,
	}
	if err := conn.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return &product
}

func createInput(productID uint) CreateDeliveryInput {
	return CreateDeliveryInput{
		ProductID:      productID,
		Carrier:        "DHL",
		TrackingNumber: "DHL-123456",
		Quantity:       1,
	}
}

func TestCreateForOrder(t *testing.T) {
	svc, conn := newTestService(t)
	order := seedOrder(t, conn, "ORD-20250314092653-000001")
	product := seedProduct(t, conn, "Keyboard")

	dto, err := svc.CreateForOrder(context.Background(), order.OrderNumber, createInput(product.ID))
	if err != nil {
		t.Fatalf("create delivery: %v", err)
	}
	if dto.OrderNumber != order.OrderNumber {
		t.Fatalf("order number = %s, want %s", dto.OrderNumber, order.OrderNumber)
	}
	if dto.Status != enums.DeliveryStatusPending.String() {
		t.Fatalf("status = %s, want pending", dto.Status)
	}
	if dto.Product == nil || dto.Product.Name != "Keyboard" {
		t.Fatalf("product ref missing: %+v", dto.Product)
	}
	if len(dto.TrackingEvents) != 1 {
		t.Fatalf("events = %d, want 1", len(dto.TrackingEvents))
	}
	initial := dto.TrackingEvents[0]
	if initial.Status != "created" || initial.Location != "Warehouse" {
		t.Fatalf("unexpected initial event: %+v", initial)
	}

	// The order status stays untouched unless the bump is requested.
	var reloaded models.Order
	if err := conn.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if reloaded.OrderStatus != enums.OrderStatusPending {
		t.Fatalf("order status = %s, want pending", reloaded.OrderStatus)
	}
}

func TestCreateForOrderBumpsOrderStatus(t *testing.T) {
	svc, conn := newTestService(t)
	order := seedOrder(t, conn, "ORD-20250314092653-000002")
	product := seedProduct(t, conn, "Mouse")

	input := createInput(product.ID)
	input.UpdateOrderStatus = true
	if _, err := svc.CreateForOrder(context.Background(), order.OrderNumber, input); err != nil {
		t.Fatalf("create delivery: %v", err)
	}

	var reloaded models.Order
	if err := conn.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if reloaded.OrderStatus != enums.OrderStatusShipped {
		t.Fatalf("order status = %s, want shipped", reloaded.OrderStatus)
	}
}

func TestCreateForOrderRejectsDuplicatePair(t *testing.T) {
	svc, conn := newTestService(t)
	order := seedOrder(t, conn, "ORD-20250314092653-000003")
	product := seedProduct(t, conn, "Monitor")

	if _, err := svc.CreateForOrder(context.Background(), order.OrderNumber, createInput(product.ID)); err != nil {
		t.Fatalf("create delivery: %v", err)
	}
	_, err := svc.CreateForOrder(context.Background(), order.OrderNumber, createInput(product.ID))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("want conflict for duplicate pair, got %v", err)
	}
}

func TestCreateForOrderValidation(t *testing.T) {
	svc, conn := newTestService(t)
	order := seedOrder(t, conn, "ORD-20250314092653-000004")
	product := seedProduct(t, conn, "Desk")

	input := createInput(product.ID)
	input.Carrier = ""
	_, err := svc.CreateForOrder(context.Background(), order.OrderNumber, input)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("want validation error for missing carrier, got %v", err)
	}

	input = createInput(product.ID)
	input.Quantity = 0
	_, err = svc.CreateForOrder(context.Background(), order.OrderNumber, input)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("want validation error for zero quantity, got %v", err)
	}

	_, err = svc.CreateForOrder(context.Background(), "ORD-00000000000000-000000", createInput(product.ID))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("want not found for unknown order, got %v", err)
	}

	_, err = svc.CreateForOrder(context.Background(), order.OrderNumber, createInput(9999))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeProductNotFound {
		t.Fatalf("want product not found, got %v", err)
	}
}

func TestAddEventSyncsStatuses(t *testing.T) {
	svc, conn := newTestService(t)
	order := seedOrder(t, conn, "ORD-20250314092653-000005")
	product := seedProduct(t, conn, "Lamp")

	dto, err := svc.CreateForOrder(context.Background(), order.OrderNumber, createInput(product.ID))
	if err != nil {
		t.Fatalf("create delivery: %v", err)
	}

	dto, err = svc.AddEvent(context.Background(), dto.ID, AddTrackingEventInput{
		Status:   enums.DeliveryStatusShipped.String(),
		Location: "Sorting hub",
	})
	if err != nil {
		t.Fatalf("add shipped event: %v", err)
	}
	if dto.Status != enums.DeliveryStatusShipped.String() {
		t.Fatalf("delivery status = %s, want shipped", dto.Status)
	}
	if len(dto.TrackingEvents) != 2 {
		t.Fatalf("events = %d, want 2", len(dto.TrackingEvents))
	}

	var reloadedOrder models.Order
	if err := conn.First(&reloadedOrder, order.ID).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if reloadedOrder.OrderStatus != enums.OrderStatusPending {
		t.Fatalf("order status = %s, shipped events must not propagate", reloadedOrder.OrderStatus)
	}

	dto, err = svc.AddEvent(context.Background(), dto.ID, AddTrackingEventInput{
		Status:   enums.DeliveryStatusDelivered.String(),
		Location: "Front door",
	})
	if err != nil {
		t.Fatalf("add delivered event: %v", err)
	}
	if dto.Status != enums.DeliveryStatusDelivered.String() {
		t.Fatalf("delivery status = %s, want delivered", dto.Status)
	}
	if err := conn.First(&reloadedOrder, order.ID).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if reloadedOrder.OrderStatus != enums.OrderStatusDelivered {
		t.Fatalf("order status = %s, want delivered", reloadedOrder.OrderStatus)
	}
}

func TestAddEventRejectsInvalidStatus(t *testing.T) {
	svc, conn := newTestService(t)
	order := seedOrder(t, conn, "ORD-20250314092653-000006")
	product := seedProduct(t, conn, "Chair")

	dto, err := svc.CreateForOrder(context.Background(), order.OrderNumber, createInput(product.ID))
	if err != nil {
		t.Fatalf("create delivery: %v", err)
	}

	_, err = svc.AddEvent(context.Background(), dto.ID, AddTrackingEventInput{Status: "teleported", Location: "Anywhere"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("want validation error, got %v", err)
	}

	_, err = svc.AddEvent(context.Background(), 9999, AddTrackingEventInput{
		Status:   enums.DeliveryStatusShipped.String(),
		Location: "Hub",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestTrack(t *testing.T) {
	svc, conn := newTestService(t)
	order := seedOrder(t, conn, "ORD-20250314092653-000007")
	product := seedProduct(t, conn, "Router")

	if _, err := svc.CreateForOrder(context.Background(), order.OrderNumber, createInput(product.ID)); err != nil {
		t.Fatalf("create delivery: %v", err)
	}

	tracked, err := svc.Track(context.Background(), "DHL-123456")
	if err != nil {
		t.Fatalf("track: %v", err)
	}
	if tracked.OrderNumber != order.OrderNumber || tracked.CustomerName != "Ada Lovelace" {
		t.Fatalf("unexpected tracking context: %+v", tracked)
	}
	if tracked.Product == nil || tracked.Product.Name != "Router" {
		t.Fatalf("product ref missing: %+v", tracked.Product)
	}
	if len(tracked.TrackingHistory) != 1 || tracked.TrackingHistory[0].Status != "created" {
		t.Fatalf("unexpected history: %+v", tracked.TrackingHistory)
	}

	_, err = svc.Track(context.Background(), "UNKNOWN-0000")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestListFilters(t *testing.T) {
	svc, conn := newTestService(t)
	firstOrder := seedOrder(t, conn, "ORD-20250314092653-000008")
	secondOrder := seedOrder(t, conn, "ORD-20250314092653-000009")
	keyboard := seedProduct(t, conn, "Keyboard")
	mouse := seedProduct(t, conn, "Mouse")

	first := createInput(keyboard.ID)
	first.TrackingNumber = "DHL-1"
	if _, err := svc.CreateForOrder(context.Background(), firstOrder.OrderNumber, first); err != nil {
		t.Fatalf("create first delivery: %v", err)
	}

	second := createInput(mouse.ID)
	second.Carrier = "UPS"
	second.TrackingNumber = "UPS-2"
	dto, err := svc.CreateForOrder(context.Background(), secondOrder.OrderNumber, second)
	if err != nil {
		t.Fatalf("create second delivery: %v", err)
	}
	if _, err := svc.AddEvent(context.Background(), dto.ID, AddTrackingEventInput{
		Status:   enums.DeliveryStatusShipped.String(),
		Location: "Hub",
	}); err != nil {
		t.Fatalf("ship second delivery: %v", err)
	}

	all, err := svc.List(context.Background(), ListFilters{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("list = %d deliveries, want 2", len(all))
	}

	orderNumber := firstOrder.OrderNumber
	byOrder, err := svc.List(context.Background(), ListFilters{OrderNumber: &orderNumber})
	if err != nil {
		t.Fatalf("list by order: %v", err)
	}
	if len(byOrder) != 1 || byOrder[0].OrderNumber != orderNumber {
		t.Fatalf("unexpected order filter result: %+v", byOrder)
	}

	carrier := "UPS"
	byCarrier, err := svc.List(context.Background(), ListFilters{Carrier: &carrier})
	if err != nil {
		t.Fatalf("list by carrier: %v", err)
	}
	if len(byCarrier) != 1 || byCarrier[0].Carrier == nil || *byCarrier[0].Carrier != "UPS" {
		t.Fatalf("unexpected carrier filter result: %+v", byCarrier)
	}

	shipped := enums.DeliveryStatusShipped.String()
	byStatus, err := svc.List(context.Background(), ListFilters{Status: &shipped})
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if len(byStatus) != 1 || byStatus[0].Status != shipped {
		t.Fatalf("unexpected status filter result: %+v", byStatus)
	}

	productID := keyboard.ID
	byProduct, err := svc.List(context.Background(), ListFilters{ProductID: &productID})
	if err != nil {
		t.Fatalf("list by product: %v", err)
	}
	if len(byProduct) != 1 || byProduct[0].Product == nil || byProduct[0].Product.ID != keyboard.ID {
		t.Fatalf("unexpected product filter result: %+v", byProduct)
	}

	future := time.Now().UTC().Add(24 * time.Hour)
	none, err := svc.List(context.Background(), ListFilters{DateFrom: &future})
	if err != nil {
		t.Fatalf("list by date: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("date filter = %d deliveries, want 0", len(none))
	}
}

func TestSetOrderProductStatusCreatesBareDelivery(t *testing.T) {
	svc, conn := newTestService(t)
	order := seedOrder(t, conn, "ORD-20250314092653-000030")
	product := seedProduct(t, conn, "Monitor")

	dto, created, err := svc.SetOrderProductStatus(context.Background(), order.OrderNumber, product.ID, enums.DeliveryStatusProcessing)
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if !created {
		t.Fatal("expected a new delivery row")
	}
	if dto.Status != enums.DeliveryStatusProcessing.String() {
		t.Fatalf("status = %s, want processing", dto.Status)
	}
	if dto.Quantity != 1 {
		t.Fatalf("quantity = %d, want 1", dto.Quantity)
	}
	if dto.TrackingNumber != nil {
		t.Fatalf("tracking number = %v, want none", *dto.TrackingNumber)
	}
}

func TestSetOrderProductStatusUpdatesExisting(t *testing.T) {
	svc, conn := newTestService(t)
	order := seedOrder(t, conn, "ORD-20250314092653-000031")
	product := seedProduct(t, conn, "Desk")

	existing, err := svc.CreateForOrder(context.Background(), order.OrderNumber, createInput(product.ID))
	if err != nil {
		t.Fatalf("create delivery: %v", err)
	}

	dto, created, err := svc.SetOrderProductStatus(context.Background(), order.OrderNumber, product.ID, enums.DeliveryStatusCancelled)
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if created {
		t.Fatal("expected the existing delivery to be updated")
	}
	if dto.ID != existing.ID {
		t.Fatalf("delivery id = %d, want %d", dto.ID, existing.ID)
	}
	if dto.Status != enums.DeliveryStatusCancelled.String() {
		t.Fatalf("status = %s, want cancelled", dto.Status)
	}

	var count int64
	if err := conn.Model(&models.Delivery{}).Where("order_id = ?", order.ID).Count(&count).Error; err != nil {
		t.Fatalf("count deliveries: %v", err)
	}
	if count != 1 {
		t.Fatalf("deliveries = %d, want 1", count)
	}
}

func TestSetOrderProductStatusUnknownOrder(t *testing.T) {
	svc, conn := newTestService(t)
	product := seedProduct(t, conn, "Lamp")

	_, _, err := svc.SetOrderProductStatus(context.Background(), "ORD-00000000000000-000000", product.ID, enums.DeliveryStatusPending)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected CodeNotFound, got %v", err)
	}
}

func TestSetOrderProductStatusUnknownProduct(t *testing.T) {
	svc, conn := newTestService(t)
	order := seedOrder(t, conn, "ORD-20250314092653-000032")

	_, _, err := svc.SetOrderProductStatus(context.Background(), order.OrderNumber, 9999, enums.DeliveryStatusPending)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeProductNotFound {
		t.Fatalf("expected CodeProductNotFound, got %v", err)
	}
}
