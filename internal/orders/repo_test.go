package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rmartinelli/shopcart-backend/pkg/db/models"
	"github.com/rmartinelli/shopcart-backend/pkg/enums"
)

func setupRepoTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:orders_repo_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.Coupon{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
	))
	return conn
}

func insertOrder(t *testing.T, repo *Repository, number, email string, status enums.OrderStatus, createdAt time.Time) *models.Order {
	t.Helper()

	order, err := repo.CreateOrder(context.Background(), &models.Order{
		OrderNumber:     number,
		CustomerName:    "Repo Tester",
		CustomerEmail:   email,
		ShippingAddress: "1 Test Lane",
		ShippingCity:    "Testville",
		ShippingState:   "TS",
		ShippingCountry: "TS",
		ShippingZipCode: "00000",
		DeliveryMethod:  "standard",
		PaymentMethod:   "credit_card",
		Subtotal:        decimal.RequireFromString("100.00"),
		TotalAmount:     decimal.RequireFromString("115.00"),
		PaymentStatus:   enums.OrderPaymentStatusPending,
		OrderStatus:     status,
	})
	require.NoError(t, err)
	require.NoError(t, repo.db.Model(&models.Order{}).Where("id = ?", order.ID).Update("created_at", createdAt).Error)
	return order
}

func TestRepositoryListFilters(t *testing.T) {
	conn := setupRepoTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	insertOrder(t, repo, "ORD-20250601120000-000001", "a@example.com", enums.OrderStatusPending, base)
	insertOrder(t, repo, "ORD-20250602120000-000002", "b@example.com", enums.OrderStatusShipped, base.AddDate(0, 0, 1))
	insertOrder(t, repo, "ORD-20250603120000-000003", "a@example.com", enums.OrderStatusDelivered, base.AddDate(0, 0, 2))

	all, err := repo.List(ctx, ListFilters{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "ORD-20250603120000-000003", all[0].OrderNumber, "newest first")

	shipped := enums.OrderStatusShipped
	byStatus, err := repo.List(ctx, ListFilters{Status: &shipped})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "b@example.com", byStatus[0].CustomerEmail)

	email := "a@example.com"
	byEmail, err := repo.List(ctx, ListFilters{CustomerEmail: &email})
	require.NoError(t, err)
	assert.Len(t, byEmail, 2)

	from := base.AddDate(0, 0, 1)
	to := base.AddDate(0, 0, 1)
	byDate, err := repo.List(ctx, ListFilters{DateFrom: &from, DateTo: &to})
	require.NoError(t, err)
	require.Len(t, byDate, 1)
	assert.Equal(t, "ORD-20250602120000-000002", byDate[0].OrderNumber)
}

func TestRepositoryFindByNumberPreloads(t *testing.T) {
	conn := setupRepoTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	order := insertOrder(t, repo, "ORD-20250601120000-000009", "c@example.com", enums.OrderStatusPending, time.Now().UTC())
	name := "Widget"
	require.NoError(t, repo.CreateOrderItems(ctx, []models.OrderItem{{
		OrderID:     order.ID,
		ProductID:   7,
		ProductName: &name,
		Quantity:    2,
		UnitPrice:   decimal.RequireFromString("50.00"),
		TotalPrice:  decimal.RequireFromString("100.00"),
		Status:      enums.OrderItemStatusPending,
	}}))
	_, err := repo.CreatePayment(ctx, &models.Payment{
		OrderID:       order.ID,
		Amount:        decimal.RequireFromString("115.00"),
		PaymentMethod: "credit_card",
		Status:        enums.PaymentStatusPending,
	})
	require.NoError(t, err)

	loaded, err := repo.FindByNumber(ctx, "ORD-20250601120000-000009")
	require.NoError(t, err)
	assert.Len(t, loaded.Items, 1)
	assert.Len(t, loaded.Payments, 1)

	_, err = repo.FindByNumber(ctx, "ORD-00000000000000-000000")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositorySumCompletedPayments(t *testing.T) {
	conn := setupRepoTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	order := insertOrder(t, repo, "ORD-20250601120000-000010", "d@example.com", enums.OrderStatusPending, time.Now().UTC())

	total, err := repo.SumCompletedPayments(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, total.IsZero(), "no payments yet")

	for _, p := range []struct {
		amount string
		status enums.PaymentStatus
	}{
		{"50.00", enums.PaymentStatusCompleted},
		{"25.50", enums.PaymentStatusCompleted},
		{"10.00", enums.PaymentStatusPending},
		{"99.00", enums.PaymentStatusFailed},
	} {
		_, err := repo.CreatePayment(ctx, &models.Payment{
			OrderID:       order.ID,
			Amount:        decimal.RequireFromString(p.amount),
			PaymentMethod: "credit_card",
			Status:        p.status,
		})
		require.NoError(t, err)
	}

	total, err = repo.SumCompletedPayments(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("75.50")), "got %s", total)
}

func TestRepositoryItemStatusRoundTrip(t *testing.T) {
	conn := setupRepoTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	order := insertOrder(t, repo, "ORD-20250601120000-000011", "e@example.com", enums.OrderStatusPending, time.Now().UTC())
	require.NoError(t, repo.CreateOrderItems(ctx, []models.OrderItem{
		{OrderID: order.ID, ProductID: 1, Quantity: 1, UnitPrice: decimal.RequireFromString("10.00"), TotalPrice: decimal.RequireFromString("10.00"), Status: enums.OrderItemStatusPending},
		{OrderID: order.ID, ProductID: 2, Quantity: 1, UnitPrice: decimal.RequireFromString("20.00"), TotalPrice: decimal.RequireFromString("20.00"), Status: enums.OrderItemStatusPending},
	}))

	items, err := repo.ListItems(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.NoError(t, repo.UpdateItemStatus(ctx, items[0].ID, enums.OrderItemStatusShipped))

	item, err := repo.FindItem(ctx, order.ID, items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderItemStatusShipped, item.Status)

	_, err = repo.FindItem(ctx, order.ID, items[1].ID+100)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryFindCouponSummary(t *testing.T) {
	conn := setupRepoTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	coupon := models.Coupon{
		Code:          "REPO10",
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: decimal.RequireFromString("10"),
		IsActive:      true,
		StartDate:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, conn.Create(&coupon).Error)

	summary, err := repo.FindCouponSummary(ctx, coupon.ID)
	require.NoError(t, err)
	assert.Equal(t, "REPO10", summary.Code)
	assert.Equal(t, coupon.ID, summary.ID)

	_, err = repo.FindCouponSummary(ctx, coupon.ID+99)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
