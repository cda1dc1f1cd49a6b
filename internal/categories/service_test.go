package categories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rmartinelli/shopcart-backend/pkg/db/models"
	pkgerrors "github.com/rmartinelli/shopcart-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := "file:categories_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Category{}, &models.Product{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	svc, err := NewService(NewRepository(conn))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, conn
}

func TestListDecoratesCountsAndIcons(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	categories := []models.Category{
		{Name: "Electronics", Icon: "?"},
		{Name: "Fashion"},
		{Name: "Books", Icon: "📚"},
		{Name: "Misc"},
	}
	for i := range categories {
		if err := conn.Create(&categories[i]).Error; err != nil {
			t.Fatalf("seed category: %v", err)
		}
	}
	for i := 0; i < 3; i++ {
		product := models.Product{
			Name:       "Gadget",
			Price:      decimal.RequireFromString("9.99"),
			CategoryID: categories[0].ID,
			InStock:    true,
			StockCount: 1,
		}
		if err := conn.Create(&product).Error; err != nil {
			t.Fatalf("seed product: %v", err)
		}
	}

	listed, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(listed) != 4 {
		t.Fatalf("expected 4 categories, got %d", len(listed))
	}

	byName := map[string]CategoryDTO{}
	for _, dto := range listed {
		byName[dto.Name] = dto
	}

	if byName["Electronics"].ProductCount != 3 {
		t.Fatalf("expected product_count 3, got %d", byName["Electronics"].ProductCount)
	}
	if byName["Electronics"].Icon != "📱" {
		t.Fatalf("expected electronics default icon, got %q", byName["Electronics"].Icon)
	}
	if byName["Fashion"].Icon != "👗" {
		t.Fatalf("expected fashion default icon, got %q", byName["Fashion"].Icon)
	}
	if byName["Books"].Icon != "📚" {
		t.Fatalf("stored icon should be kept, got %q", byName["Books"].Icon)
	}
	if byName["Misc"].Icon != "🛒" {
		t.Fatalf("expected fallback icon, got %q", byName["Misc"].Icon)
	}
}

func TestCreateDefaultsIcon(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(context.Background(), CreateCategoryInput{Name: "  Garden  "})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.Name != "Garden" {
		t.Fatalf("name should be trimmed, got %q", created.Name)
	}
	if created.Icon != "🛒" {
		t.Fatalf("expected fallback icon, got %q", created.Icon)
	}
}

func TestCreateRequiresName(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), CreateCategoryInput{Name: "   "})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected CodeValidation, got %v", err)
	}
}

func TestDeleteRefusedWhileReferenced(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	category := models.Category{Name: "Busy"}
	if err := conn.Create(&category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	product := models.Product{
		Name:       "Occupies",
		Price:      decimal.RequireFromString("1.00"),
		CategoryID: category.ID,
		InStock:    true,
		StockCount: 1,
	}
	if err := conn.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}

	err := svc.Delete(ctx, category.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CodeConflict, got %v", err)
	}

	if err := conn.Delete(&product).Error; err != nil {
		t.Fatalf("remove product: %v", err)
	}
	if err := svc.Delete(ctx, category.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
}

func TestGetMissingCategory(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Get(context.Background(), 42)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected CodeNotFound, got %v", err)
	}
}
