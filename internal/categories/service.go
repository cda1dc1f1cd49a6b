package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/rmartinelli/shopcart-backend/pkg/db/models"
	pkgerrors "github.com/rmartinelli/shopcart-backend/pkg/errors"
)

const fallbackIcon = "🛒"

// Icons assigned by category name when no usable icon is stored.
var defaultIcons = map[string]string{
	"electronics": "📱",
	"fashion":     "👗",
	"home":        "🏠",
}

// CategoryDTO is the transport shape for a category, decorated with its
// product count.
type CategoryDTO struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Image        string `json:"image"`
	Icon         string `json:"icon"`
	ProductCount int64  `json:"product_count"`
}

// CreateCategoryInput holds the validated payload to create a category.
type CreateCategoryInput struct {
	Name        string
	Description string
	Image       string
	Icon        string
}

// UpdateCategoryInput holds optional mutation values for a category.
type UpdateCategoryInput struct {
	Name        *string
	Description *string
	Image       *string
	Icon        *string
}

// Service exposes category management operations.
type Service interface {
	List(ctx context.Context) ([]CategoryDTO, error)
	Get(ctx context.Context, id uint) (*CategoryDTO, error)
	Create(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error)
	Update(ctx context.Context, id uint, input UpdateCategoryInput) (*CategoryDTO, error)
	Delete(ctx context.Context, id uint) error
}

type service struct {
	repo *Repository
}

// NewService constructs a category service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]CategoryDTO, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	counts, err := s.repo.ProductCounts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products")
	}

	dtos := make([]CategoryDTO, 0, len(records))
	for _, category := range records {
		dtos = append(dtos, toDTO(&category, counts[category.ID]))
	}
	return dtos, nil
}

func (s *service) Get(ctx context.Context, id uint) (*CategoryDTO, error) {
	category, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.ProductCounts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products")
	}
	dto := toDTO(category, counts[category.ID])
	return &dto, nil
}

func (s *service) Create(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name required")
	}

	icon := strings.TrimSpace(input.Icon)
	if icon == "" {
		icon = fallbackIcon
	}
	category := &models.Category{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Image:       strings.TrimSpace(input.Image),
		Icon:        icon,
	}
	created, err := s.repo.Create(ctx, category)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	dto := toDTO(created, 0)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uint, input UpdateCategoryInput) (*CategoryDTO, error) {
	if _, err := s.findByID(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name required")
		}
		updates["name"] = name
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.Image != nil {
		updates["image"] = strings.TrimSpace(*input.Image)
	}
	if input.Icon != nil {
		updates["icon"] = strings.TrimSpace(*input.Icon)
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update category")
		}
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uint) error {
	if _, err := s.findByID(ctx, id); err != nil {
		return err
	}
	referenced, err := s.repo.ReferencedByProducts(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check category references")
	}
	if referenced {
		return pkgerrors.New(pkgerrors.CodeConflict, "category still has products")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
	}
	return nil
}

func (s *service) findByID(ctx context.Context, id uint) (*models.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find category")
	}
	return category, nil
}

func toDTO(category *models.Category, productCount int64) CategoryDTO {
	return CategoryDTO{
		ID:           category.ID,
		Name:         category.Name,
		Description:  category.Description,
		Image:        category.Image,
		Icon:         effectiveIcon(category),
		ProductCount: productCount,
	}
}

// effectiveIcon falls back to a name-based default when the stored icon is
// empty or a mojibake placeholder.
func effectiveIcon(category *models.Category) string {
	icon := strings.TrimSpace(category.Icon)
	if icon != "" && icon != "?" && icon != "????" {
		return icon
	}
	if def, ok := defaultIcons[strings.ToLower(category.Name)]; ok {
		return def
	}
	return fallbackIcon
}
