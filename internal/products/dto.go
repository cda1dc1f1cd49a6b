package products

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rmartinelli/shopcart-backend/pkg/db/models"
)

// ProductImageDTO is one gallery entry.
type ProductImageDTO struct {
	ID        uint   `json:"id"`
	ImageURL  string `json:"image_url"`
	IsPrimary bool   `json:"is_primary"`
}

// ProductDTO is the transport shape for a product, decorated with its
// category name and gallery.
type ProductDTO struct {
	ID              uint              `json:"id"`
	Name            string            `json:"name"`
	SKU             *string           `json:"sku,omitempty"`
	Price           decimal.Decimal   `json:"price"`
	Image           *string           `json:"image"`
	CategoryID      uint              `json:"category_id"`
	CategoryName    string            `json:"category_name,omitempty"`
	Description     string            `json:"description"`
	FullDescription *string           `json:"full_description,omitempty"`
	Specifications  *string           `json:"specifications,omitempty"`
	Rating          *float64          `json:"rating,omitempty"`
	InStock         bool              `json:"in_stock"`
	StockCount      int               `json:"stock_count"`
	Images          []ProductImageDTO `json:"images"`
	CreatedAt       time.Time         `json:"created_at"`
}

// FromModel converts a product model into its transport shape.
func FromModel(p *models.Product, categoryName string) *ProductDTO {
	if p == nil {
		return nil
	}
	images := make([]ProductImageDTO, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, ProductImageDTO{
			ID:        img.ID,
			ImageURL:  img.ImageURL,
			IsPrimary: img.IsPrimary,
		})
	}
	return &ProductDTO{
		ID:              p.ID,
		Name:            p.Name,
		SKU:             p.SKU,
		Price:           p.Price,
		Image:           p.Image,
		CategoryID:      p.CategoryID,
		CategoryName:    categoryName,
		Description:     p.Description,
		FullDescription: p.FullDescription,
		Specifications:  p.Specifications,
		Rating:          p.Rating,
		InStock:         p.InStock,
		StockCount:      p.StockCount,
		Images:          images,
		CreatedAt:       p.CreatedAt,
	}
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name            string
	SKU             *string
	Price           decimal.Decimal
	CategoryID      uint
	Description     string
	FullDescription *string
	Specifications  *string
	Rating          *float64
	StockCount      int
	Images          []ImageUpload
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name            *string
	SKU             *string
	Price           *decimal.Decimal
	CategoryID      *uint
	Description     *string
	FullDescription *string
	Specifications  *string
	Rating          *float64
	StockCount      *int
	ReplaceImages   []ImageUpload
}

// buildUpdates maps the fixed set of optional fields onto column bindings.
func buildUpdates(input UpdateProductInput) map[string]any {
	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.SKU != nil {
		updates["sku"] = *input.SKU
	}
	if input.Price != nil {
		updates["price"] = *input.Price
	}
	if input.CategoryID != nil {
		updates["category_id"] = *input.CategoryID
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.FullDescription != nil {
		updates["full_description"] = *input.FullDescription
	}
	if input.Specifications != nil {
		updates["specifications"] = *input.Specifications
	}
	if input.Rating != nil {
		updates["rating"] = *input.Rating
	}
	if input.StockCount != nil {
		updates["stock_count"] = *input.StockCount
		updates["in_stock"] = *input.StockCount > 0
	}
	return updates
}

// CheckStockItem is one requested product/quantity pair.
type CheckStockItem struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,gt=0"`
}

// StockShortage reports a product that cannot satisfy the requested quantity.
type StockShortage struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// CheckStockResult is the bulk availability report.
type CheckStockResult struct {
	Available  bool            `json:"available"`
	Products   []ProductDTO    `json:"products"`
	MissingIDs []uint          `json:"missing_ids"`
	OutOfStock []StockShortage `json:"out_of_stock"`
}
