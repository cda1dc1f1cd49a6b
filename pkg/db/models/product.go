package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the canonical catalog listing. Price is the authoritative unit
// price; submitted cart prices are only ever cross-checked against it.
type Product struct {
	ID              uint            `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name            string          `gorm:"column:name;not null" json:"name"`
	SKU             *string         `gorm:"column:sku" json:"sku,omitempty"`
	Price           decimal.Decimal `gorm:"column:price;type:decimal(10,2);not null" json:"price"`
	Image           *string         `gorm:"column:image" json:"image"`
	CategoryID      uint            `gorm:"column:category_id;not null" json:"category_id"`
	Description     string          `gorm:"column:description" json:"description"`
	FullDescription *string         `gorm:"column:full_description" json:"full_description,omitempty"`
	Specifications  *string         `gorm:"column:specifications;type:text" json:"specifications,omitempty"`
	Rating          *float64        `gorm:"column:rating;type:decimal(3,1)" json:"rating,omitempty"`
	InStock         bool            `gorm:"column:in_stock;not null" json:"in_stock"`
	StockCount      int             `gorm:"column:stock_count;not null;default:0" json:"stock_count"`
	Images          []ProductImage  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
