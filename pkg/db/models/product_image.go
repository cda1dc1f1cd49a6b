package models

// ProductImage stores one attachment URL for a product gallery.
type ProductImage struct {
	ID        uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ProductID uint   `gorm:"column:product_id;not null;index" json:"product_id"`
	ImageURL  string `gorm:"column:image_url;not null" json:"image_url"`
	IsPrimary bool   `gorm:"column:is_primary;not null;default:false" json:"is_primary"`
}
