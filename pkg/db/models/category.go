package models

// Category groups products for browsing and filtering.
type Category struct {
	ID          uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"column:name;not null" json:"name"`
	Description string `gorm:"column:description" json:"description"`
	Image       string `gorm:"column:image" json:"image"`
	Icon        string `gorm:"column:icon" json:"icon"`
}
