package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rmartinelli/shopcart-backend/pkg/enums"
)

// Payment records one payment attempt against an order. The first row is
// created together with the order in the placement transaction.
type Payment struct {
	ID            uint                `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrderID       uint                `gorm:"column:order_id;not null;index" json:"order_id"`
	Amount        decimal.Decimal     `gorm:"column:amount;type:decimal(10,2);not null" json:"amount"`
	PaymentMethod string              `gorm:"column:payment_method;not null" json:"payment_method"`
	TransactionID *string             `gorm:"column:transaction_id" json:"transaction_id,omitempty"`
	Status        enums.PaymentStatus `gorm:"column:status;type:varchar(32);not null;default:'pending'" json:"status"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
