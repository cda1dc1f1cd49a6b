package deliveries

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/rmartinelli/shopcart-backend/pkg/db/models"
)

// Repository is the persistence layer for deliveries and their tracking
// events.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// ListFilters narrows the delivery listing.
type ListFilters struct {
	OrderNumber *string
	Status      *string
	Carrier     *string
	ProductID   *uint
	DateFrom    *time.Time
	DateTo      *time.Time
}

func withEvents(query *gorm.DB) *gorm.DB {
	return query.Preload("TrackingEvents", func(db *gorm.DB) *gorm.DB {
		return db.Order("timestamp DESC")
	})
}

// List returns deliveries matching the filters, newest first, with tracking
// events preloaded.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]models.Delivery, error) {
	query := withEvents(r.db.WithContext(ctx).Model(&models.Delivery{}))
	if filters.OrderNumber != nil {
		query = query.
			Joins("JOIN orders ON orders.id = deliveries.order_id").
			Where("orders.order_number = ?", *filters.OrderNumber)
	}
	if filters.Status != nil {
		query = query.Where("deliveries.status = ?", *filters.Status)
	}
	if filters.Carrier != nil {
		query = query.Where("deliveries.carrier = ?", *filters.Carrier)
	}
	if filters.ProductID != nil {
		query = query.Where("deliveries.product_id = ?", *filters.ProductID)
	}
	if filters.DateFrom != nil {
		query = query.Where("deliveries.created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("deliveries.created_at <= ?", *filters.DateTo)
	}

	var records []models.Delivery
	if err := query.Order("deliveries.created_at DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *Repository) FindByID(ctx context.Context, id uint) (*models.Delivery, error) {
	var delivery models.Delivery
	err := withEvents(r.db.WithContext(ctx)).First(&delivery, id).Error
	if err != nil {
		return nil, err
	}
	return &delivery, nil
}

func (r *Repository) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Delivery, error) {
	var delivery models.Delivery
	err := withEvents(r.db.WithContext(ctx)).
		Where("tracking_number = ?", trackingNumber).
		First(&delivery).Error
	if err != nil {
		return nil, err
	}
	return &delivery, nil
}

// FindByOrderProduct loads the delivery covering one order and product pair.
func (r *Repository) FindByOrderProduct(ctx context.Context, orderID, productID uint) (*models.Delivery, error) {
	var delivery models.Delivery
	err := withEvents(r.db.WithContext(ctx)).
		Where("order_id = ? AND product_id = ?", orderID, productID).
		First(&delivery).Error
	if err != nil {
		return nil, err
	}
	return &delivery, nil
}

// ExistsForOrderProduct reports whether a delivery already covers the given
// order and product pair.
func (r *Repository) ExistsForOrderProduct(ctx context.Context, orderID, productID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Delivery{}).
		Where("order_id = ? AND product_id = ?", orderID, productID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) Create(ctx context.Context, delivery *models.Delivery) (*models.Delivery, error) {
	if err := r.db.WithContext(ctx).Create(delivery).Error; err != nil {
		return nil, err
	}
	return delivery, nil
}

func (r *Repository) AddEvent(ctx context.Context, event *models.DeliveryTrackingEvent) (*models.DeliveryTrackingEvent, error) {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

// UpdateStatus moves the delivery to the given status.
func (r *Repository) UpdateStatus(ctx context.Context, deliveryID uint, status string) error {
	return r.db.WithContext(ctx).
		Model(&models.Delivery{}).
		Where("id = ?", deliveryID).
		Update("status", status).Error
}
