package deliveries

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/rmartinelli/shopcart-backend/internal/orders"
	"github.com/rmartinelli/shopcart-backend/internal/products"
	"github.com/rmartinelli/shopcart-backend/pkg/db/models"
	"github.com/rmartinelli/shopcart-backend/pkg/enums"
	pkgerrors "github.com/rmartinelli/shopcart-backend/pkg/errors"
	"github.com/rmartinelli/shopcart-backend/pkg/logger"
)

const (
	initialEventStatus  = "created"
	initialEventDetails = "Shipment created"
	defaultLocation     = "Warehouse"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages shipments and their tracking history.
type Service interface {
	List(ctx context.Context, filters ListFilters) ([]DeliveryDTO, error)
	GetByID(ctx context.Context, id uint) (*DeliveryDTO, error)
	CreateForOrder(ctx context.Context, orderNumber string, input CreateDeliveryInput) (*DeliveryDTO, error)
	SetOrderProductStatus(ctx context.Context, orderNumber string, productID uint, status enums.DeliveryStatus) (*DeliveryDTO, bool, error)
	AddEvent(ctx context.Context, deliveryID uint, input AddTrackingEventInput) (*DeliveryDTO, error)
	Track(ctx context.Context, trackingNumber string) (*TrackingDTO, error)
}

type service struct {
	tx       txRunner
	repo     *Repository
	orders   *orders.Repository
	products *products.Repository
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the delivery service.
func NewService(
	tx txRunner,
	repo *Repository,
	orderRepo *orders.Repository,
	productRepo *products.Repository,
	logg *logger.Logger,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("deliveries repository required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	return &service{
		tx:       tx,
		repo:     repo,
		orders:   orderRepo,
		products: productRepo,
		logg:     logg,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) List(ctx context.Context, filters ListFilters) ([]DeliveryDTO, error) {
	records, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list deliveries")
	}
	dtos := make([]DeliveryDTO, 0, len(records))
	for i := range records {
		dto, err := s.decorate(ctx, &records[i])
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, *dto)
	}
	return dtos, nil
}

func (s *service) GetByID(ctx context.Context, id uint) (*DeliveryDTO, error) {
	delivery, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find delivery")
	}
	return s.decorate(ctx, delivery)
}

// CreateForOrder opens a shipment for one product of an order. The delivery
// row, its initial tracking event, and the optional order-status bump are
// written in one transaction. At most one delivery may exist per
// order/product pair.
func (s *service) CreateForOrder(ctx context.Context, orderNumber string, input CreateDeliveryInput) (*DeliveryDTO, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}
	status := enums.DeliveryStatusPending
	if input.Status != nil {
		parsed, err := enums.ParseDeliveryStatus(*input.Status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		status = parsed
	}

	order, err := s.orders.FindByNumber(ctx, strings.TrimSpace(orderNumber))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find order")
	}
	if _, err := s.products.FindByID(ctx, input.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeProductNotFound,
				fmt.Sprintf("product %d not found", input.ProductID))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find product")
	}

	exists, err := s.repo.ExistsForOrderProduct(ctx, order.ID, input.ProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing delivery")
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "delivery already exists for this order and product")
	}

	location := defaultLocation
	if input.Location != nil && strings.TrimSpace(*input.Location) != "" {
		location = *input.Location
	}

	var deliveryID uint
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		orderRepo := s.orders.WithTx(tx)

		carrier := input.Carrier
		trackingNumber := input.TrackingNumber
		delivery := &models.Delivery{
			OrderID:               order.ID,
			ProductID:             input.ProductID,
			Carrier:               &carrier,
			TrackingNumber:        &trackingNumber,
			EstimatedDeliveryDate: input.EstimatedDeliveryDate,
			Status:                status,
			Quantity:              input.Quantity,
			Notes:                 input.Notes,
		}
		if _, err := repo.Create(ctx, delivery); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create delivery")
		}
		deliveryID = delivery.ID

		details := initialEventDetails
		event := &models.DeliveryTrackingEvent{
			DeliveryID: delivery.ID,
			Status:     initialEventStatus,
			Location:   location,
			Timestamp:  s.now(),
			Details:    &details,
		}
		if _, err := repo.AddEvent(ctx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record initial tracking event")
		}

		if input.UpdateOrderStatus {
			updates := map[string]any{"order_status": enums.OrderStatusShipped.String()}
			if err := orderRepo.UpdateOrder(ctx, order.ID, updates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
			}
		}
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create delivery")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderNumber(ctx, order.OrderNumber), "delivery created")
	}
	return s.GetByID(ctx, deliveryID)
}

// SetOrderProductStatus upserts the delivery status for one product of an
// order: an existing delivery is moved to the status, otherwise a bare
// delivery row is created with it. Returns true when a row was created.
func (s *service) SetOrderProductStatus(ctx context.Context, orderNumber string, productID uint, status enums.DeliveryStatus) (*DeliveryDTO, bool, error) {
	order, err := s.orders.FindByNumber(ctx, strings.TrimSpace(orderNumber))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find order")
	}
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, pkgerrors.New(pkgerrors.CodeProductNotFound,
				fmt.Sprintf("product %d not found", productID))
		}
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find product")
	}

	delivery, err := s.repo.FindByOrderProduct(ctx, order.ID, productID)
	switch {
	case err == nil:
		if err := s.repo.UpdateStatus(ctx, delivery.ID, status.String()); err != nil {
			return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update delivery status")
		}
		dto, err := s.GetByID(ctx, delivery.ID)
		return dto, false, err

	case errors.Is(err, gorm.ErrRecordNotFound):
		created := &models.Delivery{
			OrderID:   order.ID,
			ProductID: productID,
			Status:    status,
			Quantity:  1,
		}
		if _, err := s.repo.Create(ctx, created); err != nil {
			return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create delivery")
		}
		dto, err := s.GetByID(ctx, created.ID)
		return dto, true, err

	default:
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find delivery")
	}
}

// AddEvent appends a tracking event, moves the delivery to the event's
// status, and propagates terminal statuses to the parent order.
func (s *service) AddEvent(ctx context.Context, deliveryID uint, input AddTrackingEventInput) (*DeliveryDTO, error) {
	status, err := enums.ParseDeliveryStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if strings.TrimSpace(input.Location) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location is required")
	}

	delivery, err := s.repo.FindByID(ctx, deliveryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find delivery")
	}

	timestamp := s.now()
	if input.Timestamp != nil {
		timestamp = *input.Timestamp
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		orderRepo := s.orders.WithTx(tx)

		event := &models.DeliveryTrackingEvent{
			DeliveryID: delivery.ID,
			Status:     status.String(),
			Location:   input.Location,
			Timestamp:  timestamp,
			Details:    input.Details,
		}
		if _, err := repo.AddEvent(ctx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record tracking event")
		}
		if err := repo.UpdateStatus(ctx, delivery.ID, status.String()); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update delivery status")
		}
		if orderStatus, ok := statusForOrder(status); ok {
			updates := map[string]any{"order_status": orderStatus.String()}
			if err := orderRepo.UpdateOrder(ctx, delivery.OrderID, updates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "propagate order status")
			}
		}
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add tracking event")
	}

	return s.GetByID(ctx, deliveryID)
}

// Track serves the public tracking view for a carrier tracking number.
func (s *service) Track(ctx context.Context, trackingNumber string) (*TrackingDTO, error) {
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tracking number required")
	}
	delivery, err := s.repo.FindByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tracking number not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find delivery")
	}
	order, product, err := s.context(ctx, delivery)
	if err != nil {
		return nil, err
	}
	return TrackingFromModel(delivery, order, product), nil
}

func (s *service) decorate(ctx context.Context, delivery *models.Delivery) (*DeliveryDTO, error) {
	order, product, err := s.context(ctx, delivery)
	if err != nil {
		return nil, err
	}
	return FromModel(delivery, order, product), nil
}

// context loads the order and product a delivery references. Either may be
// gone; the view degrades instead of failing.
func (s *service) context(ctx context.Context, delivery *models.Delivery) (*models.Order, *models.Product, error) {
	order, err := s.orders.FindByID(ctx, delivery.OrderID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery order")
	}
	product, err := s.products.FindByID(ctx, delivery.ProductID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery product")
	}
	return order, product, nil
}

func validateCreate(input CreateDeliveryInput) error {
	switch {
	case input.ProductID == 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "product_id is required")
	case strings.TrimSpace(input.Carrier) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "carrier is required")
	case strings.TrimSpace(input.TrackingNumber) == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "tracking_number is required")
	case input.Quantity <= 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive number")
	}
	return nil
}
