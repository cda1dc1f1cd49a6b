package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rmartinelli/shopcart-backend/api/responses"
	"github.com/rmartinelli/shopcart-backend/api/validators"
	deliverysvc "github.com/rmartinelli/shopcart-backend/internal/deliveries"
	"github.com/rmartinelli/shopcart-backend/pkg/enums"
	pkgerrors "github.com/rmartinelli/shopcart-backend/pkg/errors"
	"github.com/rmartinelli/shopcart-backend/pkg/logger"
)

func ListDeliveries(svc deliverysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters := deliverysvc.ListFilters{
			OrderNumber: validators.QueryString(r, "order_number"),
			Status:      validators.QueryString(r, "status"),
			Carrier:     validators.QueryString(r, "carrier"),
		}

		productID, err := validators.QueryUint(r, "product_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters.ProductID = productID

		dateFrom, err := validators.QueryDate(r, "date_from", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters.DateFrom = dateFrom

		dateTo, err := validators.QueryDate(r, "date_to", true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters.DateTo = dateTo

		deliveries, err := svc.List(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, deliveries)
	}
}

func GetDelivery(svc deliverysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.URLParamUint(r, "deliveryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		delivery, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, delivery)
	}
}

func CreateDelivery(svc deliverysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload deliverysvc.CreateDeliveryInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		delivery, err := svc.CreateForOrder(r.Context(), chi.URLParam(r, "orderNumber"), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, delivery)
	}
}

func AddDeliveryEvent(svc deliverysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.URLParamUint(r, "deliveryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload deliverysvc.AddTrackingEventInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		delivery, err := svc.AddEvent(r.Context(), id, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, delivery)
	}
}

type productDeliveryStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateProductDeliveryStatus upserts the delivery status for one product of
// an order, identified by the order_number query parameter.
func UpdateProductDeliveryStatus(svc deliverysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.URLParamUint(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderNumber := validators.QueryString(r, "order_number")
		if orderNumber == nil || *orderNumber == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order_number is required"))
			return
		}

		var payload productDeliveryStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseDeliveryStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, err.Error()))
			return
		}

		delivery, created, err := svc.SetOrderProductStatus(r.Context(), *orderNumber, productID, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if created {
			responses.WriteSuccessStatus(w, http.StatusCreated, delivery)
			return
		}
		responses.WriteSuccess(w, delivery)
	}
}

func TrackDelivery(svc deliverysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tracked, err := svc.Track(r.Context(), chi.URLParam(r, "trackingNumber"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tracked)
	}
}
