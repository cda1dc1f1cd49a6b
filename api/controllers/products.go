package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rmartinelli/shopcart-backend/api/responses"
	"github.com/rmartinelli/shopcart-backend/api/validators"
	productsvc "github.com/rmartinelli/shopcart-backend/internal/products"
	pkgerrors "github.com/rmartinelli/shopcart-backend/pkg/errors"
	"github.com/rmartinelli/shopcart-backend/pkg/logger"
)

// Product create/update payloads arrive as multipart forms so image files
// can ride along with the scalar fields.
const maxMultipartMemory = 32 << 20

func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, err := productFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		products, err := svc.List(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.URLParamUint(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func CreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}

		input, err := parseCreateProductForm(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), *input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

func UpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.URLParamUint(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}

		input, err := parseUpdateProductForm(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), id, *input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

func DeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.URLParamUint(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "product deleted"})
	}
}

type checkStockRequest struct {
	Items []productsvc.CheckStockItem `json:"items" validate:"required,min=1,dive"`
}

func CheckStock(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload checkStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CheckStock(r.Context(), payload.Items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func productFilters(r *http.Request) (productsvc.ListFilters, error) {
	filters := productsvc.ListFilters{}

	categoryID, err := validators.QueryUint(r, "category")
	if err != nil {
		return filters, err
	}
	filters.CategoryID = categoryID

	minPrice, err := validators.QueryDecimal(r, "min_price")
	if err != nil {
		return filters, err
	}
	filters.MinPrice = minPrice

	maxPrice, err := validators.QueryDecimal(r, "max_price")
	if err != nil {
		return filters, err
	}
	filters.MaxPrice = maxPrice

	if sort := validators.QueryString(r, "sort"); sort != nil {
		filters.Sort = *sort
	}
	return filters, nil
}

func parseCreateProductForm(r *http.Request) (*productsvc.CreateProductInput, error) {
	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	price, err := formDecimal(r, "price", true)
	if err != nil {
		return nil, err
	}

	categoryID, err := formUint(r, "category_id", true)
	if err != nil {
		return nil, err
	}

	stockCount := 0
	if raw := strings.TrimSpace(r.FormValue("stock_count")); raw != "" {
		parsed, err := formInt(r, "stock_count")
		if err != nil {
			return nil, err
		}
		stockCount = parsed
	}

	rating, err := formFloat(r, "rating")
	if err != nil {
		return nil, err
	}

	input := &productsvc.CreateProductInput{
		Name:        name,
		Price:       *price,
		CategoryID:  *categoryID,
		Description: r.FormValue("description"),
		StockCount:  stockCount,
		Rating:      rating,
		Images:      formImages(r),
	}
	if sku := strings.TrimSpace(r.FormValue("sku")); sku != "" {
		input.SKU = &sku
	}
	if full := r.FormValue("full_description"); full != "" {
		input.FullDescription = &full
	}
	if specs := r.FormValue("specifications"); specs != "" {
		input.Specifications = &specs
	}
	return input, nil
}

func parseUpdateProductForm(r *http.Request) (*productsvc.UpdateProductInput, error) {
	input := &productsvc.UpdateProductInput{}

	if raw := strings.TrimSpace(r.FormValue("name")); raw != "" {
		input.Name = &raw
	}
	if raw := strings.TrimSpace(r.FormValue("sku")); raw != "" {
		input.SKU = &raw
	}
	if raw := r.FormValue("description"); raw != "" {
		input.Description = &raw
	}
	if raw := r.FormValue("full_description"); raw != "" {
		input.FullDescription = &raw
	}
	if raw := r.FormValue("specifications"); raw != "" {
		input.Specifications = &raw
	}

	price, err := formDecimal(r, "price", false)
	if err != nil {
		return nil, err
	}
	input.Price = price

	categoryID, err := formUint(r, "category_id", false)
	if err != nil {
		return nil, err
	}
	input.CategoryID = categoryID

	if raw := strings.TrimSpace(r.FormValue("stock_count")); raw != "" {
		parsed, err := formInt(r, "stock_count")
		if err != nil {
			return nil, err
		}
		input.StockCount = &parsed
	}

	rating, err := formFloat(r, "rating")
	if err != nil {
		return nil, err
	}
	input.Rating = rating

	input.ReplaceImages = formImages(r)
	return input, nil
}

func formDecimal(r *http.Request, field string, required bool) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" {
		if required {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, field+" is required")
		}
		return nil, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeFormat, field+" must be a decimal number").WithDetails(map[string]any{"field": field})
	}
	return &value, nil
}

func formUint(r *http.Request, field string, required bool) (*uint, error) {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" {
		if required {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, field+" is required")
		}
		return nil, nil
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeFormat, field+" must be a positive integer").WithDetails(map[string]any{"field": field})
	}
	id := uint(value)
	return &id, nil
}

func formInt(r *http.Request, field string) (int, error) {
	raw := strings.TrimSpace(r.FormValue(field))
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeFormat, field+" must be an integer").WithDetails(map[string]any{"field": field})
	}
	return value, nil
}

func formFloat(r *http.Request, field string) (*float64, error) {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeFormat, field+" must be a number").WithDetails(map[string]any{"field": field})
	}
	return &value, nil
}

func formImages(r *http.Request) []productsvc.ImageUpload {
	if r.MultipartForm == nil {
		return nil
	}
	files := r.MultipartForm.File["images"]
	uploads := make([]productsvc.ImageUpload, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			continue
		}
		uploads = append(uploads, productsvc.ImageUpload{Filename: header.Filename, Reader: file})
	}
	return uploads
}
