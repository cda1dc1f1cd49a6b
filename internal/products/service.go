package products

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gorm.io/gorm"

	"github.com/rmartinelli/shopcart-backend/pkg/db/models"
	pkgerrors "github.com/rmartinelli/shopcart-backend/pkg/errors"
	"github.com/rmartinelli/shopcart-backend/pkg/logger"
)

// ImageUpload is one incoming file from a multipart form.
type ImageUpload struct {
	Filename string
	Reader   io.Reader
}

// ImageStore abstracts where uploaded product images end up.
type ImageStore interface {
	Save(original string, src io.Reader) (name string, publicURL string, err error)
	Remove(name string) error
}

type categoryNamer interface {
	NamesByID(ctx context.Context) (map[uint]string, error)
}

// Service exposes catalog management operations.
type Service interface {
	List(ctx context.Context, filters ListFilters) ([]ProductDTO, error)
	Get(ctx context.Context, id uint) (*ProductDTO, error)
	Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	Update(ctx context.Context, id uint, input UpdateProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, id uint) error
	CheckStock(ctx context.Context, items []CheckStockItem) (*CheckStockResult, error)
}

type service struct {
	repo       *Repository
	images     ImageStore
	categories categoryNamer
	logg       *logger.Logger
}

// NewService constructs a product service instance.
func NewService(repo *Repository, images ImageStore, categories categoryNamer, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if images == nil {
		return nil, fmt.Errorf("image store required")
	}
	if categories == nil {
		return nil, fmt.Errorf("category reader required")
	}
	return &service{repo: repo, images: images, categories: categories, logg: logg}, nil
}

func (s *service) List(ctx context.Context, filters ListFilters) ([]ProductDTO, error) {
	records, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	names, err := s.categories.NamesByID(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category names")
	}

	dtos := make([]ProductDTO, 0, len(records))
	for i := range records {
		dtos = append(dtos, *FromModel(&records[i], names[records[i].CategoryID]))
	}
	return dtos, nil
}

func (s *service) Get(ctx context.Context, id uint) (*ProductDTO, error) {
	product, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	names, err := s.categories.NamesByID(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category names")
	}
	return FromModel(product, names[product.CategoryID]), nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	if input.Price.Sign() < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if input.CategoryID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id required")
	}
	if input.StockCount < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock count must not be negative")
	}

	stored, err := s.saveUploads(ctx, input.Images)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:            input.Name,
		SKU:             input.SKU,
		Price:           input.Price,
		CategoryID:      input.CategoryID,
		Description:     input.Description,
		FullDescription: input.FullDescription,
		Specifications:  input.Specifications,
		Rating:          input.Rating,
		InStock:         input.StockCount > 0,
		StockCount:      input.StockCount,
	}
	for i, file := range stored {
		if i == 0 {
			url := file.url
			product.Image = &url
		}
		product.Images = append(product.Images, models.ProductImage{
			ImageURL:  file.url,
			IsPrimary: i == 0,
		})
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		s.removeStored(ctx, stored)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return FromModel(created, ""), nil
}

func (s *service) Update(ctx context.Context, id uint, input UpdateProductInput) (*ProductDTO, error) {
	if input.Price != nil && input.Price.Sign() < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if input.StockCount != nil && *input.StockCount < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock count must not be negative")
	}

	existing, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := buildUpdates(input)

	var stored []storedUpload
	if len(input.ReplaceImages) > 0 {
		stored, err = s.saveUploads(ctx, input.ReplaceImages)
		if err != nil {
			return nil, err
		}
		updates["image"] = stored[0].url
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			s.removeStored(ctx, stored)
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
		}
	}

	if len(stored) > 0 {
		for _, img := range existing.Images {
			s.removeByURL(ctx, img.ImageURL)
		}
		if err := s.repo.DeleteImages(ctx, id); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace product images")
		}
		images := make([]models.ProductImage, 0, len(stored))
		for i, file := range stored {
			images = append(images, models.ProductImage{
				ProductID: id,
				ImageURL:  file.url,
				IsPrimary: i == 0,
			})
		}
		if err := s.repo.AddImages(ctx, images); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace product images")
		}
	}

	updated, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	names, err := s.categories.NamesByID(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category names")
	}
	return FromModel(updated, names[updated.CategoryID]), nil
}

func (s *service) Delete(ctx context.Context, id uint) error {
	product, err := s.findByID(ctx, id)
	if err != nil {
		return err
	}

	for _, img := range product.Images {
		s.removeByURL(ctx, img.ImageURL)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func (s *service) CheckStock(ctx context.Context, items []CheckStockItem) (*CheckStockResult, error) {
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "items list required")
	}
	requested := map[uint]int{}
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		if item.ProductID == 0 || item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "each item needs a product id and positive quantity")
		}
		if _, seen := requested[item.ProductID]; !seen {
			ids = append(ids, item.ProductID)
		}
		requested[item.ProductID] += item.Quantity
	}

	records, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}

	found := map[uint]*models.Product{}
	for i := range records {
		found[records[i].ID] = &records[i]
	}

	result := &CheckStockResult{Available: true}
	for _, id := range ids {
		product, ok := found[id]
		if !ok {
			result.MissingIDs = append(result.MissingIDs, id)
			result.Available = false
			continue
		}
		result.Products = append(result.Products, *FromModel(product, ""))
		if product.StockCount < requested[id] {
			result.OutOfStock = append(result.OutOfStock, StockShortage{
				ProductID: id,
				Name:      product.Name,
				Requested: requested[id],
				Available: product.StockCount,
			})
			result.Available = false
		}
	}
	return result, nil
}

type storedUpload struct {
	name string
	url  string
}

func (s *service) saveUploads(ctx context.Context, uploads []ImageUpload) ([]storedUpload, error) {
	stored := make([]storedUpload, 0, len(uploads))
	for _, upload := range uploads {
		name, url, err := s.images.Save(upload.Filename, upload.Reader)
		if err != nil {
			s.removeStored(ctx, stored)
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "store product image")
		}
		stored = append(stored, storedUpload{name: name, url: url})
	}
	return stored, nil
}

func (s *service) removeStored(ctx context.Context, stored []storedUpload) {
	for _, file := range stored {
		if err := s.images.Remove(file.name); err != nil && s.logg != nil {
			s.logg.Warn(ctx, "failed to remove stored image")
		}
	}
}

// removeByURL strips the public prefix and deletes the underlying file.
func (s *service) removeByURL(ctx context.Context, url string) {
	name := url
	for i := len(url) - 1; i >= 0; i-- {
		if url[i] == '/' {
			name = url[i+1:]
			break
		}
	}
	if err := s.images.Remove(name); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "failed to remove stored image")
	}
}

func (s *service) findByID(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeProductNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find product")
	}
	return product, nil
}
