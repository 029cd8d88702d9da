package storefront

import (
	"context"
	"fmt"
	"net/url"

	"github.com/isdelr/storefront/internal/client"
	"github.com/isdelr/storefront/internal/models"
)

const productsPath = "/products"

// ProductService is the HTTP-backed ProductSource.
type ProductService struct {
	api *client.Client
}

// NewProductService creates a new ProductService.
func NewProductService(api *client.Client) *ProductService {
	return &ProductService{api: api}
}

// GetProducts fetches one page of the catalog.
func (s *ProductService) GetProducts(ctx context.Context, page, limit int) (models.Paginated[models.Product], error) {
	var out models.Paginated[models.Product]
	if err := models.CheckPagination(page, limit); err != nil {
		return out, err
	}
	endpoint := fmt.Sprintf("%s?page=%d&limit=%d", productsPath, page, limit)
	if _, err := s.api.Get(ctx, endpoint, &out); err != nil {
		return models.Paginated[models.Product]{}, err
	}
	return out, nil
}

// GetProductByID fetches a single product.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (models.Product, error) {
	var product models.Product
	if _, err := s.api.Get(ctx, productPath(id), &product); err != nil {
		return models.Product{}, err
	}
	return product, nil
}

// CreateProduct adds a product to the catalog.
func (s *ProductService) CreateProduct(ctx context.Context, in models.ProductInput) (models.Product, error) {
	var product models.Product
	if _, err := s.api.Post(ctx, productsPath, in, &product); err != nil {
		return models.Product{}, err
	}
	return product, nil
}

// UpdateProduct sends a merge-patch; only the supplied fields change.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) (models.Product, error) {
	var product models.Product
	if _, err := s.api.Patch(ctx, productPath(id), patch, &product); err != nil {
		return models.Product{}, err
	}
	return product, nil
}

// DeleteProduct removes a product.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	_, err := s.api.Delete(ctx, productPath(id), nil)
	return err
}

func productPath(id string) string {
	return productsPath + "/" + url.PathEscape(id)
}
