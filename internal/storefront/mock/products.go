package mock

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/isdelr/storefront/internal/catalog"
	"github.com/isdelr/storefront/internal/models"
	"github.com/rs/zerolog/log"
)

// ProductService serves the bundled dataset from memory. Writes are kept
// for the lifetime of the process.
type ProductService struct {
	opts options

	once     sync.Once
	mu       sync.Mutex
	products []models.Product
}

// NewProductService creates a mock ProductSource.
func NewProductService(opts ...Option) *ProductService {
	o := buildOptions(opts)
	if o.dataset == nil {
		o.dataset = catalog.Products
	}
	return &ProductService{opts: o}
}

// load decodes the dataset on first use. A broken dataset yields an empty
// catalog rather than an error.
func (s *ProductService) load() {
	s.once.Do(func() {
		products, err := s.opts.dataset()
		if err != nil {
			log.Error().Err(err).Msg("Error loading mock products")
			products = nil
		}
		s.products = products
	})
}

func (s *ProductService) GetProducts(ctx context.Context, page, limit int) (models.Paginated[models.Product], error) {
	if err := models.CheckPagination(page, limit); err != nil {
		return models.Paginated[models.Product]{}, err
	}
	if err := delay(ctx, s.opts.latency.List); err != nil {
		return models.Paginated[models.Product]{}, err
	}
	s.load()
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.Paginate(s.products, page, limit), nil
}

func (s *ProductService) GetProductByID(ctx context.Context, id string) (models.Product, error) {
	if err := delay(ctx, s.opts.latency.Get); err != nil {
		return models.Product{}, err
	}
	s.load()
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return models.Product{}, errProductNotFound()
	}
	return s.products[i], nil
}

func (s *ProductService) CreateProduct(ctx context.Context, in models.ProductInput) (models.Product, error) {
	if fields := inputErrors(in); len(fields) > 0 {
		return models.Product{}, models.NewValidationError(fields)
	}
	if err := delay(ctx, s.opts.latency.Write); err != nil {
		return models.Product{}, err
	}
	s.load()
	s.mu.Lock()
	defer s.mu.Unlock()
	product := models.NewProduct(uuid.New().String(), in, s.opts.now().UTC())
	s.products = append(s.products, product)
	return product, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) (models.Product, error) {
	if msgs := models.PriceErrors(patch.Price); msgs != nil {
		return models.Product{}, models.NewValidationError(map[string][]string{"price": msgs})
	}
	if err := delay(ctx, s.opts.latency.Write); err != nil {
		return models.Product{}, err
	}
	s.load()
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return models.Product{}, errProductNotFound()
	}
	patch.Apply(&s.products[i], s.opts.now().UTC())
	return s.products[i], nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := delay(ctx, s.opts.latency.Write); err != nil {
		return err
	}
	s.load()
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return errProductNotFound()
	}
	s.products = append(s.products[:i], s.products[i+1:]...)
	return nil
}

// indexOf must be called with mu held.
func (s *ProductService) indexOf(id string) int {
	for i, p := range s.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func inputErrors(in models.ProductInput) map[string][]string {
	fields := map[string][]string{}
	if in.Name == "" {
		fields["name"] = []string{"This field is required."}
	}
	if in.Category == "" {
		fields["category"] = []string{"This field is required."}
	}
	if msgs := models.PriceErrors(&in.Price); msgs != nil {
		fields["price"] = msgs
	}
	return fields
}

func errProductNotFound() error {
	return models.NewAPIError(http.StatusNotFound, "Product not found", nil)
}
