package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/storefront/internal/database"
	"github.com/isdelr/storefront/internal/models"
	"github.com/shopspring/decimal"
)

var ErrProductNotFound = errors.New("product not found")

// Publisher receives catalog change notifications.
type Publisher interface {
	Publish(event models.ProductEvent)
}

// ProductServiceProvider defines the interface for product services.
type ProductServiceProvider interface {
	ListProducts(page, limit int) (models.Paginated[models.Product], error)
	GetProductByID(id string) (models.Product, error)
	CreateProduct(in models.ProductInput) (models.Product, error)
	UpdateProduct(id string, patch models.ProductPatch) (models.Product, error)
	DeleteProduct(id string) error
}

// ProductService provides business logic for the product catalog.
type ProductService struct {
	db        *sql.DB
	publisher Publisher
	now       func() time.Time
}

// NewProductService creates a new ProductService. publisher may be nil.
func NewProductService(db *sql.DB, publisher Publisher) *ProductService {
	return &ProductService{db: db, publisher: publisher, now: time.Now}
}

const productColumns = "id, name, description, price, image_url, category, in_stock, created_at, updated_at"

// scanProduct is a helper to scan a product from a row or rows object.
func scanProduct(scanner interface{ Scan(...interface{}) error }) (models.Product, error) {
	var p models.Product
	var desc, imageURL sql.NullString
	var price, createdAt, updatedAt string

	if err := scanner.Scan(&p.ID, &p.Name, &desc, &price, &imageURL, &p.Category, &p.InStock, &createdAt, &updatedAt); err != nil {
		return p, err
	}
	p.Description = desc.String
	p.ImageURL = imageURL.String

	var err error
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return p, fmt.Errorf("bad price for product %s: %w", p.ID, err)
	}
	if p.CreatedAt, err = database.ParseTime(createdAt); err != nil {
		return p, fmt.Errorf("bad created_at for product %s: %w", p.ID, err)
	}
	if p.UpdatedAt, err = database.ParseTime(updatedAt); err != nil {
		return p, fmt.Errorf("bad updated_at for product %s: %w", p.ID, err)
	}
	return p, nil
}

// ListProducts returns one page of products, oldest first.
func (s *ProductService) ListProducts(page, limit int) (models.Paginated[models.Product], error) {
	if err := models.CheckPagination(page, limit); err != nil {
		return models.Paginated[models.Product]{}, err
	}

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM products").Scan(&total); err != nil {
		return models.Paginated[models.Product]{}, err
	}

	items := []models.Product{}
	if models.HasPage(total, page, limit) {
		var err error
		if items, err = s.queryPage(page, limit); err != nil {
			return models.Paginated[models.Product]{}, err
		}
	}

	return models.Paginated[models.Product]{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: models.TotalPages(total, limit),
	}, nil
}

func (s *ProductService) queryPage(page, limit int) ([]models.Product, error) {
	rows, err := s.db.Query(
		"SELECT "+productColumns+" FROM products ORDER BY created_at, id LIMIT ? OFFSET ?",
		limit, models.Offset(page, limit),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (models.Product, error) {
	p, err := scanProduct(s.db.QueryRow("SELECT "+productColumns+" FROM products WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Product{}, fmt.Errorf("product with id %s: %w", id, ErrProductNotFound)
		}
		return models.Product{}, err
	}
	return p, nil
}

// CreateProduct adds a new product to the catalog.
func (s *ProductService) CreateProduct(in models.ProductInput) (models.Product, error) {
	p := models.NewProduct(uuid.New().String(), in, s.now().UTC())
	if err := s.insert(p); err != nil {
		return models.Product{}, err
	}
	s.publish(models.ProductCreated, p.ID, &p)
	return p, nil
}

// UpdateProduct applies a merge-patch to an existing product.
func (s *ProductService) UpdateProduct(id string, patch models.ProductPatch) (models.Product, error) {
	p, err := s.GetProductByID(id)
	if err != nil {
		return models.Product{}, err
	}
	patch.Apply(&p, s.now().UTC())

	_, err = s.db.Exec(
		"UPDATE products SET name = ?, description = ?, price = ?, image_url = ?, category = ?, in_stock = ?, updated_at = ? WHERE id = ?",
		p.Name, p.Description, p.Price.String(), p.ImageURL, p.Category, p.InStock, database.FormatTime(p.UpdatedAt), p.ID,
	)
	if err != nil {
		return models.Product{}, err
	}
	s.publish(models.ProductUpdated, p.ID, &p)
	return p, nil
}

// DeleteProduct removes a product from the catalog.
func (s *ProductService) DeleteProduct(id string) error {
	res, err := s.db.Exec("DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("product with id %s: %w", id, ErrProductNotFound)
	}
	s.publish(models.ProductDeleted, id, nil)
	return nil
}

// Seed inserts products that are not present yet, keeping their ids and
// timestamps. It returns the number of rows added.
func (s *ProductService) Seed(products []models.Product) (int, error) {
	added := 0
	for _, p := range products {
		res, err := s.db.Exec(
			"INSERT OR IGNORE INTO products("+productColumns+") VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)",
			p.ID, p.Name, p.Description, p.Price.String(), p.ImageURL, p.Category, p.InStock,
			database.FormatTime(p.CreatedAt), database.FormatTime(p.UpdatedAt),
		)
		if err != nil {
			return added, fmt.Errorf("failed to seed product %s: %w", p.ID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	return added, nil
}

func (s *ProductService) insert(p models.Product) error {
	_, err := s.db.Exec(
		"INSERT INTO products("+productColumns+") VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.Name, p.Description, p.Price.String(), p.ImageURL, p.Category, p.InStock,
		database.FormatTime(p.CreatedAt), database.FormatTime(p.UpdatedAt),
	)
	return err
}

func (s *ProductService) publish(action, id string, p *models.Product) {
	if s.publisher == nil {
		return
	}
	var snapshot *models.Product
	if p != nil {
		cp := *p
		snapshot = &cp
	}
	s.publisher.Publish(models.ProductEvent{Action: action, ProductID: id, Product: snapshot, OccurredAt: s.now().UTC()})
}
