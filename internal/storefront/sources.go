// Package storefront holds the typed resource services used by the view
// layer. Each capability has an HTTP implementation here and a development
// stand-in in the mock subpackage; the pair is chosen once at startup.
package storefront

import (
	"context"

	"github.com/isdelr/storefront/internal/models"
)

// AuthSource authenticates users and manages the local session.
type AuthSource interface {
	Login(ctx context.Context, email, password string) (models.LoginResult, error)
	Register(ctx context.Context, reg models.Registration) (models.User, error)
	CurrentUser(ctx context.Context) (models.User, error)
	// Refresh exchanges the refresh credential for a new access token.
	Refresh(ctx context.Context) error
	// Revoke invalidates the refresh credential upstream, then logs out.
	Revoke(ctx context.Context) error
	// Logout is local only and always succeeds.
	Logout()
	IsAuthenticated() bool
}

// ProductSource reads and mutates the product catalog.
type ProductSource interface {
	GetProducts(ctx context.Context, page, limit int) (models.Paginated[models.Product], error)
	GetProductByID(ctx context.Context, id string) (models.Product, error)
	CreateProduct(ctx context.Context, in models.ProductInput) (models.Product, error)
	UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) (models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// Default paging used by listing screens.
const (
	DefaultPage  = 1
	DefaultLimit = 10
)
