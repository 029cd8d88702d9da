package storefront

import (
	"github.com/isdelr/storefront/internal/client"
	"github.com/isdelr/storefront/internal/config"
	"github.com/isdelr/storefront/internal/session"
	"github.com/isdelr/storefront/internal/storefront/mock"
	"github.com/rs/zerolog/log"
)

var (
	_ AuthSource    = (*AuthService)(nil)
	_ AuthSource    = (*mock.AuthService)(nil)
	_ ProductSource = (*ProductService)(nil)
	_ ProductSource = (*mock.ProductService)(nil)
)

// Sources bundles the capabilities selected at startup.
type Sources struct {
	Auth     AuthSource
	Products ProductSource
	Mock     bool
}

// NewSources picks the HTTP services when a backend URL is configured and
// the mock provider otherwise.
func NewSources(cfg *config.ClientConfig, store *session.Store, mockOpts ...mock.Option) Sources {
	if cfg.UseMock() {
		log.Info().Msg("Using mock API services for development")
		return Sources{
			Auth:     mock.NewAuthService(store, mockOpts...),
			Products: mock.NewProductService(mockOpts...),
			Mock:     true,
		}
	}

	api := client.New(cfg.BaseURL(), store, client.WithTimeout(cfg.Timeout), client.WithLogger(log.Logger))
	return Sources{
		Auth:     NewAuthService(api, store),
		Products: NewProductService(api),
	}
}
