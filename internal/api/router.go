package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/storefront/internal/api/handlers"
	"github.com/isdelr/storefront/internal/auth"
	"github.com/isdelr/storefront/internal/models"
	"github.com/isdelr/storefront/internal/services"
	"github.com/isdelr/storefront/internal/websocket"
)

// Deps groups everything the router hands to its handlers.
type Deps struct {
	Hub            *websocket.Hub
	Users          services.UserServiceProvider
	Products       services.ProductServiceProvider
	Tokens         services.TokenServiceProvider
	Issuer         *auth.Issuer
	AllowedOrigins []string
}

// NewRouter creates and configures a new Chi router.
func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	// Clients address collection routes with a trailing slash.
	r.Use(middleware.StripSlashes)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(d.Users, d.Tokens, d.Issuer)
	productHandler := handlers.NewProductHandler(d.Products)
	wsHandler := handlers.NewWebSocketHandler(d.Hub, nil)

	r.Route("/api", func(r chi.Router) {
		r.Get("/ws/products", wsHandler.Serve)

		r.Post("/register", authHandler.Register)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
			r.Post("/logout", authHandler.Logout)
		})
		r.With(d.Issuer.Middleware).Get("/me", authHandler.GetMe)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.GetAll)
			r.Get("/{id}", productHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(d.Issuer.Middleware)
				r.Use(auth.RequireRole(models.RoleAdmin))
				r.Post("/", productHandler.Create)
				r.Patch("/{id}", productHandler.Update)
				r.Delete("/{id}", productHandler.Delete)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not found"}`))
	})

	return r
}
