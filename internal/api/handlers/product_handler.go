package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/storefront/internal/models"
	"github.com/isdelr/storefront/internal/services"
	"github.com/rs/zerolog/log"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// ProductHandler handles HTTP requests related to products.
type ProductHandler struct {
	service services.ProductServiceProvider
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service services.ProductServiceProvider) *ProductHandler {
	return &ProductHandler{service: service}
}

// GetAll handles the paginated product listing.
func (h *ProductHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	page, ok := queryInt(w, r, "page", 1)
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit", defaultLimit)
	if !ok {
		return
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	res, err := h.service.ListProducts(page, limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to retrieve products")
		writeError(w, http.StatusInternalServerError, "Failed to retrieve products")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Get handles the request to get a single product by its ID.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	product, err := h.service.GetProductByID(id)
	if err != nil {
		h.fail(w, err, id, "Failed to get product")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// Create handles the request to create a new product.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.ProductInput
	if !decodeBody(w, r, &in) {
		return
	}
	if msgs := models.PriceErrors(&in.Price); msgs != nil {
		writeValidation(w, map[string][]string{"price": msgs})
		return
	}

	product, err := h.service.CreateProduct(in)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create product")
		writeError(w, http.StatusInternalServerError, "Failed to create product")
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// Update applies a merge-patch to a product.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var patch models.ProductPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	if msgs := models.PriceErrors(patch.Price); msgs != nil {
		writeValidation(w, map[string][]string{"price": msgs})
		return
	}

	product, err := h.service.UpdateProduct(id, patch)
	if err != nil {
		h.fail(w, err, id, "Failed to update product")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// Delete handles the request to delete a product.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.DeleteProduct(id); err != nil {
		h.fail(w, err, id, "Failed to delete product")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *ProductHandler) fail(w http.ResponseWriter, err error, id, msg string) {
	if errors.Is(err, services.ErrProductNotFound) {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	log.Error().Err(err).Str("product_id", id).Msg(msg)
	writeError(w, http.StatusInternalServerError, msg)
}

// queryInt reads a positive integer query parameter.
func queryInt(w http.ResponseWriter, r *http.Request, key string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		writeJSON(w, http.StatusBadRequest, models.NewAPIError(http.StatusBadRequest,
			"Invalid pagination parameters", map[string][]string{key: {"A positive integer is required."}}))
		return 0, false
	}
	return n, true
}
