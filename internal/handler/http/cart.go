// Package http exposes the cart API over HTTP.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mireska/cartsvc/pkg/httputil"
	"github.com/mireska/cartsvc/pkg/validator"

	"github.com/mireska/cartsvc/internal/checkout"
	"github.com/mireska/cartsvc/internal/service"
)

// CartHandler handles cart and checkout endpoints.
type CartHandler struct {
	carts    *service.CartService
	checkout *checkout.Service
	logger   *slog.Logger
}

// NewCartHandler creates the cart HTTP handler.
func NewCartHandler(carts *service.CartService, co *checkout.Service, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		carts:    carts,
		checkout: co,
		logger:   logger,
	}
}

// AddItemRequest is the body for POST /api/v1/cart/items. Quantity defaults
// to 1 when omitted.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
}

// UpdateQuantityRequest is the body for quantity updates. Zero removes the
// line.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// GetCart handles GET /api/v1/cart.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	cart, err := h.carts.GetCart(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// AddItem handles POST /api/v1/cart/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	var req AddItemRequest
	if err := validator.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	cart, outcome, err := h.carts.AddItem(r.Context(), userID, service.AddItemInput{
		ProductID: req.ProductID,
		VariantID: req.VariantID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart, Outcome: string(outcome)})
}

// UpdateItemQuantity handles PUT /api/v1/cart/items/{productID} and
// PUT /api/v1/cart/items/{productID}/{variantID}.
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())
	productID := chi.URLParam(r, "productID")
	variantID := chi.URLParam(r, "variantID")

	var req UpdateQuantityRequest
	if err := validator.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	cart, outcome, err := h.carts.UpdateItemQuantity(r.Context(), userID, productID, variantID, req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart, Outcome: string(outcome)})
}

// RemoveItem handles DELETE /api/v1/cart/items/{productID} and
// DELETE /api/v1/cart/items/{productID}/{variantID}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())
	productID := chi.URLParam(r, "productID")
	variantID := chi.URLParam(r, "variantID")

	cart, outcome, err := h.carts.RemoveItem(r.Context(), userID, productID, variantID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart, Outcome: string(outcome)})
}

// ClearCart handles DELETE /api/v1/cart.
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	if err := h.carts.ClearCart(r.Context(), userID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "cleared"}})
}

// ItemQuantity handles GET /api/v1/cart/items/{productID}/quantity and
// GET /api/v1/cart/items/{productID}/{variantID}/quantity. Product pages
// poll it to render "already in cart: N".
func (h *CartHandler) ItemQuantity(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())
	productID := chi.URLParam(r, "productID")
	variantID := chi.URLParam(r, "variantID")

	qty, err := h.carts.ItemQuantity(r.Context(), userID, productID, variantID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]int{"quantity": qty}})
}

// Checkout handles POST /api/v1/checkout.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	conf, err := h.checkout.Submit(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: conf})
}
