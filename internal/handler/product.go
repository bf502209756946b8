package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jooba/jooba/internal/handler/dto"
	"github.com/jooba/jooba/internal/model"
	"github.com/jooba/jooba/internal/service"
)

// ProductHandler handles HTTP requests for catalog operations.
type ProductHandler struct {
	svc    *service.CatalogService
	logger *slog.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(svc *service.CatalogService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		svc:    svc,
		logger: logger,
	}
}

// Upload handles POST /upload_product.
func (h *ProductHandler) Upload(w http.ResponseWriter, r *http.Request) {
	var req dto.UploadProductRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if !h.requireToken(w, req.IDToken) {
		return
	}

	product, err := h.svc.Create(r.Context(), req.IDToken, req.Product.ToDraft())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("product_created",
		"product_id", product.ID,
		"category", product.Category,
	)

	writeJSON(w, http.StatusCreated, dto.UploadProductResponse{ProductID: product.ID})
}

// Mine handles GET /user_products.
func (h *ProductHandler) Mine(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if !h.requireToken(w, req.IDToken) {
		return
	}

	products, err := h.svc.ListMine(r.Context(), req.IDToken)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToProductListResponse(products))
}

// All handles GET /all_products.
func (h *ProductHandler) All(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if !h.requireToken(w, req.IDToken) {
		return
	}

	products, err := h.svc.ListAll(r.Context(), req.IDToken)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToProductListResponse(products))
}

// Search handles GET /search_products?query=...
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if !h.requireToken(w, req.IDToken) {
		return
	}

	query := r.URL.Query().Get("query")

	matches, err := h.svc.Search(r.Context(), req.IDToken, query)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToProductListResponse(matches))
}

// Info handles GET /product_info/{id}.
func (h *ProductHandler) Info(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Product ID is required")
		return
	}

	var req dto.TokenRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if !h.requireToken(w, req.IDToken) {
		return
	}

	product, err := h.svc.Get(r.Context(), req.IDToken, id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToProductResponse(product))
}

// ByCategory handles GET /products_by_category?category_name=...
// No token is required; the listing is public.
func (h *ProductHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category_name")

	matches, err := h.svc.ByCategory(r.Context(), category)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToProductListResponse(matches))
}

// Update handles PUT /update_product/{id}.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Product ID is required")
		return
	}

	var req dto.UpdateProductRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if !h.requireToken(w, req.IDToken) {
		return
	}

	product, err := h.svc.Update(r.Context(), req.IDToken, id, req.ToPatch())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("product_updated", "product_id", product.ID)

	writeJSON(w, http.StatusOK, dto.ToProductResponse(product))
}

// Delete handles DELETE /delete_product/{id}.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Product ID is required")
		return
	}

	var req dto.TokenRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if !h.requireToken(w, req.IDToken) {
		return
	}

	if err := h.svc.Delete(r.Context(), req.IDToken, id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("product_deleted", "product_id", id)

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "product deleted"})
}

// BulkUpload handles POST /bulk_upload_products.
func (h *ProductHandler) BulkUpload(w http.ResponseWriter, r *http.Request) {
	var req dto.BulkUploadRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if !h.requireToken(w, req.IDToken) {
		return
	}

	drafts := make([]*model.ProductDraft, len(req.Products))
	for i := range req.Products {
		drafts[i] = req.Products[i].ToDraft()
	}

	created, err := h.svc.BulkCreate(r.Context(), req.IDToken, drafts)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("products_bulk_created", "count", len(created))

	writeJSON(w, http.StatusOK, dto.ToProductListResponse(created))
}

// BulkDelete handles DELETE /bulk_delete_products.
func (h *ProductHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req dto.BulkDeleteRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if !h.requireToken(w, req.IDToken) {
		return
	}

	deleted, err := h.svc.BulkDelete(r.Context(), req.IDToken, req.ProductIDs)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("products_bulk_deleted", "count", len(deleted))

	writeJSON(w, http.StatusOK, dto.BulkDeleteResponse{
		DeletedIDs: deleted,
		Count:      len(deleted),
	})
}

// requireToken rejects a request whose body carries no token. Absence
// is a malformed request (400); only a present but unverifiable token
// is an authentication failure (401).
func (h *ProductHandler) requireToken(w http.ResponseWriter, token string) bool {
	if token == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_TOKEN", "Token is required")
		return false
	}
	return true
}

// handleServiceError maps service errors to HTTP responses.
func (h *ProductHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrMissingFields):
		h.writeError(w, http.StatusBadRequest, "MISSING_FIELDS", service.ErrMissingFields.Error())
	case errors.Is(err, service.ErrMissingQuery):
		h.writeError(w, http.StatusBadRequest, "MISSING_QUERY", service.ErrMissingQuery.Error())
	case errors.Is(err, service.ErrMissingCategory):
		h.writeError(w, http.StatusBadRequest, "MISSING_CATEGORY", service.ErrMissingCategory.Error())
	case errors.Is(err, service.ErrUnauthenticated):
		h.writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Invalid or expired token")
	case errors.Is(err, service.ErrForbidden):
		h.writeError(w, http.StatusForbidden, "FORBIDDEN", "You do not own this product")
	case errors.Is(err, service.ErrProductNotFound):
		h.writeError(w, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found")
	case errors.Is(err, service.ErrEmptyCatalog):
		h.writeError(w, http.StatusNotFound, "EMPTY_CATALOG", "No products in catalog")
	default:
		h.logger.Error("upstream_error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "UPSTREAM_FAILURE", err.Error())
	}
}

// writeError writes an error response.
func (h *ProductHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// decodeBody decodes a JSON request body. An absent body is tolerated:
// token-only GET requests may legitimately omit it, and the missing
// token is then rejected by the token pre-check, not the codec.
func decodeBody(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
