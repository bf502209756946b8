// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/jooba/jooba/internal/model"
)

// TokenRequest is the body of endpoints that need nothing but a token.
// The token always travels in the JSON body, never a header, on every
// endpoint including GETs.
type TokenRequest struct {
	IDToken string `json:"idToken"`
}

// ProductPayload is a client-supplied product draft. Price is a pointer
// so a missing price is distinguishable from a free product.
type ProductPayload struct {
	Name        string   `json:"name"`
	Price       *float64 `json:"price"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
}

// ToDraft converts the payload to a service draft. Any id, owner or
// timestamp the client supplied is not representable here and is
// therefore dropped before it reaches the service.
func (p *ProductPayload) ToDraft() *model.ProductDraft {
	return &model.ProductDraft{
		Name:        p.Name,
		Price:       p.Price,
		Category:    p.Category,
		Description: p.Description,
	}
}

// UploadProductRequest represents the request body for creating a product.
type UploadProductRequest struct {
	IDToken string         `json:"idToken"`
	Product ProductPayload `json:"product"`
}

// UpdateProductRequest represents the request body for updating a product.
// Mutable fields ride alongside the token; absent fields stay untouched.
type UpdateProductRequest struct {
	IDToken     string   `json:"idToken"`
	Name        *string  `json:"name,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Description *string  `json:"description,omitempty"`
}

// ToPatch extracts the mutable fields of the request.
func (r *UpdateProductRequest) ToPatch() model.ProductPatch {
	return model.ProductPatch{
		Name:        r.Name,
		Price:       r.Price,
		Category:    r.Category,
		Description: r.Description,
	}
}

// BulkUploadRequest represents the request body for creating many products.
type BulkUploadRequest struct {
	IDToken  string           `json:"idToken"`
	Products []ProductPayload `json:"products"`
}

// BulkDeleteRequest represents the request body for deleting many products.
type BulkDeleteRequest struct {
	IDToken    string   `json:"idToken"`
	ProductIDs []string `json:"product_ids"`
}

// ProductResponse represents a product in API responses.
type ProductResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UploadProductResponse carries the id assigned to a new product.
type UploadProductResponse struct {
	ProductID string `json:"product_id"`
}

// ProductListResponse represents a list of products.
type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Count    int               `json:"count"`
}

// BulkDeleteResponse lists the ids actually removed.
type BulkDeleteResponse struct {
	DeletedIDs []string `json:"deleted_ids"`
	Count      int      `json:"count"`
}

// MessageResponse is a bare confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ToProductResponse converts a Product model to ProductResponse DTO.
func ToProductResponse(p *model.Product) *ProductResponse {
	return &ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Category:    p.Category,
		Description: p.Description,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ToProductListResponse converts a slice of Product models.
func ToProductListResponse(products []*model.Product) *ProductListResponse {
	responses := make([]ProductResponse, len(products))
	for i, p := range products {
		responses[i] = *ToProductResponse(p)
	}
	return &ProductListResponse{
		Products: responses,
		Count:    len(responses),
	}
}
