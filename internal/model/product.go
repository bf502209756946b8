// Package model defines domain entities for the application.
package model

import (
	"errors"
	"time"
)

// ErrMissingProductFields indicates a draft is missing a required field.
var ErrMissingProductFields = errors.New("product requires name, price, category and description")

// Product represents a catalog entry owned by the user who created it.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Mutable field names accepted by product updates. Everything else,
// in particular id and created_by, is immutable once assigned.
const (
	FieldName        = "name"
	FieldPrice       = "price"
	FieldCategory    = "category"
	FieldDescription = "description"
	FieldUpdatedAt   = "updated_at"
)

// ProductDraft is the caller-supplied shape for a new product.
// Ownership and timestamps are never taken from the draft.
type ProductDraft struct {
	Name        string   `json:"name"`
	Price       *float64 `json:"price"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
}

// Validate reports whether the draft carries every required field.
func (d *ProductDraft) Validate() error {
	switch {
	case d == nil:
		return ErrMissingProductFields
	case d.Name == "":
		return ErrMissingProductFields
	case d.Price == nil:
		return ErrMissingProductFields
	case d.Category == "":
		return ErrMissingProductFields
	case d.Description == "":
		return ErrMissingProductFields
	}
	return nil
}

// ProductPatch carries the optional mutable fields of an update request.
// Nil pointers mean "leave untouched".
type ProductPatch struct {
	Name        *string  `json:"name,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Description *string  `json:"description,omitempty"`
}
