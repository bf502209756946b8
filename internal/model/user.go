package model

// UserProfile is the identity-provider view of an account.
// Ownership of products is tracked purely via Product.CreatedBy;
// profiles are never persisted by this service.
type UserProfile struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}
