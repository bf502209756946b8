package dto

// RegisterRequest represents the request body for creating an account.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse carries the new account's identity.
type RegisterResponse struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// LoginResponse is the caller's profile plus the products they own.
type LoginResponse struct {
	UID      string            `json:"uid"`
	Email    string            `json:"email"`
	Products []ProductResponse `json:"products"`
}
