package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jooba/jooba/internal/handler/dto"
	"github.com/jooba/jooba/internal/service"
)

// AccountHandler handles HTTP requests for registration and sessions.
type AccountHandler struct {
	svc    *service.AccountService
	logger *slog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(svc *service.AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		svc:    svc,
		logger: logger,
	}
}

// Register handles POST /register.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	profile, err := h.svc.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("user_registered", "uid", profile.UID)

	writeJSON(w, http.StatusCreated, dto.RegisterResponse{
		UID:   profile.UID,
		Email: profile.Email,
	})
}

// Login handles POST /login.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if req.IDToken == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_TOKEN", "Token is required")
		return
	}

	result, err := h.svc.Login(r.Context(), req.IDToken)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("user_logged_in", "uid", result.Profile.UID)

	products := dto.ToProductListResponse(result.Products)
	writeJSON(w, http.StatusOK, dto.LoginResponse{
		UID:      result.Profile.UID,
		Email:    result.Profile.Email,
		Products: products.Products,
	})
}

// Logout handles POST /logout.
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if req.IDToken == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_TOKEN", "Token is required")
		return
	}

	if err := h.svc.Logout(r.Context(), req.IDToken); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "logged out"})
}

// handleServiceError maps service errors to HTTP responses.
func (h *AccountHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrMissingCredentials):
		h.writeError(w, http.StatusBadRequest, "MISSING_CREDENTIALS", service.ErrMissingCredentials.Error())
	case errors.Is(err, service.ErrEmailTaken):
		h.writeError(w, http.StatusConflict, "EMAIL_TAKEN", "Email already registered")
	case errors.Is(err, service.ErrUnauthenticated):
		h.writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Invalid or expired token")
	default:
		h.logger.Error("upstream_error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "UPSTREAM_FAILURE", err.Error())
	}
}

// writeError writes an error response.
func (h *AccountHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
