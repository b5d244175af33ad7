package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/render"

	"github.com/aidar/certgen/internal/service"
)

// AuthHandler выдает токены операторам
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler создает новый AuthHandler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginRequest - оператор и общий ключ API
type LoginRequest struct {
	Operator string `json:"operator"`
	APIKey   string `json:"api_key"`
}

// LoginResponse содержит токен и момент его истечения
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login обрабатывает POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	req.Operator = strings.TrimSpace(req.Operator)
	if req.Operator == "" {
		RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "operator is required")
		return
	}

	issuedAt := time.Now()
	token, err := h.authService.Login(r.Context(), req.Operator, req.APIKey)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: issuedAt.Add(h.authService.Expiry()).UTC().Truncate(time.Second),
	})
}
