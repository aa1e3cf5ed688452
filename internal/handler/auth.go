package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"axisride/internal/domain"
	"axisride/internal/service"
)

// AuthHandler handles HTTP requests for registration, login and
// account administration.
type AuthHandler struct {
	identityService *service.IdentityService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(identityService *service.IdentityService) *AuthHandler {
	return &AuthHandler{identityService: identityService}
}

// UserResponse is the HTTP representation of an account.
type UserResponse struct {
	ID          string `json:"id"`
	Phone       string `json:"phone"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

func toUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Phone:       user.Phone,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		Status:      string(user.Status),
		CreatedAt:   user.CreatedAt.Format(time.RFC3339),
	}
}

// SessionResponse carries a fresh token and the account it belongs to.
type SessionResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// RegisterRequest is the HTTP request body for registration.
type RegisterRequest struct {
	Phone       string `json:"phone"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// Register handles POST /v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	user, err := h.identityService.Register(c.Request.Context(), service.RegisterRequest{
		Phone:       req.Phone,
		DisplayName: req.DisplayName,
		Role:        domain.Role(req.Role),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toUserResponse(user))
}

// VerifyRequest is the HTTP request body for code verification.
type VerifyRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

// VerifyRegistration handles POST /v1/auth/register/verify
func (h *AuthHandler) VerifyRegistration(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	user, token, err := h.identityService.VerifyRegistration(c.Request.Context(), req.Phone, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, SessionResponse{Token: token, User: toUserResponse(user)})
}

// LoginRequest is the HTTP request body for requesting a login code.
type LoginRequest struct {
	Phone string `json:"phone"`
}

// RequestLogin handles POST /v1/auth/login
func (h *AuthHandler) RequestLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.identityService.RequestLogin(c.Request.Context(), req.Phone); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"status": "code sent"})
}

// VerifyLogin handles POST /v1/auth/login/verify
func (h *AuthHandler) VerifyLogin(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	user, token, err := h.identityService.VerifyLogin(c.Request.Context(), req.Phone, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, SessionResponse{Token: token, User: toUserResponse(user)})
}

// Me handles GET /v1/users/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	respondJSON(c, http.StatusOK, toUserResponse(user))
}

// SuspendUser handles POST /v1/admin/users/:id/suspend
func (h *AuthHandler) SuspendUser(c *gin.Context) {
	admin, ok := currentUser(c)
	if !ok {
		return
	}

	user, err := h.identityService.Suspend(c.Request.Context(), admin, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toUserResponse(user))
}

// ReinstateUser handles POST /v1/admin/users/:id/reinstate
func (h *AuthHandler) ReinstateUser(c *gin.Context) {
	admin, ok := currentUser(c)
	if !ok {
		return
	}

	user, err := h.identityService.Reinstate(c.Request.Context(), admin, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toUserResponse(user))
}
