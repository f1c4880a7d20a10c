package handler

import (
	"net/http"

	"github.com/vetdesk/vetdesk-backend/internal/auth/service"
	"github.com/vetdesk/vetdesk-backend/pkg/httputil"
	"github.com/vetdesk/vetdesk-backend/pkg/logger"
)

// AuthHandler handles registration and login endpoints
type AuthHandler struct {
	service *service.AuthService
	logger  *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(svc *service.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		service: svc,
		logger:  log,
	}
}

// RegisterRequest is the payload for staff registration
type RegisterRequest struct {
	Username string `json:"staff_username" validate:"required,min=3,max=50,username"`
	Password string `json:"staff_password" validate:"required,strongpassword"`
	Role     string `json:"staff_role" validate:"required,oneof=Vet Nurse ACA Receptionist"`
	ClinicID int    `json:"staff_clinic_id" validate:"required,min=1"`
}

// LoginRequest is the payload for staff login
type LoginRequest struct {
	Username string `json:"staff_username" validate:"required"`
	Password string `json:"staff_password" validate:"required"`
}

// Register handles staff registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	result, err := h.service.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
		ClinicID: req.ClinicID,
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, result)
}

// Login handles staff login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	result, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}

// Verify confirms the caller's token is valid. The auth middleware has
// already rejected the request if it is not.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, true)
}
