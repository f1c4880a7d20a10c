package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vetdesk/vetdesk-backend/internal/clinic/service"
	"github.com/vetdesk/vetdesk-backend/pkg/errors"
	"github.com/vetdesk/vetdesk-backend/pkg/httputil"
	"github.com/vetdesk/vetdesk-backend/pkg/logger"
)

// ClinicHandler handles the app shell endpoints. These read only from the
// caller's token, never from request parameters.
type ClinicHandler struct {
	service *service.ClinicService
	logger  *logger.Logger
}

// NewClinicHandler creates a new clinic handler
func NewClinicHandler(svc *service.ClinicService, log *logger.Logger) *ClinicHandler {
	return &ClinicHandler{
		service: svc,
		logger:  log,
	}
}

// Routes mounts the app shell endpoints
func (h *ClinicHandler) Routes(r chi.Router) {
	r.Get("/sidebar", h.Sidebar)
	r.Get("/dashboard", h.Dashboard)
	r.Get("/staff", h.StaffProfile)
}

// Sidebar returns the caller's clinic name
func (h *ClinicHandler) Sidebar(w http.ResponseWriter, r *http.Request) {
	identity := httputil.GetIdentity(r.Context())
	if identity == nil {
		httputil.Error(w, errors.Forbidden("Unauthorised"))
		return
	}

	clinic, err := h.service.Sidebar(r.Context(), identity.ClinicID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, clinic)
}

// Dashboard returns the caller's username and clinic name
func (h *ClinicHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	identity := httputil.GetIdentity(r.Context())
	if identity == nil {
		httputil.Error(w, errors.Forbidden("Unauthorised"))
		return
	}

	info, err := h.service.Dashboard(r.Context(), identity.StaffMemberID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, info)
}

// StaffProfile returns the caller's own staff record
func (h *ClinicHandler) StaffProfile(w http.ResponseWriter, r *http.Request) {
	identity := httputil.GetIdentity(r.Context())
	if identity == nil {
		httputil.Error(w, errors.Forbidden("Unauthorised"))
		return
	}

	profile, err := h.service.StaffProfile(r.Context(), identity.StaffMemberID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, profile)
}
