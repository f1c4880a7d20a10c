package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vetdesk/vetdesk-backend/internal/client/repository"
	"github.com/vetdesk/vetdesk-backend/internal/client/service"
	"github.com/vetdesk/vetdesk-backend/pkg/httputil"
	"github.com/vetdesk/vetdesk-backend/pkg/logger"
)

// ClientHandler handles client endpoints
type ClientHandler struct {
	service *service.ClientService
	logger  *logger.Logger
}

// NewClientHandler creates a new client handler
func NewClientHandler(svc *service.ClientService, log *logger.Logger) *ClientHandler {
	return &ClientHandler{
		service: svc,
		logger:  log,
	}
}

// Routes mounts the client endpoints
func (h *ClientHandler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Get("/clinic/{id}", h.ListByClinic)
	r.Put("/{id}", h.Update)
	r.Put("/deactivate/{id}", h.Deactivate)
	r.Put("/reactivate/{id}", h.Reactivate)
	r.Delete("/{id}", h.Delete)
}

// ClientRequest is the payload for creating or updating a client
type ClientRequest struct {
	Forename string `json:"client_forename" validate:"required,max=50,alphaspace"`
	Surname  string `json:"client_surname" validate:"required,max=50,alphaspace"`
	Address  string `json:"client_address" validate:"required,max=100,alphanumspace"`
	City     string `json:"client_city" validate:"required,max=50,alphaspace"`
	County   string `json:"client_county" validate:"required,max=50,alphaspace"`
	Phone    string `json:"client_phone" validate:"required,numeric,min=10,max=20"`
	Email    string `json:"client_email" validate:"required,email,max=100"`
	ClinicID int    `json:"client_clinic_id" validate:"required,min=1"`
}

// DeactivateRequest carries the reason a client is being deactivated
type DeactivateRequest struct {
	Reason string `json:"client_reason_inactive" validate:"required,oneof=Other 'Patient Deceased' 'Patient Rehomed' 'Client Relocating'"`
}

// Create handles client registration
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ClientRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	client := &repository.Client{
		Forename: req.Forename,
		Surname:  req.Surname,
		Address:  req.Address,
		City:     req.City,
		County:   req.County,
		Phone:    req.Phone,
		Email:    req.Email,
		ClinicID: req.ClinicID,
	}

	if err := h.service.Create(r.Context(), client); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONMessage(w, http.StatusCreated, "Client created", client)
}

// Get returns a single client
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	client, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, client)
}

// ListByClinic returns all clients of a clinic
func (h *ClientHandler) ListByClinic(w http.ResponseWriter, r *http.Request) {
	clinicID, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	clients, err := h.service.ListByClinic(r.Context(), clinicID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, clients)
}

// Update replaces a client's contact details
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var req ClientRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	client := &repository.Client{
		ID:       id,
		Forename: req.Forename,
		Surname:  req.Surname,
		Address:  req.Address,
		City:     req.City,
		County:   req.County,
		Phone:    req.Phone,
		Email:    req.Email,
	}

	if err := h.service.Update(r.Context(), client); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONMessage(w, http.StatusOK, "Client updated", client)
}

// Deactivate marks a client inactive and cascades to their patients
func (h *ClientHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var req DeactivateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.Deactivate(r.Context(), id, req.Reason); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONMessage(w, http.StatusOK, "Client deactivated", nil)
}

// Reactivate marks a client active again
func (h *ClientHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.Reactivate(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONMessage(w, http.StatusOK, "Client reactivated", nil)
}

// Delete removes a client
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONMessage(w, http.StatusOK, "Client deleted", nil)
}
