package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/vetdesk/vetdesk-backend/internal/cremation/repository"
	"github.com/vetdesk/vetdesk-backend/internal/cremation/service"
	"github.com/vetdesk/vetdesk-backend/pkg/httputil"
	"github.com/vetdesk/vetdesk-backend/pkg/logger"
)

// CremationHandler handles cremation endpoints
type CremationHandler struct {
	service *service.CremationService
	logger  *logger.Logger
}

// NewCremationHandler creates a new cremation handler
func NewCremationHandler(svc *service.CremationService, log *logger.Logger) *CremationHandler {
	return &CremationHandler{
		service: svc,
		logger:  log,
	}
}

// Routes mounts the cremation endpoints
func (h *CremationHandler) Routes(r chi.Router) {
	r.Get("/clinic/{id}", h.ListByClinic)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// CremationRequest is the payload for recording or rewriting a cremation.
// The dates arrive as strings because the frontend sends empty strings for
// stages that have not happened yet.
type CremationRequest struct {
	DateCollected        string `json:"cremation_date_collected" validate:"omitempty,isodate"`
	DateReturnedPractice string `json:"cremation_date_ashes_returned_practice" validate:"omitempty,isodate"`
	DateReturnedOwner    string `json:"cremation_date_ashes_returned_owner" validate:"omitempty,isodate"`
	Form                 string `json:"cremation_form" validate:"required,max=50,alphaspace"`
	OwnerContacted       string `json:"cremation_owner_contacted" validate:"required,oneof=Yes No"`
	PatientID            int    `json:"cremation_patient_id" validate:"required,min=1"`
	ClinicID             int    `json:"cremation_clinic_id" validate:"omitempty,min=1"`
}

// parseOptionalDate maps an empty string to a NULL date
func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}

	t, err := httputil.ParseDate(s)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

func (req *CremationRequest) toModel() (*repository.Cremation, error) {
	collected, err := parseOptionalDate(req.DateCollected)
	if err != nil {
		return nil, err
	}

	returnedPractice, err := parseOptionalDate(req.DateReturnedPractice)
	if err != nil {
		return nil, err
	}

	returnedOwner, err := parseOptionalDate(req.DateReturnedOwner)
	if err != nil {
		return nil, err
	}

	return &repository.Cremation{
		DateCollected:        collected,
		DateReturnedPractice: returnedPractice,
		DateReturnedOwner:    returnedOwner,
		Form:                 req.Form,
		OwnerContacted:       req.OwnerContacted,
		PatientID:            req.PatientID,
		ClinicID:             req.ClinicID,
	}, nil
}

// ListByClinic returns all cremations for a clinic
func (h *CremationHandler) ListByClinic(w http.ResponseWriter, r *http.Request) {
	clinicID, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	cremations, err := h.service.ListByClinic(r.Context(), clinicID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, cremations)
}

// Create records a cremation
func (h *CremationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CremationRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	cremation, err := req.toModel()
	if err != nil {
		httputil.Error(w, err)
		return
	}

	view, err := h.service.Create(r.Context(), cremation)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONMessage(w, http.StatusCreated, "Cremation added successfully", view)
}

// Update rewrites a cremation
func (h *CremationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var req CremationRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	cremation, err := req.toModel()
	if err != nil {
		httputil.Error(w, err)
		return
	}
	cremation.ID = id

	view, err := h.service.Update(r.Context(), cremation)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONMessage(w, http.StatusOK, "Cremation updated successfully", view)
}

// Delete removes a cremation
func (h *CremationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONMessage(w, http.StatusOK, "Cremation deleted successfully", nil)
}
