package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vetdesk/vetdesk-backend/internal/dental/repository"
	"github.com/vetdesk/vetdesk-backend/internal/dental/service"
	"github.com/vetdesk/vetdesk-backend/pkg/httputil"
	"github.com/vetdesk/vetdesk-backend/pkg/logger"
)

// DentalHandler handles dental chart endpoints
type DentalHandler struct {
	service *service.DentalService
	logger  *logger.Logger
}

// NewDentalHandler creates a new dental handler
func NewDentalHandler(svc *service.DentalService, log *logger.Logger) *DentalHandler {
	return &DentalHandler{
		service: svc,
		logger:  log,
	}
}

// Routes mounts the dental endpoints
func (h *DentalHandler) Routes(r chi.Router) {
	r.Get("/{id}", h.GetChart)
	r.Post("/{id}", h.CreateChart)
	r.Put("/tooth/{tooth_id}/patient/{patient_id}", h.UpdateTooth)
	r.Put("/update/{id}", h.TouchChart)
}

// ToothRequest is the payload for updating a tooth
type ToothRequest struct {
	Problem string  `json:"tooth_problem" validate:"required,max=50,alphaspace"`
	Note    *string `json:"tooth_note" validate:"omitempty,max=100,alphanumspace"`
}

// GetChart returns a patient's dental chart
func (h *DentalHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	patientID, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	teeth, err := h.service.GetChart(r.Context(), patientID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, teeth)
}

// CreateChart creates a patient's dental chart
func (h *DentalHandler) CreateChart(w http.ResponseWriter, r *http.Request) {
	patientID, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	teeth, err := h.service.CreateChart(r.Context(), patientID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONMessage(w, http.StatusCreated, "Dental added successfully", teeth)
}

// UpdateTooth updates one tooth's problem and note
func (h *DentalHandler) UpdateTooth(w http.ResponseWriter, r *http.Request) {
	toothID, err := httputil.IDParam(r, "tooth_id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	patientID, err := httputil.IDParam(r, "patient_id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var req ToothRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	tooth := &repository.Tooth{
		ToothID:   toothID,
		PatientID: patientID,
		Problem:   req.Problem,
		Note:      req.Note,
	}

	updated, err := h.service.UpdateTooth(r.Context(), tooth)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONMessage(w, http.StatusOK, "Tooth updated successfully", updated)
}

// TouchChart re-stamps a patient's chart date
func (h *DentalHandler) TouchChart(w http.ResponseWriter, r *http.Request) {
	patientID, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	dental, err := h.service.TouchChart(r.Context(), patientID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONMessage(w, http.StatusOK, "Dental updated successfully", dental)
}
