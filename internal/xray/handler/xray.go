package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vetdesk/vetdesk-backend/internal/xray/repository"
	"github.com/vetdesk/vetdesk-backend/internal/xray/service"
	"github.com/vetdesk/vetdesk-backend/pkg/httputil"
	"github.com/vetdesk/vetdesk-backend/pkg/logger"
)

// XrayHandler handles radiograph endpoints
type XrayHandler struct {
	service *service.XrayService
	logger  *logger.Logger
}

// NewXrayHandler creates a new xray handler
func NewXrayHandler(svc *service.XrayService, log *logger.Logger) *XrayHandler {
	return &XrayHandler{
		service: svc,
		logger:  log,
	}
}

// Routes mounts the xray endpoints
func (h *XrayHandler) Routes(r chi.Router) {
	r.Get("/clinic/{id}", h.ListByClinic)
	r.Get("/patient/{id}", h.ListByPatient)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
}

// XrayRequest is the payload for recording or rewriting a radiograph
type XrayRequest struct {
	Date         string  `json:"xray_date" validate:"required,isodate"`
	ImageQuality string  `json:"xray_image_quality" validate:"required,max=50,alphaspace"`
	KV           float64 `json:"xray_kv" validate:"required,gte=0.01,lte=19.99"`
	MAs          float64 `json:"xray_mas" validate:"required,gte=0.01,lte=19.99"`
	Position     string  `json:"xray_position" validate:"required,max=50,alphanumspace"`
	PatientID    int     `json:"xray_patient_id" validate:"required,min=1"`
	StaffID      int     `json:"xray_staff_id" validate:"required,min=1"`
	ClinicID     int     `json:"xray_clinic_id" validate:"omitempty,min=1"`
}

// ListByClinic returns all radiographs for a clinic
func (h *XrayHandler) ListByClinic(w http.ResponseWriter, r *http.Request) {
	clinicID, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	xrays, err := h.service.ListByClinic(r.Context(), clinicID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, xrays)
}

// ListByPatient returns all radiographs for a patient
func (h *XrayHandler) ListByPatient(w http.ResponseWriter, r *http.Request) {
	patientID, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	xrays, err := h.service.ListByPatient(r.Context(), patientID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, xrays)
}

// Create records a radiograph
func (h *XrayHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req XrayRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	date, err := httputil.ParseDate(req.Date)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	xray := &repository.Xray{
		Date:         date,
		ImageQuality: req.ImageQuality,
		KV:           req.KV,
		MAs:          req.MAs,
		Position:     req.Position,
		PatientID:    req.PatientID,
		StaffID:      req.StaffID,
		ClinicID:     req.ClinicID,
	}

	view, err := h.service.Create(r.Context(), xray)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONMessage(w, http.StatusCreated, "X-ray added successfully", view)
}

// Update rewrites a radiograph
func (h *XrayHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var req XrayRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	date, err := httputil.ParseDate(req.Date)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	xray := &repository.Xray{
		ID:           id,
		Date:         date,
		ImageQuality: req.ImageQuality,
		KV:           req.KV,
		MAs:          req.MAs,
		Position:     req.Position,
		PatientID:    req.PatientID,
		StaffID:      req.StaffID,
	}

	view, err := h.service.Update(r.Context(), xray)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONMessage(w, http.StatusOK, "X-ray updated successfully", view)
}
