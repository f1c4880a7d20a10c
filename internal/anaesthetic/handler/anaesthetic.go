package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vetdesk/vetdesk-backend/internal/anaesthetic/repository"
	"github.com/vetdesk/vetdesk-backend/internal/anaesthetic/service"
	"github.com/vetdesk/vetdesk-backend/pkg/httputil"
	"github.com/vetdesk/vetdesk-backend/pkg/logger"
)

// AnaestheticHandler handles anaesthetic sheet endpoints
type AnaestheticHandler struct {
	service *service.AnaestheticService
	logger  *logger.Logger
}

// NewAnaestheticHandler creates a new anaesthetic handler
func NewAnaestheticHandler(svc *service.AnaestheticService, log *logger.Logger) *AnaestheticHandler {
	return &AnaestheticHandler{
		service: svc,
		logger:  log,
	}
}

// Routes mounts the anaesthetic endpoints
func (h *AnaestheticHandler) Routes(r chi.Router) {
	r.Get("/patient/{id}", h.ListByPatient)
	r.Get("/{id}", h.Get)
	r.Post("/", h.Create)
	r.Post("/period", h.AddPeriod)
}

// CreateRequest is the payload for starting a sheet
type CreateRequest struct {
	PatientID int `json:"patient_id" validate:"required,min=1"`
	StaffID   int `json:"staff_id" validate:"required,min=1"`
}

// PeriodRequest is the payload for recording one set of readings
type PeriodRequest struct {
	AnaestheticID int     `json:"id" validate:"required,min=1"`
	Interval      int     `json:"interval" validate:"min=0"`
	HeartRate     int     `json:"hr" validate:"min=0"`
	RespRate      int     `json:"rr" validate:"min=0"`
	Oxygen        float64 `json:"oxygen" validate:"min=0"`
	Agent         float64 `json:"agent" validate:"min=0"`
	EyePosition   string  `json:"eye_pos" validate:"required,oneof=Central Ventral"`
	Reflexes      string  `json:"reflexes" validate:"required,oneof=Yes No"`
}

// ListByPatient returns all of a patient's sheets
func (h *AnaestheticHandler) ListByPatient(w http.ResponseWriter, r *http.Request) {
	patientID, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	sheets, err := h.service.ListByPatient(r.Context(), patientID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, sheets)
}

// Get returns one sheet with its readings
func (h *AnaestheticHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	sheet, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, sheet)
}

// Create starts a new sheet
func (h *AnaestheticHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	sheet, err := h.service.Create(r.Context(), req.PatientID, req.StaffID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONMessage(w, http.StatusCreated, "Anaesthetic started successfully", sheet)
}

// AddPeriod records one set of readings on a sheet
func (h *AnaestheticHandler) AddPeriod(w http.ResponseWriter, r *http.Request) {
	var req PeriodRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	period := &repository.Period{
		AnaestheticID: req.AnaestheticID,
		Interval:      req.Interval,
		HeartRate:     req.HeartRate,
		RespRate:      req.RespRate,
		Oxygen:        req.Oxygen,
		Agent:         req.Agent,
		EyePosition:   req.EyePosition,
		Reflexes:      req.Reflexes,
	}

	if err := h.service.AddPeriod(r.Context(), period); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONMessage(w, http.StatusCreated, "Anaesthetic period added successfully", period)
}
