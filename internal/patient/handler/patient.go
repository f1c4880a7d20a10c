package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vetdesk/vetdesk-backend/internal/patient/repository"
	"github.com/vetdesk/vetdesk-backend/internal/patient/service"
	"github.com/vetdesk/vetdesk-backend/pkg/errors"
	"github.com/vetdesk/vetdesk-backend/pkg/httputil"
	"github.com/vetdesk/vetdesk-backend/pkg/logger"
)

// PatientHandler handles patient endpoints
type PatientHandler struct {
	service *service.PatientService
	logger  *logger.Logger
}

// NewPatientHandler creates a new patient handler
func NewPatientHandler(svc *service.PatientService, log *logger.Logger) *PatientHandler {
	return &PatientHandler{
		service: svc,
		logger:  log,
	}
}

// Routes mounts the patient endpoints
func (h *PatientHandler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Get("/client/{id}", h.ListByClient)
	r.Get("/clinic/{id}", h.ListByClinic)
	r.Get("/species/{species}/clinic/{id}", h.ListBySpecies)
	r.Put("/{id}", h.Update)
	r.Put("/deactivate/{id}", h.Deactivate)
	r.Put("/reactivate/{id}", h.Reactivate)
	r.Delete("/{id}", h.Delete)
}

// PatientRequest is the payload for creating or updating a patient
type PatientRequest struct {
	Name      string  `json:"patient_name" validate:"required,max=50,alphaspace"`
	Age       int     `json:"patient_age" validate:"min=0,max=150"`
	Species   string  `json:"patient_species" validate:"required,oneof=Avian Canine Feline Reptile Rodent"`
	Breed     string  `json:"patient_breed" validate:"required,max=50,alphaspace"`
	Sex       string  `json:"patient_sex" validate:"required,oneof=M MN F FN"`
	Color     string  `json:"patient_color" validate:"required,max=30,alphaspace"`
	Microchip *string `json:"patient_microchip" validate:"omitempty,microchip"`
	ClientID  int     `json:"patient_client_id" validate:"required,min=1"`
}

// DeactivateRequest carries the reason a patient is being deactivated
type DeactivateRequest struct {
	Reason string `json:"patient_reason_inactive" validate:"required,oneof=Other 'Patient Deceased' 'Patient Rehomed' 'Client Relocating'"`
}

// Create handles patient registration
func (h *PatientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req PatientRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	patient := &repository.Patient{
		Name:      req.Name,
		Age:       req.Age,
		Species:   req.Species,
		Breed:     req.Breed,
		Sex:       req.Sex,
		Color:     req.Color,
		Microchip: req.Microchip,
		ClientID:  req.ClientID,
	}

	if err := h.service.Create(r.Context(), patient); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONMessage(w, http.StatusCreated, "Patient created", patient)
}

// Get returns a single patient
func (h *PatientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	patient, err := h.service.Get(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, patient)
}

// ListByClient returns a client's patients
func (h *PatientHandler) ListByClient(w http.ResponseWriter, r *http.Request) {
	clientID, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	patients, err := h.service.ListByClient(r.Context(), clientID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, patients)
}

// ListByClinic returns a clinic's patients
func (h *PatientHandler) ListByClinic(w http.ResponseWriter, r *http.Request) {
	clinicID, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	patients, err := h.service.ListByClinic(r.Context(), clinicID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, patients)
}

// ListBySpecies returns a clinic's patients of one species
func (h *PatientHandler) ListBySpecies(w http.ResponseWriter, r *http.Request) {
	species := chi.URLParam(r, "species")
	if !validSpecies(species) {
		httputil.Error(w, errors.BadRequest("invalid species"))
		return
	}

	clinicID, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	patients, err := h.service.ListBySpeciesAndClinic(r.Context(), species, clinicID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, patients)
}

// Update replaces a patient's details
func (h *PatientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var req PatientRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	patient := &repository.Patient{
		ID:        id,
		Name:      req.Name,
		Age:       req.Age,
		Species:   req.Species,
		Breed:     req.Breed,
		Sex:       req.Sex,
		Color:     req.Color,
		Microchip: req.Microchip,
	}

	if err := h.service.Update(r.Context(), patient); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONMessage(w, http.StatusOK, "Patient updated", patient)
}

// Deactivate marks a patient inactive
func (h *PatientHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
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

	httputil.JSONMessage(w, http.StatusOK, "Patient deactivated", nil)
}

// Reactivate marks a patient active again
func (h *PatientHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.Reactivate(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONMessage(w, http.StatusOK, "Patient reactivated", nil)
}

// Delete removes a patient
func (h *PatientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONMessage(w, http.StatusOK, "Patient deleted", nil)
}

func validSpecies(s string) bool {
	switch s {
	case "Avian", "Canine", "Feline", "Reptile", "Rodent":
		return true
	}
	return false
}
