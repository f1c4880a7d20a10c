package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vetdesk/vetdesk-backend/internal/drug/repository"
	"github.com/vetdesk/vetdesk-backend/internal/drug/service"
	"github.com/vetdesk/vetdesk-backend/pkg/httputil"
	"github.com/vetdesk/vetdesk-backend/pkg/logger"
)

// DrugHandler handles drug, stock and administration endpoints
type DrugHandler struct {
	service *service.DrugService
	logger  *logger.Logger
}

// NewDrugHandler creates a new drug handler
func NewDrugHandler(svc *service.DrugService, log *logger.Logger) *DrugHandler {
	return &DrugHandler{
		service: svc,
		logger:  log,
	}
}

// Routes mounts the drug endpoints. The log route is registered before the
// two-segment stock route so chi does not swallow it.
func (h *DrugHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/log/{drugid}/{clinicid}", h.ListLog)
	r.Get("/{drugid}/{clinicid}", h.ListStockByDrug)
	r.Get("/{id}", h.ListStockByClinic)
	r.Post("/", h.AddStock)
	r.Post("/log", h.Administer)
}

// AddStockRequest is the payload for recording a new batch
type AddStockRequest struct {
	BatchID         int     `json:"drug_batch_id" validate:"required,min=1"`
	ExpiryDate      string  `json:"drug_expiry_date" validate:"required,isodate"`
	Quantity        float64 `json:"drug_quantity" validate:"required,gt=0"`
	QuantityMeasure string  `json:"drug_quantity_measure" validate:"required,max=10"`
	Concentration   string  `json:"drug_concentration" validate:"required,max=20,alphanumspace"`
	DrugID          int     `json:"drug_stock_drug_id" validate:"required,min=1"`
	ClinicID        int     `json:"drug_stock_clinic_id" validate:"required,min=1"`
}

// AdministerRequest is the payload for recording an administration
type AdministerRequest struct {
	DateGiven       string  `json:"drug_date_given" validate:"required,isodate"`
	QuantityGiven   float64 `json:"drug_quantity_given" validate:"required,gt=0"`
	QuantityMeasure string  `json:"drug_quantity_measure" validate:"required,max=10"`
	BatchID         int     `json:"drug_log_drug_stock_id" validate:"required,min=1"`
	PatientID       int     `json:"drug_patient_id" validate:"required,min=1"`
	StaffID         int     `json:"drug_staff_id" validate:"required,min=1"`
}

// List returns all drugs
func (h *DrugHandler) List(w http.ResponseWriter, r *http.Request) {
	drugs, err := h.service.List(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, drugs)
}

// ListStockByClinic returns all batches held by a clinic
func (h *DrugHandler) ListStockByClinic(w http.ResponseWriter, r *http.Request) {
	clinicID, err := httputil.IDParam(r, "id")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	stock, err := h.service.ListStockByClinic(r.Context(), clinicID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, stock)
}

// ListStockByDrug returns a clinic's batches of one drug
func (h *DrugHandler) ListStockByDrug(w http.ResponseWriter, r *http.Request) {
	drugID, err := httputil.IDParam(r, "drugid")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	clinicID, err := httputil.IDParam(r, "clinicid")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	stock, err := h.service.ListStockByDrugAndClinic(r.Context(), drugID, clinicID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, stock)
}

// ListLog returns the administration history for one drug at one clinic
func (h *DrugHandler) ListLog(w http.ResponseWriter, r *http.Request) {
	drugID, err := httputil.IDParam(r, "drugid")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	clinicID, err := httputil.IDParam(r, "clinicid")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	entries, err := h.service.ListLog(r.Context(), drugID, clinicID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, entries)
}

// AddStock records a new batch for a clinic
func (h *DrugHandler) AddStock(w http.ResponseWriter, r *http.Request) {
	var req AddStockRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	expiry, err := httputil.ParseDate(req.ExpiryDate)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	stock := &repository.DrugStock{
		BatchID:         req.BatchID,
		ExpiryDate:      expiry,
		Quantity:        req.Quantity,
		QuantityMeasure: req.QuantityMeasure,
		Concentration:   req.Concentration,
		DrugID:          req.DrugID,
		ClinicID:        req.ClinicID,
	}

	if err := h.service.AddStock(r.Context(), stock); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONMessage(w, http.StatusCreated, "Drug Stock added successfully", stock)
}

// Administer records a drug administration
func (h *DrugHandler) Administer(w http.ResponseWriter, r *http.Request) {
	var req AdministerRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	dateGiven, err := httputil.ParseDate(req.DateGiven)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	input := &service.AdministerInput{
		NewAdministration: repository.NewAdministration{
			DateAdministered: dateGiven,
			QuantityGiven:    req.QuantityGiven,
			BatchID:          req.BatchID,
			PatientID:        req.PatientID,
			StaffID:          req.StaffID,
		},
		QuantityMeasure: req.QuantityMeasure,
	}

	entry, err := h.service.Administer(r.Context(), input)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSONMessage(w, http.StatusCreated, "Drug successfully administered", entry)
}
