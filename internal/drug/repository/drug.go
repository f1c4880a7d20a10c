package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vetdesk/vetdesk-backend/pkg/database"
	"github.com/vetdesk/vetdesk-backend/pkg/errors"
)

// Drug represents a drug known to the system
type Drug struct {
	ID   int    `db:"drug_id" json:"drug_id"`
	Name string `db:"drug_name" json:"drug_name"`
}

// DrugStock represents one batch of a drug held by a clinic
type DrugStock struct {
	BatchID           int       `db:"drug_batch_id" json:"drug_batch_id"`
	ExpiryDate        time.Time `db:"drug_expiry_date" json:"drug_expiry_date"`
	Quantity          float64   `db:"drug_quantity" json:"drug_quantity"`
	QuantityMeasure   string    `db:"drug_quantity_measure" json:"drug_quantity_measure"`
	QuantityRemaining float64   `db:"drug_quantity_remaining" json:"drug_quantity_remaining"`
	Concentration     string    `db:"drug_concentration" json:"drug_concentration"`
	DrugID            int       `db:"drug_stock_drug_id" json:"drug_stock_drug_id"`
	ClinicID          int       `db:"drug_stock_clinic_id" json:"drug_stock_clinic_id"`
}

// DrugLogEntry is the joined display row for an administration record
type DrugLogEntry struct {
	QuantityGiven    float64   `db:"drug_quantity_given" json:"drug_quantity_given"`
	DateAdministered time.Time `db:"drug_date_administered" json:"drug_date_administered"`
	BatchID          int       `db:"drug_batch_id" json:"drug_batch_id"`
	QuantityMeasure  string    `db:"drug_quantity_measure" json:"drug_quantity_measure"`
	PatientName      string    `db:"patient_name" json:"patient_name"`
	PatientMicrochip *string   `db:"patient_microchip" json:"patient_microchip"`
	StaffUsername    string    `db:"staff_username" json:"staff_username"`
}

// PatientStatus is what the administration rules need to know about a patient
type PatientStatus struct {
	Name     string `db:"patient_name"`
	Inactive bool   `db:"patient_inactive"`
}

// StaffRole is what the administration rules need to know about a staff member
type StaffRole struct {
	Username string `db:"staff_username"`
	Role     string `db:"staff_role"`
}

// NewAdministration carries the fields of a drug log insert
type NewAdministration struct {
	DateAdministered time.Time
	QuantityGiven    float64
	BatchID          int
	PatientID        int
	StaffID          int
}

// DrugRepository handles drug, stock and log persistence
type DrugRepository struct {
	db *database.DB
}

// NewDrugRepository creates a new drug repository
func NewDrugRepository(db *database.DB) *DrugRepository {
	return &DrugRepository{db: db}
}

const drugLogJoin = `
	SELECT dl.drug_quantity_given, dl.drug_date_administered,
		ds.drug_batch_id, ds.drug_quantity_measure,
		p.patient_name, p.patient_microchip,
		sm.staff_username
	FROM drug_log dl
	JOIN drug_stock ds ON dl.drug_log_drug_stock_id = ds.drug_batch_id
	JOIN patient p ON dl.drug_patient_id = p.patient_id
	JOIN staff_member sm ON dl.drug_staff_id = sm.staff_member_id
`

// List returns all drugs, alphabetically
func (r *DrugRepository) List(ctx context.Context) ([]*Drug, error) {
	drugs := []*Drug{}

	query := `SELECT drug_id, drug_name FROM drug ORDER BY drug_name ASC`

	if err := r.db.SelectContext(ctx, &drugs, query); err != nil {
		return nil, err
	}

	return drugs, nil
}

// ClinicExists reports whether a clinic is registered
func (r *DrugRepository) ClinicExists(ctx context.Context, clinicID int) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM clinic WHERE clinic_id = $1)`
	if err := r.db.GetContext(ctx, &exists, query, clinicID); err != nil {
		return false, err
	}
	return exists, nil
}

// DrugExists reports whether a drug is registered
func (r *DrugRepository) DrugExists(ctx context.Context, drugID int) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM drug WHERE drug_id = $1)`
	if err := r.db.GetContext(ctx, &exists, query, drugID); err != nil {
		return false, err
	}
	return exists, nil
}

// BatchExists reports whether a stock batch is already recorded
func (r *DrugRepository) BatchExists(ctx context.Context, batchID int) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM drug_stock WHERE drug_batch_id = $1)`
	if err := r.db.GetContext(ctx, &exists, query, batchID); err != nil {
		return false, err
	}
	return exists, nil
}

const stockColumns = `
	drug_batch_id, drug_expiry_date, drug_quantity, drug_quantity_measure,
	drug_quantity_remaining, drug_concentration, drug_stock_drug_id,
	drug_stock_clinic_id
`

// ListStockByClinic returns all stock batches held by a clinic
func (r *DrugRepository) ListStockByClinic(ctx context.Context, clinicID int) ([]*DrugStock, error) {
	stock := []*DrugStock{}

	query := `SELECT ` + stockColumns + ` FROM drug_stock WHERE drug_stock_clinic_id = $1 ORDER BY drug_expiry_date`

	if err := r.db.SelectContext(ctx, &stock, query, clinicID); err != nil {
		return nil, err
	}

	return stock, nil
}

// ListStockByDrugAndClinic returns a clinic's batches of one drug
func (r *DrugRepository) ListStockByDrugAndClinic(ctx context.Context, drugID, clinicID int) ([]*DrugStock, error) {
	stock := []*DrugStock{}

	query := `SELECT ` + stockColumns + ` FROM drug_stock WHERE drug_stock_drug_id = $1 AND drug_stock_clinic_id = $2 ORDER BY drug_expiry_date`

	if err := r.db.SelectContext(ctx, &stock, query, drugID, clinicID); err != nil {
		return nil, err
	}

	return stock, nil
}

// GetStock looks up a batch by its ID
func (r *DrugRepository) GetStock(ctx context.Context, batchID int) (*DrugStock, error) {
	var stock DrugStock

	query := `SELECT ` + stockColumns + ` FROM drug_stock WHERE drug_batch_id = $1`

	err := r.db.GetContext(ctx, &stock, query, batchID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundMsg("Drug batch does not exist. Please recheck the batch code")
	}
	if err != nil {
		return nil, err
	}

	return &stock, nil
}

// CreateStock inserts a new batch. The remaining quantity starts at the
// full quantity.
func (r *DrugRepository) CreateStock(ctx context.Context, stock *DrugStock) error {
	query := `
		INSERT INTO drug_stock (drug_batch_id, drug_expiry_date, drug_quantity,
			drug_quantity_measure, drug_quantity_remaining, drug_concentration,
			drug_stock_drug_id, drug_stock_clinic_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	stock.QuantityRemaining = stock.Quantity

	_, err := r.db.ExecContext(ctx, query,
		stock.BatchID, stock.ExpiryDate, stock.Quantity, stock.QuantityMeasure,
		stock.QuantityRemaining, stock.Concentration, stock.DrugID, stock.ClinicID,
	)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// ListLogByDrugAndClinic returns the joined administration history for one
// drug at one clinic, newest first
func (r *DrugRepository) ListLogByDrugAndClinic(ctx context.Context, drugID, clinicID int) ([]*DrugLogEntry, error) {
	entries := []*DrugLogEntry{}

	query := drugLogJoin + `
		WHERE dl.drug_log_drug_stock_id IN (
			SELECT drug_batch_id FROM drug_stock
			WHERE drug_stock_drug_id = $1 AND drug_stock_clinic_id = $2
		)
		ORDER BY dl.drug_date_administered DESC
	`

	if err := r.db.SelectContext(ctx, &entries, query, drugID, clinicID); err != nil {
		return nil, err
	}

	return entries, nil
}

// GetPatientStatus returns the patient fields the administration rules check
func (r *DrugRepository) GetPatientStatus(ctx context.Context, patientID int) (*PatientStatus, error) {
	var status PatientStatus

	query := `SELECT patient_name, patient_inactive FROM patient WHERE patient_id = $1`

	err := r.db.GetContext(ctx, &status, query, patientID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("patient")
	}
	if err != nil {
		return nil, err
	}

	return &status, nil
}

// GetStaffRole returns the staff fields the administration rules check
func (r *DrugRepository) GetStaffRole(ctx context.Context, staffID int) (*StaffRole, error) {
	var role StaffRole

	query := `SELECT staff_username, staff_role FROM staff_member WHERE staff_member_id = $1`

	err := r.db.GetContext(ctx, &role, query, staffID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("staff member")
	}
	if err != nil {
		return nil, err
	}

	return &role, nil
}

// RecordAdministration inserts the log entry and decrements the batch's
// remaining quantity in one transaction. The decrement is guarded in SQL so
// a concurrent administration cannot drive the batch negative.
func (r *DrugRepository) RecordAdministration(ctx context.Context, adm *NewAdministration) (*DrugLogEntry, error) {
	var entry DrugLogEntry

	err := r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		var logID int
		err := tx.QueryRowxContext(ctx, `
			INSERT INTO drug_log (drug_date_administered, drug_quantity_given,
				drug_log_drug_stock_id, drug_patient_id, drug_staff_id)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING drug_log_id
		`, adm.DateAdministered, adm.QuantityGiven, adm.BatchID, adm.PatientID, adm.StaffID).Scan(&logID)
		if err != nil {
			if appErr := database.MapPQError(err); appErr != nil {
				return appErr
			}
			return err
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE drug_stock
			SET drug_quantity_remaining = drug_quantity_remaining - $1
			WHERE drug_batch_id = $2 AND drug_quantity_remaining >= $1
		`, adm.QuantityGiven, adm.BatchID)
		if err != nil {
			if appErr := database.MapPQError(err); appErr != nil {
				return appErr
			}
			return err
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return errors.BadRequest("not enough drug remaining in batch")
		}

		return tx.GetContext(ctx, &entry, drugLogJoin+` WHERE dl.drug_log_id = $1`, logID)
	})
	if err != nil {
		return nil, err
	}

	return &entry, nil
}
