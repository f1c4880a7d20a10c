package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/vetdesk/vetdesk-backend/pkg/database"
	"github.com/vetdesk/vetdesk-backend/pkg/errors"
)

// Xray represents one radiograph record
type Xray struct {
	ID           int       `db:"xray_id" json:"xray_id"`
	Date         time.Time `db:"xray_date" json:"xray_date"`
	ImageQuality string    `db:"xray_image_quality" json:"xray_image_quality"`
	KV           float64   `db:"xray_kv" json:"xray_kv"`
	MAs          float64   `db:"xray_mas" json:"xray_mas"`
	Position     string    `db:"xray_position" json:"xray_position"`
	PatientID    int       `db:"xray_patient_id" json:"xray_patient_id"`
	StaffID      int       `db:"xray_staff_id" json:"xray_staff_id"`
	ClinicID     int       `db:"xray_clinic_id" json:"xray_clinic_id"`
}

// XrayView is the joined display row for a radiograph
type XrayView struct {
	ID            int       `db:"xray_id" json:"xray_id"`
	Date          time.Time `db:"xray_date" json:"xray_date"`
	ImageQuality  string    `db:"xray_image_quality" json:"xray_image_quality"`
	KV            float64   `db:"xray_kv" json:"xray_kv"`
	MAs           float64   `db:"xray_mas" json:"xray_mas"`
	Position      string    `db:"xray_position" json:"xray_position"`
	PatientID     int       `db:"xray_patient_id" json:"xray_patient_id"`
	PatientName   string    `db:"patient_name" json:"patient_name"`
	StaffUsername string    `db:"staff_username" json:"staff_username"`
}

// PatientXrayInfo is what the radiograph rules need to know about a patient
type PatientXrayInfo struct {
	Name     string `db:"patient_name"`
	Inactive bool   `db:"patient_inactive"`
}

const xrayViewColumns = `
	x.xray_id, x.xray_date, x.xray_image_quality, x.xray_kv, x.xray_mas,
	x.xray_position, x.xray_patient_id, p.patient_name, sm.staff_username
`

const xrayViewJoin = `
	FROM xray x
	JOIN patient p ON x.xray_patient_id = p.patient_id
	JOIN staff_member sm ON x.xray_staff_id = sm.staff_member_id
`

// XrayRepository handles radiograph persistence
type XrayRepository struct {
	db *database.DB
}

// NewXrayRepository creates a new xray repository
func NewXrayRepository(db *database.DB) *XrayRepository {
	return &XrayRepository{db: db}
}

// GetPatientInfo returns the patient fields the radiograph rules check
func (r *XrayRepository) GetPatientInfo(ctx context.Context, patientID int) (*PatientXrayInfo, error) {
	var info PatientXrayInfo

	query := `SELECT patient_name, patient_inactive FROM patient WHERE patient_id = $1`

	err := r.db.GetContext(ctx, &info, query, patientID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundMsg("No such patient with ID supplied")
	}
	if err != nil {
		return nil, err
	}

	return &info, nil
}

// ListByClinic returns all of a clinic's radiographs, newest first
func (r *XrayRepository) ListByClinic(ctx context.Context, clinicID int) ([]*XrayView, error) {
	xrays := []*XrayView{}

	query := `SELECT ` + xrayViewColumns + xrayViewJoin + `
		WHERE x.xray_clinic_id = $1
		ORDER BY x.xray_date DESC
	`

	if err := r.db.SelectContext(ctx, &xrays, query, clinicID); err != nil {
		return nil, err
	}

	return xrays, nil
}

// ListByPatient returns all of a patient's radiographs, newest first
func (r *XrayRepository) ListByPatient(ctx context.Context, patientID int) ([]*XrayView, error) {
	xrays := []*XrayView{}

	query := `SELECT ` + xrayViewColumns + xrayViewJoin + `
		WHERE x.xray_patient_id = $1
		ORDER BY x.xray_date DESC
	`

	if err := r.db.SelectContext(ctx, &xrays, query, patientID); err != nil {
		return nil, err
	}

	return xrays, nil
}

// GetView returns one radiograph in its joined display form
func (r *XrayRepository) GetView(ctx context.Context, id int) (*XrayView, error) {
	var view XrayView

	query := `SELECT ` + xrayViewColumns + xrayViewJoin + `
		WHERE x.xray_id = $1
	`

	err := r.db.GetContext(ctx, &view, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundMsg("No such xray with ID supplied")
	}
	if err != nil {
		return nil, err
	}

	return &view, nil
}

// Create inserts a radiograph and returns its joined display form
func (r *XrayRepository) Create(ctx context.Context, x *Xray) (*XrayView, error) {
	query := `
		INSERT INTO xray (xray_date, xray_image_quality, xray_kv, xray_mas,
			xray_position, xray_patient_id, xray_staff_id, xray_clinic_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING xray_id
	`

	err := r.db.QueryRowContext(ctx, query,
		x.Date, x.ImageQuality, x.KV, x.MAs,
		x.Position, x.PatientID, x.StaffID, x.ClinicID,
	).Scan(&x.ID)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return nil, appErr
		}
		return nil, err
	}

	return r.GetView(ctx, x.ID)
}

// Update rewrites a radiograph's fields and returns its joined display form
func (r *XrayRepository) Update(ctx context.Context, x *Xray) (*XrayView, error) {
	query := `
		UPDATE xray
		SET xray_date = $1, xray_image_quality = $2, xray_kv = $3, xray_mas = $4,
			xray_position = $5, xray_patient_id = $6, xray_staff_id = $7
		WHERE xray_id = $8
		RETURNING xray_id
	`

	err := r.db.QueryRowContext(ctx, query,
		x.Date, x.ImageQuality, x.KV, x.MAs,
		x.Position, x.PatientID, x.StaffID, x.ID,
	).Scan(&x.ID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundMsg("No such xray with ID supplied")
	}
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return nil, appErr
		}
		return nil, err
	}

	return r.GetView(ctx, x.ID)
}
