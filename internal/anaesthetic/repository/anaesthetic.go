package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/vetdesk/vetdesk-backend/pkg/database"
	"github.com/vetdesk/vetdesk-backend/pkg/errors"
)

// Anaesthetic represents one monitoring sheet
type Anaesthetic struct {
	ID        int       `db:"anaesthetic_id" json:"anaesthetic_id"`
	PatientID int       `db:"anaesthetic_patient_id" json:"anaesthetic_patient_id"`
	Date      time.Time `db:"anaesthetic_date" json:"anaesthetic_date"`
	StaffID   int       `db:"anaesthetic_staff_id" json:"anaesthetic_staff_id"`
}

// SheetView is the joined display row for a sheet
type SheetView struct {
	ID            int       `db:"anaesthetic_id" json:"anaesthetic_id"`
	PatientID     int       `db:"anaesthetic_patient_id" json:"anaesthetic_patient_id"`
	Date          time.Time `db:"anaesthetic_date" json:"anaesthetic_date"`
	StaffUsername string    `db:"staff_username" json:"staff_username"`
	PatientName   string    `db:"patient_name" json:"patient_name"`
}

// Period represents one row of monitoring readings on a sheet
type Period struct {
	ID            int     `db:"anaesthetic_period_id" json:"anaesthetic_period_id"`
	AnaestheticID int     `db:"anaesthetic_id" json:"anaesthetic_id"`
	Interval      int     `db:"anaesthetic_period" json:"anaesthetic_period"`
	HeartRate     int     `db:"anaesthetic_hr" json:"anaesthetic_hr"`
	RespRate      int     `db:"anaesthetic_rr" json:"anaesthetic_rr"`
	Oxygen        float64 `db:"anaesthetic_oxygen" json:"anaesthetic_oxygen"`
	Agent         float64 `db:"anaesthetic_agent" json:"anaesthetic_agent"`
	EyePosition   string  `db:"anaesthetic_eye_pos" json:"anaesthetic_eye_pos"`
	Reflexes      string  `db:"anaesthetic_reflexes" json:"anaesthetic_reflexes"`
}

// PatientAnaestheticInfo is what the sheet rules need to know about a patient
type PatientAnaestheticInfo struct {
	Name     string `db:"patient_name"`
	Inactive bool   `db:"patient_inactive"`
}

// StaffAnaestheticInfo is what the sheet rules need to know about a staff member
type StaffAnaestheticInfo struct {
	Username string `db:"staff_username"`
	Role     string `db:"staff_role"`
}

// AnaestheticRepository handles anaesthetic sheet persistence
type AnaestheticRepository struct {
	db *database.DB
}

// NewAnaestheticRepository creates a new anaesthetic repository
func NewAnaestheticRepository(db *database.DB) *AnaestheticRepository {
	return &AnaestheticRepository{db: db}
}

// GetPatientInfo returns the patient fields the sheet rules check
func (r *AnaestheticRepository) GetPatientInfo(ctx context.Context, patientID int) (*PatientAnaestheticInfo, error) {
	var info PatientAnaestheticInfo

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

// GetStaffInfo returns the staff fields the sheet rules check
func (r *AnaestheticRepository) GetStaffInfo(ctx context.Context, staffID int) (*StaffAnaestheticInfo, error) {
	var info StaffAnaestheticInfo

	query := `SELECT staff_username, staff_role FROM staff_member WHERE staff_member_id = $1`

	err := r.db.GetContext(ctx, &info, query, staffID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundMsg("No such staff member with ID supplied")
	}
	if err != nil {
		return nil, err
	}

	return &info, nil
}

// ListByPatient returns all of a patient's sheets, newest first
func (r *AnaestheticRepository) ListByPatient(ctx context.Context, patientID int) ([]*SheetView, error) {
	sheets := []*SheetView{}

	query := `
		SELECT a.anaesthetic_id, a.anaesthetic_patient_id, a.anaesthetic_date,
			sm.staff_username, p.patient_name
		FROM anaesthetic a
		JOIN staff_member sm ON a.anaesthetic_staff_id = sm.staff_member_id
		JOIN patient p ON a.anaesthetic_patient_id = p.patient_id
		WHERE a.anaesthetic_patient_id = $1
		ORDER BY a.anaesthetic_date DESC
	`

	if err := r.db.SelectContext(ctx, &sheets, query, patientID); err != nil {
		return nil, err
	}

	return sheets, nil
}

// GetSheet returns one sheet in its joined display form
func (r *AnaestheticRepository) GetSheet(ctx context.Context, id int) (*SheetView, error) {
	var sheet SheetView

	query := `
		SELECT a.anaesthetic_id, a.anaesthetic_patient_id, a.anaesthetic_date,
			sm.staff_username, p.patient_name
		FROM anaesthetic a
		JOIN staff_member sm ON a.anaesthetic_staff_id = sm.staff_member_id
		JOIN patient p ON a.anaesthetic_patient_id = p.patient_id
		WHERE a.anaesthetic_id = $1
	`

	err := r.db.GetContext(ctx, &sheet, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundMsg("No such anaesthetic with ID supplied")
	}
	if err != nil {
		return nil, err
	}

	return &sheet, nil
}

// SheetExists reports whether a sheet is recorded
func (r *AnaestheticRepository) SheetExists(ctx context.Context, id int) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM anaesthetic WHERE anaesthetic_id = $1)`
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, err
	}
	return exists, nil
}

// ListPeriods returns a sheet's readings in recorded order
func (r *AnaestheticRepository) ListPeriods(ctx context.Context, anaestheticID int) ([]*Period, error) {
	periods := []*Period{}

	query := `
		SELECT anaesthetic_period_id, anaesthetic_id, anaesthetic_period,
			anaesthetic_hr, anaesthetic_rr, anaesthetic_oxygen,
			anaesthetic_agent, anaesthetic_eye_pos, anaesthetic_reflexes
		FROM anaesthetic_period
		WHERE anaesthetic_id = $1
		ORDER BY anaesthetic_period ASC
	`

	if err := r.db.SelectContext(ctx, &periods, query, anaestheticID); err != nil {
		return nil, err
	}

	return periods, nil
}

// Create inserts a new sheet stamped with today, filling in the generated ID
func (r *AnaestheticRepository) Create(ctx context.Context, a *Anaesthetic) error {
	a.Date = time.Now()

	query := `
		INSERT INTO anaesthetic (anaesthetic_patient_id, anaesthetic_date, anaesthetic_staff_id)
		VALUES ($1, $2, $3)
		RETURNING anaesthetic_id
	`

	err := r.db.QueryRowxContext(ctx, query, a.PatientID, a.Date, a.StaffID).Scan(&a.ID)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// CreatePeriod inserts one reading row, filling in the generated ID
func (r *AnaestheticRepository) CreatePeriod(ctx context.Context, p *Period) error {
	query := `
		INSERT INTO anaesthetic_period (anaesthetic_id, anaesthetic_period,
			anaesthetic_hr, anaesthetic_rr, anaesthetic_oxygen,
			anaesthetic_agent, anaesthetic_eye_pos, anaesthetic_reflexes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING anaesthetic_period_id
	`

	err := r.db.QueryRowxContext(ctx, query,
		p.AnaestheticID, p.Interval, p.HeartRate, p.RespRate,
		p.Oxygen, p.Agent, p.EyePosition, p.Reflexes,
	).Scan(&p.ID)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}
