package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vetdesk/vetdesk-backend/pkg/database"
	"github.com/vetdesk/vetdesk-backend/pkg/errors"
)

// Tooth represents one tooth on a patient's dental chart. Teeth use the
// modified Triadan numbering, so the ID is only unique per patient.
type Tooth struct {
	ToothID   int     `db:"tooth_id" json:"tooth_id"`
	PatientID int     `db:"tooth_patient_id" json:"tooth_patient_id"`
	Problem   string  `db:"tooth_problem" json:"tooth_problem"`
	Note      *string `db:"tooth_note" json:"tooth_note"`
}

// Dental represents a patient's chart record with its last-updated date
type Dental struct {
	ID          int       `db:"dental_id" json:"dental_id"`
	PatientID   int       `db:"dental_patient_id" json:"dental_patient_id"`
	DateUpdated time.Time `db:"dental_date_updated" json:"dental_date_updated"`
}

// PatientDentalInfo is what the chart rules need to know about a patient
type PatientDentalInfo struct {
	Name     string `db:"patient_name"`
	Species  string `db:"patient_species"`
	Inactive bool   `db:"patient_inactive"`
}

// DentalRepository handles dental chart persistence
type DentalRepository struct {
	db *database.DB
}

// NewDentalRepository creates a new dental repository
func NewDentalRepository(db *database.DB) *DentalRepository {
	return &DentalRepository{db: db}
}

// GetPatientInfo returns the patient fields the chart rules check
func (r *DentalRepository) GetPatientInfo(ctx context.Context, patientID int) (*PatientDentalInfo, error) {
	var info PatientDentalInfo

	query := `SELECT patient_name, patient_species, patient_inactive FROM patient WHERE patient_id = $1`

	err := r.db.GetContext(ctx, &info, query, patientID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundMsg("Patient with supplied ID does not exist")
	}
	if err != nil {
		return nil, err
	}

	return &info, nil
}

// HasChart reports whether the patient already has a dental chart
func (r *DentalRepository) HasChart(ctx context.Context, patientID int) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM tooth WHERE tooth_patient_id = $1)`
	if err := r.db.GetContext(ctx, &exists, query, patientID); err != nil {
		return false, err
	}
	return exists, nil
}

// ListTeeth returns a patient's chart in tooth order
func (r *DentalRepository) ListTeeth(ctx context.Context, patientID int) ([]*Tooth, error) {
	teeth := []*Tooth{}

	query := `
		SELECT tooth_id, tooth_patient_id, tooth_problem, tooth_note
		FROM tooth
		WHERE tooth_patient_id = $1
		ORDER BY tooth_id ASC
	`

	if err := r.db.SelectContext(ctx, &teeth, query, patientID); err != nil {
		return nil, err
	}

	return teeth, nil
}

// CreateChart inserts every tooth for the patient plus the chart record
// stamped with today's date, in one transaction. New teeth start healthy
// with no note.
func (r *DentalRepository) CreateChart(ctx context.Context, patientID int, toothIDs []int) ([]*Tooth, error) {
	teeth := []*Tooth{}

	err := r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		for _, toothID := range toothIDs {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO tooth (tooth_id, tooth_patient_id, tooth_problem, tooth_note)
				VALUES ($1, $2, 'Healthy', NULL)
			`, toothID, patientID)
			if err != nil {
				if appErr := database.MapPQError(err); appErr != nil {
					return appErr
				}
				return err
			}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO dental (dental_patient_id, dental_date_updated)
			VALUES ($1, $2)
		`, patientID, time.Now())
		if err != nil {
			if appErr := database.MapPQError(err); appErr != nil {
				return appErr
			}
			return err
		}

		return tx.SelectContext(ctx, &teeth, `
			SELECT tooth_id, tooth_patient_id, tooth_problem, tooth_note
			FROM tooth
			WHERE tooth_patient_id = $1
			ORDER BY tooth_id ASC
		`, patientID)
	})
	if err != nil {
		return nil, err
	}

	return teeth, nil
}

// UpdateTooth updates one tooth and touches the chart's last-updated date,
// in one transaction
func (r *DentalRepository) UpdateTooth(ctx context.Context, t *Tooth) (*Tooth, error) {
	var updated Tooth

	err := r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &updated, `
			UPDATE tooth
			SET tooth_problem = $1, tooth_note = $2
			WHERE tooth_id = $3 AND tooth_patient_id = $4
			RETURNING tooth_id, tooth_patient_id, tooth_problem, tooth_note
		`, t.Problem, t.Note, t.ToothID, t.PatientID)
		if err == sql.ErrNoRows {
			return errors.NotFoundMsg("Tooth does not exist")
		}
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE dental
			SET dental_date_updated = $1
			WHERE dental_patient_id = $2
		`, time.Now(), t.PatientID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// TouchChart re-stamps the chart's last-updated date
func (r *DentalRepository) TouchChart(ctx context.Context, patientID int) (*Dental, error) {
	var dental Dental

	err := r.db.GetContext(ctx, &dental, `
		UPDATE dental
		SET dental_date_updated = $1
		WHERE dental_patient_id = $2
		RETURNING dental_id, dental_patient_id, dental_date_updated
	`, time.Now(), patientID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("dental")
	}
	if err != nil {
		return nil, err
	}

	return &dental, nil
}
