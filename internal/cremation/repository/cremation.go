package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vetdesk/vetdesk-backend/pkg/database"
	"github.com/vetdesk/vetdesk-backend/pkg/errors"
)

// Cremation represents one cremation record. The three dates are filled in
// as the remains move through collection and return, so each may be NULL.
type Cremation struct {
	ID                   int        `db:"cremation_id" json:"cremation_id"`
	DateCollected        *time.Time `db:"cremation_date_collected" json:"cremation_date_collected"`
	DateReturnedPractice *time.Time `db:"cremation_date_ashes_returned_practice" json:"cremation_date_ashes_returned_practice"`
	DateReturnedOwner    *time.Time `db:"cremation_date_ashes_returned_owner" json:"cremation_date_ashes_returned_owner"`
	Form                 string     `db:"cremation_form" json:"cremation_form"`
	OwnerContacted       string     `db:"cremation_owner_contacted" json:"cremation_owner_contacted"`
	PatientID            int        `db:"cremation_patient_id" json:"cremation_patient_id"`
	ClinicID             int        `db:"cremation_clinic_id" json:"cremation_clinic_id"`
}

// CremationView is the joined display row for a cremation
type CremationView struct {
	ID                   int        `db:"cremation_id" json:"cremation_id"`
	DateCollected        *time.Time `db:"cremation_date_collected" json:"cremation_date_collected"`
	DateReturnedPractice *time.Time `db:"cremation_date_ashes_returned_practice" json:"cremation_date_ashes_returned_practice"`
	DateReturnedOwner    *time.Time `db:"cremation_date_ashes_returned_owner" json:"cremation_date_ashes_returned_owner"`
	Form                 string     `db:"cremation_form" json:"cremation_form"`
	OwnerContacted       string     `db:"cremation_owner_contacted" json:"cremation_owner_contacted"`
	PatientID            int        `db:"cremation_patient_id" json:"cremation_patient_id"`
	PatientName          string     `db:"patient_name" json:"patient_name"`
	PatientMicrochip     *string    `db:"patient_microchip" json:"patient_microchip"`
}

// PatientCremationInfo is what the cremation rules need to know about a patient
type PatientCremationInfo struct {
	Name           string  `db:"patient_name"`
	Inactive       bool    `db:"patient_inactive"`
	ReasonInactive *string `db:"patient_reason_inactive"`
}

const cremationViewColumns = `
	c.cremation_id, c.cremation_date_collected,
	c.cremation_date_ashes_returned_practice, c.cremation_date_ashes_returned_owner,
	c.cremation_form, c.cremation_owner_contacted, c.cremation_patient_id,
	p.patient_name, p.patient_microchip
`

const cremationViewJoin = `
	FROM cremation c
	JOIN patient p ON c.cremation_patient_id = p.patient_id
`

// deceasedStamp keeps the patient's record consistent with the cremation
// entry even when the cremation is edited after a reactivation.
const deceasedStamp = `
	UPDATE patient
	SET patient_inactive = TRUE, patient_reason_inactive = 'Patient Deceased'
	WHERE patient_id = $1
`

// CremationRepository handles cremation persistence
type CremationRepository struct {
	db *database.DB
}

// NewCremationRepository creates a new cremation repository
func NewCremationRepository(db *database.DB) *CremationRepository {
	return &CremationRepository{db: db}
}

// GetPatientInfo returns the patient fields the cremation rules check
func (r *CremationRepository) GetPatientInfo(ctx context.Context, patientID int) (*PatientCremationInfo, error) {
	var info PatientCremationInfo

	query := `
		SELECT patient_name, patient_inactive, patient_reason_inactive
		FROM patient WHERE patient_id = $1
	`

	err := r.db.GetContext(ctx, &info, query, patientID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundMsg("No such patient with ID supplied")
	}
	if err != nil {
		return nil, err
	}

	return &info, nil
}

// GetPatientInfoByCremation returns the patient fields for an existing cremation
func (r *CremationRepository) GetPatientInfoByCremation(ctx context.Context, cremationID int) (*PatientCremationInfo, error) {
	var info PatientCremationInfo

	query := `
		SELECT p.patient_name, p.patient_inactive, p.patient_reason_inactive
		FROM cremation c
		JOIN patient p ON c.cremation_patient_id = p.patient_id
		WHERE c.cremation_id = $1
	`

	err := r.db.GetContext(ctx, &info, query, cremationID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundMsg("Patient is not in cremation table")
	}
	if err != nil {
		return nil, err
	}

	return &info, nil
}

// PatientCremated reports whether a cremation already exists for the patient
func (r *CremationRepository) PatientCremated(ctx context.Context, patientID int) (bool, error) {
	var exists bool

	query := `SELECT EXISTS (SELECT 1 FROM cremation WHERE cremation_patient_id = $1)`

	if err := r.db.GetContext(ctx, &exists, query, patientID); err != nil {
		return false, err
	}

	return exists, nil
}

// ListByClinic returns all of a clinic's cremations
func (r *CremationRepository) ListByClinic(ctx context.Context, clinicID int) ([]*CremationView, error) {
	cremations := []*CremationView{}

	query := `SELECT ` + cremationViewColumns + cremationViewJoin + `
		WHERE c.cremation_clinic_id = $1
		ORDER BY c.cremation_id DESC
	`

	if err := r.db.SelectContext(ctx, &cremations, query, clinicID); err != nil {
		return nil, err
	}

	return cremations, nil
}

// GetView returns one cremation in its joined display form
func (r *CremationRepository) GetView(ctx context.Context, id int) (*CremationView, error) {
	var view CremationView

	query := `SELECT ` + cremationViewColumns + cremationViewJoin + `
		WHERE c.cremation_id = $1
	`

	err := r.db.GetContext(ctx, &view, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundMsg("Patient is not in cremation table")
	}
	if err != nil {
		return nil, err
	}

	return &view, nil
}

// Create inserts a cremation and re-stamps the patient as deceased in the
// same transaction.
func (r *CremationRepository) Create(ctx context.Context, c *Cremation) (*CremationView, error) {
	err := r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO cremation (cremation_date_collected,
				cremation_date_ashes_returned_practice, cremation_date_ashes_returned_owner,
				cremation_form, cremation_owner_contacted, cremation_patient_id,
				cremation_clinic_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING cremation_id
		`

		err := tx.QueryRowContext(ctx, query,
			c.DateCollected, c.DateReturnedPractice, c.DateReturnedOwner,
			c.Form, c.OwnerContacted, c.PatientID, c.ClinicID,
		).Scan(&c.ID)
		if err != nil {
			if appErr := database.MapPQError(err); appErr != nil {
				return appErr
			}
			return err
		}

		if _, err := tx.ExecContext(ctx, deceasedStamp, c.PatientID); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetView(ctx, c.ID)
}

// Update rewrites a cremation and re-stamps the patient as deceased in the
// same transaction.
func (r *CremationRepository) Update(ctx context.Context, c *Cremation) (*CremationView, error) {
	err := r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE cremation
			SET cremation_date_collected = $1,
				cremation_date_ashes_returned_practice = $2,
				cremation_date_ashes_returned_owner = $3,
				cremation_form = $4, cremation_owner_contacted = $5,
				cremation_patient_id = $6
			WHERE cremation_id = $7
			RETURNING cremation_id
		`

		err := tx.QueryRowContext(ctx, query,
			c.DateCollected, c.DateReturnedPractice, c.DateReturnedOwner,
			c.Form, c.OwnerContacted, c.PatientID, c.ID,
		).Scan(&c.ID)
		if err == sql.ErrNoRows {
			return errors.NotFoundMsg("Patient is not in cremation table")
		}
		if err != nil {
			if appErr := database.MapPQError(err); appErr != nil {
				return appErr
			}
			return err
		}

		if _, err := tx.ExecContext(ctx, deceasedStamp, c.PatientID); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetView(ctx, c.ID)
}

// Delete removes a cremation by its ID
func (r *CremationRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cremation WHERE cremation_id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.NotFoundMsg("Patient is not in cremation table")
	}

	return nil
}
