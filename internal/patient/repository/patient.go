package repository

import (
	"context"
	"database/sql"

	"github.com/vetdesk/vetdesk-backend/pkg/database"
	"github.com/vetdesk/vetdesk-backend/pkg/errors"
)

// Patient represents an animal registered with a client
type Patient struct {
	ID             int     `db:"patient_id" json:"patient_id"`
	Name           string  `db:"patient_name" json:"patient_name"`
	Age            int     `db:"patient_age" json:"patient_age"`
	Species        string  `db:"patient_species" json:"patient_species"`
	Breed          string  `db:"patient_breed" json:"patient_breed"`
	Sex            string  `db:"patient_sex" json:"patient_sex"`
	Color          string  `db:"patient_color" json:"patient_color"`
	Microchip      *string `db:"patient_microchip" json:"patient_microchip"`
	Inactive       bool    `db:"patient_inactive" json:"patient_inactive"`
	ReasonInactive *string `db:"patient_reason_inactive" json:"patient_reason_inactive"`
	ClientID       int     `db:"patient_client_id" json:"patient_client_id"`
}

// PatientRepository handles patient persistence
type PatientRepository struct {
	db *database.DB
}

// NewPatientRepository creates a new patient repository
func NewPatientRepository(db *database.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

const patientColumns = `
	patient_id, patient_name, patient_age, patient_species, patient_breed,
	patient_sex, patient_color, patient_microchip, patient_inactive,
	patient_reason_inactive, patient_client_id
`

// Create inserts a new patient and fills in the generated ID
func (r *PatientRepository) Create(ctx context.Context, p *Patient) error {
	query := `
		INSERT INTO patient (patient_name, patient_age, patient_species,
			patient_breed, patient_sex, patient_color, patient_microchip,
			patient_client_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING patient_id
	`

	err := r.db.QueryRowxContext(ctx, query,
		p.Name, p.Age, p.Species, p.Breed, p.Sex, p.Color, p.Microchip, p.ClientID,
	).Scan(&p.ID)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// GetByID looks up a patient by its ID
func (r *PatientRepository) GetByID(ctx context.Context, id int) (*Patient, error) {
	var p Patient

	query := `SELECT ` + patientColumns + ` FROM patient WHERE patient_id = $1`

	err := r.db.GetContext(ctx, &p, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("patient")
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// ListByClient returns all patients belonging to a client
func (r *PatientRepository) ListByClient(ctx context.Context, clientID int) ([]*Patient, error) {
	patients := []*Patient{}

	query := `SELECT ` + patientColumns + ` FROM patient WHERE patient_client_id = $1 ORDER BY patient_name`

	if err := r.db.SelectContext(ctx, &patients, query, clientID); err != nil {
		return nil, err
	}

	return patients, nil
}

// ListByClinic returns all patients whose owner is registered with a clinic
func (r *PatientRepository) ListByClinic(ctx context.Context, clinicID int) ([]*Patient, error) {
	patients := []*Patient{}

	query := `
		SELECT ` + patientColumns + `
		FROM patient
		JOIN client ON patient_client_id = client_id
		WHERE client_clinic_id = $1
		ORDER BY patient_name
	`

	if err := r.db.SelectContext(ctx, &patients, query, clinicID); err != nil {
		return nil, err
	}

	return patients, nil
}

// ListBySpeciesAndClinic returns a clinic's patients of one species
func (r *PatientRepository) ListBySpeciesAndClinic(ctx context.Context, species string, clinicID int) ([]*Patient, error) {
	patients := []*Patient{}

	query := `
		SELECT ` + patientColumns + `
		FROM patient
		JOIN client ON patient_client_id = client_id
		WHERE patient_species = $1 AND client_clinic_id = $2
		ORDER BY patient_name
	`

	if err := r.db.SelectContext(ctx, &patients, query, species, clinicID); err != nil {
		return nil, err
	}

	return patients, nil
}

// MicrochipInUse reports whether another patient already carries the
// microchip. excludeID skips the patient being updated; pass 0 on create.
func (r *PatientRepository) MicrochipInUse(ctx context.Context, microchip string, excludeID int) (bool, error) {
	var exists bool

	query := `
		SELECT EXISTS(
			SELECT 1 FROM patient
			WHERE patient_microchip = $1 AND patient_id <> $2
		)
	`

	if err := r.db.GetContext(ctx, &exists, query, microchip, excludeID); err != nil {
		return false, err
	}

	return exists, nil
}

// Update replaces a patient's details
func (r *PatientRepository) Update(ctx context.Context, p *Patient) error {
	query := `
		UPDATE patient
		SET patient_name = $1, patient_age = $2, patient_species = $3,
			patient_breed = $4, patient_sex = $5, patient_color = $6,
			patient_microchip = $7
		WHERE patient_id = $8
	`

	result, err := r.db.ExecContext(ctx, query,
		p.Name, p.Age, p.Species, p.Breed, p.Sex, p.Color, p.Microchip, p.ID,
	)
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
		return errors.NotFound("patient")
	}

	return nil
}

// Deactivate marks a patient inactive with a reason
func (r *PatientRepository) Deactivate(ctx context.Context, id int, reason string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE patient
		SET patient_inactive = TRUE, patient_reason_inactive = $1
		WHERE patient_id = $2
	`, reason, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.NotFound("patient")
	}

	return nil
}

// Reactivate marks a patient active again and clears the stored reason
func (r *PatientRepository) Reactivate(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE patient
		SET patient_inactive = FALSE, patient_reason_inactive = NULL
		WHERE patient_id = $1
	`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.NotFound("patient")
	}

	return nil
}

// Delete removes a patient row
func (r *PatientRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM patient WHERE patient_id = $1`, id)
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
		return errors.NotFound("patient")
	}

	return nil
}
