package database

import (
	"strings"

	"github.com/lib/pq"
	"github.com/vetdesk/vetdesk-backend/pkg/errors"
)

// MapPQError converts a PostgreSQL error to an AppError with meaningful messages.
// Returns nil if the error is not a pq.Error.
func MapPQError(err error) *errors.AppError {
	pqErr, ok := err.(*pq.Error)
	if !ok {
		return nil
	}

	switch pqErr.Code {
	// Check constraint violation (23514)
	case "23514":
		return mapCheckConstraint(pqErr)

	// Unique constraint violation (23505)
	case "23505":
		return errors.Conflict(formatConstraintMessage(pqErr))

	// Foreign key violation (23503)
	case "23503":
		return errors.BadRequest("referenced record does not exist")

	// Not null violation (23502)
	case "23502":
		col := pqErr.Column
		if col == "" {
			col = "required field"
		}
		return errors.Validation(map[string]string{
			col: "must not be empty",
		})

	default:
		return nil
	}
}

// mapCheckConstraint maps specific CHECK constraint names to user-friendly messages.
func mapCheckConstraint(pqErr *pq.Error) *errors.AppError {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "staff_role_valid"):
		return errors.Validation(map[string]string{
			"role": "must be one of: Vet, Nurse, ACA, Receptionist",
		})

	case strings.Contains(constraint, "patient_species_valid"):
		return errors.Validation(map[string]string{
			"patient_species": "must be one of: Avian, Canine, Feline, Reptile, Rodent",
		})

	case strings.Contains(constraint, "patient_sex_valid"):
		return errors.Validation(map[string]string{
			"patient_sex": "must be one of: M, MN, F, FN",
		})

	case strings.Contains(constraint, "quantity_remaining_positive"):
		return errors.BadRequest("not enough drug remaining in batch")

	default:
		return errors.BadRequest("data validation failed: " + constraint)
	}
}

// formatConstraintMessage creates a user-friendly message for unique constraint violations.
func formatConstraintMessage(pqErr *pq.Error) string {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "microchip"):
		return "a patient with this microchip already exists"
	case strings.Contains(constraint, "staff_username"):
		return "Username already taken"
	case strings.Contains(constraint, "drug_batch"):
		return "Cannot add stock. Drug with this batch ID is already available"
	case strings.Contains(constraint, "cremation_patient"):
		return "Patient is already cremated!"
	default:
		return "a record with these values already exists"
	}
}
