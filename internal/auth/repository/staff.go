package repository

import (
	"context"
	"database/sql"

	"github.com/vetdesk/vetdesk-backend/pkg/database"
	"github.com/vetdesk/vetdesk-backend/pkg/errors"
)

// StaffMember represents a staff account row
type StaffMember struct {
	ID       int    `db:"staff_member_id" json:"staff_member_id"`
	Username string `db:"staff_username" json:"staff_username"`
	Password string `db:"staff_password" json:"-"`
	Role     string `db:"staff_role" json:"staff_role"`
	ClinicID int    `db:"staff_clinic_id" json:"staff_clinic_id"`
}

// StaffRepository handles staff account persistence
type StaffRepository struct {
	db *database.DB
}

// NewStaffRepository creates a new staff repository
func NewStaffRepository(db *database.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// Create inserts a new staff account and fills in the generated ID
func (r *StaffRepository) Create(ctx context.Context, staff *StaffMember) error {
	query := `
		INSERT INTO staff_member (staff_username, staff_password, staff_role, staff_clinic_id)
		VALUES ($1, $2, $3, $4)
		RETURNING staff_member_id
	`

	err := r.db.QueryRowxContext(ctx, query,
		staff.Username, staff.Password, staff.Role, staff.ClinicID,
	).Scan(&staff.ID)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// GetByUsername looks up a staff account by username, case-insensitively
func (r *StaffRepository) GetByUsername(ctx context.Context, username string) (*StaffMember, error) {
	var staff StaffMember

	query := `
		SELECT staff_member_id, staff_username, staff_password, staff_role, staff_clinic_id
		FROM staff_member
		WHERE LOWER(staff_username) = LOWER($1)
	`

	err := r.db.GetContext(ctx, &staff, query, username)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("staff member")
	}
	if err != nil {
		return nil, err
	}

	return &staff, nil
}

// GetByID looks up a staff account by its ID
func (r *StaffRepository) GetByID(ctx context.Context, id int) (*StaffMember, error) {
	var staff StaffMember

	query := `
		SELECT staff_member_id, staff_username, staff_password, staff_role, staff_clinic_id
		FROM staff_member
		WHERE staff_member_id = $1
	`

	err := r.db.GetContext(ctx, &staff, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("staff member")
	}
	if err != nil {
		return nil, err
	}

	return &staff, nil
}

// UsernameExists reports whether a username is already taken, ignoring case
func (r *StaffRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool

	query := `SELECT EXISTS(SELECT 1 FROM staff_member WHERE LOWER(staff_username) = LOWER($1))`

	if err := r.db.GetContext(ctx, &exists, query, username); err != nil {
		return false, err
	}

	return exists, nil
}
