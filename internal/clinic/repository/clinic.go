package repository

import (
	"context"
	"database/sql"

	"github.com/vetdesk/vetdesk-backend/pkg/database"
	"github.com/vetdesk/vetdesk-backend/pkg/errors"
)

// ClinicName is the sidebar's view of a clinic
type ClinicName struct {
	Name string `db:"clinic_name" json:"clinic_name"`
}

// DashboardInfo is the greeting banner's view of the caller
type DashboardInfo struct {
	Username   string `db:"staff_username" json:"staff_username"`
	ClinicName string `db:"clinic_name" json:"clinic_name"`
}

// StaffProfile is a staff member's own record, without the password hash
type StaffProfile struct {
	ID       int    `db:"staff_member_id" json:"staff_member_id"`
	Username string `db:"staff_username" json:"staff_username"`
	Role     string `db:"staff_role" json:"staff_role"`
	ClinicID int    `db:"staff_clinic_id" json:"staff_clinic_id"`
}

// ClinicRepository handles the clinic-scoped reads behind the app shell
type ClinicRepository struct {
	db *database.DB
}

// NewClinicRepository creates a new clinic repository
func NewClinicRepository(db *database.DB) *ClinicRepository {
	return &ClinicRepository{db: db}
}

// GetClinicName returns a clinic's display name
func (r *ClinicRepository) GetClinicName(ctx context.Context, clinicID int) (*ClinicName, error) {
	var clinic ClinicName

	query := `SELECT clinic_name FROM clinic WHERE clinic_id = $1`

	err := r.db.GetContext(ctx, &clinic, query, clinicID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("clinic")
	}
	if err != nil {
		return nil, err
	}

	return &clinic, nil
}

// GetDashboardInfo returns the caller's username with their clinic's name
func (r *ClinicRepository) GetDashboardInfo(ctx context.Context, staffID int) (*DashboardInfo, error) {
	var info DashboardInfo

	query := `
		SELECT sm.staff_username, c.clinic_name
		FROM staff_member sm
		JOIN clinic c ON sm.staff_clinic_id = c.clinic_id
		WHERE sm.staff_member_id = $1
	`

	err := r.db.GetContext(ctx, &info, query, staffID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundMsg("Staff member with this ID does not exist")
	}
	if err != nil {
		return nil, err
	}

	return &info, nil
}

// GetStaffProfile returns a staff member's own record
func (r *ClinicRepository) GetStaffProfile(ctx context.Context, staffID int) (*StaffProfile, error) {
	var profile StaffProfile

	query := `
		SELECT staff_member_id, staff_username, staff_role, staff_clinic_id
		FROM staff_member
		WHERE staff_member_id = $1
	`

	err := r.db.GetContext(ctx, &profile, query, staffID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundMsg("Staff member with this ID does not exist")
	}
	if err != nil {
		return nil, err
	}

	return &profile, nil
}
