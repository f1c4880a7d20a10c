package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/vetdesk/vetdesk-backend/pkg/database"
	"github.com/vetdesk/vetdesk-backend/pkg/errors"
)

// Client represents a pet owner registered with a clinic
type Client struct {
	ID             int     `db:"client_id" json:"client_id"`
	Forename       string  `db:"client_forename" json:"client_forename"`
	Surname        string  `db:"client_surname" json:"client_surname"`
	Address        string  `db:"client_address" json:"client_address"`
	City           string  `db:"client_city" json:"client_city"`
	County         string  `db:"client_county" json:"client_county"`
	Phone          string  `db:"client_phone" json:"client_phone"`
	Email          string  `db:"client_email" json:"client_email"`
	Inactive       bool    `db:"client_inactive" json:"client_inactive"`
	ReasonInactive *string `db:"client_reason_inactive" json:"client_reason_inactive"`
	ClinicID       int     `db:"client_clinic_id" json:"client_clinic_id"`
}

// ClientRepository handles client persistence
type ClientRepository struct {
	db *database.DB
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *database.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

const clientColumns = `
	client_id, client_forename, client_surname, client_address, client_city,
	client_county, client_phone, client_email, client_inactive,
	client_reason_inactive, client_clinic_id
`

// Create inserts a new client and fills in the generated ID
func (r *ClientRepository) Create(ctx context.Context, c *Client) error {
	query := `
		INSERT INTO client (client_forename, client_surname, client_address,
			client_city, client_county, client_phone, client_email, client_clinic_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING client_id
	`

	err := r.db.QueryRowxContext(ctx, query,
		c.Forename, c.Surname, c.Address, c.City, c.County, c.Phone, c.Email, c.ClinicID,
	).Scan(&c.ID)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// GetByID looks up a client by its ID
func (r *ClientRepository) GetByID(ctx context.Context, id int) (*Client, error) {
	var c Client

	query := `SELECT ` + clientColumns + ` FROM client WHERE client_id = $1`

	err := r.db.GetContext(ctx, &c, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("client")
	}
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// ListByClinic returns all clients registered with a clinic
func (r *ClientRepository) ListByClinic(ctx context.Context, clinicID int) ([]*Client, error) {
	clients := []*Client{}

	query := `SELECT ` + clientColumns + ` FROM client WHERE client_clinic_id = $1 ORDER BY client_surname, client_forename`

	if err := r.db.SelectContext(ctx, &clients, query, clinicID); err != nil {
		return nil, err
	}

	return clients, nil
}

// Update replaces a client's contact details
func (r *ClientRepository) Update(ctx context.Context, c *Client) error {
	query := `
		UPDATE client
		SET client_forename = $1, client_surname = $2, client_address = $3,
			client_city = $4, client_county = $5, client_phone = $6, client_email = $7
		WHERE client_id = $8
	`

	result, err := r.db.ExecContext(ctx, query,
		c.Forename, c.Surname, c.Address, c.City, c.County, c.Phone, c.Email, c.ID,
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
		return errors.NotFound("client")
	}

	return nil
}

// DeactivateCascade marks the client inactive and cascades the reason to all
// of their still-active patients, atomically.
func (r *ClientRepository) DeactivateCascade(ctx context.Context, id int, reason string) error {
	return r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE client
			SET client_inactive = TRUE, client_reason_inactive = $1
			WHERE client_id = $2
		`, reason, id)
		if err != nil {
			return err
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return errors.NotFound("client")
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE patient
			SET patient_inactive = TRUE, patient_reason_inactive = $1
			WHERE patient_client_id = $2 AND patient_inactive = FALSE
		`, reason, id)
		return err
	})
}

// ReactivateSelective marks the client active again and reactivates only the
// patients that were deactivated with the client's stored reason, atomically.
func (r *ClientRepository) ReactivateSelective(ctx context.Context, id int, storedReason string) error {
	return r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE client
			SET client_inactive = FALSE, client_reason_inactive = NULL
			WHERE client_id = $1
		`, id)
		if err != nil {
			return err
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return errors.NotFound("client")
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE patient
			SET patient_inactive = FALSE, patient_reason_inactive = NULL
			WHERE patient_client_id = $1 AND patient_inactive = TRUE
				AND patient_reason_inactive = $2
		`, id, storedReason)
		return err
	})
}

// Delete removes a client row
func (r *ClientRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM client WHERE client_id = $1`, id)
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
		return errors.NotFound("client")
	}

	return nil
}
