package testutil

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Schema holds the full clinic schema for integration tests. Constraint
// names matter: pkg/database.MapPQError matches on them to produce the
// user-facing conflict and validation messages.
const Schema = `
CREATE TABLE IF NOT EXISTS clinic (
	clinic_id SERIAL PRIMARY KEY,
	clinic_name VARCHAR(100) NOT NULL
);

CREATE TABLE IF NOT EXISTS staff_member (
	staff_member_id SERIAL PRIMARY KEY,
	staff_username VARCHAR(50) NOT NULL,
	staff_password VARCHAR(100) NOT NULL,
	staff_role VARCHAR(20) NOT NULL,
	staff_clinic_id INTEGER NOT NULL REFERENCES clinic(clinic_id),
	CONSTRAINT staff_role_valid CHECK (staff_role IN ('Vet', 'Nurse', 'ACA', 'Receptionist'))
);

CREATE UNIQUE INDEX IF NOT EXISTS staff_username_unique
	ON staff_member (LOWER(staff_username));

CREATE TABLE IF NOT EXISTS client (
	client_id SERIAL PRIMARY KEY,
	client_forename VARCHAR(50) NOT NULL,
	client_surname VARCHAR(50) NOT NULL,
	client_address VARCHAR(100) NOT NULL,
	client_city VARCHAR(50) NOT NULL,
	client_county VARCHAR(50) NOT NULL,
	client_phone VARCHAR(20) NOT NULL,
	client_email VARCHAR(100) NOT NULL,
	client_inactive BOOLEAN NOT NULL DEFAULT FALSE,
	client_reason_inactive VARCHAR(50),
	client_clinic_id INTEGER NOT NULL REFERENCES clinic(clinic_id)
);

CREATE TABLE IF NOT EXISTS patient (
	patient_id SERIAL PRIMARY KEY,
	patient_name VARCHAR(50) NOT NULL,
	patient_age INTEGER NOT NULL,
	patient_species VARCHAR(20) NOT NULL,
	patient_breed VARCHAR(50) NOT NULL,
	patient_sex VARCHAR(2) NOT NULL,
	patient_color VARCHAR(30) NOT NULL,
	patient_microchip VARCHAR(15),
	patient_inactive BOOLEAN NOT NULL DEFAULT FALSE,
	patient_reason_inactive VARCHAR(50),
	patient_client_id INTEGER NOT NULL REFERENCES client(client_id),
	CONSTRAINT patient_species_valid CHECK (patient_species IN ('Avian', 'Canine', 'Feline', 'Reptile', 'Rodent')),
	CONSTRAINT patient_sex_valid CHECK (patient_sex IN ('M', 'MN', 'F', 'FN'))
);

CREATE UNIQUE INDEX IF NOT EXISTS patient_microchip_unique
	ON patient (patient_microchip)
	WHERE patient_microchip IS NOT NULL;

CREATE TABLE IF NOT EXISTS drug (
	drug_id SERIAL PRIMARY KEY,
	drug_name VARCHAR(50) NOT NULL
);

CREATE TABLE IF NOT EXISTS drug_stock (
	drug_batch_id INTEGER NOT NULL,
	drug_expiry_date DATE NOT NULL,
	drug_quantity DOUBLE PRECISION NOT NULL,
	drug_quantity_measure VARCHAR(10) NOT NULL,
	drug_quantity_remaining DOUBLE PRECISION NOT NULL,
	drug_concentration VARCHAR(20) NOT NULL,
	drug_stock_drug_id INTEGER NOT NULL REFERENCES drug(drug_id),
	drug_stock_clinic_id INTEGER NOT NULL REFERENCES clinic(clinic_id),
	CONSTRAINT drug_batch_id_key PRIMARY KEY (drug_batch_id),
	CONSTRAINT quantity_remaining_positive CHECK (drug_quantity_remaining >= 0)
);

CREATE TABLE IF NOT EXISTS drug_log (
	drug_log_id SERIAL PRIMARY KEY,
	drug_date_administered DATE NOT NULL,
	drug_quantity_given DOUBLE PRECISION NOT NULL,
	drug_log_drug_stock_id INTEGER NOT NULL REFERENCES drug_stock(drug_batch_id),
	drug_patient_id INTEGER NOT NULL REFERENCES patient(patient_id),
	drug_staff_id INTEGER NOT NULL REFERENCES staff_member(staff_member_id)
);

CREATE TABLE IF NOT EXISTS tooth (
	tooth_id INTEGER NOT NULL,
	tooth_patient_id INTEGER NOT NULL REFERENCES patient(patient_id),
	tooth_problem VARCHAR(50) NOT NULL,
	tooth_note VARCHAR(100),
	PRIMARY KEY (tooth_id, tooth_patient_id)
);

CREATE TABLE IF NOT EXISTS dental (
	dental_id SERIAL PRIMARY KEY,
	dental_patient_id INTEGER NOT NULL REFERENCES patient(patient_id),
	dental_date_updated DATE NOT NULL,
	CONSTRAINT dental_patient_unique UNIQUE (dental_patient_id)
);

CREATE TABLE IF NOT EXISTS anaesthetic (
	anaesthetic_id SERIAL PRIMARY KEY,
	anaesthetic_patient_id INTEGER NOT NULL REFERENCES patient(patient_id),
	anaesthetic_date DATE NOT NULL,
	anaesthetic_staff_id INTEGER NOT NULL REFERENCES staff_member(staff_member_id)
);

CREATE TABLE IF NOT EXISTS anaesthetic_period (
	anaesthetic_period_id SERIAL PRIMARY KEY,
	anaesthetic_id INTEGER NOT NULL REFERENCES anaesthetic(anaesthetic_id),
	anaesthetic_period INTEGER NOT NULL,
	anaesthetic_hr INTEGER NOT NULL,
	anaesthetic_rr INTEGER NOT NULL,
	anaesthetic_oxygen DOUBLE PRECISION NOT NULL,
	anaesthetic_agent DOUBLE PRECISION NOT NULL,
	anaesthetic_eye_pos VARCHAR(10) NOT NULL,
	anaesthetic_reflexes VARCHAR(3) NOT NULL
);

CREATE TABLE IF NOT EXISTS xray (
	xray_id SERIAL PRIMARY KEY,
	xray_date DATE NOT NULL,
	xray_image_quality VARCHAR(50) NOT NULL,
	xray_kv DOUBLE PRECISION NOT NULL,
	xray_mas DOUBLE PRECISION NOT NULL,
	xray_position VARCHAR(50) NOT NULL,
	xray_patient_id INTEGER NOT NULL REFERENCES patient(patient_id),
	xray_staff_id INTEGER NOT NULL REFERENCES staff_member(staff_member_id),
	xray_clinic_id INTEGER NOT NULL REFERENCES clinic(clinic_id)
);

CREATE TABLE IF NOT EXISTS cremation (
	cremation_id SERIAL PRIMARY KEY,
	cremation_date_collected DATE,
	cremation_date_ashes_returned_practice DATE,
	cremation_date_ashes_returned_owner DATE,
	cremation_form VARCHAR(50) NOT NULL,
	cremation_owner_contacted VARCHAR(3) NOT NULL,
	cremation_patient_id INTEGER NOT NULL REFERENCES patient(patient_id),
	cremation_clinic_id INTEGER NOT NULL REFERENCES clinic(clinic_id),
	CONSTRAINT cremation_patient_unique UNIQUE (cremation_patient_id)
);
`

// tables in FK-safe truncation order
var allTables = []string{
	"cremation",
	"xray",
	"anaesthetic_period",
	"anaesthetic",
	"dental",
	"tooth",
	"drug_log",
	"drug_stock",
	"drug",
	"patient",
	"client",
	"staff_member",
	"clinic",
}

// ApplySchema provisions the full clinic schema on the given database
func ApplySchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// TruncateAll empties every table and resets identity sequences so each
// test starts from a clean database
func TruncateAll(ctx context.Context, db *sqlx.DB) error {
	stmt := fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(allTables, ", "))
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to truncate tables: %w", err)
	}
	return nil
}
