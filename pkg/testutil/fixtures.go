package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// ClinicFixture represents test clinic data
type ClinicFixture struct {
	ID   int
	Name string
}

// StaffFixture represents test staff member data
type StaffFixture struct {
	ID           int
	Username     string
	Password     string // plaintext, for login tests
	PasswordHash string
	Role         string
	ClinicID     int
}

// ClientFixture represents test client data
type ClientFixture struct {
	ID             int
	Forename       string
	Surname        string
	Address        string
	City           string
	County         string
	Phone          string
	Email          string
	Inactive       bool
	ReasonInactive *string
	ClinicID       int
}

// PatientFixture represents test patient data
type PatientFixture struct {
	ID             int
	Name           string
	Age            int
	Species        string
	Breed          string
	Sex            string
	Color          string
	Microchip      *string
	Inactive       bool
	ReasonInactive *string
	ClientID       int
}

// DrugFixture represents test drug data
type DrugFixture struct {
	ID   int
	Name string
}

// DrugStockFixture represents a test stock batch
type DrugStockFixture struct {
	BatchID           int
	ExpiryDate        time.Time
	Quantity          float64
	QuantityMeasure   string
	QuantityRemaining float64
	Concentration     string
	DrugID            int
	ClinicID          int
}

// FixtureFactory creates test fixtures with sensible defaults
type FixtureFactory struct {
	sequence int
}

// NewFixtureFactory creates a new fixture factory
func NewFixtureFactory() *FixtureFactory {
	return &FixtureFactory{sequence: 0}
}

// nextSeq returns the next sequence number for unique values
func (f *FixtureFactory) nextSeq() int {
	f.sequence++
	return f.sequence
}

// Clinic creates a clinic fixture with defaults
func (f *FixtureFactory) Clinic(opts ...func(*ClinicFixture)) ClinicFixture {
	seq := f.nextSeq()

	clinic := ClinicFixture{
		Name: fmt.Sprintf("Test Clinic %d", seq),
	}

	for _, opt := range opts {
		opt(&clinic)
	}

	return clinic
}

// Staff creates a staff member fixture with defaults. The password is
// hashed with bcrypt.MinCost to keep tests fast.
func (f *FixtureFactory) Staff(clinicID int, opts ...func(*StaffFixture)) StaffFixture {
	seq := f.nextSeq()
	password := "Password1!"
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)

	staff := StaffFixture{
		Username:     fmt.Sprintf("vet%d", seq),
		Password:     password,
		PasswordHash: string(hash),
		Role:         "Vet",
		ClinicID:     clinicID,
	}

	for _, opt := range opts {
		opt(&staff)
	}

	return staff
}

// WithUsername sets the staff username
func WithUsername(username string) func(*StaffFixture) {
	return func(s *StaffFixture) {
		s.Username = username
	}
}

// WithRole sets the staff role
func WithRole(role string) func(*StaffFixture) {
	return func(s *StaffFixture) {
		s.Role = role
	}
}

// WithPassword sets the staff password (also rehashes it)
func WithPassword(password string) func(*StaffFixture) {
	return func(s *StaffFixture) {
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		s.Password = password
		s.PasswordHash = string(hash)
	}
}

// Client creates a client fixture with defaults
func (f *FixtureFactory) Client(clinicID int, opts ...func(*ClientFixture)) ClientFixture {
	seq := f.nextSeq()

	client := ClientFixture{
		Forename: fmt.Sprintf("Test%d", seq),
		Surname:  "Owner",
		Address:  fmt.Sprintf("%d High Street", seq),
		City:     "Leeds",
		County:   "West Yorkshire",
		Phone:    fmt.Sprintf("0113%07d", seq),
		Email:    fmt.Sprintf("owner%d@example.com", seq),
		ClinicID: clinicID,
	}

	for _, opt := range opts {
		opt(&client)
	}

	return client
}

// WithClientInactive marks the client deactivated with a reason
func WithClientInactive(reason string) func(*ClientFixture) {
	return func(c *ClientFixture) {
		c.Inactive = true
		c.ReasonInactive = &reason
	}
}

// Patient creates a patient fixture with defaults
func (f *FixtureFactory) Patient(clientID int, opts ...func(*PatientFixture)) PatientFixture {
	seq := f.nextSeq()

	patient := PatientFixture{
		Name:    fmt.Sprintf("Rex%d", seq),
		Age:     4,
		Species: "Canine",
		Breed:   "Labrador",
		Sex:     "M",
		Color:   "Black",
		ClientID: clientID,
	}

	for _, opt := range opts {
		opt(&patient)
	}

	return patient
}

// WithSpecies sets the patient species
func WithSpecies(species string) func(*PatientFixture) {
	return func(p *PatientFixture) {
		p.Species = species
	}
}

// WithMicrochip sets the patient microchip number
func WithMicrochip(microchip string) func(*PatientFixture) {
	return func(p *PatientFixture) {
		p.Microchip = &microchip
	}
}

// WithPatientInactive marks the patient deactivated with a reason
func WithPatientInactive(reason string) func(*PatientFixture) {
	return func(p *PatientFixture) {
		p.Inactive = true
		p.ReasonInactive = &reason
	}
}

// Drug creates a drug fixture with defaults
func (f *FixtureFactory) Drug(opts ...func(*DrugFixture)) DrugFixture {
	seq := f.nextSeq()

	drug := DrugFixture{
		Name: fmt.Sprintf("Test Drug %d", seq),
	}

	for _, opt := range opts {
		opt(&drug)
	}

	return drug
}

// DrugStock creates a stock batch fixture with defaults
func (f *FixtureFactory) DrugStock(drugID, clinicID int, opts ...func(*DrugStockFixture)) DrugStockFixture {
	seq := f.nextSeq()

	stock := DrugStockFixture{
		BatchID:           100000 + seq,
		ExpiryDate:        time.Now().AddDate(1, 0, 0),
		Quantity:          100,
		QuantityMeasure:   "ml",
		QuantityRemaining: 100,
		Concentration:     "50mg/ml",
		DrugID:            drugID,
		ClinicID:          clinicID,
	}

	for _, opt := range opts {
		opt(&stock)
	}

	return stock
}

// WithRemaining sets the batch's remaining quantity
func WithRemaining(remaining float64) func(*DrugStockFixture) {
	return func(s *DrugStockFixture) {
		s.QuantityRemaining = remaining
	}
}

// WithMeasure sets the batch's quantity measure
func WithMeasure(measure string) func(*DrugStockFixture) {
	return func(s *DrugStockFixture) {
		s.QuantityMeasure = measure
	}
}

// InsertClinic inserts a clinic fixture and returns its generated ID
func InsertClinic(t *testing.T, ctx context.Context, db *sqlx.DB, f ClinicFixture) int {
	t.Helper()
	var id int
	err := db.QueryRowContext(ctx,
		`INSERT INTO clinic (clinic_name) VALUES ($1) RETURNING clinic_id`,
		f.Name,
	).Scan(&id)
	if err != nil {
		t.Fatalf("failed to insert clinic fixture: %v", err)
	}
	return id
}

// InsertStaff inserts a staff member fixture and returns its generated ID
func InsertStaff(t *testing.T, ctx context.Context, db *sqlx.DB, f StaffFixture) int {
	t.Helper()
	var id int
	err := db.QueryRowContext(ctx,
		`INSERT INTO staff_member (staff_username, staff_password, staff_role, staff_clinic_id)
		 VALUES ($1, $2, $3, $4) RETURNING staff_member_id`,
		f.Username, f.PasswordHash, f.Role, f.ClinicID,
	).Scan(&id)
	if err != nil {
		t.Fatalf("failed to insert staff fixture: %v", err)
	}
	return id
}

// InsertClient inserts a client fixture and returns its generated ID
func InsertClient(t *testing.T, ctx context.Context, db *sqlx.DB, f ClientFixture) int {
	t.Helper()
	var id int
	err := db.QueryRowContext(ctx,
		`INSERT INTO client (client_forename, client_surname, client_address, client_city,
		  client_county, client_phone, client_email, client_inactive, client_reason_inactive,
		  client_clinic_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING client_id`,
		f.Forename, f.Surname, f.Address, f.City, f.County, f.Phone, f.Email,
		f.Inactive, f.ReasonInactive, f.ClinicID,
	).Scan(&id)
	if err != nil {
		t.Fatalf("failed to insert client fixture: %v", err)
	}
	return id
}

// InsertPatient inserts a patient fixture and returns its generated ID
func InsertPatient(t *testing.T, ctx context.Context, db *sqlx.DB, f PatientFixture) int {
	t.Helper()
	var id int
	err := db.QueryRowContext(ctx,
		`INSERT INTO patient (patient_name, patient_age, patient_species, patient_breed,
		  patient_sex, patient_color, patient_microchip, patient_inactive,
		  patient_reason_inactive, patient_client_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING patient_id`,
		f.Name, f.Age, f.Species, f.Breed, f.Sex, f.Color, f.Microchip,
		f.Inactive, f.ReasonInactive, f.ClientID,
	).Scan(&id)
	if err != nil {
		t.Fatalf("failed to insert patient fixture: %v", err)
	}
	return id
}

// InsertDrug inserts a drug fixture and returns its generated ID
func InsertDrug(t *testing.T, ctx context.Context, db *sqlx.DB, f DrugFixture) int {
	t.Helper()
	var id int
	err := db.QueryRowContext(ctx,
		`INSERT INTO drug (drug_name) VALUES ($1) RETURNING drug_id`,
		f.Name,
	).Scan(&id)
	if err != nil {
		t.Fatalf("failed to insert drug fixture: %v", err)
	}
	return id
}

// InsertDrugStock inserts a stock batch fixture
func InsertDrugStock(t *testing.T, ctx context.Context, db *sqlx.DB, f DrugStockFixture) {
	t.Helper()
	_, err := db.ExecContext(ctx,
		`INSERT INTO drug_stock (drug_batch_id, drug_expiry_date, drug_quantity,
		  drug_quantity_measure, drug_quantity_remaining, drug_concentration,
		  drug_stock_drug_id, drug_stock_clinic_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		f.BatchID, f.ExpiryDate, f.Quantity, f.QuantityMeasure,
		f.QuantityRemaining, f.Concentration, f.DrugID, f.ClinicID,
	)
	if err != nil {
		t.Fatalf("failed to insert drug stock fixture: %v", err)
	}
}
