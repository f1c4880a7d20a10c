package service_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetdesk/vetdesk-backend/internal/patient/repository"
	"github.com/vetdesk/vetdesk-backend/internal/patient/service"
	"github.com/vetdesk/vetdesk-backend/pkg/database"
	"github.com/vetdesk/vetdesk-backend/pkg/errors"
	"github.com/vetdesk/vetdesk-backend/pkg/logger"
	"github.com/vetdesk/vetdesk-backend/pkg/testutil"
)

func newTestService(t *testing.T) (*service.PatientService, *testutil.MockDB) {
	mockDB := testutil.NewMockDB(t)

	log := logger.New("test", "test")
	repo := repository.NewPatientRepository(database.FromSqlx(mockDB.DB, log))

	return service.NewPatientService(repo, nil, log), mockDB
}

func patientRows() *sqlmock.Rows {
	return testutil.MockRows(
		"patient_id", "patient_name", "patient_age", "patient_species",
		"patient_breed", "patient_sex", "patient_color", "patient_microchip",
		"patient_inactive", "patient_reason_inactive", "patient_client_id",
	)
}

func TestCreate_WithMicrochip(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	chip := "977200009123456"

	mockDB.ExpectQuery("SELECT EXISTS(").
		WithArgs(chip, 0).
		WillReturnRows(testutil.MockRows("exists").AddRow(false))
	mockDB.ExpectQuery("INSERT INTO patient").
		WithArgs("Rex", 4, "Canine", "Labrador", "M", "Black", chip, 5).
		WillReturnRows(testutil.MockRows("patient_id").AddRow(9))

	p := &repository.Patient{
		Name:      "Rex",
		Age:       4,
		Species:   "Canine",
		Breed:     "Labrador",
		Sex:       "M",
		Color:     "Black",
		Microchip: &chip,
		ClientID:  5,
	}

	require.NoError(t, svc.Create(context.Background(), p))
	assert.Equal(t, 9, p.ID)
	mockDB.ExpectationsWereMet(t)
}

func TestCreate_MicrochipTaken(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	chip := "977200009123456"

	mockDB.ExpectQuery("SELECT EXISTS(").
		WithArgs(chip, 0).
		WillReturnRows(testutil.MockRows("exists").AddRow(true))

	err := svc.Create(context.Background(), &repository.Patient{
		Name:      "Rex",
		Species:   "Canine",
		Microchip: &chip,
		ClientID:  5,
	})
	require.Error(t, err)

	appErr := err.(*errors.AppError)
	assert.Equal(t, 409, appErr.StatusCode)
	assert.Equal(t, "a patient with this microchip already exists", appErr.Message)
	mockDB.ExpectationsWereMet(t)
}

func TestUpdate_MicrochipProbeExcludesSelf(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	chip := "977200009123456"

	// Probe must exclude the patient being updated, so keeping the same
	// chip on an update is not a conflict.
	mockDB.ExpectQuery("SELECT EXISTS(").
		WithArgs(chip, 9).
		WillReturnRows(testutil.MockRows("exists").AddRow(false))
	mockDB.ExpectExec("UPDATE patient").
		WithArgs("Rex", 5, "Canine", "Labrador", "M", "Black", chip, 9).
		WillReturnResult(sqlmock.NewResult(0, 1))

	p := &repository.Patient{
		ID:        9,
		Name:      "Rex",
		Age:       5,
		Species:   "Canine",
		Breed:     "Labrador",
		Sex:       "M",
		Color:     "Black",
		Microchip: &chip,
	}

	require.NoError(t, svc.Update(context.Background(), p))
	mockDB.ExpectationsWereMet(t)
}

func TestCreate_NoMicrochipSkipsProbe(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("INSERT INTO patient").
		WithArgs("Rex", 4, "Canine", "Labrador", "M", "Black", nil, 5).
		WillReturnRows(testutil.MockRows("patient_id").AddRow(9))

	p := &repository.Patient{
		Name:     "Rex",
		Age:      4,
		Species:  "Canine",
		Breed:    "Labrador",
		Sex:      "M",
		Color:    "Black",
		ClientID: 5,
	}

	require.NoError(t, svc.Create(context.Background(), p))
	mockDB.ExpectationsWereMet(t)
}

func TestReactivate_AlreadyActive(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("FROM patient WHERE patient_id = $1").
		WithArgs(9).
		WillReturnRows(patientRows().AddRow(
			9, "Rex", 4, "Canine", "Labrador", "M", "Black", nil, false, nil, 5,
		))

	err := svc.Reactivate(context.Background(), 9)
	require.Error(t, err)

	appErr := err.(*errors.AppError)
	assert.Equal(t, 403, appErr.StatusCode)
	assert.Equal(t, "Patient is already active", appErr.Message)
	mockDB.ExpectationsWereMet(t)
}

func TestReactivate_Inactive(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	reason := "Patient Rehomed"
	mockDB.ExpectQuery("FROM patient WHERE patient_id = $1").
		WithArgs(9).
		WillReturnRows(patientRows().AddRow(
			9, "Rex", 4, "Canine", "Labrador", "M", "Black", nil, true, reason, 5,
		))
	mockDB.ExpectExec("UPDATE patient").
		WithArgs(9).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, svc.Reactivate(context.Background(), 9))
	mockDB.ExpectationsWereMet(t)
}
