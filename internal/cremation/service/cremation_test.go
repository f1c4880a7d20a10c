package service_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetdesk/vetdesk-backend/internal/cremation/repository"
	"github.com/vetdesk/vetdesk-backend/internal/cremation/service"
	"github.com/vetdesk/vetdesk-backend/pkg/database"
	"github.com/vetdesk/vetdesk-backend/pkg/errors"
	"github.com/vetdesk/vetdesk-backend/pkg/logger"
	"github.com/vetdesk/vetdesk-backend/pkg/testutil"
)

func newTestService(t *testing.T) (*service.CremationService, *testutil.MockDB) {
	mockDB := testutil.NewMockDB(t)

	log := logger.New("test", "test")
	repo := repository.NewCremationRepository(database.FromSqlx(mockDB.DB, log))

	return service.NewCremationService(repo, nil, log), mockDB
}

func expectPatientCremationInfo(mockDB *testutil.MockDB, patientID int, name string, inactive bool, reason *string) {
	mockDB.ExpectQuery("SELECT patient_name, patient_inactive, patient_reason_inactive").
		WithArgs(patientID).
		WillReturnRows(testutil.MockRows("patient_name", "patient_inactive", "patient_reason_inactive").
			AddRow(name, inactive, reason))
}

func viewRows() *sqlmock.Rows {
	return testutil.MockRows(
		"cremation_id", "cremation_date_collected",
		"cremation_date_ashes_returned_practice", "cremation_date_ashes_returned_owner",
		"cremation_form", "cremation_owner_contacted", "cremation_patient_id",
		"patient_name", "patient_microchip",
	)
}

func TestCreate_Success(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	reason := "Patient Deceased"

	mockDB.ExpectQuery("SELECT EXISTS (SELECT 1 FROM cremation").
		WithArgs(9).
		WillReturnRows(testutil.MockRows("exists").AddRow(false))
	expectPatientCremationInfo(mockDB, 9, "Rex", true, &reason)

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("INSERT INTO cremation").
		WithArgs(nil, nil, nil, "Individual", "No", 9, 3).
		WillReturnRows(testutil.MockRows("cremation_id").AddRow(6))
	mockDB.ExpectExec("UPDATE patient").
		WithArgs(9).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectCommit()

	mockDB.ExpectQuery("FROM cremation c").
		WithArgs(6).
		WillReturnRows(viewRows().
			AddRow(6, nil, nil, nil, "Individual", "No", 9, "Rex", nil))

	view, err := svc.Create(context.Background(), &repository.Cremation{
		Form:           "Individual",
		OwnerContacted: "No",
		PatientID:      9,
		ClinicID:       3,
	})

	require.NoError(t, err)
	assert.Equal(t, 6, view.ID)
	assert.Equal(t, "Rex", view.PatientName)
	mockDB.ExpectationsWereMet(t)
}

func TestCreate_AlreadyCremated(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT EXISTS (SELECT 1 FROM cremation").
		WithArgs(9).
		WillReturnRows(testutil.MockRows("exists").AddRow(true))

	_, err := svc.Create(context.Background(), &repository.Cremation{
		Form:           "Individual",
		OwnerContacted: "No",
		PatientID:      9,
		ClinicID:       3,
	})

	require.Error(t, err)
	appErr := err.(*errors.AppError)
	assert.Equal(t, 409, appErr.StatusCode)
	assert.Equal(t, "Patient is already cremated!", appErr.Message)
	mockDB.ExpectationsWereMet(t)
}

func TestCreate_PatientStillActive(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT EXISTS (SELECT 1 FROM cremation").
		WithArgs(9).
		WillReturnRows(testutil.MockRows("exists").AddRow(false))
	expectPatientCremationInfo(mockDB, 9, "Rex", false, nil)

	_, err := svc.Create(context.Background(), &repository.Cremation{
		Form:           "Individual",
		OwnerContacted: "No",
		PatientID:      9,
		ClinicID:       3,
	})

	require.Error(t, err)
	appErr := err.(*errors.AppError)
	assert.Equal(t, 403, appErr.StatusCode)
	assert.Equal(t, "Patient Rex is not deactivated! Please deactivate before cremating", appErr.Message)
	mockDB.ExpectationsWereMet(t)
}

func TestCreate_NotMarkedDeceased(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	reason := "Client Relocating"

	mockDB.ExpectQuery("SELECT EXISTS (SELECT 1 FROM cremation").
		WithArgs(9).
		WillReturnRows(testutil.MockRows("exists").AddRow(false))
	expectPatientCremationInfo(mockDB, 9, "Rex", true, &reason)

	_, err := svc.Create(context.Background(), &repository.Cremation{
		Form:           "Individual",
		OwnerContacted: "No",
		PatientID:      9,
		ClinicID:       3,
	})

	require.Error(t, err)
	appErr := err.(*errors.AppError)
	assert.Equal(t, 403, appErr.StatusCode)
	assert.Equal(t, "Patient Rex is not marked as deceased! Please mark patient as deceased in deactivation before cremating", appErr.Message)
	mockDB.ExpectationsWereMet(t)
}

func TestUpdate_UnknownCremation(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT p.patient_name, p.patient_inactive, p.patient_reason_inactive").
		WithArgs(99).
		WillReturnRows(testutil.MockRows("patient_name", "patient_inactive", "patient_reason_inactive"))

	_, err := svc.Update(context.Background(), &repository.Cremation{
		ID:             99,
		Form:           "Individual",
		OwnerContacted: "No",
		PatientID:      9,
	})

	require.Error(t, err)
	appErr := err.(*errors.AppError)
	assert.Equal(t, 404, appErr.StatusCode)
	assert.Equal(t, "Patient is not in cremation table", appErr.Message)
	mockDB.ExpectationsWereMet(t)
}

func TestDelete_Success(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectExec("DELETE FROM cremation").
		WithArgs(6).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, svc.Delete(context.Background(), 6))
	mockDB.ExpectationsWereMet(t)
}

func TestDelete_UnknownCremation(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectExec("DELETE FROM cremation").
		WithArgs(99).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.Delete(context.Background(), 99)

	require.Error(t, err)
	appErr := err.(*errors.AppError)
	assert.Equal(t, 404, appErr.StatusCode)
	assert.Equal(t, "Patient is not in cremation table", appErr.Message)
	mockDB.ExpectationsWereMet(t)
}
