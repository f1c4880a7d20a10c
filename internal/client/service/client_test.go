package service_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetdesk/vetdesk-backend/internal/client/repository"
	"github.com/vetdesk/vetdesk-backend/internal/client/service"
	"github.com/vetdesk/vetdesk-backend/pkg/database"
	"github.com/vetdesk/vetdesk-backend/pkg/errors"
	"github.com/vetdesk/vetdesk-backend/pkg/logger"
	"github.com/vetdesk/vetdesk-backend/pkg/testutil"
)

func newTestService(t *testing.T) (*service.ClientService, *testutil.MockDB) {
	mockDB := testutil.NewMockDB(t)

	log := logger.New("test", "test")
	repo := repository.NewClientRepository(database.FromSqlx(mockDB.DB, log))

	return service.NewClientService(repo, nil, log), mockDB
}

func clientRows() *sqlmock.Rows {
	return testutil.MockRows(
		"client_id", "client_forename", "client_surname", "client_address",
		"client_city", "client_county", "client_phone", "client_email",
		"client_inactive", "client_reason_inactive", "client_clinic_id",
	)
}

func TestCreate(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("INSERT INTO client").
		WithArgs("Jane", "Smith", "1 High Street", "Leeds", "West Yorkshire",
			"07000000001", "jane@example.com", 1).
		WillReturnRows(testutil.MockRows("client_id").AddRow(5))

	c := &repository.Client{
		Forename: "Jane",
		Surname:  "Smith",
		Address:  "1 High Street",
		City:     "Leeds",
		County:   "West Yorkshire",
		Phone:    "07000000001",
		Email:    "jane@example.com",
		ClinicID: 1,
	}

	require.NoError(t, svc.Create(context.Background(), c))
	assert.Equal(t, 5, c.ID)
	mockDB.ExpectationsWereMet(t)
}

func TestGet_NotFound(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("FROM client WHERE client_id = $1").
		WithArgs(99).
		WillReturnRows(clientRows())

	_, err := svc.Get(context.Background(), 99)
	require.Error(t, err)

	appErr := err.(*errors.AppError)
	assert.Equal(t, 404, appErr.StatusCode)
}

func TestDeactivate_CascadesToPatients(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectBegin()
	mockDB.ExpectExec("UPDATE client").
		WithArgs("Client Relocating", 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectExec("UPDATE patient").
		WithArgs("Client Relocating", 5).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mockDB.ExpectCommit()

	require.NoError(t, svc.Deactivate(context.Background(), 5, "Client Relocating"))
	mockDB.ExpectationsWereMet(t)
}

func TestDeactivate_UnknownClientRollsBack(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectBegin()
	mockDB.ExpectExec("UPDATE client").
		WithArgs("Other", 99).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mockDB.ExpectRollback()

	err := svc.Deactivate(context.Background(), 99, "Other")
	require.Error(t, err)

	appErr := err.(*errors.AppError)
	assert.Equal(t, 404, appErr.StatusCode)
	mockDB.ExpectationsWereMet(t)
}

func TestReactivate_OnlyMatchingPatientsComeBack(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	reason := "Client Relocating"
	mockDB.ExpectQuery("FROM client WHERE client_id = $1").
		WithArgs(5).
		WillReturnRows(clientRows().AddRow(
			5, "Jane", "Smith", "1 High Street", "Leeds", "West Yorkshire",
			"07000000001", "jane@example.com", true, reason, 1,
		))

	mockDB.ExpectBegin()
	mockDB.ExpectExec("UPDATE client").
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectExec("UPDATE patient").
		WithArgs(5, reason).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mockDB.ExpectCommit()

	require.NoError(t, svc.Reactivate(context.Background(), 5))
	mockDB.ExpectationsWereMet(t)
}

func TestReactivate_AlreadyActive(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("FROM client WHERE client_id = $1").
		WithArgs(5).
		WillReturnRows(clientRows().AddRow(
			5, "Jane", "Smith", "1 High Street", "Leeds", "West Yorkshire",
			"07000000001", "jane@example.com", false, nil, 1,
		))

	err := svc.Reactivate(context.Background(), 5)
	require.Error(t, err)

	appErr := err.(*errors.AppError)
	assert.Equal(t, 403, appErr.StatusCode)
	assert.Equal(t, "Client is already active", appErr.Message)
	mockDB.ExpectationsWereMet(t)
}
