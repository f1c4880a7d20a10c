package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetdesk/vetdesk-backend/internal/anaesthetic/repository"
	"github.com/vetdesk/vetdesk-backend/internal/anaesthetic/service"
	"github.com/vetdesk/vetdesk-backend/pkg/database"
	"github.com/vetdesk/vetdesk-backend/pkg/errors"
	"github.com/vetdesk/vetdesk-backend/pkg/logger"
	"github.com/vetdesk/vetdesk-backend/pkg/testutil"
)

func newTestService(t *testing.T) (*service.AnaestheticService, *testutil.MockDB) {
	mockDB := testutil.NewMockDB(t)

	log := logger.New("test", "test")
	repo := repository.NewAnaestheticRepository(database.FromSqlx(mockDB.DB, log))

	return service.NewAnaestheticService(repo, log), mockDB
}

func expectPatient(mockDB *testutil.MockDB, id int, name string, inactive bool) {
	mockDB.ExpectQuery("SELECT patient_name, patient_inactive FROM patient").
		WithArgs(id).
		WillReturnRows(testutil.MockRows("patient_name", "patient_inactive").
			AddRow(name, inactive))
}

func expectStaff(mockDB *testutil.MockDB, id int, username, role string) {
	mockDB.ExpectQuery("SELECT staff_username, staff_role FROM staff_member").
		WithArgs(id).
		WillReturnRows(testutil.MockRows("staff_username", "staff_role").
			AddRow(username, role))
}

func TestCreate_NurseMonitoring(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	expectPatient(mockDB, 9, "Rex", false)
	expectStaff(mockDB, 7, "nnurse", "Nurse")
	mockDB.ExpectQuery("INSERT INTO anaesthetic").
		WithArgs(9, testutil.AnyTime{}, 7).
		WillReturnRows(testutil.MockRows("anaesthetic_id").AddRow(12))

	sheet, err := svc.Create(context.Background(), 9, 7)

	require.NoError(t, err)
	assert.Equal(t, 12, sheet.ID)
	assert.False(t, sheet.Date.IsZero())
	mockDB.ExpectationsWereMet(t)
}

func TestCreate_InactivePatient(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	expectPatient(mockDB, 9, "Rex", true)

	_, err := svc.Create(context.Background(), 9, 7)

	require.Error(t, err)
	appErr := err.(*errors.AppError)
	assert.Equal(t, 403, appErr.StatusCode)
	assert.Equal(t, "Rex is inactive. Please reactivate the patient before performing the anaesthetic procedure", appErr.Message)
	mockDB.ExpectationsWereMet(t)
}

func TestCreate_ReceptionistCannotMonitor(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	expectPatient(mockDB, 9, "Rex", false)
	expectStaff(mockDB, 7, "rfront", "Receptionist")

	_, err := svc.Create(context.Background(), 9, 7)

	require.Error(t, err)
	appErr := err.(*errors.AppError)
	assert.Equal(t, 403, appErr.StatusCode)
	assert.Equal(t, "rfront is not authorised to perform anaesthetic monitoring. Please use an authorised vet or vet nurse to perform the monitoring procedure", appErr.Message)
	mockDB.ExpectationsWereMet(t)
}

func TestCreate_UnknownPatient(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT patient_name, patient_inactive FROM patient").
		WithArgs(9).
		WillReturnRows(testutil.MockRows("patient_name", "patient_inactive"))

	_, err := svc.Create(context.Background(), 9, 7)

	require.Error(t, err)
	appErr := err.(*errors.AppError)
	assert.Equal(t, 404, appErr.StatusCode)
	assert.Equal(t, "No such patient with ID supplied", appErr.Message)
	mockDB.ExpectationsWereMet(t)
}

func TestAddPeriod_Success(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT EXISTS(SELECT 1 FROM anaesthetic").
		WithArgs(12).
		WillReturnRows(testutil.MockRows("exists").AddRow(true))
	mockDB.ExpectQuery("INSERT INTO anaesthetic_period").
		WithArgs(12, 5, 120, 30, 2.0, 1.5, "Central", "Present").
		WillReturnRows(testutil.MockRows("anaesthetic_period_id").AddRow(41))

	p := &repository.Period{
		AnaestheticID: 12,
		Interval:      5,
		HeartRate:     120,
		RespRate:      30,
		Oxygen:        2.0,
		Agent:         1.5,
		EyePosition:   "Central",
		Reflexes:      "Present",
	}

	require.NoError(t, svc.AddPeriod(context.Background(), p))
	assert.Equal(t, 41, p.ID)
	mockDB.ExpectationsWereMet(t)
}

func TestAddPeriod_UnknownSheet(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT EXISTS(SELECT 1 FROM anaesthetic").
		WithArgs(99).
		WillReturnRows(testutil.MockRows("exists").AddRow(false))

	err := svc.AddPeriod(context.Background(), &repository.Period{
		AnaestheticID: 99,
		HeartRate:     120,
		EyePosition:   "Central",
		Reflexes:      "Present",
	})

	require.Error(t, err)
	appErr := err.(*errors.AppError)
	assert.Equal(t, 404, appErr.StatusCode)
	assert.Equal(t, "No such anaesthetic sheet with ID supplied", appErr.Message)
	mockDB.ExpectationsWereMet(t)
}

func TestAddPeriod_Bounds(t *testing.T) {
	tests := []struct {
		name    string
		period  repository.Period
		message string
	}{
		{
			name:    "heart rate too high",
			period:  repository.Period{HeartRate: 401},
			message: "Heart rate must be between 0 and 400 BPM",
		},
		{
			name:    "negative heart rate",
			period:  repository.Period{HeartRate: -1},
			message: "Heart rate must be between 0 and 400 BPM",
		},
		{
			name:    "respiratory rate too high",
			period:  repository.Period{HeartRate: 120, RespRate: 101},
			message: "Respiratory rate must be between 0 and 100 BPM",
		},
		{
			name:    "oxygen too high",
			period:  repository.Period{HeartRate: 120, RespRate: 30, Oxygen: 10.5},
			message: "Oxygen must be between 0 and 10 L",
		},
		{
			name:    "agent too high",
			period:  repository.Period{HeartRate: 120, RespRate: 30, Oxygen: 2, Agent: 5.5},
			message: "Anaesthetic agent must be between 0 and 5 %",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mockDB := newTestService(t)
			defer mockDB.Close()

			err := svc.AddPeriod(context.Background(), &tt.period)

			require.Error(t, err)
			appErr := err.(*errors.AppError)
			assert.Equal(t, 400, appErr.StatusCode)
			assert.Equal(t, tt.message, appErr.Message)
			mockDB.ExpectationsWereMet(t)
		})
	}
}
