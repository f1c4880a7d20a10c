package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetdesk/vetdesk-backend/internal/drug/repository"
	"github.com/vetdesk/vetdesk-backend/internal/drug/service"
	"github.com/vetdesk/vetdesk-backend/pkg/database"
	"github.com/vetdesk/vetdesk-backend/pkg/errors"
	"github.com/vetdesk/vetdesk-backend/pkg/logger"
	"github.com/vetdesk/vetdesk-backend/pkg/testutil"
)

func newTestService(t *testing.T) (*service.DrugService, *testutil.MockDB) {
	mockDB := testutil.NewMockDB(t)

	log := logger.New("test", "test")
	repo := repository.NewDrugRepository(database.FromSqlx(mockDB.DB, log))

	return service.NewDrugService(repo, nil, log), mockDB
}

func stockRows() *sqlmock.Rows {
	return testutil.MockRows(
		"drug_batch_id", "drug_expiry_date", "drug_quantity",
		"drug_quantity_measure", "drug_quantity_remaining",
		"drug_concentration", "drug_stock_drug_id", "drug_stock_clinic_id",
	)
}

func logRows() *sqlmock.Rows {
	return testutil.MockRows(
		"drug_quantity_given", "drug_date_administered", "drug_batch_id",
		"drug_quantity_measure", "patient_name", "patient_microchip",
		"staff_username",
	)
}

func TestAdminister_Success(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	given := time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC)
	expiry := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	mockDB.ExpectQuery("FROM drug_stock WHERE drug_batch_id = $1").
		WithArgs(4001).
		WillReturnRows(stockRows().
			AddRow(4001, expiry, 50.0, "ml", 20.0, "2mg/ml", 2, 3))
	mockDB.ExpectQuery("SELECT patient_name, patient_inactive FROM patient").
		WithArgs(9).
		WillReturnRows(testutil.MockRows("patient_name", "patient_inactive").
			AddRow("Rex", false))
	mockDB.ExpectQuery("SELECT staff_username, staff_role FROM staff_member").
		WithArgs(7).
		WillReturnRows(testutil.MockRows("staff_username", "staff_role").
			AddRow("jvet", "Vet"))

	mockDB.ExpectBegin()
	mockDB.ExpectQuery("INSERT INTO drug_log").
		WithArgs(given, 5.0, 4001, 9, 7).
		WillReturnRows(testutil.MockRows("drug_log_id").AddRow(88))
	mockDB.ExpectExec("UPDATE drug_stock").
		WithArgs(5.0, 4001).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectQuery("WHERE dl.drug_log_id = $1").
		WithArgs(88).
		WillReturnRows(logRows().
			AddRow(5.0, given, 4001, "ml", "Rex", nil, "jvet"))
	mockDB.ExpectCommit()

	entry, err := svc.Administer(context.Background(), &service.AdministerInput{
		NewAdministration: repository.NewAdministration{
			DateAdministered: given,
			QuantityGiven:    5.0,
			BatchID:          4001,
			PatientID:        9,
			StaffID:          7,
		},
		QuantityMeasure: "ml",
	})

	require.NoError(t, err)
	assert.Equal(t, "Rex", entry.PatientName)
	assert.Equal(t, 5.0, entry.QuantityGiven)
	mockDB.ExpectationsWereMet(t)
}

func TestAdminister_UnknownBatch(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("FROM drug_stock WHERE drug_batch_id = $1").
		WithArgs(4001).
		WillReturnRows(stockRows())

	_, err := svc.Administer(context.Background(), &service.AdministerInput{
		NewAdministration: repository.NewAdministration{BatchID: 4001},
		QuantityMeasure:   "ml",
	})

	require.Error(t, err)
	appErr := err.(*errors.AppError)
	assert.Equal(t, 404, appErr.StatusCode)
	assert.Equal(t, "Drug batch does not exist. Please recheck the batch code", appErr.Message)
	mockDB.ExpectationsWereMet(t)
}

func TestAdminister_WrongMeasure(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	expiry := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	mockDB.ExpectQuery("FROM drug_stock WHERE drug_batch_id = $1").
		WithArgs(4001).
		WillReturnRows(stockRows().
			AddRow(4001, expiry, 50.0, "ml", 20.0, "2mg/ml", 2, 3))

	_, err := svc.Administer(context.Background(), &service.AdministerInput{
		NewAdministration: repository.NewAdministration{
			QuantityGiven: 5.0,
			BatchID:       4001,
		},
		QuantityMeasure: "mg",
	})

	require.Error(t, err)
	appErr := err.(*errors.AppError)
	assert.Equal(t, 403, appErr.StatusCode)
	assert.Equal(t,
		"Wrong unit of measure for batch 4001. This batch uses ml, not mg. Please use the correct measurement when administering",
		appErr.Message)
	mockDB.ExpectationsWereMet(t)
}

func TestAdminister_NotEnoughRemaining(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	expiry := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	mockDB.ExpectQuery("FROM drug_stock WHERE drug_batch_id = $1").
		WithArgs(4001).
		WillReturnRows(stockRows().
			AddRow(4001, expiry, 50.0, "ml", 2.5, "2mg/ml", 2, 3))

	_, err := svc.Administer(context.Background(), &service.AdministerInput{
		NewAdministration: repository.NewAdministration{
			QuantityGiven: 5.0,
			BatchID:       4001,
		},
		QuantityMeasure: "ml",
	})

	require.Error(t, err)
	appErr := err.(*errors.AppError)
	assert.Equal(t, 400, appErr.StatusCode)
	assert.Equal(t,
		"Not enough drugs left in batch 4001. 2.5ml remaining. Please use the remaining amount from this batch before starting a new batch",
		appErr.Message)
	mockDB.ExpectationsWereMet(t)
}

func TestAdminister_InactivePatient(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	expiry := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	mockDB.ExpectQuery("FROM drug_stock WHERE drug_batch_id = $1").
		WithArgs(4001).
		WillReturnRows(stockRows().
			AddRow(4001, expiry, 50.0, "ml", 20.0, "2mg/ml", 2, 3))
	mockDB.ExpectQuery("SELECT patient_name, patient_inactive FROM patient").
		WithArgs(9).
		WillReturnRows(testutil.MockRows("patient_name", "patient_inactive").
			AddRow("Rex", true))

	_, err := svc.Administer(context.Background(), &service.AdministerInput{
		NewAdministration: repository.NewAdministration{
			QuantityGiven: 5.0,
			BatchID:       4001,
			PatientID:     9,
		},
		QuantityMeasure: "ml",
	})

	require.Error(t, err)
	appErr := err.(*errors.AppError)
	assert.Equal(t, 403, appErr.StatusCode)
	assert.Equal(t, "Patient (Rex) is inactive. Please reactivate Rex before administering drug", appErr.Message)
	mockDB.ExpectationsWereMet(t)
}

func TestAdminister_NotAVet(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	expiry := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	mockDB.ExpectQuery("FROM drug_stock WHERE drug_batch_id = $1").
		WithArgs(4001).
		WillReturnRows(stockRows().
			AddRow(4001, expiry, 50.0, "ml", 20.0, "2mg/ml", 2, 3))
	mockDB.ExpectQuery("SELECT patient_name, patient_inactive FROM patient").
		WithArgs(9).
		WillReturnRows(testutil.MockRows("patient_name", "patient_inactive").
			AddRow("Rex", false))
	mockDB.ExpectQuery("SELECT staff_username, staff_role FROM staff_member").
		WithArgs(7).
		WillReturnRows(testutil.MockRows("staff_username", "staff_role").
			AddRow("nnurse", "Nurse"))

	_, err := svc.Administer(context.Background(), &service.AdministerInput{
		NewAdministration: repository.NewAdministration{
			QuantityGiven: 5.0,
			BatchID:       4001,
			PatientID:     9,
			StaffID:       7,
		},
		QuantityMeasure: "ml",
	})

	require.Error(t, err)
	appErr := err.(*errors.AppError)
	assert.Equal(t, 403, appErr.StatusCode)
	assert.Equal(t, "Staff member is not a vet. Please ensure the drug is administered by a certified vet", appErr.Message)
	mockDB.ExpectationsWereMet(t)
}

func TestAddStock_Success(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	expiry := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	mockDB.ExpectQuery("SELECT EXISTS(SELECT 1 FROM drug_stock").
		WithArgs(4001).
		WillReturnRows(testutil.MockRows("exists").AddRow(false))
	mockDB.ExpectQuery("SELECT EXISTS(SELECT 1 FROM drug WHERE").
		WithArgs(2).
		WillReturnRows(testutil.MockRows("exists").AddRow(true))
	mockDB.ExpectQuery("SELECT EXISTS(SELECT 1 FROM clinic").
		WithArgs(3).
		WillReturnRows(testutil.MockRows("exists").AddRow(true))
	mockDB.ExpectExec("INSERT INTO drug_stock").
		WithArgs(4001, expiry, 50.0, "ml", 50.0, "2mg/ml", 2, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	stock := &repository.DrugStock{
		BatchID:         4001,
		ExpiryDate:      expiry,
		Quantity:        50.0,
		QuantityMeasure: "ml",
		Concentration:   "2mg/ml",
		DrugID:          2,
		ClinicID:        3,
	}

	require.NoError(t, svc.AddStock(context.Background(), stock))
	assert.Equal(t, 50.0, stock.QuantityRemaining)
	mockDB.ExpectationsWereMet(t)
}

func TestAddStock_DuplicateBatch(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT EXISTS(SELECT 1 FROM drug_stock").
		WithArgs(4001).
		WillReturnRows(testutil.MockRows("exists").AddRow(true))

	err := svc.AddStock(context.Background(), &repository.DrugStock{
		BatchID:  4001,
		DrugID:   2,
		ClinicID: 3,
	})

	require.Error(t, err)
	appErr := err.(*errors.AppError)
	assert.Equal(t, 409, appErr.StatusCode)
	assert.Equal(t, "Cannot add stock. Drug with this batch ID is already available", appErr.Message)
	mockDB.ExpectationsWereMet(t)
}

func TestAddStock_UnknownDrug(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT EXISTS(SELECT 1 FROM drug_stock").
		WithArgs(4001).
		WillReturnRows(testutil.MockRows("exists").AddRow(false))
	mockDB.ExpectQuery("SELECT EXISTS(SELECT 1 FROM drug WHERE").
		WithArgs(2).
		WillReturnRows(testutil.MockRows("exists").AddRow(false))

	err := svc.AddStock(context.Background(), &repository.DrugStock{
		BatchID:  4001,
		DrugID:   2,
		ClinicID: 3,
	})

	require.Error(t, err)
	appErr := err.(*errors.AppError)
	assert.Equal(t, 400, appErr.StatusCode)
	assert.Equal(t, "Cannot add stock to drug. Drug does not exist", appErr.Message)
	mockDB.ExpectationsWereMet(t)
}
