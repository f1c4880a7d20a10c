package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetdesk/vetdesk-backend/internal/drug/repository"
	"github.com/vetdesk/vetdesk-backend/pkg/errors"
	"github.com/vetdesk/vetdesk-backend/pkg/testutil"
)

func TestDrugRepository_Integration(t *testing.T) {
	testutil.SkipUnlessIntegration(t)
	ctx := context.Background()

	suite, err := testutil.NewIntegrationSuite(ctx)
	require.NoError(t, err)
	suite.Reset(t, ctx)

	clinicID := testutil.InsertClinic(t, ctx, suite.RawDB, suite.Fixtures.Clinic())
	staffID := testutil.InsertStaff(t, ctx, suite.RawDB,
		suite.Fixtures.Staff(clinicID, testutil.WithRole("Vet")))
	clientID := testutil.InsertClient(t, ctx, suite.RawDB, suite.Fixtures.Client(clinicID))
	patientID := testutil.InsertPatient(t, ctx, suite.RawDB, suite.Fixtures.Patient(clientID))
	drugID := testutil.InsertDrug(t, ctx, suite.RawDB, suite.Fixtures.Drug())

	stock := suite.Fixtures.DrugStock(drugID, clinicID,
		testutil.WithMeasure("ml"), testutil.WithRemaining(10))
	testutil.InsertDrugStock(t, ctx, suite.RawDB, stock)

	repo := repository.NewDrugRepository(suite.DB)

	t.Run("administration decrements stock", func(t *testing.T) {
		entry, err := repo.RecordAdministration(ctx, &repository.NewAdministration{
			DateAdministered: time.Now(),
			QuantityGiven:    4,
			BatchID:          stock.BatchID,
			PatientID:        patientID,
			StaffID:          staffID,
		})
		require.NoError(t, err)
		assert.Equal(t, 4.0, entry.QuantityGiven)
		assert.Equal(t, stock.BatchID, entry.BatchID)

		remaining, err := repo.GetStock(ctx, stock.BatchID)
		require.NoError(t, err)
		assert.Equal(t, 6.0, remaining.QuantityRemaining)
	})

	t.Run("decrement guard rejects overdraw", func(t *testing.T) {
		_, err := repo.RecordAdministration(ctx, &repository.NewAdministration{
			DateAdministered: time.Now(),
			QuantityGiven:    100,
			BatchID:          stock.BatchID,
			PatientID:        patientID,
			StaffID:          staffID,
		})
		require.Error(t, err)
		appErr := err.(*errors.AppError)
		assert.Equal(t, 400, appErr.StatusCode)

		remaining, err := repo.GetStock(ctx, stock.BatchID)
		require.NoError(t, err)
		assert.Equal(t, 6.0, remaining.QuantityRemaining)
	})

	t.Run("duplicate batch maps to conflict", func(t *testing.T) {
		dup := suite.Fixtures.DrugStock(drugID, clinicID)
		dup.BatchID = stock.BatchID

		err := repo.CreateStock(ctx, &repository.DrugStock{
			BatchID:         dup.BatchID,
			ExpiryDate:      dup.ExpiryDate,
			Quantity:        dup.Quantity,
			QuantityMeasure: dup.QuantityMeasure,
			Concentration:   dup.Concentration,
			DrugID:          drugID,
			ClinicID:        clinicID,
		})
		require.Error(t, err)
		appErr := err.(*errors.AppError)
		assert.Equal(t, 409, appErr.StatusCode)
	})

	t.Run("administration appears in drug log", func(t *testing.T) {
		entries, err := repo.ListLogByDrugAndClinic(ctx, drugID, clinicID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, 4.0, entries[0].QuantityGiven)
		assert.Equal(t, "ml", entries[0].QuantityMeasure)
	})
}
