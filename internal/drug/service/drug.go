package service

import (
	"context"
	"fmt"

	"github.com/vetdesk/vetdesk-backend/internal/drug/repository"
	"github.com/vetdesk/vetdesk-backend/internal/events"
	"github.com/vetdesk/vetdesk-backend/pkg/errors"
	"github.com/vetdesk/vetdesk-backend/pkg/logger"
	"github.com/vetdesk/vetdesk-backend/pkg/permissions"
)

// DrugService handles drug stock and administration rules
type DrugService struct {
	repo      *repository.DrugRepository
	publisher *events.ClinicalEventPublisher
	logger    *logger.Logger
}

// NewDrugService creates a new drug service
func NewDrugService(repo *repository.DrugRepository, publisher *events.ClinicalEventPublisher, log *logger.Logger) *DrugService {
	return &DrugService{
		repo:      repo,
		publisher: publisher,
		logger:    log,
	}
}

// List returns all drugs
func (s *DrugService) List(ctx context.Context) ([]*repository.Drug, error) {
	drugs, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list drugs")
		return nil, errors.Internal("failed to list drugs")
	}
	return drugs, nil
}

// requireClinic rejects references to clinics that do not exist
func (s *DrugService) requireClinic(ctx context.Context, clinicID int) error {
	exists, err := s.repo.ClinicExists(ctx, clinicID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to check clinic")
		return errors.Internal("failed to check clinic")
	}
	if !exists {
		return errors.NotFoundMsg("Clinic does not exist")
	}
	return nil
}

// ListStockByClinic returns all batches held by a clinic
func (s *DrugService) ListStockByClinic(ctx context.Context, clinicID int) ([]*repository.DrugStock, error) {
	if err := s.requireClinic(ctx, clinicID); err != nil {
		return nil, err
	}

	stock, err := s.repo.ListStockByClinic(ctx, clinicID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list drug stock")
		return nil, errors.Internal("failed to list drug stock")
	}
	return stock, nil
}

// ListStockByDrugAndClinic returns a clinic's batches of one drug
func (s *DrugService) ListStockByDrugAndClinic(ctx context.Context, drugID, clinicID int) ([]*repository.DrugStock, error) {
	if err := s.requireClinic(ctx, clinicID); err != nil {
		return nil, err
	}

	exists, err := s.repo.DrugExists(ctx, drugID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to check drug")
		return nil, errors.Internal("failed to check drug")
	}
	if !exists {
		return nil, errors.NotFoundMsg("Drug does not exist")
	}

	stock, err := s.repo.ListStockByDrugAndClinic(ctx, drugID, clinicID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list drug stock")
		return nil, errors.Internal("failed to list drug stock")
	}
	return stock, nil
}

// ListLog returns the joined administration history for one drug at one clinic
func (s *DrugService) ListLog(ctx context.Context, drugID, clinicID int) ([]*repository.DrugLogEntry, error) {
	entries, err := s.repo.ListLogByDrugAndClinic(ctx, drugID, clinicID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list drug log")
		return nil, errors.Internal("failed to list drug log")
	}
	return entries, nil
}

// AddStock records a new batch for a clinic. The batch ID comes off the
// physical packaging, so it is caller-supplied and must be unused.
func (s *DrugService) AddStock(ctx context.Context, stock *repository.DrugStock) error {
	exists, err := s.repo.BatchExists(ctx, stock.BatchID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to check batch")
		return errors.Internal("failed to check batch")
	}
	if exists {
		return errors.Conflict("Cannot add stock. Drug with this batch ID is already available")
	}

	drugExists, err := s.repo.DrugExists(ctx, stock.DrugID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to check drug")
		return errors.Internal("failed to check drug")
	}
	if !drugExists {
		return errors.BadRequest("Cannot add stock to drug. Drug does not exist")
	}

	clinicExists, err := s.repo.ClinicExists(ctx, stock.ClinicID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to check clinic")
		return errors.Internal("failed to check clinic")
	}
	if !clinicExists {
		return errors.BadRequest("Cannot add stock to drug. Clinic does not exist")
	}

	if err := s.repo.CreateStock(ctx, stock); err != nil {
		if errors.IsAppError(err) {
			return err
		}
		s.logger.Error().Err(err).Msg("failed to add drug stock")
		return errors.Internal("failed to add drug stock")
	}

	s.publisher.PublishDrugStockAdded(ctx, stock.BatchID, stock.DrugID, stock.ClinicID)
	return nil
}

// AdministerInput carries a drug administration request
type AdministerInput struct {
	repository.NewAdministration
	QuantityMeasure string
}

// Administer validates and records a drug administration. The checks run in
// a fixed order: the batch must exist, the unit of measure must match the
// batch exactly, the batch must hold enough, the patient must be active, and
// the administering staff member must be a vet.
func (s *DrugService) Administer(ctx context.Context, input *AdministerInput) (*repository.DrugLogEntry, error) {
	stock, err := s.repo.GetStock(ctx, input.BatchID)
	if err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		s.logger.Error().Err(err).Msg("failed to look up batch")
		return nil, errors.Internal("failed to look up batch")
	}

	if stock.QuantityMeasure != input.QuantityMeasure {
		return nil, errors.Precondition(fmt.Sprintf(
			"Wrong unit of measure for batch %d. This batch uses %s, not %s. Please use the correct measurement when administering",
			stock.BatchID, stock.QuantityMeasure, input.QuantityMeasure,
		))
	}

	if stock.QuantityRemaining < input.QuantityGiven {
		return nil, errors.BadRequest(fmt.Sprintf(
			"Not enough drugs left in batch %d. %g%s remaining. Please use the remaining amount from this batch before starting a new batch",
			stock.BatchID, stock.QuantityRemaining, stock.QuantityMeasure,
		))
	}

	patient, err := s.repo.GetPatientStatus(ctx, input.PatientID)
	if err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		s.logger.Error().Err(err).Msg("failed to look up patient")
		return nil, errors.Internal("failed to look up patient")
	}

	if patient.Inactive {
		return nil, errors.Precondition(fmt.Sprintf(
			"Patient (%s) is inactive. Please reactivate %s before administering drug",
			patient.Name, patient.Name,
		))
	}

	staff, err := s.repo.GetStaffRole(ctx, input.StaffID)
	if err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		s.logger.Error().Err(err).Msg("failed to look up staff member")
		return nil, errors.Internal("failed to look up staff member")
	}

	if !permissions.CanAdministerDrugs(staff.Role) {
		return nil, errors.Precondition("Staff member is not a vet. Please ensure the drug is administered by a certified vet")
	}

	entry, err := s.repo.RecordAdministration(ctx, &input.NewAdministration)
	if err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		s.logger.Error().Err(err).Msg("failed to record administration")
		return nil, errors.Internal("failed to record administration")
	}

	s.publisher.PublishDrugAdministered(ctx, input.BatchID, input.PatientID, input.StaffID, input.QuantityGiven)
	return entry, nil
}
