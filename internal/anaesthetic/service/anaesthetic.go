package service

import (
	"context"
	"fmt"

	"github.com/vetdesk/vetdesk-backend/internal/anaesthetic/repository"
	"github.com/vetdesk/vetdesk-backend/pkg/errors"
	"github.com/vetdesk/vetdesk-backend/pkg/logger"
	"github.com/vetdesk/vetdesk-backend/pkg/permissions"
)

// Physiological bounds for a period's readings. Values outside these are
// recording mistakes, not clinical readings.
const (
	maxHeartRate = 400
	maxRespRate  = 100
	maxOxygen    = 10
	maxAgent     = 5
)

// AnaestheticService handles anaesthetic sheet business rules
type AnaestheticService struct {
	repo   *repository.AnaestheticRepository
	logger *logger.Logger
}

// NewAnaestheticService creates a new anaesthetic service
func NewAnaestheticService(repo *repository.AnaestheticRepository, log *logger.Logger) *AnaestheticService {
	return &AnaestheticService{
		repo:   repo,
		logger: log,
	}
}

// ListByPatient returns all of a patient's sheets
func (s *AnaestheticService) ListByPatient(ctx context.Context, patientID int) ([]*repository.SheetView, error) {
	if _, err := s.repo.GetPatientInfo(ctx, patientID); err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		s.logger.Error().Err(err).Msg("failed to look up patient")
		return nil, errors.Internal("failed to look up patient")
	}

	sheets, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list anaesthetics")
		return nil, errors.Internal("failed to list anaesthetics")
	}

	return sheets, nil
}

// Sheet bundles a sheet with its recorded periods
type Sheet struct {
	AnaestheticSheet   *repository.SheetView `json:"anaesthetic_sheet"`
	AnaestheticPeriods []*repository.Period  `json:"anaesthetic_periods"`
}

// Get returns one sheet with all its readings
func (s *AnaestheticService) Get(ctx context.Context, id int) (*Sheet, error) {
	sheet, err := s.repo.GetSheet(ctx, id)
	if err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		s.logger.Error().Err(err).Msg("failed to get anaesthetic")
		return nil, errors.Internal("failed to get anaesthetic")
	}

	periods, err := s.repo.ListPeriods(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list anaesthetic periods")
		return nil, errors.Internal("failed to list anaesthetic periods")
	}

	return &Sheet{AnaestheticSheet: sheet, AnaestheticPeriods: periods}, nil
}

// Create starts a new sheet. The patient must be active and the monitoring
// staff member must be a vet or a nurse.
func (s *AnaestheticService) Create(ctx context.Context, patientID, staffID int) (*repository.Anaesthetic, error) {
	patient, err := s.repo.GetPatientInfo(ctx, patientID)
	if err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		s.logger.Error().Err(err).Msg("failed to look up patient")
		return nil, errors.Internal("failed to look up patient")
	}

	if patient.Inactive {
		return nil, errors.Precondition(fmt.Sprintf(
			"%s is inactive. Please reactivate the patient before performing the anaesthetic procedure",
			patient.Name,
		))
	}

	staff, err := s.repo.GetStaffInfo(ctx, staffID)
	if err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		s.logger.Error().Err(err).Msg("failed to look up staff member")
		return nil, errors.Internal("failed to look up staff member")
	}

	if !permissions.CanMonitorAnaesthetic(staff.Role) {
		return nil, errors.Precondition(fmt.Sprintf(
			"%s is not authorised to perform anaesthetic monitoring. Please use an authorised vet or vet nurse to perform the monitoring procedure",
			staff.Username,
		))
	}

	sheet := &repository.Anaesthetic{PatientID: patientID, StaffID: staffID}
	if err := s.repo.Create(ctx, sheet); err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		s.logger.Error().Err(err).Msg("failed to create anaesthetic")
		return nil, errors.Internal("failed to create anaesthetic")
	}

	return sheet, nil
}

// checkPeriodBounds rejects readings outside physiological ranges
func checkPeriodBounds(p *repository.Period) error {
	if p.HeartRate < 0 || p.HeartRate > maxHeartRate {
		return errors.BadRequest("Heart rate must be between 0 and 400 BPM")
	}
	if p.RespRate < 0 || p.RespRate > maxRespRate {
		return errors.BadRequest("Respiratory rate must be between 0 and 100 BPM")
	}
	if p.Oxygen < 0 || p.Oxygen > maxOxygen {
		return errors.BadRequest("Oxygen must be between 0 and 10 L")
	}
	if p.Agent < 0 || p.Agent > maxAgent {
		return errors.BadRequest("Anaesthetic agent must be between 0 and 5 %")
	}
	return nil
}

// AddPeriod records one set of readings on an existing sheet
func (s *AnaestheticService) AddPeriod(ctx context.Context, p *repository.Period) error {
	if err := checkPeriodBounds(p); err != nil {
		return err
	}

	exists, err := s.repo.SheetExists(ctx, p.AnaestheticID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to check anaesthetic")
		return errors.Internal("failed to check anaesthetic")
	}
	if !exists {
		return errors.NotFoundMsg("No such anaesthetic sheet with ID supplied")
	}

	if err := s.repo.CreatePeriod(ctx, p); err != nil {
		if errors.IsAppError(err) {
			return err
		}
		s.logger.Error().Err(err).Msg("failed to add anaesthetic period")
		return errors.Internal("failed to add anaesthetic period")
	}

	return nil
}
