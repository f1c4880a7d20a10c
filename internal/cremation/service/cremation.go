package service

import (
	"context"
	"fmt"

	"github.com/vetdesk/vetdesk-backend/internal/cremation/repository"
	"github.com/vetdesk/vetdesk-backend/internal/events"
	"github.com/vetdesk/vetdesk-backend/pkg/errors"
	"github.com/vetdesk/vetdesk-backend/pkg/logger"
)

// reasonDeceased is the only deactivation reason that permits a cremation
const reasonDeceased = "Patient Deceased"

// CremationService handles cremation business rules
type CremationService struct {
	repo      *repository.CremationRepository
	publisher *events.ClinicalEventPublisher
	logger    *logger.Logger
}

// NewCremationService creates a new cremation service
func NewCremationService(repo *repository.CremationRepository, publisher *events.ClinicalEventPublisher, log *logger.Logger) *CremationService {
	return &CremationService{
		repo:      repo,
		publisher: publisher,
		logger:    log,
	}
}

// ListByClinic returns all of a clinic's cremations
func (s *CremationService) ListByClinic(ctx context.Context, clinicID int) ([]*repository.CremationView, error) {
	cremations, err := s.repo.ListByClinic(ctx, clinicID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list cremations")
		return nil, errors.Internal("failed to list cremations")
	}

	return cremations, nil
}

// checkDeceased rejects cremations for patients that are still active or
// were deactivated for any reason other than death.
func (s *CremationService) checkDeceased(patient *repository.PatientCremationInfo) error {
	if !patient.Inactive {
		return errors.Precondition(fmt.Sprintf(
			"Patient %s is not deactivated! Please deactivate before cremating",
			patient.Name))
	}

	if patient.ReasonInactive == nil || *patient.ReasonInactive != reasonDeceased {
		return errors.Precondition(fmt.Sprintf(
			"Patient %s is not marked as deceased! Please mark patient as deceased in deactivation before cremating",
			patient.Name))
	}

	return nil
}

// Create records a cremation for a deceased patient
func (s *CremationService) Create(ctx context.Context, c *repository.Cremation) (*repository.CremationView, error) {
	cremated, err := s.repo.PatientCremated(ctx, c.PatientID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to check cremation")
		return nil, errors.Internal("failed to check cremation")
	}
	if cremated {
		return nil, errors.Conflict("Patient is already cremated!")
	}

	patient, err := s.repo.GetPatientInfo(ctx, c.PatientID)
	if err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		s.logger.Error().Err(err).Msg("failed to look up patient")
		return nil, errors.Internal("failed to look up patient")
	}

	if err := s.checkDeceased(patient); err != nil {
		return nil, err
	}

	view, err := s.repo.Create(ctx, c)
	if err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		s.logger.Error().Err(err).Msg("failed to create cremation")
		return nil, errors.Internal("failed to create cremation")
	}

	s.logger.Info().Int("cremation_id", view.ID).Int("patient_id", c.PatientID).Msg("cremation recorded")
	s.publisher.PublishCremationRecorded(ctx, view.ID, c.PatientID, c.ClinicID)

	return view, nil
}

// Update rewrites a cremation for a deceased patient
func (s *CremationService) Update(ctx context.Context, c *repository.Cremation) (*repository.CremationView, error) {
	patient, err := s.repo.GetPatientInfoByCremation(ctx, c.ID)
	if err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		s.logger.Error().Err(err).Msg("failed to look up patient")
		return nil, errors.Internal("failed to look up patient")
	}

	if err := s.checkDeceased(patient); err != nil {
		return nil, err
	}

	view, err := s.repo.Update(ctx, c)
	if err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		s.logger.Error().Err(err).Msg("failed to update cremation")
		return nil, errors.Internal("failed to update cremation")
	}

	return view, nil
}

// Delete removes a cremation
func (s *CremationService) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.IsAppError(err) {
			return err
		}
		s.logger.Error().Err(err).Msg("failed to delete cremation")
		return errors.Internal("failed to delete cremation")
	}

	return nil
}
