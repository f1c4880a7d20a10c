package service

import (
	"context"

	"github.com/vetdesk/vetdesk-backend/internal/events"
	"github.com/vetdesk/vetdesk-backend/internal/patient/repository"
	"github.com/vetdesk/vetdesk-backend/pkg/errors"
	"github.com/vetdesk/vetdesk-backend/pkg/logger"
)

// PatientService handles patient business rules
type PatientService struct {
	repo      *repository.PatientRepository
	publisher *events.ClinicalEventPublisher
	logger    *logger.Logger
}

// NewPatientService creates a new patient service
func NewPatientService(repo *repository.PatientRepository, publisher *events.ClinicalEventPublisher, log *logger.Logger) *PatientService {
	return &PatientService{
		repo:      repo,
		publisher: publisher,
		logger:    log,
	}
}

// checkMicrochip enforces global microchip uniqueness. excludeID skips the
// patient being updated.
func (s *PatientService) checkMicrochip(ctx context.Context, microchip *string, excludeID int) error {
	if microchip == nil || *microchip == "" {
		return nil
	}

	inUse, err := s.repo.MicrochipInUse(ctx, *microchip, excludeID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to check microchip")
		return errors.Internal("failed to check microchip")
	}
	if inUse {
		return errors.Conflict("a patient with this microchip already exists")
	}

	return nil
}

// Create registers a new patient
func (s *PatientService) Create(ctx context.Context, p *repository.Patient) error {
	if err := s.checkMicrochip(ctx, p.Microchip, 0); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		if errors.IsAppError(err) {
			return err
		}
		s.logger.Error().Err(err).Msg("failed to create patient")
		return errors.Internal("failed to create patient")
	}
	return nil
}

// Get returns a patient by ID
func (s *PatientService) Get(ctx context.Context, id int) (*repository.Patient, error) {
	patient, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		s.logger.Error().Err(err).Msg("failed to get patient")
		return nil, errors.Internal("failed to get patient")
	}
	return patient, nil
}

// ListByClient returns a client's patients
func (s *PatientService) ListByClient(ctx context.Context, clientID int) ([]*repository.Patient, error) {
	patients, err := s.repo.ListByClient(ctx, clientID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list patients")
		return nil, errors.Internal("failed to list patients")
	}
	return patients, nil
}

// ListByClinic returns a clinic's patients
func (s *PatientService) ListByClinic(ctx context.Context, clinicID int) ([]*repository.Patient, error) {
	patients, err := s.repo.ListByClinic(ctx, clinicID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list patients")
		return nil, errors.Internal("failed to list patients")
	}
	return patients, nil
}

// ListBySpeciesAndClinic returns a clinic's patients of one species
func (s *PatientService) ListBySpeciesAndClinic(ctx context.Context, species string, clinicID int) ([]*repository.Patient, error) {
	patients, err := s.repo.ListBySpeciesAndClinic(ctx, species, clinicID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list patients")
		return nil, errors.Internal("failed to list patients")
	}
	return patients, nil
}

// Update replaces a patient's details
func (s *PatientService) Update(ctx context.Context, p *repository.Patient) error {
	if err := s.checkMicrochip(ctx, p.Microchip, p.ID); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, p); err != nil {
		if errors.IsAppError(err) {
			return err
		}
		s.logger.Error().Err(err).Msg("failed to update patient")
		return errors.Internal("failed to update patient")
	}
	return nil
}

// Deactivate marks a patient inactive with a reason
func (s *PatientService) Deactivate(ctx context.Context, id int, reason string) error {
	if err := s.repo.Deactivate(ctx, id, reason); err != nil {
		if errors.IsAppError(err) {
			return err
		}
		s.logger.Error().Err(err).Msg("failed to deactivate patient")
		return errors.Internal("failed to deactivate patient")
	}

	s.publisher.PublishPatientDeactivated(ctx, id, reason)
	return nil
}

// Reactivate marks a patient active again
func (s *PatientService) Reactivate(ctx context.Context, id int) error {
	patient, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if !patient.Inactive {
		return errors.Precondition("Patient is already active")
	}

	if err := s.repo.Reactivate(ctx, id); err != nil {
		if errors.IsAppError(err) {
			return err
		}
		s.logger.Error().Err(err).Msg("failed to reactivate patient")
		return errors.Internal("failed to reactivate patient")
	}

	s.publisher.PublishPatientReactivated(ctx, id)
	return nil
}

// Delete removes a patient
func (s *PatientService) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.IsAppError(err) {
			return err
		}
		s.logger.Error().Err(err).Msg("failed to delete patient")
		return errors.Internal("failed to delete patient")
	}
	return nil
}
