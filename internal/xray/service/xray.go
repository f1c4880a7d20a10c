package service

import (
	"context"
	"fmt"

	"github.com/vetdesk/vetdesk-backend/internal/xray/repository"
	"github.com/vetdesk/vetdesk-backend/pkg/errors"
	"github.com/vetdesk/vetdesk-backend/pkg/logger"
)

// XrayService handles radiograph business rules
type XrayService struct {
	repo   *repository.XrayRepository
	logger *logger.Logger
}

// NewXrayService creates a new xray service
func NewXrayService(repo *repository.XrayRepository, log *logger.Logger) *XrayService {
	return &XrayService{
		repo:   repo,
		logger: log,
	}
}

// ListByClinic returns all of a clinic's radiographs
func (s *XrayService) ListByClinic(ctx context.Context, clinicID int) ([]*repository.XrayView, error) {
	xrays, err := s.repo.ListByClinic(ctx, clinicID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list xrays")
		return nil, errors.Internal("failed to list xrays")
	}

	return xrays, nil
}

// ListByPatient returns all of a patient's radiographs
func (s *XrayService) ListByPatient(ctx context.Context, patientID int) ([]*repository.XrayView, error) {
	xrays, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list xrays")
		return nil, errors.Internal("failed to list xrays")
	}

	return xrays, nil
}

// checkPatientActive rejects radiographs against a deactivated patient
func (s *XrayService) checkPatientActive(ctx context.Context, patientID int) error {
	patient, err := s.repo.GetPatientInfo(ctx, patientID)
	if err != nil {
		if errors.IsAppError(err) {
			return err
		}
		s.logger.Error().Err(err).Msg("failed to look up patient")
		return errors.Internal("failed to look up patient")
	}

	if patient.Inactive {
		return errors.Precondition(fmt.Sprintf(
			"Patient (%s) is inactive. Please reactivate %s before taking xray",
			patient.Name, patient.Name))
	}

	return nil
}

// Create records a radiograph for an active patient
func (s *XrayService) Create(ctx context.Context, x *repository.Xray) (*repository.XrayView, error) {
	if err := s.checkPatientActive(ctx, x.PatientID); err != nil {
		return nil, err
	}

	view, err := s.repo.Create(ctx, x)
	if err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		s.logger.Error().Err(err).Msg("failed to create xray")
		return nil, errors.Internal("failed to create xray")
	}

	s.logger.Info().Int("xray_id", view.ID).Int("patient_id", x.PatientID).Msg("xray recorded")

	return view, nil
}

// Update rewrites a radiograph for an active patient
func (s *XrayService) Update(ctx context.Context, x *repository.Xray) (*repository.XrayView, error) {
	if err := s.checkPatientActive(ctx, x.PatientID); err != nil {
		return nil, err
	}

	view, err := s.repo.Update(ctx, x)
	if err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		s.logger.Error().Err(err).Msg("failed to update xray")
		return nil, errors.Internal("failed to update xray")
	}

	return view, nil
}
