package service

import (
	"context"
	"fmt"

	"github.com/vetdesk/vetdesk-backend/internal/dental/repository"
	"github.com/vetdesk/vetdesk-backend/pkg/errors"
	"github.com/vetdesk/vetdesk-backend/pkg/logger"
)

// toothRange is one jaw quadrant in modified Triadan numbering
type toothRange struct {
	start, end int
}

// Quadrant layouts per species. Only canines and felines get charts.
var speciesTeeth = map[string][]toothRange{
	"Canine": {{101, 110}, {201, 210}, {301, 311}, {401, 411}},
	"Feline": {{101, 108}, {201, 208}, {301, 307}, {401, 407}},
}

// toothIDsFor expands a species' quadrants into the full tooth ID list
func toothIDsFor(species string) []int {
	ranges, ok := speciesTeeth[species]
	if !ok {
		return nil
	}

	ids := []int{}
	for _, r := range ranges {
		for id := r.start; id <= r.end; id++ {
			ids = append(ids, id)
		}
	}
	return ids
}

// DentalService handles dental chart business rules
type DentalService struct {
	repo   *repository.DentalRepository
	logger *logger.Logger
}

// NewDentalService creates a new dental service
func NewDentalService(repo *repository.DentalRepository, log *logger.Logger) *DentalService {
	return &DentalService{
		repo:   repo,
		logger: log,
	}
}

// GetChart returns a patient's teeth
func (s *DentalService) GetChart(ctx context.Context, patientID int) ([]*repository.Tooth, error) {
	if _, err := s.getPatient(ctx, patientID); err != nil {
		return nil, err
	}

	teeth, err := s.repo.ListTeeth(ctx, patientID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list teeth")
		return nil, errors.Internal("failed to retrieve dental")
	}

	return teeth, nil
}

func (s *DentalService) getPatient(ctx context.Context, patientID int) (*repository.PatientDentalInfo, error) {
	patient, err := s.repo.GetPatientInfo(ctx, patientID)
	if err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		s.logger.Error().Err(err).Msg("failed to look up patient")
		return nil, errors.Internal("failed to look up patient")
	}
	return patient, nil
}

// CreateChart creates a patient's full dental chart. A patient gets exactly
// one chart, must be active, and must be a species with a supported layout.
func (s *DentalService) CreateChart(ctx context.Context, patientID int) ([]*repository.Tooth, error) {
	exists, err := s.repo.HasChart(ctx, patientID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to check chart")
		return nil, errors.Internal("failed to check dental")
	}
	if exists {
		return nil, errors.Conflict("Dental for this patient is already available")
	}

	patient, err := s.getPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	if patient.Inactive {
		return nil, errors.Precondition(fmt.Sprintf(
			"Patient (%s) is inactive. Please reactivate %s before adding a dental record",
			patient.Name, patient.Name,
		))
	}

	toothIDs := toothIDsFor(patient.Species)
	if toothIDs == nil {
		return nil, errors.Precondition(fmt.Sprintf("Dental not available for %s", patient.Species))
	}

	teeth, err := s.repo.CreateChart(ctx, patientID, toothIDs)
	if err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		s.logger.Error().Err(err).Msg("failed to create chart")
		return nil, errors.Internal("failed to create dental")
	}

	return teeth, nil
}

// UpdateTooth updates one tooth's problem and note. The patient must exist
// and be active; the chart's last-updated date moves with the change.
func (s *DentalService) UpdateTooth(ctx context.Context, t *repository.Tooth) (*repository.Tooth, error) {
	patient, err := s.getPatient(ctx, t.PatientID)
	if err != nil {
		return nil, err
	}

	if patient.Inactive {
		return nil, errors.Precondition(fmt.Sprintf(
			"Patient (%s) is inactive. Please reactivate %s before updating dental record",
			patient.Name, patient.Name,
		))
	}

	updated, err := s.repo.UpdateTooth(ctx, t)
	if err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		s.logger.Error().Err(err).Msg("failed to update tooth")
		return nil, errors.Internal("failed to update tooth")
	}

	return updated, nil
}

// TouchChart re-stamps a patient's chart date without changing any teeth
func (s *DentalService) TouchChart(ctx context.Context, patientID int) (*repository.Dental, error) {
	if _, err := s.getPatient(ctx, patientID); err != nil {
		return nil, err
	}

	dental, err := s.repo.TouchChart(ctx, patientID)
	if err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		s.logger.Error().Err(err).Msg("failed to touch chart")
		return nil, errors.Internal("failed to update dental")
	}

	return dental, nil
}
