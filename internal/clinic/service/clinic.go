package service

import (
	"context"

	"github.com/vetdesk/vetdesk-backend/internal/clinic/repository"
	"github.com/vetdesk/vetdesk-backend/pkg/errors"
	"github.com/vetdesk/vetdesk-backend/pkg/logger"
)

// ClinicService handles the clinic-scoped reads behind the app shell
type ClinicService struct {
	repo   *repository.ClinicRepository
	logger *logger.Logger
}

// NewClinicService creates a new clinic service
func NewClinicService(repo *repository.ClinicRepository, log *logger.Logger) *ClinicService {
	return &ClinicService{
		repo:   repo,
		logger: log,
	}
}

// Sidebar returns the caller's clinic name
func (s *ClinicService) Sidebar(ctx context.Context, clinicID int) (*repository.ClinicName, error) {
	clinic, err := s.repo.GetClinicName(ctx, clinicID)
	if err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		s.logger.Error().Err(err).Msg("failed to load sidebar")
		return nil, errors.Internal("failed to load sidebar")
	}

	return clinic, nil
}

// Dashboard returns the caller's username and clinic name
func (s *ClinicService) Dashboard(ctx context.Context, staffID int) (*repository.DashboardInfo, error) {
	info, err := s.repo.GetDashboardInfo(ctx, staffID)
	if err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		s.logger.Error().Err(err).Msg("failed to load dashboard")
		return nil, errors.Internal("failed to load dashboard")
	}

	return info, nil
}

// StaffProfile returns the caller's own staff record
func (s *ClinicService) StaffProfile(ctx context.Context, staffID int) (*repository.StaffProfile, error) {
	profile, err := s.repo.GetStaffProfile(ctx, staffID)
	if err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		s.logger.Error().Err(err).Msg("failed to load staff profile")
		return nil, errors.Internal("failed to load staff profile")
	}

	return profile, nil
}
