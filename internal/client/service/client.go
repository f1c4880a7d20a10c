package service

import (
	"context"

	"github.com/vetdesk/vetdesk-backend/internal/client/repository"
	"github.com/vetdesk/vetdesk-backend/internal/events"
	"github.com/vetdesk/vetdesk-backend/pkg/errors"
	"github.com/vetdesk/vetdesk-backend/pkg/logger"
)

// ClientService handles client business rules
type ClientService struct {
	repo      *repository.ClientRepository
	publisher *events.ClinicalEventPublisher
	logger    *logger.Logger
}

// NewClientService creates a new client service
func NewClientService(repo *repository.ClientRepository, publisher *events.ClinicalEventPublisher, log *logger.Logger) *ClientService {
	return &ClientService{
		repo:      repo,
		publisher: publisher,
		logger:    log,
	}
}

// Create registers a new client
func (s *ClientService) Create(ctx context.Context, c *repository.Client) error {
	if err := s.repo.Create(ctx, c); err != nil {
		if errors.IsAppError(err) {
			return err
		}
		s.logger.Error().Err(err).Msg("failed to create client")
		return errors.Internal("failed to create client")
	}
	return nil
}

// Get returns a client by ID
func (s *ClientService) Get(ctx context.Context, id int) (*repository.Client, error) {
	client, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		s.logger.Error().Err(err).Msg("failed to get client")
		return nil, errors.Internal("failed to get client")
	}
	return client, nil
}

// ListByClinic returns all clients of a clinic
func (s *ClientService) ListByClinic(ctx context.Context, clinicID int) ([]*repository.Client, error) {
	clients, err := s.repo.ListByClinic(ctx, clinicID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list clients")
		return nil, errors.Internal("failed to list clients")
	}
	return clients, nil
}

// Update replaces a client's contact details
func (s *ClientService) Update(ctx context.Context, c *repository.Client) error {
	if err := s.repo.Update(ctx, c); err != nil {
		if errors.IsAppError(err) {
			return err
		}
		s.logger.Error().Err(err).Msg("failed to update client")
		return errors.Internal("failed to update client")
	}
	return nil
}

// Deactivate marks a client inactive and cascades the reason to their
// active patients
func (s *ClientService) Deactivate(ctx context.Context, id int, reason string) error {
	if err := s.repo.DeactivateCascade(ctx, id, reason); err != nil {
		if errors.IsAppError(err) {
			return err
		}
		s.logger.Error().Err(err).Msg("failed to deactivate client")
		return errors.Internal("failed to deactivate client")
	}

	s.publisher.PublishClientDeactivated(ctx, id, reason)
	return nil
}

// Reactivate marks a client active again. Only patients deactivated with the
// client's stored reason come back with them; patients deactivated for their
// own reasons stay inactive.
func (s *ClientService) Reactivate(ctx context.Context, id int) error {
	client, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if !client.Inactive {
		return errors.Precondition("Client is already active")
	}

	storedReason := ""
	if client.ReasonInactive != nil {
		storedReason = *client.ReasonInactive
	}

	if err := s.repo.ReactivateSelective(ctx, id, storedReason); err != nil {
		if errors.IsAppError(err) {
			return err
		}
		s.logger.Error().Err(err).Msg("failed to reactivate client")
		return errors.Internal("failed to reactivate client")
	}

	s.publisher.PublishClientReactivated(ctx, id)
	return nil
}

// Delete removes a client
func (s *ClientService) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.IsAppError(err) {
			return err
		}
		s.logger.Error().Err(err).Msg("failed to delete client")
		return errors.Internal("failed to delete client")
	}
	return nil
}
