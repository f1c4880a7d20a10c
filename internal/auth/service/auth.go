package service

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/vetdesk/vetdesk-backend/internal/auth/jwt"
	"github.com/vetdesk/vetdesk-backend/internal/auth/repository"
	"github.com/vetdesk/vetdesk-backend/internal/events"
	"github.com/vetdesk/vetdesk-backend/pkg/errors"
	"github.com/vetdesk/vetdesk-backend/pkg/logger"
	"github.com/vetdesk/vetdesk-backend/pkg/permissions"
)

// bcryptCost matches the cost used for existing stored hashes
const bcryptCost = 10

// AuthService handles staff registration and login
type AuthService struct {
	repo       *repository.StaffRepository
	jwtManager *jwt.Manager
	publisher  *events.ClinicalEventPublisher
	logger     *logger.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(repo *repository.StaffRepository, jwtManager *jwt.Manager, publisher *events.ClinicalEventPublisher, log *logger.Logger) *AuthService {
	return &AuthService{
		repo:       repo,
		jwtManager: jwtManager,
		publisher:  publisher,
		logger:     log,
	}
}

// RegisterInput carries a new staff account's details
type RegisterInput struct {
	Username string
	Password string
	Role     string
	ClinicID int
}

// AuthResult is returned on successful registration or login
type AuthResult struct {
	Token string                  `json:"token"`
	Staff *repository.StaffMember `json:"staff_info"`
}

// Register creates a staff account and returns a signed token for it
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if !permissions.ValidRole(input.Role) {
		return nil, errors.Validation(map[string]string{
			"staff_role": "must be one of: Vet, Nurse, ACA, Receptionist",
		})
	}

	taken, err := s.repo.UsernameExists(ctx, input.Username)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to check username availability")
		return nil, errors.Internal("failed to register staff member")
	}
	if taken {
		return nil, errors.Conflict("Username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, errors.Internal("failed to register staff member")
	}

	staff := &repository.StaffMember{
		Username: input.Username,
		Password: string(hash),
		Role:     input.Role,
		ClinicID: input.ClinicID,
	}

	if err := s.repo.Create(ctx, staff); err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		s.logger.Error().Err(err).Msg("failed to create staff member")
		return nil, errors.Internal("failed to register staff member")
	}

	token, err := s.jwtManager.Generate(&jwt.StaffInfo{
		ID:       staff.ID,
		Username: staff.Username,
		Role:     staff.Role,
		ClinicID: staff.ClinicID,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to sign token")
		return nil, errors.Internal("failed to register staff member")
	}

	s.publisher.PublishStaffRegistered(ctx, staff.ID, staff.Username, staff.Role, staff.ClinicID)

	return &AuthResult{Token: token, Staff: staff}, nil
}

// Login verifies credentials and returns a signed token
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	staff, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.InvalidCredentials()
		}
		s.logger.Error().Err(err).Msg("failed to look up staff member")
		return nil, errors.Internal("failed to log in")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(staff.Password), []byte(password)); err != nil {
		return nil, errors.InvalidCredentials()
	}

	token, err := s.jwtManager.Generate(&jwt.StaffInfo{
		ID:       staff.ID,
		Username: staff.Username,
		Role:     staff.Role,
		ClinicID: staff.ClinicID,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to sign token")
		return nil, errors.Internal("failed to log in")
	}

	return &AuthResult{Token: token, Staff: staff}, nil
}
