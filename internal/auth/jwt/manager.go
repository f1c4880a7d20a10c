// Package jwt issues and verifies the signed tokens that carry a staff
// member's identity between requests.
package jwt

import (
	stderrors "errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/vetdesk/vetdesk-backend/pkg/config"
	"github.com/vetdesk/vetdesk-backend/pkg/errors"
	"github.com/vetdesk/vetdesk-backend/pkg/httputil"
)

// Claims represents the JWT claims
type Claims struct {
	jwt.RegisteredClaims
	StaffMemberID int    `json:"staff_member_id"`
	Username      string `json:"staff_username"`
	Role          string `json:"staff_role"`
	ClinicID      int    `json:"staff_clinic_id"`
}

// Manager handles JWT operations
type Manager struct {
	config *config.JWTConfig
}

// NewManager creates a new JWT manager
func NewManager(cfg *config.JWTConfig) *Manager {
	return &Manager{config: cfg}
}

// StaffInfo contains staff identity for token generation
type StaffInfo struct {
	ID       int
	Username string
	Role     string
	ClinicID int
}

// Generate creates a signed token carrying the staff member's identity
func (m *Manager) Generate(staff *StaffInfo) (string, error) {
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.AccessExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
		StaffMemberID: staff.ID,
		Username:      staff.Username,
		Role:          staff.Role,
		ClinicID:      staff.ClinicID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.config.Secret))
}

// Verify validates a token and returns the identity it carries. It
// satisfies httputil.TokenVerifier so the auth middleware can use it.
func (m *Manager) Verify(tokenString string) (*httputil.Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.TokenInvalid()
		}
		return []byte(m.config.Secret), nil
	})

	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.TokenExpired()
		}
		return nil, errors.TokenInvalid()
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.TokenInvalid()
	}

	return &httputil.Identity{
		StaffMemberID: claims.StaffMemberID,
		Username:      claims.Username,
		Role:          claims.Role,
		ClinicID:      claims.ClinicID,
	}, nil
}

// GetTokenExpiry returns the access token expiry duration
func (m *Manager) GetTokenExpiry() time.Duration {
	return m.config.AccessExpiry
}
