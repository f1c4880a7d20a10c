package httputil_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vetdesk/vetdesk-backend/pkg/errors"
	"github.com/vetdesk/vetdesk-backend/pkg/httputil"
)

// stubVerifier accepts exactly one token string
type stubVerifier struct {
	token    string
	identity *httputil.Identity
}

func (v *stubVerifier) Verify(token string) (*httputil.Identity, error) {
	if token != v.token {
		return nil, errors.TokenInvalid()
	}
	return v.identity, nil
}

func authTestServer(verifier httputil.TokenVerifier) http.Handler {
	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := httputil.GetIdentity(r.Context())
		httputil.JSON(w, http.StatusOK, identity)
	})
	return httputil.Authenticate(verifier)(handler)
}

func TestAuthenticate_MissingToken(t *testing.T) {
	verifier := &stubVerifier{token: "good"}
	srv := authTestServer(verifier)

	req := httptest.NewRequest(http.MethodGet, "/api/clients/1", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unauthorised")
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	verifier := &stubVerifier{token: "good"}
	srv := authTestServer(verifier)

	req := httptest.NewRequest(http.MethodGet, "/api/clients/1", nil)
	req.Header.Set("token", "bad")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "TOKEN_INVALID")
}

func TestAuthenticate_ValidTokenAttachesIdentity(t *testing.T) {
	verifier := &stubVerifier{
		token: "good",
		identity: &httputil.Identity{
			StaffMemberID: 7,
			Username:      "jvet",
			Role:          "Vet",
			ClinicID:      3,
		},
	}
	srv := authTestServer(verifier)

	req := httptest.NewRequest(http.MethodGet, "/api/clients/1", nil)
	req.Header.Set("token", "good")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"staff_username":"jvet"`)
	assert.Contains(t, rec.Body.String(), `"staff_clinic_id":3`)
}

func TestJSONEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	httputil.JSONMessage(rec, http.StatusCreated, "Client created", map[string]int{"client_id": 1})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
	assert.Contains(t, rec.Body.String(), `"message":"Client created"`)
}

func TestErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	httputil.Error(rec, errors.Conflict("Username already taken"))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
	assert.Contains(t, rec.Body.String(), "Username already taken")
}
