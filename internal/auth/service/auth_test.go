package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vetdesk/vetdesk-backend/internal/auth/jwt"
	"github.com/vetdesk/vetdesk-backend/internal/auth/repository"
	"github.com/vetdesk/vetdesk-backend/internal/auth/service"
	"github.com/vetdesk/vetdesk-backend/pkg/config"
	"github.com/vetdesk/vetdesk-backend/pkg/database"
	"github.com/vetdesk/vetdesk-backend/pkg/errors"
	"github.com/vetdesk/vetdesk-backend/pkg/logger"
	"github.com/vetdesk/vetdesk-backend/pkg/testutil"
)

func newTestService(t *testing.T) (*service.AuthService, *testutil.MockDB) {
	mockDB := testutil.NewMockDB(t)

	log := logger.New("test", "test")
	repo := repository.NewStaffRepository(database.FromSqlx(mockDB.DB, log))
	jwtManager := jwt.NewManager(&config.JWTConfig{
		Secret:       "test-secret",
		AccessExpiry: 8 * time.Hour,
		Issuer:       "vetdesk-test",
	})

	return service.NewAuthService(repo, jwtManager, nil, log), mockDB
}

func TestRegister_Success(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT EXISTS(SELECT 1 FROM staff_member WHERE LOWER(staff_username) = LOWER($1))").
		WithArgs("jvet").
		WillReturnRows(testutil.MockRows("exists").AddRow(false))

	mockDB.ExpectQuery("INSERT INTO staff_member").
		WithArgs("jvet", testutil.AnyBcryptHash{}, "Vet", 1).
		WillReturnRows(testutil.MockRows("staff_member_id").AddRow(7))

	result, err := svc.Register(context.Background(), service.RegisterInput{
		Username: "jvet",
		Password: "Password1!",
		Role:     "Vet",
		ClinicID: 1,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.Token)
	assert.Equal(t, 7, result.Staff.ID)
	assert.Equal(t, "jvet", result.Staff.Username)
	mockDB.ExpectationsWereMet(t)
}

func TestRegister_InvalidRole(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	_, err := svc.Register(context.Background(), service.RegisterInput{
		Username: "jvet",
		Password: "Password1!",
		Role:     "Janitor",
		ClinicID: 1,
	})
	require.Error(t, err)

	appErr := err.(*errors.AppError)
	assert.Equal(t, 422, appErr.StatusCode)
}

func TestRegister_UsernameTaken(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT EXISTS(SELECT 1 FROM staff_member WHERE LOWER(staff_username) = LOWER($1))").
		WithArgs("jvet").
		WillReturnRows(testutil.MockRows("exists").AddRow(true))

	_, err := svc.Register(context.Background(), service.RegisterInput{
		Username: "jvet",
		Password: "Password1!",
		Role:     "Vet",
		ClinicID: 1,
	})
	require.Error(t, err)

	appErr := err.(*errors.AppError)
	assert.Equal(t, 409, appErr.StatusCode)
	assert.Equal(t, "Username already taken", appErr.Message)
	mockDB.ExpectationsWereMet(t)
}

func TestLogin_Success(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte("Password1!"), bcrypt.MinCost)
	require.NoError(t, err)

	mockDB.ExpectQuery("SELECT staff_member_id, staff_username, staff_password, staff_role, staff_clinic_id").
		WithArgs("jvet").
		WillReturnRows(testutil.
			MockRows("staff_member_id", "staff_username", "staff_password", "staff_role", "staff_clinic_id").
			AddRow(7, "jvet", string(hash), "Vet", 1))

	result, err := svc.Login(context.Background(), "jvet", "Password1!")
	require.NoError(t, err)

	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "Vet", result.Staff.Role)
	mockDB.ExpectationsWereMet(t)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte("Password1!"), bcrypt.MinCost)
	require.NoError(t, err)

	mockDB.ExpectQuery("SELECT staff_member_id, staff_username, staff_password, staff_role, staff_clinic_id").
		WithArgs("jvet").
		WillReturnRows(testutil.
			MockRows("staff_member_id", "staff_username", "staff_password", "staff_role", "staff_clinic_id").
			AddRow(7, "jvet", string(hash), "Vet", 1))

	_, err = svc.Login(context.Background(), "jvet", "WrongPassword1!")
	require.Error(t, err)

	appErr := err.(*errors.AppError)
	assert.Equal(t, "Username/Password is incorrect", appErr.Message)
	assert.Equal(t, 401, appErr.StatusCode)
}

func TestLogin_UnknownUsername(t *testing.T) {
	svc, mockDB := newTestService(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT staff_member_id, staff_username, staff_password, staff_role, staff_clinic_id").
		WithArgs("ghost").
		WillReturnRows(testutil.
			MockRows("staff_member_id", "staff_username", "staff_password", "staff_role", "staff_clinic_id"))

	_, err := svc.Login(context.Background(), "ghost", "Password1!")
	require.Error(t, err)

	appErr := err.(*errors.AppError)
	assert.Equal(t, "Username/Password is incorrect", appErr.Message)
}
