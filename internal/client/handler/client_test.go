package handler_test

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/vetdesk/vetdesk-backend/internal/client/handler"
	"github.com/vetdesk/vetdesk-backend/internal/client/repository"
	"github.com/vetdesk/vetdesk-backend/internal/client/service"
	"github.com/vetdesk/vetdesk-backend/pkg/database"
	"github.com/vetdesk/vetdesk-backend/pkg/logger"
	"github.com/vetdesk/vetdesk-backend/pkg/testutil"
)

func newTestRouter(t *testing.T) (http.Handler, *testutil.MockDB) {
	mockDB := testutil.NewMockDB(t)

	log := logger.New("test", "test")
	repo := repository.NewClientRepository(database.FromSqlx(mockDB.DB, log))
	svc := service.NewClientService(repo, nil, log)
	h := handler.NewClientHandler(svc, log)

	r := chi.NewRouter()
	r.Route("/clients", h.Routes)
	return r, mockDB
}

func validPayload() map[string]interface{} {
	return map[string]interface{}{
		"client_forename":  "Jane",
		"client_surname":   "Doe",
		"client_address":   "14 Harbour Road",
		"client_city":      "Bristol",
		"client_county":    "Avon",
		"client_phone":     "07700900123",
		"client_email":     "jane.doe@example.com",
		"client_clinic_id": 3,
	}
}

func TestCreateClient(t *testing.T) {
	router, mockDB := newTestRouter(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("INSERT INTO client").
		WithArgs("Jane", "Doe", "14 Harbour Road", "Bristol", "Avon",
			"07700900123", "jane.doe@example.com", 3).
		WillReturnRows(testutil.MockRows("client_id").AddRow(21))

	req := testutil.NewHTTPRequest(http.MethodPost, "/clients/", validPayload())
	rr := testutil.ExecuteRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusCreated)
	testutil.AssertBodyContains(t, rr, "Client created")
	testutil.AssertBodyContains(t, rr, `"client_id":21`)
	mockDB.ExpectationsWereMet(t)
}

func TestCreateClient_ValidationFailure(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value interface{}
	}{
		{"numeric forename", "client_forename", "Jane99"},
		{"bad email", "client_email", "not-an-email"},
		{"non numeric phone", "client_phone", "0770090012a"},
		{"missing clinic", "client_clinic_id", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, mockDB := newTestRouter(t)
			defer mockDB.Close()

			payload := validPayload()
			payload[tt.field] = tt.value

			req := testutil.NewHTTPRequest(http.MethodPost, "/clients/", payload)
			rr := testutil.ExecuteRequest(router, req)

			testutil.AssertStatus(t, rr, http.StatusUnprocessableEntity)
			testutil.AssertBodyContains(t, rr, "VALIDATION_ERROR")
			mockDB.ExpectationsWereMet(t)
		})
	}
}

func TestGetClient_NotFound(t *testing.T) {
	router, mockDB := newTestRouter(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("FROM client WHERE client_id = $1").
		WithArgs(99).
		WillReturnRows(testutil.MockRows("client_id"))

	req := testutil.NewHTTPRequest(http.MethodGet, "/clients/99", nil)
	rr := testutil.ExecuteRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusNotFound)
	testutil.AssertBodyContains(t, rr, "NOT_FOUND")
	mockDB.ExpectationsWereMet(t)
}

func TestGetClient_BadID(t *testing.T) {
	router, mockDB := newTestRouter(t)
	defer mockDB.Close()

	req := testutil.NewHTTPRequest(http.MethodGet, "/clients/abc", nil)
	rr := testutil.ExecuteRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusBadRequest)
	mockDB.ExpectationsWereMet(t)
}
