package httputil

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/vetdesk/vetdesk-backend/pkg/errors"
)

// IDParam extracts a positive integer path parameter
func IDParam(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)

	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.BadRequest("invalid " + name + " parameter")
	}

	return id, nil
}
