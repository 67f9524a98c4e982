package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/memotica/memotica/internal/errors"
	"github.com/memotica/memotica/internal/logger"
	"github.com/memotica/memotica/internal/models"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Warn("failed to write response: %v", err)
	}
}

// decodeJSON reads a single JSON object into v. Unknown fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if err == io.EOF {
			return errors.NewBadRequestError("request body is empty")
		}
		return errors.NewBadRequestError(fmt.Sprintf("invalid request body: %v", err))
	}
	if dec.More() {
		return errors.NewBadRequestError("request body must hold a single JSON object")
	}
	return nil
}

func idParam(r *http.Request, resource string) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		logger.FromContext(r.Context()).Warn("invalid %s ID: %s", resource, raw)
		return 0, errors.NewBadRequestError(fmt.Sprintf("invalid %s ID", resource))
	}
	return id, nil
}

// pageParam reads the limit and offset query parameters. Both default to 0.
func pageParam(r *http.Request) (models.Page, error) {
	var page models.Page
	q := r.URL.Query()
	for _, p := range []struct {
		name string
		dst  *int
	}{{"limit", &page.Limit}, {"offset", &page.Offset}} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return models.Page{}, errors.NewBadRequestError(fmt.Sprintf("invalid %s", p.name))
		}
		*p.dst = n
	}
	return page, nil
}
