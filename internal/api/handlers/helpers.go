package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"waste-route-service/internal/domain"
	"waste-route-service/internal/platform/logger"
	"waste-route-service/internal/platform/obs"
	"waste-route-service/internal/ports"
	"waste-route-service/internal/services"
)

var log = logger.New("http")

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// writeServiceError maps a use case error to a status. Anything unexpected is
// logged and answered with a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrUnsupportedCity):
		writeError(w, r, http.StatusBadRequest, "unsupported city")
	case errors.Is(err, domain.ErrInvalidFillLevel):
		writeError(w, r, http.StatusBadRequest, "fill level must be between 0 and 100")
	case errors.Is(err, services.ErrEmptyQuery):
		writeError(w, r, http.StatusBadRequest, "query is required")
	case errors.Is(err, ports.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not found")
	default:
		log.Errorf("%s failed: req_id=%s err=%v", op, requestID(r), err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

func requestID(r *http.Request) string {
	return obs.RequestID(r.Context())
}

// decodeBody reads exactly one JSON object into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}

// cityParam parses the {city} path value, answering 400 when it is unknown.
func cityParam(w http.ResponseWriter, r *http.Request) (domain.City, bool) {
	city, err := domain.ParseCity(r.PathValue("city"))
	if err != nil {
		writeServiceError(w, r, "parse city", err)
		return "", false
	}
	return city, true
}
