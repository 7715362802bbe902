package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"cloud.google.com/go/civil"
	"github.com/goccy/go-json"

	"mindfuelAPI/internal/apperr"
	"mindfuelAPI/internal/logger"
	"mindfuelAPI/internal/validation"
	"mindfuelAPI/middleware"
)

const (
	requestTimeout = 5 * time.Second
	maxBodyBytes   = 1 << 20
)

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// writeServiceError maps domain errors onto status codes. Unexpected errors
// are logged and hidden behind a generic 500.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, apperr.ErrInvalidArgument):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperr.ErrConflict):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, apperr.ErrUpstreamUnavailable):
		logger.FromContext(ctx).Warn("upstream unavailable", slog.String("error", err.Error()))
		respondWithError(w, http.StatusServiceUnavailable, "Service temporarily unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		respondWithError(w, http.StatusGatewayTimeout, "Request timed out")
	default:
		logger.FromContext(ctx).Error("request failed", slog.String("error", err.Error()))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeAndValidate reads a JSON body into v and runs struct validation.
func decodeAndValidate(r *http.Request, v any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v); err != nil {
		return apperr.InvalidArgument("invalid request body")
	}
	return validation.Struct(v)
}

// authenticated returns a request-scoped context and the caller's Clerk id.
// It writes a 401 and returns ok=false when the request carries none.
func authenticated(w http.ResponseWriter, r *http.Request) (context.Context, context.CancelFunc, string, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		cancel()
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return nil, nil, "", false
	}
	return ctx, cancel, clerkID, true
}

// dateParam parses an optional YYYY-MM-DD query parameter.
func dateParam(r *http.Request, name string) (*civil.Date, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	d, err := civil.ParseDate(raw)
	if err != nil {
		return nil, apperr.InvalidArgument("%s must be YYYY-MM-DD", name)
	}
	return &d, nil
}
