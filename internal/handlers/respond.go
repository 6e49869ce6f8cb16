package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	applog "sugarbeat/internal/log"
	"sugarbeat/internal/nutrition"
	"sugarbeat/internal/provider"
	"sugarbeat/internal/store"
	"sugarbeat/internal/tracker"
)

const maxBodyBytes = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		applog.Error(context.Background(), "failed to encode json response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// decodeJSON reads and validates a request body, answering 400 itself.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		applog.Debug(r.Context(), "invalid request payload", "path", r.URL.Path, "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			field := verrs[0]
			applog.Debug(r.Context(), "request payload failed validation", "path", r.URL.Path, "field", field.Field(), "tag", field.Tag())
			writeJSONError(w, http.StatusBadRequest, strings.ToLower(field.Field())+" is invalid ("+field.Tag()+")")
			return false
		}
		applog.Debug(r.Context(), "request payload failed validation", "path", r.URL.Path, "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return false
	}
	return true
}

// writeServiceError maps domain errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, message string) {
	ctx := r.Context()
	var providerErr *provider.Error
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, tracker.ErrFoodNotFound):
		applog.Debug(ctx, "resource not found", "path", r.URL.Path, "error", err)
		writeJSONError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrInvalid), errors.Is(err, nutrition.ErrMissingSourceData):
		applog.Debug(ctx, "invalid request", "path", r.URL.Path, "error", err)
		writeJSONError(w, http.StatusBadRequest, errorDetail(err))
	case errors.Is(err, store.ErrConflict):
		applog.Debug(ctx, "conflicting request", "path", r.URL.Path, "error", err)
		writeJSONError(w, http.StatusConflict, "already exists")
	case errors.Is(err, store.ErrForbidden):
		applog.Debug(ctx, "forbidden request", "path", r.URL.Path, "error", err)
		writeJSONError(w, http.StatusForbidden, "forbidden")
	case errors.As(err, &providerErr):
		applog.Warn(ctx, "food provider request failed", "provider", providerErr.Provider, "op", providerErr.Op, "status", providerErr.StatusCode, "error", providerErr.Err)
		writeJSONError(w, http.StatusBadGateway, "food database unavailable")
	case errors.Is(err, context.Canceled):
		applog.Debug(ctx, "request canceled", "path", r.URL.Path)
	default:
		applog.Error(ctx, message, "path", r.URL.Path, "error", err)
		writeJSONError(w, http.StatusInternalServerError, message)
	}
}

func errorDetail(err error) string {
	msg := err.Error()
	if idx := strings.LastIndex(msg, "invalid input: "); idx >= 0 {
		return msg[idx+len("invalid input: "):]
	}
	return "invalid request"
}

// resourcePath strips prefix and splits the remainder into segments.
func resourcePath(r *http.Request, prefix string) []string {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func parseUintSegment(value string) (uint, bool) {
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil || parsed == 0 {
		return 0, false
	}
	return uint(parsed), true
}

// referenceTime reads ?date=YYYY-MM-DD and ?tz=Area/City. Without a date the
// service clock is used.
func referenceTime(r *http.Request) (time.Time, error) {
	loc := time.UTC
	if tz := strings.TrimSpace(r.URL.Query().Get("tz")); tz != "" {
		parsed, err := time.LoadLocation(tz)
		if err != nil {
			return time.Time{}, err
		}
		loc = parsed
	}
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		return service.Now().In(loc), nil
	}
	return time.ParseInLocation("2006-01-02", date, loc)
}

func optionalUint(value string) (*uint, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, true
	}
	parsed, ok := parseUintSegment(value)
	if !ok {
		return nil, false
	}
	return &parsed, true
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
