// Package httpapi provides the REST HTTP adapter for the schedule surfaces.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/evanlind/taktplan/internal/adapters/server/common"
)

// maxRequestBodyBytes limits decoded JSON payload size for fail-closed request handling.
const maxRequestBodyBytes int64 = 1 << 20

// Handler serves the versioned API subrouter mounted under `/api/v1`.
type Handler struct {
	schedule common.ScheduleService
}

// APIError represents one structured API failure response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// ErrorEnvelope wraps one structured API error.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// scheduleUpdateBody is the JSON body for schedule writes and validations.
type scheduleUpdateBody struct {
	StartDate    string `json:"start_date"`
	DurationDays int    `json:"duration_days"`
}

// NewHandler constructs one HTTP API adapter.
func NewHandler(schedule common.ScheduleService) *Handler {
	return &Handler{schedule: schedule}
}

// ServeHTTP routes one versioned API request to the matching handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.schedule == nil {
		writeJSONError(w, http.StatusServiceUnavailable, APIError{
			Code:    "service_unavailable",
			Message: "schedule service is not configured",
		})
		return
	}
	path := normalizePath(r.URL.Path)
	switch {
	case matchTail(path, "projects/", "/schedule"):
		h.requireMethod(w, r, http.MethodGet, func() {
			h.handleCaptureSchedule(w, r, pathID(path, "projects/", "/schedule"))
		})
	case matchTail(path, "projects/", "/layout"):
		h.requireMethod(w, r, http.MethodGet, func() {
			h.handleTimelineLayout(w, r, pathID(path, "projects/", "/layout"))
		})
	case matchTail(path, "activities/", "/suggestion"):
		h.requireMethod(w, r, http.MethodGet, func() {
			h.handleSuggestion(w, r, pathID(path, "activities/", "/suggestion"))
		})
	case matchTail(path, "activities/", "/validate"):
		h.requireMethod(w, r, http.MethodPost, func() {
			h.handleValidate(w, r, pathID(path, "activities/", "/validate"))
		})
	case matchTail(path, "activities/", "/schedule"):
		h.requireMethod(w, r, http.MethodPost, func() {
			h.handleUpdateSchedule(w, r, pathID(path, "activities/", "/schedule"))
		})
	default:
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: "endpoint not found",
		})
	}
}

// requireMethod runs next only for the expected method.
func (h *Handler) requireMethod(w http.ResponseWriter, r *http.Request, method string, next func()) {
	if r.Method != method {
		w.Header().Set("Allow", method)
		writeJSONError(w, http.StatusMethodNotAllowed, APIError{
			Code:    "method_not_allowed",
			Message: "method not allowed",
		})
		return
	}
	next()
}

// handleCaptureSchedule serves GET `/projects/{id}/schedule`.
func (h *Handler) handleCaptureSchedule(w http.ResponseWriter, r *http.Request, projectID string) {
	capture, err := h.schedule.CaptureSchedule(r.Context(), common.CaptureScheduleRequest{ProjectID: projectID})
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, capture)
}

// handleTimelineLayout serves GET `/projects/{id}/layout`.
func (h *Handler) handleTimelineLayout(w http.ResponseWriter, r *http.Request, projectID string) {
	q := r.URL.Query()
	req := common.LayoutRequest{
		ProjectID: projectID,
		Scale:     strings.TrimSpace(q.Get("scale")),
		Density:   strings.TrimSpace(q.Get("density")),
	}
	if raw := strings.TrimSpace(q.Get("zoom")); raw != "" {
		zoom, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, APIError{
				Code:    "invalid_request",
				Message: fmt.Sprintf("zoom %q is not a number", raw),
			})
			return
		}
		req.Zoom = zoom
	}
	if raw := strings.TrimSpace(q.Get("statuses")); raw != "" {
		req.Statuses = strings.Split(raw, ",")
	}
	capture, err := h.schedule.TimelineLayout(r.Context(), req)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, capture)
}

// handleSuggestion serves GET `/activities/{id}/suggestion`.
func (h *Handler) handleSuggestion(w http.ResponseWriter, r *http.Request, activityID string) {
	result, err := h.schedule.SuggestStartDate(r.Context(), activityID)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleValidate serves POST `/activities/{id}/validate`.
func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request, activityID string) {
	var body scheduleUpdateBody
	if err := decodeJSONBody(r.Context(), w, r, &body); err != nil {
		writeErrorFrom(w, err)
		return
	}
	result, err := h.schedule.ValidateSchedule(r.Context(), common.ValidateScheduleRequest{
		ActivityID:   activityID,
		StartDate:    body.StartDate,
		DurationDays: body.DurationDays,
	})
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleUpdateSchedule serves POST `/activities/{id}/schedule`.
func (h *Handler) handleUpdateSchedule(w http.ResponseWriter, r *http.Request, activityID string) {
	var body scheduleUpdateBody
	if err := decodeJSONBody(r.Context(), w, r, &body); err != nil {
		writeErrorFrom(w, err)
		return
	}
	activity, err := h.schedule.UpdateActivitySchedule(r.Context(), common.UpdateScheduleRequest{
		ActivityID:   activityID,
		StartDate:    body.StartDate,
		DurationDays: body.DurationDays,
	})
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, activity)
}

// matchTail reports whether path is `{prefix}{id}{suffix}` with a non-empty,
// slash-free id.
func matchTail(path, prefix, suffix string) bool {
	_, ok := tailID(path, prefix, suffix)
	return ok
}

// pathID extracts the id from `{prefix}{id}{suffix}`.
func pathID(path, prefix, suffix string) string {
	id, _ := tailID(path, prefix, suffix)
	return id
}

// tailID parses `{prefix}{id}{suffix}`.
func tailID(path, prefix, suffix string) (string, bool) {
	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) {
		return "", false
	}
	id := strings.TrimSuffix(strings.TrimPrefix(path, prefix), suffix)
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

// normalizePath canonicalizes one request path for route matching.
func normalizePath(path string) string {
	return strings.Trim(strings.TrimSpace(path), "/")
}

// writeErrorFrom maps adapter errors into structured HTTP responses.
func writeErrorFrom(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: "unknown error",
		})
	case errors.Is(err, common.ErrInvalidRequest):
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: err.Error(),
		})
	case errors.Is(err, common.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, common.ErrPermissionDenied):
		writeJSONError(w, http.StatusForbidden, APIError{
			Code:    "permission_denied",
			Message: err.Error(),
			Hint:    "Unlock the project before writing schedule dates.",
		})
	default:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: err.Error(),
		})
	}
}

// writeJSONError writes one structured error envelope.
func writeJSONError(w http.ResponseWriter, statusCode int, apiErr APIError) {
	writeJSON(w, statusCode, ErrorEnvelope{Error: apiErr})
}

// writeJSON writes one JSON response envelope.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":{"code":"encode_error","message":"%s"}}`, err.Error()), http.StatusInternalServerError)
	}
}

// decodeJSONBody decodes one required JSON request body with strict shape checks.
func decodeJSONBody(ctx context.Context, w http.ResponseWriter, r *http.Request, out any) error {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer reader.Close()

	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode request body: %w", errors.Join(common.ErrInvalidRequest, err))
	}
	// Reject trailing payloads so malformed JSON bodies fail closed.
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode request body: trailing content: %w", common.ErrInvalidRequest)
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("request canceled: %w", ctx.Err())
	default:
		return nil
	}
}
