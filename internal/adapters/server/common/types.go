// Package common provides transport-agnostic server contracts shared by the
// HTTP and MCP adapters.
package common

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidRequest reports malformed transport input.
var ErrInvalidRequest = errors.New("invalid request")

// ErrNotFound reports missing transport-visible resources.
var ErrNotFound = errors.New("not found")

// ErrPermissionDenied reports schedule writes refused by the store.
var ErrPermissionDenied = errors.New("permission denied")

// CaptureScheduleRequest asks for one project's computed schedule.
type CaptureScheduleRequest struct {
	ProjectID string
}

// ProjectView is the transport shape of a project.
type ProjectView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	StartDate   string `json:"start_date"`
	Locked      bool   `json:"locked"`
}

// ConflictView is the transport shape of a dependency violation.
type ConflictView struct {
	DependencyID    string `json:"dependency_id"`
	PredecessorID   string `json:"predecessor_id"`
	PredecessorName string `json:"predecessor_name"`
	Type            string `json:"type"`
	LagDays         int    `json:"lag_days"`
	Anchor          string `json:"anchor"`
	RequiredDate    string `json:"required_date"`
	Message         string `json:"message"`
}

// ActivityView is the transport shape of an activity with its evaluator
// results.
type ActivityView struct {
	ID              string        `json:"id"`
	ProjectID       string        `json:"project_id"`
	Name            string        `json:"name"`
	Description     string        `json:"description,omitempty"`
	Status          string        `json:"status"`
	StatusLabel     string        `json:"status_label"`
	DurationDays    int           `json:"duration_days"`
	StartDate       string        `json:"start_date,omitempty"`
	EndDate         string        `json:"end_date,omitempty"`
	IsDateOverride  bool          `json:"is_date_override"`
	ProgressPercent int           `json:"progress_percent"`
	SuggestedStart  string        `json:"suggested_start"`
	Conflict        *ConflictView `json:"conflict,omitempty"`
}

// DependencyView is the transport shape of a dependency edge.
type DependencyView struct {
	ID            string `json:"id"`
	PredecessorID string `json:"predecessor_id"`
	SuccessorID   string `json:"successor_id"`
	Type          string `json:"type"`
	TypeLabel     string `json:"type_label"`
	LagDays       int    `json:"lag_days"`
}

// ScheduleCapture is the full computed schedule for one project.
type ScheduleCapture struct {
	CapturedAt    time.Time        `json:"captured_at"`
	Project       ProjectView      `json:"project"`
	Activities    []ActivityView   `json:"activities"`
	Dependencies  []DependencyView `json:"dependencies"`
	ConflictCount int              `json:"conflict_count"`
}

// LayoutRequest parameterizes one timeline layout pass.
type LayoutRequest struct {
	ProjectID string
	Scale     string
	Zoom      float64
	Density   string
	Statuses  []string
}

// BandView is one header column.
type BandView struct {
	Label     string  `json:"label"`
	Start     string  `json:"start"`
	Days      int     `json:"days"`
	WidthPx   float64 `json:"width_px"`
	IsToday   bool    `json:"is_today,omitempty"`
	IsWeekend bool    `json:"is_weekend,omitempty"`
}

// BarView is one activity's rendered geometry.
type BarView struct {
	ActivityID      string  `json:"activity_id"`
	Name            string  `json:"name"`
	Status          string  `json:"status"`
	ProgressPercent int     `json:"progress_percent"`
	RowIndex        int     `json:"row_index"`
	LeftPx          float64 `json:"left_px"`
	WidthPx         float64 `json:"width_px"`
	TopPx           float64 `json:"top_px"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
}

// PointView is one connector vertex.
type PointView struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ConnectorView is one routed dependency edge.
type ConnectorView struct {
	DependencyID  string      `json:"dependency_id"`
	PredecessorID string      `json:"predecessor_id"`
	SuccessorID   string      `json:"successor_id"`
	Type          string      `json:"type"`
	Kind          string      `json:"kind"`
	Points        []PointView `json:"points"`
}

// LayoutCapture is the rendered timeline geometry for one project.
type LayoutCapture struct {
	CapturedAt time.Time       `json:"captured_at"`
	Scale      string          `json:"scale"`
	DayWidth   float64         `json:"day_width"`
	RowHeight  float64         `json:"row_height"`
	RangeStart string          `json:"range_start"`
	RangeEnd   string          `json:"range_end"`
	TotalDays  int             `json:"total_days"`
	WidthPx    float64         `json:"width_px"`
	Bands      []BandView      `json:"bands"`
	Bars       []BarView       `json:"bars"`
	Connectors []ConnectorView `json:"connectors"`
}

// SuggestionResult is the evaluator's start suggestion for one activity.
type SuggestionResult struct {
	ActivityID     string `json:"activity_id"`
	SuggestedStart string `json:"suggested_start"`
	IsDateOverride bool   `json:"is_date_override"`
}

// ValidateScheduleRequest dry-runs one candidate window.
type ValidateScheduleRequest struct {
	ActivityID   string
	StartDate    string
	DurationDays int
}

// ValidationResult reports the first violated dependency, if any.
type ValidationResult struct {
	ActivityID string        `json:"activity_id"`
	StartDate  string        `json:"start_date"`
	EndDate    string        `json:"end_date"`
	Valid      bool          `json:"valid"`
	Conflict   *ConflictView `json:"conflict,omitempty"`
}

// UpdateScheduleRequest sets one activity's dates manually.
type UpdateScheduleRequest struct {
	ActivityID   string
	StartDate    string
	DurationDays int
}

// ScheduleService is everything the transports need from the app layer.
type ScheduleService interface {
	CaptureSchedule(context.Context, CaptureScheduleRequest) (ScheduleCapture, error)
	TimelineLayout(context.Context, LayoutRequest) (LayoutCapture, error)
	SuggestStartDate(ctx context.Context, activityID string) (SuggestionResult, error)
	ValidateSchedule(context.Context, ValidateScheduleRequest) (ValidationResult, error)
	UpdateActivitySchedule(context.Context, UpdateScheduleRequest) (ActivityView, error)
}
