package domain

import (
	"slices"
	"strings"
	"time"
)

// Status tracks an activity through the site inspection workflow.
type Status string

// Status values.
const (
	StatusPending         Status = "pending"
	StatusWorkInProgress  Status = "work_in_progress"
	StatusReadyInspection Status = "ready_for_inspection"
	StatusAwaitingClient  Status = "awaiting_client_approval"
	StatusInspected       Status = "inspected"
	StatusClosed          Status = "closed"
)

// validStatuses stores all supported status values.
var validStatuses = []Status{
	StatusPending,
	StatusWorkInProgress,
	StatusReadyInspection,
	StatusAwaitingClient,
	StatusInspected,
	StatusClosed,
}

// Statuses returns all supported status values in workflow order.
func Statuses() []Status {
	return slices.Clone(validStatuses)
}

// DisplayName returns the human-readable status label.
func (s Status) DisplayName() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusWorkInProgress:
		return "Work in Progress"
	case StatusReadyInspection:
		return "Ready for Inspection"
	case StatusAwaitingClient:
		return "Awaiting Client Approval"
	case StatusInspected:
		return "Inspected"
	case StatusClosed:
		return "Closed"
	default:
		return string(s)
	}
}

// Activity is one schedulable unit of work within a project. Dates are
// nullable until first scheduling; once both are set the projector maintains
// EndDate == StartDate + DurationDays.
type Activity struct {
	ID              string
	ProjectID       string
	Name            string
	Description     string
	DurationDays    int
	StartDate       *Date
	EndDate         *Date
	DateOverride    bool
	ProgressPercent int
	Status          Status
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ActivityInput carries constructor arguments for NewActivity.
type ActivityInput struct {
	ID              string
	ProjectID       string
	Name            string
	Description     string
	DurationDays    int
	StartDate       *Date
	DateOverride    bool
	ProgressPercent int
	Status          Status
}

// NewActivity validates and constructs an activity. Duration and progress are
// clamped rather than rejected so form input never leaves the record in an
// unrenderable state. When a start date is given, the end date is derived.
func NewActivity(in ActivityInput, now time.Time) (Activity, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.ProjectID = strings.TrimSpace(in.ProjectID)
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)

	if in.ID == "" {
		return Activity{}, ErrInvalidID
	}
	if in.ProjectID == "" {
		return Activity{}, ErrInvalidID
	}
	if in.Name == "" {
		return Activity{}, ErrInvalidName
	}
	if in.Status == "" {
		in.Status = StatusPending
	}
	if !slices.Contains(validStatuses, in.Status) {
		return Activity{}, ErrInvalidStatus
	}

	a := Activity{
		ID:              in.ID,
		ProjectID:       in.ProjectID,
		Name:            in.Name,
		Description:     in.Description,
		DurationDays:    ClampDuration(in.DurationDays),
		DateOverride:    in.DateOverride,
		ProgressPercent: clampProgress(in.ProgressPercent),
		Status:          in.Status,
		CreatedAt:       now.UTC(),
		UpdatedAt:       now.UTC(),
	}
	if in.StartDate != nil {
		start := *in.StartDate
		end := start.AddDays(a.DurationDays)
		a.StartDate = &start
		a.EndDate = &end
	}
	return a, nil
}

// Scheduled reports whether both dates are set.
func (a *Activity) Scheduled() bool {
	return a.StartDate != nil && a.EndDate != nil
}

// SetSchedule moves the activity to the given start date and duration,
// re-deriving the end date. Override marks the start as manually chosen so
// dependency suggestions become advisory only.
func (a *Activity) SetSchedule(start Date, durationDays int, override bool, now time.Time) {
	a.DurationDays = ClampDuration(durationDays)
	end := start.AddDays(a.DurationDays)
	a.StartDate = &start
	a.EndDate = &end
	a.DateOverride = override
	a.UpdatedAt = now.UTC()
}

// ClearSchedule removes both dates and the override flag.
func (a *Activity) ClearSchedule(now time.Time) {
	a.StartDate = nil
	a.EndDate = nil
	a.DateOverride = false
	a.UpdatedAt = now.UTC()
}

// UpdateDetails rewrites name, description, status, and progress.
func (a *Activity) UpdateDetails(name, description string, status Status, progressPercent int, now time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	if !slices.Contains(validStatuses, status) {
		return ErrInvalidStatus
	}
	a.Name = name
	a.Description = strings.TrimSpace(description)
	a.Status = status
	a.ProgressPercent = clampProgress(progressPercent)
	a.UpdatedAt = now.UTC()
	return nil
}

// ClampDuration forces a planned duration into the valid >= 1 range.
func ClampDuration(days int) int {
	if days < 1 {
		return 1
	}
	return days
}

// clampProgress forces a completion percentage into 0..100.
func clampProgress(pct int) int {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
