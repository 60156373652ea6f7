package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/evanlind/taktplan/internal/app"
	"github.com/evanlind/taktplan/internal/domain"
	"github.com/evanlind/taktplan/internal/schedule"
	"github.com/evanlind/taktplan/internal/timeline"
)

// AppServiceAdapter implements ScheduleService over the app service, mapping
// app errors to transport errors and domain types to transport DTOs.
type AppServiceAdapter struct {
	svc   *app.Service
	clock func() time.Time
}

// NewAppServiceAdapter wraps one app service. A nil clock uses time.Now.
func NewAppServiceAdapter(svc *app.Service, clock func() time.Time) *AppServiceAdapter {
	if clock == nil {
		clock = time.Now
	}
	return &AppServiceAdapter{svc: svc, clock: clock}
}

// CaptureSchedule implements ScheduleService.
func (a *AppServiceAdapter) CaptureSchedule(ctx context.Context, req CaptureScheduleRequest) (ScheduleCapture, error) {
	if req.ProjectID == "" {
		return ScheduleCapture{}, fmt.Errorf("project_id is required: %w", ErrInvalidRequest)
	}
	view, err := a.svc.ProjectSchedule(ctx, req.ProjectID)
	if err != nil {
		return ScheduleCapture{}, translateAppError(err)
	}

	capture := ScheduleCapture{
		CapturedAt: a.clock().UTC(),
		Project:    projectView(view.Project),
	}
	for _, entry := range view.Activities {
		av := activityView(entry.Activity)
		av.SuggestedStart = entry.SuggestedStart.String()
		av.Conflict = conflictView(entry.Conflict)
		if av.Conflict != nil {
			capture.ConflictCount++
		}
		capture.Activities = append(capture.Activities, av)
	}
	for _, d := range view.Dependencies {
		capture.Dependencies = append(capture.Dependencies, DependencyView{
			ID:            d.ID,
			PredecessorID: d.PredecessorID,
			SuccessorID:   d.SuccessorID,
			Type:          string(d.Type),
			TypeLabel:     d.Type.DisplayName(),
			LagDays:       d.LagDays,
		})
	}
	return capture, nil
}

// TimelineLayout implements ScheduleService.
func (a *AppServiceAdapter) TimelineLayout(ctx context.Context, req LayoutRequest) (LayoutCapture, error) {
	if req.ProjectID == "" {
		return LayoutCapture{}, fmt.Errorf("project_id is required: %w", ErrInvalidRequest)
	}
	scale := timeline.Scale(req.Scale)
	if req.Scale != "" && !scale.IsValid() {
		return LayoutCapture{}, fmt.Errorf("unknown scale %q: %w", req.Scale, ErrInvalidRequest)
	}

	activities, err := a.svc.ListActivities(ctx, req.ProjectID)
	if err != nil {
		return LayoutCapture{}, translateAppError(err)
	}
	deps, err := a.svc.ListDependencies(ctx, req.ProjectID)
	if err != nil {
		return LayoutCapture{}, translateAppError(err)
	}

	items := make([]timeline.Item, 0, len(activities))
	for _, act := range activities {
		if !act.Scheduled() {
			continue
		}
		items = append(items, timeline.Item{
			Activity: act,
			Window:   schedule.Window{Start: *act.StartDate, End: *act.EndDate},
		})
	}
	statuses := make([]domain.Status, 0, len(req.Statuses))
	for _, s := range req.Statuses {
		statuses = append(statuses, domain.Status(s))
	}

	layout := timeline.Compute(items, timeline.Options{
		Scale:        scale,
		Zoom:         req.Zoom,
		Density:      timeline.Density(req.Density),
		Today:        domain.DateOf(a.clock()),
		StatusFilter: statuses,
	})
	snap := schedule.SnapshotOf(activities)
	connectors := timeline.Route(deps, layout, snap, schedule.CriticalActivities(activities, deps))

	capture := LayoutCapture{
		CapturedAt: a.clock().UTC(),
		Scale:      string(layout.Scale),
		DayWidth:   layout.DayWidth,
		RowHeight:  layout.RowHeight,
		RangeStart: layout.RangeStart.String(),
		RangeEnd:   layout.RangeEnd.String(),
		TotalDays:  layout.TotalDays,
		WidthPx:    layout.WidthPx,
	}
	for _, band := range layout.Bands {
		capture.Bands = append(capture.Bands, BandView{
			Label:     band.Label,
			Start:     band.Start.String(),
			Days:      band.Days,
			WidthPx:   band.WidthPx,
			IsToday:   band.IsToday,
			IsWeekend: band.IsWeekend,
		})
	}
	for _, bar := range layout.Bars {
		capture.Bars = append(capture.Bars, BarView{
			ActivityID:      bar.ActivityID,
			Name:            bar.Name,
			Status:          string(bar.Status),
			ProgressPercent: bar.ProgressPercent,
			RowIndex:        bar.RowIndex,
			LeftPx:          bar.LeftPx,
			WidthPx:         bar.WidthPx,
			TopPx:           bar.TopPx,
			StartDate:       bar.Window.Start.String(),
			EndDate:         bar.Window.End.String(),
		})
	}
	for _, c := range connectors {
		cv := ConnectorView{
			DependencyID:  c.DependencyID,
			PredecessorID: c.PredecessorID,
			SuccessorID:   c.SuccessorID,
			Type:          string(c.Type),
			Kind:          string(c.Kind),
		}
		for _, p := range c.Points {
			cv.Points = append(cv.Points, PointView{X: p.X, Y: p.Y})
		}
		capture.Connectors = append(capture.Connectors, cv)
	}
	return capture, nil
}

// SuggestStartDate implements ScheduleService.
func (a *AppServiceAdapter) SuggestStartDate(ctx context.Context, activityID string) (SuggestionResult, error) {
	if activityID == "" {
		return SuggestionResult{}, fmt.Errorf("activity_id is required: %w", ErrInvalidRequest)
	}
	activity, err := a.svc.GetActivity(ctx, activityID)
	if err != nil {
		return SuggestionResult{}, translateAppError(err)
	}
	suggested, err := a.svc.SuggestStartDate(ctx, activityID)
	if err != nil {
		return SuggestionResult{}, translateAppError(err)
	}
	return SuggestionResult{
		ActivityID:     activityID,
		SuggestedStart: suggested.String(),
		IsDateOverride: activity.DateOverride,
	}, nil
}

// ValidateSchedule implements ScheduleService.
func (a *AppServiceAdapter) ValidateSchedule(ctx context.Context, req ValidateScheduleRequest) (ValidationResult, error) {
	start, err := parseRequestDate(req.StartDate)
	if err != nil {
		return ValidationResult{}, err
	}
	if req.ActivityID == "" {
		return ValidationResult{}, fmt.Errorf("activity_id is required: %w", ErrInvalidRequest)
	}
	conflict, err := a.svc.ValidateSchedule(ctx, req.ActivityID, start, req.DurationDays)
	if err != nil {
		return ValidationResult{}, translateAppError(err)
	}
	window := schedule.Project(start, req.DurationDays)
	return ValidationResult{
		ActivityID: req.ActivityID,
		StartDate:  window.Start.String(),
		EndDate:    window.End.String(),
		Valid:      conflict == nil,
		Conflict:   conflictView(conflict),
	}, nil
}

// UpdateActivitySchedule implements ScheduleService.
func (a *AppServiceAdapter) UpdateActivitySchedule(ctx context.Context, req UpdateScheduleRequest) (ActivityView, error) {
	start, err := parseRequestDate(req.StartDate)
	if err != nil {
		return ActivityView{}, err
	}
	if req.ActivityID == "" {
		return ActivityView{}, fmt.Errorf("activity_id is required: %w", ErrInvalidRequest)
	}
	activity, conflict, err := a.svc.ScheduleActivity(ctx, req.ActivityID, start, req.DurationDays)
	if err != nil {
		return ActivityView{}, translateAppError(err)
	}
	av := activityView(activity)
	av.Conflict = conflictView(conflict)
	return av, nil
}

// parseRequestDate decodes a YYYY-MM-DD transport date.
func parseRequestDate(raw string) (domain.Date, error) {
	if raw == "" {
		return domain.Date{}, fmt.Errorf("start_date is required: %w", ErrInvalidRequest)
	}
	d, err := domain.ParseDate(raw)
	if err != nil {
		return domain.Date{}, fmt.Errorf("start_date %q: %w", raw, ErrInvalidRequest)
	}
	return d, nil
}

// projectView maps a project to its transport shape.
func projectView(p domain.Project) ProjectView {
	return ProjectView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		StartDate:   p.StartDate.String(),
		Locked:      p.Locked,
	}
}

// activityView maps an activity to its transport shape.
func activityView(a domain.Activity) ActivityView {
	av := ActivityView{
		ID:              a.ID,
		ProjectID:       a.ProjectID,
		Name:            a.Name,
		Description:     a.Description,
		Status:          string(a.Status),
		StatusLabel:     a.Status.DisplayName(),
		DurationDays:    a.DurationDays,
		IsDateOverride:  a.DateOverride,
		ProgressPercent: a.ProgressPercent,
	}
	if a.StartDate != nil {
		av.StartDate = a.StartDate.String()
	}
	if a.EndDate != nil {
		av.EndDate = a.EndDate.String()
	}
	return av
}

// conflictView maps an evaluator conflict to its transport shape.
func conflictView(c *schedule.Conflict) *ConflictView {
	if c == nil {
		return nil
	}
	return &ConflictView{
		DependencyID:    c.DependencyID,
		PredecessorID:   c.PredecessorID,
		PredecessorName: c.PredecessorName,
		Type:            string(c.Type),
		LagDays:         c.LagDays,
		Anchor:          string(c.Anchor),
		RequiredDate:    c.RequiredDate.String(),
		Message:         c.Message(),
	}
}

// translateAppError maps app-layer sentinels to transport sentinels.
func translateAppError(err error) error {
	switch {
	case errors.Is(err, app.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, err)
	case errors.Is(err, app.ErrPermissionDenied):
		return fmt.Errorf("%w: %s", ErrPermissionDenied, err)
	default:
		return err
	}
}
