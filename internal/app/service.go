// Package app orchestrates the scheduling engine over the repository port:
// project and activity lifecycle, dependency editing, start-date suggestion,
// conflict validation, and the commit path for pending edits.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/evanlind/taktplan/internal/domain"
	"github.com/evanlind/taktplan/internal/schedule"
)

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Service coordinates the repository, the evaluator, and change
// notifications. All methods are safe for concurrent use as long as the
// repository is.
type Service struct {
	repo     Repository
	notifier Notifier
	idGen    IDGenerator
	clock    Clock
}

// NewService constructs a service. A nil notifier discards notifications.
func NewService(repo Repository, notifier Notifier, idGen IDGenerator, clock Clock) *Service {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	return &Service{repo: repo, notifier: notifier, idGen: idGen, clock: clock}
}

// CreateProject creates a project. A zero start date defaults to today.
func (s *Service) CreateProject(ctx context.Context, name, description string, startDate domain.Date) (domain.Project, error) {
	project, err := domain.NewProject(s.idGen(), name, description, startDate, s.clock())
	if err != nil {
		return domain.Project{}, err
	}
	if err := s.repo.CreateProject(ctx, project); err != nil {
		return domain.Project{}, fmt.Errorf("create project: %w", err)
	}
	return project, nil
}

// UpdateProject rewrites a project's details.
func (s *Service) UpdateProject(ctx context.Context, id, name, description string, startDate domain.Date) (domain.Project, error) {
	project, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return domain.Project{}, err
	}
	if err := project.UpdateDetails(name, description, startDate, s.clock()); err != nil {
		return domain.Project{}, err
	}
	if err := s.repo.UpdateProject(ctx, project); err != nil {
		return domain.Project{}, fmt.Errorf("update project: %w", err)
	}
	return project, nil
}

// SetProjectLocked freezes or unfreezes a project's schedule.
func (s *Service) SetProjectLocked(ctx context.Context, id string, locked bool) (domain.Project, error) {
	project, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return domain.Project{}, err
	}
	project.SetLocked(locked, s.clock())
	if err := s.repo.UpdateProject(ctx, project); err != nil {
		return domain.Project{}, fmt.Errorf("update project lock: %w", err)
	}
	return project, nil
}

// GetProject fetches one project.
func (s *Service) GetProject(ctx context.Context, id string) (domain.Project, error) {
	return s.repo.GetProject(ctx, id)
}

// ListProjects lists all projects.
func (s *Service) ListProjects(ctx context.Context) ([]domain.Project, error) {
	return s.repo.ListProjects(ctx)
}

// DeleteProject removes a project and, through the store, its activities and
// dependencies.
func (s *Service) DeleteProject(ctx context.Context, id string) error {
	return s.repo.DeleteProject(ctx, id)
}

// CreateActivityInput holds input values for CreateActivity.
type CreateActivityInput struct {
	ProjectID    string
	Name         string
	Description  string
	DurationDays int
	StartDate    *domain.Date
	Status       domain.Status
}

// CreateActivity creates an activity. Without a start date the activity
// stays unscheduled until a suggestion is applied or a date is set.
func (s *Service) CreateActivity(ctx context.Context, in CreateActivityInput) (domain.Activity, error) {
	if _, err := s.repo.GetProject(ctx, in.ProjectID); err != nil {
		return domain.Activity{}, err
	}
	activity, err := domain.NewActivity(domain.ActivityInput{
		ID:           s.idGen(),
		ProjectID:    in.ProjectID,
		Name:         in.Name,
		Description:  in.Description,
		DurationDays: in.DurationDays,
		StartDate:    in.StartDate,
		DateOverride: in.StartDate != nil,
		Status:       in.Status,
	}, s.clock())
	if err != nil {
		return domain.Activity{}, err
	}
	if err := s.repo.CreateActivity(ctx, activity); err != nil {
		return domain.Activity{}, fmt.Errorf("create activity: %w", err)
	}
	s.notifier.ScheduleChanged(in.ProjectID)
	return activity, nil
}

// UpdateActivityDetails rewrites name, description, status, and progress.
func (s *Service) UpdateActivityDetails(ctx context.Context, id, name, description string, status domain.Status, progressPercent int) (domain.Activity, error) {
	activity, err := s.repo.GetActivity(ctx, id)
	if err != nil {
		return domain.Activity{}, err
	}
	if err := activity.UpdateDetails(name, description, status, progressPercent, s.clock()); err != nil {
		return domain.Activity{}, err
	}
	if err := s.repo.UpdateActivity(ctx, activity); err != nil {
		return domain.Activity{}, fmt.Errorf("update activity: %w", err)
	}
	s.notifier.ScheduleChanged(activity.ProjectID)
	return activity, nil
}

// GetActivity fetches one activity.
func (s *Service) GetActivity(ctx context.Context, id string) (domain.Activity, error) {
	return s.repo.GetActivity(ctx, id)
}

// ListActivities lists a project's activities.
func (s *Service) ListActivities(ctx context.Context, projectID string) ([]domain.Activity, error) {
	return s.repo.ListActivities(ctx, projectID)
}

// DeleteActivity removes an activity; the store drops dependency edges
// referencing it.
func (s *Service) DeleteActivity(ctx context.Context, id string) error {
	activity, err := s.repo.GetActivity(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteActivity(ctx, id); err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	s.notifier.ScheduleChanged(activity.ProjectID)
	s.notifier.DependenciesChanged(activity.ProjectID)
	return nil
}

// ListDependencies lists a project's dependency edges.
func (s *Service) ListDependencies(ctx context.Context, projectID string) ([]domain.Dependency, error) {
	return s.repo.ListDependencies(ctx, projectID)
}

// SuggestStartDate computes the earliest permissible start for an activity
// from its declared dependencies, floored at the project start date. The
// suggestion is advisory; it never blocks a manual date.
func (s *Service) SuggestStartDate(ctx context.Context, activityID string) (domain.Date, error) {
	activity, err := s.repo.GetActivity(ctx, activityID)
	if err != nil {
		return domain.Date{}, err
	}
	project, err := s.repo.GetProject(ctx, activity.ProjectID)
	if err != nil {
		return domain.Date{}, err
	}
	deps, err := s.repo.ListDependenciesForSuccessor(ctx, activityID)
	if err != nil {
		return domain.Date{}, err
	}
	activities, err := s.repo.ListActivities(ctx, activity.ProjectID)
	if err != nil {
		return domain.Date{}, err
	}
	snap := schedule.SnapshotOf(activities)
	return schedule.EarliestStart(deps, snap, project.StartDate), nil
}

// ApplySuggestion schedules an activity at its computed suggestion, keeping
// the duration. Activities with a manual override are left untouched.
func (s *Service) ApplySuggestion(ctx context.Context, activityID string) (domain.Activity, error) {
	activity, err := s.repo.GetActivity(ctx, activityID)
	if err != nil {
		return domain.Activity{}, err
	}
	if activity.DateOverride {
		return activity, nil
	}
	suggested, err := s.SuggestStartDate(ctx, activityID)
	if err != nil {
		return domain.Activity{}, err
	}
	if activity.StartDate != nil && activity.StartDate.Equal(suggested) {
		return activity, nil
	}
	now := s.clock()
	activity.SetSchedule(suggested, activity.DurationDays, false, now)
	err = s.repo.UpdateActivitySchedule(ctx, activityID, *activity.StartDate, *activity.EndDate, activity.DurationDays, false, now)
	if err != nil {
		return domain.Activity{}, err
	}
	s.notifier.ScheduleChanged(activity.ProjectID)
	return activity, nil
}

// ValidateSchedule dry-runs a candidate (start, duration) window for an
// activity against its dependencies. A nil conflict means the candidate is
// consistent.
func (s *Service) ValidateSchedule(ctx context.Context, activityID string, start domain.Date, durationDays int) (*schedule.Conflict, error) {
	activity, err := s.repo.GetActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}
	deps, err := s.repo.ListDependenciesForSuccessor(ctx, activityID)
	if err != nil {
		return nil, err
	}
	activities, err := s.repo.ListActivities(ctx, activity.ProjectID)
	if err != nil {
		return nil, err
	}
	snap := schedule.SnapshotOf(activities)
	return schedule.Validate(schedule.Project(start, durationDays), deps, snap), nil
}

// ScheduleActivity sets an activity's dates manually. The write is persisted
// even when it conflicts with a dependency; the conflict is returned for
// display. Manual edits always mark the date as overridden.
func (s *Service) ScheduleActivity(ctx context.Context, activityID string, start domain.Date, durationDays int) (domain.Activity, *schedule.Conflict, error) {
	conflict, err := s.ValidateSchedule(ctx, activityID, start, durationDays)
	if err != nil {
		return domain.Activity{}, nil, err
	}
	activity, err := s.repo.GetActivity(ctx, activityID)
	if err != nil {
		return domain.Activity{}, nil, err
	}
	now := s.clock()
	activity.SetSchedule(start, durationDays, true, now)
	err = s.repo.UpdateActivitySchedule(ctx, activityID, *activity.StartDate, *activity.EndDate, activity.DurationDays, true, now)
	if err != nil {
		return domain.Activity{}, nil, err
	}
	s.notifier.ScheduleChanged(activity.ProjectID)
	return activity, conflict, nil
}

// UpdateActivitySchedule is the raw commit path used when flushing pending
// edits: one write per activity, duration already recomputed by the caller.
func (s *Service) UpdateActivitySchedule(ctx context.Context, activityID string, start, end domain.Date, durationDays int, override bool) error {
	err := s.repo.UpdateActivitySchedule(ctx, activityID, start, end, durationDays, override, s.clock())
	if err != nil {
		return err
	}
	if activity, getErr := s.repo.GetActivity(ctx, activityID); getErr == nil {
		s.notifier.ScheduleChanged(activity.ProjectID)
	}
	return nil
}

// ClearSchedule removes an activity's dates.
func (s *Service) ClearSchedule(ctx context.Context, activityID string) (domain.Activity, error) {
	activity, err := s.repo.GetActivity(ctx, activityID)
	if err != nil {
		return domain.Activity{}, err
	}
	activity.ClearSchedule(s.clock())
	if err := s.repo.UpdateActivity(ctx, activity); err != nil {
		return domain.Activity{}, fmt.Errorf("clear schedule: %w", err)
	}
	s.notifier.ScheduleChanged(activity.ProjectID)
	return activity, nil
}

// DependencySpec is one desired predecessor edge for ReplaceDependencies.
type DependencySpec struct {
	PredecessorID string
	Type          domain.DependencyType
	LagDays       int
}

// ReplaceDependencies reconciles an activity's stored predecessor edges with
// the desired set: new predecessors are inserted, changed type/lag pairs are
// updated in place, and edges absent from the desired set are deleted.
func (s *Service) ReplaceDependencies(ctx context.Context, activityID string, desired []DependencySpec) ([]domain.Dependency, error) {
	activity, err := s.repo.GetActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.ListDependenciesForSuccessor(ctx, activityID)
	if err != nil {
		return nil, err
	}
	byPredecessor := make(map[string]domain.Dependency, len(existing))
	for _, d := range existing {
		byPredecessor[d.PredecessorID] = d
	}

	now := s.clock()
	result := make([]domain.Dependency, 0, len(desired))
	for _, spec := range desired {
		if current, ok := byPredecessor[spec.PredecessorID]; ok {
			delete(byPredecessor, spec.PredecessorID)
			lag := domain.ClampLag(spec.LagDays)
			if current.Type == spec.Type && current.LagDays == lag {
				result = append(result, current)
				continue
			}
			current.Type = spec.Type
			current.LagDays = lag
			current.UpdatedAt = now.UTC()
			if err := s.repo.UpdateDependency(ctx, current); err != nil {
				return nil, fmt.Errorf("update dependency %s: %w", current.ID, err)
			}
			result = append(result, current)
			continue
		}
		dep, err := domain.NewDependency(domain.DependencyInput{
			ID:            s.idGen(),
			ProjectID:     activity.ProjectID,
			PredecessorID: spec.PredecessorID,
			SuccessorID:   activityID,
			Type:          spec.Type,
			LagDays:       spec.LagDays,
		}, now)
		if err != nil {
			return nil, err
		}
		if err := s.repo.CreateDependency(ctx, dep); err != nil {
			return nil, fmt.Errorf("create dependency: %w", err)
		}
		result = append(result, dep)
	}
	for _, stale := range byPredecessor {
		if err := s.repo.DeleteDependency(ctx, stale.ID); err != nil {
			return nil, fmt.Errorf("delete dependency %s: %w", stale.ID, err)
		}
	}

	s.notifier.DependenciesChanged(activity.ProjectID)
	return result, nil
}

// ActivitySchedule pairs an activity with its evaluator results for one
// project-wide pass.
type ActivitySchedule struct {
	Activity       domain.Activity
	SuggestedStart domain.Date
	Conflict       *schedule.Conflict
}

// ScheduleView is the computed schedule for a whole project.
type ScheduleView struct {
	Project      domain.Project
	Activities   []ActivitySchedule
	Dependencies []domain.Dependency
}

// ProjectSchedule computes suggestions and conflicts for every activity in a
// project in one pass over a shared snapshot.
func (s *Service) ProjectSchedule(ctx context.Context, projectID string) (ScheduleView, error) {
	project, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		return ScheduleView{}, err
	}
	activities, err := s.repo.ListActivities(ctx, projectID)
	if err != nil {
		return ScheduleView{}, err
	}
	deps, err := s.repo.ListDependencies(ctx, projectID)
	if err != nil {
		return ScheduleView{}, err
	}

	bySuccessor := make(map[string][]domain.Dependency)
	for _, d := range deps {
		bySuccessor[d.SuccessorID] = append(bySuccessor[d.SuccessorID], d)
	}

	snap := schedule.SnapshotOf(activities)
	view := ScheduleView{Project: project, Dependencies: deps, Activities: make([]ActivitySchedule, 0, len(activities))}
	for _, a := range activities {
		entry := ActivitySchedule{Activity: a}
		edges := bySuccessor[a.ID]
		entry.SuggestedStart = schedule.EarliestStart(edges, snap, project.StartDate)
		if a.Scheduled() {
			entry.Conflict = schedule.Validate(schedule.Window{Start: *a.StartDate, End: *a.EndDate}, edges, snap)
		}
		view.Activities = append(view.Activities, entry)
	}
	return view, nil
}
