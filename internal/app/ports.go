package app

import (
	"context"
	"time"

	"github.com/evanlind/taktplan/internal/domain"
)

// Repository is the record store the service reads from and writes to.
// Implementations return ErrNotFound for missing records and
// ErrPermissionDenied when a schedule write is refused (locked project).
type Repository interface {
	CreateProject(context.Context, domain.Project) error
	UpdateProject(context.Context, domain.Project) error
	GetProject(context.Context, string) (domain.Project, error)
	ListProjects(context.Context) ([]domain.Project, error)
	DeleteProject(context.Context, string) error

	CreateActivity(context.Context, domain.Activity) error
	UpdateActivity(context.Context, domain.Activity) error
	GetActivity(context.Context, string) (domain.Activity, error)
	ListActivities(context.Context, string) ([]domain.Activity, error)
	DeleteActivity(context.Context, string) error

	// UpdateActivitySchedule writes only the date fields. A write refused
	// because the owning project is locked fails with ErrPermissionDenied,
	// distinct from a missing activity (ErrNotFound) or a storage failure.
	UpdateActivitySchedule(ctx context.Context, activityID string, start, end domain.Date, durationDays int, override bool, updatedAt time.Time) error

	CreateDependency(context.Context, domain.Dependency) error
	UpdateDependency(context.Context, domain.Dependency) error
	ListDependencies(context.Context, string) ([]domain.Dependency, error)
	ListDependenciesForSuccessor(ctx context.Context, successorID string) ([]domain.Dependency, error)
	DeleteDependency(context.Context, string) error
}

// Notifier signals that a project's records changed so open views can
// re-read. Notifications are fire-and-forget; a redundant re-read is fine.
type Notifier interface {
	ScheduleChanged(projectID string)
	DependenciesChanged(projectID string)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

// ScheduleChanged implements Notifier.
func (NopNotifier) ScheduleChanged(string) {}

// DependenciesChanged implements Notifier.
func (NopNotifier) DependenciesChanged(string) {}
