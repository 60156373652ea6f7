package app

import (
	"context"
	"fmt"
	"time"

	"github.com/evanlind/taktplan/internal/domain"
)

// SnapshotVersion tags the export format.
const SnapshotVersion = 1

// Snapshot is a portable JSON dump of every record the store owns.
type Snapshot struct {
	Version      int                 `json:"version"`
	ExportedAt   time.Time           `json:"exported_at"`
	Projects     []domain.Project    `json:"projects"`
	Activities   []domain.Activity   `json:"activities"`
	Dependencies []domain.Dependency `json:"dependencies"`
}

// ExportSnapshot collects all projects with their activities and
// dependencies.
func (s *Service) ExportSnapshot(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{Version: SnapshotVersion, ExportedAt: s.clock().UTC()}

	projects, err := s.repo.ListProjects(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("export projects: %w", err)
	}
	snap.Projects = projects

	for _, p := range projects {
		activities, err := s.repo.ListActivities(ctx, p.ID)
		if err != nil {
			return Snapshot{}, fmt.Errorf("export activities for %s: %w", p.ID, err)
		}
		snap.Activities = append(snap.Activities, activities...)

		deps, err := s.repo.ListDependencies(ctx, p.ID)
		if err != nil {
			return Snapshot{}, fmt.Errorf("export dependencies for %s: %w", p.ID, err)
		}
		snap.Dependencies = append(snap.Dependencies, deps...)
	}
	return snap, nil
}

// ImportSnapshot writes a snapshot's records into the store, preserving ids
// and timestamps. Existing records with the same id cause the import to fail;
// imports are meant for fresh databases.
func (s *Service) ImportSnapshot(ctx context.Context, snap Snapshot) error {
	if snap.Version != SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}
	for _, p := range snap.Projects {
		if err := s.repo.CreateProject(ctx, p); err != nil {
			return fmt.Errorf("import project %s: %w", p.ID, err)
		}
	}
	for _, a := range snap.Activities {
		if err := s.repo.CreateActivity(ctx, a); err != nil {
			return fmt.Errorf("import activity %s: %w", a.ID, err)
		}
	}
	for _, d := range snap.Dependencies {
		if err := s.repo.CreateDependency(ctx, d); err != nil {
			return fmt.Errorf("import dependency %s: %w", d.ID, err)
		}
	}
	for _, p := range snap.Projects {
		s.notifier.ScheduleChanged(p.ID)
		s.notifier.DependenciesChanged(p.ID)
	}
	return nil
}
