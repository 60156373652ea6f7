package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/evanlind/taktplan/internal/domain"
)

type memoryRepo struct {
	projects     map[string]domain.Project
	activities   map[string]domain.Activity
	dependencies map[string]domain.Dependency
	scheduleErr  error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		projects:     map[string]domain.Project{},
		activities:   map[string]domain.Activity{},
		dependencies: map[string]domain.Dependency{},
	}
}

func (m *memoryRepo) CreateProject(_ context.Context, p domain.Project) error {
	if _, ok := m.projects[p.ID]; ok {
		return fmt.Errorf("project %s exists", p.ID)
	}
	m.projects[p.ID] = p
	return nil
}

func (m *memoryRepo) UpdateProject(_ context.Context, p domain.Project) error {
	if _, ok := m.projects[p.ID]; !ok {
		return ErrNotFound
	}
	m.projects[p.ID] = p
	return nil
}

func (m *memoryRepo) GetProject(_ context.Context, id string) (domain.Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return domain.Project{}, ErrNotFound
	}
	return p, nil
}

func (m *memoryRepo) ListProjects(context.Context) ([]domain.Project, error) {
	out := make([]domain.Project, 0, len(m.projects))
	for _, p := range m.projects {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b domain.Project) int {
		return cmpString(a.ID, b.ID)
	})
	return out, nil
}

func (m *memoryRepo) DeleteProject(_ context.Context, id string) error {
	delete(m.projects, id)
	return nil
}

func (m *memoryRepo) CreateActivity(_ context.Context, a domain.Activity) error {
	if _, ok := m.activities[a.ID]; ok {
		return fmt.Errorf("activity %s exists", a.ID)
	}
	m.activities[a.ID] = a
	return nil
}

func (m *memoryRepo) UpdateActivity(_ context.Context, a domain.Activity) error {
	if _, ok := m.activities[a.ID]; !ok {
		return ErrNotFound
	}
	m.activities[a.ID] = a
	return nil
}

func (m *memoryRepo) GetActivity(_ context.Context, id string) (domain.Activity, error) {
	a, ok := m.activities[id]
	if !ok {
		return domain.Activity{}, ErrNotFound
	}
	return a, nil
}

func (m *memoryRepo) ListActivities(_ context.Context, projectID string) ([]domain.Activity, error) {
	out := []domain.Activity{}
	for _, a := range m.activities {
		if a.ProjectID == projectID {
			out = append(out, a)
		}
	}
	slices.SortFunc(out, func(a, b domain.Activity) int {
		return cmpString(a.ID, b.ID)
	})
	return out, nil
}

func (m *memoryRepo) DeleteActivity(_ context.Context, id string) error {
	delete(m.activities, id)
	for depID, d := range m.dependencies {
		if d.PredecessorID == id || d.SuccessorID == id {
			delete(m.dependencies, depID)
		}
	}
	return nil
}

func (m *memoryRepo) UpdateActivitySchedule(_ context.Context, id string, start, end domain.Date, durationDays int, override bool, updatedAt time.Time) error {
	if m.scheduleErr != nil {
		return m.scheduleErr
	}
	a, ok := m.activities[id]
	if !ok {
		return ErrNotFound
	}
	if p, ok := m.projects[a.ProjectID]; ok && p.Locked {
		return ErrPermissionDenied
	}
	a.StartDate = &start
	a.EndDate = &end
	a.DurationDays = durationDays
	a.DateOverride = override
	a.UpdatedAt = updatedAt
	m.activities[id] = a
	return nil
}

func (m *memoryRepo) CreateDependency(_ context.Context, d domain.Dependency) error {
	if _, ok := m.dependencies[d.ID]; ok {
		return fmt.Errorf("dependency %s exists", d.ID)
	}
	m.dependencies[d.ID] = d
	return nil
}

func (m *memoryRepo) UpdateDependency(_ context.Context, d domain.Dependency) error {
	if _, ok := m.dependencies[d.ID]; !ok {
		return ErrNotFound
	}
	m.dependencies[d.ID] = d
	return nil
}

func (m *memoryRepo) ListDependencies(_ context.Context, projectID string) ([]domain.Dependency, error) {
	out := []domain.Dependency{}
	for _, d := range m.dependencies {
		if d.ProjectID == projectID {
			out = append(out, d)
		}
	}
	slices.SortFunc(out, func(a, b domain.Dependency) int {
		return cmpString(a.ID, b.ID)
	})
	return out, nil
}

func (m *memoryRepo) ListDependenciesForSuccessor(_ context.Context, successorID string) ([]domain.Dependency, error) {
	out := []domain.Dependency{}
	for _, d := range m.dependencies {
		if d.SuccessorID == successorID {
			out = append(out, d)
		}
	}
	slices.SortFunc(out, func(a, b domain.Dependency) int {
		return cmpString(a.ID, b.ID)
	})
	return out, nil
}

func (m *memoryRepo) DeleteDependency(_ context.Context, id string) error {
	delete(m.dependencies, id)
	return nil
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

type recordingNotifier struct {
	schedule     []string
	dependencies []string
}

func (r *recordingNotifier) ScheduleChanged(projectID string)     { r.schedule = append(r.schedule, projectID) }
func (r *recordingNotifier) DependenciesChanged(projectID string) { r.dependencies = append(r.dependencies, projectID) }

func sequentialIDs(prefix string) IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func testDate(y int, m time.Month, d int) domain.Date {
	return domain.NewDate(y, m, d)
}

func newTestService(t *testing.T) (*Service, *memoryRepo, *recordingNotifier) {
	t.Helper()
	repo := newMemoryRepo()
	notifier := &recordingNotifier{}
	clock := func() time.Time { return time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC) }
	return NewService(repo, notifier, sequentialIDs("id"), clock), repo, notifier
}

func seedProject(t *testing.T, svc *Service, start domain.Date) domain.Project {
	t.Helper()
	project, err := svc.CreateProject(context.Background(), "Site A", "", start)
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}
	return project
}

func seedActivity(t *testing.T, svc *Service, projectID, name string, start *domain.Date, durationDays int) domain.Activity {
	t.Helper()
	activity, err := svc.CreateActivity(context.Background(), CreateActivityInput{
		ProjectID:    projectID,
		Name:         name,
		DurationDays: durationDays,
		StartDate:    start,
	})
	if err != nil {
		t.Fatalf("CreateActivity(%s) error = %v", name, err)
	}
	return activity
}

func TestCreateActivityRequiresProject(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.CreateActivity(context.Background(), CreateActivityInput{ProjectID: "ghost", Name: "X", DurationDays: 1})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestSuggestStartDateFSChain(t *testing.T) {
	svc, _, _ := newTestService(t)
	project := seedProject(t, svc, testDate(2024, time.January, 1))
	start := testDate(2024, time.January, 1)
	pred := seedActivity(t, svc, project.ID, "Groundwork", &start, 3)
	succ := seedActivity(t, svc, project.ID, "Framing", nil, 5)

	if _, err := svc.ReplaceDependencies(context.Background(), succ.ID, []DependencySpec{
		{PredecessorID: pred.ID, Type: domain.FinishToStart},
	}); err != nil {
		t.Fatalf("ReplaceDependencies() error = %v", err)
	}

	got, err := svc.SuggestStartDate(context.Background(), succ.ID)
	if err != nil {
		t.Fatalf("SuggestStartDate() error = %v", err)
	}
	if got.String() != "2024-01-05" {
		t.Fatalf("suggestion = %s, want 2024-01-05", got)
	}
}

func TestApplySuggestionRespectsOverride(t *testing.T) {
	svc, repo, _ := newTestService(t)
	project := seedProject(t, svc, testDate(2024, time.January, 1))
	manual := testDate(2024, time.March, 1)
	overridden := seedActivity(t, svc, project.ID, "Manual", &manual, 2)

	got, err := svc.ApplySuggestion(context.Background(), overridden.ID)
	if err != nil {
		t.Fatalf("ApplySuggestion() error = %v", err)
	}
	if got.StartDate.String() != "2024-03-01" {
		t.Fatalf("overridden start moved to %s", got.StartDate)
	}

	calculated := seedActivity(t, svc, project.ID, "Calculated", nil, 2)
	got, err = svc.ApplySuggestion(context.Background(), calculated.ID)
	if err != nil {
		t.Fatalf("ApplySuggestion() error = %v", err)
	}
	if got.StartDate == nil || !got.StartDate.Equal(project.StartDate) {
		t.Fatalf("calculated start = %v, want project start", got.StartDate)
	}
	if got.DateOverride {
		t.Fatal("applying a suggestion must not set the override flag")
	}
	if stored := repo.activities[calculated.ID]; stored.EndDate == nil || !stored.StartDate.AddDays(stored.DurationDays).Equal(*stored.EndDate) {
		t.Fatalf("stored schedule broke the end invariant: %+v", stored)
	}
}

func TestScheduleActivityPersistsDespiteConflict(t *testing.T) {
	svc, repo, notifier := newTestService(t)
	project := seedProject(t, svc, testDate(2024, time.January, 1))
	start := testDate(2024, time.January, 1)
	pred := seedActivity(t, svc, project.ID, "Groundwork", &start, 3) // ends 2024-01-04
	succ := seedActivity(t, svc, project.ID, "Framing", nil, 2)
	if _, err := svc.ReplaceDependencies(context.Background(), succ.ID, []DependencySpec{
		{PredecessorID: pred.ID, Type: domain.FinishToStart, LagDays: 1},
	}); err != nil {
		t.Fatalf("ReplaceDependencies() error = %v", err)
	}

	got, conflict, err := svc.ScheduleActivity(context.Background(), succ.ID, testDate(2024, time.January, 5), 2)
	if err != nil {
		t.Fatalf("ScheduleActivity() error = %v", err)
	}
	if conflict == nil || conflict.RequiredDate.String() != "2024-01-06" {
		t.Fatalf("conflict = %+v, want required 2024-01-06", conflict)
	}
	if !got.DateOverride {
		t.Fatal("manual schedule must set the override flag")
	}
	if stored := repo.activities[succ.ID]; stored.StartDate == nil || stored.StartDate.String() != "2024-01-05" {
		t.Fatalf("conflicting schedule was not persisted: %+v", stored)
	}
	if len(notifier.schedule) == 0 {
		t.Fatal("no schedule change notification emitted")
	}
}

func TestUpdateActivitySchedulePermissionDenied(t *testing.T) {
	svc, _, _ := newTestService(t)
	project := seedProject(t, svc, testDate(2024, time.January, 1))
	activity := seedActivity(t, svc, project.ID, "Frozen", nil, 2)
	if _, err := svc.SetProjectLocked(context.Background(), project.ID, true); err != nil {
		t.Fatalf("SetProjectLocked() error = %v", err)
	}

	err := svc.UpdateActivitySchedule(context.Background(), activity.ID,
		testDate(2024, time.February, 1), testDate(2024, time.February, 3), 2, true)
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("error = %v, want ErrPermissionDenied", err)
	}
}

func TestReplaceDependenciesDiff(t *testing.T) {
	svc, repo, _ := newTestService(t)
	project := seedProject(t, svc, testDate(2024, time.January, 1))
	a := seedActivity(t, svc, project.ID, "A", nil, 1)
	b := seedActivity(t, svc, project.ID, "B", nil, 1)
	c := seedActivity(t, svc, project.ID, "C", nil, 1)
	succ := seedActivity(t, svc, project.ID, "Succ", nil, 1)

	first, err := svc.ReplaceDependencies(context.Background(), succ.ID, []DependencySpec{
		{PredecessorID: a.ID, Type: domain.FinishToStart},
		{PredecessorID: b.ID, Type: domain.StartToStart, LagDays: 2},
	})
	if err != nil {
		t.Fatalf("ReplaceDependencies() error = %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("edges = %d, want 2", len(first))
	}
	keptID := first[0].ID

	// a kept unchanged, b dropped, c added, a's sibling entry updated in place.
	second, err := svc.ReplaceDependencies(context.Background(), succ.ID, []DependencySpec{
		{PredecessorID: a.ID, Type: domain.FinishToStart, LagDays: 3},
		{PredecessorID: c.ID, Type: domain.FinishToFinish},
	})
	if err != nil {
		t.Fatalf("ReplaceDependencies() error = %v", err)
	}
	if len(second) != 2 {
		t.Fatalf("edges = %d, want 2", len(second))
	}
	if second[0].PredecessorID != a.ID || second[0].ID != keptID || second[0].LagDays != 3 {
		t.Fatalf("expected in-place update of edge from A, got %+v", second[0])
	}
	if len(repo.dependencies) != 2 {
		t.Fatalf("stored edges = %d, want stale edge deleted", len(repo.dependencies))
	}
	for _, d := range repo.dependencies {
		if d.PredecessorID == b.ID {
			t.Fatal("edge from B survived the replace")
		}
	}
}

func TestProjectScheduleComputesConflictsAndSuggestions(t *testing.T) {
	svc, _, _ := newTestService(t)
	project := seedProject(t, svc, testDate(2024, time.January, 1))
	start := testDate(2024, time.January, 1)
	pred := seedActivity(t, svc, project.ID, "Groundwork", &start, 3)
	early := testDate(2024, time.January, 2)
	succ := seedActivity(t, svc, project.ID, "Framing", &early, 2)
	if _, err := svc.ReplaceDependencies(context.Background(), succ.ID, []DependencySpec{
		{PredecessorID: pred.ID, Type: domain.FinishToStart},
	}); err != nil {
		t.Fatalf("ReplaceDependencies() error = %v", err)
	}

	view, err := svc.ProjectSchedule(context.Background(), project.ID)
	if err != nil {
		t.Fatalf("ProjectSchedule() error = %v", err)
	}
	if len(view.Activities) != 2 || len(view.Dependencies) != 1 {
		t.Fatalf("view = %d activities, %d deps", len(view.Activities), len(view.Dependencies))
	}
	for _, entry := range view.Activities {
		switch entry.Activity.ID {
		case pred.ID:
			if entry.Conflict != nil {
				t.Fatalf("predecessor has conflict %+v", entry.Conflict)
			}
		case succ.ID:
			if entry.Conflict == nil {
				t.Fatal("successor scheduled before predecessor finish must conflict")
			}
			if entry.SuggestedStart.String() != "2024-01-05" {
				t.Fatalf("suggestion = %s", entry.SuggestedStart)
			}
		}
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	svc, _, _ := newTestService(t)
	project := seedProject(t, svc, testDate(2024, time.January, 1))
	start := testDate(2024, time.January, 1)
	pred := seedActivity(t, svc, project.ID, "Groundwork", &start, 3)
	succ := seedActivity(t, svc, project.ID, "Framing", nil, 2)
	if _, err := svc.ReplaceDependencies(context.Background(), succ.ID, []DependencySpec{
		{PredecessorID: pred.ID, Type: domain.FinishToStart},
	}); err != nil {
		t.Fatalf("ReplaceDependencies() error = %v", err)
	}

	snap, err := svc.ExportSnapshot(context.Background())
	if err != nil {
		t.Fatalf("ExportSnapshot() error = %v", err)
	}
	if len(snap.Projects) != 1 || len(snap.Activities) != 2 || len(snap.Dependencies) != 1 {
		t.Fatalf("snapshot counts = %d/%d/%d", len(snap.Projects), len(snap.Activities), len(snap.Dependencies))
	}

	fresh, _, _ := newTestService(t)
	if err := fresh.ImportSnapshot(context.Background(), snap); err != nil {
		t.Fatalf("ImportSnapshot() error = %v", err)
	}
	again, err := fresh.ExportSnapshot(context.Background())
	if err != nil {
		t.Fatalf("re-export error = %v", err)
	}
	if len(again.Activities) != 2 || len(again.Dependencies) != 1 {
		t.Fatalf("re-export counts = %d/%d", len(again.Activities), len(again.Dependencies))
	}

	bad := snap
	bad.Version = 99
	if err := fresh.ImportSnapshot(context.Background(), bad); err == nil {
		t.Fatal("expected version mismatch error")
	}
}
