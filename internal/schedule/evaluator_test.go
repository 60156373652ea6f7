package schedule

import (
	"strings"
	"testing"
	"time"

	"github.com/evanlind/taktplan/internal/domain"
)

func date(y int, m time.Month, d int) domain.Date {
	return domain.NewDate(y, m, d)
}

func scheduledActivity(t *testing.T, id, name string, start domain.Date, durationDays int) domain.Activity {
	t.Helper()
	a, err := domain.NewActivity(domain.ActivityInput{
		ID:           id,
		ProjectID:    "p1",
		Name:         name,
		DurationDays: durationDays,
		StartDate:    &start,
	}, time.Now())
	if err != nil {
		t.Fatalf("NewActivity(%s) error = %v", id, err)
	}
	return a
}

func edge(t *testing.T, id, pred, succ string, depType domain.DependencyType, lag int) domain.Dependency {
	t.Helper()
	d, err := domain.NewDependency(domain.DependencyInput{
		ID:            id,
		ProjectID:     "p1",
		PredecessorID: pred,
		SuccessorID:   succ,
		Type:          depType,
		LagDays:       lag,
	}, time.Now())
	if err != nil {
		t.Fatalf("NewDependency(%s) error = %v", id, err)
	}
	return d
}

func TestEarliestStartFSChain(t *testing.T) {
	// A runs 3 days from 2024-01-01, so it ends 2024-01-04; an FS successor
	// with zero lag may begin the next day.
	a := scheduledActivity(t, "a", "A", date(2024, time.January, 1), 3)
	snap := SnapshotOf([]domain.Activity{a})
	deps := []domain.Dependency{edge(t, "d1", "a", "b", domain.FinishToStart, 0)}

	got := EarliestStart(deps, snap, date(2024, time.January, 1))
	if got.String() != "2024-01-05" {
		t.Fatalf("EarliestStart = %s, want 2024-01-05", got)
	}
}

func TestEarliestStartSSNegativeLag(t *testing.T) {
	a := scheduledActivity(t, "a", "A", date(2024, time.January, 10), 5)
	snap := SnapshotOf([]domain.Activity{a})
	deps := []domain.Dependency{edge(t, "d1", "a", "c", domain.StartToStart, -2)}

	got := EarliestStart(deps, snap, date(2024, time.January, 1))
	if got.String() != "2024-01-08" {
		t.Fatalf("EarliestStart = %s, want 2024-01-08", got)
	}
}

func TestEarliestStartFloorsAtProjectStart(t *testing.T) {
	a := scheduledActivity(t, "a", "A", date(2024, time.January, 2), 1)
	snap := SnapshotOf([]domain.Activity{a})
	deps := []domain.Dependency{edge(t, "d1", "a", "b", domain.StartToStart, -30)}

	floor := date(2024, time.January, 1)
	if got := EarliestStart(deps, snap, floor); !got.Equal(floor) {
		t.Fatalf("EarliestStart = %s, want project start floor %s", got, floor)
	}
}

func TestEarliestStartIgnoresFFAndSF(t *testing.T) {
	a := scheduledActivity(t, "a", "A", date(2024, time.June, 1), 10)
	snap := SnapshotOf([]domain.Activity{a})
	deps := []domain.Dependency{
		edge(t, "d1", "a", "b", domain.FinishToFinish, 5),
		edge(t, "d2", "a", "b", domain.StartToFinish, 5),
	}

	floor := date(2024, time.January, 1)
	if got := EarliestStart(deps, snap, floor); !got.Equal(floor) {
		t.Fatalf("EarliestStart = %s, want floor %s (FF/SF must not move the suggestion)", got, floor)
	}
}

func TestEarliestStartSkipsDanglingPredecessor(t *testing.T) {
	snap := SnapshotOf(nil)
	deps := []domain.Dependency{edge(t, "d1", "ghost", "b", domain.FinishToStart, 3)}

	floor := date(2024, time.January, 1)
	if got := EarliestStart(deps, snap, floor); !got.Equal(floor) {
		t.Fatalf("EarliestStart = %s, want floor for dangling predecessor", got)
	}
}

func TestValidateFSBoundary(t *testing.T) {
	// A ends 2024-01-04, FS lag 1 requires start >= 2024-01-06.
	a := scheduledActivity(t, "a", "Groundwork", date(2024, time.January, 1), 3)
	snap := SnapshotOf([]domain.Activity{a})
	deps := []domain.Dependency{edge(t, "d1", "a", "b", domain.FinishToStart, 1)}

	early := Project(date(2024, time.January, 5), 2)
	conflict := Validate(early, deps, snap)
	if conflict == nil {
		t.Fatal("expected conflict one day before the FS boundary")
	}
	if conflict.PredecessorName != "Groundwork" {
		t.Fatalf("conflict predecessor = %q", conflict.PredecessorName)
	}
	if conflict.LagDays != 1 {
		t.Fatalf("conflict lag = %d", conflict.LagDays)
	}
	if conflict.RequiredDate.String() != "2024-01-06" {
		t.Fatalf("conflict required date = %s", conflict.RequiredDate)
	}
	if msg := conflict.Message(); msg == "" || !containsAll(msg, "Groundwork", "+1 day lag", "2024-01-06") {
		t.Fatalf("unexpected conflict message %q", msg)
	}

	exact := Project(date(2024, time.January, 6), 2)
	if got := Validate(exact, deps, snap); got != nil {
		t.Fatalf("expected no conflict on the boundary, got %+v", got)
	}
	later := Project(date(2024, time.February, 1), 2)
	if got := Validate(later, deps, snap); got != nil {
		t.Fatalf("expected no conflict after the boundary, got %+v", got)
	}
}

func TestValidatePerTypeInequalities(t *testing.T) {
	pred := scheduledActivity(t, "a", "A", date(2024, time.March, 10), 5) // ends 2024-03-15
	snap := SnapshotOf([]domain.Activity{pred})

	cases := []struct {
		name    string
		depType domain.DependencyType
		lag     int
		window  Window
		anchor  ConflictAnchor
		want    string
	}{
		{"SS", domain.StartToStart, 2, Project(date(2024, time.March, 11), 3), AnchorStart, "2024-03-12"},
		{"FF", domain.FinishToFinish, 0, Project(date(2024, time.March, 1), 10), AnchorEnd, "2024-03-15"},
		{"SF", domain.StartToFinish, 0, Project(date(2024, time.March, 1), 8), AnchorEnd, "2024-03-10"},
	}
	for _, tc := range cases {
		deps := []domain.Dependency{edge(t, "d1", "a", "b", tc.depType, tc.lag)}
		conflict := Validate(tc.window, deps, snap)
		if conflict == nil {
			t.Fatalf("%s: expected conflict", tc.name)
		}
		if conflict.Anchor != tc.anchor {
			t.Fatalf("%s: anchor = %q, want %q", tc.name, conflict.Anchor, tc.anchor)
		}
		if conflict.RequiredDate.String() != tc.want {
			t.Fatalf("%s: required date = %s, want %s", tc.name, conflict.RequiredDate, tc.want)
		}
	}
}

func TestValidateReportsFirstViolationOnly(t *testing.T) {
	a := scheduledActivity(t, "a", "First", date(2024, time.January, 1), 5)
	b := scheduledActivity(t, "b", "Second", date(2024, time.January, 1), 10)
	snap := SnapshotOf([]domain.Activity{a, b})
	deps := []domain.Dependency{
		edge(t, "d1", "a", "x", domain.FinishToStart, 0),
		edge(t, "d2", "b", "x", domain.FinishToStart, 0),
	}

	conflict := Validate(Project(date(2024, time.January, 2), 1), deps, snap)
	if conflict == nil {
		t.Fatal("expected conflict")
	}
	if conflict.DependencyID != "d1" || conflict.PredecessorName != "First" {
		t.Fatalf("expected first violation in input order, got %+v", conflict)
	}
}

func TestValidateIdempotent(t *testing.T) {
	a := scheduledActivity(t, "a", "A", date(2024, time.January, 1), 3)
	snap := SnapshotOf([]domain.Activity{a})
	deps := []domain.Dependency{edge(t, "d1", "a", "b", domain.FinishToStart, 0)}
	window := Project(date(2024, time.January, 2), 2)

	first := Validate(window, deps, snap)
	for i := 0; i < 5; i++ {
		again := Validate(window, deps, snap)
		if (first == nil) != (again == nil) {
			t.Fatalf("validation flapped on run %d: %+v vs %+v", i, first, again)
		}
		if first != nil && *first != *again {
			t.Fatalf("conflict changed across runs: %+v vs %+v", first, again)
		}
	}
}

func TestValidateToleratesDanglingPredecessor(t *testing.T) {
	snap := SnapshotOf(nil)
	deps := []domain.Dependency{edge(t, "d1", "missing", "b", domain.FinishToStart, 0)}
	if got := Validate(Project(date(2024, time.January, 1), 1), deps, snap); got != nil {
		t.Fatalf("expected dangling edge to be skipped, got %+v", got)
	}
}

func TestSnapshotOverride(t *testing.T) {
	a := scheduledActivity(t, "a", "A", date(2024, time.January, 1), 3)
	snap := SnapshotOf([]domain.Activity{a})
	snap.Override("a", Project(date(2024, time.February, 1), 3))

	w, ok := snap.Window("a")
	if !ok || w.Start.String() != "2024-02-01" {
		t.Fatalf("override not applied: %+v ok=%t", w, ok)
	}
	if snap.Name("a") != "A" {
		t.Fatalf("name lost after override: %q", snap.Name("a"))
	}
}

func TestProjectorInvariantAndClamp(t *testing.T) {
	w := Project(date(2024, time.January, 1), 3)
	if w.End.String() != "2024-01-04" || w.Days() != 3 {
		t.Fatalf("Project() = %+v", w)
	}
	if w := Project(date(2024, time.January, 1), 0); w.Days() != 1 {
		t.Fatalf("expected non-positive duration clamped to 1, got %d", w.Days())
	}
}

func TestResizeRejectsInversion(t *testing.T) {
	w := Project(date(2024, time.January, 1), 2)

	if _, ok := ResizeLeft(w, 2); ok {
		t.Fatal("expected left resize across end to be rejected")
	}
	if _, ok := ResizeRight(w, -2); ok {
		t.Fatal("expected right resize across start to be rejected")
	}

	shrunk, ok := ResizeLeft(w, 1)
	if !ok || shrunk.Days() != 1 {
		t.Fatalf("ResizeLeft(1) = %+v ok=%t", shrunk, ok)
	}
	grown, ok := ResizeRight(w, 3)
	if !ok || grown.Days() != 5 {
		t.Fatalf("ResizeRight(3) = %+v ok=%t", grown, ok)
	}
}

func TestShiftMovesBothEdges(t *testing.T) {
	w := Shift(Project(date(2024, time.January, 10), 4), -3)
	if w.Start.String() != "2024-01-07" || w.End.String() != "2024-01-11" {
		t.Fatalf("Shift() = %+v", w)
	}
}

func TestCriticalActivitiesStub(t *testing.T) {
	a := scheduledActivity(t, "a", "A", date(2024, time.January, 1), 3)
	deps := []domain.Dependency{edge(t, "d1", "a", "b", domain.FinishToStart, 0)}
	if got := CriticalActivities([]domain.Activity{a}, deps); len(got) != 0 {
		t.Fatalf("expected empty critical set, got %v", got)
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
