package domain

import (
	"testing"
	"time"
)

func TestDateArithmetic(t *testing.T) {
	d := NewDate(2024, time.January, 1)
	if got := d.AddDays(3).String(); got != "2024-01-04" {
		t.Fatalf("AddDays(3) = %s", got)
	}
	if got := d.AddDays(-2).String(); got != "2023-12-30" {
		t.Fatalf("AddDays(-2) = %s", got)
	}
	if got := d.DaysUntil(NewDate(2024, time.February, 1)); got != 31 {
		t.Fatalf("DaysUntil = %d", got)
	}
	if got := NewDate(2024, time.February, 1).DaysUntil(d); got != -31 {
		t.Fatalf("negative DaysUntil = %d", got)
	}
}

func TestParseDateRoundTrip(t *testing.T) {
	d, err := ParseDate(" 2024-06-15 ")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	if d.String() != "2024-06-15" {
		t.Fatalf("unexpected date %s", d)
	}
	if _, err := ParseDate("15/06/2024"); err == nil {
		t.Fatal("expected parse error for non-ISO input")
	}
}

func TestDateWeekend(t *testing.T) {
	if !NewDate(2024, time.January, 6).IsWeekend() {
		t.Fatal("expected Saturday to be a weekend")
	}
	if NewDate(2024, time.January, 8).IsWeekend() {
		t.Fatal("expected Monday to be a weekday")
	}
}

func TestRangeUnion(t *testing.T) {
	fallback := NewDate(2024, time.March, 1)
	min, max := RangeUnion(nil, fallback)
	if !min.Equal(fallback) || !max.Equal(fallback) {
		t.Fatalf("empty union = (%s, %s)", min, max)
	}

	dates := []Date{
		NewDate(2024, time.March, 10),
		NewDate(2024, time.March, 2),
		NewDate(2024, time.April, 1),
	}
	min, max = RangeUnion(dates, fallback)
	if min.String() != "2024-03-02" || max.String() != "2024-04-01" {
		t.Fatalf("union = (%s, %s)", min, max)
	}
}

func TestNewActivityDefaultsAndClamps(t *testing.T) {
	now := time.Now()
	start := NewDate(2024, time.January, 1)
	a, err := NewActivity(ActivityInput{
		ID:              "a1",
		ProjectID:       "p1",
		Name:            "  Pour foundation ",
		DurationDays:    0,
		StartDate:       &start,
		ProgressPercent: 130,
	}, now)
	if err != nil {
		t.Fatalf("NewActivity() error = %v", err)
	}
	if a.Name != "Pour foundation" {
		t.Fatalf("unexpected name %q", a.Name)
	}
	if a.DurationDays != 1 {
		t.Fatalf("expected duration clamped to 1, got %d", a.DurationDays)
	}
	if a.ProgressPercent != 100 {
		t.Fatalf("expected progress clamped to 100, got %d", a.ProgressPercent)
	}
	if a.Status != StatusPending {
		t.Fatalf("expected default pending status, got %q", a.Status)
	}
	if a.EndDate == nil || a.EndDate.String() != "2024-01-02" {
		t.Fatalf("expected derived end date, got %v", a.EndDate)
	}
}

func TestNewActivityValidation(t *testing.T) {
	now := time.Now()
	if _, err := NewActivity(ActivityInput{ProjectID: "p1", Name: "x"}, now); err != ErrInvalidID {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if _, err := NewActivity(ActivityInput{ID: "a1", ProjectID: "p1", Name: "  "}, now); err != ErrInvalidName {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	_, err := NewActivity(ActivityInput{ID: "a1", ProjectID: "p1", Name: "x", Status: Status("bogus")}, now)
	if err != ErrInvalidStatus {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestActivitySetSchedule(t *testing.T) {
	now := time.Now()
	a, err := NewActivity(ActivityInput{ID: "a1", ProjectID: "p1", Name: "Framing"}, now)
	if err != nil {
		t.Fatalf("NewActivity() error = %v", err)
	}
	if a.Scheduled() {
		t.Fatal("expected unscheduled activity")
	}

	a.SetSchedule(NewDate(2024, time.May, 6), 5, true, now.Add(time.Minute))
	if !a.Scheduled() || !a.DateOverride {
		t.Fatalf("unexpected schedule state %#v", a)
	}
	if a.EndDate.String() != "2024-05-11" {
		t.Fatalf("end date = %s", a.EndDate)
	}

	a.ClearSchedule(now.Add(2 * time.Minute))
	if a.Scheduled() || a.DateOverride {
		t.Fatalf("expected cleared schedule, got %#v", a)
	}
}

func TestStatusDisplayNames(t *testing.T) {
	cases := map[Status]string{
		StatusPending:         "Pending",
		StatusWorkInProgress:  "Work in Progress",
		StatusReadyInspection: "Ready for Inspection",
		StatusAwaitingClient:  "Awaiting Client Approval",
		StatusInspected:       "Inspected",
		StatusClosed:          "Closed",
	}
	for status, want := range cases {
		if got := status.DisplayName(); got != want {
			t.Fatalf("DisplayName(%q) = %q, want %q", status, got, want)
		}
	}
}

func TestNewDependencyValidation(t *testing.T) {
	now := time.Now()
	if _, err := NewDependency(DependencyInput{ID: "d1", ProjectID: "p1", PredecessorID: "a1", SuccessorID: "a1"}, now); err != ErrSelfDependency {
		t.Fatalf("expected ErrSelfDependency, got %v", err)
	}
	_, err := NewDependency(DependencyInput{ID: "d1", ProjectID: "p1", PredecessorID: "a1", SuccessorID: "a2", Type: DependencyType("XX")}, now)
	if err != ErrInvalidDependencyType {
		t.Fatalf("expected ErrInvalidDependencyType, got %v", err)
	}

	dep, err := NewDependency(DependencyInput{ID: "d1", ProjectID: "p1", PredecessorID: "a1", SuccessorID: "a2", LagDays: 1000}, now)
	if err != nil {
		t.Fatalf("NewDependency() error = %v", err)
	}
	if dep.Type != FinishToStart {
		t.Fatalf("expected FS default, got %q", dep.Type)
	}
	if dep.LagDays != MaxLagDays {
		t.Fatalf("expected lag clamped to %d, got %d", MaxLagDays, dep.LagDays)
	}
}

func TestNewProjectDefaultsStartDate(t *testing.T) {
	now := time.Date(2024, time.July, 3, 15, 0, 0, 0, time.UTC)
	p, err := NewProject("p1", "Riverside Tower", "", Date{}, now)
	if err != nil {
		t.Fatalf("NewProject() error = %v", err)
	}
	if p.StartDate.String() != "2024-07-03" {
		t.Fatalf("unexpected default start date %s", p.StartDate)
	}
}
