// Package schedule computes dependency-driven start suggestions and detects
// date conflicts against declared dependencies. It never mutates activities;
// each call works on an immutable snapshot of scheduled dates.
package schedule

import (
	"fmt"

	"github.com/evanlind/taktplan/internal/domain"
)

// Window is one resolved (start, end) date pair for an activity.
type Window struct {
	Start domain.Date
	End   domain.Date
}

// Days returns the window length in whole days (end - start).
func (w Window) Days() int {
	return w.Start.DaysUntil(w.End)
}

// Snapshot indexes scheduled activity windows and names by id for one
// evaluation pass. Pending edits are layered on top with Override so the
// evaluator and the connector router see the same effective dates.
type Snapshot struct {
	windows map[string]Window
	names   map[string]string
}

// SnapshotOf builds a snapshot from committed activities. Activities without
// both dates set are omitted, which downstream code treats as "no constraint".
func SnapshotOf(activities []domain.Activity) *Snapshot {
	s := &Snapshot{
		windows: make(map[string]Window, len(activities)),
		names:   make(map[string]string, len(activities)),
	}
	for _, a := range activities {
		s.names[a.ID] = a.Name
		if !a.Scheduled() {
			continue
		}
		s.windows[a.ID] = Window{Start: *a.StartDate, End: *a.EndDate}
	}
	return s
}

// Override replaces one activity's effective window, typically with an
// uncommitted pending edit.
func (s *Snapshot) Override(id string, w Window) {
	s.windows[id] = w
}

// Window returns the effective window for an activity id.
func (s *Snapshot) Window(id string) (Window, bool) {
	w, ok := s.windows[id]
	return w, ok
}

// Name returns the display name recorded for an activity id.
func (s *Snapshot) Name(id string) string {
	return s.names[id]
}

// EarliestStart computes the earliest permissible start date for an activity
// with the given dependencies. Only FS and SS edges fold into the forward
// suggestion; FF and SF participate in validation but not here. Dependencies
// whose predecessor has no resolved window are skipped.
func EarliestStart(deps []domain.Dependency, snap *Snapshot, projectStart domain.Date) domain.Date {
	earliest := projectStart
	for _, d := range deps {
		pred, ok := snap.Window(d.PredecessorID)
		if !ok {
			continue
		}
		switch d.Type {
		case domain.FinishToStart:
			// Finishing "on" a day means the successor can begin the next day.
			earliest = domain.MaxDate(earliest, pred.End.AddDays(d.LagDays+1))
		case domain.StartToStart:
			earliest = domain.MaxDate(earliest, pred.Start.AddDays(d.LagDays))
		case domain.FinishToFinish, domain.StartToFinish:
			// Excluded from the forward suggestion.
		}
	}
	return earliest
}

// ConflictAnchor names which successor anchor a conflict constrains.
type ConflictAnchor string

// ConflictAnchor values.
const (
	AnchorStart ConflictAnchor = "start"
	AnchorEnd   ConflictAnchor = "end"
)

// Conflict describes the first dependency violated by a candidate schedule.
type Conflict struct {
	DependencyID    string
	PredecessorID   string
	PredecessorName string
	Type            domain.DependencyType
	LagDays         int
	Anchor          ConflictAnchor
	RequiredDate    domain.Date
}

// Message renders the structured conflict for form banners.
func (c *Conflict) Message() string {
	anchor := "start"
	if c.Anchor == AnchorEnd {
		anchor = "end"
	}
	return fmt.Sprintf("must %s on or after %s: %s on %q (%s)",
		anchor, c.RequiredDate, c.Type.DisplayName(), c.PredecessorName, formatLag(c.LagDays))
}

// formatLag renders a signed lag for display.
func formatLag(days int) string {
	switch {
	case days == 1:
		return "+1 day lag"
	case days == -1:
		return "-1 day lag"
	case days < 0:
		return fmt.Sprintf("%d days lag", days)
	default:
		return fmt.Sprintf("+%d days lag", days)
	}
}

// Validate checks a candidate window against the declared dependencies and
// returns the first violation in input order, or nil when the schedule is
// consistent. Dependencies with unresolved predecessors are silently skipped.
func Validate(candidate Window, deps []domain.Dependency, snap *Snapshot) *Conflict {
	for _, d := range deps {
		pred, ok := snap.Window(d.PredecessorID)
		if !ok {
			continue
		}
		if !Violates(d, pred, candidate) {
			continue
		}
		conflict := &Conflict{
			DependencyID:    d.ID,
			PredecessorID:   d.PredecessorID,
			PredecessorName: snap.Name(d.PredecessorID),
			Type:            d.Type,
			LagDays:         d.LagDays,
		}
		switch d.Type {
		case domain.FinishToStart:
			conflict.Anchor = AnchorStart
			conflict.RequiredDate = pred.End.AddDays(d.LagDays + 1)
		case domain.StartToStart:
			conflict.Anchor = AnchorStart
			conflict.RequiredDate = pred.Start.AddDays(d.LagDays)
		case domain.FinishToFinish:
			conflict.Anchor = AnchorEnd
			conflict.RequiredDate = pred.End.AddDays(d.LagDays)
		case domain.StartToFinish:
			conflict.Anchor = AnchorEnd
			conflict.RequiredDate = pred.Start.AddDays(d.LagDays)
		}
		return conflict
	}
	return nil
}

// Violates reports whether one edge is violated by the successor window. The
// connector router reuses this check so chart conflict flags never diverge
// from form validation.
func Violates(d domain.Dependency, pred Window, succ Window) bool {
	switch d.Type {
	case domain.FinishToStart:
		return succ.Start.Before(pred.End.AddDays(d.LagDays + 1))
	case domain.StartToStart:
		return succ.Start.Before(pred.Start.AddDays(d.LagDays))
	case domain.FinishToFinish:
		return succ.End.Before(pred.End.AddDays(d.LagDays))
	case domain.StartToFinish:
		return succ.End.Before(pred.Start.AddDays(d.LagDays))
	default:
		return false
	}
}
