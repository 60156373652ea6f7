// Package session tracks uncommitted schedule edits as a diff against the
// committed store state: proposed date windows from drags and resizes, plus a
// presentation order for vertical reordering. Nothing here touches storage
// until Flush.
package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/evanlind/taktplan/internal/domain"
	"github.com/evanlind/taktplan/internal/schedule"
)

// PendingChange is one uncommitted schedule edit for an activity, carrying
// the committed window it diverges from.
type PendingChange struct {
	ActivityID string
	Proposed   schedule.Window
	Committed  schedule.Window
}

// Store is the commit target for pending changes. DurationDays is recomputed
// from the proposed window; override is always true for manual edits.
type Store interface {
	UpdateActivitySchedule(ctx context.Context, activityID string, start, end domain.Date, durationDays int, override bool) error
}

// SchedulingSession holds the per-editing-session state: pending window
// changes keyed by activity id and the vertical presentation order. It is not
// safe for concurrent use; the owning UI loop serializes access.
type SchedulingSession struct {
	pending map[string]PendingChange
	order   []string
}

// New starts a session with the given presentation order.
func New(activityIDs []string) *SchedulingSession {
	return &SchedulingSession{
		pending: make(map[string]PendingChange),
		order:   slices.Clone(activityIDs),
	}
}

// DayDelta converts a horizontal pixel delta to whole days. Sub-threshold
// moves round to 0 so they never dirty the session.
func DayDelta(deltaPx, dayWidth float64) int {
	if dayWidth <= 0 {
		return 0
	}
	return int(math.Round(deltaPx / dayWidth))
}

// RowDelta converts a vertical pixel delta to whole rows.
func RowDelta(deltaPx, rowHeight float64) int {
	if rowHeight <= 0 {
		return 0
	}
	return int(math.Round(deltaPx / rowHeight))
}

// Order returns the current presentation order.
func (s *SchedulingSession) Order() []string {
	return slices.Clone(s.order)
}

// Rank returns an activity's position in the presentation order.
func (s *SchedulingSession) Rank(id string) (int, bool) {
	i := slices.Index(s.order, id)
	return i, i >= 0
}

// Pending returns the pending change for an activity, if any.
func (s *SchedulingSession) Pending(id string) (PendingChange, bool) {
	p, ok := s.pending[id]
	return p, ok
}

// Dirty reports whether any uncommitted changes exist.
func (s *SchedulingSession) Dirty() bool {
	return len(s.pending) > 0
}

// BeginDrag opens (or resumes) a pending change for an activity, seeded from
// its committed window.
func (s *SchedulingSession) BeginDrag(id string, committed schedule.Window) {
	if _, ok := s.pending[id]; ok {
		return
	}
	s.pending[id] = PendingChange{ActivityID: id, Proposed: committed, Committed: committed}
}

// MoveBy shifts an activity's proposed window by a pixel delta. Returns false
// when the delta rounds to zero days or no drag is open for the activity.
func (s *SchedulingSession) MoveBy(id string, deltaPx, dayWidth float64) bool {
	days := DayDelta(deltaPx, dayWidth)
	if days == 0 {
		return false
	}
	p, ok := s.pending[id]
	if !ok {
		return false
	}
	p.Proposed = schedule.Shift(p.Proposed, days)
	s.store(p)
	return true
}

// ResizeLeftBy moves only the proposed start edge. A resize that would invert
// the interval is rejected.
func (s *SchedulingSession) ResizeLeftBy(id string, deltaPx, dayWidth float64) bool {
	days := DayDelta(deltaPx, dayWidth)
	if days == 0 {
		return false
	}
	p, ok := s.pending[id]
	if !ok {
		return false
	}
	resized, ok := schedule.ResizeLeft(p.Proposed, days)
	if !ok {
		return false
	}
	p.Proposed = resized
	s.store(p)
	return true
}

// ResizeRightBy moves only the proposed end edge. A resize that would invert
// the interval is rejected.
func (s *SchedulingSession) ResizeRightBy(id string, deltaPx, dayWidth float64) bool {
	days := DayDelta(deltaPx, dayWidth)
	if days == 0 {
		return false
	}
	p, ok := s.pending[id]
	if !ok {
		return false
	}
	resized, ok := schedule.ResizeRight(p.Proposed, days)
	if !ok {
		return false
	}
	p.Proposed = resized
	s.store(p)
	return true
}

// store records a pending change, dropping it when the proposal has walked
// back to the committed window so a no-op edit never shows as unsaved.
func (s *SchedulingSession) store(p PendingChange) {
	if p.Proposed == p.Committed {
		delete(s.pending, p.ActivityID)
		return
	}
	s.pending[p.ActivityID] = p
}

// ReorderTo splices an activity to a new rank. Remaining activities keep
// their relative order; ranks stay contiguous from 0.
func (s *SchedulingSession) ReorderTo(id string, rank int) bool {
	from := slices.Index(s.order, id)
	if from < 0 {
		return false
	}
	rank = min(max(rank, 0), len(s.order)-1)
	if rank == from {
		return false
	}
	s.order = slices.Delete(s.order, from, from+1)
	s.order = slices.Insert(s.order, rank, id)
	return true
}

// Overlay layers every proposed window onto a snapshot so validation and
// connector routing see the same effective dates the user is looking at.
func (s *SchedulingSession) Overlay(snap *schedule.Snapshot) {
	for id, p := range s.pending {
		snap.Override(id, p.Proposed)
	}
}

// Reconcile folds a fresh committed snapshot into the session. Pending
// entries whose committed dates now equal the proposal are dropped (the edit
// was saved elsewhere); surviving entries have their committed baseline
// refreshed. The presentation order keeps its ranks for known activities,
// appends new ones, and drops deleted ones.
func (s *SchedulingSession) Reconcile(activities []domain.Activity) {
	known := make(map[string]domain.Activity, len(activities))
	for _, a := range activities {
		known[a.ID] = a
	}

	for id, p := range s.pending {
		a, ok := known[id]
		if !ok {
			delete(s.pending, id)
			continue
		}
		if !a.Scheduled() {
			continue
		}
		committed := schedule.Window{Start: *a.StartDate, End: *a.EndDate}
		if committed == p.Proposed {
			delete(s.pending, id)
			continue
		}
		p.Committed = committed
		s.pending[id] = p
	}

	order := make([]string, 0, len(activities))
	for _, id := range s.order {
		if _, ok := known[id]; ok {
			order = append(order, id)
			delete(known, id)
		}
	}
	for _, a := range activities {
		if _, ok := known[a.ID]; ok {
			order = append(order, a.ID)
		}
	}
	s.order = order
}

// Flush commits every pending change, one write per activity, recomputing
// the duration from the proposed window and marking the schedule as a manual
// override. Failed writes stay pending and are reported; successful ones are
// dropped even when later writes fail.
func (s *SchedulingSession) Flush(ctx context.Context, store Store) error {
	ids := make([]string, 0, len(s.pending))
	for _, id := range s.order {
		if _, ok := s.pending[id]; ok {
			ids = append(ids, id)
		}
	}
	for id := range s.pending {
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}

	var errs []error
	for _, id := range ids {
		p := s.pending[id]
		err := store.UpdateActivitySchedule(ctx, id, p.Proposed.Start, p.Proposed.End, p.Proposed.Days(), true)
		if err != nil {
			errs = append(errs, fmt.Errorf("commit schedule for %s: %w", id, err))
			continue
		}
		delete(s.pending, id)
	}
	return errors.Join(errs...)
}

// Discard drops one pending change.
func (s *SchedulingSession) Discard(id string) {
	delete(s.pending, id)
}

// DiscardAll drops every pending change, leaving the order intact.
func (s *SchedulingSession) DiscardAll() {
	clear(s.pending)
}
