package timeline

import (
	"testing"
	"time"

	"github.com/evanlind/taktplan/internal/domain"
	"github.com/evanlind/taktplan/internal/schedule"
)

func dep(t *testing.T, id, pred, succ string, depType domain.DependencyType, lag int) domain.Dependency {
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

func routed(t *testing.T, items []Item, deps []domain.Dependency) ([]Connector, *Layout) {
	t.Helper()
	layout := Compute(items, Options{Scale: ScaleDay, Zoom: 1, Density: DensityComfortable, Today: date(2024, time.April, 1)})
	activities := make([]domain.Activity, 0, len(items))
	for _, it := range items {
		activities = append(activities, it.Activity)
	}
	snap := schedule.SnapshotOf(activities)
	return Route(deps, layout, snap, nil), layout
}

func TestRouteFSAnchorsAndElbow(t *testing.T) {
	items := []Item{
		item(t, "a", "A", date(2024, time.April, 1), 2),
		item(t, "b", "B", date(2024, time.April, 5), 2),
	}
	conns, layout := routed(t, items, []domain.Dependency{
		dep(t, "d1", "a", "b", domain.FinishToStart, 0),
	})
	if len(conns) != 1 {
		t.Fatalf("connectors = %d", len(conns))
	}
	c := conns[0]
	if c.Kind != ConnectorNormal {
		t.Fatalf("kind = %q", c.Kind)
	}

	from, _ := layout.BarFor("a")
	to, _ := layout.BarFor("b")
	first, last := c.Points[0], c.Points[len(c.Points)-1]
	if first.X != from.LeftPx+from.WidthPx {
		t.Fatalf("FS source x = %v, want predecessor right edge %v", first.X, from.LeftPx+from.WidthPx)
	}
	if last.X != to.LeftPx {
		t.Fatalf("FS target x = %v, want successor left edge %v", last.X, to.LeftPx)
	}
	// Comfortable rows center bars 28px below the row top.
	if first.Y != from.TopPx+28 || last.Y != to.TopPx+28 {
		t.Fatalf("connector y = %v..%v", first.Y, last.Y)
	}

	// Stand-off before turning vertical, vertical run at the row midpoint.
	if c.Points[1].X != first.X+standOff || c.Points[1].Y != first.Y {
		t.Fatalf("source stand-off point = %+v", c.Points[1])
	}
	midY := (first.Y + last.Y) / 2
	if c.Points[2].Y != midY || c.Points[3].Y != midY {
		t.Fatalf("vertical run at %v/%v, want %v", c.Points[2].Y, c.Points[3].Y, midY)
	}
	if c.Points[4].X != last.X-standOff {
		t.Fatalf("target stand-off x = %v", c.Points[4].X)
	}
	for i := 1; i < len(c.Points); i++ {
		if c.Points[i-1].X != c.Points[i].X && c.Points[i-1].Y != c.Points[i].Y {
			t.Fatalf("segment %d..%d is not orthogonal: %+v -> %+v", i-1, i, c.Points[i-1], c.Points[i])
		}
	}
}

func TestRoutePerTypeAnchors(t *testing.T) {
	items := []Item{
		item(t, "a", "A", date(2024, time.April, 1), 2),
		item(t, "b", "B", date(2024, time.April, 10), 2),
	}
	layout := Compute(items, Options{Scale: ScaleDay, Zoom: 1, Today: date(2024, time.April, 1)})
	from, _ := layout.BarFor("a")
	to, _ := layout.BarFor("b")

	cases := []struct {
		depType domain.DependencyType
		fromX   float64
		toX     float64
	}{
		{domain.FinishToStart, from.LeftPx + from.WidthPx, to.LeftPx},
		{domain.StartToStart, from.LeftPx, to.LeftPx},
		{domain.FinishToFinish, from.LeftPx + from.WidthPx, to.LeftPx + to.WidthPx},
		{domain.StartToFinish, from.LeftPx, to.LeftPx + to.WidthPx},
	}
	snap := schedule.SnapshotOf([]domain.Activity{items[0].Activity, items[1].Activity})
	for _, tc := range cases {
		conns := Route([]domain.Dependency{dep(t, "d1", "a", "b", tc.depType, 0)}, layout, snap, nil)
		if len(conns) != 1 {
			t.Fatalf("%s: connectors = %d", tc.depType, len(conns))
		}
		first := conns[0].Points[0]
		last := conns[0].Points[len(conns[0].Points)-1]
		if first.X != tc.fromX || last.X != tc.toX {
			t.Fatalf("%s: anchors = %v..%v, want %v..%v", tc.depType, first.X, last.X, tc.fromX, tc.toX)
		}
	}
}

func TestRouteFlagsConflict(t *testing.T) {
	// B starts before A finishes, violating the FS edge.
	items := []Item{
		item(t, "a", "A", date(2024, time.April, 1), 5),
		item(t, "b", "B", date(2024, time.April, 3), 2),
	}
	conns, _ := routed(t, items, []domain.Dependency{
		dep(t, "d1", "a", "b", domain.FinishToStart, 0),
	})
	if conns[0].Kind != ConnectorConflict {
		t.Fatalf("kind = %q, want conflict", conns[0].Kind)
	}
}

func TestRouteConflictFollowsSnapshotOverride(t *testing.T) {
	items := []Item{
		item(t, "a", "A", date(2024, time.April, 1), 5),
		item(t, "b", "B", date(2024, time.April, 3), 2),
	}
	layout := Compute(items, Options{Scale: ScaleDay, Today: date(2024, time.April, 1)})
	snap := schedule.SnapshotOf([]domain.Activity{items[0].Activity, items[1].Activity})
	// A pending move of B past A's finish clears the conflict.
	snap.Override("b", schedule.Project(date(2024, time.April, 10), 2))

	conns := Route([]domain.Dependency{dep(t, "d1", "a", "b", domain.FinishToStart, 0)}, layout, snap, nil)
	if conns[0].Kind != ConnectorNormal {
		t.Fatalf("kind = %q, want normal after override", conns[0].Kind)
	}
}

func TestRouteCriticalRequiresBothEndpoints(t *testing.T) {
	items := []Item{
		item(t, "a", "A", date(2024, time.April, 1), 2),
		item(t, "b", "B", date(2024, time.April, 10), 2),
	}
	layout := Compute(items, Options{Scale: ScaleDay, Today: date(2024, time.April, 1)})
	snap := schedule.SnapshotOf([]domain.Activity{items[0].Activity, items[1].Activity})
	edges := []domain.Dependency{dep(t, "d1", "a", "b", domain.FinishToStart, 0)}

	conns := Route(edges, layout, snap, map[string]bool{"a": true})
	if conns[0].Kind != ConnectorNormal {
		t.Fatalf("kind = %q with one critical endpoint", conns[0].Kind)
	}
	conns = Route(edges, layout, snap, map[string]bool{"a": true, "b": true})
	if conns[0].Kind != ConnectorCritical {
		t.Fatalf("kind = %q with both critical endpoints", conns[0].Kind)
	}
}

func TestRouteDropsEdgesWithMissingEndpoints(t *testing.T) {
	items := []Item{item(t, "a", "A", date(2024, time.April, 1), 2)}
	conns, _ := routed(t, items, []domain.Dependency{
		dep(t, "d1", "a", "ghost", domain.FinishToStart, 0),
		dep(t, "d2", "ghost", "a", domain.FinishToStart, 0),
	})
	if len(conns) != 0 {
		t.Fatalf("connectors = %d, want 0", len(conns))
	}
}
