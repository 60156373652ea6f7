package timeline

import (
	"github.com/evanlind/taktplan/internal/domain"
	"github.com/evanlind/taktplan/internal/schedule"
)

// standOff is the horizontal distance a connector travels away from a bar
// edge before it is allowed to turn vertical.
const standOff = 20

// ConnectorKind classifies a routed edge for styling. Conflict wins over
// critical, critical over normal.
type ConnectorKind string

// ConnectorKind values.
const (
	ConnectorNormal   ConnectorKind = "normal"
	ConnectorCritical ConnectorKind = "critical"
	ConnectorConflict ConnectorKind = "conflict"
)

// Point is one vertex of an orthogonal polyline.
type Point struct {
	X float64
	Y float64
}

// Connector is one routed dependency edge.
type Connector struct {
	DependencyID  string
	PredecessorID string
	SuccessorID   string
	Type          domain.DependencyType
	Kind          ConnectorKind
	Points        []Point
}

// Route turns dependencies into orthogonal polylines over a computed layout.
// Edges with either endpoint missing from the layout (filtered out or
// unscheduled) are dropped. Conflict classification reuses the same
// per-type inequality the schedule validator applies, evaluated against the
// snapshot's effective windows, so the chart and the form always agree.
func Route(deps []domain.Dependency, layout *Layout, snap *schedule.Snapshot, critical map[string]bool) []Connector {
	connectors := make([]Connector, 0, len(deps))
	for _, d := range deps {
		from, okFrom := layout.BarFor(d.PredecessorID)
		to, okTo := layout.BarFor(d.SuccessorID)
		if !okFrom || !okTo {
			continue
		}
		c := Connector{
			DependencyID:  d.ID,
			PredecessorID: d.PredecessorID,
			SuccessorID:   d.SuccessorID,
			Type:          d.Type,
			Kind:          classify(d, snap, critical),
		}
		c.Points = elbow(anchorPoints(d.Type, from, to, layout.RowHeight))
		connectors = append(connectors, c)
	}
	return connectors
}

// classify picks the styling class for one edge.
func classify(d domain.Dependency, snap *schedule.Snapshot, critical map[string]bool) ConnectorKind {
	pred, okPred := snap.Window(d.PredecessorID)
	succ, okSucc := snap.Window(d.SuccessorID)
	if okPred && okSucc && schedule.Violates(d, pred, succ) {
		return ConnectorConflict
	}
	if critical[d.PredecessorID] && critical[d.SuccessorID] {
		return ConnectorCritical
	}
	return ConnectorNormal
}

// anchor is one connector endpoint with its horizontal exit direction
// (+1 leaves rightward, -1 leftward).
type anchor struct {
	Point
	dir float64
}

// anchorPoints resolves the per-type bar edges a connector attaches to:
// the dependency type's first letter picks the predecessor edge (finish =
// right, start = left) and its second letter picks the successor edge.
func anchorPoints(t domain.DependencyType, from, to Bar, rowHeight float64) (anchor, anchor) {
	fromY := from.TopPx + barCenterOffset(rowHeight)
	toY := to.TopPx + barCenterOffset(rowHeight)

	src := anchor{Point: Point{X: from.LeftPx + from.WidthPx, Y: fromY}, dir: 1}
	dst := anchor{Point: Point{X: to.LeftPx, Y: toY}, dir: -1}
	switch t {
	case domain.StartToStart:
		src = anchor{Point: Point{X: from.LeftPx, Y: fromY}, dir: -1}
	case domain.FinishToFinish:
		dst = anchor{Point: Point{X: to.LeftPx + to.WidthPx, Y: toY}, dir: 1}
	case domain.StartToFinish:
		src = anchor{Point: Point{X: from.LeftPx, Y: fromY}, dir: -1}
		dst = anchor{Point: Point{X: to.LeftPx + to.WidthPx, Y: toY}, dir: 1}
	}
	return src, dst
}

// elbow builds the orthogonal polyline between two anchors: a fixed
// horizontal stand-off out of the source, a vertical run at the midpoint
// between the two row centers, and a stand-off into the target.
func elbow(src, dst anchor) []Point {
	midY := (src.Y + dst.Y) / 2
	outX := src.X + src.dir*standOff
	inX := dst.X + dst.dir*standOff
	return []Point{
		src.Point,
		{X: outX, Y: src.Y},
		{X: outX, Y: midY},
		{X: inX, Y: midY},
		{X: inX, Y: dst.Y},
		dst.Point,
	}
}
