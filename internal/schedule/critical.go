package schedule

import "github.com/evanlind/taktplan/internal/domain"

// CriticalActivities returns the set of activity ids on the critical path.
//
// No forward/backward CPM pass is performed; the set is always empty. The
// function exists so connector styling and future CPM work share one call
// site. A real implementation would also need explicit cycle rejection, since
// transitive earliest-start is ill-defined on a cyclic graph.
func CriticalActivities(activities []domain.Activity, deps []domain.Dependency) map[string]bool {
	return map[string]bool{}
}
