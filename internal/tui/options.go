package tui

import (
	"slices"

	"github.com/evanlind/taktplan/internal/domain"
	"github.com/evanlind/taktplan/internal/timeline"
)

type Option func(*Model)

// WithTimelineDefaults seeds the initial scale, zoom, and row density.
// Invalid values fall back to the model defaults.
func WithTimelineDefaults(scale string, zoom float64, density string) Option {
	return func(m *Model) {
		if s := timeline.Scale(scale); s.IsValid() {
			m.scale = s
		}
		if zoom != 0 {
			m.zoom = timeline.ClampZoom(zoom)
		}
		switch timeline.Density(density) {
		case timeline.DensityComfortable, timeline.DensityCompact:
			m.density = timeline.Density(density)
		}
	}
}

// WithStatusFilter restricts the chart to the given activity statuses.
func WithStatusFilter(statuses []string) Option {
	return func(m *Model) {
		m.statusFilter = m.statusFilter[:0]
		for _, s := range statuses {
			status := domain.Status(s)
			if slices.Contains(domain.Statuses(), status) {
				m.statusFilter = append(m.statusFilter, status)
			}
		}
	}
}

// WithKeyBindings overlays user-configured keys onto the default keymap.
func WithKeyBindings(cfg KeyConfig) Option {
	return func(m *Model) {
		m.keys.applyConfig(cfg)
	}
}

// WithToday pins the chart's notion of today, used by tests.
func WithToday(today domain.Date) Option {
	return func(m *Model) {
		m.today = today
	}
}
