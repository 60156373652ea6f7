package schedule

import "github.com/evanlind/taktplan/internal/domain"

// Project derives the window for a start date and planned duration,
// maintaining end = start + duration with duration clamped to >= 1.
func Project(start domain.Date, durationDays int) Window {
	days := domain.ClampDuration(durationDays)
	return Window{Start: start, End: start.AddDays(days)}
}

// Shift moves both window edges by the given day delta.
func Shift(w Window, days int) Window {
	return Window{Start: w.Start.AddDays(days), End: w.End.AddDays(days)}
}

// ResizeLeft moves only the start edge. The resize is rejected (ok = false,
// window unchanged) when it would invert the interval.
func ResizeLeft(w Window, days int) (Window, bool) {
	start := w.Start.AddDays(days)
	if !start.Before(w.End) {
		return w, false
	}
	return Window{Start: start, End: w.End}, true
}

// ResizeRight moves only the end edge. The resize is rejected (ok = false,
// window unchanged) when it would invert the interval.
func ResizeRight(w Window, days int) (Window, bool) {
	end := w.End.AddDays(days)
	if !w.Start.Before(end) {
		return w, false
	}
	return Window{Start: w.Start, End: end}, true
}
