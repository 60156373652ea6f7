// Package timeline maps scheduled activities onto a time-scaled 2D grid:
// bar geometry, header bands, and orthogonal dependency connectors. Layout is
// a pure function of its inputs so repeated passes render identically.
package timeline

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/evanlind/taktplan/internal/domain"
	"github.com/evanlind/taktplan/internal/schedule"
)

// Scale selects the header granularity and base column width.
type Scale string

// Scale values.
const (
	ScaleDay   Scale = "day"
	ScaleWeek  Scale = "week"
	ScaleMonth Scale = "month"
)

// IsValid reports whether the scale is one of the closed set.
func (s Scale) IsValid() bool {
	switch s {
	case ScaleDay, ScaleWeek, ScaleMonth:
		return true
	}
	return false
}

// baseDayWidth returns the un-zoomed width of one day in grid units.
func (s Scale) baseDayWidth() float64 {
	switch s {
	case ScaleWeek:
		return 25
	case ScaleMonth:
		return 15
	default:
		return 40
	}
}

// Density selects the row height.
type Density string

// Density values.
const (
	DensityComfortable Density = "comfortable"
	DensityCompact     Density = "compact"
)

// rowHeight returns the density's row height in grid units.
func (d Density) rowHeight() float64 {
	if d == DensityCompact {
		return 48
	}
	return 64
}

// Zoom bounds applied to the continuous zoom multiplier.
const (
	MinZoom = 0.3
	MaxZoom = 2.5
)

// rangePadDays pads the visible range on each side of the activity union.
const rangePadDays = 7

// barTopInset is the vertical inset between the row top and the bar top.
const barTopInset = 8

// ClampZoom forces a zoom multiplier into the supported range. A zero value
// (unset) becomes 1.
func ClampZoom(zoom float64) float64 {
	if zoom == 0 {
		return 1
	}
	return math.Min(MaxZoom, math.Max(MinZoom, zoom))
}

// Options parameterizes one layout pass.
type Options struct {
	Scale        Scale
	Zoom         float64
	Density      Density
	Today        domain.Date
	StatusFilter []domain.Status
}

// Item is one activity with its effective window, in presentation order.
// Pending marks windows that come from an uncommitted edit.
type Item struct {
	Activity domain.Activity
	Window   schedule.Window
	Pending  bool
}

// Band is one header column.
type Band struct {
	Label     string
	Start     domain.Date
	Days      int
	WidthPx   float64
	IsToday   bool
	IsWeekend bool
}

// Bar is the rendered geometry for one activity.
type Bar struct {
	ActivityID      string
	Name            string
	Status          domain.Status
	ProgressPercent int
	Window          schedule.Window
	Pending         bool
	RowIndex        int
	LeftPx          float64
	WidthPx         float64
	TopPx           float64
}

// Layout is the result of one layout pass.
type Layout struct {
	Scale      Scale
	DayWidth   float64
	RowHeight  float64
	RangeStart domain.Date
	RangeEnd   domain.Date
	TotalDays  int
	WidthPx    float64
	Bands      []Band
	Bars       []Bar

	barsByID map[string]Bar
}

// BarFor returns the laid-out bar for an activity id.
func (l *Layout) BarFor(activityID string) (Bar, bool) {
	bar, ok := l.barsByID[activityID]
	return bar, ok
}

// barCenterOffset returns the vertical offset from a row top to the bar's
// vertical center (8px inset over a 40px bar in a 64px row gives 28).
func barCenterOffset(rowHeight float64) float64 {
	return barTopInset + barHeight(rowHeight)/2
}

// barHeight returns the bar height for a row height.
func barHeight(rowHeight float64) float64 {
	return rowHeight - 3*barTopInset
}

// Compute lays out the given items. Items without a status in the filter are
// excluded (an empty filter excludes nothing); callers are expected to have
// already dropped unscheduled activities when building items, but a zero
// window is tolerated and skipped.
func Compute(items []Item, opts Options) *Layout {
	if !opts.Scale.IsValid() {
		opts.Scale = ScaleDay
	}
	if opts.Today.IsZero() {
		opts.Today = domain.DateOf(time.Now())
	}
	dayWidth := opts.Scale.baseDayWidth() * ClampZoom(opts.Zoom)
	rowHeight := opts.Density.rowHeight()

	visible := make([]Item, 0, len(items))
	for _, item := range items {
		if item.Window.Start.IsZero() || item.Window.End.IsZero() {
			continue
		}
		if len(opts.StatusFilter) > 0 && !slices.Contains(opts.StatusFilter, item.Activity.Status) {
			continue
		}
		visible = append(visible, item)
	}

	dates := make([]domain.Date, 0, 2*len(visible))
	for _, item := range visible {
		dates = append(dates, item.Window.Start, item.Window.End)
	}
	rangeStart, rangeEnd := domain.RangeUnion(dates, opts.Today)
	rangeStart = rangeStart.AddDays(-rangePadDays)
	rangeEnd = rangeEnd.AddDays(rangePadDays)

	totalDays := rangeStart.DaysUntil(rangeEnd)
	if totalDays < 1 {
		totalDays = 1
	}

	layout := &Layout{
		Scale:      opts.Scale,
		DayWidth:   dayWidth,
		RowHeight:  rowHeight,
		RangeStart: rangeStart,
		RangeEnd:   rangeEnd,
		TotalDays:  totalDays,
		WidthPx:    float64(totalDays) * dayWidth,
		barsByID:   make(map[string]Bar, len(visible)),
	}
	layout.Bands = buildBands(opts.Scale, rangeStart, totalDays, dayWidth, opts.Today)

	layout.Bars = make([]Bar, 0, len(visible))
	for row, item := range visible {
		days := float64(max(0, rangeStart.DaysUntil(item.Window.Start)))
		span := float64(max(1, item.Window.Start.DaysUntil(item.Window.End)+1))
		bar := Bar{
			ActivityID:      item.Activity.ID,
			Name:            item.Activity.Name,
			Status:          item.Activity.Status,
			ProgressPercent: item.Activity.ProgressPercent,
			Window:          item.Window,
			Pending:         item.Pending,
			RowIndex:        row,
			LeftPx:          days * dayWidth,
			WidthPx:         span * dayWidth,
			TopPx:           float64(row) * rowHeight,
		}
		layout.Bars = append(layout.Bars, bar)
		layout.barsByID[bar.ActivityID] = bar
	}
	return layout
}

// buildBands constructs the header columns for one scale.
func buildBands(scale Scale, rangeStart domain.Date, totalDays int, dayWidth float64, today domain.Date) []Band {
	switch scale {
	case ScaleWeek:
		return weekBands(rangeStart, totalDays, dayWidth)
	case ScaleMonth:
		return monthBands(rangeStart, totalDays, dayWidth)
	default:
		return dayBands(rangeStart, totalDays, dayWidth, today)
	}
}

// dayBands emits one column per calendar day.
func dayBands(rangeStart domain.Date, totalDays int, dayWidth float64, today domain.Date) []Band {
	bands := make([]Band, 0, totalDays)
	for i := 0; i < totalDays; i++ {
		d := rangeStart.AddDays(i)
		bands = append(bands, Band{
			Label:     fmt.Sprintf("%d", d.Day()),
			Start:     d,
			Days:      1,
			WidthPx:   dayWidth,
			IsToday:   d.Equal(today),
			IsWeekend: d.IsWeekend(),
		})
	}
	return bands
}

// weekBands emits one column per week-number run.
func weekBands(rangeStart domain.Date, totalDays int, dayWidth float64) []Band {
	bands := []Band{}
	for i := 0; i < totalDays; i++ {
		d := rangeStart.AddDays(i)
		week := weekNumber(d)
		if len(bands) > 0 && bands[len(bands)-1].Label == fmt.Sprintf("W%d", week) && sameYear(bands[len(bands)-1].Start, d) {
			bands[len(bands)-1].Days++
			bands[len(bands)-1].WidthPx += dayWidth
			continue
		}
		bands = append(bands, Band{
			Label:   fmt.Sprintf("W%d", week),
			Start:   d,
			Days:    1,
			WidthPx: dayWidth,
		})
	}
	return bands
}

// weekNumber computes the calendar week: ceil((dayOfYear + Jan1Weekday + 1) / 7).
func weekNumber(d domain.Date) int {
	jan1 := domain.NewDate(d.Year(), time.January, 1)
	return (d.YearDay() + int(jan1.Weekday()) + 1 + 6) / 7
}

// sameYear reports whether two dates share a calendar year.
func sameYear(a, b domain.Date) bool {
	return a.Year() == b.Year()
}

// monthBands emits one column per calendar month, sized by the days of that
// month falling inside the visible range.
func monthBands(rangeStart domain.Date, totalDays int, dayWidth float64) []Band {
	bands := []Band{}
	for i := 0; i < totalDays; i++ {
		d := rangeStart.AddDays(i)
		label := fmt.Sprintf("%s %d", d.Month().String()[:3], d.Year())
		if len(bands) > 0 && bands[len(bands)-1].Label == label {
			bands[len(bands)-1].Days++
			bands[len(bands)-1].WidthPx += dayWidth
			continue
		}
		bands = append(bands, Band{
			Label:   label,
			Start:   d,
			Days:    1,
			WidthPx: dayWidth,
		})
	}
	return bands
}
