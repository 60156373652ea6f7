// Package tui renders the interactive timeline board: one row per activity,
// bars on a shared date axis, pending edits drawn over committed dates until
// the user commits or discards them.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"
	"github.com/evanlind/taktplan/internal/app"
	"github.com/evanlind/taktplan/internal/domain"
	"github.com/evanlind/taktplan/internal/schedule"
	"github.com/evanlind/taktplan/internal/session"
	"github.com/evanlind/taktplan/internal/timeline"
)

// Service represents service data used by this package.
type Service interface {
	ListProjects(context.Context) ([]domain.Project, error)
	ProjectSchedule(context.Context, string) (app.ScheduleView, error)
	ApplySuggestion(ctx context.Context, activityID string) (domain.Activity, error)
	SetProjectLocked(ctx context.Context, id string, locked bool) (domain.Project, error)
	UpdateActivitySchedule(ctx context.Context, activityID string, start, end domain.Date, durationDays int, override bool) error
}

// inputMode represents a selectable mode.
type inputMode int

// modeBoard and related constants define package defaults.
const (
	modeBoard inputMode = iota
	modeProjectPicker
	modeActivityInfo
)

// nameColumnWidth fixes the label gutter left of the chart.
const nameColumnWidth = 22

// pxPerCell converts layout pixels into terminal cells.
const pxPerCell = 10.0

var (
	styleTitle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	styleBand     = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	styleSelected = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	styleBar      = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	stylePending  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	styleConflict = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	styleDim      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	styleStatus   = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
)

// Model represents model data used by this package.
type Model struct {
	svc Service

	ready  bool
	width  int
	height int
	err    error

	status string

	help help.Model
	keys keyMap
	md   markdownRenderer

	projects         []domain.Project
	selectedProject  int
	pendingProjectID string

	view app.ScheduleView
	sess *session.SchedulingSession

	selected int
	mode     inputMode

	projectPickerIndex int
	infoActivityID     string

	scale        timeline.Scale
	zoom         float64
	density      timeline.Density
	statusFilter []domain.Status
	today        domain.Date
}

// loadedMsg carries message data through update handling.
type loadedMsg struct {
	projects        []domain.Project
	selectedProject int
	view            app.ScheduleView
	err             error
}

// actionMsg carries message data through update handling.
type actionMsg struct {
	err       error
	status    string
	reload    bool
	projectID string
}

// yankedMsg reports the clipboard copy result.
type yankedMsg struct {
	err error
}

// NewModel constructs a new value for this package.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		svc:     svc,
		status:  "loading...",
		help:    h,
		keys:    newKeyMap(),
		scale:   timeline.ScaleDay,
		zoom:    1.0,
		density: timeline.DensityComfortable,
		today:   domain.DateOf(time.Now()),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return m.loadData
}

// loadData fetches projects and the computed schedule for the active project.
func (m Model) loadData() tea.Msg {
	ctx := context.Background()
	projects, err := m.svc.ListProjects(ctx)
	if err != nil {
		return loadedMsg{err: err}
	}
	if len(projects) == 0 {
		return loadedMsg{}
	}

	selected := m.selectedProject
	if m.pendingProjectID != "" {
		for idx, p := range projects {
			if p.ID == m.pendingProjectID {
				selected = idx
				break
			}
		}
	}
	if selected < 0 || selected >= len(projects) {
		selected = 0
	}
	view, err := m.svc.ProjectSchedule(ctx, projects[selected].ID)
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{projects: projects, selectedProject: selected, view: view}
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.projects = msg.projects
		m.selectedProject = msg.selectedProject
		m.pendingProjectID = ""
		m.view = msg.view
		activities := m.activities()
		if m.sess == nil {
			ids := make([]string, 0, len(activities))
			for _, a := range activities {
				ids = append(ids, a.ID)
			}
			m.sess = session.New(ids)
		} else {
			m.sess.Reconcile(activities)
		}
		m.clampSelection()
		if m.status == "" || m.status == "loading..." {
			m.status = "ready"
		}
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		if msg.status != "" {
			m.status = msg.status
		}
		if msg.projectID != "" {
			m.pendingProjectID = msg.projectID
		}
		if msg.reload {
			return m, m.loadData
		}
		return m, nil

	case yankedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("copy failed: %v", msg.err)
		} else {
			m.status = "copied activity summary"
		}
		return m, nil

	case tea.KeyPressMsg:
		switch m.mode {
		case modeProjectPicker:
			return m.updateProjectPicker(msg)
		case modeActivityInfo:
			return m.updateActivityInfo(msg)
		default:
			return m.updateBoard(msg)
		}
	}
	return m, nil
}

// updateBoard handles keys on the timeline board.
func (m Model) updateBoard(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.reload):
		m.status = "reloading..."
		return m, m.loadData

	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.rowUp):
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case key.Matches(msg, m.keys.rowDown):
		if m.selected < len(m.rowIDs())-1 {
			m.selected++
		}
		return m, nil

	case key.Matches(msg, m.keys.shiftEarlier):
		return m.editSelected(func(id string, dayWidth float64) bool {
			return m.sess.MoveBy(id, -dayWidth, dayWidth)
		})

	case key.Matches(msg, m.keys.shiftLater):
		return m.editSelected(func(id string, dayWidth float64) bool {
			return m.sess.MoveBy(id, dayWidth, dayWidth)
		})

	case key.Matches(msg, m.keys.growRight):
		return m.editSelected(func(id string, dayWidth float64) bool {
			return m.sess.ResizeRightBy(id, dayWidth, dayWidth)
		})

	case key.Matches(msg, m.keys.shrinkRight):
		return m.editSelected(func(id string, dayWidth float64) bool {
			return m.sess.ResizeRightBy(id, -dayWidth, dayWidth)
		})

	case key.Matches(msg, m.keys.growLeft):
		return m.editSelected(func(id string, dayWidth float64) bool {
			return m.sess.ResizeLeftBy(id, -dayWidth, dayWidth)
		})

	case key.Matches(msg, m.keys.shrinkLeft):
		return m.editSelected(func(id string, dayWidth float64) bool {
			return m.sess.ResizeLeftBy(id, dayWidth, dayWidth)
		})

	case key.Matches(msg, m.keys.reorderUp):
		if id, ok := m.selectedID(); ok && m.sess.ReorderTo(id, m.selected-1) {
			m.selected--
			m.status = "row moved"
		}
		return m, nil

	case key.Matches(msg, m.keys.reorderDown):
		if id, ok := m.selectedID(); ok && m.sess.ReorderTo(id, m.selected+1) {
			m.selected++
			m.status = "row moved"
		}
		return m, nil

	case key.Matches(msg, m.keys.commit):
		if m.sess == nil || !m.sess.Dirty() {
			m.status = "nothing to commit"
			return m, nil
		}
		return m, m.flushCmd()

	case key.Matches(msg, m.keys.discard):
		if id, ok := m.selectedID(); ok {
			if _, pending := m.sess.Pending(id); pending {
				m.sess.Discard(id)
				m.status = "change discarded"
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.discardAll):
		if m.sess != nil && m.sess.Dirty() {
			m.sess.DiscardAll()
			m.status = "all changes discarded"
		}
		return m, nil

	case key.Matches(msg, m.keys.suggest):
		if id, ok := m.selectedID(); ok {
			return m, m.applySuggestionCmd(id)
		}
		return m, nil

	case key.Matches(msg, m.keys.zoomIn):
		m.zoom = timeline.ClampZoom(m.zoom + 0.1)
		return m, nil

	case key.Matches(msg, m.keys.zoomOut):
		m.zoom = timeline.ClampZoom(m.zoom - 0.1)
		return m, nil

	case key.Matches(msg, m.keys.cycleScale):
		switch m.scale {
		case timeline.ScaleDay:
			m.scale = timeline.ScaleWeek
		case timeline.ScaleWeek:
			m.scale = timeline.ScaleMonth
		default:
			m.scale = timeline.ScaleDay
		}
		return m, nil

	case key.Matches(msg, m.keys.toggleDensity):
		if m.density == timeline.DensityCompact {
			m.density = timeline.DensityComfortable
		} else {
			m.density = timeline.DensityCompact
		}
		return m, nil

	case key.Matches(msg, m.keys.jumpToday):
		for idx, id := range m.rowIDs() {
			entry, ok := m.entryByID(id)
			if !ok {
				continue
			}
			window, _, scheduled := m.effectiveWindow(entry.Activity)
			if scheduled && !m.today.Before(window.Start) && m.today.Before(window.End) {
				m.selected = idx
				m.status = "jumped to today's work"
				return m, nil
			}
		}
		m.status = "no activity spans today"
		return m, nil

	case key.Matches(msg, m.keys.activityInfo):
		if id, ok := m.selectedID(); ok {
			m.infoActivityID = id
			m.mode = modeActivityInfo
		}
		return m, nil

	case key.Matches(msg, m.keys.yank):
		if entry, ok := m.selectedEntry(); ok {
			summary := m.activitySummary(entry)
			return m, func() tea.Msg {
				return yankedMsg{err: clipboard.WriteAll(summary)}
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.projects):
		if len(m.projects) > 1 {
			m.projectPickerIndex = m.selectedProject
			m.mode = modeProjectPicker
		}
		return m, nil

	case key.Matches(msg, m.keys.toggleLock):
		if len(m.projects) == 0 {
			return m, nil
		}
		project := m.projects[m.selectedProject]
		return m, m.toggleLockCmd(project.ID, !project.Locked)
	}
	return m, nil
}

// editSelected opens a drag for the selected activity and applies one edit.
func (m Model) editSelected(edit func(id string, dayWidth float64) bool) (tea.Model, tea.Cmd) {
	entry, ok := m.selectedEntry()
	if !ok {
		return m, nil
	}
	if m.projects[m.selectedProject].Locked {
		m.status = "project is locked"
		return m, nil
	}
	committed, ok := committedWindow(entry.Activity)
	if !ok {
		m.status = "no dates yet; press g to apply the suggestion"
		return m, nil
	}
	m.sess.BeginDrag(entry.Activity.ID, committed)
	dayWidth := m.computeLayout().DayWidth
	if edit(entry.Activity.ID, dayWidth) {
		if _, pending := m.sess.Pending(entry.Activity.ID); pending {
			m.status = "pending change (w to commit, u to discard)"
		} else {
			m.status = "back to saved dates"
		}
	}
	return m, nil
}

// updateProjectPicker handles keys in the project picker overlay.
func (m Model) updateProjectPicker(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.mode = modeBoard
		return m, nil
	case "k", "up":
		if m.projectPickerIndex > 0 {
			m.projectPickerIndex--
		}
		return m, nil
	case "j", "down":
		if m.projectPickerIndex < len(m.projects)-1 {
			m.projectPickerIndex++
		}
		return m, nil
	case "enter":
		m.mode = modeBoard
		if m.projectPickerIndex != m.selectedProject {
			m.pendingProjectID = m.projects[m.projectPickerIndex].ID
			m.sess = nil
			m.selected = 0
			m.status = "loading..."
			return m, m.loadData
		}
		return m, nil
	}
	return m, nil
}

// updateActivityInfo handles keys in the activity detail overlay.
func (m Model) updateActivityInfo(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "i", "enter":
		m.mode = modeBoard
		m.infoActivityID = ""
		return m, nil
	case "y":
		if entry, ok := m.entryByID(m.infoActivityID); ok {
			summary := m.activitySummary(entry)
			return m, func() tea.Msg {
				return yankedMsg{err: clipboard.WriteAll(summary)}
			}
		}
		return m, nil
	}
	return m, nil
}

// flushCmd commits every pending change and reloads.
func (m Model) flushCmd() tea.Cmd {
	sess := m.sess
	svc := m.svc
	return func() tea.Msg {
		if err := sess.Flush(context.Background(), svc); err != nil {
			return actionMsg{err: err, reload: true}
		}
		return actionMsg{status: "changes committed", reload: true}
	}
}

// applySuggestionCmd schedules one activity at its computed suggestion.
func (m Model) applySuggestionCmd(activityID string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		activity, err := svc.ApplySuggestion(context.Background(), activityID)
		if err != nil {
			return actionMsg{err: err}
		}
		if activity.DateOverride {
			return actionMsg{status: "manual date kept (override set)"}
		}
		return actionMsg{status: "suggestion applied", reload: true}
	}
}

// toggleLockCmd flips the schedule lock on one project.
func (m Model) toggleLockCmd(projectID string, locked bool) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		project, err := svc.SetProjectLocked(context.Background(), projectID, locked)
		if err != nil {
			return actionMsg{err: err}
		}
		status := "project unlocked"
		if project.Locked {
			status = "project locked"
		}
		return actionMsg{status: status, reload: true, projectID: projectID}
	}
}

// activities extracts the domain activities from the loaded view.
func (m Model) activities() []domain.Activity {
	out := make([]domain.Activity, 0, len(m.view.Activities))
	for _, entry := range m.view.Activities {
		out = append(out, entry.Activity)
	}
	return out
}

// rowIDs returns activity ids in presentation order.
func (m Model) rowIDs() []string {
	if m.sess == nil {
		return nil
	}
	return m.sess.Order()
}

// selectedID returns the id of the selected row.
func (m Model) selectedID() (string, bool) {
	ids := m.rowIDs()
	if m.selected < 0 || m.selected >= len(ids) {
		return "", false
	}
	return ids[m.selected], true
}

// selectedEntry returns the schedule entry for the selected row.
func (m Model) selectedEntry() (app.ActivitySchedule, bool) {
	id, ok := m.selectedID()
	if !ok {
		return app.ActivitySchedule{}, false
	}
	return m.entryByID(id)
}

// entryByID finds one schedule entry.
func (m Model) entryByID(id string) (app.ActivitySchedule, bool) {
	for _, entry := range m.view.Activities {
		if entry.Activity.ID == id {
			return entry, true
		}
	}
	return app.ActivitySchedule{}, false
}

// clampSelection keeps the row cursor inside the loaded rows.
func (m *Model) clampSelection() {
	rows := len(m.rowIDs())
	if rows == 0 {
		m.selected = 0
		return
	}
	if m.selected >= rows {
		m.selected = rows - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

// committedWindow returns an activity's saved window.
func committedWindow(a domain.Activity) (schedule.Window, bool) {
	if !a.Scheduled() {
		return schedule.Window{}, false
	}
	return schedule.Window{Start: *a.StartDate, End: *a.EndDate}, true
}

// effectiveWindow returns the window the chart should draw: the pending
// proposal when one exists, the committed dates otherwise.
func (m Model) effectiveWindow(a domain.Activity) (schedule.Window, bool, bool) {
	if m.sess != nil {
		if p, ok := m.sess.Pending(a.ID); ok {
			return p.Proposed, true, true
		}
	}
	w, ok := committedWindow(a)
	return w, false, ok
}

// computeLayout runs one layout pass over the effective windows in
// presentation order.
func (m Model) computeLayout() *timeline.Layout {
	byID := make(map[string]app.ActivitySchedule, len(m.view.Activities))
	for _, entry := range m.view.Activities {
		byID[entry.Activity.ID] = entry
	}
	items := make([]timeline.Item, 0, len(m.view.Activities))
	for _, id := range m.rowIDs() {
		entry, ok := byID[id]
		if !ok {
			continue
		}
		window, pending, scheduled := m.effectiveWindow(entry.Activity)
		if !scheduled {
			continue
		}
		items = append(items, timeline.Item{
			Activity: entry.Activity,
			Window:   window,
			Pending:  pending,
		})
	}
	return timeline.Compute(items, timeline.Options{
		Scale:        m.scale,
		Zoom:         m.zoom,
		Density:      m.density,
		Today:        m.today,
		StatusFilter: m.statusFilter,
	})
}

// overlaySnapshot builds the validation snapshot with pending edits applied.
func (m Model) overlaySnapshot() *schedule.Snapshot {
	snap := schedule.SnapshotOf(m.activities())
	if m.sess != nil {
		m.sess.Overlay(snap)
	}
	return snap
}

// conflictFor validates one activity's effective window against its
// predecessor edges over the overlay snapshot.
func (m Model) conflictFor(a domain.Activity, snap *schedule.Snapshot) *schedule.Conflict {
	window, _, ok := m.effectiveWindow(a)
	if !ok {
		return nil
	}
	var edges []domain.Dependency
	for _, d := range m.view.Dependencies {
		if d.SuccessorID == a.ID {
			edges = append(edges, d)
		}
	}
	return schedule.Validate(window, edges, snap)
}

// activitySummary formats one activity for the clipboard.
func (m Model) activitySummary(entry app.ActivitySchedule) string {
	a := entry.Activity
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", a.Name, a.Status.DisplayName())
	if window, pending, ok := m.effectiveWindow(a); ok {
		marker := ""
		if pending {
			marker = " (pending)"
		}
		fmt.Fprintf(&b, "%s .. %s, %d days%s\n", window.Start, window.End, window.Days(), marker)
	} else {
		fmt.Fprintf(&b, "unscheduled, %d days planned\n", a.DurationDays)
	}
	fmt.Fprintf(&b, "suggested start: %s\n", entry.SuggestedStart)
	if a.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", a.Description)
	}
	return b.String()
}

// View renders the model.
func (m Model) View() tea.View {
	if !m.ready {
		return tea.NewView("loading...")
	}
	if m.err != nil {
		return tea.NewView(styleConflict.Render(fmt.Sprintf("error: %v", m.err)) + "\n\npress r to reload, q to quit")
	}
	if len(m.projects) == 0 {
		return tea.NewView("no projects yet\n\npress q to quit")
	}
	switch m.mode {
	case modeProjectPicker:
		return tea.NewView(m.viewProjectPicker())
	case modeActivityInfo:
		return tea.NewView(m.viewActivityInfo())
	}
	return tea.NewView(m.viewBoard())
}

// viewBoard renders the timeline chart.
func (m Model) viewBoard() string {
	project := m.projects[m.selectedProject]
	layout := m.computeLayout()
	snap := m.overlaySnapshot()
	cells := cellsPerDay(layout.DayWidth)

	var b strings.Builder
	b.WriteString(m.renderTitle(project))
	b.WriteString("\n")
	b.WriteString(m.renderBands(layout, cells))
	b.WriteString("\n")

	byID := make(map[string]app.ActivitySchedule, len(m.view.Activities))
	for _, entry := range m.view.Activities {
		byID[entry.Activity.ID] = entry
	}
	for row, id := range m.rowIDs() {
		entry, ok := byID[id]
		if !ok {
			continue
		}
		b.WriteString(m.renderRow(row, entry, layout, snap, cells))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter(snap))
	return b.String()
}

// renderTitle renders the project header line.
func (m Model) renderTitle(project domain.Project) string {
	title := styleTitle.Render(project.Name)
	meta := fmt.Sprintf("  %s ×%.1f %s", m.scale, m.zoom, m.density)
	if project.Locked {
		meta += "  [locked]"
	}
	if m.sess != nil && m.sess.Dirty() {
		pending := 0
		for _, id := range m.sess.Order() {
			if _, ok := m.sess.Pending(id); ok {
				pending++
			}
		}
		meta += styleConflict.Render(fmt.Sprintf("  %d unsaved", pending))
	}
	return title + styleDim.Render(meta)
}

// renderBands renders the header axis from the layout bands.
func (m Model) renderBands(layout *timeline.Layout, cells int) string {
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", nameColumnWidth))
	for _, band := range layout.Bands {
		width := band.Days * cells
		if width < 1 {
			width = 1
		}
		label := band.Label
		if label == "" {
			label = fmt.Sprintf("%d", band.Start.Day())
		}
		if len(label) > width {
			label = label[:width]
		}
		cell := label + strings.Repeat(" ", width-len(label))
		if band.IsToday {
			b.WriteString(styleSelected.Render(cell))
		} else if band.IsWeekend {
			b.WriteString(styleDim.Render(cell))
		} else {
			b.WriteString(styleBand.Render(cell))
		}
	}
	return b.String()
}

// renderRow renders one activity row: name gutter plus the bar track.
func (m Model) renderRow(row int, entry app.ActivitySchedule, layout *timeline.Layout, snap *schedule.Snapshot, cells int) string {
	a := entry.Activity
	name := truncateRunes(a.Name, nameColumnWidth-2)
	padded := name + strings.Repeat(" ", nameColumnWidth-2-len([]rune(name)))
	var gutter string
	if row == m.selected {
		gutter = styleSelected.Render("▸ " + padded)
	} else {
		gutter = "  " + padded
	}

	window, pending, scheduled := m.effectiveWindow(a)
	if !scheduled {
		return gutter + styleDim.Render(" (unscheduled, suggested "+entry.SuggestedStart.String()+")")
	}

	offset := layout.RangeStart.DaysUntil(window.Start)
	if offset < 0 {
		offset = 0
	}
	barDays := window.Days()
	track := strings.Repeat("·", offset*cells)
	bar := strings.Repeat("█", barDays*cells)
	rest := layout.TotalDays - offset - barDays
	if rest < 0 {
		rest = 0
	}

	barStyle := styleBar
	if pending {
		barStyle = stylePending
	}
	line := gutter + styleDim.Render(track) + barStyle.Render(bar) + styleDim.Render(strings.Repeat("·", rest*cells))
	if conflict := m.conflictFor(a, snap); conflict != nil {
		line += " " + styleConflict.Render("!")
	}
	return line
}

// renderFooter renders the status line, the selected row's conflict detail,
// and contextual help.
func (m Model) renderFooter(snap *schedule.Snapshot) string {
	var b strings.Builder
	if entry, ok := m.selectedEntry(); ok {
		if conflict := m.conflictFor(entry.Activity, snap); conflict != nil {
			b.WriteString(styleConflict.Render(conflict.Message()))
			b.WriteString("\n")
		}
	}
	b.WriteString(styleStatus.Render(m.status))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// viewProjectPicker renders the project picker overlay.
func (m Model) viewProjectPicker() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("Projects"))
	b.WriteString("\n\n")
	for idx, project := range m.projects {
		line := project.Name
		if project.Locked {
			line += " [locked]"
		}
		if idx == m.projectPickerIndex {
			b.WriteString(styleSelected.Render("▸ " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styleDim.Render("enter select · esc back"))
	return b.String()
}

// viewActivityInfo renders the activity detail overlay.
func (m Model) viewActivityInfo() string {
	entry, ok := m.entryByID(m.infoActivityID)
	if !ok {
		return "activity not found\n\npress esc to go back"
	}
	a := entry.Activity

	var b strings.Builder
	b.WriteString(styleTitle.Render(a.Name))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("status:    %s (%d%%)\n", a.Status.DisplayName(), a.ProgressPercent))
	if window, pending, scheduled := m.effectiveWindow(a); scheduled {
		marker := ""
		if pending {
			marker = stylePending.Render("  (pending)")
		}
		b.WriteString(fmt.Sprintf("dates:     %s .. %s (%d days)%s\n", window.Start, window.End, window.Days(), marker))
	} else {
		b.WriteString(fmt.Sprintf("dates:     unscheduled (%d days planned)\n", a.DurationDays))
	}
	b.WriteString(fmt.Sprintf("suggested: %s\n", entry.SuggestedStart))
	if a.DateOverride {
		b.WriteString("override:  manual dates pinned\n")
	}
	if entry.Conflict != nil {
		b.WriteString(styleConflict.Render("conflict:  " + entry.Conflict.Message()))
		b.WriteString("\n")
	}
	if a.Description != "" {
		width := m.width - 4
		if width < 24 {
			width = 72
		}
		b.WriteString("\n")
		b.WriteString(m.md.render(a.Description, width))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styleDim.Render("y copy · esc back"))
	return b.String()
}

// truncateRunes cuts s to at most n runes without splitting a multibyte
// character.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// cellsPerDay converts the layout day width into terminal cells.
func cellsPerDay(dayWidth float64) int {
	cells := int(dayWidth / pxPerCell)
	if cells < 1 {
		cells = 1
	}
	return cells
}
