package tui

import (
	"strings"
	"unicode"

	"charm.land/bubbles/v2/key"
)

// keyMap represents key map data used by this package.
type keyMap struct {
	quit          key.Binding
	reload        key.Binding
	toggleHelp    key.Binding
	rowUp         key.Binding
	rowDown       key.Binding
	shiftEarlier  key.Binding
	shiftLater    key.Binding
	growRight     key.Binding
	shrinkRight   key.Binding
	growLeft      key.Binding
	shrinkLeft    key.Binding
	reorderUp     key.Binding
	reorderDown   key.Binding
	commit        key.Binding
	discard       key.Binding
	discardAll    key.Binding
	suggest       key.Binding
	zoomIn        key.Binding
	zoomOut       key.Binding
	cycleScale    key.Binding
	toggleDensity key.Binding
	jumpToday     key.Binding
	activityInfo  key.Binding
	yank          key.Binding
	projects      key.Binding
	toggleLock    key.Binding
}

// KeyConfig carries user-configured overrides for the rebindable board keys.
// Blank fields keep the defaults.
type KeyConfig struct {
	CommitChanges  string
	DiscardChanges string
	ZoomIn         string
	ZoomOut        string
	CycleScale     string
	ToggleDensity  string
	JumpToday      string
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:        key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		toggleHelp:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		rowUp:         key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "row up")),
		rowDown:       key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "row down")),
		shiftEarlier:  key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "shift bar earlier")),
		shiftLater:    key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "shift bar later")),
		growRight:     key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "extend end")),
		shrinkRight:   key.NewBinding(key.WithKeys("<"), key.WithHelp("<", "pull end in")),
		growLeft:      key.NewBinding(key.WithKeys("{"), key.WithHelp("{", "extend start")),
		shrinkLeft:    key.NewBinding(key.WithKeys("}"), key.WithHelp("}", "pull start in")),
		reorderUp:     key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "move row up")),
		reorderDown:   key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "move row down")),
		commit:        key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "commit pending")),
		discard:       key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "discard change")),
		discardAll:    key.NewBinding(key.WithKeys("U"), key.WithHelp("U", "discard all")),
		suggest:       key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "apply suggestion")),
		zoomIn:        key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		zoomOut:       key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "zoom out")),
		cycleScale:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "cycle scale")),
		toggleDensity: key.NewBinding(key.WithKeys("D", "shift+d"), key.WithHelp("D", "toggle density")),
		jumpToday:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "jump to today")),
		activityInfo:  key.NewBinding(key.WithKeys("i", "enter"), key.WithHelp("i/enter", "activity info")),
		yank:          key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy summary")),
		projects:      key.NewBinding(key.WithKeys("p", "P"), key.WithHelp("p/P", "project picker")),
		toggleLock:    key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "lock/unlock project")),
	}
}

// applyConfig rebinds the configurable actions from user config values.
func (k *keyMap) applyConfig(cfg KeyConfig) {
	configureBinding(&k.commit, cfg.CommitChanges, "w", "commit pending")
	configureBinding(&k.discard, cfg.DiscardChanges, "u", "discard change")
	configureBinding(&k.zoomIn, cfg.ZoomIn, "+", "zoom in")
	configureBinding(&k.zoomOut, cfg.ZoomOut, "-", "zoom out")
	configureBinding(&k.cycleScale, cfg.CycleScale, "s", "cycle scale")
	configureBinding(&k.toggleDensity, cfg.ToggleDensity, "D", "toggle density")
	configureBinding(&k.jumpToday, cfg.JumpToday, "t", "jump to today")
}

// configureBinding applies one configured key over a binding's defaults.
func configureBinding(b *key.Binding, configured, fallback, desc string) {
	keys, helpKey := parseBindingKeys(configured, fallback)
	b.SetKeys(keys...)
	b.SetHelp(helpKey, desc)
}

// parseBindingKeys resolves one configured key, falling back when blank. A
// single uppercase letter also matches its shift+<letter> form, and "+"
// also matches the unshifted "=".
func parseBindingKeys(configured, fallback string) ([]string, string) {
	k := strings.TrimSpace(configured)
	if k == "" {
		k = fallback
	}
	keys := []string{k}
	if r := []rune(k); len(r) == 1 && unicode.IsUpper(r[0]) {
		keys = append(keys, "shift+"+string(unicode.ToLower(r[0])))
	}
	if k == "+" {
		keys = append(keys, "=")
	}
	return keys, k
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.shiftEarlier, k.shiftLater, k.commit, k.discard, k.suggest, k.activityInfo, k.toggleHelp, k.quit,
	}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.rowUp, k.rowDown, k.shiftEarlier, k.shiftLater, k.growRight, k.shrinkRight, k.growLeft, k.shrinkLeft},
		{k.reorderUp, k.reorderDown, k.commit, k.discard, k.discardAll, k.suggest},
		{k.zoomIn, k.zoomOut, k.cycleScale, k.toggleDensity, k.jumpToday, k.activityInfo, k.yank, k.projects, k.toggleLock, k.reload, k.quit},
	}
}
