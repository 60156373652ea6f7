package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

type Config struct {
	Database DatabaseConfig `toml:"database"`
	Timeline TimelineConfig `toml:"timeline"`
	Server   ServerConfig   `toml:"server"`
	Logging  LoggingConfig  `toml:"logging"`
	Keys     KeyConfig      `toml:"keys"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type TimelineConfig struct {
	Scale    string   `toml:"scale"`   // day | week | month
	Zoom     float64  `toml:"zoom"`    // 0.3 .. 2.5; 0 means 1.0
	Density  string   `toml:"density"` // comfortable | compact
	Statuses []string `toml:"statuses"`
}

type ServerConfig struct {
	Bind        string `toml:"bind"`
	APIEndpoint string `toml:"api_endpoint"`
	MCPEndpoint string `toml:"mcp_endpoint"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type KeyConfig struct {
	CommitChanges  string `toml:"commit_changes"`
	DiscardChanges string `toml:"discard_changes"`
	ZoomIn         string `toml:"zoom_in"`
	ZoomOut        string `toml:"zoom_out"`
	CycleScale     string `toml:"cycle_scale"`
	ToggleDensity  string `toml:"toggle_density"`
	JumpToday      string `toml:"jump_today"`
}

// knownStatuses mirrors the activity workflow states accepted in filters.
var knownStatuses = []string{
	"pending",
	"work_in_progress",
	"ready_for_inspection",
	"awaiting_client_approval",
	"inspected",
	"closed",
}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Timeline: TimelineConfig{
			Scale:   "day",
			Zoom:    1.0,
			Density: "comfortable",
		},
		Server: ServerConfig{
			Bind:        "127.0.0.1:8080",
			APIEndpoint: "/api/v1",
			MCPEndpoint: "/mcp",
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
			},
		},
		Keys: KeyConfig{
			CommitChanges:  "w",
			DiscardChanges: "u",
			ZoomIn:         "+",
			ZoomOut:        "-",
			CycleScale:     "s",
			ToggleDensity:  "D",
			JumpToday:      "t",
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	c.Database.Path = strings.TrimSpace(c.Database.Path)
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	switch strings.TrimSpace(strings.ToLower(c.Timeline.Scale)) {
	case "", "day", "week", "month":
	default:
		return fmt.Errorf("invalid timeline.scale: %q", c.Timeline.Scale)
	}
	if c.Timeline.Zoom != 0 && (c.Timeline.Zoom < 0.3 || c.Timeline.Zoom > 2.5) {
		return fmt.Errorf("timeline.zoom must be within 0.3 and 2.5, got %v", c.Timeline.Zoom)
	}
	switch strings.TrimSpace(strings.ToLower(c.Timeline.Density)) {
	case "", "comfortable", "compact":
	default:
		return fmt.Errorf("invalid timeline.density: %q", c.Timeline.Density)
	}
	for i, status := range c.Timeline.Statuses {
		s := strings.TrimSpace(strings.ToLower(status))
		if s == "" {
			continue
		}
		if !slices.Contains(knownStatuses, s) {
			return fmt.Errorf("timeline.statuses[%d] references unknown status %q", i, s)
		}
	}

	switch strings.TrimSpace(strings.ToLower(c.Logging.Level)) {
	case "", "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	if strings.TrimSpace(c.Server.Bind) == "" {
		return errors.New("server.bind is required")
	}
	api := normalizeEndpointPath(c.Server.APIEndpoint)
	mcp := normalizeEndpointPath(c.Server.MCPEndpoint)
	if api != "" && api == mcp {
		return fmt.Errorf("server.api_endpoint and server.mcp_endpoint collide: %q", api)
	}

	return nil
}

// normalizeEndpointPath canonicalizes one endpoint path for collision checks.
func normalizeEndpointPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	return "/" + strings.Trim(path, "/")
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
