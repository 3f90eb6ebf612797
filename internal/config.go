package internal

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/cdir/internal/search"
	"github.com/starford/cdir/internal/suggest"
	"github.com/starford/cdir/internal/theme"
	"github.com/starford/cdir/internal/ui"
)

// Config represents the application configuration.
type Config struct {
	App         ApplicationConfig `yaml:"app"`
	SQLite      SQLiteConfig      `yaml:"sqlite"`
	UI          UIConfig          `yaml:"ui"`
	Suggestions SuggestionsConfig `yaml:"suggestions"`
	Theme       theme.Theme       `yaml:"theme"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.SQLite.Validate(); err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	if err := c.UI.Validate(); err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	if err := c.Suggestions.Validate(); err != nil {
		return fmt.Errorf("suggestions: %w", err)
	}
	if err := c.Theme.Validate(); err != nil {
		return fmt.Errorf("theme: %w", err)
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	// LogFile receives the JSON log. Empty means stderr.
	LogFile string `yaml:"log_file"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return nil
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// UIConfig holds navigator and display settings.
type UIConfig struct {
	SearchMode string `yaml:"search_mode"`
	// DateFormat is a Go time layout.
	DateFormat       string `yaml:"date_format"`
	PageSize         int    `yaml:"page_size"`
	LargeStep        int    `yaml:"large_step"`
	MaxWidth         int    `yaml:"max_width"`
	IncludeShortcuts bool   `yaml:"include_shortcuts"`
}

// Validate validates the UI configuration.
func (c *UIConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SearchMode, validation.In("exact", "fuzzy")),
		validation.Field(&c.DateFormat, validation.Required),
		validation.Field(&c.PageSize, validation.Required, validation.Min(1)),
		validation.Field(&c.LargeStep, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxWidth, validation.Min(0)),
	)
}

// Navigator converts the settings for the interactive session.
func (c *UIConfig) Navigator() (ui.Config, error) {
	mode, err := search.ParseMode(c.SearchMode)
	if err != nil {
		return ui.Config{}, err
	}
	return ui.Config{
		SearchMode:       mode,
		DateFormat:       c.DateFormat,
		PageSize:         c.PageSize,
		LargeStep:        c.LargeStep,
		MaxWidth:         c.MaxWidth,
		IncludeShortcuts: c.IncludeShortcuts,
	}, nil
}

// SuggestionsConfig holds the smart suggestion settings.
type SuggestionsConfig struct {
	Enabled      bool            `yaml:"enabled"`
	Count        int             `yaml:"count"`
	Lookback     time.Duration   `yaml:"lookback"`
	HalfLife     time.Duration   `yaml:"half_life"`
	FollowWindow int             `yaml:"follow_window"`
	Weights      suggest.Weights `yaml:"weights"`
}

// Validate validates the suggestion configuration.
func (c *SuggestionsConfig) Validate() error {
	countRules := []validation.Rule{validation.Min(0)}
	if c.Enabled {
		countRules = append(countRules, validation.Required)
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Count, countRules...),
		validation.Field(&c.Lookback, validation.Min(time.Duration(0))),
		validation.Field(&c.HalfLife, validation.Required, validation.Min(time.Minute)),
		validation.Field(&c.FollowWindow, validation.Min(0)),
		validation.Field(&c.Weights),
	)
}

// Ranking converts the settings for the suggestion engine.
func (c *SuggestionsConfig) Ranking() suggest.Config {
	return suggest.Config{
		Limit:        c.Count,
		Lookback:     c.Lookback,
		HalfLife:     c.HalfLife,
		FollowWindow: c.FollowWindow,
		Weights:      c.Weights,
	}
}

// ExpandPaths replaces a leading "~" in the configured file paths with the
// user's home directory.
func (c *Config) ExpandPaths() {
	c.App.LogFile = expandHome(c.App.LogFile)
	c.SQLite.Path = expandHome(c.SQLite.Path)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	data := dataDir()
	sg := suggest.DefaultConfig()
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelWarn,
			LogFile:  filepath.Join(data, "cdir.log"),
		},
		SQLite: SQLiteConfig{
			Path: filepath.Join(data, "cdir.db"),
		},
		UI: UIConfig{
			SearchMode:       "exact",
			DateFormat:       "02-Jan-06 15:04:05",
			PageSize:         20,
			LargeStep:        10,
			IncludeShortcuts: true,
		},
		Suggestions: SuggestionsConfig{
			Count:        sg.Limit,
			Lookback:     sg.Lookback,
			HalfLife:     sg.HalfLife,
			FollowWindow: sg.FollowWindow,
			Weights:      sg.Weights,
		},
		Theme: theme.Default(),
	}
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/cdir/config.yaml, falling
// back to ~/.config/cdir/config.yaml.
func DefaultConfigPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		dir = filepath.Join(homeDir(), ".config")
	}
	return filepath.Join(dir, "cdir", "config.yaml")
}

func dataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		dir = filepath.Join(homeDir(), ".local", "share")
	}
	return filepath.Join(dir, "cdir")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(p string) string {
	if p == "~" {
		return homeDir()
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(homeDir(), p[2:])
	}
	return p
}
