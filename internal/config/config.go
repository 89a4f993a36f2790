// Package config handles loading and managing notmail configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the notmail configuration.
type Config struct {
	Notmuch NotmuchConfig `toml:"notmuch"`
	Compose ComposeConfig `toml:"compose"`
	View    ViewConfig    `toml:"view"`
	UI      UIConfig      `toml:"ui"`

	// Computed path (not from config file)
	HomeDir string `toml:"-"`
}

// NotmuchConfig holds indexing-service configuration.
type NotmuchConfig struct {
	Binary       string `toml:"binary"`        // notmuch binary path (default: from PATH)
	DefaultQuery string `toml:"default_query"` // search used when the search string is blank
}

// ComposeConfig holds mail composition configuration.
type ComposeConfig struct {
	Editor string `toml:"editor"` // external editor (default: $EDITOR, then vi)
	From   string `toml:"from"`   // From address for composed mail
}

// ViewConfig holds message-reading configuration.
type ViewConfig struct {
	Viewer    string `toml:"viewer"`     // external attachment viewer
	Converter string `toml:"converter"`  // html-to-text converter: "lynx" or "builtin"
	Lynx      string `toml:"lynx"`       // lynx binary path (default: from PATH)
	WrapWidth int    `toml:"wrap_width"` // column width for converted HTML
}

// UIConfig holds terminal UI configuration.
type UIConfig struct {
	TickMS     int    `toml:"tick_ms"`     // render tick interval in milliseconds
	TitleWidth int    `toml:"title_width"` // index subject column width
	LogFile    string `toml:"log_file"`    // divert logs here while the TUI owns the screen
}

// DefaultHome returns the default notmail home directory.
// Respects the NOTMAIL_HOME environment variable.
func DefaultHome() string {
	if h := os.Getenv("NOTMAIL_HOME"); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".notmail"
	}
	return filepath.Join(home, ".notmail")
}

// Default returns the built-in configuration without reading any file.
func Default() *Config {
	return &Config{
		HomeDir: DefaultHome(),
		Notmuch: NotmuchConfig{
			Binary:       "notmuch",
			DefaultQuery: "tag:inbox",
		},
		Compose: ComposeConfig{
			From: "notmail@localhost",
		},
		View: ViewConfig{
			Viewer:    "xdg-open",
			Converter: "lynx",
			WrapWidth: 80,
		},
		UI: UIConfig{
			TickMS:     250,
			TitleWidth: 45,
		},
	}
}

// Load reads the configuration from the specified file.
// If path is empty, uses the default location (~/.notmail/config.toml).
// A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = filepath.Join(cfg.HomeDir, "config.toml")
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg.applyEnv()
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.applyEnv()
	cfg.Notmuch.Binary = expandPath(cfg.Notmuch.Binary)
	cfg.View.Lynx = expandPath(cfg.View.Lynx)
	cfg.UI.LogFile = expandPath(cfg.UI.LogFile)

	return cfg, nil
}

// applyEnv fills settings whose defaults come from the environment.
func (c *Config) applyEnv() {
	if c.Compose.Editor == "" {
		c.Compose.Editor = os.Getenv("EDITOR")
	}
	if c.Compose.Editor == "" {
		c.Compose.Editor = "vi"
	}
}

// TickInterval returns the render tick interval.
func (c *Config) TickInterval() time.Duration {
	if c.UI.TickMS <= 0 {
		return 250 * time.Millisecond
	}
	return time.Duration(c.UI.TickMS) * time.Millisecond
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
