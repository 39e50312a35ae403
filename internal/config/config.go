package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kk-code-lab/spage/internal/line"
)

// InterfaceMode selects how output reaches the terminal.
type InterfaceMode string

const (
	// FullScreen always runs the interactive pager.
	FullScreen InterfaceMode = "full_screen"
	// Direct copies content to stdout without paging.
	Direct InterfaceMode = "direct"
	// Hybrid copies content directly when it ends within one screen and
	// pages otherwise.
	Hybrid InterfaceMode = "hybrid"
	// Delayed behaves like Hybrid but starts paging once InterfaceDelay
	// passes without the content ending.
	Delayed InterfaceMode = "delayed"
)

// ParseInterfaceMode parses a mode name. Dashes are accepted for
// underscores.
func ParseInterfaceMode(s string) (InterfaceMode, error) {
	mode := InterfaceMode(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	switch mode {
	case FullScreen, Direct, Hybrid, Delayed:
		return mode, nil
	case "":
		return FullScreen, nil
	}
	return "", fmt.Errorf("unknown interface_mode %q", s)
}

// Config is the effective pager configuration. It is immutable once Load
// returns.
type Config struct {
	InterfaceMode   InterfaceMode       `mapstructure:"interface_mode" yaml:"interface_mode"`
	InterfaceDelay  time.Duration       `mapstructure:"interface_delay" yaml:"interface_delay"`
	ScrollPastEOF   bool                `mapstructure:"scroll_past_eof" yaml:"scroll_past_eof"`
	ReadAheadLines  int                 `mapstructure:"read_ahead_lines" yaml:"read_ahead_lines"`
	FollowFiles     bool                `mapstructure:"follow_files" yaml:"follow_files"`
	Wrap            string              `mapstructure:"wrap" yaml:"wrap"`
	LineNumbers     bool                `mapstructure:"line_numbers" yaml:"line_numbers"`
	RefreshInterval time.Duration       `mapstructure:"refresh_interval" yaml:"refresh_interval"`
	LineCacheLines  int                 `mapstructure:"line_cache_lines" yaml:"line_cache_lines"`
	MemoryWarnBytes int64               `mapstructure:"memory_warn_bytes" yaml:"memory_warn_bytes"`
	HistoryPath     string              `mapstructure:"history_path" yaml:"history_path"`
	Keys            map[string][]string `mapstructure:"keys" yaml:"keys"`
	Log             LogConfig           `mapstructure:"log" yaml:"log"`
}

// LogConfig controls the diagnostic log.
type LogConfig struct {
	File  string `mapstructure:"file" yaml:"file"`
	Level string `mapstructure:"level" yaml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	history := ""
	if dir, err := os.UserCacheDir(); err == nil {
		history = filepath.Join(dir, "spage", "history.db")
	}
	return Config{
		InterfaceMode:   FullScreen,
		InterfaceDelay:  2 * time.Second,
		ScrollPastEOF:   false,
		ReadAheadLines:  1000,
		FollowFiles:     false,
		Wrap:            "char",
		LineNumbers:     false,
		RefreshInterval: 30 * time.Millisecond,
		LineCacheLines:  line.DefaultCacheLines,
		MemoryWarnBytes: 1 << 30,
		HistoryPath:     history,
		Keys:            map[string][]string{},
		Log: LogConfig{
			File:  "",
			Level: "info",
		},
	}
}

// WrapMode returns the parsed wrap setting.
func (c Config) WrapMode() line.WrapMode {
	mode, err := line.ParseWrap(c.Wrap)
	if err != nil {
		return line.WrapChar
	}
	return mode
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if _, err := ParseInterfaceMode(string(c.InterfaceMode)); err != nil {
		return err
	}
	if _, err := line.ParseWrap(c.Wrap); err != nil {
		return fmt.Errorf("wrap: %w", err)
	}
	if c.ReadAheadLines < 0 {
		return fmt.Errorf("read_ahead_lines must not be negative")
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("refresh_interval must be positive")
	}
	if c.InterfaceDelay < 0 {
		return fmt.Errorf("interface_delay must not be negative")
	}
	if c.LineCacheLines <= 0 {
		return fmt.Errorf("line_cache_lines must be positive")
	}
	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "", "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level %q is not one of trace, debug, info, warn, error", c.Log.Level)
	}
	return nil
}

// DefaultPath returns the standard config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "spage", "config.yaml"), nil
}
