package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. SPAGE_WRAP=word or
// SPAGE_LOG_LEVEL=debug.
const EnvPrefix = "SPAGE"

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"mode":             "interface_mode",
	"scroll-past-eof":  "scroll_past_eof",
	"read-ahead":       "read_ahead_lines",
	"follow":           "follow_files",
	"wrap":             "wrap",
	"line-numbers":     "line_numbers",
	"refresh-interval": "refresh_interval",
	"history":          "history_path",
	"log-file":         "log.file",
	"log-level":        "log.level",
}

// Load reads configuration with precedence defaults < file < environment <
// flags. An empty path uses DefaultPath and tolerates a missing file; an
// explicit path must exist. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	explicit := path != ""
	if !explicit {
		defaultPath, err := DefaultPath()
		if err == nil {
			path = defaultPath
		}
	}

	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("interface_mode", string(cfg.InterfaceMode))
	v.SetDefault("interface_delay", cfg.InterfaceDelay)
	v.SetDefault("scroll_past_eof", cfg.ScrollPastEOF)
	v.SetDefault("read_ahead_lines", cfg.ReadAheadLines)
	v.SetDefault("follow_files", cfg.FollowFiles)
	v.SetDefault("wrap", cfg.Wrap)
	v.SetDefault("line_numbers", cfg.LineNumbers)
	v.SetDefault("refresh_interval", cfg.RefreshInterval)
	v.SetDefault("line_cache_lines", cfg.LineCacheLines)
	v.SetDefault("memory_warn_bytes", cfg.MemoryWarnBytes)
	v.SetDefault("history_path", cfg.HistoryPath)
	v.SetDefault("keys", cfg.Keys)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("log.level", cfg.Log.Level)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			missing := errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
			if !missing || explicit {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	mode, err := ParseInterfaceMode(string(cfg.InterfaceMode))
	if err != nil {
		return Config{}, err
	}
	cfg.InterfaceMode = mode
	cfg.HistoryPath = expandHome(cfg.HistoryPath)
	cfg.Log.File = expandHome(cfg.Log.File)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// Marshal renders cfg as YAML.
func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// WriteDefault writes the default config to path, refusing to replace an
// existing file unless overwrite is set.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		defaultPath, err := DefaultPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}
	data, err := Marshal(Default())
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
