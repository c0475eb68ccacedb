package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sha1n/docindex/internal/ingest"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment variable the settings are read from
	EnvPrefix = "DOCINDEX"

	DefaultWorkers       = ingest.DefaultWorkers
	DefaultLogLevel      = "info"
	DefaultWatchDebounce = 2 * time.Second
	DefaultLockTimeout   = 30 * time.Second
)

// IndexSettings configuration for the search index
type IndexSettings struct {
	Dir         string        `mapstructure:"dir"`
	LockTimeout time.Duration `mapstructure:"lock_timeout"`
}

// Settings application settings
type Settings struct {
	InputDir      string        `mapstructure:"input_dir"`
	Watch         bool          `mapstructure:"watch"`
	NoIndex       bool          `mapstructure:"no_index"`
	Workers       int           `mapstructure:"workers"`
	LogLevel      string        `mapstructure:"log_level"`
	WatchDebounce time.Duration `mapstructure:"watch_debounce"`
	Index         IndexSettings `mapstructure:"index"`
}

// settingKeys maps every setting to the CLI flag that overrides it
var settingKeys = map[string]string{
	"input_dir":          "input-dir",
	"watch":              "watch",
	"no_index":           "no-index",
	"workers":            "workers",
	"log_level":          "log-level",
	"watch_debounce":     "watch-debounce",
	"index.dir":          "index-dir",
	"index.lock_timeout": "index-lock-timeout",
}

// LoadSettings loads settings from environment variables and optional .env file
func LoadSettings() (*Settings, error) {
	return LoadSettingsWithFlags(nil)
}

// LoadSettingsWithFlags loads settings with optional CLI flag overrides.
// Priority: CLI flags > environment variables > .env file > defaults.
// If flags is nil, only env vars and defaults are used.
func LoadSettingsWithFlags(flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()

	v.SetDefault("input_dir", "")
	v.SetDefault("watch", false)
	v.SetDefault("no_index", false)
	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("watch_debounce", DefaultWatchDebounce)
	v.SetDefault("index.dir", defaultIndexDir())
	v.SetDefault("index.lock_timeout", DefaultLockTimeout)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, flag := range settingKeys {
		_ = v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")))

		// Unregistered flags are left to env and defaults
		if flags != nil {
			if f := flags.Lookup(flag); f != nil {
				_ = v.BindPFlag(key, f)
			}
		}
	}

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // Ignore error if .env doesn't exist

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, err
	}

	settings.InputDir = expandHomeDir(strings.TrimSpace(settings.InputDir))
	settings.Index.Dir = expandHomeDir(strings.TrimSpace(settings.Index.Dir))
	settings.LogLevel = strings.ToLower(strings.TrimSpace(settings.LogLevel))

	return &settings, nil
}

// defaultIndexDir returns the default location of the search index
func defaultIndexDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".docindex", "documents.bleve")
	}
	return filepath.Join(home, ".docindex", "documents.bleve")
}

// expandHomeDir expands ~ to the user's home directory
func expandHomeDir(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
}

// ParseLogLevel parses a level name such as "debug" or "warn".
func ParseLogLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log-level %q", name)
	}
	return level, nil
}

// ValidateSettings checks the settings of an indexing run.
func ValidateSettings(s *Settings) error {
	if s.InputDir == "" {
		return errors.New("input-dir is required")
	}
	return ValidateServeSettings(s)
}

// ValidateServeSettings checks the settings shared by indexing runs and the
// tool server, where the input directory arrives with each request.
func ValidateServeSettings(s *Settings) error {
	if s.Workers <= 0 {
		return errors.New("workers must be positive")
	}

	if s.Watch && s.WatchDebounce <= 0 {
		return errors.New("watch-debounce must be positive")
	}

	if _, err := ParseLogLevel(s.LogLevel); err != nil {
		return err
	}

	if !s.NoIndex {
		if s.Index.Dir == "" {
			return errors.New("index-dir cannot be empty")
		}
		if s.Index.LockTimeout <= 0 {
			return errors.New("index-lock-timeout must be positive")
		}
	}

	return nil
}
