package settings

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/akam1o/guidl/pkg/dsl"
	"github.com/akam1o/guidl/pkg/errors"
	"github.com/akam1o/guidl/pkg/logger"
)

const (
	// DefaultPath is the settings file used when -config is not given
	DefaultPath = "guidl.yaml"

	// DefaultWatchDebounce coalesces editor save bursts
	DefaultWatchDebounce = 200 * time.Millisecond

	// MaxDepthLimit caps max_depth to keep recursion bounded
	MaxDepthLimit = 4096
)

// Settings holds user preferences for the guidl tools
type Settings struct {
	// Verbose enables token dumps and rule-annotated diagnostics
	Verbose bool `yaml:"verbose"`
	// MaxDepth bounds Panel/Group nesting
	MaxDepth int `yaml:"max_depth"`
	// HistoryPath is the sqlite database for parse runs; empty disables history
	HistoryPath string `yaml:"history_path"`
	// ShellHistoryFile stores readline history for the interactive shell
	ShellHistoryFile string `yaml:"shell_history_file"`
	LogLevel         string `yaml:"log_level"`
	// WatchDebounce delays re-parsing after a file change
	WatchDebounce time.Duration `yaml:"watch_debounce"`
}

// Default returns the built-in settings
func Default() *Settings {
	return &Settings{
		Verbose:          true,
		MaxDepth:         dsl.DefaultMaxDepth,
		HistoryPath:      "",
		ShellHistoryFile: filepath.Join(os.TempDir(), "guidl_history"),
		LogLevel:         "warn",
		WatchDebounce:    DefaultWatchDebounce,
	}
}

// Load reads settings from a YAML file. Fields absent from the file keep
// their default values. A missing file at DefaultPath yields the defaults;
// any other missing path is an error.
func Load(path string, log *logger.Logger) (*Settings, error) {
	if log != nil {
		log.Debug("Loading settings", slog.String("path", path))
	}

	if path == "" {
		path = DefaultPath
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if path == DefaultPath {
			return Default(), nil
		}
		return nil, errors.New(
			errors.ErrCodeFileNotFound,
			fmt.Sprintf("Settings file not found: %s", path),
			"The specified settings file does not exist",
			"Create the settings file or specify a valid path with -config",
		)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.FileRead(path, err)
	}

	s, err := Decode(data)
	if err != nil {
		return nil, err
	}

	if log != nil {
		log.Info("Settings loaded",
			slog.String("path", path),
			slog.Bool("verbose", s.Verbose),
			slog.Int("max_depth", s.MaxDepth),
		)
	}

	return s, nil
}

// Decode parses and validates settings from YAML data
func Decode(data []byte) (*Settings, error) {
	s := Default()

	// Strict mode so misspelled keys are reported instead of ignored
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(s); err != nil && err != io.EOF {
		return nil, errors.Wrap(
			err,
			errors.ErrCodeSettingsParse,
			"Failed to parse settings",
			"Invalid YAML syntax, structure, or unknown fields (check for typos)",
			"Compare the file against the documented settings keys",
		)
	}

	if err := s.Validate(); err != nil {
		return nil, errors.Wrap(
			err,
			errors.ErrCodeSettingsValidation,
			"Settings validation failed",
			"Settings contain invalid values",
			"Review the error details and fix the settings file",
		)
	}

	return s, nil
}

// Validate checks value ranges
func (s *Settings) Validate() error {
	if s == nil {
		return fmt.Errorf("settings are nil")
	}
	if s.MaxDepth < 1 || s.MaxDepth > MaxDepthLimit {
		return fmt.Errorf("max_depth must be between 1 and %d, got %d", MaxDepthLimit, s.MaxDepth)
	}
	if s.WatchDebounce < 0 {
		return fmt.Errorf("watch_debounce must not be negative, got %s", s.WatchDebounce)
	}
	if _, err := logger.ParseLevel(s.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// ParserOptions returns dsl options reflecting these settings
func (s *Settings) ParserOptions(sink dsl.LogSink) dsl.Options {
	return dsl.Options{
		Verbose:  s.Verbose,
		MaxDepth: s.MaxDepth,
		Sink:     sink,
	}
}
