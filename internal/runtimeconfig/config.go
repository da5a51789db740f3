package runtimeconfig

import (
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-sheet-import/internal/tabular"
)

// ErrLoggingLevelInvalid indicates an unsupported logging level name.
var ErrLoggingLevelInvalid = errors.New("sheetimport config: logging level is invalid")

// ErrLoggingFormatInvalid indicates an unsupported logging format name.
var ErrLoggingFormatInvalid = errors.New("sheetimport config: logging format is invalid")

// ErrPayloadShapeInvalid indicates an unsupported payload shape.
var ErrPayloadShapeInvalid = errors.New("sheetimport config: payload shape is invalid")

// ErrPollIntervalInvalid indicates a non-positive poll interval.
var ErrPollIntervalInvalid = errors.New("sheetimport config: poll interval must be positive")

// ErrSourceFieldRequired indicates a blank source-file field api key.
var ErrSourceFieldRequired = errors.New("sheetimport config: source file api key is required")

// ErrCMABaseURLRequired indicates a token was configured without an API base URL.
var ErrCMABaseURLRequired = errors.New("sheetimport config: cma base url is required when a token is set")

// Config aggregates the plugin's runtime settings. Fields intentionally use
// simple types so host applications can populate them from any source.
type Config struct {
	CMA     CMAConfig
	Fields  FieldsConfig
	Payload PayloadConfig
	Poll    PollConfig
	Assets  AssetsConfig
	Logging LoggingConfig
}

// CMAConfig carries the content-management API binding. An empty token
// disables blob promotion and upload lookups while direct URLs keep working.
type CMAConfig struct {
	BaseURL     string
	Token       string
	Environment string
}

// FieldsConfig names the sibling fields the plugin reads and writes inside a
// block. ColumnsMetaAPIKey and RowCountAPIKey may stay empty to skip the
// derived meta writes.
type FieldsConfig struct {
	SourceFileAPIKey  string
	ColumnsMetaAPIKey string
	RowCountAPIKey    string
}

// PayloadConfig selects the JSON layout written to the target field.
type PayloadConfig struct {
	Shape tabular.Shape
}

// PollConfig captures change-detection cadence.
type PollConfig struct {
	Interval time.Duration
}

// AssetsConfig bounds the upload readiness loop.
type AssetsConfig struct {
	RetryInterval time.Duration
	ReadyWindow   time.Duration
}

// LoggingConfig mirrors the go-logger options the plugin exposes.
type LoggingConfig struct {
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns the settings the plugin ships with.
func DefaultConfig() Config {
	return Config{
		Fields: FieldsConfig{
			SourceFileAPIKey: "sourcefile",
		},
		Payload: PayloadConfig{
			Shape: tabular.ShapeMatrix,
		},
		Poll: PollConfig{
			Interval: 800 * time.Millisecond,
		},
		Assets: AssetsConfig{
			RetryInterval: 300 * time.Millisecond,
			ReadyWindow:   6500 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate confirms the configuration is internally consistent.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Fields.SourceFileAPIKey) == "" {
		return ErrSourceFieldRequired
	}
	if c.CMA.Token != "" && strings.TrimSpace(c.CMA.BaseURL) == "" {
		return ErrCMABaseURLRequired
	}
	if !c.Payload.Shape.Valid() {
		return ErrPayloadShapeInvalid
	}
	if c.Poll.Interval <= 0 {
		return ErrPollIntervalInvalid
	}
	if err := c.Logging.validate(); err != nil {
		return err
	}
	return nil
}

func (l LoggingConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(l.Level)) {
	case "", "trace", "debug", "info", "warn", "warning", "error", "fatal":
	default:
		return ErrLoggingLevelInvalid
	}
	switch strings.ToLower(strings.TrimSpace(l.Format)) {
	case "", "json", "console", "pretty":
	default:
		return ErrLoggingFormatInvalid
	}
	return nil
}
