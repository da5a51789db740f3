package runtimeconfig

import (
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-sheet-import/internal/tabular"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
	if cfg.Fields.SourceFileAPIKey != "sourcefile" {
		t.Fatalf("unexpected default source key %q", cfg.Fields.SourceFileAPIKey)
	}
	if cfg.Payload.Shape != tabular.ShapeMatrix {
		t.Fatalf("unexpected default shape %q", cfg.Payload.Shape)
	}
	if cfg.Poll.Interval != 800*time.Millisecond {
		t.Fatalf("unexpected default poll interval %v", cfg.Poll.Interval)
	}
}

func TestValidateRejectsBlankSourceKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Fields.SourceFileAPIKey = "  "
	if err := cfg.Validate(); !errors.Is(err, ErrSourceFieldRequired) {
		t.Fatalf("expected ErrSourceFieldRequired, got %v", err)
	}
}

func TestValidateRejectsTokenWithoutBaseURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CMA.Token = "secret"
	if err := cfg.Validate(); !errors.Is(err, ErrCMABaseURLRequired) {
		t.Fatalf("expected ErrCMABaseURLRequired, got %v", err)
	}
}

func TestValidateRejectsBadShape(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Payload.Shape = "pivot"
	if err := cfg.Validate(); !errors.Is(err, ErrPayloadShapeInvalid) {
		t.Fatalf("expected ErrPayloadShapeInvalid, got %v", err)
	}
}

func TestValidateRejectsBadPollInterval(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Poll.Interval = 0
	if err := cfg.Validate(); !errors.Is(err, ErrPollIntervalInvalid) {
		t.Fatalf("expected ErrPollIntervalInvalid, got %v", err)
	}
}

func TestValidateLogging(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); !errors.Is(err, ErrLoggingLevelInvalid) {
		t.Fatalf("expected ErrLoggingLevelInvalid, got %v", err)
	}
	cfg = DefaultConfig()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); !errors.Is(err, ErrLoggingFormatInvalid) {
		t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
	}
}

func TestWithHostParameters(t *testing.T) {
	cfg := DefaultConfig().WithHostParameters(
		map[string]any{
			ParamCMAToken:    "token-1",
			ParamEnvironment: "staging",
			ParamBaseURL:     "https://api.example.com",
		},
		map[string]any{
			ParamSourceFileAPIKey: "file_field",
			ParamPayloadShape:     "rows",
		},
		map[string]any{
			ParamSourceFileAPIKey:  "ignored",
			ParamColumnsMetaAPIKey: "cols",
		},
	)

	if cfg.CMA.Token != "token-1" || cfg.CMA.Environment != "staging" {
		t.Fatalf("plugin parameters must apply, got %+v", cfg.CMA)
	}
	if cfg.Fields.SourceFileAPIKey != "file_field" {
		t.Fatalf("direct field parameters must win over appearance, got %q", cfg.Fields.SourceFileAPIKey)
	}
	if cfg.Fields.ColumnsMetaAPIKey != "cols" {
		t.Fatalf("appearance parameters must fill gaps, got %q", cfg.Fields.ColumnsMetaAPIKey)
	}
	if cfg.Payload.Shape != tabular.ShapeRows {
		t.Fatalf("payload shape parameter must apply, got %q", cfg.Payload.Shape)
	}
}

func TestWithHostParametersIgnoresBlanksAndBadShapes(t *testing.T) {
	cfg := DefaultConfig().WithHostParameters(
		map[string]any{ParamCMAToken: "  "},
		map[string]any{ParamPayloadShape: "pivot"},
		nil,
	)
	if cfg.CMA.Token != "" {
		t.Fatalf("blank token must be ignored, got %q", cfg.CMA.Token)
	}
	if cfg.Payload.Shape != tabular.ShapeMatrix {
		t.Fatalf("invalid shape must keep the default, got %q", cfg.Payload.Shape)
	}
}
