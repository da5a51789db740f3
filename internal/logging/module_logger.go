package logging

import (
	"context"

	"github.com/goliatone/go-sheet-import/pkg/interfaces"
)

const (
	rootModule     = "sheetimport"
	assetsModule   = "sheetimport.assets"
	pollerModule   = "sheetimport.poller"
	importerModule = "sheetimport.importer"
	workbookModule = "sheetimport.workbook"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// AssetsLogger returns the logger namespace reserved for the asset client.
func AssetsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, assetsModule)
}

// PollerLogger returns the logger namespace reserved for the change poller.
func PollerLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, pollerModule)
}

// ImporterLogger returns the logger namespace reserved for the import
// orchestrator.
func ImporterLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, importerModule)
}

// WorkbookLogger returns the logger namespace reserved for workbook parsing.
func WorkbookLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, workbookModule)
}

// WithBlockContext enriches the provided logger with the block identity the
// current operation targets. Empty values are ignored.
func WithBlockContext(logger interfaces.Logger, containerPath, locale string) interfaces.Logger {
	fields := map[string]any{}
	if containerPath != "" {
		fields["block_path"] = containerPath
	}
	if locale != "" {
		fields["locale"] = locale
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
