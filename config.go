package sheetimport

import "github.com/goliatone/go-sheet-import/internal/runtimeconfig"

var (
	ErrLoggingLevelInvalid  = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid = runtimeconfig.ErrLoggingFormatInvalid
	ErrPayloadShapeInvalid  = runtimeconfig.ErrPayloadShapeInvalid
	ErrPollIntervalInvalid  = runtimeconfig.ErrPollIntervalInvalid
	ErrSourceFieldRequired  = runtimeconfig.ErrSourceFieldRequired
	ErrCMABaseURLRequired   = runtimeconfig.ErrCMABaseURLRequired
)

type (
	Config        = runtimeconfig.Config
	CMAConfig     = runtimeconfig.CMAConfig
	FieldsConfig  = runtimeconfig.FieldsConfig
	PayloadConfig = runtimeconfig.PayloadConfig
	PollConfig    = runtimeconfig.PollConfig
	AssetsConfig  = runtimeconfig.AssetsConfig
	LoggingConfig = runtimeconfig.LoggingConfig
)

// DefaultConfig returns the settings the plugin ships with.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
