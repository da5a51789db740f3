package importercmd

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-sheet-import/internal/commands"
	"github.com/goliatone/go-sheet-import/internal/importer"
	"github.com/goliatone/go-sheet-import/internal/logging"
	"github.com/goliatone/go-sheet-import/pkg/interfaces"
)

const removeBlockMessageType = "sheetimport.block.remove"

// RemoveBlockCommand clears imported data after the source file was removed.
type RemoveBlockCommand struct {
	Host interfaces.HostContext `json:"-"`
}

// Type implements command.Message.
func (RemoveBlockCommand) Type() string { return removeBlockMessageType }

// Validate ensures the command payload carries a host context.
func (m RemoveBlockCommand) Validate() error {
	errs := validation.Errors{}
	if m.Host == nil {
		errs["host"] = validation.NewError("sheetimport.block.remove.host_required", "host context is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RemoveBlockHandler executes removals through the shared command foundation.
type RemoveBlockHandler struct {
	inner *commands.Handler[RemoveBlockCommand]
}

// NewRemoveBlockHandler constructs a handler wired to the provided import service.
func NewRemoveBlockHandler(service importer.Service, logger interfaces.Logger, opts ...commands.HandlerOption[RemoveBlockCommand]) *RemoveBlockHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg RemoveBlockCommand) error {
		return service.Remove(ctx, msg.Host)
	}

	handlerOpts := []commands.HandlerOption[RemoveBlockCommand]{
		commands.WithLogger[RemoveBlockCommand](baseLogger),
		commands.WithOperation[RemoveBlockCommand]("block.remove"),
		commands.WithTelemetry[RemoveBlockCommand](commands.DefaultTelemetry[RemoveBlockCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RemoveBlockHandler{
		inner: commands.NewHandler[RemoveBlockCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[RemoveBlockCommand].
func (h *RemoveBlockHandler) Execute(ctx context.Context, msg RemoveBlockCommand) error {
	return h.inner.Execute(ctx, msg)
}
