package importercmd

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-sheet-import/internal/commands"
	"github.com/goliatone/go-sheet-import/internal/fieldvalue"
	"github.com/goliatone/go-sheet-import/internal/importer"
	"github.com/goliatone/go-sheet-import/internal/logging"
	"github.com/goliatone/go-sheet-import/pkg/interfaces"
)

const importBlockMessageType = "sheetimport.block.import"

// ImportBlockCommand runs a full source-file import for one block.
type ImportBlockCommand struct {
	Host      interfaces.HostContext `json:"-"`
	Reference *fieldvalue.Reference  `json:"reference"`
	// Signature is the source identity that triggered the import, carried
	// for observability only.
	Signature string `json:"signature,omitempty"`
}

// Type implements command.Message.
func (ImportBlockCommand) Type() string { return importBlockMessageType }

// Validate ensures the command payload carries a host and a source reference.
func (m ImportBlockCommand) Validate() error {
	errs := validation.Errors{}
	if m.Host == nil {
		errs["host"] = validation.NewError("sheetimport.block.import.host_required", "host context is required")
	}
	if m.Reference == nil {
		errs["reference"] = validation.NewError("sheetimport.block.import.reference_required", "source reference is required")
	} else if m.Reference.Kind == fieldvalue.KindUpload && m.Reference.UploadID == "" {
		errs["reference"] = validation.NewError("sheetimport.block.import.upload_id_required", "upload reference must carry an id")
	} else if m.Reference.Kind == fieldvalue.KindURL && m.Reference.URL == "" {
		errs["reference"] = validation.NewError("sheetimport.block.import.url_required", "url reference must carry a url")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ImportBlockHandler executes imports through the shared command foundation.
type ImportBlockHandler struct {
	inner *commands.Handler[ImportBlockCommand]
}

// NewImportBlockHandler constructs a handler wired to the provided import service.
func NewImportBlockHandler(service importer.Service, logger interfaces.Logger, opts ...commands.HandlerOption[ImportBlockCommand]) *ImportBlockHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg ImportBlockCommand) error {
		if err := service.Import(ctx, msg.Host, msg.Reference); err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"signature": msg.Signature,
		}).Info("importer.command.import.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[ImportBlockCommand]{
		commands.WithLogger[ImportBlockCommand](baseLogger),
		commands.WithOperation[ImportBlockCommand]("block.import"),
		commands.WithTelemetry[ImportBlockCommand](commands.DefaultTelemetry[ImportBlockCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ImportBlockHandler{
		inner: commands.NewHandler[ImportBlockCommand](exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[ImportBlockCommand].
func (h *ImportBlockHandler) Execute(ctx context.Context, msg ImportBlockCommand) error {
	return h.inner.Execute(ctx, msg)
}
