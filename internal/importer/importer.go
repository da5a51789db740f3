package importer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-sheet-import/internal/assets"
	"github.com/goliatone/go-sheet-import/internal/fieldvalue"
	"github.com/goliatone/go-sheet-import/internal/logging"
	"github.com/goliatone/go-sheet-import/internal/tabular"
	"github.com/goliatone/go-sheet-import/internal/workbook"
	"github.com/goliatone/go-sheet-import/pkg/interfaces"
)

// Service runs the full reconciliation for one block: source file in, encoded
// table payload out. It satisfies the poller's dispatcher contract.
type Service interface {
	// Import downloads, parses and normalizes the referenced source file and
	// writes the resulting payload into the block's target field.
	Import(ctx context.Context, host interfaces.HostContext, ref *fieldvalue.Reference) error
	// Remove writes the empty removal payload and clears the derived meta
	// fields after the source file was taken off the block.
	Remove(ctx context.Context, host interfaces.HostContext) error
}

// ServiceOption customises the import service.
type ServiceOption func(*service)

// WithAssets injects the asset resolution service.
func WithAssets(svc assets.Service) ServiceOption {
	return func(s *service) {
		if svc != nil {
			s.assets = svc
		}
	}
}

// WithFetcher injects the source-file downloader.
func WithFetcher(fetcher Fetcher) ServiceOption {
	return func(s *service) {
		if fetcher != nil {
			s.fetcher = fetcher
		}
	}
}

// WithParser injects the workbook parser.
func WithParser(parser *workbook.Parser) ServiceOption {
	return func(s *service) {
		if parser != nil {
			s.parser = parser
		}
	}
}

// WithShape selects the payload layout written to the target field.
func WithShape(shape tabular.Shape) ServiceOption {
	return func(s *service) {
		if shape.Valid() {
			s.shape = shape
		}
	}
}

// WithMetaFieldKeys sets the api keys of the sibling fields that receive the
// derived column list and row count. Either key may be empty to skip that
// write.
func WithMetaFieldKeys(columnsMeta, rowCount string) ServiceOption {
	return func(s *service) {
		s.columnsMetaKey = columnsMeta
		s.rowCountKey = rowCount
	}
}

// WithLogger injects the importer module logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock injects the time source stamped into payload metadata.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithImportID injects the import-id generator, defaulting to random UUIDs.
func WithImportID(generate func() string) ServiceOption {
	return func(s *service) {
		if generate != nil {
			s.importID = generate
		}
	}
}

type service struct {
	assets         assets.Service
	fetcher        Fetcher
	parser         *workbook.Parser
	shape          tabular.Shape
	columnsMetaKey string
	rowCountKey    string
	now            func() time.Time
	importID       func() string
	logger         interfaces.Logger
}

// NewService constructs the import orchestrator.
func NewService(opts ...ServiceOption) Service {
	s := &service{
		assets:   assets.NewService(nil),
		fetcher:  NewHTTPFetcher(nil),
		parser:   workbook.NewParser(),
		shape:    tabular.ShapeMatrix,
		now:      time.Now,
		importID: uuid.NewString,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Import(ctx context.Context, host interfaces.HostContext, ref *fieldvalue.Reference) error {
	if err := s.runImport(ctx, host, ref); err != nil {
		host.Alert(alertMessage(err))
		return err
	}
	return nil
}

func (s *service) runImport(ctx context.Context, host interfaces.HostContext, ref *fieldvalue.Reference) error {
	if ref == nil {
		return ErrNoReference
	}

	uploaded, err := s.assets.EnsureUploaded(ctx, ref)
	if err != nil {
		return err
	}
	meta, err := s.assets.ResolveMetadata(ctx, uploaded)
	if err != nil {
		return err
	}
	if strings.HasPrefix(strings.ToLower(meta.MimeType), "image/") {
		return fmt.Errorf("%w: %s", ErrNotSpreadsheet, meta.MimeType)
	}

	data, fetchedType, err := s.fetcher.Fetch(ctx, meta.URL)
	if err != nil {
		return err
	}
	contentType := meta.MimeType
	if contentType == "" {
		contentType = fetchedType
	}

	grid, err := s.parser.Parse(data, workbook.Hints{
		ContentType: contentType,
		Filename:    meta.Filename,
	})
	if err != nil {
		return err
	}
	if len(grid) == 0 {
		return ErrEmptyDocument
	}

	table := tabular.Normalize(grid)
	payloadMeta := tabular.NewMeta(meta.Filename, contentType, s.now(), s.importID())
	payload, err := tabular.BuildPayload(table, payloadMeta, s.shape)
	if err != nil {
		return err
	}
	encoded, err := tabular.EncodePayload(payload)
	if err != nil {
		return err
	}

	if err := s.writeTarget(ctx, host, encoded); err != nil {
		return err
	}
	if err := s.writeMetaFields(ctx, host, table); err != nil {
		return err
	}

	s.logger.Info("importer.imported",
		"import_id", payloadMeta.ImportID,
		"rows", len(table.Rows),
		"columns", len(table.Columns),
	)
	host.Notice(fmt.Sprintf("Imported %d rows × %d columns.", len(table.Rows), len(table.Columns)))
	return nil
}

func (s *service) Remove(ctx context.Context, host interfaces.HostContext) error {
	payload, err := tabular.RemovalPayload(s.now())
	if err != nil {
		return err
	}
	encoded, err := tabular.EncodePayload(payload)
	if err != nil {
		return err
	}
	if err := s.writeTarget(ctx, host, encoded); err != nil {
		host.Alert(alertMessage(err))
		return err
	}
	if err := s.clearMetaFields(ctx, host); err != nil {
		host.Alert(alertMessage(err))
		return err
	}
	s.logger.Info("importer.removed", "field_path", host.FieldPath())
	host.Notice("Imported data cleared.")
	return nil
}

// writeTarget performs the clear-then-set double write: form state libraries
// ignore a set whose value equals the current one, so the field is nilled
// first to force change detection even for byte-identical payloads.
func (s *service) writeTarget(ctx context.Context, host interfaces.HostContext, encoded string) error {
	path := host.FieldPath()
	if err := host.SetFieldValue(ctx, path, nil); err != nil {
		return err
	}
	return host.SetFieldValue(ctx, path, encoded)
}

func (s *service) writeMetaFields(ctx context.Context, host interfaces.HostContext, table *tabular.Table) error {
	container, ok := fieldvalue.ResolveContainer(host)
	if !ok {
		return nil
	}
	// Columns meta mirrors the matrix layout; the rows shape already keys
	// every record by column name.
	if s.columnsMetaKey != "" && s.shape == tabular.ShapeMatrix {
		columns := make([]any, 0, len(table.Columns))
		for _, column := range table.Columns {
			columns = append(columns, column)
		}
		path := fieldvalue.SiblingWritePath(host, container, s.columnsMetaKey)
		if err := host.SetFieldValue(ctx, path, map[string]any{"columns": columns}); err != nil {
			return err
		}
	}
	if s.rowCountKey != "" {
		path := fieldvalue.SiblingWritePath(host, container, s.rowCountKey)
		if err := host.SetFieldValue(ctx, path, len(table.Rows)); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) clearMetaFields(ctx context.Context, host interfaces.HostContext) error {
	container, ok := fieldvalue.ResolveContainer(host)
	if !ok {
		return nil
	}
	for _, key := range []string{s.columnsMetaKey, s.rowCountKey} {
		if key == "" {
			continue
		}
		path := fieldvalue.SiblingWritePath(host, container, key)
		if err := host.SetFieldValue(ctx, path, nil); err != nil {
			return err
		}
	}
	return nil
}

func alertMessage(err error) string {
	switch {
	case err == nil:
		return ""
	default:
		return "Import failed: " + err.Error()
	}
}
