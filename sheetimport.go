package sheetimport

import (
	"context"

	"github.com/goliatone/go-sheet-import/internal/assets"
	"github.com/goliatone/go-sheet-import/internal/chartdata"
	importercmd "github.com/goliatone/go-sheet-import/internal/commands/importer"
	"github.com/goliatone/go-sheet-import/internal/di"
	"github.com/goliatone/go-sheet-import/internal/fieldvalue"
	"github.com/goliatone/go-sheet-import/internal/importer"
	"github.com/goliatone/go-sheet-import/internal/poller"
	"github.com/goliatone/go-sheet-import/internal/workbook"
	"github.com/goliatone/go-sheet-import/pkg/interfaces"
)

// AssetService exports the asset resolution contract for consumers of the
// sheetimport package.
type AssetService = assets.Service

// ImportService exports the import orchestrator contract.
type ImportService = importer.Service

// Poller exports the change-detection contract.
type Poller = poller.Poller

// Parser exports the workbook parser.
type Parser = workbook.Parser

// Chart exports the parsed chart block form.
type Chart = chartdata.Chart

// Module is the top level plugin runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a plugin module using the provided configuration and
// optional dependency overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// FromHost constructs a module whose configuration is overlaid with the
// host-supplied plugin and field parameters.
func FromHost(cfg Config, host interfaces.HostContext, opts ...di.Option) (*Module, error) {
	cfg = cfg.WithHostParameters(
		host.PluginParameters(),
		host.Parameters(),
		host.FieldAppearanceParameters(),
	)
	return New(cfg, opts...)
}

// Container exposes the underlying container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Assets returns the configured asset resolution service.
func (m *Module) Assets() AssetService {
	return m.container.AssetsService()
}

// Importer returns the configured import orchestrator.
func (m *Module) Importer() ImportService {
	return m.container.ImporterService()
}

// Parser returns the configured workbook parser.
func (m *Module) Parser() *Parser {
	return m.container.Parser()
}

// Watch starts change detection for one block and returns a stop function.
// Ticks run until the context is cancelled or stop is called. Stopping the
// last watcher of a block releases its entry from the shared poll-state
// store, so a reopened editor starts from a fresh baseline scan.
func (m *Module) Watch(ctx context.Context, host interfaces.HostContext) (func(), error) {
	p, err := m.container.NewPoller(host)
	if err != nil {
		return nil, err
	}
	stop := p.Start(ctx)
	release := m.container.TrackWatch(host)
	return func() {
		stop()
		release()
	}, nil
}

// ImportNow runs a full import for the block's current source file without
// waiting for the poller to observe a change. Execution goes through the
// command harness so validation, logging and timeouts apply.
func (m *Module) ImportNow(ctx context.Context, host interfaces.HostContext) error {
	sibling, ok := fieldvalue.ResolveSibling(host, m.container.Config.Fields.SourceFileAPIKey)
	if !ok || sibling.Ref == nil {
		return importer.ErrNoReference
	}
	return m.container.ImportHandler().Execute(ctx, importercmd.ImportBlockCommand{
		Host:      host,
		Reference: sibling.Ref,
		Signature: poller.Signature(sibling.Ref),
	})
}

// RemoveNow clears the imported data for the block immediately.
func (m *Module) RemoveNow(ctx context.Context, host interfaces.HostContext) error {
	return m.container.RemoveHandler().Execute(ctx, importercmd.RemoveBlockCommand{Host: host})
}

// ChartBlock extracts and parses the chart block from the field the host is
// attached to, when one exists.
func (m *Module) ChartBlock(host interfaces.HostContext) (*Chart, bool) {
	value, ok := fieldvalue.Lookup(host.FormValues(), fieldvalue.SplitPath(host.FieldPath()))
	if !ok {
		return nil, false
	}
	block, ok := chartdata.PickBlock(value)
	if !ok {
		return nil, false
	}
	return chartdata.Parse(block), true
}
