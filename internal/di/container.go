package di

import (
	"net/http"
	"sync"
	"time"

	"github.com/goliatone/go-sheet-import/internal/assets"
	"github.com/goliatone/go-sheet-import/internal/commands"
	importercmd "github.com/goliatone/go-sheet-import/internal/commands/importer"
	"github.com/goliatone/go-sheet-import/internal/importer"
	"github.com/goliatone/go-sheet-import/internal/logging"
	"github.com/goliatone/go-sheet-import/internal/logging/gologger"
	"github.com/goliatone/go-sheet-import/internal/poller"
	"github.com/goliatone/go-sheet-import/internal/runtimeconfig"
	"github.com/goliatone/go-sheet-import/internal/workbook"
	"github.com/goliatone/go-sheet-import/pkg/interfaces"
)

// Container wires the plugin services together from configuration, applying
// overrides before falling back to defaults.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	assetAPI       interfaces.AssetAPI
	assetsSvc      assets.Service
	fetcher        importer.Fetcher
	httpClient     *http.Client
	parser         *workbook.Parser
	datePolicy     workbook.DatePolicy
	importerSvc    importer.Service
	importHandler  *importercmd.ImportBlockHandler
	removeHandler  *importercmd.RemoveBlockHandler
	store          poller.Store
	clock          func() time.Time

	watchMu  sync.Mutex
	watching map[string]int
}

// Option overrides a container binding.
type Option func(*Container)

// WithLoggerProvider overrides the default go-logger based provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithAssetAPI overrides the HTTP-backed content-management API client.
func WithAssetAPI(api interfaces.AssetAPI) Option {
	return func(c *Container) {
		c.assetAPI = api
	}
}

// WithAssetsService overrides the default asset resolution service binding.
func WithAssetsService(svc assets.Service) Option {
	return func(c *Container) {
		c.assetsSvc = svc
	}
}

// WithFetcher overrides the source-file downloader binding.
func WithFetcher(fetcher importer.Fetcher) Option {
	return func(c *Container) {
		c.fetcher = fetcher
	}
}

// WithHTTPClient overrides the transport shared by the default API client
// and downloader.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Container) {
		c.httpClient = client
	}
}

// WithDatePolicy overrides the workbook date-cell classification policy.
func WithDatePolicy(policy workbook.DatePolicy) Option {
	return func(c *Container) {
		c.datePolicy = policy
	}
}

// WithImporterService overrides the default import orchestrator binding.
func WithImporterService(svc importer.Service) Option {
	return func(c *Container) {
		c.importerSvc = svc
	}
}

// WithStore overrides the poller state store. Hosts embedding several plugin
// instances should share one store.
func WithStore(store poller.Store) Option {
	return func(c *Container) {
		c.store = store
	}
}

// WithClock overrides the time source used across services.
func WithClock(clock func() time.Time) Option {
	return func(c *Container) {
		c.clock = clock
	}
}

// NewContainer creates a container with the provided configuration.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		Config:   cfg,
		store:    poller.NewMemoryStore(),
		clock:    time.Now,
		watching: map[string]int{},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.loggerProvider == nil {
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.AddSource,
			Focus:     cfg.Logging.Focus,
		})
		if err != nil {
			return nil, err
		}
		c.loggerProvider = provider
	}

	if c.assetAPI == nil && cfg.CMA.Token != "" {
		c.assetAPI = assets.NewCMAClient(assets.CMAConfig{
			BaseURL:    cfg.CMA.BaseURL,
			Token:      cfg.CMA.Token,
			HTTPClient: c.httpClient,
		})
	}

	if c.assetsSvc == nil {
		c.assetsSvc = assets.NewService(
			c.assetAPI,
			assets.WithEnvironment(cfg.CMA.Environment),
			assets.WithRetryInterval(cfg.Assets.RetryInterval),
			assets.WithReadyWindow(cfg.Assets.ReadyWindow),
			assets.WithClock(c.clock),
			assets.WithLogger(logging.AssetsLogger(c.loggerProvider)),
		)
	}

	if c.fetcher == nil {
		c.fetcher = importer.NewHTTPFetcher(c.httpClient)
	}

	if c.parser == nil {
		parserOpts := []workbook.Option{}
		if c.datePolicy != nil {
			parserOpts = append(parserOpts, workbook.WithDatePolicy(c.datePolicy))
		}
		c.parser = workbook.NewParser(parserOpts...)
	}

	if c.importerSvc == nil {
		c.importerSvc = importer.NewService(
			importer.WithAssets(c.assetsSvc),
			importer.WithFetcher(c.fetcher),
			importer.WithParser(c.parser),
			importer.WithShape(cfg.Payload.Shape),
			importer.WithMetaFieldKeys(cfg.Fields.ColumnsMetaAPIKey, cfg.Fields.RowCountAPIKey),
			importer.WithClock(c.clock),
			importer.WithLogger(logging.ImporterLogger(c.loggerProvider)),
		)
	}

	commandLogger := commands.CommandLogger(c.loggerProvider, "importer")
	c.importHandler = importercmd.NewImportBlockHandler(c.importerSvc, commandLogger)
	c.removeHandler = importercmd.NewRemoveBlockHandler(c.importerSvc, commandLogger)

	return c, nil
}

// LoggerProvider exposes the configured logger provider.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// AssetAPI exposes the configured content-management API client, nil when no
// token was configured.
func (c *Container) AssetAPI() interfaces.AssetAPI {
	return c.assetAPI
}

// AssetsService exposes the asset resolution service.
func (c *Container) AssetsService() assets.Service {
	return c.assetsSvc
}

// Fetcher exposes the source-file downloader.
func (c *Container) Fetcher() importer.Fetcher {
	return c.fetcher
}

// Parser exposes the workbook parser.
func (c *Container) Parser() *workbook.Parser {
	return c.parser
}

// ImporterService exposes the import orchestrator.
func (c *Container) ImporterService() importer.Service {
	return c.importerSvc
}

// ImportHandler exposes the command-wrapped import entry point.
func (c *Container) ImportHandler() *importercmd.ImportBlockHandler {
	return c.importHandler
}

// RemoveHandler exposes the command-wrapped removal entry point.
func (c *Container) RemoveHandler() *importercmd.RemoveBlockHandler {
	return c.removeHandler
}

// Store exposes the shared poller state store.
func (c *Container) Store() poller.Store {
	return c.store
}

// Clock exposes the container's time source.
func (c *Container) Clock() func() time.Time {
	return c.clock
}

// TrackWatch registers the host's block key as actively watched and returns
// a release function. Releasing the last watcher of a key sweeps the shared
// store, dropping entries no watcher observes anymore so poll state stays
// bounded by the set of open editors.
func (c *Container) TrackWatch(host interfaces.HostContext) func() {
	key, ok := poller.BlockKey(host)
	if !ok {
		return func() {}
	}
	c.watchMu.Lock()
	c.watching[key]++
	c.watchMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.watchMu.Lock()
			c.watching[key]--
			if c.watching[key] <= 0 {
				delete(c.watching, key)
			}
			live := make(map[string]struct{}, len(c.watching))
			for k := range c.watching {
				live[k] = struct{}{}
			}
			c.watchMu.Unlock()
			c.store.Evict(live)
		})
	}
}

// NewPoller builds a change poller for one block, sharing the container's
// state store and import pipeline.
func (c *Container) NewPoller(host interfaces.HostContext) (poller.Poller, error) {
	return poller.New(host, c.importerSvc,
		poller.WithInterval(c.Config.Poll.Interval),
		poller.WithStore(c.store),
		poller.WithSourceFieldKey(c.Config.Fields.SourceFileAPIKey),
		poller.WithPollerLogger(logging.PollerLogger(c.loggerProvider)),
		poller.PromoteBlob(c.assetsSvc.EnsureUploaded),
	)
}
