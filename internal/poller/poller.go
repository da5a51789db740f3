package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-sheet-import/internal/fieldvalue"
	"github.com/goliatone/go-sheet-import/internal/logging"
	"github.com/goliatone/go-sheet-import/pkg/interfaces"
)

const defaultInterval = 800 * time.Millisecond

var (
	// ErrNoDispatcher reports that the poller was built without a dispatcher.
	ErrNoDispatcher = errors.New("poller: dispatcher required")
	// ErrNoHost reports that the poller was built without a host context.
	ErrNoHost = errors.New("poller: host context required")
)

// Dispatcher receives the transitions the poller detects. Import fires when
// a block's source file changes to a new file; Remove fires when the source
// file is cleared after the block held one.
type Dispatcher interface {
	Import(ctx context.Context, host interfaces.HostContext, ref *fieldvalue.Reference) error
	Remove(ctx context.Context, host interfaces.HostContext) error
}

// Poller watches a block's source-file sibling and dispatches imports and
// removals when its signature changes.
type Poller interface {
	// Start begins ticking until the context is cancelled or the returned
	// stop function is called.
	Start(ctx context.Context) (stop func())
	// Tick runs one observation pass. Errors from dispatch clear the stored
	// signature so the next tick retries; Tick itself never fails.
	Tick(ctx context.Context)
}

// PollerOption customises the poller.
type PollerOption func(*poller)

// WithInterval overrides the tick cadence.
func WithInterval(interval time.Duration) PollerOption {
	return func(p *poller) {
		if interval > 0 {
			p.interval = interval
		}
	}
}

// WithStore injects a shared state store. Pollers for sibling blocks should
// share one store so block keys evict consistently.
func WithStore(store Store) PollerOption {
	return func(p *poller) {
		if store != nil {
			p.store = store
		}
	}
}

// WithSourceFieldKey overrides the api key of the watched sibling field.
func WithSourceFieldKey(apiKey string) PollerOption {
	return func(p *poller) {
		if apiKey != "" {
			p.sourceKey = apiKey
		}
	}
}

// WithPollerLogger injects the poller module logger.
func WithPollerLogger(logger interfaces.Logger) PollerOption {
	return func(p *poller) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// PromoteBlob injects the promotion hook used to turn in-memory blobs into
// upload references before signing. Typically assets.Service.EnsureUploaded.
func PromoteBlob(promote func(context.Context, *fieldvalue.Reference) (*fieldvalue.Reference, error)) PollerOption {
	return func(p *poller) {
		if promote != nil {
			p.promote = promote
		}
	}
}

type poller struct {
	host       interfaces.HostContext
	dispatcher Dispatcher
	store      Store
	interval   time.Duration
	sourceKey  string
	promote    func(context.Context, *fieldvalue.Reference) (*fieldvalue.Reference, error)
	logger     interfaces.Logger
	busy       atomic.Bool
}

// New constructs a poller for one block.
func New(host interfaces.HostContext, dispatcher Dispatcher, opts ...PollerOption) (Poller, error) {
	if host == nil {
		return nil, ErrNoHost
	}
	if dispatcher == nil {
		return nil, ErrNoDispatcher
	}
	p := &poller{
		host:       host,
		dispatcher: dispatcher,
		store:      NewMemoryStore(),
		interval:   defaultInterval,
		sourceKey:  "sourcefile",
		logger:     logging.NoOp(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// BlockKey identifies the poll-state entry for the block the host editor is
// attached to: the container path joined with the editor locale. Locale-scoped
// editors of the same localized field watch different source files, so each
// gets its own baseline and signature.
func BlockKey(host interfaces.HostContext) (string, bool) {
	container, ok := fieldvalue.ResolveContainer(host)
	if !ok {
		return "", false
	}
	key := container.Key()
	if locale := host.Locale(); locale != "" {
		key = key + "|" + locale
	}
	return key, true
}

func (p *poller) Start(ctx context.Context) func() {
	ctx, cancel := context.WithCancel(ctx)
	var once sync.Once
	stop := func() { once.Do(cancel) }

	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.Tick(ctx)
			}
		}
	}()
	return stop
}

// Tick observes the block once. A tick that arrives while a dispatch from a
// previous tick is still running is skipped outright; the change will still
// be there on the next tick.
func (p *poller) Tick(ctx context.Context) {
	if !p.busy.CompareAndSwap(false, true) {
		return
	}
	defer p.busy.Store(false)

	key, ok := BlockKey(p.host)
	if !ok {
		p.logger.Debug("poller.container_unresolved", "field_path", p.host.FieldPath())
		return
	}

	// An unresolved sibling is an observation in its own right: the source
	// field is empty, which after a baseline with a file means removal.
	var ref *fieldvalue.Reference
	if sibling, found := fieldvalue.ResolveSibling(p.host, p.sourceKey); found {
		ref = p.promoted(ctx, sibling)
	}
	signature := Signature(ref)

	entry, seen := p.store.Get(key)
	if !seen || !entry.Baselined {
		p.store.Put(key, Entry{Signature: signature, Baselined: true})
		p.logger.Debug("poller.baselined", "key", key, "signature", signature)
		return
	}
	if entry.Signature == signature {
		return
	}

	p.store.Put(key, Entry{Signature: signature, Baselined: true})
	if err := p.dispatch(ctx, signature, ref); err != nil {
		// Forget the signature so the same file is retried next tick.
		p.store.Clear(key)
		p.logger.Error("poller.dispatch_failed", "key", key, "signature", signature, "error", err)
		return
	}
	p.logger.Info("poller.dispatched", "key", key, "signature", signature)
}

func (p *poller) dispatch(ctx context.Context, signature string, ref *fieldvalue.Reference) error {
	if signature == SignatureEmpty || ref == nil {
		return p.dispatcher.Remove(ctx, p.host)
	}
	return p.dispatcher.Import(ctx, p.host, ref)
}

// promoted resolves an in-memory blob into an upload reference and persists
// the promoted id back onto the sibling field, so the stored value and the
// signature both settle on the upload id. Promotion failures fall back to
// the blob reference; its fingerprint signature still detects changes.
func (p *poller) promoted(ctx context.Context, sibling *fieldvalue.Sibling) *fieldvalue.Reference {
	ref := sibling.Ref
	if ref == nil || ref.Kind != fieldvalue.KindBlob || p.promote == nil {
		return ref
	}
	uploaded, err := p.promote(ctx, ref)
	if err != nil {
		p.logger.Warn("poller.blob_promotion_failed", "error", err)
		return ref
	}
	if sibling.Path != "" {
		value := map[string]any{"upload_id": uploaded.UploadID}
		if err := p.host.SetFieldValue(ctx, sibling.Path, value); err != nil {
			p.logger.Warn("poller.sibling_writeback_failed", "error", err)
		}
	}
	return uploaded
}
